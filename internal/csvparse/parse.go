// Package csvparse converts published spreadsheet exports into rows of fields.
//
// The parser is deliberately small: a single left-to-right scan with one
// character of lookahead and two states (unquoted and quoted). It supports
// quoted fields containing commas and newlines, doubled-quote escapes and
// CRLF line endings. It is total: every input produces a Table and no input
// produces an error.
//
// It is not a general RFC 4180 reader. A stray quote inside an unquoted
// field switches to quoted mode instead of being kept literally, and an
// unterminated quote at end of input keeps whatever was buffered.
package csvparse

import "strings"

// Row is one logical CSV line. It may span several physical lines when a
// quoted field contains newlines.
type Row []string

// Table is the full parse output of one CSV document. The first row, when
// present, is conventionally the header.
type Table []Row

// Header returns the first row, or nil for an empty table.
func (t Table) Header() Row {
	if len(t) == 0 {
		return nil
	}
	return t[0]
}

// DataRows returns every row after the header.
func (t Table) DataRows() []Row {
	if len(t) < 2 {
		return nil
	}
	return t[1:]
}

// Len returns the number of rows including the header.
func (t Table) Len() int {
	return len(t)
}

// Parse splits text into rows and fields. Rows are not padded or truncated
// to the header width; callers resolve missing columns themselves.
func Parse(text string) Table {
	var (
		rows     Table
		row      Row
		field    strings.Builder
		inQuotes bool
		// opened records a quote seen since the last row flush so that an
		// input such as a lone `"` still yields one (empty) field.
		opened bool
	)

	flushField := func() {
		row = append(row, field.String())
		field.Reset()
	}
	flushRow := func() {
		if len(row) > 0 {
			rows = append(rows, row)
		}
		row = nil
		opened = false
	}

	n := len(text)
	for i := 0; i < n; {
		ch := text[i]

		if inQuotes {
			if ch == '"' {
				if i+1 < n && text[i+1] == '"' {
					field.WriteByte('"')
					i += 2
					continue
				}
				inQuotes = false
				i++
				continue
			}
			field.WriteByte(ch)
			i++
			continue
		}

		switch ch {
		case '"':
			inQuotes = true
			opened = true
		case ',':
			flushField()
		case '\r':
		case '\n':
			flushField()
			flushRow()
		default:
			field.WriteByte(ch)
		}
		i++
	}

	// Flush a trailing line that was not terminated by a newline.
	if field.Len() > 0 || len(row) > 0 || opened {
		flushField()
		flushRow()
	}

	return rows
}
