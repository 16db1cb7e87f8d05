package core

import (
	"strings"

	"github.com/JonMunkholm/proker/internal/csvparse"
	"github.com/JonMunkholm/proker/internal/textfmt"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// NotFound is returned by ColumnIndex when no candidate matches.
const NotFound = -1

// normalizeHeader folds case and compatibility characters so that headers
// typed with non-breaking spaces or full-width letters still match. A Caser
// is stateful, so one is created per call.
func normalizeHeader(s string) string {
	return strings.TrimSpace(cases.Fold().String(norm.NFKC.String(s)))
}

// ColumnIndex finds the column holding a field. Candidates are tried in
// order; for each one the first header that contains the candidate, or is
// contained by it, wins. Returns NotFound when nothing matches.
//
// An empty header is contained in every candidate and therefore matches.
func ColumnIndex(headers []string, candidates ...string) int {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = normalizeHeader(h)
	}

	for _, c := range candidates {
		want := normalizeHeader(c)
		for i, h := range normalized {
			if strings.Contains(h, want) || strings.Contains(want, h) {
				return i
			}
		}
	}
	return NotFound
}

// CellValue returns the trimmed value at idx, or "-" when the column was not
// found, the row is too short or the value is blank.
func CellValue(row csvparse.Row, idx int) string {
	if idx < 0 || idx >= len(row) {
		return textfmt.Empty
	}
	if v := strings.TrimSpace(row[idx]); v != "" {
		return v
	}
	return textfmt.Empty
}
