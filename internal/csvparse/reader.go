package csvparse

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
)

// utf8BOM is prepended by some spreadsheet exports and Windows editors.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseReader reads the whole document from r, strips a leading UTF-8 BOM,
// replaces invalid UTF-8 sequences with U+FFFD and parses the result.
// The only error returned is a read error from r.
func ParseReader(r io.Reader) (Table, error) {
	text, err := ReadText(r)
	if err != nil {
		return nil, err
	}
	return Parse(text), nil
}

// ReadText reads r into a string suitable for Parse.
func ReadText(r io.Reader) (string, error) {
	var b strings.Builder
	if _, err := io.Copy(&b, NewUTF8Sanitizer(NewBOMSkippingReader(r))); err != nil {
		return "", fmt.Errorf("read csv: %w", err)
	}
	return b.String(), nil
}

// BOMSkippingReader drops a UTF-8 byte order mark at the start of the
// stream and passes everything else through untouched.
type BOMSkippingReader struct {
	br      *bufio.Reader
	checked bool
}

// NewBOMSkippingReader wraps r.
func NewBOMSkippingReader(r io.Reader) *BOMSkippingReader {
	return &BOMSkippingReader{br: bufio.NewReader(r)}
}

// Read implements io.Reader.
func (r *BOMSkippingReader) Read(p []byte) (int, error) {
	if !r.checked {
		r.checked = true
		head, err := r.br.Peek(len(utf8BOM))
		if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
			return 0, err
		}
		if bytes.Equal(head, utf8BOM) {
			if _, err := r.br.Discard(len(utf8BOM)); err != nil {
				return 0, err
			}
		}
	}
	return r.br.Read(p)
}
