package csvparse

// sanitize.go holds streaming readers applied to sheet bodies before parsing.
//
//   - UTF8Sanitizer: replaces invalid UTF-8 with U+FFFD
//   - CountingReader: counts bytes for size limits and logging

import (
	"io"
	"unicode/utf8"
)

const sanitizeChunk = 4096

var replacementChar = []byte(string(utf8.RuneError))

// UTF8Sanitizer replaces each run of invalid UTF-8 bytes with a single
// U+FFFD, matching strings.ToValidUTF8, without buffering the whole input.
// A multi-byte sequence split across reads of the underlying reader is
// held back until it is complete.
type UTF8Sanitizer struct {
	r   io.Reader
	buf []byte
	in  []byte // undecoded tail, at most one partial rune
	out []byte // sanitized bytes not yet returned
	err error  // sticky error from r

	// inInvalid is set while inside a run of invalid bytes.
	inInvalid bool
}

// NewUTF8Sanitizer wraps r.
func NewUTF8Sanitizer(r io.Reader) *UTF8Sanitizer {
	return &UTF8Sanitizer{r: r, buf: make([]byte, sanitizeChunk)}
}

// Read implements io.Reader.
func (s *UTF8Sanitizer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	for len(s.out) == 0 {
		if s.err != nil {
			return 0, s.err
		}
		s.fill()
	}
	n := copy(p, s.out)
	s.out = s.out[n:]
	return n, nil
}

func (s *UTF8Sanitizer) fill() {
	n, err := s.r.Read(s.buf)
	s.in = append(s.in, s.buf[:n]...)
	s.err = err
	atEOF := err != nil

	i := 0
	for i < len(s.in) {
		c := s.in[i]
		if c < utf8.RuneSelf {
			s.out = append(s.out, c)
			s.inInvalid = false
			i++
			continue
		}
		if !atEOF && !utf8.FullRune(s.in[i:]) {
			break
		}

		r, size := utf8.DecodeRune(s.in[i:])
		if r == utf8.RuneError && size == 1 {
			if !s.inInvalid {
				s.out = append(s.out, replacementChar...)
				s.inInvalid = true
			}
			i++
			continue
		}
		s.out = append(s.out, s.in[i:i+size]...)
		s.inInvalid = false
		i += size
	}
	s.in = s.in[:copy(s.in, s.in[i:])]
}

// CountingReader counts the bytes read through it.
type CountingReader struct {
	r         io.Reader
	BytesRead int64
}

// NewCountingReader wraps r.
func NewCountingReader(r io.Reader) *CountingReader {
	return &CountingReader{r: r}
}

// Read implements io.Reader.
func (c *CountingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.BytesRead += int64(n)
	return n, err
}
