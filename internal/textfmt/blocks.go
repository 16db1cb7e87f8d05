package textfmt

import (
	"regexp"
	"strings"
	"unicode"
)

// Kind is the display treatment of one structured line.
type Kind string

const (
	KindNumbered  Kind = "numbered"
	KindLettered  Kind = "lettered"
	KindBullet    Kind = "bullet"
	KindParagraph Kind = "paragraph"
)

// Block is one classified line. Marker is "3.", "b." or "•" for list
// items and empty for paragraphs.
type Block struct {
	Kind    Kind   `json:"kind"`
	Marker  string `json:"marker,omitempty"`
	Content string `json:"content"`
}

var (
	numberedMarker = regexp.MustCompile(`^(\d+\.)\s*`)
	letteredMarker = regexp.MustCompile(`^([a-z]\.)\s*`)
)

// Classify matches a single line against the marker grammar. The line is
// trimmed first.
func Classify(line string) Block {
	line = strings.TrimSpace(line)

	if m := numberedMarker.FindStringSubmatch(line); m != nil {
		return Block{Kind: KindNumbered, Marker: m[1], Content: line[len(m[0]):]}
	}
	if m := letteredMarker.FindStringSubmatch(line); m != nil {
		return Block{Kind: KindLettered, Marker: m[1], Content: line[len(m[0]):]}
	}
	if strings.HasPrefix(line, Bullet) {
		return Block{
			Kind:    KindBullet,
			Marker:  Bullet,
			Content: strings.TrimLeftFunc(line[len(Bullet):], unicode.IsSpace),
		}
	}
	return Block{Kind: KindParagraph, Content: line}
}

// Blocks splits structured text on newlines, drops blank lines and
// classifies the rest. Empty input and the "-" placeholder yield nil.
func Blocks(structured string) []Block {
	if structured == "" || structured == Empty {
		return nil
	}

	var blocks []Block
	for _, line := range strings.Split(structured, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		blocks = append(blocks, Classify(line))
	}
	return blocks
}

