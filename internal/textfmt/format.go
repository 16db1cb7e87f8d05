// Package textfmt rewrites loosely structured free text into line-oriented
// list markup and classifies the resulting lines for rendering.
//
// Format applies a fixed, ordered list of rewrite rules (see Rules). Order
// is part of the contract: numbered items are detected before lettered
// items, and both before dashes are turned into bullets, so that a later
// pass never reinterprets a marker inserted by an earlier one.
package textfmt

import (
	"regexp"
	"strings"
)

// Empty is the placeholder used for cells without content. Format returns
// it unchanged.
const Empty = "-"

// Bullet is the glyph every bullet line starts with after formatting.
const Bullet = "•"

// Stage groups rules into the passes that Format runs in order.
type Stage int

const (
	StageNumbered Stage = iota + 1
	StageLettered
	StageBullet
	StageCleanup
)

func (s Stage) String() string {
	switch s {
	case StageNumbered:
		return "numbered"
	case StageLettered:
		return "lettered"
	case StageBullet:
		return "bullet"
	case StageCleanup:
		return "cleanup"
	default:
		return "unknown"
	}
}

// Rule is one rewrite step. Every occurrence of Pattern is replaced with
// Replacement, using regexp.Expand syntax.
//
// Go's regexp package has no lookahead, so rules that only peek at the next
// character capture it instead and write it back in Replacement.
type Rule struct {
	Name        string
	Stage       Stage
	Pattern     *regexp.Regexp
	Replacement string
}

// Apply rewrites s with the rule.
func (r Rule) Apply(s string) string {
	return r.Pattern.ReplaceAllString(s, r.Replacement)
}

// rules is evaluated top to bottom. Numbers are limited to 1..49 so that
// years and measurements ("2024 Januari", "50 Kg") are not split.
var rules = []Rule{
	{
		Name:        "number-dot",
		Stage:       StageNumbered,
		Pattern:     regexp.MustCompile(`(?:^|\s)([1-9]|[1-4][0-9])\.\s*([A-Z])`),
		Replacement: "\n${1}. ${2}",
	},
	{
		Name:        "number-space",
		Stage:       StageNumbered,
		Pattern:     regexp.MustCompile(`\s+([1-9]|[1-4][0-9])\s+([A-Z][a-z])`),
		Replacement: "\n${1}. ${2}",
	},
	{
		Name:        "letter-dot",
		Stage:       StageLettered,
		Pattern:     regexp.MustCompile(`\s+([a-d])\.\s*([A-Z])`),
		Replacement: "\n${1}. ${2}",
	},
	{
		Name:        "dash-start",
		Stage:       StageBullet,
		Pattern:     regexp.MustCompile(`^-\s+`),
		Replacement: Bullet + " ",
	},
	{
		Name:        "dash-after-newline",
		Stage:       StageBullet,
		Pattern:     regexp.MustCompile(`\n-\s+`),
		Replacement: "\n" + Bullet + " ",
	},
	{
		Name:        "dash-between-spaces",
		Stage:       StageBullet,
		Pattern:     regexp.MustCompile(`\s+-\s+`),
		Replacement: "\n" + Bullet + " ",
	},
	{
		Name:        "bullet-glyphs",
		Stage:       StageBullet,
		Pattern:     regexp.MustCompile(`\s*[◦▪▫]\s*`),
		Replacement: "\n" + Bullet + " ",
	},
	{
		Name:        "trim-line-start",
		Stage:       StageCleanup,
		Pattern:     regexp.MustCompile(`\n\s+`),
		Replacement: "\n",
	},
	{
		Name:        "trim-line-end",
		Stage:       StageCleanup,
		Pattern:     regexp.MustCompile(`\s+\n`),
		Replacement: "\n",
	},
	{
		Name:        "collapse-blank-lines",
		Stage:       StageCleanup,
		Pattern:     regexp.MustCompile(`\n{3,}`),
		Replacement: "\n\n",
	},
}

// Rules returns a copy of the ordered rule list used by Format.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// Format structures raw for line-by-line rendering. Empty input and the
// placeholder "-" are returned unchanged.
func Format(raw string) string {
	if raw == "" || raw == Empty {
		return raw
	}

	// Collapsing with strings.Fields leaves single ASCII spaces as the only
	// whitespace, so the \s classes below never see Unicode spaces.
	s := strings.Join(strings.Fields(raw), " ")

	for _, rule := range rules {
		s = rule.Apply(s)
	}

	return strings.TrimSpace(s)
}
