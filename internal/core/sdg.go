package core

import (
	"regexp"
	"slices"
	"strconv"

	"github.com/JonMunkholm/proker/internal/textfmt"
)

// The 17 UN Sustainable Development Goals.
const (
	MinSDG = 1
	MaxSDG = 17
)

var digitRun = regexp.MustCompile(`\d+`)

// SDGNumbers extracts goal numbers from free text such as "3,4,11",
// "SDG 3, 4, 11" or "3.4.11". Values outside 1..17 are dropped; the result is
// unique and ascending. Returns nil when there is nothing to show.
func SDGNumbers(text string) []int {
	if text == "" || text == textfmt.Empty {
		return nil
	}

	var goals []int
	for _, m := range digitRun.FindAllString(text, -1) {
		n, err := strconv.Atoi(m)
		if err != nil || n < MinSDG || n > MaxSDG {
			continue
		}
		if !slices.Contains(goals, n) {
			goals = append(goals, n)
		}
	}
	slices.Sort(goals)
	return goals
}

// SDGImagePath returns the badge image path for a goal.
func SDGImagePath(n int) string {
	return "/sdgs/sdg-" + strconv.Itoa(n) + ".png"
}
