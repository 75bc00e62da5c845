package fuzzy

import (
	"sort"
)

// Match is one scored choice
type Match struct {
	Choice string
	Index  int // Position of Choice in the input slice
	Score  int
}

// Extract scores query against every choice with WRatio and returns the best
// limit matches, highest first. Equal scores keep input order.
// A limit <= 0 returns every match.
func Extract(query string, choices []string, limit int) []Match {
	if len(choices) == 0 {
		return nil
	}

	matches := make([]Match, len(choices))
	for i, choice := range choices {
		matches[i] = Match{Choice: choice, Index: i, Score: WRatio(query, choice)}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// Scores returns the WRatio of query against every choice, in input order
func Scores(query string, choices []string) []int {
	scores := make([]int, len(choices))
	for i, choice := range choices {
		scores[i] = WRatio(query, choice)
	}
	return scores
}
