// Package fuzzy scores short strings against each other on a 0-100 scale.
// Scores follow the weighted-ratio family (ratio, partial ratio, token sort
// and token set) over an insert/delete edit distance.
package fuzzy

import (
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/adrg/strutil/metrics"
)

const (
	unbaseScale = 0.95
	partialFull = 0.90
	partialWide = 0.60
)

// indel is Levenshtein with substitutions priced as a delete plus an insert
var indel = &metrics.Levenshtein{
	CaseSensitive: true,
	InsertCost:    1,
	DeleteCost:    1,
	ReplaceCost:   2,
}

// Process lowercases s, replaces every rune that is not a letter, digit or
// underscore with a space and trims the result. Letters outside ASCII are kept.
func Process(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteByte(' ')
		}
	}
	return strings.TrimSpace(b.String())
}

// Ratio returns the normalized indel similarity of a and b
func Ratio(a, b string) int {
	return round(ratio(a, b))
}

func ratio(a, b string) float64 {
	lenA, lenB := len([]rune(a)), len([]rune(b))
	if lenA == 0 || lenB == 0 {
		return 0
	}
	total := lenA + lenB
	return 100 * float64(total-indel.Distance(a, b)) / float64(total)
}

// PartialRatio returns the best Ratio of the shorter string against every
// equal-length window of the longer one.
func PartialRatio(a, b string) int {
	return round(partialRatio(a, b))
}

func partialRatio(a, b string) float64 {
	shorter, longer := []rune(a), []rune(b)
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if len(shorter) == 0 {
		return 0
	}

	s := string(shorter)
	best := 0.0
	for start := 0; start+len(shorter) <= len(longer); start++ {
		r := ratio(s, string(longer[start:start+len(shorter)]))
		if r > best {
			best = r
			if best >= 99.5 {
				return 100
			}
		}
	}
	return best
}

// TokenSortRatio compares a and b after sorting their tokens
func TokenSortRatio(a, b string) int {
	return round(ratio(sortedTokens(Process(a)), sortedTokens(Process(b))))
}

// PartialTokenSortRatio is TokenSortRatio using PartialRatio
func PartialTokenSortRatio(a, b string) int {
	return round(partialRatio(sortedTokens(Process(a)), sortedTokens(Process(b))))
}

// TokenSetRatio compares the shared tokens of a and b against each side's remainder
func TokenSetRatio(a, b string) int {
	return round(tokenSet(Process(a), Process(b), ratio))
}

// PartialTokenSetRatio is TokenSetRatio using PartialRatio
func PartialTokenSetRatio(a, b string) int {
	return round(tokenSet(Process(a), Process(b), partialRatio))
}

// WRatio returns the weighted ratio of a and b. Both inputs are processed first;
// when either is empty after processing the score is 0.
func WRatio(a, b string) int {
	p1, p2 := Process(a), Process(b)
	len1, len2 := utf8.RuneCountInString(p1), utf8.RuneCountInString(p2)
	if len1 == 0 || len2 == 0 {
		return 0
	}

	base := float64(Ratio(p1, p2))
	lenRatio := float64(max(len1, len2)) / float64(min(len1, len2))

	if lenRatio < 1.5 {
		tsor := float64(round(ratio(sortedTokens(p1), sortedTokens(p2)))) * unbaseScale
		tser := float64(round(tokenSet(p1, p2, ratio))) * unbaseScale
		return round(math.Max(base, math.Max(tsor, tser)))
	}

	partialScale := partialFull
	if lenRatio > 8 {
		partialScale = partialWide
	}

	partial := float64(round(partialRatio(p1, p2))) * partialScale
	ptsor := float64(round(partialRatio(sortedTokens(p1), sortedTokens(p2)))) * unbaseScale * partialScale
	ptser := float64(round(tokenSet(p1, p2, partialRatio))) * unbaseScale * partialScale
	return round(math.Max(math.Max(base, partial), math.Max(ptsor, ptser)))
}

func sortedTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

func tokenSet(p1, p2 string, scorer func(a, b string) float64) float64 {
	if p1 == "" || p2 == "" {
		return 0
	}

	set1 := tokenSetOf(p1)
	set2 := tokenSetOf(p2)

	var intersection, diff1to2, diff2to1 []string
	for tok := range set1 {
		if _, ok := set2[tok]; ok {
			intersection = append(intersection, tok)
		} else {
			diff1to2 = append(diff1to2, tok)
		}
	}
	for tok := range set2 {
		if _, ok := set1[tok]; !ok {
			diff2to1 = append(diff2to1, tok)
		}
	}
	sort.Strings(intersection)
	sort.Strings(diff1to2)
	sort.Strings(diff2to1)

	sect := strings.Join(intersection, " ")
	combined1to2 := strings.TrimSpace(sect + " " + strings.Join(diff1to2, " "))
	combined2to1 := strings.TrimSpace(sect + " " + strings.Join(diff2to1, " "))

	return math.Max(
		math.Max(scorer(sect, combined1to2), scorer(sect, combined2to1)),
		scorer(combined1to2, combined2to1),
	)
}

func tokenSetOf(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(s) {
		set[tok] = struct{}{}
	}
	return set
}

func round(f float64) int {
	return int(math.RoundToEven(f))
}
