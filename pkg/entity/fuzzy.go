package entity

import (
	"slices"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Similarity scores are percentages in [0, 100].

// Ratio is the normalised Levenshtein similarity of a and b.
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 && len(rb) == 0 {
		return 100
	}
	longest := max(len(ra), len(rb))
	d := levenshtein.ComputeDistance(a, b)
	return 100 * (1 - float64(d)/float64(longest))
}

// PartialRatio is the best Ratio of the shorter string against every
// window of the same length in the longer one.
func PartialRatio(a, b string) float64 {
	short, long := []rune(a), []rune(b)
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) == 0 {
		if len(long) == 0 {
			return 100
		}
		return 0
	}
	s := string(short)
	best := 0.0
	for i := 0; i+len(short) <= len(long); i++ {
		r := Ratio(s, string(long[i:i+len(short)]))
		if r > best {
			best = r
			if best == 100 {
				break
			}
		}
	}
	return best
}

func sortedTokens(s string) []string {
	tokens := strings.Fields(s)
	slices.Sort(tokens)
	return tokens
}

// TokenSortRatio compares both strings with their words sorted.
func TokenSortRatio(a, b string) float64 {
	return Ratio(strings.Join(sortedTokens(a), " "), strings.Join(sortedTokens(b), " "))
}

func tokenSets(a, b string) (common, onlyA, onlyB string) {
	ta, tb := slices.Compact(sortedTokens(a)), slices.Compact(sortedTokens(b))
	var c, da, db []string
	for _, t := range ta {
		if _, found := slices.BinarySearch(tb, t); found {
			c = append(c, t)
		} else {
			da = append(da, t)
		}
	}
	for _, t := range tb {
		if _, found := slices.BinarySearch(ta, t); !found {
			db = append(db, t)
		}
	}
	return strings.Join(c, " "), strings.Join(da, " "), strings.Join(db, " ")
}

func joinNonEmpty(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + " " + b
}

// TokenSetRatio compares the shared words of a and b with each side's
// remainder. A string whose words are a subset of the other's scores 100.
func TokenSetRatio(a, b string) float64 {
	common, da, db := tokenSets(a, b)
	if common == "" {
		return Ratio(da, db)
	}
	if da == "" || db == "" {
		return 100
	}
	ca, cb := joinNonEmpty(common, da), joinNonEmpty(common, db)
	return max(Ratio(common, ca), Ratio(common, cb), Ratio(ca, cb))
}

func partialTokenRatio(a, b string) float64 {
	common, da, db := tokenSets(a, b)
	if common != "" {
		return 100
	}
	return max(
		PartialRatio(strings.Join(sortedTokens(a), " "), strings.Join(sortedTokens(b), " ")),
		PartialRatio(da, db),
	)
}

const (
	unbaseScale = 0.95
	// length ratio at which partial matching starts, and at which it is
	// scaled down further
	partialFrom = 1.5
	partialFar  = 8.0
)

// WRatio combines the ratios above, weighting partial matches by how much
// the string lengths differ.
func WRatio(a, b string) float64 {
	la, lb := len([]rune(a)), len([]rune(b))
	if la == 0 || lb == 0 {
		return 0
	}
	lenRatio := float64(max(la, lb)) / float64(min(la, lb))
	end := Ratio(a, b)
	if lenRatio < partialFrom {
		return max(end, TokenSortRatio(a, b)*unbaseScale, TokenSetRatio(a, b)*unbaseScale)
	}
	partialScale := 0.9
	if lenRatio >= partialFar {
		partialScale = 0.6
	}
	end = max(end, PartialRatio(a, b)*partialScale)
	return max(end, partialTokenRatio(a, b)*unbaseScale*partialScale)
}

// ExtractOne returns the index of the choice most similar to query by
// WRatio, provided its score is at least cutoff. Ties keep the earliest.
func ExtractOne(query string, choices []string, cutoff float64) (index int, score float64, ok bool) {
	index = -1
	for i, c := range choices {
		s := WRatio(query, c)
		if s < cutoff || (index >= 0 && s <= score) {
			continue
		}
		index, score = i, s
		if s == 100 {
			break
		}
	}
	return index, score, index >= 0
}
