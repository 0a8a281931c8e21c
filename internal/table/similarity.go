package table

import (
	"errors"
	"strings"
)

// ErrEmptySimilarityInput is returned when both strings are empty: the
// character-set union is empty and the ratio is undefined. Callers must
// supply at least one non-empty probe.
var ErrEmptySimilarityInput = errors.New("similarity is undefined for two empty strings")

// Similarity scores how alike two strings are as the Jaccard index of
// their sets of distinct case-folded characters: |A∩B| / |A∪B|, in [0, 1].
// It is symmetric, 1.0 whenever both strings use exactly the same set of
// characters, and 0.0 when they share none.
func Similarity(a, b string) (float64, error) {
	setA := runeSet(a)
	setB := runeSet(b)

	intersection := 0
	union := len(setA)
	for r := range setB {
		if _, ok := setA[r]; ok {
			intersection++
		} else {
			union++
		}
	}

	if union == 0 {
		return 0, ErrEmptySimilarityInput
	}
	return float64(intersection) / float64(union), nil
}

func runeSet(s string) map[rune]struct{} {
	set := make(map[rune]struct{}, len(s))
	for _, r := range strings.ToLower(s) {
		set[r] = struct{}{}
	}
	return set
}
