package similarity

import (
	"regexp"
	"strings"
)

// digitRuns matches maximal digit runs in a title ("Halo 3" -> ["3"])
var digitRuns = regexp.MustCompile(`\d+`)

// Score computes how closely two free-text game titles resemble each other.
// The result is roughly a percentage but is only clamped to 100 on the
// number-match boost path; callers must compare scores, not assume a bound.
//
// Logic:
//  1. Case-fold both titles and compute a character-overlap score: the
//     longest common substring is found, the same procedure recurses on the
//     text before and after it, and all matched segment lengths are summed.
//  2. Extract digit runs from the original-case titles as number tokens.
//  3. Titles that both carry numbers are boosted 20% (capped at 100) when
//     the numbers intersect, or cut to 20% when they are disjoint, so that
//     "Game 2" never beats "Game 3" on text overlap alone. A numbered
//     query against an unnumbered candidate is cut to 70%.
//
// The number adjustment is deliberately directional: only the query side
// triggers the 0.7 penalty, so Score(a, b) and Score(b, a) can differ.
func Score(original, candidate string) float64 {
	base := overlapPercent(strings.ToLower(original), strings.ToLower(candidate))

	originalNumbers := digitRuns.FindAllString(original, -1)
	candidateNumbers := digitRuns.FindAllString(candidate, -1)

	switch {
	case len(originalNumbers) > 0 && len(candidateNumbers) > 0:
		if intersects(originalNumbers, candidateNumbers) {
			base = base * 1.2
			if base > 100 {
				base = 100
			}
		} else {
			base = base * 0.2
		}
	case len(originalNumbers) > 0:
		base = base * 0.7
	}

	return base
}

// overlapPercent returns 200*matched/(len(a)+len(b)) where matched is the
// total length of common segments found by the recursive longest-common-
// substring procedure. Zero when both strings are empty.
func overlapPercent(a, b string) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 0
	}
	return float64(200*commonChars(a, b)) / float64(total)
}

// commonChars sums the lengths of matched segments: the longest common
// substring plus, recursively, the common segments of the text before and
// after it on each side.
func commonChars(a, b string) int {
	posA, posB, max := longestCommon(a, b)
	if max == 0 {
		return 0
	}
	sum := max
	sum += commonChars(a[:posA], b[:posB])
	sum += commonChars(a[posA+max:], b[posB+max:])
	return sum
}

// longestCommon finds the longest common substring by a left-to-right scan
// over both strings. The strict > keeps the earliest starting position on
// ties, which makes the whole score deterministic.
func longestCommon(a, b string) (posA, posB, max int) {
	for i := 0; i < len(a); i++ {
		for j := 0; j < len(b); j++ {
			l := 0
			for i+l < len(a) && j+l < len(b) && a[i+l] == b[j+l] {
				l++
			}
			if l > max {
				posA, posB, max = i, j, l
			}
		}
	}
	return posA, posB, max
}

// intersects reports whether the two token lists share at least one value.
func intersects(a, b []string) bool {
	seen := make(map[string]struct{}, len(a))
	for _, t := range a {
		seen[t] = struct{}{}
	}
	for _, t := range b {
		if _, ok := seen[t]; ok {
			return true
		}
	}
	return false
}
