// Package match implements the fuzzy answer matcher: accent-insensitive
// normalization followed by an edit-distance check with a tolerance that
// scales with answer length.
package match

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	separators = strings.NewReplacer("-", " ", "_", " ")
	spaces     = regexp.MustCompile(`\s+`)
	numeric    = regexp.MustCompile(`^\d+$`)
)

// Normalize lowercases s, strips diacritics, folds hyphens/underscores into
// spaces, collapses whitespace runs and trims. Idempotent.
func Normalize(s string) string {
	s = strings.ToLower(s)
	if folded, _, err := transform.String(stripMarks, s); err == nil {
		s = folded
	}
	s = separators.Replace(s)
	s = spaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// IsCorrect reports whether a submitted answer matches the canonical one.
// Purely numeric canonical answers (department numbers, years) require an
// exact match: a close number is simply a wrong number.
func IsCorrect(userAnswer, correctAnswer string) bool {
	user := Normalize(userAnswer)
	correct := Normalize(correctAnswer)

	if user == correct {
		return true
	}
	if numeric.MatchString(strings.TrimSpace(correctAnswer)) {
		return false
	}

	maxLength := max(utf8.RuneCountInString(user), utf8.RuneCountInString(correct))
	return levenshtein(user, correct) <= tolerance(maxLength)
}

// tolerance is the maximum accepted edit distance for answers of the given length.
func tolerance(maxLength int) int {
	switch {
	case maxLength <= 4:
		return 1
	case maxLength <= 8:
		return 2
	default:
		return maxLength * 2 / 10
	}
}

// levenshtein computes the edit distance between a and b with unit costs,
// using two rolling rows instead of the full matrix.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(ra)+1)
	curr := make([]int, len(ra)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(rb); i++ {
		curr[0] = i
		for j := 1; j <= len(ra); j++ {
			cost := 1
			if rb[i-1] == ra[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j-1]+cost, curr[j-1]+1, prev[j]+1)
		}
		prev, curr = curr, prev
	}
	return prev[len(ra)]
}
