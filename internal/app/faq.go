package app

import (
	"strings"

	"bloodlink-service/internal/domain"
)

// MatchFAQ scans the table in declaration order and returns the first entry
// whose question matches the input, either by normalized equality or because
// the input contains the question's key phrase. Pure function, no side effects.
func MatchFAQ(input string, table []domain.FaqEntry) (string, bool) {
	norm := normalize(input)
	if norm == "" {
		return "", false
	}
	for _, entry := range table {
		key := normalize(entry.Question)
		if norm == key || strings.Contains(norm, key) {
			return entry.Answer, true
		}
	}
	return "", false
}

// normalize lowercases, strips trailing punctuation and collapses whitespace
// so letter case and spacing never decide a match.
func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimRight(s, "?!. ")
	return strings.Join(strings.Fields(s), " ")
}
