package app_test

import (
	"strings"
	"testing"

	"bloodlink-service/internal/app"
	"bloodlink-service/internal/catalog"
	"bloodlink-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchFAQExactQuestionAnyCase(t *testing.T) {
	table := catalog.FaqEntries()
	for _, entry := range table {
		answer, ok := app.MatchFAQ(entry.Question, table)
		require.True(t, ok, "no match for %q", entry.Question)
		assert.Equal(t, entry.Answer, answer)

		answer, ok = app.MatchFAQ(strings.ToUpper(entry.Question), table)
		require.True(t, ok, "no case-insensitive match for %q", entry.Question)
		assert.Equal(t, entry.Answer, answer)
	}
}

func TestMatchFAQContainsKeyPhrase(t *testing.T) {
	table := catalog.FaqEntries()
	answer, ok := app.MatchFAQ("Hi there, who can donate blood? Asking for a friend.", table)
	require.True(t, ok)
	assert.Equal(t, table[0].Answer, answer)
}

func TestMatchFAQIgnoresWhitespaceAndPunctuation(t *testing.T) {
	table := catalog.FaqEntries()
	answer, ok := app.MatchFAQ("  how   often can I donate  ", table)
	require.True(t, ok)
	assert.Equal(t, "Whole blood donation can be done every 56 days (8 weeks).", answer)
}

func TestMatchFAQFirstMatchWins(t *testing.T) {
	table := []domain.FaqEntry{
		{Question: "donate", Answer: "first"},
		{Question: "donate blood", Answer: "second"},
	}
	answer, ok := app.MatchFAQ("can I donate blood", table)
	require.True(t, ok)
	assert.Equal(t, "first", answer)
}

func TestMatchFAQNoMatch(t *testing.T) {
	table := catalog.FaqEntries()
	_, ok := app.MatchFAQ("asdkjasjd random gibberish", table)
	assert.False(t, ok)

	_, ok = app.MatchFAQ("   ", table)
	assert.False(t, ok)
}
