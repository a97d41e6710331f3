package app_test

import (
	"math/rand"
	"testing"

	"bloodlink-service/internal/app"
	"bloodlink-service/internal/catalog"
	"bloodlink-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleQuestionsDistinct(t *testing.T) {
	bank := catalog.BloodFacts()
	rnd := rand.New(rand.NewSource(42))

	sampled, err := app.SampleQuestions(bank, catalog.RoundLength, rnd)
	require.NoError(t, err)
	require.Len(t, sampled, catalog.RoundLength)

	seen := make(map[string]bool, len(sampled))
	for _, q := range sampled {
		assert.False(t, seen[q.Prompt], "duplicate question %q", q.Prompt)
		seen[q.Prompt] = true
	}
}

func TestSampleQuestionsBankTooSmall(t *testing.T) {
	bank := catalog.BloodFacts()
	bank.Questions = bank.Questions[:catalog.RoundLength]
	_, err := app.SampleQuestions(bank, catalog.RoundLength+1, nil)
	assert.ErrorIs(t, err, domain.ErrCatalogTooSmall)
}

func TestRoundScoresCorrectAnswers(t *testing.T) {
	round, err := app.StartRound(catalog.BloodFacts(), rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	require.Equal(t, app.RoundInProgress, round.State())

	for round.State() == app.RoundInProgress {
		q, ok := round.Current()
		require.True(t, ok)
		result, err := round.SubmitAnswer(q.CorrectIndex)
		require.NoError(t, err)
		assert.True(t, result.Correct)
		assert.Equal(t, q.CorrectIndex, result.CorrectIndex)
		assert.Equal(t, q.Explanation, result.Explanation)
		require.NoError(t, round.Advance())
	}

	assert.Equal(t, app.RoundFinished, round.State())
	assert.Equal(t, catalog.RoundLength, round.Score())
}

func TestRoundWrongAnswerDoesNotScore(t *testing.T) {
	round, err := app.StartRound(catalog.BloodFacts(), rand.New(rand.NewSource(2)))
	require.NoError(t, err)

	q, _ := round.Current()
	wrong := (q.CorrectIndex + 1) % len(q.Choices)
	result, err := round.SubmitAnswer(wrong)
	require.NoError(t, err)
	assert.False(t, result.Correct)
	assert.Equal(t, q.CorrectIndex, result.CorrectIndex)
	assert.Zero(t, round.Score())
}

func TestRoundDoubleSubmitDoesNotRescore(t *testing.T) {
	round, err := app.StartRound(catalog.BloodFacts(), rand.New(rand.NewSource(3)))
	require.NoError(t, err)

	q, _ := round.Current()
	first, err := round.SubmitAnswer(q.CorrectIndex)
	require.NoError(t, err)
	require.True(t, first.Correct)
	require.Equal(t, 1, round.Score())

	// A double-click repeats the recorded result without rescoring, even
	// when the repeat picks a different choice.
	repeat, err := round.SubmitAnswer((q.CorrectIndex + 1) % len(q.Choices))
	require.NoError(t, err)
	assert.Equal(t, first, repeat)
	assert.Equal(t, 1, round.Score())
}

func TestRoundAdvanceRequiresAnswer(t *testing.T) {
	round, err := app.StartRound(catalog.BloodFacts(), rand.New(rand.NewSource(4)))
	require.NoError(t, err)

	assert.ErrorIs(t, round.Advance(), domain.ErrRoundNotAnswered)
	assert.Zero(t, round.Position())
}

func TestRoundSubmitOutOfRangeChoice(t *testing.T) {
	round, err := app.StartRound(catalog.BloodFacts(), rand.New(rand.NewSource(5)))
	require.NoError(t, err)

	q, _ := round.Current()
	_, err = round.SubmitAnswer(-1)
	assert.ErrorIs(t, err, domain.ErrChoiceOutOfRange)
	_, err = round.SubmitAnswer(len(q.Choices))
	assert.ErrorIs(t, err, domain.ErrChoiceOutOfRange)
	assert.Zero(t, round.Score())
}

func TestRoundFinishedRejectsPlay(t *testing.T) {
	round, err := app.StartRoundOf(catalog.BloodFacts(), 1, rand.New(rand.NewSource(6)))
	require.NoError(t, err)

	q, _ := round.Current()
	_, err = round.SubmitAnswer(q.CorrectIndex)
	require.NoError(t, err)
	require.NoError(t, round.Advance())
	require.Equal(t, app.RoundFinished, round.State())

	_, err = round.SubmitAnswer(0)
	assert.ErrorIs(t, err, domain.ErrRoundFinished)
	assert.ErrorIs(t, round.Advance(), domain.ErrRoundFinished)
	_, ok := round.Current()
	assert.False(t, ok)
}
