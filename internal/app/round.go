package app

import (
	"math/rand"
	"time"

	"bloodlink-service/internal/catalog"
	"bloodlink-service/internal/domain"
)

// RoundState is the lifecycle of a trivia round.
type RoundState int

const (
	RoundNotStarted RoundState = iota
	RoundInProgress
	RoundFinished
)

// Round is one playthrough: a fixed-length shuffled sample of the catalog
// with client-equivalent position/score tracking. A Round belongs to a single
// session and is not safe for concurrent use.
type Round struct {
	questions  []domain.TriviaQuestion
	position   int
	score      int
	answered   bool
	lastResult domain.AnswerResult
	state      RoundState
}

// SampleQuestions draws n distinct questions from the catalog in uniform
// random order. Fails fast when the bank is smaller than the round.
func SampleQuestions(c domain.TriviaCatalog, n int, rnd *rand.Rand) ([]domain.TriviaQuestion, error) {
	if err := catalog.Validate(c); err != nil {
		return nil, err
	}
	if n > len(c.Questions) {
		return nil, domain.ErrCatalogTooSmall
	}
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	perm := rnd.Perm(len(c.Questions))
	sampled := make([]domain.TriviaQuestion, n)
	for i := 0; i < n; i++ {
		sampled[i] = c.Questions[perm[i]]
	}
	return sampled, nil
}

// StartRound samples a full round from the catalog and begins play.
func StartRound(c domain.TriviaCatalog, rnd *rand.Rand) (*Round, error) {
	questions, err := SampleQuestions(c, catalog.RoundLength, rnd)
	if err != nil {
		return nil, err
	}
	return &Round{questions: questions, state: RoundInProgress}, nil
}

// StartRoundOf is StartRound with an explicit length, used by tests that
// play a shorter round.
func StartRoundOf(c domain.TriviaCatalog, length int, rnd *rand.Rand) (*Round, error) {
	questions, err := SampleQuestions(c, length, rnd)
	if err != nil {
		return nil, err
	}
	return &Round{questions: questions, state: RoundInProgress}, nil
}

// State reports the round lifecycle phase.
func (r *Round) State() RoundState { return r.state }

// Score reports points accumulated so far, one per correct answer.
func (r *Round) Score() int { return r.score }

// Position reports the zero-based index of the current question.
func (r *Round) Position() int { return r.position }

// Length reports how many questions the round holds.
func (r *Round) Length() int { return len(r.questions) }

// Current returns the question at the current position.
func (r *Round) Current() (domain.TriviaQuestion, bool) {
	if r.state != RoundInProgress {
		return domain.TriviaQuestion{}, false
	}
	return r.questions[r.position], true
}

// SubmitAnswer scores choiceIndex against the current question. Only the
// first submission per question counts; repeats return the recorded result
// unchanged so double-clicks cannot double-score.
func (r *Round) SubmitAnswer(choiceIndex int) (domain.AnswerResult, error) {
	if r.state != RoundInProgress {
		return domain.AnswerResult{}, domain.ErrRoundFinished
	}
	if r.answered {
		return r.lastResult, nil
	}
	q := r.questions[r.position]
	if choiceIndex < 0 || choiceIndex >= len(q.Choices) {
		return domain.AnswerResult{}, domain.ErrChoiceOutOfRange
	}
	result := domain.AnswerResult{
		Correct:      choiceIndex == q.CorrectIndex,
		CorrectIndex: q.CorrectIndex,
		Explanation:  q.Explanation,
	}
	if result.Correct {
		r.score++
	}
	r.answered = true
	r.lastResult = result
	return result, nil
}

// Advance moves to the next question, or finishes the round after the last
// one. Advancing an unanswered question is an error so scoring cannot be
// skipped.
func (r *Round) Advance() error {
	if r.state != RoundInProgress {
		return domain.ErrRoundFinished
	}
	if !r.answered {
		return domain.ErrRoundNotAnswered
	}
	r.position++
	r.answered = false
	r.lastResult = domain.AnswerResult{}
	if r.position == len(r.questions) {
		r.state = RoundFinished
	}
	return nil
}
