package app

import (
	"context"
	"log/slog"
	"time"

	"bloodlink-service/internal/catalog"
	"bloodlink-service/internal/domain"
)

// DefaultLeaderboardLimit caps leaderboard reads when the caller asks for nothing.
const DefaultLeaderboardLimit = 10

// ScoreStore persists scores and badges. Implementations must enforce
// uniqueness on (user, badge) so a racing duplicate award is a no-op.
type ScoreStore interface {
	InsertScore(ctx context.Context, entry domain.LeaderboardEntry) error
	Stats(ctx context.Context, userID int64, game string) (domain.StatSnapshot, error)
	// Leaderboard returns the best score per user for a game, ordered score
	// descending, ties broken by earliest achievement.
	Leaderboard(ctx context.Context, game string, limit int) ([]domain.LeaderboardEntry, error)
	// AwardBadge records a badge for a user; reports false when the user
	// already holds it.
	AwardBadge(ctx context.Context, userID int64, code string, at time.Time) (domain.Badge, bool, error)
	BadgesFor(ctx context.Context, userID int64) ([]domain.Badge, error)
}

// BadgeRule is a pure predicate over a user's cumulative stats, tagged with a
// stable badge code. Rules are evaluated in order after every saved score.
type BadgeRule struct {
	Code        string
	Name        string
	Description string
	Qualifies   func(s domain.StatSnapshot) bool
}

// BadgeRules is the fixed, ordered rule set for the blood facts challenge.
func BadgeRules() []BadgeRule {
	return []BadgeRule{
		{
			Code:        "first_game",
			Name:        "First Drop",
			Description: "Played the blood facts challenge for the first time.",
			Qualifies:   func(s domain.StatSnapshot) bool { return s.Plays >= 1 },
		},
		{
			Code:        "perfect_score",
			Name:        "Perfect Score",
			Description: "Answered every question in a round correctly.",
			Qualifies:   func(s domain.StatSnapshot) bool { return s.BestScore >= catalog.RoundLength },
		},
		{
			Code:        "dedicated_player",
			Name:        "Dedicated Player",
			Description: "Completed five rounds.",
			Qualifies:   func(s domain.StatSnapshot) bool { return s.Plays >= 5 },
		},
		{
			Code:        "blood_expert",
			Name:        "Blood Expert",
			Description: "Kept an average of eight or better across three rounds.",
			Qualifies:   func(s domain.StatSnapshot) bool { return s.Plays >= 3 && s.Average() >= 8 },
		},
	}
}

// ScoreService owns score persistence, badge awarding and leaderboard reads.
type ScoreService struct {
	store ScoreStore
	rules []BadgeRule
	log   *slog.Logger
	now   func() time.Time
}

func NewScoreService(store ScoreStore, rules []BadgeRule, log *slog.Logger) *ScoreService {
	if log == nil {
		log = slog.Default()
	}
	return &ScoreService{store: store, rules: rules, log: log, now: time.Now}
}

// SaveScore appends one leaderboard entry and evaluates badge rules against
// the user's cumulative history. Newly earned badges are returned; badges the
// user already holds are skipped, even under concurrent duplicate submissions.
func (s *ScoreService) SaveScore(ctx context.Context, userID int64, displayName, game string, score int) ([]domain.Badge, error) {
	if userID <= 0 {
		return nil, domain.ErrUnauthorized
	}
	if score < 0 || score > catalog.RoundLength {
		return nil, domain.ErrScoreOutOfRange
	}

	now := s.now()
	entry := domain.LeaderboardEntry{
		UserID:      userID,
		DisplayName: displayName,
		Game:        game,
		Score:       score,
		AchievedAt:  now,
	}
	if err := s.store.InsertScore(ctx, entry); err != nil {
		return nil, err
	}

	stats, err := s.store.Stats(ctx, userID, game)
	if err != nil {
		return nil, err
	}

	var earned []domain.Badge
	for _, rule := range s.rules {
		if !rule.Qualifies(stats) {
			continue
		}
		badge, awarded, err := s.store.AwardBadge(ctx, userID, rule.Code, now)
		if err != nil {
			// One failed award should not void the saved score.
			s.log.Error("badge award failed", "user", userID, "badge", rule.Code, "err", err)
			continue
		}
		if awarded {
			earned = append(earned, badge)
		}
	}
	return earned, nil
}

// Leaderboard returns the ranked board for a game, best per user.
func (s *ScoreService) Leaderboard(ctx context.Context, game string, limit int) ([]domain.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	return s.store.Leaderboard(ctx, game, limit)
}

// Badges returns every badge a user has earned.
func (s *ScoreService) Badges(ctx context.Context, userID int64) ([]domain.Badge, error) {
	return s.store.BadgesFor(ctx, userID)
}
