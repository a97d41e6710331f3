package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"bloodlink-service/internal/app"
	"bloodlink-service/internal/domain"
)

// ScoreStore is an in-memory implementation of app.ScoreStore, used in tests
// and when no Postgres URL is configured. It mirrors the SQL semantics:
// scores are append-only and (user, badge) is unique.
type ScoreStore struct {
	mu      sync.Mutex
	scores  []domain.LeaderboardEntry
	badges  map[int64]map[string]domain.Badge // userID -> code -> badge
	defined map[string]app.BadgeRule
}

func NewScoreStore(rules []app.BadgeRule) *ScoreStore {
	defined := make(map[string]app.BadgeRule, len(rules))
	for _, r := range rules {
		defined[r.Code] = r
	}
	return &ScoreStore{
		badges:  make(map[int64]map[string]domain.Badge),
		defined: defined,
	}
}

func (s *ScoreStore) InsertScore(_ context.Context, entry domain.LeaderboardEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores = append(s.scores, entry)
	return nil
}

func (s *ScoreStore) Stats(_ context.Context, userID int64, game string) (domain.StatSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var stats domain.StatSnapshot
	for _, e := range s.scores {
		if e.UserID != userID || e.Game != game {
			continue
		}
		stats.Plays++
		stats.TotalScore += e.Score
		if e.Score > stats.BestScore {
			stats.BestScore = e.Score
		}
	}
	return stats, nil
}

func (s *ScoreStore) Leaderboard(_ context.Context, game string, limit int) ([]domain.LeaderboardEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Best score per user, earliest achievement wins ties.
	best := make(map[int64]domain.LeaderboardEntry)
	for _, e := range s.scores {
		if e.Game != game {
			continue
		}
		cur, ok := best[e.UserID]
		if !ok || e.Score > cur.Score || (e.Score == cur.Score && e.AchievedAt.Before(cur.AchievedAt)) {
			best[e.UserID] = e
		}
	}

	entries := make([]domain.LeaderboardEntry, 0, len(best))
	for _, e := range best {
		entries = append(entries, e)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].AchievedAt.Before(entries[j].AchievedAt)
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (s *ScoreStore) AwardBadge(_ context.Context, userID int64, code string, at time.Time) (domain.Badge, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	owned, ok := s.badges[userID]
	if !ok {
		owned = make(map[string]domain.Badge)
		s.badges[userID] = owned
	}
	if existing, ok := owned[code]; ok {
		return existing, false, nil
	}
	rule := s.defined[code]
	badge := domain.Badge{
		Code:        code,
		Name:        rule.Name,
		Description: rule.Description,
		AwardedAt:   at,
	}
	owned[code] = badge
	return badge, true, nil
}

func (s *ScoreStore) BadgesFor(_ context.Context, userID int64) ([]domain.Badge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	owned := s.badges[userID]
	out := make([]domain.Badge, 0, len(owned))
	for _, b := range owned {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AwardedAt.Before(out[j].AwardedAt) })
	return out, nil
}
