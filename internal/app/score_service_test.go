package app_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"bloodlink-service/internal/app"
	"bloodlink-service/internal/catalog"
	"bloodlink-service/internal/domain"
	"bloodlink-service/internal/infra/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newScoreService() (*app.ScoreService, *memory.ScoreStore) {
	rules := app.BadgeRules()
	store := memory.NewScoreStore(rules)
	return app.NewScoreService(store, rules, nil), store
}

func badgeCodes(badges []domain.Badge) []string {
	codes := make([]string, 0, len(badges))
	for _, b := range badges {
		codes = append(codes, b.Code)
	}
	return codes
}

func TestSaveScoreRejectsAnonymous(t *testing.T) {
	svc, _ := newScoreService()
	_, err := svc.SaveScore(context.Background(), 0, "x", catalog.GameBloodFacts, 5)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = svc.SaveScore(context.Background(), -3, "x", catalog.GameBloodFacts, 5)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestSaveScoreRejectsOutOfRange(t *testing.T) {
	svc, _ := newScoreService()
	_, err := svc.SaveScore(context.Background(), 1, "x", catalog.GameBloodFacts, -1)
	assert.ErrorIs(t, err, domain.ErrScoreOutOfRange)
	_, err = svc.SaveScore(context.Background(), 1, "x", catalog.GameBloodFacts, catalog.RoundLength+1)
	assert.ErrorIs(t, err, domain.ErrScoreOutOfRange)
}

func TestSaveScoreFirstGameBadge(t *testing.T) {
	svc, _ := newScoreService()
	earned, err := svc.SaveScore(context.Background(), 1, "ana", catalog.GameBloodFacts, 4)
	require.NoError(t, err)
	assert.Equal(t, []string{"first_game"}, badgeCodes(earned))
}

func TestSaveScorePerfectScoreBadge(t *testing.T) {
	svc, _ := newScoreService()
	earned, err := svc.SaveScore(context.Background(), 1, "ana", catalog.GameBloodFacts, catalog.RoundLength)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"first_game", "perfect_score"}, badgeCodes(earned))
}

func TestSaveScoreBadgesAwardedOnce(t *testing.T) {
	svc, _ := newScoreService()
	ctx := context.Background()

	first, err := svc.SaveScore(ctx, 1, "ana", catalog.GameBloodFacts, 3)
	require.NoError(t, err)
	require.Equal(t, []string{"first_game"}, badgeCodes(first))

	second, err := svc.SaveScore(ctx, 1, "ana", catalog.GameBloodFacts, 3)
	require.NoError(t, err)
	assert.Empty(t, second, "held badges must not be re-awarded")
}

func TestSaveScoreCumulativeBadges(t *testing.T) {
	svc, _ := newScoreService()
	ctx := context.Background()

	// Three rounds averaging >= 8 earn blood_expert on the third save.
	for i, score := range []int{8, 9, 8} {
		earned, err := svc.SaveScore(ctx, 1, "ana", catalog.GameBloodFacts, score)
		require.NoError(t, err)
		if i == 2 {
			assert.Contains(t, badgeCodes(earned), "blood_expert")
		} else {
			assert.NotContains(t, badgeCodes(earned), "blood_expert")
		}
	}

	// Two more rounds reach five plays and dedicated_player.
	_, err := svc.SaveScore(ctx, 1, "ana", catalog.GameBloodFacts, 1)
	require.NoError(t, err)
	earned, err := svc.SaveScore(ctx, 1, "ana", catalog.GameBloodFacts, 1)
	require.NoError(t, err)
	assert.Contains(t, badgeCodes(earned), "dedicated_player")

	badges, err := svc.Badges(ctx, 1)
	require.NoError(t, err)
	assert.ElementsMatch(t,
		[]string{"first_game", "blood_expert", "dedicated_player"},
		badgeCodes(badges))
}

func TestSaveScoreConcurrentDuplicateAwardsOnce(t *testing.T) {
	svc, _ := newScoreService()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.SaveScore(ctx, 1, "ana", catalog.GameBloodFacts, catalog.RoundLength)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	badges, err := svc.Badges(ctx, 1)
	require.NoError(t, err)
	counts := make(map[string]int)
	for _, b := range badges {
		counts[b.Code]++
	}
	for code, n := range counts {
		assert.Equal(t, 1, n, "badge %s awarded %d times", code, n)
	}
	assert.Contains(t, counts, "perfect_score")
}

func TestLeaderboardBestPerUser(t *testing.T) {
	svc, store := newScoreService()
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	seed := []domain.LeaderboardEntry{
		{UserID: 1, DisplayName: "ana", Game: catalog.GameBloodFacts, Score: 4, AchievedAt: base},
		{UserID: 1, DisplayName: "ana", Game: catalog.GameBloodFacts, Score: 9, AchievedAt: base.Add(time.Hour)},
		{UserID: 2, DisplayName: "bo", Game: catalog.GameBloodFacts, Score: 9, AchievedAt: base.Add(30 * time.Minute)},
		{UserID: 3, DisplayName: "cy", Game: catalog.GameBloodFacts, Score: 10, AchievedAt: base.Add(2 * time.Hour)},
		{UserID: 4, DisplayName: "dee", Game: "other_game", Score: 10, AchievedAt: base},
	}
	for _, e := range seed {
		require.NoError(t, store.InsertScore(ctx, e))
	}

	board, err := svc.Leaderboard(ctx, catalog.GameBloodFacts, 0)
	require.NoError(t, err)
	require.Len(t, board, 3, "one row per user, other games excluded")

	assert.Equal(t, int64(3), board[0].UserID)
	// Equal scores rank by earliest achievement.
	assert.Equal(t, int64(2), board[1].UserID)
	assert.Equal(t, int64(1), board[2].UserID)
	assert.Equal(t, 9, board[2].Score, "best score per user, not latest")
}

func TestLeaderboardLimit(t *testing.T) {
	svc, store := newScoreService()
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < app.DefaultLeaderboardLimit+5; i++ {
		require.NoError(t, store.InsertScore(ctx, domain.LeaderboardEntry{
			UserID:      int64(i + 1),
			DisplayName: "u",
			Game:        catalog.GameBloodFacts,
			Score:       i % (catalog.RoundLength + 1),
			AchievedAt:  base.Add(time.Duration(i) * time.Minute),
		}))
	}

	board, err := svc.Leaderboard(ctx, catalog.GameBloodFacts, 0)
	require.NoError(t, err)
	assert.Len(t, board, app.DefaultLeaderboardLimit)

	board, err = svc.Leaderboard(ctx, catalog.GameBloodFacts, 3)
	require.NoError(t, err)
	assert.Len(t, board, 3)
}
