package memory_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"bloodlink-service/internal/catalog"
	"bloodlink-service/internal/domain"
	"bloodlink-service/internal/infra/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscriptStoreCapsHistory(t *testing.T) {
	store := memory.NewTranscriptStore(3)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		err := store.Append(ctx, "s1", domain.ChatTurn{
			UserText: fmt.Sprintf("q%d", i),
			BotText:  fmt.Sprintf("a%d", i),
		})
		require.NoError(t, err)
	}

	history, err := store.History(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, history, 3, "oldest turns are dropped first")
	assert.Equal(t, "q3", history[0].UserText)
	assert.Equal(t, "q5", history[2].UserText)
}

func TestTranscriptStoreIsolatesSessions(t *testing.T) {
	store := memory.NewTranscriptStore(10)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "a", domain.ChatTurn{UserText: "hi"}))
	require.NoError(t, store.Append(ctx, "b", domain.ChatTurn{UserText: "yo"}))
	require.NoError(t, store.Clear(ctx, "a"))

	historyA, err := store.History(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, historyA)

	historyB, err := store.History(ctx, "b")
	require.NoError(t, err)
	assert.Len(t, historyB, 1)
}

type countingLoader struct {
	catalogs map[string]domain.TriviaCatalog
	loads    int
}

func (l *countingLoader) LoadCatalog(_ context.Context, game string) (domain.TriviaCatalog, error) {
	l.loads++
	if c, ok := l.catalogs[game]; ok {
		return c, nil
	}
	return domain.TriviaCatalog{}, domain.ErrCatalogNotFound
}

func TestCatalogRepositoryCachesLoads(t *testing.T) {
	loader := &countingLoader{catalogs: map[string]domain.TriviaCatalog{
		catalog.GameBloodFacts: catalog.BloodFacts(),
	}}
	repo := memory.NewCatalogRepository(loader, time.Minute)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		got, err := repo.GetCatalog(ctx, catalog.GameBloodFacts)
		require.NoError(t, err)
		assert.Equal(t, catalog.GameBloodFacts, got.Game)
	}
	assert.Equal(t, 1, loader.loads, "repeated reads within TTL must hit the cache")
}

func TestCatalogRepositoryUnknownGame(t *testing.T) {
	loader := &countingLoader{catalogs: map[string]domain.TriviaCatalog{}}
	repo := memory.NewCatalogRepository(loader, time.Minute)

	_, err := repo.GetCatalog(context.Background(), "no_such_game")
	assert.ErrorIs(t, err, domain.ErrCatalogNotFound)
}

func TestCatalogRepositoryRejectsInvalidCatalog(t *testing.T) {
	small := catalog.BloodFacts()
	small.Questions = small.Questions[:2]
	loader := &countingLoader{catalogs: map[string]domain.TriviaCatalog{
		catalog.GameBloodFacts: small,
	}}
	repo := memory.NewCatalogRepository(loader, time.Minute)

	_, err := repo.GetCatalog(context.Background(), catalog.GameBloodFacts)
	assert.ErrorIs(t, err, domain.ErrCatalogTooSmall)
}

func TestStaticCatalogLoader(t *testing.T) {
	loader := memory.NewStaticCatalogLoader(map[string]domain.TriviaCatalog{
		catalog.GameBloodFacts: catalog.BloodFacts(),
	})
	got, err := loader.LoadCatalog(context.Background(), catalog.GameBloodFacts)
	require.NoError(t, err)
	assert.Len(t, got.Questions, len(catalog.BloodFacts().Questions))

	_, err = loader.LoadCatalog(context.Background(), "other")
	assert.ErrorIs(t, err, domain.ErrCatalogNotFound)
}
