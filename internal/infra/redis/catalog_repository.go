package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"bloodlink-service/internal/catalog"
	"bloodlink-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// CatalogLoader fetches a question bank from a backing store.
type CatalogLoader interface {
	LoadCatalog(ctx context.Context, game string) (domain.TriviaCatalog, error)
}

// CatalogRepository caches question banks as JSON blobs in Redis
// (SET trivia:{game}:catalog) and falls back to a loader on cache miss.
type CatalogRepository struct {
	client *redis.Client
	loader CatalogLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewCatalogRepository(client *redis.Client, loader CatalogLoader, ttl time.Duration) *CatalogRepository {
	return &CatalogRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *CatalogRepository) GetCatalog(ctx context.Context, game string) (domain.TriviaCatalog, error) {
	key := r.key(game)

	if cached, ok := r.fromCache(ctx, key); ok {
		return cached, nil
	}

	result, err, _ := r.sf.Do(game, func() (interface{}, error) {
		// Re-check in case another goroutine filled the cache.
		if cached, ok := r.fromCache(ctx, key); ok {
			return cached, nil
		}

		loaded, err := r.loader.LoadCatalog(ctx, game)
		if err != nil {
			return domain.TriviaCatalog{}, err
		}
		if err := catalog.Validate(loaded); err != nil {
			return domain.TriviaCatalog{}, err
		}

		if raw, err := json.Marshal(loaded); err == nil {
			// best-effort cache fill
			_ = r.client.Set(ctx, key, raw, r.ttlWithJitter()).Err()
		}
		return loaded, nil
	})
	if err != nil {
		return domain.TriviaCatalog{}, err
	}
	return result.(domain.TriviaCatalog), nil
}

func (r *CatalogRepository) fromCache(ctx context.Context, key string) (domain.TriviaCatalog, bool) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return domain.TriviaCatalog{}, false
	}
	var c domain.TriviaCatalog
	if err := json.Unmarshal(raw, &c); err != nil {
		return domain.TriviaCatalog{}, false
	}
	return c, true
}

func (r *CatalogRepository) key(game string) string {
	return "trivia:" + game + ":catalog"
}

func (r *CatalogRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
