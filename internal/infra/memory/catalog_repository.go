package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"bloodlink-service/internal/catalog"
	"bloodlink-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// CatalogLoader fetches a question bank from a backing store.
type CatalogLoader interface {
	LoadCatalog(ctx context.Context, game string) (domain.TriviaCatalog, error)
}

// CatalogRepository caches question banks with TTL to avoid repeated DB hits.
type CatalogRepository struct {
	loader CatalogLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedCatalog
}

type cachedCatalog struct {
	catalog   domain.TriviaCatalog
	expiresAt time.Time
}

func NewCatalogRepository(loader CatalogLoader, ttl time.Duration) *CatalogRepository {
	return &CatalogRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedCatalog),
	}
}

func (r *CatalogRepository) GetCatalog(ctx context.Context, game string) (domain.TriviaCatalog, error) {
	now := r.clock()

	r.mu.RLock()
	if entry, ok := r.cache[game]; ok && entry.expiresAt.After(now) {
		r.mu.RUnlock()
		return entry.catalog, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do(game, func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if entry, ok := r.cache[game]; ok && entry.expiresAt.After(now) {
			r.mu.RUnlock()
			return entry.catalog, nil
		}
		r.mu.RUnlock()

		loaded, err := r.loader.LoadCatalog(ctx, game)
		if err != nil {
			return domain.TriviaCatalog{}, err
		}
		if err := catalog.Validate(loaded); err != nil {
			return domain.TriviaCatalog{}, err
		}

		r.mu.Lock()
		r.cache[game] = cachedCatalog{
			catalog:   loaded,
			expiresAt: now.Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return loaded, nil
	})
	if err != nil {
		return domain.TriviaCatalog{}, err
	}
	return result.(domain.TriviaCatalog), nil
}

// StaticCatalogLoader serves banks from an in-memory map (tests/demo and the
// default Postgres-less run).
type StaticCatalogLoader struct {
	catalogs map[string]domain.TriviaCatalog
}

func NewStaticCatalogLoader(catalogs map[string]domain.TriviaCatalog) *StaticCatalogLoader {
	return &StaticCatalogLoader{catalogs: catalogs}
}

func (l *StaticCatalogLoader) LoadCatalog(_ context.Context, game string) (domain.TriviaCatalog, error) {
	if c, ok := l.catalogs[game]; ok {
		return c, nil
	}
	return domain.TriviaCatalog{}, domain.ErrCatalogNotFound
}

func (r *CatalogRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
