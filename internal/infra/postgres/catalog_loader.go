package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"bloodlink-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// CatalogLoader loads a question bank stored as JSONB in Postgres.
type CatalogLoader struct {
	pool *pgxpool.Pool
}

func NewCatalogLoader(pool *pgxpool.Pool) *CatalogLoader {
	return &CatalogLoader{pool: pool}
}

func (l *CatalogLoader) LoadCatalog(ctx context.Context, game string) (domain.TriviaCatalog, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM trivia_catalogs WHERE game=$1`, game).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.TriviaCatalog{}, domain.ErrCatalogNotFound
	}
	if err != nil {
		return domain.TriviaCatalog{}, fmt.Errorf("load catalog: %w", err)
	}
	var c domain.TriviaCatalog
	if err := json.Unmarshal(raw, &c); err != nil {
		return domain.TriviaCatalog{}, fmt.Errorf("unmarshal catalog: %w", err)
	}
	c.Game = game
	return c, nil
}
