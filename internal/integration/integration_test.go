package integration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"bloodlink-service/internal/app"
	"bloodlink-service/internal/catalog"
	"bloodlink-service/internal/domain"
	pginfra "bloodlink-service/internal/infra/postgres"
	pgmigrations "bloodlink-service/internal/infra/postgres/migrations"
	infraredis "bloodlink-service/internal/infra/redis"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

func TestSaveScoreEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	runMigrations(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}

	store := pginfra.NewStore(pool)
	rules := app.BadgeRules()
	scores := app.NewScoreService(store, rules, nil)
	donors := app.NewDonorService(store, scores, nil, nil)

	ana, err := donors.Register(ctx, app.RegisterInput{
		Name:            "Ana",
		Email:           "ana@example.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
		Phone:           "5551234567",
		Age:             30,
		BloodGroup:      "O-",
		City:            "Austin",
		State:           "TX",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	earned, err := scores.SaveScore(ctx, ana.ID, ana.Name, catalog.GameBloodFacts, 10)
	if err != nil {
		t.Fatalf("save score: %v", err)
	}
	if !hasBadge(earned, "first_game") || !hasBadge(earned, "perfect_score") {
		t.Fatalf("expected first_game and perfect_score, got %+v", earned)
	}

	// Saving again must not re-award held badges.
	earned, err = scores.SaveScore(ctx, ana.ID, ana.Name, catalog.GameBloodFacts, 4)
	if err != nil {
		t.Fatalf("save score again: %v", err)
	}
	if len(earned) != 0 {
		t.Fatalf("expected no new badges, got %+v", earned)
	}

	board, err := scores.Leaderboard(ctx, catalog.GameBloodFacts, 10)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(board) != 1 || board[0].UserID != ana.ID || board[0].Score != 10 {
		t.Fatalf("expected one row with ana's best score, got %+v", board)
	}

	// The seeded question bank is served from Postgres through the Redis cache.
	catalogs := infraredis.NewCatalogRepository(redisClient, pginfra.NewCatalogLoader(pool), 5*time.Minute)
	bank, err := catalogs.GetCatalog(ctx, catalog.GameBloodFacts)
	if err != nil {
		t.Fatalf("get catalog: %v", err)
	}
	if len(bank.Questions) < catalog.RoundLength {
		t.Fatalf("expected a full bank, got %d questions", len(bank.Questions))
	}
}

func TestDuplicateBadgeAwardEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()

	runMigrations(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	store := pginfra.NewStore(pool)
	rules := app.BadgeRules()
	scores := app.NewScoreService(store, rules, nil)
	donors := app.NewDonorService(store, scores, nil, nil)

	ana, err := donors.Register(ctx, app.RegisterInput{
		Name:            "Ana",
		Email:           "ana@example.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
		Phone:           "5551234567",
		Age:             30,
		BloodGroup:      "O-",
		City:            "Austin",
		State:           "TX",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	// Concurrent duplicate submissions; the unique index must keep every
	// badge single even when both saves qualify at once.
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := scores.SaveScore(ctx, ana.ID, ana.Name, catalog.GameBloodFacts, 10)
			errs <- err
		}()
	}
	for i := 0; i < 2; i++ {
		if err := <-errs; err != nil {
			t.Fatalf("concurrent save: %v", err)
		}
	}

	badges, err := scores.Badges(ctx, ana.ID)
	if err != nil {
		t.Fatalf("badges: %v", err)
	}
	counts := make(map[string]int)
	for _, b := range badges {
		counts[b.Code]++
	}
	for code, n := range counts {
		if n != 1 {
			t.Fatalf("badge %s awarded %d times", code, n)
		}
	}
	if counts["perfect_score"] != 1 {
		t.Fatalf("expected perfect_score exactly once, got %+v", counts)
	}
}

func runMigrations(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func hasBadge(badges []domain.Badge, code string) bool {
	for _, b := range badges {
		if b.Code == code {
			return true
		}
	}
	return false
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "blood", "POSTGRES_PASSWORD": "bloodpass", "POSTGRES_DB": "blooddb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://blood:bloodpass@%s:%s/blooddb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
