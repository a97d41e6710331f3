package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bloodlink-service/internal/app"
	"bloodlink-service/internal/catalog"
	"bloodlink-service/internal/config"
	"bloodlink-service/internal/domain"
	"bloodlink-service/internal/gemini"
	"bloodlink-service/internal/infra/memory"
	pginfra "bloodlink-service/internal/infra/postgres"
	redisinfra "bloodlink-service/internal/infra/redis"
	"bloodlink-service/internal/lib/slogcolor"
	transport "bloodlink-service/internal/transport/http"
	"github.com/gorilla/sessions"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the blood donation service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log := slog.New(slogcolor.NewHandler(os.Stdout, slog.LevelInfo))
	slog.SetDefault(log)

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	// Persistence: Postgres when configured, in-memory otherwise.
	badgeRules := app.BadgeRules()
	var userStore app.UserStore
	var scoreStore app.ScoreStore
	if pool != nil {
		store := pginfra.NewStore(pool)
		userStore = store
		scoreStore = store
	} else {
		log.Warn("no postgres url configured, using in-memory stores")
		userStore = memory.NewUserStore()
		scoreStore = memory.NewScoreStore(badgeRules)
	}

	// Chat transcripts: Redis when configured, in-memory otherwise.
	historyLimit := cfg.Chat.HistoryLimit
	if historyLimit == 0 {
		historyLimit = 50
	}
	chatTTL := config.TTLDuration(cfg.Chat.TTL, 30*time.Minute)
	var transcripts app.TranscriptStore
	if redisClient != nil {
		transcripts = redisinfra.NewTranscriptStore(redisClient, chatTTL, historyLimit)
	} else {
		transcripts = memory.NewTranscriptStore(historyLimit)
	}

	// Question banks: static catalog by default, Postgres-backed when
	// available, cached in Redis when available.
	var loader memory.CatalogLoader = memory.NewStaticCatalogLoader(map[string]domain.TriviaCatalog{
		catalog.GameBloodFacts: catalog.BloodFacts(),
	})
	if pool != nil {
		loader = pginfra.NewCatalogLoader(pool)
	}
	catalogTTL := config.TTLDuration(cfg.Trivia.CatalogTTL, 10*time.Minute)
	var catalogs transport.CatalogRepository
	if redisClient != nil {
		catalogs = redisinfra.NewCatalogRepository(redisClient, loader, catalogTTL)
	} else {
		catalogs = memory.NewCatalogRepository(loader, catalogTTL)
	}

	responder := gemini.NewClient(cfg.Gemini.APIKey,
		gemini.WithModel(cfg.Gemini.Model),
		gemini.WithTimeout(config.TTLDuration(cfg.Gemini.Timeout, 10*time.Second)),
	)

	chatService := app.NewChatService(catalog.FaqEntries(), responder, transcripts, log)
	scoreService := app.NewScoreService(scoreStore, badgeRules, log)
	donorService := app.NewDonorService(userStore, scoreService, nil, log)

	secret := cfg.Server.SessionSecret
	if secret == "" {
		log.Warn("no session secret configured, using an insecure default")
		secret = "bloodlink-dev-secret"
	}
	sessionStore := sessions.NewCookieStore([]byte(secret))

	handler := transport.NewHandler(chatService, scoreService, donorService, catalogs, sessionStore, log)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      handler.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("starting bloodlink service", "port", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("failed to start server", "err", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server...")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
