package cli

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"go.uber.org/zap"

	"prepquiz-service/internal/app"
	"prepquiz-service/internal/config"
	"prepquiz-service/internal/domain"
	"prepquiz-service/internal/infra/memory"
	pgstore "prepquiz-service/internal/infra/postgres"
	redisstore "prepquiz-service/internal/infra/redis"
	transport "prepquiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	log, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer log.Sync()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

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
	var db *bun.DB
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
		db = bun.NewDB(sqldb, pgdialect.New())
	}

	quizDuration := config.TTLDuration(cfg.Quiz.Duration, app.DefaultQuizDuration)
	cacheTTL := config.TTLDuration(cfg.Quiz.CacheTTL, 10*time.Minute)
	sessionTTL := config.TTLDuration(cfg.Redis.TTL, quizDuration+time.Hour)

	// Stores: postgres when configured, in-memory demo otherwise.
	var (
		catalogStore app.CatalogStore
		userStore    app.UserStore
		resultStore  app.ResultStore
		streakStore  app.StreakStore
		boardStore   app.LeaderboardStore
		loader       memory.QuestionLoader
	)
	if db != nil {
		pgUsers := pgstore.NewUserStore(db)
		catalogStore = pgstore.NewCatalogStore(db)
		userStore = pgUsers
		resultStore = pgUsers
		streakStore = pgUsers
		boardStore = pgUsers
		loader = pgstore.NewQuestionLoader(pool)
	} else {
		staticLoader := memory.NewStaticQuestionLoader(sampleQuestions())
		memCatalog := memory.NewCatalogStore(staticLoader)
		seedSampleCatalog(ctx, memCatalog)
		memUsers := memory.NewUserStore()
		catalogStore = memCatalog
		userStore = memUsers
		resultStore = memUsers
		streakStore = memUsers
		boardStore = memUsers
		loader = staticLoader
	}

	var questionRepo app.QuestionRepository
	if redisClient != nil {
		questionRepo = redisstore.NewQuestionRepository(redisClient, loader, cacheTTL)
	} else {
		questionRepo = memory.NewQuestionRepository(loader, cacheTTL)
	}

	var sessionStore app.SessionStore
	if redisClient != nil {
		sessionStore = redisstore.NewSessionStore(redisClient, sessionTTL)
	} else {
		sessionStore = memory.NewSessionStore()
	}

	board := app.NewLeaderboardService(boardStore, cfg.Leaderboard.Limit, log)
	stats := app.NewStatsService(userStore, resultStore, streakStore, board, log)
	sessions := app.NewSessionService(questionRepo, sessionStore, stats, quizDuration)
	users := app.NewUserService(userStore, resultStore, board)
	catalog := app.NewCatalogService(catalogStore)

	auth := transport.NewAuth(cfg.Auth.Secret, cfg.Auth.Issuer, users, log)
	handlers := transport.NewHandlers(catalog, users, stats, board, log)
	quizHandler := transport.NewQuizHandler(sessions, log)
	wsHandler := transport.NewWSHandler(board, log)
	router := transport.NewRouter(handlers, quizHandler, wsHandler, auth)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("starting prepquiz service", zap.String("port", finalPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("failed to start server", zap.Error(err))
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

// seedSampleCatalog mirrors sampleQuestions into the in-memory catalog
// so listings and the quiz path agree when running without postgres.
func seedSampleCatalog(ctx context.Context, store *memory.CatalogStore) {
	_, _ = store.CreateSubject(ctx, "Mathematics")
	_, _ = store.CreateYear(ctx, "2024")
	_, _ = store.CreateCourse(ctx, "First Course")
}

// sampleQuestions provides minimal demo content; the postgres loader
// replaces this in production.
func sampleQuestions() []domain.Question {
	return []domain.Question{
		{
			ID:        1,
			Text:      "What is 2 + 2?",
			Options:   []string{"3", "4", "5", "6"},
			Answer:    "4",
			SubjectID: 1,
			YearID:    2,
			CourseID:  3,
		},
		{
			ID:        2,
			Text:      "What is 15 multiplied by 4?",
			Options:   []string{"50", "60", "70", "80"},
			Answer:    "60",
			SubjectID: 1,
			YearID:    2,
			CourseID:  3,
		},
	}
}
