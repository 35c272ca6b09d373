package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/OP3690/wordyfy-sub000/internal/config"
	"github.com/OP3690/wordyfy-sub000/internal/db/repository"
	"github.com/OP3690/wordyfy-sub000/internal/logging"
	"github.com/OP3690/wordyfy-sub000/internal/quiz"
	"github.com/OP3690/wordyfy-sub000/internal/server"
	"github.com/OP3690/wordyfy-sub000/internal/session"
	"github.com/OP3690/wordyfy-sub000/internal/stats"
	"github.com/OP3690/wordyfy-sub000/internal/word"
)

// Application aggregates shared infrastructure (DB, cache, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	pool  *pgxpool.Pool
	redis *redis.Client
	http  *http.Server
}

// New bootstraps config, logger, Postgres, Redis and the HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env)
	logger.Info().Msg("starting application bootstrap")

	connString := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s pool_max_conns=10",
		cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Database, cfg.Postgres.SSLMode)

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	wordRepo := repository.NewWordRepository(pool)
	statsRepo := repository.NewStatsRepository(pool)

	recentTracker := quiz.NewRedisRecentTracker(redisClient, cfg.Quiz.RecentWordTTL, cfg.Quiz.RecentWordLimit)
	quizSvc := quiz.NewService(wordRepo, recentTracker, quiz.NewBuilder(), logger)
	wordSvc := word.NewService(wordRepo, logger)
	statsSvc := stats.NewService(statsRepo, wordRepo, logger)

	sessionMgr := session.NewManager(session.Config{
		ClassicQuestionSeconds:    cfg.Quiz.ClassicQuestionSeconds,
		ContinuousQuestionSeconds: cfg.Quiz.ContinuousQuestionSeconds,
		ResultDisplayDelay:        cfg.Quiz.ResultDisplayDelay,
	}, statsSvc, logger)

	apiServer := server.NewHTTPServer(cfg, logger, pool, redisClient, server.Handlers{
		Quiz:    quiz.NewHTTPHandlers(quizSvc, logger),
		Words:   word.NewHTTPHandlers(wordSvc, logger),
		Stats:   stats.NewHTTPHandlers(statsSvc, logger),
		Session: session.NewHandler(quizSvc, sessionMgr, logger),
	})

	return &Application{
		cfg:    cfg,
		logger: logger,
		pool:   pool,
		redis:  redisClient,
		http:   apiServer,
	}, nil
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	a.pool.Close()
	if err := a.redis.Close(); err != nil {
		a.logger.Error().Err(err).Msg("redis shutdown error")
	}

	a.logger.Info().Msg("shutdown complete")
	return nil
}
