package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/OP3690/wordyfy-sub000/internal/config"
	"github.com/OP3690/wordyfy-sub000/internal/logging"
	"github.com/OP3690/wordyfy-sub000/internal/quiz"
	"github.com/OP3690/wordyfy-sub000/internal/session"
	"github.com/OP3690/wordyfy-sub000/internal/stats"
	"github.com/OP3690/wordyfy-sub000/internal/word"
)

// Handlers groups the domain handler sets the router mounts.
type Handlers struct {
	Quiz    *quiz.HTTPHandlers
	Words   *word.HTTPHandlers
	Stats   *stats.HTTPHandlers
	Session *session.Handler
}

// NewHTTPServer wires all routes for the API service.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, pool *pgxpool.Pool, rdb *redis.Client, h Handlers) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/v1/ping", func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.IntoContext(r.Context(), logger)
		if err := pingDependencies(ctx, pool, rdb); err != nil {
			logger.Error().Err(err).Msg("dependency ping failed")
			http.Error(w, "upstream error", http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pong":true}`))
	})

	mux.HandleFunc("/v1/questions", h.Quiz.GetQuestions)
	mux.HandleFunc("/v1/words", h.Words.Words)
	mux.HandleFunc("/v1/words/", h.Words.DeleteWord)
	mux.HandleFunc("/v1/review", h.Stats.RecordReview)
	mux.HandleFunc("/v1/quiz-stats", h.Stats.QuizStats)

	mux.HandleFunc("/ws/quiz", h.Session.HandleWebSocket)

	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: corsMiddleware(cfg.CORS, mux),
	}
}

func pingDependencies(ctx context.Context, pool *pgxpool.Pool, rdb *redis.Client) error {
	if err := pool.Ping(ctx); err != nil {
		return err
	}
	if err := rdb.Ping(ctx).Err(); err != nil {
		return err
	}
	return nil
}

// corsMiddleware applies the configured CORS policy and short-circuits
// preflight requests. Disallowed origins get no CORS headers at all, on
// preflight included.
func corsMiddleware(cfg config.CORS, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowed := origin != "" && originAllowed(cfg.AllowedOrigins, origin)
		if allowed {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
			if cfg.AllowCredentials {
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}
		}

		if r.Method == http.MethodOptions {
			if allowed {
				w.Header().Set("Access-Control-Allow-Methods", strings.Join(cfg.AllowedMethods, ", "))
				w.Header().Set("Access-Control-Allow-Headers", strings.Join(cfg.AllowedHeaders, ", "))
				w.Header().Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func originAllowed(allowed []string, origin string) bool {
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}
