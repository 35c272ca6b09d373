package word

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/OP3690/wordyfy-sub000/internal/db/repository"
)

var wordsSaved = promauto.NewCounter(prometheus.CounterOpts{
	Name: "wordyfy_words_saved_total",
	Help: "Words added or refreshed through the words endpoint.",
})

// Store is the persistence the word service needs.
type Store interface {
	Upsert(ctx context.Context, w *repository.Word) error
	ListByUser(ctx context.Context, userID, fromLang, toLang string) ([]repository.Word, error)
	Delete(ctx context.Context, id uuid.UUID, userID string) error
}

// Service manages a user's saved vocabulary.
type Service struct {
	store  Store
	logger zerolog.Logger
}

func NewService(store Store, logger zerolog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger.With().Str("component", "word").Logger(),
	}
}

// AddInput is a word submission. The translation comes from the client.
type AddInput struct {
	UserID       string
	Word         string
	Translation  string
	FromLanguage string
	ToLanguage   string
}

// Add saves a word for a user. Re-adding an existing word refreshes its
// translation and bumps its popularity, which feeds question ordering.
func (s *Service) Add(ctx context.Context, in AddInput) (repository.Word, error) {
	w := repository.Word{
		UserID:       in.UserID,
		Word:         strings.TrimSpace(strings.ToLower(in.Word)),
		Translation:  strings.TrimSpace(in.Translation),
		FromLanguage: in.FromLanguage,
		ToLanguage:   in.ToLanguage,
	}
	if err := s.store.Upsert(ctx, &w); err != nil {
		return repository.Word{}, fmt.Errorf("save word: %w", err)
	}

	wordsSaved.Inc()
	s.logger.Debug().
		Str("user_id", in.UserID).
		Str("word", w.Word).
		Int("popularity", w.Popularity).
		Msg("word saved")
	return w, nil
}

// List returns a user's words for one language pair.
func (s *Service) List(ctx context.Context, userID, fromLang, toLang string) ([]repository.Word, error) {
	return s.store.ListByUser(ctx, userID, fromLang, toLang)
}

// Delete removes a user's word. Passes through repository.ErrNotFound when
// the word does not exist or belongs to someone else.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, userID string) error {
	return s.store.Delete(ctx, id, userID)
}
