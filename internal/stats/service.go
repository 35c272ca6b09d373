package stats

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/OP3690/wordyfy-sub000/internal/db/repository"
)

var quizzesRecorded = promauto.NewCounter(prometheus.CounterOpts{
	Name: "wordyfy_quizzes_recorded_total",
	Help: "Completed quizzes folded into user aggregates.",
})

// ErrWordNotFound is returned when a review targets a word the user never
// saved.
var ErrWordNotFound = errors.New("word not found")

// Store persists per-user aggregates.
type Store interface {
	Get(ctx context.Context, userID string) (repository.QuizStats, error)
	Upsert(ctx context.Context, s repository.QuizStats) error
}

// Reviewer marks a user's word as reviewed.
type Reviewer interface {
	MarkReviewed(ctx context.Context, userID, word string) error
}

// Service folds quiz results into per-user aggregates and records word
// reviews.
type Service struct {
	store  Store
	words  Reviewer
	now    func() time.Time
	logger zerolog.Logger
}

func NewService(store Store, words Reviewer, logger zerolog.Logger) *Service {
	return &Service{
		store:  store,
		words:  words,
		now:    time.Now,
		logger: logger.With().Str("component", "stats").Logger(),
	}
}

// RecordQuiz folds one completed quiz into the user's aggregate row.
// Average accuracy is recomputed from lifetime totals on every update rather
// than adjusted incrementally, so it cannot drift. The daily streak compares
// calendar days: a second quiz on the same day leaves it unchanged, a quiz
// on the day after the last one extends it, anything else resets it to 1.
func (s *Service) RecordQuiz(ctx context.Context, userID string, score, totalQuestions int) error {
	if totalQuestions <= 0 {
		return fmt.Errorf("total questions must be positive, got %d", totalQuestions)
	}

	cur, err := s.store.Get(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("load stats: %w", err)
	}
	cur.UserID = userID

	now := s.now().UTC()
	cur.TotalQuizzes++
	cur.TotalQuestions += totalQuestions
	cur.CorrectAnswers += score
	cur.TotalScore += score
	cur.AverageAccuracy = int(math.Round(float64(cur.CorrectAnswers) / float64(cur.TotalQuestions) * 100))
	if score > cur.BestScore {
		cur.BestScore = score
	}
	cur.CurrentStreak = nextStreak(cur.CurrentStreak, cur.LastQuizDate, now)
	if cur.CurrentStreak > cur.LongestStreak {
		cur.LongestStreak = cur.CurrentStreak
	}
	cur.LastQuizDate = &now

	if err := s.store.Upsert(ctx, cur); err != nil {
		return fmt.Errorf("save stats: %w", err)
	}

	quizzesRecorded.Inc()
	s.logger.Info().
		Str("user_id", userID).
		Int("score", score).
		Int("total_questions", totalQuestions).
		Int("streak", cur.CurrentStreak).
		Msg("quiz recorded")
	return nil
}

// Get returns a user's aggregate row, or a zeroed row for a user with no
// history.
func (s *Service) Get(ctx context.Context, userID string) (repository.QuizStats, error) {
	cur, err := s.store.Get(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.QuizStats{UserID: userID}, nil
	}
	return cur, err
}

// RecordReview marks a user's word as reviewed.
func (s *Service) RecordReview(ctx context.Context, userID, word string) error {
	err := s.words.MarkReviewed(ctx, userID, word)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrWordNotFound
	}
	return err
}

func nextStreak(current int, last *time.Time, now time.Time) int {
	if last == nil {
		return 1
	}
	today := now.Truncate(24 * time.Hour)
	lastDay := last.UTC().Truncate(24 * time.Hour)
	switch {
	case lastDay.Equal(today):
		return current
	case lastDay.Equal(today.AddDate(0, 0, -1)):
		return current + 1
	default:
		return 1
	}
}
