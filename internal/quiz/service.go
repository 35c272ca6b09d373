package quiz

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/OP3690/wordyfy-sub000/internal/access"
)

var (
	setsBuilt = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wordyfy_question_sets_built_total",
		Help: "Number of question sets successfully built.",
	})
	accessDenials = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wordyfy_access_denials_total",
		Help: "Question-set requests rejected by the access tier.",
	})
	poolShortfalls = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wordyfy_pool_shortfalls_total",
		Help: "Question-set requests aborted for lack of candidate words.",
	})
)

// AccessDeniedError reports a word count below the quiz floor. Not a fault:
// the caller renders the deficit to the user.
type AccessDeniedError struct {
	WordCount int
	Required  int
}

func (e *AccessDeniedError) Error() string {
	return fmt.Sprintf("quiz access denied: %d words, %d required", e.WordCount, e.Required)
}

// WordSource is the slice of the word store the quiz service reads.
type WordSource interface {
	CountByUser(ctx context.Context, userID string) (int, error)
	CandidatePool(ctx context.Context, fromLang, toLang string) ([]CandidateWord, error)
}

// Service builds tier-gated question sets from the community word pool.
type Service struct {
	words   WordSource
	recent  RecentTracker
	builder *Builder
	logger  zerolog.Logger
}

func NewService(words WordSource, recent RecentTracker, builder *Builder, logger zerolog.Logger) *Service {
	return &Service{
		words:   words,
		recent:  recent,
		builder: builder,
		logger:  logger.With().Str("component", "quiz").Logger(),
	}
}

// QuestionSet resolves the user's access tier and builds a randomized
// question set from the candidate pool, excluding the user's own words and
// preferring words not served recently.
func (s *Service) QuestionSet(ctx context.Context, req QuestionSetRequest) (QuestionSetResponse, error) {
	count, err := s.words.CountByUser(ctx, req.UserID)
	if err != nil {
		return QuestionSetResponse{}, fmt.Errorf("count user words: %w", err)
	}

	tier := access.Resolve(req.IsAdmin, count)
	if !tier.Allowed {
		accessDenials.Inc()
		return QuestionSetResponse{}, &AccessDeniedError{WordCount: count, Required: access.RequiredWords}
	}

	pool, err := s.words.CandidatePool(ctx, req.FromLanguage, req.ToLanguage)
	if err != nil {
		return QuestionSetResponse{}, fmt.Errorf("load candidate pool: %w", err)
	}

	// Users are never quizzed on their own submissions.
	exclude := make(map[string]struct{})
	for _, cw := range pool {
		if cw.OwnerID == req.UserID {
			exclude[cw.Word] = struct{}{}
		}
	}
	totalAvailable := len(filterPool(pool, exclude))

	questions, err := s.builder.Build(pool, s.withRecent(ctx, req, pool, exclude, tier.Limit), tier.Limit)
	if err != nil {
		var poolErr *InsufficientPoolError
		if errors.As(err, &poolErr) {
			poolShortfalls.Inc()
		}
		return QuestionSetResponse{}, err
	}

	s.rememberServed(ctx, req, questions)
	setsBuilt.Inc()

	return QuestionSetResponse{
		Questions:      questions,
		TotalAvailable: totalAvailable,
		AccessLevel:    tier.Label,
		QuestionLimit:  tier.Limit,
	}, nil
}

// withRecent widens the exclusion set with recently served words, but only
// when the remaining pool can still satisfy the full tier limit. Tracker
// failures degrade to the plain exclusion set.
func (s *Service) withRecent(ctx context.Context, req QuestionSetRequest, pool []CandidateWord, exclude map[string]struct{}, limit int) map[string]struct{} {
	if s.recent == nil {
		return exclude
	}
	recent, err := s.recent.Recent(ctx, req.UserID, req.FromLanguage, req.ToLanguage)
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", req.UserID).Msg("recent word lookup failed")
		return exclude
	}
	if len(recent) == 0 {
		return exclude
	}

	combined := make(map[string]struct{}, len(exclude)+len(recent))
	for w := range exclude {
		combined[w] = struct{}{}
	}
	for w := range recent {
		combined[w] = struct{}{}
	}

	remaining := len(filterPool(pool, combined))
	if remaining < MinPoolSize || remaining < limit {
		return exclude
	}
	return combined
}

func (s *Service) rememberServed(ctx context.Context, req QuestionSetRequest, questions []Question) {
	if s.recent == nil {
		return
	}
	served := make([]string, 0, len(questions))
	for _, q := range questions {
		served = append(served, q.Prompt)
	}
	if err := s.recent.Remember(ctx, req.UserID, req.FromLanguage, req.ToLanguage, served); err != nil {
		s.logger.Warn().Err(err).Str("user_id", req.UserID).Msg("failed to record served words")
	}
}
