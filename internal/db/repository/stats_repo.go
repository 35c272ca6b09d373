package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// QuizStats is the per-user aggregate row. One row per user, recomputed on
// every quiz completion.
type QuizStats struct {
	UserID          string
	TotalQuizzes    int
	TotalQuestions  int
	CorrectAnswers  int
	TotalScore      int
	AverageAccuracy int
	BestScore       int
	CurrentStreak   int
	LongestStreak   int
	LastQuizDate    *time.Time
	UpdatedAt       time.Time
}

type StatsRepository struct {
	pool *pgxpool.Pool
}

func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{pool: pool}
}

// Get loads a user's aggregate row. Returns ErrNotFound when the user has
// never completed a quiz.
func (r *StatsRepository) Get(ctx context.Context, userID string) (QuizStats, error) {
	var s QuizStats
	err := r.pool.QueryRow(ctx,
		`SELECT user_id, total_quizzes, total_questions, correct_answers, total_score,
		        average_accuracy, best_score, current_streak, longest_streak,
		        last_quiz_date, updated_at
		 FROM quiz_stats WHERE user_id = $1`,
		userID).Scan(&s.UserID, &s.TotalQuizzes, &s.TotalQuestions, &s.CorrectAnswers, &s.TotalScore,
		&s.AverageAccuracy, &s.BestScore, &s.CurrentStreak, &s.LongestStreak,
		&s.LastQuizDate, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return QuizStats{}, ErrNotFound
	}
	return s, err
}

// Upsert writes the full aggregate row.
func (r *StatsRepository) Upsert(ctx context.Context, s QuizStats) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO quiz_stats (user_id, total_quizzes, total_questions, correct_answers,
		                         total_score, average_accuracy, best_score,
		                         current_streak, longest_streak, last_quiz_date, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		 ON CONFLICT (user_id)
		 DO UPDATE SET total_quizzes    = EXCLUDED.total_quizzes,
		               total_questions  = EXCLUDED.total_questions,
		               correct_answers  = EXCLUDED.correct_answers,
		               total_score      = EXCLUDED.total_score,
		               average_accuracy = EXCLUDED.average_accuracy,
		               best_score       = EXCLUDED.best_score,
		               current_streak   = EXCLUDED.current_streak,
		               longest_streak   = EXCLUDED.longest_streak,
		               last_quiz_date   = EXCLUDED.last_quiz_date,
		               updated_at       = NOW()`,
		s.UserID, s.TotalQuizzes, s.TotalQuestions, s.CorrectAnswers,
		s.TotalScore, s.AverageAccuracy, s.BestScore,
		s.CurrentStreak, s.LongestStreak, s.LastQuizDate)
	return err
}
