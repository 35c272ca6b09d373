package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/OP3690/wordyfy-sub000/internal/quiz"
)

// ErrNotFound is returned when a row the caller named does not exist.
var ErrNotFound = errors.New("not found")

// Word is a vocabulary entry owned by one user.
type Word struct {
	ID             uuid.UUID
	UserID         string
	Word           string
	Translation    string
	FromLanguage   string
	ToLanguage     string
	Popularity     int
	ReviewCount    int
	LastReviewedAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type WordRepository struct {
	pool *pgxpool.Pool
}

func NewWordRepository(pool *pgxpool.Pool) *WordRepository {
	return &WordRepository{pool: pool}
}

// Upsert inserts a word or, when the user already has it for this language
// pair, refreshes the translation and bumps its popularity.
func (r *WordRepository) Upsert(ctx context.Context, w *Word) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO words (user_id, word, translation, from_language, to_language)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id, word, from_language, to_language)
		 DO UPDATE SET translation = EXCLUDED.translation,
		               popularity  = words.popularity + 1,
		               updated_at  = NOW()
		 RETURNING id, popularity, review_count, last_reviewed_at, created_at, updated_at`,
		w.UserID, w.Word, w.Translation, w.FromLanguage, w.ToLanguage).
		Scan(&w.ID, &w.Popularity, &w.ReviewCount, &w.LastReviewedAt, &w.CreatedAt, &w.UpdatedAt)
}

// ListByUser returns a user's words for one language pair, newest first.
func (r *WordRepository) ListByUser(ctx context.Context, userID, fromLang, toLang string) ([]Word, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, word, translation, from_language, to_language,
		        popularity, review_count, last_reviewed_at, created_at, updated_at
		 FROM words
		 WHERE user_id = $1 AND from_language = $2 AND to_language = $3
		 ORDER BY created_at DESC`,
		userID, fromLang, toLang)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var words []Word
	for rows.Next() {
		var w Word
		if err := rows.Scan(&w.ID, &w.UserID, &w.Word, &w.Translation, &w.FromLanguage, &w.ToLanguage,
			&w.Popularity, &w.ReviewCount, &w.LastReviewedAt, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, err
		}
		words = append(words, w)
	}
	return words, rows.Err()
}

// Delete removes a word by ID, scoped to its owner.
func (r *WordRepository) Delete(ctx context.Context, id uuid.UUID, userID string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM words WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByUser returns how many words a user has saved across all language
// pairs. The access tier is resolved from this number.
func (r *WordRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM words WHERE user_id = $1`, userID).Scan(&count)
	return count, err
}

// CandidatePool returns every word saved for a language pair, across all
// users, as quiz candidates.
func (r *WordRepository) CandidatePool(ctx context.Context, fromLang, toLang string) ([]quiz.CandidateWord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT word, translation, from_language, to_language, popularity, user_id
		 FROM words
		 WHERE from_language = $1 AND to_language = $2`,
		fromLang, toLang)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pool []quiz.CandidateWord
	for rows.Next() {
		var c quiz.CandidateWord
		if err := rows.Scan(&c.Word, &c.Translation, &c.FromLanguage, &c.ToLanguage, &c.Popularity, &c.OwnerID); err != nil {
			return nil, err
		}
		pool = append(pool, c)
	}
	return pool, rows.Err()
}

// MarkReviewed bumps the review counter and stamps the review time on a
// user's word, matched case-insensitively.
func (r *WordRepository) MarkReviewed(ctx context.Context, userID, word string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE words
		 SET review_count = review_count + 1, last_reviewed_at = NOW(), updated_at = NOW()
		 WHERE user_id = $1 AND LOWER(word) = LOWER($2)`,
		userID, word)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
