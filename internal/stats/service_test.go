package stats

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OP3690/wordyfy-sub000/internal/db/repository"
)

type memoryStore struct {
	rows map[string]repository.QuizStats
}

func newMemoryStore() *memoryStore {
	return &memoryStore{rows: make(map[string]repository.QuizStats)}
}

func (m *memoryStore) Get(_ context.Context, userID string) (repository.QuizStats, error) {
	row, ok := m.rows[userID]
	if !ok {
		return repository.QuizStats{}, repository.ErrNotFound
	}
	return row, nil
}

func (m *memoryStore) Upsert(_ context.Context, s repository.QuizStats) error {
	m.rows[s.UserID] = s
	return nil
}

type stubReviewer struct {
	err   error
	calls []string
}

func (r *stubReviewer) MarkReviewed(_ context.Context, userID, word string) error {
	r.calls = append(r.calls, userID+"/"+word)
	return r.err
}

func newTestService(store *memoryStore, at time.Time) *Service {
	svc := NewService(store, &stubReviewer{}, zerolog.Nop())
	svc.now = func() time.Time { return at }
	return svc
}

func TestRecordQuizFirstQuiz(t *testing.T) {
	store := newMemoryStore()
	svc := newTestService(store, time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC))

	require.NoError(t, svc.RecordQuiz(context.Background(), "u1", 4, 5))

	row := store.rows["u1"]
	assert.Equal(t, 1, row.TotalQuizzes)
	assert.Equal(t, 5, row.TotalQuestions)
	assert.Equal(t, 4, row.CorrectAnswers)
	assert.Equal(t, 80, row.AverageAccuracy)
	assert.Equal(t, 4, row.BestScore)
	assert.Equal(t, 1, row.CurrentStreak)
	assert.Equal(t, 1, row.LongestStreak)
	require.NotNil(t, row.LastQuizDate)
}

func TestAccuracyRecomputedNotIncremented(t *testing.T) {
	store := newMemoryStore()
	day := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := newTestService(store, day)

	// 3/5 then 4/5: lifetime 7/10 must read back as exactly 70, not the
	// average of the two per-quiz accuracies.
	require.NoError(t, svc.RecordQuiz(context.Background(), "u1", 3, 5))
	require.NoError(t, svc.RecordQuiz(context.Background(), "u1", 4, 5))

	assert.Equal(t, 70, store.rows["u1"].AverageAccuracy)
	assert.Equal(t, 10, store.rows["u1"].TotalQuestions)
	assert.Equal(t, 7, store.rows["u1"].CorrectAnswers)
}

func TestAccuracyRounds(t *testing.T) {
	store := newMemoryStore()
	svc := newTestService(store, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))

	require.NoError(t, svc.RecordQuiz(context.Background(), "u1", 2, 3))
	assert.Equal(t, 67, store.rows["u1"].AverageAccuracy)
}

func TestStreakSameDayUnchanged(t *testing.T) {
	store := newMemoryStore()
	day := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := newTestService(store, day)

	require.NoError(t, svc.RecordQuiz(context.Background(), "u1", 5, 5))
	svc.now = func() time.Time { return day.Add(8 * time.Hour) }
	require.NoError(t, svc.RecordQuiz(context.Background(), "u1", 5, 5))

	assert.Equal(t, 1, store.rows["u1"].CurrentStreak)
}

func TestStreakConsecutiveDaysExtend(t *testing.T) {
	store := newMemoryStore()
	day := time.Date(2025, 3, 10, 22, 0, 0, 0, time.UTC)
	svc := newTestService(store, day)

	require.NoError(t, svc.RecordQuiz(context.Background(), "u1", 5, 5))
	svc.now = func() time.Time { return day.AddDate(0, 0, 1).Add(-20 * time.Hour) } // next morning
	require.NoError(t, svc.RecordQuiz(context.Background(), "u1", 5, 5))
	svc.now = func() time.Time { return day.AddDate(0, 0, 2) }
	require.NoError(t, svc.RecordQuiz(context.Background(), "u1", 5, 5))

	assert.Equal(t, 3, store.rows["u1"].CurrentStreak)
	assert.Equal(t, 3, store.rows["u1"].LongestStreak)
}

func TestStreakResetsAfterGap(t *testing.T) {
	store := newMemoryStore()
	day := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := newTestService(store, day)

	require.NoError(t, svc.RecordQuiz(context.Background(), "u1", 5, 5))
	svc.now = func() time.Time { return day.AddDate(0, 0, 1) }
	require.NoError(t, svc.RecordQuiz(context.Background(), "u1", 5, 5))
	svc.now = func() time.Time { return day.AddDate(0, 0, 4) }
	require.NoError(t, svc.RecordQuiz(context.Background(), "u1", 5, 5))

	assert.Equal(t, 1, store.rows["u1"].CurrentStreak)
	assert.Equal(t, 2, store.rows["u1"].LongestStreak, "longest streak survives the reset")
}

func TestBestScoreKeepsMaximum(t *testing.T) {
	store := newMemoryStore()
	svc := newTestService(store, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))

	require.NoError(t, svc.RecordQuiz(context.Background(), "u1", 8, 10))
	require.NoError(t, svc.RecordQuiz(context.Background(), "u1", 3, 10))

	assert.Equal(t, 8, store.rows["u1"].BestScore)
}

func TestRecordQuizRejectsZeroQuestions(t *testing.T) {
	svc := newTestService(newMemoryStore(), time.Now())
	assert.Error(t, svc.RecordQuiz(context.Background(), "u1", 0, 0))
}

func TestGetUnknownUserReturnsZeroRow(t *testing.T) {
	svc := newTestService(newMemoryStore(), time.Now())

	row, err := svc.Get(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Equal(t, "ghost", row.UserID)
	assert.Equal(t, 0, row.TotalQuizzes)
}

func TestRecordReviewMapsNotFound(t *testing.T) {
	reviewer := &stubReviewer{err: repository.ErrNotFound}
	svc := NewService(newMemoryStore(), reviewer, zerolog.Nop())

	err := svc.RecordReview(context.Background(), "u1", "serendipity")
	assert.ErrorIs(t, err, ErrWordNotFound)
}

func TestRecordReviewPassesThrough(t *testing.T) {
	reviewer := &stubReviewer{}
	svc := NewService(newMemoryStore(), reviewer, zerolog.Nop())

	require.NoError(t, svc.RecordReview(context.Background(), "u1", "serendipity"))
	assert.Equal(t, []string{"u1/serendipity"}, reviewer.calls)
}
