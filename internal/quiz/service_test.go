package quiz

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubWordSource struct {
	count    int
	countErr error
	pool     []CandidateWord
	poolErr  error
}

func (s *stubWordSource) CountByUser(_ context.Context, _ string) (int, error) {
	return s.count, s.countErr
}

func (s *stubWordSource) CandidatePool(_ context.Context, _, _ string) ([]CandidateWord, error) {
	return s.pool, s.poolErr
}

type memoryRecent struct {
	entries map[string]map[string]struct{}
}

func newMemoryRecent() *memoryRecent {
	return &memoryRecent{entries: map[string]map[string]struct{}{}}
}

func (m *memoryRecent) key(userID, fromLang, toLang string) string {
	return strings.Join([]string{userID, fromLang, toLang}, "|")
}

func (m *memoryRecent) Recent(_ context.Context, userID, fromLang, toLang string) (map[string]struct{}, error) {
	return m.entries[m.key(userID, fromLang, toLang)], nil
}

func (m *memoryRecent) Remember(_ context.Context, userID, fromLang, toLang string, words []string) error {
	key := m.key(userID, fromLang, toLang)
	if m.entries[key] == nil {
		m.entries[key] = map[string]struct{}{}
	}
	for _, w := range words {
		m.entries[key][w] = struct{}{}
	}
	return nil
}

func communityPool(n int, owner string) []CandidateWord {
	pool := make([]CandidateWord, 0, n)
	for i := 0; i < n; i++ {
		pool = append(pool, CandidateWord{
			Word:        fmt.Sprintf("word-%d", i),
			Translation: fmt.Sprintf("translation-%d", i),
			Popularity:  i % 5,
			OwnerID:     owner,
		})
	}
	return pool
}

func newTestService(words WordSource, recent RecentTracker) *Service {
	return NewService(words, recent, NewBuilderWithSeed(99), zerolog.Nop())
}

func TestQuestionSetAccessDenied(t *testing.T) {
	svc := newTestService(&stubWordSource{count: 10}, nil)

	_, err := svc.QuestionSet(context.Background(), QuestionSetRequest{UserID: "u1", FromLanguage: "en", ToLanguage: "de"})

	var denied *AccessDeniedError
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, 10, denied.WordCount)
	assert.Equal(t, 50, denied.Required)
}

func TestQuestionSetAdminBypassesFloor(t *testing.T) {
	svc := newTestService(&stubWordSource{count: 0, pool: communityPool(60, "other")}, nil)

	resp, err := svc.QuestionSet(context.Background(), QuestionSetRequest{UserID: "u1", FromLanguage: "en", ToLanguage: "de", IsAdmin: true})
	require.NoError(t, err)
	assert.Len(t, resp.Questions, 50)
	assert.Equal(t, "Admin (50 questions)", resp.AccessLevel)
}

func TestQuestionSetHonorsTierLimit(t *testing.T) {
	svc := newTestService(&stubWordSource{count: 80, pool: communityPool(40, "other")}, nil)

	resp, err := svc.QuestionSet(context.Background(), QuestionSetRequest{UserID: "u1", FromLanguage: "en", ToLanguage: "de"})
	require.NoError(t, err)
	assert.Len(t, resp.Questions, 10, "80 words is the Intermediate tier")
	assert.Equal(t, "Intermediate", resp.AccessLevel)
	assert.Equal(t, 10, resp.QuestionLimit)
	assert.Equal(t, 40, resp.TotalAvailable)
}

func TestQuestionSetExcludesOwnWords(t *testing.T) {
	pool := communityPool(20, "other")
	pool = append(pool,
		CandidateWord{Word: "mine-1", Translation: "meins-1", OwnerID: "u1"},
		CandidateWord{Word: "mine-2", Translation: "meins-2", OwnerID: "u1"},
	)
	svc := newTestService(&stubWordSource{count: 250, pool: pool}, nil)

	resp, err := svc.QuestionSet(context.Background(), QuestionSetRequest{UserID: "u1", FromLanguage: "en", ToLanguage: "de"})
	require.NoError(t, err)
	assert.Equal(t, 20, resp.TotalAvailable)
	for _, q := range resp.Questions {
		assert.NotContains(t, []string{"mine-1", "mine-2"}, q.Prompt)
	}
}

func TestQuestionSetPrefersUnseenWords(t *testing.T) {
	recent := newMemoryRecent()
	require.NoError(t, recent.Remember(context.Background(), "u1", "en", "de", []string{"word-0", "word-1", "word-2"}))

	svc := newTestService(&stubWordSource{count: 60, pool: communityPool(30, "other")}, recent)

	resp, err := svc.QuestionSet(context.Background(), QuestionSetRequest{UserID: "u1", FromLanguage: "en", ToLanguage: "de"})
	require.NoError(t, err)
	assert.Len(t, resp.Questions, 5)
	for _, q := range resp.Questions {
		assert.NotContains(t, []string{"word-0", "word-1", "word-2"}, q.Prompt, "recently served words should be avoided")
	}
}

func TestQuestionSetIgnoresRecentWhenPoolTight(t *testing.T) {
	recent := newMemoryRecent()
	served := make([]string, 0, 8)
	for i := 0; i < 8; i++ {
		served = append(served, fmt.Sprintf("word-%d", i))
	}
	require.NoError(t, recent.Remember(context.Background(), "u1", "en", "de", served))

	// 10-word pool, tier limit 5: excluding 8 recent words would leave too
	// few candidates, so the tracker must be ignored.
	svc := newTestService(&stubWordSource{count: 60, pool: communityPool(10, "other")}, recent)

	resp, err := svc.QuestionSet(context.Background(), QuestionSetRequest{UserID: "u1", FromLanguage: "en", ToLanguage: "de"})
	require.NoError(t, err)
	assert.Len(t, resp.Questions, 5)
}

func TestQuestionSetRemembersServedWords(t *testing.T) {
	recent := newMemoryRecent()
	svc := newTestService(&stubWordSource{count: 60, pool: communityPool(30, "other")}, recent)

	resp, err := svc.QuestionSet(context.Background(), QuestionSetRequest{UserID: "u1", FromLanguage: "en", ToLanguage: "de"})
	require.NoError(t, err)

	seen, err := recent.Recent(context.Background(), "u1", "en", "de")
	require.NoError(t, err)
	for _, q := range resp.Questions {
		assert.Contains(t, seen, q.Prompt)
	}
}

func TestQuestionSetInsufficientPoolPassesThrough(t *testing.T) {
	svc := newTestService(&stubWordSource{count: 60, pool: communityPool(3, "other")}, nil)

	_, err := svc.QuestionSet(context.Background(), QuestionSetRequest{UserID: "u1", FromLanguage: "en", ToLanguage: "de"})

	var poolErr *InsufficientPoolError
	require.ErrorAs(t, err, &poolErr)
	assert.Equal(t, 3, poolErr.Available)
}

func TestQuestionSetStoreFailure(t *testing.T) {
	svc := newTestService(&stubWordSource{countErr: errors.New("db down")}, nil)

	_, err := svc.QuestionSet(context.Background(), QuestionSetRequest{UserID: "u1", FromLanguage: "en", ToLanguage: "de"})
	assert.Error(t, err)
}
