package quiz

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultRecentTTL   = 24 * time.Hour
	defaultRecentLimit = 100
)

// RecentTracker remembers which words were recently served to a user so the
// service can bias draws away from repeats across sessions.
type RecentTracker interface {
	Recent(ctx context.Context, userID, fromLang, toLang string) (map[string]struct{}, error)
	Remember(ctx context.Context, userID, fromLang, toLang string, words []string) error
}

// RedisRecentTracker stores recently served words in a per-user sorted set,
// trimmed to a bounded size and expired after a TTL.
type RedisRecentTracker struct {
	client *redis.Client
	ttl    time.Duration
	limit  int
}

var _ RecentTracker = (*RedisRecentTracker)(nil)

func NewRedisRecentTracker(client *redis.Client, ttl time.Duration, limit int) *RedisRecentTracker {
	if ttl <= 0 {
		ttl = defaultRecentTTL
	}
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	return &RedisRecentTracker{client: client, ttl: ttl, limit: limit}
}

func (t *RedisRecentTracker) key(userID, fromLang, toLang string) string {
	return strings.Join([]string{"recentwords", userID, fromLang, toLang}, ":")
}

// Recent returns the set of recently served words for a user/language pair.
func (t *RedisRecentTracker) Recent(ctx context.Context, userID, fromLang, toLang string) (map[string]struct{}, error) {
	words, err := t.client.ZRange(ctx, t.key(userID, fromLang, toLang), 0, -1).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("recent words: %w", err)
	}
	recent := make(map[string]struct{}, len(words))
	for _, w := range words {
		recent[w] = struct{}{}
	}
	return recent, nil
}

// Remember records served words, keeping only the newest entries.
func (t *RedisRecentTracker) Remember(ctx context.Context, userID, fromLang, toLang string, words []string) error {
	if len(words) == 0 {
		return nil
	}
	key := t.key(userID, fromLang, toLang)
	now := float64(time.Now().UnixNano())

	members := make([]redis.Z, 0, len(words))
	for i, w := range words {
		members = append(members, redis.Z{Score: now + float64(i), Member: w})
	}

	pipe := t.client.TxPipeline()
	pipe.ZAdd(ctx, key, members...)
	pipe.ZRemRangeByRank(ctx, key, 0, int64(-t.limit-1))
	pipe.Expire(ctx, key, t.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("remember words: %w", err)
	}
	return nil
}
