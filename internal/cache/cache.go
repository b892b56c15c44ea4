// Package cache puts a Redis read-through cache in front of the question
// corpus.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/examprep/backend/internal/domain/questionbank"
)

// Client is the subset of the Redis client the cache needs.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Corpus is the read side of the question store.
type Corpus interface {
	GetQuestion(ctx context.Context, id string) (*questionbank.Question, error)
	QuestionsByExam(ctx context.Context, providerID, examID string, f questionbank.Filter) ([]questionbank.Question, error)
}

// QuestionCache caches single questions and whole exam pools. Redis
// failures are logged and the call falls through to the source, so the
// cache can never make a lookup fail.
type QuestionCache struct {
	client Client
	source Corpus
	ttl    time.Duration
	logger *slog.Logger
}

func New(client Client, source Corpus, ttl time.Duration, logger *slog.Logger) *QuestionCache {
	return &QuestionCache{client: client, source: source, ttl: ttl, logger: logger}
}

func questionKey(id string) string {
	return "question:" + id
}

func examKey(providerID, examID string) string {
	return fmt.Sprintf("questions:%s:%s", providerID, examID)
}

func (c *QuestionCache) GetQuestion(ctx context.Context, id string) (*questionbank.Question, error) {
	key := questionKey(id)
	var q questionbank.Question
	if c.load(ctx, key, &q) {
		return &q, nil
	}

	found, err := c.source.GetQuestion(ctx, id)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, found)
	return found, nil
}

// QuestionsByExam caches the unfiltered pool of an exam and applies f to
// it locally.
func (c *QuestionCache) QuestionsByExam(ctx context.Context, providerID, examID string, f questionbank.Filter) ([]questionbank.Question, error) {
	key := examKey(providerID, examID)
	var pool []questionbank.Question
	if !c.load(ctx, key, &pool) {
		var err error
		pool, err = c.source.QuestionsByExam(ctx, providerID, examID, questionbank.Filter{})
		if err != nil {
			return nil, err
		}
		c.store(ctx, key, pool)
	}
	return questionbank.Apply(pool, f), nil
}

// InvalidateExam drops the cached pool of an exam, e.g. after an import.
func (c *QuestionCache) InvalidateExam(ctx context.Context, providerID, examID string) {
	if err := c.client.Del(ctx, examKey(providerID, examID)).Err(); err != nil {
		c.logger.Warn("cache invalidate failed", "provider_id", providerID, "exam_id", examID, "error", err)
	}
}

func (c *QuestionCache) load(ctx context.Context, key string, dst any) bool {
	buf, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false
	}
	if err != nil {
		c.logger.Warn("cache read failed", "key", key, "error", err)
		return false
	}
	if err := json.Unmarshal(buf, dst); err != nil {
		c.logger.Warn("cache entry corrupt", "key", key, "error", err)
		return false
	}
	return true
}

func (c *QuestionCache) store(ctx context.Context, key string, v any) {
	buf, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("cache encode failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, buf, c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", "key", key, "error", err)
	}
}
