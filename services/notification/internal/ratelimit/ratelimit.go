package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Limiter ограничивает частоту отправки уведомлений.
// Allow возвращает false, если лимит текущего окна исчерпан.
type Limiter interface {
	Allow(ctx context.Context) (bool, error)
}

// RedisLimiter реализует fixed-window счётчик в Redis.
// Окно - календарная минута, ключ живёт два окна и истекает сам.
type RedisLimiter struct {
	logger *zap.Logger
	client *redis.Client
	limit  int
}

// NewRedisLimiter создаёт Redis rate limiter
func NewRedisLimiter(logger *zap.Logger, client *redis.Client, limit int) *RedisLimiter {
	return &RedisLimiter{
		logger: logger,
		client: client,
		limit:  limit,
	}
}

func windowKey(now time.Time) string {
	return fmt.Sprintf("notifications:rate:%d", now.Unix()/60)
}

// Allow инкрементирует счётчик окна и сравнивает с лимитом
func (l *RedisLimiter) Allow(ctx context.Context) (bool, error) {
	key := windowKey(time.Now())

	pipe := l.client.Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, 2*time.Minute)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to increment rate counter: %w", err)
	}

	count := incr.Val()
	if count > int64(l.limit) {
		l.logger.Warn("notification rate limit exceeded",
			zap.Int64("count", count),
			zap.Int("limit", l.limit),
		)
		return false, nil
	}

	return true, nil
}

// MemoryLimiter - in-process fixed-window счётчик.
// Используется, когда REDIS_ADDR не задан; лимит действует на один процесс.
type MemoryLimiter struct {
	mu          sync.Mutex
	limit       int
	windowStart int64
	count       int

	// для тестов
	now func() time.Time
}

// NewMemoryLimiter создаёт in-memory rate limiter
func NewMemoryLimiter(limit int) *MemoryLimiter {
	return &MemoryLimiter{
		limit: limit,
		now:   time.Now,
	}
}

// Allow инкрементирует счётчик текущего минутного окна
func (l *MemoryLimiter) Allow(ctx context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	window := l.now().Unix() / 60
	if window != l.windowStart {
		l.windowStart = window
		l.count = 0
	}

	l.count++
	return l.count <= l.limit, nil
}
