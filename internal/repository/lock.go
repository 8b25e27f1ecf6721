package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/support_matching/internal/service"
)

// снимаем блокировку, только если она все еще наша
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisReportLocker - блокировка подбора по обращению на основе SET NX с TTL
type RedisReportLocker struct {
	redisClient *redis.Client
	ttl         time.Duration
}

func NewRedisReportLocker(redisClient *redis.Client, ttl time.Duration) service.ReportLocker {
	return &RedisReportLocker{
		redisClient: redisClient,
		ttl:         ttl,
	}
}

func reportLockKey(id uuid.UUID) string {
	return fmt.Sprintf("match_lock:report:%s", id.String())
}

func (l *RedisReportLocker) TryLock(ctx context.Context, reportID uuid.UUID) (string, bool, error) {
	token := uuid.NewString()
	ok, err := l.redisClient.SetNX(ctx, reportLockKey(reportID), token, l.ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("failed to acquire report lock: %w", err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

func (l *RedisReportLocker) Unlock(ctx context.Context, reportID uuid.UUID, token string) error {
	if err := unlockScript.Run(ctx, l.redisClient, []string{reportLockKey(reportID)}, token).Err(); err != nil {
		return fmt.Errorf("failed to release report lock: %w", err)
	}
	return nil
}
