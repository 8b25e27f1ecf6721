package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shenikar/support_matching/internal/models"
)

const (
	notificationQueueKey = "notification_events"
)

// NotificationEvent - структура, которая кладется в очередь и уходит в вебхук
type NotificationEvent struct {
	models.Notification
	QueuedAt time.Time `json:"queued_at"`
}

//go:generate mockgen -source=publisher.go -destination=mocks/mock_dispatcher.go -package=mocks

// NotificationDispatcher - интерфейс для отправки уведомлений
type NotificationDispatcher interface {
	Send(ctx context.Context, notification models.Notification) error
}

// RedisNotificationDispatcher - реализация NotificationDispatcher, использующая очередь в Redis
type RedisNotificationDispatcher struct {
	redisClient *redis.Client
	now         func() time.Time
}

// NewRedisNotificationDispatcher создает новый RedisNotificationDispatcher
func NewRedisNotificationDispatcher(client *redis.Client) *RedisNotificationDispatcher {
	return &RedisNotificationDispatcher{
		redisClient: client,
		now:         time.Now,
	}
}

// Send публикует уведомление в очередь Redis, доставкой занимается NotificationWorker
func (p *RedisNotificationDispatcher) Send(ctx context.Context, notification models.Notification) error {
	payload, err := json.Marshal(NotificationEvent{Notification: notification, QueuedAt: p.now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to marshal notification event: %w", err)
	}

	// LPUSH в левую часть списка, воркер забирает справа
	if err := p.redisClient.LPush(ctx, notificationQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish notification event to Redis: %w", err)
	}
	return nil
}
