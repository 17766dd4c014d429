// Package webhook доставляет события жизненного цикла инцидента во внешнюю
// систему через очередь в Redis.
package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/bear_coordination/internal/models"
)

const (
	webhookQueueKey = "bear:webhook_events"
)

// Типы событий
const (
	EventIncidentTracked = "incident.tracked"
	EventIncidentStatus  = "incident.status_changed"
	EventChatAvailable   = "incident.chat_available"
	EventIncidentDropped = "incident.discarded"
	EventSessionOnline   = "session.online"
	EventSessionOffline  = "session.offline"
)

// WebhookEvent - событие для внешней системы
type WebhookEvent struct {
	ID         string                 `json:"id"`
	Type       string                 `json:"type"`
	IncidentID string                 `json:"incident_id,omitempty"`
	From       string                 `json:"from,omitempty"`
	To         string                 `json:"to,omitempty"`
	Location   *models.LocationSample `json:"location,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
}

// NewEvent создает событие с новым id и текущим временем
func NewEvent(eventType string) WebhookEvent {
	return WebhookEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
	}
}

// WebhookPublisher - интерфейс для публикации вебхуков
type WebhookPublisher interface {
	Publish(ctx context.Context, event WebhookEvent) error
}

// RedisWebhookPublisher - реализация WebhookPublisher, использующая Redis
type RedisWebhookPublisher struct {
	redisClient *redis.Client
}

// NewRedisWebhookPublisher создает новый RedisWebhookPublisher
func NewRedisWebhookPublisher(client *redis.Client) *RedisWebhookPublisher {
	return &RedisWebhookPublisher{
		redisClient: client,
	}
}

// Publish кладет событие в левую часть очереди
func (p *RedisWebhookPublisher) Publish(ctx context.Context, event WebhookEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook event: %w", err)
	}

	if err := p.redisClient.LPush(ctx, webhookQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish webhook event to Redis: %w", err)
	}
	return nil
}
