// Package repository хранит в Redis последнюю известную координату сессии.
//
// Хранится только одно значение с ограниченным сроком жизни, история не ведется.
// Каждое сохранение дополнительно публикуется в канал для внешних наблюдателей.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shenikar/bear_coordination/internal/models"
)

// LocationRepository - зеркало последней координаты в Redis
type LocationRepository struct {
	redisClient *redis.Client
	subject     string
	ttl         time.Duration
}

// NewLocationRepository создает репозиторий для subject (например, "responder")
func NewLocationRepository(redisClient *redis.Client, subject string, ttl time.Duration) *LocationRepository {
	return &LocationRepository{
		redisClient: redisClient,
		subject:     subject,
		ttl:         ttl,
	}
}

// Key возвращает ключ последней координаты
func (r *LocationRepository) Key() string {
	return fmt.Sprintf("location:%s:latest", r.subject)
}

// Channel возвращает канал публикации координат
func (r *LocationRepository) Channel() string {
	return fmt.Sprintf("location:%s", r.subject)
}

// Save сохраняет координату с TTL и публикует ее
func (r *LocationRepository) Save(ctx context.Context, sample models.LocationSample) error {
	val, err := json.Marshal(sample)
	if err != nil {
		return fmt.Errorf("failed to marshal location: %w", err)
	}

	pipe := r.redisClient.TxPipeline()
	pipe.Set(ctx, r.Key(), val, r.ttl)
	pipe.Publish(ctx, r.Channel(), val)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save location: %w", err)
	}
	return nil
}

// Latest возвращает сохраненную координату или nil, если ее нет
func (r *LocationRepository) Latest(ctx context.Context) (*models.LocationSample, error) {
	val, err := r.redisClient.Get(ctx, r.Key()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get location: %w", err)
	}

	sample := &models.LocationSample{}
	if err := json.Unmarshal(val, sample); err != nil {
		return nil, fmt.Errorf("failed to unmarshal location: %w", err)
	}
	return sample, nil
}

// Invalidate удаляет сохраненную координату
func (r *LocationRepository) Invalidate(ctx context.Context) error {
	if err := r.redisClient.Del(ctx, r.Key()).Err(); err != nil {
		return fmt.Errorf("failed to invalidate location: %w", err)
	}
	return nil
}
