package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ErrDeliveryFailed - все попытки доставки исчерпаны
var ErrDeliveryFailed = errors.New("webhook delivery failed")

// Options - параметры доставки
type Options struct {
	URL        string
	Secret     string
	Timeout    time.Duration
	MaxRetries int
	BaseDelay  time.Duration
}

// WebhookWorker - структура для обработки и отправки вебхуков
type WebhookWorker struct {
	redisClient *redis.Client
	logger      *logrus.Logger
	opts        Options
	httpClient  *http.Client

	wg sync.WaitGroup
}

// NewWebhookWorker создает новый WebhookWorker
func NewWebhookWorker(redisClient *redis.Client, logger *logrus.Logger, opts Options) *WebhookWorker {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 1
	}
	return &WebhookWorker{
		redisClient: redisClient,
		logger:      logger,
		opts:        opts,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
	}
}

// Start запускает горутину для обработки очереди вебхуков
func (w *WebhookWorker) Start(ctx context.Context) {
	w.logger.WithField("component", "webhook").Info("Starting webhook worker...")
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			if ctx.Err() != nil {
				w.logger.WithField("component", "webhook").Info("Stopping webhook worker.")
				return
			}

			// 0 - бесконечное ожидание
			result, err := w.redisClient.BRPop(ctx, 0, webhookQueueKey).Result()
			if err != nil {
				if ctx.Err() != nil {
					continue
				}
				w.logger.WithError(err).Error("Failed to pop webhook event from Redis")
				sleep(ctx, w.opts.Timeout)
				continue
			}

			// result[0] - ключ, result[1] - значение
			payload := result[1]
			var event WebhookEvent
			if err := json.Unmarshal([]byte(payload), &event); err != nil {
				w.logger.WithError(err).Error("Failed to unmarshal webhook event from Redis")
				continue
			}

			_ = w.Deliver(ctx, event, []byte(payload))
		}
	}()
}

// Wait ждет завершения горутины после отмены контекста Start
func (w *WebhookWorker) Wait() {
	w.wg.Wait()
}

// Deliver отправляет событие с повторами и экспоненциальной задержкой
func (w *WebhookWorker) Deliver(ctx context.Context, event WebhookEvent, rawPayload []byte) error {
	log := w.logger.WithFields(logrus.Fields{
		"component":   "webhook",
		"event_id":    event.ID,
		"event_type":  event.Type,
		"incident_id": event.IncidentID,
	})
	log.Debug("Processing webhook event...")

	if w.opts.URL == "" {
		log.Warn("Webhook URL is not configured. Skipping webhook delivery.")
		return nil
	}

	delay := w.opts.BaseDelay
	for i := 0; i < w.opts.MaxRetries; i++ {
		retriesLeft := w.opts.MaxRetries - 1 - i

		code, err := w.post(ctx, rawPayload)
		switch {
		case err == nil && code >= 200 && code < 300:
			log.Info("Webhook delivered successfully.")
			return nil
		case err != nil:
			log.WithError(err).Warnf("Failed to send webhook. Retrying in %v. Retries left: %d", delay, retriesLeft)
		default:
			log.Warnf("Webhook delivery failed with status code %d. Retrying in %v. Retries left: %d", code, delay, retriesLeft)
		}

		if retriesLeft == 0 {
			break
		}
		if !sleep(ctx, delay) {
			return ctx.Err()
		}
		delay *= 2
	}

	log.Errorf("Failed to deliver webhook after %d attempts.", w.opts.MaxRetries)
	return ErrDeliveryFailed
}

func (w *WebhookWorker) post(ctx context.Context, rawPayload []byte) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.opts.URL, bytes.NewReader(rawPayload))
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if w.opts.Secret != "" {
		req.Header.Set("X-Webhook-Signature", generateHMACSHA256(rawPayload, w.opts.Secret))
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

// generateHMACSHA256 генерирует HMAC-SHA256 подпись для данных
func generateHMACSHA256(data []byte, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// sleep ждет d или отмены контекста; false означает отмену
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
