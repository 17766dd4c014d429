// Package location поставляет координаты устройства в маршрутизатор событий.
package location

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shenikar/bear_coordination/internal/events"
	"github.com/shenikar/bear_coordination/internal/models"
	"github.com/sirupsen/logrus"
)

// ErrPermissionDenied - доступ к координатам не выдан
var ErrPermissionDenied = errors.New("location permission denied")

// Publisher публикует локальные события
type Publisher interface {
	Publish(c events.Category, payload any) error
}

// Streamer получает точки от провайдера, хранит последнюю и публикует каждую
// в категорию location.
type Streamer struct {
	provider  Provider
	publisher Publisher
	logger    *logrus.Logger

	// publishMu упорядочивает публикацию и Stop
	publishMu sync.Mutex

	mu         sync.Mutex
	sub        Subscription
	generation uint64
	latest     models.LocationSample
	hasLatest  bool
}

// NewStreamer создает остановленный стример
func NewStreamer(provider Provider, publisher Publisher, logger *logrus.Logger) *Streamer {
	return &Streamer{
		provider:  provider,
		publisher: publisher,
		logger:    logger,
	}
}

// Start подписывается на провайдера. Повторный вызов на запущенном стримере ничего не делает.
func (s *Streamer) Start(interval, minInterval time.Duration) error {
	log := s.logger.WithFields(logrus.Fields{
		"component": "location",
		"method":    "Start",
	})

	if !s.provider.PermissionGranted() {
		log.Warn("Location permission is not granted")
		return ErrPermissionDenied
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sub != nil {
		return nil
	}

	s.generation++
	gen := s.generation
	sub, err := s.provider.RequestUpdates(Request{Interval: interval, MinInterval: minInterval}, func(sample models.LocationSample) {
		s.onFix(gen, sample)
	})
	if err != nil {
		return fmt.Errorf("location: request updates: %w", err)
	}
	s.sub = sub
	log.WithFields(logrus.Fields{
		"interval":     interval,
		"min_interval": minInterval,
	}).Info("Location streaming started")
	return nil
}

// Stop снимает подписку. После возврата публикаций больше не будет.
func (s *Streamer) Stop() {
	s.publishMu.Lock()
	s.mu.Lock()
	sub := s.sub
	s.sub = nil
	s.generation++
	s.latest, s.hasLatest = models.LocationSample{}, false
	s.mu.Unlock()
	s.publishMu.Unlock()

	if sub == nil {
		return
	}
	sub.Cancel()
	s.logger.WithField("component", "location").Info("Location streaming stopped")
}

// Running сообщает, запущен ли стример
func (s *Streamer) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sub != nil
}

// Latest возвращает последнюю принятую точку
func (s *Streamer) Latest() (models.LocationSample, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest, s.hasLatest
}

func (s *Streamer) onFix(gen uint64, sample models.LocationSample) {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	s.mu.Lock()
	if gen != s.generation || s.sub == nil {
		s.mu.Unlock()
		return
	}
	s.latest, s.hasLatest = sample, true
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"component": "location",
		"lat":       sample.Latitude,
		"lon":       sample.Longitude,
	}).Debug("Location sample")

	if err := s.publisher.Publish(events.CategoryLocation, sample); err != nil {
		s.logger.WithField("component", "location").WithError(err).Warn("Failed to publish location sample")
	}
}
