package cli

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/shenikar/bear_coordination/internal/api"
	"github.com/shenikar/bear_coordination/internal/chat"
	"github.com/shenikar/bear_coordination/internal/config"
	"github.com/shenikar/bear_coordination/internal/events"
	"github.com/shenikar/bear_coordination/internal/incident"
	"github.com/shenikar/bear_coordination/internal/location"
	"github.com/shenikar/bear_coordination/internal/repository"
	"github.com/shenikar/bear_coordination/internal/routing"
	"github.com/shenikar/bear_coordination/internal/service"
	"github.com/shenikar/bear_coordination/internal/session"
	"github.com/shenikar/bear_coordination/internal/transport"
	"github.com/shenikar/bear_coordination/internal/webhook"
	redisclient "github.com/shenikar/bear_coordination/pkg/redis"
	"github.com/sirupsen/logrus"
)

// maxJoinTimeoutFactor ограничивает рост окна ожидания join
const maxJoinTimeoutFactor = 6

// app - собранный граф компонентов процесса
type app struct {
	cfg    *config.Config
	log    *logrus.Logger
	router *events.Router
	client *api.Client
	svc    service.CoordinationService

	redisClient *redis.Client
	worker      *webhook.WebhookWorker
}

// newApp собирает компоненты. Redis и вебхуки подключаются, только если заданы
// REDIS_ADDR и WEBHOOK_URL.
func newApp(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*app, error) {
	a := &app{cfg: cfg, log: log}

	// Маршрутизатор событий и транспорт
	a.router = events.NewRouter(log)
	channel := transport.NewChannel(a.router, log, transport.Options{
		Token:              cfg.AuthToken,
		ReconnectBaseDelay: cfg.ReconnectBaseDelay,
		ReconnectMaxDelay:  cfg.ReconnectMaxDelay,
		HeartbeatInterval:  cfg.HeartbeatInterval,
		DialTimeout:        cfg.RequestTimeout,
	})

	// Координаты устройства приходят через локальный API
	feed := location.NewDeviceFeed()
	provider := location.NewPollingProvider(feed, cfg.LocationPermission)
	streamer := location.NewStreamer(provider, a.router, log)

	scope := session.Scope{Room: events.RoomDuty}
	if cfg.Role == config.RoleResident {
		scope = session.Scope{Room: events.RoomIncident, IncidentID: cfg.IncidentID}
	}
	coordinator := session.NewCoordinator(channel, streamer, a.router, log, session.Options{
		Endpoint:       cfg.SocketURL,
		Token:          cfg.AuthToken,
		Scope:          scope,
		StreamLocation: cfg.Role == config.RoleResponder,
		Interval:       cfg.LocationInterval,
		MinInterval:    cfg.LocationMinInterval,
		JoinTimeout:    cfg.JoinTimeout,
		MaxJoinTimeout: maxJoinTimeoutFactor * cfg.JoinTimeout,
	})

	// REST и доменные компоненты
	a.client = api.NewClient(cfg.APIBaseURL, cfg.AuthToken, cfg.RequestTimeout, log)
	deps := service.Deps{
		Role:        cfg.Role,
		Router:      a.router,
		Coordinator: coordinator,
		Tracker:     incident.NewTracker(a.client, log),
		Inbox:       incident.NewInbox(a.client, log),
		Relay:       chat.NewRelay(coordinator, a.client, log),
		Feed:        feed,
		Backend:     a.client,
		Routes:      routing.NewClient(cfg.RouteServiceURL, cfg.RequestTimeout, log),
	}

	if cfg.RedisAddr != "" {
		redisClient, err := redisclient.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		a.redisClient = redisClient
		log.Info("Successfully connected to Redis")

		deps.Locations = repository.NewLocationRepository(redisClient, cfg.Role, cfg.LocationCacheTTL)

		if cfg.WebhookURL != "" {
			deps.Webhooks = webhook.NewRedisWebhookPublisher(redisClient)
			a.worker = webhook.NewWebhookWorker(redisClient, log, webhook.Options{
				URL:        cfg.WebhookURL,
				Secret:     cfg.WebhookSecret,
				Timeout:    cfg.WebhookTimeout,
				MaxRetries: cfg.WebhookMaxRetries,
				BaseDelay:  cfg.WebhookBaseDelay,
			})
			a.worker.Start(ctx)
		}
	}

	a.svc = service.NewCoordinationService(ctx, deps, log)
	return a, nil
}

// restore возобновляет отслеживание инцидента после старта процесса
func (a *app) restore(ctx context.Context) {
	log := a.log.WithField("component", "cli")
	switch {
	case a.cfg.IncidentID != "":
		if _, err := a.svc.TrackIncident(ctx, a.cfg.IncidentID); err != nil {
			log.WithError(err).Warn("Failed to track configured incident")
		}
	case a.cfg.Role == config.RoleResident:
		if err := service.Resume(ctx, a.svc, a.client, a.log); err != nil {
			log.WithError(err).Warn("Failed to resume active incident")
		}
	}
}

// close останавливает фоновые компоненты. Вызывается после ctx.cancel.
func (a *app) close() {
	if a.worker != nil {
		a.worker.Wait()
	}
	a.router.Close()
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.WithError(err).Warn("Failed to close Redis client")
		}
	}
}
