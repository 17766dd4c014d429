package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shenikar/bear_coordination/internal/api"
	"github.com/shenikar/bear_coordination/internal/broadcast"
	"github.com/shenikar/bear_coordination/internal/chat"
	"github.com/shenikar/bear_coordination/internal/config"
	"github.com/shenikar/bear_coordination/internal/events"
	"github.com/shenikar/bear_coordination/internal/incident"
	"github.com/shenikar/bear_coordination/internal/models"
	"github.com/shenikar/bear_coordination/internal/routing"
	"github.com/shenikar/bear_coordination/internal/session"
	"github.com/shenikar/bear_coordination/internal/webhook"
	"github.com/sirupsen/logrus"
)

var (
	ErrNoLocation = errors.New("no location available")
	ErrWrongRole  = errors.New("operation is not available for this role")
)

const sideEffectTimeout = 3 * time.Second

// Backend - вызовы REST, нужные фасаду помимо трекера
type Backend interface {
	GetIncident(ctx context.Context, id string) (*models.IncidentSummary, error)
	MyActiveIncident(ctx context.Context) (*models.IncidentSummary, error)
	VerificationStatus(ctx context.Context) (*api.Verification, error)
}

// RouteFinder строит маршрут между точками
type RouteFinder interface {
	Route(ctx context.Context, from, to models.LocationSample) (*routing.Route, error)
}

// LocationStore - внешнее зеркало последней координаты
type LocationStore interface {
	Save(ctx context.Context, sample models.LocationSample) error
	Latest(ctx context.Context) (*models.LocationSample, error)
	Invalidate(ctx context.Context) error
}

// FixSink принимает координаты устройства
type FixSink interface {
	Push(sample models.LocationSample) error
}

// Update - событие для потоковых подписчиков локального API
type Update struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Типы Update
const (
	UpdateConnection = "connection"
	UpdateLocation   = "location"
	UpdateIncident   = "incident"
	UpdateChat       = "chat"
	UpdateInbox      = "inbox"
)

// SessionStatus - снимок состояния сессии
type SessionStatus struct {
	Role       string                 `json:"role"`
	State      models.ConnectionState `json:"state"`
	Online     bool                   `json:"online"`
	Refs       int                    `json:"refs"`
	Room       events.RoomKind        `json:"room"`
	IncidentID string                 `json:"incident_id,omitempty"`
	ChatRoom   string                 `json:"chat_room,omitempty"`
}

// CoordinationService определяет контракт фасада координации для локального API
type CoordinationService interface {
	Bind(ctx context.Context) (session.SessionHandle, error)
	Unbind(h session.SessionHandle) error
	Status() SessionStatus
	LatestLocation(ctx context.Context) (*models.LocationSample, error)
	PushFix(sample models.LocationSample) error
	ReportIncident(ctx context.Context, req incident.ReportRequest) (models.IncidentRecord, error)
	TrackIncident(ctx context.Context, id string) (models.IncidentRecord, error)
	CurrentIncident() (models.IncidentRecord, bool)
	ChangeStatus(ctx context.Context, to models.IncidentStatus) error
	Inbox(ctx context.Context, refresh bool) ([]models.IncidentSummary, error)
	ChatHistory(ctx context.Context, incidentID string) ([]models.ChatMessage, error)
	SendMessage(content string) error
	RouteToIncident(ctx context.Context) (*routing.Route, error)
	Verification(ctx context.Context) (*api.Verification, error)
	Subscribe(fn func(Update)) broadcast.Handle
	Unsubscribe(h broadcast.Handle) bool
}

// Deps - компоненты, из которых собирается фасад. Locations и Webhooks
// необязательны.
type Deps struct {
	Role        string
	Router      *events.Router
	Coordinator *session.Coordinator
	Tracker     *incident.Tracker
	Inbox       *incident.Inbox
	Relay       *chat.Relay
	Feed        FixSink
	Backend     Backend
	Routes      RouteFinder
	Locations   LocationStore
	Webhooks    webhook.WebhookPublisher
}

type coordinationService struct {
	deps    Deps
	logger  *logrus.Logger
	updates *broadcast.Registry[Update]
	baseCtx context.Context
}

// NewCoordinationService связывает компоненты между собой и подписывает их на
// маршрутизатор. ctx ограничивает фоновые побочные эффекты.
func NewCoordinationService(ctx context.Context, deps Deps, logger *logrus.Logger) CoordinationService {
	s := &coordinationService{
		deps:    deps,
		logger:  logger,
		updates: broadcast.NewRegistry[Update](),
		baseCtx: ctx,
	}

	deps.Tracker.Attach(deps.Router)
	deps.Relay.Attach(deps.Router)
	if deps.Role == config.RoleResponder {
		deps.Inbox.Attach(deps.Router)
	}

	deps.Tracker.OnChange(s.onIncidentChange)
	deps.Inbox.OnChange(func(list []models.IncidentSummary) {
		s.updates.Publish(Update{Type: UpdateInbox, Data: list})
	})
	deps.Relay.Subscribe(func(msg models.ChatMessage) {
		s.updates.Publish(Update{Type: UpdateChat, Data: msg})
	})
	deps.Coordinator.AddLocationListener(s.onLocation)
	deps.Coordinator.AddConnectionStatusListener(s.onConnectionStatus)
	return s
}

// Bind привязывает потребителя к сессии
func (s *coordinationService) Bind(ctx context.Context) (session.SessionHandle, error) {
	h, err := s.deps.Coordinator.Bind(ctx)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"service": "coordination",
			"method":  "Bind",
		}).WithError(err).Error("Failed to bind session")
		return session.SessionHandle{}, fmt.Errorf("service: bind session: %w", err)
	}
	return h, nil
}

// Unbind освобождает привязку; после последней очищается зеркало координаты
func (s *coordinationService) Unbind(h session.SessionHandle) error {
	if err := s.deps.Coordinator.Unbind(h); err != nil {
		return fmt.Errorf("service: unbind session: %w", err)
	}
	if s.deps.Coordinator.Refs() == 0 && s.deps.Locations != nil {
		ctx, cancel := context.WithTimeout(s.baseCtx, sideEffectTimeout)
		defer cancel()
		if err := s.deps.Locations.Invalidate(ctx); err != nil {
			s.logger.WithField("service", "coordination").WithError(err).Warn("Failed to invalidate location mirror")
		}
	}
	return nil
}

// Status возвращает снимок состояния сессии
func (s *coordinationService) Status() SessionStatus {
	scope := s.deps.Coordinator.Scope()
	return SessionStatus{
		Role:       s.deps.Role,
		State:      s.deps.Coordinator.State(),
		Online:     s.deps.Coordinator.Online(),
		Refs:       s.deps.Coordinator.Refs(),
		Room:       scope.Room,
		IncidentID: scope.IncidentID,
		ChatRoom:   s.deps.Relay.Room(),
	}
}

// LatestLocation возвращает последнюю координату стримера, а без нее - из зеркала
func (s *coordinationService) LatestLocation(ctx context.Context) (*models.LocationSample, error) {
	if sample, ok := s.deps.Coordinator.Latest(); ok {
		return &sample, nil
	}
	if s.deps.Locations != nil {
		sample, err := s.deps.Locations.Latest(ctx)
		if err != nil {
			return nil, fmt.Errorf("service: latest location: %w", err)
		}
		if sample != nil {
			return sample, nil
		}
	}
	return nil, ErrNoLocation
}

// PushFix передает координату устройства провайдеру
func (s *coordinationService) PushFix(sample models.LocationSample) error {
	if err := s.deps.Feed.Push(sample); err != nil {
		return fmt.Errorf("service: push fix: %w", err)
	}
	return nil
}

// ReportIncident отправляет сигнал жителя
func (s *coordinationService) ReportIncident(ctx context.Context, req incident.ReportRequest) (models.IncidentRecord, error) {
	if s.deps.Role != config.RoleResident {
		return models.IncidentRecord{}, ErrWrongRole
	}
	if req.Location == (models.LocationSample{}) {
		if sample, ok := s.deps.Coordinator.Latest(); ok {
			req.Location = sample
		}
	}
	return s.deps.Tracker.Report(ctx, req)
}

// TrackIncident загружает инцидент с бэкенда и начинает его отслеживать
func (s *coordinationService) TrackIncident(ctx context.Context, id string) (models.IncidentRecord, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "coordination",
		"method":      "TrackIncident",
		"incident_id": id,
	})

	summary, err := s.deps.Backend.GetIncident(ctx, id)
	if err != nil {
		log.WithError(err).Error("Failed to fetch incident")
		return models.IncidentRecord{}, fmt.Errorf("service: get incident: %w", err)
	}
	rec := incident.FromSummary(*summary)
	if err := s.deps.Tracker.Track(rec); err != nil {
		return models.IncidentRecord{}, err
	}
	return rec, nil
}

// Resume восстанавливает отслеживание активного инцидента жителя после перезапуска
func Resume(ctx context.Context, svc CoordinationService, backend Backend, logger *logrus.Logger) error {
	summary, err := backend.MyActiveIncident(ctx)
	if err != nil {
		return fmt.Errorf("service: resume: %w", err)
	}
	if summary == nil {
		logger.WithField("service", "coordination").Info("No active incident to resume")
		return nil
	}
	if _, err := svc.TrackIncident(ctx, summary.ID); err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"service":     "coordination",
		"incident_id": summary.ID,
	}).Info("Resumed active incident")
	return nil
}

// CurrentIncident возвращает отслеживаемый инцидент
func (s *coordinationService) CurrentIncident() (models.IncidentRecord, bool) {
	return s.deps.Tracker.Current()
}

// ChangeStatus запрашивает переход отслеживаемого инцидента
func (s *coordinationService) ChangeStatus(ctx context.Context, to models.IncidentStatus) error {
	return s.deps.Tracker.RequestTransition(ctx, to)
}

// Inbox возвращает входящие инциденты спасателя
func (s *coordinationService) Inbox(ctx context.Context, refresh bool) ([]models.IncidentSummary, error) {
	if s.deps.Role != config.RoleResponder {
		return nil, ErrWrongRole
	}
	if refresh {
		if err := s.deps.Inbox.Refresh(ctx); err != nil {
			return nil, err
		}
	}
	return s.deps.Inbox.Items(), nil
}

// ChatHistory загружает историю чата
func (s *coordinationService) ChatHistory(ctx context.Context, incidentID string) ([]models.ChatMessage, error) {
	return s.deps.Relay.History(ctx, incidentID)
}

// SendMessage отправляет сообщение в текущую комнату чата
func (s *coordinationService) SendMessage(content string) error {
	return s.deps.Relay.Send(content)
}

// RouteToIncident строит маршрут от текущей координаты до инцидента
func (s *coordinationService) RouteToIncident(ctx context.Context) (*routing.Route, error) {
	cur, ok := s.deps.Tracker.Current()
	if !ok {
		return nil, incident.ErrNoActiveIncident
	}
	from, err := s.LatestLocation(ctx)
	if err != nil {
		return nil, err
	}
	route, err := s.deps.Routes.Route(ctx, *from, cur.Location)
	if err != nil {
		return nil, fmt.Errorf("service: route: %w", err)
	}
	return route, nil
}

// Verification возвращает статус проверки аккаунта
func (s *coordinationService) Verification(ctx context.Context) (*api.Verification, error) {
	v, err := s.deps.Backend.VerificationStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: verification: %w", err)
	}
	return v, nil
}

// Subscribe подписывает на поток обновлений
func (s *coordinationService) Subscribe(fn func(Update)) broadcast.Handle {
	return s.updates.Add(fn)
}

// Unsubscribe снимает подписку на поток
func (s *coordinationService) Unsubscribe(h broadcast.Handle) bool {
	return s.updates.Remove(h)
}

func (s *coordinationService) onIncidentChange(ch incident.Change) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "coordination",
		"incident_id": ch.Incident.ID,
		"change":      ch.Kind,
	})

	var event webhook.WebhookEvent
	switch ch.Kind {
	case incident.ChangeTracked:
		if s.deps.Role == config.RoleResident && ch.Incident.ID != "" {
			s.deps.Coordinator.SetScope(session.Scope{Room: events.RoomIncident, IncidentID: ch.Incident.ID})
		}
		event = webhook.NewEvent(webhook.EventIncidentTracked)
	case incident.ChangeChatAvailable:
		if err := s.deps.Relay.JoinRoom(ch.Incident.ID); err != nil {
			log.WithError(err).Warn("Failed to join chat room")
		}
		event = webhook.NewEvent(webhook.EventChatAvailable)
	case incident.ChangeStatus:
		if ch.To.Terminal() {
			s.deps.Relay.LeaveRoom(ch.Incident.ID)
		}
		event = webhook.NewEvent(webhook.EventIncidentStatus)
	case incident.ChangeDiscarded:
		s.deps.Relay.LeaveRoom(ch.Incident.ID)
		event = webhook.NewEvent(webhook.EventIncidentDropped)
	}

	s.updates.Publish(Update{Type: UpdateIncident, Data: incidentUpdate{
		Change:   string(ch.Kind),
		Incident: ch.Incident,
	}})

	event.IncidentID = ch.Incident.ID
	if ch.From != models.StatusUnknown {
		event.From = ch.From.String()
	}
	if ch.To != models.StatusUnknown {
		event.To = ch.To.String()
	}
	s.publishWebhook(event)
}

type incidentUpdate struct {
	Change   string                `json:"change"`
	Incident models.IncidentRecord `json:"incident"`
}

func (s *coordinationService) onLocation(sample models.LocationSample) {
	if s.deps.Locations != nil {
		ctx, cancel := context.WithTimeout(s.baseCtx, sideEffectTimeout)
		if err := s.deps.Locations.Save(ctx, sample); err != nil {
			s.logger.WithField("service", "coordination").WithError(err).Warn("Failed to mirror location")
		}
		cancel()
	}
	s.updates.Publish(Update{Type: UpdateLocation, Data: sample})
}

func (s *coordinationService) onConnectionStatus(online bool) {
	s.deps.Relay.OnConnectionStatus(online)
	s.updates.Publish(Update{Type: UpdateConnection, Data: connectionUpdate{Online: online}})

	eventType := webhook.EventSessionOffline
	if online {
		eventType = webhook.EventSessionOnline
		if s.deps.Role == config.RoleResponder {
			// события ленты за время разрыва потеряны
			go s.refreshInbox()
		}
	}
	s.publishWebhook(webhook.NewEvent(eventType))
}

func (s *coordinationService) refreshInbox() {
	ctx, cancel := context.WithTimeout(s.baseCtx, 10*time.Second)
	defer cancel()
	_ = s.deps.Inbox.Refresh(ctx)
}

func (s *coordinationService) publishWebhook(event webhook.WebhookEvent) {
	if s.deps.Webhooks == nil {
		return
	}
	ctx, cancel := context.WithTimeout(s.baseCtx, sideEffectTimeout)
	defer cancel()
	if err := s.deps.Webhooks.Publish(ctx, event); err != nil {
		s.logger.WithFields(logrus.Fields{
			"service":    "coordination",
			"event_type": event.Type,
		}).WithError(err).Warn("Failed to publish webhook event")
	}
}

type connectionUpdate struct {
	Online bool `json:"online"`
}
