package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shenikar/bear_coordination/internal/api"
	"github.com/shenikar/bear_coordination/internal/chat"
	"github.com/shenikar/bear_coordination/internal/config"
	"github.com/shenikar/bear_coordination/internal/events"
	"github.com/shenikar/bear_coordination/internal/incident"
	incident_mocks "github.com/shenikar/bear_coordination/internal/incident/mocks"
	"github.com/shenikar/bear_coordination/internal/location"
	"github.com/shenikar/bear_coordination/internal/models"
	"github.com/shenikar/bear_coordination/internal/routing"
	"github.com/shenikar/bear_coordination/internal/session"
	"github.com/shenikar/bear_coordination/internal/webhook"
	webhook_mocks "github.com/shenikar/bear_coordination/internal/webhook/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type sentEvent struct {
	event   string
	payload any
}

// fakeTransport подключается мгновенно и записывает исходящие события
type fakeTransport struct {
	router *events.Router

	mu    sync.Mutex
	state models.ConnectionState
	sent  []sentEvent
}

func (f *fakeTransport) Connect(context.Context, string) error {
	f.mu.Lock()
	f.state = models.Connected
	f.mu.Unlock()
	return f.router.Publish(events.CategoryConnection, models.Connected)
}

func (f *fakeTransport) Disconnect() {
	f.mu.Lock()
	f.state = models.Disconnected
	f.mu.Unlock()
	_ = f.router.Publish(events.CategoryConnection, models.Disconnected)
}

func (f *fakeTransport) Send(event string, payload any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentEvent{event: event, payload: payload})
}

func (f *fakeTransport) State() models.ConnectionState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeTransport) count(event string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, s := range f.sent {
		if s.event == event {
			n++
		}
	}
	return n
}

type fakeStreamer struct {
	mu     sync.Mutex
	latest *models.LocationSample
}

func (f *fakeStreamer) Start(time.Duration, time.Duration) error { return nil }
func (f *fakeStreamer) Stop()                                    {}
func (f *fakeStreamer) Latest() (models.LocationSample, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.latest == nil {
		return models.LocationSample{}, false
	}
	return *f.latest, true
}

type fakeBackend struct {
	incident *models.IncidentSummary
	active   *models.IncidentSummary
	err      error
}

func (f *fakeBackend) GetIncident(context.Context, string) (*models.IncidentSummary, error) {
	return f.incident, f.err
}

func (f *fakeBackend) MyActiveIncident(context.Context) (*models.IncidentSummary, error) {
	return f.active, f.err
}

func (f *fakeBackend) VerificationStatus(context.Context) (*api.Verification, error) {
	return &api.Verification{Status: "approved"}, f.err
}

type fakeRoutes struct {
	from, to models.LocationSample
}

func (f *fakeRoutes) Route(_ context.Context, from, to models.LocationSample) (*routing.Route, error) {
	f.from, f.to = from, to
	return &routing.Route{Distance: 42}, nil
}

type fakeStore struct {
	mu          sync.Mutex
	saved       []models.LocationSample
	stored      *models.LocationSample
	invalidated int
}

func (f *fakeStore) Save(_ context.Context, s models.LocationSample) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, s)
	return nil
}

func (f *fakeStore) Latest(context.Context) (*models.LocationSample, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stored, nil
}

func (f *fakeStore) Invalidate(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated++
	return nil
}

type testEnv struct {
	svc       CoordinationService
	router    *events.Router
	transport *fakeTransport
	streamer  *fakeStreamer
	coord     *session.Coordinator
	api       *incident_mocks.MockAPI
	webhooks  *webhook_mocks.MockWebhookPublisher
	backend   *fakeBackend
	routes    *fakeRoutes
	store     *fakeStore

	mu      sync.Mutex
	updates []Update
}

func (e *testEnv) updateTypes() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.updates))
	for _, u := range e.updates {
		out = append(out, u.Type)
	}
	return out
}

// newTestEnv собирает фасад из настоящих компонентов с фейковым транспортом
func newTestEnv(t *testing.T, role string, scope session.Scope) *testEnv {
	ctrl := gomock.NewController(t)
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	router := events.NewRouter(logger)
	t.Cleanup(router.Close)

	env := &testEnv{
		router:    router,
		transport: &fakeTransport{router: router},
		streamer:  &fakeStreamer{},
		api:       incident_mocks.NewMockAPI(ctrl),
		webhooks:  webhook_mocks.NewMockWebhookPublisher(ctrl),
		backend:   &fakeBackend{},
		routes:    &fakeRoutes{},
		store:     &fakeStore{},
	}
	env.coord = session.NewCoordinator(env.transport, env.streamer, router, logger, session.Options{
		Endpoint:    "http://localhost:5000/",
		Token:       "token-1",
		Scope:       scope,
		JoinTimeout: time.Minute,
	})

	env.svc = NewCoordinationService(context.Background(), Deps{
		Role:        role,
		Router:      router,
		Coordinator: env.coord,
		Tracker:     incident.NewTracker(env.api, logger),
		Inbox:       incident.NewInbox(incident_mocks.NewMockLister(ctrl), logger),
		Relay:       chat.NewRelay(env.coord, noHistory{}, logger),
		Feed:        location.NewDeviceFeed(),
		Backend:     env.backend,
		Routes:      env.routes,
		Locations:   env.store,
		Webhooks:    env.webhooks,
	}, logger)
	env.svc.Subscribe(func(u Update) {
		env.mu.Lock()
		env.updates = append(env.updates, u)
		env.mu.Unlock()
	})
	return env
}

type noHistory struct{}

func (noHistory) ChatHistory(context.Context, string) ([]models.ChatMessage, error) {
	return []models.ChatMessage{{ID: "m1", Content: "hello"}}, nil
}

func TestTrackIncident_ResidentJoinsIncidentRoom(t *testing.T) {
	// Подготовка
	env := newTestEnv(t, config.RoleResident, session.Scope{Room: events.RoomIncident})
	env.backend.incident = &models.IncidentSummary{ID: "X", Name: "Fire Report", Type: "Fire", Status: models.StatusPending}

	// Ожидания
	env.webhooks.EXPECT().
		Publish(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e webhook.WebhookEvent) error {
			assert.Equal(t, webhook.EventIncidentTracked, e.Type)
			assert.Equal(t, "X", e.IncidentID)
			assert.Equal(t, "Pending", e.To)
			return nil
		})

	// Действие
	rec, err := env.svc.TrackIncident(context.Background(), "X")

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, "X", rec.ID)
	assert.Equal(t, session.Scope{Room: events.RoomIncident, IncidentID: "X"}, env.coord.Scope())
	cur, ok := env.svc.CurrentIncident()
	require.True(t, ok)
	assert.Equal(t, models.StatusPending, cur.Status)
	assert.Equal(t, []string{UpdateIncident}, env.updateTypes())
}

func TestStatusEvent_OpensChat(t *testing.T) {
	// Подготовка
	env := newTestEnv(t, config.RoleResident, session.Scope{Room: events.RoomIncident})
	env.backend.incident = &models.IncidentSummary{ID: "X", Type: "Fire", Status: models.StatusPending}
	env.webhooks.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	_, err := env.svc.TrackIncident(context.Background(), "X")
	require.NoError(t, err)

	// Действие
	require.NoError(t, env.router.Dispatch(events.EventIncidentStatusUpdate, json.RawMessage(`{"newStatus":"In Progress","incidentId":"X"}`)))

	// Проверки
	require.Eventually(t, func() bool { return env.transport.count(events.EventJoinChat) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "X", env.svc.Status().ChatRoom)

	require.NoError(t, env.router.Dispatch(events.EventIncidentStatusUpdate, json.RawMessage(`{"newStatus":"Resolved","incidentId":"X"}`)))
	require.Eventually(t, func() bool { return env.transport.count(events.EventLeaveChat) == 1 }, time.Second, 5*time.Millisecond)
	assert.Empty(t, env.svc.Status().ChatRoom)
}

func TestReportIncident_WrongRole(t *testing.T) {
	env := newTestEnv(t, config.RoleResponder, session.Scope{Room: events.RoomDuty})

	_, err := env.svc.ReportIncident(context.Background(), incident.ReportRequest{Type: models.IncidentTypeFire})

	assert.ErrorIs(t, err, ErrWrongRole)
}

func TestReportIncident_UsesLatestLocation(t *testing.T) {
	env := newTestEnv(t, config.RoleResident, session.Scope{Room: events.RoomIncident})
	sample := models.LocationSample{Latitude: 14.6, Longitude: 120.98}
	env.streamer.latest = &sample
	env.webhooks.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	env.api.EXPECT().
		ReportIncident(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, rec *models.IncidentRecord) (string, error) {
			assert.Equal(t, sample, rec.Location)
			return "new-1", nil
		})

	rec, err := env.svc.ReportIncident(context.Background(), incident.ReportRequest{Type: models.IncidentTypeFire})

	require.NoError(t, err)
	assert.Equal(t, "new-1", rec.ID)
	assert.Equal(t, "new-1", env.coord.Scope().IncidentID)
}

func TestLatestLocation(t *testing.T) {
	env := newTestEnv(t, config.RoleResponder, session.Scope{Room: events.RoomDuty})

	_, err := env.svc.LatestLocation(context.Background())
	assert.ErrorIs(t, err, ErrNoLocation)

	mirrored := models.LocationSample{Latitude: 1, Longitude: 2}
	env.store.stored = &mirrored
	got, err := env.svc.LatestLocation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, mirrored, *got)

	live := models.LocationSample{Latitude: 3, Longitude: 4}
	env.streamer.latest = &live
	got, err = env.svc.LatestLocation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, live, *got)
}

func TestRouteToIncident(t *testing.T) {
	env := newTestEnv(t, config.RoleResponder, session.Scope{Room: events.RoomDuty})

	_, err := env.svc.RouteToIncident(context.Background())
	assert.ErrorIs(t, err, incident.ErrNoActiveIncident)

	env.webhooks.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	target := models.LocationSample{Latitude: 14.61, Longitude: 120.99}
	env.backend.incident = &models.IncidentSummary{ID: "X", Status: models.StatusInProgress, Location: target}
	_, err = env.svc.TrackIncident(context.Background(), "X")
	require.NoError(t, err)
	from := models.LocationSample{Latitude: 14.6, Longitude: 120.98}
	env.streamer.latest = &from

	route, err := env.svc.RouteToIncident(context.Background())

	require.NoError(t, err)
	assert.InDelta(t, 42, route.Distance, 1e-9)
	assert.Equal(t, from, env.routes.from)
	assert.Equal(t, target, env.routes.to)
}

func TestBindUnbind_MirrorsLocation(t *testing.T) {
	// Подготовка
	env := newTestEnv(t, config.RoleResponder, session.Scope{Room: events.RoomDuty})
	env.webhooks.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	// Действие
	h, err := env.svc.Bind(context.Background())
	require.NoError(t, err)
	require.NoError(t, env.router.Publish(events.CategoryLocation, models.LocationSample{Latitude: 14.6, Longitude: 120.98}))

	// Проверки
	require.Eventually(t, func() bool {
		env.store.mu.Lock()
		defer env.store.mu.Unlock()
		return len(env.store.saved) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, env.svc.Status().Refs)

	require.NoError(t, env.svc.Unbind(h))
	assert.Equal(t, 1, env.store.invalidated)
	assert.Error(t, env.svc.Unbind(h))
}

func TestResume(t *testing.T) {
	env := newTestEnv(t, config.RoleResident, session.Scope{Room: events.RoomIncident})
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	require.NoError(t, Resume(context.Background(), env.svc, env.backend, logger))
	_, ok := env.svc.CurrentIncident()
	assert.False(t, ok)

	env.webhooks.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	active := &models.IncidentSummary{ID: "X", Status: models.StatusInProgress}
	env.backend.active = active
	env.backend.incident = active
	require.NoError(t, Resume(context.Background(), env.svc, env.backend, logger))
	cur, ok := env.svc.CurrentIncident()
	require.True(t, ok)
	assert.Equal(t, "X", cur.ID)
	// инцидент уже в работе, чат открывается сразу
	assert.Equal(t, 1, env.transport.count(events.EventJoinChat))
}

func TestVerificationAndHistory(t *testing.T) {
	env := newTestEnv(t, config.RoleResident, session.Scope{Room: events.RoomIncident})

	v, err := env.svc.Verification(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "approved", v.Status)

	msgs, err := env.svc.ChatHistory(context.Background(), "X")
	require.NoError(t, err)
	assert.Len(t, msgs, 1)

	env.backend.err = errors.New("down")
	_, err = env.svc.Verification(context.Background())
	assert.Error(t, err)
}

func TestInbox_ResidentRejected(t *testing.T) {
	env := newTestEnv(t, config.RoleResident, session.Scope{Room: events.RoomIncident})

	_, err := env.svc.Inbox(context.Background(), false)

	assert.ErrorIs(t, err, ErrWrongRole)
}
