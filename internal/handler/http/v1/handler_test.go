package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shenikar/bear_coordination/internal/api"
	"github.com/shenikar/bear_coordination/internal/broadcast"
	"github.com/shenikar/bear_coordination/internal/chat"
	"github.com/shenikar/bear_coordination/internal/config"
	"github.com/shenikar/bear_coordination/internal/events"
	"github.com/shenikar/bear_coordination/internal/incident"
	"github.com/shenikar/bear_coordination/internal/models"
	"github.com/shenikar/bear_coordination/internal/routing"
	"github.com/shenikar/bear_coordination/internal/service"
	"github.com/shenikar/bear_coordination/internal/service/mocks"
	"github.com/shenikar/bear_coordination/internal/session"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"nhooyr.io/websocket"
)

var authHeader = map[string]string{"X-API-Key": "test-api-key"}

// newTestHandler создает новый экземпляр Handler с мокированным сервисом
func newTestHandler(t *testing.T) (*Handler, *mocks.MockCoordinationService, *gin.Engine) {
	ctrl := gomock.NewController(t)
	mockService := mocks.NewMockCoordinationService(ctrl)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	cfg := &config.Config{
		APIKeys: []string{"test-api-key"},
	}

	handler := NewHandler(mockService, logger, cfg)

	// Настройка Gin роутера для тестов
	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	return handler, mockService, router
}

// makeRequest - вспомогательная функция для выполнения HTTP-запросов
func makeRequest(router *gin.Engine, method, url string, body io.Reader, headers ...map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, h := range headers {
		for key, value := range h {
			req.Header.Set(key, value)
		}
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func jsonBody(t *testing.T, v any) io.Reader {
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

func ptr[T any](v T) *T { return &v }

func testRecord(status models.IncidentStatus) models.IncidentRecord {
	return models.IncidentRecord{
		ID:           "inc-1",
		Type:         models.IncidentTypeFire,
		Name:         "Fire Report",
		ReporterName: "Juan",
		Location:     models.LocationSample{Latitude: 14.6, Longitude: 121.0},
		Status:       status,
		CreatedAt:    time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestHealthCheck_NoAPIKey(t *testing.T) {
	_, _, router := newTestHandler(t)

	w := makeRequest(router, "GET", "/api/v1/system/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestAuth_MissingKey(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	mockService.EXPECT().Status().Times(0)

	w := makeRequest(router, "GET", "/api/v1/session", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "API key required")
}

func TestAuth_InvalidKey(t *testing.T) {
	_, _, router := newTestHandler(t)

	w := makeRequest(router, "GET", "/api/v1/session", nil, map[string]string{"X-API-Key": "wrong"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid API key")
}

func TestAuth_BearerAndQuery(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	mockService.EXPECT().Status().Return(service.SessionStatus{Role: config.RoleResident}).Times(2)

	w := makeRequest(router, "GET", "/api/v1/session", nil, map[string]string{"Authorization": "Bearer test-api-key"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = makeRequest(router, "GET", "/api/v1/session?api_key=test-api-key", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuth_NoKeysConfigured(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(APIKeyAuthMiddleware(&config.Config{}, logger))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := makeRequest(router, "GET", "/ping", nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestGetSession(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	mockService.EXPECT().Status().Return(service.SessionStatus{
		Role:       config.RoleResponder,
		State:      models.Connected,
		Online:     true,
		Refs:       1,
		Room:       events.RoomDuty,
		IncidentID: "",
	})

	w := makeRequest(router, "GET", "/api/v1/session", nil, authHeader)

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "responder", resp["role"])
	assert.Equal(t, "connected", resp["state"])
	assert.Equal(t, true, resp["online"])
}

func TestGetLocation(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mockService.EXPECT().LatestLocation(gomock.Any()).
		Return(&models.LocationSample{Latitude: 1.5, Longitude: 2.5, CapturedAt: at}, nil)

	w := makeRequest(router, "GET", "/api/v1/location", nil, authHeader)

	require.Equal(t, http.StatusOK, w.Code)
	var resp LocationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1.5, resp.Latitude)
	assert.Equal(t, 2.5, resp.Longitude)
	assert.True(t, at.Equal(resp.CapturedAt))
}

func TestGetLocation_NoLocation(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	mockService.EXPECT().LatestLocation(gomock.Any()).Return(nil, service.ErrNoLocation)

	w := makeRequest(router, "GET", "/api/v1/location", nil, authHeader)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPushFix(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	mockService.EXPECT().PushFix(gomock.Any()).DoAndReturn(func(s models.LocationSample) error {
		assert.Equal(t, 10.0, s.Latitude)
		assert.Equal(t, 20.0, s.Longitude)
		return nil
	})

	w := makeRequest(router, "POST", "/api/v1/location/fix",
		jsonBody(t, LocationFixRequest{Latitude: ptr(10.0), Longitude: ptr(20.0)}), authHeader)

	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestPushFix_ValidationError(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	mockService.EXPECT().PushFix(gomock.Any()).Times(0) // Сервис не должен вызываться

	w := makeRequest(router, "POST", "/api/v1/location/fix",
		jsonBody(t, LocationFixRequest{Latitude: ptr(95.0), Longitude: ptr(20.0)}), authHeader)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPushFix_InvalidJSON(t *testing.T) {
	_, _, router := newTestHandler(t)

	w := makeRequest(router, "POST", "/api/v1/location/fix", bytes.NewBufferString(`{"latitude":`), authHeader)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid request body")
}

func TestGetRoute(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	mockService.EXPECT().RouteToIncident(gomock.Any()).Return(&routing.Route{
		Points:   []routing.Point{{Latitude: 1, Longitude: 2}, {Latitude: 3, Longitude: 4}},
		Distance: 1200,
		Duration: 90 * time.Second,
	}, nil)

	w := makeRequest(router, "GET", "/api/v1/route", nil, authHeader)

	require.Equal(t, http.StatusOK, w.Code)
	var resp RouteResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Points, 2)
	assert.Equal(t, 1200.0, resp.DistanceMeters)
	assert.Equal(t, 90.0, resp.DurationSeconds)
}

func TestGetRoute_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"no incident", incident.ErrNoActiveIncident, http.StatusNotFound},
		{"no location", service.ErrNoLocation, http.StatusNotFound},
		{"no route", fmt.Errorf("service: route: %w", routing.ErrNoRoute), http.StatusNotFound},
		{"upstream", errors.New("dial tcp: refused"), http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, mockService, router := newTestHandler(t)
			mockService.EXPECT().RouteToIncident(gomock.Any()).Return(nil, tt.err)

			w := makeRequest(router, "GET", "/api/v1/route", nil, authHeader)

			assert.Equal(t, tt.code, w.Code)
		})
	}
}

func TestReportIncident_Success(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	reqBody := ReportIncidentRequest{
		Type:         "fire",
		ReporterName: "Juan",
		Latitude:     ptr(14.6),
		Longitude:    ptr(121.0),
	}

	mockService.EXPECT().
		ReportIncident(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req incident.ReportRequest) (models.IncidentRecord, error) {
			assert.Equal(t, models.IncidentTypeFire, req.Type)
			assert.Equal(t, "Juan", req.ReporterName)
			assert.Equal(t, 14.6, req.Location.Latitude)
			return testRecord(models.StatusPending), nil
		}).Times(1)

	w := makeRequest(router, "POST", "/api/v1/incidents", jsonBody(t, reqBody), authHeader)

	require.Equal(t, http.StatusCreated, w.Code)
	var resp IncidentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "inc-1", resp.ID)
	assert.Equal(t, "Pending", resp.Status)
	assert.False(t, resp.ChatAvailable)
}

func TestReportIncident_WithoutLocation(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	mockService.EXPECT().
		ReportIncident(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req incident.ReportRequest) (models.IncidentRecord, error) {
			assert.Equal(t, models.LocationSample{}, req.Location)
			return testRecord(models.StatusPending), nil
		})

	w := makeRequest(router, "POST", "/api/v1/incidents", jsonBody(t, ReportIncidentRequest{Type: "Police"}), authHeader)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestReportIncident_ValidationError(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	mockService.EXPECT().ReportIncident(gomock.Any(), gomock.Any()).Times(0) // Сервис не должен вызываться

	w := makeRequest(router, "POST", "/api/v1/incidents", jsonBody(t, ReportIncidentRequest{Type: "flood"}), authHeader)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportIncident_ServiceErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"wrong role", service.ErrWrongRole, http.StatusForbidden},
		{"already tracked", incident.ErrIncidentAlreadyTracked, http.StatusConflict},
		{"backend", errors.New("tracker: report incident: boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, mockService, router := newTestHandler(t)
			mockService.EXPECT().ReportIncident(gomock.Any(), gomock.Any()).Return(models.IncidentRecord{}, tt.err)

			w := makeRequest(router, "POST", "/api/v1/incidents", jsonBody(t, ReportIncidentRequest{Type: "Fire"}), authHeader)

			assert.Equal(t, tt.code, w.Code)
		})
	}
}

func TestTrackIncident(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	mockService.EXPECT().TrackIncident(gomock.Any(), "inc-1").Return(testRecord(models.StatusInProgress), nil)

	w := makeRequest(router, "POST", "/api/v1/incidents/inc-1/track", nil, authHeader)

	require.Equal(t, http.StatusOK, w.Code)
	var resp IncidentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "In Progress", resp.Status)
	assert.True(t, resp.ChatAvailable)
}

func TestTrackIncident_NotFound(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	notFound := &api.StatusError{Method: "GET", Path: "/incidents/nope", Code: http.StatusNotFound}
	mockService.EXPECT().TrackIncident(gomock.Any(), "nope").
		Return(models.IncidentRecord{}, fmt.Errorf("service: get incident: %w", notFound))

	w := makeRequest(router, "POST", "/api/v1/incidents/nope/track", nil, authHeader)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCurrentIncident(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	mockService.EXPECT().CurrentIncident().Return(testRecord(models.StatusPending), true)

	w := makeRequest(router, "GET", "/api/v1/incidents/current", nil, authHeader)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"inc-1"`)
}

func TestCurrentIncident_None(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	mockService.EXPECT().CurrentIncident().Return(models.IncidentRecord{}, false)

	w := makeRequest(router, "GET", "/api/v1/incidents/current", nil, authHeader)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestChangeStatus(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	mockService.EXPECT().ChangeStatus(gomock.Any(), models.StatusInProgress).Return(nil)

	w := makeRequest(router, "PUT", "/api/v1/incidents/current/status",
		jsonBody(t, ChangeStatusRequest{Status: "in progress"}), authHeader)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestChangeStatus_UnknownStatus(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	mockService.EXPECT().ChangeStatus(gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, "PUT", "/api/v1/incidents/current/status",
		jsonBody(t, ChangeStatusRequest{Status: "exploded"}), authHeader)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unknown status")
}

func TestChangeStatus_InvalidTransition(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	mockService.EXPECT().ChangeStatus(gomock.Any(), models.StatusPending).Return(&incident.InvalidTransitionError{
		IncidentID: "inc-1",
		From:       models.StatusResolved,
		To:         models.StatusPending,
	})

	w := makeRequest(router, "PUT", "/api/v1/incidents/current/status",
		jsonBody(t, ChangeStatusRequest{Status: "Pending"}), authHeader)

	require.Equal(t, http.StatusConflict, w.Code)
	var resp TransitionErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Resolved", resp.From)
	assert.Equal(t, "Pending", resp.To)
}

func TestChangeStatus_NoActiveIncident(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	mockService.EXPECT().ChangeStatus(gomock.Any(), models.StatusResolved).Return(incident.ErrNoActiveIncident)

	w := makeRequest(router, "PUT", "/api/v1/incidents/current/status",
		jsonBody(t, ChangeStatusRequest{Status: "Resolved"}), authHeader)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetInbox(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	mockService.EXPECT().Inbox(gomock.Any(), true).Return([]models.IncidentSummary{
		{ID: "b", Name: "Police Report", Type: "Police", Status: models.StatusPending},
		{ID: "a", Name: "Fire Report", Type: "Fire", Status: models.StatusInProgress},
	}, nil)

	w := makeRequest(router, "GET", "/api/v1/inbox?refresh=true", nil, authHeader)

	require.Equal(t, http.StatusOK, w.Code)
	var resp []InboxItemResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, "b", resp[0].ID)
	assert.Equal(t, "In Progress", resp[1].Status)
}

func TestGetInbox_WrongRole(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	mockService.EXPECT().Inbox(gomock.Any(), false).Return(nil, service.ErrWrongRole)

	w := makeRequest(router, "GET", "/api/v1/inbox", nil, authHeader)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestChatHistory(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	mockService.EXPECT().ChatHistory(gomock.Any(), "inc-1").Return([]models.ChatMessage{
		{ID: "m1", IncidentID: "inc-1", SenderID: "u1", Content: "on my way"},
	}, nil)

	w := makeRequest(router, "GET", "/api/v1/chat/messages?incident_id=inc-1", nil, authHeader)

	require.Equal(t, http.StatusOK, w.Code)
	var resp []ChatMessageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "on my way", resp[0].Content)
}

func TestChatHistory_NotJoined(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	mockService.EXPECT().ChatHistory(gomock.Any(), "").Return(nil, chat.ErrNotJoined)

	w := makeRequest(router, "GET", "/api/v1/chat/messages", nil, authHeader)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSendMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"accepted", nil, http.StatusAccepted},
		{"not joined", chat.ErrNotJoined, http.StatusConflict},
		{"too long", chat.ErrMessageTooLong, http.StatusBadRequest},
		{"empty after trim", chat.ErrEmptyMessage, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, mockService, router := newTestHandler(t)
			mockService.EXPECT().SendMessage("hello").Return(tt.err)

			w := makeRequest(router, "POST", "/api/v1/chat/messages", jsonBody(t, SendMessageRequest{Content: "hello"}), authHeader)

			assert.Equal(t, tt.code, w.Code)
		})
	}
}

func TestSendMessage_MissingContent(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	mockService.EXPECT().SendMessage(gomock.Any()).Times(0)

	w := makeRequest(router, "POST", "/api/v1/chat/messages", bytes.NewBufferString(`{}`), authHeader)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetVerification(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	mockService.EXPECT().Verification(gomock.Any()).Return(&api.Verification{Status: "rejected", RejectionReason: "blurry photo"}, nil)

	w := makeRequest(router, "GET", "/api/v1/verification", nil, authHeader)

	require.Equal(t, http.StatusOK, w.Code)
	var resp VerificationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "rejected", resp.Status)
	assert.Equal(t, "blurry photo", resp.RejectionReason)
}

func TestGetVerification_BackendError(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	mockService.EXPECT().Verification(gomock.Any()).Return(nil, errors.New("service: verification: timeout"))

	w := makeRequest(router, "GET", "/api/v1/verification", nil, authHeader)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestStream_BindFailure(t *testing.T) {
	_, mockService, router := newTestHandler(t)
	mockService.EXPECT().Bind(gomock.Any()).Return(session.SessionHandle{}, errors.New("service: bind session: boom"))
	mockService.EXPECT().Unbind(gomock.Any()).Times(0)

	w := makeRequest(router, "GET", "/api/v1/stream", nil, authHeader)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestStream_DeliversUpdates(t *testing.T) {
	// Подготовка
	_, mockService, router := newTestHandler(t)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	subscribed := make(chan func(service.Update), 1)
	unbound := make(chan struct{})

	// Ожидания
	mockService.EXPECT().Bind(gomock.Any()).Return(session.SessionHandle{}, nil)
	mockService.EXPECT().Subscribe(gomock.Any()).DoAndReturn(func(fn func(service.Update)) broadcast.Handle {
		subscribed <- fn
		return broadcast.Handle{}
	})
	mockService.EXPECT().Status().Return(service.SessionStatus{Role: config.RoleResident, Refs: 1})
	mockService.EXPECT().Unsubscribe(gomock.Any()).Return(true)
	mockService.EXPECT().Unbind(gomock.Any()).DoAndReturn(func(session.SessionHandle) error {
		close(unbound)
		return nil
	})

	// Действие
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/stream"
	conn, _, err := websocket.Dial(ctx, url, &websocket.DialOptions{
		HTTPHeader: http.Header{"X-Api-Key": []string{"test-api-key"}},
	})
	require.NoError(t, err)

	// Проверки
	var first service.Update
	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &first))
	assert.Equal(t, UpdateSession, first.Type)

	publish := <-subscribed
	publish(service.Update{Type: service.UpdateLocation, Data: models.LocationSample{Latitude: 7, Longitude: 8}})

	_, data, err = conn.Read(ctx)
	require.NoError(t, err)
	var second struct {
		Type string                `json:"type"`
		Data models.LocationSample `json:"data"`
	}
	require.NoError(t, json.Unmarshal(data, &second))
	assert.Equal(t, service.UpdateLocation, second.Type)
	assert.Equal(t, 7.0, second.Data.Latitude)

	_ = conn.Close(websocket.StatusNormalClosure, "")
	select {
	case <-unbound:
	case <-ctx.Done():
		t.Fatal("session was not unbound after stream close")
	}
}

func TestRawWriter_UnwrapsGinWriter(t *testing.T) {
	// Подготовка
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	// Действие
	w := rawWriter(c)

	// Проверки
	assert.Same(t, rec, w)
}
