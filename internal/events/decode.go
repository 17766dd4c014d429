package events

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shenikar/bear_coordination/internal/models"
)

type decodeFunc func(v *validator.Validate, data json.RawMessage) (any, error)

type route struct {
	category Category
	decode   decodeFunc
}

// routes сопоставляет имя события на проводе категории и декодеру
var routes = map[string]route{
	EventAuthenticated:        {CategoryAuth, decodeAuthenticated},
	EventAuthenticationFailed: {CategoryAuth, decodeAuthenticationFailed},
	EventJoinedIncident:       {CategoryJoin, decodeJoinAck(RoomIncident)},
	EventJoinedChat:           {CategoryJoin, decodeJoinAck(RoomChat)},
	EventJoinedDuty:           {CategoryJoin, decodeJoinAck(RoomDuty)},
	EventIncidentStatusUpdate: {CategoryStatus, decodeStatusUpdate},
	EventReceiveMessage:       {CategoryChat, decodeReceiveMessage},
	EventIncidentCreated:      {CategoryFeed, decodeIncidentFeed(FeedCreated)},
	EventIncidentUpdated:      {CategoryFeed, decodeIncidentFeed(FeedUpdated)},
	EventIncidentDeleted:      {CategoryFeed, decodeIncidentDeleted},
	EventServerError:          {CategoryServerError, decodeServerError},
}

// CategoryOf возвращает категорию входящего события
func CategoryOf(name string) (Category, bool) {
	r, ok := routes[name]
	return r.category, ok
}

// isEmpty сообщает, что полезная нагрузка отсутствует
func isEmpty(data json.RawMessage) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// strictDecode разбирает объект и проверяет обязательные поля
func strictDecode(v *validator.Validate, data json.RawMessage, dst any) error {
	if isEmpty(data) {
		return fmt.Errorf("payload is empty")
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return err
	}
	return v.Struct(dst)
}

func decodeAuthenticated(v *validator.Validate, data json.RawMessage) (any, error) {
	var w authenticatedWire
	if err := strictDecode(v, data, &w); err != nil {
		return nil, err
	}
	return AuthResult{Authenticated: true, UserID: w.UserID}, nil
}

func decodeAuthenticationFailed(_ *validator.Validate, data json.RawMessage) (any, error) {
	var w messageWire
	if !isEmpty(data) {
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
	}
	return AuthResult{Authenticated: false, Message: w.Message}, nil
}

func decodeJoinAck(room RoomKind) decodeFunc {
	return func(_ *validator.Validate, data json.RawMessage) (any, error) {
		var w joinAckWire
		if !isEmpty(data) {
			if err := json.Unmarshal(data, &w); err != nil {
				return nil, err
			}
		}
		return JoinAck{Room: room, IncidentID: w.IncidentID}, nil
	}
}

func decodeStatusUpdate(v *validator.Validate, data json.RawMessage) (any, error) {
	var w statusUpdateWire
	if err := strictDecode(v, data, &w); err != nil {
		return nil, err
	}
	return StatusUpdate{IncidentID: w.IncidentID, NewStatus: w.NewStatus}, nil
}

func decodeReceiveMessage(v *validator.Validate, data json.RawMessage) (any, error) {
	var w receiveMessageWire
	if err := strictDecode(v, data, &w); err != nil {
		return nil, err
	}
	msg := models.ChatMessage{
		ID:         w.MessageID,
		IncidentID: w.IncidentID,
		SenderID:   w.SenderID,
		SenderName: w.SenderName,
		Content:    w.Content,
	}
	if w.Timestamp > 0 {
		msg.SentAt = time.UnixMilli(w.Timestamp).UTC()
	}
	return msg, nil
}

func decodeIncidentFeed(kind FeedKind) decodeFunc {
	return func(v *validator.Validate, data json.RawMessage) (any, error) {
		var w incidentEnvelopeWire
		if err := strictDecode(v, data, &w); err != nil {
			return nil, err
		}
		summary, err := w.Incident.toSummary()
		if err != nil {
			return nil, err
		}
		return FeedEvent{Kind: kind, IncidentID: summary.ID, Incident: summary}, nil
	}
}

func decodeIncidentDeleted(v *validator.Validate, data json.RawMessage) (any, error) {
	var w incidentDeletedWire
	if err := strictDecode(v, data, &w); err != nil {
		return nil, err
	}
	return FeedEvent{Kind: FeedDeleted, IncidentID: w.IncidentID}, nil
}

func decodeServerError(_ *validator.Validate, data json.RawMessage) (any, error) {
	var w messageWire
	if !isEmpty(data) {
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
	}
	return ServerError{Message: w.Message}, nil
}

func (w *incidentWire) toSummary() (*models.IncidentSummary, error) {
	status := models.StatusPending
	if w.Status != "" {
		parsed, ok := models.ParseIncidentStatus(w.Status)
		if !ok {
			return nil, fmt.Errorf("unknown incident status %q", w.Status)
		}
		status = parsed
	}
	return &models.IncidentSummary{
		ID:          w.ID,
		Name:        w.Name,
		Type:        w.Type,
		Description: w.Description,
		Contact:     w.Contact,
		Location: models.LocationSample{
			Latitude:  *w.Location.Latitude,
			Longitude: *w.Location.Longitude,
		},
		Status:    status,
		CreatedAt: w.CreatedAt,
	}, nil
}
