package events

import (
	"time"

	"github.com/shenikar/bear_coordination/internal/models"
)

// RoomKind - тип комнаты, к которой относится подтверждение входа
type RoomKind string

const (
	RoomDuty     RoomKind = "duty"
	RoomIncident RoomKind = "incident"
	RoomChat     RoomKind = "chat"
)

// AuthResult - ответ сервера на authenticate
type AuthResult struct {
	Authenticated bool
	UserID        string
	Message       string
}

// JoinAck - подтверждение входа в комнату. IncidentID может быть пустым.
type JoinAck struct {
	Room       RoomKind
	IncidentID string
}

// StatusUpdate - уведомление о смене статуса инцидента.
// NewStatus остается строкой: сопоставление выполняет машина состояний.
type StatusUpdate struct {
	IncidentID string
	NewStatus  string
}

// FeedKind - вид события ленты инцидентов
type FeedKind string

const (
	FeedCreated FeedKind = "created"
	FeedUpdated FeedKind = "updated"
	FeedDeleted FeedKind = "deleted"
)

// FeedEvent - изменение ленты инцидентов спасателя
type FeedEvent struct {
	Kind       FeedKind
	IncidentID string
	Incident   *models.IncidentSummary
}

// ServerError - ошибка, о которой сообщил сервер
type ServerError struct {
	Message string
}

// Event - доменное событие после декодирования
type Event struct {
	Category   Category
	Name       string
	Payload    any
	ReceivedAt time.Time
}

// Схемы полезной нагрузки на проводе

type authenticatedWire struct {
	UserID string `json:"userId" validate:"required"`
}

type messageWire struct {
	Message string `json:"message"`
}

type joinAckWire struct {
	IncidentID string `json:"incidentId"`
}

type statusUpdateWire struct {
	IncidentID string `json:"incidentId" validate:"required"`
	NewStatus  string `json:"newStatus" validate:"required"`
}

type receiveMessageWire struct {
	MessageID  string `json:"messageId"`
	IncidentID string `json:"incidentId"`
	SenderID   string `json:"senderId" validate:"required"`
	SenderName string `json:"senderName"`
	Content    string `json:"content" validate:"required"`
	Timestamp  int64  `json:"timestamp"`
}

type locationWire struct {
	Latitude  *float64 `json:"latitude" validate:"required,latitude"`
	Longitude *float64 `json:"longitude" validate:"required,longitude"`
}

type incidentWire struct {
	ID          string        `json:"_id" validate:"required"`
	Name        string        `json:"name" validate:"required"`
	Type        string        `json:"type" validate:"required"`
	Description string        `json:"description"`
	Contact     string        `json:"contact"`
	Location    *locationWire `json:"location" validate:"required"`
	Status      string        `json:"status"`
	CreatedAt   time.Time     `json:"createdAt"`
}

type incidentEnvelopeWire struct {
	Incident *incidentWire `json:"incident" validate:"required"`
}

type incidentDeletedWire struct {
	IncidentID string `json:"incidentId" validate:"required"`
}
