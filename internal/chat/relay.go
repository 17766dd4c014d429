// Package chat - чат комнаты инцидента поверх общего канала сессии.
//
// Relay помнит одну текущую комнату. Входящие сообщения другой комнаты
// отбрасываются, сообщение без incidentId относится к текущей.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/shenikar/bear_coordination/internal/broadcast"
	"github.com/shenikar/bear_coordination/internal/events"
	"github.com/shenikar/bear_coordination/internal/models"
	"github.com/sirupsen/logrus"
)

// MaxMessageLength - предел длины сообщения в символах
const MaxMessageLength = 1000

var (
	ErrNotJoined      = errors.New("chat room is not joined")
	ErrEmptyRoom      = errors.New("incident id is required")
	ErrEmptyMessage   = errors.New("message is empty")
	ErrMessageTooLong = fmt.Errorf("message exceeds %d characters", MaxMessageLength)
)

// Sender отправляет события в канал сессии
type Sender interface {
	Send(event string, payload any)
}

// History загружает историю сообщений инцидента
type History interface {
	ChatHistory(ctx context.Context, incidentID string) ([]models.ChatMessage, error)
}

// Relay - чат одной комнаты инцидента
type Relay struct {
	sender  Sender
	history History
	logger  *logrus.Logger

	// notifyMu упорядочивает смену комнаты и доставку сообщений
	notifyMu sync.Mutex

	mu   sync.Mutex
	room string

	subscribers *broadcast.Registry[models.ChatMessage]
}

// NewRelay создает чат без комнаты
func NewRelay(sender Sender, history History, logger *logrus.Logger) *Relay {
	return &Relay{
		sender:      sender,
		history:     history,
		logger:      logger,
		subscribers: broadcast.NewRegistry[models.ChatMessage](),
	}
}

// Attach подписывает чат на входящие сообщения маршрутизатора
func (r *Relay) Attach(router *events.Router) broadcast.Handle {
	return router.OnChat(r.deliver)
}

// Room возвращает текущую комнату или пустую строку
func (r *Relay) Room() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.room
}

// JoinRoom входит в комнату инцидента. Повторный вход в ту же комнату ничего
// не отправляет; вход в другую сначала покидает текущую.
func (r *Relay) JoinRoom(incidentID string) error {
	if incidentID == "" {
		return ErrEmptyRoom
	}

	r.notifyMu.Lock()
	defer r.notifyMu.Unlock()

	r.mu.Lock()
	prev := r.room
	if prev == incidentID {
		r.mu.Unlock()
		return nil
	}
	r.room = incidentID
	r.mu.Unlock()

	if prev != "" {
		r.sender.Send(events.EventLeaveChat, roomPayload(prev))
	}
	r.sender.Send(events.EventJoinChat, roomPayload(incidentID))
	r.logger.WithFields(logrus.Fields{
		"component":   "chat",
		"incident_id": incidentID,
	}).Info("Joined chat room")
	return nil
}

// LeaveRoom покидает комнату. Если комната не была занята, ничего не делает.
func (r *Relay) LeaveRoom(incidentID string) {
	r.notifyMu.Lock()
	defer r.notifyMu.Unlock()

	r.mu.Lock()
	if r.room == "" || r.room != incidentID {
		r.mu.Unlock()
		return
	}
	r.room = ""
	r.mu.Unlock()

	r.sender.Send(events.EventLeaveChat, roomPayload(incidentID))
	r.logger.WithFields(logrus.Fields{
		"component":   "chat",
		"incident_id": incidentID,
	}).Info("Left chat room")
}

// Send отправляет сообщение в текущую комнату
func (r *Relay) Send(content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return ErrEmptyMessage
	}
	if utf8.RuneCountInString(content) > MaxMessageLength {
		return ErrMessageTooLong
	}

	room := r.Room()
	if room == "" {
		return ErrNotJoined
	}
	r.sender.Send(events.EventSendMessage, map[string]string{
		"incidentId": room,
		"content":    content,
	})
	return nil
}

// Subscribe подписывает на сообщения текущей комнаты
func (r *Relay) Subscribe(fn func(models.ChatMessage)) broadcast.Handle {
	return r.subscribers.Add(fn)
}

// Unsubscribe снимает подписку
func (r *Relay) Unsubscribe(h broadcast.Handle) bool {
	return r.subscribers.Remove(h)
}

// OnConnectionStatus повторно входит в комнату после восстановления сессии
func (r *Relay) OnConnectionStatus(online bool) {
	if !online {
		return
	}
	r.notifyMu.Lock()
	defer r.notifyMu.Unlock()

	room := r.Room()
	if room == "" {
		return
	}
	r.sender.Send(events.EventJoinChat, roomPayload(room))
	r.logger.WithFields(logrus.Fields{
		"component":   "chat",
		"incident_id": room,
	}).Debug("Rejoined chat room")
}

// History загружает историю комнаты; пустой id означает текущую комнату
func (r *Relay) History(ctx context.Context, incidentID string) ([]models.ChatMessage, error) {
	if incidentID == "" {
		incidentID = r.Room()
	}
	if incidentID == "" {
		return nil, ErrNotJoined
	}
	msgs, err := r.history.ChatHistory(ctx, incidentID)
	if err != nil {
		return nil, fmt.Errorf("chat: history: %w", err)
	}
	return msgs, nil
}

func (r *Relay) deliver(msg models.ChatMessage) {
	r.notifyMu.Lock()
	defer r.notifyMu.Unlock()

	room := r.Room()
	if room == "" || (msg.IncidentID != "" && msg.IncidentID != room) {
		r.logger.WithFields(logrus.Fields{
			"component":   "chat",
			"incident_id": msg.IncidentID,
			"room":        room,
		}).Debug("Discarding message for another room")
		return
	}
	msg.IncidentID = room
	r.subscribers.Publish(msg)
}

func roomPayload(incidentID string) map[string]string {
	return map[string]string{"incidentId": incidentID}
}
