// Package session владеет транспортным каналом и стримером координат на время
// смены спасателя или отслеживания инцидента жителем.
//
// Экраны подключаются через Bind/Unbind со счетчиком ссылок: первый Bind
// поднимает соединение, последний Unbind его закрывает. Статус соединения
// становится true только после подтверждения входа в комнату.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/bear_coordination/internal/broadcast"
	"github.com/shenikar/bear_coordination/internal/events"
	"github.com/shenikar/bear_coordination/internal/models"
	"github.com/sirupsen/logrus"
)

// ErrUnknownHandle - хэндл не выдан координатором или уже освобожден
var ErrUnknownHandle = errors.New("unknown session handle")

// Transport - транспортный канал
type Transport interface {
	Connect(ctx context.Context, endpoint string) error
	Disconnect()
	Send(event string, payload any)
	State() models.ConnectionState
}

// LocationSource - стример координат
type LocationSource interface {
	Start(interval, minInterval time.Duration) error
	Stop()
	Latest() (models.LocationSample, bool)
}

// Scope - комната, в которую входит сессия после аутентификации
type Scope struct {
	Room       events.RoomKind
	IncidentID string
}

// Options - параметры сессии
type Options struct {
	Endpoint       string
	Token          string
	Scope          Scope
	StreamLocation bool
	Interval       time.Duration
	MinInterval    time.Duration
	JoinTimeout    time.Duration
	// MaxJoinTimeout ограничивает рост окна ожидания при повторах
	MaxJoinTimeout time.Duration
}

// SessionHandle - токен привязки экрана к сессии
type SessionHandle struct {
	id uuid.UUID
}

// IsZero сообщает, что хэндл пустой
func (h SessionHandle) IsZero() bool {
	return h.id == uuid.Nil
}

func (h SessionHandle) String() string {
	return h.id.String()
}

// Coordinator - единственный владелец транспорта и стримера
type Coordinator struct {
	transport Transport
	streamer  LocationSource
	router    *events.Router
	logger    *logrus.Logger
	opts      Options

	mu            sync.Mutex
	handles       map[uuid.UUID]struct{}
	routerHandles []broadcast.Handle

	locationListeners *broadcast.Registry[models.LocationSample]
	statusListeners   *broadcast.Registry[bool]

	// notifyMu упорядочивает обработку рукопожатия и уведомления о статусе
	notifyMu sync.Mutex
	hs       handshake
}

// NewCoordinator создает координатор без активной сессии
func NewCoordinator(transport Transport, streamer LocationSource, router *events.Router, logger *logrus.Logger, opts Options) *Coordinator {
	if opts.JoinTimeout <= 0 {
		opts.JoinTimeout = 10 * time.Second
	}
	if opts.MaxJoinTimeout < opts.JoinTimeout {
		opts.MaxJoinTimeout = 6 * opts.JoinTimeout
	}
	c := &Coordinator{
		transport:         transport,
		streamer:          streamer,
		router:            router,
		logger:            logger,
		opts:              opts,
		handles:           make(map[uuid.UUID]struct{}),
		locationListeners: broadcast.NewRegistry[models.LocationSample](),
		statusListeners:   broadcast.NewRegistry[bool](),
	}
	c.hs.scope = opts.Scope
	c.locationListeners.Pause()
	c.statusListeners.Pause()
	return c
}

// Bind привязывает вызывающего к сессии. Первый Bind подключается и запускает стример.
func (c *Coordinator) Bind(ctx context.Context) (SessionHandle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.handles) == 0 {
		if err := c.startLocked(ctx); err != nil {
			return SessionHandle{}, err
		}
	}

	h := SessionHandle{id: uuid.New()}
	c.handles[h.id] = struct{}{}
	c.logger.WithFields(logrus.Fields{
		"component": "session",
		"handle":    h.String(),
		"refs":      len(c.handles),
	}).Debug("Session bound")
	return h, nil
}

// Unbind освобождает хэндл. Последний Unbind останавливает сессию; после
// возврата слушатели координат и статуса больше не вызываются.
func (c *Coordinator) Unbind(h SessionHandle) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.handles[h.id]; !ok {
		return ErrUnknownHandle
	}
	delete(c.handles, h.id)
	c.logger.WithFields(logrus.Fields{
		"component": "session",
		"handle":    h.String(),
		"refs":      len(c.handles),
	}).Debug("Session unbound")

	if len(c.handles) == 0 {
		c.stopLocked()
	}
	return nil
}

// Refs возвращает число активных привязок
func (c *Coordinator) Refs() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.handles)
}

func (c *Coordinator) startLocked(ctx context.Context) error {
	log := c.logger.WithFields(logrus.Fields{
		"component": "session",
		"method":    "start",
	})

	if c.opts.StreamLocation {
		if err := c.streamer.Start(c.opts.Interval, c.opts.MinInterval); err != nil {
			return fmt.Errorf("session: start location: %w", err)
		}
	}

	gen := c.hs.restart()
	c.locationListeners.Resume()
	c.statusListeners.Resume()
	c.routerHandles = []broadcast.Handle{
		c.router.OnLocation(func(s models.LocationSample) { c.locationListeners.Publish(s) }),
		c.router.OnConnection(func(s models.ConnectionState) { c.onConnectionState(gen, s) }),
		c.router.OnAuth(func(r events.AuthResult) { c.onAuth(gen, r) }),
		c.router.OnJoin(func(a events.JoinAck) { c.onJoinAck(gen, a) }),
	}

	if err := c.transport.Connect(ctx, c.opts.Endpoint); err != nil {
		c.teardownLocked()
		return fmt.Errorf("session: connect: %w", err)
	}
	log.Info("Session started")
	return nil
}

func (c *Coordinator) stopLocked() {
	c.teardownLocked()
	c.logger.WithFields(logrus.Fields{
		"component": "session",
		"method":    "stop",
	}).Info("Session stopped")
}

// teardownLocked глушит слушателей до остановки источников
func (c *Coordinator) teardownLocked() {
	c.locationListeners.Pause()
	c.statusListeners.Pause()
	for _, h := range c.routerHandles {
		c.router.Unregister(h)
	}
	c.routerHandles = nil
	c.hs.restart()

	if c.opts.StreamLocation {
		c.streamer.Stop()
	}
	c.transport.Disconnect()
}

// AddLocationListener подписывает на точки текущей сессии
func (c *Coordinator) AddLocationListener(fn func(models.LocationSample)) broadcast.Handle {
	return c.locationListeners.Add(fn)
}

// RemoveLocationListener снимает слушателя координат
func (c *Coordinator) RemoveLocationListener(h broadcast.Handle) bool {
	return c.locationListeners.Remove(h)
}

// AddConnectionStatusListener подписывает на готовность соединения
func (c *Coordinator) AddConnectionStatusListener(fn func(bool)) broadcast.Handle {
	return c.statusListeners.Add(fn)
}

// RemoveConnectionStatusListener снимает слушателя статуса
func (c *Coordinator) RemoveConnectionStatusListener(h broadcast.Handle) bool {
	return c.statusListeners.Remove(h)
}

// Send отправляет событие через транспорт сессии
func (c *Coordinator) Send(event string, payload any) {
	c.transport.Send(event, payload)
}

// Latest возвращает последнюю точку стримера
func (c *Coordinator) Latest() (models.LocationSample, bool) {
	return c.streamer.Latest()
}

// State возвращает состояние транспорта
func (c *Coordinator) State() models.ConnectionState {
	return c.transport.State()
}

// Online сообщает, подтвердил ли сервер вход в комнату
func (c *Coordinator) Online() bool {
	c.hs.mu.Lock()
	defer c.hs.mu.Unlock()
	return c.hs.online
}

// Scope возвращает текущую комнату сессии
func (c *Coordinator) Scope() Scope {
	c.hs.mu.Lock()
	defer c.hs.mu.Unlock()
	return c.hs.scope
}
