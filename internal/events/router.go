// Package events превращает сырые события сокета в типизированные доменные
// события и раздает их подписчикам по категориям.
package events

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shenikar/bear_coordination/internal/broadcast"
	"github.com/shenikar/bear_coordination/internal/models"
	"github.com/sirupsen/logrus"
)

const defaultQueueSize = 64

type category struct {
	name     Category
	registry *broadcast.Registry[Event]
	queue    chan Event
}

// Router - маршрутизатор событий. У каждой категории своя очередь и своя
// горутина доставки: обработчики одной категории вызываются строго
// последовательно и не блокируют другие категории.
type Router struct {
	logger     *logrus.Logger
	validate   *validator.Validate
	categories map[Category]*category

	mu     sync.Mutex
	owners map[broadcast.Handle]Category

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewRouter создает маршрутизатор и запускает горутины доставки
func NewRouter(logger *logrus.Logger) *Router {
	r := &Router{
		logger:     logger,
		validate:   validator.New(),
		categories: make(map[Category]*category, len(Categories)),
		owners:     make(map[broadcast.Handle]Category),
		done:       make(chan struct{}),
	}
	for _, name := range Categories {
		c := &category{
			name:     name,
			registry: broadcast.NewRegistry[Event](),
			queue:    make(chan Event, defaultQueueSize),
		}
		r.categories[name] = c
		r.wg.Add(1)
		go r.run(c)
	}
	return r
}

// Close останавливает доставку; события, оставшиеся в очередях, отбрасываются
func (r *Router) Close() {
	r.closeOnce.Do(func() {
		close(r.done)
	})
	r.wg.Wait()
}

// Register добавляет обработчик категории
func (r *Router) Register(c Category, fn func(Event)) (broadcast.Handle, error) {
	cat, ok := r.categories[c]
	if !ok {
		return broadcast.Handle{}, fmt.Errorf("events: register %q: %w", c, ErrUnknownCategory)
	}
	h := cat.registry.Add(r.guard(c, fn))
	r.mu.Lock()
	r.owners[h] = c
	r.mu.Unlock()
	return h, nil
}

// Unregister снимает обработчик. После возврата новых вызовов не будет.
func (r *Router) Unregister(h broadcast.Handle) bool {
	r.mu.Lock()
	c, ok := r.owners[h]
	delete(r.owners, h)
	r.mu.Unlock()
	if !ok {
		return false
	}
	return r.categories[c].registry.Remove(h)
}

// Handlers возвращает число обработчиков категории
func (r *Router) Handlers(c Category) int {
	cat, ok := r.categories[c]
	if !ok {
		return 0
	}
	return cat.registry.Len()
}

// Dispatch декодирует сырое событие и ставит его в очередь категории.
// Ошибка декодирования логируется и возвращается только для диагностики:
// событие при этом отбрасывается.
func (r *Router) Dispatch(name string, data json.RawMessage) error {
	log := r.logger.WithFields(logrus.Fields{
		"component": "router",
		"event":     name,
	})

	rt, ok := routes[name]
	if !ok {
		log.Debug("Dropping event with unknown name")
		return fmt.Errorf("events: %q: %w", name, ErrUnknownEvent)
	}

	payload, err := rt.decode(r.validate, data)
	if err != nil {
		decodeErr := &DecodeError{Event: name, Err: err}
		log.WithError(err).Warn("Dropping malformed event")
		return decodeErr
	}

	return r.enqueue(Event{
		Category:   rt.category,
		Name:       name,
		Payload:    payload,
		ReceivedAt: time.Now(),
	})
}

// Publish ставит в очередь локально созданное событие (позиция, состояние соединения)
func (r *Router) Publish(c Category, payload any) error {
	if _, ok := r.categories[c]; !ok {
		return fmt.Errorf("events: publish %q: %w", c, ErrUnknownCategory)
	}
	return r.enqueue(Event{
		Category:   c,
		Name:       string(c),
		Payload:    payload,
		ReceivedAt: time.Now(),
	})
}

func (r *Router) enqueue(ev Event) error {
	cat := r.categories[ev.Category]
	select {
	case <-r.done:
		return ErrRouterClosed
	default:
	}
	select {
	case cat.queue <- ev:
		return nil
	case <-r.done:
		return ErrRouterClosed
	}
}

func (r *Router) run(c *category) {
	defer r.wg.Done()
	for {
		select {
		case <-r.done:
			return
		case ev := <-c.queue:
			c.registry.Publish(ev)
		}
	}
}

// guard не дает панике обработчика остановить горутину категории
func (r *Router) guard(c Category, fn func(Event)) func(Event) {
	return func(ev Event) {
		defer func() {
			if rec := recover(); rec != nil {
				r.logger.WithFields(logrus.Fields{
					"component": "router",
					"category":  c,
					"event":     ev.Name,
				}).Errorf("Handler panicked: %v", rec)
			}
		}()
		fn(ev)
	}
}

// OnConnection подписывает на смену состояния транспорта
func (r *Router) OnConnection(fn func(models.ConnectionState)) broadcast.Handle {
	h, _ := r.Register(CategoryConnection, func(ev Event) {
		if state, ok := ev.Payload.(models.ConnectionState); ok {
			fn(state)
		}
	})
	return h
}

// OnLocation подписывает на новые координаты
func (r *Router) OnLocation(fn func(models.LocationSample)) broadcast.Handle {
	h, _ := r.Register(CategoryLocation, func(ev Event) {
		if sample, ok := ev.Payload.(models.LocationSample); ok {
			fn(sample)
		}
	})
	return h
}

// OnAuth подписывает на результат аутентификации
func (r *Router) OnAuth(fn func(AuthResult)) broadcast.Handle {
	h, _ := r.Register(CategoryAuth, func(ev Event) {
		if res, ok := ev.Payload.(AuthResult); ok {
			fn(res)
		}
	})
	return h
}

// OnJoin подписывает на подтверждения входа в комнаты
func (r *Router) OnJoin(fn func(JoinAck)) broadcast.Handle {
	h, _ := r.Register(CategoryJoin, func(ev Event) {
		if ack, ok := ev.Payload.(JoinAck); ok {
			fn(ack)
		}
	})
	return h
}

// OnStatus подписывает на обновления статуса инцидента
func (r *Router) OnStatus(fn func(StatusUpdate)) broadcast.Handle {
	h, _ := r.Register(CategoryStatus, func(ev Event) {
		if upd, ok := ev.Payload.(StatusUpdate); ok {
			fn(upd)
		}
	})
	return h
}

// OnChat подписывает на входящие сообщения чата
func (r *Router) OnChat(fn func(models.ChatMessage)) broadcast.Handle {
	h, _ := r.Register(CategoryChat, func(ev Event) {
		if msg, ok := ev.Payload.(models.ChatMessage); ok {
			fn(msg)
		}
	})
	return h
}

// OnFeed подписывает на ленту инцидентов
func (r *Router) OnFeed(fn func(FeedEvent)) broadcast.Handle {
	h, _ := r.Register(CategoryFeed, func(ev Event) {
		if fe, ok := ev.Payload.(FeedEvent); ok {
			fn(fe)
		}
	})
	return h
}

// OnServerError подписывает на ошибки, присланные сервером
func (r *Router) OnServerError(fn func(ServerError)) broadcast.Handle {
	h, _ := r.Register(CategoryServerError, func(ev Event) {
		if se, ok := ev.Payload.(ServerError); ok {
			fn(se)
		}
	})
	return h
}
