// Package transport держит одно WebSocket-соединение с сервером координации:
// подключение, переподключение с backoff, отправку и прием именованных событий.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/shenikar/bear_coordination/internal/events"
	"github.com/shenikar/bear_coordination/internal/models"
	"github.com/sirupsen/logrus"
	"nhooyr.io/websocket"
)

const (
	outboundQueueSize = 64
	readLimit         = 1 << 20
	writeTimeout      = 10 * time.Second
)

// Sink принимает входящие события и уведомления о смене состояния
type Sink interface {
	Dispatch(name string, data json.RawMessage) error
	Publish(c events.Category, payload any) error
}

// Options - параметры канала
type Options struct {
	Token              string
	ReconnectBaseDelay time.Duration
	ReconnectMaxDelay  time.Duration
	HeartbeatInterval  time.Duration
	DialTimeout        time.Duration
}

// Channel - транспортный канал. Send безопасен для конкурентного вызова.
type Channel struct {
	sink   Sink
	logger *logrus.Logger
	opts   Options

	notifyMu sync.Mutex

	mu       sync.Mutex
	state    models.ConnectionState
	endpoint string
	cancel   context.CancelFunc
	outbound chan []byte

	wg sync.WaitGroup
}

// NewChannel создает канал в состоянии Disconnected
func NewChannel(sink Sink, logger *logrus.Logger, opts Options) *Channel {
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = 10 * time.Second
	}
	return &Channel{
		sink:   sink,
		logger: logger,
		opts:   opts,
		state:  models.Disconnected,
	}
}

// State возвращает снимок состояния соединения
func (c *Channel) State() models.ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Endpoint возвращает адрес текущего подключения
func (c *Channel) Endpoint() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.endpoint
}

// Connect запускает фоновое подключение к endpoint. Ошибку возвращает только
// неверный адрес или повторный вызов; сбои сети уходят в Reconnecting.
func (c *Channel) Connect(ctx context.Context, endpoint string) error {
	wsURL, err := socketURL(endpoint)
	if err != nil {
		return &ConnectionError{Endpoint: endpoint, Err: err}
	}

	c.mu.Lock()
	if c.cancel != nil {
		c.mu.Unlock()
		return &ConnectionError{Endpoint: endpoint, Err: ErrAlreadyConnected}
	}
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c.cancel = cancel
	c.endpoint = wsURL
	c.mu.Unlock()

	c.transition(runCtx, models.Connecting)

	c.wg.Add(1)
	go c.supervise(runCtx, wsURL)
	return nil
}

// Disconnect закрывает соединение и дожидается остановки всех горутин канала
func (c *Channel) Disconnect() {
	c.mu.Lock()
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()
	if cancel == nil {
		return
	}

	cancel()
	c.wg.Wait()

	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	c.mu.Lock()
	changed := c.state != models.Disconnected
	c.state = models.Disconnected
	c.outbound = nil
	c.mu.Unlock()
	if changed {
		c.notify(models.Disconnected)
	}
	c.logger.WithField("component", "transport").Info("Channel disconnected")
}

// Send ставит событие в очередь отправки. Ошибки не возвращаются:
// при отсутствии соединения или переполнении очереди событие отбрасывается.
func (c *Channel) Send(event string, payload any) {
	log := c.logger.WithFields(logrus.Fields{
		"component": "transport",
		"event":     event,
	})

	frame, err := Encode(event, payload)
	if err != nil {
		log.WithError(err).Error("Dropping unencodable event")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != models.Connected || c.outbound == nil {
		log.Warnf("Dropping send on %s channel", c.state)
		return
	}
	select {
	case c.outbound <- frame:
	default:
		log.Warn("Dropping send: outbound queue is full")
	}
}

// supervise держит соединение живым, пока не отменен контекст
func (c *Channel) supervise(ctx context.Context, wsURL string) {
	defer c.wg.Done()
	log := c.logger.WithFields(logrus.Fields{
		"component": "transport",
		"endpoint":  wsURL,
	})
	recon := newReconnector(c.opts.ReconnectBaseDelay, c.opts.ReconnectMaxDelay)

	for {
		conn, err := c.dial(ctx, wsURL)
		if err == nil {
			recon.markConnected()
			log.Info("Channel connected")
			err = c.serve(ctx, conn)
		}
		if ctx.Err() != nil {
			return
		}

		delay := recon.nextDelay()
		log.WithError(err).Warnf("Connection lost, reconnecting in %v (attempt %d)", delay, recon.attempt)
		c.transition(ctx, models.Reconnecting)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func (c *Channel) dial(ctx context.Context, wsURL string) (*websocket.Conn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, c.opts.DialTimeout)
	defer cancel()

	header := http.Header{}
	if c.opts.Token != "" {
		header.Set("Authorization", "Bearer "+c.opts.Token)
	}
	conn, _, err := websocket.Dial(dialCtx, wsURL, &websocket.DialOptions{HTTPHeader: header})
	if err != nil {
		return nil, fmt.Errorf("websocket dial: %w", err)
	}
	conn.SetReadLimit(readLimit)
	return conn, nil
}

// serve обслуживает одно установленное соединение до его потери
func (c *Channel) serve(ctx context.Context, conn *websocket.Conn) error {
	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	outbound := make(chan []byte, outboundQueueSize)
	c.mu.Lock()
	c.outbound = outbound
	c.mu.Unlock()
	c.transition(ctx, models.Connected)

	var loops sync.WaitGroup
	loops.Add(2)
	go func() {
		defer loops.Done()
		c.writeLoop(connCtx, cancel, conn, outbound)
	}()
	go func() {
		defer loops.Done()
		c.heartbeatLoop(connCtx, cancel, conn)
	}()

	err := c.readLoop(connCtx, conn)
	cancel()
	loops.Wait()

	c.mu.Lock()
	c.outbound = nil
	c.mu.Unlock()

	if ctx.Err() != nil {
		conn.Close(websocket.StatusNormalClosure, "client disconnect")
		return ctx.Err()
	}
	conn.Close(websocket.StatusGoingAway, "reconnecting")
	return err
}

func (c *Channel) readLoop(ctx context.Context, conn *websocket.Conn) error {
	log := c.logger.WithField("component", "transport")
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		if typ != websocket.MessageText {
			log.Debug("Ignoring binary frame")
			continue
		}
		env, err := Decode(data)
		if err != nil {
			log.WithError(err).Warn("Dropping malformed frame")
			continue
		}
		// ошибки декодирования уже залогированы маршрутизатором
		_ = c.sink.Dispatch(env.Event, env.Data)
	}
}

func (c *Channel) writeLoop(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, outbound <-chan []byte) {
	for {
		select {
		case <-ctx.Done():
			return
		case frame := <-outbound:
			writeCtx, writeCancel := context.WithTimeout(ctx, writeTimeout)
			err := conn.Write(writeCtx, websocket.MessageText, frame)
			writeCancel()
			if err != nil {
				if ctx.Err() == nil {
					c.logger.WithField("component", "transport").WithError(err).Warn("Write failed")
				}
				cancel()
				return
			}
		}
	}
}

// heartbeatLoop шлет ping; пропущенный pong рвет соединение
func (c *Channel) heartbeatLoop(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn) {
	if c.opts.HeartbeatInterval <= 0 {
		return
	}
	ticker := time.NewTicker(c.opts.HeartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pingCtx, pingCancel := context.WithTimeout(ctx, c.opts.HeartbeatInterval)
			err := conn.Ping(pingCtx)
			pingCancel()
			if err != nil {
				if ctx.Err() == nil {
					c.logger.WithField("component", "transport").WithError(err).Warn("Heartbeat missed")
				}
				cancel()
				return
			}
		}
	}
}

// transition меняет состояние и уведомляет маршрутизатор, если канал еще не остановлен
func (c *Channel) transition(ctx context.Context, next models.ConnectionState) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	if ctx.Err() != nil || c.state == next {
		c.mu.Unlock()
		return
	}
	c.state = next
	c.mu.Unlock()

	c.notify(next)
}

func (c *Channel) notify(state models.ConnectionState) {
	if err := c.sink.Publish(events.CategoryConnection, state); err != nil && !errors.Is(err, events.ErrRouterClosed) {
		c.logger.WithField("component", "transport").WithError(err).Warn("Failed to publish connection state")
	}
}

// socketURL переводит http(s) адрес в ws(s)
func socketURL(endpoint string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(endpoint))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidEndpoint, err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidEndpoint, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: missing host", ErrInvalidEndpoint)
	}
	return u.String(), nil
}
