package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shenikar/bear_coordination/internal/events"
	"github.com/shenikar/bear_coordination/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
)

type dispatched struct {
	name string
	data json.RawMessage
}

// fakeSink записывает все, что канал передал маршрутизатору
type fakeSink struct {
	mu         sync.Mutex
	states     []models.ConnectionState
	dispatched []dispatched
}

func (s *fakeSink) Dispatch(name string, data json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dispatched = append(s.dispatched, dispatched{name: name, data: data})
	return nil
}

func (s *fakeSink) Publish(c events.Category, payload any) error {
	if c != events.CategoryConnection {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states = append(s.states, payload.(models.ConnectionState))
	return nil
}

func (s *fakeSink) stateLog() []models.ConnectionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ConnectionState(nil), s.states...)
}

func (s *fakeSink) events() []dispatched {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]dispatched(nil), s.dispatched...)
}

// fakeServer - сокет-сервер координации для тестов
type fakeServer struct {
	srv      *httptest.Server
	mu       sync.Mutex
	conns    []*websocket.Conn
	auth     []string
	received chan Envelope
}

func newFakeServer(t *testing.T) *fakeServer {
	gin.SetMode(gin.TestMode)
	fs := &fakeServer{received: make(chan Envelope, 32)}

	router := gin.New()
	router.GET("/", func(c *gin.Context) {
		// gin отказывает в Hijack после записи 101, поэтому берем исходный writer
		conn, err := websocket.Accept(c.Writer.(interface{ Unwrap() http.ResponseWriter }).Unwrap(), c.Request, nil)
		if err != nil {
			return
		}
		fs.mu.Lock()
		fs.conns = append(fs.conns, conn)
		fs.auth = append(fs.auth, c.GetHeader("Authorization"))
		fs.mu.Unlock()

		ctx := c.Request.Context()
		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				return
			}
			env, err := Decode(data)
			if err == nil {
				fs.received <- env
			}
		}
	})
	fs.srv = httptest.NewServer(router)
	t.Cleanup(fs.srv.Close)
	return fs
}

func (fs *fakeServer) url() string {
	return fs.srv.URL + "/"
}

func (fs *fakeServer) connCount() int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return len(fs.conns)
}

func (fs *fakeServer) push(t *testing.T, event string, payload any) {
	frame, err := Encode(event, payload)
	require.NoError(t, err)
	fs.mu.Lock()
	conn := fs.conns[len(fs.conns)-1]
	fs.mu.Unlock()
	require.NoError(t, conn.Write(context.Background(), websocket.MessageText, frame))
}

func (fs *fakeServer) dropLatest() {
	fs.mu.Lock()
	conn := fs.conns[len(fs.conns)-1]
	fs.mu.Unlock()
	conn.Close(websocket.StatusGoingAway, "server restart")
}

func newTestChannel(t *testing.T, sink Sink) *Channel {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	ch := NewChannel(sink, logger, Options{
		Token:              "secret",
		ReconnectBaseDelay: 10 * time.Millisecond,
		ReconnectMaxDelay:  50 * time.Millisecond,
		DialTimeout:        time.Second,
	})
	t.Cleanup(ch.Disconnect)
	return ch
}

func TestChannel_ConnectSendReceiveDisconnect(t *testing.T) {
	fs := newFakeServer(t)
	sink := &fakeSink{}
	ch := newTestChannel(t, sink)

	require.NoError(t, ch.Connect(context.Background(), fs.url()))
	require.Eventually(t, func() bool { return ch.State() == models.Connected }, 2*time.Second, 5*time.Millisecond)

	ch.Send(events.EventAuthenticate, map[string]string{"token": "secret"})
	select {
	case env := <-fs.received:
		assert.Equal(t, events.EventAuthenticate, env.Event)
		assert.JSONEq(t, `{"token":"secret"}`, string(env.Data))
	case <-time.After(2 * time.Second):
		t.Fatal("server did not receive authenticate")
	}

	fs.push(t, events.EventJoinedIncident, map[string]string{"incidentId": "X"})
	require.Eventually(t, func() bool { return len(sink.events()) == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, events.EventJoinedIncident, sink.events()[0].name)

	ch.Disconnect()

	assert.Equal(t, models.Disconnected, ch.State())
	assert.Equal(t, []models.ConnectionState{models.Connecting, models.Connected, models.Disconnected}, sink.stateLog())
	fs.mu.Lock()
	assert.Equal(t, "Bearer secret", fs.auth[0])
	fs.mu.Unlock()
}

func TestChannel_ReconnectsAfterServerDrop(t *testing.T) {
	fs := newFakeServer(t)
	sink := &fakeSink{}
	ch := newTestChannel(t, sink)

	require.NoError(t, ch.Connect(context.Background(), fs.url()))
	require.Eventually(t, func() bool { return fs.connCount() == 1 && ch.State() == models.Connected }, 2*time.Second, 5*time.Millisecond)

	fs.dropLatest()

	require.Eventually(t, func() bool { return fs.connCount() == 2 && ch.State() == models.Connected }, 2*time.Second, 5*time.Millisecond)
	assert.Contains(t, sink.stateLog(), models.Reconnecting)
}

func TestChannel_UnreachableServerKeepsReconnecting(t *testing.T) {
	sink := &fakeSink{}
	ch := newTestChannel(t, sink)

	require.NoError(t, ch.Connect(context.Background(), "http://127.0.0.1:1/"))

	require.Eventually(t, func() bool { return ch.State() == models.Reconnecting }, 2*time.Second, 5*time.Millisecond)
	ch.Send(events.EventJoinDuty, nil)
	ch.Disconnect()
	assert.Equal(t, models.Disconnected, ch.State())
}

func TestChannel_SendWhileDisconnectedIsDropped(t *testing.T) {
	sink := &fakeSink{}
	ch := newTestChannel(t, sink)

	assert.NotPanics(t, func() {
		ch.Send(events.EventSendMessage, map[string]string{"content": "hi"})
	})
	assert.Empty(t, sink.stateLog())
}

func TestChannel_ConnectErrors(t *testing.T) {
	fs := newFakeServer(t)
	ch := newTestChannel(t, &fakeSink{})

	err := ch.Connect(context.Background(), "ftp://example.com")
	var connErr *ConnectionError
	require.True(t, errors.As(err, &connErr))
	assert.ErrorIs(t, err, ErrInvalidEndpoint)

	require.NoError(t, ch.Connect(context.Background(), fs.url()))
	assert.ErrorIs(t, ch.Connect(context.Background(), fs.url()), ErrAlreadyConnected)
}

func TestChannel_CallerContextDoesNotOwnConnection(t *testing.T) {
	fs := newFakeServer(t)
	ch := newTestChannel(t, &fakeSink{})

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, ch.Connect(ctx, fs.url()))
	cancel()

	require.Eventually(t, func() bool { return ch.State() == models.Connected }, 2*time.Second, 5*time.Millisecond)
}

func TestSocketURL(t *testing.T) {
	got, err := socketURL("http://10.0.2.2:5000/")
	require.NoError(t, err)
	assert.Equal(t, "ws://10.0.2.2:5000/", got)

	got, err = socketURL("https://bear.example.com")
	require.NoError(t, err)
	assert.Equal(t, "wss://bear.example.com", got)

	_, err = socketURL("http:///nohost")
	assert.ErrorIs(t, err, ErrInvalidEndpoint)
}

func TestReconnector_DelayIsCapped(t *testing.T) {
	r := newReconnector(10*time.Millisecond, 80*time.Millisecond)

	var last time.Duration
	for i := 0; i < 10; i++ {
		last = r.nextDelay()
		assert.LessOrEqual(t, last, 80*time.Millisecond)
	}
	assert.Equal(t, 80*time.Millisecond, last)

	r.reset()
	assert.Less(t, r.nextDelay(), 20*time.Millisecond)
}
