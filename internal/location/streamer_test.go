package location

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/shenikar/bear_coordination/internal/events"
	"github.com/shenikar/bear_coordination/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// manualProvider отдает точки по команде теста и не глушит колбэк при Cancel,
// чтобы можно было проверить запоздавшую доставку.
type manualProvider struct {
	granted  bool
	mu       sync.Mutex
	fn       func(models.LocationSample)
	requests int
	cancels  int
}

func (p *manualProvider) PermissionGranted() bool { return p.granted }

func (p *manualProvider) RequestUpdates(_ Request, fn func(models.LocationSample)) (Subscription, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fn = fn
	p.requests++
	return cancelFunc(func() {
		p.mu.Lock()
		p.cancels++
		p.mu.Unlock()
	}), nil
}

func (p *manualProvider) emit(sample models.LocationSample) {
	p.mu.Lock()
	fn := p.fn
	p.mu.Unlock()
	fn(sample)
}

type cancelFunc func()

func (f cancelFunc) Cancel() { f() }

// recordingPublisher запоминает опубликованные точки
type recordingPublisher struct {
	mu      sync.Mutex
	samples []models.LocationSample
}

func (p *recordingPublisher) Publish(_ events.Category, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.samples = append(p.samples, payload.(models.LocationSample))
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.samples)
}

func silentLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	return logger
}

func TestStreamer_TwoSamplesReachEveryListenerInOrder(t *testing.T) {
	router := events.NewRouter(silentLogger())
	t.Cleanup(router.Close)
	provider := &manualProvider{granted: true}
	streamer := NewStreamer(provider, router, silentLogger())

	var mu sync.Mutex
	var first, second []models.LocationSample
	router.OnLocation(func(s models.LocationSample) { mu.Lock(); first = append(first, s); mu.Unlock() })
	router.OnLocation(func(s models.LocationSample) { mu.Lock(); second = append(second, s); mu.Unlock() })

	require.NoError(t, streamer.Start(5*time.Second, 2*time.Second))
	a := models.LocationSample{Latitude: 14.60, Longitude: 120.98, CapturedAt: time.Now()}
	b := models.LocationSample{Latitude: 14.61, Longitude: 120.99, CapturedAt: a.CapturedAt.Add(5 * time.Second)}
	provider.emit(a)
	provider.emit(b)

	latest, ok := streamer.Latest()
	require.True(t, ok)
	assert.Equal(t, 14.61, latest.Latitude)
	assert.Equal(t, 120.99, latest.Longitude)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(first) == 2 && len(second) == 2
	}, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []models.LocationSample{a, b}, first)
	assert.Equal(t, []models.LocationSample{a, b}, second)
}

func TestStreamer_LateCallbackAfterStopIsIgnored(t *testing.T) {
	provider := &manualProvider{granted: true}
	pub := &recordingPublisher{}
	streamer := NewStreamer(provider, pub, silentLogger())

	require.NoError(t, streamer.Start(time.Second, 0))
	provider.emit(models.LocationSample{Latitude: 1, Longitude: 1, CapturedAt: time.Now()})
	streamer.Stop()
	provider.emit(models.LocationSample{Latitude: 2, Longitude: 2, CapturedAt: time.Now()})

	assert.Equal(t, 1, pub.count())
	assert.Equal(t, 1, provider.cancels)
	_, ok := streamer.Latest()
	assert.False(t, ok)
}

func TestStreamer_PermissionDenied(t *testing.T) {
	provider := &manualProvider{granted: false}
	streamer := NewStreamer(provider, &recordingPublisher{}, silentLogger())

	err := streamer.Start(time.Second, 0)

	assert.ErrorIs(t, err, ErrPermissionDenied)
	assert.Zero(t, provider.requests)
	assert.False(t, streamer.Running())
}

func TestStreamer_StartIsIdempotent(t *testing.T) {
	provider := &manualProvider{granted: true}
	streamer := NewStreamer(provider, &recordingPublisher{}, silentLogger())

	require.NoError(t, streamer.Start(time.Second, 0))
	require.NoError(t, streamer.Start(time.Second, 0))

	assert.Equal(t, 1, provider.requests)
	assert.True(t, streamer.Running())

	streamer.Stop()
	streamer.Stop()
	assert.Equal(t, 1, provider.cancels)
}

func TestStreamer_RestartAfterStop(t *testing.T) {
	provider := &manualProvider{granted: true}
	pub := &recordingPublisher{}
	streamer := NewStreamer(provider, pub, silentLogger())

	require.NoError(t, streamer.Start(time.Second, 0))
	streamer.Stop()
	require.NoError(t, streamer.Start(time.Second, 0))
	provider.emit(models.LocationSample{Latitude: 3, Longitude: 3, CapturedAt: time.Now()})

	assert.Equal(t, 2, provider.requests)
	assert.Equal(t, 1, pub.count())
}

func TestPollingProvider_DeliversPushedFixes(t *testing.T) {
	feed := NewDeviceFeed()
	provider := NewPollingProvider(feed, true)
	pub := &recordingPublisher{}
	streamer := NewStreamer(provider, pub, silentLogger())

	require.NoError(t, streamer.Start(50*time.Millisecond, 0))
	require.NoError(t, feed.Push(models.LocationSample{Latitude: 14.60, Longitude: 120.98}))

	require.Eventually(t, func() bool { return pub.count() == 1 }, time.Second, 5*time.Millisecond)

	streamer.Stop()
	require.NoError(t, feed.Push(models.LocationSample{Latitude: 14.61, Longitude: 120.99}))
	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, 1, pub.count())
}

func TestPollingProvider_RejectsBadRequest(t *testing.T) {
	provider := NewPollingProvider(NewDeviceFeed(), true)

	_, err := provider.RequestUpdates(Request{Interval: 0}, func(models.LocationSample) {})
	assert.Error(t, err)

	_, err = provider.RequestUpdates(Request{Interval: time.Second, MinInterval: 2 * time.Second}, func(models.LocationSample) {})
	assert.Error(t, err)
}

func TestDeviceFeed_Push(t *testing.T) {
	feed := NewDeviceFeed()

	assert.Error(t, feed.Push(models.LocationSample{Latitude: 95}))

	now := time.Now()
	require.NoError(t, feed.Push(models.LocationSample{Latitude: 1, Longitude: 1, CapturedAt: now}))
	require.NoError(t, feed.Push(models.LocationSample{Latitude: 2, Longitude: 2, CapturedAt: now.Add(-time.Second)}))

	fix, ok := feed.CurrentFix()
	require.True(t, ok)
	assert.Equal(t, 1.0, fix.Latitude)
}
