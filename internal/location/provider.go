package location

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shenikar/bear_coordination/internal/models"
)

// Request - параметры подписки на координаты
type Request struct {
	Interval    time.Duration
	MinInterval time.Duration
}

// Subscription - активная подписка на провайдера
type Subscription interface {
	// Cancel возвращается только после остановки доставки
	Cancel()
}

// Provider - источник координат устройства
type Provider interface {
	PermissionGranted() bool
	RequestUpdates(req Request, fn func(models.LocationSample)) (Subscription, error)
}

// FixSource отдает последнюю известную точку устройства
type FixSource interface {
	CurrentFix() (models.LocationSample, bool)
}

// Notifier сообщает о появлении новой точки
type Notifier interface {
	Changed() <-chan struct{}
}

// PollingProvider опрашивает FixSource с заданной периодичностью. Если источник
// умеет уведомлять о новых точках, свежая точка доставляется сразу, но не чаще
// MinInterval.
type PollingProvider struct {
	source  FixSource
	granted atomic.Bool
}

// NewPollingProvider создает провайдера поверх источника точек
func NewPollingProvider(source FixSource, granted bool) *PollingProvider {
	p := &PollingProvider{source: source}
	p.granted.Store(granted)
	return p
}

// PermissionGranted сообщает, разрешен ли доступ к координатам
func (p *PollingProvider) PermissionGranted() bool {
	return p.granted.Load()
}

// SetPermission меняет разрешение; действует на следующий RequestUpdates
func (p *PollingProvider) SetPermission(granted bool) {
	p.granted.Store(granted)
}

// RequestUpdates запускает опрос источника
func (p *PollingProvider) RequestUpdates(req Request, fn func(models.LocationSample)) (Subscription, error) {
	if req.Interval <= 0 {
		return nil, fmt.Errorf("location: interval must be positive, got %v", req.Interval)
	}
	if req.MinInterval < 0 || req.MinInterval > req.Interval {
		return nil, fmt.Errorf("location: min interval %v out of range (0..%v)", req.MinInterval, req.Interval)
	}

	ctx, cancel := context.WithCancel(context.Background())
	sub := &pollSubscription{cancel: cancel}
	sub.wg.Add(1)
	go func() {
		defer sub.wg.Done()
		p.poll(ctx, req, fn)
	}()
	return sub, nil
}

func (p *PollingProvider) poll(ctx context.Context, req Request, fn func(models.LocationSample)) {
	ticker := time.NewTicker(req.Interval)
	defer ticker.Stop()

	var changed <-chan struct{}
	if n, ok := p.source.(Notifier); ok {
		changed = n.Changed()
	}

	var (
		last        models.LocationSample
		delivered   bool
		deliveredAt time.Time
	)
	deliver := func(force bool) {
		fix, ok := p.source.CurrentFix()
		if !ok {
			return
		}
		if delivered && !fix.CapturedAt.After(last.CapturedAt) {
			return
		}
		if !force && delivered && time.Since(deliveredAt) < req.MinInterval {
			// подберем на следующем тике
			return
		}
		last, delivered, deliveredAt = fix, true, time.Now()
		fn(fix)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deliver(true)
		case <-changed:
			deliver(false)
		}
	}
}

type pollSubscription struct {
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func (s *pollSubscription) Cancel() {
	s.cancel()
	s.wg.Wait()
}
