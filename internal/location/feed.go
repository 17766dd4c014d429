package location

import (
	"fmt"
	"sync"
	"time"

	"github.com/shenikar/bear_coordination/internal/models"
)

// DeviceFeed хранит последнюю точку, присланную устройством
type DeviceFeed struct {
	mu      sync.Mutex
	fix     models.LocationSample
	has     bool
	changed chan struct{}
}

// NewDeviceFeed создает пустую ленту точек
func NewDeviceFeed() *DeviceFeed {
	return &DeviceFeed{changed: make(chan struct{}, 1)}
}

// Push принимает новую точку. Точки старше уже принятой отбрасываются.
func (f *DeviceFeed) Push(sample models.LocationSample) error {
	if sample.Latitude < -90 || sample.Latitude > 90 || sample.Longitude < -180 || sample.Longitude > 180 {
		return fmt.Errorf("location: coordinates out of range (%f, %f)", sample.Latitude, sample.Longitude)
	}
	if sample.CapturedAt.IsZero() {
		sample.CapturedAt = time.Now().UTC()
	}

	f.mu.Lock()
	if f.has && !sample.CapturedAt.After(f.fix.CapturedAt) {
		f.mu.Unlock()
		return nil
	}
	f.fix, f.has = sample, true
	f.mu.Unlock()

	select {
	case f.changed <- struct{}{}:
	default:
	}
	return nil
}

// CurrentFix возвращает последнюю точку
func (f *DeviceFeed) CurrentFix() (models.LocationSample, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fix, f.has
}

// Changed сигналит о новой точке
func (f *DeviceFeed) Changed() <-chan struct{} {
	return f.changed
}
