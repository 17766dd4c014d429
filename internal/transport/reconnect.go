package transport

import (
	"math"
	"math/rand"
	"time"
)

// stableAfter - после такого времени в сети счетчик попыток сбрасывается
const stableAfter = 60 * time.Second

// reconnector считает задержки экспоненциального backoff с джиттером
type reconnector struct {
	baseDelay   time.Duration
	maxDelay    time.Duration
	attempt     int
	connectedAt time.Time
}

func newReconnector(base, max time.Duration) *reconnector {
	if base <= 0 {
		base = time.Second
	}
	if max < base {
		max = base
	}
	return &reconnector{baseDelay: base, maxDelay: max}
}

func (r *reconnector) markConnected() {
	r.connectedAt = time.Now()
}

func (r *reconnector) nextDelay() time.Duration {
	if !r.connectedAt.IsZero() && time.Since(r.connectedAt) > stableAfter {
		r.attempt = 0
	}
	r.connectedAt = time.Time{}
	jitter := time.Duration(rand.Float64() * float64(r.baseDelay) * 0.5)
	delay := time.Duration(math.Min(
		float64(r.baseDelay)*math.Pow(2, float64(r.attempt))+float64(jitter),
		float64(r.maxDelay),
	))
	r.attempt++
	return delay
}

func (r *reconnector) reset() {
	r.attempt = 0
	r.connectedAt = time.Time{}
}
