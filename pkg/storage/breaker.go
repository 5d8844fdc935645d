package storage

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sony/gobreaker"
)

// BreakerConfig tunes the circuit breaker around a remote backend.
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32        // requests allowed while half-open
	Interval         time.Duration // window after which failure counts reset
	Timeout          time.Duration // time open before probing again
	FailureThreshold float64       // failure ratio that trips the breaker
	MinRequests      uint32        // requests seen before the ratio counts
}

// DefaultBreakerConfig returns settings suited to an interactive editor:
// trip fast, probe again after a short pause.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		MaxRequests:      1,
		Interval:         30 * time.Second,
		Timeout:          10 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      3,
	}
}

// BreakerKV guards a backend with a circuit breaker so that an unreachable
// Redis or MongoDB fails fast instead of blocking every gesture.
type BreakerKV struct {
	inner KV
	cb    *gobreaker.CircuitBreaker
}

// NewBreakerKV wraps inner. State changes are logged to logger.
func NewBreakerKV(inner KV, cfg BreakerConfig, logger *log.Logger) *BreakerKV {
	if logger == nil {
		logger = log.Default()
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("storage breaker state changed", "backend", name, "from", from.String(), "to", to.String())
		},
	})
	return &BreakerKV{inner: inner, cb: cb}
}

type getResult struct {
	data []byte
	hit  bool
}

// Get retrieves a value through the breaker.
func (b *BreakerKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := b.cb.Execute(func() (any, error) {
		data, hit, err := b.inner.Get(ctx, key)
		return getResult{data: data, hit: hit}, err
	})
	if err != nil {
		return nil, false, err
	}
	r := v.(getResult)
	return r.data, r.hit, nil
}

// Set stores a value through the breaker.
func (b *BreakerKV) Set(ctx context.Context, key string, data []byte) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, b.inner.Set(ctx, key, data)
	})
	return err
}

// Delete removes a value through the breaker.
func (b *BreakerKV) Delete(ctx context.Context, key string) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, b.inner.Delete(ctx, key)
	})
	return err
}

// Close closes the wrapped backend.
func (b *BreakerKV) Close() error {
	return b.inner.Close()
}

// State returns the breaker state ("closed", "half-open" or "open").
func (b *BreakerKV) State() string {
	return b.cb.State().String()
}

var _ KV = (*BreakerKV)(nil)
