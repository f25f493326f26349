package classifier

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"

	"casedocs-backend/internal/shared/telemetry"
)

// Breaker wraps a Client with a circuit breaker so a failing remote service
// sheds load fast instead of queueing timeouts for every batch item.
type Breaker struct {
	inner Client
	cb    *gobreaker.CircuitBreaker[Output]
}

// NewBreaker constructs a Breaker around the given client.
func NewBreaker(inner Client) *Breaker {
	settings := gobreaker.Settings{
		Name:        "classifier",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			// Caller-side cancellation says nothing about service health.
			if errors.Is(err, context.Canceled) {
				return true
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			telemetry.Warn("classifier.breaker_state", map[string]any{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			})
		},
	}
	return &Breaker{
		inner: inner,
		cb:    gobreaker.NewCircuitBreaker[Output](settings),
	}
}

// Classify forwards to the inner client through the breaker. An open circuit
// surfaces as a TransportError so callers handle it like any service failure.
func (b *Breaker) Classify(ctx context.Context, in Input) (Output, error) {
	out, err := b.cb.Execute(func() (Output, error) {
		return b.inner.Classify(ctx, in)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return Output{}, &TransportError{Op: "circuit open", Err: err}
		}
		return Output{}, err
	}
	return out, nil
}

var _ Client = (*Breaker)(nil)
