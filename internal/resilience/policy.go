package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"
)

// ErrUnavailable is returned when the wrapped collaborator could not be
// reached: retries exhausted on transient failures, or the breaker is open.
// Callers must surface this as "try again later", never as a not-found.
var ErrUnavailable = errors.New("service unavailable")

// PermanentError marks an outcome that must not be retried and must not
// count against the circuit breaker (e.g. a 404 from a collaborator).
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent wraps err so the policy returns it immediately.
func Permanent(err error) error {
	return &PermanentError{Err: err}
}

type Config struct {
	Name             string
	MaxRetries       uint64
	BackoffBase      time.Duration
	BreakerThreshold uint32
	BreakerCooldown  time.Duration
}

// DefaultConfig mirrors the policy applied to every collaborator client:
// 3 retries with exponential backoff from 200ms, breaker opens after 5
// consecutive handled failures and probes again after 30s.
func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		MaxRetries:       3,
		BackoffBase:      200 * time.Millisecond,
		BreakerThreshold: 5,
		BreakerCooldown:  30 * time.Second,
	}
}

// Policy wraps an operation in retry-then-circuit-break. One Policy guards
// one collaborator; its breaker state is shared across concurrent callers.
type Policy struct {
	cfg     Config
	breaker *gobreaker.CircuitBreaker
}

func New(cfg Config) *Policy {
	if cfg.MaxRetries == 0 && cfg.BackoffBase == 0 {
		cfg = DefaultConfig(cfg.Name)
	}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerThreshold
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			// Domain outcomes and caller cancellation are not collaborator
			// failures; they must not trip the breaker.
			var perm *PermanentError
			return errors.As(err, &perm) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
	}

	return &Policy{
		cfg:     cfg,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// Do runs op under the policy. Transient errors are retried with backoff;
// a PermanentError is unwrapped and returned as-is; everything else
// surfaces as ErrUnavailable.
func (p *Policy) Do(ctx context.Context, op func(context.Context) error) error {
	_, err := p.breaker.Execute(func() (any, error) {
		return nil, p.retry(ctx, op)
	})
	if err == nil {
		return nil
	}

	var perm *PermanentError
	if errors.As(err, &perm) {
		return perm.Err
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %s circuit open", ErrUnavailable, p.cfg.Name)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", ErrUnavailable, p.cfg.Name, err)
}

func (p *Policy) retry(ctx context.Context, op func(context.Context) error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.cfg.BackoffBase
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	bo.MaxElapsedTime = 0

	var attempt uint64
	for {
		err := op(ctx)
		if err == nil {
			return nil
		}

		var perm *PermanentError
		if errors.As(err, &perm) {
			return perm
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		attempt++
		if attempt > p.cfg.MaxRetries {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(bo.NextBackOff()):
		}
	}
}
