package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// DefaultMaxAttempts is the total number of tries, first call included.
const DefaultMaxAttempts = 3

// Transienter is implemented by collaborator errors that may succeed
// on a later attempt (rate limits, server busy responses). Everything
// else propagates on first occurrence.
type Transienter interface {
	Transient() bool
}

// IsTransient reports whether err is marked transient by its collaborator.
func IsTransient(err error) bool {
	var tr Transienter
	return errors.As(err, &tr) && tr.Transient()
}

// Policy describes the backoff applied between attempts. A zero value
// gets DefaultMaxAttempts and a one second base delay.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

func (p Policy) withDefaults() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = time.Second
	}
	return p
}

// ExhaustedError terminates a retried operation that stayed transient
// through every attempt. It wraps the last underlying cause.
type ExhaustedError struct {
	Op       string
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s failed after %d attempts: %v", e.Op, e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// Do calls fn until it succeeds, returns a non-transient error, or the
// attempt budget is spent. Delays between attempts grow exponentially
// from p.BaseDelay. Each retried attempt is logged.
func Do[T any](ctx context.Context, logger *zap.Logger, p Policy, op string, fn func() (T, error)) (T, error) {
	p = p.withDefaults()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.BaseDelay
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	bo.MaxInterval = p.BaseDelay << uint(p.MaxAttempts)
	bo.MaxElapsedTime = 0

	attempt := 0
	return backoff.RetryNotifyWithData(
		func() (T, error) {
			attempt++
			v, err := fn()
			if err == nil {
				return v, nil
			}
			if !IsTransient(err) {
				return v, backoff.Permanent(err)
			}
			if attempt >= p.MaxAttempts {
				return v, backoff.Permanent(&ExhaustedError{Op: op, Attempts: attempt, Err: err})
			}
			return v, err
		},
		backoff.WithContext(bo, ctx),
		func(err error, delay time.Duration) {
			logger.Warn(
				"transient failure, will retry",
				zap.String("op", op),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(err),
			)
		},
	)
}

// DoVoid is Do for operations without a result.
func DoVoid(ctx context.Context, logger *zap.Logger, p Policy, op string, fn func() error) error {
	_, err := Do(ctx, logger, p, op, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}
