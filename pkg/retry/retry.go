package retry

import (
	"context"
	"math/rand"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/orgball2608/insta-compliance-bot/pkg/logger"
)

type Config struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
}

func DefaultConfig() Config {
	return Config{
		MaxRetries:      3,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		Multiplier:      1.5,
	}
}

func Do(ctx context.Context, log logger.Logger, operationName string, operation func() error, cfg Config) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = cfg.InitialInterval
	bo.MaxInterval = cfg.MaxInterval
	bo.Multiplier = cfg.Multiplier
	bo.Reset()

	return run(ctx, log, operationName, operation, backoff.WithMaxRetries(bo, cfg.MaxRetries))
}

// DoAttempts runs operation at most maxAttempts times, sleeping according to bo between
// attempts. If bo implements ErrorObserver it sees every failure before the next delay is
// computed.
func DoAttempts(ctx context.Context, log logger.Logger, operationName string, operation func() error, bo backoff.BackOff, maxAttempts int) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	op := operation
	if observer, ok := bo.(ErrorObserver); ok {
		op = func() error {
			err := operation()
			if err != nil {
				observer.Observe(err)
			}
			return err
		}
	}

	return run(ctx, log, operationName, op, backoff.WithMaxRetries(bo, uint64(maxAttempts-1)))
}

func run(ctx context.Context, log logger.Logger, operationName string, operation func() error, bo backoff.BackOff) error {
	notify := func(err error, t time.Duration) {
		log.Warn(
			"Operation failed, retrying...",
			"operation", operationName,
			"error", err,
			"next_attempt_in", t.Round(time.Millisecond).String(),
		)
	}

	return backoff.RetryNotify(operation, backoff.WithContext(bo, ctx), notify)
}

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// ErrorObserver is implemented by back-offs whose schedule depends on the failure.
type ErrorObserver interface {
	Observe(err error)
}

// ClassifiedBackOff waits Base*2^(n-1) (capped at Max) after throttling failures and
// Base*n after any other failure, n being the number of failures so far.
type ClassifiedBackOff struct {
	Base        time.Duration
	Max         time.Duration
	IsThrottled func(error) bool

	attempt int
	lastErr error
}

var (
	_ backoff.BackOff = (*ClassifiedBackOff)(nil)
	_ ErrorObserver   = (*ClassifiedBackOff)(nil)
)

func (b *ClassifiedBackOff) Observe(err error) {
	b.lastErr = err
}

func (b *ClassifiedBackOff) NextBackOff() time.Duration {
	b.attempt++

	if b.lastErr != nil && b.IsThrottled != nil && b.IsThrottled(b.lastErr) {
		d := b.Base << (b.attempt - 1)
		if b.Max > 0 && (d > b.Max || (b.Base > 0 && d <= 0)) {
			d = b.Max
		}
		return d
	}

	return b.Base * time.Duration(b.attempt)
}

func (b *ClassifiedBackOff) Reset() {
	b.attempt = 0
	b.lastErr = nil
}

// JitteredBackOff waits Base + n*Step + random[0, Jitter) after the n-th failure.
type JitteredBackOff struct {
	Base   time.Duration
	Step   time.Duration
	Jitter time.Duration

	attempt int
}

var _ backoff.BackOff = (*JitteredBackOff)(nil)

func (b *JitteredBackOff) NextBackOff() time.Duration {
	b.attempt++

	d := b.Base + time.Duration(b.attempt)*b.Step
	if b.Jitter > 0 {
		d += time.Duration(rand.Int63n(int64(b.Jitter)))
	}
	return d
}

func (b *JitteredBackOff) Reset() {
	b.attempt = 0
}
