package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/orgball2608/insta-compliance-bot/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errThrottled = errors.New("throttled")

func TestClassifiedBackOffSchedule(t *testing.T) {
	bo := &ClassifiedBackOff{
		Base:        time.Second,
		Max:         10 * time.Second,
		IsThrottled: func(err error) bool { return errors.Is(err, errThrottled) },
	}

	bo.Observe(errThrottled)
	assert.Equal(t, 1*time.Second, bo.NextBackOff())
	assert.Equal(t, 2*time.Second, bo.NextBackOff())
	assert.Equal(t, 4*time.Second, bo.NextBackOff())
	assert.Equal(t, 8*time.Second, bo.NextBackOff())
	assert.Equal(t, 10*time.Second, bo.NextBackOff())

	bo.Reset()
	bo.Observe(errors.New("boom"))
	assert.Equal(t, 1*time.Second, bo.NextBackOff())
	assert.Equal(t, 2*time.Second, bo.NextBackOff())
	assert.Equal(t, 3*time.Second, bo.NextBackOff())
}

func TestJitteredBackOffBounds(t *testing.T) {
	bo := &JitteredBackOff{Base: 2 * time.Second, Step: time.Second, Jitter: time.Second}

	for attempt := 1; attempt <= 4; attempt++ {
		d := bo.NextBackOff()
		low := 2*time.Second + time.Duration(attempt)*time.Second
		assert.GreaterOrEqual(t, d, low)
		assert.Less(t, d, low+time.Second)
	}
}

func TestDoAttemptsStopsAtLimit(t *testing.T) {
	calls := 0
	err := DoAttempts(context.Background(), logger.Nop(), "test", func() error {
		calls++
		return errors.New("always")
	}, &JitteredBackOff{}, 5)

	require.Error(t, err)
	assert.Equal(t, 5, calls)
}

func TestDoAttemptsPermanent(t *testing.T) {
	calls := 0
	sentinel := errors.New("fatal")
	err := DoAttempts(context.Background(), logger.Nop(), "test", func() error {
		calls++
		return Permanent(sentinel)
	}, &ClassifiedBackOff{}, 3)

	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 1, calls)
}

func TestDoAttemptsObservesErrors(t *testing.T) {
	calls := 0
	bo := &ClassifiedBackOff{
		Base:        time.Millisecond,
		Max:         10 * time.Millisecond,
		IsThrottled: func(err error) bool { return errors.Is(err, errThrottled) },
	}

	err := DoAttempts(context.Background(), logger.Nop(), "test", func() error {
		calls++
		if calls < 3 {
			return errThrottled
		}
		return nil
	}, bo, 3)

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}
