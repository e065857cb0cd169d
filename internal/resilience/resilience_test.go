package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTransient = errors.New("database is locked")

type countingObserver struct {
	opens, closes int
}

func (o *countingObserver) IncrementCircuitBreakerOpen()  { o.opens++ }
func (o *countingObserver) IncrementCircuitBreakerClose() { o.closes++ }

func fastRetry() RetryConfig {
	cfg := DefaultRetryConfig()
	cfg.InitialDelay = time.Millisecond
	cfg.MaxDelay = 2 * time.Millisecond
	return cfg
}

func TestRetry(t *testing.T) {
	tests := []struct {
		name      string
		failures  int
		retryable func(error) bool
		wantCalls int
		wantErr   bool
	}{
		{"succeeds first time", 0, nil, 1, false},
		{"recovers after transient errors", 2, nil, 3, false},
		{"gives up after max attempts", 5, nil, 3, true},
		{"stops on non-retryable error", 5, func(error) bool { return false }, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := fastRetry()
			cfg.Retryable = tt.retryable

			calls := 0
			err := Retry(context.Background(), cfg, func() error {
				calls++
				if calls <= tt.failures {
					return errTransient
				}
				return nil
			})

			assert.Equal(t, tt.wantCalls, calls)
			if tt.wantErr {
				assert.ErrorIs(t, err, errTransient)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRetryHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Retry(ctx, fastRetry(), func() error {
		calls++
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}

func TestBackoffIsCapped(t *testing.T) {
	cfg := RetryConfig{InitialDelay: 100 * time.Millisecond, MaxDelay: 300 * time.Millisecond, BackoffFactor: 2}
	assert.Equal(t, 100*time.Millisecond, backoff(cfg, 0))
	assert.Equal(t, 200*time.Millisecond, backoff(cfg, 1))
	assert.Equal(t, 300*time.Millisecond, backoff(cfg, 5))

	cfg.JitterEnabled = true
	d := backoff(cfg, 0)
	assert.GreaterOrEqual(t, d, 100*time.Millisecond)
	assert.Less(t, d, 110*time.Millisecond)
}

func TestBreakerOpensAfterFailures(t *testing.T) {
	observer := &countingObserver{}
	cfg := DefaultBreakerConfig()
	cfg.Timeout = time.Hour
	b := NewBreaker("history", cfg, observer)

	for i := 0; i < 3; i++ {
		require.ErrorIs(t, b.Call(func() error { return errTransient }), errTransient)
	}

	assert.Equal(t, "open", b.State())
	assert.Equal(t, 1, observer.opens)

	called := false
	err := b.Call(func() error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, called)
	assert.False(t, defaultRetryable(err))
}

func TestBreakerStaysClosedBelowMinimum(t *testing.T) {
	b := NewBreaker("history", DefaultBreakerConfig(), nil)
	_ = b.Call(func() error { return errTransient })
	_ = b.Call(func() error { return errTransient })
	assert.Equal(t, "closed", b.State())
	assert.NoError(t, b.Call(func() error { return nil }))
}
