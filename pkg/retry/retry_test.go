package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fastConfig keeps delays negligible so tests stay quick.
func fastConfig(attempts int) Config {
	return Config{
		MaxAttempts:  attempts,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestDo(t *testing.T) {
	ctx := context.Background()

	t.Run("succeeds on first attempt", func(t *testing.T) {
		calls := 0
		err := Do(ctx, fastConfig(3), func() error {
			calls++
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("retries until success", func(t *testing.T) {
		calls := 0
		err := Do(ctx, fastConfig(5), func() error {
			calls++
			if calls < 3 {
				return errors.New("connection refused")
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("returns last error when attempts exhaust", func(t *testing.T) {
		calls := 0
		err := Do(ctx, fastConfig(3), func() error {
			calls++
			return errors.New("still down")
		})
		require.Error(t, err)
		assert.EqualError(t, err, "still down")
		assert.Equal(t, 3, calls)
	})

	t.Run("rejects non-positive MaxAttempts", func(t *testing.T) {
		err := Do(ctx, Config{MaxAttempts: 0}, func() error { return nil })
		require.Error(t, err)
	})

	t.Run("stops immediately on non-retryable error", func(t *testing.T) {
		cfg := fastConfig(5)
		cfg.RetryableErrors = []string{"connection refused"}

		calls := 0
		err := Do(ctx, cfg, func() error {
			calls++
			return errors.New("invalid_auth")
		})
		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})
}

func TestDoWithResult(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the result on success", func(t *testing.T) {
		got, err := DoWithResult(ctx, fastConfig(3), func() (string, error) {
			return "xoxb-rotated", nil
		})
		require.NoError(t, err)
		assert.Equal(t, "xoxb-rotated", got)
	})

	t.Run("returns zero value on failure", func(t *testing.T) {
		got, err := DoWithResult(ctx, fastConfig(2), func() (int, error) {
			return 42, errors.New("i/o timeout")
		})
		require.Error(t, err)
		assert.Zero(t, got)
	})

	t.Run("retries transient failures before succeeding", func(t *testing.T) {
		calls := 0
		got, err := DoWithResult(ctx, fastConfig(4), func() ([]string, error) {
			calls++
			if calls < 2 {
				return nil, errors.New("connection reset by peer")
			}
			return []string{"develop", "master"}, nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"develop", "master"}, got)
		assert.Equal(t, 2, calls)
	})
}

func TestContextCancellation(t *testing.T) {
	t.Run("cancelled context aborts before first attempt", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		calls := 0
		err := Do(ctx, fastConfig(3), func() error {
			calls++
			return nil
		})
		require.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, calls)
	})

	t.Run("cancellation interrupts the backoff wait", func(t *testing.T) {
		cfg := Config{
			MaxAttempts:  5,
			InitialDelay: time.Minute,
			MaxDelay:     time.Minute,
			Multiplier:   2.0,
		}

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		start := time.Now()
		err := Do(ctx, cfg, func() error { return errors.New("connection refused") })
		require.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Less(t, time.Since(start), 10*time.Second)
	})
}

func TestIsRetryableError(t *testing.T) {
	t.Run("nil error is never retryable", func(t *testing.T) {
		assert.False(t, IsRetryableError(nil, DefaultConfig()))
	})

	t.Run("empty pattern list retries everything", func(t *testing.T) {
		assert.True(t, IsRetryableError(errors.New("anything at all"), DefaultConfig()))
	})

	t.Run("pattern matching is case insensitive", func(t *testing.T) {
		cfg := Config{RetryableErrors: []string{"Connection Refused"}}
		assert.True(t, IsRetryableError(errors.New("dial tcp: CONNECTION REFUSED"), cfg))
	})

	t.Run("non-matching error is terminal", func(t *testing.T) {
		cfg := Config{RetryableErrors: []string{"connection refused"}}
		assert.False(t, IsRetryableError(errors.New("token_revoked"), cfg))
	})
}

func TestCalculateDelay(t *testing.T) {
	cfg := Config{
		InitialDelay: time.Second,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
	}

	assert.Equal(t, time.Second, calculateDelay(0, cfg))
	assert.Equal(t, 2*time.Second, calculateDelay(1, cfg))
	assert.Equal(t, 4*time.Second, calculateDelay(2, cfg))
	// Growth caps at MaxDelay.
	assert.Equal(t, 10*time.Second, calculateDelay(10, cfg))
	// Negative attempts clamp to the initial delay.
	assert.Equal(t, time.Second, calculateDelay(-1, cfg))
}

func TestAddJitter(t *testing.T) {
	base := 100 * time.Millisecond
	for i := 0; i < 50; i++ {
		jittered := addJitter(base)
		assert.GreaterOrEqual(t, jittered, 90*time.Millisecond)
		assert.LessOrEqual(t, jittered, 110*time.Millisecond)
	}
}

func TestPostgresConfig(t *testing.T) {
	cfg := PostgresConfig()

	assert.Equal(t, 5, cfg.MaxAttempts)
	assert.NotEmpty(t, cfg.RetryableErrors)
	// The wait-for-database loop at startup depends on these patterns.
	assert.True(t, IsRetryableError(errors.New("FATAL: the database system is starting up"), cfg))
	assert.True(t, IsRetryableError(errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"), cfg))
	assert.False(t, IsRetryableError(errors.New("password authentication failed"), cfg))
}
