package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig() Config {
	return Config{
		MaxRetries:      3,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
		Multiplier:      2.0,
	}
}

func TestDoSucceedsAfterFailures(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	}, fastConfig())

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDoExhaustsRetries(t *testing.T) {
	sentinel := errors.New("permanent")
	attempts := 0
	err := Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return sentinel
	}, fastConfig())

	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 4, attempts) // initial attempt plus three retries
}

func TestDoRespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Do(ctx, func(ctx context.Context) error {
		return errors.New("never retried")
	}, fastConfig())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCircuitBreaker(t *testing.T) {
	cb := NewCircuitBreaker(2, 50*time.Millisecond)
	fail := func(ctx context.Context) error { return errors.New("down") }
	ok := func(ctx context.Context) error { return nil }

	require.Error(t, cb.Execute(context.Background(), fail))
	require.Error(t, cb.Execute(context.Background(), fail))

	// breaker is now open
	err := cb.Execute(context.Background(), ok)
	assert.ErrorIs(t, err, ErrBreakerOpen)

	// after the reset timeout it closes again
	time.Sleep(60 * time.Millisecond)
	assert.NoError(t, cb.Execute(context.Background(), ok))
}

func TestCircuitBreakerResetsOnSuccess(t *testing.T) {
	cb := NewCircuitBreaker(2, time.Minute)
	fail := func(ctx context.Context) error { return errors.New("down") }
	ok := func(ctx context.Context) error { return nil }

	require.Error(t, cb.Execute(context.Background(), fail))
	require.NoError(t, cb.Execute(context.Background(), ok))

	// the earlier failure no longer counts
	require.Error(t, cb.Execute(context.Background(), fail))
	assert.NoError(t, cb.Execute(context.Background(), ok))
}
