package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ingham-physics/auscat-util/internal/logger"
)

// ErrBreakerOpen is returned when the circuit breaker rejects an operation.
var ErrBreakerOpen = errors.New("circuit breaker is open")

// DefaultConfig provides the retry settings used for connection attempts.
var DefaultConfig = Config{
	MaxRetries:      2,
	InitialInterval: 500 * time.Millisecond,
	MaxInterval:     5 * time.Second,
	Multiplier:      2.0,
}

// Config configures the retry behavior
type Config struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
}

// WithMaxRetries sets the maximum number of retries
func (c Config) WithMaxRetries(max int) Config {
	c.MaxRetries = max
	return c
}

// WithInitialInterval sets the initial retry interval
func (c Config) WithInitialInterval(d time.Duration) Config {
	c.InitialInterval = d
	return c
}

// Operation represents a retryable operation
type Operation func(ctx context.Context) error

// Do executes an operation with retries using exponential backoff
func Do(ctx context.Context, op Operation, cfg Config) error {
	l := logger.FromContext(ctx)

	var lastErr error
	interval := cfg.InitialInterval

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return fmt.Errorf("operation cancelled: %w", ctx.Err())
		}

		err := op(ctx)
		if err == nil {
			if attempt > 0 {
				l.Info().
					Int("attempts", attempt+1).
					Msg("operation succeeded after retries")
			}
			return nil
		}

		lastErr = err
		if attempt == cfg.MaxRetries {
			break
		}

		l.Warn().
			Err(err).
			Int("attempt", attempt+1).
			Int("maxRetries", cfg.MaxRetries).
			Float64("nextIntervalSec", interval.Seconds()).
			Msg("operation failed, retrying")

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("operation cancelled during retry wait: %w", ctx.Err())
		case <-timer.C:
		}

		interval = time.Duration(float64(interval) * cfg.Multiplier)
		if interval > cfg.MaxInterval {
			interval = cfg.MaxInterval
		}
	}

	return fmt.Errorf("operation failed after %d attempts: %w", cfg.MaxRetries+1, lastErr)
}

// CircuitBreaker trips after consecutive failures and rejects operations
// until the reset timeout has elapsed.
type CircuitBreaker struct {
	failures     int
	maxFailures  int
	resetTimeout time.Duration
	lastFailure  time.Time
}

// NewCircuitBreaker creates a new circuit breaker
func NewCircuitBreaker(maxFailures int, resetTimeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		maxFailures:  maxFailures,
		resetTimeout: resetTimeout,
	}
}

// Execute runs an operation through the circuit breaker
func (cb *CircuitBreaker) Execute(ctx context.Context, op Operation) error {
	if cb.isOpen() {
		return ErrBreakerOpen
	}

	err := op(ctx)
	if err != nil {
		cb.recordFailure()
		return err
	}

	cb.reset()
	return nil
}

func (cb *CircuitBreaker) isOpen() bool {
	if cb.failures >= cb.maxFailures {
		if time.Since(cb.lastFailure) > cb.resetTimeout {
			cb.reset()
			return false
		}
		return true
	}
	return false
}

func (cb *CircuitBreaker) recordFailure() {
	cb.failures++
	cb.lastFailure = time.Now()
}

func (cb *CircuitBreaker) reset() {
	cb.failures = 0
	cb.lastFailure = time.Time{}
}
