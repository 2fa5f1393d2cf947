package retry

import (
	"context"
	"errors"
	"math/rand"
	"net"
	"strings"
	"time"
)

// Config defines retry behavior with exponential backoff
type Config struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	JitterFactor float64 // 0.0-1.0, e.g. 0.1 for +/-10%
}

// DefaultConfig returns defaults for reaching the metadata database at startup:
// 5 retries from 500ms, capped at 5s, doubling each time, with 10% jitter.
func DefaultConfig() *Config {
	return &Config{
		MaxRetries:   5,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.1,
	}
}

// OnRetry is called before each wait with the failed attempt number (1-based),
// its error and the upcoming delay.
type OnRetry func(attempt int, err error, delay time.Duration)

// applyJitter returns delay +/- (delay * jitterFactor * random(-1 to +1)).
func applyJitter(delay time.Duration, jitterFactor float64) time.Duration {
	if jitterFactor <= 0 {
		return delay
	}
	jitter := float64(delay) * jitterFactor * (rand.Float64()*2 - 1)
	return time.Duration(float64(delay) + jitter)
}

// backoff tracks the delay between attempts.
type backoff struct {
	cfg   *Config
	delay time.Duration
}

func newBackoff(cfg *Config) *backoff {
	return &backoff{cfg: cfg, delay: cfg.InitialDelay}
}

// wait sleeps for the current delay and grows it. It returns ctx.Err() if the
// context ends first.
func (b *backoff) wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		b.delay = time.Duration(float64(b.delay) * b.cfg.Multiplier)
		if b.cfg.MaxDelay > 0 && b.delay > b.cfg.MaxDelay {
			b.delay = b.cfg.MaxDelay
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// DoWithResult executes fn until it succeeds and returns its result.
// Only transient errors are retried; a permanent one (bad credentials,
// unknown database) is returned after the first attempt.
func DoWithResult[T any](ctx context.Context, cfg *Config, onRetry OnRetry, fn func() (T, error)) (T, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	var result T
	var lastErr error
	b := newBackoff(cfg)

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		r, err := fn()
		if err == nil {
			return r, nil
		}
		result, lastErr = r, err

		if !IsRetryable(err) {
			return result, err
		}

		if attempt < cfg.MaxRetries {
			d := applyJitter(b.delay, cfg.JitterFactor)
			if onRetry != nil {
				onRetry(attempt+1, err, d)
			}
			if err := b.wait(ctx, d); err != nil {
				return result, err
			}
		}
	}

	return result, lastErr
}

// retryablePatterns are substrings of transient network and database errors.
var retryablePatterns = []string{
	"connection refused",
	"connection reset",
	"broken pipe",
	"no such host",
	"timeout",
	"timed out",
	"temporary failure",
	"too many connections",
	"the database system is starting up",
	"the database system is shutting down",
	"deadlock",
	"network is unreachable",
	"unexpected eof",
	"429",
	"502",
	"503",
	"504",
	"service unavailable",
	"too many requests",
}

// IsRetryable reports whether err looks transient. Context cancellation
// never retries.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	errStr := strings.ToLower(err.Error())
	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}
