package resilience

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// Policy configures Retry. Zero fields take the defaults noted.
type Policy struct {
	// Attempts is the total number of calls, including the first (default: 3).
	Attempts int
	// Initial is the delay after the first failure (default: 100ms).
	Initial time.Duration
	// Max caps the delay (default: 10s).
	Max time.Duration
	// Factor multiplies the delay after each failure (default: 2).
	Factor float64
	// Jitter spreads each delay by up to ±Jitter of itself, 0..1.
	Jitter float64
	// RetryIf reports whether err is worth another attempt
	// (default: anything but context cancellation).
	RetryIf func(error) bool
	// OnRetry runs before each wait.
	OnRetry func(attempt int, err error, wait time.Duration)
}

func (p *Policy) applyDefaults() {
	if p.Attempts <= 0 {
		p.Attempts = 3
	}
	if p.Initial <= 0 {
		p.Initial = 100 * time.Millisecond
	}
	if p.Max <= 0 {
		p.Max = 10 * time.Second
	}
	if p.Factor < 1 {
		p.Factor = 2
	}
	if p.RetryIf == nil {
		p.RetryIf = Transient
	}
}

// Transient retries every error except context cancellation.
func Transient(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// Retry calls fn until it succeeds, RetryIf rejects the error, the
// attempts run out or ctx is done. It returns the last error from fn, or
// ctx.Err() when the context ends first.
func Retry[T any](ctx context.Context, p Policy, fn func() (T, error)) (T, error) {
	p.applyDefaults()

	var zero T
	var lastErr error
	for attempt := 1; attempt <= p.Attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !p.RetryIf(err) || attempt == p.Attempts {
			break
		}

		wait := p.delay(attempt)
		if p.OnRetry != nil {
			p.OnRetry(attempt, err, wait)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
	return zero, lastErr
}

// delay is Initial * Factor^(attempt-1), jittered, capped at Max.
func (p *Policy) delay(attempt int) time.Duration {
	d := float64(p.Initial) * math.Pow(p.Factor, float64(attempt-1))
	if p.Jitter > 0 {
		d += (rand.Float64()*2 - 1) * d * p.Jitter
	}
	if d > float64(p.Max) {
		d = float64(p.Max)
	}
	if d <= 0 {
		d = float64(p.Initial)
	}
	return time.Duration(d)
}
