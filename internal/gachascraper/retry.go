package gachascraper

import (
	"context"
	"net/url"
	"time"

	"github.com/distr1/gachalog/internal/gachaerr"
	"github.com/distr1/gachalog/internal/gamebiz"
)

// RetryConfig drives the exponential backoff retry wrapper.
type RetryConfig struct {
	MaxAttempts int
	Min         time.Duration
	Max         time.Duration
}

// DefaultRetryConfig matches spec.md §4.10's defaults: 5 attempts, 200ms
// to 5s backoff.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{MaxAttempts: 5, Min: 200 * time.Millisecond, Max: 5 * time.Second}
}

// backoff returns the sleep duration after failed attempt n (1-indexed),
// before the next attempt: Min after the first, doubling each time, capped
// at Max.
func (c RetryConfig) backoff(attempt int) time.Duration {
	d := c.Min
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= c.Max {
			return c.Max
		}
	}
	return d
}

// Sleeper cooperatively pauses for d; the scraper never calls a global
// sleep function so tests can substitute an immediate fake.
type Sleeper func(ctx context.Context, d time.Duration) error

// RealSleeper sleeps for d or returns ctx.Err() if ctx is canceled first.
func RealSleeper(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RetryingRequester wraps a Requester with exponential backoff, retrying
// only on KindVisitTooFrequently.
type RetryingRequester struct {
	Requester *Requester
	Config    RetryConfig
	Sleep     Sleeper
}

// NewRetryingRequester returns a RetryingRequester with
// DefaultRetryConfig and RealSleeper. The wrapped Requester's per-request
// timeout is set to Config.Max + 5s; the backoff sleep between attempts
// runs outside that timeout.
func NewRetryingRequester(r *Requester) *RetryingRequester {
	cfg := DefaultRetryConfig()
	r.Timeout = cfg.Max + 5*time.Second
	return &RetryingRequester{Requester: r, Config: cfg, Sleep: RealSleeper}
}

// Do attempts the request up to Config.MaxAttempts times. Only
// KindVisitTooFrequently is retried; any other error returns immediately.
// Exhausting all attempts on persistent rate-limiting yields
// KindReachedMaxAttempts.
func (rr *RetryingRequester) Do(ctx context.Context, gb gamebiz.GameBiz, endpoint gamebiz.EndpointType, query url.Values) (*VendorPage, error) {
	maxAttempts := rr.Config.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultRetryConfig().MaxAttempts
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		page, err := rr.Requester.Do(ctx, gb, endpoint, query)
		if err == nil {
			return page, nil
		}

		kind, _ := gachaerr.KindOf(err)
		if kind != KindVisitTooFrequently {
			return nil, err
		}

		lastErr = err
		if attempt == maxAttempts {
			break
		}
		if sleepErr := rr.Sleep(ctx, rr.Config.backoff(attempt)); sleepErr != nil {
			return nil, sleepErr
		}
	}

	return nil, gachaerr.Wrap(KindReachedMaxAttempts, "exhausted retries on persistent rate limiting", lastErr)
}
