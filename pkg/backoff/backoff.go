package backoff

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"
)

type Strategy string

const (
	Fixed       Strategy = "fixed"
	Linear      Strategy = "linear"
	Exponential Strategy = "exponential"
)

func ParseStrategy(v string) (Strategy, error) {
	switch s := Strategy(strings.ToLower(strings.TrimSpace(v))); s {
	case Fixed, Linear, Exponential:
		return s, nil
	case "":
		return Linear, nil
	default:
		return "", fmt.Errorf("invalid backoff strategy %q (expected fixed|linear|exponential)", v)
	}
}

// Policy is the retry schedule shared by every retryable HTTP call.
// MaxAttempts counts retries after the first try.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Strategy    Strategy
	JitterMax   time.Duration

	Rand *rand.Rand
}

func (p Policy) Allows(attempt int) bool {
	return attempt <= p.MaxAttempts
}

// Delay returns the wait before retry number attempt (1-based).
func (p Policy) Delay(attempt int) time.Duration {
	if attempt <= 0 || p.BaseDelay <= 0 {
		return 0
	}
	var d time.Duration
	switch p.Strategy {
	case Fixed:
		d = p.BaseDelay
	case Exponential:
		d = backoff(attempt, p.BaseDelay, p.MaxDelay)
	default:
		d = time.Duration(attempt) * p.BaseDelay
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d + jitter(p.Rand, p.JitterMax)
}

// Wait sleeps for Delay(attempt) or until ctx is done.
func (p Policy) Wait(ctx context.Context, attempt int) error {
	return Sleep(ctx, p.Delay(attempt))
}

func Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func backoff(attempts int, base, maxBackoff time.Duration) time.Duration {
	if attempts <= 0 {
		return 0
	}
	// base * 2^(attempts-1)
	factor := math.Pow(2, float64(attempts-1))
	d := time.Duration(factor * float64(base))
	if maxBackoff > 0 && (d > maxBackoff || d < 0) {
		return maxBackoff
	}
	return d
}

func jitter(r *rand.Rand, maxJitter time.Duration) time.Duration {
	if maxJitter <= 0 {
		return 0
	}
	if r == nil {
		return 0
	}
	// [0, maxJitter]
	return time.Duration(r.Int63n(int64(maxJitter) + 1)) //nolint:gosec
}
