package backoff

import (
	"context"
	"math/rand"
	"testing"
	"time"
)

func TestBackoff(t *testing.T) {
	t.Parallel()

	maxBackoff := 60 * time.Second
	cases := []struct {
		attempts int
		want     time.Duration
	}{
		{attempts: 0, want: 0},
		{attempts: 1, want: 1 * time.Second},
		{attempts: 2, want: 2 * time.Second},
		{attempts: 3, want: 4 * time.Second},
		{attempts: 7, want: 60 * time.Second}, // cap
	}

	for _, tc := range cases {
		if got := backoff(tc.attempts, time.Second, maxBackoff); got != tc.want {
			t.Fatalf("attempts=%d: want %s got %s", tc.attempts, tc.want, got)
		}
	}
}

func TestPolicyDelay(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		policy   Policy
		attempts []int
		want     []time.Duration
	}{
		{
			name:     "fixed",
			policy:   Policy{BaseDelay: 2 * time.Second, Strategy: Fixed},
			attempts: []int{1, 2, 3},
			want:     []time.Duration{2 * time.Second, 2 * time.Second, 2 * time.Second},
		},
		{
			name:     "linear",
			policy:   Policy{BaseDelay: time.Second, Strategy: Linear},
			attempts: []int{1, 2, 3},
			want:     []time.Duration{time.Second, 2 * time.Second, 3 * time.Second},
		},
		{
			name:     "linear capped",
			policy:   Policy{BaseDelay: time.Second, MaxDelay: 2 * time.Second, Strategy: Linear},
			attempts: []int{1, 2, 5},
			want:     []time.Duration{time.Second, 2 * time.Second, 2 * time.Second},
		},
		{
			name:     "exponential",
			policy:   Policy{BaseDelay: 500 * time.Millisecond, MaxDelay: 3 * time.Second, Strategy: Exponential},
			attempts: []int{1, 2, 3, 4},
			want:     []time.Duration{500 * time.Millisecond, time.Second, 2 * time.Second, 3 * time.Second},
		},
		{
			name:     "zero base",
			policy:   Policy{Strategy: Exponential},
			attempts: []int{1, 4},
			want:     []time.Duration{0, 0},
		},
	}

	for _, tc := range cases {
		for i, a := range tc.attempts {
			if got := tc.policy.Delay(a); got != tc.want[i] {
				t.Fatalf("%s attempt=%d: want %s got %s", tc.name, a, tc.want[i], got)
			}
		}
	}
}

func TestPolicyAllows(t *testing.T) {
	t.Parallel()

	p := Policy{MaxAttempts: 2}
	if !p.Allows(1) || !p.Allows(2) {
		t.Fatalf("expected attempts 1 and 2 to be allowed")
	}
	if p.Allows(3) {
		t.Fatalf("expected attempt 3 to be rejected")
	}
}

func TestParseStrategy(t *testing.T) {
	t.Parallel()

	if s, err := ParseStrategy(" Exponential "); err != nil || s != Exponential {
		t.Fatalf("unexpected parse result: %q %v", s, err)
	}
	if s, err := ParseStrategy(""); err != nil || s != Linear {
		t.Fatalf("expected linear default, got %q %v", s, err)
	}
	if _, err := ParseStrategy("random"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestJitterDeterministic(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewSource(1))
	maxJitter := 200 * time.Millisecond

	got := jitter(r, maxJitter)
	if got < 0 || got > maxJitter {
		t.Fatalf("jitter out of range: %s", got)
	}

	r2 := rand.New(rand.NewSource(1))
	if got2 := jitter(r2, maxJitter); got2 != got {
		t.Fatalf("expected deterministic jitter; got %s and %s", got, got2)
	}
}

func TestSleep_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := Sleep(ctx, time.Hour); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
