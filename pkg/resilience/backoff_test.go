package resilience

import (
	"testing"
	"time"
)

func TestBrokerBackoff(t *testing.T) {
	b := BrokerBackoff()

	if b.BaseDelay != 1*time.Second {
		t.Errorf("BaseDelay = %v, want 1s", b.BaseDelay)
	}
	if b.MaxDelay != 30*time.Second {
		t.Errorf("MaxDelay = %v, want 30s", b.MaxDelay)
	}
	if b.Multiplier != 2.0 {
		t.Errorf("Multiplier = %v, want 2.0", b.Multiplier)
	}
	if b.Jitter != 0.1 {
		t.Errorf("Jitter = %v, want 0.1", b.Jitter)
	}
}

func TestExponentialBackoff_NextDelay(t *testing.T) {
	b := &ExponentialBackoff{
		BaseDelay:  1 * time.Second,
		MaxDelay:   30 * time.Second,
		Multiplier: 2.0,
		Jitter:     0, // deterministic
	}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second}, // capped
		{10, 30 * time.Second},
	}

	for _, tt := range tests {
		got := b.NextDelay(tt.attempt)
		if got != tt.want {
			t.Errorf("NextDelay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestExponentialBackoff_WithJitter(t *testing.T) {
	b := &ExponentialBackoff{
		BaseDelay:  1 * time.Second,
		MaxDelay:   30 * time.Second,
		Multiplier: 2.0,
		Jitter:     0.1,
	}

	// With 10% jitter the delay for attempt 2 must land within
	// [3.6s, 4.4s] on every draw.
	for i := 0; i < 100; i++ {
		got := b.NextDelay(2)
		if got < 3600*time.Millisecond || got > 4400*time.Millisecond {
			t.Fatalf("NextDelay(2) = %v, want within [3.6s, 4.4s]", got)
		}
	}
}

func TestExponentialBackoff_NegativeAttempt(t *testing.T) {
	b := BrokerBackoff()

	if got := b.NextDelay(-3); got != b.BaseDelay {
		t.Errorf("NextDelay(-3) = %v, want base delay %v", got, b.BaseDelay)
	}
}

func TestExponentialBackoff_MaxDelayCap(t *testing.T) {
	b := &ExponentialBackoff{
		BaseDelay:  5 * time.Second,
		MaxDelay:   20 * time.Second,
		Multiplier: 3.0,
		Jitter:     0,
	}

	// Attempt 3 would be 135s uncapped.
	if got := b.NextDelay(3); got != 20*time.Second {
		t.Errorf("NextDelay(3) = %v, want capped at 20s", got)
	}
}

func TestFixedBackoff(t *testing.T) {
	b := &FixedBackoff{Delay: 60 * time.Second}

	for _, attempt := range []int{0, 1, 5, 100} {
		if got := b.NextDelay(attempt); got != 60*time.Second {
			t.Errorf("NextDelay(%d) = %v, want 60s", attempt, got)
		}
	}
}
