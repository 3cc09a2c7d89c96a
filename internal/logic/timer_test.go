package logic

import (
	"testing"
	"time"
)

func TestCountdown(t *testing.T) {
	tests := []struct {
		name      string
		remaining time.Duration
		step      time.Duration
		want      time.Duration
	}{
		{"normal decay", 100 * time.Millisecond, 5 * time.Millisecond, 95 * time.Millisecond},
		{"exact zero", 5 * time.Millisecond, 5 * time.Millisecond, 0},
		{"clamps below zero", 3 * time.Millisecond, 5 * time.Millisecond, 0},
		{"already zero", 0, 5 * time.Millisecond, 0},
	}

	for _, tt := range tests {
		if got := Countdown(tt.remaining, tt.step); got != tt.want {
			t.Errorf("%s: Countdown(%v, %v) = %v, want %v", tt.name, tt.remaining, tt.step, got, tt.want)
		}
	}
}

func TestCountdownNeverGoesNegative(t *testing.T) {
	remaining := 17 * time.Millisecond
	for i := 0; i < 10; i++ {
		remaining = Countdown(remaining, TickPeriod)
		if remaining < 0 {
			t.Fatalf("iteration %d: countdown went negative: %v", i, remaining)
		}
	}
	if remaining != 0 {
		t.Errorf("expected countdown pinned at zero, got %v", remaining)
	}
}
