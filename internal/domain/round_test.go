package domain

import (
	"testing"
	"time"
)

func TestRound_IsOpen(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	end := start.Add(time.Minute)

	tests := []struct {
		name    string
		outcome Color
		now     time.Time
		open    bool
	}{
		{
			name:    "undecided within window",
			outcome: Undecided,
			now:     start.Add(30 * time.Second),
			open:    true,
		},
		{
			name:    "undecided at start instant",
			outcome: Undecided,
			now:     start,
			open:    true,
		},
		{
			name:    "undecided at end instant",
			outcome: Undecided,
			now:     end,
			open:    false,
		},
		{
			name:    "undecided before start",
			outcome: Undecided,
			now:     start.Add(-time.Second),
			open:    false,
		},
		{
			name:    "undecided after end",
			outcome: Undecided,
			now:     end.Add(time.Second),
			open:    false,
		},
		{
			name:    "decided within window",
			outcome: ColorRed,
			now:     start.Add(30 * time.Second),
			open:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Round{StartAt: start, EndAt: end, Outcome: tt.outcome}

			if got := r.IsOpen(tt.now); got != tt.open {
				t.Errorf("IsOpen(%v) = %v, want %v", tt.now, got, tt.open)
			}
		})
	}
}

func TestRound_Due(t *testing.T) {
	end := time.Date(2026, 3, 1, 12, 1, 0, 0, time.UTC)
	r := &Round{EndAt: end}

	if r.Due(end.Add(-time.Second)) {
		t.Error("round should not be due before its end time")
	}

	if !r.Due(end) {
		t.Error("round should be due at its end time")
	}

	if !r.Due(end.Add(time.Second)) {
		t.Error("round should be due after its end time")
	}
}
