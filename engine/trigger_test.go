package engine

import (
	"testing"
	"time"
)

// A 5 ms response marker must round up to whole frames so the line stays
// high across at least one presentation at any refresh rate, without the
// loop ever sleeping for it.
func TestPulseFrames(t *testing.T) {
	tests := []struct {
		refresh float64
		d       time.Duration
		want    int64
	}{
		{60, 5 * time.Millisecond, 1},
		{120, 5 * time.Millisecond, 1},
		{240, 5 * time.Millisecond, 2},
		{480, 5 * time.Millisecond, 3},
		{60, 0, 1}, // even a zero width marks one frame
	}
	for _, tt := range tests {
		if got := pulseFrames(tt.refresh, tt.d); got != tt.want {
			t.Errorf("pulseFrames(%g Hz, %v) = %d, want %d", tt.refresh, tt.d, got, tt.want)
		}
	}
}

func TestTriggerNilSafe(t *testing.T) {
	var trig *Trigger
	trig.Set(1)
	trig.Clear(1)
	trig.Close()
	if trig.Ping() {
		t.Error("nil trigger answered ping")
	}
}
