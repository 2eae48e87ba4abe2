package engine

import (
	"math"
	"testing"

	"github.com/ChristosDalamarinis/RIFT/flicker"
)

func TestClockPosition(t *testing.T) {
	tests := []struct {
		hour   float64
		dx, dy float64
	}{
		{12, 0, -300},
		{3, 300, 0},
		{6, 0, 300},
		{9, -300, 0},
	}
	for _, tt := range tests {
		dx, dy := ClockPosition(tt.hour, 300)
		if math.Abs(dx-tt.dx) > 1e-9 || math.Abs(dy-tt.dy) > 1e-9 {
			t.Errorf("ClockPosition(%g) = (%g, %g), want (%g, %g)", tt.hour, dx, dy, tt.dx, tt.dy)
		}
	}
}

func TestBuildStimuliDefaults(t *testing.T) {
	cfg := DefaultConfig()
	stimuli, err := BuildStimuli(cfg, 60)
	if err != nil {
		t.Fatal(err)
	}
	if len(stimuli) != len(cfg.Stimuli) {
		t.Fatalf("built %d stimuli from %d configs", len(stimuli), len(cfg.Stimuli))
	}

	var flickering int
	for _, st := range stimuli {
		if st.Flickers() {
			flickering++
		}
	}
	if flickering != 2 {
		t.Fatalf("default ring has %d flickering stimuli, want 2", flickering)
	}

	// singleton: 7.5 Hz on 60 Hz is exactly 4 frames per half-cycle
	singleton := stimuli[2]
	if singleton.ID != "singleton" || singleton.Pattern == nil {
		t.Fatalf("stimulus 2 = %q, pattern %v", singleton.ID, singleton.Pattern)
	}
	if !singleton.Pattern.Exact || singleton.Pattern.Lengths[0] != 4 {
		t.Errorf("singleton pattern = %+v, want exact 4-frame half-cycles", singleton.Pattern.Lengths)
	}
}

// Luminance scaling and desaturation are both affine maps toward the
// background gray, so the midpoint of the processed pair must be the
// processed midpoint. The flicker fuses to the background only if this
// holds.
func TestBuildStimuliPreservesOpponentMidpoint(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Luminance = 0.8
	cfg.Saturation = 0.7
	cfg.Background = 0.1
	stimuli, err := BuildStimuli(cfg, 60)
	if err != nil {
		t.Fatal(err)
	}

	rawMid := flicker.Midpoint(flicker.Green, flicker.Magenta)
	wantMid := rawMid.Scale(cfg.Luminance).Desaturate(cfg.Saturation, cfg.Background)
	for _, st := range stimuli {
		if !st.Flickers() {
			continue
		}
		got := flicker.Midpoint(st.PairA, st.PairB)
		for ch := range got {
			if math.Abs(got[ch]-wantMid[ch]) > 1e-12 {
				t.Errorf("stimulus %q: processed midpoint %v, want %v", st.ID, got, wantMid)
			}
		}
	}
}

func TestBuildStimuliColorOverride(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Stimuli[2].ColorA = "blue"
	cfg.Stimuli[2].ColorB = "yellow"
	stimuli, err := BuildStimuli(cfg, 60)
	if err != nil {
		t.Fatal(err)
	}
	want := flicker.Blue.Scale(cfg.Luminance).Desaturate(cfg.Saturation, cfg.Background)
	if stimuli[2].PairA != want {
		t.Errorf("override PairA = %v, want %v", stimuli[2].PairA, want)
	}
}

func TestBuildStimuliRejectsNyquistViolation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Stimuli[2].Frequency = 31
	if _, err := BuildStimuli(cfg, 60); err == nil {
		t.Fatal("31 Hz flicker on a 60 Hz display accepted")
	}
}

func TestPrecomputedTableMatchesResolver(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Precompute = true
	stimuli, err := BuildStimuli(cfg, 60)
	if err != nil {
		t.Fatal(err)
	}
	st := stimuli[2]
	if st.Table == nil {
		t.Fatal("precompute on, table missing")
	}
	for frame := int64(0); frame < 3*st.Pattern.PeriodFrames(); frame++ {
		want := st.Pattern.ColorAt(frame, st.PairA, st.PairB)
		if got := st.ColorAt(frame); got != want {
			t.Fatalf("frame %d: table %v, resolver %v", frame, got, want)
		}
	}
}
