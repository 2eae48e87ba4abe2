package flicker

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	t.Run("exact", func(t *testing.T) {
		c := Validate(480, 60)
		if !c.Valid || !c.Exact {
			t.Fatalf("Validate(480, 60) = %+v, want valid exact", c)
		}
		if c.FramesPerHalfCycle != 4 {
			t.Errorf("FramesPerHalfCycle = %g, want 4", c.FramesPerHalfCycle)
		}
		if !strings.Contains(c.Message, "4 frames") {
			t.Errorf("Message = %q, want it to name the half-cycle length", c.Message)
		}
	})

	t.Run("adaptive", func(t *testing.T) {
		c := Validate(480, 64)
		if !c.Valid || c.Exact {
			t.Fatalf("Validate(480, 64) = %+v, want valid adaptive", c)
		}
		if c.FramesPerHalfCycle != 3.75 {
			t.Errorf("FramesPerHalfCycle = %g, want 3.75", c.FramesPerHalfCycle)
		}
		if c.Achieved != 64 {
			t.Errorf("Achieved = %g, want 64", c.Achieved)
		}
		if !strings.Contains(c.Message, "adaptive") {
			t.Errorf("Message = %q, want it to say adaptive", c.Message)
		}
	})

	t.Run("above Nyquist", func(t *testing.T) {
		c := Validate(120, 75)
		if c.Valid {
			t.Fatalf("Validate(120, 75) = %+v, want invalid", c)
		}
		if !strings.Contains(c.Message, "Nyquist") {
			t.Errorf("Message = %q, want it to name the Nyquist limit", c.Message)
		}
	})

	t.Run("non-positive", func(t *testing.T) {
		if c := Validate(120, 0); c.Valid {
			t.Errorf("Validate(120, 0) = %+v, want invalid", c)
		}
		if c := Validate(120, -3); c.Valid {
			t.Errorf("Validate(120, -3) = %+v, want invalid", c)
		}
	})
}

func TestNearestExact(t *testing.T) {
	tests := []struct {
		refresh, freq float64
		want          []float64
	}{
		{60, 7, []float64{6, 7.5}},     // 30/7 frames sits between 5 and 4
		{480, 64, []float64{60, 80}},   // 3.75 frames sits between 4 and 3
		{120, 60, []float64{60}},       // already exact
		{60, 29, []float64{15, 30}},    // half-cycle between 2 and 1
	}
	for _, tt := range tests {
		got := NearestExact(tt.refresh, tt.freq)
		if len(got) != len(tt.want) {
			t.Errorf("NearestExact(%g, %g) = %v, want %v", tt.refresh, tt.freq, got, tt.want)
			continue
		}
		for i := range tt.want {
			if got[i] != tt.want[i] {
				t.Errorf("NearestExact(%g, %g) = %v, want %v", tt.refresh, tt.freq, got, tt.want)
				break
			}
		}
	}
}

func TestErrorMessages(t *testing.T) {
	_, err := New(Spec{RefreshRate: 120, Frequency: 80})
	if err == nil {
		t.Fatal("New(120, 80): no error")
	}
	if msg := err.Error(); !strings.Contains(msg, "80") || !strings.Contains(msg, "Nyquist") {
		t.Errorf("error = %q, want the frequency and the limit named", msg)
	}

	_, err = NewExact(Spec{RefreshRate: 60, Frequency: 7})
	if err == nil {
		t.Fatal("NewExact(60, 7): no error")
	}
	msg := err.Error()
	for _, want := range []string{"7", "60", "6", "7.5"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error = %q, want %q mentioned", msg, want)
		}
	}
}

func TestParseWaveform(t *testing.T) {
	for _, tt := range []struct {
		in   string
		want Waveform
		ok   bool
	}{
		{"square", Square, true},
		{"SINE", Sine, true},
		{" sine ", Sine, true},
		{"", Square, true},
		{"triangle", Square, false},
	} {
		got, err := ParseWaveform(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("ParseWaveform(%q): err = %v, want ok=%v", tt.in, err, tt.ok)
			continue
		}
		if tt.ok && got != tt.want {
			t.Errorf("ParseWaveform(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
