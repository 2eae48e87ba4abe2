package engine

import (
	"path/filepath"
	"testing"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    [3]float64
		wantErr bool
	}{
		{in: "green", want: [3]float64{-1, 1, -1}},
		{in: " Magenta ", want: [3]float64{1, -1, 1}},
		{in: "0.5,-0.25,1", want: [3]float64{0.5, -0.25, 1}},
		{in: "2,0,0", wantErr: true},
		{in: "plaid", wantErr: true},
		{in: "1,2", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseColor(%q): want error, got %v", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseColor(%q): %v", tt.in, err)
			continue
		}
		if [3]float64(got) != tt.want {
			t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDefaultConfigValidates(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestValidateCatchesBadFrequency(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Stimuli[2].Frequency = 40 // above Nyquist on the 60 Hz default
	if err := cfg.Validate(); err == nil {
		t.Fatal("40 Hz flicker on a 60 Hz display accepted")
	}
}

func TestStrictRejectsAdaptive(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Strict = true
	cfg.Stimuli[2].Frequency = 7 // 60/7/2 is not an integer
	if err := cfg.Validate(); err == nil {
		t.Fatal("strict mode accepted a non-dividing frequency")
	}
	cfg.Stimuli[2].Frequency = 7.5 // 4 frames per half-cycle
	if err := cfg.Validate(); err != nil {
		t.Fatalf("strict mode rejected an exact frequency: %v", err)
	}
}

func TestValidateRejectsDuplicateIDs(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Stimuli[1].ID = cfg.Stimuli[0].ID
	if err := cfg.Validate(); err == nil {
		t.Fatal("duplicate stimulus ids accepted")
	}
}

func TestEffectivePoll(t *testing.T) {
	tests := []struct {
		poll    int
		refresh float64
		want    int
	}{
		{poll: 1, refresh: 60, want: 1},
		{poll: 10, refresh: 60, want: 6},   // 6 frames = 100 ms at 60 Hz
		{poll: 10, refresh: 480, want: 10}, // well under 100 ms
		{poll: 100, refresh: 480, want: 48},
	}
	for _, tt := range tests {
		cfg := &Config{PollFrames: tt.poll}
		if got := cfg.EffectivePoll(tt.refresh); got != tt.want {
			t.Errorf("EffectivePoll(poll=%d, %g Hz) = %d, want %d", tt.poll, tt.refresh, got, tt.want)
		}
	}
}

func TestConfigRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RefreshRate = 480
	cfg.Waveform = "sine"
	cfg.Stimuli[0].Frequency = 64

	path := filepath.Join(t.TempDir(), "rift.yaml")
	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.RefreshRate != 480 || loaded.Waveform != "sine" {
		t.Errorf("round trip lost fields: refresh=%g waveform=%q", loaded.RefreshRate, loaded.Waveform)
	}
	if len(loaded.Stimuli) != len(cfg.Stimuli) || loaded.Stimuli[0].Frequency != 64 {
		t.Errorf("round trip lost stimuli: %+v", loaded.Stimuli)
	}
	if err := loaded.Validate(); err != nil {
		t.Errorf("reloaded config invalid: %v", err)
	}
}
