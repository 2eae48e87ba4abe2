package engine

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ChristosDalamarinis/RIFT/flicker"
)

// Config describes one presentation run. It is assembled once from
// defaults, an optional YAML file and command-line flags, and is treated
// as read-only from the moment Run starts.
type Config struct {
	ScreenWidth  int     `yaml:"screen_width"`
	ScreenHeight int     `yaml:"screen_height"`
	Fullscreen   bool    `yaml:"fullscreen"`
	VSync        bool    `yaml:"vsync"`

	// RefreshRate is the display rate every schedule is derived from.
	// 0 means query the current display mode after the window opens.
	RefreshRate float64 `yaml:"refresh_rate"`
	// MeasureRate flips test frames before the trial and warns when the
	// measured rate disagrees with RefreshRate. The schedule still uses
	// RefreshRate; the warning is diagnostic.
	MeasureRate bool `yaml:"measure_rate"`
	// Strict refuses frequencies that need an adaptive schedule instead
	// of a whole number of frames per half-cycle.
	Strict bool `yaml:"strict"`

	Waveform   string  `yaml:"waveform"`
	ColorA     string  `yaml:"color_a"`
	ColorB     string  `yaml:"color_b"`
	Background float64 `yaml:"background"` // gray level in [-1,1]
	Luminance  float64 `yaml:"luminance"`  // channel multiplier (0,1]
	Saturation float64 `yaml:"saturation"` // pull toward background [0,1]

	TrialSeconds float64 `yaml:"trial_seconds"` // 0 = until key press
	PollFrames   int     `yaml:"poll_frames"`   // poll input every N frames
	Precompute   bool    `yaml:"precompute"`    // resolve colors into tables up front

	RingRadius   float64 `yaml:"ring_radius"`   // px from center to each stimulus
	StimulusSize float64 `yaml:"stimulus_size"` // px radius
	LineLength   float64 `yaml:"line_length"`   // orientation line, px
	LineWidth    float64 `yaml:"line_width"`
	Smoothness   float64 `yaml:"smoothness"` // gaussian edge falloff for patches
	Fixation     bool    `yaml:"fixation"`

	Splash       string `yaml:"splash"`       // intro image, shown until key press
	Instructions string `yaml:"instructions"` // intro text when no splash image
	FontFile     string `yaml:"font"`
	FontSize     int    `yaml:"font_size"`

	OutputFile    string `yaml:"output_file"`
	TriggerDevice string `yaml:"trigger_device"` // DLP-IO8-G serial device
	TriggerBaud   int    `yaml:"trigger_baud"`

	Audio   AudioConfig      `yaml:"audio"`
	Stimuli []StimulusConfig `yaml:"stimuli"`
}

// AudioConfig adds an amplitude-modulated tone tagged at its own
// frequency alongside the visual stimuli.
type AudioConfig struct {
	Enabled bool    `yaml:"enabled"`
	Carrier float64 `yaml:"carrier"` // Hz
	Tag     float64 `yaml:"tag"`     // modulation frequency, Hz
	Volume  float64 `yaml:"volume"`  // 0..1
}

// StimulusConfig places one stimulus on the ring. A positive Frequency
// assigns it a flicker; zero leaves it static. Any stimulus may carry a
// flicker, and any may not.
type StimulusConfig struct {
	ID          string  `yaml:"id"`
	Shape       string  `yaml:"shape"`
	Hour        float64 `yaml:"hour"`        // clock position, 12 = up
	Size        float64 `yaml:"size"`        // px radius, 0 = stimulus_size
	Orientation float64 `yaml:"orientation"` // inner line angle, degrees
	Frequency   float64 `yaml:"frequency"`   // Hz, 0 = static
	Color       string  `yaml:"color"`       // static color
	ColorA      string  `yaml:"color_a"`     // per-stimulus pair override
	ColorB      string  `yaml:"color_b"`
	TriggerLine int     `yaml:"trigger_line"` // DLP line pulsed on switches, 0 = none
}

// DefaultConfig is the visual-search ring: six green circles, a green
// diamond singleton at 3 o'clock and a red circle at 9 o'clock, the two
// cardinal stimuli flickering at rates a 60 Hz display divides evenly.
func DefaultConfig() *Config {
	return &Config{
		ScreenWidth:  1200,
		ScreenHeight: 900,
		VSync:        true,
		RefreshRate:  60,
		Waveform:     "square",
		ColorA:       "green",
		ColorB:       "magenta",
		Background:   0.1,
		Luminance:    0.9,
		Saturation:   0.9,
		PollFrames:   10,
		RingRadius:   300,
		StimulusSize: 80,
		LineLength:   40,
		LineWidth:    4,
		Smoothness:   5,
		Fixation:     true,
		FontSize:     24,
		OutputFile:   "results.csv",
		TriggerBaud:  9600,
		Audio:        AudioConfig{Carrier: 440, Tag: 40, Volume: 0.5},
		Stimuli: []StimulusConfig{
			{ID: "clock12", Shape: "circle", Hour: 12, Orientation: 90},
			{ID: "clock1.5", Shape: "circle", Hour: 1.5},
			{ID: "singleton", Shape: "diamond", Hour: 3, Frequency: 7.5, TriggerLine: 3},
			{ID: "clock4.5", Shape: "circle", Hour: 4.5},
			{ID: "clock6", Shape: "circle", Hour: 6},
			{ID: "clock7.5", Shape: "circle", Hour: 7.5, Orientation: 90},
			{ID: "clock9", Shape: "circle", Hour: 9, Orientation: 90, Frequency: 6, Color: "red", TriggerLine: 4},
			{ID: "clock10.5", Shape: "circle", Hour: 10.5, Orientation: 90},
		},
	}
}

// LoadConfig reads a YAML config over the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config as YAML, handy for generating a starting file.
func (cfg *Config) Save(path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

var colorNames = map[string]flicker.Color{
	"green":   flicker.Green,
	"magenta": flicker.Magenta,
	"red":     flicker.Red,
	"cyan":    flicker.Cyan,
	"blue":    flicker.Blue,
	"yellow":  flicker.Yellow,
	"white":   flicker.White,
	"black":   flicker.Black,
	"gray":    flicker.Gray,
	"grey":    flicker.Gray,
}

// ParseColor reads a named color or an "r,g,b" triple with channels in
// [-1,1].
func ParseColor(s string) (flicker.Color, error) {
	if c, ok := colorNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return c, nil
	}
	var r, g, b float64
	if n, err := fmt.Sscanf(s, "%f,%f,%f", &r, &g, &b); err != nil || n != 3 {
		return flicker.Color{}, fmt.Errorf("bad color %q (want a name or r,g,b in [-1,1])", s)
	}
	for _, v := range [...]float64{r, g, b} {
		if v < -1 || v > 1 {
			return flicker.Color{}, fmt.Errorf("bad color %q: channels must be in [-1,1]", s)
		}
	}
	return flicker.Color{r, g, b}, nil
}

// Validate checks everything that can be checked before a window exists.
// Frequencies are checked against RefreshRate here when it is known; when
// RefreshRate is 0 the check runs again after the display mode is read.
func (cfg *Config) Validate() error {
	if cfg.ScreenWidth <= 0 || cfg.ScreenHeight <= 0 {
		return fmt.Errorf("screen size %dx%d is not usable", cfg.ScreenWidth, cfg.ScreenHeight)
	}
	if cfg.Luminance <= 0 || cfg.Luminance > 1 {
		return fmt.Errorf("luminance %g outside (0,1]", cfg.Luminance)
	}
	if cfg.Saturation < 0 || cfg.Saturation > 1 {
		return fmt.Errorf("saturation %g outside [0,1]", cfg.Saturation)
	}
	if cfg.Background < -1 || cfg.Background > 1 {
		return fmt.Errorf("background %g outside [-1,1]", cfg.Background)
	}
	if cfg.PollFrames < 1 {
		return fmt.Errorf("poll_frames %d: must poll at least every frame", cfg.PollFrames)
	}
	if _, err := flicker.ParseWaveform(cfg.Waveform); err != nil {
		return err
	}
	if _, err := ParseColor(cfg.ColorA); err != nil {
		return fmt.Errorf("color_a: %w", err)
	}
	if _, err := ParseColor(cfg.ColorB); err != nil {
		return fmt.Errorf("color_b: %w", err)
	}

	seen := make(map[string]bool, len(cfg.Stimuli))
	for i, s := range cfg.Stimuli {
		if s.ID == "" {
			return fmt.Errorf("stimulus %d: missing id", i)
		}
		if seen[s.ID] {
			return fmt.Errorf("stimulus %q appears twice", s.ID)
		}
		seen[s.ID] = true
		if _, err := ParseShape(s.Shape); err != nil {
			return fmt.Errorf("stimulus %q: %w", s.ID, err)
		}
		for name, cs := range map[string]string{"color": s.Color, "color_a": s.ColorA, "color_b": s.ColorB} {
			if cs == "" {
				continue
			}
			if _, err := ParseColor(cs); err != nil {
				return fmt.Errorf("stimulus %q %s: %w", s.ID, name, err)
			}
		}
		if s.TriggerLine < 0 || s.TriggerLine > 8 {
			return fmt.Errorf("stimulus %q: trigger_line %d outside 1..8 (0 = none)", s.ID, s.TriggerLine)
		}
	}

	if cfg.Audio.Enabled {
		if cfg.Audio.Carrier <= 0 {
			return fmt.Errorf("audio carrier %g Hz is not a tone", cfg.Audio.Carrier)
		}
		if cfg.Audio.Tag <= 0 {
			return fmt.Errorf("audio tag %g Hz cannot be scheduled", cfg.Audio.Tag)
		}
		if cfg.Audio.Volume < 0 || cfg.Audio.Volume > 1 {
			return fmt.Errorf("audio volume %g outside [0,1]", cfg.Audio.Volume)
		}
	}

	if cfg.RefreshRate > 0 {
		return cfg.CheckFrequencies(cfg.RefreshRate)
	}
	return nil
}

// CheckFrequencies validates every assigned flicker frequency against a
// known refresh rate. In strict mode a frequency that needs an adaptive
// schedule is rejected with the nearest exact alternatives named.
func (cfg *Config) CheckFrequencies(refresh float64) error {
	for _, s := range cfg.Stimuli {
		if s.Frequency == 0 {
			continue
		}
		spec := flicker.Spec{RefreshRate: refresh, Frequency: s.Frequency}
		var err error
		if cfg.Strict {
			_, err = flicker.NewExact(spec)
		} else {
			_, err = flicker.New(spec)
		}
		if err != nil {
			return fmt.Errorf("stimulus %q: %w", s.ID, err)
		}
	}
	return nil
}

// EffectivePoll caps the input-poll interval so a response key is never
// seen more than 100 ms late at the given refresh rate.
func (cfg *Config) EffectivePoll(refresh float64) int {
	n := cfg.PollFrames
	if max := int(refresh / 10); max >= 1 && n > max {
		n = max
	}
	if n < 1 {
		n = 1
	}
	return n
}
