package engine

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Zyko0/go-sdl3/sdl"

	"github.com/ChristosDalamarinis/RIFT/flicker"
)

type Shape int

const (
	ShapeCircle Shape = iota
	ShapeDiamond
	ShapePatch   // gaussian-edged disc
	ShapeGrating // oriented grating under the gaussian edge
	ShapeLine
)

func ParseShape(s string) (Shape, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "circle", "":
		return ShapeCircle, nil
	case "diamond":
		return ShapeDiamond, nil
	case "patch", "gabor":
		return ShapePatch, nil
	case "grating":
		return ShapeGrating, nil
	case "line":
		return ShapeLine, nil
	}
	return ShapeCircle, fmt.Errorf("unknown shape %q", s)
}

// ClockPosition returns the screen offset from the ring center for a
// clock-face hour, in SDL coordinates: 12 lands above the center, 3 to
// the right, 6 below.
func ClockPosition(hour, radius float64) (dx, dy float64) {
	angle := hour/12*2*math.Pi - math.Pi/2
	return radius * math.Cos(angle), radius * math.Sin(angle)
}

// lineDelta is the half-extent of a line of the given half-length at an
// angle in degrees, 0 = horizontal.
func lineDelta(degrees, halfLen float64) (dx, dy float64) {
	s, c := math.Sincos(degrees * math.Pi / 180)
	return halfLen * c, halfLen * s
}

// Stimulus is one element of the ring, placed and colored, optionally
// carrying a flicker schedule. Fields are fixed at build time; the
// render loop only touches the unexported state.
type Stimulus struct {
	ID          string
	Shape       Shape
	X, Y        float32 // window-space center
	Size        float32 // radius in px
	Orientation float64 // inner line angle, degrees
	LineLength  float32 // oriented line span, px
	LineWidth   int     // oriented line thickness, px
	Static      flicker.Color
	PairA       flicker.Color
	PairB       flicker.Color
	Pattern     *flicker.Pattern // nil = static
	Table       *flicker.Table   // optional precomputed colors
	TriggerLine int

	tex       *sdl.Texture
	texW      float32
	texH      float32
	lastState bool
	switches  []time.Time
}

// Flickers reports whether the stimulus carries a schedule.
func (s *Stimulus) Flickers() bool { return s.Pattern != nil }

// ColorAt resolves the stimulus color for a frame.
func (s *Stimulus) ColorAt(frame int64) flicker.Color {
	if s.Pattern == nil {
		return s.Static
	}
	if s.Table != nil {
		return s.Table.At(frame)
	}
	return s.Pattern.ColorAt(frame, s.PairA, s.PairB)
}

// Switches returns the recorded switch timestamps.
func (s *Stimulus) Switches() []time.Time { return s.switches }

// BuildStimuli resolves the configured ring into runtime stimuli against
// a known refresh rate: positions from clock hours, colors dimmed and
// desaturated toward the background, schedules built per assigned
// frequency. Textures are attached separately once a renderer exists.
func BuildStimuli(cfg *Config, refresh float64) ([]*Stimulus, error) {
	wave, err := flicker.ParseWaveform(cfg.Waveform)
	if err != nil {
		return nil, err
	}
	defA, err := ParseColor(cfg.ColorA)
	if err != nil {
		return nil, err
	}
	defB, err := ParseColor(cfg.ColorB)
	if err != nil {
		return nil, err
	}

	post := func(c flicker.Color) flicker.Color {
		return c.Scale(cfg.Luminance).Desaturate(cfg.Saturation, cfg.Background)
	}

	cx := float64(cfg.ScreenWidth) / 2
	cy := float64(cfg.ScreenHeight) / 2

	out := make([]*Stimulus, 0, len(cfg.Stimuli))
	for _, sc := range cfg.Stimuli {
		shape, err := ParseShape(sc.Shape)
		if err != nil {
			return nil, fmt.Errorf("stimulus %q: %w", sc.ID, err)
		}

		st := &Stimulus{
			ID:          sc.ID,
			Shape:       shape,
			Orientation: sc.Orientation,
			LineLength:  float32(cfg.LineLength),
			LineWidth:   int(cfg.LineWidth),
			Static:      post(flicker.Green),
			PairA:       post(defA),
			PairB:       post(defB),
			TriggerLine: sc.TriggerLine,
		}

		dx, dy := ClockPosition(sc.Hour, cfg.RingRadius)
		st.X = float32(cx + dx)
		st.Y = float32(cy + dy)
		st.Size = float32(cfg.StimulusSize)
		if sc.Size > 0 {
			st.Size = float32(sc.Size)
		}

		if sc.Color != "" {
			c, err := ParseColor(sc.Color)
			if err != nil {
				return nil, fmt.Errorf("stimulus %q: %w", sc.ID, err)
			}
			st.Static = post(c)
		}
		if sc.ColorA != "" {
			c, err := ParseColor(sc.ColorA)
			if err != nil {
				return nil, fmt.Errorf("stimulus %q: %w", sc.ID, err)
			}
			st.PairA = post(c)
		}
		if sc.ColorB != "" {
			c, err := ParseColor(sc.ColorB)
			if err != nil {
				return nil, fmt.Errorf("stimulus %q: %w", sc.ID, err)
			}
			st.PairB = post(c)
		}

		if sc.Frequency > 0 {
			spec := flicker.Spec{RefreshRate: refresh, Frequency: sc.Frequency, Waveform: wave}
			var pat *flicker.Pattern
			if cfg.Strict {
				pat, err = flicker.NewExact(spec)
			} else {
				pat, err = flicker.New(spec)
			}
			if err != nil {
				return nil, fmt.Errorf("stimulus %q: %w", sc.ID, err)
			}
			st.Pattern = pat
			st.lastState = pat.StateAt(0)
			if cfg.Precompute {
				st.Table = pat.NewTable(st.PairA, st.PairB, tableLen(pat, cfg, refresh))
			}
		}

		out = append(out, st)
	}
	return out, nil
}

// tableLen picks the precompute span: the exact repeating period for a
// square wave, the whole trial for sine, which never lands back on a
// frame boundary.
func tableLen(p *flicker.Pattern, cfg *Config, refresh float64) int {
	if p.Spec.Waveform == flicker.Square {
		return 0 // NewTable defaults to the period
	}
	seconds := cfg.TrialSeconds
	if seconds <= 0 {
		seconds = 20
	}
	return int(seconds*refresh) + 1
}
