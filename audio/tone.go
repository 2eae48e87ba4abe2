// Package audio generates amplitude-modulated tones for auditory frequency
// tagging. The same half-cycle schedule that drives the visual flicker
// drives the envelope here, with audio samples standing in for display
// frames: at 44100 samples per second a 40 Hz tag gets the same exact-
// average treatment as a 64 Hz flicker on a 480 Hz display.
package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"

	"github.com/ChristosDalamarinis/RIFT/flicker"
)

const SampleRate = beep.SampleRate(44100)

// rampStep bounds how fast the square envelope may move per sample. A
// full swing takes about 2 ms, long enough to keep the switch click-free
// and short next to any usable tag period.
const rampStep = 1.0 / (0.002 * float64(SampleRate))

// Tone is a sine carrier whose amplitude follows a flicker schedule. It
// streams forever; wrap it in a beep.Ctrl or take from it to bound the
// duration.
type Tone struct {
	Pattern *flicker.Pattern

	carrier float64
	phase   float64
	sample  int64
	env     float64
}

// NewTone builds the tagged tone. The tag frequency is validated against
// the audio Nyquist limit the same way a flicker frequency is validated
// against the display's.
func NewTone(carrier, tag float64, wave flicker.Waveform) (*Tone, error) {
	p, err := flicker.New(flicker.Spec{
		RefreshRate: float64(SampleRate),
		Frequency:   tag,
		Waveform:    wave,
	})
	if err != nil {
		return nil, err
	}
	return &Tone{Pattern: p, carrier: carrier, env: p.BlendAt(0)}, nil
}

// Stream fills samples with the modulated carrier. Sine tags use the
// schedule's blend directly; square tags slew toward the scheduled state
// so the envelope never steps by more than rampStep per sample.
func (t *Tone) Stream(samples [][2]float64) (n int, ok bool) {
	square := t.Pattern.Spec.Waveform == flicker.Square
	for i := range samples {
		target := t.Pattern.BlendAt(t.sample)
		if square {
			switch {
			case t.env < target-rampStep:
				t.env += rampStep
			case t.env > target+rampStep:
				t.env -= rampStep
			default:
				t.env = target
			}
		} else {
			t.env = target
		}

		v := t.env * math.Sin(2*math.Pi*t.phase)
		samples[i][0] = v
		samples[i][1] = v

		t.phase += t.carrier / float64(SampleRate)
		t.phase -= math.Floor(t.phase)
		t.sample++
	}
	return len(samples), true
}

func (t *Tone) Err() error { return nil }

// Player owns the speaker for one run.
type Player struct {
	ctrl *beep.Ctrl
}

// Play opens the speaker and starts the tone at the given volume in
// [0,1]. Volume is applied on beep's exponential scale; 0 plays silence
// rather than dividing by zero.
func Play(t *Tone, volume float64) (*Player, error) {
	if err := speaker.Init(SampleRate, SampleRate.N(100*time.Millisecond)); err != nil {
		return nil, err
	}
	ctrl := &beep.Ctrl{Streamer: &effects.Volume{
		Streamer: t,
		Base:     2,
		Volume:   math.Log2(math.Max(volume, 1e-4)),
		Silent:   volume == 0,
	}}
	speaker.Play(ctrl)
	return &Player{ctrl: ctrl}, nil
}

// Stop silences the tone and releases the speaker.
func (p *Player) Stop() {
	if p == nil {
		return
	}
	speaker.Lock()
	p.ctrl.Paused = true
	speaker.Unlock()
	speaker.Close()
}
