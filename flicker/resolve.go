package flicker

import (
	"math"
	"sort"
)

// StateAt reports the square-wave phase of frame n: true while the first
// color of the pair is shown. The mapping depends only on n and the
// schedule, so a dropped render frame can never shift later states.
// Frames are numbered from 0.
func (p *Pattern) StateAt(n int64) bool {
	if p.Exact {
		return (n/int64(p.Lengths[0]))%2 == 0
	}
	pos := n % (2 * p.sum)
	// half-cycle whose frame span contains pos
	i := sort.Search(len(p.cycle), func(i int) bool { return p.prefix[i+1] > pos })
	return i%2 == 0
}

// BlendAt returns the weight of the first color at frame n, in [0,1]. For
// a sine waveform the weight moves smoothly through 0.5, the background
// midpoint; for square it is exactly 0 or 1.
func (p *Pattern) BlendAt(n int64) float64 {
	if p.Spec.Waveform == Sine {
		pos := math.Mod(float64(n), p.framesPerCycle) / p.framesPerCycle
		return (math.Sin(2*math.Pi*pos) + 1) / 2
	}
	if p.StateAt(n) {
		return 1
	}
	return 0
}

// ColorAt resolves the color shown at frame n for the pair (a, b), where a
// is shown while StateAt is true. Sine waveforms blend the pair instead of
// switching.
func (p *Pattern) ColorAt(n int64, a, b Color) Color {
	if p.Spec.Waveform == Sine {
		return Lerp(b, a, p.BlendAt(n))
	}
	if p.StateAt(n) {
		return a
	}
	return b
}

// Table is a flat lookup of resolved colors for a render loop that wants
// to avoid per-frame arithmetic. Frames index the table modulo its length.
type Table struct {
	colors []Color
}

// NewTable precomputes n resolved colors for the pair (a, b). If n <= 0
// the table covers exactly PeriodFrames entries, which makes the modulo
// wrap seamless for square waveforms. Sine schedules generally do not
// repeat on a whole frame count, so a sine table of any length carries a
// small discontinuity at the wrap; size n to the trial length to avoid
// hitting it.
func (p *Pattern) NewTable(a, b Color, n int) *Table {
	if n <= 0 {
		n = int(p.PeriodFrames())
	}
	t := &Table{colors: make([]Color, n)}
	for i := range t.colors {
		t.colors[i] = p.ColorAt(int64(i), a, b)
	}
	return t
}

// At returns the precomputed color for frame n.
func (t *Table) At(n int64) Color {
	return t.colors[n%int64(len(t.colors))]
}

// Len is the number of precomputed entries.
func (t *Table) Len() int {
	return len(t.colors)
}
