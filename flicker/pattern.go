// Package flicker schedules frame-accurate color alternation for visual
// frequency tagging. Given a display refresh rate and a target flicker
// frequency it derives a repeating sequence of half-cycle lengths whose
// long-run average matches the target exactly, then resolves any frame
// number to a color state without accumulating drift.
package flicker

import (
	"fmt"
	"math"
	"math/big"
	"strings"
)

// Waveform selects how the two stimulus colors alternate over a cycle.
type Waveform int

const (
	// Square switches abruptly between the two colors at half-cycle
	// boundaries.
	Square Waveform = iota
	// Sine blends the two colors continuously through the background
	// midpoint.
	Sine
)

func (w Waveform) String() string {
	switch w {
	case Sine:
		return "sine"
	default:
		return "square"
	}
}

// ParseWaveform reads a waveform name as written in config files.
func ParseWaveform(s string) (Waveform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "square", "":
		return Square, nil
	case "sine":
		return Sine, nil
	}
	return Square, fmt.Errorf("unknown waveform %q (want square or sine)", s)
}

// Spec is the immutable description of one flicker: the display it runs on,
// the frequency it targets and the waveform used to render it.
type Spec struct {
	RefreshRate float64 // display refresh rate in Hz
	Frequency   float64 // target flicker frequency in Hz
	Waveform    Waveform
}

// Half-cycle counts within integerEps of a whole number are scheduled as
// exact; the residue is far below anything a display could express.
const integerEps = 1e-3

// maxDenominator bounds the pattern length when reducing the fractional
// part of the ideal half-cycle to a ratio.
const maxDenominator = 1000

// Pattern is a precomputed flicker schedule. All fields are set by New and
// must not be modified afterwards.
type Pattern struct {
	Spec Spec

	// Ideal is RefreshRate / Frequency / 2, the exact (possibly
	// fractional) number of frames one half-cycle should last.
	Ideal float64

	// Exact reports whether Ideal is a whole number of frames, in which
	// case Lengths holds that single value.
	Exact bool

	// Lengths holds the repeating sequence of half-cycle lengths in
	// frames. For a non-integer Ideal the entries mix floor and ceil
	// values so that their mean equals Ideal exactly. One full color
	// period walks the sequence twice.
	Lengths []int

	// Achieved is the long-run flicker frequency the schedule actually
	// produces, and FreqError its signed deviation from the target.
	Achieved  float64
	FreqError float64

	framesPerCycle float64 // RefreshRate / Frequency, for sine phase
	sum            int64   // total frames in Lengths
	cycle          []int   // Lengths walked twice, one full color period
	prefix         []int64 // frame offsets over cycle, for lookup
}

// New derives the flicker schedule for s. The frequency must be positive
// and at most half the refresh rate; anything else returns an
// *InvalidFrequencyError before a single frame is scheduled.
func New(s Spec) (*Pattern, error) {
	if err := checkSpec(s); err != nil {
		return nil, err
	}

	p := &Pattern{
		Spec:           s,
		Ideal:          s.RefreshRate / s.Frequency / 2,
		framesPerCycle: s.RefreshRate / s.Frequency,
	}

	if math.Abs(p.Ideal-math.Round(p.Ideal)) < integerEps {
		p.Exact = true
		p.Lengths = []int{int(math.Round(p.Ideal))}
	} else {
		low := int(math.Floor(p.Ideal))
		high := low + 1
		num, den := limitDenominator(p.Ideal-math.Floor(p.Ideal), maxDenominator)

		// Spread num long half-cycles over den entries the way a
		// line-drawing loop spreads error: entry i is long iff i*num
		// wraps past a multiple of den.
		p.Lengths = make([]int, den)
		for i := range p.Lengths {
			if (int64(i)*num)%den < num {
				p.Lengths[i] = high
			} else {
				p.Lengths[i] = low
			}
		}
	}

	for _, n := range p.Lengths {
		p.sum += int64(n)
	}

	// One color period walks the sequence twice, the first color taking
	// the odd traversal slots the second color took before. With an even
	// number of entries every long half-cycle would land on the same
	// color both times, biasing the duty cycle off the midpoint, so the
	// second traversal is rotated by one entry: the same lengths in the
	// same circular order, shifted onto the opposite color.
	q := len(p.Lengths)
	rot := 0
	if q%2 == 0 {
		rot = 1
	}
	p.cycle = make([]int, 2*q)
	for i := 0; i < q; i++ {
		p.cycle[i] = p.Lengths[i]
		p.cycle[q+i] = p.Lengths[(i+rot)%q]
	}
	p.prefix = make([]int64, len(p.cycle)+1)
	for i, n := range p.cycle {
		p.prefix[i+1] = p.prefix[i] + int64(n)
	}

	// long-run cycles per second: len(Lengths) half-cycles every sum frames
	p.Achieved = s.RefreshRate * float64(len(p.Lengths)) / (2 * float64(p.sum))
	p.FreqError = p.Achieved - s.Frequency
	return p, nil
}

// NewExact is the strict variant of New: it refuses any frequency whose
// half-cycle is not a whole number of frames and reports the nearest
// frequencies that are, via *IncompatibleFrequencyError.
func NewExact(s Spec) (*Pattern, error) {
	p, err := New(s)
	if err != nil {
		return nil, err
	}
	if !p.Exact {
		return nil, &IncompatibleFrequencyError{
			Frequency:   s.Frequency,
			RefreshRate: s.RefreshRate,
			Nearest:     NearestExact(s.RefreshRate, s.Frequency),
		}
	}
	return p, nil
}

func checkSpec(s Spec) error {
	if !(s.RefreshRate > 0) || math.IsInf(s.RefreshRate, 0) {
		return &InvalidFrequencyError{
			Frequency:   s.Frequency,
			RefreshRate: s.RefreshRate,
			Reason:      "refresh rate must be a positive finite number of Hz",
		}
	}
	if !(s.Frequency > 0) {
		return &InvalidFrequencyError{
			Frequency:   s.Frequency,
			RefreshRate: s.RefreshRate,
			Reason:      "flicker frequency must be positive",
		}
	}
	if s.Frequency > s.RefreshRate/2 {
		return &InvalidFrequencyError{
			Frequency:   s.Frequency,
			RefreshRate: s.RefreshRate,
			Reason: fmt.Sprintf("frequency above the %.4g Hz Nyquist limit for a %.4g Hz display",
				s.RefreshRate/2, s.RefreshRate),
		}
	}
	return nil
}

// PeriodFrames is the number of frames after which the square-wave schedule
// repeats with the same color phase: the half-cycle sequence walked twice.
func (p *Pattern) PeriodFrames() int64 {
	return 2 * p.sum
}

// Info formats the schedule the way it is reported on the console before a
// run: target, pattern shape and the exactly-achieved frequency.
func (p *Pattern) Info() string {
	var b strings.Builder
	fmt.Fprintf(&b, "  Target: %g Hz\n", p.Spec.Frequency)
	fmt.Fprintf(&b, "  Mode: %s-wave\n", p.Spec.Waveform)
	fmt.Fprintf(&b, "  Ideal frames/half-cycle: %.4f\n", p.Ideal)
	if p.Exact {
		fmt.Fprintf(&b, "  Pattern type: EXACT INTEGER\n")
		fmt.Fprintf(&b, "  Pattern: %d frames per half-cycle\n", p.Lengths[0])
	} else {
		fmt.Fprintf(&b, "  Pattern type: ADAPTIVE\n")
		fmt.Fprintf(&b, "  Pattern: %v (length=%d)\n", p.Lengths, len(p.Lengths))
	}
	fmt.Fprintf(&b, "  Achieved: %.6f Hz\n", p.Achieved)
	fmt.Fprintf(&b, "  Error: %.6f Hz (%.4f%%)", p.FreqError,
		math.Abs(p.FreqError/p.Spec.Frequency)*100)
	return b.String()
}

// limitDenominator reduces x in [0,1) to the closest fraction num/den with
// den <= maxDen, walking the continued-fraction expansion of the exact
// binary value of x and comparing the last convergent with its best
// semiconvergent.
func limitDenominator(x float64, maxDen int64) (num, den int64) {
	r := new(big.Rat).SetFloat64(x)
	md := big.NewInt(maxDen)
	if r.Denom().Cmp(md) <= 0 {
		return r.Num().Int64(), r.Denom().Int64()
	}

	p0, q0 := big.NewInt(0), big.NewInt(1)
	p1, q1 := big.NewInt(1), big.NewInt(0)
	n := new(big.Int).Set(r.Num())
	d := new(big.Int).Set(r.Denom())
	for {
		a := new(big.Int).Quo(n, d)
		q2 := new(big.Int).Add(q0, new(big.Int).Mul(a, q1))
		if q2.Cmp(md) > 0 {
			break
		}
		p2 := new(big.Int).Add(p0, new(big.Int).Mul(a, p1))
		rem := new(big.Int).Sub(n, new(big.Int).Mul(a, d))
		p0, q0, p1, q1 = p1, q1, p2, q2
		n, d = d, rem
	}

	k := new(big.Int).Quo(new(big.Int).Sub(md, q0), q1)
	semiN := new(big.Int).Add(p0, new(big.Int).Mul(k, p1))
	semiD := new(big.Int).Add(q0, new(big.Int).Mul(k, q1))
	semi := new(big.Rat).SetFrac(semiN, semiD)
	conv := new(big.Rat).SetFrac(p1, q1)

	dSemi := new(big.Rat).Sub(semi, r)
	dConv := new(big.Rat).Sub(conv, r)
	if dConv.Abs(dConv).Cmp(dSemi.Abs(dSemi)) <= 0 {
		return conv.Num().Int64(), conv.Denom().Int64()
	}
	return semi.Num().Int64(), semi.Denom().Int64()
}
