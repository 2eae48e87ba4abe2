package flicker

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

// InvalidFrequencyError reports a frequency that cannot be scheduled on the
// given display at all: non-positive, or above the Nyquist limit of half
// the refresh rate. It is returned before any frame is scheduled.
type InvalidFrequencyError struct {
	Frequency   float64
	RefreshRate float64
	Reason      string
}

func (e *InvalidFrequencyError) Error() string {
	return fmt.Sprintf("invalid flicker frequency %g Hz: %s", e.Frequency, e.Reason)
}

// IncompatibleFrequencyError reports a valid frequency whose half-cycle is
// not a whole number of frames, rejected by NewExact. Nearest lists the
// closest frequencies the display can hit exactly.
type IncompatibleFrequencyError struct {
	Frequency   float64
	RefreshRate float64
	Nearest     []float64
}

func (e *IncompatibleFrequencyError) Error() string {
	var near []string
	for _, f := range e.Nearest {
		near = append(near, fmt.Sprintf("%.4g Hz", f))
	}
	return fmt.Sprintf("%g Hz does not divide a %g Hz display into whole half-cycles (nearest exact: %s)",
		e.Frequency, e.RefreshRate, strings.Join(near, ", "))
}

// NearestExact returns the exactly schedulable frequencies bracketing freq
// on a display running at refresh Hz, lowest first. These are refresh/(2k)
// for the whole half-cycle counts k on either side of the ideal one.
func NearestExact(refresh, freq float64) []float64 {
	ideal := refresh / freq / 2
	lo := math.Floor(ideal)
	hi := math.Ceil(ideal)
	if lo < 1 {
		lo = 1
	}
	if hi < 1 {
		hi = 1
	}
	out := []float64{refresh / (2 * hi)}
	if hi != lo {
		out = append(out, refresh/(2*lo))
	}
	sort.Float64s(out)
	return out
}

// Check is the result of Validate: whether a frequency is usable on a
// display, and how it would be scheduled if so.
type Check struct {
	Valid bool
	Exact bool
	// FramesPerHalfCycle is the ideal (possibly fractional) half-cycle
	// length; zero when the frequency is invalid.
	FramesPerHalfCycle float64
	// Achieved is the long-run frequency the schedule delivers.
	Achieved float64
	Message  string
}

// Validate reports whether frequency can run on a refresh Hz display and
// describes the schedule it would get. Configuration loading calls this
// for every assigned frequency before a window is opened.
func Validate(refresh, frequency float64) Check {
	p, err := New(Spec{RefreshRate: refresh, Frequency: frequency})
	if err != nil {
		var inv *InvalidFrequencyError
		msg := err.Error()
		if errors.As(err, &inv) {
			msg = inv.Reason
		}
		return Check{Message: msg}
	}
	c := Check{
		Valid:              true,
		Exact:              p.Exact,
		FramesPerHalfCycle: p.Ideal,
		Achieved:           p.Achieved,
	}
	if p.Exact {
		c.Message = fmt.Sprintf("exact: %d frames per half-cycle", p.Lengths[0])
	} else {
		c.Message = fmt.Sprintf("adaptive: %d-entry pattern averaging %.4f frames, achieves %.6f Hz (%.4f%% off)",
			len(p.Lengths), p.Ideal, p.Achieved, math.Abs(p.FreqError/frequency)*100)
	}
	return c
}
