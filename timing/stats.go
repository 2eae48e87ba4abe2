// Package timing analyzes frame and switch timestamps recorded during a
// presentation run: interval statistics against the frame budget, the
// refresh rate the display actually delivered, and the flicker frequency
// the observer actually saw.
package timing

import (
	"fmt"
	"io"
	"math"
	"sort"
	"time"
)

// SlowFrame records one frame that ran more than 10% over budget.
type SlowFrame struct {
	Index    int
	Duration time.Duration
}

// FrameStats summarizes the intervals between consecutive frame
// presentations.
type FrameStats struct {
	Count  int // number of intervals
	Budget time.Duration

	Mean   time.Duration
	Median time.Duration
	Min    time.Duration
	Max    time.Duration
	Std    time.Duration

	Slow    []SlowFrame // >10% over budget, in order
	Dropped int         // >50% over budget

	// ImpliedRate is the refresh rate the mean interval corresponds to.
	ImpliedRate float64
}

// AnalyzeFrames computes interval statistics from per-frame presentation
// timestamps. budget is the nominal frame duration for the display the
// run targeted. Fewer than two timestamps yield an empty FrameStats.
func AnalyzeFrames(times []time.Time, budget time.Duration) FrameStats {
	s := FrameStats{Budget: budget}
	if len(times) < 2 {
		return s
	}

	ds := make([]time.Duration, len(times)-1)
	for i := range ds {
		ds[i] = times[i+1].Sub(times[i])
	}
	s.Count = len(ds)

	var sum float64
	s.Min, s.Max = ds[0], ds[0]
	for i, d := range ds {
		sum += d.Seconds()
		if d < s.Min {
			s.Min = d
		}
		if d > s.Max {
			s.Max = d
		}
		if d > budget+budget/10 {
			s.Slow = append(s.Slow, SlowFrame{Index: i + 1, Duration: d})
		}
		if d > budget+budget/2 {
			s.Dropped++
		}
	}
	mean := sum / float64(s.Count)
	s.Mean = time.Duration(mean * float64(time.Second))

	var sq float64
	for _, d := range ds {
		dev := d.Seconds() - mean
		sq += dev * dev
	}
	s.Std = time.Duration(math.Sqrt(sq/float64(s.Count)) * float64(time.Second))

	sorted := make([]time.Duration, len(ds))
	copy(sorted, ds)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	if n := len(sorted); n%2 == 1 {
		s.Median = sorted[n/2]
	} else {
		s.Median = (sorted[n/2-1] + sorted[n/2]) / 2
	}

	if mean > 0 {
		s.ImpliedRate = 1 / mean
	}
	return s
}

// Verdict grades a run's frame timing.
type Verdict int

const (
	Poor Verdict = iota
	Acceptable
	Good
	Excellent
)

func (v Verdict) String() string {
	switch v {
	case Excellent:
		return "EXCELLENT"
	case Good:
		return "GOOD"
	case Acceptable:
		return "ACCEPTABLE"
	default:
		return "POOR"
	}
}

// Verdict grades the run: EXCELLENT needs a comfortable margin under
// budget with under 1% slow frames, GOOD stays within budget with under
// 5% slow, ACCEPTABLE runs within 5% of budget, anything else is POOR.
func (s FrameStats) Verdict() Verdict {
	if s.Count == 0 {
		return Poor
	}
	slowFrac := float64(len(s.Slow)) / float64(s.Count)
	switch {
	case s.Mean < s.Budget-s.Budget/20 && slowFrac < 0.01:
		return Excellent
	case s.Mean < s.Budget && slowFrac < 0.05:
		return Good
	case s.Mean < s.Budget+s.Budget/20:
		return Acceptable
	default:
		return Poor
	}
}

// RateMismatch reports whether the delivered rate misses the configured
// one by more than the given fraction. A mismatch does not change any
// schedule; it flags that the configuration disagrees with the hardware.
func RateMismatch(configured, measured, tol float64) bool {
	if configured <= 0 || measured <= 0 {
		return true
	}
	return math.Abs(measured-configured) >= configured*tol
}

const rule = "======================================================================"

// WriteReport prints the post-run diagnostics block: duration statistics,
// budget analysis, the delivered refresh rate against the target and the
// overall verdict.
func (s FrameStats) WriteReport(w io.Writer, target float64) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "FRAME TIMING DIAGNOSTICS")
	fmt.Fprintln(w, rule)
	if s.Count == 0 {
		fmt.Fprintln(w, "  no frame intervals recorded")
		return
	}

	ms := func(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }
	pct := func(n int) float64 { return float64(n) / float64(s.Count) * 100 }

	fmt.Fprintf(w, "\n*** FRAME DURATION STATISTICS ***\n")
	fmt.Fprintf(w, "  Mean:   %.3f ms\n", ms(s.Mean))
	fmt.Fprintf(w, "  Median: %.3f ms\n", ms(s.Median))
	fmt.Fprintf(w, "  Max:    %.3f ms\n", ms(s.Max))
	fmt.Fprintf(w, "  Min:    %.3f ms\n", ms(s.Min))
	fmt.Fprintf(w, "  Std:    %.3f ms\n", ms(s.Std))

	fmt.Fprintf(w, "\n*** FRAME BUDGET ANALYSIS ***\n")
	fmt.Fprintf(w, "  Target budget: %.3f ms (%g Hz)\n", ms(s.Budget), target)
	fmt.Fprintf(w, "  Mean vs budget: %+.3f ms\n", ms(s.Mean)-ms(s.Budget))
	fmt.Fprintf(w, "  Slow frames (>10%% over): %d (%.2f%%)\n", len(s.Slow), pct(len(s.Slow)))
	fmt.Fprintf(w, "  Dropped frames (>50%% over): %d (%.2f%%)\n", s.Dropped, pct(s.Dropped))

	fmt.Fprintf(w, "\n*** ACTUAL REFRESH RATE ***\n")
	fmt.Fprintf(w, "  Target: %g Hz\n", target)
	fmt.Fprintf(w, "  Actual: %.2f Hz\n", s.ImpliedRate)
	if RateMismatch(target, s.ImpliedRate, 0.05) {
		fmt.Fprintf(w, "  Match: NO\n")
	} else {
		fmt.Fprintf(w, "  Match: YES\n")
	}

	fmt.Fprintf(w, "\n*** PERFORMANCE ASSESSMENT ***\n")
	switch s.Verdict() {
	case Excellent:
		fmt.Fprintln(w, "  EXCELLENT: comfortable margin, under 1% slow frames")
	case Good:
		fmt.Fprintln(w, "  GOOD: within budget, under 5% slow frames")
	case Acceptable:
		fmt.Fprintln(w, "  ACCEPTABLE: close to budget, occasional drops possible")
	default:
		fmt.Fprintln(w, "  POOR: over budget, frequent dropped frames")
	}

	if n := len(s.Slow); n > 0 && n <= 20 {
		fmt.Fprintf(w, "\n*** SLOW FRAMES ***\n")
		for _, f := range s.Slow {
			fmt.Fprintf(w, "  frame %d: %.3f ms\n", f.Index, ms(f.Duration))
		}
	}
}
