package timing

import (
	"time"
)

// SwitchStats summarizes recorded color-switch timestamps for one
// flickering stimulus.
type SwitchStats struct {
	Count        int // number of switches recorded
	MeanInterval time.Duration
	// Achieved is the flicker frequency implied by the mean interval.
	// Two switches make one full cycle, so this is 1/(2*mean): a 10 Hz
	// flicker switches every 50 ms.
	Achieved float64
}

// AnalyzeSwitches derives the delivered flicker frequency from the times
// at which a stimulus changed color. Fewer than two switches carry no
// interval information and yield an empty SwitchStats.
func AnalyzeSwitches(times []time.Time) SwitchStats {
	s := SwitchStats{Count: len(times)}
	if len(times) < 2 {
		return s
	}
	var sum float64
	for i := 1; i < len(times); i++ {
		sum += times[i].Sub(times[i-1]).Seconds()
	}
	mean := sum / float64(len(times)-1)
	s.MeanInterval = time.Duration(mean * float64(time.Second))
	if mean > 0 {
		s.Achieved = 1 / (2 * mean)
	}
	return s
}

// Matches reports whether the delivered frequency lands within tol Hz of
// the target.
func (s SwitchStats) Matches(target, tol float64) bool {
	d := s.Achieved - target
	if d < 0 {
		d = -d
	}
	return d < tol
}

// DetectRate finds the display's refresh rate from a stream of frame
// intervals: the first run of nIdentical consecutive intervals whose
// spread stays within threshold is taken as stable, and the rate is the
// reciprocal of that run's mean. ok is false when no such run exists,
// in which case the caller should fall back to its configured rate.
func DetectRate(intervals []time.Duration, nIdentical int, threshold time.Duration) (rate float64, ok bool) {
	if nIdentical < 2 || len(intervals) < nIdentical {
		return 0, false
	}
	for start := 0; start+nIdentical <= len(intervals); start++ {
		run := intervals[start : start+nIdentical]
		lo, hi := run[0], run[0]
		var sum time.Duration
		for _, d := range run {
			if d < lo {
				lo = d
			}
			if d > hi {
				hi = d
			}
			sum += d
		}
		if hi-lo > threshold {
			continue
		}
		mean := sum.Seconds() / float64(nIdentical)
		if mean <= 0 {
			return 0, false
		}
		return 1 / mean, true
	}
	return 0, false
}
