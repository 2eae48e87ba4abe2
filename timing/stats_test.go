package timing

import (
	"math"
	"strings"
	"testing"
	"time"
)

func stamps(intervals ...time.Duration) []time.Time {
	base := time.Unix(0, 0)
	ts := []time.Time{base}
	for _, d := range intervals {
		base = base.Add(d)
		ts = append(ts, base)
	}
	return ts
}

func repeat(n int, d time.Duration) []time.Duration {
	ds := make([]time.Duration, n)
	for i := range ds {
		ds[i] = d
	}
	return ds
}

func TestAnalyzeFrames(t *testing.T) {
	budget := time.Second / 60
	ts := stamps(
		budget, budget, budget,
		budget+budget/5, // 20% over: slow
		budget,
		2*budget, // 100% over: slow and dropped
		budget,
	)
	s := AnalyzeFrames(ts, budget)

	if s.Count != 7 {
		t.Fatalf("Count = %d, want 7", s.Count)
	}
	if len(s.Slow) != 2 {
		t.Errorf("Slow = %v, want 2 entries", s.Slow)
	}
	if s.Dropped != 1 {
		t.Errorf("Dropped = %d, want 1", s.Dropped)
	}
	if s.Min != budget {
		t.Errorf("Min = %v, want %v", s.Min, budget)
	}
	if s.Max != 2*budget {
		t.Errorf("Max = %v, want %v", s.Max, 2*budget)
	}
	if s.Median != budget {
		t.Errorf("Median = %v, want %v", s.Median, budget)
	}
	wantMean := (5*budget + budget + budget/5 + 2*budget) / 7
	if d := s.Mean - wantMean; d < -time.Microsecond || d > time.Microsecond {
		t.Errorf("Mean = %v, want about %v", s.Mean, wantMean)
	}
	if s.ImpliedRate <= 0 || s.ImpliedRate >= 60 {
		t.Errorf("ImpliedRate = %g, want below the nominal 60", s.ImpliedRate)
	}
}

func TestAnalyzeFramesDegenerate(t *testing.T) {
	if s := AnalyzeFrames(nil, time.Second/60); s.Count != 0 {
		t.Errorf("nil times: Count = %d", s.Count)
	}
	if s := AnalyzeFrames([]time.Time{time.Unix(0, 0)}, time.Second/60); s.Count != 0 {
		t.Errorf("single timestamp: Count = %d", s.Count)
	}
}

func TestVerdictTiers(t *testing.T) {
	budget := 10 * time.Millisecond

	tests := []struct {
		name      string
		intervals []time.Duration
		want      Verdict
	}{
		{"comfortable margin", repeat(200, 9*time.Millisecond), Excellent},
		{"within budget, some slow", append(repeat(96, 98*time.Millisecond/10), repeat(4, 12*time.Millisecond)...), Good},
		{"at budget", repeat(100, 10*time.Millisecond+100*time.Microsecond), Acceptable},
		{"over budget", repeat(100, 12*time.Millisecond), Poor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := AnalyzeFrames(stamps(tt.intervals...), budget)
			if got := s.Verdict(); got != tt.want {
				t.Errorf("verdict = %v, want %v (mean %v, %d slow of %d)",
					got, tt.want, s.Mean, len(s.Slow), s.Count)
			}
		})
	}
}

func TestRateMismatch(t *testing.T) {
	if RateMismatch(480, 479, 0.05) {
		t.Error("479 against 480 flagged at 5% tolerance")
	}
	if !RateMismatch(480, 450, 0.05) {
		t.Error("450 against 480 not flagged at 5% tolerance")
	}
	if !RateMismatch(60, 0, 0.05) {
		t.Error("unmeasured rate not flagged")
	}
}

func TestWriteReport(t *testing.T) {
	budget := time.Second / 480
	s := AnalyzeFrames(stamps(repeat(480, budget-20*time.Microsecond)...), budget)

	var b strings.Builder
	s.WriteReport(&b, 480)
	out := b.String()
	for _, want := range []string{
		"FRAME TIMING DIAGNOSTICS",
		"FRAME DURATION STATISTICS",
		"FRAME BUDGET ANALYSIS",
		"ACTUAL REFRESH RATE",
		"Match: YES",
		"GOOD",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestWriteReportEmpty(t *testing.T) {
	var b strings.Builder
	FrameStats{}.WriteReport(&b, 60)
	if !strings.Contains(b.String(), "no frame intervals") {
		t.Errorf("empty report = %q", b.String())
	}
}

func TestImpliedRate(t *testing.T) {
	// 8 ms frames on a 120 Hz budget: under budget but not by the 5%
	// margin EXCELLENT asks for
	s := AnalyzeFrames(stamps(repeat(240, 8*time.Millisecond)...), time.Second/120)
	if math.Abs(s.ImpliedRate-125) > 1e-6 {
		t.Errorf("ImpliedRate = %g, want 125", s.ImpliedRate)
	}
	if s.Verdict() != Good {
		t.Errorf("verdict = %v, want Good", s.Verdict())
	}
}
