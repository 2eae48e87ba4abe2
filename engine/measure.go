package engine

import (
	"fmt"
	"time"

	"github.com/Zyko0/go-sdl3/sdl"

	"github.com/ChristosDalamarinis/RIFT/timing"
)

// FlipIntervals presents n cleared frames and returns the intervals
// between successive presentations. With VSync on, each interval is one
// refresh period plus scheduling noise; timing.DetectRate digs the period
// out of the noise.
func FlipIntervals(renderer *sdl.Renderer, n int, bg [3]uint8) []time.Duration {
	out := make([]time.Duration, 0, n-1)
	var last time.Time
	for i := 0; i < n; i++ {
		renderer.SetDrawColor(bg[0], bg[1], bg[2], 255)
		renderer.Clear()
		renderer.Present()
		now := time.Now()
		if i > 0 {
			out = append(out, now.Sub(last))
		}
		last = now
	}
	return out
}

// MeasureRefresh opens its own window, flips frames until a stable run of
// intervals appears and returns the rate it implies. Meant for the check
// tool; the presenter measures on the window it already has.
func MeasureRefresh(width, height, frames int) (float64, error) {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return 0, fmt.Errorf("SDL init: %w", err)
	}
	defer sdl.Quit()

	window, renderer, err := sdl.CreateWindowAndRenderer("RIFT rate check", width, height, 0)
	if err != nil {
		return 0, fmt.Errorf("create window: %w", err)
	}
	defer window.Destroy()
	defer renderer.Destroy()
	renderer.SetVSync(1)

	// Let the compositor settle before trusting any interval.
	FlipIntervals(renderer, 30, [3]uint8{0, 0, 0})
	intervals := FlipIntervals(renderer, frames, [3]uint8{0, 0, 0})

	rate, ok := timing.DetectRate(intervals, 10, 500*time.Microsecond)
	if !ok {
		return 0, fmt.Errorf("no stable run of frame intervals in %d flips", frames)
	}
	return rate, nil
}
