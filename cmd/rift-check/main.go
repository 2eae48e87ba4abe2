// rift-check answers the question every session starts with: can this
// display show that flicker? Given a refresh rate and target frequencies
// it reports whether each schedule is exact or adaptive, what frequency
// it actually delivers and which nearby frequencies divide the display
// evenly. With -measure it also flips real frames and reports the rate
// the display delivers in practice.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"strconv"

	"github.com/Zyko0/go-sdl3/bin/binsdl"

	"github.com/ChristosDalamarinis/RIFT/engine"
	"github.com/ChristosDalamarinis/RIFT/flicker"
	"github.com/ChristosDalamarinis/RIFT/timing"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	refresh := flag.Float64("refresh", 60, "Display refresh rate in Hz")
	measure := flag.Bool("measure", false, "Open a window and measure the real rate")
	frames := flag.Int("frames", 240, "Frames to flip when measuring")
	flag.Parse()

	if flag.NArg() == 0 && !*measure {
		fmt.Println("usage: rift-check [-refresh HZ] [-measure] FREQUENCY...")
		os.Exit(2)
	}

	rate := *refresh
	if *measure {
		defer binsdl.Load().Unload()
		measured, err := engine.MeasureRefresh(800, 600, *frames)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Measured refresh rate: %.2f Hz\n", measured)
		if timing.RateMismatch(*refresh, measured, 0.02) {
			fmt.Printf("WARNING: configured %g Hz but the display delivers %.2f Hz\n", *refresh, measured)
		}
	}

	bad := false
	for _, arg := range flag.Args() {
		freq, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			fmt.Printf("\n%q is not a frequency\n", arg)
			bad = true
			continue
		}

		fmt.Printf("\n%g Hz on a %g Hz display:\n", freq, rate)
		check := flicker.Validate(rate, freq)
		if !check.Valid {
			fmt.Printf("  INVALID: %s\n", check.Message)
			bad = true
			continue
		}
		p, _ := flicker.New(flicker.Spec{RefreshRate: rate, Frequency: freq})
		fmt.Println(p.Info())
		if !check.Exact {
			var near []string
			for _, f := range flicker.NearestExact(rate, freq) {
				near = append(near, fmt.Sprintf("%.4g Hz", f))
			}
			fmt.Printf("  Nearest exact: %v\n", near)
		}
	}
	if bad {
		os.Exit(1)
	}
}
