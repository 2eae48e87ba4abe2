// rift-preview crawls through the scheduled color states in a terminal,
// one row per flickering stimulus, at human speed. It answers "what will
// frame 1234 look like" without a lab display: each column is one frame,
// the leftmost being the current one, so the half-cycle pattern and the
// adaptive length variation are visible directly.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/ChristosDalamarinis/RIFT/engine"
	"github.com/ChristosDalamarinis/RIFT/flicker"
)

type row struct {
	id      string
	pattern *flicker.Pattern
	a, b    flicker.Color
}

func main() {
	configFile := flag.String("config", "", "YAML config file")
	refresh := flag.Float64("refresh", 0, "Override the refresh rate in Hz")
	fps := flag.Float64("fps", 8, "Playback speed in virtual frames per second")
	flag.Parse()

	cfg := engine.DefaultConfig()
	if *configFile != "" {
		loaded, err := engine.LoadConfig(*configFile)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	rate := cfg.RefreshRate
	if *refresh > 0 {
		rate = *refresh
	}
	if rate <= 0 {
		fmt.Println("Error: refresh rate unknown; pass -refresh")
		os.Exit(1)
	}
	if *fps <= 0 {
		fmt.Println("Error: -fps must be positive")
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	stimuli, err := engine.BuildStimuli(cfg, rate)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	var rows []row
	for _, st := range stimuli {
		if st.Flickers() {
			rows = append(rows, row{id: st.ID, pattern: st.Pattern, a: st.PairA, b: st.PairB})
		}
	}
	if len(rows) == 0 {
		fmt.Println("No flickering stimuli configured; nothing to preview.")
		return
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()

	events := make(chan tcell.Event)
	go func() {
		for {
			events <- screen.PollEvent()
		}
	}()

	var frame int64
	paused := false
	speed := *fps
	ticker := time.NewTicker(tick(speed))
	defer ticker.Stop()

	for {
		select {
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventResize:
				screen.Sync()
			case *tcell.EventKey:
				switch {
				case ev.Key() == tcell.KeyEscape || ev.Rune() == 'q':
					return
				case ev.Rune() == ' ':
					paused = !paused
				case ev.Rune() == '+' || ev.Rune() == '=':
					speed *= 2
					ticker.Reset(tick(speed))
				case ev.Rune() == '-':
					if speed > 0.5 {
						speed /= 2
						ticker.Reset(tick(speed))
					}
				case ev.Rune() == 'r':
					frame = 0
				}
			}
		case <-ticker.C:
			if !paused {
				frame++
			}
		}
		draw(screen, rows, frame, rate, speed, paused)
	}
}

func tick(fps float64) time.Duration {
	return time.Duration(float64(time.Second) / fps)
}

func draw(screen tcell.Screen, rows []row, frame int64, rate, speed float64, paused bool) {
	screen.Clear()
	w, _ := screen.Size()

	status := fmt.Sprintf("frame %d  %.4g Hz display  %gx speed  [space pause, +/- speed, r rewind, q quit]",
		frame, rate, speed)
	if paused {
		status = "PAUSED " + status
	}
	puts(screen, 0, 0, status, tcell.StyleDefault)

	for i, r := range rows {
		y := 2 + i*3
		label := fmt.Sprintf("%s  target %g Hz  achieved %.4f Hz", r.id, r.pattern.Spec.Frequency, r.pattern.Achieved)
		puts(screen, 0, y, label, tcell.StyleDefault.Bold(true))
		for x := 0; x < w; x++ {
			c := r.pattern.ColorAt(frame+int64(x), r.a, r.b)
			st := tcell.StyleDefault.Background(termColor(c))
			screen.SetContent(x, y+1, ' ', nil, st)
		}
	}
	screen.Show()
}

func puts(screen tcell.Screen, x, y int, s string, style tcell.Style) {
	for i, r := range s {
		screen.SetContent(x+i, y, r, nil, style)
	}
}

// termColor maps a [-1,1] channel color onto the terminal palette.
func termColor(c flicker.Color) tcell.Color {
	conv := func(v float64) int32 {
		if v < -1 {
			v = -1
		} else if v > 1 {
			v = 1
		}
		return int32((v + 1) / 2 * 255)
	}
	return tcell.NewRGBColor(conv(c[0]), conv(c[1]), conv(c[2]))
}
