package engine

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Zyko0/go-sdl3/sdl"
	"github.com/Zyko0/go-sdl3/ttf"

	"github.com/ChristosDalamarinis/RIFT/audio"
	"github.com/ChristosDalamarinis/RIFT/flicker"
	"github.com/ChristosDalamarinis/RIFT/timing"
)

// Run opens the window and presents one trial: the configured ring of
// stimuli around a fixation cross, each flickering stimulus driven by its
// frame schedule, until a key press or the configured duration. It saves
// the event log and prints the timing diagnostics afterwards. Every
// configuration error surfaces here before the first frame is scheduled.
func Run(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return fmt.Errorf("SDL init: %w", err)
	}
	defer sdl.Quit()
	if err := ttf.Init(); err != nil {
		return fmt.Errorf("TTF init: %w", err)
	}
	defer ttf.Quit()

	windowFlags := sdl.WINDOW_RESIZABLE
	if cfg.Fullscreen {
		windowFlags |= sdl.WINDOW_FULLSCREEN
	}
	window, renderer, err := sdl.CreateWindowAndRenderer("RIFT presenter", cfg.ScreenWidth, cfg.ScreenHeight, windowFlags)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	defer window.Destroy()
	defer renderer.Destroy()

	if cfg.VSync {
		renderer.SetVSync(1)
	} else {
		renderer.SetVSync(0)
	}

	// The schedule trusts this rate for the whole run. When it is not
	// configured, the display mode is authoritative.
	refresh := cfg.RefreshRate
	if refresh == 0 {
		display := sdl.GetDisplayForWindow(window)
		mode, err := display.CurrentDisplayMode()
		if err != nil || mode.RefreshRate <= 0 {
			return fmt.Errorf("refresh_rate not configured and display mode unavailable: %v", err)
		}
		refresh = float64(mode.RefreshRate)
		fmt.Printf("Display mode reports %.2f Hz\n", refresh)
	}
	if err := cfg.CheckFrequencies(refresh); err != nil {
		return err
	}
	budget := time.Duration(float64(time.Second) / refresh)

	if cfg.MeasureRate && cfg.VSync {
		intervals := FlipIntervals(renderer, 180, colorBytes(cfg.Background, cfg.Background, cfg.Background))
		if measured, ok := timing.DetectRate(intervals, 10, budget/20); ok {
			fmt.Printf("Measured refresh: %.2f Hz\n", measured)
			if timing.RateMismatch(refresh, measured, 0.02) {
				fmt.Printf("WARNING: display delivers %.2f Hz but schedules assume %g Hz\n", measured, refresh)
			}
		} else {
			fmt.Println("WARNING: could not find a stable run of frame intervals to measure the refresh rate")
		}
	}

	stimuli, err := BuildStimuli(cfg, refresh)
	if err != nil {
		return err
	}
	if err := CreateTextures(renderer, stimuli, cfg); err != nil {
		return err
	}
	defer DestroyTextures(stimuli)

	for _, st := range stimuli {
		if st.Flickers() {
			fmt.Printf("\nStimulus %q:\n%s\n", st.ID, st.Pattern.Info())
		}
	}

	var trig *Trigger
	if cfg.TriggerDevice != "" {
		trig, err = OpenTrigger(cfg.TriggerDevice, cfg.TriggerBaud)
		if err != nil {
			return err
		}
		defer trig.Close()
	}

	var font *ttf.Font
	if path := cfg.FontFile; path != "" || cfg.Instructions != "" {
		if path == "" {
			path = DefaultFontPath()
		}
		if path != "" {
			if font, err = ttf.OpenFont(path, float32(cfg.FontSize)); err != nil {
				fmt.Printf("Failed to load font %s: %v\n", path, err)
			}
		}
	}
	if font != nil {
		defer font.Close()
	}

	if !DisplayIntro(renderer, font, cfg) {
		return nil
	}

	var player *audio.Player
	if cfg.Audio.Enabled {
		wave, _ := flicker.ParseWaveform(cfg.Waveform)
		tone, err := audio.NewTone(cfg.Audio.Carrier, cfg.Audio.Tag, wave)
		if err != nil {
			return fmt.Errorf("audio tag: %w", err)
		}
		if player, err = audio.Play(tone, cfg.Audio.Volume); err != nil {
			return fmt.Errorf("audio: %w", err)
		}
		defer player.Stop()
	}

	log := &EventLog{}
	frameTimes, aborted := runTrial(cfg, stimuli, renderer, trig, log, refresh)

	report(stimuli, frameTimes, log, refresh, budget)

	timestamp := time.Now().Format("20060102-150405")
	outputName := strings.Replace(cfg.OutputFile, ".csv", "_"+timestamp+".csv", 1)
	if err := log.Save(outputName); err != nil {
		return fmt.Errorf("save event log: %w", err)
	}
	fmt.Printf("\nResults saved to %s\n", outputName)
	if aborted {
		fmt.Println("Trial aborted.")
	}
	return nil
}

// runTrial is the frame loop. One frame number, incremented once per
// Present, is the only state the schedules consume; everything else is
// bookkeeping around it.
func runTrial(cfg *Config, stimuli []*Stimulus, renderer *sdl.Renderer, trig *Trigger, log *EventLog, refresh float64) (frameTimes []time.Time, aborted bool) {
	poll := cfg.EffectivePoll(refresh)
	var totalFrames int64
	if cfg.TrialSeconds > 0 {
		totalFrames = int64(cfg.TrialSeconds * refresh)
	}

	frameCap := totalFrames + 1
	if frameCap <= 1 {
		frameCap = int64(60 * refresh)
	}
	frameTimes = make([]time.Time, 0, frameCap)

	bg := colorBytes(cfg.Background, cfg.Background, cfg.Background)
	start := time.Now()
	since := func() float64 { return time.Since(start).Seconds() }

	trig.Set(1) // trial gate
	defer trig.Clear(1)
	log.Log(0, since(), "TRIAL_START", "")

	// Response markers on line 2 are cleared by the frame counter a few
	// frames after they are set; sleeping for the pulse width here would
	// cost frames at high refresh rates.
	respPulse := pulseFrames(refresh, 5*time.Millisecond)
	clearResponseAt := int64(-1)

	var frame int64
	running := true
	for running {
		if poll == 1 || frame%int64(poll) == 0 {
			var ev sdl.Event
			for sdl.PollEvent(&ev) {
				switch ev.Type {
				case sdl.EVENT_QUIT:
					running = false
					aborted = true
				case sdl.EVENT_KEY_DOWN:
					switch key := ev.KeyboardEvent().Key; key {
					case sdl.K_ESCAPE:
						running = false
						aborted = true
					case sdl.K_SPACE:
						log.Log(frame, since(), "RESPONSE", "space")
						running = false
					default:
						log.Log(frame, since(), "RESPONSE", key.KeyName())
						trig.Set(2)
						clearResponseAt = frame + respPulse
					}
				}
			}
		}

		renderer.SetDrawColor(bg[0], bg[1], bg[2], 255)
		renderer.Clear()
		for _, st := range stimuli {
			drawStimulus(renderer, st, st.ColorAt(frame))
		}
		if cfg.Fixation {
			drawFixationCross(renderer, cfg.ScreenWidth, cfg.ScreenHeight)
		}
		renderer.Present()

		now := time.Now()
		frameTimes = append(frameTimes, now)

		// Record switches against the frame that scheduled them, after
		// the Present that made them visible.
		for _, st := range stimuli {
			if st.Pattern == nil || st.Pattern.Spec.Waveform != flicker.Square {
				continue
			}
			state := st.Pattern.StateAt(frame)
			if state == st.lastState && frame > 0 {
				continue
			}
			st.lastState = state
			st.switches = append(st.switches, now)
			log.Log(frame, now.Sub(start).Seconds(), "SWITCH", st.ID)
			if state {
				trig.Set(st.TriggerLine)
			} else {
				trig.Clear(st.TriggerLine)
			}
		}

		frame++
		if clearResponseAt >= 0 && frame >= clearResponseAt {
			trig.Clear(2)
			clearResponseAt = -1
		}
		if totalFrames > 0 && frame >= totalFrames {
			running = false
		}
	}

	if clearResponseAt >= 0 {
		trig.Clear(2)
	}
	log.Log(frame, since(), "TRIAL_END", "")
	return frameTimes, aborted
}

// drawStimulus tints the baked texture for shaped stimuli and draws line
// work directly: the orientation line inside a shape, or the bare line
// stimulus.
func drawStimulus(renderer *sdl.Renderer, st *Stimulus, c flicker.Color) {
	b := colorBytes(c[0], c[1], c[2])
	if st.tex != nil {
		st.tex.SetColorMod(b[0], b[1], b[2])
		dst := sdl.FRect{
			X: st.X - st.texW/2,
			Y: st.Y - st.texH/2,
			W: st.texW,
			H: st.texH,
		}
		renderer.RenderTexture(st.tex, nil, &dst)
	}

	if st.Shape == ShapeLine {
		renderer.SetDrawColor(b[0], b[1], b[2], 255)
		drawOrientedLine(renderer, st)
		return
	}
	if (st.Shape == ShapeCircle || st.Shape == ShapeDiamond) && st.Orientation != 0 {
		renderer.SetDrawColor(255, 255, 255, 255)
		drawOrientedLine(renderer, st)
	}
}

func drawOrientedLine(renderer *sdl.Renderer, st *Stimulus) {
	dx, dy := lineDelta(st.Orientation, float64(st.LineLength)/2)
	// widen by stepping perpendicular to the line
	px, py := lineDelta(st.Orientation+90, 1)
	for w := -st.LineWidth / 2; w <= st.LineWidth/2; w++ {
		ox := st.X + float32(px*float64(w))
		oy := st.Y + float32(py*float64(w))
		renderer.RenderLine(ox-float32(dx), oy-float32(dy), ox+float32(dx), oy+float32(dy))
	}
}

// report prints the post-run diagnostics block and emits the structured
// summary.
func report(stimuli []*Stimulus, frameTimes []time.Time, log *EventLog, refresh float64, budget time.Duration) {
	stats := timing.AnalyzeFrames(frameTimes, budget)
	stats.WriteReport(os.Stdout, refresh)

	for _, st := range stimuli {
		if !st.Flickers() {
			continue
		}
		sw := timing.AnalyzeSwitches(st.Switches())
		fmt.Printf("\n*** FLICKER VERIFICATION: %s ***\n", st.ID)
		fmt.Printf("  Target: %g Hz\n", st.Pattern.Spec.Frequency)
		fmt.Printf("  Scheduled: %.6f Hz\n", st.Pattern.Achieved)
		if sw.Count < 2 {
			fmt.Println("  Measured: too few switches recorded")
			continue
		}
		fmt.Printf("  Measured: %.4f Hz over %d switches\n", sw.Achieved, sw.Count)
		if sw.Matches(st.Pattern.Spec.Frequency, 0.5) {
			fmt.Println("  Match: YES")
		} else {
			fmt.Println("  Match: NO")
		}
		slog.Info("flicker verified",
			"stimulus", st.ID,
			"target_hz", st.Pattern.Spec.Frequency,
			"scheduled_hz", st.Pattern.Achieved,
			"measured_hz", sw.Achieved,
			"switches", sw.Count)
	}

	slog.Info("trial complete",
		"frames", stats.Count+1,
		"refresh_hz", refresh,
		"measured_hz", stats.ImpliedRate,
		"dropped", stats.Dropped,
		"verdict", stats.Verdict().String(),
		"events", len(log.Entries))
}
