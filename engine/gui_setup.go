package engine

import (
	"fmt"

	"github.com/Zyko0/go-sdl3/sdl"
	"github.com/Zyko0/go-sdl3/ttf"
)

// RunSetup shows a small pre-run screen where the experimenter picks the
// resolution, waveform and run options before the presentation window
// opens. Returns false when the window is closed instead of started.
func RunSetup(cfg *Config) bool {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		fmt.Printf("SDL init: %v\n", err)
		return false
	}
	defer sdl.Quit()
	if err := ttf.Init(); err != nil {
		fmt.Printf("TTF init: %v\n", err)
		return false
	}
	defer ttf.Quit()

	window, renderer, err := sdl.CreateWindowAndRenderer("RIFT setup", 640, 620, 0)
	if err != nil {
		fmt.Printf("create window: %v\n", err)
		return false
	}
	defer window.Destroy()
	defer renderer.Destroy()

	fontPath := DefaultFontPath()
	if fontPath == "" {
		fmt.Println("No usable font found for the setup screen")
		return false
	}
	font, err := ttf.OpenFont(fontPath, 18)
	if err != nil {
		fmt.Printf("load font: %v\n", err)
		return false
	}
	defer font.Close()

	type resolution struct {
		W, H  int
		Label string
	}
	resolutions := []resolution{
		{800, 600, "800x600"},
		{1200, 900, "1200x900"},
		{1920, 1080, "1920x1080 (FHD)"},
		{2560, 1440, "2560x1440 (QHD)"},
	}
	selectedRes := 1
	for i, r := range resolutions {
		if cfg.ScreenWidth == r.W && cfg.ScreenHeight == r.H {
			selectedRes = i
			break
		}
	}

	// checkbox rows under the resolution list
	toggles := []struct {
		label string
		value *bool
	}{
		{"Fullscreen", &cfg.Fullscreen},
		{"Fixation cross", &cfg.Fixation},
		{"Strict (exact half-cycles only)", &cfg.Strict},
		{"Measure refresh rate first", &cfg.MeasureRate},
		{"Auditory tag", &cfg.Audio.Enabled},
	}

	const (
		left     = 40
		rowH     = 40
		resTop   = 70
		startY   = 540
		boxSize  = 20
		waveTopf = 330
	)
	toggleTop := waveTopf + rowH

	black := sdl.Color{R: 0, G: 0, B: 0, A: 255}
	white := sdl.Color{R: 255, G: 255, B: 255, A: 255}

	checkbox := func(y float32, checked bool, label string) {
		renderer.SetDrawColor(255, 255, 255, 255)
		box := sdl.FRect{X: left, Y: y, W: boxSize, H: boxSize}
		renderer.RenderFillRect(&box)
		renderer.SetDrawColor(0, 0, 0, 255)
		renderer.RenderRect(&box)
		if checked {
			renderer.SetDrawColor(0, 150, 0, 255)
			mark := sdl.FRect{X: left + 4, Y: y + 4, W: boxSize - 8, H: boxSize - 8}
			renderer.RenderFillRect(&mark)
		}
		drawText(renderer, font, label, left+boxSize+10, y, black)
	}
	hit := func(mx, my, y float32) bool {
		return mx >= left && mx <= left+260 && my >= y && my <= y+boxSize
	}

	for {
		var e sdl.Event
		for sdl.PollEvent(&e) {
			switch e.Type {
			case sdl.EVENT_QUIT:
				return false
			case sdl.EVENT_KEY_DOWN:
				if e.KeyboardEvent().Key == sdl.K_ESCAPE {
					return false
				}
			case sdl.EVENT_MOUSE_BUTTON_DOWN:
				me := e.MouseButtonEvent()
				mx, my := me.X, me.Y
				for i := range resolutions {
					if hit(mx, my, float32(resTop+i*rowH)) {
						selectedRes = i
					}
				}
				if hit(mx, my, waveTopf) {
					if cfg.Waveform == "sine" {
						cfg.Waveform = "square"
					} else {
						cfg.Waveform = "sine"
					}
				}
				for i := range toggles {
					if hit(mx, my, float32(toggleTop+i*rowH)) {
						*toggles[i].value = !*toggles[i].value
					}
				}
				if mx >= 260 && mx <= 380 && my >= startY && my <= startY+40 {
					cfg.ScreenWidth = resolutions[selectedRes].W
					cfg.ScreenHeight = resolutions[selectedRes].H
					return true
				}
			}
		}

		renderer.SetDrawColor(240, 240, 240, 255)
		renderer.Clear()

		drawText(renderer, font, "Resolution:", left, resTop-30, black)
		for i, r := range resolutions {
			checkbox(float32(resTop+i*rowH), selectedRes == i, r.Label)
		}

		checkbox(waveTopf, cfg.Waveform == "sine", "Sine wave (unchecked: square)")
		for i, t := range toggles {
			checkbox(float32(toggleTop+i*rowH), *t.value, t.label)
		}

		renderer.SetDrawColor(0, 150, 0, 255)
		startBtn := sdl.FRect{X: 260, Y: startY, W: 120, H: 40}
		renderer.RenderFillRect(&startBtn)
		drawText(renderer, font, "START", 295, startY+10, white)

		renderer.Present()
		sdl.Delay(10)
	}
}
