package engine

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/Zyko0/go-sdl3/img"
	"github.com/Zyko0/go-sdl3/sdl"
	"github.com/Zyko0/go-sdl3/ttf"
)

// EventLogEntry ties an event to the frame counter that scheduled it and
// the wall-clock moment it was recorded, in seconds from trial start.
type EventLogEntry struct {
	Frame int64
	TimeS float64
	Type  string
	Label string
}

type EventLog struct {
	Entries []EventLogEntry
}

func (l *EventLog) Log(frame int64, t float64, etype, label string) {
	l.Entries = append(l.Entries, EventLogEntry{
		Frame: frame,
		TimeS: t,
		Type:  etype,
		Label: label,
	})
}

func (l *EventLog) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	w.Write([]string{"frame", "time_s", "type", "label"})
	for _, e := range l.Entries {
		w.Write([]string{
			strconv.FormatInt(e.Frame, 10),
			strconv.FormatFloat(e.TimeS, 'f', 6, 64),
			e.Type,
			e.Label,
		})
	}
	return w.Error()
}

// DisplayIntro shows the splash image, or the instruction text when no
// image is configured, and waits for a key. Returns false when the
// window is closed instead.
func DisplayIntro(renderer *sdl.Renderer, font *ttf.Font, cfg *Config) bool {
	var tex *sdl.Texture
	var tw, th float32

	if cfg.Splash != "" {
		t, err := img.LoadTexture(renderer, cfg.Splash)
		if err != nil {
			fmt.Printf("Failed to load splash: %s (%v)\n", cfg.Splash, err)
		} else {
			tex = t
			tw, th, _ = t.Size()
		}
	}
	if tex == nil && cfg.Instructions != "" && font != nil {
		surf, err := font.RenderTextBlended(cfg.Instructions, sdl.Color{R: 255, G: 255, B: 255, A: 255})
		if err == nil && surf != nil {
			t, err := renderer.CreateTextureFromSurface(surf)
			if err == nil {
				tex = t
				tw = float32(surf.W)
				th = float32(surf.H)
			}
			surf.Destroy()
		}
	}
	if tex == nil {
		return true
	}
	defer tex.Destroy()

	bg := colorBytes(cfg.Background, cfg.Background, cfg.Background)
	renderer.SetDrawColor(bg[0], bg[1], bg[2], 255)
	renderer.Clear()
	dst := sdl.FRect{
		X: (float32(cfg.ScreenWidth) - tw) / 2,
		Y: (float32(cfg.ScreenHeight) - th) / 2,
		W: tw,
		H: th,
	}
	renderer.RenderTexture(tex, nil, &dst)
	renderer.Present()

	for {
		var event sdl.Event
		if err := sdl.WaitEvent(&event); err != nil {
			return true
		}
		if event.Type == sdl.EVENT_QUIT {
			return false
		}
		if event.Type == sdl.EVENT_KEY_DOWN {
			return true
		}
	}
}

const crossSize = 10

func drawFixationCross(renderer *sdl.Renderer, w, h int) {
	renderer.SetDrawColor(255, 255, 255, 255)
	mx, my := float32(w)/2, float32(h)/2
	renderer.RenderLine(mx-crossSize, my, mx+crossSize, my)
	renderer.RenderLine(mx, my-crossSize, mx, my+crossSize)
}

// colorBytes maps signed channels in [-1,1] to display bytes. The map is
// affine, so the midpoint of an opponent pair lands exactly on the
// background byte.
func colorBytes(r, g, b float64) [3]uint8 {
	conv := func(c float64) uint8 {
		if c < -1 {
			c = -1
		} else if c > 1 {
			c = 1
		}
		return uint8((c + 1) / 2 * 255)
	}
	return [3]uint8{conv(r), conv(g), conv(b)}
}
