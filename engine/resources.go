package engine

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/Zyko0/go-sdl3/sdl"
	"github.com/Zyko0/go-sdl3/ttf"
)

// DefaultFontPath finds a usable TTF font: anything in a local fonts/
// directory first, then the usual system locations.
func DefaultFontPath() string {
	entries, err := os.ReadDir("fonts")
	if err == nil {
		for _, entry := range entries {
			if !entry.IsDir() {
				ext := strings.ToLower(filepath.Ext(entry.Name()))
				if ext == ".ttf" || ext == ".ttc" {
					return filepath.Join("fonts", entry.Name())
				}
			}
		}
	}

	var paths []string
	switch runtime.GOOS {
	case "windows":
		paths = []string{"C:\\Windows\\Fonts\\arial.ttf"}
	case "darwin":
		paths = []string{"/System/Library/Fonts/Helvetica.ttc"}
	default:
		paths = []string{
			"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
			"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
		}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// drawText renders one line of text at (x, y) and releases the texture
// immediately. Only setup screens and the intro use it; nothing in the
// frame loop renders text.
func drawText(renderer *sdl.Renderer, font *ttf.Font, text string, x, y float32, color sdl.Color) {
	if font == nil || text == "" {
		return
	}
	surf, err := font.RenderTextBlended(text, color)
	if err != nil || surf == nil {
		return
	}
	defer surf.Destroy()
	tex, err := renderer.CreateTextureFromSurface(surf)
	if err != nil {
		return
	}
	defer tex.Destroy()
	dst := sdl.FRect{X: x, Y: y, W: float32(surf.W), H: float32(surf.H)}
	renderer.RenderTexture(tex, nil, &dst)
}
