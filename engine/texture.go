package engine

import (
	"fmt"
	"math"

	"github.com/Zyko0/go-sdl3/sdl"
)

// Stimulus artwork is baked once as a white shape with its edge profile
// in the alpha channel; the render loop tints it per frame with the
// texture color mod, so changing a stimulus color costs no pixel work.

const gratingCyclesPerPx = 0.05

func buildShapeSurface(shape Shape, sizePx int32, smooth, orientation float64) (*sdl.Surface, error) {
	surf, err := sdl.CreateSurface(int(sizePx), int(sizePx), sdl.PIXELFORMAT_RGBA32)
	if err != nil {
		return nil, fmt.Errorf("create %dpx surface: %w", sizePx, err)
	}

	px := surf.Pixels()
	n := float64(sizePx - 1)
	feather := 3.0 / float64(sizePx) // soften hard edges by about 1.5 px
	sin, cos := math.Sincos(orientation * math.Pi / 180)

	for y := int32(0); y < sizePx; y++ {
		v := 2*float64(y)/n - 1
		row := int(y) * int(surf.Pitch)
		for x := int32(0); x < sizePx; x++ {
			u := 2*float64(x)/n - 1
			d := math.Hypot(u, v)

			var alpha float64
			lum := 1.0
			switch shape {
			case ShapeCircle:
				alpha = edge(1-d, feather)
			case ShapeDiamond:
				alpha = edge(1-(math.Abs(u)+math.Abs(v)), feather)
			case ShapePatch:
				alpha = math.Exp(-smooth * d * d)
			case ShapeGrating:
				alpha = math.Exp(-smooth * d * d)
				// stripes perpendicular to the orientation
				t := u*cos + v*sin
				cycles := gratingCyclesPerPx * float64(sizePx)
				lum = 0.5 + 0.5*math.Cos(2*math.Pi*cycles*t/2)
			}

			i := row + int(x)*4
			b := byte(lum*255 + 0.5)
			px[i+0] = b
			px[i+1] = b
			px[i+2] = b
			px[i+3] = byte(alpha*255 + 0.5)
		}
	}
	return surf, nil
}

// edge maps a signed distance to coverage with a short linear feather.
func edge(inside, feather float64) float64 {
	switch {
	case inside <= 0:
		return 0
	case inside >= feather:
		return 1
	default:
		return inside / feather
	}
}

// CreateTextures bakes one texture per shaped stimulus. Line stimuli are
// drawn directly and get no texture.
func CreateTextures(renderer *sdl.Renderer, stimuli []*Stimulus, cfg *Config) error {
	for _, st := range stimuli {
		if st.Shape == ShapeLine {
			continue
		}
		sizePx := int32(2 * st.Size)
		if sizePx < 2 {
			return fmt.Errorf("stimulus %q: size %gpx too small to draw", st.ID, st.Size)
		}
		surf, err := buildShapeSurface(st.Shape, sizePx, cfg.Smoothness, st.Orientation)
		if err != nil {
			return fmt.Errorf("stimulus %q: %w", st.ID, err)
		}
		tex, err := renderer.CreateTextureFromSurface(surf)
		surf.Destroy()
		if err != nil {
			return fmt.Errorf("stimulus %q: create texture: %w", st.ID, err)
		}
		tex.SetBlendMode(sdl.BLENDMODE_BLEND)
		st.tex = tex
		st.texW = float32(sizePx)
		st.texH = float32(sizePx)
	}
	return nil
}

// DestroyTextures releases everything CreateTextures made.
func DestroyTextures(stimuli []*Stimulus) {
	for _, st := range stimuli {
		if st.tex != nil {
			st.tex.Destroy()
			st.tex = nil
		}
	}
}
