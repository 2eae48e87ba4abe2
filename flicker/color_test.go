package flicker

import (
	"math"
	"testing"
)

var opponentPairs = []struct {
	name string
	a, b Color
}{
	{"green/magenta", Green, Magenta},
	{"red/cyan", Red, Cyan},
	{"blue/yellow", Blue, Yellow},
	{"white/black", White, Black},
}

func TestOpponentPairsAverageToGray(t *testing.T) {
	for _, p := range opponentPairs {
		if got := Midpoint(p.a, p.b); got != Gray {
			t.Errorf("%s: midpoint = %v, want mid gray", p.name, got)
		}
		if got := p.a.Complement(); got != p.b {
			t.Errorf("%s: complement = %v, want %v", p.name, got, p.b)
		}
	}
}

// Dimming or desaturating both members of a pair must not move their
// average off the background, or the flicker stops cancelling.
func TestScalingPreservesMidpoint(t *testing.T) {
	for _, p := range opponentPairs {
		a := p.a.Scale(0.9)
		b := p.b.Scale(0.9)
		if got := Midpoint(a, b); got != Gray {
			t.Errorf("%s scaled: midpoint = %v, want mid gray", p.name, got)
		}
	}
}

func TestDesaturationPreservesMidpoint(t *testing.T) {
	const bg = 0.0
	for _, p := range opponentPairs {
		a := p.a.Desaturate(0.7, bg)
		b := p.b.Desaturate(0.7, bg)
		got := Midpoint(a, b)
		for i := range got {
			if math.Abs(got[i]-bg) > 1e-12 {
				t.Errorf("%s desaturated: midpoint = %v, want background", p.name, got)
				break
			}
		}
	}
}

func TestDesaturateLevels(t *testing.T) {
	c := Color{0.8, -0.4, 0.2}
	if got := c.Desaturate(1, 0); got != c {
		t.Errorf("saturation 1 changed the color: %v", got)
	}
	if got := c.Desaturate(0, 0); got != Gray {
		t.Errorf("saturation 0 = %v, want gray", got)
	}
	if got := c.Desaturate(0, 0.25); got != (Color{0.25, 0.25, 0.25}) {
		t.Errorf("saturation 0 toward 0.25 = %v", got)
	}
}

func TestColorValueSemantics(t *testing.T) {
	c := Green
	_ = c.Scale(0.5)
	_ = c.Desaturate(0.5, 0)
	_ = c.Complement()
	if c != Green {
		t.Fatalf("operations mutated the receiver: %v", c)
	}
}

func TestLerp(t *testing.T) {
	if got := Lerp(Magenta, Green, 0); got != Magenta {
		t.Errorf("Lerp t=0 = %v, want from color", got)
	}
	if got := Lerp(Magenta, Green, 1); got != Green {
		t.Errorf("Lerp t=1 = %v, want to color", got)
	}
	if got := Lerp(Magenta, Green, 0.5); got != Gray {
		t.Errorf("Lerp t=0.5 = %v, want the pair midpoint", got)
	}
}
