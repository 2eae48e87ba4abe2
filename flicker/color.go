package flicker

// Color is an RGB triple with each channel in [-1, 1], the signed range
// psychophysics toolboxes use: -1 is the channel floor, 0 the mid gray a
// neutral background sits at, +1 the channel ceiling. Renderers map it to
// their own depth at draw time.
type Color [3]float64

// Opponent pairs average to the mid-gray background, which is what makes
// a fast flicker perceptually invisible.
var (
	Green   = Color{-1, 1, -1}
	Magenta = Color{1, -1, 1}
	Red     = Color{1, -1, -1}
	Cyan    = Color{-1, 1, 1}
	Blue    = Color{-1, -1, 1}
	Yellow  = Color{1, 1, -1}
	White   = Color{1, 1, 1}
	Black   = Color{-1, -1, -1}
	Gray    = Color{0, 0, 0}
)

// Scale multiplies every channel by m, dimming (m < 1) or boosting the
// color around the mid gray. Scaling both members of an opponent pair by
// the same m keeps their average on the background.
func (c Color) Scale(m float64) Color {
	for i := range c {
		c[i] *= m
	}
	return c
}

// Desaturate moves every channel toward gray by the given saturation
// level: 1 leaves the color alone, 0 collapses it to gray. Desaturating
// both members of an opponent pair toward the background gray keeps their
// average there.
func (c Color) Desaturate(saturation, gray float64) Color {
	for i := range c {
		c[i] = gray + (c[i]-gray)*saturation
	}
	return c
}

// Complement returns the opponent of c: every channel negated. The pair
// (c, c.Complement()) averages to mid gray by construction.
func (c Color) Complement() Color {
	for i := range c {
		c[i] = -c[i]
	}
	return c
}

// Midpoint is the channel-wise average of a and b.
func Midpoint(a, b Color) Color {
	var m Color
	for i := range m {
		m[i] = (a[i] + b[i]) / 2
	}
	return m
}

// Lerp interpolates from one color to another: t=0 gives from, t=1 gives
// to.
func Lerp(from, to Color, t float64) Color {
	var m Color
	for i := range m {
		m[i] = from[i]*(1-t) + to[i]*t
	}
	return m
}
