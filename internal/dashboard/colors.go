package dashboard

import (
	"fmt"
	"image/color"
	"math"
)

// Named colours used by the charts.
const (
	colorIndianRed  = "rgb(205, 92, 92)"
	colorRoyalBlue  = "rgb(65, 105, 225)"
	colorLightGray  = "rgba(211, 211, 211, 0.6)"
	colorRed        = "rgb(255, 0, 0)"
	colorTrendLine  = "rgb(99, 99, 99)"
	colorTrendPoint = "rgba(0, 0, 0, 0)"
)

// ColorScale is a sequential colour scale sampled by linear interpolation
// between evenly spaced stops.
type ColorScale []color.RGBA

// Reds runs from near-white to dark red.
var Reds = ColorScale{
	{255, 245, 240, 255}, {254, 224, 210, 255}, {252, 187, 161, 255},
	{252, 146, 114, 255}, {251, 106, 74, 255}, {239, 59, 44, 255},
	{203, 24, 29, 255}, {165, 15, 21, 255}, {103, 0, 13, 255},
}

// OrRd runs from pale orange to dark red.
var OrRd = ColorScale{
	{255, 247, 236, 255}, {254, 232, 200, 255}, {253, 212, 158, 255},
	{253, 187, 132, 255}, {252, 141, 89, 255}, {239, 101, 72, 255},
	{215, 48, 31, 255}, {179, 0, 0, 255}, {127, 0, 0, 255},
}

// At returns the colour at t, clamped to [0, 1].
func (s ColorScale) At(t float64) color.RGBA {
	if len(s) == 0 {
		return color.RGBA{A: 255}
	}
	if math.IsNaN(t) || t <= 0 {
		return s[0]
	}
	if t >= 1 {
		return s[len(s)-1]
	}
	pos := t * float64(len(s)-1)
	i := int(pos)
	frac := pos - float64(i)
	a, b := s[i], s[i+1]
	lerp := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*frac))
	}
	return color.RGBA{lerp(a.R, b.R), lerp(a.G, b.G), lerp(a.B, b.B), 255}
}

// Map colours each value relative to the min and max of values. When all
// values are equal they take the darkest colour.
func (s ColorScale) Map(values []float64) []string {
	out := make([]string, len(values))
	if len(values) == 0 {
		return out
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	for i, v := range values {
		t := 1.0
		if hi > lo {
			t = (v - lo) / (hi - lo)
		}
		out[i] = CSS(s.At(t))
	}
	return out
}

// CSS formats c as a CSS rgb() colour.
func CSS(c color.RGBA) string {
	return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
}
