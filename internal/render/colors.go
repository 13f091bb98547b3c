package render

// Temperature ramp breakpoints in °C and their anchor colors. Within a
// band channels interpolate linearly; beyond the extremes the ramp
// saturates to the end colors.
var (
	rampStops = []float64{-10, 0, 15, 30}
	rampColors = []Color{
		{R: 68, G: 140, B: 255},
		{R: 155, G: 255, B: 255},
		{R: 255, G: 155, B: 0},
		{R: 255, G: 55, B: 0},
	}
)

// heatmapAlpha is the fill opacity used for heatmap cells.
const heatmapAlpha = 0.6

// TemperatureColor maps a temperature in °C onto the piecewise ramp.
func TemperatureColor(tempC float64) Color {
	if tempC <= rampStops[0] {
		c := rampColors[0]
		c.A = heatmapAlpha
		return c
	}
	for i := 1; i < len(rampStops); i++ {
		if tempC <= rampStops[i] {
			t := (tempC - rampStops[i-1]) / (rampStops[i] - rampStops[i-1])
			c := lerpColor(rampColors[i-1], rampColors[i], t)
			c.A = heatmapAlpha
			return c
		}
	}
	c := rampColors[len(rampColors)-1]
	c.A = heatmapAlpha
	return c
}

func lerpColor(a, b Color, t float64) Color {
	return Color{
		R: uint8(float64(a.R) + (float64(b.R)-float64(a.R))*t),
		G: uint8(float64(a.G) + (float64(b.G)-float64(a.G))*t),
		B: uint8(float64(a.B) + (float64(b.B)-float64(a.B))*t),
	}
}
