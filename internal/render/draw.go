package render

import (
	"fmt"
	"math"

	"github.com/atmoview/atmoview/internal/geo"
	"github.com/atmoview/atmoview/internal/weather"
)

// Draw functions are stateless: they take a Surface plus prepared data
// (a grid or particle set) and paint one frame. All of them tolerate
// empty or degenerate input by skipping instead of dividing by zero.

// DrawHeatmap fills one colored cell per grid entry using the
// temperature ramp.
func DrawHeatmap(s Surface, g Grid) {
	n := g.Size()
	if n == 0 {
		return
	}
	w, h := s.Size()
	cellW, cellH := w/float64(n), h/float64(n)

	for i, row := range g {
		for j, temp := range row {
			s.FillRect(float64(j)*cellW, float64(i)*cellH, cellW, cellH, TemperatureColor(temp))
		}
	}
}

// DrawClouds paints one soft blob per grid cell whose coverage exceeds
// 10%. Blob radius grows with coverage, opacity is coverage-scaled, and
// the optional time parameter drifts each blob on a per-cell sinusoid.
// Overcast cover animates slower, draws larger blobs, and merges heavy
// cells with a second offset circle.
func DrawClouds(s Surface, g Grid, overcast bool, t float64) {
	n := g.Size()
	if n == 0 {
		return
	}
	w, h := s.Size()
	cellW, cellH := w/float64(n), h/float64(n)
	cell := math.Min(cellW, cellH)

	baseRadius, baseOpacity, speed := 0.5, 0.7, 0.2
	if overcast {
		baseRadius, baseOpacity, speed = 0.7, 0.9, 0.1
	}

	for i, row := range g {
		for j, coverage := range row {
			if coverage <= 10 {
				continue
			}
			offsetX := math.Sin(t*speed+float64(i)) * 0.2 * cell
			offsetY := math.Cos(t*speed+float64(j)) * 0.2 * cell

			x := (float64(j)+0.5)*cellW + offsetX
			y := (float64(i)+0.5)*cellH + offsetY
			radius := cell * (baseRadius + coverage/200)
			fill := RGBA(255, 255, 255, (coverage/100)*baseOpacity)

			s.FillCircle(x, y, radius, fill)
			if overcast && coverage > 60 {
				s.FillCircle(x-0.5*radius, y, radius, fill)
			}
		}
	}
}

// DrawWindArrow draws one tracer as a line along its heading with a
// two-stroke arrowhead. Length is bounded to [10, 20] pixels before
// scaling.
func DrawWindArrow(s Surface, p Particle, scale float64, stroke Color) {
	length := geo.Clamp(p.Speed*5, 10, 20) * scale
	endX := p.X + math.Cos(p.Angle)*length
	endY := p.Y + math.Sin(p.Angle)*length

	width := 1.5 * scale
	s.StrokeLine(p.X, p.Y, endX, endY, stroke, width)

	headLen := 5 * scale
	for _, spread := range []float64{-0.4, 0.4} {
		back := p.Angle + math.Pi + spread
		s.StrokeLine(endX, endY,
			endX+math.Cos(back)*headLen,
			endY+math.Sin(back)*headLen,
			stroke, width)
	}
}

// DrawWindField paints every tracer in the field. Arrow alpha and size
// both derive from the map zoom.
func DrawWindField(s Surface, f *ParticleField, zoom float64) {
	if f == nil || len(f.Particles) == 0 {
		return
	}
	scale := ArrowScale(zoom)
	stroke := RGBA(255, 255, 255, geo.Clamp(zoom/12, 0.5, 0.9))
	for _, p := range f.Particles {
		DrawWindArrow(s, p, scale, stroke)
	}
}

// DrawRain paints each drop as a narrow vertical streak, size·8 long,
// fading in from 0.1 alpha at the head to 0.8 at the tail.
func DrawRain(s Surface, drops []Raindrop) {
	for _, d := range drops {
		streak := d.Size * 8
		s.FillPolygon([]Point{
			{X: d.X, Y: d.Y},
			{X: d.X + d.Size, Y: d.Y},
			{X: d.X + d.Size, Y: d.Y + streak},
			{X: d.X, Y: d.Y + streak},
		}, RGBA(174, 194, 224, 0.1), RGBA(174, 194, 224, 0.8))
	}
}

// Elevation profile palette.
var (
	profileTop    = RGBA(139, 69, 19, 0.8)
	profileBottom = RGBA(34, 197, 94, 0.6)
	profileStroke = RGBA(101, 67, 33, 1)
	labelColor    = RGBA(255, 255, 255, 0.9)
	contourColor  = RGBA(255, 255, 255, 0.25)
)

// contourGuides is the number of dashed horizontal guides, independent
// of the label count.
const contourGuides = 5

// DrawElevationProfile paints a filled terrain silhouette: a polyline
// through the samples normalized into the top 80% of the surface, a
// brown-to-green gradient fill underneath, value labels at fixed height
// fractions, and evenly spaced dashed contour guides. Empty profiles are
// skipped; flat ones draw as a straight line at mid-band.
func DrawElevationProfile(s Surface, elevations []float64, min, max float64) {
	if len(elevations) == 0 {
		return
	}
	w, h := s.Size()
	band := 0.8 * h
	span := max - min

	yFor := func(e float64) float64 {
		if span == 0 {
			return h - band/2
		}
		return h - ((e-min)/span)*band
	}

	points := make([]Point, len(elevations))
	step := w
	if len(elevations) > 1 {
		step = w / float64(len(elevations)-1)
	}
	for i, e := range elevations {
		points[i] = Point{X: float64(i) * step, Y: yFor(e)}
	}

	polygon := append(append([]Point{}, points...), Point{X: w, Y: h}, Point{X: 0, Y: h})
	s.FillPolygon(polygon, profileTop, profileBottom)
	s.StrokePath(points, profileStroke, 2, nil)

	for _, frac := range []float64{0, 0.25, 0.5, 0.75, 1} {
		value := min + frac*span
		s.Text(4, h-frac*band, fmt.Sprintf("%.0f m", value), labelColor, 10)
	}

	for i := 1; i <= contourGuides; i++ {
		y := h - (float64(i)/(contourGuides+1))*band
		s.StrokePath([]Point{{X: 0, Y: y}, {X: w, Y: y}}, contourColor, 1, []float64{4, 4})
	}
}

// DrawLightning flashes a jagged bolt for a short window of each cycle.
// The bolt path is a deterministic function of elapsed time so repeated
// frames at the same instant are identical.
func DrawLightning(s Surface, t float64) {
	const cycle = 3.0
	if math.Mod(t, cycle) > 0.15 {
		return
	}
	w, h := s.Size()
	x := w*0.3 + math.Sin(t*0.7)*w*0.2

	const segments = 6
	points := make([]Point, 0, segments+1)
	points = append(points, Point{X: x, Y: 0})
	for i := 1; i <= segments; i++ {
		jitter := math.Sin(t*13.7+float64(i)*4.1) * w * 0.04
		points = append(points, Point{
			X: x + jitter,
			Y: float64(i) / segments * h * 0.7,
		})
	}
	s.StrokePath(points, RGBA(255, 255, 200, 0.9), 2.5, nil)
}

// DrawSnowfall scatters drifting flakes whose positions are parametric
// in elapsed time; no per-flake state is kept.
func DrawSnowfall(s Surface, t float64) {
	w, h := s.Size()
	if w == 0 || h == 0 {
		return
	}
	const flakes = 60
	for i := 0; i < flakes; i++ {
		phase := float64(i) * 37.7
		speed := 20 + math.Mod(phase, 15)
		x := math.Mod(phase*7.3+math.Sin(t+phase)*15, w)
		if x < 0 {
			x += w
		}
		y := math.Mod(t*speed+phase*11, h)
		radius := 1 + math.Mod(phase, 2)
		s.FillCircle(x, y, radius, RGBA(255, 255, 255, 0.8))
	}
}

// DrawSunRays paints a slowly rotating sun in the upper-right corner.
func DrawSunRays(s Surface, t float64) {
	w, h := s.Size()
	cx, cy := w*0.8, h*0.2
	radius := math.Min(w, h) * 0.06

	s.FillCircle(cx, cy, radius, RGBA(255, 220, 100, 0.8))

	const rays = 12
	for i := 0; i < rays; i++ {
		angle := t*0.2 + float64(i)*(2*math.Pi/rays)
		s.StrokeLine(
			cx+math.Cos(angle)*radius*1.4,
			cy+math.Sin(angle)*radius*1.4,
			cx+math.Cos(angle)*radius*2.2,
			cy+math.Sin(angle)*radius*2.2,
			RGBA(255, 220, 100, 0.5), 2)
	}
}

// DrawWeatherEffects dispatches the condition-driven ambient effects.
// Rain and drizzle are handled by the precipitation layer, not here.
func DrawWeatherEffects(s Surface, conditionMain string, t float64) {
	switch conditionMain {
	case weather.ConditionThunderstorm:
		DrawLightning(s, t)
	case weather.ConditionSnow:
		DrawSnowfall(s, t)
	case weather.ConditionClear:
		DrawSunRays(s, t)
	}
}
