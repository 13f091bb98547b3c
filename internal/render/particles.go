package render

import (
	"math"
	"math/rand"

	"github.com/atmoview/atmoview/internal/geo"
	"github.com/atmoview/atmoview/internal/weather"
)

// WrapMargin is the off-screen band, in pixels, a particle may drift
// into before wrapping to the opposite edge.
const WrapMargin = 50

// Particle is one wind tracer in screen space. Position mutates every
// tick; speed and angle are fixed at field construction.
type Particle struct {
	X, Y  float64
	Speed float64
	Angle float64
}

// ParticleCount scales the tracer population by zoom level: fewer
// particles when zoomed in, bounded to [100, 200].
func ParticleCount(zoom float64) int {
	n := 400 / math.Pow(2, zoom-8)
	return int(math.Min(200, math.Max(100, n)))
}

// ParticleField owns a set of wind tracers and the canvas bounds they
// wrap within.
type ParticleField struct {
	Width, Height float64
	Particles     []Particle
}

// NewParticleField seeds tracers across the canvas from the sample's
// wind vector. Speed and heading each get a small per-particle phase so
// the field does not move in lockstep. A nil sample yields an empty
// field.
func NewParticleField(sample *weather.Sample, width, height, zoom float64, rng *rand.Rand) *ParticleField {
	f := &ParticleField{Width: width, Height: height}
	if sample == nil {
		return f
	}
	baseSpeed := sample.WindSpeedMS * 0.05
	baseAngle := sample.WindDirectionDeg * math.Pi / 180

	count := ParticleCount(zoom)
	f.Particles = make([]Particle, count)
	for i := range f.Particles {
		f.Particles[i] = Particle{
			X:     rng.Float64() * width,
			Y:     rng.Float64() * height,
			Speed: baseSpeed * (0.75 + rng.Float64()*0.5),
			Angle: baseAngle + (rng.Float64()-0.5)*0.2,
		}
	}
	return f
}

// Step advances every tracer one tick. Particles wrap toroidally at the
// canvas edge plus WrapMargin; none are ever removed.
func (f *ParticleField) Step() {
	for i := range f.Particles {
		p := &f.Particles[i]
		p.X += math.Cos(p.Angle) * p.Speed
		p.Y += math.Sin(p.Angle) * p.Speed

		if p.X > f.Width+WrapMargin {
			p.X = -WrapMargin
		} else if p.X < -WrapMargin {
			p.X = f.Width + WrapMargin
		}
		if p.Y > f.Height+WrapMargin {
			p.Y = -WrapMargin
		} else if p.Y < -WrapMargin {
			p.Y = f.Height + WrapMargin
		}
	}
}

// Raindrop is one falling streak. Position is carried in the caller's
// animation loop; a drop leaving the bottom resets just above the top.
type Raindrop struct {
	X, Y  float64
	Speed float64
	Size  float64
}

// RaindropCount is the fixed precipitation streak population.
const RaindropCount = 100

// NewRaindrops seeds the streak population across the canvas.
func NewRaindrops(width, height float64, rng *rand.Rand) []Raindrop {
	drops := make([]Raindrop, RaindropCount)
	for i := range drops {
		drops[i] = Raindrop{
			X:     rng.Float64() * width,
			Y:     rng.Float64() * height,
			Speed: 15 + rng.Float64()*10,
			Size:  1 + rng.Float64()*2,
		}
	}
	return drops
}

// StepRaindrops advances every drop one tick, resetting drops that fall
// past the bottom edge to just above the top at a fresh column.
func StepRaindrops(drops []Raindrop, width, height float64, rng *rand.Rand) {
	for i := range drops {
		d := &drops[i]
		d.Y += d.Speed
		if d.Y > height {
			d.Y = -5
			d.X = rng.Float64() * width
		}
	}
}

// ArrowScale derives the wind-arrow size factor from map zoom.
func ArrowScale(zoom float64) float64 {
	return geo.Clamp(zoom/10, 0.6, 1.2)
}
