package render

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atmoview/atmoview/internal/weather"
)

func TestParticleCountBounds(t *testing.T) {
	assert.Equal(t, 200, ParticleCount(8))  // 400/1 capped at 200
	assert.Equal(t, 200, ParticleCount(9))  // 400/2 capped at 200
	assert.Equal(t, 100, ParticleCount(10)) // 400/4 floored at 100
	assert.Equal(t, 100, ParticleCount(14)) // deep zoom still floored
	assert.Equal(t, 200, ParticleCount(3))  // zoomed out capped
}

func TestNewParticleFieldNilSample(t *testing.T) {
	f := NewParticleField(nil, 800, 600, 10, rand.New(rand.NewSource(1)))
	assert.Empty(t, f.Particles)
}

func TestParticleWrapNeverRemoves(t *testing.T) {
	sample := &weather.Sample{WindSpeedMS: 12, WindDirectionDeg: 0}
	f := NewParticleField(sample, 800, 600, 10, rand.New(rand.NewSource(1)))
	require.NotEmpty(t, f.Particles)
	before := len(f.Particles)

	// Push one particle past the right edge; a step must wrap it to the
	// left margin, not drop it.
	f.Particles[0].X = f.Width + WrapMargin + 1
	f.Particles[0].Angle = 0
	f.Step()

	assert.Len(t, f.Particles, before)
	assert.Equal(t, float64(-WrapMargin), f.Particles[0].X)
}

func TestParticleWrapAllEdges(t *testing.T) {
	sample := &weather.Sample{WindSpeedMS: 10, WindDirectionDeg: 90}
	f := NewParticleField(sample, 100, 100, 10, rand.New(rand.NewSource(2)))
	require.NotEmpty(t, f.Particles)

	f.Particles[0].Y = f.Height + WrapMargin + 1
	f.Step()
	assert.Less(t, f.Particles[0].Y, f.Height)

	f.Particles[0].Y = -WrapMargin - 1
	f.Particles[0].Speed = 0
	f.Step()
	assert.Equal(t, f.Height+WrapMargin, f.Particles[0].Y)
}

func TestRaindropsResetAtBottom(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	drops := NewRaindrops(400, 300, rng)
	require.Len(t, drops, RaindropCount)

	for _, d := range drops {
		assert.GreaterOrEqual(t, d.Speed, 15.0)
		assert.LessOrEqual(t, d.Speed, 25.0)
		assert.GreaterOrEqual(t, d.Size, 1.0)
		assert.LessOrEqual(t, d.Size, 3.0)
	}

	drops[0].Y = 301
	StepRaindrops(drops, 400, 300, rng)
	assert.Equal(t, -5.0, drops[0].Y)
	assert.Len(t, drops, RaindropCount)
}

func TestArrowScale(t *testing.T) {
	assert.Equal(t, 0.6, ArrowScale(3))
	assert.Equal(t, 1.0, ArrowScale(10))
	assert.Equal(t, 1.2, ArrowScale(18))
}
