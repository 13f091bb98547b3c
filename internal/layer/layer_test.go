package layer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/atmoview/atmoview/internal/weather"
)

type stubSource struct {
	sample *weather.Sample
	err    error
	calls  int
}

func (s *stubSource) Current(context.Context, float64, float64) (*weather.Sample, error) {
	s.calls++
	return s.sample, s.err
}

func testViewport() Viewport {
	return Viewport{Width: 400, Height: 300, Zoom: 10}
}

func testSample() *weather.Sample {
	coverage := 80.0
	return &weather.Sample{
		ConditionMain:    weather.ConditionClouds,
		ConditionDesc:    "overcast clouds",
		TemperatureC:     12,
		WindSpeedMS:      8,
		WindDirectionDeg: 180,
		CloudCoveragePct: &coverage,
	}
}

func newTestOrchestrator(source WeatherSource) *Orchestrator {
	clock := clockwork.NewFakeClock()
	o := NewOrchestrator(source, zap.NewNop().Sugar(), testViewport())
	o.Register(NewTemperature(clock))
	o.Register(NewClouds(clock))
	o.Register(NewWind(clock))
	o.Register(NewRain(clock))
	o.Register(NewEffects(clock))
	return o
}

func TestControllerFrameBeforeRefreshIsNil(t *testing.T) {
	c := NewTemperature(clockwork.NewFakeClock())
	c.Start()
	assert.Nil(t, c.Frame(time.Now()), "no sample yet means no frame")
}

func TestControllerStopSuspendsFrames(t *testing.T) {
	c := NewClouds(clockwork.NewFakeClock())
	c.Start()
	c.Refresh(testSample(), testViewport())
	require.NotNil(t, c.Frame(time.Now()))

	c.Stop()
	assert.Nil(t, c.Frame(time.Now()))

	// Re-show without another Refresh: state was kept.
	c.Start()
	assert.NotNil(t, c.Frame(time.Now()))
}

func TestControllerDisposeDropsState(t *testing.T) {
	c := NewWind(clockwork.NewFakeClock())
	c.Start()
	c.Refresh(testSample(), testViewport())
	require.NotNil(t, c.Frame(time.Now()))

	c.Dispose()
	c.Start()
	assert.Nil(t, c.Frame(time.Now()))
}

func TestWindRefreshRebuildsParticles(t *testing.T) {
	c := NewWind(clockwork.NewFakeClock())
	c.Start()
	c.Refresh(testSample(), testViewport())
	first := c.field.Particles[0]

	// A new sample must re-derive positions, not reuse the old field.
	c.Refresh(testSample(), testViewport())
	second := c.field.Particles[0]
	assert.NotEqual(t, first, second)
}

func TestOrchestratorSetCenterRefreshesLayers(t *testing.T) {
	source := &stubSource{sample: testSample()}
	o := newTestOrchestrator(source)

	require.NoError(t, o.SetCenter(context.Background(), 35.36, 138.72))
	assert.Equal(t, 1, source.calls)

	dl, err := o.Frame(LayerTemperature, time.Now())
	require.NoError(t, err)
	require.NotNil(t, dl)
	assert.NotEmpty(t, dl.Ops)
}

func TestOrchestratorAnimatingGuard(t *testing.T) {
	source := &stubSource{sample: testSample()}
	o := newTestOrchestrator(source)

	o.animating = true
	require.NoError(t, o.SetCenter(context.Background(), 1, 2))
	assert.Zero(t, source.calls, "moves during an animation must not recompute")

	o.animating = false
	require.NoError(t, o.FlyTo(context.Background(), 1, 2))
	assert.Equal(t, 1, source.calls, "fly-to recomputes exactly once at the destination")
}

func TestOrchestratorFetchFailureKeepsStaleSample(t *testing.T) {
	source := &stubSource{sample: testSample()}
	o := newTestOrchestrator(source)
	require.NoError(t, o.SetCenter(context.Background(), 1, 2))

	source.err = errors.New("provider down")
	err := o.SetCenter(context.Background(), 3, 4)
	assert.Error(t, err)

	dl, frameErr := o.Frame(LayerClouds, time.Now())
	require.NoError(t, frameErr)
	assert.NotNil(t, dl, "layers keep rendering the previous sample")
}

func TestOrchestratorSetVisible(t *testing.T) {
	source := &stubSource{sample: testSample()}
	o := newTestOrchestrator(source)
	require.NoError(t, o.SetCenter(context.Background(), 1, 2))

	require.NoError(t, o.SetVisible(LayerRain, false))
	dl, err := o.Frame(LayerRain, time.Now())
	require.NoError(t, err)
	assert.Nil(t, dl)

	assert.Error(t, o.SetVisible("radar", true))
}

func TestOrchestratorUnknownLayer(t *testing.T) {
	o := newTestOrchestrator(&stubSource{sample: testSample()})
	_, err := o.Frame("satellite", time.Now())
	assert.ErrorContains(t, err, "unknown layer")
}

func TestOrchestratorMarkers(t *testing.T) {
	o := newTestOrchestrator(&stubSource{sample: testSample()})

	o.AddMarker(Marker{Lat: 35.36, Lon: 138.72, Label: "Mount Fuji"})
	o.AddMarker(Marker{Lat: 27.17, Lon: 78.04, Label: "Taj Mahal"})
	require.Len(t, o.Markers(), 2)

	o.ClearMarkers()
	assert.Empty(t, o.Markers())
}

func TestOrchestratorTeardownDisposesAll(t *testing.T) {
	o := newTestOrchestrator(&stubSource{sample: testSample()})
	require.NoError(t, o.SetCenter(context.Background(), 1, 2))

	o.Teardown()
	_, err := o.Frame(LayerTemperature, time.Now())
	assert.Error(t, err)
}
