// Package layer ties the render core to map state. Each Controller owns
// one overlay's lifecycle through an explicit Start/Stop/Dispose
// contract and redraws from the latest weather sample and viewport. The
// Orchestrator composes controllers and forwards map events to them.
package layer

import (
	"math/rand"
	"sync"
	"time"

	"github.com/atmoview/atmoview/internal/geo"
	"github.com/atmoview/atmoview/internal/render"
	"github.com/atmoview/atmoview/internal/weather"
	"github.com/jonboulle/clockwork"
)

// Layer names exposed on the overlay endpoint.
const (
	LayerTemperature = "temperature"
	LayerClouds      = "clouds"
	LayerWind        = "wind"
	LayerRain        = "rain"
	LayerEffects     = "effects"
)

// Viewport is the visible map state a layer renders against.
type Viewport struct {
	Width  float64
	Height float64
	Zoom   float64
	Center geo.Point
}

// Controller owns one overlay. Start begins producing frames, Stop
// pauses without losing state, Dispose releases everything. Refresh
// rebuilds derived data (grids, particle fields) from a new sample or
// viewport; Frame paints one display list, or returns nil when the
// controller is stopped or has no sample yet.
type Controller interface {
	Name() string
	Start()
	Stop()
	Dispose()
	Refresh(sample *weather.Sample, vp Viewport)
	Frame(now time.Time) *render.DisplayList
}

// base carries the state every controller shares.
type base struct {
	mu      sync.Mutex
	name    string
	running bool
	sample  *weather.Sample
	vp      Viewport
	clock   clockwork.Clock
	rng     *rand.Rand
}

func newBase(name string, clock clockwork.Clock) base {
	return base{
		name:  name,
		clock: clock,
		rng:   rand.New(rand.NewSource(clock.Now().UnixNano())),
	}
}

func (b *base) Name() string { return b.name }

func (b *base) Start() {
	b.mu.Lock()
	b.running = true
	b.mu.Unlock()
}

func (b *base) Stop() {
	b.mu.Lock()
	b.running = false
	b.mu.Unlock()
}

// surface allocates the frame's display list and clears the region this
// layer owns. Each layer paints its own surface, never a shared one.
func (vp Viewport) surface() *render.DisplayList {
	dl := render.NewDisplayList(vp.Width, vp.Height)
	dl.Clear(0, 0, vp.Width, vp.Height)
	return dl
}

// seconds converts a wall-clock instant to the animation time base.
func seconds(now time.Time) float64 {
	return float64(now.UnixMilli()) / 1000
}

// Temperature paints the heatmap built from a procedural grid.
type Temperature struct {
	base
	grid render.Grid
}

func NewTemperature(clock clockwork.Clock) *Temperature {
	return &Temperature{base: newBase(LayerTemperature, clock)}
}

func (t *Temperature) Refresh(sample *weather.Sample, vp Viewport) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sample, t.vp = sample, vp
	t.grid = render.TemperatureGrid(sample, t.clock.Now().Hour(), t.rng)
}

func (t *Temperature) Frame(now time.Time) *render.DisplayList {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running || t.grid == nil {
		return nil
	}
	dl := t.vp.surface()
	render.DrawHeatmap(dl, t.grid)
	return dl
}

func (t *Temperature) Dispose() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.running = false
	t.grid, t.sample = nil, nil
}

// Clouds paints animated coverage blobs.
type Clouds struct {
	base
	grid     render.Grid
	overcast bool
}

func NewClouds(clock clockwork.Clock) *Clouds {
	return &Clouds{base: newBase(LayerClouds, clock)}
}

func (c *Clouds) Refresh(sample *weather.Sample, vp Viewport) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sample, c.vp = sample, vp
	c.grid = render.CoverageGrid(sample, c.clock.Now().Hour(), c.rng)
	c.overcast = sample.IsOvercast()
}

func (c *Clouds) Frame(now time.Time) *render.DisplayList {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running || c.grid == nil {
		return nil
	}
	dl := c.vp.surface()
	render.DrawClouds(dl, c.grid, c.overcast, seconds(now))
	return dl
}

func (c *Clouds) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
	c.grid, c.sample = nil, nil
}

// Wind advects the particle field one step per frame. The field is
// rebuilt, never reused, whenever the sample changes identity.
type Wind struct {
	base
	field *render.ParticleField
}

func NewWind(clock clockwork.Clock) *Wind {
	return &Wind{base: newBase(LayerWind, clock)}
}

func (w *Wind) Refresh(sample *weather.Sample, vp Viewport) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sample, w.vp = sample, vp
	w.field = render.NewParticleField(sample, vp.Width, vp.Height, vp.Zoom, w.rng)
}

func (w *Wind) Frame(now time.Time) *render.DisplayList {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running || w.field == nil || len(w.field.Particles) == 0 {
		return nil
	}
	w.field.Step()
	dl := w.vp.surface()
	render.DrawWindField(dl, w.field, w.vp.Zoom)
	return dl
}

func (w *Wind) Dispose() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.running = false
	w.field, w.sample = nil, nil
}

// Rain advances and paints the streak population.
type Rain struct {
	base
	drops []render.Raindrop
}

func NewRain(clock clockwork.Clock) *Rain {
	return &Rain{base: newBase(LayerRain, clock)}
}

func (r *Rain) Refresh(sample *weather.Sample, vp Viewport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sample, r.vp = sample, vp
	if sample == nil {
		r.drops = nil
		return
	}
	r.drops = render.NewRaindrops(vp.Width, vp.Height, r.rng)
}

func (r *Rain) Frame(now time.Time) *render.DisplayList {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running || len(r.drops) == 0 {
		return nil
	}
	render.StepRaindrops(r.drops, r.vp.Width, r.vp.Height, r.rng)
	dl := r.vp.surface()
	render.DrawRain(dl, r.drops)
	return dl
}

func (r *Rain) Dispose() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.running = false
	r.drops, r.sample = nil, nil
}

// Effects paints condition-driven ambience: lightning, snowfall, sun
// rays.
type Effects struct {
	base
}

func NewEffects(clock clockwork.Clock) *Effects {
	return &Effects{base: newBase(LayerEffects, clock)}
}

func (e *Effects) Refresh(sample *weather.Sample, vp Viewport) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sample, e.vp = sample, vp
}

func (e *Effects) Frame(now time.Time) *render.DisplayList {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running || e.sample == nil {
		return nil
	}
	dl := e.vp.surface()
	render.DrawWeatherEffects(dl, e.sample.ConditionMain, seconds(now))
	return dl
}

func (e *Effects) Dispose() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.running = false
	e.sample = nil
}
