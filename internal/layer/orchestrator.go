package layer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/atmoview/atmoview/internal/geo"
	"github.com/atmoview/atmoview/internal/render"
	"github.com/atmoview/atmoview/internal/weather"
	"go.uber.org/zap"
)

// WeatherSource provides the current sample for a coordinate.
type WeatherSource interface {
	Current(ctx context.Context, lat, lon float64) (*weather.Sample, error)
}

// Marker is a pin the orchestrator holds for the map view.
type Marker struct {
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Label string  `json:"label"`
}

// Orchestrator owns the viewport, the current sample, and the set of
// layer controllers. Map events (center moves, zoom, visibility
// toggles) come through here and fan out to every registered layer.
type Orchestrator struct {
	mu sync.Mutex

	weather WeatherSource
	logger  *zap.SugaredLogger

	vp        Viewport
	sample    *weather.Sample
	layers    map[string]Controller
	order     []string
	markers   []Marker
	animating bool
}

// NewOrchestrator creates an Orchestrator with an initial viewport.
func NewOrchestrator(source WeatherSource, logger *zap.SugaredLogger, vp Viewport) *Orchestrator {
	return &Orchestrator{
		weather: source,
		logger:  logger,
		vp:      vp,
		layers:  make(map[string]Controller),
	}
}

// Register adds a controller and starts it.
func (o *Orchestrator) Register(c Controller) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.layers[c.Name()] = c
	o.order = append(o.order, c.Name())
	c.Start()
}

// Layers lists registered layer names in registration order.
func (o *Orchestrator) Layers() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.order...)
}

// SetCenter moves the viewport and refreshes every layer with fresh
// weather for the new center. Moves arriving while a fly-to animation
// is in progress are dropped; the animation's own final SetCenter does
// the recompute.
func (o *Orchestrator) SetCenter(ctx context.Context, lat, lon float64) error {
	o.mu.Lock()
	if o.animating {
		o.mu.Unlock()
		return nil
	}
	o.vp.Center = geo.Point{Lat: lat, Lon: lon}
	o.mu.Unlock()

	return o.refresh(ctx)
}

// FlyTo animates to a new center: intermediate moves are suppressed by
// the animating guard, then the destination is recomputed once.
func (o *Orchestrator) FlyTo(ctx context.Context, lat, lon float64) error {
	o.mu.Lock()
	o.animating = true
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.animating = false
		o.mu.Unlock()
	}()

	o.mu.Lock()
	o.vp.Center = geo.Point{Lat: lat, Lon: lon}
	o.mu.Unlock()

	return o.refresh(ctx)
}

// SetZoom updates the zoom level and rebuilds layer state, since
// particle counts and arrow scaling derive from it.
func (o *Orchestrator) SetZoom(zoom float64) {
	o.mu.Lock()
	o.vp.Zoom = zoom
	sample, vp := o.sample, o.vp
	layers := o.snapshotLocked()
	o.mu.Unlock()

	for _, c := range layers {
		c.Refresh(sample, vp)
	}
}

// SetVisible toggles one layer. Hidden layers stop producing frames but
// keep their state for a cheap re-show.
func (o *Orchestrator) SetVisible(name string, visible bool) error {
	o.mu.Lock()
	c, ok := o.layers[name]
	o.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown layer %q", name)
	}
	if visible {
		c.Start()
	} else {
		c.Stop()
	}
	return nil
}

// Frame renders one display list for the named layer, or nil when the
// layer is hidden or has no data yet.
func (o *Orchestrator) Frame(name string, now time.Time) (*render.DisplayList, error) {
	o.mu.Lock()
	c, ok := o.layers[name]
	o.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("unknown layer %q", name)
	}
	return c.Frame(now), nil
}

// AddMarker pins a labeled location.
func (o *Orchestrator) AddMarker(m Marker) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.markers = append(o.markers, m)
}

// Markers returns a copy of the current pins.
func (o *Orchestrator) Markers() []Marker {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Marker(nil), o.markers...)
}

// ClearMarkers removes all pins.
func (o *Orchestrator) ClearMarkers() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.markers = nil
}

// Viewport returns the current viewport.
func (o *Orchestrator) Viewport() Viewport {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.vp
}

// Sample returns the most recent weather sample, which may be nil
// before the first successful refresh.
func (o *Orchestrator) Sample() *weather.Sample {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sample
}

// Teardown disposes every layer. The orchestrator is unusable after.
func (o *Orchestrator) Teardown() {
	o.mu.Lock()
	layers := o.snapshotLocked()
	o.layers = make(map[string]Controller)
	o.order = nil
	o.mu.Unlock()

	for _, c := range layers {
		c.Dispose()
	}
}

// refresh fetches weather for the current center and fans it out. On
// fetch failure layers keep their previous sample so the view never
// blanks out on a transient provider issue.
func (o *Orchestrator) refresh(ctx context.Context) error {
	o.mu.Lock()
	center := o.vp.Center
	o.mu.Unlock()

	sample, err := o.weather.Current(ctx, center.Lat, center.Lon)
	if err != nil {
		o.logger.Warnw("weather refresh failed, layers keep stale sample",
			"lat", center.Lat, "lon", center.Lon, "error", err)
		return err
	}

	o.mu.Lock()
	o.sample = sample
	vp := o.vp
	layers := o.snapshotLocked()
	o.mu.Unlock()

	for _, c := range layers {
		c.Refresh(sample, vp)
	}
	return nil
}

func (o *Orchestrator) snapshotLocked() []Controller {
	out := make([]Controller, 0, len(o.order))
	for _, name := range o.order {
		out = append(out, o.layers[name])
	}
	return out
}
