// Package scheduler runs the periodic warmup job: refreshing weather
// and elevation data for the featured locations so the map view has
// warm caches, and sweeping expired cache entries.
package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/atmoview/atmoview/internal/cache"
	"github.com/atmoview/atmoview/internal/elevation"
	"github.com/atmoview/atmoview/internal/observability"
	"github.com/atmoview/atmoview/internal/weather"
)

// Scheduler periodically warms featured locations and sweeps the cache.
type Scheduler struct {
	scheduler *gocron.Scheduler
	weather   *weather.Service
	elevation *elevation.Service
	sweeper   cache.Sweeper // nil when the backend sweeps itself
	interval  time.Duration
	logger    *zap.SugaredLogger
}

// New creates a Scheduler. sweeper may be nil for backends with native
// expiry (Redis).
func New(ws *weather.Service, es *elevation.Service, sweeper cache.Sweeper, interval time.Duration, logger *zap.SugaredLogger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		weather:   ws,
		elevation: es,
		sweeper:   sweeper,
		interval:  interval,
		logger:    logger,
	}
}

// Start schedules the warmup job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 15
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(s.run)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

// run refreshes every featured location in parallel, bounded to avoid
// hammering the providers, then sweeps expired cache entries.
func (s *Scheduler) run() {
	s.logger.Infow("warmup: refreshing featured locations", "count", len(weather.FeaturedLocations))

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for _, loc := range weather.FeaturedLocations {
		loc := loc
		g.Go(func() error {
			if _, err := s.weather.Current(gctx, loc.Lat, loc.Lon); err != nil {
				s.logger.Warnw("warmup: weather refresh failed",
					"location", loc.Name, "error", err)
			}
			// Profile degrades internally; this call only warms the cache.
			s.elevation.Profile(gctx, loc.Lat, loc.Lon)
			return nil
		})
	}
	g.Wait() //nolint:errcheck

	if s.sweeper != nil {
		s.sweeper.Sweep()
	}

	observability.WarmupRunsTotal.Inc()
	s.logger.Infow("warmup: completed")
}
