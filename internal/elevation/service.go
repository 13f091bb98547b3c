// Package elevation builds circular elevation profiles around a
// coordinate. Real profiles come from a batched provider call and are
// cached for an hour; when the provider is unreachable a deterministic
// synthetic profile keeps the topology view populated, flagged so
// callers can tell the difference.
package elevation

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"github.com/atmoview/atmoview/internal/cache"
	"github.com/atmoview/atmoview/internal/geo"
	"github.com/atmoview/atmoview/internal/observability"
	"go.uber.org/zap"
)

const (
	// ProfilePoints is the number of samples around the circle.
	ProfilePoints = 36

	// ProfileRadius is the sampling circle radius in degrees (~5.5 km).
	ProfileRadius = 0.05

	// DefaultTTL bounds how long a real profile is served from cache.
	DefaultTTL = time.Hour

	// providerTimeout bounds the batched provider call.
	providerTimeout = 10 * time.Second
)

// Profile is an ordered ring of elevation samples plus its extremes.
type Profile struct {
	Elevations []float64 `json:"elevations"`
	Min        float64   `json:"min"`
	Max        float64   `json:"max"`
	Fallback   bool      `json:"fallback,omitempty"`
}

// Sampler resolves elevations for a batch of points in one call.
type Sampler interface {
	Lookup(ctx context.Context, points []geo.Point) ([]float64, error)
}

// Service produces elevation profiles, caching real ones and degrading
// to synthetic data on provider failure. Profile never fails outward.
type Service struct {
	sampler Sampler
	cache   cache.Cache
	ttl     time.Duration
	logger  *zap.SugaredLogger
}

// NewService creates a Service. A zero ttl defaults to one hour.
func NewService(sampler Sampler, c cache.Cache, ttl time.Duration, logger *zap.SugaredLogger) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{sampler: sampler, cache: c, ttl: ttl, logger: logger}
}

// Profile returns the elevation ring for a coordinate. The cache key is
// the coordinate rounded to two decimals, so nearby requests share an
// entry. Fallback profiles are never cached; they are deterministic and
// recomputing them is cheap.
func (s *Service) Profile(ctx context.Context, lat, lon float64) Profile {
	key := geo.CacheKey(lat, lon)

	if raw, ok := s.cache.Get(ctx, key); ok {
		var cached Profile
		if err := json.Unmarshal(raw, &cached); err == nil {
			observability.ElevationCacheTotal.WithLabelValues("hit").Inc()
			return cached
		}
		s.logger.Warnw("dropping corrupt elevation cache entry", "key", key)
	}
	observability.ElevationCacheTotal.WithLabelValues("miss").Inc()

	points := geo.CirclePoints(lat, lon, ProfileRadius, ProfilePoints)

	lookupCtx, cancel := context.WithTimeout(ctx, providerTimeout)
	defer cancel()

	elevations, err := s.sampler.Lookup(lookupCtx, points)
	if err != nil {
		s.logger.Warnw("elevation provider failed, using fallback profile",
			"lat", lat, "lon", lon, "error", err)
		observability.ElevationFallbackTotal.Inc()
		return FallbackProfile(lat, lon)
	}

	profile := Profile{Elevations: elevations}
	profile.Min, profile.Max = extremes(elevations)

	if raw, err := json.Marshal(profile); err == nil {
		s.cache.Set(ctx, key, raw, s.ttl)
	}
	return profile
}

// FallbackProfile synthesizes a deterministic elevation ring from the
// coordinate alone: a poleward base, a coastal sinusoid on longitude, a
// terrain term per angle, and seeded pseudo-noise. Calling it twice with
// the same inputs yields identical output.
func FallbackProfile(lat, lon float64) Profile {
	baseElevation := math.Abs(lat) * 10
	coastalEffect := math.Sin(lon*math.Pi/180) * 50

	elevations := make([]float64, ProfilePoints)
	for i := range elevations {
		angle := (float64(i) / ProfilePoints) * 2 * math.Pi
		terrainVariation := math.Sin(angle*3) * 30
		noiseVariation := pseudoNoise(lat, lon, i) * 10
		elevations[i] = math.Max(0, baseElevation+coastalEffect+terrainVariation+noiseVariation)
	}

	profile := Profile{Elevations: elevations, Fallback: true}
	profile.Min, profile.Max = extremes(elevations)
	return profile
}

// pseudoNoise returns a deterministic value in [-0.5, 0.5) seeded from
// the coordinate and point index.
func pseudoNoise(lat, lon float64, i int) float64 {
	h := math.Sin(lat*12.9898+lon*78.233+float64(i)*37.719) * 43758.5453
	return h - math.Floor(h) - 0.5
}

func extremes(values []float64) (min, max float64) {
	if len(values) == 0 {
		return 0, 0
	}
	min, max = values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}
