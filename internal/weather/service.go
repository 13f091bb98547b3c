package weather

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

var (
	// ErrNotConfigured is returned when a required provider API key is
	// missing and synthetic fallback is disabled.
	ErrNotConfigured = errors.New("weather provider is not configured")

	// ErrNoResults is returned when a geocoding search matched nothing.
	ErrNoResults = errors.New("no locations found")
)

// Provider abstracts the current-weather data source.
type Provider interface {
	Name() string
	Current(ctx context.Context, lat, lon float64) (*Sample, error)
}

// Geocoder abstracts the location search source.
type Geocoder interface {
	Name() string
	Search(ctx context.Context, query string, limit int) ([]LocationSuggestion, error)
}

// Service orchestrates the weather and geocoding providers and, in
// standalone mode, substitutes deterministic synthetic data so the
// visualization never goes blank.
type Service struct {
	provider  Provider
	geocoder  Geocoder
	fallback  Geocoder // optional secondary geocoder
	synthetic bool
	clock     clockwork.Clock
	logger    *zap.SugaredLogger
}

// NewService creates a Service. provider and geocoder may be nil when no
// API key is configured; synthetic controls whether missing or failing
// providers degrade to synthetic data instead of a structured error.
func NewService(provider Provider, geocoder Geocoder, synthetic bool, clock clockwork.Clock, logger *zap.SugaredLogger) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{
		provider:  provider,
		geocoder:  geocoder,
		synthetic: synthetic,
		clock:     clock,
		logger:    logger,
	}
}

// WithFallbackGeocoder installs a secondary geocoder tried when the
// primary search fails.
func (s *Service) WithFallbackGeocoder(g Geocoder) *Service {
	s.fallback = g
	return s
}

// Current returns the normalized weather sample for a coordinate. On
// provider failure the error is propagated unless synthetic mode is on,
// in which case a deterministic synthetic sample is substituted.
func (s *Service) Current(ctx context.Context, lat, lon float64) (*Sample, error) {
	if s.provider == nil {
		if s.synthetic {
			return SyntheticSample(lat, lon, s.clock.Now()), nil
		}
		return nil, ErrNotConfigured
	}

	sample, err := s.provider.Current(ctx, lat, lon)
	if err != nil {
		if s.synthetic {
			s.logger.Warnw("weather provider failed, using synthetic sample",
				"provider", s.provider.Name(), "lat", lat, "lon", lon, "error", err)
			return SyntheticSample(lat, lon, s.clock.Now()), nil
		}
		return nil, fmt.Errorf("fetching weather for (%v,%v): %w", lat, lon, err)
	}
	return sample, nil
}

// Search geocodes a free-text query into up to 5 candidates. Provider
// errors are propagated (no silent fallback) unless synthetic mode is on
// or a secondary geocoder succeeds.
func (s *Service) Search(ctx context.Context, query string) ([]LocationSuggestion, error) {
	if s.geocoder == nil {
		if s.synthetic {
			return SyntheticLocations(query), nil
		}
		return nil, ErrNotConfigured
	}

	suggestions, err := s.geocoder.Search(ctx, query, 5)
	if err != nil && s.fallback != nil {
		s.logger.Warnw("geocoder failed, trying fallback",
			"geocoder", s.geocoder.Name(), "fallback", s.fallback.Name(), "query", query, "error", err)
		suggestions, err = s.fallback.Search(ctx, query, 5)
	}
	if err != nil {
		if s.synthetic {
			s.logger.Warnw("geocoding failed, using synthetic locations", "query", query, "error", err)
			return SyntheticLocations(query), nil
		}
		return nil, fmt.Errorf("searching locations for %q: %w", query, err)
	}
	return suggestions, nil
}

// coordPattern matches a bare "lat,lon" pair such as "35.36, 138.72".
var coordPattern = regexp.MustCompile(`^(-?\d+\.?\d*)\s*,\s*(-?\d+\.?\d*)$`)

// Lookup resolves a place given either a "lat,lon" pair or a free-text
// name (searched, first hit wins) and returns a display label plus the
// weather sample for it.
func (s *Service) Lookup(ctx context.Context, place string) (string, *Sample, error) {
	if m := coordPattern.FindStringSubmatch(place); m != nil {
		lat, _ := strconv.ParseFloat(m[1], 64)
		lon, _ := strconv.ParseFloat(m[2], 64)
		sample, err := s.Current(ctx, lat, lon)
		if err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("%v,%v", lat, lon), sample, nil
	}

	suggestions, err := s.Search(ctx, place)
	if err != nil {
		return "", nil, err
	}
	if len(suggestions) == 0 {
		return "", nil, fmt.Errorf("%w: %q", ErrNoResults, place)
	}

	first := suggestions[0]
	sample, err := s.Current(ctx, first.Lat, first.Lon)
	if err != nil {
		return "", nil, err
	}

	region := first.State
	if region == "" {
		region = first.Country
	}
	return fmt.Sprintf("%s, %s", first.Name, region), sample, nil
}
