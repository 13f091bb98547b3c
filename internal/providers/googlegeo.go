package providers

import (
	"context"
	"fmt"

	"github.com/atmoview/atmoview/internal/weather"
	"github.com/kelvins/geocoder"
)

// GoogleGeocoder is a secondary geocoding source backed by the Google
// Geocoding API. It resolves a single best match, so it only ever
// returns zero or one suggestion.
type GoogleGeocoder struct {
	name string
}

// NewGoogleGeocoder configures the underlying library with the API key.
// The geocoder package holds the key in package state, so only one
// Google key per process is supported.
func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	geocoder.ApiKey = apiKey
	return &GoogleGeocoder{name: "google"}
}

func (g *GoogleGeocoder) Name() string {
	return g.name
}

// Search resolves a free-text place name to coordinates.
func (g *GoogleGeocoder) Search(_ context.Context, query string, _ int) ([]weather.LocationSuggestion, error) {
	location, err := geocoder.Geocoding(geocoder.Address{City: query})
	if err != nil {
		return nil, fmt.Errorf("google geocoding %q: %w", query, err)
	}

	addresses, err := geocoder.GeocodingReverse(location)
	suggestion := weather.LocationSuggestion{
		Name: query,
		Lat:  location.Latitude,
		Lon:  location.Longitude,
	}
	if err == nil && len(addresses) > 0 {
		suggestion.Country = addresses[0].Country
		suggestion.State = addresses[0].State
	}
	return []weather.LocationSuggestion{suggestion}, nil
}
