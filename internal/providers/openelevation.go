package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/atmoview/atmoview/internal/geo"
	"github.com/sony/gobreaker"
)

// OpenElevationClient batches elevation lookups against the
// open-elevation API.
type OpenElevationClient struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewOpenElevationClient creates the client. baseURL defaults to the
// public API host when empty.
func NewOpenElevationClient(client *http.Client, baseURL string) *OpenElevationClient {
	if baseURL == "" {
		baseURL = "https://api.open-elevation.com"
	}
	return &OpenElevationClient{
		name:    "openelevation",
		baseURL: baseURL,
		httpCfg: defaultHTTPConfig(client),
		circuit: newBreaker("openelevation"),
	}
}

func (c *OpenElevationClient) Name() string {
	return c.name
}

// Lookup resolves elevations for all points in one batched request.
// Null elevations in the response are mapped to 0. The returned slice
// has one entry per input point, in order.
func (c *OpenElevationClient) Lookup(ctx context.Context, points []geo.Point) ([]float64, error) {
	body, err := json.Marshal(struct {
		Locations []geo.Point `json:"locations"`
	}{Locations: points})
	if err != nil {
		return nil, err
	}

	buildRequest := func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodPost, c.baseURL+"/api/v1/lookup", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}

	resp, err := doRequestWithResilience(ctx, c.name, c.httpCfg, c.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		Results []struct {
			Latitude  float64  `json:"latitude"`
			Longitude float64  `json:"longitude"`
			Elevation *float64 `json:"elevation"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding openelevation response: %w", err)
	}
	if len(payload.Results) != len(points) {
		return nil, fmt.Errorf("openelevation returned %d results for %d points", len(payload.Results), len(points))
	}

	elevations := make([]float64, len(payload.Results))
	for i, r := range payload.Results {
		if r.Elevation != nil {
			elevations[i] = *r.Elevation
		}
	}
	return elevations, nil
}
