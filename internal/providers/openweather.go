package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/atmoview/atmoview/internal/common"
	"github.com/atmoview/atmoview/internal/geo"
	"github.com/atmoview/atmoview/internal/weather"
	"github.com/sony/gobreaker"
)

// OpenWeatherClient serves both the geocoding search (geo/1.0/direct)
// and the current-weather lookup (data/2.5/weather).
type OpenWeatherClient struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewOpenWeatherClient creates the client. baseURL defaults to the
// public API host when empty.
func NewOpenWeatherClient(client *http.Client, apiKey, baseURL string) *OpenWeatherClient {
	if baseURL == "" {
		baseURL = "https://api.openweathermap.org"
	}
	return &OpenWeatherClient{
		name:    "openweather",
		apiKey:  apiKey,
		baseURL: baseURL,
		httpCfg: defaultHTTPConfig(client),
		circuit: newBreaker("openweather"),
	}
}

func (c *OpenWeatherClient) Name() string {
	return c.name
}

// Search geocodes a free-text query into at most limit candidates.
func (c *OpenWeatherClient) Search(ctx context.Context, query string, limit int) ([]weather.LocationSuggestion, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("openweather api key is not configured")
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("q", query)
		values.Set("limit", strconv.Itoa(limit))
		values.Set("appid", c.apiKey)
		u := fmt.Sprintf("%s/geo/1.0/direct?%s", c.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, c.name, c.httpCfg, c.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload []struct {
		Name       string `json:"name"`
		LocalNames struct {
			En string `json:"en"`
		} `json:"local_names"`
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
		Country string  `json:"country"`
		State   string  `json:"state"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding openweather geocode response: %w", err)
	}

	suggestions := make([]weather.LocationSuggestion, 0, len(payload))
	for _, loc := range payload {
		name := loc.Name
		if loc.LocalNames.En != "" {
			name = loc.LocalNames.En
		}
		state := loc.State
		if state == "" {
			state = loc.Country
		}
		suggestions = append(suggestions, weather.LocationSuggestion{
			Name:    name,
			Lat:     loc.Lat,
			Lon:     loc.Lon,
			Country: loc.Country,
			State:   state,
		})
	}
	return suggestions, nil
}

// Current fetches and normalizes the current weather for a coordinate.
// Temperatures are rounded to one decimal; missing wind fields become 0.
func (c *OpenWeatherClient) Current(ctx context.Context, lat, lon float64) (*weather.Sample, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("openweather api key is not configured")
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
		values.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
		values.Set("units", "metric")
		values.Set("appid", c.apiKey)
		u := fmt.Sprintf("%s/data/2.5/weather?%s", c.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, c.name, c.httpCfg, c.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		Coord struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"coord"`
		Weather []struct {
			ID          int    `json:"id"`
			Main        string `json:"main"`
			Description string `json:"description"`
		} `json:"weather"`
		Main struct {
			Temp      float64 `json:"temp"`
			FeelsLike float64 `json:"feels_like"`
			TempMin   float64 `json:"temp_min"`
			TempMax   float64 `json:"temp_max"`
			Humidity  int     `json:"humidity"`
			Pressure  int     `json:"pressure"`
		} `json:"main"`
		Wind *struct {
			Speed float64 `json:"speed"`
			Deg   float64 `json:"deg"`
		} `json:"wind"`
		Clouds *struct {
			All float64 `json:"all"`
		} `json:"clouds"`
		Rain *struct {
			OneH float64 `json:"1h"`
		} `json:"rain"`
		Visibility *int `json:"visibility"`
		Sys        struct {
			Sunrise int64 `json:"sunrise"`
			Sunset  int64 `json:"sunset"`
		} `json:"sys"`
		Name string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding openweather response: %w", err)
	}

	sample := &weather.Sample{
		Coord:        geo.Point{Lat: payload.Coord.Lat, Lon: payload.Coord.Lon},
		TemperatureC: common.Round1(payload.Main.Temp),
		FeelsLikeC:   common.Round1(payload.Main.FeelsLike),
		TempMinC:     common.Round1(payload.Main.TempMin),
		TempMaxC:     common.Round1(payload.Main.TempMax),
		HumidityPct:  payload.Main.Humidity,
		PressureHPa:  payload.Main.Pressure,
		LocationName: payload.Name,
	}
	if sample.LocationName == "" {
		sample.LocationName = "Current Location"
	}
	if len(payload.Weather) > 0 {
		sample.ConditionCode = payload.Weather[0].ID
		sample.ConditionMain = payload.Weather[0].Main
		sample.ConditionDesc = payload.Weather[0].Description
	}
	if payload.Wind != nil {
		sample.WindSpeedMS = payload.Wind.Speed
		sample.WindDirectionDeg = payload.Wind.Deg
	}
	if payload.Clouds != nil {
		coverage := payload.Clouds.All
		sample.CloudCoveragePct = &coverage
	}
	if payload.Rain != nil {
		precip := payload.Rain.OneH
		sample.Precipitation1hMM = &precip
	}
	sample.VisibilityM = payload.Visibility
	if payload.Sys.Sunrise != 0 || payload.Sys.Sunset != 0 {
		sunrise, sunset := payload.Sys.Sunrise, payload.Sys.Sunset
		sample.SunriseEpoch = &sunrise
		sample.SunsetEpoch = &sunset
	}
	return sample, nil
}
