package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/atmoview/atmoview/internal/cache"
	"github.com/atmoview/atmoview/internal/chat"
	"github.com/atmoview/atmoview/internal/elevation"
	"github.com/atmoview/atmoview/internal/geo"
	"github.com/atmoview/atmoview/internal/layer"
	"github.com/atmoview/atmoview/internal/weather"
)

type fakeSampler struct {
	fail bool
}

func (s *fakeSampler) Lookup(_ context.Context, points []geo.Point) ([]float64, error) {
	if s.fail {
		return nil, errors.New("elevation provider down")
	}
	out := make([]float64, len(points))
	for i := range out {
		out[i] = float64(100 + i)
	}
	return out, nil
}

type fakeCompleter struct {
	body []byte
	err  error
}

func (c *fakeCompleter) Complete(context.Context, string) ([]byte, error) {
	return c.body, c.err
}

func (c *fakeCompleter) Endpoint() string { return "https://chat.example.test" }

// newTestApp builds an app wired like main: synthetic weather fallback,
// memory cache, stub chat completer, all overlay layers registered.
func newTestApp(sampler elevation.Sampler, chatReady bool) *fiber.App {
	logger := zap.NewNop().Sugar()
	clock := clockwork.NewFakeClockAt(time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC))

	weatherSvc := weather.NewService(nil, nil, true, clock, logger)
	elevSvc := elevation.NewService(sampler, cache.NewMemory(clock), time.Hour, logger)
	relay := chat.NewRelay(&fakeCompleter{body: []byte(`{"result":"hello from the stub"}`)}, weatherSvc, logger)

	orch := layer.NewOrchestrator(weatherSvc, logger, layer.Viewport{Width: 400, Height: 300, Zoom: 10})
	orch.Register(layer.NewTemperature(clock))
	orch.Register(layer.NewClouds(clock))
	orch.Register(layer.NewWind(clock))

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	RegisterRoutes(app, Handlers{
		Weather:      weatherSvc,
		Elevation:    elevSvc,
		Relay:        relay,
		Orchestrator: orch,
		ChatReady:    chatReady,
		Clock:        clock,
		Logger:       logger,
	})
	return app
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		t.Fatalf("decoding body %q: %v", raw, err)
	}
}

func TestHealth(t *testing.T) {
	app := newTestApp(&fakeSampler{}, true)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}

	var body struct {
		Status    string `json:"status"`
		Timestamp string `json:"timestamp"`
	}
	decodeBody(t, resp, &body)
	if body.Status != "OK" {
		t.Fatalf("expected status OK, got %q", body.Status)
	}
	if body.Timestamp == "" {
		t.Fatal("expected a timestamp")
	}
}

func TestSearchValidation(t *testing.T) {
	app := newTestApp(&fakeSampler{}, true)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/search", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty query, got %d", resp.StatusCode)
	}
}

func TestSearchSyntheticResults(t *testing.T) {
	app := newTestApp(&fakeSampler{}, true)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/search?q=tokyo", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var suggestions []weather.LocationSuggestion
	decodeBody(t, resp, &suggestions)
	if len(suggestions) == 0 {
		t.Fatal("expected suggestions")
	}
	if suggestions[0].Name != "Tokyo" {
		t.Fatalf("first suggestion should echo the query, got %q", suggestions[0].Name)
	}
}

func TestWeatherValidation(t *testing.T) {
	app := newTestApp(&fakeSampler{}, true)

	for _, path := range []string{
		"/api/weather",
		"/api/weather?lat=51.5",
		"/api/weather?lat=abc&lon=0",
		"/api/weather?lat=91&lon=0",
		"/api/weather?lat=0&lon=181",
	} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400 for %s, got %d", path, resp.StatusCode)
		}
	}
}

func TestWeatherSyntheticSample(t *testing.T) {
	app := newTestApp(&fakeSampler{}, true)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/weather?lat=51.5074&lon=-0.1278", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var sample weather.Sample
	decodeBody(t, resp, &sample)
	if sample.LocationName == "" {
		t.Fatal("expected a location name")
	}
	if sample.ConditionMain == "" {
		t.Fatal("expected a condition")
	}
}

func TestElevationValidation(t *testing.T) {
	app := newTestApp(&fakeSampler{}, true)

	cases := []string{
		``,
		`{}`,
		`{"lat": 40.7}`,
		`{"lat": 95, "lon": 0}`,
	}
	for _, body := range cases {
		req := httptest.NewRequest(http.MethodPost, "/api/elevation", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400 for body %q, got %d", body, resp.StatusCode)
		}
	}
}

func TestElevationRealProfile(t *testing.T) {
	app := newTestApp(&fakeSampler{}, true)

	req := httptest.NewRequest(http.MethodPost, "/api/elevation", strings.NewReader(`{"lat": 40.7128, "lon": -74.0060}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var profile elevation.Profile
	decodeBody(t, resp, &profile)
	if len(profile.Elevations) != elevation.ProfilePoints {
		t.Fatalf("expected %d elevations, got %d", elevation.ProfilePoints, len(profile.Elevations))
	}
	if profile.Fallback {
		t.Fatal("real profile must not be flagged as fallback")
	}
}

func TestElevationFallbackProfile(t *testing.T) {
	app := newTestApp(&fakeSampler{fail: true}, true)

	req := httptest.NewRequest(http.MethodPost, "/api/elevation", strings.NewReader(`{"lat": 40.7128, "lon": -74.0060}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("elevation must never fail outward, got %d", resp.StatusCode)
	}

	var profile elevation.Profile
	decodeBody(t, resp, &profile)
	if !profile.Fallback {
		t.Fatal("expected fallback flag on synthetic profile")
	}
	if len(profile.Elevations) != elevation.ProfilePoints {
		t.Fatalf("expected %d elevations, got %d", elevation.ProfilePoints, len(profile.Elevations))
	}
}

func TestChatMissingKey(t *testing.T) {
	app := newTestApp(&fakeSampler{}, false)

	body := `{"messages": [{"role": "user", "content": "hi"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500 without an API key, got %d", resp.StatusCode)
	}

	raw, _ := io.ReadAll(resp.Body)
	if !bytes.Contains(raw, []byte("RAPIDAPI_KEY")) {
		t.Fatalf("error body should name RAPIDAPI_KEY, got %s", raw)
	}
}

func TestChatValidation(t *testing.T) {
	app := newTestApp(&fakeSampler{}, true)

	for _, body := range []string{
		`{}`,
		`{"messages": []}`,
		`{"messages": [{"role": "system", "content": "x"}]}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400 for body %q, got %d", body, resp.StatusCode)
		}
	}
}

func TestChatStreams(t *testing.T) {
	app := newTestApp(&fakeSampler{}, true)

	body := `{"messages": [{"role": "user", "content": "hi"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, 10000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("expected an event stream, got %q", ct)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading stream: %v", err)
	}
	text := string(raw)
	if !strings.Contains(text, `data: {"content":"hello"}`) {
		t.Fatalf("expected first word chunk, got %s", text)
	}
	if !strings.HasSuffix(strings.TrimSpace(text), "data: [DONE]") {
		t.Fatalf("expected DONE sentinel, got %s", text)
	}
}

func TestTestChatEndpoint(t *testing.T) {
	app := newTestApp(&fakeSampler{}, true)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/test-chat", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		Success  bool   `json:"success"`
		Endpoint string `json:"endpoint"`
		Response string `json:"response"`
	}
	decodeBody(t, resp, &body)
	if !body.Success || body.Endpoint == "" || body.Response == "" {
		t.Fatalf("unexpected test-chat payload: %+v", body)
	}
}

func TestFeaturedLocations(t *testing.T) {
	app := newTestApp(&fakeSampler{}, true)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/featured", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var featured []weather.FeaturedLocation
	decodeBody(t, resp, &featured)
	if len(featured) != len(weather.FeaturedLocations) {
		t.Fatalf("expected %d featured locations, got %d", len(weather.FeaturedLocations), len(featured))
	}
}

func TestOverlayFrame(t *testing.T) {
	app := newTestApp(&fakeSampler{}, true)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet,
		"/api/overlay/temperature?lat=35.36&lon=138.72", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var dl struct {
		Width  float64           `json:"width"`
		Height float64           `json:"height"`
		Ops    []json.RawMessage `json:"ops"`
	}
	decodeBody(t, resp, &dl)
	if len(dl.Ops) == 0 {
		t.Fatal("expected draw ops after a recenter")
	}
}

func TestOverlayElevation(t *testing.T) {
	app := newTestApp(&fakeSampler{}, true)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet,
		"/api/overlay/elevation?lat=35.36&lon=138.72", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestOverlayUnknownLayer(t *testing.T) {
	app := newTestApp(&fakeSampler{}, true)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/overlay/radar", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestMarkersLifecycle(t *testing.T) {
	app := newTestApp(&fakeSampler{}, true)

	req := httptest.NewRequest(http.MethodPost, "/api/markers",
		strings.NewReader(`{"lat": 35.36, "lon": 138.72, "label": "Mount Fuji"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/markers", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var markers []layer.Marker
	decodeBody(t, resp, &markers)
	if len(markers) != 1 || markers[0].Label != "Mount Fuji" {
		t.Fatalf("unexpected markers: %+v", markers)
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodDelete, "/api/markers", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
}
