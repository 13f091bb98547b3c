package httpapi

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/atmoview/atmoview/internal/chat"
	"github.com/atmoview/atmoview/internal/elevation"
	"github.com/atmoview/atmoview/internal/layer"
	"github.com/atmoview/atmoview/internal/observability"
	"github.com/atmoview/atmoview/internal/render"
	"github.com/atmoview/atmoview/internal/weather"
)

var validate = validator.New()

// Handlers bundles the services the HTTP surface fronts.
type Handlers struct {
	Weather      *weather.Service
	Elevation    *elevation.Service
	Relay        *chat.Relay
	Orchestrator *layer.Orchestrator

	// ChatReady is false when no conversational API key is configured;
	// chat endpoints then fail fast without touching the network.
	ChatReady bool

	Clock  clockwork.Clock
	Logger *zap.SugaredLogger
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, h Handlers) {
	app.Use(requestCounter)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "OK",
			"timestamp": h.Clock.Now().UTC().Format(time.RFC3339),
		})
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	api.Get("/search", h.search)
	api.Get("/weather", h.weather)
	api.Post("/elevation", h.elevation)
	api.Post("/chat", h.chat)
	api.Get("/test-chat", h.testChat)
	api.Get("/featured", h.featured)
	api.Get("/overlay/:layer", h.overlay)
	api.Get("/markers", h.markers)
	api.Post("/markers", h.addMarker)
	api.Delete("/markers", h.clearMarkers)
}

// requestCounter labels served requests by route pattern and status.
func requestCounter(c *fiber.Ctx) error {
	err := c.Next()
	route := c.Route().Path
	status := strconv.Itoa(c.Response().StatusCode())
	observability.HTTPRequestsTotal.WithLabelValues(route, status).Inc()
	return err
}

func (h Handlers) search(c *fiber.Ctx) error {
	query := c.Query("q")
	if query == "" {
		return fiber.NewError(fiber.StatusBadRequest, "query parameter q is required")
	}

	suggestions, err := h.Weather.Search(c.Context(), query)
	if err != nil {
		return providerError(err)
	}
	return c.JSON(suggestions)
}

// coordQuery holds and validates lat/lon query parameters.
type coordQuery struct {
	Lat float64 `validate:"min=-90,max=90"`
	Lon float64 `validate:"min=-180,max=180"`
}

func parseCoordQuery(c *fiber.Ctx) (coordQuery, error) {
	var q coordQuery

	latStr, lonStr := c.Query("lat"), c.Query("lon")
	if latStr == "" || lonStr == "" {
		return q, errors.New("lat and lon query parameters are required")
	}

	var err error
	if q.Lat, err = strconv.ParseFloat(latStr, 64); err != nil {
		return q, fmt.Errorf("invalid lat: %w", err)
	}
	if q.Lon, err = strconv.ParseFloat(lonStr, 64); err != nil {
		return q, fmt.Errorf("invalid lon: %w", err)
	}

	if err := validate.Struct(q); err != nil {
		return q, err
	}
	return q, nil
}

func (h Handlers) weather(c *fiber.Ctx) error {
	q, err := parseCoordQuery(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	sample, err := h.Weather.Current(c.Context(), q.Lat, q.Lon)
	if err != nil {
		return providerError(err)
	}
	return c.JSON(sample)
}

// elevationRequest uses pointer fields so 0 survives the required check.
type elevationRequest struct {
	Lat *float64 `json:"lat" validate:"required,min=-90,max=90"`
	Lon *float64 `json:"lon" validate:"required,min=-180,max=180"`
}

func (h Handlers) elevation(c *fiber.Ctx) error {
	var req elevationRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body: lat and lon are required")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	// Profile never fails outward; a provider outage degrades to a
	// flagged synthetic profile.
	profile := h.Elevation.Profile(c.Context(), *req.Lat, *req.Lon)
	return c.JSON(profile)
}

func (h Handlers) chat(c *fiber.Ctx) error {
	if !h.ChatReady {
		return fiber.NewError(fiber.StatusInternalServerError, "RAPIDAPI_KEY is not configured")
	}

	var req chat.Request
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	relay, logger := h.Relay, h.Logger
	// The stream writer runs after this handler returns, so it cannot
	// use the request context.
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		streamChat(context.Background(), relay, logger, req, w)
	}))
	return nil
}

// streamChat pumps the relay's word chunks as SSE events. A failed
// flush means the client is gone; the producer stops instead of
// draining the rest of the reply into a dead socket.
func streamChat(ctx context.Context, relay *chat.Relay, logger *zap.SugaredLogger, req chat.Request, w *bufio.Writer) {
	emit := func(chunk string) error {
		payload, err := json.Marshal(fiber.Map{"content": chunk})
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
			return err
		}
		return w.Flush()
	}

	if err := relay.Stream(ctx, req, emit); err != nil {
		logger.Warnw("chat stream ended early", "error", err)
		return
	}
	fmt.Fprint(w, "data: [DONE]\n\n")
	w.Flush() //nolint:errcheck
}

func (h Handlers) testChat(c *fiber.Ctx) error {
	if !h.ChatReady {
		return fiber.NewError(fiber.StatusInternalServerError, "RAPIDAPI_KEY is not configured")
	}

	endpoint, response, err := h.Relay.Test(c.Context())
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway,
			fmt.Sprintf("chat endpoint %s unreachable: %v", endpoint, err))
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"endpoint": endpoint,
		"response": response,
	})
}

func (h Handlers) featured(c *fiber.Ctx) error {
	return c.JSON(weather.FeaturedLocations)
}

// overlay renders one frame of the named layer as a display list. An
// optional lat/lon pair recenters the view first; w, h and zoom adjust
// the viewport. The elevation layer is stateless and reads its profile
// per request.
func (h Handlers) overlay(c *fiber.Ctx) error {
	name := c.Params("layer")
	now := h.Clock.Now()

	vp := h.Orchestrator.Viewport()
	if w := c.QueryFloat("w"); w > 0 {
		vp.Width = w
	}
	if ht := c.QueryFloat("h"); ht > 0 {
		vp.Height = ht
	}
	if zoom := c.QueryFloat("zoom"); zoom > 0 {
		h.Orchestrator.SetZoom(zoom)
		vp.Zoom = zoom
	}

	if c.Query("lat") != "" || c.Query("lon") != "" {
		q, err := parseCoordQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := h.Orchestrator.SetCenter(c.Context(), q.Lat, q.Lon); err != nil {
			h.Logger.Warnw("overlay recenter kept stale weather", "error", err)
		}
		vp.Center.Lat, vp.Center.Lon = q.Lat, q.Lon
	}

	if name == "elevation" {
		profile := h.Elevation.Profile(c.Context(), vp.Center.Lat, vp.Center.Lon)
		dl := render.NewDisplayList(vp.Width, vp.Height)
		dl.Clear(0, 0, vp.Width, vp.Height)
		render.DrawElevationProfile(dl, profile.Elevations, profile.Min, profile.Max)
		observability.OverlayFramesTotal.WithLabelValues(name).Inc()
		return c.JSON(dl)
	}

	dl, err := h.Orchestrator.Frame(name, now)
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	if dl == nil {
		// Hidden layer or no sample yet: an empty frame, not an error.
		dl = render.NewDisplayList(vp.Width, vp.Height)
	}
	observability.OverlayFramesTotal.WithLabelValues(name).Inc()
	return c.JSON(dl)
}

func (h Handlers) markers(c *fiber.Ctx) error {
	return c.JSON(h.Orchestrator.Markers())
}

type markerRequest struct {
	Lat   *float64 `json:"lat" validate:"required,min=-90,max=90"`
	Lon   *float64 `json:"lon" validate:"required,min=-180,max=180"`
	Label string   `json:"label"`
}

func (h Handlers) addMarker(c *fiber.Ctx) error {
	var req markerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body: lat and lon are required")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	m := layer.Marker{Lat: *req.Lat, Lon: *req.Lon, Label: req.Label}
	h.Orchestrator.AddMarker(m)
	return c.Status(fiber.StatusCreated).JSON(m)
}

func (h Handlers) clearMarkers(c *fiber.Ctx) error {
	h.Orchestrator.ClearMarkers()
	return c.SendStatus(fiber.StatusNoContent)
}

// providerError maps service failures onto the HTTP surface: missing
// configuration is a 500 with a descriptive message, upstream failures
// are a 502.
func providerError(err error) error {
	if errors.Is(err, weather.ErrNotConfigured) {
		return fiber.NewError(fiber.StatusInternalServerError, "OPENWEATHER_API_KEY is not configured")
	}
	return fiber.NewError(fiber.StatusBadGateway, err.Error())
}
