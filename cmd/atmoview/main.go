package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	httpapi "github.com/atmoview/atmoview/internal/api/http"
	"github.com/atmoview/atmoview/internal/cache"
	"github.com/atmoview/atmoview/internal/chat"
	"github.com/atmoview/atmoview/internal/config"
	"github.com/atmoview/atmoview/internal/elevation"
	"github.com/atmoview/atmoview/internal/layer"
	"github.com/atmoview/atmoview/internal/providers"
	"github.com/atmoview/atmoview/internal/scheduler"
	"github.com/atmoview/atmoview/internal/weather"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zl, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer zl.Sync() //nolint:errcheck
	sugar := zl.Sugar()

	clock := clockwork.NewRealClock()

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Elevation cache backend.
	var (
		elevCache cache.Cache
		sweeper   cache.Sweeper
	)
	switch cfg.CacheBackend {
	case "redis":
		rc := redis.NewClient(&redis.Options{Addr: cfg.RedisAddress})
		elevCache = cache.NewRedis(rc, "elevation:", sugar)
	default:
		mem := cache.NewMemory(clock)
		elevCache = mem
		sweeper = mem
	}

	// Providers with resilience (backoff + circuit breaker).
	var (
		weatherProvider weather.Provider
		geocoder        weather.Geocoder
	)
	if cfg.OpenWeatherAPIKey != "" {
		ow := providers.NewOpenWeatherClient(httpClient, cfg.OpenWeatherAPIKey, cfg.OpenWeatherBaseURL)
		weatherProvider = ow
		geocoder = ow
	}

	weatherSvc := weather.NewService(weatherProvider, geocoder, cfg.SyntheticFallback, clock, sugar)
	if cfg.GoogleAPIKey != "" {
		weatherSvc.WithFallbackGeocoder(providers.NewGoogleGeocoder(cfg.GoogleAPIKey))
	}

	elevSvc := elevation.NewService(
		providers.NewOpenElevationClient(httpClient, cfg.ElevationBaseURL),
		elevCache, cfg.ElevationCacheTTL, sugar)

	chatClient := providers.NewRapidChatClient(httpClient, cfg.RapidAPIKey, cfg.ChatEndpoint)
	relay := chat.NewRelay(chatClient, weatherSvc, sugar)

	// Map orchestrator and overlay layers.
	orch := layer.NewOrchestrator(weatherSvc, sugar, layer.Viewport{
		Width: 800, Height: 600, Zoom: 10,
	})
	orch.Register(layer.NewTemperature(clock))
	orch.Register(layer.NewClouds(clock))
	orch.Register(layer.NewWind(clock))
	orch.Register(layer.NewRain(clock))
	orch.Register(layer.NewEffects(clock))
	defer orch.Teardown()

	// Scheduler that keeps featured locations warm.
	sched := scheduler.New(weatherSvc, elevSvc, sweeper, cfg.WarmupInterval, sugar)
	if err := sched.Start(); err != nil {
		sugar.Fatalw("failed to start scheduler", "error", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "atmoview",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
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

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// API routes.
	httpapi.RegisterRoutes(app, httpapi.Handlers{
		Weather:      weatherSvc,
		Elevation:    elevSvc,
		Relay:        relay,
		Orchestrator: orch,
		ChatReady:    cfg.RapidAPIKey != "",
		Clock:        clock,
		Logger:       sugar,
	})

	// Static SPA shell with index.html fallback for client-side routes.
	app.Static("/", cfg.StaticDir)
	app.Use(func(c *fiber.Ctx) error {
		return c.SendFile(filepath.Join(cfg.StaticDir, "index.html"))
	})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			sugar.Errorw("fiber server stopped", "error", err)
		}
	}()
	sugar.Infow("atmoview listening", "port", cfg.Port, "cache", cfg.CacheBackend)

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		sugar.Errorw("error during shutdown", "error", err)
	}
}
