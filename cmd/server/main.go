package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/evyataryagoni/locationserver/internal/config"
	"github.com/evyataryagoni/locationserver/internal/handler"
	"github.com/evyataryagoni/locationserver/internal/limiter"
	"github.com/evyataryagoni/locationserver/internal/logger"
	"github.com/evyataryagoni/locationserver/internal/lookup"
	"github.com/evyataryagoni/locationserver/internal/metrics"
	"github.com/evyataryagoni/locationserver/internal/router"
	"github.com/evyataryagoni/locationserver/internal/server"
	"github.com/evyataryagoni/locationserver/internal/service"
	"github.com/prometheus/client_golang/prometheus"
)

//go:generate swag init --dir ../../ --generalInfo cmd/server/main.go --output ../../docs

// @title           Location Server API
// @version         1.0
// @description     Reports the city this host appears to be in and accepts arbitrary POST bodies for logging

// @license.name  MIT
// @license.url   http://opensource.org/licenses/MIT

// @host      localhost:1234
// @BasePath  /
func main() {
	appConfig, err := config.Load()
	if err != nil {
		logger.NewDefault().Fatal().Err(err).Msg("Failed to load configuration")
	}

	appLogger := setupLogger(appConfig)

	rateLimiter := setupRateLimiter(appConfig, appLogger)
	defer rateLimiter.Close()

	metricsCollector := metrics.New()

	// Build application layers
	lookupClient := lookup.NewHTTPClient(appConfig.LookupURL, appConfig.LookupTimeout)
	locationService := service.NewLocationService(lookupClient, metricsCollector, appLogger)
	postService := service.NewPostService(metricsCollector, appLogger)

	locationHandler := handler.NewLocationHandler(locationService, postService)
	publicRouter := router.SetupRouter(locationHandler, rateLimiter, metricsCollector, appLogger, appConfig.TrustProxyHeaders)
	adminRouter := router.SetupAdminRouter(prometheus.DefaultGatherer)

	srv := server.New(server.Config{
		Addr:            appConfig.ListenAddr(),
		AdminAddr:       appConfig.AdminAddr,
		ShutdownTimeout: appConfig.ShutdownTimeout,
	}, publicRouter, adminRouter, appLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		appLogger.Info().Msg("Received termination signal, starting graceful shutdown...")
	}()

	if err := srv.Run(ctx); err != nil {
		appLogger.Error().Err(err).Msg("Server failed")
		rateLimiter.Close()
		os.Exit(1)
	}
}

// setupLogger initializes the structured logger
func setupLogger(appConfig *config.Config) *logger.Logger {
	appLogger := logger.New(logger.Config{
		Level:      appConfig.LogLevel,
		Pretty:     appConfig.LogPretty,
		OutputFile: appConfig.LogFile,
	})

	appLogger.Info().
		Str("listen", appConfig.ListenAddr()).
		Str("admin", appConfig.AdminAddr).
		Str("lookup_url", appConfig.LookupURL).
		Dur("lookup_timeout", appConfig.LookupTimeout).
		Str("rate_limiter_type", appConfig.RateLimitType).
		Bool("trust_proxy_headers", appConfig.TrustProxyHeaders).
		Int("rate_limit", appConfig.RateLimit).
		Int("rate_limit_window", appConfig.RateLimitWindow).
		Msg("Configuration loaded")

	return appLogger
}

// setupRateLimiter initializes the rate limiter (none, memory or Redis)
func setupRateLimiter(appConfig *config.Config, log *logger.Logger) limiter.Limiter {
	rateLimiter, err := limiter.New(limiter.Config{
		Type:              appConfig.RateLimitType,
		RequestsPerSecond: appConfig.RequestsPerSecond(),
		RedisAddr:         appConfig.RedisAddr,
		RedisPassword:     appConfig.RedisPassword,
		RedisDB:           appConfig.RedisDB,
		Logger:            log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize rate limiter")
	}

	log.Info().
		Str("type", appConfig.RateLimitType).
		Float64("requests_per_second", appConfig.RequestsPerSecond()).
		Msg("Rate limiter initialized")

	return rateLimiter
}
