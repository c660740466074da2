package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/streamsync/subsync/internal/aligner"
	"github.com/streamsync/subsync/internal/api"
	"github.com/streamsync/subsync/internal/config"
	"github.com/streamsync/subsync/internal/health"
	"github.com/streamsync/subsync/internal/media"
	"github.com/streamsync/subsync/internal/metrics"
	"github.com/streamsync/subsync/internal/syncer"
)

func main() {
	cfg := config.GetConfig()
	logger := config.GetLogger()

	logger.Info().
		Int("server_port", cfg.Server.Port).
		Str("server_address", cfg.Server.Address).
		Str("ffmpeg", cfg.Tools.FFmpeg).
		Str("ffsubsync", cfg.Tools.FFsubsync).
		Str("alass", cfg.Tools.Alass).
		Dur("audio_duration", cfg.AudioDuration()).
		Msg("Application started with configuration")

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN}); err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize Sentry, continuing without it")
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	fetcher := media.NewFetcher(cfg.Tools.FFmpeg, cfg.FetchTimeout())
	primary := aligner.NewFFsubsync(cfg.Tools.FFsubsync, cfg.Sync.MaxOffsetSeconds)
	fallback := aligner.NewAlass(cfg.Tools.Alass)

	service := syncer.NewService(fetcher, primary, fallback, syncer.Options{
		AudioDuration:         cfg.AudioDuration(),
		FetchTimeout:          cfg.FetchTimeout(),
		PrimaryTimeout:        cfg.PrimaryTimeout(),
		FallbackTimeout:       cfg.FallbackTimeout(),
		MinConfidence:         cfg.Sync.MinConfidence,
		FallbackMinConfidence: cfg.Sync.FallbackMinConf,
		MaxSamples:            cfg.Sync.MaxSamples,
		ScratchRoot:           cfg.ScratchRoot(),
	})

	checker := health.NewChecker(fetcher, primary, fallback, health.DefaultTTL)
	router := api.NewRouter(service, checker, cfg.CORS.AllowedOrigins, cfg.AudioDuration())

	// Start Prometheus metrics HTTP server
	if cfg.Metrics.Enabled {
		metricsServer := metrics.NewHTTPServer(cfg.Server.Address, cfg.Metrics.Port)
		go func() {
			logger.Info().Str("address", metricsServer.Addr).Msg("Starting Prometheus metrics HTTP server")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Fatal().Err(err).Msg("Failed to serve metrics")
			}
		}()
		defer func() {
			if err := metricsServer.Shutdown(context.Background()); err != nil {
				logger.Error().Err(err).Msg("Failed to shutdown metrics server")
			}
		}()
	}

	address := net.JoinHostPort(cfg.Server.Address, strconv.Itoa(cfg.Server.Port))
	server := &http.Server{
		Addr:    address,
		Handler: router,
		// Synchronization requests legitimately run for minutes; the write
		// timeout must cover the full request budget.
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.FetchTimeout() + cfg.PrimaryTimeout() + cfg.FallbackTimeout() + 30*time.Second,
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("Failed to shutdown server gracefully")
		}
	}()

	logger.Info().Str("address", address).Msg("Starting HTTP server")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("Failed to serve")
	}

	logger.Info().Msg("Server stopped gracefully")
}
