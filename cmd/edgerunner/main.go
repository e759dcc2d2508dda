package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/teilomillet/edgerunner/internal/calculator"
	"github.com/teilomillet/edgerunner/internal/config"
	"github.com/teilomillet/edgerunner/internal/handlers"
	"github.com/teilomillet/edgerunner/internal/metrics"
	"github.com/teilomillet/edgerunner/internal/session"
)

func main() {
	_ = godotenv.Load() // Ignore error if .env doesn't exist

	// Load configuration
	cfg := config.LoadConfig()
	logger := cfg.Log.NewLogger(os.Stderr)
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	sessions := session.NewRegistry(m, logger)
	go sessions.Run(ctx)

	defaults := calculator.Defaults{
		Bankroll: cfg.Kelly.DefaultBankroll,
		StakeCap: cfg.Kelly.StakeCap,
	}
	handler := handlers.NewHandler(ctx, defaults, m, sessions, cfg.Server.AllowedOrigins, logger)

	router := handlers.NewRouter(handler, handlers.RouterOptions{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RequestTimeout: cfg.Server.RequestTimeout,
		Metrics:        m.Handler(),
	})

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().
			Str("addr", server.Addr).
			Float64("default_bankroll", defaults.Bankroll).
			Float64("stake_cap", defaults.StakeCap).
			Msg("edgerunner started")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info().Msg("shutting down gracefully")

	// Stop sessions first so their pumps release the hijacked connections
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
		os.Exit(1)
	}

	logger.Info().Msg("edgerunner stopped")
}
