package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/lamim/contentforge/internal/api"
	"github.com/lamim/contentforge/internal/config"
	"github.com/lamim/contentforge/internal/metrics"
	"github.com/lamim/contentforge/internal/writer"
)

// app holds what every pipeline command shares for one invocation
type app struct {
	cfg     *config.Config
	secrets *config.Secrets
	session *writer.SessionManager
	logger  *slog.Logger
	logFile *os.File
	metrics *metrics.Collector
	pool    *api.RateLimiterPool
}

// loadConfig loads the env file, then the config file and secrets.
// Variables already present in the environment win over the env file.
func loadConfig() (*config.Config, *config.Secrets, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !os.IsNotExist(err) {
				fmt.Fprintf(os.Stderr, "Warning: failed to load env file: %v\n", err)
			}
		} else if verbose {
			fmt.Fprintf(os.Stderr, "Loaded env file: %s\n", envFile)
		}
	}

	cfg, secrets, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, secrets, nil
}

// newApp sets up the session logger and the shared clients' plumbing
func newApp(cfg *config.Config, secrets *config.Secrets, session *writer.SessionManager) (*app, error) {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}

	logger, logFile, err := writer.SetupLogger(session, logLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logger: %w", err)
	}

	logger.Info("contentforge starting",
		"version", Version,
		"config", configPath,
		"session_dir", session.GetSessionDir())

	return &app{
		cfg:     cfg,
		secrets: secrets,
		session: session,
		logger:  logger,
		logFile: logFile,
		metrics: metrics.NewCollector(logger),
		pool:    api.NewRateLimiterPool(),
	}, nil
}

// serveMetrics exposes /metrics for the lifetime of ctx when configured
func (a *app) serveMetrics(ctx context.Context) {
	addr := a.cfg.Output.MetricsAddr
	if addr == "" {
		return
	}
	go func() {
		if err := a.metrics.Serve(ctx, addr); err != nil {
			a.logger.Warn("Metrics endpoint stopped", "addr", addr, "error", err)
		}
	}()
}

func (a *app) Close() {
	if a.logFile != nil {
		_ = a.logFile.Sync()
		_ = a.logFile.Close()
	}
}
