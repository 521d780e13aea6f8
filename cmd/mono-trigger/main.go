package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/nathantilsley/mono-trigger/internal/platform/config"
	"github.com/nathantilsley/mono-trigger/internal/platform/logger"
	"github.com/nathantilsley/mono-trigger/internal/platform/telemetry"
	"github.com/nathantilsley/mono-trigger/internal/routing/domain"
)

// Set with -ldflags "-X main.version=...".
var version = "dev"

// Exit codes. A rejected routing config gets its own code so deploy
// tooling can tell a bad routes file from a runtime failure.
const (
	exitFailure       = 1
	exitInvalidRoutes = 2
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if domain.IsConfigValidation(err) {
		return exitInvalidRoutes
	}
	return exitFailure
}

func run() error {
	// Optional .env for local development
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()
	tel, err := telemetry.New(ctx, cfg.OTelEnabled, version)
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			log.Error("telemetry shutdown failed", "error", err)
		}
	}()

	// Routing config errors are fatal: never serve with a bad config.
	container, err := NewContainer(ctx, cfg, log, tel)
	if err != nil {
		return fmt.Errorf("building container: %w", err)
	}

	server := NewServer(container)
	return server.Run()
}
