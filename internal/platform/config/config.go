// Package config provides application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	Port          int
	WebhookSecret string
	LogLevel      string
	LogFormat     string // "json" or colored text

	RoutesFile string // YAML routing config, read once at startup

	// AWS CodePipeline
	AWSRegion          string // empty uses the SDK's default resolution
	PipelineRoleARN    string // optional role assumed for cross-account pipelines
	DryRun             bool   // log instead of starting pipelines
	TriggerConcurrency int

	// GitHub credentials, only needed to list pull request files.
	GitHubAppID          int64
	GitHubInstallationID int64
	GitHubPrivateKey     string // PEM file contents
	GitHubToken          string

	// OpenTelemetry (optional)
	OTelEnabled bool // OTEL_ENABLED feature flag
}

var knownKeys = []string{
	"PORT",
	"WEBHOOK_SECRET",
	"LOG_LEVEL",
	"LOG_FORMAT",
	"ROUTES_FILE",
	"AWS_REGION",
	"PIPELINE_ROLE_ARN",
	"DRY_RUN",
	"TRIGGER_CONCURRENCY",
	"GITHUB_APP_ID",
	"GITHUB_INSTALLATION_ID",
	"GITHUB_PRIVATE_KEY",
	"GITHUB_TOKEN",
	"OTEL_ENABLED",
}

// Load reads configuration from environment variables, validates required
// fields, and applies defaults for Port (8080), LogLevel ("info"),
// RoutesFile ("routes.yaml") and TriggerConcurrency (4).
func Load() (Config, error) {
	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string {
		for _, key := range knownKeys {
			if s == key {
				return key
			}
		}
		return ""
	}), nil); err != nil {
		return Config{}, fmt.Errorf("reading environment: %w", err)
	}

	cfg := Config{
		Port:               8080,
		LogLevel:           "info",
		RoutesFile:         "routes.yaml",
		TriggerConcurrency: 4,
	}

	if err := loadCoreConfig(k, &cfg); err != nil {
		return Config{}, err
	}
	if err := loadPipelineConfig(k, &cfg); err != nil {
		return Config{}, err
	}
	if err := loadGitHubConfig(k, &cfg); err != nil {
		return Config{}, err
	}

	cfg.OTelEnabled = k.String("OTEL_ENABLED") == "true"

	return cfg, nil
}

// GitHubAppConfigured reports whether GitHub App credentials are set.
func (c Config) GitHubAppConfigured() bool {
	return c.GitHubAppID != 0
}

// GitHubConfigured reports whether any GitHub credentials are set.
func (c Config) GitHubConfigured() bool {
	return c.GitHubAppConfigured() || c.GitHubToken != ""
}

func loadCoreConfig(k *koanf.Koanf, cfg *Config) error {
	if v := k.String("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p < 1 || p > 65535 {
			return fmt.Errorf("invalid PORT %q", v)
		}
		cfg.Port = p
	}

	cfg.WebhookSecret = k.String("WEBHOOK_SECRET")
	if cfg.WebhookSecret == "" {
		return errors.New("WEBHOOK_SECRET is required")
	}

	if v := k.String("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	cfg.LogFormat = strings.ToLower(k.String("LOG_FORMAT"))

	if v := k.String("ROUTES_FILE"); v != "" {
		cfg.RoutesFile = v
	}

	return nil
}

func loadPipelineConfig(k *koanf.Koanf, cfg *Config) error {
	cfg.AWSRegion = k.String("AWS_REGION")
	cfg.PipelineRoleARN = k.String("PIPELINE_ROLE_ARN")

	if v := k.String("DRY_RUN"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid DRY_RUN %q: %w", v, err)
		}
		cfg.DryRun = b
	}

	if v := k.String("TRIGGER_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return fmt.Errorf("invalid TRIGGER_CONCURRENCY %q: must be a positive integer", v)
		}
		cfg.TriggerConcurrency = n
	}

	return nil
}

func loadGitHubConfig(k *koanf.Koanf, cfg *Config) error {
	cfg.GitHubToken = k.String("GITHUB_TOKEN")

	appID := k.String("GITHUB_APP_ID")
	installationID := k.String("GITHUB_INSTALLATION_ID")
	privateKey := k.String("GITHUB_PRIVATE_KEY")
	if appID == "" && installationID == "" && privateKey == "" {
		return nil // GitHub App auth is optional
	}

	var err error
	cfg.GitHubAppID, err = parseRequiredInt64(k, "GITHUB_APP_ID")
	if err != nil {
		return err
	}
	cfg.GitHubInstallationID, err = parseRequiredInt64(k, "GITHUB_INSTALLATION_ID")
	if err != nil {
		return err
	}
	if privateKey == "" {
		return errors.New("GITHUB_PRIVATE_KEY is required")
	}
	cfg.GitHubPrivateKey = privateKey

	return nil
}

func parseRequiredInt64(k *koanf.Koanf, envKey string) (int64, error) {
	v := k.String(envKey)
	if v == "" {
		return 0, fmt.Errorf("%s is required", envKey)
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, v, err)
	}
	return id, nil
}
