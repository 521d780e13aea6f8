// Package main provides the mono-trigger webhook server, which starts the
// CodePipeline pipelines of the monorepo projects touched by a push.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	gogithub "github.com/google/go-github/v68/github"

	awsplatform "github.com/nathantilsley/mono-trigger/internal/platform/aws"
	"github.com/nathantilsley/mono-trigger/internal/platform/config"
	ghclient "github.com/nathantilsley/mono-trigger/internal/platform/github"
	"github.com/nathantilsley/mono-trigger/internal/platform/telemetry"
	codepipelineout "github.com/nathantilsley/mono-trigger/internal/routing/adapters/codepipeline_out"
	dryrun "github.com/nathantilsley/mono-trigger/internal/routing/adapters/dry_run"
	githubin "github.com/nathantilsley/mono-trigger/internal/routing/adapters/github_in"
	prfiles "github.com/nathantilsley/mono-trigger/internal/routing/adapters/pr_files"
	routesfile "github.com/nathantilsley/mono-trigger/internal/routing/adapters/routes_file"
	"github.com/nathantilsley/mono-trigger/internal/routing/app"
	"github.com/nathantilsley/mono-trigger/internal/routing/domain"
	"github.com/nathantilsley/mono-trigger/internal/routing/ports"
)

// Container holds all application dependencies.
type Container struct {
	Config         config.Config
	Logger         *slog.Logger
	Routes         domain.RoutingConfig
	TriggerService ports.RoutingUseCase
	WebhookHandler *githubin.WebhookHandler
}

// NewContainer builds and wires all dependencies.
func NewContainer(ctx context.Context, cfg config.Config, log *slog.Logger, tel *telemetry.Telemetry) (*Container, error) {
	routes, err := routesfile.Load(cfg.RoutesFile, log)
	if err != nil {
		return nil, fmt.Errorf("loading routing config: %w", err)
	}

	// Pipeline adapters
	var (
		trigger ports.PipelineTriggerPort
		source  ports.PipelineSourcePort
	)
	if cfg.DryRun {
		log.Warn("dry run enabled, pipelines will not be started")
		adapter := dryrun.New(log)
		trigger, source = adapter, adapter
	} else {
		client, err := awsplatform.NewCodePipelineClient(ctx, awsplatform.Options{
			Region:  cfg.AWSRegion,
			RoleARN: cfg.PipelineRoleARN,
		})
		if err != nil {
			return nil, fmt.Errorf("creating codepipeline client: %w", err)
		}
		adapter := codepipelineout.New(client, log)
		trigger, source = adapter, adapter
	}

	// Pull request files come from the GitHub API, so PR routing needs credentials.
	var changedFiles ports.ChangedFilesPort
	if routes.PullRequest != nil {
		githubClient, err := newGitHubClient(cfg)
		if err != nil {
			return nil, err
		}
		changedFiles = prfiles.New(githubClient, log)
		log.Info("pull request routing enabled",
			"route", routes.PullRequest.Mode,
			"qualifier", routes.PullRequest.Qualifier,
		)
	}

	triggerService := app.NewTriggerService(
		routes,
		trigger,
		source,
		changedFiles, // nil unless pull request routing is configured
		app.Settings{Concurrency: cfg.TriggerConcurrency, DryRun: cfg.DryRun},
		log,
		tel.Meter,
		tel.Tracer,
	)

	webhookHandler := githubin.NewWebhookHandler(triggerService, cfg.WebhookSecret, log)

	return &Container{
		Config:         cfg,
		Logger:         log,
		Routes:         routes,
		TriggerService: triggerService,
		WebhookHandler: webhookHandler,
	}, nil
}

func newGitHubClient(cfg config.Config) (*gogithub.Client, error) {
	if !cfg.GitHubConfigured() {
		return nil, errors.New("pull request routing requires GITHUB_APP_ID, GITHUB_INSTALLATION_ID and GITHUB_PRIVATE_KEY or GITHUB_TOKEN")
	}
	if cfg.GitHubAppConfigured() {
		client, err := ghclient.NewClient(cfg.GitHubAppID, cfg.GitHubInstallationID, cfg.GitHubPrivateKey)
		if err != nil {
			return nil, fmt.Errorf("creating github client: %w", err)
		}
		return client, nil
	}
	return ghclient.NewTokenClient(cfg.GitHubToken), nil
}
