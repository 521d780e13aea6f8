package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	routesfile "github.com/nathantilsley/mono-trigger/internal/routing/adapters/routes_file"
	"github.com/nathantilsley/mono-trigger/internal/routing/domain"
)

type routeOptions struct {
	routesFile  string
	branch      string
	repo        string
	pullRequest bool
}

// routeOutput is what the server would try to start, without starting it.
type routeOutput struct {
	Pipelines []string              `json:"pipelines"`
	Skipped   []domain.SkippedEntry `json:"skipped"`
	Warnings  []string              `json:"warnings"`
}

func newRouteCmd() *cobra.Command {
	var opts routeOptions

	cmd := &cobra.Command{
		Use:   "route [path...]",
		Short: "Print the pipelines a push would trigger",
		Long: "Route changed paths through a routing config and print the resulting\n" +
			"pipeline names, skips and warnings as JSON. Paths are read from stdin\n" +
			"when none are given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := changedPaths(cmd, args)
			if err != nil {
				return err
			}
			cfg, err := routesfile.Load(opts.routesFile, cliLogger(cmd))
			if err != nil {
				return err
			}

			result := domain.Route(opts.event(paths), cfg)
			summary := domain.Summarize(result, nil)
			out := routeOutput{
				Pipelines: result.ToTrigger,
				Skipped:   summary.Skipped,
				Warnings:  summary.Warnings,
			}
			if out.Pipelines == nil {
				out.Pipelines = []string{}
			}

			body, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding result: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(body))
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.routesFile, "routes", "routes.yaml", "Routing config file")
	cmd.Flags().StringVar(&opts.branch, "branch", "", "Branch pushed to (base branch with --pull-request)")
	cmd.Flags().StringVar(&opts.repo, "repo", "", "Repository name, used when repoName is not configured")
	cmd.Flags().BoolVar(&opts.pullRequest, "pull-request", false, "Route as a pull request against --branch")
	_ = cmd.MarkFlagRequired("branch")

	return cmd
}

func (o routeOptions) event(paths []string) domain.PushEvent {
	kind := domain.EventPush
	if o.pullRequest {
		kind = domain.EventPullRequest
	}
	return domain.PushEvent{
		Kind:         kind,
		RepoName:     o.repo,
		Branch:       o.branch,
		ChangedPaths: paths,
	}
}
