package main

import (
	"fmt"

	"github.com/spf13/cobra"

	namediff "github.com/nathantilsley/mono-trigger/internal/routing/adapters/name_diff"
	routesfile "github.com/nathantilsley/mono-trigger/internal/routing/adapters/routes_file"
	"github.com/nathantilsley/mono-trigger/internal/routing/domain"
	"github.com/nathantilsley/mono-trigger/internal/routing/ports"
)

func newDiffCmd() *cobra.Command {
	var (
		oldFile, newFile string
		opts             routeOptions
	)

	cmd := &cobra.Command{
		Use:   "diff [path...]",
		Short: "Compare pipeline names produced by two routing configs",
		Long: "Route the same changed paths through two routing configs and print a\n" +
			"unified diff of the resulting pipeline names. Use it to check that a\n" +
			"config change keeps existing pipelines reachable.",
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := changedPaths(cmd, args)
			if err != nil {
				return err
			}
			log := cliLogger(cmd)

			oldCfg, err := routesfile.Load(oldFile, log)
			if err != nil {
				return fmt.Errorf("old config: %w", err)
			}
			newCfg, err := routesfile.Load(newFile, log)
			if err != nil {
				return fmt.Errorf("new config: %w", err)
			}

			event := opts.event(paths)
			text := diffNames(namediff.New(),
				oldFile, domain.Route(event, oldCfg).ToTrigger,
				newFile, domain.Route(event, newCfg).ToTrigger,
			)
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}

	cmd.Flags().StringVar(&oldFile, "old", "", "Current routing config")
	cmd.Flags().StringVar(&newFile, "new", "", "Proposed routing config")
	cmd.Flags().StringVar(&opts.branch, "branch", "", "Branch pushed to")
	cmd.Flags().StringVar(&opts.repo, "repo", "", "Repository name, used when repoName is not configured")
	cmd.Flags().BoolVar(&opts.pullRequest, "pull-request", false, "Route as a pull request against --branch")
	_ = cmd.MarkFlagRequired("old")
	_ = cmd.MarkFlagRequired("new")
	_ = cmd.MarkFlagRequired("branch")

	return cmd
}

func diffNames(d ports.NameDiffPort, oldName string, oldNames []string, newName string, newNames []string) string {
	if text := d.ComputeDiff(oldName, oldNames, newName, newNames); text != "" {
		return text
	}
	return "pipeline names unchanged"
}
