// Package routesfile loads the routing config from a YAML file.
package routesfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nathantilsley/mono-trigger/api"
	"github.com/nathantilsley/mono-trigger/internal/routing/domain"
)

// Load reads and validates the routing config at path. Any problem with
// the file contents is returned as a *domain.ConfigValidationError.
func Load(path string, logger *slog.Logger) (domain.RoutingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.RoutingConfig{}, fmt.Errorf("reading routes file %s: %w", path, err)
	}

	cfg, err := Parse(data, logger)
	if err != nil {
		return domain.RoutingConfig{}, err
	}

	logger.Info("loaded routing config",
		"path", path,
		"structure", cfg.Structure,
		"branchRoute", cfg.BranchRouteMode,
		"branches", len(cfg.Branches),
		"blacklist", len(cfg.Blacklist),
		"pullRequests", cfg.PullRequest != nil,
	)
	return cfg, nil
}

// Parse decodes and validates a routing config document.
func Parse(data []byte, logger *slog.Logger) (domain.RoutingConfig, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return domain.RoutingConfig{}, invalid("routing config is empty")
	}

	var routes api.Routes
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&routes); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.RoutingConfig{}, invalid("routing config is empty")
		}
		return domain.RoutingConfig{}, invalid(fmt.Sprintf("parsing YAML: %s", err))
	}

	var missing []string
	if routes.Structure == "" {
		missing = append(missing, "structure is required")
	}
	if routes.BranchRoute == "" {
		missing = append(missing, "branchRoute is required")
	}
	if len(missing) > 0 {
		return domain.RoutingConfig{}, &domain.ConfigValidationError{Problems: missing}
	}

	cfg := toDomain(routes)
	if err := cfg.Validate(); err != nil {
		return domain.RoutingConfig{}, err
	}

	for _, b := range cfg.DuplicateBranches() {
		logger.Warn("branch listed more than once, first entry wins", "branch", b)
	}

	return cfg, nil
}

func toDomain(r api.Routes) domain.RoutingConfig {
	cfg := domain.RoutingConfig{
		Structure:          domain.ProjectStructureMode(r.Structure),
		PrefixParentFolder: r.PrefixParentFolder,
		PrefixRepoName:     r.PrefixRepoName,
		RepoName:           r.RepoName,
		BranchRouteMode:    domain.BranchRouteMode(r.BranchRoute),
		Blacklist:          r.Blacklist,
	}
	for _, b := range r.Branches {
		cfg.Branches = append(cfg.Branches, domain.BranchRoute{Branch: b.Name, Label: b.Label})
	}
	if r.PullRequest != nil {
		cfg.PullRequest = &domain.PullRequestRoute{
			Mode:      domain.BranchRouteMode(r.PullRequest.Route),
			Qualifier: r.PullRequest.Qualifier,
		}
	}
	return cfg
}

func invalid(problem string) error {
	return &domain.ConfigValidationError{Problems: []string{problem}}
}
