package domain

import (
	"fmt"
	"regexp"
)

// MaxPipelineNameLength is the longest pipeline name the provider accepts.
const MaxPipelineNameLength = 100

var pipelineNamePattern = regexp.MustCompile(`^[A-Za-z0-9-]+$`)

// ResolveName builds the pipeline name for id. The order is fixed because
// names must match pipelines that already exist:
//
//  1. base: name, or parent-name when the id is nested and
//     PrefixParentFolder is set
//  2. repo-base when PrefixRepoName is set
//  3. qualifier-... for RoutePrefix, ...-qualifier for RoutePostfix
//
// Example: qualifier "prod", repo "mono-repo", folder "svc" in prefix mode
// gives "prod-mono-repo-svc".
func ResolveName(id ProjectIdentifier, qualifier string, mode BranchRouteMode, cfg RoutingConfig) (string, error) {
	name := id.Name
	if id.Parent != "" && cfg.PrefixParentFolder {
		name = id.Parent + "-" + name
	}

	if cfg.PrefixRepoName {
		if cfg.RepoName == "" {
			return "", &InvalidPipelineNameError{Name: name, Reason: "repository name prefix requested but repository name is unknown"}
		}
		name = cfg.RepoName + "-" + name
	}

	if qualifier != "" {
		switch mode {
		case RoutePrefix:
			name = qualifier + "-" + name
		case RoutePostfix:
			name = name + "-" + qualifier
		case RouteNone:
		}
	}

	if err := ValidatePipelineName(name); err != nil {
		return "", err
	}
	return name, nil
}

// ValidatePipelineName checks name against the provider naming rules:
// ASCII letters, digits and hyphens, at most MaxPipelineNameLength long.
func ValidatePipelineName(name string) error {
	if len(name) > MaxPipelineNameLength {
		return &InvalidPipelineNameError{
			Name:   name,
			Reason: fmt.Sprintf("longer than %d characters", MaxPipelineNameLength),
		}
	}
	if !pipelineNamePattern.MatchString(name) {
		return &InvalidPipelineNameError{Name: name, Reason: "only letters, digits and hyphens are allowed"}
	}
	return nil
}
