package domain

import (
	"errors"
	"fmt"
	"slices"
)

// ProjectStructureMode describes how the monorepo lays out its projects.
type ProjectStructureMode string

const (
	// StructureSplit maps each top-level folder to one project.
	StructureSplit ProjectStructureMode = "split"
	// StructureNested maps {service}/{microservice}/ pairs to projects.
	StructureNested ProjectStructureMode = "nested"
	// StructureCombined keeps several entry files in one folder; the folder
	// still maps to exactly one pipeline.
	StructureCombined ProjectStructureMode = "combined"
	// StructureFull maps {group}/{service}/{microservice}/ to the
	// {service}/{microservice} pair, ignoring the grouping folder.
	StructureFull ProjectStructureMode = "full"
)

// Valid reports whether m is a known structure mode.
func (m ProjectStructureMode) Valid() bool {
	switch m {
	case StructureSplit, StructureNested, StructureCombined, StructureFull:
		return true
	}
	return false
}

// BranchRouteMode controls where the branch qualifier goes in a pipeline name.
type BranchRouteMode string

const (
	RoutePrefix  BranchRouteMode = "prefix"
	RoutePostfix BranchRouteMode = "postfix"
	RouteNone    BranchRouteMode = "none"
)

// Valid reports whether m is a known branch route mode.
func (m BranchRouteMode) Valid() bool {
	switch m {
	case RoutePrefix, RoutePostfix, RouteNone:
		return true
	}
	return false
}

// BranchRoute maps a branch to an optional environment label.
// An empty Label means the branch name itself is the qualifier.
type BranchRoute struct {
	Branch string
	Label  string
}

// PullRequestRoute configures naming for pull request deliveries.
type PullRequestRoute struct {
	Mode      BranchRouteMode
	Qualifier string
}

// RoutingConfig is the immutable routing snapshot loaded once at startup.
// Nothing in the routing core mutates it.
type RoutingConfig struct {
	Structure          ProjectStructureMode
	PrefixParentFolder bool
	PrefixRepoName     bool
	RepoName           string // overrides the repository name from the event when set
	BranchRouteMode    BranchRouteMode
	Branches           []BranchRoute // ordered; also the branch allowlist
	Blacklist          []string
	PullRequest        *PullRequestRoute // nil disables pull request routing
}

// Validate checks the config and returns a *ConfigValidationError listing
// every problem, or nil.
func (c RoutingConfig) Validate() error {
	var problems []string

	if !c.Structure.Valid() {
		problems = append(problems, fmt.Sprintf("unknown project structure mode %q", c.Structure))
	}
	if !c.BranchRouteMode.Valid() {
		problems = append(problems, fmt.Sprintf("unknown branch route mode %q", c.BranchRouteMode))
	}
	if len(c.Branches) == 0 {
		problems = append(problems, "at least one branch route is required")
	}
	for i, b := range c.Branches {
		if b.Branch == "" {
			problems = append(problems, fmt.Sprintf("branch route %d has an empty branch name", i))
		}
		if c.BranchRouteMode == RouteNone {
			continue
		}
		qualifier := b.Label
		if qualifier == "" {
			qualifier = b.Branch
		}
		if qualifier == "" {
			continue
		}
		if err := ValidatePipelineName(qualifier); err != nil {
			problems = append(problems, fmt.Sprintf("branch route %d (%s): qualifier %q %s", i, b.Branch, qualifier, nameReason(err)))
		}
	}
	for i, name := range c.Blacklist {
		if name == "" {
			problems = append(problems, fmt.Sprintf("blacklist entry %d is empty", i))
		}
	}
	if pr := c.PullRequest; pr != nil {
		if !pr.Mode.Valid() {
			problems = append(problems, fmt.Sprintf("unknown pull request route mode %q", pr.Mode))
		}
		if pr.Mode != RouteNone {
			if pr.Qualifier == "" {
				problems = append(problems, "pull request qualifier is required unless route mode is none")
			} else if err := ValidatePipelineName(pr.Qualifier); err != nil {
				problems = append(problems, fmt.Sprintf("pull request qualifier %q %s", pr.Qualifier, nameReason(err)))
			}
		}
	}

	if len(problems) > 0 {
		return &ConfigValidationError{Problems: problems}
	}
	return nil
}

// nameReason extracts the rule a qualifier broke.
func nameReason(err error) string {
	var ipn *InvalidPipelineNameError
	if errors.As(err, &ipn) {
		return "is not usable in pipeline names: " + ipn.Reason
	}
	return "is not usable in pipeline names"
}

// IsBlacklisted reports whether folder is excluded from pipeline mapping.
func (c RoutingConfig) IsBlacklisted(folder string) bool {
	return slices.Contains(c.Blacklist, folder)
}

// DuplicateBranches returns branch names that appear more than once in the
// route list, in first-seen order. Only the first entry is ever used.
func (c RoutingConfig) DuplicateBranches() []string {
	seen := make(map[string]int, len(c.Branches))
	var dups []string
	for _, b := range c.Branches {
		seen[b.Branch]++
		if seen[b.Branch] == 2 {
			dups = append(dups, b.Branch)
		}
	}
	return dups
}
