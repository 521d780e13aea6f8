package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseConfig() RoutingConfig {
	return RoutingConfig{
		Structure:       StructureSplit,
		BranchRouteMode: RoutePrefix,
		Branches: []BranchRoute{
			{Branch: "master", Label: "prod"},
			{Branch: "dev", Label: "staging"},
		},
	}
}

func TestRoute_BranchAllowlist(t *testing.T) {
	event := PushEvent{
		Branch:       "feature/x",
		RepoName:     "mono-repo",
		ChangedPaths: []string{"microservice-1/handler.js"},
	}

	got := Route(event, baseConfig())

	assert.Empty(t, got.ToTrigger)
	require.Len(t, got.Skipped, 1)
	assert.Equal(t, SkipBranchNotRouted, got.Skipped[0].Reason)
	assert.Equal(t, "feature/x", got.Skipped[0].Detail)
}

func TestRoute_PrefixNaming(t *testing.T) {
	cfg := baseConfig()
	cfg.PrefixRepoName = true
	cfg.RepoName = "mono-repo"

	got := Route(PushEvent{
		Branch:       "master",
		ChangedPaths: []string{"microservice-1/handler.js"},
	}, cfg)

	assert.Equal(t, []string{"prod-mono-repo-microservice-1"}, got.ToTrigger)
	assert.Empty(t, got.Skipped)
}

func TestRoute_RepoNameFallsBackToEvent(t *testing.T) {
	cfg := baseConfig()
	cfg.PrefixRepoName = true

	got := Route(PushEvent{
		Branch:       "dev",
		RepoName:     "payments",
		ChangedPaths: []string{"api/main.go"},
	}, cfg)

	assert.Equal(t, []string{"staging-payments-api"}, got.ToTrigger)
	assert.Empty(t, cfg.RepoName, "config snapshot must not be modified")
}

func TestRoute_NestedParentPrefix(t *testing.T) {
	cfg := baseConfig()
	cfg.Structure = StructureNested
	cfg.PrefixParentFolder = true
	cfg.BranchRouteMode = RouteNone

	got := Route(PushEvent{
		Branch:       "master",
		ChangedPaths: []string{"service-1/microservice-1/handler.js"},
	}, cfg)

	assert.Equal(t, []string{"service-1-microservice-1"}, got.ToTrigger)
}

func TestRoute_Blacklist(t *testing.T) {
	cfg := baseConfig()
	cfg.Blacklist = []string{"docs"}

	got := Route(PushEvent{
		Branch:       "master",
		ChangedPaths: []string{"docs/readme.md", "api/main.go"},
	}, cfg)

	assert.Equal(t, []string{"prod-api"}, got.ToTrigger)
	require.Len(t, got.Skipped, 1)
	assert.Equal(t, Skip{Project: ProjectIdentifier{Name: "docs"}, Reason: SkipBlacklisted}, got.Skipped[0])
}

func TestRoute_BlacklistedParentFolder(t *testing.T) {
	cfg := baseConfig()
	cfg.Structure = StructureNested
	cfg.Blacklist = []string{"legacy"}

	got := Route(PushEvent{
		Branch:       "master",
		ChangedPaths: []string{"legacy/billing/main.go", "core/auth/main.go"},
	}, cfg)

	assert.Equal(t, []string{"prod-auth"}, got.ToTrigger)
	require.Len(t, got.Skipped, 1)
	assert.Equal(t, SkipBlacklisted, got.Skipped[0].Reason)
	assert.Equal(t, "legacy/billing", got.Skipped[0].Project.String())
}

func TestRoute_BlacklistedGroupingFolder(t *testing.T) {
	cfg := baseConfig()
	cfg.Structure = StructureFull
	cfg.Blacklist = []string{"docs"}

	got := Route(PushEvent{
		Branch:       "master",
		ChangedPaths: []string{"docs/guides/intro/x.md", "services/billing/invoices/main.go"},
	}, cfg)

	assert.Equal(t, []string{"prod-invoices"}, got.ToTrigger)
	require.Len(t, got.Skipped, 1)
	assert.Equal(t, SkipBlacklisted, got.Skipped[0].Reason)
	assert.Equal(t, "docs/guides/intro", got.Skipped[0].Project.String())
}

func TestRoute_RootLevelChangeTriggersNothing(t *testing.T) {
	got := Route(PushEvent{Branch: "master", ChangedPaths: []string{"README.md"}}, baseConfig())

	assert.Empty(t, got.ToTrigger)
	assert.Empty(t, got.Skipped)
	assert.Empty(t, got.Warnings)
}

func TestRoute_DuplicatePathsCollapse(t *testing.T) {
	got := Route(PushEvent{
		Branch: "master",
		ChangedPaths: []string{
			"api/a.go", "api/b.go", "api/a.go", "web/index.ts", "api/internal/c.go",
		},
	}, baseConfig())

	assert.Equal(t, []string{"prod-api", "prod-web"}, got.ToTrigger)
}

func TestRoute_DistinctProjectsSharingANameCollapse(t *testing.T) {
	cfg := baseConfig()
	cfg.Structure = StructureNested

	got := Route(PushEvent{
		Branch:       "master",
		ChangedPaths: []string{"team-a/api/x.go", "team-b/api/y.go"},
	}, cfg)

	assert.Equal(t, []string{"prod-api"}, got.ToTrigger)
}

func TestRoute_InvalidNameIsSkippedNotFatal(t *testing.T) {
	got := Route(PushEvent{
		Branch:       "master",
		ChangedPaths: []string{"my_service/x.py", "api/main.go"},
	}, baseConfig())

	assert.Equal(t, []string{"prod-api"}, got.ToTrigger)
	require.Len(t, got.Skipped, 1)
	assert.Equal(t, SkipInvalidPipelineName, got.Skipped[0].Reason)
	assert.Contains(t, got.Skipped[0].Detail, "prod-my_service")
}

func TestRoute_InvalidPathsBecomeWarnings(t *testing.T) {
	got := Route(PushEvent{
		Branch:       "master",
		ChangedPaths: []string{"../escape/x", "api/main.go"},
	}, baseConfig())

	assert.Equal(t, []string{"prod-api"}, got.ToTrigger)
	require.Len(t, got.Warnings, 1)
	assert.Equal(t, "../escape/x", got.Warnings[0].Path)
}

func TestRoute_PullRequest(t *testing.T) {
	cfg := baseConfig()
	cfg.PullRequest = &PullRequestRoute{Mode: RoutePostfix, Qualifier: "pr"}

	got := Route(PushEvent{
		Kind:         EventPullRequest,
		Branch:       "dev",
		HeadBranch:   "feature/login",
		ChangedPaths: []string{"api/main.go"},
	}, cfg)

	assert.Equal(t, []string{"api-pr"}, got.ToTrigger)
}

func TestRoute_PullRequestWithoutConfig(t *testing.T) {
	got := Route(PushEvent{
		Kind:         EventPullRequest,
		Branch:       "dev",
		ChangedPaths: []string{"api/main.go"},
	}, baseConfig())

	assert.Empty(t, got.ToTrigger)
	require.Len(t, got.Skipped, 1)
	assert.Equal(t, SkipPullRequestNotRouted, got.Skipped[0].Reason)
}

func TestRoute_PullRequestBaseBranchMustBeRouted(t *testing.T) {
	cfg := baseConfig()
	cfg.PullRequest = &PullRequestRoute{Mode: RoutePostfix, Qualifier: "pr"}

	got := Route(PushEvent{
		Kind:         EventPullRequest,
		Branch:       "feature/base",
		ChangedPaths: []string{"api/main.go"},
	}, cfg)

	assert.Empty(t, got.ToTrigger)
	require.Len(t, got.Skipped, 1)
	assert.Equal(t, SkipBranchNotRouted, got.Skipped[0].Reason)
}

func TestRoute_Deterministic(t *testing.T) {
	cfg := baseConfig()
	cfg.Blacklist = []string{"docs"}
	event := PushEvent{
		Branch: "dev",
		ChangedPaths: []string{
			"web/app.ts", "docs/x.md", "api/main.go", "bad_name/x", "../x", "web/b.ts", "README.md",
		},
	}

	first := Route(event, cfg)
	for range 20 {
		assert.Equal(t, first, Route(event, cfg))
	}
	assert.Equal(t, []string{"staging-web", "staging-api"}, first.ToTrigger)
}
