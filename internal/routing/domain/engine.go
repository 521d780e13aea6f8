package domain

// EventKind distinguishes the deliveries the router understands.
type EventKind int

const (
	EventPush EventKind = iota
	EventPullRequest
)

func (k EventKind) String() string {
	if k == EventPullRequest {
		return "pull_request"
	}
	return "push"
}

// PushEvent is the provider-neutral view of a webhook delivery.
// For pull requests Branch is the base branch and HeadBranch the source.
type PushEvent struct {
	Kind         EventKind
	DeliveryID   string
	Owner        string
	RepoName     string
	Branch       string
	HeadBranch   string
	Number       int
	ChangedPaths []string // delivery order
}

// SkipReason explains why a project produced no pipeline.
type SkipReason string

const (
	SkipBranchNotRouted      SkipReason = "BranchNotRouted"
	SkipPullRequestNotRouted SkipReason = "PullRequestNotRouted"
	SkipBlacklisted          SkipReason = "Blacklisted"
	SkipInvalidPipelineName  SkipReason = "InvalidPipelineName"
)

// Skip records a project (or the whole event) that was not routed.
type Skip struct {
	Project ProjectIdentifier
	Reason  SkipReason
	Detail  string
}

// RoutingResult is the pure output of Route.
type RoutingResult struct {
	ToTrigger []string // deduplicated, first-seen order
	Skipped   []Skip
	Warnings  []*InvalidPathError
}

// Route turns an event into the ordered set of pipelines to trigger.
// It is a pure function of (event, cfg): identical inputs always produce
// identical results, order included, so redelivered webhooks are safe.
func Route(event PushEvent, cfg RoutingConfig) RoutingResult {
	var result RoutingResult

	decision := EvaluateBranch(event.Branch, cfg)
	if !decision.Accepted {
		result.Skipped = []Skip{{Reason: SkipBranchNotRouted, Detail: event.Branch}}
		return result
	}

	mode, qualifier := cfg.BranchRouteMode, decision.Qualifier
	if event.Kind == EventPullRequest {
		if cfg.PullRequest == nil {
			result.Skipped = []Skip{{Reason: SkipPullRequestNotRouted, Detail: event.Branch}}
			return result
		}
		mode, qualifier = cfg.PullRequest.Mode, cfg.PullRequest.Qualifier
	}

	// cfg is a value; filling in the repository name here leaves the
	// caller's snapshot untouched.
	naming := cfg
	if naming.RepoName == "" {
		naming.RepoName = event.RepoName
	}

	classification := Classify(event.ChangedPaths, cfg.Structure)
	result.Warnings = classification.Invalid

	seen := make(map[string]struct{}, len(classification.Projects))
	for _, id := range classification.Projects {
		if isBlacklisted(id, cfg) {
			result.Skipped = append(result.Skipped, Skip{Project: id, Reason: SkipBlacklisted})
			continue
		}

		name, err := ResolveName(id, qualifier, mode, naming)
		if err != nil {
			result.Skipped = append(result.Skipped, Skip{
				Project: id,
				Reason:  SkipInvalidPipelineName,
				Detail:  err.Error(),
			})
			continue
		}

		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		result.ToTrigger = append(result.ToTrigger, name)
	}

	return result
}

// isBlacklisted checks every folder on the project's path.
func isBlacklisted(id ProjectIdentifier, cfg RoutingConfig) bool {
	for _, folder := range []string{id.Group, id.Parent, id.Name} {
		if folder != "" && cfg.IsBlacklisted(folder) {
			return true
		}
	}
	return false
}
