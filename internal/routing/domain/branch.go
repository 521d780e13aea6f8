package domain

// BranchDecision is the outcome of evaluating a branch against the route list.
// An accepted decision with an empty Qualifier applies no qualifier.
type BranchDecision struct {
	Accepted  bool
	Qualifier string
}

// EvaluateBranch looks branch up in the ordered route list by exact match.
// The first matching entry wins. Unlisted branches are rejected. A bare
// entry qualifies with the branch name, a labelled entry with its label,
// and RouteNone suppresses the qualifier entirely.
func EvaluateBranch(branch string, cfg RoutingConfig) BranchDecision {
	for _, route := range cfg.Branches {
		if route.Branch != branch {
			continue
		}
		if cfg.BranchRouteMode == RouteNone {
			return BranchDecision{Accepted: true}
		}
		qualifier := route.Label
		if qualifier == "" {
			qualifier = route.Branch
		}
		return BranchDecision{Accepted: true, Qualifier: qualifier}
	}
	return BranchDecision{}
}
