package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateBranch(t *testing.T) {
	routes := []BranchRoute{
		{Branch: "master", Label: "prod"},
		{Branch: "dev", Label: "staging"},
		{Branch: "qa"},
	}

	tests := []struct {
		name   string
		branch string
		mode   BranchRouteMode
		routes []BranchRoute
		want   BranchDecision
	}{
		{
			name:   "labelled route uses the label",
			branch: "master",
			mode:   RoutePrefix,
			routes: routes,
			want:   BranchDecision{Accepted: true, Qualifier: "prod"},
		},
		{
			name:   "bare route uses the branch name",
			branch: "qa",
			mode:   RoutePostfix,
			routes: routes,
			want:   BranchDecision{Accepted: true, Qualifier: "qa"},
		},
		{
			name:   "unlisted branch is rejected",
			branch: "feature/x",
			mode:   RoutePrefix,
			routes: routes,
			want:   BranchDecision{},
		},
		{
			name:   "no glob matching",
			branch: "dev-2",
			mode:   RoutePrefix,
			routes: routes,
			want:   BranchDecision{},
		},
		{
			name:   "match is case sensitive",
			branch: "Master",
			mode:   RoutePrefix,
			routes: routes,
			want:   BranchDecision{},
		},
		{
			name:   "mode none suppresses the qualifier",
			branch: "master",
			mode:   RouteNone,
			routes: routes,
			want:   BranchDecision{Accepted: true},
		},
		{
			name:   "mode none still rejects unlisted branches",
			branch: "feature/x",
			mode:   RouteNone,
			routes: routes,
			want:   BranchDecision{},
		},
		{
			name:   "first duplicate entry wins",
			branch: "master",
			mode:   RoutePrefix,
			routes: []BranchRoute{{Branch: "master", Label: "prod"}, {Branch: "master", Label: "live"}},
			want:   BranchDecision{Accepted: true, Qualifier: "prod"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := RoutingConfig{BranchRouteMode: tt.mode, Branches: tt.routes}
			assert.Equal(t, tt.want, EvaluateBranch(tt.branch, cfg))
		})
	}
}
