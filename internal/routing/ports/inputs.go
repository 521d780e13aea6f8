package ports

import (
	"context"

	"github.com/nathantilsley/mono-trigger/internal/routing/domain"
)

// RoutingUseCase is the driving port for routing a webhook delivery to
// pipeline executions.
type RoutingUseCase interface {
	Execute(ctx context.Context, event domain.PushEvent) (domain.Summary, error)
}
