// Package dryrun reports pipelines as started without calling AWS.
package dryrun

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/nathantilsley/mono-trigger/internal/routing/domain"
)

// Adapter implements ports.PipelineTriggerPort and ports.PipelineSourcePort
// by logging what would have happened.
type Adapter struct {
	logger *slog.Logger
}

// New creates a new dry run adapter.
func New(logger *slog.Logger) *Adapter {
	return &Adapter{logger: logger}
}

// StartPipeline logs the start and reports it as successful. The
// execution ID is derived from the request token when there is one.
func (a *Adapter) StartPipeline(_ context.Context, name, requestToken string) domain.TriggerOutcome {
	id := requestToken
	if id == "" {
		id = uuid.NewString()
	}
	a.logger.Info("dry run: would start pipeline", "pipeline", name, "execution", id)
	return domain.TriggerOutcome{
		Pipeline:    name,
		Status:      domain.TriggerStarted,
		ExecutionID: "dry-run-" + id,
	}
}

// SetSourceBranch logs the source change.
func (a *Adapter) SetSourceBranch(_ context.Context, pipeline, branch string) error {
	a.logger.Info("dry run: would point pipeline source at branch", "pipeline", pipeline, "branch", branch)
	return nil
}
