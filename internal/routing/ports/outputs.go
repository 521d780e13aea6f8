package ports

import (
	"context"

	"github.com/nathantilsley/mono-trigger/internal/routing/domain"
)

// PipelineTriggerPort abstracts starting a named pipeline. Per-pipeline
// problems are reported in the outcome, never as a separate error.
// requestToken, when non-empty, lets the provider drop duplicate starts.
type PipelineTriggerPort interface {
	StartPipeline(ctx context.Context, name, requestToken string) domain.TriggerOutcome
}

// PipelineSourcePort abstracts pointing a pipeline's source stage at a
// branch before it runs (pull request builds). Implementations wrap
// domain.ErrPipelineNotFound when the pipeline does not exist.
type PipelineSourcePort interface {
	SetSourceBranch(ctx context.Context, pipeline, branch string) error
}

// ChangedFilesPort abstracts listing the files touched by a pull request.
type ChangedFilesPort interface {
	GetChangedFiles(ctx context.Context, owner, repo string, number int) ([]string, error)
}

// NameDiffPort abstracts rendering the difference between two lists of
// pipeline names. Returns "" when they are equal.
type NameDiffPort interface {
	ComputeDiff(oldName string, oldNames []string, newName string, newNames []string) string
}
