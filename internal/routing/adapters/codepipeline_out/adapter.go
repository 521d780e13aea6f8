// Package codepipelineout starts AWS CodePipeline executions.
package codepipelineout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/codepipeline"
	"github.com/aws/aws-sdk-go-v2/service/codepipeline/types"

	"github.com/nathantilsley/mono-trigger/internal/routing/domain"
)

// Source action configuration keys that select the branch. CodeStar
// connections and CodeCommit use BranchName, GitHub (version 1) Branch.
var branchKeys = []string{"BranchName", "Branch"}

// API is the subset of *codepipeline.Client the adapter uses.
type API interface {
	StartPipelineExecution(ctx context.Context, in *codepipeline.StartPipelineExecutionInput, optFns ...func(*codepipeline.Options)) (*codepipeline.StartPipelineExecutionOutput, error)
	GetPipeline(ctx context.Context, in *codepipeline.GetPipelineInput, optFns ...func(*codepipeline.Options)) (*codepipeline.GetPipelineOutput, error)
	UpdatePipeline(ctx context.Context, in *codepipeline.UpdatePipelineInput, optFns ...func(*codepipeline.Options)) (*codepipeline.UpdatePipelineOutput, error)
}

// Adapter implements ports.PipelineTriggerPort and ports.PipelineSourcePort
// against AWS CodePipeline.
type Adapter struct {
	api    API
	logger *slog.Logger
}

// New creates a new CodePipeline adapter.
func New(api API, logger *slog.Logger) *Adapter {
	return &Adapter{api: api, logger: logger}
}

// StartPipeline starts an execution of the named pipeline. A missing
// pipeline is reported as NotFound; every other error as Failed.
func (a *Adapter) StartPipeline(ctx context.Context, name, requestToken string) domain.TriggerOutcome {
	in := &codepipeline.StartPipelineExecutionInput{Name: aws.String(name)}
	if requestToken != "" {
		in.ClientRequestToken = aws.String(requestToken)
	}

	out, err := a.api.StartPipelineExecution(ctx, in)
	if err != nil {
		if isNotFound(err) {
			return domain.TriggerOutcome{Pipeline: name, Status: domain.TriggerNotFound}
		}
		return domain.TriggerOutcome{
			Pipeline: name,
			Status:   domain.TriggerFailed,
			Err:      fmt.Errorf("starting pipeline %s: %w", name, err),
		}
	}

	return domain.TriggerOutcome{
		Pipeline:    name,
		Status:      domain.TriggerStarted,
		ExecutionID: aws.ToString(out.PipelineExecutionId),
	}
}

// SetSourceBranch points every source action of the pipeline that has a
// branch setting at branch. The pipeline is only updated when something
// changed.
func (a *Adapter) SetSourceBranch(ctx context.Context, pipeline, branch string) error {
	got, err := a.api.GetPipeline(ctx, &codepipeline.GetPipelineInput{Name: aws.String(pipeline)})
	if err != nil {
		if isNotFound(err) {
			return fmt.Errorf("getting pipeline %s: %w", pipeline, domain.ErrPipelineNotFound)
		}
		return fmt.Errorf("getting pipeline %s: %w", pipeline, err)
	}
	if got.Pipeline == nil {
		return fmt.Errorf("getting pipeline %s: empty declaration", pipeline)
	}

	found, changed := setBranch(got.Pipeline, branch)
	if !found {
		return fmt.Errorf("pipeline %s has no source action with a branch setting", pipeline)
	}
	if !changed {
		a.logger.Debug("pipeline source already on branch", "pipeline", pipeline, "branch", branch)
		return nil
	}

	if _, err := a.api.UpdatePipeline(ctx, &codepipeline.UpdatePipelineInput{Pipeline: got.Pipeline}); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("updating pipeline %s: %w", pipeline, domain.ErrPipelineNotFound)
		}
		return fmt.Errorf("updating pipeline %s: %w", pipeline, err)
	}

	a.logger.Info("pointed pipeline source at branch", "pipeline", pipeline, "branch", branch)
	return nil
}

// setBranch rewrites the branch of every source action in place and
// reports whether any source action carried a branch and whether any
// value changed.
func setBranch(p *types.PipelineDeclaration, branch string) (found, changed bool) {
	for si := range p.Stages {
		actions := p.Stages[si].Actions
		for ai := range actions {
			action := &actions[ai]
			if action.ActionTypeId == nil || action.ActionTypeId.Category != types.ActionCategorySource {
				continue
			}
			for _, key := range branchKeys {
				current, ok := action.Configuration[key]
				if !ok {
					continue
				}
				found = true
				if current != branch {
					action.Configuration[key] = branch
					changed = true
				}
				break
			}
		}
	}
	return found, changed
}

func isNotFound(err error) bool {
	var nf *types.PipelineNotFoundException
	return errors.As(err, &nf)
}
