package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	noopmetric "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/nathantilsley/mono-trigger/internal/routing/domain"
	"github.com/nathantilsley/mono-trigger/internal/routing/ports"
)

const defaultConcurrency = 4

// Settings tunes how the service dispatches pipeline starts.
type Settings struct {
	Concurrency int  // parallel StartPipeline calls; <= 0 uses the default
	DryRun      bool // reported in the summary; the trigger adapter does the rest
}

// TriggerService implements ports.RoutingUseCase: it routes a delivery with
// the domain engine, starts every resulting pipeline and summarizes the
// outcomes in routing order.
type TriggerService struct {
	config       domain.RoutingConfig
	trigger      ports.PipelineTriggerPort
	source       ports.PipelineSourcePort // Optional: pull request builds only
	changedFiles ports.ChangedFilesPort   // Optional: pull request builds only
	settings     Settings
	logger       *slog.Logger
	tracer       trace.Tracer
	pipelines    metric.Int64Counter
	skipped      metric.Int64Counter
}

// NewTriggerService creates a TriggerService. source and changedFiles may be
// nil when pull request routing is not configured.
func NewTriggerService(
	cfg domain.RoutingConfig,
	trigger ports.PipelineTriggerPort,
	source ports.PipelineSourcePort,
	changedFiles ports.ChangedFilesPort,
	settings Settings,
	logger *slog.Logger,
	meter metric.Meter,
	tracer trace.Tracer,
) *TriggerService {
	if settings.Concurrency <= 0 {
		settings.Concurrency = defaultConcurrency
	}

	s := &TriggerService{
		config:       cfg,
		trigger:      trigger,
		source:       source,
		changedFiles: changedFiles,
		settings:     settings,
		logger:       logger,
		tracer:       tracer,
	}

	var err error
	s.pipelines, err = meter.Int64Counter("mono_trigger.pipelines",
		metric.WithDescription("Pipeline start attempts by outcome"))
	if err != nil {
		logger.Warn("creating pipelines counter", "error", err)
		s.pipelines = noopmetric.Int64Counter{}
	}
	s.skipped, err = meter.Int64Counter("mono_trigger.skipped",
		metric.WithDescription("Projects not routed, by reason"))
	if err != nil {
		logger.Warn("creating skipped counter", "error", err)
		s.skipped = noopmetric.Int64Counter{}
	}

	return s
}

// Execute routes one delivery and starts the resulting pipelines.
// Per-pipeline problems end up in the summary; an error is returned only
// when the delivery could not be routed at all.
func (s *TriggerService) Execute(ctx context.Context, event domain.PushEvent) (domain.Summary, error) {
	ctx, span := s.tracer.Start(ctx, "routing.execute", trace.WithAttributes(
		attribute.String("event.kind", event.Kind.String()),
		attribute.String("repo", event.RepoName),
		attribute.String("branch", event.Branch),
	))
	defer span.End()

	if event.Kind == domain.EventPullRequest {
		if err := s.loadPullRequestFiles(ctx, &event); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return domain.Summary{}, err
		}
	}

	result := domain.Route(event, s.config)

	for _, w := range result.Warnings {
		s.logger.Warn("dropping invalid changed path",
			"delivery", event.DeliveryID,
			"path", w.Path,
			"reason", w.Reason,
		)
	}
	for _, skip := range result.Skipped {
		s.logger.Info("not routed",
			"delivery", event.DeliveryID,
			"project", skip.Project.String(),
			"reason", skip.Reason,
			"detail", skip.Detail,
		)
		s.skipped.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", string(skip.Reason))))
	}

	if len(result.ToTrigger) == 0 {
		s.logger.Info("no pipelines to trigger", "delivery", event.DeliveryID, "branch", event.Branch)
	} else {
		s.logger.Info("triggering pipelines",
			"delivery", event.DeliveryID,
			"count", len(result.ToTrigger),
			"pipelines", result.ToTrigger,
		)
	}

	outcomes := s.dispatch(ctx, event, result.ToTrigger)

	summary := domain.Summarize(result, outcomes)
	summary.DryRun = s.settings.DryRun

	span.SetAttributes(
		attribute.Int("pipelines.triggered", len(summary.Triggered)),
		attribute.Int("pipelines.not_found", len(summary.NotFound)),
		attribute.Int("pipelines.failed", len(summary.Failed)),
	)
	return summary, nil
}

// loadPullRequestFiles fills in the changed paths of a pull request event.
// Deliveries that routing will reject anyway never reach the GitHub API.
func (s *TriggerService) loadPullRequestFiles(ctx context.Context, event *domain.PushEvent) error {
	if len(event.ChangedPaths) > 0 || s.config.PullRequest == nil {
		return nil
	}
	if !domain.EvaluateBranch(event.Branch, s.config).Accepted {
		return nil
	}
	if s.changedFiles == nil {
		return errors.New("pull request routing requires a GitHub client to list changed files")
	}

	files, err := s.changedFiles.GetChangedFiles(ctx, event.Owner, event.RepoName, event.Number)
	if err != nil {
		return fmt.Errorf("listing pull request files: %w", err)
	}
	s.logger.Debug("loaded pull request files", "pr", event.Number, "count", len(files))

	event.ChangedPaths = files
	return nil
}

// dispatch starts every pipeline with bounded parallelism. Each worker
// writes only its own slot, so outcomes keep the order of names.
func (s *TriggerService) dispatch(ctx context.Context, event domain.PushEvent, names []string) []domain.TriggerOutcome {
	outcomes := make([]domain.TriggerOutcome, len(names))

	var g errgroup.Group
	g.SetLimit(s.settings.Concurrency)
	for i, name := range names {
		g.Go(func() error {
			outcomes[i] = s.start(ctx, event, name)
			return nil
		})
	}
	_ = g.Wait() // workers report through outcomes

	return outcomes
}

func (s *TriggerService) start(ctx context.Context, event domain.PushEvent, name string) domain.TriggerOutcome {
	ctx, span := s.tracer.Start(ctx, "routing.start_pipeline",
		trace.WithAttributes(attribute.String("pipeline", name)))
	defer span.End()

	if event.Kind == domain.EventPullRequest && s.source != nil {
		if err := s.source.SetSourceBranch(ctx, name, event.HeadBranch); err != nil {
			outcome := domain.TriggerOutcome{
				Pipeline: name,
				Status:   domain.TriggerFailed,
				Err:      fmt.Errorf("pointing source at %s: %w", event.HeadBranch, err),
			}
			if errors.Is(err, domain.ErrPipelineNotFound) {
				outcome.Status = domain.TriggerNotFound
			}
			s.record(ctx, span, event, outcome)
			return outcome
		}
	}

	outcome := s.trigger.StartPipeline(ctx, name, requestToken(event.DeliveryID, name))
	outcome.Pipeline = name
	s.record(ctx, span, event, outcome)
	return outcome
}

func (s *TriggerService) record(ctx context.Context, span trace.Span, event domain.PushEvent, o domain.TriggerOutcome) {
	s.pipelines.Add(ctx, 1, metric.WithAttributes(attribute.String("status", o.Status.String())))
	span.SetAttributes(attribute.String("status", o.Status.String()))

	switch o.Status {
	case domain.TriggerStarted:
		s.logger.Info("started pipeline",
			"delivery", event.DeliveryID,
			"pipeline", o.Pipeline,
			"execution", o.ExecutionID,
		)
	case domain.TriggerNotFound:
		s.logger.Warn("pipeline not found", "delivery", event.DeliveryID, "pipeline", o.Pipeline)
	default:
		span.RecordError(o.Err)
		span.SetStatus(codes.Error, "pipeline start failed")
		s.logger.Error("failed to start pipeline",
			"delivery", event.DeliveryID,
			"pipeline", o.Pipeline,
			"error", o.Err,
		)
	}
}

// requestToken derives a stable idempotency token from the delivery and
// pipeline, so a redelivered webhook does not start a second execution.
func requestToken(deliveryID, pipeline string) string {
	if deliveryID == "" {
		return ""
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(deliveryID+"/"+pipeline)).String()
}
