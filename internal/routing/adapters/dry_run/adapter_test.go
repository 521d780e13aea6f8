package dryrun

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nathantilsley/mono-trigger/internal/routing/domain"
)

func TestStartPipeline(t *testing.T) {
	var buf bytes.Buffer
	a := New(slog.New(slog.NewTextHandler(&buf, nil)))

	got := a.StartPipeline(context.Background(), "prod-api", "tok")

	assert.Equal(t, domain.TriggerOutcome{Pipeline: "prod-api", Status: domain.TriggerStarted, ExecutionID: "dry-run-tok"}, got)
	assert.Contains(t, buf.String(), "pipeline=prod-api")
}

func TestStartPipeline_GeneratesID(t *testing.T) {
	a := New(slog.New(slog.DiscardHandler))

	first := a.StartPipeline(context.Background(), "prod-api", "")
	second := a.StartPipeline(context.Background(), "prod-api", "")

	assert.NotEqual(t, first.ExecutionID, second.ExecutionID)
}

func TestSetSourceBranch(t *testing.T) {
	assert.NoError(t, New(slog.New(slog.DiscardHandler)).SetSourceBranch(context.Background(), "api-pr", "fix"))
}
