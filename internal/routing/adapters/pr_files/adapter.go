// Package prfiles lists the files touched by a pull request.
package prfiles

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/go-github/v68/github"
)

const perPage = 100

// Adapter implements ports.ChangedFilesPort by querying the GitHub API
// for files changed in a pull request.
type Adapter struct {
	client *github.Client
	logger *slog.Logger
}

// New creates a new PR files adapter.
func New(client *github.Client, logger *slog.Logger) *Adapter {
	return &Adapter{
		client: client,
		logger: logger,
	}
}

// GetChangedFiles returns every path the pull request touches, in API
// order. Renamed files contribute both their old and new path so a move
// out of a project still triggers it.
func (a *Adapter) GetChangedFiles(ctx context.Context, owner, repo string, number int) ([]string, error) {
	var changedFiles []string
	opts := &github.ListOptions{PerPage: perPage}

	for {
		files, resp, err := a.client.PullRequests.ListFiles(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("listing PR files: %w", err)
		}

		for _, file := range files {
			changedFiles = append(changedFiles, file.GetFilename())
			if prev := file.GetPreviousFilename(); prev != "" {
				changedFiles = append(changedFiles, prev)
			}
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	a.logger.Debug("found changed files in PR", "owner", owner, "repo", repo, "pr", number, "count", len(changedFiles))
	return changedFiles, nil
}
