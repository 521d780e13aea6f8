package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-github/v68/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

const splitRoutes = `
structure: split
branchRoute: prefix
branches:
  - master: prod
blacklist: [docs]
`

func TestRouteCommand(t *testing.T) {
	routes := writeFile(t, "routes.yaml", splitRoutes)

	out, err := execute(t, "", "route", "--routes", routes, "--branch", "master",
		"api/main.go", "docs/readme.md", "../bad", "web/app.ts")
	require.NoError(t, err)

	var got routeOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, []string{"prod-api", "prod-web"}, got.Pipelines)
	require.Len(t, got.Skipped, 1)
	assert.Equal(t, "Blacklisted", got.Skipped[0].Reason)
	assert.Len(t, got.Warnings, 1)
}

func TestRouteCommand_PathsFromStdin(t *testing.T) {
	routes := writeFile(t, "routes.yaml", splitRoutes)

	out, err := execute(t, "api/main.go\n\nweb/app.ts\n", "route", "--routes", routes, "--branch", "master")
	require.NoError(t, err)

	var got routeOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, []string{"prod-api", "prod-web"}, got.Pipelines)
}

func TestRouteCommand_UnroutedBranch(t *testing.T) {
	routes := writeFile(t, "routes.yaml", splitRoutes)

	out, err := execute(t, "", "route", "--routes", routes, "--branch", "feature", "api/main.go")
	require.NoError(t, err)
	assert.Contains(t, out, `"pipelines": []`)
	assert.Contains(t, out, "BranchNotRouted")
}

func TestRouteCommand_BadConfig(t *testing.T) {
	routes := writeFile(t, "routes.yaml", "structure: split\n")

	_, err := execute(t, "", "route", "--routes", routes, "--branch", "master", "api/main.go")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "branchRoute is required")
}

func TestDiffCommand(t *testing.T) {
	oldRoutes := writeFile(t, "old.yaml", splitRoutes)
	newRoutes := writeFile(t, "new.yaml", splitRoutes+"prefixRepoName: true\nrepoName: mono\n")

	out, err := execute(t, "", "diff", "--old", oldRoutes, "--new", newRoutes, "--branch", "master", "api/main.go")
	require.NoError(t, err)
	assert.Contains(t, out, "-prod-api")
	assert.Contains(t, out, "+prod-mono-api")

	out, err = execute(t, "", "diff", "--old", oldRoutes, "--new", oldRoutes, "--branch", "master", "api/main.go")
	require.NoError(t, err)
	assert.Contains(t, out, "pipeline names unchanged")
}

func TestSendCommand(t *testing.T) {
	const secret = "cli-secret"
	var got *github.PushEvent
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload, err := github.ValidatePayload(r, []byte(secret))
		if err != nil {
			http.Error(w, "invalid signature", http.StatusUnauthorized)
			return
		}
		event, err := github.ParseWebHook(github.WebHookType(r), payload)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		got, _ = event.(*github.PushEvent)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"triggered":["prod-api"]}`))
	}))
	defer srv.Close()

	out, err := execute(t, "", "send", "--url", srv.URL, "--secret", secret,
		"--branch", "master", "--repo", "mono", "api/main.go")
	require.NoError(t, err)

	assert.Contains(t, out, "Status: 200")
	require.NotNil(t, got)
	assert.Equal(t, "refs/heads/master", got.GetRef())
	assert.Equal(t, "mono", got.GetRepo().GetName())
	require.Len(t, got.Commits, 1)
	assert.Equal(t, []string{"api/main.go"}, got.Commits[0].Modified)
}

func TestSendCommand_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "invalid signature", http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := execute(t, "", "send", "--url", srv.URL, "--secret", "x",
		"--branch", "master", "--repo", "mono", "api/main.go")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestSendCommand_NeedsSecret(t *testing.T) {
	t.Setenv("WEBHOOK_SECRET", "")

	_, err := execute(t, "", "send", "--branch", "master", "--repo", "mono", "api/main.go")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "webhook secret required")
}
