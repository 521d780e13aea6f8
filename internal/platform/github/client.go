// Package github provides authenticated GitHub API clients.
package github

import (
	"fmt"
	"net/http"

	"github.com/bradleyfalzon/ghinstallation/v2"
	gogithub "github.com/google/go-github/v68/github"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// NewClient creates a GitHub API client authenticated as a GitHub App installation.
// The ghinstallation transport automatically handles token renewal.
func NewClient(appID, installationID int64, privateKeyPEM string) (*gogithub.Client, error) {
	transport, err := ghinstallation.New(baseTransport(), appID, installationID, []byte(privateKeyPEM))
	if err != nil {
		return nil, fmt.Errorf("creating github installation transport: %w", err)
	}

	return gogithub.NewClient(&http.Client{Transport: transport}), nil
}

// NewTokenClient creates a GitHub API client authenticated with a personal
// access or Actions token.
func NewTokenClient(token string) *gogithub.Client {
	return gogithub.NewClient(&http.Client{Transport: baseTransport()}).WithAuthToken(token)
}

// baseTransport traces outbound GitHub calls.
func baseTransport() http.RoundTripper {
	return otelhttp.NewTransport(http.DefaultTransport)
}
