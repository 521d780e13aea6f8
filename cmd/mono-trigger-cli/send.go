package main

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/google/go-github/v68/github"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type sendOptions struct {
	url    string
	secret string
	branch string
	owner  string
	repo   string
}

func newSendCmd() *cobra.Command {
	var opts sendOptions

	cmd := &cobra.Command{
		Use:   "send [path...]",
		Short: "Send a signed push delivery to a running server",
		Long: "Build a GitHub push payload touching the given paths, sign it with the\n" +
			"webhook secret and POST it to the server. The secret defaults to\n" +
			"WEBHOOK_SECRET.",
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := changedPaths(cmd, args)
			if err != nil {
				return err
			}
			if opts.secret == "" {
				opts.secret = os.Getenv("WEBHOOK_SECRET")
			}
			if opts.secret == "" {
				return errors.New("webhook secret required: use --secret or WEBHOOK_SECRET")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			return sendPush(ctx, cmd.OutOrStdout(), opts, paths)
		},
	}

	cmd.Flags().StringVar(&opts.url, "url", "http://localhost:8080/webhook", "Webhook URL")
	cmd.Flags().StringVar(&opts.secret, "secret", "", "Webhook secret for signing")
	cmd.Flags().StringVar(&opts.branch, "branch", "", "Branch to push to")
	cmd.Flags().StringVar(&opts.owner, "owner", "local", "Repository owner")
	cmd.Flags().StringVar(&opts.repo, "repo", "", "Repository name")
	_ = cmd.MarkFlagRequired("branch")
	_ = cmd.MarkFlagRequired("repo")

	return cmd
}

func sendPush(ctx context.Context, out io.Writer, opts sendOptions, paths []string) error {
	payload, err := json.Marshal(pushPayload(opts, paths))
	if err != nil {
		return fmt.Errorf("marshaling payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, opts.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	deliveryID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-GitHub-Event", "push")
	req.Header.Set("X-GitHub-Delivery", deliveryID)
	req.Header.Set("X-Hub-Signature-256", "sha256="+signPayload(payload, opts.secret))

	fmt.Fprintf(out, "Sending push to %s\n", opts.url)
	fmt.Fprintf(out, "  Repo: %s/%s\n", opts.owner, opts.repo)
	fmt.Fprintf(out, "  Branch: %s\n", opts.branch)
	fmt.Fprintf(out, "  Paths: %d\n", len(paths))
	fmt.Fprintf(out, "  Delivery: %s\n\n", deliveryID)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	fmt.Fprintf(out, "Status: %d\n", resp.StatusCode)
	if len(body) > 0 {
		fmt.Fprintf(out, "Response: %s\n", bytes.TrimSpace(body))
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

func pushPayload(opts sendOptions, paths []string) *github.PushEvent {
	return &github.PushEvent{
		Ref: github.Ptr("refs/heads/" + opts.branch),
		Commits: []*github.HeadCommit{{
			ID:       github.Ptr(uuid.NewString()),
			Message:  github.Ptr("mono-trigger-cli test push"),
			Modified: paths,
		}},
		Repo: &github.PushEventRepository{
			Name:  github.Ptr(opts.repo),
			Owner: &github.User{Login: github.Ptr(opts.owner)},
		},
	}
}

// signPayload creates HMAC SHA256 signature for the payload
func signPayload(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
