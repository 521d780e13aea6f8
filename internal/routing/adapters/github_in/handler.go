// Package githubin handles incoming GitHub webhook events.
package githubin

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	gogithub "github.com/google/go-github/v68/github"

	"github.com/nathantilsley/mono-trigger/internal/routing/domain"
	"github.com/nathantilsley/mono-trigger/internal/routing/ports"
)

// GitHub caps webhook payloads at 25 MB.
const maxPayloadBytes = 25 << 20

const branchRefPrefix = "refs/heads/"

var routableEvents = map[string]bool{
	"ping":         true,
	"push":         true,
	"pull_request": true,
}

// WebhookHandler handles incoming GitHub webhook events.
type WebhookHandler struct {
	useCase       ports.RoutingUseCase
	webhookSecret []byte
	logger        *slog.Logger
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(
	uc ports.RoutingUseCase,
	secret string,
	logger *slog.Logger,
) *WebhookHandler {
	return &WebhookHandler{
		useCase:       uc,
		webhookSecret: []byte(secret),
		logger:        logger,
	}
}

// ServeHTTP validates the webhook signature, converts push and pull
// request deliveries into routing events and responds with the summary.
// Routing runs inline so the caller sees what was triggered.
func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	deliveryID := gogithub.DeliveryID(r)
	log := h.logger.With("delivery", deliveryID)

	r.Body = http.MaxBytesReader(w, r.Body, maxPayloadBytes)
	payload, err := gogithub.ValidatePayload(r, h.webhookSecret)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			log.Error("webhook payload too large", "limit", tooLarge.Limit)
			http.Error(w, "payload too large", http.StatusRequestEntityTooLarge)
			return
		}
		log.Error("invalid webhook signature", "error", err)
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	eventType := gogithub.WebHookType(r)
	if !routableEvents[eventType] {
		log.Info("ignoring event", "event", eventType)
		writeMessage(w, http.StatusAccepted, "ignored: "+eventType+" events are not routed")
		return
	}

	event, err := gogithub.ParseWebHook(eventType, payload)
	if err != nil {
		log.Error("failed to parse webhook", "event", eventType, "error", err)
		http.Error(w, "failed to parse webhook", http.StatusBadRequest)
		return
	}

	var routed domain.PushEvent
	switch e := event.(type) {
	case *gogithub.PingEvent:
		log.Info("ping received", "hook", e.GetHookID())
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("Ping received."))
		return

	case *gogithub.PushEvent:
		ref := e.GetRef()
		if !strings.HasPrefix(ref, branchRefPrefix) {
			log.Info("ignoring non-branch push", "ref", ref)
			writeMessage(w, http.StatusAccepted, "ignored: "+ref+" is not a branch")
			return
		}
		routed = domain.PushEvent{
			Kind:         domain.EventPush,
			Owner:        pushOwner(e),
			RepoName:     e.GetRepo().GetName(),
			Branch:       strings.TrimPrefix(ref, branchRefPrefix),
			ChangedPaths: touchedFiles(e),
		}

	case *gogithub.PullRequestEvent:
		action := e.GetAction()
		if action != "opened" && action != "synchronize" && action != "reopened" {
			log.Info("ignoring pull request action", "action", action)
			writeMessage(w, http.StatusAccepted, "ignored: pull request "+action)
			return
		}
		routed = domain.PushEvent{
			Kind:       domain.EventPullRequest,
			Owner:      e.GetRepo().GetOwner().GetLogin(),
			RepoName:   e.GetRepo().GetName(),
			Branch:     e.GetPullRequest().GetBase().GetRef(),
			HeadBranch: e.GetPullRequest().GetHead().GetRef(),
			Number:     e.GetNumber(),
		}

	default:
		writeMessage(w, http.StatusAccepted, "ignored: "+eventType+" events are not routed")
		return
	}
	routed.DeliveryID = deliveryID

	log.Info("routing delivery",
		"kind", routed.Kind.String(),
		"owner", routed.Owner,
		"repo", routed.RepoName,
		"branch", routed.Branch,
		"paths", len(routed.ChangedPaths),
	)

	summary, err := h.useCase.Execute(r.Context(), routed)
	if err != nil {
		log.Error("routing failed", "error", err)
		http.Error(w, "routing failed", http.StatusInternalServerError)
		return
	}

	status := http.StatusAccepted
	if summary.AllStarted() {
		status = http.StatusOK
	}
	writeJSON(w, status, summary)
}

// touchedFiles collects added, removed and modified paths from every
// commit and then the head commit, in delivery order. Duplicates are left
// for the router to collapse.
func touchedFiles(e *gogithub.PushEvent) []string {
	var files []string
	collect := func(c *gogithub.HeadCommit) {
		if c == nil {
			return
		}
		files = append(files, c.Added...)
		files = append(files, c.Removed...)
		files = append(files, c.Modified...)
	}
	for _, c := range e.Commits {
		collect(c)
	}
	collect(e.HeadCommit)
	return files
}

// pushOwner prefers the owner login, which push payloads sometimes only
// carry as the owner name.
func pushOwner(e *gogithub.PushEvent) string {
	owner := e.GetRepo().GetOwner()
	if login := owner.GetLogin(); login != "" {
		return login
	}
	return owner.GetName()
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
