package webhook

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"gitping/internal"
	"gitping/pkg/storage"

	"github.com/go-playground/webhooks/v6/github"
)

// GitHubHandler ingests GitHub webhook deliveries, persists the canonical
// events they normalize to, and fans stored events out through the rule
// engine.
type GitHubHandler struct {
	hook      *github.Webhook
	store     storage.EventStore
	rules     *internal.RuleEngine
	publisher internal.Publisher
	logger    *log.Logger
	maxBody   int64
}

var githubEvents = []github.Event{
	github.PushEvent,
	github.PullRequestEvent,
}

// NewGitHubHandler creates a new GitHubHandler. An empty secret disables
// signature verification.
func NewGitHubHandler(secret string, store storage.EventStore, rules *internal.RuleEngine, publisher internal.Publisher, logger *log.Logger, maxBody int64) (*GitHubHandler, error) {
	options := make([]github.Option, 0, 1)
	if secret != "" {
		options = append(options, github.Options.Secret(secret))
	}
	hook, err := github.New(options...)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}
	return &GitHubHandler{
		hook:      hook,
		store:     store,
		rules:     rules,
		publisher: publisher,
		logger:    logger,
		maxBody:   maxBody,
	}, nil
}

// ServeHTTP handles an incoming GitHub delivery.
func (h *GitHubHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	internal.IncRequest("github")
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}
	reqID := requestID(r)
	w.Header().Set("X-Request-Id", reqID)
	logger := internal.WithRequestID(h.logger, reqID)

	rawBody, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "No payload received")
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(rawBody))
	if len(bytes.TrimSpace(rawBody)) == 0 {
		writeError(w, http.StatusBadRequest, "No payload received")
		return
	}

	eventName := r.Header.Get("X-GitHub-Event")
	payload, err := h.hook.Parse(r, githubEvents...)
	if err != nil {
		if errors.Is(err, github.ErrEventNotFound) {
			h.ignore(w, logger, eventName)
			return
		}
		if errors.Is(err, github.ErrInvalidHTTPMethod) {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		internal.IncParseError("github")
		logger.Printf("github parse failed: %v", err)
		writeError(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	var (
		event internal.Event
		ok    bool
	)
	switch payload.(type) {
	case github.PushPayload:
		event, ok = parsePush(rawBody)
	case github.PullRequestPayload:
		event, ok = routePullRequest(rawBody)
	}
	if !ok {
		h.ignore(w, logger, eventName)
		return
	}

	id, err := h.store.Insert(r.Context(), event)
	if err != nil {
		internal.IncStoreError("insert")
		logger.Printf("save event failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to save event")
		return
	}
	event.ID = id
	internal.IncStored(string(event.Action))
	logger.Printf("stored event id=%s action=%s request_id=%s", id, event.Action, event.RequestID)
	h.fanout(r, logger, event)

	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "success",
		"message":  "Event processed successfully",
		"event_id": id,
	})
}

func (h *GitHubHandler) ignore(w http.ResponseWriter, logger *log.Logger, eventName string) {
	internal.IncIgnored(eventName)
	logger.Printf("ignoring event %q", eventName)
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ignored",
		"message": fmt.Sprintf("Event type %s not processed", eventName),
	})
}

// fanout never affects the HTTP outcome; the event is already durable.
func (h *GitHubHandler) fanout(r *http.Request, logger *log.Logger, event internal.Event) {
	if h.rules == nil || h.publisher == nil {
		return
	}
	for _, match := range h.rules.Evaluate(event) {
		if err := h.publisher.PublishForDrivers(r.Context(), match.Topic, event, match.Drivers); err != nil {
			logger.Printf("publish %s failed: %v", match.Topic, err)
		}
	}
}
