package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gitping/internal"
	"gitping/pkg/storage"
)

// EventView is an event augmented with display renderings for clients.
type EventView struct {
	ID                 string          `json:"id"`
	RequestID          string          `json:"request_id"`
	Author             string          `json:"author"`
	Action             internal.Action `json:"action"`
	FromBranch         string          `json:"from_branch"`
	ToBranch           string          `json:"to_branch"`
	Timestamp          string          `json:"timestamp"`
	FormattedTimestamp string          `json:"formatted_timestamp"`
	Message            string          `json:"message"`
}

func newEventView(event internal.Event) EventView {
	return EventView{
		ID:                 event.ID,
		RequestID:          event.RequestID,
		Author:             event.Author,
		Action:             event.Action,
		FromBranch:         event.FromBranch,
		ToBranch:           event.ToBranch,
		Timestamp:          event.Timestamp,
		FormattedTimestamp: FormatTimestamp(event.Timestamp),
		Message:            EventMessage(event),
	}
}

// EventsHandler serves the read API under /events: the latest-events listing,
// single-event lookup, and the sample reset endpoint.
//
// Store failures on the read path degrade to empty results rather than
// erroring; a write failure is the only 500 this handler produces.
type EventsHandler struct {
	Store        storage.EventStore
	Logger       *log.Logger
	DefaultLimit int
	MaxLimit     int
}

func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/events"), "/")
	switch rest {
	case "":
		h.list(w, r)
	case "sample":
		h.sample(w, r)
	default:
		h.get(w, r, rest)
	}
}

func (h *EventsHandler) list(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := h.DefaultLimit
	if limit == 0 {
		limit = 50
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}
	maxLimit := h.MaxLimit
	if maxLimit == 0 {
		maxLimit = 100
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if limit < 0 {
		limit = 0
	}

	events, err := h.Store.ListLatest(r.Context(), limit)
	if err != nil {
		internal.IncStoreError("list")
		h.logf("list events failed: %v", err)
		events = nil
	}

	views := make([]EventView, 0, len(events))
	for _, event := range events {
		views = append(views, newEventView(event))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"count":  len(views),
		"events": views,
	})
}

func (h *EventsHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	event, err := h.Store.GetByID(r.Context(), id)
	if err != nil {
		internal.IncStoreError("get")
		h.logf("get event %s failed: %v", id, err)
		event = nil
	}
	if event == nil {
		writeError(w, http.StatusNotFound, "Event not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"event":  newEventView(*event),
	})
}

// sample resets the store to three canned events, one per action.
func (h *EventsHandler) sample(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	deleted, err := h.Store.DeleteAll(r.Context())
	if err != nil {
		internal.IncStoreError("delete")
		h.logf("clear events failed: %v", err)
		deleted = 0
	}
	h.logf("deleted %d existing events", deleted)

	now := time.Now().UTC()
	samples := []struct {
		requestID  string
		author     string
		action     internal.Action
		toBranch   string
		fromBranch string
		age        time.Duration
	}{
		{"abc123", "john_doe", internal.ActionPush, "main", "", 2 * time.Hour},
		{"def456", "jane_smith", internal.ActionPullRequest, "main", "feature-branch", time.Hour},
		{"ghi789", "bob_wilson", internal.ActionMerge, "main", "develop", 0},
	}

	ids := make([]string, 0, len(samples))
	for _, sample := range samples {
		event, err := internal.NewEvent(
			sample.requestID,
			sample.author,
			sample.action,
			sample.toBranch,
			sample.fromBranch,
			now.Add(-sample.age).Format(time.RFC3339),
		)
		if err != nil {
			h.logf("build sample event failed: %v", err)
			continue
		}
		id, err := h.Store.Insert(r.Context(), event)
		if err != nil {
			internal.IncStoreError("insert")
			h.logf("save sample event failed: %v", err)
			continue
		}
		ids = append(ids, id)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "success",
		"message":   fmt.Sprintf("Created %d sample events", len(ids)),
		"event_ids": ids,
	})
}

func (h *EventsHandler) logf(format string, args ...interface{}) {
	if h.Logger != nil {
		h.Logger.Printf(format, args...)
	}
}

// HealthHandler reports service liveness.
type HealthHandler struct {
	Service string
}

func (h HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"service":   h.Service,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
