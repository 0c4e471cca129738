package webhook

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"gitping/internal"
	"gitping/pkg/storage"
)

// TestHandler constructs and persists one event directly from the request
// body, bypassing the webhook parsers. Used to exercise the pipeline without
// a real GitHub delivery.
type TestHandler struct {
	Store  storage.EventStore
	Logger *log.Logger
}

type testRequest struct {
	RequestID  string `json:"request_id"`
	Author     string `json:"author"`
	Action     string `json:"action"`
	ToBranch   string `json:"to_branch"`
	FromBranch string `json:"from_branch"`
}

func (h *TestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req testRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if req.RequestID == "" {
		req.RequestID = "test-123"
	}
	if req.Author == "" {
		req.Author = "test-user"
	}
	if req.Action == "" {
		req.Action = string(internal.ActionPush)
	}
	if req.ToBranch == "" {
		req.ToBranch = "main"
	}

	event, err := internal.NewEvent(req.RequestID, req.Author, internal.Action(req.Action), req.ToBranch, req.FromBranch, "")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := h.Store.Insert(r.Context(), event)
	if err != nil {
		internal.IncStoreError("insert")
		if h.Logger != nil {
			h.Logger.Printf("save test event failed: %v", err)
		}
		writeError(w, http.StatusInternalServerError, "Failed to save test event")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "success",
		"message":  "Test event created successfully",
		"event_id": id,
	})
}
