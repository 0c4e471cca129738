package internal

import (
	"errors"
	"fmt"
	"time"
)

// Action classifies a canonical repository event.
type Action string

const (
	ActionPush        Action = "PUSH"
	ActionPullRequest Action = "PULL_REQUEST"
	ActionMerge       Action = "MERGE"
)

// ErrInvalidAction is returned when an event is constructed with an action
// outside the known set.
var ErrInvalidAction = errors.New("invalid action")

// Valid reports whether the action is one of the known values.
func (a Action) Valid() bool {
	switch a {
	case ActionPush, ActionPullRequest, ActionMerge:
		return true
	}
	return false
}

// Event is the canonical record of a repository action. ID is assigned by the
// store on insert and is empty until then. FromBranch is empty for pushes.
type Event struct {
	ID         string `json:"id,omitempty"`
	RequestID  string `json:"request_id"`
	Author     string `json:"author"`
	Action     Action `json:"action"`
	FromBranch string `json:"from_branch"`
	ToBranch   string `json:"to_branch"`
	Timestamp  string `json:"timestamp"`
}

// NewEvent builds an unpersisted event. The timestamp defaults to the current
// UTC time in RFC 3339 when empty.
func NewEvent(requestID, author string, action Action, toBranch, fromBranch, timestamp string) (Event, error) {
	if !action.Valid() {
		return Event{}, fmt.Errorf("%w: %q", ErrInvalidAction, string(action))
	}
	if timestamp == "" {
		timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	return Event{
		RequestID:  requestID,
		Author:     author,
		Action:     action,
		FromBranch: fromBranch,
		ToBranch:   toBranch,
		Timestamp:  timestamp,
	}, nil
}
