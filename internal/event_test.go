package internal

import (
	"errors"
	"testing"
	"time"
)

// TestNewEventValidActions tests that every known action constructs an event.
func TestNewEventValidActions(t *testing.T) {
	for _, action := range []Action{ActionPush, ActionPullRequest, ActionMerge} {
		event, err := NewEvent("abc123", "alice", action, "main", "", "")
		if err != nil {
			t.Fatalf("new event with action %s: %v", action, err)
		}
		if event.Action != action {
			t.Fatalf("expected action %s, got %s", action, event.Action)
		}
	}
}

// TestNewEventInvalidAction tests that an unknown action is rejected.
func TestNewEventInvalidAction(t *testing.T) {
	_, err := NewEvent("abc123", "alice", Action("DELETE"), "main", "", "")
	if err == nil {
		t.Fatalf("expected error for invalid action")
	}
	if !errors.Is(err, ErrInvalidAction) {
		t.Fatalf("expected ErrInvalidAction, got %v", err)
	}
}

// TestNewEventDefaultTimestamp tests that a missing timestamp defaults to the
// current UTC time.
func TestNewEventDefaultTimestamp(t *testing.T) {
	before := time.Now().UTC().Add(-time.Second)
	event, err := NewEvent("abc123", "alice", ActionPush, "main", "", "")
	if err != nil {
		t.Fatalf("new event: %v", err)
	}

	stamp, err := time.Parse(time.RFC3339, event.Timestamp)
	if err != nil {
		t.Fatalf("parse default timestamp %q: %v", event.Timestamp, err)
	}
	if stamp.Before(before) || stamp.After(time.Now().UTC().Add(time.Second)) {
		t.Fatalf("default timestamp %s is not current", event.Timestamp)
	}
}

// TestNewEventKeepsTimestamp tests that a supplied timestamp is stored as-is.
func TestNewEventKeepsTimestamp(t *testing.T) {
	event, err := NewEvent("abc123", "alice", ActionPush, "main", "", "2024-03-07T14:30:00Z")
	if err != nil {
		t.Fatalf("new event: %v", err)
	}
	if event.Timestamp != "2024-03-07T14:30:00Z" {
		t.Fatalf("expected supplied timestamp, got %q", event.Timestamp)
	}
}
