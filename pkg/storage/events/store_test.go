package events

import (
	"context"
	"path/filepath"
	"testing"

	"gitping/internal"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(Config{
		Driver:      "sqlite",
		DSN:         filepath.Join(t.TempDir(), "events.db"),
		AutoMigrate: true,
	})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return store
}

// TestInsertAndGet tests the insert and lookup round trip.
func TestInsertAndGet(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	event := internal.Event{
		RequestID: "abc123",
		Author:    "alice",
		Action:    internal.ActionPush,
		ToBranch:  "main",
		Timestamp: "2024-03-07T14:30:00Z",
	}
	id, err := store.Insert(ctx, event)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if id == "" {
		t.Fatalf("expected assigned id")
	}

	got, err := store.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if got == nil {
		t.Fatalf("expected event for id %s", id)
	}
	if got.ID != id {
		t.Fatalf("expected id %s, got %s", id, got.ID)
	}
	if got.RequestID != "abc123" || got.Author != "alice" || got.Action != internal.ActionPush {
		t.Fatalf("unexpected event: %+v", got)
	}
	if got.ToBranch != "main" || got.FromBranch != "" || got.Timestamp != "2024-03-07T14:30:00Z" {
		t.Fatalf("unexpected event: %+v", got)
	}
}

// TestInsertRejectsInvalidAction tests that the store refuses actions outside
// the canonical set.
func TestInsertRejectsInvalidAction(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Insert(context.Background(), internal.Event{
		RequestID: "abc123",
		Author:    "alice",
		Action:    "REBASE",
		ToBranch:  "main",
		Timestamp: "2024-03-07T14:30:00Z",
	})
	if err == nil {
		t.Fatalf("expected error for invalid action")
	}
}

// TestListLatestOrdersAndLimits tests descending timestamp order and the
// limit cap.
func TestListLatestOrdersAndLimits(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	timestamps := []string{
		"2024-03-07T12:00:00Z",
		"2024-03-07T14:00:00Z",
		"2024-03-07T13:00:00Z",
	}
	for i, ts := range timestamps {
		_, err := store.Insert(ctx, internal.Event{
			RequestID: "req-" + string(rune('a'+i)),
			Author:    "alice",
			Action:    internal.ActionPush,
			ToBranch:  "main",
			Timestamp: ts,
		})
		if err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	events, err := store.ListLatest(ctx, 10)
	if err != nil {
		t.Fatalf("list latest: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].Timestamp != "2024-03-07T14:00:00Z" || events[2].Timestamp != "2024-03-07T12:00:00Z" {
		t.Fatalf("expected descending order, got %+v", events)
	}

	events, err = store.ListLatest(ctx, 2)
	if err != nil {
		t.Fatalf("list latest with limit: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
}

// TestListLatestTiesBreakOnID tests that events sharing a timestamp come back
// newest insert first.
func TestListLatestTiesBreakOnID(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for _, reqID := range []string{"first", "second"} {
		_, err := store.Insert(ctx, internal.Event{
			RequestID: reqID,
			Author:    "alice",
			Action:    internal.ActionPush,
			ToBranch:  "main",
			Timestamp: "2024-03-07T14:00:00Z",
		})
		if err != nil {
			t.Fatalf("insert %s: %v", reqID, err)
		}
	}

	events, err := store.ListLatest(ctx, 10)
	if err != nil {
		t.Fatalf("list latest: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].RequestID != "second" {
		t.Fatalf("expected newest insert first, got %+v", events)
	}
}

// TestListLatestNonPositiveLimit tests that a non-positive limit yields an
// empty slice.
func TestListLatestNonPositiveLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	_, err := store.Insert(ctx, internal.Event{
		RequestID: "abc123",
		Author:    "alice",
		Action:    internal.ActionPush,
		ToBranch:  "main",
		Timestamp: "2024-03-07T14:00:00Z",
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	for _, limit := range []int{0, -5} {
		events, err := store.ListLatest(ctx, limit)
		if err != nil {
			t.Fatalf("list latest with limit %d: %v", limit, err)
		}
		if len(events) != 0 {
			t.Fatalf("expected empty slice for limit %d, got %d events", limit, len(events))
		}
	}
}

// TestGetByIDNotFound tests that unknown and malformed ids both report not
// found without an error.
func TestGetByIDNotFound(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"999", "not-a-number", ""} {
		event, err := store.GetByID(ctx, id)
		if err != nil {
			t.Fatalf("get by id %q: %v", id, err)
		}
		if event != nil {
			t.Fatalf("expected nil event for id %q, got %+v", id, event)
		}
	}
}

// TestDeleteAll tests that clearing the table reports the removed row count.
func TestDeleteAll(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := store.Insert(ctx, internal.Event{
			RequestID: "abc123",
			Author:    "alice",
			Action:    internal.ActionPush,
			ToBranch:  "main",
			Timestamp: "2024-03-07T14:00:00Z",
		})
		if err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	deleted, err := store.DeleteAll(ctx)
	if err != nil {
		t.Fatalf("delete all: %v", err)
	}
	if deleted != 3 {
		t.Fatalf("expected 3 deleted, got %d", deleted)
	}

	events, err := store.ListLatest(ctx, 10)
	if err != nil {
		t.Fatalf("list latest: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected empty store, got %d events", len(events))
	}
}

// TestOpenValidation tests the config validation in Open.
func TestOpenValidation(t *testing.T) {
	if _, err := Open(Config{DSN: "events.db"}); err == nil {
		t.Fatalf("expected error for missing driver")
	}
	if _, err := Open(Config{Driver: "sqlite"}); err == nil {
		t.Fatalf("expected error for missing dsn")
	}
	if _, err := Open(Config{Driver: "oracle", DSN: "events.db"}); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
}

// TestOpenDialectFallback tests that the legacy dialect field selects the
// driver when driver is unset.
func TestOpenDialectFallback(t *testing.T) {
	store, err := Open(Config{
		Dialect:     "sqlite3",
		DSN:         filepath.Join(t.TempDir(), "events.db"),
		AutoMigrate: true,
	})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	if _, err := store.Insert(context.Background(), internal.Event{
		RequestID: "abc123",
		Author:    "alice",
		Action:    internal.ActionPush,
		ToBranch:  "main",
		Timestamp: "2024-03-07T14:00:00Z",
	}); err != nil {
		t.Fatalf("insert: %v", err)
	}
}

// TestRowRoundTrip tests the event to row mapping in both directions.
func TestRowRoundTrip(t *testing.T) {
	event := internal.Event{
		ID:         "42",
		RequestID:  "def456",
		Author:     "jane_smith",
		Action:     internal.ActionPullRequest,
		FromBranch: "feature-branch",
		ToBranch:   "main",
		Timestamp:  "2024-03-07T14:30:00Z",
	}

	got := fromRow(toRow(event))
	if got != event {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, event)
	}
}
