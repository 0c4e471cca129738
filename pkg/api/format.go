package api

import (
	"fmt"
	"time"

	"gitping/internal"
)

// timestampLayouts are tried in order. Bare layouts without an offset are
// interpreted as UTC, matching how events record their timestamps.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
}

const displayLayout = "02 January 2006 - 03:04 PM"

// FormatTimestamp renders a stored timestamp for display, e.g.
// "07 March 2024 - 02:30 PM UTC". Unparseable input is returned unchanged.
func FormatTimestamp(value string) string {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC().Format(displayLayout) + " UTC"
		}
	}
	return value
}

// EventMessage renders the human-readable summary line for an event. Actions
// outside the known set fall through to a generic form; the store never
// produces them, but the data may predate this service.
func EventMessage(event internal.Event) string {
	timestamp := FormatTimestamp(event.Timestamp)
	switch event.Action {
	case internal.ActionPush:
		return fmt.Sprintf("%q pushed to %q on %s", event.Author, event.ToBranch, timestamp)
	case internal.ActionPullRequest:
		return fmt.Sprintf("%q submitted a pull request from %q to %q on %s", event.Author, event.FromBranch, event.ToBranch, timestamp)
	case internal.ActionMerge:
		return fmt.Sprintf("%q merged branch %q to %q on %s", event.Author, event.FromBranch, event.ToBranch, timestamp)
	}
	return fmt.Sprintf("%q performed %s on %s", event.Author, event.Action, timestamp)
}
