package webhook

import (
	"encoding/json"
	"strconv"
	"strings"

	"gitping/internal"
)

// Inbound payload shapes, limited to the fields the parsers read. A missing
// author falls back to "Unknown"; every other absent field decodes to its
// zero value and is stored as-is.

type pushPayload struct {
	Ref    string `json:"ref"`
	Pusher struct {
		Name string `json:"name"`
	} `json:"pusher"`
	Commits []struct {
		ID string `json:"id"`
	} `json:"commits"`
}

type pullRequestPayload struct {
	Action      string `json:"action"`
	PullRequest struct {
		ID   int64 `json:"id"`
		User struct {
			Login string `json:"login"`
		} `json:"user"`
		Base struct {
			Ref string `json:"ref"`
		} `json:"base"`
		Head struct {
			Ref string `json:"ref"`
		} `json:"head"`
		Merged   bool `json:"merged"`
		MergedBy struct {
			Login string `json:"login"`
		} `json:"merged_by"`
	} `json:"pull_request"`
}

// parsePush maps a push delivery to a canonical event, keyed by the last
// commit in the delivery. Pushes without commits, such as branch deletions,
// are not applicable.
func parsePush(raw []byte) (internal.Event, bool) {
	var payload pushPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return internal.Event{}, false
	}
	if len(payload.Commits) == 0 {
		return internal.Event{}, false
	}
	latest := payload.Commits[len(payload.Commits)-1]
	event, err := internal.NewEvent(
		latest.ID,
		orUnknown(payload.Pusher.Name),
		internal.ActionPush,
		strings.TrimPrefix(payload.Ref, "refs/heads/"),
		"",
		"",
	)
	if err != nil {
		return internal.Event{}, false
	}
	return event, true
}

// routePullRequest selects the opened or merge parser from the delivery's
// action field. Anything else is not applicable.
func routePullRequest(raw []byte) (internal.Event, bool) {
	var payload pullRequestPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return internal.Event{}, false
	}
	switch payload.Action {
	case "opened":
		return parsePullRequestOpened(payload)
	case "closed":
		return parseMerge(payload)
	}
	return internal.Event{}, false
}

func parsePullRequestOpened(payload pullRequestPayload) (internal.Event, bool) {
	event, err := internal.NewEvent(
		pullRequestID(payload),
		orUnknown(payload.PullRequest.User.Login),
		internal.ActionPullRequest,
		payload.PullRequest.Base.Ref,
		payload.PullRequest.Head.Ref,
		"",
	)
	if err != nil {
		return internal.Event{}, false
	}
	return event, true
}

// parseMerge applies only to pull requests that were actually merged; a
// closed-but-unmerged pull request is not applicable.
func parseMerge(payload pullRequestPayload) (internal.Event, bool) {
	if !payload.PullRequest.Merged {
		return internal.Event{}, false
	}
	event, err := internal.NewEvent(
		pullRequestID(payload),
		orUnknown(payload.PullRequest.MergedBy.Login),
		internal.ActionMerge,
		payload.PullRequest.Base.Ref,
		payload.PullRequest.Head.Ref,
		"",
	)
	if err != nil {
		return internal.Event{}, false
	}
	return event, true
}

func pullRequestID(payload pullRequestPayload) string {
	if payload.PullRequest.ID == 0 {
		return ""
	}
	return strconv.FormatInt(payload.PullRequest.ID, 10)
}

func orUnknown(name string) string {
	if name == "" {
		return "Unknown"
	}
	return name
}
