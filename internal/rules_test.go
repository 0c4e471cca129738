package internal

import "testing"

// TestRuleEngineEvaluate tests that the rule engine matches on canonical
// event fields.
func TestRuleEngineEvaluate(t *testing.T) {
	cfg := RulesConfig{
		Rules: []Rule{
			{When: "action == \"MERGE\"", Emit: "events.merged"},
			{When: "action == \"PUSH\" && to_branch == \"main\"", Emit: "events.main-push"},
		},
	}

	engine, err := NewRuleEngine(cfg)
	if err != nil {
		t.Fatalf("new rule engine: %v", err)
	}

	event := Event{
		RequestID: "abc123",
		Author:    "alice",
		Action:    ActionPush,
		ToBranch:  "main",
	}

	matches := engine.Evaluate(event)
	if len(matches) != 1 {
		t.Fatalf("expected 1 topic, got %d", len(matches))
	}
	if matches[0].Topic != "events.main-push" {
		t.Fatalf("expected topic events.main-push, got %q", matches[0].Topic)
	}
}

// TestRuleEngineNoMatch tests that a non-matching rule yields no topics.
func TestRuleEngineNoMatch(t *testing.T) {
	cfg := RulesConfig{
		Rules: []Rule{
			{When: "action == \"MERGE\"", Emit: "events.merged"},
		},
	}

	engine, err := NewRuleEngine(cfg)
	if err != nil {
		t.Fatalf("new rule engine: %v", err)
	}

	matches := engine.Evaluate(Event{Action: ActionPush, ToBranch: "main"})
	if len(matches) != 0 {
		t.Fatalf("expected no topics, got %d", len(matches))
	}
}

// TestRuleEngineUnknownParameter tests that a rule referencing a parameter
// the event does not carry is skipped rather than matched.
func TestRuleEngineUnknownParameter(t *testing.T) {
	cfg := RulesConfig{
		Rules: []Rule{
			{When: "missing_field == true", Emit: "never"},
		},
		Logger: NewLogger("rules-test"),
	}

	engine, err := NewRuleEngine(cfg)
	if err != nil {
		t.Fatalf("new rule engine: %v", err)
	}

	matches := engine.Evaluate(Event{Action: ActionPush})
	if len(matches) != 0 {
		t.Fatalf("expected no topics, got %d", len(matches))
	}
}

// TestRuleEngineWithDrivers tests that driver pinning is carried through to
// the match.
func TestRuleEngineWithDrivers(t *testing.T) {
	cfg := RulesConfig{
		Rules: []Rule{
			{When: "action == \"PULL_REQUEST\"", Emit: "events.pr", Drivers: []string{"gochannel", "http"}},
		},
	}

	engine, err := NewRuleEngine(cfg)
	if err != nil {
		t.Fatalf("new rule engine: %v", err)
	}

	matches := engine.Evaluate(Event{Action: ActionPullRequest})
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if len(matches[0].Drivers) != 2 {
		t.Fatalf("expected 2 drivers, got %d", len(matches[0].Drivers))
	}
}

// TestRuleEngineInvalidExpression tests that a malformed expression fails at
// construction, not evaluation.
func TestRuleEngineInvalidExpression(t *testing.T) {
	cfg := RulesConfig{
		Rules: []Rule{
			{When: "action ==", Emit: "never"},
		},
	}
	if _, err := NewRuleEngine(cfg); err == nil {
		t.Fatalf("expected error for malformed expression")
	}
}
