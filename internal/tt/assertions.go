package tt

import (
	"testing"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/rickchristie/parley"
	"github.com/stretchr/testify/assert"
)

// -----------------------------------------------------------------------------
// Event Helpers
// -----------------------------------------------------------------------------

// EventName returns a short name for a hook event, for readable assertions.
func EventName(event parley.HookEvent) string {
	switch event.(type) {
	case parley.BeforeAdvanceEvent:
		return "BeforeAdvance"
	case parley.AfterAdvanceEvent:
		return "AfterAdvance"
	case parley.StateChangeEvent:
		return "StateChange"
	case parley.BeforeModelCallEvent:
		return "BeforeModelCall"
	case parley.AfterModelCallEvent:
		return "AfterModelCall"
	case parley.BeforeUpdateEvent:
		return "BeforeUpdate"
	case parley.AfterUpdateEvent:
		return "AfterUpdate"
	case parley.TraitActivatedEvent:
		return "TraitActivated"
	case parley.CheckpointSavedEvent:
		return "CheckpointSaved"
	default:
		return "UnknownEvent"
	}
}

// Names maps events to their short names, preserving order.
func Names(events []parley.HookEvent) []string {
	out := make([]string, len(events))
	for i, event := range events {
		out[i] = EventName(event)
	}
	return out
}

// CountEventTypes counts events by name for tests that only care about how
// often each event fired.
func CountEventTypes(events []parley.HookEvent) map[string]int {
	counts := make(map[string]int)
	for _, event := range events {
		counts[EventName(event)]++
	}
	return counts
}

// -----------------------------------------------------------------------------
// Transcript Helpers
// -----------------------------------------------------------------------------

// MessageRoles returns the role sequence of a transcript.
func MessageRoles(messages []parley.Message) []parley.MessageRole {
	out := make([]parley.MessageRole, len(messages))
	for i, msg := range messages {
		out[i] = msg.Role
	}
	return out
}

// AssertMessageRoles asserts that the transcript's role sequence matches
// want exactly.
func AssertMessageRoles(t *testing.T, want []parley.MessageRole, messages []parley.Message) bool {
	t.Helper()
	return assert.Equal(t, want, MessageRoles(messages), "transcript role sequence mismatch")
}

// -----------------------------------------------------------------------------
// Text Assertion Helpers
// -----------------------------------------------------------------------------

// AssertTextEqual asserts that two multiline strings are equal, printing a
// unified diff when they differ. Plain assert.Equal output is unreadable for
// long prompts.
func AssertTextEqual(t *testing.T, expected, actual string, msgAndArgs ...any) bool {
	t.Helper()
	if expected == actual {
		return true
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(expected),
		B:        difflib.SplitLines(actual),
		FromFile: "expected",
		ToFile:   "actual",
		Context:  3,
	})
	if err != nil {
		diff = "failed to build diff: " + err.Error()
	}
	return assert.Fail(t, "text mismatch (-expected +actual):\n"+diff, msgAndArgs...)
}
