package parley

import (
	"context"
	"time"

	"github.com/tmc/langchaingo/llms"
)

// -----------------------------------------------------------------------------
// Hook Event Interface
// -----------------------------------------------------------------------------

// HookEvent is a marker interface for all hook events.
type HookEvent interface {
	hookEvent()
}

// HookFirer dispatches events to registered hooks. The hooks package provides
// the standard implementation; the engine only depends on this interface.
type HookFirer interface {
	Fire(ctx context.Context, event HookEvent)
}

// -----------------------------------------------------------------------------
// Advance Events
// -----------------------------------------------------------------------------

// BeforeAdvanceEvent is emitted at the start of each Advance call, after the
// checkpoint has been loaded.
type BeforeAdvanceEvent struct {
	// ThreadID is the conversation being advanced.
	ThreadID string

	// Input is the respondent utterance passed to Advance ("" for probes).
	Input string

	// State is the conversation's state on entry.
	State State
}

func (BeforeAdvanceEvent) hookEvent() {}

// AfterAdvanceEvent is emitted when an Advance call finishes.
type AfterAdvanceEvent struct {
	// ThreadID is the conversation that was advanced.
	ThreadID string

	// Reply is the agent message returned to the caller ("" on error or
	// when there was nothing to say).
	Reply string

	// State is the conversation's state after the turn.
	State State

	// Duration is how long the whole turn took.
	Duration time.Duration

	// Error is the error the call returned (nil on success).
	Error error
}

func (AfterAdvanceEvent) hookEvent() {}

// StateChangeEvent is emitted on every conversation state transition.
type StateChangeEvent struct {
	// ThreadID is the conversation changing state.
	ThreadID string

	// From is the state being left.
	From State

	// To is the state being entered.
	To State
}

func (StateChangeEvent) hookEvent() {}

// -----------------------------------------------------------------------------
// Model Call Events
// -----------------------------------------------------------------------------

// BeforeModelCallEvent is emitted before each model invocation.
type BeforeModelCallEvent struct {
	// ThreadID is the conversation the call belongs to.
	ThreadID string

	// Request contains the messages being sent to the model.
	Request []llms.MessageContent

	// ToolsEnabled reports whether the update tool is bound on this call.
	ToolsEnabled bool
}

func (BeforeModelCallEvent) hookEvent() {}

// AfterModelCallEvent is emitted after each model invocation completes.
type AfterModelCallEvent struct {
	// ThreadID is the conversation the call belongs to.
	ThreadID string

	// Response contains the full model response (nil on error).
	Response *ContentResponse

	// Duration is how long the call took.
	Duration time.Duration

	// Error is any error that occurred (nil if successful).
	Error error
}

func (AfterModelCallEvent) hookEvent() {}

// -----------------------------------------------------------------------------
// Update Events
// -----------------------------------------------------------------------------

// BeforeUpdateEvent is emitted before a structured update is applied.
type BeforeUpdateEvent struct {
	// ThreadID is the conversation being updated.
	ThreadID string

	// CallID is the tool call id the update arrived in.
	CallID string

	// Args contains the decoded update arguments, not yet validated.
	Args map[string]any
}

func (BeforeUpdateEvent) hookEvent() {}

// AfterUpdateEvent is emitted after a structured update has been applied or
// rejected.
type AfterUpdateEvent struct {
	// ThreadID is the conversation that was updated.
	ThreadID string

	// Fields lists the updated field names in declaration order (empty
	// when the update was rejected).
	Fields []string

	// Error is the validation error that rejected the update (nil when it
	// was applied).
	Error error
}

func (AfterUpdateEvent) hookEvent() {}

// -----------------------------------------------------------------------------
// Lifecycle Events
// -----------------------------------------------------------------------------

// TraitActivatedEvent is emitted when a possible trait is activated on a
// conversation.
type TraitActivatedEvent struct {
	// ThreadID is the conversation the trait was activated on.
	ThreadID string

	// Role is the participant the trait belongs to.
	Role RoleID

	// Trait is the activated trait's name.
	Trait string
}

func (TraitActivatedEvent) hookEvent() {}

// CheckpointSavedEvent is emitted after a checkpoint reaches the store.
type CheckpointSavedEvent struct {
	// ThreadID is the persisted conversation.
	ThreadID string

	// State is the stable state the checkpoint was saved at.
	State State
}

func (CheckpointSavedEvent) hookEvent() {}
