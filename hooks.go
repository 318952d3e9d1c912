package parley

import (
	"context"
)

// -----------------------------------------------------------------------------
// Hook Interfaces
// -----------------------------------------------------------------------------
//
// Hooks observe a conversation without participating in it. To use hooks:
//
//  1. Implement the desired hook interface(s)
//  2. Register with hooks.Registry
//  3. Pass the registry to the engine via Engine.WithHooks
//
// Example:
//
//	type LoggingHook struct {
//	    logger *log.Logger
//	}
//
//	func (h *LoggingHook) OnAfterModelCall(ctx context.Context, e parley.AfterModelCallEvent) {
//	    h.logger.Printf("model call on %s took %v", e.ThreadID, e.Duration)
//	}
//
//	registry := hooks.NewRegistry().Register(&LoggingHook{logger: log.Default()})
//	engine := parley.NewEngine(c, model).WithHooks(registry)
//
// # Hook Execution Order
//
// Hooks are called in registration order. For paired hooks (Before/After),
// the After hook is always called if the Before hook was called, even on
// error.
//
// # Error Handling
//
// Hooks do not return errors. A hook that panics stops the turn and the
// panic propagates to the Advance caller.
//
// # Available Hooks
//
//   - Turn lifecycle: [BeforeAdvanceHook], [AfterAdvanceHook]
//   - State machine: [StateChangeHook]
//   - Model calls: [BeforeModelCallHook], [AfterModelCallHook]
//   - Updates: [BeforeUpdateHook], [AfterUpdateHook]
//   - Traits and persistence: [TraitActivatedHook], [CheckpointSavedHook]
// -----------------------------------------------------------------------------

// BeforeAdvanceHook is implemented by hooks that want to be notified when a
// turn starts.
type BeforeAdvanceHook interface {
	// OnBeforeAdvance is called once per Advance call, after the
	// checkpoint has been loaded.
	OnBeforeAdvance(ctx context.Context, event BeforeAdvanceEvent)
}

// AfterAdvanceHook is implemented by hooks that want to be notified when a
// turn finishes.
//
// This hook is always called if OnBeforeAdvance was called, even when the
// turn ends with an error.
type AfterAdvanceHook interface {
	// OnAfterAdvance is called once per Advance call, after the turn
	// completed or failed.
	OnAfterAdvance(ctx context.Context, event AfterAdvanceEvent)
}

// StateChangeHook is implemented by hooks that want to observe conversation
// state transitions, including the transient think and tools states that are
// never persisted.
type StateChangeHook interface {
	// OnStateChange is called on every state transition.
	OnStateChange(ctx context.Context, event StateChangeEvent)
}

// BeforeModelCallHook is implemented by hooks that want to be notified before
// model calls.
type BeforeModelCallHook interface {
	// OnBeforeModelCall is called before each model API call.
	OnBeforeModelCall(ctx context.Context, event BeforeModelCallEvent)
}

// AfterModelCallHook is implemented by hooks that want to be notified after
// model calls.
type AfterModelCallHook interface {
	// OnAfterModelCall is called after each model API call completes.
	OnAfterModelCall(ctx context.Context, event AfterModelCallEvent)
}

// BeforeUpdateHook is implemented by hooks that want to be notified before a
// structured update is applied.
type BeforeUpdateHook interface {
	// OnBeforeUpdate is called with the decoded, not yet validated
	// arguments of an update call.
	OnBeforeUpdate(ctx context.Context, event BeforeUpdateEvent)
}

// AfterUpdateHook is implemented by hooks that want to be notified after a
// structured update has been applied or rejected.
type AfterUpdateHook interface {
	// OnAfterUpdate is called after each update attempt.
	OnAfterUpdate(ctx context.Context, event AfterUpdateEvent)
}

// TraitActivatedHook is implemented by hooks that want to be notified when a
// possible trait activates.
type TraitActivatedHook interface {
	// OnTraitActivated is called once per newly activated trait.
	OnTraitActivated(ctx context.Context, event TraitActivatedEvent)
}

// CheckpointSavedHook is implemented by hooks that want to be notified when a
// checkpoint is persisted.
type CheckpointSavedHook interface {
	// OnCheckpointSaved is called after each successful save.
	OnCheckpointSaved(ctx context.Context, event CheckpointSavedEvent)
}
