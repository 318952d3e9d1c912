package hooks

import (
	"context"

	"github.com/rickchristie/parley"
)

// Registry manages a collection of hooks and dispatches engine events to
// them.
//
// # Overview
//
// Registry is the central coordination point for hooks. It:
//   - Stores registered hooks in order
//   - Dispatches each event to the hooks that implement its interface
//
// Hooks can implement any combination of the hook interfaces declared in the
// parley package; they only receive events for the interfaces they
// implement.
//
// # Creating and Using
//
//	// Create a registry and register hooks
//	registry := hooks.NewRegistry().
//	    Register(&LoggingHook{}).
//	    Register(&MetricsHook{})
//
//	// Use with an engine
//	engine := parley.NewEngine(c, model).WithHooks(registry)
//
// # Hooks with Multiple Interfaces
//
// A single hook can implement multiple interfaces:
//
//	type FullHook struct {
//	    logger *log.Logger
//	}
//
//	func (h *FullHook) OnBeforeAdvance(ctx context.Context, e parley.BeforeAdvanceEvent) {
//	    h.logger.Printf("turn started on %s", e.ThreadID)
//	}
//
//	func (h *FullHook) OnAfterUpdate(ctx context.Context, e parley.AfterUpdateEvent) {
//	    h.logger.Printf("recorded %v", e.Fields)
//	}
//
//	// Register once - receives both event types
//	registry.Register(&FullHook{logger: log.Default()})
//
// # Thread Safety
//
// Registration is NOT thread-safe. Register all hooks before handing the
// registry to an engine; after that, Fire may be called from any goroutine
// the engine runs turns on.
type Registry struct {
	hooks []any
}

// NewRegistry creates a new empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		hooks: make([]any, 0),
	}
}

// Register adds a hook to the registry. The hook can implement any
// combination of the parley hook interfaces.
//
// Hooks are called in the order they are registered.
func (r *Registry) Register(hook any) *Registry {
	r.hooks = append(r.hooks, hook)
	return r
}

// Fire implements parley.HookFirer. It dispatches the event to every
// registered hook that implements the matching interface, in registration
// order.
func (r *Registry) Fire(ctx context.Context, event parley.HookEvent) {
	switch e := event.(type) {
	case parley.BeforeAdvanceEvent:
		for _, h := range r.hooks {
			if hook, ok := h.(parley.BeforeAdvanceHook); ok {
				hook.OnBeforeAdvance(ctx, e)
			}
		}
	case parley.AfterAdvanceEvent:
		for _, h := range r.hooks {
			if hook, ok := h.(parley.AfterAdvanceHook); ok {
				hook.OnAfterAdvance(ctx, e)
			}
		}
	case parley.StateChangeEvent:
		for _, h := range r.hooks {
			if hook, ok := h.(parley.StateChangeHook); ok {
				hook.OnStateChange(ctx, e)
			}
		}
	case parley.BeforeModelCallEvent:
		for _, h := range r.hooks {
			if hook, ok := h.(parley.BeforeModelCallHook); ok {
				hook.OnBeforeModelCall(ctx, e)
			}
		}
	case parley.AfterModelCallEvent:
		for _, h := range r.hooks {
			if hook, ok := h.(parley.AfterModelCallHook); ok {
				hook.OnAfterModelCall(ctx, e)
			}
		}
	case parley.BeforeUpdateEvent:
		for _, h := range r.hooks {
			if hook, ok := h.(parley.BeforeUpdateHook); ok {
				hook.OnBeforeUpdate(ctx, e)
			}
		}
	case parley.AfterUpdateEvent:
		for _, h := range r.hooks {
			if hook, ok := h.(parley.AfterUpdateHook); ok {
				hook.OnAfterUpdate(ctx, e)
			}
		}
	case parley.TraitActivatedEvent:
		for _, h := range r.hooks {
			if hook, ok := h.(parley.TraitActivatedHook); ok {
				hook.OnTraitActivated(ctx, e)
			}
		}
	case parley.CheckpointSavedEvent:
		for _, h := range r.hooks {
			if hook, ok := h.(parley.CheckpointSavedHook); ok {
				hook.OnCheckpointSaved(ctx, e)
			}
		}
	}
}

// Len returns the number of registered hooks.
func (r *Registry) Len() int {
	return len(r.hooks)
}

// Clear removes all registered hooks.
func (r *Registry) Clear() {
	r.hooks = make([]any, 0)
}

// Compile-time check that Registry implements parley.HookFirer.
var _ parley.HookFirer = (*Registry)(nil)
