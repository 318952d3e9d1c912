// Package hooks provides a registry for managing conversation lifecycle
// hooks.
//
// Hooks let you observe events during a conversation. Each hook interface
// corresponds to a specific event type - implement only the interfaces you
// need.
//
// # Hook Interfaces
//
// Turn lifecycle hooks:
//   - [parley.BeforeAdvanceHook] - Called once when a turn starts
//   - [parley.AfterAdvanceHook] - Called once when a turn finishes
//   - [parley.StateChangeHook] - Called on every state transition
//
// Model call hooks:
//   - [parley.BeforeModelCallHook] - Called before each LLM API call
//   - [parley.AfterModelCallHook] - Called after each LLM API call
//
// Update hooks:
//   - [parley.BeforeUpdateHook] - Called before an update is applied
//   - [parley.AfterUpdateHook] - Called after an update is applied or rejected
//
// Lifecycle hooks:
//   - [parley.TraitActivatedHook] - Called when a possible trait activates
//   - [parley.CheckpointSavedHook] - Called after a checkpoint is persisted
//
// # Creating a Hook
//
// Create a hook by implementing any combination of interfaces:
//
//	type MetricsHook struct{}
//
//	func (h *MetricsHook) OnAfterModelCall(
//	    ctx context.Context,
//	    event parley.AfterModelCallEvent,
//	) {
//	    metrics.RecordModelCall(event.ThreadID, event.Duration)
//	}
//
//	// Compile-time check
//	var _ parley.AfterModelCallHook = (*MetricsHook)(nil)
//
// # Registering Hooks
//
// Build a registry and hand it to the engine. A registry can be shared by
// several engines:
//
//	registry := hooks.NewRegistry()
//	registry.Register(&SharedHook{})
//
//	orders := parley.NewEngine(orderCollection, model).WithHooks(registry)
//	intake := parley.NewEngine(intakeCollection, model).WithHooks(registry)
//
// # Example
//
// See integrationtest/loggers/logger.go for a complete example that
// implements all hook interfaces.
package hooks
