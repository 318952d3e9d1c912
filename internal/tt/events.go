// Package tt provides test doubles and helpers for parley tests.
package tt

import (
	"context"
	"sync"

	"github.com/rickchristie/parley"
)

// -----------------------------------------------------------------------------
// Recorder - implements every parley hook interface
// -----------------------------------------------------------------------------

// Recorder implements all parley hook interfaces and records the events it
// receives in arrival order. Safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []parley.HookEvent
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) record(event parley.HookEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// OnBeforeAdvance implements parley.BeforeAdvanceHook.
func (r *Recorder) OnBeforeAdvance(_ context.Context, event parley.BeforeAdvanceEvent) {
	r.record(event)
}

// OnAfterAdvance implements parley.AfterAdvanceHook.
func (r *Recorder) OnAfterAdvance(_ context.Context, event parley.AfterAdvanceEvent) {
	r.record(event)
}

// OnStateChange implements parley.StateChangeHook.
func (r *Recorder) OnStateChange(_ context.Context, event parley.StateChangeEvent) {
	r.record(event)
}

// OnBeforeModelCall implements parley.BeforeModelCallHook.
func (r *Recorder) OnBeforeModelCall(_ context.Context, event parley.BeforeModelCallEvent) {
	r.record(event)
}

// OnAfterModelCall implements parley.AfterModelCallHook.
func (r *Recorder) OnAfterModelCall(_ context.Context, event parley.AfterModelCallEvent) {
	r.record(event)
}

// OnBeforeUpdate implements parley.BeforeUpdateHook.
func (r *Recorder) OnBeforeUpdate(_ context.Context, event parley.BeforeUpdateEvent) {
	r.record(event)
}

// OnAfterUpdate implements parley.AfterUpdateHook.
func (r *Recorder) OnAfterUpdate(_ context.Context, event parley.AfterUpdateEvent) {
	r.record(event)
}

// OnTraitActivated implements parley.TraitActivatedHook.
func (r *Recorder) OnTraitActivated(_ context.Context, event parley.TraitActivatedEvent) {
	r.record(event)
}

// OnCheckpointSaved implements parley.CheckpointSavedHook.
func (r *Recorder) OnCheckpointSaved(_ context.Context, event parley.CheckpointSavedEvent) {
	r.record(event)
}

// Events returns a copy of the recorded events in arrival order.
func (r *Recorder) Events() []parley.HookEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]parley.HookEvent, len(r.events))
	copy(out, r.events)
	return out
}

// Names returns the recorded event names in arrival order.
func (r *Recorder) Names() []string {
	return Names(r.Events())
}

// StateChanges returns the recorded state transitions in arrival order.
func (r *Recorder) StateChanges() []parley.StateChangeEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []parley.StateChangeEvent
	for _, event := range r.events {
		if sc, ok := event.(parley.StateChangeEvent); ok {
			out = append(out, sc)
		}
	}
	return out
}

// Saves returns the recorded checkpoint saves in arrival order.
func (r *Recorder) Saves() []parley.CheckpointSavedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []parley.CheckpointSavedEvent
	for _, event := range r.events {
		if cs, ok := event.(parley.CheckpointSavedEvent); ok {
			out = append(out, cs)
		}
	}
	return out
}

// Reset clears all recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// Compile-time checks that Recorder implements every hook interface.
var (
	_ parley.BeforeAdvanceHook   = (*Recorder)(nil)
	_ parley.AfterAdvanceHook    = (*Recorder)(nil)
	_ parley.StateChangeHook     = (*Recorder)(nil)
	_ parley.BeforeModelCallHook = (*Recorder)(nil)
	_ parley.AfterModelCallHook  = (*Recorder)(nil)
	_ parley.BeforeUpdateHook    = (*Recorder)(nil)
	_ parley.AfterUpdateHook     = (*Recorder)(nil)
	_ parley.TraitActivatedHook  = (*Recorder)(nil)
	_ parley.CheckpointSavedHook = (*Recorder)(nil)
)
