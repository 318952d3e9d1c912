package parley

import (
	"context"
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// State identifies where a conversation is in its lifecycle.
type State string

const (
	// StateInitialize is a fresh thread before its first model call.
	StateInitialize State = "initialize"
	// StateThink means the engine is about to call the model.
	StateThink State = "think"
	// StateTools means the engine is applying a structured update.
	StateTools State = "tools"
	// StateListen means the conversation is waiting for respondent input.
	StateListen State = "listen"
	// StateTeardown means the conversation is complete. Terminal.
	StateTeardown State = "teardown"
)

// Terminal reports whether the state accepts no further turns.
func (s State) Terminal() bool { return s == StateTeardown }

// stable reports whether the state is a persistence point. Checkpoints are
// only ever saved at stable states; think and tools exist in memory while a
// turn is in flight.
func (s State) stable() bool {
	return s == StateInitialize || s == StateListen || s == StateTeardown
}

// Checkpoint is the complete resumable state of one conversation thread:
// message history, collected field values, activated possible traits, and
// the machine state. Everything a conversation is lives here; the
// [Collection] template is shared and never duplicated into checkpoints.
type Checkpoint struct {
	// ThreadID identifies the conversation.
	ThreadID string `json:"thread_id"`
	// State is the machine state the checkpoint was taken at. Persisted
	// checkpoints are always at a stable state: initialize, listen, or
	// teardown.
	State State `json:"state"`
	// Messages is the full conversation history, system prompt included.
	Messages []Message `json:"messages"`
	// Values holds the collected field records keyed by field name.
	Values map[string]*FieldValue `json:"values"`
	// ActiveTraits lists activated possible traits per role.
	ActiveTraits map[RoleID][]string `json:"active_traits,omitempty"`
	// CreatedAt is when the thread was first advanced.
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is when the checkpoint was last saved.
	UpdatedAt time.Time `json:"updated_at"`
}

// newCheckpoint returns the initial checkpoint of a fresh thread.
func newCheckpoint(threadID string, now time.Time) *Checkpoint {
	return &Checkpoint{
		ThreadID:  threadID,
		State:     StateInitialize,
		Values:    map[string]*FieldValue{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy. Stores that keep checkpoints in memory hand out
// clones so callers can never mutate stored state.
func (c *Checkpoint) Clone() *Checkpoint {
	out := &Checkpoint{
		ThreadID:  c.ThreadID,
		State:     c.State,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if c.Messages != nil {
		out.Messages = make([]Message, len(c.Messages))
		for i, m := range c.Messages {
			cm := m
			if m.ToolCalls != nil {
				cm.ToolCalls = make([]ToolCall, len(m.ToolCalls))
				for j, tc := range m.ToolCalls {
					ctc := tc
					ctc.Args = append([]byte(nil), tc.Args...)
					cm.ToolCalls[j] = ctc
				}
			}
			out.Messages[i] = cm
		}
	}
	out.Values = make(map[string]*FieldValue, len(c.Values))
	for k, v := range c.Values {
		out.Values[k] = v.clone()
	}
	if c.ActiveTraits != nil {
		out.ActiveTraits = make(map[RoleID][]string, len(c.ActiveTraits))
		for k, v := range c.ActiveTraits {
			out.ActiveTraits[k] = append([]string(nil), v...)
		}
	}
	return out
}

// append adds a message to the history.
func (c *Checkpoint) append(m Message) {
	c.Messages = append(c.Messages, m)
}

// lastMessage returns the most recent message, or nil on an empty history.
func (c *Checkpoint) lastMessage() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return &c.Messages[len(c.Messages)-1]
}

// lastAgentMessage returns the most recent agent message with user-facing
// content, or nil when there is none.
func (c *Checkpoint) lastAgentMessage() *Message {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Role == MessageAgent && c.Messages[i].Content != "" {
			return &c.Messages[i]
		}
	}
	return nil
}

// traitActive reports whether the named possible trait has been activated
// for the role.
func (c *Checkpoint) traitActive(id RoleID, name string) bool {
	for _, t := range c.ActiveTraits[id] {
		if t == name {
			return true
		}
	}
	return false
}

// activateTrait marks a possible trait active. Idempotent.
func (c *Checkpoint) activateTrait(id RoleID, name string) bool {
	if c.traitActive(id, name) {
		return false
	}
	if c.ActiveTraits == nil {
		c.ActiveTraits = map[RoleID][]string{}
	}
	c.ActiveTraits[id] = append(c.ActiveTraits[id], name)
	return true
}

// Store persists checkpoints by thread id. Implementations must be atomic
// per thread: a concurrent Load observes either the previous checkpoint or
// the new one in full, never a mix. The engine serializes writes per thread,
// so stores only need atomicity, not write coordination.
type Store interface {
	// Load returns the checkpoint of the given thread. The boolean is
	// false when the thread has never been saved.
	Load(ctx context.Context, threadID string) (*Checkpoint, bool, error)

	// Save persists the checkpoint, replacing any previous one for the
	// same thread.
	Save(ctx context.Context, cp *Checkpoint) error

	// Delete removes the thread's checkpoint. Deleting an unknown thread
	// is not an error.
	Delete(ctx context.Context, threadID string) error
}

// NewThreadID returns a fresh opaque thread id. Ids are ULIDs: unique,
// URL-safe, and lexically ordered by creation time, which keeps persisted
// stores scannable in conversation order.
func NewThreadID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulid.Monotonic(rand.Reader, 0)).String()
}
