package parley

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"text/template"
	"time"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/llms"
)

// Engine drives conversations for one collection. An engine is safe for
// concurrent use: distinct threads advance in parallel, while calls on the
// same thread are serialized in arrival order.
type Engine struct {
	collection *Collection
	model      Model
	store      Store
	hooks      HookFirer
	systemTmpl *template.Template

	// locks holds one mutex per thread id.
	locks sync.Map
}

// NewEngine creates an engine for the given collection and model, backed by
// an in-process memory store. Use [Engine.WithStore] to persist conversations.
func NewEngine(c *Collection, m Model) *Engine {
	return &Engine{
		collection: c,
		model:      m,
		store:      NewMemoryStore(),
		systemTmpl: DefaultSystemTemplate,
	}
}

// WithStore sets the checkpoint store. Call before the first Advance.
func (e *Engine) WithStore(s Store) *Engine {
	e.store = s
	return e
}

// WithHooks sets the hook dispatcher the engine emits lifecycle events to.
func (e *Engine) WithHooks(h HookFirer) *Engine {
	e.hooks = h
	return e
}

// WithSystemTemplate replaces the system prompt template. The template
// receives a [SystemPromptData].
func (e *Engine) WithSystemTemplate(t *template.Template) *Engine {
	e.systemTmpl = t
	return e
}

// Collection returns the engine's collection template.
func (e *Engine) Collection() *Collection {
	return e.collection
}

// Advance drives one conversation turn and returns the agent's next
// user-facing message.
//
// Pass "" as input on a fresh thread to receive the opening message, and the
// respondent's utterance on every turn after that. Passing "" while the
// conversation is waiting for input re-returns the current agent message
// without advancing. Once the conversation has reached teardown, Advance
// returns "" and does nothing.
//
// A turn is transactional: the checkpoint is only saved once the
// conversation reaches a stable state, so a model failure or protocol
// violation mid-turn leaves the thread exactly as it was and the call can
// simply be retried.
func (e *Engine) Advance(ctx context.Context, threadID, input string) (string, error) {
	if threadID == "" {
		return "", errors.New("parley: thread id must not be empty")
	}
	mu := e.threadLock(threadID)
	mu.Lock()
	defer mu.Unlock()

	start := time.Now()
	cp, ok, err := e.store.Load(ctx, threadID)
	if err != nil {
		return "", fmt.Errorf("parley: load checkpoint for thread %s: %w", threadID, err)
	}
	if !ok {
		cp = newCheckpoint(threadID, time.Now())
	}

	e.fire(ctx, BeforeAdvanceEvent{ThreadID: threadID, Input: input, State: cp.State})
	reply, err := e.turn(ctx, cp, input)
	e.fire(ctx, AfterAdvanceEvent{
		ThreadID: threadID,
		Reply:    reply,
		State:    cp.State,
		Duration: time.Since(start),
		Error:    err,
	})
	if err != nil {
		return "", err
	}
	return reply, nil
}

// Snapshot returns the merged view of the collection template and the
// thread's collected values. The boolean is false for threads that have
// never been advanced.
func (e *Engine) Snapshot(ctx context.Context, threadID string) (*Snapshot, bool, error) {
	cp, ok, err := e.store.Load(ctx, threadID)
	if err != nil {
		return nil, false, fmt.Errorf("parley: load checkpoint for thread %s: %w", threadID, err)
	}
	if !ok {
		return nil, false, nil
	}
	return e.collection.snapshot(cp), true, nil
}

// ActivateTrait marks a declared possible trait as applying to the thread
// from now on. The system prompt is rebuilt so the trait guides every later
// model call. Activating an already active trait is a no-op; naming an
// undeclared trait is an error.
//
// Activation works on fresh threads too: activating before the first Advance
// makes the trait apply from the opening message.
func (e *Engine) ActivateTrait(ctx context.Context, threadID string, role RoleID, name string) error {
	if threadID == "" {
		return errors.New("parley: thread id must not be empty")
	}
	if !role.valid() {
		return fmt.Errorf("parley: unknown role %q", role)
	}
	if !e.collection.Role(role).hasPossible(name) {
		return fmt.Errorf("parley: role %s has no possible trait %q", role, name)
	}

	mu := e.threadLock(threadID)
	mu.Lock()
	defer mu.Unlock()

	cp, ok, err := e.store.Load(ctx, threadID)
	if err != nil {
		return fmt.Errorf("parley: load checkpoint for thread %s: %w", threadID, err)
	}
	if !ok {
		cp = newCheckpoint(threadID, time.Now())
	}
	if !cp.activateTrait(role, name) {
		return nil
	}
	if len(cp.Messages) > 0 && cp.Messages[0].Role == MessageSystem {
		prompt, err := executeSystemTemplate(e.systemTmpl, BuildSystemPromptData(e.collection, cp))
		if err != nil {
			return fmt.Errorf("parley: render system prompt: %w", err)
		}
		cp.Messages[0].Content = prompt
	}
	e.fire(ctx, TraitActivatedEvent{ThreadID: threadID, Role: role, Trait: name})
	return e.save(ctx, cp)
}

// turn walks the state machine until the conversation reaches a stable
// state, then persists and returns the agent's current message.
func (e *Engine) turn(ctx context.Context, cp *Checkpoint, input string) (string, error) {
	pending := input
	switch cp.State {
	case StateTeardown:
		return "", nil
	case StateListen:
		if pending == "" {
			if m := cp.lastAgentMessage(); m != nil {
				return m.Content, nil
			}
			return "", nil
		}
		cp.append(Message{Role: MessageRespondent, Content: pending})
		pending = ""
		e.transition(ctx, cp, StateThink)
	}

	for {
		switch cp.State {
		case StateInitialize:
			e.transition(ctx, cp, StateThink)
		case StateThink:
			if err := e.think(ctx, cp, &pending); err != nil {
				return "", err
			}
		case StateTools:
			if err := e.applyUpdate(ctx, cp); err != nil {
				return "", err
			}
			e.transition(ctx, cp, StateThink)
		default:
			if err := e.save(ctx, cp); err != nil {
				return "", err
			}
			if m := cp.lastAgentMessage(); m != nil {
				return m.Content, nil
			}
			return "", nil
		}
	}
}

// think makes one model call and routes on the outcome: a tool call moves to
// tools, plain text moves to listen, and plain text with every field
// collected moves to teardown.
func (e *Engine) think(ctx context.Context, cp *Checkpoint, pending *string) error {
	if len(cp.Messages) == 0 {
		prompt, err := executeSystemTemplate(e.systemTmpl, BuildSystemPromptData(e.collection, cp))
		if err != nil {
			return fmt.Errorf("parley: render system prompt: %w", err)
		}
		cp.append(Message{Role: MessageSystem, Content: prompt})
	}
	if *pending != "" {
		cp.append(Message{Role: MessageRespondent, Content: *pending})
		*pending = ""
	}

	enabled := e.toolsEnabled(cp)
	var tools []llms.Tool
	if enabled {
		tools = []llms.Tool{updateTool(e.collection)}
	}
	request := toLLMMessages(cp.Messages)

	e.fire(ctx, BeforeModelCallEvent{ThreadID: cp.ThreadID, Request: request, ToolsEnabled: enabled})
	start := time.Now()
	resp, err := e.model.Invoke(ctx, request, tools)
	e.fire(ctx, AfterModelCallEvent{
		ThreadID: cp.ThreadID,
		Response: resp,
		Duration: time.Since(start),
		Error:    err,
	})
	if err != nil {
		return fmt.Errorf("parley: model call on thread %s: %w", cp.ThreadID, err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return fmt.Errorf("parley: model returned no choices on thread %s", cp.ThreadID)
	}
	choice := resp.Choices[0]

	if len(choice.ToolCalls) > 0 && !enabled {
		return protocolErr(CodeUnsolicitedUpdate, cp.ThreadID,
			"model sent a tool call while tool-calling was disabled", nil)
	}
	if len(choice.ToolCalls) > 1 {
		return protocolErr(CodeMultipleUpdates, cp.ThreadID,
			fmt.Sprintf("model sent %d tool calls, the contract allows one", len(choice.ToolCalls)), nil)
	}

	msg := Message{Role: MessageAgent, Content: choice.Content}
	for _, tc := range choice.ToolCalls {
		if tc.FunctionCall == nil {
			return protocolErr(CodeMalformedArguments, cp.ThreadID,
				"tool call carries no function payload", nil)
		}
		if tc.FunctionCall.Name != e.collection.ToolName() {
			return protocolErr(CodeUnknownTool, cp.ThreadID,
				fmt.Sprintf("model called %q, the only tool is %q",
					tc.FunctionCall.Name, e.collection.ToolName()), nil)
		}
		id := tc.ID
		if id == "" {
			id = uuid.NewString()
		}
		msg.ToolCalls = append(msg.ToolCalls, ToolCall{
			ID:   id,
			Name: tc.FunctionCall.Name,
			Args: json.RawMessage(tc.FunctionCall.Arguments),
		})
	}
	cp.append(msg)

	switch {
	case len(msg.ToolCalls) == 1:
		e.transition(ctx, cp, StateTools)
	case e.collection.complete(cp.Values):
		e.transition(ctx, cp, StateTeardown)
	default:
		e.transition(ctx, cp, StateListen)
	}
	return nil
}

// applyUpdate validates and merges the pending tool call, then appends the
// acknowledgement that disables tool-calling on the next think.
func (e *Engine) applyUpdate(ctx context.Context, cp *Checkpoint) error {
	m := cp.lastMessage()
	if m == nil || m.Role != MessageAgent || len(m.ToolCalls) != 1 {
		return fmt.Errorf("parley: tools state without a pending tool call on thread %s", cp.ThreadID)
	}
	tc := m.ToolCalls[0]

	args, err := decodeUpdateArgs(tc.Args)
	if err != nil {
		return protocolErr(CodeMalformedArguments, cp.ThreadID, "update arguments rejected", err)
	}
	e.fire(ctx, BeforeUpdateEvent{ThreadID: cp.ThreadID, CallID: tc.ID, Args: args})
	fields, err := mergeUpdate(e.collection, cp.Values, args)
	e.fire(ctx, AfterUpdateEvent{ThreadID: cp.ThreadID, Fields: fields, Error: err})
	if err != nil {
		return protocolErr(CodeMalformedArguments, cp.ThreadID, "update arguments rejected", err)
	}

	cp.append(Message{
		Role:       MessageTool,
		ToolCallID: tc.ID,
		ToolName:   tc.Name,
		Content:    updateAck(fields),
	})
	return nil
}

// toolsEnabled decides whether the update tool is bound on the next model
// call. The tool is disabled on the call immediately following the system
// prompt and on the call immediately following an update acknowledgement,
// which forces those calls to produce conversational text.
func (e *Engine) toolsEnabled(cp *Checkpoint) bool {
	last := cp.lastMessage()
	if last == nil {
		return false
	}
	return last.Role != MessageSystem && last.Role != MessageTool
}

// transition moves the conversation to a new state and notifies hooks.
func (e *Engine) transition(ctx context.Context, cp *Checkpoint, to State) {
	from := cp.State
	if from == to {
		return
	}
	cp.State = to
	e.fire(ctx, StateChangeEvent{ThreadID: cp.ThreadID, From: from, To: to})
}

// save persists the checkpoint at a stable state.
func (e *Engine) save(ctx context.Context, cp *Checkpoint) error {
	cp.UpdatedAt = time.Now()
	if err := e.store.Save(ctx, cp); err != nil {
		return fmt.Errorf("parley: save checkpoint for thread %s: %w", cp.ThreadID, err)
	}
	e.fire(ctx, CheckpointSavedEvent{ThreadID: cp.ThreadID, State: cp.State})
	return nil
}

func (e *Engine) threadLock(threadID string) *sync.Mutex {
	v, _ := e.locks.LoadOrStore(threadID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

func (e *Engine) fire(ctx context.Context, ev HookEvent) {
	if e.hooks != nil {
		e.hooks.Fire(ctx, ev)
	}
}
