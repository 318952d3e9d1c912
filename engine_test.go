package parley

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"text/template"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

// scriptModel is a scripted Model: it replays queued responses in order and
// records every request it receives. Calls past the end of the script get a
// plain text reply.
type scriptModel struct {
	mu        sync.Mutex
	responses []*ContentResponse
	errs      []error
	requests  [][]llms.MessageContent
	toolSets  [][]llms.Tool
}

var _ Model = (*scriptModel)(nil)

func newScriptModel() *scriptModel { return &scriptModel{} }

func (m *scriptModel) addText(content string) *scriptModel {
	return m.addResponse(&ContentResponse{
		Choices: []*ContentChoice{{Content: content, StopReason: "stop"}},
		Info:    &GenerationInfo{InputTokens: 10, OutputTokens: 5, TotalTokens: 15},
	})
}

func (m *scriptModel) addToolCalls(calls ...llms.ToolCall) *scriptModel {
	return m.addResponse(&ContentResponse{
		Choices: []*ContentChoice{{StopReason: "tool_calls", ToolCalls: calls}},
	})
}

func (m *scriptModel) addResponse(resp *ContentResponse) *scriptModel {
	m.responses = append(m.responses, resp)
	m.errs = append(m.errs, nil)
	return m
}

func (m *scriptModel) addError(err error) *scriptModel {
	m.responses = append(m.responses, nil)
	m.errs = append(m.errs, err)
	return m
}

func (m *scriptModel) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func (m *scriptModel) Invoke(
	ctx context.Context,
	messages []llms.MessageContent,
	tools []llms.Tool,
) (*ContentResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := len(m.requests)
	m.requests = append(m.requests, messages)
	m.toolSets = append(m.toolSets, tools)
	if i < len(m.errs) && m.errs[i] != nil {
		return nil, m.errs[i]
	}
	if i < len(m.responses) && m.responses[i] != nil {
		return m.responses[i], nil
	}
	return &ContentResponse{
		Choices: []*ContentChoice{{Content: "Understood.", StopReason: "stop"}},
		Info:    &GenerationInfo{InputTokens: 10, OutputTokens: 5, TotalTokens: 15},
	}, nil
}

// countStore wraps a MemoryStore, counting saves and optionally failing.
type countStore struct {
	*MemoryStore
	mu      sync.Mutex
	saves   int
	saveErr error
	loadErr error
}

func newCountStore() *countStore { return &countStore{MemoryStore: NewMemoryStore()} }

func (s *countStore) Load(ctx context.Context, threadID string) (*Checkpoint, bool, error) {
	if s.loadErr != nil {
		return nil, false, s.loadErr
	}
	return s.MemoryStore.Load(ctx, threadID)
}

func (s *countStore) Save(ctx context.Context, cp *Checkpoint) error {
	s.mu.Lock()
	s.saves++
	err := s.saveErr
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.MemoryStore.Save(ctx, cp)
}

func (s *countStore) saveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// recordingFirer collects every event the engine fires.
type recordingFirer struct {
	mu     sync.Mutex
	events []HookEvent
}

var _ HookFirer = (*recordingFirer)(nil)

func (f *recordingFirer) Fire(ctx context.Context, event HookEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *recordingFirer) all() []HookEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]HookEvent(nil), f.events...)
}

func (f *recordingFirer) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = nil
}

func eventNames(events []HookEvent) []string {
	out := make([]string, len(events))
	for i, ev := range events {
		switch ev.(type) {
		case BeforeAdvanceEvent:
			out[i] = "BeforeAdvance"
		case AfterAdvanceEvent:
			out[i] = "AfterAdvance"
		case StateChangeEvent:
			out[i] = "StateChange"
		case BeforeModelCallEvent:
			out[i] = "BeforeModelCall"
		case AfterModelCallEvent:
			out[i] = "AfterModelCall"
		case BeforeUpdateEvent:
			out[i] = "BeforeUpdate"
		case AfterUpdateEvent:
			out[i] = "AfterUpdate"
		case TraitActivatedEvent:
			out[i] = "TraitActivated"
		case CheckpointSavedEvent:
			out[i] = "CheckpointSaved"
		default:
			out[i] = fmt.Sprintf("%T", ev)
		}
	}
	return out
}

func engineCollection() *Collection {
	return NewCollection("order").
		Field("dish", "The dish the respondent wants.").
		Field("drink", "The drink the respondent wants.").
		MustBuild()
}

func veganCollection() *Collection {
	return NewCollection("order").
		WithRoleKind(RoleRespondent, "Diner").
		WithPossibleTrait(RoleRespondent, "Vegan", "the diner mentions avoiding animal products").
		Field("dish", "The dish the diner wants.").
		MustBuild()
}

const (
	dishArgs  = `{"dish":{"value":"Steak","context":"Asked what they would like to eat.","quote":"Steak, please."}}`
	drinkArgs = `{"drink":{"value":"Water","context":"Asked what they would like to drink.","quote":"Just water."}}`
)

func updateCall(id, args string) llms.ToolCall {
	return llms.ToolCall{
		ID:   id,
		Type: "function",
		FunctionCall: &llms.FunctionCall{
			Name:      "update_order",
			Arguments: args,
		},
	}
}

func historyRoles(msgs []Message) []MessageRole {
	out := make([]MessageRole, len(msgs))
	for i, m := range msgs {
		out[i] = m.Role
	}
	return out
}

// systemText returns the text of the first message in a recorded request.
func systemText(t *testing.T, req []llms.MessageContent) string {
	t.Helper()
	require.NotEmpty(t, req)
	require.NotEmpty(t, req[0].Parts)
	text, ok := req[0].Parts[0].(llms.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestEngine_OpeningTurn(t *testing.T) {
	ctx := context.Background()
	model := newScriptModel().addText("Hello! What would you like to eat?")
	store := newCountStore()
	c := engineCollection()
	e := NewEngine(c, model).WithStore(store)

	assert.Same(t, c, e.Collection())

	reply, err := e.Advance(ctx, "t1", "")
	require.NoError(t, err)
	assert.Equal(t, "Hello! What would you like to eat?", reply)

	// The opening call carries only the system prompt, with tool-calling
	// disabled so the model must greet in text.
	require.Equal(t, 1, model.callCount())
	require.Len(t, model.requests[0], 1)
	assert.Equal(t, llms.ChatMessageTypeSystem, model.requests[0][0].Role)
	assert.Empty(t, model.toolSets[0])

	cp, ok, err := store.Load(ctx, "t1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, StateListen, cp.State)
	assert.Equal(t, []MessageRole{MessageSystem, MessageAgent}, historyRoles(cp.Messages))
	assert.Equal(t, reply, cp.Messages[1].Content)
	assert.Equal(t, 1, store.saveCount())
}

func TestEngine_OpeningTurnWithInput(t *testing.T) {
	ctx := context.Background()
	model := newScriptModel().addText("Welcome! And what would you like to drink?")
	e := NewEngine(engineCollection(), model)

	reply, err := e.Advance(ctx, "t1", "Hi! I'd like the steak.")
	require.NoError(t, err)
	assert.Equal(t, "Welcome! And what would you like to drink?", reply)

	// Respondent input before the first call enables the update tool.
	require.Len(t, model.requests[0], 2)
	assert.Equal(t, llms.ChatMessageTypeHuman, model.requests[0][1].Role)
	require.Len(t, model.toolSets[0], 1)
	assert.Equal(t, "update_order", model.toolSets[0][0].Function.Name)
}

func TestEngine_FullConversation(t *testing.T) {
	ctx := context.Background()
	model := newScriptModel().
		addText("Hello! What would you like to eat?").
		addToolCalls(updateCall("call_1", dishArgs)).
		addText("Steak it is. Anything to drink?").
		addToolCalls(updateCall("call_2", drinkArgs)).
		addText("Perfect, that is everything. Enjoy your meal!")
	store := newCountStore()
	e := NewEngine(engineCollection(), model).WithStore(store)

	reply, err := e.Advance(ctx, "t1", "")
	require.NoError(t, err)
	assert.Equal(t, "Hello! What would you like to eat?", reply)

	reply, err = e.Advance(ctx, "t1", "Steak, please.")
	require.NoError(t, err)
	assert.Equal(t, "Steak it is. Anything to drink?", reply)

	// The update turn makes two model calls: the tool call, then the forced
	// text reply after the acknowledgement.
	require.Equal(t, 3, model.callCount())
	assert.Len(t, model.toolSets[1], 1)
	assert.Empty(t, model.toolSets[2])

	snap, ok, err := e.Snapshot(ctx, "t1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, snap.Complete)
	assert.Equal(t, "Steak", snap.Field("dish").Value.Base)
	assert.Nil(t, snap.Field("drink").Value)

	reply, err = e.Advance(ctx, "t1", "Just water.")
	require.NoError(t, err)
	assert.Equal(t, "Perfect, that is everything. Enjoy your meal!", reply)

	cp, ok, err := store.Load(ctx, "t1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, StateTeardown, cp.State)
	assert.Equal(t, []MessageRole{
		MessageSystem, MessageAgent, MessageRespondent, MessageAgent, MessageTool,
		MessageAgent, MessageRespondent, MessageAgent, MessageTool, MessageAgent,
	}, historyRoles(cp.Messages))
	assert.Equal(t, "Recorded: dish.", cp.Messages[4].Content)
	assert.Equal(t, "Steak", cp.Values["dish"].Base)
	assert.Equal(t, "Water", cp.Values["drink"].Base)
	assert.Equal(t, 3, store.saveCount())

	snap, _, err = e.Snapshot(ctx, "t1")
	require.NoError(t, err)
	assert.True(t, snap.Complete)

	// The conversation is over; further input does nothing.
	reply, err = e.Advance(ctx, "t1", "One more thing...")
	require.NoError(t, err)
	assert.Equal(t, "", reply)
	assert.Equal(t, 5, model.callCount())
	assert.Equal(t, 3, store.saveCount())
}

func TestEngine_VeganMenuScenario(t *testing.T) {
	ctx := context.Background()
	c := NewCollection("order").
		WithRoleKind(RoleRespondent, "Diner").
		WithPossibleTrait(RoleRespondent, "Vegan", "the diner mentions avoiding animal products").
		Field("starter", "The starter course.").
		AsOne("choice", "Garden salad", "Prawn cocktail").
		Field("main_course", "The main course.").
		AsOne("choice", "Veggie pasta", "Roast chicken").
		Field("dessert", "The dessert course.").
		AsOne("choice", "Fruit sorbet", "Cheesecake").
		MustBuild()

	menuArgs := `{
		"starter": {"value": "Garden salad", "context": "Chose the plant-based starter.", "quote": "I am vegan, plant-based only", "exactly_one_choice": "Garden salad"},
		"main_course": {"value": "Veggie pasta", "context": "Chose the plant-based main.", "quote": "I am vegan, plant-based only", "exactly_one_choice": "Veggie pasta"},
		"dessert": {"value": "Fruit sorbet", "context": "Chose the dairy-free dessert.", "quote": "I am vegan, plant-based only", "exactly_one_choice": "Fruit sorbet"}
	}`
	model := newScriptModel().
		addText("Welcome! What would you like this evening?").
		addToolCalls(updateCall("call_1", menuArgs)).
		addText("A fully plant-based meal it is. Enjoy!")
	store := newCountStore()
	e := NewEngine(c, model).WithStore(store)

	reply, err := e.Advance(ctx, "t1", "")
	require.NoError(t, err)
	assert.Equal(t, "Welcome! What would you like this evening?", reply)

	reply, err = e.Advance(ctx, "t1", "I am vegan, plant-based only")
	require.NoError(t, err)
	assert.Equal(t, "A fully plant-based meal it is. Enjoy!", reply)

	cp, ok, err := store.Load(ctx, "t1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, StateTeardown, cp.State)
	assert.Equal(t, "Recorded: starter, main_course, dessert.", cp.Messages[4].Content)
	assert.Len(t, cp.Values, 3)

	snap, ok, err := e.Snapshot(ctx, "t1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, snap.Complete)
	for field, want := range map[string]string{
		"starter":     "Garden salad",
		"main_course": "Veggie pasta",
		"dessert":     "Fruit sorbet",
	} {
		value := snap.Field(field).Value
		require.NotNil(t, value, field)
		assert.Equal(t, want, value.Base, field)
		chosen, ok := value.Choice("one_choice")
		require.True(t, ok, field)
		assert.Equal(t, want, chosen, field)
	}
}

func TestEngine_ProbeReplaysLastMessage(t *testing.T) {
	ctx := context.Background()
	model := newScriptModel().addText("Hello! What would you like to eat?")
	store := newCountStore()
	e := NewEngine(engineCollection(), model).WithStore(store)

	first, err := e.Advance(ctx, "t1", "")
	require.NoError(t, err)

	// An empty input while listening replays the current message without a
	// model call or a save.
	again, err := e.Advance(ctx, "t1", "")
	require.NoError(t, err)
	assert.Equal(t, first, again)
	assert.Equal(t, 1, model.callCount())
	assert.Equal(t, 1, store.saveCount())
}

func TestEngine_EmptyThreadID(t *testing.T) {
	ctx := context.Background()
	e := NewEngine(veganCollection(), newScriptModel())

	_, err := e.Advance(ctx, "", "hi")
	assert.EqualError(t, err, "parley: thread id must not be empty")

	err = e.ActivateTrait(ctx, "", RoleRespondent, "Vegan")
	assert.EqualError(t, err, "parley: thread id must not be empty")
}

func TestEngine_ModelError(t *testing.T) {
	ctx := context.Background()
	cause := errors.New("rate limited")
	model := newScriptModel().
		addError(cause).
		addText("Hello! What would you like to eat?")
	store := newCountStore()
	e := NewEngine(engineCollection(), model).WithStore(store)

	_, err := e.Advance(ctx, "t1", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "model call on thread t1")
	assert.Equal(t, 0, store.MemoryStore.Len())

	// The failed turn left no trace; retrying starts clean.
	reply, err := e.Advance(ctx, "t1", "")
	require.NoError(t, err)
	assert.Equal(t, "Hello! What would you like to eat?", reply)
}

func TestEngine_EmptyModelResponse(t *testing.T) {
	ctx := context.Background()
	model := newScriptModel().addResponse(&ContentResponse{})
	e := NewEngine(engineCollection(), model)

	_, err := e.Advance(ctx, "t1", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model returned no choices")
}

func TestEngine_ProtocolViolations(t *testing.T) {
	tests := []struct {
		name  string
		input string
		calls []llms.ToolCall
		code  ProtocolCode
	}{
		{
			name:  "tool call while disabled",
			input: "",
			calls: []llms.ToolCall{updateCall("call_1", dishArgs)},
			code:  CodeUnsolicitedUpdate,
		},
		{
			name:  "multiple tool calls",
			input: "Steak and water.",
			calls: []llms.ToolCall{
				updateCall("call_1", dishArgs),
				updateCall("call_2", drinkArgs),
			},
			code: CodeMultipleUpdates,
		},
		{
			name:  "unknown tool",
			input: "Steak, please.",
			calls: []llms.ToolCall{{
				ID:           "call_1",
				Type:         "function",
				FunctionCall: &llms.FunctionCall{Name: "search_menu", Arguments: "{}"},
			}},
			code: CodeUnknownTool,
		},
		{
			name:  "tool call without function payload",
			input: "Steak, please.",
			calls: []llms.ToolCall{{ID: "call_1", Type: "function"}},
			code:  CodeMalformedArguments,
		},
		{
			name:  "arguments are not JSON",
			input: "Steak, please.",
			calls: []llms.ToolCall{updateCall("call_1", `{"dish":`)},
			code:  CodeMalformedArguments,
		},
		{
			name:  "arguments fail schema validation",
			input: "Steak, please.",
			calls: []llms.ToolCall{updateCall("call_1", `{"dish":{"value":"Steak"}}`)},
			code:  CodeMalformedArguments,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			model := newScriptModel().addToolCalls(tt.calls...)
			store := newCountStore()
			e := NewEngine(engineCollection(), model).WithStore(store)

			_, err := e.Advance(ctx, "t1", tt.input)
			var perr *ProtocolError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.code, perr.Code)
			assert.Equal(t, "t1", perr.ThreadID)

			// The rejected turn persisted nothing.
			assert.Equal(t, 0, store.saveCount())
		})
	}
}

func TestEngine_RetryAfterViolation(t *testing.T) {
	ctx := context.Background()
	model := newScriptModel().
		addToolCalls(llms.ToolCall{
			ID:           "call_1",
			Type:         "function",
			FunctionCall: &llms.FunctionCall{Name: "search_menu", Arguments: "{}"},
		}).
		addToolCalls(updateCall("call_2", dishArgs)).
		addText("Got it. And what would you like to drink?")
	store := newCountStore()
	e := NewEngine(engineCollection(), model).WithStore(store)

	_, err := e.Advance(ctx, "t1", "Steak, please.")
	require.Error(t, err)

	reply, err := e.Advance(ctx, "t1", "Steak, please.")
	require.NoError(t, err)
	assert.Equal(t, "Got it. And what would you like to drink?", reply)

	// The failed turn is absent from history.
	cp, ok, err := store.Load(ctx, "t1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []MessageRole{
		MessageSystem, MessageRespondent, MessageAgent, MessageTool, MessageAgent,
	}, historyRoles(cp.Messages))
	assert.Equal(t, "Steak", cp.Values["dish"].Base)
}

func TestEngine_GeneratedToolCallID(t *testing.T) {
	ctx := context.Background()
	call := llms.ToolCall{
		Type:         "function",
		FunctionCall: &llms.FunctionCall{Name: "update_order", Arguments: dishArgs},
	}
	model := newScriptModel().addToolCalls(call).addText("Noted!")
	store := newCountStore()
	e := NewEngine(engineCollection(), model).WithStore(store)

	_, err := e.Advance(ctx, "t1", "Steak, please.")
	require.NoError(t, err)

	cp, ok, err := store.Load(ctx, "t1")
	require.NoError(t, err)
	require.True(t, ok)

	var tc *ToolCall
	var ack *Message
	for i := range cp.Messages {
		m := &cp.Messages[i]
		if m.Role == MessageAgent && len(m.ToolCalls) == 1 {
			tc = &m.ToolCalls[0]
		}
		if m.Role == MessageTool {
			ack = m
		}
	}
	require.NotNil(t, tc)
	require.NotNil(t, ack)
	assert.Len(t, tc.ID, 36)
	assert.Equal(t, tc.ID, ack.ToolCallID)
	assert.Equal(t, "update_order", ack.ToolName)
}

func TestEngine_ResumeAcrossEngines(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	model1 := newScriptModel().addText("Hello! What would you like to eat?")
	e1 := NewEngine(engineCollection(), model1).WithStore(store)
	_, err := e1.Advance(ctx, "t1", "")
	require.NoError(t, err)

	model2 := newScriptModel().addText("Good choice. What would you like to drink?")
	e2 := NewEngine(engineCollection(), model2).WithStore(store)
	reply, err := e2.Advance(ctx, "t1", "The steak, please.")
	require.NoError(t, err)
	assert.Equal(t, "Good choice. What would you like to drink?", reply)

	// The resumed call carries the full persisted history.
	require.Len(t, model2.requests[0], 3)
	assert.Equal(t, llms.ChatMessageTypeSystem, model2.requests[0][0].Role)
	assert.Equal(t, llms.ChatMessageTypeAI, model2.requests[0][1].Role)
	assert.Equal(t, llms.ChatMessageTypeHuman, model2.requests[0][2].Role)
}

func TestEngine_ActivateTrait_FreshThread(t *testing.T) {
	ctx := context.Background()
	model := newScriptModel().addText("Welcome! What can I get you?")
	store := newCountStore()
	e := NewEngine(veganCollection(), model).WithStore(store)

	require.NoError(t, e.ActivateTrait(ctx, "t1", RoleRespondent, "Vegan"))
	assert.Equal(t, 1, store.saveCount())

	_, err := e.Advance(ctx, "t1", "")
	require.NoError(t, err)
	prompt := systemText(t, model.requests[0])
	assert.Contains(t, prompt, "# The Diner\n\n- Vegan\n")
	assert.NotContains(t, prompt, "Possible trait (Vegan)")
}

func TestEngine_ActivateTrait_RebuildsPrompt(t *testing.T) {
	ctx := context.Background()
	model := newScriptModel().
		addText("Welcome! What can I get you?").
		addText("Of course, the risotto is plant-based.")
	store := NewMemoryStore()
	e := NewEngine(veganCollection(), model).WithStore(store)

	_, err := e.Advance(ctx, "t1", "")
	require.NoError(t, err)
	assert.Contains(t, systemText(t, model.requests[0]), "Possible trait (Vegan)")

	require.NoError(t, e.ActivateTrait(ctx, "t1", RoleRespondent, "Vegan"))

	_, err = e.Advance(ctx, "t1", "I don't eat animal products. What is vegan here?")
	require.NoError(t, err)
	prompt := systemText(t, model.requests[1])
	assert.Contains(t, prompt, "- Vegan\n")
	assert.NotContains(t, prompt, "Possible trait (Vegan)")

	// The persisted history carries the rebuilt prompt.
	cp, ok, err := store.Load(ctx, "t1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, prompt, cp.Messages[0].Content)
}

func TestEngine_ActivateTrait_Validation(t *testing.T) {
	ctx := context.Background()
	e := NewEngine(veganCollection(), newScriptModel())

	err := e.ActivateTrait(ctx, "t1", RoleID("moderator"), "Vegan")
	assert.EqualError(t, err, `parley: unknown role "moderator"`)

	err = e.ActivateTrait(ctx, "t1", RoleRespondent, "Gluten Free")
	assert.EqualError(t, err, `parley: role respondent has no possible trait "Gluten Free"`)
}

func TestEngine_ActivateTrait_Idempotent(t *testing.T) {
	ctx := context.Background()
	firer := &recordingFirer{}
	store := newCountStore()
	e := NewEngine(veganCollection(), newScriptModel()).WithStore(store).WithHooks(firer)

	require.NoError(t, e.ActivateTrait(ctx, "t1", RoleRespondent, "Vegan"))
	require.NoError(t, e.ActivateTrait(ctx, "t1", RoleRespondent, "Vegan"))

	assert.Equal(t, 1, store.saveCount())
	var activations int
	for _, ev := range firer.all() {
		if _, ok := ev.(TraitActivatedEvent); ok {
			activations++
		}
	}
	assert.Equal(t, 1, activations)
}

func TestEngine_HookEvents_OpeningTurn(t *testing.T) {
	ctx := context.Background()
	firer := &recordingFirer{}
	model := newScriptModel().addText("Hello!")
	e := NewEngine(engineCollection(), model).WithHooks(firer)

	_, err := e.Advance(ctx, "t1", "")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"BeforeAdvance",
		"StateChange",
		"BeforeModelCall",
		"AfterModelCall",
		"StateChange",
		"CheckpointSaved",
		"AfterAdvance",
	}, eventNames(firer.all()))
}

func TestEngine_HookEvents_UpdateTurn(t *testing.T) {
	ctx := context.Background()
	firer := &recordingFirer{}
	model := newScriptModel().
		addText("Hello! What would you like to eat?").
		addToolCalls(updateCall("call_1", dishArgs)).
		addText("Steak it is. Anything to drink?")
	e := NewEngine(engineCollection(), model).WithHooks(firer)

	_, err := e.Advance(ctx, "t1", "")
	require.NoError(t, err)
	firer.reset()

	_, err = e.Advance(ctx, "t1", "Steak, please.")
	require.NoError(t, err)

	events := firer.all()
	assert.Equal(t, []string{
		"BeforeAdvance",
		"StateChange",
		"BeforeModelCall",
		"AfterModelCall",
		"StateChange",
		"BeforeUpdate",
		"AfterUpdate",
		"StateChange",
		"BeforeModelCall",
		"AfterModelCall",
		"StateChange",
		"CheckpointSaved",
		"AfterAdvance",
	}, eventNames(events))

	var changes []StateChangeEvent
	var modelCalls []BeforeModelCallEvent
	var updates []AfterUpdateEvent
	for _, ev := range events {
		switch evt := ev.(type) {
		case StateChangeEvent:
			changes = append(changes, evt)
		case BeforeModelCallEvent:
			modelCalls = append(modelCalls, evt)
		case AfterUpdateEvent:
			updates = append(updates, evt)
		}
	}
	assert.Equal(t, []StateChangeEvent{
		{ThreadID: "t1", From: StateListen, To: StateThink},
		{ThreadID: "t1", From: StateThink, To: StateTools},
		{ThreadID: "t1", From: StateTools, To: StateThink},
		{ThreadID: "t1", From: StateThink, To: StateListen},
	}, changes)
	require.Len(t, modelCalls, 2)
	assert.True(t, modelCalls[0].ToolsEnabled)
	assert.False(t, modelCalls[1].ToolsEnabled)
	require.Len(t, updates, 1)
	assert.Equal(t, []string{"dish"}, updates[0].Fields)
	assert.NoError(t, updates[0].Error)
}

func TestEngine_StoreErrors(t *testing.T) {
	ctx := context.Background()

	store := newCountStore()
	store.saveErr = errors.New("disk full")
	e := NewEngine(engineCollection(), newScriptModel().addText("Hello!")).WithStore(store)
	_, err := e.Advance(ctx, "t1", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save checkpoint for thread t1")
	assert.ErrorIs(t, err, store.saveErr)

	store = newCountStore()
	store.loadErr = errors.New("connection reset")
	e = NewEngine(engineCollection(), newScriptModel()).WithStore(store)
	_, err = e.Advance(ctx, "t1", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load checkpoint for thread t1")
	assert.ErrorIs(t, err, store.loadErr)
}

func TestEngine_WithSystemTemplate(t *testing.T) {
	ctx := context.Background()
	tmpl := template.Must(template.New("minimal").
		Parse("Collect {{.Collection}} from the {{.Respondent.Kind}}."))
	model := newScriptModel().addText("Hello!")
	e := NewEngine(engineCollection(), model).WithSystemTemplate(tmpl)

	_, err := e.Advance(ctx, "t1", "")
	require.NoError(t, err)
	assert.Equal(t, "Collect order from the Respondent.", systemText(t, model.requests[0]))
}

func TestEngine_ConcurrentThreads(t *testing.T) {
	model := newScriptModel()
	store := NewMemoryStore()
	e := NewEngine(engineCollection(), model).WithStore(store)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := e.Advance(context.Background(), fmt.Sprintf("t%d", i), "")
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, 8, store.Len())
	assert.Equal(t, 8, model.callCount())
}

func TestEngine_SnapshotMissingThread(t *testing.T) {
	e := NewEngine(engineCollection(), newScriptModel())

	snap, ok, err := e.Snapshot(context.Background(), "ghost")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, snap)
}
