package tt

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rickchristie/parley"
	"github.com/tmc/langchaingo/llms"
)

// -----------------------------------------------------------------------------
// MockModel - implements parley.Model
// -----------------------------------------------------------------------------

// MockRequest records the arguments of one Invoke call.
type MockRequest struct {
	Messages []llms.MessageContent
	Tools    []llms.Tool
}

// MockModel is a configurable mock that implements parley.Model. Queued
// responses are consumed in order; once the queue is exhausted, Invoke
// returns a plain acknowledgement.
type MockModel struct {
	name      string
	responses []*parley.ContentResponse
	errors    []error
	callCount int
	nextID    int

	// Requests stores the messages and tools passed to each Invoke
	// call. Populated automatically on every call.
	Requests []MockRequest
}

// NewMockModel creates a new MockModel with the default name "test-model".
func NewMockModel() *MockModel {
	return &MockModel{name: "test-model"}
}

// WithName sets the model name.
func (m *MockModel) WithName(name string) *MockModel {
	m.name = name
	return m
}

// AddText queues a plain text response with the specified content.
func (m *MockModel) AddText(content string) *MockModel {
	m.responses = append(m.responses, &parley.ContentResponse{
		Choices: []*parley.ContentChoice{{Content: content, StopReason: "stop"}},
		Info:    &parley.GenerationInfo{InputTokens: 10, OutputTokens: 5},
	})
	return m
}

// AddUpdate queues a response containing a single call to the named tool
// with the given arguments.
func (m *MockModel) AddUpdate(toolName string, args map[string]any) *MockModel {
	return m.AddToolCalls(m.Call(toolName, args))
}

// AddToolCalls queues a response containing the given tool calls verbatim.
// Use this to simulate protocol violations such as parallel update calls.
func (m *MockModel) AddToolCalls(calls ...llms.ToolCall) *MockModel {
	m.responses = append(m.responses, &parley.ContentResponse{
		Choices: []*parley.ContentChoice{{StopReason: "tool_calls", ToolCalls: calls}},
		Info:    &parley.GenerationInfo{InputTokens: 10, OutputTokens: 5},
	})
	return m
}

// Call builds a tool call with a deterministic ID (call_1, call_2, ...) and
// JSON-encoded arguments. Panics if args cannot be marshaled.
func (m *MockModel) Call(toolName string, args map[string]any) llms.ToolCall {
	m.nextID++
	payload, err := json.Marshal(args)
	if err != nil {
		panic(fmt.Sprintf("tt: marshal tool call args: %v", err))
	}
	return llms.ToolCall{
		ID:   fmt.Sprintf("call_%d", m.nextID),
		Type: "function",
		FunctionCall: &llms.FunctionCall{
			Name:      toolName,
			Arguments: string(payload),
		},
	}
}

// RawCall builds a tool call whose arguments are used verbatim, without JSON
// encoding. Use this to simulate malformed argument payloads.
func (m *MockModel) RawCall(toolName, args string) llms.ToolCall {
	m.nextID++
	return llms.ToolCall{
		ID:   fmt.Sprintf("call_%d", m.nextID),
		Type: "function",
		FunctionCall: &llms.FunctionCall{
			Name:      toolName,
			Arguments: args,
		},
	}
}

// AddRawResponse queues a raw ContentResponse.
// Use this when you need full control over the response
// structure (e.g., empty Choices slice).
func (m *MockModel) AddRawResponse(resp *parley.ContentResponse) *MockModel {
	m.responses = append(m.responses, resp)
	return m
}

// AddError queues an error for the next call.
func (m *MockModel) AddError(err error) *MockModel {
	// Extend responses slice if needed to match errors length
	for len(m.responses) <= len(m.errors) {
		m.responses = append(m.responses, nil)
	}
	m.errors = append(m.errors, err)
	return m
}

// CallCount returns the number of times Invoke has been called.
func (m *MockModel) CallCount() int {
	return m.callCount
}

// LastRequest returns the most recent request, or nil when Invoke has not
// been called yet.
func (m *MockModel) LastRequest() *MockRequest {
	if len(m.Requests) == 0 {
		return nil
	}
	return &m.Requests[len(m.Requests)-1]
}

// Invoke implements parley.Model.
func (m *MockModel) Invoke(
	_ context.Context,
	messages []llms.MessageContent,
	tools []llms.Tool,
) (*parley.ContentResponse, error) {
	idx := m.callCount
	m.callCount++

	// Capture the request for test verification
	m.Requests = append(m.Requests, MockRequest{Messages: messages, Tools: tools})

	if idx < len(m.errors) && m.errors[idx] != nil {
		return nil, m.errors[idx]
	}

	if idx < len(m.responses) && m.responses[idx] != nil {
		return m.responses[idx], nil
	}

	// Default: plain text acknowledgement
	return &parley.ContentResponse{
		Choices: []*parley.ContentChoice{{Content: "Understood.", StopReason: "stop"}},
		Info:    &parley.GenerationInfo{InputTokens: 10, OutputTokens: 5},
	}, nil
}

// Compile-time check that MockModel implements parley.Model.
var _ parley.Model = (*MockModel)(nil)

// Entry builds the update payload for a single field: the value, context, and
// quote keys plus any cast keys passed in casts.
func Entry(value, contextText, quote string, casts map[string]any) map[string]any {
	entry := map[string]any{
		"value":   value,
		"context": contextText,
		"quote":   quote,
	}
	for k, v := range casts {
		entry[k] = v
	}
	return entry
}

// -----------------------------------------------------------------------------
// MockStore - implements parley.Store
// -----------------------------------------------------------------------------

// MockStore is a configurable mock that implements parley.Store. It keeps
// checkpoints in memory and supports injectable failures and call counters,
// so tests can assert exactly when the engine persists.
type MockStore struct {
	mu    sync.Mutex
	items map[string]*parley.Checkpoint

	loadErr   error
	saveErr   error
	deleteErr error

	loadCount   int
	saveCount   int
	deleteCount int
}

// NewMockStore creates an empty MockStore.
func NewMockStore() *MockStore {
	return &MockStore{items: make(map[string]*parley.Checkpoint)}
}

// WithLoadError makes every subsequent Load fail with err.
func (s *MockStore) WithLoadError(err error) *MockStore {
	s.loadErr = err
	return s
}

// WithSaveError makes every subsequent Save fail with err.
func (s *MockStore) WithSaveError(err error) *MockStore {
	s.saveErr = err
	return s
}

// WithDeleteError makes every subsequent Delete fail with err.
func (s *MockStore) WithDeleteError(err error) *MockStore {
	s.deleteErr = err
	return s
}

// Seed stores a checkpoint directly, without touching the call counters.
func (s *MockStore) Seed(cp *parley.Checkpoint) *MockStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[cp.ThreadID] = cp.Clone()
	return s
}

// SaveCount returns the number of Save calls, including failed ones.
func (s *MockStore) SaveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveCount
}

// LoadCount returns the number of Load calls, including failed ones.
func (s *MockStore) LoadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadCount
}

// Saved returns a copy of the stored checkpoint for threadID, or nil when
// nothing is stored under that ID.
func (s *MockStore) Saved(threadID string) *parley.Checkpoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp, ok := s.items[threadID]
	if !ok {
		return nil
	}
	return cp.Clone()
}

// Load implements parley.Store.
func (s *MockStore) Load(_ context.Context, threadID string) (*parley.Checkpoint, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadCount++
	if s.loadErr != nil {
		return nil, false, s.loadErr
	}
	cp, ok := s.items[threadID]
	if !ok {
		return nil, false, nil
	}
	return cp.Clone(), true, nil
}

// Save implements parley.Store.
func (s *MockStore) Save(_ context.Context, cp *parley.Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveCount++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.items[cp.ThreadID] = cp.Clone()
	return nil
}

// Delete implements parley.Store.
func (s *MockStore) Delete(_ context.Context, threadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteCount++
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.items, threadID)
	return nil
}

// Compile-time check that MockStore implements parley.Store.
var _ parley.Store = (*MockStore)(nil)
