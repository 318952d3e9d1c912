package parley

import (
	"encoding/json"

	"github.com/tmc/langchaingo/llms"
)

// MessageRole identifies the author of one conversation message.
type MessageRole string

const (
	// MessageSystem is the engine's instruction message, always first.
	MessageSystem MessageRole = "system"
	// MessageAgent is a model-authored message: user-facing words, a tool
	// call, or both.
	MessageAgent MessageRole = "agent"
	// MessageRespondent is a human utterance.
	MessageRespondent MessageRole = "respondent"
	// MessageTool is the engine's acknowledgement of an applied update.
	MessageTool MessageRole = "tool"
)

// Message is one turn of a conversation in serializable form. Checkpoints
// persist messages as-is; the engine converts them to the model wire format
// on every call.
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content,omitempty"`
	// ToolCalls holds the structured update requests of an agent message.
	// The contract allows at most one, but the history preserves whatever
	// the model sent.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
	// ToolCallID ties a tool acknowledgement back to the call it answers.
	ToolCallID string `json:"tool_call_id,omitempty"`
	// ToolName is the name of the tool being acknowledged.
	ToolName string `json:"tool_name,omitempty"`
}

// ToolCall is one structured update request embedded in an agent message.
type ToolCall struct {
	// ID is the provider-assigned call id, generated when absent.
	ID string `json:"id"`
	// Name is the tool's name.
	Name string `json:"name"`
	// Args holds the raw JSON arguments.
	Args json.RawMessage `json:"args"`
}

// toLLMMessages converts the persisted history to the LangChainGo message
// format.
func toLLMMessages(msgs []Message) []llms.MessageContent {
	out := make([]llms.MessageContent, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case MessageSystem:
			out = append(out, llms.TextParts(llms.ChatMessageTypeSystem, m.Content))
		case MessageRespondent:
			out = append(out, llms.TextParts(llms.ChatMessageTypeHuman, m.Content))
		case MessageAgent:
			mc := llms.MessageContent{Role: llms.ChatMessageTypeAI}
			if m.Content != "" {
				mc.Parts = append(mc.Parts, llms.TextContent{Text: m.Content})
			}
			for _, tc := range m.ToolCalls {
				mc.Parts = append(mc.Parts, llms.ToolCall{
					ID:   tc.ID,
					Type: "function",
					FunctionCall: &llms.FunctionCall{
						Name:      tc.Name,
						Arguments: string(tc.Args),
					},
				})
			}
			out = append(out, mc)
		case MessageTool:
			out = append(out, llms.MessageContent{
				Role: llms.ChatMessageTypeTool,
				Parts: []llms.ContentPart{llms.ToolCallResponse{
					ToolCallID: m.ToolCallID,
					Name:       m.ToolName,
					Content:    m.Content,
				}},
			})
		}
	}
	return out
}
