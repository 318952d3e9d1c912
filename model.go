package parley

import (
	"context"
	"time"

	"github.com/tmc/langchaingo/llms"
)

// Model is the language model contract the engine drives conversations with.
// The models package provides an implementation wrapping any LangChainGo
// llms.Model.
type Model interface {
	// Invoke sends the full message history and returns the model's next
	// message. When tools is non-empty the implementation must bind them
	// so the model may answer with a tool call; when tools is empty the
	// invocation must not permit tool-calling at all.
	Invoke(
		ctx context.Context,
		messages []llms.MessageContent,
		tools []llms.Tool,
	) (
		*ContentResponse,
		error,
	)
}

// ContentResponse is the response from a model invocation, with token usage
// normalized across providers.
type ContentResponse struct {
	// Choices contains the generated content choices. Implementations
	// guarantee at least one.
	Choices []*ContentChoice

	// Info contains generation metadata including normalized token counts.
	Info *GenerationInfo
}

// ContentChoice is a single content choice from the model.
type ContentChoice struct {
	// Content is the textual content of the response.
	Content string

	// StopReason is the reason the model stopped generating.
	StopReason string

	// ToolCalls is the list of tool calls the model asks to invoke.
	ToolCalls []llms.ToolCall

	// ReasoningContent contains reasoning/thinking content if the
	// provider exposes it.
	ReasoningContent string
}

// GenerationInfo contains metadata about the generation including normalized
// token counts.
type GenerationInfo struct {
	// InputTokens is the number of input/prompt tokens used.
	// Normalized across providers:
	//   - OpenAI: PromptTokens
	//   - Anthropic: InputTokens
	//   - Google / Bedrock: input_tokens
	InputTokens int

	// OutputTokens is the number of output/completion tokens generated.
	// Normalized across providers:
	//   - OpenAI: CompletionTokens
	//   - Anthropic: OutputTokens
	//   - Google / Bedrock: output_tokens
	OutputTokens int

	// TotalTokens is the total token count (InputTokens + OutputTokens).
	// Some providers return this directly; otherwise it's computed.
	TotalTokens int

	// CachedInputTokens is the number of input tokens served from cache.
	CachedInputTokens int

	// ReasoningTokens is the number of tokens used for reasoning/thinking.
	ReasoningTokens int

	// RawGenerationInfo contains the original provider-specific
	// GenerationInfo map for fields not covered by the normalized ones.
	RawGenerationInfo map[string]any

	// Duration is how long the generation took.
	Duration time.Duration
}
