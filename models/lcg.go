// Package models provides parley.Model implementations backed by LangChainGo.
package models

import (
	"context"
	"errors"
	"time"

	"github.com/rickchristie/parley"
	"github.com/tmc/langchaingo/llms"
)

// LCG wraps an llms.Model and implements parley's Model interface. It binds
// the update tool when asked to, normalizes token usage across providers, and
// folds legacy single-function responses into the tool call list.
//
// Example usage:
//
//	llm, _ := openai.New(openai.WithToken(apiKey))
//	model := models.NewLCG(llm).WithModelName("gpt-4o")
type LCG struct {
	model     llms.Model
	modelName string
}

// NewLCG creates a new LCG wrapping the given llms.Model.
func NewLCG(model llms.Model) *LCG {
	return &LCG{
		model: model,
	}
}

// WithModelName sets a display name for the wrapped model. Returns the model
// for chaining.
func (m *LCG) WithModelName(name string) *LCG {
	m.modelName = name
	return m
}

// Name returns the display name set with WithModelName, "" when unset.
func (m *LCG) Name() string {
	return m.modelName
}

// Unwrap returns the underlying llms.Model.
func (m *LCG) Unwrap() llms.Model {
	return m.model
}

// Invoke implements parley.Model. Tools are bound with llms.WithTools only
// when the engine passes them; a call without tools cannot produce tool
// calls. A response without choices is reported as an error so callers never
// see an empty response.
func (m *LCG) Invoke(
	ctx context.Context,
	messages []llms.MessageContent,
	tools []llms.Tool,
) (*parley.ContentResponse, error) {
	var opts []llms.CallOption
	if len(tools) > 0 {
		opts = append(opts, llms.WithTools(tools))
	}

	startTime := time.Now()
	lcgResponse, err := m.model.GenerateContent(ctx, messages, opts...)
	if err != nil {
		return nil, err
	}

	response := convertLCGResponse(lcgResponse, time.Since(startTime))
	if len(response.Choices) == 0 {
		return nil, errors.New("model returned a response with no choices")
	}
	return response, nil
}

// convertLCGResponse converts an llms.ContentResponse to
// parley.ContentResponse with normalized tokens and tool calls.
func convertLCGResponse(
	lcgResponse *llms.ContentResponse,
	duration time.Duration,
) *parley.ContentResponse {
	response := &parley.ContentResponse{
		Choices: make([]*parley.ContentChoice, len(lcgResponse.Choices)),
		Info:    &parley.GenerationInfo{Duration: duration},
	}

	for i, choice := range lcgResponse.Choices {
		response.Choices[i] = &parley.ContentChoice{
			Content:          choice.Content,
			StopReason:       choice.StopReason,
			ToolCalls:        normalizeToolCalls(choice),
			ReasoningContent: choice.ReasoningContent,
		}
	}

	// Extract and normalize token info from the first choice's GenerationInfo
	if len(lcgResponse.Choices) > 0 && lcgResponse.Choices[0].GenerationInfo != nil {
		rawInfo := lcgResponse.Choices[0].GenerationInfo
		response.Info.RawGenerationInfo = rawInfo
		response.Info.InputTokens = extractInputTokens(rawInfo)
		response.Info.OutputTokens = extractOutputTokens(rawInfo)
		response.Info.TotalTokens = extractTotalTokens(
			rawInfo,
			response.Info.InputTokens,
			response.Info.OutputTokens,
		)
		response.Info.CachedInputTokens = extractCachedInputTokens(rawInfo)
		response.Info.ReasoningTokens = extractReasoningTokens(rawInfo)
	}

	return response
}

// normalizeToolCalls returns the choice's tool calls, converting the legacy
// single FuncCall form some providers still use into the ToolCalls list.
func normalizeToolCalls(choice *llms.ContentChoice) []llms.ToolCall {
	if len(choice.ToolCalls) > 0 || choice.FuncCall == nil {
		return choice.ToolCalls
	}
	return []llms.ToolCall{{
		Type:         "function",
		FunctionCall: choice.FuncCall,
	}}
}

// extractInputTokens extracts input/prompt token count from GenerationInfo.
// Handles different key names used by different providers.
func extractInputTokens(info map[string]any) int {
	// OpenAI / Ollama / Maritaca / Google (compat)
	if v := getIntFromMap(info, "PromptTokens"); v > 0 {
		return v
	}
	// Anthropic
	if v := getIntFromMap(info, "InputTokens"); v > 0 {
		return v
	}
	// Google / Bedrock
	if v := getIntFromMap(info, "input_tokens"); v > 0 {
		return v
	}
	return 0
}

// extractOutputTokens extracts output/completion token count from GenerationInfo.
func extractOutputTokens(info map[string]any) int {
	// OpenAI / Ollama / Maritaca / Google (compat)
	if v := getIntFromMap(info, "CompletionTokens"); v > 0 {
		return v
	}
	// Anthropic
	if v := getIntFromMap(info, "OutputTokens"); v > 0 {
		return v
	}
	// Google / Bedrock
	if v := getIntFromMap(info, "output_tokens"); v > 0 {
		return v
	}
	return 0
}

// extractTotalTokens extracts total token count or computes it.
func extractTotalTokens(info map[string]any, input, output int) int {
	// OpenAI / Ollama / Maritaca / Google (compat)
	if v := getIntFromMap(info, "TotalTokens"); v > 0 {
		return v
	}
	// Google / Bedrock
	if v := getIntFromMap(info, "total_tokens"); v > 0 {
		return v
	}
	// Compute if not available
	return input + output
}

// extractCachedInputTokens extracts cached input token count from GenerationInfo.
func extractCachedInputTokens(info map[string]any) int {
	// OpenAI
	if v := getIntFromMap(info, "PromptCachedTokens"); v > 0 {
		return v
	}
	// Anthropic
	if v := getIntFromMap(info, "CacheReadInputTokens"); v > 0 {
		return v
	}
	// Google / Ollama
	if v := getIntFromMap(info, "CachedTokens"); v > 0 {
		return v
	}
	return 0
}

// extractReasoningTokens extracts reasoning/thinking token count from GenerationInfo.
func extractReasoningTokens(info map[string]any) int {
	// OpenAI
	if v := getIntFromMap(info, "ReasoningTokens"); v > 0 {
		return v
	}
	if v := getIntFromMap(info, "CompletionReasoningTokens"); v > 0 {
		return v
	}
	if v := getIntFromMap(info, "ThinkingTokens"); v > 0 {
		return v
	}
	return 0
}

// getIntFromMap extracts an int value from a map, handling various numeric types.
func getIntFromMap(m map[string]any, key string) int {
	v, ok := m[key]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float64:
		return int(n)
	case float32:
		return int(n)
	default:
		return 0
	}
}

// Compile-time check that LCG implements parley.Model.
var _ parley.Model = (*LCG)(nil)
