package models

// GitHubModel is a model ID string for the GitHub Models API. Model IDs
// use the format "publisher/model-name" and are passed to NewGitHubModel.
//
// This list may not be exhaustive. To get the full, up-to-date catalog,
// query the GitHub Models REST API:
//
//	curl -H "Authorization: Bearer $GITHUB_TOKEN" \
//	  https://models.github.ai/catalog/models
//
// Each returned object has an "id" field with the model ID string.
// See: https://docs.github.com/en/rest/models/catalog
type GitHubModel = string

// -------------------------------------------------------------------
// OpenAI (publisher: openai)
// -------------------------------------------------------------------

const (
	// GPT-4.1 family
	GHGPT41     GitHubModel = "openai/gpt-4.1"
	GHGPT41Mini GitHubModel = "openai/gpt-4.1-mini"
	GHGPT41Nano GitHubModel = "openai/gpt-4.1-nano"

	// GPT-4o family
	GHGPT4o     GitHubModel = "openai/gpt-4o"
	GHGPT4oMini GitHubModel = "openai/gpt-4o-mini"

	// GPT-5 family
	GHGPT5     GitHubModel = "openai/gpt-5"
	GHGPT5Mini GitHubModel = "openai/gpt-5-mini"
	GHGPT5Nano GitHubModel = "openai/gpt-5-nano"

	// OpenAI reasoning models
	GHO1        GitHubModel = "openai/o1"
	GHO1Mini    GitHubModel = "openai/o1-mini"
	GHO1Preview GitHubModel = "openai/o1-preview"
	GHO3        GitHubModel = "openai/o3"
	GHO3Mini    GitHubModel = "openai/o3-mini"
	GHO4Mini    GitHubModel = "openai/o4-mini"
)

// -------------------------------------------------------------------
// Anthropic (publisher: anthropic)
// -------------------------------------------------------------------

const (
	GHClaude4Opus    GitHubModel = "anthropic/claude-4-opus"
	GHClaude4Sonnet  GitHubModel = "anthropic/claude-4-sonnet"
	GHClaude37Sonnet GitHubModel = "anthropic/claude-3.7-sonnet"
	GHClaude35Sonnet GitHubModel = "anthropic/claude-3.5-sonnet"
	GHClaude35Haiku  GitHubModel = "anthropic/claude-3.5-haiku"
)

// -------------------------------------------------------------------
// Google (publisher: google)
// -------------------------------------------------------------------

const (
	GHGemini25Pro   GitHubModel = "google/gemini-2.5-pro"
	GHGemini25Flash GitHubModel = "google/gemini-2.5-flash"
	GHGemini20Flash GitHubModel = "google/gemini-2.0-flash"
)

// -------------------------------------------------------------------
// Meta Llama (publisher: meta-llama)
// -------------------------------------------------------------------

const (
	GHLlama33_70B GitHubModel = "meta-llama/llama-3.3-70b-instruct"

	GHLlama31_405B GitHubModel = "meta-llama/meta-llama-3.1-405b-instruct"
	GHLlama31_8B   GitHubModel = "meta-llama/meta-llama-3.1-8b-instruct"

	GHLlama32_11BVision GitHubModel = "meta-llama/llama-3.2-11b-vision-instruct"
	GHLlama32_90BVision GitHubModel = "meta-llama/llama-3.2-90b-vision-instruct"

	GHLlama4Maverick GitHubModel = "meta-llama/llama-4-maverick-17b-128e-instruct-fp8"
	GHLlama4Scout    GitHubModel = "meta-llama/llama-4-scout-17b-16e-instruct"
)

// -------------------------------------------------------------------
// xAI Grok (publisher: xai)
// -------------------------------------------------------------------

const (
	GHGrok3     GitHubModel = "xai/grok-3"
	GHGrok3Mini GitHubModel = "xai/grok-3-mini"
)

// -------------------------------------------------------------------
// DeepSeek (publisher: deepseek)
// -------------------------------------------------------------------

const (
	GHDeepSeekR1     GitHubModel = "deepseek/deepseek-r1"
	GHDeepSeekR1_528 GitHubModel = "deepseek/deepseek-r1-0528"
	GHDeepSeekV3     GitHubModel = "deepseek/deepseek-v3-0324"
)

// -------------------------------------------------------------------
// Mistral AI (publisher: mistralai)
// -------------------------------------------------------------------

const (
	GHMistralMedium GitHubModel = "mistralai/mistral-medium-3"
	GHMistralSmall  GitHubModel = "mistralai/mistral-small-3.1"
	GHMinistral3B   GitHubModel = "mistralai/ministral-3b"
)

// -------------------------------------------------------------------
// Cohere (publisher: cohere)
// -------------------------------------------------------------------

const (
	GHCohereCommandA GitHubModel = "cohere/command-a"
)

// -------------------------------------------------------------------
// Microsoft Phi (publisher: azureml)
// -------------------------------------------------------------------

const (
	GHPhi4              GitHubModel = "azureml/Phi-4"
	GHPhi4Mini          GitHubModel = "azureml/Phi-4-mini-instruct"
	GHPhi4Multimodal    GitHubModel = "azureml/Phi-4-multimodal-instruct"
	GHPhi4Reasoning     GitHubModel = "azureml/Phi-4-reasoning"
	GHPhi4MiniReasoning GitHubModel = "azureml/Phi-4-mini-reasoning"
)

// -------------------------------------------------------------------
// AI21 Labs (publisher: ai21)
// -------------------------------------------------------------------

const (
	GHJamba15Large GitHubModel = "ai21/jamba-1-5-large"
)
