package models

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

func TestGitHubModelMissingToken(t *testing.T) {
	_, err := NewGitHubModel(GHGPT4oMini, "")
	require.Error(t, err, "expected error for empty token")
	assert.Contains(
		t, err.Error(), "github token is required",
		"expected descriptive error message",
	)
}

func TestGitHubModelName(t *testing.T) {
	model, err := NewGitHubModel(GHGPT41Mini, "ghp_dummy")
	require.NoError(t, err)
	assert.Equal(t, GHGPT41Mini, model.Name())
}

func TestGitHubModelGenerate(t *testing.T) {
	token := os.Getenv("PARLEY_TEST_GITHUB_TOKEN")
	if token == "" {
		t.Skip("PARLEY_TEST_GITHUB_TOKEN not set")
	}

	ctx := context.Background()

	modelName := os.Getenv("PARLEY_TEST_GITHUB_MODEL")
	if modelName == "" {
		modelName = GHGPT4oMini
	}
	model, err := NewGitHubModel(modelName, token)
	require.NoError(t, err, "failed to create GitHub Models client")

	response, err := model.Invoke(ctx, []llms.MessageContent{
		llms.TextParts(
			llms.ChatMessageTypeHuman,
			"Reply with exactly: Hello from GitHub Models",
		),
	}, nil)
	require.NoError(t, err, "Invoke failed")

	require.NotEmpty(t, response.Choices, "expected non-empty choices")
	assert.NotEmpty(
		t, response.Choices[0].Content,
		"expected non-empty response content",
	)

	// Token counts arrive in OpenAI-compatible format.
	require.NotNil(t, response.Info, "expected generation info")
	assert.Greater(
		t, response.Info.InputTokens, 0,
		"expected positive input tokens",
	)
	assert.Greater(
		t, response.Info.OutputTokens, 0,
		"expected positive output tokens",
	)
	assert.Greater(
		t, response.Info.TotalTokens, 0,
		"expected positive total tokens",
	)
}
