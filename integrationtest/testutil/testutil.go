// Package testutil provides shared test infrastructure for integration
// test scenarios.
package testutil

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/rickchristie/parley"
	"github.com/rickchristie/parley/hooks"
	"github.com/rickchristie/parley/integrationtest/loggers"
	"github.com/rickchristie/parley/models"
	"github.com/tmc/langchaingo/llms/openai"
)

// TestConfig configures how integration test output is displayed.
type TestConfig struct {
	// ShowTranscript prints the full message transcript at the end.
	ShowTranscript bool
	// ShowSnapshot prints the collected field values at the end.
	ShowSnapshot bool
	// LogWriter is an optional writer for full debug logging.
	LogWriter io.Writer
}

// DefaultTestConfig returns a config suitable for go test.
func DefaultTestConfig() TestConfig {
	return TestConfig{
		ShowTranscript: true,
		ShowSnapshot:   true,
	}
}

// InteractiveConfig returns a config for the interactive CLI, which prints
// its own transcript as the conversation unfolds.
func InteractiveConfig() TestConfig {
	return TestConfig{
		ShowTranscript: false,
		ShowSnapshot:   true,
	}
}

// TestCase represents a test that can be run.
type TestCase struct {
	Name        string
	Description string
	Run         func(
		ctx context.Context,
		w io.Writer,
		config TestConfig,
	) error
}

// CreateModel creates a model for live testing from environment variables.
//
// PARLEY_TEST_OPENAI_KEY selects an OpenAI-compatible endpoint, with
// PARLEY_TEST_OPENAI_BASE_URL and PARLEY_TEST_OPENAI_MODEL overriding the
// defaults. When it is unset, PARLEY_TEST_GITHUB_TOKEN selects the GitHub
// Models API instead, with PARLEY_TEST_GITHUB_MODEL overriding the model.
// Tests should skip when this returns an error.
func CreateModel() (parley.Model, error) {
	if apiKey := os.Getenv("PARLEY_TEST_OPENAI_KEY"); apiKey != "" {
		modelName := os.Getenv("PARLEY_TEST_OPENAI_MODEL")
		if modelName == "" {
			modelName = "gpt-4o-mini"
		}

		opts := []openai.Option{
			openai.WithToken(apiKey),
			openai.WithModel(modelName),
		}
		if baseURL := os.Getenv("PARLEY_TEST_OPENAI_BASE_URL"); baseURL != "" {
			opts = append(opts, openai.WithBaseURL(baseURL))
		}

		llm, err := openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf(
				"failed to create OpenAI LLM: %w", err,
			)
		}
		return models.NewLCG(llm).WithModelName(modelName), nil
	}

	if token := os.Getenv("PARLEY_TEST_GITHUB_TOKEN"); token != "" {
		modelName := os.Getenv("PARLEY_TEST_GITHUB_MODEL")
		if modelName == "" {
			modelName = models.GHGPT4oMini
		}
		return models.NewGitHubModel(modelName, token)
	}

	return nil, fmt.Errorf(
		"PARLEY_TEST_OPENAI_KEY or PARLEY_TEST_GITHUB_TOKEN " +
			"environment variable not set",
	)
}

// PrintHeader prints a header line.
func PrintHeader(w io.Writer, title string) {
	line := strings.Repeat("=", 80)
	fmt.Fprintln(w, line)
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, line)
}

// PrintSection prints a section header.
func PrintSection(w io.Writer, title string) {
	fmt.Fprintf(w, "--- %s ---\n", title)
}

// ContainsIgnoreCase checks if s contains substr, case-insensitive.
func ContainsIgnoreCase(s, substr string) bool {
	sLower := make([]byte, len(s))
	substrLower := make([]byte, len(substr))
	for i := range len(s) {
		if s[i] >= 'A' && s[i] <= 'Z' {
			sLower[i] = s[i] + 32
		} else {
			sLower[i] = s[i]
		}
	}
	for i := range len(substr) {
		if substr[i] >= 'A' && substr[i] <= 'Z' {
			substrLower[i] = substr[i] + 32
		} else {
			substrLower[i] = substr[i]
		}
	}

	for i := 0; i <= len(sLower)-len(substrLower); i++ {
		match := true
		for j := range len(substrLower) {
			if sLower[i+j] != substrLower[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// -------------------------------------------------------------------------
// ScriptConfig + RunScript
// -------------------------------------------------------------------------

// ScriptConfig defines a scripted conversation for a live model run: the
// agent opens, then the replies are sent one by one until the conversation
// concludes or the script runs out.
type ScriptConfig struct {
	Name        string
	HeaderTitle string
	Collection  *parley.Collection
	// Replies are the respondent's utterances, sent in order.
	Replies []string
	// MaxTurns caps Advance calls so a meandering model cannot hang a
	// live test. Zero means one call per reply plus the opening.
	MaxTurns int
	// ActivateTraits maps possible trait names to the zero-based reply
	// index after which each is activated mid-conversation.
	ActivateTraits map[string]int
}

// RunScript executes a scripted conversation against a live model and
// returns the final snapshot so callers can assert on collected values.
func RunScript(
	ctx context.Context,
	w io.Writer,
	testCfg TestConfig,
	script ScriptConfig,
) (*parley.Snapshot, error) {
	model, err := CreateModel()
	if err != nil {
		return nil, err
	}

	store := parley.NewMemoryStore()
	engine := parley.NewEngine(script.Collection, model).
		WithStore(store)

	if testCfg.LogWriter != nil {
		registry := hooks.NewRegistry().Register(
			loggers.NewLoggerHookWithWriter(testCfg.LogWriter),
		)
		engine.WithHooks(registry)
	}

	threadID := parley.NewThreadID()

	maxTurns := script.MaxTurns
	if maxTurns == 0 {
		maxTurns = len(script.Replies) + 1
	}

	PrintHeader(w, script.HeaderTitle)
	fmt.Fprintln(w)
	PrintSection(w, "Conversation")
	fmt.Fprintln(w)

	reply, err := engine.Advance(ctx, threadID, "")
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(w, "Agent: %s\n\n", reply)

	turns := 1
	for i, utterance := range script.Replies {
		if turns >= maxTurns {
			break
		}
		if done, err := concluded(ctx, engine, threadID); err != nil {
			return nil, err
		} else if done {
			break
		}

		fmt.Fprintf(w, "Respondent: %s\n\n", utterance)
		reply, err = engine.Advance(ctx, threadID, utterance)
		if err != nil {
			return nil, err
		}
		turns++
		if reply != "" {
			fmt.Fprintf(w, "Agent: %s\n\n", reply)
		}

		for name, after := range script.ActivateTraits {
			if after == i {
				err = engine.ActivateTrait(
					ctx, threadID, parley.RoleRespondent, name,
				)
				if err != nil {
					return nil, err
				}
				fmt.Fprintf(w, "[trait activated: %s]\n\n", name)
			}
		}
	}

	snap, ok, err := engine.Snapshot(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no snapshot for thread %s", threadID)
	}

	if testCfg.ShowSnapshot {
		fmt.Fprintln(w)
		PrintSnapshot(w, snap)
	}

	if testCfg.ShowTranscript {
		cp, ok, err := store.Load(ctx, threadID)
		if err != nil {
			return nil, err
		}
		if ok {
			fmt.Fprintln(w)
			PrintTranscript(w, cp.Messages)
		}
	}

	fmt.Fprintln(w)
	PrintHeader(w, "SCRIPT COMPLETE")

	return snap, nil
}

// concluded reports whether the thread has reached teardown.
func concluded(
	ctx context.Context, engine *parley.Engine, threadID string,
) (bool, error) {
	snap, ok, err := engine.Snapshot(ctx, threadID)
	if err != nil || !ok {
		return false, err
	}
	return snap.State == parley.StateTeardown, nil
}

// PrintSnapshot prints every field of the snapshot, collected or not.
func PrintSnapshot(w io.Writer, snap *parley.Snapshot) {
	PrintSection(w, "Collected Fields")
	fmt.Fprintf(w, "State: %s\n", snap.State)
	fmt.Fprintf(w, "Complete: %v\n", snap.Complete)
	for _, f := range snap.Fields {
		if f.Value == nil {
			fmt.Fprintf(w, "%s: (not collected)\n", f.Name)
			continue
		}
		fmt.Fprintf(w, "%s: %s\n", f.Name, f.Value.Base)
		fmt.Fprintf(w, "  context: %s\n", f.Value.Context)
		fmt.Fprintf(w, "  quote: %s\n", f.Value.Quote)
		for _, name := range sortedKeys(f.Value.Transforms) {
			fmt.Fprintf(w, "  %s: %v\n", name, f.Value.Transforms[name])
		}
	}
}

// PrintTranscript prints the full message history, truncating very long
// messages such as the system prompt.
func PrintTranscript(w io.Writer, messages []parley.Message) {
	PrintSection(w, "Transcript")
	for i, msg := range messages {
		fmt.Fprintf(w, "\n[%d] %s\n", i, msg.Role)
		text := msg.Content
		if len(text) > 3000 {
			text = text[:3000] + "\n... (truncated)"
		}
		if text != "" {
			fmt.Fprintln(w, text)
		}
		for _, tc := range msg.ToolCalls {
			fmt.Fprintf(w, "(tool call %s: %s)\n", tc.Name, tc.Args)
		}
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
