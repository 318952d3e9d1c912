// Package loggers provides reusable logging hooks for integration testing.
package loggers

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rickchristie/parley"
	"github.com/tmc/langchaingo/llms"
	"gopkg.in/yaml.v3"
)

// LoggerHook implements all hook interfaces to log everything that happens
// during a conversation. Structured payloads are logged as YAML with block
// scalars for easy reading. Nothing is truncated - full content is always
// logged.
type LoggerHook struct {
	out io.Writer
}

// NewLoggerHook creates a new LoggerHook that writes to stdout.
func NewLoggerHook() *LoggerHook {
	return &LoggerHook{
		out: os.Stdout,
	}
}

// NewLoggerHookWithWriter creates a new LoggerHook that writes to the given writer.
func NewLoggerHookWithWriter(w io.Writer) *LoggerHook {
	return &LoggerHook{
		out: w,
	}
}

// logEvent logs an event header with timestamp.
func (h *LoggerHook) logEvent(name string) {
	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	fmt.Fprintf(h.out, "\n>>> [%s]: %s\n", name, timestamp)
}

// log writes a line without any prefix.
func (h *LoggerHook) log(format string, args ...any) {
	fmt.Fprintf(h.out, format+"\n", args...)
}

func (h *LoggerHook) logYAML(v any) {
	data, err := yaml.Marshal(v)
	if err != nil {
		h.log("(failed to marshal: %v)", err)
		return
	}
	fmt.Fprint(h.out, string(data))
}

// OnBeforeAdvance logs the start of a turn with the respondent's input.
func (h *LoggerHook) OnBeforeAdvance(
	ctx context.Context,
	event parley.BeforeAdvanceEvent,
) {
	h.logEvent("BeforeAdvance")
	h.log("================================================================================")
	h.log("TURN STARTED")
	h.log("================================================================================")
	h.log("Thread: %s", event.ThreadID)
	h.log("State: %s", event.State)
	if event.Input != "" {
		h.log("")
		h.log("Input:")
		for _, line := range strings.Split(event.Input, "\n") {
			h.log("  %s", line)
		}
	}
}

// OnAfterAdvance logs the turn's outcome.
func (h *LoggerHook) OnAfterAdvance(
	ctx context.Context,
	event parley.AfterAdvanceEvent,
) {
	h.logEvent("AfterAdvance")
	h.log("================================================================================")
	h.log("TURN COMPLETED")
	h.log("================================================================================")

	eventData := map[string]any{
		"thread":   event.ThreadID,
		"state":    string(event.State),
		"duration": event.Duration.String(),
	}
	if event.Reply != "" {
		eventData["reply"] = event.Reply
	}
	if event.Error != nil {
		eventData["error"] = event.Error.Error()
	}
	h.logYAML(eventData)
}

// OnStateChange logs every state transition, including the transient ones.
func (h *LoggerHook) OnStateChange(
	ctx context.Context,
	event parley.StateChangeEvent,
) {
	h.logEvent(fmt.Sprintf("StateChange: %s -> %s", event.From, event.To))
}

// OnBeforeModelCall logs the request before a model call.
func (h *LoggerHook) OnBeforeModelCall(
	ctx context.Context,
	event parley.BeforeModelCallEvent,
) {
	h.logEvent(fmt.Sprintf("BeforeModelCall (tools enabled: %v)", event.ToolsEnabled))

	h.log("Request:")
	for i, msg := range event.Request {
		h.log("  [%d] Role: %s", i, msg.Role)
		for _, part := range msg.Parts {
			if tc, ok := part.(llms.TextContent); ok {
				h.log("      Content:")
				for _, line := range strings.Split(tc.Text, "\n") {
					h.log("        %s", line)
				}
			}
		}
	}
}

// OnAfterModelCall logs the response after a model call.
func (h *LoggerHook) OnAfterModelCall(
	ctx context.Context,
	event parley.AfterModelCallEvent,
) {
	h.logEvent(fmt.Sprintf("AfterModelCall (duration: %s)", event.Duration))

	if event.Error != nil {
		h.log("Error: %v", event.Error)
		return
	}

	if event.Response != nil {
		for i, choice := range event.Response.Choices {
			h.log("Choice[%d]:", i)
			if choice.Content != "" {
				h.log("  Content:")
				for _, line := range strings.Split(choice.Content, "\n") {
					h.log("    %s", line)
				}
			}
			for _, tc := range choice.ToolCalls {
				if tc.FunctionCall == nil {
					continue
				}
				h.log("  ToolCall: %s", tc.FunctionCall.Name)
				h.log("    Arguments:")
				for _, line := range strings.Split(tc.FunctionCall.Arguments, "\n") {
					h.log("      %s", line)
				}
			}
			if choice.StopReason != "" {
				h.log("  StopReason: %s", choice.StopReason)
			}
		}

		if info := event.Response.Info; info != nil {
			h.log("Tokens: input=%d, output=%d, total=%d",
				info.InputTokens, info.OutputTokens, info.TotalTokens)
		}
	}
}

// OnBeforeUpdate logs the decoded update arguments before validation.
func (h *LoggerHook) OnBeforeUpdate(
	ctx context.Context,
	event parley.BeforeUpdateEvent,
) {
	h.logEvent(fmt.Sprintf("BeforeUpdate: %s", event.CallID))
	h.log("Args:")
	h.logYAML(event.Args)
}

// OnAfterUpdate logs the outcome of an update attempt.
func (h *LoggerHook) OnAfterUpdate(
	ctx context.Context,
	event parley.AfterUpdateEvent,
) {
	h.logEvent("AfterUpdate")

	if event.Error != nil {
		h.log("Rejected: %v", event.Error)
		return
	}

	h.log("Fields:")
	h.logYAML(event.Fields)
}

// OnTraitActivated logs trait activations.
func (h *LoggerHook) OnTraitActivated(
	ctx context.Context,
	event parley.TraitActivatedEvent,
) {
	h.logEvent(fmt.Sprintf("TraitActivated: %s/%s", event.Role, event.Trait))
}

// OnCheckpointSaved logs every persisted checkpoint.
func (h *LoggerHook) OnCheckpointSaved(
	ctx context.Context,
	event parley.CheckpointSavedEvent,
) {
	h.logEvent(fmt.Sprintf("CheckpointSaved: %s (state: %s)", event.ThreadID, event.State))
}

// Compile-time checks that LoggerHook implements all hook interfaces.
var (
	_ parley.BeforeAdvanceHook   = (*LoggerHook)(nil)
	_ parley.AfterAdvanceHook    = (*LoggerHook)(nil)
	_ parley.StateChangeHook     = (*LoggerHook)(nil)
	_ parley.BeforeModelCallHook = (*LoggerHook)(nil)
	_ parley.AfterModelCallHook  = (*LoggerHook)(nil)
	_ parley.BeforeUpdateHook    = (*LoggerHook)(nil)
	_ parley.AfterUpdateHook     = (*LoggerHook)(nil)
	_ parley.TraitActivatedHook  = (*LoggerHook)(nil)
	_ parley.CheckpointSavedHook = (*LoggerHook)(nil)
)
