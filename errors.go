package parley

import "fmt"

// ProtocolCode classifies violations of the update contract between the
// engine and the model.
type ProtocolCode string

const (
	// CodeMultipleUpdates means the model emitted more than one tool call
	// in a single response. The contract allows at most one.
	CodeMultipleUpdates ProtocolCode = "MULTIPLE_UPDATE_CALLS"

	// CodeUnknownTool means the model called a tool other than the
	// collection's update tool.
	CodeUnknownTool ProtocolCode = "UNKNOWN_TOOL"

	// CodeUnsolicitedUpdate means the model emitted a tool call on an
	// invocation where tool-calling was disabled.
	CodeUnsolicitedUpdate ProtocolCode = "UNSOLICITED_UPDATE_CALL"

	// CodeMalformedArguments means the update tool's arguments were not
	// valid JSON or did not validate against the collection's schema.
	CodeMalformedArguments ProtocolCode = "MALFORMED_UPDATE_ARGUMENTS"
)

// ProtocolError reports a fatal-for-the-turn violation of the update
// contract. The turn is rejected as a whole: no message is persisted, no
// field value is written, and the conversation remains at its previous
// stable state, so the caller may simply retry the turn.
type ProtocolError struct {
	// Code identifies the kind of violation.
	Code ProtocolCode
	// ThreadID is the conversation thread the violation occurred on.
	ThreadID string
	// Detail describes the specific violation in human-readable form.
	Detail string
	// Err holds the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *ProtocolError) Error() string {
	msg := fmt.Sprintf("parley: protocol violation %s on thread %s: %s",
		e.Code, e.ThreadID, e.Detail)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause, if any.
func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// protocolErr builds a ProtocolError for the given thread.
func protocolErr(code ProtocolCode, threadID, detail string, err error) *ProtocolError {
	return &ProtocolError{Code: code, ThreadID: threadID, Detail: detail, Err: err}
}
