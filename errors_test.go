package parley

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProtocolError_Error(t *testing.T) {
	perr := protocolErr(CodeUnknownTool, "thread-1", `called "search"`, nil)
	assert.Equal(t,
		`parley: protocol violation UNKNOWN_TOOL on thread thread-1: called "search"`,
		perr.Error())

	withCause := protocolErr(CodeMalformedArguments, "thread-1", "invalid JSON",
		errors.New("unexpected end of input"))
	assert.Equal(t,
		"parley: protocol violation MALFORMED_UPDATE_ARGUMENTS on thread thread-1: "+
			"invalid JSON: unexpected end of input",
		withCause.Error())
}

func TestProtocolError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	perr := protocolErr(CodeMalformedArguments, "thread-1", "invalid JSON", cause)

	assert.ErrorIs(t, perr, cause)

	wrapped := fmt.Errorf("advance: %w", perr)
	var target *ProtocolError
	require.ErrorAs(t, wrapped, &target)
	assert.Equal(t, CodeMalformedArguments, target.Code)
	assert.Equal(t, "thread-1", target.ThreadID)
}

func TestProtocolCodes(t *testing.T) {
	assert.Equal(t, ProtocolCode("MULTIPLE_UPDATE_CALLS"), CodeMultipleUpdates)
	assert.Equal(t, ProtocolCode("UNKNOWN_TOOL"), CodeUnknownTool)
	assert.Equal(t, ProtocolCode("UNSOLICITED_UPDATE_CALL"), CodeUnsolicitedUpdate)
	assert.Equal(t, ProtocolCode("MALFORMED_UPDATE_ARGUMENTS"), CodeMalformedArguments)
}
