package mcperr

import (
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"
)

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.True(t, res.IsError)
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestNew_UsesCatalogDefaults(t *testing.T) {
	text := resultText(t, New(InvalidHandle, ""))
	require.Contains(t, text, "INVALID_HANDLE: dataset handle not found or expired")
	require.Contains(t, text, "nextSteps: Reload the dataset")
}

func TestWrapf_OverridesMessage(t *testing.T) {
	text := resultText(t, Wrapf(MalformedData, "employees.csv line %d", 4))
	require.Contains(t, text, "MALFORMED_DATA: employees.csv line 4 | nextSteps:")
}

func TestFromText(t *testing.T) {
	require.Contains(t, resultText(t, FromText("VALIDATION: question is required")), "VALIDATION: question is required | nextSteps:")
	require.Equal(t, "CUSTOM: kept as is", resultText(t, FromText("CUSTOM: kept as is")))
	require.Contains(t, resultText(t, FromText("")), "VALIDATION: invalid inputs")
}

func TestLookup(t *testing.T) {
	e, ok := Lookup(BusyResource)
	require.True(t, ok)
	require.True(t, e.Retryable)
	_, ok = Lookup(Code("NOPE"))
	require.False(t, ok)
}
