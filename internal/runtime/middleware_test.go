package runtime

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func callNamed(name string) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestMiddleware_ScopesCallLogger(t *testing.T) {
	var buf bytes.Buffer
	ctx := zerolog.New(&buf).WithContext(context.Background())

	limits := NewLimits(1, 1)
	mw := NewMiddleware(NewController(limits))

	next := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		zerolog.Ctx(ctx).Info().Msg("inside")
		return mcp.NewToolResultText("ok"), nil
	}
	res, err := mw.ToolMiddleware(server.ToolHandlerFunc(next))(ctx, callNamed("compute_kpis"))
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Contains(t, buf.String(), `"tool":"compute_kpis"`)
	require.Contains(t, buf.String(), `"call_id":"`)
}

func TestMiddleware_BusyWhenSaturated(t *testing.T) {
	limits := NewLimits(1, 1)
	limits.AcquireRequestTimeout = 10 * time.Millisecond

	ctrl := NewController(limits)
	require.NoError(t, ctrl.AcquireRequest(context.Background()))
	defer ctrl.ReleaseRequest()

	next := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		t.Fatal("next should not be called when saturated")
		return nil, nil
	}
	res, err := NewMiddleware(ctrl).ToolMiddleware(server.ToolHandlerFunc(next))(context.Background(), callNamed("ask_question"))
	require.NoError(t, err)
	require.True(t, res.IsError)
	require.True(t, strings.HasPrefix(resultText(t, res), "BUSY_RESOURCE:"))
}

func TestMiddleware_DeadlineBecomesTimeout(t *testing.T) {
	limits := NewLimits(1, 1)
	limits.OperationTimeout = 20 * time.Millisecond

	next := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	res, err := NewMiddleware(NewController(limits)).ToolMiddleware(server.ToolHandlerFunc(next))(context.Background(), callNamed("export_report"))
	require.NoError(t, err)
	require.True(t, res.IsError)
	require.True(t, strings.HasPrefix(resultText(t, res), "TIMEOUT: operation exceeded 20ms"))
}

func TestMiddleware_ReleasesSlot(t *testing.T) {
	ctrl := NewController(NewLimits(1, 1))
	wrapped := NewMiddleware(ctrl).ToolMiddleware(func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText("ok"), nil
	})
	for range 3 {
		res, err := wrapped(context.Background(), callNamed("dataset_summary"))
		require.NoError(t, err)
		require.False(t, res.IsError)
	}
}
