package telemetry

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
)

// Recorder implements mcp-go server lifecycle callbacks for logging and
// keeps in-process call counters.
type Recorder struct {
	logger zerolog.Logger
	clock  func() time.Time

	started sync.Map // request id -> time.Time

	sessions   atomic.Int64
	calls      atomic.Int64
	toolErrors atomic.Int64
}

// Stats is a point-in-time copy of the counters.
type Stats struct {
	ActiveSessions int64 `json:"active_sessions"`
	ToolCalls      int64 `json:"tool_calls"`
	ToolErrors     int64 `json:"tool_errors"`
}

// NewRecorder constructs a Recorder with the provided logger.
func NewRecorder(logger zerolog.Logger) *Recorder {
	return &Recorder{logger: logger, clock: time.Now}
}

// Hooks builds the mcp-go hook set backed by r.
func (r *Recorder) Hooks() *server.Hooks {
	hooks := &server.Hooks{}

	hooks.AddOnRegisterSession(func(ctx context.Context, session server.ClientSession) {
		r.sessionStarted(session.SessionID())
	})
	hooks.AddOnUnregisterSession(func(ctx context.Context, session server.ClientSession) {
		r.sessionEnded(session.SessionID())
	})
	hooks.AddAfterListTools(func(ctx context.Context, id any, req *mcp.ListToolsRequest, res *mcp.ListToolsResult) {
		r.logger.Debug().Int("tools", len(res.Tools)).Msg("list_tools served")
	})
	hooks.AddBeforeCallTool(func(ctx context.Context, id any, req *mcp.CallToolRequest) {
		r.beforeCall(id)
	})
	hooks.AddAfterCallTool(func(ctx context.Context, id any, req *mcp.CallToolRequest, res *mcp.CallToolResult) {
		r.afterCall(id, req.Params.Name, res)
	})
	hooks.AddOnError(func(ctx context.Context, id any, method mcp.MCPMethod, message any, err error) {
		r.logger.Error().Str("method", string(method)).Err(err).Msg("request error")
	})
	return hooks
}

// Stats returns the current counters.
func (r *Recorder) Stats() Stats {
	return Stats{
		ActiveSessions: r.sessions.Load(),
		ToolCalls:      r.calls.Load(),
		ToolErrors:     r.toolErrors.Load(),
	}
}

func (r *Recorder) sessionStarted(id string) {
	r.sessions.Add(1)
	r.logger.Info().Str("session_id", id).Msg("session registered")
}

func (r *Recorder) sessionEnded(id string) {
	r.sessions.Add(-1)
	r.logger.Info().Str("session_id", id).Msg("session unregistered")
}

func (r *Recorder) beforeCall(id any) {
	r.started.Store(requestKey(id), r.clock())
}

// afterCall logs a completed tool call with its duration. Error results are
// logged at warn with their catalog code.
func (r *Recorder) afterCall(id any, tool string, res *mcp.CallToolResult) {
	r.calls.Add(1)
	var elapsed time.Duration
	if v, ok := r.started.LoadAndDelete(requestKey(id)); ok {
		elapsed = r.clock().Sub(v.(time.Time))
	}
	if res != nil && res.IsError {
		r.toolErrors.Add(1)
		r.logger.Warn().Str("tool", tool).Dur("duration", elapsed).Str("code", ErrorCode(res)).Msg("tool call failed")
		return
	}
	r.logger.Info().Str("tool", tool).Dur("duration", elapsed).Msg("tool call served")
}

// ErrorCode extracts the leading "CODE" of an error result's text.
func ErrorCode(res *mcp.CallToolResult) string {
	if res == nil {
		return ""
	}
	for _, c := range res.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			code, _, found := strings.Cut(tc.Text, ":")
			if found {
				return strings.TrimSpace(code)
			}
			return ""
		}
	}
	return ""
}

func requestKey(id any) string { return fmt.Sprint(id) }
