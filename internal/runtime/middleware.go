package runtime

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/vinodismyname/hrpulse/pkg/mcperr"
)

// Middleware bounds tool calls with the Controller's request semaphore and
// operation timeout, and scopes a call logger into the handler context.
type Middleware struct {
	ctrl *Controller
}

// NewMiddleware constructs a Middleware bound to the provided Controller.
func NewMiddleware(ctrl *Controller) *Middleware {
	return &Middleware{ctrl: ctrl}
}

// ToolMiddleware implements mcp-go's tool handler middleware interface.
func (m *Middleware) ToolMiddleware(next server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limits := m.ctrl.limits
		log := zerolog.Ctx(ctx).With().
			Str("tool", req.Params.Name).
			Str("call_id", uuid.NewString()).
			Logger()

		acquireCtx := ctx
		if limits.AcquireRequestTimeout > 0 {
			var cancel context.CancelFunc
			acquireCtx, cancel = context.WithTimeout(ctx, limits.AcquireRequestTimeout)
			defer cancel()
		}
		if err := m.ctrl.AcquireRequest(acquireCtx); err != nil {
			log.Warn().Int("max_concurrent_requests", limits.MaxConcurrentRequests).Msg("request rejected: busy")
			return mcperr.Wrapf(mcperr.BusyResource, "concurrent request limit reached (max=%d)", limits.MaxConcurrentRequests), nil
		}
		defer m.ctrl.ReleaseRequest()

		callCtx, cancel := ctx, context.CancelFunc(func() {})
		if limits.OperationTimeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, limits.OperationTimeout)
		}
		defer cancel()
		callCtx = log.WithContext(callCtx)

		start := time.Now()
		res, err := next(callCtx, req)
		elapsed := time.Since(start)

		timedOut := errors.Is(callCtx.Err(), context.DeadlineExceeded)
		if errors.Is(err, context.DeadlineExceeded) || (timedOut && err == nil && res == nil) {
			log.Warn().Dur("elapsed", elapsed).Dur("limit", limits.OperationTimeout).Msg("tool call timed out")
			return mcperr.Wrapf(mcperr.Timeout, "operation exceeded %s", limits.OperationTimeout), nil
		}
		log.Debug().Dur("elapsed", elapsed).Msg("tool call finished")
		return res, err
	}
}
