package registry

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"

	"github.com/vinodismyname/hrpulse/internal/analytics"
	"github.com/vinodismyname/hrpulse/internal/dataset"
	"github.com/vinodismyname/hrpulse/internal/datasets"
	"github.com/vinodismyname/hrpulse/internal/runtime"
	"github.com/vinodismyname/hrpulse/internal/security"
	"github.com/vinodismyname/hrpulse/pkg/mcperr"
	"github.com/vinodismyname/hrpulse/pkg/pagination"
)

// toolError maps a domain error to a catalog result. Deadline errors are
// returned as Go errors so the runtime middleware reports TIMEOUT.
func toolError(ctx context.Context, fallback mcperr.Code, err error) (*mcp.CallToolResult, error) {
	if errors.Is(err, context.DeadlineExceeded) {
		return nil, err
	}
	code := fallback
	switch {
	case errors.Is(err, datasets.ErrHandleNotFound):
		code = mcperr.InvalidHandle
	case errors.Is(err, runtime.ErrDatasetCapacity):
		code = mcperr.LimitExceeded
	case errors.Is(err, security.ErrNotAllowed):
		code = mcperr.PermissionDenied
	case errors.Is(err, security.ErrAccessDenied):
		code = mcperr.AccessDenied
	case errors.Is(err, security.ErrUnsupportedExtension), errors.Is(err, dataset.ErrUnsupportedSource):
		code = mcperr.UnsupportedFormat
	case errors.Is(err, dataset.ErrMissingTable):
		code = mcperr.MissingTable
	case errors.Is(err, dataset.ErrMalformed):
		code = mcperr.MalformedData
	case errors.Is(err, analytics.ErrUnknownTab):
		code = mcperr.UnknownTab
	case errors.Is(err, pagination.ErrMismatch):
		code = mcperr.CursorInvalid
	}

	msg := err.Error()
	switch code {
	case mcperr.InvalidHandle, mcperr.LimitExceeded, mcperr.PermissionDenied, mcperr.AccessDenied:
		msg = ""
	}
	zerolog.Ctx(ctx).Warn().Err(err).Str("code", string(code)).Msg("tool error")
	return mcperr.New(code, msg), nil
}
