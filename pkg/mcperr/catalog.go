package mcperr

import (
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// Code defines a canonical MCP error code used across tools.
type Code string

const (
	// Validation & Input
	Validation        Code = "VALIDATION"
	InvalidHandle     Code = "INVALID_HANDLE"
	CursorInvalid     Code = "CURSOR_INVALID"
	CursorBuildFailed Code = "CURSOR_BUILD_FAILED"
	UnknownTab        Code = "UNKNOWN_TAB"

	// Resource & Limits
	BusyResource  Code = "BUSY_RESOURCE"
	Timeout       Code = "TIMEOUT"
	LimitExceeded Code = "LIMIT_EXCEEDED"

	// IO & Formats
	LoadFailed        Code = "LOAD_FAILED"
	MissingTable      Code = "MISSING_TABLE"
	MalformedData     Code = "MALFORMED_DATA"
	UnsupportedFormat Code = "UNSUPPORTED_FORMAT"
	ExportFailed      Code = "EXPORT_FAILED"
	ExportsDisabled   Code = "EXPORTS_DISABLED"

	// Analysis
	AnalysisFailed Code = "ANALYSIS_FAILED"

	// Access
	PermissionDenied Code = "PERMISSION_DENIED"
	AccessDenied     Code = "ACCESS_DENIED"
)

// Entry documents a code's standard message, retry semantics, and next steps.
type Entry struct {
	Code      Code
	Message   string
	Retryable bool
	NextSteps []string
}

// catalog maps canonical codes to guidance. Messages can be overridden per error.
var catalog = map[Code]Entry{
	Validation:        {Code: Validation, Message: "invalid inputs", Retryable: true, NextSteps: []string{"Correct the inputs per schema and retry", "Call dataset_summary for valid filter values"}},
	InvalidHandle:     {Code: InvalidHandle, Message: "dataset handle not found or expired", Retryable: true, NextSteps: []string{"Reload the dataset via load_dataset and retry"}},
	CursorInvalid:     {Code: CursorInvalid, Message: "cursor is invalid for current context", Retryable: true, NextSteps: []string{"Restart pagination from the first page", "Keep filters unchanged between pages"}},
	CursorBuildFailed: {Code: CursorBuildFailed, Message: "failed to encode next page cursor", Retryable: true, NextSteps: []string{"Retry or request a smaller page"}},
	UnknownTab:        {Code: UnknownTab, Message: "unknown dashboard tab", Retryable: true, NextSteps: []string{"Use one of: overview, turnover, workforce, compensation, recruitment"}},

	BusyResource:  {Code: BusyResource, Message: "concurrent request limit reached", Retryable: true, NextSteps: []string{"Retry after a short delay"}},
	Timeout:       {Code: Timeout, Message: "operation exceeded configured time limit", Retryable: true, NextSteps: []string{"Narrow filters or retry"}},
	LimitExceeded: {Code: LimitExceeded, Message: "open dataset limit reached", Retryable: true, NextSteps: []string{"Close an unused dataset via close_dataset and retry"}},

	LoadFailed:        {Code: LoadFailed, Message: "failed to load dataset", Retryable: true, NextSteps: []string{"Verify the path and file permissions"}},
	MissingTable:      {Code: MissingTable, Message: "a source table is missing", Retryable: false, NextSteps: []string{"Provide employees, sick_leave, recruitment and terminations as CSV files or workbook sheets"}},
	MalformedData:     {Code: MalformedData, Message: "a source table could not be parsed", Retryable: false, NextSteps: []string{"Fix the reported file, line and column", "Dates must be YYYY-MM-DD"}},
	UnsupportedFormat: {Code: UnsupportedFormat, Message: "unsupported dataset format", Retryable: false, NextSteps: []string{"Use a directory of CSV files or an .xlsx workbook"}},
	ExportFailed:      {Code: ExportFailed, Message: "failed to write report", Retryable: true, NextSteps: []string{"Verify the output directory is allowed and writable"}},
	ExportsDisabled:   {Code: ExportsDisabled, Message: "report export is disabled", Retryable: false, NextSteps: []string{"Set HRPULSE_ENABLE_EXPORTS=true on the server"}},

	AnalysisFailed: {Code: AnalysisFailed, Message: "analysis failed", Retryable: true, NextSteps: []string{"Verify filters and retry"}},

	PermissionDenied: {Code: PermissionDenied, Message: "path is outside the allowed directories", Retryable: false, NextSteps: []string{"Choose a path under HRPULSE_ALLOWED_DIRS"}},
	AccessDenied:     {Code: AccessDenied, Message: "access code rejected", Retryable: true, NextSteps: []string{"Supply the shared access code in access_code"}},
}

// Lookup returns the catalog entry for code.
func Lookup(code Code) (Entry, bool) {
	e, ok := catalog[code]
	return e, ok
}

// normalize builds a standard error string including next steps for MCP clients that
// surface only a message string. Format: "CODE: message" followed by a guidance tail.
func normalize(code Code, msg string) string {
	base := strings.TrimSpace(msg)
	e, ok := catalog[code]
	if !ok {
		if base == "" {
			return string(code)
		}
		return fmt.Sprintf("%s: %s", string(code), base)
	}
	if base == "" {
		base = e.Message
	}
	guidance := ""
	if len(e.NextSteps) > 0 {
		guidance = " | nextSteps: " + strings.Join(e.NextSteps, "; ")
	}
	return fmt.Sprintf("%s: %s%s", e.Code, base, guidance)
}

// FromText parses a "CODE: message" string, enriches it with catalog guidance,
// and returns an MCP tool error result.
func FromText(text string) *mcp.CallToolResult {
	t := strings.TrimSpace(text)
	if t == "" {
		return mcp.NewToolResultError(normalize(Validation, ""))
	}
	parts := strings.SplitN(t, ":", 2)
	code := Code(strings.TrimSpace(parts[0]))
	msg := ""
	if len(parts) > 1 {
		msg = strings.TrimSpace(parts[1])
	}
	return mcp.NewToolResultError(normalize(code, msg))
}

// New returns an MCP error result for a given code and optional message override.
func New(code Code, message string) *mcp.CallToolResult {
	return mcp.NewToolResultError(normalize(code, message))
}

// Wrapf formats details and returns an MCP error result for the code.
func Wrapf(code Code, format string, args ...any) *mcp.CallToolResult {
	return mcp.NewToolResultError(normalize(code, fmt.Sprintf(format, args...)))
}
