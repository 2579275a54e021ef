package registry

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// exportTools write files and are hidden unless exports are enabled.
var exportTools = map[string]bool{
	ToolExportReport: true,
}

// ExportToolFilter conditionally hides export tools from discovery.
// Enable with HRPULSE_ENABLE_EXPORTS=true.
type ExportToolFilter struct {
	allowExports bool
}

// NewExportToolFilter constructs a filter for the configured export switch.
func NewExportToolFilter(allowExports bool) *ExportToolFilter {
	return &ExportToolFilter{allowExports: allowExports}
}

// FilterTools implements server tool filtering semantics.
func (f *ExportToolFilter) FilterTools(ctx context.Context, tools []mcp.Tool) []mcp.Tool {
	if f.allowExports {
		return tools
	}
	out := make([]mcp.Tool, 0, len(tools))
	for _, t := range tools {
		if exportTools[t.Name] {
			continue
		}
		out = append(out, t)
	}
	return out
}
