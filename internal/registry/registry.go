package registry

import (
	"context"
	"sort"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/tmc/langchaingo/llms"
)

// ToolProvider resolves MCP tool definitions and associates runtime metadata.
type ToolProvider interface {
	Tools(context.Context) ([]mcp.Tool, error)
}

// Registry maintains tool definitions and the model used to size text answers.
type Registry struct {
	mu         sync.RWMutex
	tools      map[string]mcp.Tool
	tokenModel string
}

// New constructs an empty Registry ready for tool population.
func New() *Registry {
	return &Registry{
		tools: map[string]mcp.Tool{},
	}
}

// WithTokenModel assigns the model name used for token counts. An empty name
// disables counting.
func (r *Registry) WithTokenModel(model string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tokenModel = model
}

// TokenModel returns the configured model name.
func (r *Registry) TokenModel() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tokenModel
}

// Register stores a tool definition for discovery.
func (r *Registry) Register(tool mcp.Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tools[tool.Name] = tool
}

// Get returns a tool by name when present.
func (r *Registry) Get(name string) (mcp.Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Tools returns a stable-sorted list of registered tool definitions.
func (r *Registry) Tools(ctx context.Context) ([]mcp.Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]mcp.Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		tools = append(tools, tool)
	}

	sort.Slice(tools, func(i, j int) bool {
		return tools[i].Name < tools[j].Name
	})

	return tools, nil
}

// ModelContextSize exposes the configured model's context window, or 0 when
// no model is configured.
func (r *Registry) ModelContextSize() int {
	model := r.TokenModel()
	if model == "" {
		return 0
	}
	return llms.GetModelContextSize(model)
}

// CountTokens approximates the token count of text for the configured model.
func (r *Registry) CountTokens(text string) int {
	model := r.TokenModel()
	if model == "" || text == "" {
		return 0
	}
	return llms.CountTokens(model, text)
}
