package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/lectern-labs/lectern/internal/core/domain"
	"github.com/lectern-labs/lectern/internal/core/ports/driven"
)

// Tool is a capability the model may invoke during orchestration.
// Execution returns an explicit per-call result; tools hold no mutable
// state between invocations.
type Tool interface {
	// Schema describes the tool in the provider-neutral shape.
	Schema() driven.ToolSchema

	// Execute runs the tool with the model-supplied arguments.
	Execute(ctx context.Context, args map[string]any) (*domain.ToolResult, error)
}

// ToolRegistry holds the tools exposed to the model and dispatches
// invocation requests by name.
type ToolRegistry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewToolRegistry creates an empty registry.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{tools: make(map[string]Tool)}
}

// Register adds a tool under its schema name. Registering the same
// name twice replaces the earlier tool.
func (r *ToolRegistry) Register(tool Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[tool.Schema().Name] = tool
}

// Schemas returns the registered tool schemas, sorted by name so the
// declaration order sent to providers is stable.
func (r *ToolRegistry) Schemas() []driven.ToolSchema {
	r.mu.RLock()
	defer r.mu.RUnlock()

	schemas := make([]driven.ToolSchema, 0, len(r.tools))
	for _, tool := range r.tools {
		schemas = append(schemas, tool.Schema())
	}
	sort.Slice(schemas, func(i, j int) bool {
		return schemas[i].Name < schemas[j].Name
	})
	return schemas
}

// Invoke dispatches a tool call by name.
// Returns domain.ErrNotFound for unregistered names.
func (r *ToolRegistry) Invoke(ctx context.Context, name string, args map[string]any) (*domain.ToolResult, error) {
	r.mu.RLock()
	tool, ok := r.tools[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("tool %q: %w", name, domain.ErrNotFound)
	}
	return tool.Execute(ctx, args)
}
