package coach

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	openai "github.com/sashabaranov/go-openai"
)

// Registry maps tool names to their implementations. Lookup is by exact
// (case-folded) name; unrecognized names are rejected explicitly rather than
// falling through.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	specs map[string]ToolSpec
	order []string
}

// NewRegistry constructs a registry seeded with the provided tools. Invalid
// entries are skipped.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{
		tools: make(map[string]Tool),
		specs: make(map[string]ToolSpec),
	}
	for _, tool := range tools {
		_ = r.Register(tool)
	}
	return r
}

// Register adds a tool under a lower-cased key. Duplicate names return an error.
func (r *Registry) Register(tool Tool) error {
	if tool == nil {
		return fmt.Errorf("tool is nil")
	}
	spec := tool.Spec()
	key := strings.ToLower(strings.TrimSpace(spec.Name))
	if key == "" {
		return fmt.Errorf("tool name is empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[key]; exists {
		return fmt.Errorf("tool %s already registered", spec.Name)
	}
	r.tools[key] = tool
	r.specs[key] = spec
	r.order = append(r.order, key)
	return nil
}

// Lookup returns the tool and its specification if present.
func (r *Registry) Lookup(name string) (Tool, ToolSpec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key := strings.ToLower(strings.TrimSpace(name))
	tool, ok := r.tools[key]
	if !ok {
		return nil, ToolSpec{}, false
	}
	return tool, r.specs[key], true
}

// Specs returns the tool specifications in registration order.
func (r *Registry) Specs() []ToolSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	specs := make([]ToolSpec, 0, len(r.order))
	for _, key := range r.order {
		specs = append(specs, r.specs[key])
	}
	return specs
}

// Definitions renders the registered tools as assistant function-tool
// definitions, in registration order.
func (r *Registry) Definitions() []openai.AssistantTool {
	specs := r.Specs()
	defs := make([]openai.AssistantTool, 0, len(specs))
	for _, spec := range specs {
		defs = append(defs, openai.AssistantTool{
			Type: openai.AssistantToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        spec.Name,
				Description: spec.Description,
				Parameters:  spec.Parameters,
			},
		})
	}
	return defs
}

// Dispatch executes one tool invocation request and pairs the result with the
// invocation's identifier. Unrecognized names fail with ErrUnknownTool; a
// failing implementation surfaces as ErrToolExecutionFailed with the cause.
func (r *Registry) Dispatch(ctx context.Context, sessionID string, call openai.ToolCall) (openai.ToolOutput, error) {
	name := call.Function.Name
	tool, _, ok := r.Lookup(name)
	if !ok {
		return openai.ToolOutput{}, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	args, err := parseArguments(call.Function.Arguments)
	if err != nil {
		return openai.ToolOutput{}, fmt.Errorf("%w: %s: %v", ErrToolExecutionFailed, name, err)
	}

	resp, err := tool.Invoke(ctx, ToolRequest{SessionID: sessionID, Arguments: args})
	if err != nil {
		return openai.ToolOutput{}, fmt.Errorf("%w: %s: %w", ErrToolExecutionFailed, name, err)
	}

	return openai.ToolOutput{
		ToolCallID: call.ID,
		Output:     resp.Content,
	}, nil
}

func parseArguments(raw string) (map[string]any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, fmt.Errorf("parse arguments: %w", err)
	}
	return args, nil
}
