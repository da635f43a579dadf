package coach

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/edspark/coach/src/content"
)

// Tool is a callable the assistant may invoke during a run.
type Tool interface {
	Spec() ToolSpec
	Invoke(ctx context.Context, req ToolRequest) (ToolResponse, error)
}

// ToolSpec declares a tool's name and parameter schema. The schema is a JSON
// Schema fragment passed through to the assistant service verbatim.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// ToolRequest carries the parsed arguments of one tool invocation.
type ToolRequest struct {
	SessionID string
	Arguments map[string]any
}

// ToolResponse is a tool's serialized result.
type ToolResponse struct {
	Content  string
	Metadata map[string]string
}

// ContentSearcher is the slice of the content client the tool needs.
type ContentSearcher interface {
	Lookup(ctx context.Context, skill, ageGroup, goal string) ([]content.Item, error)
}

// ContentTool exposes lesson-content lookup as the get_content tool. The
// argument names (Skill, AgeGroup, Goal) are the wire contract the assistant
// is configured with.
type ContentTool struct {
	Lookup ContentSearcher
}

func NewContentTool(lookup ContentSearcher) *ContentTool {
	return &ContentTool{Lookup: lookup}
}

func (t *ContentTool) Spec() ToolSpec {
	return ToolSpec{
		Name:        "get_content",
		Description: "Look up lesson content for a skill, age group and learning goal.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"Skill": map[string]any{
					"type":        "string",
					"description": "The skill the lesson should develop, e.g. Communication.",
				},
				"AgeGroup": map[string]any{
					"type":        "string",
					"description": "The age group of the learners, e.g. Kindergarten.",
				},
				"Goal": map[string]any{
					"type":        "string",
					"description": "The concrete learning goal, e.g. turn-taking.",
				},
			},
			"required": []string{"Skill", "AgeGroup", "Goal"},
		},
	}
}

func (t *ContentTool) Invoke(ctx context.Context, req ToolRequest) (ToolResponse, error) {
	skill, err := stringArg(req.Arguments, "Skill")
	if err != nil {
		return ToolResponse{}, err
	}
	ageGroup, err := stringArg(req.Arguments, "AgeGroup")
	if err != nil {
		return ToolResponse{}, err
	}
	goal, err := stringArg(req.Arguments, "Goal")
	if err != nil {
		return ToolResponse{}, err
	}

	items, err := t.Lookup.Lookup(ctx, skill, ageGroup, goal)
	if err != nil {
		return ToolResponse{}, err
	}

	payload, err := json.Marshal(items)
	if err != nil {
		return ToolResponse{}, fmt.Errorf("marshal content items: %w", err)
	}
	return ToolResponse{
		Content:  string(payload),
		Metadata: map[string]string{"results": fmt.Sprint(len(items))},
	}, nil
}

func stringArg(args map[string]any, key string) (string, error) {
	raw, ok := args[key]
	if !ok {
		return "", fmt.Errorf("missing argument %q", key)
	}
	s, ok := raw.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("argument %q must be a non-empty string", key)
	}
	return strings.TrimSpace(s), nil
}
