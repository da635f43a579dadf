package coach

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/edspark/coach/src/content"
)

func TestContentToolSpec(t *testing.T) {
	tool := NewContentTool(&stubLookup{})
	spec := tool.Spec()

	if spec.Name != "get_content" {
		t.Fatalf("got tool name %q", spec.Name)
	}
	props, _ := spec.Parameters["properties"].(map[string]any)
	for _, key := range []string{"Skill", "AgeGroup", "Goal"} {
		if _, ok := props[key]; !ok {
			t.Fatalf("parameter schema missing %q", key)
		}
	}
	required, _ := spec.Parameters["required"].([]string)
	if len(required) != 3 {
		t.Fatalf("all three arguments should be required, got %v", required)
	}
}

func TestContentToolInvoke(t *testing.T) {
	lookup := &stubLookup{items: []content.Item{
		{ID: "7", Title: "Sharing Circle", URL: "https://example.com/7"},
	}}
	tool := NewContentTool(lookup)

	resp, err := tool.Invoke(context.Background(), ToolRequest{
		SessionID: "sess_1",
		Arguments: map[string]any{
			"Skill":    " Communication ",
			"AgeGroup": "Kindergarten",
			"Goal":     "sharing",
		},
	})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}

	// Whitespace is trimmed before the lookup.
	if lookup.skill != "Communication" {
		t.Fatalf("skill not trimmed: %q", lookup.skill)
	}

	var items []content.Item
	if err := json.Unmarshal([]byte(resp.Content), &items); err != nil {
		t.Fatalf("response is not a JSON item list: %v", err)
	}
	if len(items) != 1 || items[0].Title != "Sharing Circle" {
		t.Fatalf("unexpected items: %+v", items)
	}
	if resp.Metadata["results"] != "1" {
		t.Fatalf("result count metadata missing: %+v", resp.Metadata)
	}
}

func TestContentToolInvokeMissingArgument(t *testing.T) {
	tool := NewContentTool(&stubLookup{})
	_, err := tool.Invoke(context.Background(), ToolRequest{
		Arguments: map[string]any{"Skill": "Communication", "Goal": "sharing"},
	})
	if err == nil {
		t.Fatal("missing AgeGroup should fail")
	}
}

func TestContentToolInvokeNonStringArgument(t *testing.T) {
	tool := NewContentTool(&stubLookup{})
	_, err := tool.Invoke(context.Background(), ToolRequest{
		Arguments: map[string]any{"Skill": 3, "AgeGroup": "K", "Goal": "g"},
	})
	if err == nil {
		t.Fatal("numeric Skill should fail")
	}
}

func TestContentToolInvokePropagatesLookupError(t *testing.T) {
	cause := errors.New("search down")
	tool := NewContentTool(&stubLookup{err: cause})
	_, err := tool.Invoke(context.Background(), ToolRequest{
		Arguments: map[string]any{"Skill": "s", "AgeGroup": "a", "Goal": "g"},
	})
	if !errors.Is(err, cause) {
		t.Fatalf("lookup error should surface, got %v", err)
	}
}

func TestContentToolInvokeEmptyResult(t *testing.T) {
	tool := NewContentTool(&stubLookup{})
	resp, err := tool.Invoke(context.Background(), ToolRequest{
		Arguments: map[string]any{"Skill": "s", "AgeGroup": "a", "Goal": "g"},
	})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if resp.Content != "null" && resp.Content != "[]" {
		t.Fatalf("empty lookup should serialize cleanly, got %q", resp.Content)
	}
}
