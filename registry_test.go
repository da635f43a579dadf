package coach

import (
	"context"
	"errors"
	"fmt"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

type echoTool struct {
	name     string
	lastReq  ToolRequest
	response ToolResponse
	err      error
}

func (t *echoTool) Spec() ToolSpec {
	return ToolSpec{
		Name:        t.name,
		Description: "echoes its input",
		Parameters: map[string]any{
			"type":       "object",
			"properties": map[string]any{"input": map[string]any{"type": "string"}},
		},
	}
}

func (t *echoTool) Invoke(_ context.Context, req ToolRequest) (ToolResponse, error) {
	t.lastReq = req
	if t.err != nil {
		return ToolResponse{}, t.err
	}
	if t.response.Content != "" {
		return t.response, nil
	}
	input, _ := req.Arguments["input"].(string)
	return ToolResponse{Content: input}, nil
}

func TestRegistryRegisterAndLookup(t *testing.T) {
	r := NewRegistry(&echoTool{name: "echo"})

	if _, _, ok := r.Lookup("echo"); !ok {
		t.Fatal("registered tool not found")
	}
	// Lookup is case-folded.
	if _, _, ok := r.Lookup("  ECHO "); !ok {
		t.Fatal("lookup should trim and case-fold the name")
	}
	if _, _, ok := r.Lookup("missing"); ok {
		t.Fatal("unexpected hit for unregistered name")
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&echoTool{name: "echo"}); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := r.Register(&echoTool{name: "Echo"}); err == nil {
		t.Fatal("duplicate name should be rejected")
	}
}

func TestRegistryDefinitions(t *testing.T) {
	r := NewRegistry(&echoTool{name: "first"}, &echoTool{name: "second"})

	defs := r.Definitions()
	if len(defs) != 2 {
		t.Fatalf("want 2 definitions, got %d", len(defs))
	}
	if defs[0].Type != openai.AssistantToolTypeFunction {
		t.Fatalf("unexpected tool type %q", defs[0].Type)
	}
	if defs[0].Function.Name != "first" || defs[1].Function.Name != "second" {
		t.Fatalf("definitions out of registration order: %+v", defs)
	}
}

func TestRegistryDispatch(t *testing.T) {
	tool := &echoTool{name: "echo"}
	r := NewRegistry(tool)

	out, err := r.Dispatch(context.Background(), "sess_1", openai.ToolCall{
		ID:       "call_1",
		Function: openai.FunctionCall{Name: "echo", Arguments: `{"input":"hi"}`},
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if out.ToolCallID != "call_1" {
		t.Fatalf("output not keyed by invocation id: %+v", out)
	}
	if got, _ := out.Output.(string); got != "hi" {
		t.Fatalf("got output %v", out.Output)
	}
	if tool.lastReq.SessionID != "sess_1" {
		t.Fatalf("session id not threaded through: %+v", tool.lastReq)
	}
}

func TestRegistryDispatchUnknownTool(t *testing.T) {
	r := NewRegistry()
	_, err := r.Dispatch(context.Background(), "sess", openai.ToolCall{
		ID:       "call_1",
		Function: openai.FunctionCall{Name: "nope", Arguments: `{}`},
	})
	if !errors.Is(err, ErrUnknownTool) {
		t.Fatalf("want ErrUnknownTool, got %v", err)
	}
}

func TestRegistryDispatchBadArguments(t *testing.T) {
	r := NewRegistry(&echoTool{name: "echo"})
	_, err := r.Dispatch(context.Background(), "sess", openai.ToolCall{
		ID:       "call_1",
		Function: openai.FunctionCall{Name: "echo", Arguments: `{not json`},
	})
	if !errors.Is(err, ErrToolExecutionFailed) {
		t.Fatalf("want ErrToolExecutionFailed, got %v", err)
	}
}

func TestRegistryDispatchWrapsToolError(t *testing.T) {
	cause := fmt.Errorf("backend down")
	r := NewRegistry(&echoTool{name: "echo", err: cause})
	_, err := r.Dispatch(context.Background(), "sess", openai.ToolCall{
		ID:       "call_1",
		Function: openai.FunctionCall{Name: "echo", Arguments: `{}`},
	})
	if !errors.Is(err, ErrToolExecutionFailed) {
		t.Fatalf("want ErrToolExecutionFailed, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("cause should be wrapped, got %v", err)
	}
}
