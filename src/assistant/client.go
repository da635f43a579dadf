// Package assistant wraps the conversational-assistant provider. The rest of
// the codebase depends only on the narrow API surface below, so tests can
// script run transitions without a network.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// API is the slice of the provider client the orchestration core consumes:
// threads, messages, runs, and tool-output submission. *openai.Client
// satisfies it.
type API interface {
	CreateThread(ctx context.Context, request openai.ThreadRequest) (openai.Thread, error)
	CreateMessage(ctx context.Context, threadID string, request openai.MessageRequest) (openai.Message, error)
	CreateRun(ctx context.Context, threadID string, request openai.RunRequest) (openai.Run, error)
	RetrieveRun(ctx context.Context, threadID, runID string) (openai.Run, error)
	SubmitToolOutputs(ctx context.Context, threadID, runID string, request openai.SubmitToolOutputsRequest) (openai.Run, error)
	ListMessage(ctx context.Context, threadID string, limit *int, order *string, after *string, before *string, runID *string) (openai.MessagesList, error)
}

var _ API = (*openai.Client)(nil)

// Provisioner is the extra surface needed to bootstrap an assistant when no
// pre-provisioned id is configured.
type Provisioner interface {
	CreateAssistant(ctx context.Context, request openai.AssistantRequest) (openai.Assistant, error)
}

const defaultInstructions = "You are a lesson-planning assistant for educators. " +
	"When the user describes a skill, age group and learning goal, call the " +
	"get_content tool with those values and build your answer from the returned " +
	"content items, citing each item's title and URL."

// Config holds provider settings.
type Config struct {
	APIKey       string
	BaseURL      string // optional override, e.g. a proxy
	AssistantID  string // reuse an existing assistant when set
	Model        string
	Instructions string
}

// Client couples the provider API with the assistant identity used for runs.
type Client struct {
	API API

	assistantID  string
	model        string
	instructions string
	provisioner  Provisioner
}

// New builds a provider-backed client.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("assistant: api key is required")
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	api := openai.NewClientWithConfig(clientCfg)

	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	instructions := cfg.Instructions
	if strings.TrimSpace(instructions) == "" {
		instructions = defaultInstructions
	}

	return &Client{
		API:          api,
		assistantID:  cfg.AssistantID,
		model:        model,
		instructions: instructions,
		provisioner:  api,
	}, nil
}

// NewFromParts assembles a client from an existing API implementation. Used
// by tests and by callers that already hold a provider client.
func NewFromParts(api API, prov Provisioner, cfg Config) *Client {
	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	instructions := cfg.Instructions
	if strings.TrimSpace(instructions) == "" {
		instructions = defaultInstructions
	}
	return &Client{
		API:          api,
		assistantID:  cfg.AssistantID,
		model:        model,
		instructions: instructions,
		provisioner:  prov,
	}
}

// AssistantID returns the configured or provisioned assistant id.
func (c *Client) AssistantID() string { return c.assistantID }

// EnsureAssistant returns the assistant id to run against, creating the
// assistant with the given tool definitions when none is configured.
func (c *Client) EnsureAssistant(ctx context.Context, tools []openai.AssistantTool) (string, error) {
	if c.assistantID != "" {
		return c.assistantID, nil
	}
	if c.provisioner == nil {
		return "", errors.New("assistant: no assistant id configured and no provisioner available")
	}

	name := "lesson-content-coach"
	created, err := c.provisioner.CreateAssistant(ctx, openai.AssistantRequest{
		Model:        c.model,
		Name:         &name,
		Instructions: &c.instructions,
		Tools:        tools,
	})
	if err != nil {
		return "", fmt.Errorf("create assistant: %w", err)
	}
	c.assistantID = created.ID
	return c.assistantID, nil
}
