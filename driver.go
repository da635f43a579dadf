package coach

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/edspark/coach/src/assistant"
)

const (
	// DefaultPollInterval is the fixed wait between run status fetches.
	DefaultPollInterval = 5 * time.Second

	// DefaultRunTimeout bounds the whole polling loop so a hung remote run
	// cannot block a turn indefinitely.
	DefaultRunTimeout = 2 * time.Minute
)

// Driver owns the run state machine: it starts a conversational turn, polls
// for completion, dispatches requested tools, submits their outputs as one
// batch, and repeats until the run reaches a terminal state.
type Driver struct {
	api         assistant.API
	assistantID string
	tools       *Registry
	log         *zap.Logger

	pollInterval time.Duration
	runTimeout   time.Duration
}

// DriverOptions configure a Driver. Zero values fall back to defaults.
type DriverOptions struct {
	PollInterval time.Duration
	RunTimeout   time.Duration
	Logger       *zap.Logger
}

func NewDriver(api assistant.API, assistantID string, tools *Registry, opts DriverOptions) *Driver {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.RunTimeout <= 0 {
		opts.RunTimeout = DefaultRunTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if tools == nil {
		tools = NewRegistry()
	}
	return &Driver{
		api:          api,
		assistantID:  assistantID,
		tools:        tools,
		log:          opts.Logger,
		pollInterval: opts.PollInterval,
		runTimeout:   opts.RunTimeout,
	}
}

// Tools returns the driver's tool registry.
func (d *Driver) Tools() *Registry { return d.tools }

// StartTurn appends the user message to the session's thread and creates a
// run for it. The session's run guard is held on success and stays held
// until Drive finishes; a concurrent turn for the same session fails with
// ErrRunAlreadyActive. The appended user message is not rolled back when run
// creation fails afterwards.
func (d *Driver) StartTurn(ctx context.Context, s *Session, userText string) (openai.Run, error) {
	if err := s.acquire(); err != nil {
		return openai.Run{}, err
	}

	_, err := d.api.CreateMessage(ctx, s.ID, openai.MessageRequest{
		Role:    openai.ChatMessageRoleUser,
		Content: userText,
	})
	if err != nil {
		s.release()
		return openai.Run{}, fmt.Errorf("append user message: %w", err)
	}

	run, err := d.api.CreateRun(ctx, s.ID, openai.RunRequest{AssistantID: d.assistantID})
	if err != nil {
		s.release()
		return openai.Run{}, fmt.Errorf("create run: %w", err)
	}

	d.log.Debug("run started",
		zap.String("session", s.ID),
		zap.String("run", run.ID),
		zap.String("status", string(run.Status)))
	return run, nil
}

// Drive polls the run to a terminal state and returns the final assistant
// message text. It releases the session's run guard when it returns.
func (d *Driver) Drive(ctx context.Context, s *Session, run openai.Run) (string, error) {
	defer s.release()

	deadline := time.Now().Add(d.runTimeout)

	for {
		switch run.Status {
		case openai.RunStatusCompleted:
			return d.finalMessage(ctx, s.ID, run.ID)

		case openai.RunStatusRequiresAction:
			next, err := d.handleRequiredAction(ctx, s, run)
			if err != nil {
				return "", err
			}
			run = next

		case openai.RunStatusQueued, openai.RunStatusInProgress:
			if time.Now().After(deadline) {
				return "", &RunIncompleteError{
					RunID:      run.ID,
					LastStatus: string(run.Status),
					Cause:      context.DeadlineExceeded,
				}
			}
			if err := d.wait(ctx); err != nil {
				return "", &RunIncompleteError{RunID: run.ID, LastStatus: string(run.Status), Cause: err}
			}
			next, err := d.api.RetrieveRun(ctx, s.ID, run.ID)
			if err != nil {
				return "", fmt.Errorf("retrieve run %s: %w", run.ID, err)
			}
			run = next

		default:
			// failed, cancelled, expired, or anything the provider adds later.
			return "", &RunIncompleteError{RunID: run.ID, LastStatus: string(run.Status)}
		}
	}
}

// RunTurn is the canonical one-call turn: StartTurn followed by Drive.
func (d *Driver) RunTurn(ctx context.Context, s *Session, userText string) (string, error) {
	run, err := d.StartTurn(ctx, s, userText)
	if err != nil {
		return "", err
	}
	return d.Drive(ctx, s, run)
}

// wait blocks for one poll interval or until the context is cancelled.
func (d *Driver) wait(ctx context.Context) error {
	t := time.NewTimer(d.pollInterval)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// handleRequiredAction dispatches every pending tool call and submits the
// collected outputs in a single batch. Dispatches run in parallel; each
// contacts an independent service, so there is no ordering between them, but
// all must finish before submission. A tool failure is submitted as an
// error payload for that call id instead of being dropped: the service
// expects one output per outstanding call, and omitting one would leave the
// run stuck in requires_action.
func (d *Driver) handleRequiredAction(ctx context.Context, s *Session, run openai.Run) (openai.Run, error) {
	if run.RequiredAction == nil || run.RequiredAction.SubmitToolOutputs == nil {
		return run, &RunIncompleteError{RunID: run.ID, LastStatus: string(run.Status)}
	}
	calls := run.RequiredAction.SubmitToolOutputs.ToolCalls
	if len(calls) == 0 {
		return run, &RunIncompleteError{RunID: run.ID, LastStatus: string(run.Status)}
	}

	outputs := make([]openai.ToolOutput, len(calls))
	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(i int, call openai.ToolCall) {
			defer wg.Done()
			out, err := d.tools.Dispatch(ctx, s.ID, call)
			if err != nil {
				d.log.Warn("tool dispatch failed",
					zap.String("session", s.ID),
					zap.String("run", run.ID),
					zap.String("tool", call.Function.Name),
					zap.Error(err))
				out = errorOutput(call.ID, err)
			}
			outputs[i] = out
		}(i, call)
	}
	wg.Wait()

	// One atomic submission for the whole batch. If it fails the turn fails;
	// the provider does not accept partial resubmission for a run step.
	next, err := d.api.SubmitToolOutputs(ctx, s.ID, run.ID, openai.SubmitToolOutputsRequest{
		ToolOutputs: outputs,
	})
	if err != nil {
		return run, fmt.Errorf("submit tool outputs for run %s: %w", run.ID, err)
	}

	d.log.Debug("tool outputs submitted",
		zap.String("session", s.ID),
		zap.String("run", run.ID),
		zap.Int("outputs", len(outputs)))
	return next, nil
}

func errorOutput(callID string, err error) openai.ToolOutput {
	payload, _ := json.Marshal(map[string]string{"error": err.Error()})
	return openai.ToolOutput{ToolCallID: callID, Output: string(payload)}
}

// finalMessage returns the newest assistant-authored message belonging to
// the run. A completed run without one is a distinct failure from transport
// errors.
func (d *Driver) finalMessage(ctx context.Context, threadID, runID string) (string, error) {
	limit := 20
	order := "desc"
	list, err := d.api.ListMessage(ctx, threadID, &limit, &order, nil, nil, &runID)
	if err != nil {
		return "", fmt.Errorf("list messages: %w", err)
	}

	for _, msg := range list.Messages {
		if msg.Role != openai.ChatMessageRoleAssistant {
			continue
		}
		if msg.RunID != nil && *msg.RunID != runID {
			continue
		}
		for _, part := range msg.Content {
			if part.Text != nil && part.Text.Value != "" {
				return part.Text.Value, nil
			}
		}
	}
	return "", ErrNoAssistantMessage
}
