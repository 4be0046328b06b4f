// Package extract implements the schema-validated structured-extraction
// protocol: prompt the model with a rendered schema and source text, parse
// and validate the response, and on failure feed the validation error back
// into the next attempt until the output conforms or the retry budget is
// exhausted.
//
// The engine separates two retry concerns deliberately: semantic failures
// (unparsable output, schema violations) drive the attempt loop here, while
// collaborator failures (timeout, transport, rate limit) surface
// immediately as a providers.InvocationError without consuming the budget,
// so callers can apply their own backoff policy.
package extract

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jackzampolin/distill/internal/prompts/extraction"
	"github.com/jackzampolin/distill/internal/providers"
	"github.com/jackzampolin/distill/internal/schema"
)

// DefaultMaxAttempts is the retry budget used when the caller passes 0.
const DefaultMaxAttempts = 3

// Config configures an Engine.
type Config struct {
	// Client invokes the model. Required.
	Client providers.LLMClient

	// Model overrides the client's default model (optional).
	Model string

	// Temperature for generation (optional).
	Temperature float64

	// MaxAttempts is the default retry budget (default: 3).
	MaxAttempts int

	// Logger for per-attempt diagnostics (default: slog.Default()).
	Logger *slog.Logger
}

// Engine executes extraction sessions. It holds no per-session state:
// independent sessions may run concurrently through one Engine.
type Engine struct {
	client      providers.LLMClient
	model       string
	temperature float64
	maxAttempts int
	logger      *slog.Logger
}

// New creates an extraction engine.
func New(cfg Config) (*Engine, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("LLM client is required")
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Engine{
		client:      cfg.Client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxAttempts: cfg.MaxAttempts,
		logger:      cfg.Logger,
	}, nil
}

// Extract runs one session against the given source text and schema.
// maxAttempts <= 0 uses the engine default.
//
// The returned error is non-nil only when the model collaborator itself
// fails (providers.InvocationError) or the context ends; those terminate
// the session immediately. All validation failures are recovered locally
// by retrying, and a consumed budget yields a Result with OK == false.
func (e *Engine) Extract(ctx context.Context, sourceText string, def *schema.Definition, maxAttempts int) (*Result, error) {
	if def == nil {
		return nil, fmt.Errorf("schema definition is required")
	}
	if maxAttempts <= 0 {
		maxAttempts = e.maxAttempts
	}

	schemaJSON, err := def.RenderIndent()
	if err != nil {
		return nil, fmt.Errorf("failed to render schema: %w", err)
	}

	sessionID := uuid.New().String()
	basePrompt := extraction.BuildUserPrompt(schemaJSON, sourceText)
	prompt := basePrompt

	history := make([]Attempt, 0, maxAttempts)
	for index := 1; index <= maxAttempts; index++ {
		if err := ctx.Err(); err != nil {
			return nil, providers.NewInvocationError(e.client.Name(), providers.InvocationTimeout, err)
		}

		res, err := e.client.Chat(ctx, &providers.ChatRequest{
			Messages: []providers.Message{
				{Role: providers.RoleSystem, Content: extraction.SystemPrompt},
				{Role: providers.RoleUser, Content: prompt},
			},
			Model:       e.model,
			Temperature: e.temperature,
			RequestID:   fmt.Sprintf("%s-%d", sessionID, index),
		})
		if err != nil {
			// Collaborator failure: fatal to the session, not retried here.
			e.logger.Error("model invocation failed",
				"session", sessionID, "schema", def.Name(), "attempt", index, "error", err)
			return nil, err
		}

		outcome := validateRaw(def, res.Content)
		history = append(history, Attempt{
			Index:     index,
			Prompt:    prompt,
			RawOutput: res.Content,
			Outcome:   outcome,
		})

		if outcome.OK {
			// Re-parse for the normalized value; validateRaw already proved it parses.
			value, perr := parseStructuredJSON(res.Content)
			if perr != nil {
				return nil, fmt.Errorf("failed to reparse validated output: %w", perr)
			}
			e.logger.Info("extraction succeeded",
				"session", sessionID, "schema", def.Name(), "attempts", index)
			return &Result{OK: true, Value: value, Attempts: index, History: history}, nil
		}

		e.logger.Debug("extraction attempt failed",
			"session", sessionID, "schema", def.Name(), "attempt", index,
			"kind", outcome.Kind, "error", outcome.Detail)

		if index < maxAttempts {
			prompt = basePrompt + extraction.BuildRepairSuffix(res.Content, outcome.Detail)
		}
	}

	last := history[len(history)-1]
	e.logger.Warn("extraction exhausted retry budget",
		"session", sessionID, "schema", def.Name(), "attempts", maxAttempts, "error", last.Outcome.Detail)
	return &Result{
		OK:       false,
		Err:      last.Outcome.Detail,
		Attempts: maxAttempts,
		History:  history,
	}, nil
}

// validateRaw classifies one raw model response: parse failures (including
// empty output and unfenceable prose) and schema violations share the same
// control flow, differing only in the error text fed back to the model.
func validateRaw(def *schema.Definition, raw string) schema.Outcome {
	parsed, err := parseStructuredJSON(raw)
	if err != nil {
		return schema.Outcome{OK: false, Kind: schema.FailureParse, Detail: err.Error()}
	}
	return def.Validate(parsed)
}
