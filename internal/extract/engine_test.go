package extract

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/jackzampolin/distill/internal/providers"
	"github.com/jackzampolin/distill/internal/schema"
)

func testDef(t *testing.T) *schema.Definition {
	t.Helper()
	def, err := schema.New("user_profile", []schema.Field{
		{Name: "name", Kind: schema.KindString, Required: true},
		{Name: "age", Kind: schema.KindInteger, Required: true},
		{Name: "interests", Kind: schema.KindList, Required: true, Items: &schema.Field{Kind: schema.KindString}},
	})
	if err != nil {
		t.Fatalf("schema.New() error = %v", err)
	}
	return def
}

func newTestEngine(t *testing.T, client providers.LLMClient) *Engine {
	t.Helper()
	engine, err := New(Config{Client: client})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return engine
}

func TestExtract_FirstAttemptValid(t *testing.T) {
	mock := providers.NewMockClient(`{"name":"Jane","age":28,"interests":["painting","running"]}`)
	engine := newTestEngine(t, mock)

	result, err := engine.Extract(context.Background(), "Jane is 28 and likes painting and running", testDef(t), 3)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !result.OK {
		t.Fatalf("Extract() failed: %s", result.Err)
	}
	if result.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", result.Attempts)
	}
	if len(result.History) != 1 {
		t.Errorf("len(History) = %d, want 1", len(result.History))
	}
	if mock.RequestCount() != 1 {
		t.Errorf("model invocations = %d, want 1 (success is terminal)", mock.RequestCount())
	}

	var value map[string]any
	if err := json.Unmarshal(result.Value, &value); err != nil {
		t.Fatalf("result value is not JSON: %v", err)
	}
	if value["name"] != "Jane" {
		t.Errorf("value name = %v, want Jane", value["name"])
	}
}

func TestExtract_TypeViolationRetriedThenSucceeds(t *testing.T) {
	// Attempt 1 returns age as a string (type violation), attempt 2 corrects it.
	mock := providers.NewMockClient(
		`{"name":"Jane","age":"28","interests":["painting","running"]}`,
		`{"name":"Jane","age":28,"interests":["painting","running"]}`,
	)
	engine := newTestEngine(t, mock)

	result, err := engine.Extract(context.Background(), "Jane is 28 and likes painting and running", testDef(t), 3)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !result.OK {
		t.Fatalf("Extract() failed: %s", result.Err)
	}
	if result.Attempts != 2 {
		t.Errorf("Attempts = %d, want 2", result.Attempts)
	}

	// The retry prompt must contain the failing raw output and its error verbatim.
	requests := mock.Requests()
	if len(requests) != 2 {
		t.Fatalf("model invocations = %d, want 2", len(requests))
	}
	retryPrompt := requests[1].Messages[1].Content
	if !strings.Contains(retryPrompt, `{"name":"Jane","age":"28","interests":["painting","running"]}`) {
		t.Error("retry prompt should contain the previous raw output verbatim")
	}
	firstOutcome := result.History[0].Outcome
	if firstOutcome.Kind != schema.FailureViolation {
		t.Errorf("first attempt kind = %s, want %s", firstOutcome.Kind, schema.FailureViolation)
	}
	if !strings.Contains(retryPrompt, firstOutcome.Detail) {
		t.Error("retry prompt should contain the validation error verbatim")
	}
}

func TestExtract_EachRetryPromptCarriesPriorFailure(t *testing.T) {
	mock := providers.NewMockClient(
		`not json at all`,
		`{"name":"Jane"}`,
		`{"name":"Jane","age":28,"interests":[]}`,
	)
	engine := newTestEngine(t, mock)

	result, err := engine.Extract(context.Background(), "Jane is 28", testDef(t), 3)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !result.OK || result.Attempts != 3 {
		t.Fatalf("result = ok:%t attempts:%d, want success on attempt 3", result.OK, result.Attempts)
	}

	requests := mock.Requests()
	for i := 1; i < len(requests); i++ {
		prompt := requests[i].Messages[1].Content
		prev := result.History[i-1]
		if !strings.Contains(prompt, strings.TrimSpace(prev.RawOutput)) {
			t.Errorf("attempt %d prompt missing previous raw output", i+1)
		}
		if !strings.Contains(prompt, prev.Outcome.Detail) {
			t.Errorf("attempt %d prompt missing previous error text", i+1)
		}
	}

	// Parse failure and schema violation drive the same control flow but
	// classify differently.
	if result.History[0].Outcome.Kind != schema.FailureParse {
		t.Errorf("attempt 1 kind = %s, want %s", result.History[0].Outcome.Kind, schema.FailureParse)
	}
	if result.History[1].Outcome.Kind != schema.FailureViolation {
		t.Errorf("attempt 2 kind = %s, want %s", result.History[1].Outcome.Kind, schema.FailureViolation)
	}
}

func TestExtract_ExhaustionReturnsValueNotError(t *testing.T) {
	mock := providers.NewMockClient(`garbage`, `more garbage`)
	engine := newTestEngine(t, mock)

	result, err := engine.Extract(context.Background(), "some text", testDef(t), 2)
	if err != nil {
		t.Fatalf("exhaustion must not produce an error, got: %v", err)
	}
	if result.OK {
		t.Fatal("expected failure result")
	}
	if result.Attempts != 2 {
		t.Errorf("Attempts = %d, want 2", result.Attempts)
	}
	if result.Err == "" {
		t.Error("failure result should carry the last validation error")
	}
	if len(result.History) != 2 {
		t.Errorf("len(History) = %d, want 2", len(result.History))
	}
}

func TestExtract_EmptyOutputIsParseError(t *testing.T) {
	mock := providers.NewMockClient("   \n\t  ")
	engine := newTestEngine(t, mock)

	result, err := engine.Extract(context.Background(), "text", testDef(t), 1)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if result.OK {
		t.Fatal("expected failure")
	}
	if result.History[0].Outcome.Kind != schema.FailureParse {
		t.Errorf("kind = %s, want %s", result.History[0].Outcome.Kind, schema.FailureParse)
	}
}

func TestExtract_CodeFencedOutputAccepted(t *testing.T) {
	mock := providers.NewMockClient("```json\n{\"name\":\"Jane\",\"age\":28,\"interests\":[]}\n```")
	engine := newTestEngine(t, mock)

	result, err := engine.Extract(context.Background(), "text", testDef(t), 1)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !result.OK {
		t.Fatalf("fenced JSON should validate: %s", result.Err)
	}
}

func TestExtract_InvocationFailurePropagatesImmediately(t *testing.T) {
	mock := providers.NewMockClient(`{"name":"Jane","age":28,"interests":[]}`)
	mock.FailAfter = 1
	engine := newTestEngine(t, mock)

	def := testDef(t)
	ctx := context.Background()

	// First session succeeds.
	if _, err := engine.Extract(ctx, "text", def, 3); err != nil {
		t.Fatalf("first session error = %v", err)
	}

	// Second session hits the collaborator failure: surfaced as an error,
	// no validation retries consumed.
	_, err := engine.Extract(ctx, "text", def, 3)
	if err == nil {
		t.Fatal("expected invocation error")
	}
	if _, ok := providers.AsInvocationError(err); !ok {
		t.Fatalf("error should be InvocationError, got %T: %v", err, err)
	}
	if mock.RequestCount() != 2 {
		t.Errorf("model invocations = %d, want 2 (no retry of invocation failures)", mock.RequestCount())
	}
}

func TestExtract_CancelledContextSurfacesAsInvocationFailure(t *testing.T) {
	mock := providers.NewMockClient(`{"name":"Jane","age":28,"interests":[]}`)
	engine := newTestEngine(t, mock)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Extract(ctx, "text", testDef(t), 3)
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if _, ok := providers.AsInvocationError(err); !ok {
		t.Fatalf("error should be InvocationError, got %T: %v", err, err)
	}
}

func TestExtract_DefaultBudgetWhenZero(t *testing.T) {
	mock := providers.NewMockClient(`garbage`)
	engine := newTestEngine(t, mock)

	result, err := engine.Extract(context.Background(), "text", testDef(t), 0)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if result.Attempts != DefaultMaxAttempts {
		t.Errorf("Attempts = %d, want default %d", result.Attempts, DefaultMaxAttempts)
	}
}

func TestExtract_ConcurrentSessionsShareSchema(t *testing.T) {
	def := testDef(t)

	done := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			mock := providers.NewMockClient(`{"name":"Jane","age":28,"interests":["x"]}`)
			engine, err := New(Config{Client: mock})
			if err != nil {
				done <- err
				return
			}
			result, err := engine.Extract(context.Background(), "text", def, 3)
			if err != nil {
				done <- err
				return
			}
			if !result.OK {
				done <- errContains(result.Err)
				return
			}
			done <- nil
		}()
	}
	for i := 0; i < 8; i++ {
		if err := <-done; err != nil {
			t.Fatalf("concurrent session failed: %v", err)
		}
	}
}

// errContains wraps a validation detail string as an error for channel reporting.
type errContains string

func (e errContains) Error() string { return string(e) }

func TestParseStructuredJSON_Recovery(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"bare object", `{"a":1}`, false},
		{"fenced", "```json\n{\"a\":1}\n```", false},
		{"fence no lang", "```\n{\"a\":1}\n```", false},
		{"surrounding prose", "Here is the data: {\"a\":1} as requested.", false},
		{"array", `[1,2,3]`, false},
		{"empty", "", true},
		{"whitespace", " \n ", true},
		{"prose only", "no data here", true},
		{"unbalanced", `{"a":`, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseStructuredJSON(tc.input)
			if tc.wantErr && err == nil {
				t.Error("expected parse error")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
