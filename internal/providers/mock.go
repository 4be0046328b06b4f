package providers

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const MockClientName = "mock"

// MockClient is an LLMClient for testing. Responses are served from a
// scripted sequence, one per request; the last response repeats once the
// script is exhausted. All received requests are captured for assertions.
type MockClient struct {
	mu sync.Mutex

	// Configurable behavior
	Latency   time.Duration
	Responses []string // Scripted response sequence
	Err       error    // Returned for every request when set (invocation failure)
	FailAfter int      // Fail requests after the first N (0 = never)

	// State
	requests []*ChatRequest
}

// NewMockClient creates a mock client that always answers text.
func NewMockClient(responses ...string) *MockClient {
	if len(responses) == 0 {
		responses = []string{"mock response"}
	}
	return &MockClient{Responses: responses}
}

// Name returns the client identifier.
func (c *MockClient) Name() string {
	return MockClientName
}

// Chat serves the next scripted response.
func (c *MockClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	c.mu.Lock()
	c.requests = append(c.requests, req)
	count := len(c.requests)
	var content string
	if len(c.Responses) > 0 {
		idx := count - 1
		if idx >= len(c.Responses) {
			idx = len(c.Responses) - 1
		}
		content = c.Responses[idx]
	}
	failErr := c.Err
	failAfter := c.FailAfter
	latency := c.Latency
	c.mu.Unlock()

	if failErr != nil {
		return nil, NewInvocationError(MockClientName, InvocationTransport, failErr)
	}
	if failAfter > 0 && count > failAfter {
		return nil, NewInvocationError(MockClientName, InvocationTransport,
			fmt.Errorf("mock client failed after %d requests", failAfter))
	}

	if latency > 0 {
		select {
		case <-time.After(latency):
		case <-ctx.Done():
			return nil, NewInvocationError(MockClientName, InvocationTimeout, ctx.Err())
		}
	}

	promptTokens := 0
	for _, m := range req.Messages {
		promptTokens += len(m.Content) / 4
	}

	return &ChatResult{
		Content:          content,
		PromptTokens:     promptTokens,
		CompletionTokens: len(content) / 4,
		TotalTokens:      promptTokens + len(content)/4,
		Provider:         MockClientName,
		ModelUsed:        req.Model,
		RequestID:        fmt.Sprintf("mock-%d", count),
	}, nil
}

// Requests returns all requests received so far.
func (c *MockClient) Requests() []*ChatRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*ChatRequest, len(c.requests))
	copy(out, c.requests)
	return out
}

// RequestCount returns the number of requests made.
func (c *MockClient) RequestCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.requests)
}

// Reset clears captured requests.
func (c *MockClient) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = nil
}

// Verify interface
var _ LLMClient = (*MockClient)(nil)
