package providers

import (
	"context"
	"os"
	"testing"
	"time"
)

// TestOpenRouterClient_Integration exercises the real OpenRouter API.
// Requires OPENROUTER_API_KEY; skipped in short mode.
func TestOpenRouterClient_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	apiKey := os.Getenv("OPENROUTER_API_KEY")
	if apiKey == "" {
		t.Skip("OPENROUTER_API_KEY not set")
	}

	client := NewOpenRouterClient(OpenRouterConfig{APIKey: apiKey})

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	result, err := client.Chat(ctx, &ChatRequest{
		Messages: []Message{
			{Role: RoleUser, Content: "Reply with the single word: pong"},
		},
		MaxTokens: 16,
	})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if result.Content == "" {
		t.Error("expected non-empty content")
	}
	if result.TotalTokens == 0 {
		t.Error("expected token usage to be reported")
	}
}
