// Package prompts manages embedded prompt definitions.
//
// Prompt text lives in code as the source of truth. Each prompt-owning
// package registers its prompts at init time; the registry exposes them
// for the server's prompt listing and for change detection via content
// hashes.
package prompts

// EmbeddedPrompt represents a prompt defined in code.
type EmbeddedPrompt struct {
	Key         string   `json:"key"`                   // Hierarchical key: extraction.system
	Text        string   `json:"text"`                  // The prompt text
	Description string   `json:"description,omitempty"` // Human-readable description
	Variables   []string `json:"variables,omitempty"`   // Extracted template variables
	Hash        string   `json:"hash,omitempty"`        // SHA256 of the text for change detection
}
