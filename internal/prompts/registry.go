package prompts

import (
	"fmt"
	"sort"
	"sync"
)

var (
	mu       sync.RWMutex
	embedded = make(map[string]EmbeddedPrompt)
)

// Register records an embedded prompt. Called during initialization by
// each prompt-owning package. Hash and Variables are derived from the text
// when unset.
func Register(prompt EmbeddedPrompt) {
	if prompt.Hash == "" {
		prompt.Hash = HashText(prompt.Text)
	}
	if prompt.Variables == nil {
		prompt.Variables = ExtractVariables(prompt.Text)
	}

	mu.Lock()
	defer mu.Unlock()
	embedded[prompt.Key] = prompt
}

// Get returns a registered prompt by key.
func Get(key string) (EmbeddedPrompt, error) {
	mu.RLock()
	defer mu.RUnlock()
	p, ok := embedded[key]
	if !ok {
		return EmbeddedPrompt{}, fmt.Errorf("prompt not found: %s", key)
	}
	return p, nil
}

// All returns all registered prompts sorted by key.
func All() []EmbeddedPrompt {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]EmbeddedPrompt, 0, len(embedded))
	for _, p := range embedded {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result
}
