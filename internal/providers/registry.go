package providers

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// LLMProviderConfig describes one configured LLM client.
type LLMProviderConfig struct {
	Type    string // "openrouter", "openai", "mock"
	Model   string
	APIKey  string
	RPM     int
	Enabled bool
}

// RegistryConfig holds provider configs keyed by registry name.
type RegistryConfig struct {
	LLMProviders map[string]LLMProviderConfig
}

// Registry holds named LLM clients. It supports config-driven
// instantiation, hot reload, and thread-safe access.
type Registry struct {
	mu         sync.RWMutex
	llmClients map[string]LLMClient
	logger     *slog.Logger
}

// NewRegistry creates a new empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		llmClients: make(map[string]LLMClient),
		logger:     slog.Default(),
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger *slog.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = logger
}

// RegisterLLM registers an LLM client by name.
func (r *Registry) RegisterLLM(name string, client LLMClient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.llmClients[name] = client
	r.logger.Info("registered LLM client", "name", name)
}

// UnregisterLLM removes an LLM client by name.
func (r *Registry) UnregisterLLM(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.llmClients, name)
	r.logger.Info("unregistered LLM client", "name", name)
}

// GetLLM returns an LLM client by name.
func (r *Registry) GetLLM(name string) (LLMClient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	client, ok := r.llmClients[name]
	if !ok {
		return nil, fmt.Errorf("LLM client not found: %s", name)
	}
	return client, nil
}

// ListLLM returns all registered LLM client names, sorted.
func (r *Registry) ListLLM() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.llmClients))
	for name := range r.llmClients {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reload replaces all registered clients with ones built from cfg.
// Disabled entries and unknown types are skipped with a log line so a bad
// config edit never tears down the process.
func (r *Registry) Reload(cfg RegistryConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()

	clients := make(map[string]LLMClient, len(cfg.LLMProviders))
	for name, pc := range cfg.LLMProviders {
		if !pc.Enabled {
			continue
		}
		client, err := buildLLMClient(pc)
		if err != nil {
			r.logger.Warn("skipping LLM provider", "name", name, "error", err)
			continue
		}
		clients[name] = client
		r.logger.Info("configured LLM client", "name", name, "type", pc.Type, "model", pc.Model)
	}
	r.llmClients = clients
}

func buildLLMClient(pc LLMProviderConfig) (LLMClient, error) {
	switch pc.Type {
	case "openrouter":
		return NewOpenRouterClient(OpenRouterConfig{
			APIKey:       pc.APIKey,
			DefaultModel: pc.Model,
			RPM:          pc.RPM,
		}), nil
	case "openai":
		return NewOpenAIClient(OpenAIConfig{
			APIKey: pc.APIKey,
			Model:  pc.Model,
			RPM:    pc.RPM,
		}), nil
	case "mock":
		return NewMockClient(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider type: %s", pc.Type)
	}
}
