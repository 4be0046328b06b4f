package endpoints

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/distill/internal/api"
	"github.com/jackzampolin/distill/internal/extract"
	"github.com/jackzampolin/distill/internal/providers"
	"github.com/jackzampolin/distill/internal/schema"
	"github.com/jackzampolin/distill/internal/svcctx"
)

// ExtractRequest is the request body for POST /v1/extract.
type ExtractRequest struct {
	// Schema declares the target shape of the extracted value.
	Schema SchemaDoc `json:"schema"`
	// Text is the unstructured source text.
	Text string `json:"text"`
	// MaxAttempts overrides the configured validation retry budget (optional).
	MaxAttempts int `json:"max_attempts,omitempty"`
	// Provider selects a configured LLM provider by name (optional).
	Provider string `json:"provider,omitempty"`
	// Model overrides the provider's default model (optional).
	Model string `json:"model,omitempty"`
}

// SchemaDoc is the wire form of a schema definition.
type SchemaDoc struct {
	Name   string         `json:"name"`
	Fields []schema.Field `json:"fields"`
}

// ExtractResponse is the response body for POST /v1/extract. It mirrors
// extract.Result: a failed extraction is still a 200 with OK == false.
type ExtractResponse struct {
	OK       bool            `json:"ok"`
	Value    json.RawMessage `json:"value,omitempty"`
	Error    string          `json:"error,omitempty"`
	Attempts int             `json:"attempts"`
}

// ExtractEndpoint handles POST /v1/extract.
type ExtractEndpoint struct{}

func (e *ExtractEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/v1/extract", e.handler
}

func (e *ExtractEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	def, err := schema.New(req.Schema.Name, req.Schema.Fields)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid schema: %v", err))
		return
	}

	registry := svcctx.RegistryFrom(r.Context())
	cfg := svcctx.ConfigFrom(r.Context())
	if registry == nil || cfg == nil {
		writeError(w, http.StatusServiceUnavailable, "server not fully initialized")
		return
	}

	providerName := req.Provider
	if providerName == "" {
		providerName = cfg.Defaults.LLMProvider
	}
	client, err := registry.GetLLM(providerName)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown provider: %s", providerName))
		return
	}

	maxAttempts := req.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = cfg.Defaults.MaxAttempts
	}

	engine, err := extract.New(extract.Config{
		Client:      client,
		Model:       req.Model,
		Temperature: cfg.Defaults.Temperature,
		Logger:      svcctx.LoggerFrom(r.Context()),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	result, err := engine.Extract(r.Context(), req.Text, def, maxAttempts)
	if err != nil {
		// Collaborator failures map to 502; everything else is a server error.
		if _, ok := providers.AsInvocationError(err); ok {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ExtractResponse{
		OK:       result.OK,
		Value:    result.Value,
		Error:    result.Err,
		Attempts: result.Attempts,
	})
}

func (e *ExtractEndpoint) Command(getServerURL func() string) *cobra.Command {
	var (
		schemaPath  string
		textPath    string
		maxAttempts int
		provider    string
		model       string
	)

	cmd := &cobra.Command{
		Use:   "extract [text]",
		Short: "Extract structured data from text via the server",
		Long: `Extract structured data from unstructured text via the running server.

The source text comes from the positional argument, --text-file, or stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := schema.LoadFile(schemaPath)
			if err != nil {
				return err
			}

			text, err := readSourceText(args, textPath)
			if err != nil {
				return err
			}

			client := api.NewClient(getServerURL())
			var resp ExtractResponse
			err = client.Post(cmd.Context(), "/v1/extract", ExtractRequest{
				Schema:      SchemaDoc{Name: def.Name(), Fields: def.Fields()},
				Text:        text,
				MaxAttempts: maxAttempts,
				Provider:    provider,
				Model:       model,
			}, &resp)
			if err != nil {
				return err
			}
			return api.Output(resp)
		},
	}

	cmd.Flags().StringVarP(&schemaPath, "schema", "s", "", "Path to schema YAML file (required)")
	cmd.Flags().StringVarP(&textPath, "text-file", "t", "", "Path to source text file (default: stdin)")
	cmd.Flags().IntVar(&maxAttempts, "max-attempts", 0, "Validation retry budget (default: server config)")
	cmd.Flags().StringVar(&provider, "provider", "", "LLM provider name (default: server config)")
	cmd.Flags().StringVar(&model, "model", "", "Model override")
	cmd.MarkFlagRequired("schema")

	return cmd
}

// readSourceText resolves source text from an argument, a file, or stdin.
func readSourceText(args []string, textPath string) (string, error) {
	if len(args) == 1 && args[0] != "" {
		return args[0], nil
	}
	if textPath != "" {
		data, err := os.ReadFile(textPath)
		if err != nil {
			return "", fmt.Errorf("failed to read text file: %w", err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}
