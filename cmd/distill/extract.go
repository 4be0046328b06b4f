package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/distill/internal/api"
	"github.com/jackzampolin/distill/internal/config"
	"github.com/jackzampolin/distill/internal/extract"
	"github.com/jackzampolin/distill/internal/providers"
	"github.com/jackzampolin/distill/internal/schema"
)

var (
	extractSchemaPath  string
	extractTextPath    string
	extractMaxAttempts int
	extractProvider    string
	extractModel       string
	extractVerbose     bool
)

var extractCmd = &cobra.Command{
	Use:   "extract [text]",
	Short: "Extract structured data from text",
	Long: `Extract structured data from unstructured text without a server.

The source text comes from the positional argument, --text-file, or stdin.
The schema is a YAML file declaring named, typed fields:

  name: user_profile
  fields:
    - name: name
      type: string
      required: true
    - name: age
      type: integer
      required: true
    - name: interests
      type: list
      required: true
      items:
        type: string

Examples:
  distill extract -s schema.yaml "Jane is 28 and likes painting"
  cat article.txt | distill extract -s schema.yaml
  distill extract -s schema.yaml -t article.txt --max-attempts 5`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		def, err := schema.LoadFile(extractSchemaPath)
		if err != nil {
			return err
		}

		text, err := readSourceText(args, extractTextPath)
		if err != nil {
			return err
		}

		mgr, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		cfg := mgr.Get()

		level := slog.LevelWarn
		if extractVerbose {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

		registry := providers.NewRegistry()
		registry.SetLogger(logger)
		registry.Reload(cfg.ToProviderRegistryConfig())

		providerName := extractProvider
		if providerName == "" {
			providerName = cfg.Defaults.LLMProvider
		}
		client, err := registry.GetLLM(providerName)
		if err != nil {
			return err
		}

		maxAttempts := extractMaxAttempts
		if maxAttempts <= 0 {
			maxAttempts = cfg.Defaults.MaxAttempts
		}

		engine, err := extract.New(extract.Config{
			Client:      client,
			Model:       extractModel,
			Temperature: cfg.Defaults.Temperature,
			Logger:      logger,
		})
		if err != nil {
			return err
		}

		result, err := engine.Extract(ctx, text, def, maxAttempts)
		if err != nil {
			return err
		}

		if err := api.Output(result); err != nil {
			return err
		}
		if !result.OK {
			os.Exit(1)
		}
		return nil
	},
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

func init() {
	extractCmd.Flags().StringVarP(&extractSchemaPath, "schema", "s", "", "Path to schema YAML file (required)")
	extractCmd.Flags().StringVarP(&extractTextPath, "text-file", "t", "", "Path to source text file (default: stdin)")
	extractCmd.Flags().IntVar(&extractMaxAttempts, "max-attempts", 0, "Validation retry budget (default: config)")
	extractCmd.Flags().StringVar(&extractProvider, "provider", "", "LLM provider name (default: config)")
	extractCmd.Flags().StringVar(&extractModel, "model", "", "Model override")
	extractCmd.Flags().BoolVarP(&extractVerbose, "verbose", "v", false, "Log per-attempt diagnostics")
	extractCmd.MarkFlagRequired("schema")

	rootCmd.AddCommand(extractCmd)
}
