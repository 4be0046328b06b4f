package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/distill/internal/schema"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Schema commands",
}

var schemaRenderCmd = &cobra.Command{
	Use:   "render <schema.yaml>",
	Short: "Render a schema file as JSON Schema",
	Long: `Render a schema file as the JSON Schema document sent to the model.

Useful for checking what a schema declaration expands to before running an
extraction with it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		def, err := schema.LoadFile(args[0])
		if err != nil {
			return err
		}
		rendered, err := def.RenderIndent()
		if err != nil {
			return err
		}
		fmt.Println(rendered)
		return nil
	},
}

func init() {
	schemaCmd.AddCommand(schemaRenderCmd)
	rootCmd.AddCommand(schemaCmd)
}
