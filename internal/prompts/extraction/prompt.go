// Package extraction holds the prompts for the structured-extraction
// protocol: a fixed system prompt, a user prompt embedding the rendered
// schema and source text, and a repair suffix that feeds a failed
// attempt's output and validation error back to the model.
package extraction

import (
	"fmt"
	"strings"

	"github.com/jackzampolin/distill/internal/prompts"
)

// maxRepairOutputLen caps how much of a failed attempt's raw output is
// echoed back to the model.
const maxRepairOutputLen = 12000

// SystemPrompt is the system prompt for structured extraction.
const SystemPrompt = `You are a highly efficient information extraction assistant. Your sole responsibility is to extract structured data from the provided unstructured text and return a valid JSON object that strictly conforms to the given JSON schema.

Rules:
- Return ONLY the raw JSON object. No commentary, no Markdown, no preamble, no wrapping text.
- Every required field must be present and conform to its declared type.
- If a field cannot be confidently determined from the text, use null. Never use placeholder strings like "unknown" or "N/A".
- Do not add fields that are not in the schema.
- Booleans must be true/false, not "yes"/"no".
- Strings must not contain leading or trailing whitespace.`

// BuildUserPrompt renders the base extraction prompt for a schema and
// source text. The output is deterministic for the same inputs so retry
// prompts (base + suffix) are reproducible.
func BuildUserPrompt(schemaJSON, text string) string {
	return fmt.Sprintf(`<target_schema>
%s
</target_schema>

<source_text>
%s
</source_text>

Extract the data and return ONLY the JSON object:`, schemaJSON, text)
}

// BuildRepairSuffix renders the correction instructions appended to the
// base prompt after a failed attempt. The previous raw output and the
// validation error are included verbatim (output truncated past
// maxRepairOutputLen).
func BuildRepairSuffix(rawOutput, errText string) string {
	rawOutput = strings.TrimSpace(rawOutput)
	if len(rawOutput) > maxRepairOutputLen {
		rawOutput = rawOutput[:maxRepairOutputLen] + "\n...[truncated]"
	}

	return fmt.Sprintf(`

PREVIOUS FAILED ATTEMPT'S OUTPUT:
%s

ERROR:
%s

Correct exactly that error and return ONLY the JSON object:`, rawOutput, errText)
}

func init() {
	prompts.Register(prompts.EmbeddedPrompt{
		Key:         "extraction.system",
		Text:        SystemPrompt,
		Description: "System prompt for schema-validated structured extraction",
	})
}
