package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// FailureKind classifies why a candidate failed validation.
type FailureKind string

const (
	// FailureParse means the candidate was not well-formed JSON.
	FailureParse FailureKind = "parse_error"
	// FailureViolation means the candidate parsed but broke a required-field,
	// type, or extra-field constraint.
	FailureViolation FailureKind = "schema_violation"
)

// Outcome is the result of validating one candidate against a Definition.
type Outcome struct {
	OK     bool
	Kind   FailureKind // set when !OK
	Detail string      // human-readable violation description, fed back to the model
}

// Err returns the outcome as an error string, empty when OK.
func (o Outcome) Err() string {
	if o.OK {
		return ""
	}
	return o.Detail
}

// Validate checks a candidate value against the definition. It is a pure
// function of (definition, candidate): no side effects, same outcome on
// every call. Empty or whitespace-only input is a parse error. Violations
// name the offending field path and the expected vs. actual type.
func (d *Definition) Validate(candidate json.RawMessage) Outcome {
	trimmed := bytes.TrimSpace(candidate)
	if len(trimmed) == 0 {
		return Outcome{OK: false, Kind: FailureParse, Detail: "empty output, expected a JSON object"}
	}

	var doc any
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return Outcome{OK: false, Kind: FailureParse, Detail: fmt.Sprintf("invalid JSON: %v", err)}
	}

	compiled, err := d.compile()
	if err != nil {
		// A Definition that passed New() always compiles; surface the
		// detail rather than panic if that assumption ever breaks.
		return Outcome{OK: false, Kind: FailureViolation, Detail: fmt.Sprintf("schema compile failed: %v", err)}
	}

	if err := compiled.Validate(doc); err != nil {
		return Outcome{OK: false, Kind: FailureViolation, Detail: formatValidationError(err)}
	}
	return Outcome{OK: true}
}

// compile compiles the rendered schema once and caches it. The Definition
// is immutable so the compiled schema is safe to share across sessions.
func (d *Definition) compile() (*jsonschema.Schema, error) {
	d.compileOnce.Do(func() {
		raw, err := d.Render()
		if err != nil {
			d.compileErr = err
			return
		}
		compiler := jsonschema.NewCompiler()
		resource := d.name + ".json"
		if err := compiler.AddResource(resource, bytes.NewReader(raw)); err != nil {
			d.compileErr = fmt.Errorf("failed to load schema %s: %w", d.name, err)
			return
		}
		d.compiled, d.compileErr = compiler.Compile(resource)
	})
	return d.compiled, d.compileErr
}

// formatValidationError flattens a jsonschema validation error into a
// stable, field-addressed description suitable for feeding back to the
// model verbatim.
func formatValidationError(err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err.Error()
	}

	leaves := collectLeaves(ve)
	if len(leaves) == 0 {
		return ve.Error()
	}

	msgs := make([]string, 0, len(leaves))
	seen := make(map[string]struct{}, len(leaves))
	for _, leaf := range leaves {
		loc := leaf.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		msg := fmt.Sprintf("field %s: %s", loc, leaf.Message)
		if _, ok := seen[msg]; ok {
			continue
		}
		seen[msg] = struct{}{}
		msgs = append(msgs, msg)
	}
	sort.Strings(msgs)
	return strings.Join(msgs, "; ")
}

// collectLeaves returns the most specific causes of a validation error.
func collectLeaves(ve *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*jsonschema.ValidationError{ve}
	}
	var leaves []*jsonschema.ValidationError
	for _, cause := range ve.Causes {
		leaves = append(leaves, collectLeaves(cause)...)
	}
	return leaves
}
