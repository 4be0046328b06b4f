package schema

import (
	"encoding/json"
	"fmt"
)

// Render produces the canonical JSON Schema document for this definition.
// The output is deterministic for a given Definition: encoding/json sorts
// map keys, and the required list preserves field declaration order. The
// same document is embedded in prompts and compiled for validation.
func (d *Definition) Render() (json.RawMessage, error) {
	doc := renderObject(d.fields)
	doc["title"] = d.name

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to render schema %s: %w", d.name, err)
	}
	return raw, nil
}

// RenderIndent is Render with indentation, for embedding in prompts.
func (d *Definition) RenderIndent() (string, error) {
	raw, err := d.Render()
	if err != nil {
		return "", err
	}
	var buf any
	if err := json.Unmarshal(raw, &buf); err != nil {
		return "", fmt.Errorf("failed to reparse rendered schema: %w", err)
	}
	pretty, err := json.MarshalIndent(buf, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to indent rendered schema: %w", err)
	}
	return string(pretty), nil
}

func renderObject(fields []Field) map[string]any {
	properties := make(map[string]any, len(fields))
	var required []string
	for _, f := range fields {
		properties[f.Name] = renderField(f)
		if f.Required {
			required = append(required, f.Name)
		}
	}

	doc := map[string]any{
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": false,
	}
	if len(required) > 0 {
		doc["required"] = required
	}
	return doc
}

// renderField renders a single field. Optional fields get a nullable type
// so "explicitly null" and "absent" are both accepted.
func renderField(f Field) map[string]any {
	var doc map[string]any

	switch f.Kind {
	case KindList:
		doc = map[string]any{
			"type":  "array",
			"items": renderField(requiredCopy(*f.Items)),
		}
	case KindObject:
		doc = renderObject(f.Fields)
	default:
		doc = map[string]any{"type": string(f.Kind)}
	}

	if !f.Required {
		doc["type"] = []any{doc["type"], "null"}
	}
	if f.Description != "" {
		doc["description"] = f.Description
	}
	return doc
}

// requiredCopy forces a field required. List elements are never nullable;
// optionality applies to the list itself.
func requiredCopy(f Field) Field {
	f.Required = true
	return f
}
