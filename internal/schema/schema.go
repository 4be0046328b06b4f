// Package schema defines the declarative output shape for structured
// extraction and validates candidate values against it.
//
// A Definition is an ordered set of named, typed fields. It renders to a
// canonical JSON Schema document for prompting and compiles that same
// document for validation, so the schema the model sees and the schema the
// validator enforces are always identical.
//
// Extra-field policy: undeclared fields are REJECTED. Every rendered object
// level sets additionalProperties: false.
package schema

import (
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Kind is the declared type of a field. The set is closed.
type Kind string

const (
	KindString  Kind = "string"
	KindInteger Kind = "integer"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
	KindList    Kind = "list"
	KindObject  Kind = "object"
)

// validKinds is the closed set of field kinds.
var validKinds = map[Kind]bool{
	KindString:  true,
	KindInteger: true,
	KindNumber:  true,
	KindBoolean: true,
	KindList:    true,
	KindObject:  true,
}

// Field declares a single named field in a Definition.
type Field struct {
	Name        string  `json:"name" yaml:"name"`
	Kind        Kind    `json:"type" yaml:"type"`
	Required    bool    `json:"required" yaml:"required"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Items       *Field  `json:"items,omitempty" yaml:"items,omitempty"`   // element type, Kind == list
	Fields      []Field `json:"fields,omitempty" yaml:"fields,omitempty"` // children, Kind == object
}

// Definition is an immutable extraction schema. Construct with New; the
// zero value is not usable.
type Definition struct {
	name   string
	fields []Field

	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
}

// New creates a Definition from an ordered field list. The name identifies
// the schema in prompts and logs. Field names must be unique per level,
// kinds must come from the closed set, list fields need Items, object
// fields need Fields.
func New(name string, fields []Field) (*Definition, error) {
	if name == "" {
		return nil, fmt.Errorf("schema name is required")
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("schema %q has no fields", name)
	}
	if err := checkFields(name, fields); err != nil {
		return nil, err
	}

	copied := make([]Field, len(fields))
	copy(copied, fields)
	return &Definition{name: name, fields: copied}, nil
}

// checkFields validates a field list recursively.
func checkFields(path string, fields []Field) error {
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if f.Name == "" {
			return fmt.Errorf("%s: field with empty name", path)
		}
		fieldPath := path + "." + f.Name
		if seen[f.Name] {
			return fmt.Errorf("%s: duplicate field name %q", path, f.Name)
		}
		seen[f.Name] = true

		if !validKinds[f.Kind] {
			return fmt.Errorf("%s: unknown kind %q", fieldPath, f.Kind)
		}

		switch f.Kind {
		case KindList:
			if f.Items == nil {
				return fmt.Errorf("%s: list field requires items", fieldPath)
			}
			// Element types are anonymous; wrap in a synthetic name for path reporting.
			elem := *f.Items
			if elem.Name == "" {
				elem.Name = "items"
			}
			if err := checkFields(fieldPath, []Field{elem}); err != nil {
				return err
			}
		case KindObject:
			if len(f.Fields) == 0 {
				return fmt.Errorf("%s: object field requires nested fields", fieldPath)
			}
			if err := checkFields(fieldPath, f.Fields); err != nil {
				return err
			}
		}
	}
	return nil
}

// Name returns the schema identifier.
func (d *Definition) Name() string {
	return d.name
}

// Fields returns the declared fields in declaration order.
func (d *Definition) Fields() []Field {
	out := make([]Field, len(d.fields))
	copy(out, d.fields)
	return out
}
