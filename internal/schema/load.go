package schema

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileDoc is the on-disk YAML layout for a schema definition.
type fileDoc struct {
	Name   string  `yaml:"name"`
	Fields []Field `yaml:"fields"`
}

// Parse builds a Definition from YAML bytes. Field order in the document
// is preserved as declaration order.
func Parse(data []byte) (*Definition, error) {
	var doc fileDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse schema file: %w", err)
	}
	return New(doc.Name, doc.Fields)
}

// LoadFile reads a schema definition from a YAML file.
func LoadFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	return Parse(data)
}
