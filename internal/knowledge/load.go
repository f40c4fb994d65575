package knowledge

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a YAML tables file and builds a knowledge base from it.
// The file replaces the built-in tables entirely.
func LoadFile(path string) (*KnowledgeBase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read knowledge file: %w", err)
	}

	var t Tables
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("parse knowledge file %s: %w", path, err)
	}

	kb, err := New(t)
	if err != nil {
		return nil, fmt.Errorf("build knowledge base from %s: %w", path, err)
	}
	return kb, nil
}

// Resolve returns the knowledge base named by path, or the built-in one when path is empty
func Resolve(path string) (*KnowledgeBase, error) {
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// MarshalDefault renders the built-in tables as YAML (starting point for a custom file)
func MarshalDefault() ([]byte, error) {
	return yaml.Marshal(DefaultTables())
}
