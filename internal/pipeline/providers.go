package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// StaticSchemaProvider serves a fixed mapping tree for every pattern.
// Useful for tests and for CLI runs against a mapping file.
type StaticSchemaProvider struct {
	Tree map[string]any
}

func (s StaticSchemaProvider) Mapping(_ context.Context, _ string) (map[string]any, error) {
	if s.Tree == nil {
		return nil, fmt.Errorf("no mapping available")
	}
	return s.Tree, nil
}

// FileSchemaProvider reads a JSON mapping tree from disk on every
// (uncached) request.
type FileSchemaProvider struct {
	Path string
}

func (f FileSchemaProvider) Mapping(_ context.Context, _ string) (map[string]any, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read mapping file: %w", err)
	}
	var tree map[string]any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("parse mapping file %s: %w", f.Path, err)
	}
	return tree, nil
}
