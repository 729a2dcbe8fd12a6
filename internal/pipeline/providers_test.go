package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticSchemaProvider(t *testing.T) {
	p := StaticSchemaProvider{Tree: testTree()}
	tree, err := p.Mapping(context.Background(), "any")
	require.NoError(t, err)
	assert.Contains(t, tree, "properties")

	_, err = StaticSchemaProvider{}.Mapping(context.Background(), "any")
	require.Error(t, err)
}

func TestFileSchemaProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapping.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"properties":{"status":{"type":"keyword"}}}`), 0o644))

	tree, err := FileSchemaProvider{Path: path}.Mapping(context.Background(), "any")
	require.NoError(t, err)
	assert.Contains(t, tree, "properties")
}

func TestFileSchemaProviderErrors(t *testing.T) {
	_, err := FileSchemaProvider{Path: filepath.Join(t.TempDir(), "missing.json")}.Mapping(context.Background(), "any")
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))
	_, err = FileSchemaProvider{Path: path}.Mapping(context.Background(), "any")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse mapping file")
}
