package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Mapping Shape Tests
// =============================================================================

func sampleProperties() map[string]any {
	return map[string]any{
		"status": map[string]any{"type": "keyword"},
		"ts":     map[string]any{"type": "date"},
		"message": map[string]any{
			"type":     "text",
			"analyzer": "standard",
			"fields": map[string]any{
				"keyword": map[string]any{"type": "keyword"},
			},
		},
	}
}

func TestBuildBareProperties(t *testing.T) {
	idx, flat, errs := Build(map[string]any{"properties": sampleProperties()})

	assert.Empty(t, errs)
	assert.Equal(t, 4, idx.Len(), "status, ts, message, message.keyword")
	assert.Len(t, flat, 4)
	assert.True(t, idx.Has("message.keyword"))
}

func TestBuildMappingsWrapper(t *testing.T) {
	idx, _, errs := Build(map[string]any{
		"mappings": map[string]any{"properties": sampleProperties()},
	})

	assert.Empty(t, errs)
	assert.Equal(t, 4, idx.Len())
}

func TestBuildIndexNameWrapper(t *testing.T) {
	idx, _, errs := Build(map[string]any{
		"logs-2026.08": map[string]any{
			"mappings": map[string]any{"properties": sampleProperties()},
		},
	})

	assert.Empty(t, errs)
	assert.Equal(t, 4, idx.Len())
}

func TestBuildBoundedDepthSearch(t *testing.T) {
	// No recognized wrapper; "properties" sits two levels down.
	idx, _, errs := Build(map[string]any{
		"response": map[string]any{
			"body": map[string]any{"properties": sampleProperties()},
		},
	})

	assert.Empty(t, errs)
	assert.Equal(t, 4, idx.Len())
}

func TestBuildPropertiesTooDeep(t *testing.T) {
	idx, flat, errs := Build(map[string]any{
		"a": map[string]any{
			"b": map[string]any{
				"c": map[string]any{
					"d": map[string]any{"properties": sampleProperties()},
				},
			},
		},
	})

	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "no properties map")
	assert.Equal(t, 0, idx.Len())
	assert.Empty(t, flat)
}

func TestBuildEmptyTree(t *testing.T) {
	for _, raw := range []map[string]any{nil, {}} {
		idx, flat, errs := Build(raw)
		require.Len(t, errs, 1)
		assert.Equal(t, 0, idx.Len())
		assert.Empty(t, flat)
	}
}

func TestBuildMalformedFieldDefinition(t *testing.T) {
	idx, _, errs := Build(map[string]any{
		"properties": map[string]any{
			"good": map[string]any{"type": "keyword"},
			"bad":  "not-an-object",
		},
	})

	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), `"bad"`)
	assert.True(t, idx.Has("good"), "analysis continues past malformed fields")
	assert.False(t, idx.Has("bad"))
}

// =============================================================================
// Semantic Flag Tests
// =============================================================================

func TestTextWithKeywordVariantFlags(t *testing.T) {
	idx, _, errs := Build(map[string]any{"properties": sampleProperties()})
	require.Empty(t, errs)

	message, ok := idx.Get("message")
	require.True(t, ok)
	assert.True(t, message.Searchable)
	assert.False(t, message.Aggregatable, "keyword variant takes over aggregation")
	assert.Equal(t, []string{"standard"}, message.Analyzers)
	assert.False(t, message.MultiField)

	kw, ok := idx.Get("message.keyword")
	require.True(t, ok)
	assert.Equal(t, TypeKeyword, kw.Type)
	assert.True(t, kw.Aggregatable)
	assert.True(t, kw.MultiField)
}

func TestTextWithoutKeywordVariantAggregates(t *testing.T) {
	idx, _, errs := Build(map[string]any{
		"properties": map[string]any{
			"note": map[string]any{"type": "text"},
		},
	})
	require.Empty(t, errs)

	note, ok := idx.Get("note")
	require.True(t, ok)
	assert.True(t, note.Aggregatable)
}

func TestTypeFlagsByFamily(t *testing.T) {
	idx, _, errs := Build(map[string]any{
		"properties": map[string]any{
			"bytes":    map[string]any{"type": "long"},
			"ratio":    map[string]any{"type": "double"},
			"ts":       map[string]any{"type": "date"},
			"enabled":  map[string]any{"type": "boolean"},
			"addr":     map[string]any{"type": "ip"},
			"location": map[string]any{"type": "geo_point"},
		},
	})
	require.Empty(t, errs)

	for _, name := range []string{"bytes", "ratio", "ts", "enabled", "addr"} {
		f, ok := idx.Get(name)
		require.True(t, ok, name)
		assert.True(t, f.Searchable, name)
		assert.True(t, f.Aggregatable, name)
	}

	geo, ok := idx.Get("location")
	require.True(t, ok)
	assert.False(t, geo.Searchable)
	assert.False(t, geo.Aggregatable)
}

func TestUntypedFieldDefaultsToObject(t *testing.T) {
	idx, _, errs := Build(map[string]any{
		"properties": map[string]any{
			"meta": map[string]any{
				"properties": map[string]any{
					"tag": map[string]any{"type": "keyword"},
				},
			},
		},
	})
	require.Empty(t, errs)

	meta, ok := idx.Get("meta")
	require.True(t, ok)
	assert.Equal(t, TypeObject, meta.Type)
	assert.False(t, meta.Searchable)
	assert.True(t, idx.Has("meta.tag"))
}

// =============================================================================
// Structure Tests
// =============================================================================

func TestFlatListMatchesIndex(t *testing.T) {
	idx, flat, errs := Build(map[string]any{
		"properties": map[string]any{
			"user": map[string]any{
				"properties": map[string]any{
					"name": map[string]any{
						"type": "text",
						"fields": map[string]any{
							"keyword": map[string]any{"type": "keyword"},
						},
					},
					"age": map[string]any{"type": "integer"},
				},
			},
			"created": map[string]any{"type": "date"},
		},
	})
	require.Empty(t, errs)

	assert.Equal(t, idx.Len(), len(flat))
	for _, f := range flat {
		got, ok := idx.Get(f.Name)
		require.True(t, ok, f.Name)
		assert.Equal(t, f.Type, got.Type)
	}
}

func TestParentsPrecedeChildren(t *testing.T) {
	idx, _, errs := Build(map[string]any{
		"properties": map[string]any{
			"user": map[string]any{
				"properties": map[string]any{
					"name": map[string]any{"type": "keyword"},
				},
			},
		},
	})
	require.Empty(t, errs)

	paths := idx.Paths()
	require.Equal(t, []string{"user", "user.name"}, paths)

	user, ok := idx.Get("user")
	require.True(t, ok)
	require.Len(t, user.Children, 1)
	assert.Equal(t, "user.name", user.Children[0].Name)
}

func TestDirectChildrenOnly(t *testing.T) {
	idx, _, errs := Build(map[string]any{
		"properties": map[string]any{
			"a": map[string]any{
				"properties": map[string]any{
					"b": map[string]any{
						"properties": map[string]any{
							"c": map[string]any{"type": "keyword"},
						},
					},
				},
			},
		},
	})
	require.Empty(t, errs)

	a, ok := idx.Get("a")
	require.True(t, ok)
	require.Len(t, a.Children, 1, "grandchildren belong to the child")
	assert.Equal(t, "a.b", a.Children[0].Name)
}

// =============================================================================
// Lookup Helper Tests
// =============================================================================

func TestKeywordVariantLookup(t *testing.T) {
	idx, _, errs := Build(map[string]any{"properties": sampleProperties()})
	require.Empty(t, errs)

	assert.Equal(t, "message.keyword", idx.KeywordVariant("message"))
	assert.Equal(t, "", idx.KeywordVariant("status"))
	assert.Equal(t, "", idx.KeywordVariant("missing"))
}

func TestFirstHelpers(t *testing.T) {
	idx, _, errs := Build(map[string]any{"properties": sampleProperties()})
	require.Empty(t, errs)

	// Traversal order is sorted within a level: message, message.keyword,
	// status, ts.
	agg, ok := idx.FirstAggregatable()
	require.True(t, ok)
	assert.Equal(t, "message.keyword", agg.Name)

	text, ok := idx.FirstText()
	require.True(t, ok)
	assert.Equal(t, "message", text.Name)

	date, ok := idx.FirstDate()
	require.True(t, ok)
	assert.Equal(t, "ts", date.Name)
}

func TestFirstHelpersOnEmptyIndex(t *testing.T) {
	idx, _, _ := Build(nil)

	_, ok := idx.FirstAggregatable()
	assert.False(t, ok)
	_, ok = idx.FirstText()
	assert.False(t, ok)
	_, ok = idx.FirstDate()
	assert.False(t, ok)
}
