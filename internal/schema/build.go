package schema

import (
	"fmt"
	"sort"
)

// Index is a flattened lookup of every field path to its descriptor.
// Keys are unique full paths. An Index is owned by one analysis result
// and must not be mutated after Build returns.
type Index struct {
	fields map[string]Field
	// paths preserves registration (traversal) order, which keeps
	// summaries and default-field selection deterministic.
	paths []string
}

// Build walks a raw mapping tree and produces the field index plus the
// flat descriptor list.
//
// The tree may arrive in any of the common wrapping shapes:
//
//	{properties: {...}}
//	{mappings: {properties: {...}}}
//	{<indexName>: {mappings: {properties: {...}}}}
//
// If none match, a bounded-depth search (3 levels) looks for a
// "properties" key. A tree with no discoverable properties map yields an
// empty index and a descriptive error; Build never panics and never
// aborts the pipeline.
func Build(raw map[string]any) (*Index, []Field, []error) {
	idx := &Index{fields: map[string]Field{}}

	props, err := findProperties(raw)
	if err != nil {
		return idx, nil, []error{err}
	}

	var errs []error
	flat, _ := walkProperties(idx, props, "", false, &errs)
	return idx, flat, errs
}

// findProperties locates the properties map inside a raw mapping tree.
func findProperties(raw map[string]any) (map[string]any, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("mapping tree is empty")
	}

	// Shape 1: bare properties map.
	if props, ok := asMap(raw["properties"]); ok {
		return props, nil
	}

	// Shape 2: {mappings: {properties}}.
	if mappings, ok := asMap(raw["mappings"]); ok {
		if props, ok := asMap(mappings["properties"]); ok {
			return props, nil
		}
	}

	// Shape 3: {<indexName>: {mappings: {properties}}}. Index names are
	// unknown, so probe every top-level object.
	for _, v := range raw {
		if wrapper, ok := asMap(v); ok {
			if mappings, ok := asMap(wrapper["mappings"]); ok {
				if props, ok := asMap(mappings["properties"]); ok {
					return props, nil
				}
			}
		}
	}

	// Fallback: bounded-depth search for any "properties" key.
	if props := searchProperties(raw, 3); props != nil {
		return props, nil
	}

	return nil, fmt.Errorf("no properties map found in mapping tree")
}

// searchProperties looks for a "properties" object up to depth levels
// below the current node.
func searchProperties(node map[string]any, depth int) map[string]any {
	if depth < 0 {
		return nil
	}
	if props, ok := asMap(node["properties"]); ok {
		return props
	}
	// Probe keys in sorted order so repeated calls resolve identically.
	keys := make([]string, 0, len(node))
	for k := range node {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if child, ok := asMap(node[k]); ok {
			if props := searchProperties(child, depth-1); props != nil {
				return props
			}
		}
	}
	return nil
}

// walkProperties registers every field under props, prefixed by parent.
// Descends into object/nested sub-properties and multi-field "fields"
// maps. Returns the flat descriptor list in traversal order plus the
// direct children of this level.
func walkProperties(idx *Index, props map[string]any, parent string, multi bool, errs *[]error) (flat, direct []Field) {
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		def, ok := asMap(props[name])
		if !ok {
			*errs = append(*errs, fmt.Errorf("field %q: definition is not an object", join(parent, name)))
			continue
		}

		path := join(parent, name)
		typ := TypeObject
		if t, ok := def["type"].(string); ok && t != "" {
			typ = FieldType(t)
		}

		field := Field{
			Name:       path,
			Type:       typ,
			MultiField: multi,
			Analyzers:  analyzerNames(def),
		}
		field.Searchable = searchableType(typ)
		field.Aggregatable = aggregatableType(typ)

		// Reserve the path before recursing so parents precede their
		// descendants in traversal order; the full descriptor is stored
		// once children are known.
		if _, dup := idx.fields[path]; dup {
			*errs = append(*errs, fmt.Errorf("field %q: duplicate path in mapping", path))
			continue
		}
		idx.fields[path] = field
		idx.paths = append(idx.paths, path)

		// Multi-field variants (e.g. a text field's keyword sibling).
		var subFlat, children []Field
		if sub, ok := asMap(def["fields"]); ok {
			subFlat, children = walkProperties(idx, sub, path, true, errs)
		}

		if typ == TypeText {
			// Analyzed text aggregates only when no keyword variant is
			// indexed to take its place.
			field.Aggregatable = !hasKeywordVariant(def)
		}

		// Object/nested sub-properties.
		if sub, ok := asMap(def["properties"]); ok {
			propFlat, propChildren := walkProperties(idx, sub, path, false, errs)
			subFlat = append(subFlat, propFlat...)
			children = append(children, propChildren...)
		}
		field.Children = children

		idx.fields[path] = field
		flat = append(flat, field)
		flat = append(flat, subFlat...)
		direct = append(direct, field)
	}
	return flat, direct
}

// hasKeywordVariant reports whether a field definition declares a
// multi-field entry named "keyword" of type keyword.
func hasKeywordVariant(def map[string]any) bool {
	sub, ok := asMap(def["fields"])
	if !ok {
		return false
	}
	kw, ok := asMap(sub["keyword"])
	if !ok {
		return false
	}
	t, _ := kw["type"].(string)
	return FieldType(t) == TypeKeyword
}

func analyzerNames(def map[string]any) []string {
	var names []string
	if a, ok := def["analyzer"].(string); ok && a != "" {
		names = append(names, a)
	}
	if a, ok := def["search_analyzer"].(string); ok && a != "" {
		names = append(names, a)
	}
	return names
}

func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok && m != nil
}

func join(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

// Get returns the descriptor for a full field path.
func (idx *Index) Get(path string) (Field, bool) {
	f, ok := idx.fields[path]
	return f, ok
}

// Has reports whether a field path resolves in the index.
func (idx *Index) Has(path string) bool {
	_, ok := idx.fields[path]
	return ok
}

// Len returns the number of registered field paths.
func (idx *Index) Len() int { return len(idx.fields) }

// Paths returns every registered field path in traversal order.
func (idx *Index) Paths() []string {
	out := make([]string, len(idx.paths))
	copy(out, idx.paths)
	return out
}

// KeywordVariant returns the path of an indexed keyword variant of the
// given field ("<path>.keyword"), or "" when none exists.
func (idx *Index) KeywordVariant(path string) string {
	variant := path + ".keyword"
	if f, ok := idx.fields[variant]; ok && f.Type == TypeKeyword {
		return variant
	}
	return ""
}

// FirstAggregatable returns the first aggregatable field in traversal
// order, or false when the index has none.
func (idx *Index) FirstAggregatable() (Field, bool) {
	for _, p := range idx.paths {
		if f := idx.fields[p]; f.Aggregatable && f.Type != TypeObject && f.Type != TypeNested {
			return f, true
		}
	}
	return Field{}, false
}

// FirstText returns the first plain (non multi-field) text field in
// traversal order, or false when the index has none.
func (idx *Index) FirstText() (Field, bool) {
	for _, p := range idx.paths {
		if f := idx.fields[p]; f.Type == TypeText && !f.MultiField {
			return f, true
		}
	}
	return Field{}, false
}

// FirstDate returns the first date-family field in traversal order.
func (idx *Index) FirstDate() (Field, bool) {
	for _, p := range idx.paths {
		if f := idx.fields[p]; f.Type.IsDate() {
			return f, true
		}
	}
	return Field{}, false
}
