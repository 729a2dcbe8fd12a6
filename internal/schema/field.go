// Package schema turns a raw index mapping tree into a queryable field
// index with derived semantic flags.
//
// Build is a pure function: malformed or empty mapping trees produce an
// empty index plus a non-fatal error list, never a panic. The resulting
// Index is immutable; a fresh analysis of the same index pattern
// supersedes it rather than mutating it.
package schema

// FieldType is the closed set of mapping field types the engine
// understands. Unknown mapping types are carried through verbatim so
// the validator can still report them by name.
type FieldType string

const (
	TypeText      FieldType = "text"
	TypeKeyword   FieldType = "keyword"
	TypeLong      FieldType = "long"
	TypeInteger   FieldType = "integer"
	TypeShort     FieldType = "short"
	TypeByte      FieldType = "byte"
	TypeDouble    FieldType = "double"
	TypeFloat     FieldType = "float"
	TypeHalfFloat FieldType = "half_float"
	TypeDate      FieldType = "date"
	TypeDateNanos FieldType = "date_nanos"
	TypeBoolean   FieldType = "boolean"
	TypeIP        FieldType = "ip"
	TypeGeoPoint  FieldType = "geo_point"
	TypeGeoShape  FieldType = "geo_shape"
	TypeNested    FieldType = "nested"
	TypeObject    FieldType = "object"
)

// IsNumeric reports whether t is one of the numeric mapping types.
func (t FieldType) IsNumeric() bool {
	switch t {
	case TypeLong, TypeInteger, TypeShort, TypeByte, TypeDouble, TypeFloat, TypeHalfFloat:
		return true
	}
	return false
}

// IsDate reports whether t is a date-family type.
func (t FieldType) IsDate() bool {
	return t == TypeDate || t == TypeDateNanos
}

// Field describes one addressable field path in the index mapping.
// Immutable after Build returns.
type Field struct {
	// Name is the full dot-delimited path, e.g. "user.name.keyword".
	Name string
	Type FieldType

	Searchable   bool
	Aggregatable bool

	// Analyzers lists any analyzer names declared on the field.
	Analyzers []string

	// Children holds descriptors for object/nested sub-properties and
	// multi-field variants. Each child is also registered in the flat
	// index under its own full path.
	Children []Field

	// MultiField is true for multi-field variants registered under a
	// parent field's "fields" map (e.g. the keyword sibling of a text
	// field).
	MultiField bool
}

// searchableType reports whether a field of this type participates in
// query clauses.
func searchableType(t FieldType) bool {
	if t.IsNumeric() || t.IsDate() {
		return true
	}
	switch t {
	case TypeText, TypeKeyword, TypeBoolean, TypeIP:
		return true
	}
	return false
}

// aggregatableType reports whether a field of this type can back an
// aggregation. Analyzed text is handled separately: it aggregates only
// when no keyword multi-field variant exists to take its place.
func aggregatableType(t FieldType) bool {
	if t.IsNumeric() || t.IsDate() {
		return true
	}
	switch t {
	case TypeKeyword, TypeBoolean, TypeIP:
		return true
	}
	return false
}
