package esdsl

// Clause represents one node of an Elasticsearch query tree.
//
// This is a sealed interface - only types in this package implement it.
// Clause types:
//   - MatchAll: the canonical empty query
//   - Term, Terms: exact matching on non-analyzed values
//   - Match, MultiMatch, MatchPhrase: full-text matching
//   - Range: bounded comparisons on date/numeric/ip fields
//   - Exists: field presence
//   - Wildcard, Regexp: pattern matching
//   - Bool: boolean composition (must/should/must_not/filter)
type Clause interface {
	clauseNode() // Marker method - seals interface to this package
}

// MatchAll matches every document. Synthesis falls back to it when an
// intent resolves to neither a query nor an aggregation.
type MatchAll struct{}

func (MatchAll) clauseNode() {}

// Term matches documents whose field holds exactly the given value.
// Only meaningful on non-analyzed (keyword, numeric, date, ...) fields;
// the validator flags term clauses on analyzed text.
type Term struct {
	Field string
	Value any
}

func (Term) clauseNode() {}

// Terms matches documents whose field holds any of the given values.
type Terms struct {
	Field  string
	Values []any
}

func (Terms) clauseNode() {}

// Match runs the query text through the field's analyzer and matches
// on the resulting tokens.
type Match struct {
	Field     string
	Query     string
	Fuzziness string // "" disables fuzzy matching, "AUTO" enables it
	Operator  string // "and" | "or", empty means server default
}

func (Match) clauseNode() {}

// MultiMatch matches the query text against several fields at once.
// Fields may carry caret boosts ("title^2").
type MultiMatch struct {
	Fields    []string
	Query     string
	Fuzziness string
	Type      string // "best_fields" | "most_fields" | "phrase", empty means default
}

func (MultiMatch) clauseNode() {}

// MatchPhrase matches the query text as an ordered phrase.
type MatchPhrase struct {
	Field string
	Query string
}

func (MatchPhrase) clauseNode() {}

// Range matches documents whose field value falls inside the given bounds.
// Unset bounds (nil) are omitted from the serialized clause.
type Range struct {
	Field  string
	GTE    any
	GT     any
	LTE    any
	LT     any
	Format string // optional date format hint
}

func (Range) clauseNode() {}

// Exists matches documents that have any value for the field.
type Exists struct {
	Field string
}

func (Exists) clauseNode() {}

// Wildcard matches terms against a pattern with * and ? metacharacters.
// Leading wildcards are legal but expensive; the validator warns on them.
type Wildcard struct {
	Field   string
	Pattern string
}

func (Wildcard) clauseNode() {}

// Regexp matches terms against a regular expression.
type Regexp struct {
	Field   string
	Pattern string
}

func (Regexp) clauseNode() {}

// Bool composes sub-clauses with boolean semantics.
//
// Occurrence positions:
//   - Must: clause must match, contributes to score
//   - Filter: clause must match, no scoring, cacheable
//   - Should: optional match, governed by MinimumShouldMatch
//   - MustNot: clause must not match
//
// An empty Bool serializes to nothing; callers should use MatchAll instead.
type Bool struct {
	Must    []Clause
	Should  []Clause
	MustNot []Clause
	Filter  []Clause

	// MinimumShouldMatch applies only when Should is non-empty. Either an
	// int count or a percentage string ("75%"). nil means server default.
	MinimumShouldMatch any
}

func (Bool) clauseNode() {}

// IsZero reports whether the boolean clause has no sub-clauses in any
// position.
func (b Bool) IsZero() bool {
	return len(b.Must) == 0 && len(b.Should) == 0 && len(b.MustNot) == 0 && len(b.Filter) == 0
}
