package synth

import (
	"fmt"

	"github.com/querysmith/querysmith/internal/esdsl"
	"github.com/querysmith/querysmith/internal/intent"
	"github.com/querysmith/querysmith/internal/schema"
)

// WildcardAll is the last-resort target when no field can be resolved
// for an entity. The validator treats it as a reserved pseudo-field.
const WildcardAll = "*"

// resolveField decides which field an entity targets.
//
// An explicit target field always wins, even when the index cannot
// resolve it - missing index information degrades quality and is the
// validator's concern, not the synthesizer's. Without an explicit
// target the entity name itself is tried, then the configured
// conventional names, then the schema's first plain text field, then
// the wildcard-all fallback. Every guess is recorded as a Note so the
// ranker can penalize low-confidence routing.
func resolveField(e intent.Entity, idx *schema.Index, conventions []string) (string, *esdsl.Note) {
	if e.Field != "" {
		return e.Field, nil
	}
	if e.Name != "" && idx.Has(e.Name) {
		return e.Name, nil
	}
	for _, name := range conventions {
		if f, ok := idx.Get(name); ok && f.Searchable {
			return name, &esdsl.Note{
				Message:    fmt.Sprintf("entity %q routed to conventional field %q", e.Name, name),
				Field:      name,
				Confidence: 0.5,
			}
		}
	}
	if f, ok := idx.FirstText(); ok {
		return f.Name, &esdsl.Note{
			Message:    fmt.Sprintf("entity %q routed to first text field %q", e.Name, f.Name),
			Field:      f.Name,
			Confidence: 0.4,
		}
	}
	return WildcardAll, &esdsl.Note{
		Message:    fmt.Sprintf("entity %q has no resolvable field, matching all fields", e.Name),
		Field:      WildcardAll,
		Confidence: 0.2,
	}
}

// preferKeyword swaps an analyzed text field for its indexed keyword
// variant, when one exists. Exact-match clauses against analyzed text
// compare analyzed tokens, which is rarely what a filter means.
func preferKeyword(idx *schema.Index, field string) string {
	f, ok := idx.Get(field)
	if !ok || f.Type != schema.TypeText {
		return field
	}
	if variant := idx.KeywordVariant(field); variant != "" {
		return variant
	}
	return field
}

// isTextual reports whether the resolved field is analyzed text (or
// unresolved, which full-text clauses tolerate better than exact ones).
func isTextual(idx *schema.Index, field string) bool {
	f, ok := idx.Get(field)
	if !ok {
		return field == WildcardAll
	}
	return f.Type == schema.TypeText
}
