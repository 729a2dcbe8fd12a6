// Package validate checks a query document against a field index for
// structural and type correctness and flags performance antipatterns.
//
// Findings are data, never errors thrown past the component boundary.
// Validate does not mutate its inputs; a document is valid exactly when
// no finding has severity error.
package validate

import (
	"fmt"
	"sort"

	"github.com/querysmith/querysmith/internal/esdsl"
	"github.com/querysmith/querysmith/internal/schema"
)

// Severity grades one finding.
type Severity string

const (
	SeverityError      Severity = "error"
	SeverityWarning    Severity = "warning"
	SeveritySuggestion Severity = "suggestion"
)

// Finding is one validator-reported issue.
type Finding struct {
	Severity Severity
	Message  string
	// Field is the offending field path, when the finding concerns one.
	Field string
}

// Result is the validator's output for one document.
type Result struct {
	// IsValid is true exactly when Findings contains no error.
	IsValid  bool
	Findings []Finding
}

// Errors returns only the error-severity findings.
func (r Result) Errors() []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			out = append(out, f)
		}
	}
	return out
}

// maxBoolDepth is the boolean nesting depth beyond which a complexity
// warning is raised.
const maxBoolDepth = 3

// largeSizeThreshold is the result size beyond which an unsorted,
// unpaginated request draws a warning.
const largeSizeThreshold = 1000

// reservedFields are pseudo-fields that never need to resolve in the
// index.
var reservedFields = map[string]struct{}{
	"_id":    {},
	"_score": {},
	"_doc":   {},
	"*":      {},
}

// Validate walks the query document and reports findings against the
// field index.
func Validate(doc *esdsl.Document, idx *schema.Index) Result {
	v := &validator{idx: idx}

	if doc == nil {
		v.add(SeverityError, "", "query document is nil")
		return v.result()
	}
	if doc.Query == nil && len(doc.Aggs) == 0 {
		v.add(SeverityError, "", "query document has neither a query nor aggregations")
		return v.result()
	}

	if doc.Query != nil {
		v.walkClause(doc.Query, 0)
	}
	// Aggregations are visited in name order so findings are stable
	// across calls.
	aggNames := make([]string, 0, len(doc.Aggs))
	for name := range doc.Aggs {
		aggNames = append(aggNames, name)
	}
	sort.Strings(aggNames)
	for _, name := range aggNames {
		v.checkAgg(name, doc.Aggs[name])
	}
	for _, s := range doc.Sort {
		v.checkSort(s)
	}
	v.checkResultControls(doc)

	return v.result()
}

// validator accumulates findings during traversal.
type validator struct {
	idx      *schema.Index
	findings []Finding
}

func (v *validator) add(sev Severity, field, format string, args ...any) {
	v.findings = append(v.findings, Finding{
		Severity: sev,
		Message:  fmt.Sprintf(format, args...),
		Field:    field,
	})
}

func (v *validator) result() Result {
	valid := true
	for _, f := range v.findings {
		if f.Severity == SeverityError {
			valid = false
			break
		}
	}
	return Result{IsValid: valid, Findings: v.findings}
}

// walkClause dispatches on the clause kind and recurses into boolean
// compositions. depth counts boolean nesting levels.
func (v *validator) walkClause(c esdsl.Clause, depth int) {
	switch cl := c.(type) {
	case esdsl.MatchAll:
		// Always valid.
	case esdsl.Term:
		v.checkExact("term", cl.Field)
	case esdsl.Terms:
		v.checkExact("terms", cl.Field)
		if len(cl.Values) == 0 {
			v.add(SeverityWarning, cl.Field, "terms clause on %q has no values and matches nothing", cl.Field)
		}
	case esdsl.Match:
		v.checkFullText("match", cl.Field)
	case esdsl.MultiMatch:
		for _, f := range cl.Fields {
			v.checkFullText("multi_match", stripBoost(f))
		}
	case esdsl.MatchPhrase:
		v.checkFullText("match_phrase", cl.Field)
	case esdsl.Range:
		v.checkRange(cl)
	case esdsl.Exists:
		v.checkFieldExists("exists", cl.Field)
	case esdsl.Wildcard:
		v.checkFieldExists("wildcard", cl.Field)
		v.checkPattern("wildcard", cl.Field, cl.Pattern)
	case esdsl.Regexp:
		v.checkFieldExists("regexp", cl.Field)
		v.checkPattern("regexp", cl.Field, cl.Pattern)
	case esdsl.Bool:
		v.checkBool(cl, depth)
	}
}

func (v *validator) checkBool(b esdsl.Bool, depth int) {
	if depth+1 > maxBoolDepth {
		v.add(SeverityWarning, "", "boolean query nested %d levels deep, consider flattening", depth+1)
	}
	for _, c := range b.Must {
		v.walkClause(c, depth+1)
	}
	for _, c := range b.Filter {
		v.walkClause(c, depth+1)
	}
	for _, c := range b.Should {
		v.walkClause(c, depth+1)
	}
	for _, c := range b.MustNot {
		v.walkClause(c, depth+1)
	}
	if len(b.Should) > 0 && len(b.Must) == 0 && len(b.Filter) == 0 && b.MinimumShouldMatch == nil {
		v.add(SeverityWarning, "", "should-only boolean query without minimum_should_match matches on any single clause")
	}
}

// checkFieldExists verifies a referenced field resolves in the index.
// Reserved pseudo-fields are exempt. Returns the descriptor when
// resolution succeeded.
func (v *validator) checkFieldExists(clause, field string) (schema.Field, bool) {
	if field == "" {
		v.add(SeverityError, "", "%s clause is missing a field", clause)
		return schema.Field{}, false
	}
	if _, reserved := reservedFields[field]; reserved {
		return schema.Field{}, false
	}
	if v.idx == nil || v.idx.Len() == 0 {
		// No schema available: field existence cannot be judged.
		return schema.Field{}, false
	}
	f, ok := v.idx.Get(field)
	if !ok {
		v.add(SeverityError, field, "%s clause references unknown field %q", clause, field)
		return schema.Field{}, false
	}
	return f, true
}

// checkExact validates term/terms usage: exact matching makes no sense
// on analyzed text or on object containers.
func (v *validator) checkExact(clause, field string) {
	f, ok := v.checkFieldExists(clause, field)
	if !ok {
		return
	}
	switch {
	case f.Type == schema.TypeObject || f.Type == schema.TypeNested:
		v.add(SeverityError, field, "%s clause on %s field %q, exact matching needs a scalar field", clause, f.Type, field)
	case f.Type == schema.TypeText:
		if variant := v.idx.KeywordVariant(field); variant != "" {
			v.add(SeverityWarning, field, "%s clause on analyzed text field %q, use %q for exact matching", clause, field, variant)
		} else {
			v.add(SeverityWarning, field, "%s clause on analyzed text field %q matches analyzed tokens, not the original value", clause, field)
		}
	}
}

// checkFullText validates match-family usage.
func (v *validator) checkFullText(clause, field string) {
	f, ok := v.checkFieldExists(clause, field)
	if !ok {
		return
	}
	if f.Type == schema.TypeObject || f.Type == schema.TypeNested {
		v.add(SeverityError, field, "%s clause on %s field %q, full-text matching needs a scalar field", clause, f.Type, field)
	}
}

// checkRange validates a range clause: the field type must support
// ordering, and bound values must suit the field type.
func (v *validator) checkRange(r esdsl.Range) {
	f, ok := v.checkFieldExists("range", r.Field)
	if !ok {
		return
	}
	if !f.Type.IsDate() && !f.Type.IsNumeric() && f.Type != schema.TypeIP {
		v.add(SeverityError, r.Field, "range clause on %s field %q, ranges need a date, numeric, or ip field", f.Type, r.Field)
		return
	}
	for _, bound := range []any{r.GTE, r.GT, r.LTE, r.LT} {
		if bound == nil {
			continue
		}
		_, numeric := asNumber(bound)
		if f.Type.IsDate() && numeric {
			v.add(SeveritySuggestion, r.Field, "numeric range bound on date field %q, prefer a date expression or set format", r.Field)
		}
		if f.Type.IsNumeric() && !numeric {
			v.add(SeverityError, r.Field, "non-numeric range bound %v on numeric field %q", bound, r.Field)
		}
	}
}

// checkPattern warns on leading wildcards, which force a full term scan.
func (v *validator) checkPattern(clause, field, pattern string) {
	if pattern == "" {
		return
	}
	switch pattern[0] {
	case '*', '?':
		v.add(SeverityWarning, field, "%s pattern %q on %q has a leading wildcard, this scans every term", clause, pattern, field)
	case '.':
		if clause == "regexp" && len(pattern) > 1 && (pattern[1] == '*' || pattern[1] == '+') {
			v.add(SeverityWarning, field, "regexp pattern %q on %q starts with an unanchored scan", pattern, field)
		}
	}
}

// checkSort validates sort entries. Sorting on analyzed text needs a
// non-analyzed variant.
func (v *validator) checkSort(s esdsl.Sort) {
	f, ok := v.checkFieldExists("sort", s.Field)
	if !ok {
		return
	}
	if f.Type != schema.TypeText {
		return
	}
	if variant := v.idx.KeywordVariant(s.Field); variant != "" {
		v.add(SeveritySuggestion, s.Field, "sorting on analyzed text field %q, prefer %q", s.Field, variant)
	} else {
		v.add(SeverityError, s.Field, "cannot sort on analyzed text field %q without a keyword variant", s.Field)
	}
}

// checkResultControls flags oversized, unsorted result requests.
func (v *validator) checkResultControls(doc *esdsl.Document) {
	if doc.Size == nil {
		return
	}
	if *doc.Size > largeSizeThreshold && len(doc.Sort) == 0 && doc.From == 0 {
		v.add(SeverityWarning, "", "requesting %d results without sort or pagination", *doc.Size)
	}
}

// stripBoost removes a caret boost suffix from a multi_match field
// entry ("title^2" -> "title").
func stripBoost(field string) string {
	for i := 0; i < len(field); i++ {
		if field[i] == '^' {
			return field[:i]
		}
	}
	return field
}

// asNumber reports whether a bound value is numeric.
func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	return 0, false
}
