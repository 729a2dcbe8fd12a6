package rank

import (
	"sort"

	"github.com/querysmith/querysmith/internal/esdsl"
	"github.com/querysmith/querysmith/internal/schema"
)

// census is a structural summary of one query document, collected once
// per candidate and consumed by every dimension scorer.
type census struct {
	clauseCount int
	maxDepth    int

	mustCount    int
	filterCount  int
	shouldCount  int
	mustNotCount int

	exactClauses     int // term/terms/range/exists on a named field
	fuzzyClauses     int
	matchClauses     int
	multiMatchFanout int // total fields targeted by multi_match clauses
	leadingWildcards int
	matchAll         bool
	wildcardAll      bool

	fields        []string // unique referenced field paths, sorted
	unknownFields int

	aggKinds []string // unique aggregation kinds, sorted
	aggCount int

	hasSort  bool
	size     int
	hasAggs  bool
	lowNotes int // provenance notes below full confidence
}

// takeCensus walks the document and summarizes its structure against
// the index.
func takeCensus(doc *esdsl.Document, idx *schema.Index) census {
	c := census{}
	fieldSet := map[string]struct{}{}
	kindSet := map[string]struct{}{}

	if doc.Query != nil {
		c.walkClause(doc.Query, 0, fieldSet)
	}
	var walkAgg func(a esdsl.Agg)
	walkAgg = func(a esdsl.Agg) {
		c.aggCount++
		kindSet[string(a.Kind)] = struct{}{}
		if a.Field != "" {
			fieldSet[a.Field] = struct{}{}
		}
		for _, sub := range a.Subs {
			walkAgg(sub)
		}
	}
	for _, a := range doc.Aggs {
		walkAgg(a)
	}

	c.hasAggs = len(doc.Aggs) > 0
	c.hasSort = len(doc.Sort) > 0
	for _, s := range doc.Sort {
		fieldSet[s.Field] = struct{}{}
	}
	if doc.Size != nil {
		c.size = *doc.Size
	}
	c.lowNotes = len(doc.Notes)

	for f := range fieldSet {
		c.fields = append(c.fields, f)
		if f == "*" || f == "_id" || f == "_score" || f == "_doc" {
			continue
		}
		if idx != nil && idx.Len() > 0 && !idx.Has(stripBoost(f)) {
			c.unknownFields++
		}
	}
	sort.Strings(c.fields)

	for k := range kindSet {
		c.aggKinds = append(c.aggKinds, k)
	}
	sort.Strings(c.aggKinds)
	return c
}

func (c *census) walkClause(cl esdsl.Clause, depth int, fields map[string]struct{}) {
	if depth > c.maxDepth {
		c.maxDepth = depth
	}
	switch q := cl.(type) {
	case esdsl.MatchAll:
		c.clauseCount++
		c.matchAll = true
	case esdsl.Term:
		c.clauseCount++
		c.exactClauses++
		fields[q.Field] = struct{}{}
	case esdsl.Terms:
		c.clauseCount++
		c.exactClauses++
		fields[q.Field] = struct{}{}
	case esdsl.Range:
		c.clauseCount++
		c.exactClauses++
		fields[q.Field] = struct{}{}
	case esdsl.Exists:
		c.clauseCount++
		c.exactClauses++
		fields[q.Field] = struct{}{}
	case esdsl.Match:
		c.clauseCount++
		c.matchClauses++
		if q.Fuzziness != "" {
			c.fuzzyClauses++
		}
		fields[q.Field] = struct{}{}
	case esdsl.MatchPhrase:
		c.clauseCount++
		c.matchClauses++
		fields[q.Field] = struct{}{}
	case esdsl.MultiMatch:
		c.clauseCount++
		c.matchClauses++
		c.multiMatchFanout += len(q.Fields)
		if q.Fuzziness != "" {
			c.fuzzyClauses++
		}
		for _, f := range q.Fields {
			if stripBoost(f) == "*" {
				c.wildcardAll = true
				continue
			}
			fields[stripBoost(f)] = struct{}{}
		}
	case esdsl.Wildcard:
		c.clauseCount++
		fields[q.Field] = struct{}{}
		if len(q.Pattern) > 0 && (q.Pattern[0] == '*' || q.Pattern[0] == '?') {
			c.leadingWildcards++
		}
	case esdsl.Regexp:
		c.clauseCount++
		fields[q.Field] = struct{}{}
		if len(q.Pattern) > 1 && q.Pattern[0] == '.' && (q.Pattern[1] == '*' || q.Pattern[1] == '+') {
			c.leadingWildcards++
		}
	case esdsl.Bool:
		c.mustCount += len(q.Must)
		c.filterCount += len(q.Filter)
		c.shouldCount += len(q.Should)
		c.mustNotCount += len(q.MustNot)
		for _, sub := range q.Must {
			c.walkClause(sub, depth+1, fields)
		}
		for _, sub := range q.Filter {
			c.walkClause(sub, depth+1, fields)
		}
		for _, sub := range q.Should {
			c.walkClause(sub, depth+1, fields)
		}
		for _, sub := range q.MustNot {
			c.walkClause(sub, depth+1, fields)
		}
	}
}

func stripBoost(field string) string {
	for i := 0; i < len(field); i++ {
		if field[i] == '^' {
			return field[:i]
		}
	}
	return field
}
