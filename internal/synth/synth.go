// Package synth compiles a structured intent into a query document, one
// document per perspective.
//
// Synthesize is a pure function of (intent, perspective, index):
// identical inputs always produce identical documents. Missing schema
// information never fails synthesis; it degrades field resolution,
// leaves a provenance note, and lets the validator report the fallout.
package synth

import (
	"fmt"

	"github.com/querysmith/querysmith/internal/esdsl"
	"github.com/querysmith/querysmith/internal/intent"
	"github.com/querysmith/querysmith/internal/perspective"
	"github.com/querysmith/querysmith/internal/schema"
)

// builder synthesizes one perspective's document shape.
type builder func(*intent.Intent, perspective.Perspective, *schema.Index) *esdsl.Document

// builders is the exhaustive dispatch table over perspective kinds.
// ParseKind already folds unknown identifiers into PreciseMatch, so
// lookup never misses.
var builders = map[perspective.Kind]builder{
	perspective.PreciseMatch:        buildPreciseMatch,
	perspective.EnhancedRecall:      buildEnhancedRecall,
	perspective.StatisticalAnalysis: buildStatistical,
	perspective.TimeSeries:          buildTimeSeries,
}

// Synthesize compiles the intent into a query document using the given
// perspective's strategy. The intent and index are read-only; the
// returned document is freshly allocated and immutable by convention.
func Synthesize(in *intent.Intent, p perspective.Perspective, idx *schema.Index) *esdsl.Document {
	build, ok := builders[p.Kind]
	if !ok {
		build = buildPreciseMatch
	}
	doc := build(in, p, idx)

	// Invariant: a document always carries a query or an aggregation.
	if doc.Query == nil && len(doc.Aggs) == 0 {
		doc.Query = esdsl.MatchAll{}
	}
	return doc
}

// buildPreciseMatch turns every entity into a term/range/exists clause.
// Filter-style constraints land in the non-scoring filter position;
// keyword entities land in must as exact terms on the non-analyzed
// variant of their field. Fuzziness is never applied.
func buildPreciseMatch(in *intent.Intent, p perspective.Perspective, idx *schema.Index) *esdsl.Document {
	doc := &esdsl.Document{}
	var b esdsl.Bool

	for _, e := range in.Entities {
		field, note := resolveField(e, idx, p.Conventions)
		if note != nil {
			doc.Notes = append(doc.Notes, *note)
		}
		switch e.Type {
		case intent.EntityRange:
			b.Filter = append(b.Filter, rangeClause(field, e))
		case intent.EntityExists:
			b.Filter = append(b.Filter, esdsl.Exists{Field: field})
		case intent.EntityKeyword:
			if field == WildcardAll {
				// A term on "*" matches nothing; unresolved entities fall
				// back to full-text matching.
				b.Must = append(b.Must, matchClause(field, fmt.Sprintf("%v", e.Value), p, idx))
			} else {
				b.Must = append(b.Must, esdsl.Term{Field: preferKeyword(idx, field), Value: e.Value})
			}
		default: // filter
			if field == WildcardAll {
				b.Must = append(b.Must, matchClause(field, fmt.Sprintf("%v", e.Value), p, idx))
			} else {
				b.Filter = append(b.Filter, esdsl.Term{Field: preferKeyword(idx, field), Value: e.Value})
			}
		}
	}
	b.Filter = append(b.Filter, dateClauses(in, p)...)

	if !b.IsZero() {
		doc.Query = b
	}
	doc.Sort = sortSpec(in)
	doc.Size = resultSize(in, p)
	return doc
}

// buildEnhancedRecall favors fuzzy full-text matching. Text-bearing
// entities become match/multi_match clauses in the should position;
// hard constraints stay in filter. A minimum-should-match threshold is
// applied only when no must/filter clauses anchor the query. With no
// entities at all, key terms extracted from the raw query text drive a
// multi_match fallback.
func buildEnhancedRecall(in *intent.Intent, p perspective.Perspective, idx *schema.Index) *esdsl.Document {
	doc := &esdsl.Document{}
	var b esdsl.Bool

	for _, e := range in.Entities {
		field, note := resolveField(e, idx, p.Conventions)
		if note != nil {
			doc.Notes = append(doc.Notes, *note)
		}
		switch e.Type {
		case intent.EntityRange:
			b.Filter = append(b.Filter, rangeClause(field, e))
		case intent.EntityExists:
			b.Filter = append(b.Filter, esdsl.Exists{Field: field})
		default: // filter, keyword
			text := fmt.Sprintf("%v", e.Value)
			if isTextual(idx, field) || e.Type == intent.EntityKeyword {
				b.Should = append(b.Should, matchClause(field, text, p, idx))
			} else {
				b.Filter = append(b.Filter, esdsl.Term{Field: field, Value: e.Value})
			}
		}
	}
	b.Filter = append(b.Filter, dateClauses(in, p)...)

	// Free-text fallback when the extractor produced no entities.
	if len(b.Should) == 0 && len(b.Must) == 0 && len(in.Entities) == 0 && in.RawQuery != "" {
		if terms := keyTerms(in.RawQuery); len(terms) > 0 {
			fields, note := recallFields(idx, p)
			if note != nil {
				doc.Notes = append(doc.Notes, *note)
			}
			b.Should = append(b.Should, esdsl.MultiMatch{
				Fields:    fields,
				Query:     joinTerms(terms),
				Fuzziness: p.Fuzziness,
			})
		}
	}

	if len(b.Should) > 0 && len(b.Must) == 0 && len(b.Filter) == 0 && p.MinimumShouldMatch != "" {
		b.MinimumShouldMatch = p.MinimumShouldMatch
	}

	if !b.IsZero() {
		doc.Query = b
	}
	doc.Sort = sortSpec(in)
	doc.Size = resultSize(in, p)
	return doc
}

// buildStatistical is aggregation-centric: result size zero, hard
// constraints in filter, one aggregation per explicit request or a
// default terms aggregation when none are given.
func buildStatistical(in *intent.Intent, p perspective.Perspective, idx *schema.Index) *esdsl.Document {
	doc := &esdsl.Document{}
	b := hardFilters(in, p, idx, doc)

	if !b.IsZero() {
		doc.Query = b
	}

	doc.Aggs = map[string]esdsl.Agg{}
	if len(in.Aggregations) > 0 {
		for i, req := range in.Aggregations {
			name, agg := aggFromRequest(req, i, idx)
			doc.Aggs[name] = agg
		}
	} else {
		name, agg, note := defaultTermsAgg(in, p, idx)
		doc.Aggs[name] = agg
		if note != nil {
			doc.Notes = append(doc.Notes, *note)
		}
	}

	doc.Size = esdsl.SizeOf(0)
	return doc
}

// buildTimeSeries emits exactly one date-histogram aggregation keyed on
// the intent's time field, bucketed by a fixed interval table. Metric
// requests become sub-aggregations; a terms request nests a secondary
// grouping under the time buckets; without any request the buckets
// carry a document count.
func buildTimeSeries(in *intent.Intent, p perspective.Perspective, idx *schema.Index) *esdsl.Document {
	doc := &esdsl.Document{}
	b := hardFilters(in, p, idx, doc)

	timeField := p.TimeField
	if in.Timeframe != nil && in.Timeframe.Field != "" {
		timeField = in.Timeframe.Field
	}

	histogram := esdsl.Agg{
		Kind:     esdsl.AggDateHistogram,
		Field:    timeField,
		Interval: histogramInterval(in.Timeframe),
	}

	subs := map[string]esdsl.Agg{}
	for i, req := range in.Aggregations {
		kind := esdsl.AggKind(req.Type)
		switch {
		case kind.IsMetric():
			name, agg := aggFromRequest(req, i, idx)
			subs[name] = agg
		case kind == esdsl.AggTerms:
			name, agg := aggFromRequest(req, i, idx)
			subs[name] = agg
		}
		// Other bucket kinds are ignored here: the time axis is the
		// histogram itself.
	}
	if len(subs) == 0 {
		// No metric requested: the series still needs a value, count
		// documents per bucket.
		subs["doc_count"] = esdsl.Agg{Kind: esdsl.AggValueCount, Field: "_id"}
	}
	histogram.Subs = subs

	if !b.IsZero() {
		doc.Query = b
	}
	doc.Aggs = map[string]esdsl.Agg{"over_time": histogram}
	doc.Size = esdsl.SizeOf(0)
	return doc
}

// hardFilters translates every entity into a filter-position clause,
// plus the intent's date constraints. Used by the aggregation-centric
// strategies, where nothing needs to score. Resolution notes are
// appended to doc.
func hardFilters(in *intent.Intent, p perspective.Perspective, idx *schema.Index, doc *esdsl.Document) esdsl.Bool {
	var b esdsl.Bool
	for _, e := range in.Entities {
		field, note := resolveField(e, idx, p.Conventions)
		if note != nil {
			doc.Notes = append(doc.Notes, *note)
		}
		switch e.Type {
		case intent.EntityRange:
			b.Filter = append(b.Filter, rangeClause(field, e))
		case intent.EntityExists:
			b.Filter = append(b.Filter, esdsl.Exists{Field: field})
		default:
			if field == WildcardAll {
				b.Filter = append(b.Filter, matchClause(field, fmt.Sprintf("%v", e.Value), p, idx))
			} else {
				b.Filter = append(b.Filter, esdsl.Term{Field: preferKeyword(idx, field), Value: e.Value})
			}
		}
	}
	b.Filter = append(b.Filter, dateClauses(in, p)...)
	return b
}

// dateClauses translates the intent's explicit date ranges and
// timeframe into filter-position range clauses.
func dateClauses(in *intent.Intent, p perspective.Perspective) []esdsl.Clause {
	var out []esdsl.Clause
	for _, dr := range in.DateRanges {
		r := esdsl.Range{Field: dr.Field}
		if dr.GTE != "" {
			r.GTE = dr.GTE
		}
		if dr.LTE != "" {
			r.LTE = dr.LTE
		}
		out = append(out, r)
	}
	if r, ok := timeframeRange(in.Timeframe, p.TimeField); ok {
		out = append(out, r)
	}
	return out
}

// rangeClause builds a range clause from a range-type entity.
func rangeClause(field string, e intent.Entity) esdsl.Clause {
	r := esdsl.Range{Field: field}
	switch e.Operator {
	case "gt":
		r.GT = e.Value
	case "lt":
		r.LT = e.Value
	case "lte":
		r.LTE = e.Value
	default: // gte and unset
		r.GTE = e.Value
	}
	return r
}

// matchClause builds the full-text clause for a text-bearing entity.
// An entity routed to the wildcard fallback matches across the
// convention fields present in the schema instead.
func matchClause(field, text string, p perspective.Perspective, idx *schema.Index) esdsl.Clause {
	if field != WildcardAll {
		return esdsl.Match{Field: field, Query: text, Fuzziness: p.Fuzziness}
	}
	fields, _ := recallFields(idx, p)
	return esdsl.MultiMatch{Fields: fields, Query: text, Fuzziness: p.Fuzziness}
}

// recallFields picks the multi_match target list: every convention
// field present in the schema (the first one boosted when the
// perspective asks for it), else the first text field, else
// wildcard-all.
func recallFields(idx *schema.Index, p perspective.Perspective) ([]string, *esdsl.Note) {
	var fields []string
	for _, name := range p.Conventions {
		if f, ok := idx.Get(name); ok && f.Searchable {
			entry := name
			if p.BoostFields && len(fields) == 0 {
				entry = name + "^2"
			}
			fields = append(fields, entry)
		}
	}
	if len(fields) > 0 {
		return fields, nil
	}
	if f, ok := idx.FirstText(); ok {
		return []string{f.Name}, &esdsl.Note{
			Message:    fmt.Sprintf("free text routed to first text field %q", f.Name),
			Field:      f.Name,
			Confidence: 0.4,
		}
	}
	return []string{WildcardAll}, &esdsl.Note{
		Message:    "free text matched against all fields",
		Field:      WildcardAll,
		Confidence: 0.2,
	}
}

// aggFromRequest translates one explicit aggregation request. Terms
// aggregations on analyzed text prefer the keyword variant.
func aggFromRequest(req intent.AggregationRequest, i int, idx *schema.Index) (string, esdsl.Agg) {
	kind := esdsl.AggKind(req.Type)
	field := req.Field
	if kind == esdsl.AggTerms || kind == esdsl.AggCardinality {
		field = preferKeyword(idx, field)
	}

	agg := esdsl.Agg{Kind: kind, Field: field}
	if kind == esdsl.AggTerms {
		if size, ok := req.Settings["size"].(float64); ok && size > 0 {
			agg.Size = int(size)
		}
	}
	if kind == esdsl.AggDateHistogram {
		if interval, ok := req.Settings["interval"].(string); ok && interval != "" {
			agg.Interval = interval
		} else {
			agg.Interval = "day"
		}
	}

	name := req.Name
	if name == "" {
		// Name after the requested field, not the keyword variant.
		if req.Field != "" {
			name = fmt.Sprintf("%s_%s", req.Type, req.Field)
		} else {
			name = fmt.Sprintf("%s_%d", req.Type, i)
		}
	}
	return name, agg
}

// defaultTermsAgg picks a grouping when the intent asks for statistics
// without saying over what. Preference order: the field of a range
// (non-equality) entity, the resolved field of the first filter or
// keyword entity, the schema's first aggregatable field, else a
// document-count metric.
func defaultTermsAgg(in *intent.Intent, p perspective.Perspective, idx *schema.Index) (string, esdsl.Agg, *esdsl.Note) {
	for _, e := range in.Entities {
		if e.Type == intent.EntityRange && e.Field != "" {
			return "by_" + e.Field, esdsl.Agg{Kind: esdsl.AggTerms, Field: e.Field, Size: 10}, nil
		}
	}
	for _, e := range in.Entities {
		if e.Type != intent.EntityFilter && e.Type != intent.EntityKeyword {
			continue
		}
		field, note := resolveField(e, idx, p.Conventions)
		if field == WildcardAll {
			continue
		}
		field = preferKeyword(idx, field)
		return "by_" + field, esdsl.Agg{Kind: esdsl.AggTerms, Field: field, Size: 10}, note
	}
	if f, ok := idx.FirstAggregatable(); ok {
		note := &esdsl.Note{
			Message:    fmt.Sprintf("no aggregation target in intent, grouping by first aggregatable field %q", f.Name),
			Field:      f.Name,
			Confidence: 0.4,
		}
		return "by_" + f.Name, esdsl.Agg{Kind: esdsl.AggTerms, Field: f.Name, Size: 10}, note
	}
	note := &esdsl.Note{
		Message:    "no aggregatable field available, falling back to document count",
		Confidence: 0.3,
	}
	return "doc_count", esdsl.Agg{Kind: esdsl.AggValueCount, Field: "_id"}, note
}

// sortSpec translates the intent's sort entries.
func sortSpec(in *intent.Intent) []esdsl.Sort {
	var out []esdsl.Sort
	for _, s := range in.Sort {
		order := esdsl.SortAsc
		if s.Order == "desc" {
			order = esdsl.SortDesc
		}
		out = append(out, esdsl.Sort{Field: s.Field, Order: order})
	}
	return out
}

// resultSize resolves the result size: an explicit intent limit wins
// over the perspective default.
func resultSize(in *intent.Intent, p perspective.Perspective) *int {
	if in.Limit != nil && *in.Limit >= 0 {
		return esdsl.SizeOf(*in.Limit)
	}
	return esdsl.SizeOf(p.Size)
}

// joinTerms joins extracted key terms back into one query string.
func joinTerms(terms []string) string {
	out := ""
	for i, t := range terms {
		if i > 0 {
			out += " "
		}
		out += t
	}
	return out
}
