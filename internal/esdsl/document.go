package esdsl

// SortOrder is a sort direction.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Sort is one entry of a document's sort specification.
type Sort struct {
	Field string
	Order SortOrder
}

// Note records a resolution-quality degradation made during synthesis,
// e.g. a field-role fallback chosen without schema support. Notes ride
// on the document so the ranker can penalize low-confidence decisions;
// they are not serialized into the wire query.
type Note struct {
	Message    string
	Field      string
	Confidence float64 // [0,1], lower means less certain
}

// Document is a complete synthesized query document: a query clause
// tree, an optional aggregation map, an optional sort specification,
// and scalar result controls.
//
// A Document is immutable once handed to the validator. Either Query is
// non-nil or Aggs is non-empty; synthesis guarantees at least one.
type Document struct {
	Query Clause
	Aggs  map[string]Agg
	Sort  []Sort

	// Size is the requested result count. nil means server default;
	// an explicit 0 is meaningful for aggregation-only documents.
	Size *int
	From int

	Notes []Note
}

// SizeOf returns a pointer to n, for populating Document.Size.
func SizeOf(n int) *int { return &n }

// ToMap renders the document as the Elasticsearch request body shape.
// Only non-empty branches are emitted.
func (d *Document) ToMap() map[string]any {
	body := map[string]any{}
	if d.Query != nil {
		body["query"] = clauseToMap(d.Query)
	}
	if len(d.Aggs) > 0 {
		aggs := map[string]any{}
		for name, agg := range d.Aggs {
			aggs[name] = aggToMap(agg)
		}
		body["aggs"] = aggs
	}
	if len(d.Sort) > 0 {
		sorts := make([]any, 0, len(d.Sort))
		for _, s := range d.Sort {
			sorts = append(sorts, map[string]any{s.Field: map[string]any{"order": string(s.Order)}})
		}
		body["sort"] = sorts
	}
	if d.Size != nil {
		body["size"] = *d.Size
	}
	if d.From > 0 {
		body["from"] = d.From
	}
	return body
}

// MarshalCanonicalJSON renders the document as canonical JSON (sorted
// keys, NFC-normalized strings). Deterministic across calls, suitable
// for golden-file comparison.
func (d *Document) MarshalCanonicalJSON() ([]byte, error) {
	return MarshalCanonical(d.ToMap())
}

func clauseToMap(c Clause) map[string]any {
	switch cl := c.(type) {
	case MatchAll:
		return map[string]any{"match_all": map[string]any{}}
	case Term:
		return map[string]any{"term": map[string]any{cl.Field: map[string]any{"value": cl.Value}}}
	case Terms:
		return map[string]any{"terms": map[string]any{cl.Field: cl.Values}}
	case Match:
		inner := map[string]any{"query": cl.Query}
		if cl.Fuzziness != "" {
			inner["fuzziness"] = cl.Fuzziness
		}
		if cl.Operator != "" {
			inner["operator"] = cl.Operator
		}
		return map[string]any{"match": map[string]any{cl.Field: inner}}
	case MultiMatch:
		inner := map[string]any{"query": cl.Query, "fields": anySlice(cl.Fields)}
		if cl.Fuzziness != "" {
			inner["fuzziness"] = cl.Fuzziness
		}
		if cl.Type != "" {
			inner["type"] = cl.Type
		}
		return map[string]any{"multi_match": inner}
	case MatchPhrase:
		return map[string]any{"match_phrase": map[string]any{cl.Field: map[string]any{"query": cl.Query}}}
	case Range:
		bounds := map[string]any{}
		if cl.GTE != nil {
			bounds["gte"] = cl.GTE
		}
		if cl.GT != nil {
			bounds["gt"] = cl.GT
		}
		if cl.LTE != nil {
			bounds["lte"] = cl.LTE
		}
		if cl.LT != nil {
			bounds["lt"] = cl.LT
		}
		if cl.Format != "" {
			bounds["format"] = cl.Format
		}
		return map[string]any{"range": map[string]any{cl.Field: bounds}}
	case Exists:
		return map[string]any{"exists": map[string]any{"field": cl.Field}}
	case Wildcard:
		return map[string]any{"wildcard": map[string]any{cl.Field: map[string]any{"value": cl.Pattern}}}
	case Regexp:
		return map[string]any{"regexp": map[string]any{cl.Field: map[string]any{"value": cl.Pattern}}}
	case Bool:
		inner := map[string]any{}
		if len(cl.Must) > 0 {
			inner["must"] = clausesToMaps(cl.Must)
		}
		if len(cl.Filter) > 0 {
			inner["filter"] = clausesToMaps(cl.Filter)
		}
		if len(cl.Should) > 0 {
			inner["should"] = clausesToMaps(cl.Should)
		}
		if len(cl.MustNot) > 0 {
			inner["must_not"] = clausesToMaps(cl.MustNot)
		}
		if cl.MinimumShouldMatch != nil {
			inner["minimum_should_match"] = cl.MinimumShouldMatch
		}
		return map[string]any{"bool": inner}
	default:
		// Sealed interface, unreachable without a new clause type.
		return map[string]any{}
	}
}

func clausesToMaps(cs []Clause) []any {
	out := make([]any, 0, len(cs))
	for _, c := range cs {
		out = append(out, clauseToMap(c))
	}
	return out
}

func aggToMap(a Agg) map[string]any {
	body := map[string]any{}
	if a.Field != "" {
		body["field"] = a.Field
	}
	if a.Kind == AggDateHistogram && a.Interval != "" {
		body["calendar_interval"] = a.Interval
	}
	if a.Kind == AggTerms && a.Size > 0 {
		body["size"] = a.Size
	}
	node := map[string]any{string(a.Kind): body}
	if len(a.Subs) > 0 {
		subs := map[string]any{}
		for name, sub := range a.Subs {
			subs[name] = aggToMap(sub)
		}
		node["aggs"] = subs
	}
	return node
}

func anySlice(ss []string) []any {
	out := make([]any, 0, len(ss))
	for _, s := range ss {
		out = append(out, s)
	}
	return out
}
