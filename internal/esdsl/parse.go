package esdsl

import (
	"encoding/json"
	"fmt"
)

// ParseDocument decodes an Elasticsearch request body into a Document.
// Only the closed clause set this engine understands is accepted;
// anything else is a parse error, not a validation finding.
func ParseDocument(data []byte) (*Document, error) {
	var body map[string]any
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, fmt.Errorf("decode query document: %w", err)
	}

	doc := &Document{}
	if q, ok := body["query"]; ok {
		clause, err := parseClause(q)
		if err != nil {
			return nil, err
		}
		doc.Query = clause
	}
	if a, ok := asObject(body["aggs"]); ok {
		aggs, err := parseAggs(a)
		if err != nil {
			return nil, err
		}
		doc.Aggs = aggs
	} else if a, ok := asObject(body["aggregations"]); ok {
		aggs, err := parseAggs(a)
		if err != nil {
			return nil, err
		}
		doc.Aggs = aggs
	}
	if s, ok := body["sort"].([]any); ok {
		sorts, err := parseSort(s)
		if err != nil {
			return nil, err
		}
		doc.Sort = sorts
	}
	if n, ok := body["size"].(float64); ok {
		doc.Size = SizeOf(int(n))
	}
	if n, ok := body["from"].(float64); ok {
		doc.From = int(n)
	}
	if doc.Query == nil && len(doc.Aggs) == 0 {
		return nil, fmt.Errorf("query document has neither a query nor aggregations")
	}
	return doc, nil
}

func parseClause(v any) (Clause, error) {
	node, ok := asObject(v)
	if !ok {
		return nil, fmt.Errorf("query clause is not an object")
	}
	if len(node) != 1 {
		return nil, fmt.Errorf("query clause must have exactly one key, found %d", len(node))
	}

	for kind, body := range node {
		switch kind {
		case "match_all":
			return MatchAll{}, nil
		case "term":
			field, inner, err := singleField(kind, body)
			if err != nil {
				return nil, err
			}
			if o, ok := asObject(inner); ok {
				return Term{Field: field, Value: o["value"]}, nil
			}
			return Term{Field: field, Value: inner}, nil
		case "terms":
			field, inner, err := singleField(kind, body)
			if err != nil {
				return nil, err
			}
			values, ok := inner.([]any)
			if !ok {
				return nil, fmt.Errorf("terms clause on %q: values must be an array", field)
			}
			return Terms{Field: field, Values: values}, nil
		case "match":
			field, inner, err := singleField(kind, body)
			if err != nil {
				return nil, err
			}
			if o, ok := asObject(inner); ok {
				q, _ := o["query"].(string)
				fuzz := stringOrEmpty(o["fuzziness"])
				op, _ := o["operator"].(string)
				return Match{Field: field, Query: q, Fuzziness: fuzz, Operator: op}, nil
			}
			if s, ok := inner.(string); ok {
				return Match{Field: field, Query: s}, nil
			}
			return nil, fmt.Errorf("match clause on %q: unsupported body", field)
		case "multi_match":
			o, ok := asObject(body)
			if !ok {
				return nil, fmt.Errorf("multi_match clause body must be an object")
			}
			q, _ := o["query"].(string)
			var fields []string
			if raw, ok := o["fields"].([]any); ok {
				for _, f := range raw {
					if s, ok := f.(string); ok {
						fields = append(fields, s)
					}
				}
			}
			return MultiMatch{
				Fields:    fields,
				Query:     q,
				Fuzziness: stringOrEmpty(o["fuzziness"]),
				Type:      stringOrEmpty(o["type"]),
			}, nil
		case "match_phrase":
			field, inner, err := singleField(kind, body)
			if err != nil {
				return nil, err
			}
			if o, ok := asObject(inner); ok {
				q, _ := o["query"].(string)
				return MatchPhrase{Field: field, Query: q}, nil
			}
			if s, ok := inner.(string); ok {
				return MatchPhrase{Field: field, Query: s}, nil
			}
			return nil, fmt.Errorf("match_phrase clause on %q: unsupported body", field)
		case "range":
			field, inner, err := singleField(kind, body)
			if err != nil {
				return nil, err
			}
			o, ok := asObject(inner)
			if !ok {
				return nil, fmt.Errorf("range clause on %q: bounds must be an object", field)
			}
			return Range{
				Field:  field,
				GTE:    o["gte"],
				GT:     o["gt"],
				LTE:    o["lte"],
				LT:     o["lt"],
				Format: stringOrEmpty(o["format"]),
			}, nil
		case "exists":
			o, ok := asObject(body)
			if !ok {
				return nil, fmt.Errorf("exists clause body must be an object")
			}
			field, _ := o["field"].(string)
			return Exists{Field: field}, nil
		case "wildcard":
			field, inner, err := singleField(kind, body)
			if err != nil {
				return nil, err
			}
			if o, ok := asObject(inner); ok {
				return Wildcard{Field: field, Pattern: stringOrEmpty(o["value"])}, nil
			}
			if s, ok := inner.(string); ok {
				return Wildcard{Field: field, Pattern: s}, nil
			}
			return nil, fmt.Errorf("wildcard clause on %q: unsupported body", field)
		case "regexp":
			field, inner, err := singleField(kind, body)
			if err != nil {
				return nil, err
			}
			if o, ok := asObject(inner); ok {
				return Regexp{Field: field, Pattern: stringOrEmpty(o["value"])}, nil
			}
			if s, ok := inner.(string); ok {
				return Regexp{Field: field, Pattern: s}, nil
			}
			return nil, fmt.Errorf("regexp clause on %q: unsupported body", field)
		case "bool":
			return parseBool(body)
		default:
			return nil, fmt.Errorf("unsupported clause type %q", kind)
		}
	}
	return nil, fmt.Errorf("empty query clause")
}

func parseBool(v any) (Clause, error) {
	o, ok := asObject(v)
	if !ok {
		return nil, fmt.Errorf("bool clause body must be an object")
	}
	b := Bool{}
	for _, position := range []string{"must", "filter", "should", "must_not"} {
		raw, ok := o[position]
		if !ok {
			continue
		}
		// A position may hold one clause or an array of clauses.
		items, ok := raw.([]any)
		if !ok {
			items = []any{raw}
		}
		for _, item := range items {
			clause, err := parseClause(item)
			if err != nil {
				return nil, fmt.Errorf("bool %s: %w", position, err)
			}
			switch position {
			case "must":
				b.Must = append(b.Must, clause)
			case "filter":
				b.Filter = append(b.Filter, clause)
			case "should":
				b.Should = append(b.Should, clause)
			case "must_not":
				b.MustNot = append(b.MustNot, clause)
			}
		}
	}
	if msm, ok := o["minimum_should_match"]; ok {
		b.MinimumShouldMatch = msm
	}
	return b, nil
}

func parseAggs(node map[string]any) (map[string]Agg, error) {
	out := map[string]Agg{}
	for name, raw := range node {
		agg, err := parseAgg(name, raw)
		if err != nil {
			return nil, err
		}
		out[name] = agg
	}
	return out, nil
}

func parseAgg(name string, v any) (Agg, error) {
	o, ok := asObject(v)
	if !ok {
		return Agg{}, fmt.Errorf("aggregation %q must be an object", name)
	}

	agg := Agg{}
	for key, raw := range o {
		if key == "aggs" || key == "aggregations" {
			sub, ok := asObject(raw)
			if !ok {
				return Agg{}, fmt.Errorf("aggregation %q: sub-aggregations must be an object", name)
			}
			subs, err := parseAggs(sub)
			if err != nil {
				return Agg{}, err
			}
			agg.Subs = subs
			continue
		}
		if agg.Kind != "" {
			return Agg{}, fmt.Errorf("aggregation %q declares multiple kinds", name)
		}
		agg.Kind = AggKind(key)
		body, ok := asObject(raw)
		if !ok {
			return Agg{}, fmt.Errorf("aggregation %q (%s): body must be an object", name, key)
		}
		agg.Field = stringOrEmpty(body["field"])
		agg.Interval = stringOrEmpty(body["calendar_interval"])
		if agg.Interval == "" {
			agg.Interval = stringOrEmpty(body["fixed_interval"])
		}
		if size, ok := body["size"].(float64); ok {
			agg.Size = int(size)
		}
	}
	if agg.Kind == "" {
		return Agg{}, fmt.Errorf("aggregation %q declares no kind", name)
	}
	return agg, nil
}

func parseSort(items []any) ([]Sort, error) {
	var out []Sort
	for _, item := range items {
		switch s := item.(type) {
		case string:
			out = append(out, Sort{Field: s, Order: SortAsc})
		case map[string]any:
			for field, spec := range s {
				order := SortAsc
				if o, ok := asObject(spec); ok {
					if string(SortDesc) == stringOrEmpty(o["order"]) {
						order = SortDesc
					}
				} else if stringOrEmpty(spec) == string(SortDesc) {
					order = SortDesc
				}
				out = append(out, Sort{Field: field, Order: order})
			}
		default:
			return nil, fmt.Errorf("unsupported sort entry %v", item)
		}
	}
	return out, nil
}

func singleField(kind string, v any) (string, any, error) {
	o, ok := asObject(v)
	if !ok {
		return "", nil, fmt.Errorf("%s clause body must be an object", kind)
	}
	if len(o) != 1 {
		return "", nil, fmt.Errorf("%s clause must target exactly one field, found %d", kind, len(o))
	}
	for field, inner := range o {
		return field, inner, nil
	}
	return "", nil, fmt.Errorf("%s clause is empty", kind)
}

func asObject(v any) (map[string]any, bool) {
	o, ok := v.(map[string]any)
	return o, ok && o != nil
}

func stringOrEmpty(v any) string {
	s, _ := v.(string)
	return s
}
