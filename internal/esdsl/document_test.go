package esdsl

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Body Shape Tests
// =============================================================================

func TestToMapEmitsOnlyNonEmptyBranches(t *testing.T) {
	doc := &Document{Query: MatchAll{}}
	body := doc.ToMap()

	assert.Contains(t, body, "query")
	assert.NotContains(t, body, "aggs")
	assert.NotContains(t, body, "sort")
	assert.NotContains(t, body, "size")
	assert.NotContains(t, body, "from")
}

func TestToMapFullDocument(t *testing.T) {
	doc := &Document{
		Query: Bool{
			Filter: []Clause{
				Term{Field: "status", Value: "active"},
				Range{Field: "ts", GTE: "now-1h"},
			},
		},
		Aggs: map[string]Agg{
			"by_status": {Kind: AggTerms, Field: "status", Size: 5},
		},
		Sort: []Sort{{Field: "ts", Order: SortDesc}},
		Size: SizeOf(0),
		From: 20,
	}
	body := doc.ToMap()

	assert.Equal(t, 0, body["size"], "explicit zero size survives")
	assert.Equal(t, 20, body["from"])

	boolNode := body["query"].(map[string]any)["bool"].(map[string]any)
	require.Len(t, boolNode["filter"], 2)
	assert.NotContains(t, boolNode, "must")
	assert.NotContains(t, boolNode, "should")

	aggs := body["aggs"].(map[string]any)
	terms := aggs["by_status"].(map[string]any)["terms"].(map[string]any)
	assert.Equal(t, "status", terms["field"])
	assert.Equal(t, 5, terms["size"])
}

func TestToMapExactShape(t *testing.T) {
	doc := &Document{
		Query: Bool{
			Filter: []Clause{Term{Field: "status", Value: "active"}},
		},
		Size: SizeOf(10),
	}
	want := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"filter": []any{
					map[string]any{"term": map[string]any{"status": map[string]any{"value": "active"}}},
				},
			},
		},
		"size": 10,
	}
	if diff := cmp.Diff(want, doc.ToMap()); diff != "" {
		t.Errorf("body mismatch (-want +got):\n%s", diff)
	}
}

func TestToMapMatchOptionalKeys(t *testing.T) {
	plain := clauseToMap(Match{Field: "message", Query: "timeout"})
	inner := plain["match"].(map[string]any)["message"].(map[string]any)
	assert.NotContains(t, inner, "fuzziness")
	assert.NotContains(t, inner, "operator")

	fuzzy := clauseToMap(Match{Field: "message", Query: "timeout", Fuzziness: "AUTO", Operator: "or"})
	inner = fuzzy["match"].(map[string]any)["message"].(map[string]any)
	assert.Equal(t, "AUTO", inner["fuzziness"])
	assert.Equal(t, "or", inner["operator"])
}

func TestToMapRangeOmitsUnsetBounds(t *testing.T) {
	body := clauseToMap(Range{Field: "bytes", GTE: 100, LT: 500})
	bounds := body["range"].(map[string]any)["bytes"].(map[string]any)

	assert.Equal(t, 100, bounds["gte"])
	assert.Equal(t, 500, bounds["lt"])
	assert.NotContains(t, bounds, "gt")
	assert.NotContains(t, bounds, "lte")
}

func TestToMapDateHistogramInterval(t *testing.T) {
	body := aggToMap(Agg{
		Kind:     AggDateHistogram,
		Field:    "ts",
		Interval: "hour",
		Subs: map[string]Agg{
			"avg_bytes": {Kind: AggAvg, Field: "bytes"},
		},
	})

	hist := body["date_histogram"].(map[string]any)
	assert.Equal(t, "hour", hist["calendar_interval"])

	subs := body["aggs"].(map[string]any)
	avg := subs["avg_bytes"].(map[string]any)["avg"].(map[string]any)
	assert.Equal(t, "bytes", avg["field"])
}

func TestBoolIsZero(t *testing.T) {
	assert.True(t, Bool{}.IsZero())
	assert.True(t, Bool{MinimumShouldMatch: 1}.IsZero())
	assert.False(t, Bool{Must: []Clause{MatchAll{}}}.IsZero())
	assert.False(t, Bool{Filter: []Clause{Exists{Field: "ts"}}}.IsZero())
}

func TestAggKindIsMetric(t *testing.T) {
	assert.True(t, AggAvg.IsMetric())
	assert.True(t, AggValueCount.IsMetric())
	assert.True(t, AggPercentiles.IsMetric())
	assert.False(t, AggTerms.IsMetric())
	assert.False(t, AggDateHistogram.IsMetric())
	assert.False(t, AggSignificantText.IsMetric())
}
