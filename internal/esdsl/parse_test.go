package esdsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Round-Trip Tests
// =============================================================================

func TestParseDocumentRoundTrip(t *testing.T) {
	in := `{"query":{"bool":{"filter":[{"term":{"status":{"value":"active"}}},{"range":{"ts":{"gte":"now-1h"}}}]}},"size":10}`

	doc, err := ParseDocument([]byte(in))
	require.NoError(t, err)

	out, err := doc.MarshalCanonicalJSON()
	require.NoError(t, err)
	assert.Equal(t, in, string(out))
}

func TestParseDocumentAggsRoundTrip(t *testing.T) {
	in := `{"aggs":{"over_time":{"aggs":{"avg_bytes":{"avg":{"field":"bytes"}}},"date_histogram":{"calendar_interval":"hour","field":"ts"}}},"size":0}`

	doc, err := ParseDocument([]byte(in))
	require.NoError(t, err)
	require.Contains(t, doc.Aggs, "over_time")
	over := doc.Aggs["over_time"]
	assert.Equal(t, AggDateHistogram, over.Kind)
	assert.Equal(t, "hour", over.Interval)
	require.Contains(t, over.Subs, "avg_bytes")

	out, err := doc.MarshalCanonicalJSON()
	require.NoError(t, err)
	assert.Equal(t, in, string(out))
}

// =============================================================================
// Clause Parsing Tests
// =============================================================================

func TestParseClauseShorthandForms(t *testing.T) {
	doc, err := ParseDocument([]byte(`{"query":{"term":{"status":"active"}}}`))
	require.NoError(t, err)
	assert.Equal(t, Term{Field: "status", Value: "active"}, doc.Query)

	doc, err = ParseDocument([]byte(`{"query":{"match":{"message":"timeout error"}}}`))
	require.NoError(t, err)
	assert.Equal(t, Match{Field: "message", Query: "timeout error"}, doc.Query)

	doc, err = ParseDocument([]byte(`{"query":{"wildcard":{"path":"*.log"}}}`))
	require.NoError(t, err)
	assert.Equal(t, Wildcard{Field: "path", Pattern: "*.log"}, doc.Query)
}

func TestParseMultiMatch(t *testing.T) {
	doc, err := ParseDocument([]byte(`{"query":{"multi_match":{"query":"timeout","fields":["message^2","title"],"fuzziness":"AUTO","type":"best_fields"}}}`))
	require.NoError(t, err)

	mm, ok := doc.Query.(MultiMatch)
	require.True(t, ok)
	assert.Equal(t, []string{"message^2", "title"}, mm.Fields)
	assert.Equal(t, "AUTO", mm.Fuzziness)
	assert.Equal(t, "best_fields", mm.Type)
}

func TestParseBoolSingleClausePosition(t *testing.T) {
	// A bool position may hold a bare clause instead of an array.
	doc, err := ParseDocument([]byte(`{"query":{"bool":{"must":{"exists":{"field":"ts"}},"minimum_should_match":1}}}`))
	require.NoError(t, err)

	b, ok := doc.Query.(Bool)
	require.True(t, ok)
	require.Len(t, b.Must, 1)
	assert.Equal(t, Exists{Field: "ts"}, b.Must[0])
	assert.Equal(t, float64(1), b.MinimumShouldMatch)
}

func TestParseSortForms(t *testing.T) {
	doc, err := ParseDocument([]byte(`{"query":{"match_all":{}},"sort":["_score",{"ts":{"order":"desc"}},{"status":"asc"}]}`))
	require.NoError(t, err)

	require.Len(t, doc.Sort, 3)
	assert.Equal(t, Sort{Field: "_score", Order: SortAsc}, doc.Sort[0])
	assert.Equal(t, Sort{Field: "ts", Order: SortDesc}, doc.Sort[1])
	assert.Equal(t, Sort{Field: "status", Order: SortAsc}, doc.Sort[2])
}

// =============================================================================
// Error Tests
// =============================================================================

func TestParseDocumentErrors(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"invalid json", `{`, "decode query document"},
		{"empty body", `{}`, "neither a query nor aggregations"},
		{"unknown clause", `{"query":{"fuzzy_like_this":{}}}`, "unsupported clause type"},
		{"multi-key clause", `{"query":{"term":{"a":1},"match_all":{}}}`, "exactly one key"},
		{"term on two fields", `{"query":{"term":{"a":1,"b":2}}}`, "exactly one field"},
		{"agg without kind", `{"aggs":{"named":{}}}`, "declares no kind"},
		{"agg with two kinds", `{"aggs":{"named":{"avg":{"field":"a"},"sum":{"field":"b"}}}}`, "multiple kinds"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseDocument([]byte(tc.in))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}
