package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/querysmith/querysmith/internal/esdsl"
	"github.com/querysmith/querysmith/internal/intent"
	"github.com/querysmith/querysmith/internal/perspective"
	"github.com/querysmith/querysmith/internal/validate"
)

// =============================================================================
// Match-All Invariant Tests
// =============================================================================

func TestSynthesizeEmptyIntentNeverYieldsEmptyDocument(t *testing.T) {
	in := &intent.Intent{QueryType: intent.QueryUnknown}

	for _, k := range perspective.All() {
		doc := Synthesize(in, perspective.Default(k), testIndex(t))
		assert.True(t, doc.Query != nil || len(doc.Aggs) > 0, k.ID())
	}
}

func TestSynthesizeEmptyIntentMatchAll(t *testing.T) {
	in := &intent.Intent{QueryType: intent.QuerySearch}

	doc := Synthesize(in, perspective.Default(perspective.PreciseMatch), testIndex(t))
	assert.Equal(t, esdsl.MatchAll{}, doc.Query)

	doc = Synthesize(in, perspective.Default(perspective.EnhancedRecall), testIndex(t))
	assert.Equal(t, esdsl.MatchAll{}, doc.Query)
}

func TestSynthesizeEmptyIntentEmptyIndex(t *testing.T) {
	in := &intent.Intent{QueryType: intent.QueryAggregation}

	doc := Synthesize(in, perspective.Default(perspective.StatisticalAnalysis), emptyIndex(t))
	require.Contains(t, doc.Aggs, "doc_count")
	assert.Equal(t, esdsl.AggValueCount, doc.Aggs["doc_count"].Kind)
	assert.Equal(t, "_id", doc.Aggs["doc_count"].Field)
}

// =============================================================================
// Precise Match Tests
// =============================================================================

func TestPreciseMatchClausePositions(t *testing.T) {
	in := &intent.Intent{
		QueryType: intent.QuerySearch,
		Entities: []intent.Entity{
			{Name: "status", Type: intent.EntityFilter, Value: "active", Field: "status"},
			{Name: "error", Type: intent.EntityKeyword, Value: "timeout", Field: "message"},
			{Name: "bytes", Type: intent.EntityRange, Value: 1024, Field: "bytes", Operator: "gt"},
			{Name: "trace", Type: intent.EntityExists, Field: "trace_id"},
		},
		Timeframe: &intent.Timeframe{Unit: "hours", Value: 24},
	}
	doc := Synthesize(in, perspective.Default(perspective.PreciseMatch), testIndex(t))

	b, ok := doc.Query.(esdsl.Bool)
	require.True(t, ok)

	require.Len(t, b.Filter, 4, "filter + range + exists + timeframe")
	assert.Equal(t, esdsl.Term{Field: "status", Value: "active"}, b.Filter[0])
	assert.Equal(t, esdsl.Range{Field: "bytes", GT: 1024}, b.Filter[1])
	assert.Equal(t, esdsl.Exists{Field: "trace_id"}, b.Filter[2])
	assert.Equal(t, esdsl.Range{Field: "@timestamp", GTE: "now-24h", LTE: "now"}, b.Filter[3])

	require.Len(t, b.Must, 1)
	assert.Equal(t, esdsl.Term{Field: "message.keyword", Value: "timeout"}, b.Must[0],
		"exact terms target the keyword variant of analyzed text")

	assert.Empty(t, b.Should)
	require.NotNil(t, doc.Size)
	assert.Equal(t, 10, *doc.Size)
}

func TestPreciseMatchRecordsResolutionNotes(t *testing.T) {
	in := &intent.Intent{
		QueryType: intent.QuerySearch,
		Entities:  []intent.Entity{{Name: "error", Type: intent.EntityFilter, Value: "timeout"}},
	}
	doc := Synthesize(in, perspective.Default(perspective.PreciseMatch), testIndex(t))

	require.Len(t, doc.Notes, 1)
	assert.Equal(t, "message", doc.Notes[0].Field)
	assert.InDelta(t, 0.5, doc.Notes[0].Confidence, 1e-9)
}

func TestPreciseMatchUnresolvedEntityFallsBackToFullText(t *testing.T) {
	in := &intent.Intent{
		QueryType: intent.QuerySearch,
		Entities:  []intent.Entity{{Name: "payload", Type: intent.EntityFilter, Value: "deadbeef"}},
	}
	doc := Synthesize(in, perspective.Default(perspective.PreciseMatch), emptyIndex(t))

	b, ok := doc.Query.(esdsl.Bool)
	require.True(t, ok)
	assert.Empty(t, b.Filter)
	require.Len(t, b.Must, 1)

	mm, ok := b.Must[0].(esdsl.MultiMatch)
	require.True(t, ok, "an exact term on %q matches nothing", WildcardAll)
	assert.Equal(t, []string{WildcardAll}, mm.Fields)
	assert.Equal(t, "deadbeef", mm.Query)

	require.Len(t, doc.Notes, 1)
	assert.InDelta(t, 0.2, doc.Notes[0].Confidence, 1e-9)
}

// =============================================================================
// Enhanced Recall Tests
// =============================================================================

func TestEnhancedRecallFuzzyTextInShould(t *testing.T) {
	in := &intent.Intent{
		QueryType: intent.QuerySearch,
		Entities: []intent.Entity{
			{Name: "error", Type: intent.EntityKeyword, Value: "timeout", Field: "message"},
			{Name: "status", Type: intent.EntityFilter, Value: "active", Field: "status"},
		},
	}
	doc := Synthesize(in, perspective.Default(perspective.EnhancedRecall), testIndex(t))

	b, ok := doc.Query.(esdsl.Bool)
	require.True(t, ok)

	require.Len(t, b.Should, 1)
	assert.Equal(t, esdsl.Match{Field: "message", Query: "timeout", Fuzziness: "AUTO"}, b.Should[0])

	require.Len(t, b.Filter, 1, "non-text constraints stay hard")
	assert.Equal(t, esdsl.Term{Field: "status", Value: "active"}, b.Filter[0])

	assert.Nil(t, b.MinimumShouldMatch, "threshold only applies to unanchored queries")
	require.NotNil(t, doc.Size)
	assert.Equal(t, 20, *doc.Size)
}

func TestEnhancedRecallMinimumShouldMatchWhenUnanchored(t *testing.T) {
	in := &intent.Intent{
		QueryType: intent.QuerySearch,
		Entities: []intent.Entity{
			{Name: "error", Type: intent.EntityKeyword, Value: "timeout", Field: "message"},
		},
	}
	doc := Synthesize(in, perspective.Default(perspective.EnhancedRecall), testIndex(t))

	b, ok := doc.Query.(esdsl.Bool)
	require.True(t, ok)
	assert.Equal(t, "75%", b.MinimumShouldMatch)
}

func TestEnhancedRecallRawQueryFallback(t *testing.T) {
	in := &intent.Intent{
		QueryType: intent.QuerySearch,
		RawQuery:  "show me the timeout errors",
	}
	doc := Synthesize(in, perspective.Default(perspective.EnhancedRecall), testIndex(t))

	b, ok := doc.Query.(esdsl.Bool)
	require.True(t, ok)
	require.Len(t, b.Should, 1)

	mm, ok := b.Should[0].(esdsl.MultiMatch)
	require.True(t, ok)
	assert.Equal(t, "timeout errors", mm.Query)
	assert.Equal(t, []string{"message^2"}, mm.Fields, "first convention hit carries the boost")
	assert.Equal(t, "AUTO", mm.Fuzziness)
}

func TestEnhancedRecallRawQueryFallbackEmptyIndex(t *testing.T) {
	in := &intent.Intent{QueryType: intent.QuerySearch, RawQuery: "timeout errors"}
	doc := Synthesize(in, perspective.Default(perspective.EnhancedRecall), emptyIndex(t))

	b, ok := doc.Query.(esdsl.Bool)
	require.True(t, ok)
	mm, ok := b.Should[0].(esdsl.MultiMatch)
	require.True(t, ok)
	assert.Equal(t, []string{WildcardAll}, mm.Fields)
	require.Len(t, doc.Notes, 1)
	assert.InDelta(t, 0.2, doc.Notes[0].Confidence, 1e-9)
}

// =============================================================================
// Statistical Analysis Tests
// =============================================================================

func TestStatisticalExplicitAggregations(t *testing.T) {
	in := &intent.Intent{
		QueryType: intent.QueryAggregation,
		Aggregations: []intent.AggregationRequest{
			{Type: "avg", Field: "bytes"},
			{Type: "terms", Field: "message", Settings: map[string]any{"size": float64(5)}},
		},
	}
	doc := Synthesize(in, perspective.Default(perspective.StatisticalAnalysis), testIndex(t))

	require.Contains(t, doc.Aggs, "avg_bytes")
	assert.Equal(t, esdsl.Agg{Kind: esdsl.AggAvg, Field: "bytes"}, doc.Aggs["avg_bytes"])

	require.Contains(t, doc.Aggs, "terms_message")
	terms := doc.Aggs["terms_message"]
	assert.Equal(t, "message.keyword", terms.Field, "terms on analyzed text prefers the keyword variant")
	assert.Equal(t, 5, terms.Size)

	require.NotNil(t, doc.Size)
	assert.Equal(t, 0, *doc.Size, "aggregation-only documents suppress hits")
}

func TestStatisticalDefaultGroupingPreferences(t *testing.T) {
	idx := testIndex(t)
	p := perspective.Default(perspective.StatisticalAnalysis)

	// A range entity's field is the preferred grouping axis.
	doc := Synthesize(&intent.Intent{
		QueryType: intent.QueryAggregation,
		Entities:  []intent.Entity{{Name: "bytes", Type: intent.EntityRange, Value: 100, Field: "bytes"}},
	}, p, idx)
	require.Contains(t, doc.Aggs, "by_bytes")

	// Then the first filter entity's resolved field.
	doc = Synthesize(&intent.Intent{
		QueryType: intent.QueryAggregation,
		Entities:  []intent.Entity{{Name: "status", Type: intent.EntityFilter, Value: "active", Field: "status"}},
	}, p, idx)
	require.Contains(t, doc.Aggs, "by_status")
	assert.Equal(t, 10, doc.Aggs["by_status"].Size)

	// Then the schema's first aggregatable field.
	doc = Synthesize(&intent.Intent{QueryType: intent.QueryAggregation}, p, idx)
	require.Contains(t, doc.Aggs, "by_@timestamp")
	require.Len(t, doc.Notes, 1)
}

func TestStatisticalHardFiltersEverything(t *testing.T) {
	in := &intent.Intent{
		QueryType: intent.QueryMixed,
		Entities: []intent.Entity{
			{Name: "error", Type: intent.EntityKeyword, Value: "timeout", Field: "message"},
		},
		Aggregations: []intent.AggregationRequest{{Type: "sum", Field: "bytes"}},
	}
	doc := Synthesize(in, perspective.Default(perspective.StatisticalAnalysis), testIndex(t))

	b, ok := doc.Query.(esdsl.Bool)
	require.True(t, ok)
	require.Len(t, b.Filter, 1)
	assert.Equal(t, esdsl.Term{Field: "message.keyword", Value: "timeout"}, b.Filter[0],
		"nothing scores in an aggregation-centric document")
	assert.Empty(t, b.Should)
	assert.Empty(t, b.Must)
}

// =============================================================================
// Time Series Tests
// =============================================================================

func TestTimeSeriesSingleHistogram(t *testing.T) {
	in := &intent.Intent{
		QueryType: intent.QueryAggregation,
		Timeframe: &intent.Timeframe{Unit: "days", Value: 7},
	}
	doc := Synthesize(in, perspective.Default(perspective.TimeSeries), testIndex(t))

	require.Len(t, doc.Aggs, 1)
	require.Contains(t, doc.Aggs, "over_time")
	hist := doc.Aggs["over_time"]
	assert.Equal(t, esdsl.AggDateHistogram, hist.Kind)
	assert.Equal(t, "@timestamp", hist.Field)
	assert.Equal(t, "day", hist.Interval)

	require.Len(t, hist.Subs, 1, "no metric requested, buckets carry a count")
	assert.Equal(t, esdsl.Agg{Kind: esdsl.AggValueCount, Field: "_id"}, hist.Subs["doc_count"])
}

func TestTimeSeriesMetricSubAggregations(t *testing.T) {
	in := &intent.Intent{
		QueryType: intent.QueryAggregation,
		Timeframe: &intent.Timeframe{Unit: "hours", Value: 24, Field: "event.created"},
		Aggregations: []intent.AggregationRequest{
			{Type: "avg", Field: "bytes"},
			{Type: "terms", Field: "status"},
			{Type: "date_histogram", Field: "@timestamp"},
		},
	}
	doc := Synthesize(in, perspective.Default(perspective.TimeSeries), testIndex(t))

	hist := doc.Aggs["over_time"]
	assert.Equal(t, "event.created", hist.Field, "intent's time field overrides the default")
	assert.Equal(t, "hour", hist.Interval)

	require.Len(t, hist.Subs, 2, "a second time axis is dropped")
	assert.Contains(t, hist.Subs, "avg_bytes")
	assert.Contains(t, hist.Subs, "terms_status")
}

// =============================================================================
// Shared Behavior Tests
// =============================================================================

func TestResultSizeLimitOverride(t *testing.T) {
	limit := 3
	in := &intent.Intent{QueryType: intent.QuerySearch, Limit: &limit}
	doc := Synthesize(in, perspective.Default(perspective.PreciseMatch), testIndex(t))

	require.NotNil(t, doc.Size)
	assert.Equal(t, 3, *doc.Size)
}

func TestSortSpecTranslation(t *testing.T) {
	in := &intent.Intent{
		QueryType: intent.QuerySearch,
		Sort: []intent.SortSpec{
			{Field: "@timestamp", Order: "desc"},
			{Field: "status"},
		},
	}
	doc := Synthesize(in, perspective.Default(perspective.PreciseMatch), testIndex(t))

	require.Len(t, doc.Sort, 2)
	assert.Equal(t, esdsl.Sort{Field: "@timestamp", Order: esdsl.SortDesc}, doc.Sort[0])
	assert.Equal(t, esdsl.Sort{Field: "status", Order: esdsl.SortAsc}, doc.Sort[1])
}

func TestSynthesizedDocumentsValidateCleanly(t *testing.T) {
	in := &intent.Intent{
		QueryType: intent.QuerySearch,
		Entities: []intent.Entity{
			{Name: "status", Type: intent.EntityFilter, Value: "active", Field: "status"},
			{Name: "error", Type: intent.EntityKeyword, Value: "timeout", Field: "message"},
		},
		Timeframe: &intent.Timeframe{Unit: "hours", Value: 24},
	}
	idx := testIndex(t)

	for _, k := range perspective.All() {
		doc := Synthesize(in, perspective.Default(k), idx)
		res := validate.Validate(doc, idx)
		assert.True(t, res.IsValid, k.ID())
		assert.Empty(t, res.Errors(), k.ID())
	}
}

func TestSynthesizeDeterministic(t *testing.T) {
	in := &intent.Intent{
		QueryType: intent.QuerySearch,
		Entities: []intent.Entity{
			{Name: "status", Type: intent.EntityFilter, Value: "active", Field: "status"},
		},
		Timeframe: &intent.Timeframe{Unit: "hours", Value: 24},
	}
	idx := testIndex(t)
	p := perspective.Default(perspective.PreciseMatch)

	first, err := Synthesize(in, p, idx).MarshalCanonicalJSON()
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Synthesize(in, p, idx).MarshalCanonicalJSON()
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
