package esdsl

// AggKind identifies an aggregation clause type.
type AggKind string

// Bucket aggregations.
const (
	AggTerms           AggKind = "terms"
	AggDateHistogram   AggKind = "date_histogram"
	AggHistogram       AggKind = "histogram"
	AggSignificantText AggKind = "significant_text"
)

// Metric aggregations.
const (
	AggAvg         AggKind = "avg"
	AggSum         AggKind = "sum"
	AggMin         AggKind = "min"
	AggMax         AggKind = "max"
	AggCardinality AggKind = "cardinality"
	AggValueCount  AggKind = "value_count"
	AggStats       AggKind = "stats"
	AggPercentiles AggKind = "percentiles"
)

// IsMetric reports whether the kind is a single-value or multi-value
// metric aggregation (as opposed to a bucketing one).
func (k AggKind) IsMetric() bool {
	switch k {
	case AggAvg, AggSum, AggMin, AggMax, AggCardinality, AggValueCount, AggStats, AggPercentiles:
		return true
	}
	return false
}

// Agg is one aggregation node. Sub-aggregations nest under bucket
// aggregations; metric aggregations never carry Subs.
type Agg struct {
	Kind     AggKind
	Field    string
	Interval string         // date_histogram only (calendar_interval)
	Size     int            // terms only, 0 means server default
	Subs     map[string]Agg // named sub-aggregations
}
