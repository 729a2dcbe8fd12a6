// Package intent defines the structured intent contract produced by the
// external (LLM-backed) intent-extraction collaborator, plus a loader
// that checks incoming intent documents against a CUE schema.
//
// The core treats an Intent as read-only. Synthesis always proceeds
// from a partially-populated or low-confidence intent; the loader
// collects shape problems as errors instead of refusing.
package intent

// QueryType classifies what kind of result the user is after.
type QueryType string

const (
	QuerySearch      QueryType = "search"
	QueryAggregation QueryType = "aggregation"
	QueryMixed       QueryType = "mixed"
	QueryUnknown     QueryType = "unknown"
)

// EntityType classifies how an extracted entity should participate in
// the query.
type EntityType string

const (
	EntityFilter  EntityType = "filter"
	EntityKeyword EntityType = "keyword"
	EntityRange   EntityType = "range"
	EntityExists  EntityType = "exists"
)

// Entity is one extracted query constraint.
type Entity struct {
	Name  string     `json:"name"`
	Type  EntityType `json:"type"`
	Value any        `json:"value,omitempty"`

	// Field is the explicit target field, when the extractor resolved
	// one. Empty means the synthesizer must guess (field-role fallback).
	Field string `json:"field,omitempty"`

	// Operator refines range entities: "gt", "gte", "lt", "lte", "eq".
	Operator string `json:"operator,omitempty"`
}

// DateRange is an explicit date constraint on a named field.
type DateRange struct {
	Field string `json:"field"`
	GTE   string `json:"gte,omitempty"`
	LTE   string `json:"lte,omitempty"`
}

// SortSpec is one requested sort entry.
type SortSpec struct {
	Field string `json:"field"`
	Order string `json:"order,omitempty"` // "asc" | "desc"
}

// AggregationRequest asks for one summarization over matched documents.
type AggregationRequest struct {
	Type     string         `json:"type"` // terms, date_histogram, avg, sum, ...
	Field    string         `json:"field,omitempty"`
	Name     string         `json:"name,omitempty"`
	Settings map[string]any `json:"settings,omitempty"`
}

// Timeframe describes the time window the user asked about. Exactly one
// of the three forms is populated: relative (Unit+Value), absolute
// (Start/End), or named ("today", "yesterday", "this_week",
// "this_month").
type Timeframe struct {
	Unit  string `json:"unit,omitempty"` // minutes, hours, days, weeks, months, years
	Value int    `json:"value,omitempty"`
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
	Named string `json:"named,omitempty"`

	// Field overrides the time field the window applies to. Empty means
	// the conventional "@timestamp".
	Field string `json:"field,omitempty"`
}

// IsRelative reports whether the timeframe is a relative window.
func (t *Timeframe) IsRelative() bool {
	return t != nil && t.Unit != "" && t.Value > 0
}

// IsAbsolute reports whether the timeframe carries literal bounds.
func (t *Timeframe) IsAbsolute() bool {
	return t != nil && (t.Start != "" || t.End != "")
}

// Intent is the structured information need handed to the synthesizer.
type Intent struct {
	QueryType    QueryType            `json:"queryType"`
	Entities     []Entity             `json:"entities,omitempty"`
	DateRanges   []DateRange          `json:"dateRanges,omitempty"`
	Sort         []SortSpec           `json:"sort,omitempty"`
	Aggregations []AggregationRequest `json:"aggregationRequests,omitempty"`
	Timeframe    *Timeframe           `json:"timeframe,omitempty"`
	Limit        *int                 `json:"limit,omitempty"`

	// RawQuery is the original user text, used for key-term extraction
	// when no explicit entities are present.
	RawQuery string `json:"rawQuery,omitempty"`

	// ConfidenceScore is the extractor's own certainty in [0,1].
	// 0 means unreported.
	ConfidenceScore float64 `json:"confidenceScore,omitempty"`

	// Errors carries the extractor's uncertainty notes verbatim.
	Errors []string `json:"errors,omitempty"`
}

// WantsAggregation reports whether the intent calls for summarization.
func (in *Intent) WantsAggregation() bool {
	return in.QueryType == QueryAggregation || in.QueryType == QueryMixed || len(in.Aggregations) > 0
}
