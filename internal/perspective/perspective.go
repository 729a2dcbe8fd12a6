// Package perspective defines the closed set of query-construction
// strategies. Perspectives are data, not code: adding a strategy means
// extending the Kind set and the synthesizer's dispatch table, never
// subclassing.
package perspective

// Kind identifies one query-construction strategy.
type Kind int

const (
	// PreciseMatch favors exact filtering in non-scoring positions.
	PreciseMatch Kind = iota
	// EnhancedRecall favors fuzzy full-text matching and alternatives.
	EnhancedRecall
	// StatisticalAnalysis favors aggregations over hit lists.
	StatisticalAnalysis
	// TimeSeries favors date-histogram bucketing over a time field.
	TimeSeries
)

// ids are the stable wire identifiers, index-aligned with the Kind
// constants.
var ids = [...]string{
	PreciseMatch:        "precise-match",
	EnhancedRecall:      "enhanced-recall",
	StatisticalAnalysis: "statistical-analysis",
	TimeSeries:          "time-series",
}

// ID returns the stable identifier for the kind.
func (k Kind) ID() string {
	if k < 0 || int(k) >= len(ids) {
		return ids[PreciseMatch]
	}
	return ids[k]
}

func (k Kind) String() string { return k.ID() }

// ParseKind maps an identifier to its Kind. Unknown identifiers resolve
// to PreciseMatch; that is the documented default, not a failure.
func ParseKind(id string) Kind {
	for k, s := range ids {
		if s == id {
			return Kind(k)
		}
	}
	return PreciseMatch
}

// All returns every kind in declaration order.
func All() []Kind {
	return []Kind{PreciseMatch, EnhancedRecall, StatisticalAnalysis, TimeSeries}
}

// Perspective carries the parameters that steer synthesis for one
// strategy. Instances are value types; Defaults returns fresh copies.
type Perspective struct {
	Kind        Kind
	Description string

	// Fuzziness enables fuzzy text matching when non-empty ("AUTO").
	Fuzziness string

	// MinimumShouldMatch applies to should-only boolean queries.
	MinimumShouldMatch string

	// Size is the default result size. 0 is meaningful for
	// aggregation-centric strategies.
	Size int

	// BoostFields enables caret boosts on conventional fields in
	// multi_match clauses.
	BoostFields bool

	// Conventions lists candidate field names, in preference order, for
	// routing an entity with no explicit target field. Exposed as
	// configuration because the name-matching heuristic is inherently
	// ambiguous.
	Conventions []string

	// TimeField is the default field for time bucketing and timeframe
	// ranges when the intent does not declare one.
	TimeField string
}

// defaultConventions is the out-of-the-box field-role candidate list.
var defaultConventions = []string{"message", "content", "title", "description", "text", "body", "name"}

// Default returns the stock perspective for a kind.
func Default(k Kind) Perspective {
	conventions := append([]string(nil), defaultConventions...)
	switch k {
	case EnhancedRecall:
		return Perspective{
			Kind:               EnhancedRecall,
			Description:        "Broad full-text matching with fuzziness and alternative terms",
			Fuzziness:          "AUTO",
			MinimumShouldMatch: "75%",
			Size:               20,
			BoostFields:        true,
			Conventions:        conventions,
			TimeField:          "@timestamp",
		}
	case StatisticalAnalysis:
		return Perspective{
			Kind:        StatisticalAnalysis,
			Description: "Aggregation-centric summarization, no hit list",
			Size:        0,
			Conventions: conventions,
			TimeField:   "@timestamp",
		}
	case TimeSeries:
		return Perspective{
			Kind:        TimeSeries,
			Description: "Date-histogram bucketing over the time field",
			Size:        0,
			Conventions: conventions,
			TimeField:   "@timestamp",
		}
	default:
		return Perspective{
			Kind:        PreciseMatch,
			Description: "Exact filtering on non-analyzed fields",
			Size:        10,
			Conventions: conventions,
			TimeField:   "@timestamp",
		}
	}
}

// Defaults returns the stock perspective set in declaration order.
func Defaults() []Perspective {
	out := make([]Perspective, 0, len(ids))
	for _, k := range All() {
		out = append(out, Default(k))
	}
	return out
}
