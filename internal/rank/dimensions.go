package rank

import (
	"fmt"

	"github.com/querysmith/querysmith/internal/intent"
	"github.com/querysmith/querysmith/internal/schema"
	"github.com/querysmith/querysmith/internal/validate"
)

// Dimension names one quality axis of an evaluation.
type Dimension string

const (
	DimPrecision       Dimension = "precision"
	DimRecall          Dimension = "recall"
	DimComplexity      Dimension = "complexity"
	DimPerformance     Dimension = "performance"
	DimSchemaAlignment Dimension = "schema_alignment"
)

// Weights of the fixed overall-score sum.
var weights = map[Dimension]float64{
	DimPrecision:       0.30,
	DimRecall:          0.25,
	DimComplexity:      0.15,
	DimPerformance:     0.20,
	DimSchemaAlignment: 0.10,
}

// dimensions in stable presentation order.
var dimensions = []Dimension{DimPrecision, DimRecall, DimComplexity, DimPerformance, DimSchemaAlignment}

// score is one dimension's result with its supporting reasons.
type score struct {
	value   float64
	reasons []string
}

func (s *score) adjust(delta float64, format string, args ...any) {
	s.value += delta
	s.reasons = append(s.reasons, fmt.Sprintf(format, args...))
}

func (s *score) clamp() {
	if s.value < 0 {
		s.value = 0
	}
	if s.value > 1 {
		s.value = 1
	}
}

// scorePrecision rewards specific, field-targeted filtering and exact
// matching where the intent calls for it; penalizes broad selection.
func scorePrecision(c census, in *intent.Intent) score {
	s := score{value: 0.3}

	if c.exactClauses > 0 {
		bonus := 0.15 * float64(c.exactClauses)
		if bonus > 0.5 {
			bonus = 0.5
		}
		s.adjust(bonus, "%d field-targeted exact clauses", c.exactClauses)
	}
	if wantsExact(in) && c.exactClauses > 0 {
		s.adjust(0.1, "exact matching where the intent asks for filters")
	}
	if c.matchAll && c.filterCount == 0 && c.mustCount == 0 {
		s.adjust(-0.2, "match-all query with no constraints")
	}
	if c.wildcardAll {
		s.adjust(-0.15, "matches across all fields")
	}
	if c.lowNotes > 0 {
		penalty := 0.1 * float64(c.lowNotes)
		if penalty > 0.2 {
			penalty = 0.2
		}
		s.adjust(-penalty, "%d low-confidence field resolutions", c.lowNotes)
	}
	s.clamp()
	return s
}

// scoreRecall rewards fuzzy matching and alternative terms where the
// intent calls for broad retrieval; penalizes over-constraining filter
// stacks.
func scoreRecall(c census, in *intent.Intent) score {
	s := score{value: 0.4}

	if c.fuzzyClauses > 0 {
		if wantsBreadth(in) {
			s.adjust(0.25, "fuzzy matching where the intent suggests free text")
		} else {
			s.adjust(0.1, "fuzzy matching broadens retrieval")
		}
	}
	if c.shouldCount > 0 {
		bonus := 0.1 * float64(c.shouldCount)
		if bonus > 0.2 {
			bonus = 0.2
		}
		s.adjust(bonus, "%d alternative (should) clauses", c.shouldCount)
	}
	if c.multiMatchFanout > 1 {
		s.adjust(0.1, "matches across %d fields", c.multiMatchFanout)
	}
	if c.matchAll {
		s.adjust(0.15, "unconstrained query retrieves everything")
	}
	constraints := c.filterCount + c.mustCount
	if constraints > 3 {
		penalty := 0.05 * float64(constraints-3)
		if penalty > 0.3 {
			penalty = 0.3
		}
		s.adjust(-penalty, "%d hard constraints may over-constrain results", constraints)
	}
	s.clamp()
	return s
}

// scoreComplexity starts at 1.0 and penalizes deep nesting and large
// clause counts. Lower means harder to read and maintain.
func scoreComplexity(c census) score {
	s := score{value: 1.0}

	if c.maxDepth > 2 {
		s.adjust(-0.1*float64(c.maxDepth-2), "boolean nesting %d levels deep", c.maxDepth)
	}
	if c.clauseCount > 10 {
		s.adjust(-0.25, "%d clauses", c.clauseCount)
	} else if c.clauseCount > 6 {
		s.adjust(-0.15, "%d clauses", c.clauseCount)
	}
	s.clamp()
	return s
}

// scorePerformance starts high and penalizes patterns that are
// expensive at query time; rewards cacheable filter-context usage.
func scorePerformance(c census) score {
	s := score{value: 0.9}

	if c.leadingWildcards > 0 {
		s.adjust(-0.2*float64(c.leadingWildcards), "%d leading-wildcard patterns", c.leadingWildcards)
	}
	if c.unknownFields > 0 {
		penalty := 0.1 * float64(c.unknownFields)
		if penalty > 0.3 {
			penalty = 0.3
		}
		s.adjust(-penalty, "%d likely non-indexed fields", c.unknownFields)
	}
	if c.size > 1000 && !c.hasSort {
		s.adjust(-0.15, "requests %d results without pagination", c.size)
	}
	if c.filterCount > 0 {
		s.adjust(0.1, "uses cacheable filter context")
	}
	s.clamp()
	return s
}

// scoreSchemaAlignment rewards referencing only schema-known fields
// with compatible clause types. Neutral 0.5 when no schema is
// available. Validation findings stand in for per-clause type checks:
// the validator has already done that analysis.
func scoreSchemaAlignment(c census, res validate.Result, idx *schema.Index) score {
	if idx == nil || idx.Len() == 0 {
		return score{value: 0.5, reasons: []string{"no schema available"}}
	}
	s := score{value: 1.0}

	known := len(c.fields) - c.unknownFields
	if c.unknownFields > 0 {
		s.value = float64(known) / float64(len(c.fields))
		s.reasons = append(s.reasons, fmt.Sprintf("%d of %d referenced fields resolve in the schema", known, len(c.fields)))
	} else if len(c.fields) > 0 {
		s.reasons = append(s.reasons, "all referenced fields resolve in the schema")
	}

	errors := 0
	warnings := 0
	for _, f := range res.Findings {
		switch f.Severity {
		case validate.SeverityError:
			errors++
		case validate.SeverityWarning:
			warnings++
		}
	}
	if errors > 0 {
		penalty := 0.15 * float64(errors)
		if penalty > 0.45 {
			penalty = 0.45
		}
		s.adjust(-penalty, "%d type-compatibility errors", errors)
	}
	if warnings > 0 {
		penalty := 0.05 * float64(warnings)
		if penalty > 0.2 {
			penalty = 0.2
		}
		s.adjust(-penalty, "%d schema warnings", warnings)
	}
	s.clamp()
	return s
}

// wantsExact reports whether the intent calls for exact matching.
func wantsExact(in *intent.Intent) bool {
	if in == nil {
		return false
	}
	for _, e := range in.Entities {
		if e.Type == intent.EntityFilter || e.Type == intent.EntityRange {
			return true
		}
	}
	return false
}

// wantsBreadth reports whether the intent suggests broad free-text
// retrieval.
func wantsBreadth(in *intent.Intent) bool {
	if in == nil {
		return false
	}
	if in.RawQuery != "" {
		return true
	}
	for _, e := range in.Entities {
		if e.Type == intent.EntityKeyword {
			return true
		}
	}
	return false
}
