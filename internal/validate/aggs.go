package validate

import (
	"sort"

	"github.com/querysmith/querysmith/internal/esdsl"
	"github.com/querysmith/querysmith/internal/schema"
)

// checkAgg validates one aggregation node and recurses into its
// sub-aggregations.
func (v *validator) checkAgg(name string, a esdsl.Agg) {
	if a.Field == "" {
		v.add(SeverityError, "", "aggregation %q (%s) is missing a field", name, a.Kind)
	} else {
		v.checkAggField(name, a)
	}
	subNames := make([]string, 0, len(a.Subs))
	for subName := range a.Subs {
		subNames = append(subNames, subName)
	}
	sort.Strings(subNames)
	for _, subName := range subNames {
		if a.Kind.IsMetric() {
			v.add(SeverityError, "", "metric aggregation %q (%s) cannot carry sub-aggregation %q", name, a.Kind, subName)
			continue
		}
		v.checkAgg(subName, a.Subs[subName])
	}
}

// checkAggField verifies field/kind compatibility per aggregation kind.
func (v *validator) checkAggField(name string, a esdsl.Agg) {
	f, ok := v.checkFieldExists(string(a.Kind)+" aggregation", a.Field)
	if !ok {
		return
	}

	switch a.Kind {
	case esdsl.AggDateHistogram:
		if !f.Type.IsDate() {
			v.add(SeverityError, a.Field, "date_histogram aggregation %q on %s field %q, a date field is required", name, f.Type, a.Field)
		}
	case esdsl.AggHistogram:
		if !f.Type.IsNumeric() {
			v.add(SeverityError, a.Field, "histogram aggregation %q on %s field %q, a numeric field is required", name, f.Type, a.Field)
		}
	case esdsl.AggSignificantText:
		if f.Type != schema.TypeText {
			v.add(SeverityError, a.Field, "significant_text aggregation %q on %s field %q, a text field is required", name, f.Type, a.Field)
		}
	case esdsl.AggTerms:
		if f.Type == schema.TypeText {
			if variant := v.idx.KeywordVariant(a.Field); variant != "" {
				v.add(SeverityWarning, a.Field, "terms aggregation %q on analyzed text field %q, use %q", name, a.Field, variant)
			} else {
				v.add(SeverityWarning, a.Field, "terms aggregation %q on analyzed text field %q buckets analyzed tokens", name, a.Field)
			}
		}
	case esdsl.AggCardinality:
		if f.Type == schema.TypeText {
			v.add(SeverityWarning, a.Field, "cardinality aggregation %q on analyzed text field %q counts analyzed tokens", name, a.Field)
		}
	default:
		if a.Kind.IsMetric() && !f.Type.IsNumeric() && !f.Type.IsDate() {
			v.add(SeverityError, a.Field, "%s aggregation %q on %s field %q, a numeric or date field is required", a.Kind, name, f.Type, a.Field)
		}
	}
}
