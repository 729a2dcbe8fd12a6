package rank

import (
	"fmt"
	"strings"
)

// consensusDescription derives what the top (up to three) candidates
// agree on: hit-list versus aggregation shape, shared referenced
// fields, shared filtering, and shared aggregation kinds.
func consensusDescription(candidates []Candidate, evals []Evaluation) string {
	top := evals
	if len(top) > 3 {
		top = top[:3]
	}

	// Consensus is structural; schema context is not needed here.
	var summaries []census
	for _, eval := range top {
		if eval.Candidate < 0 || eval.Candidate >= len(candidates) {
			continue
		}
		summaries = append(summaries, takeCensus(candidates[eval.Candidate].Document, nil))
	}
	if len(summaries) == 0 {
		return ""
	}
	if len(summaries) == 1 {
		return "single candidate, no cross-candidate consensus"
	}

	var parts []string

	allAggs, allHits := true, true
	for _, c := range summaries {
		if !c.hasAggs {
			allAggs = false
		}
		if c.hasAggs && c.size == 0 {
			allHits = false
		}
	}
	switch {
	case allAggs:
		parts = append(parts, "all top candidates summarize with aggregations")
	case allHits:
		parts = append(parts, "all top candidates return document hit lists")
	default:
		parts = append(parts, "top candidates split between hit lists and aggregations")
	}

	var fieldSets, kindSets [][]string
	allFiltered := true
	for _, c := range summaries {
		fieldSets = append(fieldSets, c.fields)
		kindSets = append(kindSets, c.aggKinds)
		if c.filterCount == 0 {
			allFiltered = false
		}
	}
	if shared := intersectStrings(fieldSets); len(shared) > 0 {
		parts = append(parts, fmt.Sprintf("all reference %s", strings.Join(shared, ", ")))
	}
	if allFiltered {
		parts = append(parts, "all apply filter-context constraints")
	}
	if shared := intersectStrings(kindSets); len(shared) > 0 {
		parts = append(parts, fmt.Sprintf("all aggregate with %s", strings.Join(shared, ", ")))
	}

	return strings.Join(parts, "; ")
}

// intersectStrings returns the intersection of the given string sets,
// ordered as in the first set.
func intersectStrings(sets [][]string) []string {
	if len(sets) == 0 {
		return nil
	}
	counts := map[string]int{}
	for _, set := range sets {
		seen := map[string]struct{}{}
		for _, s := range set {
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
			counts[s]++
		}
	}
	var out []string
	for _, s := range sets[0] {
		if counts[s] == len(sets) {
			out = append(out, s)
		}
	}
	return out
}
