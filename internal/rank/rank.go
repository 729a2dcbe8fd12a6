// Package rank scores and orders candidate query documents along five
// quality dimensions and selects a recommendation.
//
// Rank is deterministic: the same candidates, intent, and schema always
// produce the same scores and the same ordering. The scoring weights
// and dimensions are the contract; the per-dimension heuristics are
// documented on their scorer functions.
package rank

import (
	"fmt"
	"sort"
	"strings"

	"github.com/querysmith/querysmith/internal/esdsl"
	"github.com/querysmith/querysmith/internal/intent"
	"github.com/querysmith/querysmith/internal/perspective"
	"github.com/querysmith/querysmith/internal/schema"
	"github.com/querysmith/querysmith/internal/validate"
)

// alternativeFloor is the minimum overall score for a candidate to be
// surfaced as a viable alternative.
const alternativeFloor = 0.3

// maxAlternatives bounds how many alternatives are surfaced beside the
// recommendation.
const maxAlternatives = 2

// strongThreshold and weakThreshold gate the strengths/weaknesses
// lists: a dimension only counts as a strength or weakness when it is
// genuinely strong or weak.
const (
	strongThreshold = 0.6
	weakThreshold   = 0.5
)

// Candidate is one already-validated query document entering the
// ranking.
type Candidate struct {
	Perspective perspective.Kind
	Document    *esdsl.Document
	Validation  validate.Result
}

// Evaluation is the ranker's judgment of one candidate.
type Evaluation struct {
	// Candidate indexes into the input candidate slice. Perspective is
	// presentation only; the same kind may appear more than once.
	Candidate   int
	Perspective perspective.Kind
	Scores      map[Dimension]float64
	Reasons     map[Dimension][]string
	Overall     float64
	Strengths   []string
	Weaknesses  []string
	Explanation string
}

// Outcome is the full ranking result.
type Outcome struct {
	// Recommended indexes into Evaluations; always 0 when any
	// candidates were supplied (Evaluations is sorted best-first).
	Recommended *Evaluation

	// Evaluations is sorted by overall score, descending. Ties keep the
	// candidates' input order.
	Evaluations []Evaluation

	// Alternatives lists up to two further candidates with overall
	// score at or above the inclusion floor.
	Alternatives []Evaluation

	// Consensus describes what the top candidates agree on.
	Consensus string
}

// Rank evaluates every candidate and orders them by overall score.
// An empty candidate set yields an empty outcome, not an error.
func Rank(candidates []Candidate, in *intent.Intent, idx *schema.Index) Outcome {
	evals := make([]Evaluation, 0, len(candidates))
	for i, cand := range candidates {
		evals = append(evals, evaluate(cand, i, in, idx))
	}

	sort.SliceStable(evals, func(i, j int) bool {
		return evals[i].Overall > evals[j].Overall
	})

	out := Outcome{Evaluations: evals}
	if len(evals) == 0 {
		return out
	}
	out.Recommended = &evals[0]

	for i := 1; i < len(evals) && len(out.Alternatives) < maxAlternatives; i++ {
		if evals[i].Overall >= alternativeFloor {
			out.Alternatives = append(out.Alternatives, evals[i])
		}
	}

	out.Consensus = consensusDescription(candidates, evals)
	return out
}

// evaluate computes the five dimension scores and the weighted overall
// for one candidate.
func evaluate(cand Candidate, pos int, in *intent.Intent, idx *schema.Index) Evaluation {
	c := takeCensus(cand.Document, idx)

	scores := map[Dimension]score{
		DimPrecision:       scorePrecision(c, in),
		DimRecall:          scoreRecall(c, in),
		DimComplexity:      scoreComplexity(c),
		DimPerformance:     scorePerformance(c),
		DimSchemaAlignment: scoreSchemaAlignment(c, cand.Validation, idx),
	}

	eval := Evaluation{
		Candidate:   pos,
		Perspective: cand.Perspective,
		Scores:      map[Dimension]float64{},
		Reasons:     map[Dimension][]string{},
	}
	for dim, s := range scores {
		eval.Scores[dim] = s.value
		eval.Reasons[dim] = s.reasons
		eval.Overall += weights[dim] * s.value
	}

	eval.Strengths, eval.Weaknesses = strengthsAndWeaknesses(eval.Scores)
	eval.Explanation = explain(eval)
	return eval
}

// strengthsAndWeaknesses picks the top two dimensions scoring at least
// strongThreshold and the bottom two scoring at most weakThreshold.
func strengthsAndWeaknesses(scores map[Dimension]float64) (strengths, weaknesses []string) {
	ordered := make([]Dimension, len(dimensions))
	copy(ordered, dimensions)
	sort.SliceStable(ordered, func(i, j int) bool {
		return scores[ordered[i]] > scores[ordered[j]]
	})

	for _, dim := range ordered[:2] {
		if scores[dim] >= strongThreshold {
			strengths = append(strengths, string(dim))
		}
	}
	for i := len(ordered) - 1; i >= len(ordered)-2; i-- {
		if scores[ordered[i]] <= weakThreshold {
			weaknesses = append(weaknesses, string(ordered[i]))
		}
	}
	return strengths, weaknesses
}

// explain renders a one-sentence natural-language summary of an
// evaluation.
func explain(eval Evaluation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s scored %.2f overall", eval.Perspective.ID(), eval.Overall)
	if len(eval.Strengths) > 0 {
		parts := make([]string, 0, len(eval.Strengths))
		for _, s := range eval.Strengths {
			parts = append(parts, fmt.Sprintf("%s %.2f", s, eval.Scores[Dimension(s)]))
		}
		fmt.Fprintf(&b, "; strong on %s", strings.Join(parts, " and "))
	}
	if len(eval.Weaknesses) > 0 {
		parts := make([]string, 0, len(eval.Weaknesses))
		for _, w := range eval.Weaknesses {
			parts = append(parts, fmt.Sprintf("%s %.2f", w, eval.Scores[Dimension(w)]))
		}
		fmt.Fprintf(&b, "; weak on %s", strings.Join(parts, " and "))
	}
	b.WriteString(".")
	return b.String()
}
