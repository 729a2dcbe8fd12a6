package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/querysmith/querysmith/internal/esdsl"
	"github.com/querysmith/querysmith/internal/perspective"
	"github.com/querysmith/querysmith/internal/rank"
	"github.com/querysmith/querysmith/internal/validate"
)

// RankReport is the rank command's JSON payload.
type RankReport struct {
	Recommended  *EvaluationReport  `json:"recommended,omitempty"`
	Evaluations  []EvaluationReport `json:"evaluations"`
	Alternatives []EvaluationReport `json:"alternatives,omitempty"`
	Consensus    string             `json:"consensus,omitempty"`
}

// EvaluationReport is one candidate's scores in the report.
type EvaluationReport struct {
	Perspective string             `json:"perspective"`
	Overall     float64            `json:"overall"`
	Scores      map[string]float64 `json:"scores"`
	Strengths   []string           `json:"strengths,omitempty"`
	Weaknesses  []string           `json:"weaknesses,omitempty"`
	Explanation string             `json:"explanation"`
}

// NewRankCommand creates the rank command.
func NewRankCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		mappingPath string
		intentPath  string
	)

	cmd := &cobra.Command{
		Use:           "rank <document.json>...",
		Short:         "Score and order candidate query documents",
		Long:          "Validate each candidate document against the mapping, score it along five quality dimensions, and print the ranked list with a recommendation.",
		Args:          cobra.RangeArgs(1, 4),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRank(rootOpts, args, mappingPath, intentPath, cmd)
		},
	}
	cmd.Flags().StringVar(&mappingPath, "mapping", "", "index mapping file (JSON)")
	cmd.Flags().StringVar(&intentPath, "intent", "", "intent file (JSON), improves intent-sensitive scoring")
	cmd.MarkFlagRequired("mapping")
	return cmd
}

func runRank(opts *RootOptions, docPaths []string, mappingPath, intentPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	idx, buildErrs, err := loadMapping(mappingPath)
	if err != nil {
		formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return err
	}
	for _, e := range buildErrs {
		formatter.VerboseLog("schema: %v", e)
	}

	in := emptyIntent()
	if intentPath != "" {
		loaded, issues, err := loadIntent(intentPath)
		if err != nil {
			formatter.Error(ErrCodeBadInput, err.Error(), nil)
			return err
		}
		for _, issue := range issues {
			formatter.VerboseLog("intent: %v", issue)
		}
		in = loaded
	}

	// Candidate order maps onto perspective kinds positionally: ranking
	// needs a stable identity per candidate and file paths are not part
	// of the Candidate contract.
	var candidates []rank.Candidate
	for i, path := range docPaths {
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			err := WrapExitError(ExitCommandError, fmt.Sprintf("document file %s", path), readErr)
			formatter.Error(ErrCodeNotFound, err.Error(), nil)
			return err
		}
		doc, parseErr := esdsl.ParseDocument(data)
		if parseErr != nil {
			err := WrapExitError(ExitCommandError, fmt.Sprintf("document file %s", path), parseErr)
			formatter.Error(ErrCodeBadInput, err.Error(), nil)
			return err
		}
		candidates = append(candidates, rank.Candidate{
			Perspective: perspective.Kind(i),
			Document:    doc,
			Validation:  validate.Validate(doc, idx),
		})
	}

	outcome := rank.Rank(candidates, in, idx)
	report := rankReport(outcome)

	if opts.Format == "json" {
		return formatter.Success(report)
	}
	out := cmd.OutOrStdout()
	if report.Recommended != nil {
		fmt.Fprintf(out, "recommended: %s (%.2f)\n", report.Recommended.Perspective, report.Recommended.Overall)
	}
	for _, e := range report.Evaluations {
		fmt.Fprintf(out, "  %-22s %.2f  %s\n", e.Perspective, e.Overall, e.Explanation)
	}
	if report.Consensus != "" {
		fmt.Fprintf(out, "consensus: %s\n", report.Consensus)
	}
	return nil
}

func rankReport(outcome rank.Outcome) RankReport {
	report := RankReport{Consensus: outcome.Consensus}
	for _, e := range outcome.Evaluations {
		report.Evaluations = append(report.Evaluations, evaluationReport(e))
	}
	if outcome.Recommended != nil {
		r := evaluationReport(*outcome.Recommended)
		report.Recommended = &r
	}
	for _, e := range outcome.Alternatives {
		report.Alternatives = append(report.Alternatives, evaluationReport(e))
	}
	return report
}

func evaluationReport(e rank.Evaluation) EvaluationReport {
	scores := map[string]float64{}
	for dim, v := range e.Scores {
		scores[string(dim)] = v
	}
	return EvaluationReport{
		Perspective: e.Perspective.ID(),
		Overall:     e.Overall,
		Scores:      scores,
		Strengths:   e.Strengths,
		Weaknesses:  e.Weaknesses,
		Explanation: e.Explanation,
	}
}
