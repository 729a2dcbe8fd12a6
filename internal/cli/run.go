package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/querysmith/querysmith/internal/history"
	"github.com/querysmith/querysmith/internal/pipeline"
)

// RunReport is the run command's JSON payload.
type RunReport struct {
	RequestID   string     `json:"request_id"`
	Document    string     `json:"document,omitempty"`
	Rank        RankReport `json:"rank"`
	Candidates  int        `json:"candidates"`
	SchemaErrs  []string   `json:"schema_errors,omitempty"`
	IntentIssue []string   `json:"intent_issues,omitempty"`
}

// NewRunCommand creates the run command: the full synthesize →
// validate → rank pipeline over every perspective.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		mappingPath string
		historyPath string
		cacheTTL    time.Duration
	)

	cmd := &cobra.Command{
		Use:           "run <intent.json>",
		Short:         "Synthesize, validate, and rank candidates for an intent",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(rootOpts, args[0], mappingPath, historyPath, cacheTTL, cmd)
		},
	}
	cmd.Flags().StringVar(&mappingPath, "mapping", "", "index mapping file (JSON)")
	cmd.Flags().StringVar(&historyPath, "history", "", "record the request in this SQLite database")
	cmd.Flags().DurationVar(&cacheTTL, "cache-ttl", 0, "schema cache TTL (0 disables caching)")
	cmd.MarkFlagRequired("mapping")
	return cmd
}

func runRun(opts *RootOptions, intentPath, mappingPath, historyPath string, cacheTTL time.Duration, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	in, issues, err := loadIntent(intentPath)
	if err != nil {
		formatter.Error(ErrCodeBadInput, err.Error(), nil)
		return err
	}
	perspectives, err := loadPerspectives(opts)
	if err != nil {
		formatter.Error(ErrCodeBadFlag, err.Error(), nil)
		return err
	}

	var store pipeline.HistoryStore
	if historyPath != "" {
		s, openErr := history.Open(historyPath)
		if openErr != nil {
			err := WrapExitError(ExitCommandError, "open history database", openErr)
			formatter.Error(ErrCodeStore, err.Error(), nil)
			return err
		}
		defer s.Close()
		store = s
	}

	logger := zap.NewNop()
	if opts.Verbose {
		if l, logErr := zap.NewDevelopment(); logErr == nil {
			logger = l
			defer logger.Sync()
		}
	}

	p, err := pipeline.New(pipeline.FileSchemaProvider{Path: mappingPath}, nil, store, pipeline.Options{
		Perspectives: perspectives,
		CacheTTL:     cacheTTL,
		Logger:       logger,
	})
	if err != nil {
		wrapped := WrapExitError(ExitCommandError, "assemble pipeline", err)
		formatter.Error(ErrCodeBadFlag, wrapped.Error(), nil)
		return wrapped
	}

	resp, err := p.RunIntent(cmd.Context(), mappingPath, in)
	if err != nil {
		wrapped := WrapExitError(ExitCommandError, "run pipeline", err)
		formatter.Error(ErrCodeBadInput, wrapped.Error(), nil)
		return wrapped
	}
	resp.IntentIssues = issues

	report := RunReport{
		RequestID:  resp.RequestID,
		Rank:       rankReport(resp.Outcome),
		Candidates: len(resp.Candidates),
	}
	for _, e := range resp.SchemaErrs {
		report.SchemaErrs = append(report.SchemaErrs, e.Error())
	}
	for _, e := range resp.IntentIssues {
		report.IntentIssue = append(report.IntentIssue, e.Error())
	}
	if rec := resp.Outcome.Recommended; rec != nil && rec.Candidate >= 0 && rec.Candidate < len(resp.Candidates) {
		if body, marshalErr := resp.Candidates[rec.Candidate].Document.MarshalCanonicalJSON(); marshalErr == nil {
			report.Document = string(body)
		}
	}

	if opts.Format == "json" {
		return formatter.Success(report)
	}
	out := cmd.OutOrStdout()
	if report.Rank.Recommended != nil {
		fmt.Fprintf(out, "recommended: %s (%.2f)\n", report.Rank.Recommended.Perspective, report.Rank.Recommended.Overall)
	}
	if report.Document != "" {
		fmt.Fprintln(out, report.Document)
	}
	for _, e := range report.Rank.Evaluations {
		fmt.Fprintf(out, "  %-22s %.2f  %s\n", e.Perspective, e.Overall, e.Explanation)
	}
	if report.Rank.Consensus != "" {
		fmt.Fprintf(out, "consensus: %s\n", report.Rank.Consensus)
	}
	for _, issue := range report.IntentIssue {
		formatter.VerboseLog("intent: %s", issue)
	}
	return nil
}
