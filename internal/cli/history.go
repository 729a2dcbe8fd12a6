package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/querysmith/querysmith/internal/history"
)

// HistoryEntryReport is one recorded request in the report.
type HistoryEntryReport struct {
	RequestID    string  `json:"request_id"`
	IndexPattern string  `json:"index_pattern"`
	RawQuery     string  `json:"raw_query,omitempty"`
	Perspective  string  `json:"perspective"`
	Overall      float64 `json:"overall"`
	Document     string  `json:"document"`
	CreatedAt    string  `json:"created_at"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		dbPath string
		limit  int
	)

	cmd := &cobra.Command{
		Use:           "history",
		Short:         "List recently recorded requests",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(rootOpts, dbPath, limit, cmd)
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "history database path (SQLite)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of entries to show")
	cmd.MarkFlagRequired("db")
	return cmd
}

func runHistory(opts *RootOptions, dbPath string, limit int, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	store, err := history.Open(dbPath)
	if err != nil {
		wrapped := WrapExitError(ExitCommandError, "open history database", err)
		formatter.Error(ErrCodeStore, wrapped.Error(), nil)
		return wrapped
	}
	defer store.Close()

	entries, err := store.Recent(cmd.Context(), limit)
	if err != nil {
		wrapped := WrapExitError(ExitCommandError, "read history", err)
		formatter.Error(ErrCodeStore, wrapped.Error(), nil)
		return wrapped
	}

	reports := make([]HistoryEntryReport, 0, len(entries))
	for _, e := range entries {
		reports = append(reports, HistoryEntryReport{
			RequestID:    e.RequestID,
			IndexPattern: e.IndexPattern,
			RawQuery:     e.RawQuery,
			Perspective:  e.Perspective,
			Overall:      e.Overall,
			Document:     string(e.Document),
			CreatedAt:    e.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	if opts.Format == "json" {
		return formatter.Success(reports)
	}
	out := cmd.OutOrStdout()
	if len(reports) == 0 {
		fmt.Fprintln(out, "no recorded requests")
		return nil
	}
	for _, r := range reports {
		fmt.Fprintf(out, "%s  %-22s %.2f  %s\n", r.CreatedAt, r.Perspective, r.Overall, r.RawQuery)
		formatter.VerboseLog("  %s %s", r.RequestID, r.Document)
	}
	return nil
}
