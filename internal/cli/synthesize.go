package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/querysmith/querysmith/internal/synth"
)

// NewSynthesizeCommand creates the synthesize command.
func NewSynthesizeCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		mappingPath   string
		perspectiveID string
	)

	cmd := &cobra.Command{
		Use:           "synthesize <intent.json>",
		Short:         "Compile an intent into a query document for one perspective",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSynthesize(rootOpts, args[0], mappingPath, perspectiveID, cmd)
		},
	}
	cmd.Flags().StringVar(&mappingPath, "mapping", "", "index mapping file (JSON)")
	cmd.Flags().StringVar(&perspectiveID, "perspective", "precise-match", "perspective id")
	cmd.MarkFlagRequired("mapping")
	return cmd
}

func runSynthesize(opts *RootOptions, intentPath, mappingPath, perspectiveID string, cmd *cobra.Command) error {
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
	in, issues, err := loadIntent(intentPath)
	if err != nil {
		formatter.Error(ErrCodeBadInput, err.Error(), nil)
		return err
	}
	for _, issue := range issues {
		formatter.VerboseLog("intent: %v", issue)
	}
	for _, e := range buildErrs {
		formatter.VerboseLog("schema: %v", e)
	}

	p, err := perspectiveByID(opts, perspectiveID)
	if err != nil {
		formatter.Error(ErrCodeBadFlag, err.Error(), nil)
		return err
	}

	doc := synth.Synthesize(in, p, idx)
	body, marshalErr := doc.MarshalCanonicalJSON()
	if marshalErr != nil {
		err := WrapExitError(ExitCommandError, "marshal query document", marshalErr)
		formatter.Error(ErrCodeBadInput, err.Error(), nil)
		return err
	}

	if opts.Format == "json" {
		return formatter.Success(map[string]any{
			"perspective": p.Kind.ID(),
			"document":    string(body),
			"notes":       doc.Notes,
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(body))
	for _, n := range doc.Notes {
		fmt.Fprintf(cmd.OutOrStdout(), "note (%.1f): %s\n", n.Confidence, n.Message)
	}
	return nil
}
