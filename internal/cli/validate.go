package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/querysmith/querysmith/internal/esdsl"
	"github.com/querysmith/querysmith/internal/validate"
)

// ValidationReport is the validate command's JSON payload.
type ValidationReport struct {
	Valid    bool            `json:"valid"`
	Findings []FindingReport `json:"findings,omitempty"`
}

// FindingReport is one finding in the report.
type FindingReport struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Field    string `json:"field,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var mappingPath string

	cmd := &cobra.Command{
		Use:           "validate <document.json>",
		Short:         "Check a query document against an index mapping",
		Long:          "Parse a query document and report structural and type findings against the mapping's field index. Exits non-zero when the document has error findings.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], mappingPath, cmd)
		},
	}
	cmd.Flags().StringVar(&mappingPath, "mapping", "", "index mapping file (JSON)")
	cmd.MarkFlagRequired("mapping")
	return cmd
}

func runValidate(opts *RootOptions, docPath, mappingPath string, cmd *cobra.Command) error {
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

	data, readErr := os.ReadFile(docPath)
	if readErr != nil {
		err := WrapExitError(ExitCommandError, fmt.Sprintf("document file %s", docPath), readErr)
		formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return err
	}
	doc, parseErr := esdsl.ParseDocument(data)
	if parseErr != nil {
		err := WrapExitError(ExitCommandError, fmt.Sprintf("document file %s", docPath), parseErr)
		formatter.Error(ErrCodeBadInput, err.Error(), nil)
		return err
	}

	result := validate.Validate(doc, idx)
	report := ValidationReport{Valid: result.IsValid}
	for _, f := range result.Findings {
		report.Findings = append(report.Findings, FindingReport{
			Severity: string(f.Severity),
			Message:  f.Message,
			Field:    f.Field,
		})
	}

	if opts.Format == "json" {
		if err := formatter.Success(report); err != nil {
			return err
		}
	} else {
		out := cmd.OutOrStdout()
		if result.IsValid {
			fmt.Fprintln(out, "valid")
		} else {
			fmt.Fprintln(out, "invalid")
		}
		for _, f := range report.Findings {
			if f.Field != "" {
				fmt.Fprintf(out, "  %-10s %s (%s)\n", f.Severity, f.Message, f.Field)
			} else {
				fmt.Fprintf(out, "  %-10s %s\n", f.Severity, f.Message)
			}
		}
	}

	if !result.IsValid {
		return NewExitError(ExitFailure, "document has error findings")
	}
	return nil
}
