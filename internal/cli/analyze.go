package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/querysmith/querysmith/internal/schema"
)

// SchemaReport is the analyze-schema command's JSON payload.
type SchemaReport struct {
	FieldCount int           `json:"field_count"`
	Fields     []FieldReport `json:"fields"`
	Summary    string        `json:"summary"`
	Problems   []string      `json:"problems,omitempty"`
}

// FieldReport is one field's row in the report.
type FieldReport struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	Searchable   bool   `json:"searchable"`
	Aggregatable bool   `json:"aggregatable"`
}

// NewAnalyzeSchemaCommand creates the analyze-schema command.
func NewAnalyzeSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "analyze-schema <mapping.json>",
		Short:         "Build and print the field index for a mapping file",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyzeSchema(rootOpts, args[0], cmd)
		},
	}
}

func runAnalyzeSchema(opts *RootOptions, mappingPath string, cmd *cobra.Command) error {
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
	formatter.VerboseLog("analyzed %s: %d fields, %d problems", mappingPath, idx.Len(), len(buildErrs))

	report := SchemaReport{
		FieldCount: idx.Len(),
		Summary:    idx.Summary(schema.DefaultSummaryFields),
	}
	for _, path := range idx.Paths() {
		f, _ := idx.Get(path)
		report.Fields = append(report.Fields, FieldReport{
			Name:         f.Name,
			Type:         string(f.Type),
			Searchable:   f.Searchable,
			Aggregatable: f.Aggregatable,
		})
	}
	for _, e := range buildErrs {
		report.Problems = append(report.Problems, e.Error())
	}

	if opts.Format == "json" {
		return formatter.Success(report)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d fields\n", report.FieldCount)
	for _, f := range report.Fields {
		fmt.Fprintf(out, "  %-40s %-12s searchable=%-5v aggregatable=%v\n", f.Name, f.Type, f.Searchable, f.Aggregatable)
	}
	for _, p := range report.Problems {
		fmt.Fprintf(out, "problem: %s\n", p)
	}
	return nil
}
