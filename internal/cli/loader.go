package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/querysmith/querysmith/internal/intent"
	"github.com/querysmith/querysmith/internal/perspective"
	"github.com/querysmith/querysmith/internal/schema"
)

// Error codes used in JSON error envelopes.
const (
	ErrCodeNotFound = "E001" // input file missing
	ErrCodeBadInput = "E002" // input file unparseable
	ErrCodeBadFlag  = "E003" // invalid flag value
	ErrCodeInvalid  = "E004" // document failed validation
	ErrCodeStore    = "E005" // history database problem
)

// loadMapping reads a JSON mapping tree and builds the field index.
// Schema-analysis problems are non-fatal and returned for reporting.
func loadMapping(path string) (*schema.Index, []error, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, fmt.Sprintf("mapping file %s", path), err)
	}
	var tree map[string]any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, nil, WrapExitError(ExitCommandError, fmt.Sprintf("mapping file %s is not valid JSON", path), err)
	}
	idx, _, buildErrs := schema.Build(tree)
	return idx, buildErrs, nil
}

// loadIntent reads and schema-checks an intent document. Violations
// are non-fatal: the best-effort intent is returned alongside them.
func loadIntent(path string) (*intent.Intent, []error, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, fmt.Sprintf("intent file %s", path), err)
	}
	in, issues := intent.Load(data)
	if in == nil {
		return nil, nil, WrapExitError(ExitCommandError, fmt.Sprintf("intent file %s is not decodable", path), issues[0])
	}
	return in, issues, nil
}

// loadPerspectives resolves the perspective set, with config overrides
// applied when the root --config flag names a file.
func loadPerspectives(opts *RootOptions) ([]perspective.Perspective, error) {
	cfg, err := perspective.LoadConfig(opts.Config)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "perspective config", err)
	}
	return cfg.ApplyAll(), nil
}

// emptyIntent is the neutral intent used when the caller supplies
// candidate documents without the intent that produced them.
func emptyIntent() *intent.Intent {
	return &intent.Intent{QueryType: intent.QueryUnknown}
}

// perspectiveByID resolves one perspective with overrides applied.
func perspectiveByID(opts *RootOptions, id string) (perspective.Perspective, error) {
	cfg, err := perspective.LoadConfig(opts.Config)
	if err != nil {
		return perspective.Perspective{}, WrapExitError(ExitCommandError, "perspective config", err)
	}
	return cfg.Apply(perspective.ParseKind(id)), nil
}
