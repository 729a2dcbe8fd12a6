package intent

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cuejson "cuelang.org/go/encoding/json"
)

//go:embed intent.cue
var intentSchema string

// Load decodes an intent document from JSON and checks it against the
// embedded CUE schema.
//
// Schema violations never abort loading: extraction output is allowed
// to be partial or low-confidence, so Load returns the best-effort
// Intent alongside the violation list. Only undecodable JSON yields a
// nil Intent.
func Load(data []byte) (*Intent, []error) {
	var in Intent
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, []error{fmt.Errorf("decode intent: %w", err)}
	}

	errs := checkSchema(data)
	if in.QueryType == "" {
		in.QueryType = QueryUnknown
	}
	return &in, errs
}

// checkSchema unifies the JSON document with the intent schema and
// returns one error per violation.
func checkSchema(data []byte) []error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(intentSchema, cue.Filename("intent.cue"))
	if err := schema.Err(); err != nil {
		return []error{fmt.Errorf("intent schema: %w", err)}
	}

	expr, err := cuejson.Extract("intent.json", data)
	if err != nil {
		return []error{fmt.Errorf("parse intent document: %w", err)}
	}
	doc := ctx.BuildExpr(expr)
	if err := doc.Err(); err != nil {
		return []error{fmt.Errorf("build intent document: %w", err)}
	}

	unified := schema.Unify(doc)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		var out []error
		for _, e := range cueerrors.Errors(err) {
			out = append(out, fmt.Errorf("intent schema: %s", e.Error()))
		}
		return out
	}
	return nil
}
