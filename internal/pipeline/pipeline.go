// Package pipeline wires the pure core components into the
// synthesize → validate → rank control flow.
//
// The core packages stay pure; everything stateful or I/O-shaped lives
// here: the schema cache, the collaborator interfaces, logging, and the
// per-request fan-out. Candidates are synthesized and validated
// independently, so they run in parallel; ranking is the single barrier
// that waits for the full candidate set.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/querysmith/querysmith/internal/esdsl"
	"github.com/querysmith/querysmith/internal/intent"
	"github.com/querysmith/querysmith/internal/perspective"
	"github.com/querysmith/querysmith/internal/rank"
	"github.com/querysmith/querysmith/internal/schema"
	"github.com/querysmith/querysmith/internal/synth"
	"github.com/querysmith/querysmith/internal/validate"
)

// SchemaProvider supplies raw mapping trees keyed by index pattern.
// Implementations may return cached or best-effort mock trees on
// failure; the pipeline does not distinguish provenance.
type SchemaProvider interface {
	Mapping(ctx context.Context, indexPattern string) (map[string]any, error)
}

// IntentExtractor turns free text into a structured intent. Backed by
// an external text-understanding service; its output may be partial or
// low-confidence and the pipeline still proceeds.
type IntentExtractor interface {
	Extract(ctx context.Context, query, schemaSummary string) (*intent.Intent, error)
}

// HistoryStore records completed requests. Persistence policy belongs
// to the implementation, not the pipeline.
type HistoryStore interface {
	Record(ctx context.Context, e HistoryEntry) error
}

// HistoryEntry is one completed request as handed to the history store.
type HistoryEntry struct {
	RequestID    string
	IndexPattern string
	RawQuery     string
	Perspective  string
	Overall      float64
	Document     []byte // canonical JSON of the recommended document
	CreatedAt    time.Time
}

// CandidateResult pairs one perspective's document with its validation.
type CandidateResult struct {
	ID          string
	Perspective perspective.Kind
	Document    *esdsl.Document
	Validation  validate.Result
}

// Response is the pipeline's answer for one request.
type Response struct {
	RequestID string
	Intent    *intent.Intent

	// IntentIssues carries schema violations from intent loading, when
	// the caller routed the intent through intent.Load.
	IntentIssues []error

	// SchemaErrs carries non-fatal schema-analysis problems.
	SchemaErrs []error

	Candidates []CandidateResult
	Outcome    rank.Outcome
}

// Options configures a Pipeline.
type Options struct {
	// Perspectives to synthesize per request. Defaults to the stock
	// four when empty.
	Perspectives []perspective.Perspective

	// CacheTTL bounds how long an analyzed schema is reused. Zero
	// disables caching.
	CacheTTL time.Duration

	Logger *zap.Logger
}

// Pipeline orchestrates one request end to end.
type Pipeline struct {
	schemas   SchemaProvider
	extractor IntentExtractor
	history   HistoryStore // optional

	perspectives []perspective.Perspective
	cache        *schemaCache
	log          *zap.Logger
	now          func() time.Time
}

// New assembles a pipeline. extractor may be nil when callers supply
// ready-made intents via RunIntent; history may be nil to skip
// recording.
func New(schemas SchemaProvider, extractor IntentExtractor, history HistoryStore, opts Options) (*Pipeline, error) {
	if schemas == nil {
		return nil, fmt.Errorf("pipeline: schema provider is required")
	}
	perspectives := opts.Perspectives
	if len(perspectives) == 0 {
		perspectives = perspective.Defaults()
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		schemas:      schemas,
		extractor:    extractor,
		history:      history,
		perspectives: perspectives,
		cache:        newSchemaCache(opts.CacheTTL),
		log:          log,
		now:          time.Now,
	}, nil
}

// Run handles a free-text request: schema analysis, intent extraction,
// then RunIntent.
func (p *Pipeline) Run(ctx context.Context, indexPattern, query string) (*Response, error) {
	if p.extractor == nil {
		return nil, fmt.Errorf("pipeline: no intent extractor configured")
	}
	idx, schemaErrs := p.index(ctx, indexPattern)

	in, err := p.extractor.Extract(ctx, query, idx.Summary(schema.DefaultSummaryFields))
	if err != nil {
		// Extraction failure degrades to an unknown-type intent carrying
		// the raw query; synthesis still produces a best-effort answer.
		p.log.Warn("intent extraction failed, proceeding with raw query",
			zap.String("index_pattern", indexPattern), zap.Error(err))
		in = &intent.Intent{QueryType: intent.QueryUnknown, RawQuery: query}
	}
	if in.RawQuery == "" {
		in.RawQuery = query
	}

	resp, runErr := p.RunIntent(ctx, indexPattern, in)
	if resp != nil && len(resp.SchemaErrs) == 0 {
		// The cached index path reports no errors; carry the ones from
		// the first analysis.
		resp.SchemaErrs = schemaErrs
	}
	return resp, runErr
}

// RunIntent synthesizes, validates, and ranks candidates for an
// already-structured intent.
func (p *Pipeline) RunIntent(ctx context.Context, indexPattern string, in *intent.Intent) (*Response, error) {
	if in == nil {
		return nil, fmt.Errorf("pipeline: intent is required")
	}
	requestID := uuid.Must(uuid.NewV7()).String()
	idx, schemaErrs := p.index(ctx, indexPattern)

	candidates := make([]CandidateResult, len(p.perspectives))
	g, _ := errgroup.WithContext(ctx)
	for i, persp := range p.perspectives {
		i, persp := i, persp
		g.Go(func() error {
			doc := synth.Synthesize(in, persp, idx)
			candidates[i] = CandidateResult{
				ID:          uuid.Must(uuid.NewV7()).String(),
				Perspective: persp.Kind,
				Document:    doc,
				Validation:  validate.Validate(doc, idx),
			}
			return nil
		})
	}
	// Ranking needs the full candidate set; this is the barrier.
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rankInput := make([]rank.Candidate, 0, len(candidates))
	for _, c := range candidates {
		rankInput = append(rankInput, rank.Candidate{
			Perspective: c.Perspective,
			Document:    c.Document,
			Validation:  c.Validation,
		})
	}
	outcome := rank.Rank(rankInput, in, idx)

	resp := &Response{
		RequestID:  requestID,
		Intent:     in,
		SchemaErrs: schemaErrs,
		Candidates: candidates,
		Outcome:    outcome,
	}
	p.record(ctx, indexPattern, resp)
	return resp, nil
}

// index resolves and caches the field index for a pattern. Provider
// failures yield an empty index plus the error list; the request still
// proceeds with degraded resolution.
func (p *Pipeline) index(ctx context.Context, pattern string) (*schema.Index, []error) {
	if idx, ok := p.cache.get(pattern, p.now()); ok {
		return idx, nil
	}
	raw, err := p.schemas.Mapping(ctx, pattern)
	if err != nil {
		p.log.Warn("schema discovery failed", zap.String("index_pattern", pattern), zap.Error(err))
		empty, _, _ := schema.Build(nil)
		return empty, []error{err}
	}
	idx, _, errs := schema.Build(raw)
	p.cache.put(pattern, idx, p.now())
	if len(errs) > 0 {
		p.log.Warn("schema analysis reported problems",
			zap.String("index_pattern", pattern), zap.Int("count", len(errs)))
	}
	return idx, errs
}

// record writes the recommended document to the history store, when one
// is configured. Failures are logged, never surfaced: history is a
// convenience, not part of the answer.
func (p *Pipeline) record(ctx context.Context, pattern string, resp *Response) {
	if p.history == nil || resp.Outcome.Recommended == nil {
		return
	}
	// rank.Evaluation.Candidate indexes the rank input, which was built
	// in resp.Candidates order.
	rec := resp.Outcome.Recommended
	if rec.Candidate < 0 || rec.Candidate >= len(resp.Candidates) {
		return
	}
	doc := resp.Candidates[rec.Candidate].Document
	body, err := doc.MarshalCanonicalJSON()
	if err != nil {
		p.log.Warn("history: marshal recommended document", zap.Error(err))
		return
	}
	entry := HistoryEntry{
		RequestID:    resp.RequestID,
		IndexPattern: pattern,
		RawQuery:     resp.Intent.RawQuery,
		Perspective:  rec.Perspective.ID(),
		Overall:      rec.Overall,
		Document:     body,
		CreatedAt:    p.now().UTC(),
	}
	if err := p.history.Record(ctx, entry); err != nil {
		p.log.Warn("history: record request", zap.Error(err))
	}
}
