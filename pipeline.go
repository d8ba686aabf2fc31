package holdings

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"slices"

	"github.com/etnz/holdings/grid"
	"github.com/etnz/holdings/logging"
	"github.com/etnz/holdings/security"
	"github.com/hashicorp/go-multierror"
	"github.com/shopspring/decimal"
)

// ErrUnreadableDocument is returned when a document cannot be opened at all.
var ErrUnreadableDocument = errors.New("unreadable document")

// Config configures a Pipeline. Only Backends is required.
type Config struct {
	Backends []Backend
	// Analyzer reads the VisualGridResults, a default one without text
	// extractor is used when nil.
	Analyzer *grid.Analyzer
	// Reference resolves record identities, no resolution when nil.
	Reference *security.DB
	// Tolerances of the consistency checks, DefaultTolerances when zero.
	Tolerances Tolerances
	// Rules are the consistency correction rules, DefaultRules when nil.
	// Use an empty non-nil slice to disable corrections.
	Rules []CorrectionRule
	// Vision corroborates the totals when set, along with PageImages that
	// renders the pages of the document.
	Vision     VisionService
	PageImages func(ctx context.Context, doc Document) ([]image.Image, error)
	// Parallel bounds the number of backends running at once, unbounded when zero.
	Parallel int
}

// Pipeline extracts the holdings of portfolio documents.
//
// A Pipeline holds no per-document state and can process documents
// concurrently, provided the reference database is not modified meanwhile.
type Pipeline struct {
	collector *Collector
	dedup     Deduplicator
	extractor *Extractor
	merger    *Merger
	validator *Validator
	vision    VisionService
	pages     func(ctx context.Context, doc Document) ([]image.Image, error)
}

// NewPipeline returns a pipeline configured by cfg.
func NewPipeline(cfg Config) *Pipeline {
	analyzer := cfg.Analyzer
	if analyzer == nil {
		analyzer = grid.NewAnalyzer(nil, grid.DefaultOptions())
	}
	tol := cfg.Tolerances
	if tol == (Tolerances{}) {
		tol = DefaultTolerances()
	}
	rules := cfg.Rules
	if rules == nil {
		rules = DefaultRules()
	}
	c := NewCollector(analyzer, cfg.Backends...)
	c.SetLimit(cfg.Parallel)
	return &Pipeline{
		collector: c,
		extractor: NewExtractor(),
		merger:    NewMerger(cfg.Reference),
		validator: NewValidator(tol, rules...),
		vision:    cfg.Vision,
		pages:     cfg.PageImages,
	}
}

// Result is the outcome of processing one document.
type Result struct {
	Document   string
	Tables     []*TableCandidate // kept after deduplication
	Securities []SecurityRecord
	Summary    PortfolioSummary
	Findings   []Finding
	Warnings   []string
}

func (r *Result) warn(err error) {
	var merr *multierror.Error
	if errors.As(err, &merr) {
		for _, e := range merr.Errors {
			r.Warnings = append(r.Warnings, e.Error())
		}
		return
	}
	r.Warnings = append(r.Warnings, err.Error())
}

func (r *Result) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Optional("document", r.Document)
	w.Append("summary", r.Summary)
	w.Append("securities", nonNil(r.Securities))
	w.Optional("findings", r.Findings)
	w.Optional("warnings", r.Warnings)
	w.Append("tables", len(r.Tables))
	return w.MarshalJSON()
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// Process extracts the holdings of doc.
//
// Process always returns a result, possibly without securities and with
// warnings explaining why, unless doc cannot be opened at all
// (ErrUnreadableDocument) or ctx is done.
func (p *Pipeline) Process(ctx context.Context, doc Document) (*Result, error) {
	if doc.Path != "" {
		f, err := os.Open(doc.Path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnreadableDocument, err)
		}
		f.Close()
	}
	log := logging.Logger().WithField("document", doc.Path)
	res := &Result{Document: doc.Path}

	cands, err := p.collector.Collect(ctx, doc)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		res.warn(err)
	}
	if len(cands) == 0 {
		log.Warn("no-tables")
		return res, nil
	}
	res.Tables = p.dedup.Deduplicate(cands)
	log.WithField("candidates", len(cands)).WithField("tables", len(res.Tables)).Debug("deduplicate-tables")

	var records []SecurityRecord
	var totals []decimal.Decimal
	currency := ""
	for _, t := range res.Tables {
		x := p.extractor.Extract(t)
		records = append(records, x.Records...)
		if x.DeclaredTotal.Valid {
			totals = append(totals, x.DeclaredTotal.Decimal)
			if currency == "" {
				currency = x.DeclaredCurrency
			}
		}
	}

	merged, findings := p.merger.Merge(records)
	res.Findings = append(res.Findings, findings...)

	summary := Summarize(merged, pickDeclaredTotal(totals, merged), currency)
	if p.vision != nil && p.pages != nil {
		rep, err := p.corroborate(ctx, doc)
		if err != nil {
			log.WithError(err).Warn("vision-failed")
			res.warn(fmt.Errorf("vision: %w", err))
		} else {
			res.Findings = append(res.Findings, Corroborate(&summary, rep, DefaultVisionTolerance)...)
		}
	}

	validated, findings := p.validator.Validate(merged, summary.TotalValue)
	res.Findings = append(res.Findings, findings...)
	res.Securities = validated

	final := Summarize(validated, summary.TotalValue, summary.Currency)
	if summary.TotalSource != "" {
		final.TotalSource = summary.TotalSource
	}
	res.Summary = final
	log.WithField("securities", len(res.Securities)).WithField("findings", len(res.Findings)).Info("process-document")
	return res, nil
}

func (p *Pipeline) corroborate(ctx context.Context, doc Document) (VisionReport, error) {
	pages, err := p.pages(ctx, doc)
	if err != nil {
		return VisionReport{}, fmt.Errorf("render pages: %w", err)
	}
	if len(pages) == 0 {
		return VisionReport{}, errors.New("no page to show")
	}
	answer, err := p.vision.Describe(ctx, VisionPrompt, pages)
	if err != nil {
		return VisionReport{}, err
	}
	return ParseVisionAnswer(answer)
}

// pickDeclaredTotal chooses the portfolio total among the totals declared by
// the tables: each of them, or their sum when tables are independent
// sections. The candidate closest to the sum of the record values wins, the
// largest when no record has a value.
func pickDeclaredTotal(totals []decimal.Decimal, records []SecurityRecord) decimal.NullDecimal {
	if len(totals) == 0 {
		return decimal.NullDecimal{}
	}
	sum, hasValue := decimal.Zero, false
	for _, r := range records {
		if r.Value.Valid {
			sum, hasValue = sum.Add(r.Value.Decimal), true
		}
	}
	if !hasValue {
		return decimal.NewNullDecimal(slices.MaxFunc(totals, decimal.Decimal.Cmp))
	}
	candidates := slices.Clone(totals)
	if len(totals) > 1 {
		all := decimal.Zero
		for _, t := range totals {
			all = all.Add(t)
		}
		candidates = append(candidates, all)
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Sub(sum).Abs().LessThan(best.Sub(sum).Abs()) {
			best = c
		}
	}
	return decimal.NewNullDecimal(best)
}
