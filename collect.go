package holdings

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/etnz/holdings/grid"
	"github.com/etnz/holdings/logging"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
)

// ErrNoTables is returned when no backend found any table in a document.
var ErrNoTables = errors.New("no tables found")

// Document is a document to extract holdings from.
type Document struct {
	Path  string
	Pages []int // pages to process, all when empty
}

// Backend is a table-extraction backend: a vector extractor, an OCR based
// one, a spreadsheet reader...
//
// Backends are independent and may run concurrently, they must not share
// mutable state.
type Backend interface {
	Name() string
	Extract(ctx context.Context, doc Document) ([]BackendResult, error)
}

// BackendResult is one table as returned by a backend. It is one of
// LatticeResult, StreamResult, ThirdPartyResult or VisualGridResult.
type BackendResult interface {
	isBackendResult()
}

// LatticeResult is a table delimited by ruling lines in a vector document.
type LatticeResult struct {
	Page     int
	Accuracy float64
	Headers  []string
	Rows     [][]string
}

// StreamResult is a table delimited by whitespace in a vector document.
type StreamResult struct {
	Page       int
	Accuracy   float64
	Whitespace float64 // share of blank cells as reported by the extractor, informative
	Headers    []string
	Rows       [][]string
}

// ThirdPartyResult is a table produced by another tool, without accuracy
// unless the tool reports one (use NoAccuracy otherwise).
type ThirdPartyResult struct {
	Page     int
	Source   string
	Accuracy float64
	Headers  []string
	Rows     [][]string
}

// VisualGridResult is a rasterized table region to be analyzed with grid.Analyzer.
type VisualGridResult struct {
	Page       int
	Image      image.Image
	Region     image.Rectangle // whole image when empty
	Confidence float64         // detection confidence in [0,100], NoAccuracy if unknown
}

func (LatticeResult) isBackendResult()    {}
func (StreamResult) isBackendResult()     {}
func (ThirdPartyResult) isBackendResult() {}
func (VisualGridResult) isBackendResult() {}

// Collector runs the backends on a document and gathers their tables.
type Collector struct {
	backends []Backend
	analyzer *grid.Analyzer
	limit    int
}

// NewCollector returns a collector for backends. analyzer is used for
// VisualGridResults, it can be nil when no backend returns any.
func NewCollector(analyzer *grid.Analyzer, backends ...Backend) *Collector {
	return &Collector{backends: backends, analyzer: analyzer}
}

// SetLimit sets the maximum number of backends running at once. Zero or less
// means no limit.
func (c *Collector) SetLimit(n int) { c.limit = n }

// Collect runs every backend concurrently and converts their results to
// table candidates, in backend order.
//
// A failing backend never aborts the collection: its error is logged and
// returned in the *multierror.Error, along with the candidates of the others.
// The results returned with an error, if any, are kept.
// When there is no candidate at all the error wraps ErrNoTables.
func (c *Collector) Collect(ctx context.Context, doc Document) ([]*TableCandidate, error) {
	results := make([][]BackendResult, len(c.backends))
	failures := make([]error, len(c.backends))

	var g errgroup.Group
	if c.limit > 0 {
		g.SetLimit(c.limit)
	}
	for i, b := range c.backends {
		g.Go(func() error {
			results[i], failures[i] = runBackend(ctx, b, doc)
			return nil // a failure must not cancel the others
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var errs *multierror.Error
	var cands []*TableCandidate
	for i, b := range c.backends {
		if err := failures[i]; err != nil {
			logging.Logger().WithError(err).WithField("backend", b.Name()).Warn("backend-failed")
			errs = multierror.Append(errs, fmt.Errorf("backend %s: %w", b.Name(), err))
		}
		for _, r := range results[i] {
			t, err := c.candidate(ctx, b.Name(), r)
			if err != nil {
				logging.Logger().WithError(err).WithField("backend", b.Name()).Warn("table-conversion-failed")
				errs = multierror.Append(errs, fmt.Errorf("backend %s: %w", b.Name(), err))
				continue
			}
			if t.IsEmpty() {
				continue
			}
			cands = append(cands, t)
		}
		logging.Logger().WithField("backend", b.Name()).WithField("tables", len(results[i])).Debug("backend-done")
	}
	if len(cands) == 0 {
		errs = multierror.Append(errs, ErrNoTables)
	}
	return cands, errs.ErrorOrNil()
}

// runBackend calls b, turning a panic into an error.
func runBackend(ctx context.Context, b Backend, doc Document) (res []BackendResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()
	return b.Extract(ctx, doc)
}

// candidate unifies a backend result into a TableCandidate.
func (c *Collector) candidate(ctx context.Context, backend string, r BackendResult) (*TableCandidate, error) {
	switch r := r.(type) {
	case LatticeResult:
		return NewTableCandidate(r.Page, backend, KindLattice, r.Accuracy, r.Headers, r.Rows, nil), nil
	case StreamResult:
		return NewTableCandidate(r.Page, backend, KindStream, r.Accuracy, r.Headers, r.Rows, nil), nil
	case ThirdPartyResult:
		if r.Source != "" {
			backend += "/" + r.Source
		}
		return NewTableCandidate(r.Page, backend, KindThirdParty, r.Accuracy, r.Headers, r.Rows, nil), nil
	case VisualGridResult:
		if c.analyzer == nil {
			return nil, errors.New("no grid analyzer for visual result")
		}
		if r.Image == nil {
			return nil, errors.New("visual result without image")
		}
		g, err := c.analyzer.Analyze(ctx, r.Image, r.Region)
		if err != nil {
			return nil, fmt.Errorf("analyze page %d: %w", r.Page, err)
		}
		return NewTableCandidate(r.Page, backend, KindVisual, r.Confidence, nil, g.Matrix(), g), nil
	default:
		return nil, fmt.Errorf("unsupported backend result %T", r)
	}
}
