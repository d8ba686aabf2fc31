package grid

import (
	"context"
	"errors"
	"image"
	"sort"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/etnz/holdings/logging"
)

// ErrEmptyRegion is returned when the region to analyze has no pixels.
var ErrEmptyRegion = errors.New("empty table region")

// TextExtractor reads the text of an image region, typically an OCR service.
type TextExtractor interface {
	ExtractText(ctx context.Context, img image.Image) (string, error)
}

// TextExtractorFunc adapts a function to the TextExtractor interface.
type TextExtractorFunc func(ctx context.Context, img image.Image) (string, error)

// ExtractText calls f.
func (f TextExtractorFunc) ExtractText(ctx context.Context, img image.Image) (string, error) {
	return f(ctx, img)
}

// Options tunes the analysis.
type Options struct {
	// LineScale sets the structuring element lengths: region width/LineScale
	// for horizontal lines and height/LineScale for vertical ones.
	LineScale int
	// MinLineFraction is the fraction of the region width (or height) a
	// projected line mask must cover to be a boundary.
	MinLineFraction float64
	// RowTolerance and ColTolerance merge boundaries closer than this many
	// pixels. Rows are denser than columns, hence distinct values.
	RowTolerance int
	ColTolerance int
	// IntensityThreshold is the relative departure from the neighbouring
	// projection that flags a whitespace boundary in borderless tables.
	IntensityThreshold float64
	// MinRowGap and MinColGap are the shortest whitespace runs that separate
	// rows or columns in borderless tables. Shorter gaps are inter-word blanks.
	MinRowGap int
	MinColGap int
}

// DefaultOptions returns the options tuned for statements rendered at 150-300 dpi.
func DefaultOptions() Options {
	return Options{
		LineScale:          15,
		MinLineFraction:    0.5,
		RowTolerance:       8,
		ColTolerance:       15,
		IntensityThreshold: 0.3,
		MinRowGap:          2,
		MinColGap:          12,
	}
}

// Analyzer infers the grid of rasterized table regions.
type Analyzer struct {
	opts Options
	text TextExtractor
}

// NewAnalyzer returns an analyzer reading cell texts with text. text can be
// nil, in which case only the structure is computed and cells are empty.
func NewAnalyzer(text TextExtractor, opts Options) *Analyzer {
	return &Analyzer{opts: opts, text: text}
}

// Analyze computes the grid of the region of img. An empty region means the whole image.
//
// Boundaries are in region coordinates: the region top-left corner is (0,0).
func (a *Analyzer) Analyze(ctx context.Context, img image.Image, region image.Rectangle) (*Grid, error) {
	if region.Empty() {
		region = img.Bounds()
	}
	region = region.Intersect(img.Bounds())
	if region.Empty() {
		return nil, ErrEmptyRegion
	}
	sub := imaging.Crop(img, region)
	bin := binarize(sub)

	rows, cols := a.detectLines(bin)
	method := "lines"
	if len(rows) < 2 || len(cols) < 2 {
		method = "whitespace"
		if len(rows) < 2 {
			rows = a.whitespaceBoundaries(bin.projectRows(), a.opts.MinRowGap, a.opts.RowTolerance)
		}
		if len(cols) < 2 {
			cols = a.whitespaceBoundaries(bin.projectCols(), a.opts.MinColGap, a.opts.ColTolerance)
		}
	}
	logging.Logger().WithField("method", method).WithField("rows", len(rows)-1).WithField("cols", len(cols)-1).Debug("grid-structure")

	g := &Grid{Rows: rows, Cols: cols, Cells: make(map[Cell]string)}
	if err := a.readCells(ctx, sub, g); err != nil {
		return nil, err
	}
	return g, nil
}

// detectLines returns the boundaries implied by ruling lines.
func (a *Analyzer) detectLines(bin *bitmap) (rows, cols []int) {
	scale := max(a.opts.LineScale, 1)
	horizontal := bin.openLines(true, max(bin.w/scale, 1))
	vertical := bin.openLines(false, max(bin.h/scale, 1))
	mask := union(horizontal, vertical)

	rows = linePositions(mask.projectRows(), a.opts.MinLineFraction*float64(bin.w))
	cols = linePositions(mask.projectCols(), a.opts.MinLineFraction*float64(bin.h))
	return mergeBoundaries(rows, a.opts.RowTolerance), mergeBoundaries(cols, a.opts.ColTolerance)
}

// linePositions returns the positions where the projected mask mass is
// non-zero and reaches minMass.
func linePositions(projection []int, minMass float64) []int {
	var pos []int
	for i, v := range projection {
		if v > 0 && float64(v) >= minMass {
			pos = append(pos, i)
		}
	}
	return pos
}

// mergeBoundaries merges sorted positions closer than tolerance into their mean.
func mergeBoundaries(pos []int, tolerance int) []int {
	if len(pos) == 0 {
		return nil
	}
	sort.Ints(pos)
	var merged []int
	start, sum, n := pos[0], 0, 0
	flush := func() {
		merged = append(merged, (sum+n/2)/n)
	}
	for _, p := range pos {
		if n > 0 && p-start >= tolerance {
			flush()
			start, sum, n = p, 0, 0
		}
		sum += p
		n++
	}
	flush()
	return merged
}

// whitespaceBoundaries returns boundaries implied by whitespace in an ink
// projection: a position belongs to a gap when it is blank or when its
// projection is lower than the mean of its neighbours by more than the
// intensity threshold. Gaps at least minGap long yield a boundary at their
// center, the region edges are always boundaries.
func (a *Analyzer) whitespaceBoundaries(projection []int, minGap, tolerance int) []int {
	n := len(projection)
	if n == 0 {
		return nil
	}
	window := max(tolerance/2, 1)
	gap := make([]bool, n)
	for i, v := range projection {
		if v == 0 {
			gap[i] = true
			continue
		}
		sum, count := 0, 0
		for j := max(i-window, 0); j <= min(i+window, n-1); j++ {
			if j != i {
				sum += projection[j]
				count++
			}
		}
		if count == 0 {
			continue
		}
		mean := float64(sum) / float64(count)
		gap[i] = float64(v) < (1-a.opts.IntensityThreshold)*mean && float64(v) < a.opts.IntensityThreshold*float64(peak(projection))
	}

	bounds := []int{0}
	start := -1
	for i := 0; i <= n; i++ {
		g := i < n && gap[i]
		switch {
		case g && start < 0:
			start = i
		case !g && start >= 0:
			// Gaps touching an edge just move that edge.
			if start > 0 && i < n && i-start >= minGap {
				bounds = append(bounds, (start+i)/2)
			}
			start = -1
		}
	}
	bounds = append(bounds, n)
	return mergeBoundaries(bounds, tolerance)
}

func peak(p []int) int {
	m := 0
	for _, v := range p {
		m = max(m, v)
	}
	return m
}

// readCells fills the cell texts of g from the cross product of consecutive
// boundaries. Cells whose text can't be read are left empty.
func (a *Analyzer) readCells(ctx context.Context, img image.Image, g *Grid) error {
	if a.text == nil {
		return nil
	}
	for r := 0; r < g.NumRows(); r++ {
		for c := 0; c < g.NumCols(); c++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			rect := g.Bounds(r, c)
			if rect.Dx() < 2 || rect.Dy() < 2 {
				continue
			}
			txt, err := a.text.ExtractText(ctx, imaging.Crop(img, rect))
			if err != nil {
				logging.Logger().WithError(err).WithField("row", r).WithField("col", c).Warn("cell-text-failed")
				continue
			}
			if txt = strings.TrimSpace(txt); txt != "" {
				g.Cells[Cell{r, c}] = txt
			}
		}
	}
	return nil
}
