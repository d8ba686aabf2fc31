package holdings

import (
	"slices"
	"strings"

	"github.com/etnz/holdings/grid"
	"github.com/google/uuid"
)

// BackendKind identifies the family of the extraction backend that produced a table.
type BackendKind string

// Backend kinds, by decreasing default priority.
const (
	KindLattice    BackendKind = "lattice"     // vector tables delimited by ruling lines
	KindStream     BackendKind = "stream"      // vector tables delimited by whitespace
	KindThirdParty BackendKind = "third-party" // tables handed over by another tool (spreadsheets, services)
	KindVisual     BackendKind = "visual"      // rasterized regions analyzed by grid.Analyzer
)

// DefaultPriority is the backend priority used to break accuracy ties, highest first.
var DefaultPriority = []BackendKind{KindLattice, KindStream, KindThirdParty, KindVisual}

// ParseBackendKind parses a backend kind name.
func ParseBackendKind(s string) (BackendKind, bool) {
	k := BackendKind(strings.ToLower(strings.TrimSpace(s)))
	return k, slices.Contains(DefaultPriority, k)
}

// priority returns the rank of kind in order, lower is better. Unknown kinds rank last.
func priority(order []BackendKind, kind BackendKind) int {
	if i := slices.Index(order, kind); i >= 0 {
		return i
	}
	return len(order)
}

// TableCandidate is one backend's extraction of one table region.
//
// A TableCandidate is immutable: getters return copies.
type TableCandidate struct {
	id       string
	page     int
	backend  string
	kind     BackendKind
	accuracy float64 // 0-100, negative when the backend does not report one
	headers  []string
	rows     [][]string
	grid     *grid.Grid
}

// NoAccuracy marks a candidate whose backend reports no accuracy.
const NoAccuracy = -1

// NewTableCandidate creates a candidate with a fresh id.
//
// Cells are trimmed. When headers is empty and rows is not, headers are left
// empty: header detection is the job of the RowClassifier. accuracy is clamped
// to [0,100] unless it is NoAccuracy (any negative value).
func NewTableCandidate(page int, backend string, kind BackendKind, accuracy float64, headers []string, rows [][]string, g *grid.Grid) *TableCandidate {
	switch {
	case accuracy < 0:
		accuracy = NoAccuracy
	case accuracy > 100:
		accuracy = 100
	}
	t := &TableCandidate{
		id:       uuid.NewString(),
		page:     page,
		backend:  backend,
		kind:     kind,
		accuracy: accuracy,
		headers:  trimCells(headers),
		grid:     g,
	}
	t.rows = make([][]string, 0, len(rows))
	for _, r := range rows {
		t.rows = append(t.rows, trimCells(r))
	}
	return t
}

func trimCells(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.TrimSpace(c)
	}
	return out
}

func (t *TableCandidate) ID() string           { return t.id }
func (t *TableCandidate) Page() int            { return t.page }
func (t *TableCandidate) Backend() string      { return t.backend }
func (t *TableCandidate) Kind() BackendKind    { return t.kind }
func (t *TableCandidate) Accuracy() float64    { return t.accuracy }
func (t *TableCandidate) HasAccuracy() bool    { return t.accuracy >= 0 }
func (t *TableCandidate) Headers() []string    { return slices.Clone(t.headers) }
func (t *TableCandidate) NumRows() int         { return len(t.rows) }
func (t *TableCandidate) Grid() *grid.Grid     { return t.grid }
func (t *TableCandidate) HasRawGrid() bool     { return t.grid != nil }
func (t *TableCandidate) Cell(i, j int) string { return cell(t.rows, i, j) }

// Rows returns a copy of the row matrix.
func (t *TableCandidate) Rows() [][]string {
	out := make([][]string, len(t.rows))
	for i, r := range t.rows {
		out[i] = slices.Clone(r)
	}
	return out
}

// NumCols returns the width of the widest row or of the headers.
func (t *TableCandidate) NumCols() int {
	n := len(t.headers)
	for _, r := range t.rows {
		n = max(n, len(r))
	}
	return n
}

// IsEmpty reports whether the candidate has no non-empty cell.
func (t *TableCandidate) IsEmpty() bool {
	for _, r := range t.rows {
		for _, c := range r {
			if c != "" {
				return false
			}
		}
	}
	return true
}

// withHeaders returns a copy of t promoting rows [0,n) to headers, joined column-wise.
// The copy keeps the id: it is the same extraction.
func (t *TableCandidate) withHeaders(n int) *TableCandidate {
	if n <= 0 {
		return t
	}
	c := *t
	width := t.NumCols()
	headers := make([]string, width)
	for j := range headers {
		var parts []string
		if j < len(t.headers) && t.headers[j] != "" {
			parts = append(parts, t.headers[j])
		}
		for i := 0; i < n && i < len(t.rows); i++ {
			if v := cell(t.rows, i, j); v != "" {
				parts = append(parts, v)
			}
		}
		headers[j] = strings.Join(parts, " ")
	}
	c.headers = headers
	c.rows = t.rows[min(n, len(t.rows)):]
	return &c
}

// cell returns rows[i][j] or "" when out of range.
func cell(rows [][]string, i, j int) string {
	if i < 0 || i >= len(rows) || j < 0 || j >= len(rows[i]) {
		return ""
	}
	return rows[i][j]
}
