// Package grid infers the row and column structure of a table region.
//
// Tables coming from vector extraction are already delimited and pass
// through FromMatrix. Rasterized tables go through an Analyzer that detects
// ruling lines with morphological openings, or falls back to whitespace
// projections for borderless tables, then reads each cell's text with an
// external TextExtractor.
package grid

import (
	"image"
	"strings"
)

// Cell addresses a cell by its row and column index.
type Cell struct{ Row, Col int }

// Grid is the structure of one table region.
//
// Rows and Cols are boundary coordinates, in pixels for rasterized tables and
// in cell units for vector ones: n boundaries delimit n-1 rows (or columns).
type Grid struct {
	Rows  []int
	Cols  []int
	Cells map[Cell]string
}

// FromMatrix returns the grid of an already delimited row matrix. Ragged rows
// are padded to the widest row.
func FromMatrix(rows [][]string) *Grid {
	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}
	g := &Grid{
		Rows:  unitBoundaries(len(rows)),
		Cols:  unitBoundaries(width),
		Cells: make(map[Cell]string),
	}
	for i, r := range rows {
		for j, v := range r {
			if v = strings.TrimSpace(v); v != "" {
				g.Cells[Cell{i, j}] = v
			}
		}
	}
	return g
}

func unitBoundaries(n int) []int {
	if n == 0 {
		return nil
	}
	b := make([]int, n+1)
	for i := range b {
		b[i] = i
	}
	return b
}

// NumRows returns the number of rows.
func (g *Grid) NumRows() int { return max(len(g.Rows)-1, 0) }

// NumCols returns the number of columns.
func (g *Grid) NumCols() int { return max(len(g.Cols)-1, 0) }

// Text returns the text of a cell, "" if the cell is empty or out of range.
func (g *Grid) Text(row, col int) string { return g.Cells[Cell{row, col}] }

// Bounds returns the rectangle of a cell in grid coordinates.
func (g *Grid) Bounds(row, col int) image.Rectangle {
	if row < 0 || col < 0 || row >= g.NumRows() || col >= g.NumCols() {
		return image.Rectangle{}
	}
	return image.Rect(g.Cols[col], g.Rows[row], g.Cols[col+1], g.Rows[row+1])
}

// Matrix returns the cell texts as a row matrix.
func (g *Grid) Matrix() [][]string {
	m := make([][]string, g.NumRows())
	for i := range m {
		m[i] = make([]string, g.NumCols())
		for j := range m[i] {
			m[i][j] = g.Text(i, j)
		}
	}
	return m
}

// IsEmpty reports whether no cell carries text.
func (g *Grid) IsEmpty() bool { return g == nil || len(g.Cells) == 0 }
