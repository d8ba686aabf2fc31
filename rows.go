package holdings

import (
	"regexp"
	"slices"

	"github.com/etnz/holdings/security"
)

var (
	headerTerms = regexp.MustCompile(`(?i)\b(isin|description|designation|nominal|quantity|price|value|valuation|currency|ccy|maturity|coupon|weight|security|securities|name)\b`)
	// summaryTerms starts a summary label, security names may contain the words.
	summaryTerms = regexp.MustCompile(`(?i)^\W*(grand\s+)?(total|totals|sum|average|subtotal|sub-total|gesamt|summe|somme)\b`)
)

// RowClasses partitions the rows of a table. All slices hold row indexes in
// increasing order. Securities is a subset of Data.
type RowClasses struct {
	Header     []int
	Footer     []int
	Data       []int
	Securities []int
}

// RowClassifier partitions table rows into header, footer and data rows.
type RowClassifier struct {
	HeaderWindow int     // rows at the top that can be headers, default 3
	FooterWindow int     // rows at the bottom that can be footers, default 3
	SparseRatio  float64 // a footer fills less than this share of a typical data row, default 0.5
}

// DefaultRowClassifier returns a RowClassifier with default settings.
func DefaultRowClassifier() RowClassifier {
	return RowClassifier{HeaderWindow: 3, FooterWindow: 3, SparseRatio: 0.5}
}

// cellKind is the coarse type of a cell, used to build row signatures.
type cellKind byte

const (
	emptyCell   cellKind = '_'
	numberCell  cellKind = 'n'
	isinCell    cellKind = 'i'
	textCell    cellKind = 't'
	percentCell cellKind = '%'
)

func kindOf(v string) cellKind {
	switch {
	case v == "":
		return emptyCell
	case security.LooksLikeISIN(v):
		return isinCell
	case hasPercentMark(v):
		if _, ok := ParseNumber(v); ok {
			return percentCell
		}
		return textCell
	}
	if _, ok := ParseNumber(v); ok {
		return numberCell
	}
	return textCell
}

func signature(row []string, width int) string {
	b := make([]byte, width)
	for j := range b {
		b[j] = byte(emptyCell)
		if j < len(row) {
			b[j] = byte(kindOf(row[j]))
		}
	}
	return string(b)
}

// counts returns the number of filled and numeric cells of a row.
func counts(row []string) (filled, numeric int) {
	for _, v := range row {
		switch kindOf(v) {
		case emptyCell:
		case numberCell, percentCell:
			filled++
			numeric++
		default:
			filled++
		}
	}
	return filled, numeric
}

// Classify partitions rows. Headers are contiguous rows at the top, within
// HeaderWindow: a row is a header when its cells name columns, or when it
// holds several cells but no number and its signature differs from the
// following row's.
// Footers are contiguous rows at the bottom, within FooterWindow: a row is a
// footer when it carries summary terms, or when it is markedly sparser than
// typical data rows. Every other row is a data row.
//
// Classify does not fill Securities, see SecurityRows.
func (c RowClassifier) Classify(rows [][]string) RowClasses {
	if c.HeaderWindow <= 0 {
		c.HeaderWindow = 3
	}
	if c.FooterWindow <= 0 {
		c.FooterWindow = 3
	}
	if c.SparseRatio <= 0 {
		c.SparseRatio = 0.5
	}
	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}

	var rc RowClasses
	top := 0
	for ; top < min(c.HeaderWindow, len(rows)); top++ {
		row := rows[top]
		filled, numeric := counts(row)
		if filled == 0 {
			if top == 0 {
				continue // leading blank line
			}
			break
		}
		named := 0
		for _, v := range row {
			if headerTerms.MatchString(v) {
				named++
			}
		}
		isHeader := named > 0 && numeric*2 < filled
		if !isHeader && numeric == 0 && filled >= 2 && top+1 < len(rows) {
			isHeader = signature(row, width) != signature(rows[top+1], width) && hasNumber(rows[top+1])
		}
		if !isHeader {
			break
		}
		rc.Header = append(rc.Header, top)
	}
	// leading blank line not followed by a header
	if len(rc.Header) == 0 {
		top = 0
	}

	typical := typicalFill(rows[top:])
	bottom := len(rows)
	for i := len(rows) - 1; i >= top && i >= len(rows)-c.FooterWindow; i-- {
		filled, _ := counts(rows[i])
		if filled == 0 {
			bottom = i
			continue
		}
		summary := false
		for _, v := range rows[i] {
			if summaryTerms.MatchString(v) {
				summary = true
				break
			}
		}
		// sparse rows are totals, or notes when they hold a single text
		sparse := typical > 0 && float64(filled) < c.SparseRatio*typical && (hasNumber(rows[i]) || filled == 1)
		if !summary && !sparse {
			break
		}
		rc.Footer = append(rc.Footer, i)
		bottom = i
	}
	slices.Sort(rc.Footer)

	for i := top; i < bottom; i++ {
		if !slices.Contains(rc.Header, i) {
			rc.Data = append(rc.Data, i)
		}
	}
	return rc
}

// typicalFill returns the median number of filled cells over non-empty rows.
func typicalFill(rows [][]string) float64 {
	var fills []int
	for _, r := range rows {
		if f, _ := counts(r); f > 0 {
			fills = append(fills, f)
		}
	}
	if len(fills) == 0 {
		return 0
	}
	slices.Sort(fills)
	return float64(fills[len(fills)/2])
}

func hasNumber(row []string) bool {
	_, n := counts(row)
	return n > 0
}

// SecurityRows returns the data rows that describe a security. When the
// table has an identifier column (isinCol >= 0), a security row carries an
// ISIN-shaped code in it. Otherwise it mixes at least one text cell with one
// numeric cell. Rows carrying summary terms are never security rows.
func (c RowClassifier) SecurityRows(rows [][]string, data []int, isinCol int) []int {
	var out []int
	for _, i := range data {
		row := rows[i]
		if slices.ContainsFunc(row, summaryTerms.MatchString) {
			continue
		}
		if isinCol >= 0 {
			if v := cell(rows, i, isinCol); security.LooksLikeISIN(v) || security.FindISIN(v) != "" {
				out = append(out, i)
			}
			continue
		}
		text, numeric := false, false
		for _, v := range row {
			switch kindOf(v) {
			case textCell, isinCell:
				text = true
			case numberCell, percentCell:
				numeric = true
			}
		}
		if text && numeric {
			out = append(out, i)
		}
	}
	return out
}
