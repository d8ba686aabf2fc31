package holdings

import (
	"strings"

	"github.com/etnz/holdings/date"
	"github.com/etnz/holdings/logging"
	"github.com/etnz/holdings/security"
	"github.com/shopspring/decimal"
)

// TableExtraction is what an Extractor reads from one table.
type TableExtraction struct {
	Table   *TableCandidate // with detected header rows promoted to headers
	Roles   ColumnRoles
	Classes RowClasses // row indexes in Table

	Records []SecurityRecord

	// DeclaredTotal is the total printed in the table footer, if any.
	DeclaredTotal    decimal.NullDecimal
	DeclaredCurrency string
}

// Extractor turns classified table rows into security records.
type Extractor struct {
	Columns ColumnClassifier
	Rows    RowClassifier
}

// NewExtractor returns an Extractor with default classifiers.
func NewExtractor() *Extractor {
	return &Extractor{Rows: DefaultRowClassifier()}
}

// Extract classifies the rows and columns of t and reads a record from each
// security row. Records lacking both an ISIN and a name are discarded.
func (e *Extractor) Extract(t *TableCandidate) TableExtraction {
	rc := e.Rows.Classify(t.rows)
	top := 0
	if n := len(rc.Header); n > 0 {
		top = rc.Header[n-1] + 1
	}
	t = t.withHeaders(top)
	shift := func(idx []int) []int {
		out := make([]int, 0, len(idx))
		for _, i := range idx {
			if i >= top {
				out = append(out, i-top)
			}
		}
		return out
	}
	rc.Header, rc.Footer, rc.Data = nil, shift(rc.Footer), shift(rc.Data)

	data := make([][]string, 0, len(rc.Data))
	for _, i := range rc.Data {
		data = append(data, t.rows[i])
	}
	roles := e.Columns.Classify(t.headers, data)
	rc.Securities = e.Rows.SecurityRows(t.rows, rc.Data, roles.Column(RoleISIN))

	x := TableExtraction{Table: t, Roles: roles, Classes: rc}
	var section AssetClass
	next := 0 // next security row in rc.Securities
	for _, i := range rc.Data {
		if next < len(rc.Securities) && rc.Securities[next] == i {
			next++
			r, ok := e.readRow(t, roles, t.rows[i], section)
			if !ok {
				logging.Logger().WithField("table", t.id).WithField("row", i).Debug("drop-anonymous-row")
				continue
			}
			x.Records = append(x.Records, r)
			continue
		}
		if heading, ok := headingText(t.rows[i]); ok {
			if c, ok := sectionClass(heading); ok {
				section = c
			}
		}
	}
	x.DeclaredTotal, x.DeclaredCurrency = declaredTotal(t.rows, rc.Footer, roles)
	logging.Logger().WithField("table", t.id).WithField("page", t.page).WithField("records", len(x.Records)).Debug("extract-table")
	return x
}

// headingText returns the text of a row holding a single text cell.
func headingText(row []string) (string, bool) {
	text := ""
	for _, v := range row {
		if v == "" {
			continue
		}
		if text != "" || kindOf(v) != textCell {
			return "", false
		}
		text = v
	}
	return text, text != ""
}

// readRow reads the record of one security row.
func (e *Extractor) readRow(t *TableCandidate, roles ColumnRoles, row []string, section AssetClass) (SecurityRecord, bool) {
	get := func(role ColumnRole) string {
		if j := roles.Column(role); j >= 0 && j < len(row) {
			return row[j]
		}
		return ""
	}
	r := SecurityRecord{
		SourceTable:      t.id,
		SourcePage:       t.page,
		ExtractionMethod: t.backend,
	}

	// Identity.
	isin := security.FindISIN(get(RoleISIN))
	if isin == "" && security.LooksLikeISIN(get(RoleISIN)) {
		isin = get(RoleISIN)
	}
	name := get(RoleName)
	if isin == "" {
		// ISINs are often printed inside the description cell.
		isin = security.FindISIN(strings.Join(row, " "))
	}
	if isin != "" {
		r.setISIN(isin)
		name = strings.TrimSpace(stripISIN(name, r.ISIN))
	}
	r.Name = strings.Join(strings.Fields(name), " ")
	if r.ISIN == "" && r.Name == "" {
		return r, false
	}

	// Figures.
	r.Quantity = parseNull(get(RoleQuantity))
	r.Price = parseNull(get(RolePrice))
	r.AcquisitionPrice = parseNull(get(RoleAcquisitionPrice))
	r.Value = parseNull(get(RoleValue))
	r.Weight = parseNull(get(RoleWeight))
	r.Coupon = parseNull(get(RoleCoupon))

	// Currency, coupon and maturity fall back to the description text.
	if c := get(RoleCurrency); c != "" {
		r.Currency = FindCurrency(strings.ToUpper(c))
	}
	if r.Currency == "" {
		r.Currency = FindCurrency(name)
	}
	if r.Currency == "" {
		r.Currency = FindCurrency(get(RoleValue) + " " + get(RolePrice))
	}
	if !r.Coupon.Valid {
		if c, ok := FindCoupon(name); ok {
			r.Coupon = decimal.NewNullDecimal(c)
		}
	}
	r.Maturity = maturity(get(RoleMaturity))
	if r.Maturity == "" {
		r.Maturity = maturity(date.Find(name))
	}

	if c, ok := inferAssetClass(&r, section); ok {
		r.AssetClass = c
	}
	return r, true
}

// maturity returns s as an ISO date when it parses, as printed otherwise.
func maturity(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if d, err := date.ParseStatement(s); err == nil {
		return d.String()
	}
	return s
}

// stripISIN removes the ISIN, however spaced, from a description.
func stripISIN(text, isin string) string {
	if i := strings.Index(strings.ToUpper(text), isin); i >= 0 {
		return text[:i] + text[i+len(isin):]
	}
	return text
}

// declaredTotal returns the total of the last footer row carrying a summary
// label: the value column when it parses, else the largest number of the row.
func declaredTotal(rows [][]string, footer []int, roles ColumnRoles) (decimal.NullDecimal, string) {
	for k := len(footer) - 1; k >= 0; k-- {
		row := rows[footer[k]]
		if !hasSummaryLabel(row) {
			continue
		}
		cur := ""
		for _, v := range row {
			if c := FindCurrency(v); c != "" {
				cur = c
				break
			}
		}
		if j := roles.Column(RoleValue); j >= 0 {
			if d := parseNull(cell(rows, footer[k], j)); d.Valid {
				return d, cur
			}
		}
		var best decimal.NullDecimal
		for _, v := range row {
			if hasPercentMark(v) {
				continue
			}
			if d, ok := ParseNumber(v); ok && (!best.Valid || d.Abs().GreaterThan(best.Decimal.Abs())) {
				best = decimal.NewNullDecimal(d)
			}
		}
		if best.Valid {
			return best, cur
		}
	}
	return decimal.NullDecimal{}, ""
}

func hasSummaryLabel(row []string) bool {
	for _, v := range row {
		if summaryTerms.MatchString(v) {
			return true
		}
	}
	return false
}
