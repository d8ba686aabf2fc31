package renderer

import (
	"path/filepath"
	"strings"

	"github.com/etnz/holdings"
	"github.com/shopspring/decimal"
)

// Report is the printable view of a holdings.Result.
type Report struct {
	Document    string
	Tables      int
	TotalValue  Money
	TotalSource string
	Currency    string
	Allocation  []AllocationLine
	WeightSum   Percent
	Securities  []SecurityLine
	Findings    []FindingLine
	Warnings    []string
}

// AllocationLine is one asset class of the allocation.
type AllocationLine struct {
	Class  string
	Value  Money
	Weight Percent
}

// SecurityLine is one row of the securities table.
type SecurityLine struct {
	ISIN        string
	InvalidISIN bool
	Name        string
	Class       string
	Quantity    Quantity
	Price       Quantity
	Value       Money
	Weight      Percent
	Maturity    string
	Page        int
}

// FindingLine is one finding, its numbers formatted.
type FindingLine struct {
	Kind     string
	Rule     string
	Subject  string
	Field    string
	Expected string
	Actual   string
	Message  string
}

// NewReport builds the Report of res.
func NewReport(res *holdings.Result) *Report {
	s := res.Summary
	r := &Report{
		Document:    filepath.Base(res.Document),
		Tables:      len(res.Tables),
		TotalValue:  M(s.TotalValue, s.Currency),
		TotalSource: s.TotalSource,
		Currency:    s.Currency,
		Warnings:    res.Warnings,
	}
	if res.Document == "" {
		r.Document = "document"
	}
	for _, c := range s.Classes() {
		a := s.AssetAllocation[c]
		line := AllocationLine{Class: className(c), Value: M(decimal.NewNullDecimal(a.Value), s.Currency)}
		if s.TotalValue.Valid {
			line.Weight = P(decimal.NewNullDecimal(a.Weight))
		}
		r.Allocation = append(r.Allocation, line)
	}
	if s.TotalValue.Valid && len(s.AssetAllocation) > 0 {
		r.WeightSum = P(decimal.NewNullDecimal(s.WeightSum()))
	}

	for _, sec := range res.Securities {
		cur := sec.Currency
		if cur == "" {
			cur = s.Currency
		}
		r.Securities = append(r.Securities, SecurityLine{
			ISIN:        sec.ISIN,
			InvalidISIN: sec.ISIN != "" && !sec.IsValidISIN,
			Name:        escape(sec.Name),
			Class:       className(sec.AssetClass),
			Quantity:    Q(sec.Quantity),
			Price:       Q(sec.Price),
			Value:       M(sec.Value, cur),
			Weight:      P(sec.Weight),
			Maturity:    sec.Maturity,
			Page:        sec.SourcePage,
		})
	}

	for _, f := range res.Findings {
		line := FindingLine{
			Kind:    string(f.Kind),
			Rule:    f.Rule,
			Subject: subject(f.Key),
			Field:   f.Field,
			Message: escape(f.Message),
		}
		if f.Expected.Valid || f.Actual.Valid {
			line.Expected, line.Actual = Q(f.Expected).String(), Q(f.Actual).String()
		}
		r.Findings = append(r.Findings, line)
	}
	return r
}

// className is the printable name of an asset class.
func className(c holdings.AssetClass) string {
	if c == "" {
		c = holdings.OtherAsset
	}
	return strings.ReplaceAll(string(c), "_", " ")
}

// subject names the record of a finding key.
func subject(key string) string {
	switch {
	case key == "":
		return "portfolio"
	case strings.HasPrefix(key, "name:"):
		return "`" + strings.TrimPrefix(key, "name:") + "`"
	default:
		return key
	}
}

// escape makes text safe in a markdown table cell.
func escape(text string) string {
	return strings.ReplaceAll(text, "|", `\|`)
}
