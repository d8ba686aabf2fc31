package holdings

import (
	"cmp"
	"maps"
	"slices"

	"github.com/shopspring/decimal"
)

// Sources of a portfolio total value.
const (
	TotalDeclared = "declared" // printed in a table footer
	TotalVision   = "vision"   // read by the vision service
	TotalComputed = "computed" // sum of the record values
)

// Allocation is the value and weight of one asset class.
type Allocation struct {
	Value  decimal.Decimal
	Weight decimal.Decimal // percent of the total value
}

func (a Allocation) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Decimal("value", decimal.NewNullDecimal(a.Value.Round(2)))
	w.Decimal("weight", decimal.NewNullDecimal(a.Weight.Round(2)))
	return w.MarshalJSON()
}

// PortfolioSummary is the portfolio level view of the records.
type PortfolioSummary struct {
	TotalValue      decimal.NullDecimal
	TotalSource     string
	Currency        string
	AssetAllocation map[AssetClass]Allocation
}

// Classes returns the asset classes of the allocation, by decreasing value.
func (s PortfolioSummary) Classes() []AssetClass {
	classes := slices.Collect(maps.Keys(s.AssetAllocation))
	slices.SortFunc(classes, func(a, b AssetClass) int {
		if c := s.AssetAllocation[b].Value.Cmp(s.AssetAllocation[a].Value); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	return classes
}

// WeightSum returns the sum of the allocation weights.
func (s PortfolioSummary) WeightSum() decimal.Decimal {
	sum := decimal.Zero
	for _, a := range s.AssetAllocation {
		sum = sum.Add(a.Weight)
	}
	return sum
}

func (s PortfolioSummary) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Decimal("total_value", s.TotalValue)
	w.Optional("total_source", s.TotalSource)
	w.Optional("currency", s.Currency)
	var alloc jsonObjectWriter
	for _, c := range s.Classes() {
		alloc.Append(string(c), s.AssetAllocation[c])
	}
	w.Append("asset_allocation", &alloc)
	return w.MarshalJSON()
}

// Summarize computes the portfolio summary of records.
//
// A declared total is preferred over the sum of the record values, which is
// used only when no total was declared. currency is the declared currency,
// when empty the most frequent record currency is used. Records without
// value but with a weight contribute weight × total to their class when the
// total is known.
func Summarize(records []SecurityRecord, declared decimal.NullDecimal, currency string) PortfolioSummary {
	s := PortfolioSummary{Currency: currency, AssetAllocation: make(map[AssetClass]Allocation)}
	sum, hasValue := decimal.Zero, false
	for _, r := range records {
		if r.Value.Valid {
			sum, hasValue = sum.Add(r.Value.Decimal), true
		}
	}
	switch {
	case declared.Valid:
		s.TotalValue, s.TotalSource = declared, TotalDeclared
	case hasValue:
		s.TotalValue, s.TotalSource = decimal.NewNullDecimal(sum), TotalComputed
	}
	if s.Currency == "" {
		s.Currency = dominantCurrency(records)
	}

	values := make(map[AssetClass]decimal.Decimal)
	for _, r := range records {
		class := r.AssetClass
		if class == "" {
			class = OtherAsset
		}
		switch {
		case r.Value.Valid:
			values[class] = values[class].Add(r.Value.Decimal)
		case r.Weight.Valid && s.TotalValue.Valid:
			values[class] = values[class].Add(r.Weight.Decimal.Mul(s.TotalValue.Decimal).Div(hundred))
		}
	}
	for class, v := range values {
		a := Allocation{Value: v}
		if s.TotalValue.Valid && !s.TotalValue.Decimal.IsZero() {
			a.Weight = v.Mul(hundred).Div(s.TotalValue.Decimal)
		}
		s.AssetAllocation[class] = a
	}
	return s
}

// dominantCurrency returns the currency of most records, ties going to the
// first seen.
func dominantCurrency(records []SecurityRecord) string {
	count := make(map[string]int)
	best := ""
	for _, r := range records {
		if r.Currency == "" {
			continue
		}
		count[r.Currency]++
		if best == "" || count[r.Currency] > count[best] {
			best = r.Currency
		}
	}
	return best
}
