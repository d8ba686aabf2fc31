package holdings

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestSummarize(t *testing.T) {
	records := []SecurityRecord{
		{Name: "a", AssetClass: Equity, Value: N("6000"), Currency: "EUR"},
		{Name: "b", AssetClass: Bond, Value: N("3000"), Currency: "EUR"},
		{Name: "c", AssetClass: Cash, Weight: N("10"), Currency: "CHF"},
	}

	t.Run("declared", func(t *testing.T) {
		s := Summarize(records, N("10000"), "")
		if !s.TotalValue.Decimal.Equal(N("10000").Decimal) || s.TotalSource != TotalDeclared {
			t.Errorf("total = %v (%s), want 10000 declared", s.TotalValue, s.TotalSource)
		}
		if s.Currency != "EUR" {
			t.Errorf("Currency = %q, want EUR", s.Currency)
		}
		if got := s.AssetAllocation[Cash].Value; !got.Equal(N("1000").Decimal) {
			t.Errorf("cash value = %s, want 1000 from its weight", got)
		}
		if got := s.AssetAllocation[Equity].Weight; !got.Equal(N("60").Decimal) {
			t.Errorf("equity weight = %s, want 60", got)
		}
		if got := s.WeightSum(); !got.Equal(N("100").Decimal) {
			t.Errorf("WeightSum() = %s, want 100", got)
		}
		want := []AssetClass{Equity, Bond, Cash}
		for i, c := range s.Classes() {
			if c != want[i] {
				t.Errorf("Classes() = %v, want %v", s.Classes(), want)
				break
			}
		}
	})

	t.Run("computed", func(t *testing.T) {
		s := Summarize(records, decimal.NullDecimal{}, "USD")
		if !s.TotalValue.Decimal.Equal(N("9000").Decimal) || s.TotalSource != TotalComputed {
			t.Errorf("total = %v (%s), want 9000 computed", s.TotalValue, s.TotalSource)
		}
		if s.Currency != "USD" {
			t.Errorf("Currency = %q, want the declared USD", s.Currency)
		}
	})

	t.Run("empty", func(t *testing.T) {
		s := Summarize(nil, decimal.NullDecimal{}, "")
		if s.TotalValue.Valid || len(s.AssetAllocation) != 0 {
			t.Errorf("Summarize(nil) = %+v, want no total", s)
		}
	})
}

func TestPortfolioSummary_MarshalJSON(t *testing.T) {
	s := Summarize([]SecurityRecord{{Name: "a", AssetClass: Fund, Value: N("333.333")}}, N("1000"), "EUR")
	got, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"total_value":1000,"total_source":"declared","currency":"EUR","asset_allocation":{"fund":{"value":333.33,"weight":33.33}}}`
	if string(got) != want {
		t.Errorf("Marshal() = %s, want %s", got, want)
	}
}

func TestPickDeclaredTotal(t *testing.T) {
	dec := func(ss ...string) []decimal.Decimal {
		var out []decimal.Decimal
		for _, s := range ss {
			out = append(out, decimal.RequireFromString(s))
		}
		return out
	}
	records := []SecurityRecord{{Value: N("700")}, {Value: N("290")}}
	tests := []struct {
		name    string
		totals  []decimal.Decimal
		records []SecurityRecord
		want    string
	}{
		{"single", dec("1000"), records, "1000"},
		{"closest", dec("500", "990"), records, "990"},
		{"sections", dec("700", "290"), records, "990"},
		{"no values", dec("5", "50"), nil, "50"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pickDeclaredTotal(tt.totals, tt.records)
			if !got.Valid || !got.Decimal.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("pickDeclaredTotal() = %v, want %s", got, tt.want)
			}
		})
	}
	if got := pickDeclaredTotal(nil, records); got.Valid {
		t.Errorf("pickDeclaredTotal(nil) = %v, want null", got)
	}
}
