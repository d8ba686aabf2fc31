package holdings

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want string // "" when the parse must fail
	}{
		{"1234", "1234"},
		{"1,234.56", "1234.56"},
		{"1.234,56", "1234.56"},
		{"1 234,56", "1234.56"},
		{"1'234'567.89", "1234567.89"},
		{"1.234.567", "1234567"},
		{"1,234", "1234"},
		{"1.234", "1.234"},
		{"0,125", "0.125"},
		{"12,5", "12.5"},
		{"98.75", "98.75"},
		{"(1'234.50)", "-1234.5"},
		{"1234-", "-1234"},
		{"-12.5", "-12.5"},
		{"+3", "3"},
		{"EUR 1,234.50", "1234.5"},
		{"€1.234,50", "1234.5"},
		{"US$ 10", "10"},
		{"12.5 %", "12.5"},
		{"  42  ", "42"},
		{"15.11.2030", ""},
		{"1,23,456", ""},
		{"1-2", ""},
		{"N/A", ""},
		{"Apple Inc.", ""},
		{"-", ""},
		{"", ""},
		{"USD", ""},
		{".", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseNumber(tt.in)
			if tt.want == "" {
				if ok {
					t.Errorf("ParseNumber(%q) = %s, want failure", tt.in, got)
				}
				return
			}
			if !ok || !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("ParseNumber(%q) = %s, %v, want %s", tt.in, got, ok, tt.want)
			}
		})
	}
}

func TestFindCoupon(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"US Treasury 4.25% 15.11.2030", "4.25"},
		{"Siemens Fin. 0,625 % 2027", "0.625"},
		{"Bund 2% 2032", "2"},
		{"Capital protected 100%", ""},
		{"Apple Inc.", ""},
	}
	for _, tt := range tests {
		got, ok := FindCoupon(tt.in)
		if tt.want == "" {
			if ok {
				t.Errorf("FindCoupon(%q) = %s, want none", tt.in, got)
			}
			continue
		}
		if !ok || !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("FindCoupon(%q) = %s, %v, want %s", tt.in, got, ok, tt.want)
		}
	}
}

func TestFindCurrency(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Nestlé SA CHF", "CHF"},
		{"Value in EUR", "EUR"},
		{"$ 1,000", "USD"},
		{"£ 250", "GBP"},
		{"TOP holdings", ""},
		{"Apple Inc.", ""},
	}
	for _, tt := range tests {
		if got := FindCurrency(tt.in); got != tt.want {
			t.Errorf("FindCurrency(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsCurrencyCode(t *testing.T) {
	for code, want := range map[string]bool{"EUR": true, "USD": true, "CHF": true, "XYZ": false, "EU": false, "EURO": false} {
		if got := IsCurrencyCode(code); got != want {
			t.Errorf("IsCurrencyCode(%q) = %v, want %v", code, got, want)
		}
	}
}
