package holdings

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidator_checkValue(t *testing.T) {
	tests := []struct {
		name string
		rec  SecurityRecord
		want bool // an inconsistency is reported
		exp  string
	}{
		{
			name: "per hundred holds",
			rec:  SecurityRecord{Name: "x", Quantity: N("1000"), Price: N("100"), Value: N("1000")},
		},
		{
			name: "per hundred fails",
			rec:  SecurityRecord{Name: "x", Quantity: N("1000"), Price: N("100"), Value: N("5000")},
			want: true,
			exp:  "1000",
		},
		{
			name: "equity per unit",
			rec:  SecurityRecord{Name: "x", AssetClass: Equity, Quantity: N("10"), Price: N("150"), Value: N("1500")},
			want: true,
			exp:  "15",
		},
		{
			name: "equity quoted per hundred",
			rec:  SecurityRecord{Name: "x", AssetClass: Equity, Quantity: N("10"), Price: N("150"), Value: N("15")},
		},
		{
			name: "within one percent",
			rec:  SecurityRecord{Name: "x", AssetClass: Equity, Quantity: N("10"), Price: N("150"), Value: N("15.1")},
		},
		{
			name: "bond off",
			rec:  SecurityRecord{Name: "x", AssetClass: Bond, Quantity: N("50000"), Price: N("98.5"), Value: N("52000")},
			want: true,
			exp:  "49250",
		},
		{
			name: "no price",
			rec:  SecurityRecord{Name: "x", Quantity: N("10"), Value: N("1")},
		},
	}
	v := NewValidator(DefaultTolerances())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, findings := v.Validate([]SecurityRecord{tt.rec}, decimal.NullDecimal{})
			if got := len(findings) > 0; got != tt.want {
				t.Fatalf("Validate() findings = %v, want inconsistency %v", findings, tt.want)
			}
			if !tt.want {
				return
			}
			f := findings[0]
			if f.Kind != FindingInconsistency || f.Rule != CheckValue || !f.Expected.Decimal.Equal(N(tt.exp).Decimal) {
				t.Errorf("finding = %v, want value inconsistency expecting %s", f, tt.exp)
			}
		})
	}
}

func TestValidator_mergedRecords(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"1000", false},
		{"5000", true},
		{"100000", true}, // quantity × price, the per unit reading
	}
	v := NewValidator(DefaultTolerances(), DefaultRules()...)
	for _, tt := range tests {
		merged, _ := NewMerger(nil).Merge([]SecurityRecord{{Name: "Example Corp", Quantity: N("1000"), Price: N("100"), Value: N(tt.value)}})
		if merged[0].AssetClass != Equity {
			t.Fatalf("AssetClass = %q, want the merger default %q", merged[0].AssetClass, Equity)
		}
		_, findings := v.Validate(merged, decimal.NullDecimal{})
		if got := len(findings) > 0; got != tt.want {
			t.Errorf("Validate(value %s) findings = %v, want inconsistency %v", tt.value, findings, tt.want)
			continue
		}
		if tt.want && !findings[0].Expected.Decimal.Equal(N("1000").Decimal) {
			t.Errorf("Validate(value %s) expected = %v, want 1000", tt.value, findings[0].Expected)
		}
	}
}

func TestPerUnitPriceRule(t *testing.T) {
	in := []SecurityRecord{
		{ISIN: "US0378331005", AssetClass: Equity, Quantity: N("100"), Price: N("185.5"), Value: N("18550")},
		{ISIN: "US5949181045", AssetClass: Equity, Quantity: N("50"), Price: N("410"), Value: N("99999")},
	}
	out, findings := NewValidator(DefaultTolerances(), PerUnitPriceRule()).Validate(in, decimal.NullDecimal{})
	if len(findings) != 3 {
		t.Fatalf("findings = %v, want two inconsistencies and one correction", findings)
	}
	c := findings[1]
	if c.Kind != FindingCorrection || c.Rule != "per-unit-price" || c.Field != "price" || c.Key != "US0378331005" {
		t.Errorf("findings[1] = %v, want the per-unit-price correction", c)
	}
	if !out[0].Price.Decimal.Equal(N("18550").Decimal) || !out[0].Value.Decimal.Equal(N("18550").Decimal) {
		t.Errorf("Apple = %v / %v, want the price quoted per 100 and the value kept", out[0].Price, out[0].Value)
	}
	if !out[1].Price.Decimal.Equal(N("410").Decimal) || findings[2].Kind != FindingInconsistency {
		t.Errorf("Microsoft = %v, %v, want an uncorrected inconsistency", out[1].Price, findings[2])
	}
}

func TestValidator_wholeNumberWeight(t *testing.T) {
	total := N("10000")
	in := []SecurityRecord{
		{ISIN: "US0378331005", AssetClass: Equity, Value: N("1200"), Weight: N("20")},
		{ISIN: "US5949181045", AssetClass: Equity, Value: N("8000"), Weight: N("80")},
	}
	out, findings := NewValidator(DefaultTolerances(), DefaultRules()...).Validate(in, total)

	if !out[0].Value.Decimal.Equal(N("2000").Decimal) {
		t.Errorf("Value = %v, want 2000 recomputed from the weight", out[0].Value)
	}
	if !in[0].Value.Decimal.Equal(N("1200").Decimal) {
		t.Error("Validate() modified its input")
	}
	if len(findings) != 2 {
		t.Fatalf("findings = %v, want an inconsistency and a correction", findings)
	}
	if findings[0].Kind != FindingInconsistency || findings[0].Rule != CheckWeight {
		t.Errorf("findings[0] = %v, want the weight inconsistency first", findings[0])
	}
	c := findings[1]
	if c.Kind != FindingCorrection || c.Rule != "whole-number-weight" || c.Field != "value" || c.Key != "US0378331005" {
		t.Errorf("findings[1] = %v, want the whole-number-weight correction", c)
	}
	if !c.Actual.Decimal.Equal(N("1200").Decimal) || !c.Expected.Decimal.Equal(N("2000").Decimal) {
		t.Errorf("correction %v -> %v, want 1200 -> 2000", c.Actual, c.Expected)
	}
}

func TestValidator_fractionalWeightNotCorrected(t *testing.T) {
	in := []SecurityRecord{
		{ISIN: "US0378331005", AssetClass: Equity, Value: N("1200"), Weight: N("20.37")},
		{ISIN: "US5949181045", AssetClass: Equity, Value: N("8000"), Weight: N("79.63")},
	}
	out, findings := NewValidator(DefaultTolerances(), DefaultRules()...).Validate(in, N("10000"))
	if len(findings) != 1 || findings[0].Kind != FindingInconsistency {
		t.Errorf("findings = %v, want a lone inconsistency", findings)
	}
	if !out[0].Value.Decimal.Equal(N("1200").Decimal) {
		t.Errorf("Value = %v, want 1200 unchanged", out[0].Value)
	}
}

func TestValidator_noRules(t *testing.T) {
	in := []SecurityRecord{
		{ISIN: "US0378331005", AssetClass: Equity, Value: N("1200"), Weight: N("20")},
		{ISIN: "US5949181045", AssetClass: Equity, Value: N("8000"), Weight: N("80")},
	}
	out, findings := NewValidator(DefaultTolerances()).Validate(in, N("10000"))
	if len(findings) != 1 || !out[0].Value.Decimal.Equal(N("1200").Decimal) {
		t.Errorf("Validate() = %v, %v, want one finding and no correction", out, findings)
	}
}

func TestScaleValueRule(t *testing.T) {
	// value printed in thousands
	in := []SecurityRecord{{ISIN: "US0378331005", AssetClass: Bond, Quantity: N("100000"), Price: N("150"), Value: N("150")}}

	_, findings := NewValidator(DefaultTolerances()).Validate(in, decimal.NullDecimal{})
	if len(findings) != 1 {
		t.Fatalf("without rule findings = %v, want one inconsistency", findings)
	}

	out, findings := NewValidator(DefaultTolerances(), ScaleValueRule(decimal.NewFromInt(1000))).Validate(in, decimal.NullDecimal{})
	if len(findings) != 2 || findings[1].Rule != "scale-value-1000" {
		t.Fatalf("findings = %v, want an inconsistency and a scale-value-1000 correction", findings)
	}
	if !out[0].Value.Decimal.Equal(N("150000").Decimal) {
		t.Errorf("Value = %v, want 150000", out[0].Value)
	}
}

func TestValidator_normalizeWeights(t *testing.T) {
	in := []SecurityRecord{
		{Name: "a", Weight: N("40")},
		{Name: "b", Weight: N("50")},
		{Name: "c"},
	}
	out, findings := NewValidator(DefaultTolerances()).Validate(in, decimal.NullDecimal{})

	sum := decimal.Zero
	for _, r := range out {
		if r.Weight.Valid {
			sum = sum.Add(r.Weight.Decimal)
		}
	}
	if sum.Sub(decimal.NewFromInt(100)).Abs().GreaterThan(decimal.RequireFromString("0.01")) {
		t.Errorf("weights sum to %s, want 100", sum)
	}
	if out[2].Weight.Valid {
		t.Error("a null weight was set")
	}
	if !out[0].Weight.Decimal.Round(2).Equal(N("44.44").Decimal) {
		t.Errorf("weight = %s, want 44.44", out[0].Weight.Decimal.Round(2))
	}
	if out[0].Weight.Decimal.Equal(out[0].Weight.Decimal.Round(2)) {
		t.Errorf("weight = %s, rescaled weights must keep their precision", out[0].Weight.Decimal)
	}
	if len(findings) != 2 || findings[0].Rule != "weight-sum" || findings[1].Kind != FindingCorrection {
		t.Errorf("findings = %v, want weight-sum then renormalize-weights", findings)
	}
}

func TestValidator_weightsWithinTolerance(t *testing.T) {
	in := []SecurityRecord{{Name: "a", Weight: N("60")}, {Name: "b", Weight: N("37")}}
	out, findings := NewValidator(DefaultTolerances()).Validate(in, decimal.NullDecimal{})
	if len(findings) != 0 || !out[1].Weight.Decimal.Equal(N("37").Decimal) {
		t.Errorf("Validate() = %v, %v, want weights left alone", out, findings)
	}
}
