package holdings

import (
	"fmt"

	"github.com/etnz/holdings/logging"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Tolerances of the consistency checks.
type Tolerances struct {
	ValueRelative decimal.Decimal // |expected-value|/value above which a value is inconsistent
	WeightPoints  decimal.Decimal // percentage points above which a weight is inconsistent
	WholeNumber   decimal.Decimal // distance to a whole number under which a weight is trusted
	WeightSum     decimal.Decimal // percentage points off 100 above which weights are renormalized
}

// DefaultTolerances returns 1% for values, 0.5 point for weights, 0.1 for
// whole numbers and 5 points for the weight sum.
func DefaultTolerances() Tolerances {
	return Tolerances{
		ValueRelative: decimal.RequireFromString("0.01"),
		WeightPoints:  decimal.RequireFromString("0.5"),
		WholeNumber:   decimal.RequireFromString("0.1"),
		WeightSum:     decimal.NewFromInt(5),
	}
}

// Validator cross-checks the figures of merged records.
type Validator struct {
	tol   Tolerances
	rules []CorrectionRule
}

// NewValidator returns a validator with the given tolerances and rules. Rules
// are tried in order, the first that applies corrects the record.
func NewValidator(tol Tolerances, rules ...CorrectionRule) *Validator {
	return &Validator{tol: tol, rules: rules}
}

// Validate checks every record and the portfolio weights, and returns the
// records, corrected when a rule applies, with the findings. total is the
// portfolio total value, if known.
//
// Per record, the value must match quantity × price / 100 within
// Tolerances.ValueRelative, and the weight must match value / total within
// Tolerances.WeightPoints. Over the portfolio, when the weights sum more than
// Tolerances.WeightSum points away from 100 they are all rescaled by 100/sum.
//
// Every correction is recorded as a FindingCorrection right after the
// inconsistency that triggered it. records is not modified.
func (v *Validator) Validate(records []SecurityRecord, total decimal.NullDecimal) ([]SecurityRecord, []Finding) {
	out := make([]SecurityRecord, len(records))
	copy(out, records)
	var findings []Finding
	for i := range out {
		findings = append(findings, v.checkValue(&out[i], total)...)
		findings = append(findings, v.checkWeight(&out[i], total)...)
	}
	findings = append(findings, v.normalizeWeights(out)...)
	return out, findings
}

// ExpectedValue returns the value implied by quantity and price. Prices are
// read as quoted per 100 nominal units, the value is quantity × price / 100.
// Statements quoting per unit are reconciled by PerUnitPriceRule.
func ExpectedValue(r *SecurityRecord) (decimal.Decimal, bool) {
	if !r.Quantity.Valid || !r.Price.Valid {
		return decimal.Decimal{}, false
	}
	return r.Quantity.Decimal.Mul(r.Price.Decimal).Div(hundred), true
}

// relativeGap returns |expected-actual|/|actual|.
func relativeGap(expected, actual decimal.Decimal) decimal.Decimal {
	if actual.IsZero() {
		if expected.IsZero() {
			return decimal.Zero
		}
		return decimal.NewFromInt(1)
	}
	return expected.Sub(actual).Abs().Div(actual.Abs())
}

func (v *Validator) checkValue(r *SecurityRecord, total decimal.NullDecimal) []Finding {
	expected, ok := ExpectedValue(r)
	if !ok || !r.Value.Valid {
		return nil
	}
	gap := relativeGap(expected, r.Value.Decimal)
	if gap.LessThanOrEqual(v.tol.ValueRelative) {
		return nil
	}
	f := Finding{
		Kind:     FindingInconsistency,
		Key:      r.Key(),
		Rule:     CheckValue,
		Field:    "value",
		Expected: decimal.NewNullDecimal(expected),
		Actual:   r.Value,
		Message:  fmt.Sprintf("quantity × price / 100 is %s, value is %s (%s%% off)", expected, r.Value.Decimal, gap.Mul(hundred).StringFixed(1)),
	}
	logging.Logger().WithField("key", f.Key).WithField("expected", expected).WithField("actual", r.Value.Decimal).Warn("inconsistent-value")
	return v.correct(r, f, Check{Name: CheckValue, Expected: expected, Actual: r.Value.Decimal, Total: total, Tolerances: v.tol})
}

func (v *Validator) checkWeight(r *SecurityRecord, total decimal.NullDecimal) []Finding {
	if !r.Value.Valid || !r.Weight.Valid || !total.Valid || total.Decimal.IsZero() {
		return nil
	}
	expected := r.Value.Decimal.Mul(hundred).Div(total.Decimal)
	if expected.Sub(r.Weight.Decimal).Abs().LessThanOrEqual(v.tol.WeightPoints) {
		return nil
	}
	f := Finding{
		Kind:     FindingInconsistency,
		Key:      r.Key(),
		Rule:     CheckWeight,
		Field:    "weight",
		Expected: decimal.NewNullDecimal(expected.Round(4)),
		Actual:   r.Weight,
		Message:  fmt.Sprintf("value / total is %s%%, weight is %s%%", expected.StringFixed(2), r.Weight.Decimal),
	}
	logging.Logger().WithField("key", f.Key).WithField("expected", expected.StringFixed(2)).WithField("actual", r.Weight.Decimal).Warn("inconsistent-weight")
	return v.correct(r, f, Check{Name: CheckWeight, Expected: expected, Actual: r.Weight.Decimal, Total: total, Tolerances: v.tol})
}

// correct returns the inconsistency finding, followed by a correction
// finding when a rule applies.
func (v *Validator) correct(r *SecurityRecord, inconsistency Finding, c Check) []Finding {
	findings := []Finding{inconsistency}
	for _, rule := range v.rules {
		if rule.Check != c.Name || !rule.Applies(r, c) {
			continue
		}
		name, value := rule.Correct(r, c)
		f := r.field(name)
		if f == nil {
			logging.Logger().WithField("rule", rule.Name).WithField("field", name).Error("unknown-correction-field")
			return findings
		}
		before := *f
		*f = decimal.NewNullDecimal(value)
		logging.Logger().WithField("rule", rule.Name).WithField("key", inconsistency.Key).WithField("field", name).
			WithField("before", nullString(before)).WithField("after", value).Info("consistency-correction")
		return append(findings, Finding{
			Kind:     FindingCorrection,
			Key:      inconsistency.Key,
			Rule:     rule.Name,
			Field:    name,
			Expected: *f,
			Actual:   before,
			Message:  fmt.Sprintf("%s corrected from %s to %s", name, nullString(before), value),
		})
	}
	return findings
}

// normalizeWeights rescales the weights by 100/sum when their sum is more
// than Tolerances.WeightSum points away from 100.
func (v *Validator) normalizeWeights(records []SecurityRecord) []Finding {
	sum, n := decimal.Zero, 0
	for _, r := range records {
		if r.Weight.Valid {
			sum, n = sum.Add(r.Weight.Decimal), n+1
		}
	}
	if n == 0 || sum.IsZero() || sum.Sub(hundred).Abs().LessThanOrEqual(v.tol.WeightSum) {
		return nil
	}
	for i := range records {
		if w := records[i].Weight; w.Valid {
			records[i].Weight = decimal.NewNullDecimal(w.Decimal.Mul(hundred).Div(sum))
		}
	}
	logging.Logger().WithField("sum", sum).WithField("weights", n).Info("renormalize-weights")
	return []Finding{
		{
			Kind:     FindingInconsistency,
			Rule:     "weight-sum",
			Field:    "weight",
			Expected: decimal.NewNullDecimal(hundred),
			Actual:   decimal.NewNullDecimal(sum),
			Message:  fmt.Sprintf("weights sum to %s%%", sum),
		},
		{
			Kind:     FindingCorrection,
			Rule:     "renormalize-weights",
			Field:    "weight",
			Expected: decimal.NewNullDecimal(hundred),
			Actual:   decimal.NewNullDecimal(sum),
			Message:  fmt.Sprintf("%d weights rescaled by 100/%s", n, sum),
		},
	}
}
