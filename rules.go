package holdings

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Names of the checks a CorrectionRule can react to.
const (
	CheckValue  = "value"  // value against quantity × price
	CheckWeight = "weight" // weight against value / total value
)

// Check describes a failed consistency check of one record.
type Check struct {
	Name       string
	Expected   decimal.Decimal
	Actual     decimal.Decimal
	Total      decimal.NullDecimal // portfolio total value, when known
	Tolerances Tolerances
}

// CorrectionRule overwrites a field of a record that failed a check, when
// its condition holds. Rules encode the cases where a figure printed in the
// document is known to be more trustworthy than the one it contradicts.
type CorrectionRule struct {
	Name  string
	Check string // the check the rule reacts to
	// Applies reports whether the rule corrects r.
	Applies func(r *SecurityRecord, c Check) bool
	// Correct returns the field to overwrite and its new value.
	Correct func(r *SecurityRecord, c Check) (field string, value decimal.Decimal)
}

// DefaultRules returns the rules enabled by default.
func DefaultRules() []CorrectionRule {
	return []CorrectionRule{WholeNumberWeightRule()}
}

// WholeNumberWeightRule trusts a weight printed within Tolerances.WholeNumber
// of a whole number over the value: the value is recomputed as
// weight/100 × total.
func WholeNumberWeightRule() CorrectionRule {
	return CorrectionRule{
		Name:  "whole-number-weight",
		Check: CheckWeight,
		Applies: func(r *SecurityRecord, c Check) bool {
			if !r.Weight.Valid || !c.Total.Valid {
				return false
			}
			w := r.Weight.Decimal
			return w.Sub(w.Round(0)).Abs().LessThanOrEqual(c.Tolerances.WholeNumber)
		},
		Correct: func(r *SecurityRecord, c Check) (string, decimal.Decimal) {
			return "value", r.Weight.Decimal.Mul(c.Total.Decimal).Div(hundred)
		},
	}
}

// ScaleValueRule multiplies the value by factor when the scaled value agrees
// with quantity × price. It fixes values printed in another unit (thousands,
// or a misplaced decimal separator).
//
// It is not enabled by default: whether a given factor is a general
// convention or a quirk of one issuer's statements must be checked on real
// documents first.
func ScaleValueRule(factor decimal.Decimal) CorrectionRule {
	return CorrectionRule{
		Name:  fmt.Sprintf("scale-value-%s", factor),
		Check: CheckValue,
		Applies: func(r *SecurityRecord, c Check) bool {
			if !r.Value.Valid || factor.IsZero() {
				return false
			}
			scaled := r.Value.Decimal.Mul(factor)
			return !scaled.IsZero() && relativeGap(c.Expected, scaled).LessThanOrEqual(c.Tolerances.ValueRelative)
		},
		Correct: func(r *SecurityRecord, c Check) (string, decimal.Decimal) {
			return "value", r.Value.Decimal.Mul(factor)
		},
	}
}

// PerUnitPriceRule reconciles statements quoting prices per unit, as is usual
// for shares: when quantity × price matches the value, the price is rewritten
// as its quote per 100 units.
//
// It is not enabled by default, a value 100 times quantity × price / 100 is
// otherwise reported as an inconsistency.
func PerUnitPriceRule() CorrectionRule {
	return CorrectionRule{
		Name:  "per-unit-price",
		Check: CheckValue,
		Applies: func(r *SecurityRecord, c Check) bool {
			if !r.Quantity.Valid || !r.Price.Valid || !r.Value.Valid {
				return false
			}
			perUnit := r.Quantity.Decimal.Mul(r.Price.Decimal)
			return relativeGap(perUnit, r.Value.Decimal).LessThanOrEqual(c.Tolerances.ValueRelative)
		},
		Correct: func(r *SecurityRecord, c Check) (string, decimal.Decimal) {
			return "price", r.Price.Decimal.Mul(hundred)
		},
	}
}

// field returns a pointer to the numeric field called name, nil if unknown.
func (r *SecurityRecord) field(name string) *decimal.NullDecimal {
	switch name {
	case "quantity":
		return &r.Quantity
	case "price":
		return &r.Price
	case "acquisition_price":
		return &r.AcquisitionPrice
	case "value":
		return &r.Value
	case "coupon":
		return &r.Coupon
	case "weight":
		return &r.Weight
	}
	return nil
}
