package renderer

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money is an amount as printed in a report, possibly unknown.
type Money struct {
	value decimal.NullDecimal
	cur   string
}

// M returns the Money of value in currency, unknown when value is null.
func M(value decimal.NullDecimal, currency string) Money {
	return Money{value: value, cur: currency}
}

func (m Money) IsKnown() bool { return m.value.Valid }

// String formats the amount the way the currency does, "-" when unknown.
// Amounts without a known currency are printed with two decimals.
func (m Money) String() string {
	if !m.value.Valid {
		return "-"
	}
	if money.GetCurrency(m.cur) == nil {
		return m.value.Decimal.StringFixed(2)
	}
	// to get a never nil currency I need to call the Money constructor
	cur := money.New(0, m.cur).Currency()
	dec := m.value.Decimal.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(dec.IntPart())
}

// Percent is a percentage as printed in a report, possibly unknown.
type Percent struct {
	value decimal.NullDecimal
}

// P returns the Percent of value, unknown when value is null.
func P(value decimal.NullDecimal) Percent { return Percent{value} }

func (p Percent) String() string {
	if !p.value.Valid {
		return "-"
	}
	return p.value.Decimal.StringFixed(2) + "%"
}

// Quantity is a number as printed in a report, possibly unknown.
type Quantity struct {
	value decimal.NullDecimal
}

// Q returns the Quantity of value, unknown when value is null.
func Q(value decimal.NullDecimal) Quantity { return Quantity{value} }

func (q Quantity) String() string {
	if !q.value.Valid {
		return "-"
	}
	return q.value.Decimal.String()
}
