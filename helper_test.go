package holdings

import (
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

// N is a helper for test to create a valid NullDecimal from a literal.
func N(s string) decimal.NullDecimal { return decimal.NewNullDecimal(decimal.RequireFromString(s)) }

// equalDecimals compares decimals by value, 1000 equals 1000.00.
var equalDecimals = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

// table is a helper for test to create a stream candidate on page 1.
func table(headers []string, rows ...[]string) *TableCandidate {
	return NewTableCandidate(1, "test", KindStream, NoAccuracy, headers, rows, nil)
}
