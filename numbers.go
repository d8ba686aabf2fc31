package holdings

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// newDecimal is a convenient factory for decimal.Decimal
func newDecimal[T float64 | int | int64 | decimal.Decimal](value T) decimal.Decimal {
	switch v := any(value).(type) {
	case decimal.Decimal:
		return v
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	default:
		panic("unsupported type")
	}
}

// D returns a valid decimal.NullDecimal holding value.
func D[T float64 | int | int64 | decimal.Decimal](value T) decimal.NullDecimal {
	return decimal.NewNullDecimal(newDecimal(value))
}

// currencySymbols maps the currency signs found in statements to their ISO code.
var currencySymbols = map[string]string{
	"$":   "USD",
	"US$": "USD",
	"€":   "EUR",
	"£":   "GBP",
	"¥":   "JPY",
	"₣":   "CHF",
	"Fr.": "CHF",
	"₹":   "INR",
	"kr":  "SEK",
}

// symbolOrder lists currencySymbols keys, longest first.
var symbolOrder = []string{"US$", "Fr.", "kr", "$", "€", "£", "¥", "₣", "₹"}

// ambiguousCodes are ISO codes that are more often plain words in statements.
var ambiguousCodes = map[string]bool{"ALL": true, "TOP": true, "MOP": true, "CUP": true, "BOB": true}

// currencyToken finds ISO currency code candidates in text.
var currencyToken = regexp.MustCompile(`\b[A-Z]{3}\b`)

// IsCurrencyCode reports whether code is a known ISO 4217 currency code.
func IsCurrencyCode(code string) bool {
	return len(code) == 3 && money.GetCurrency(code) != nil
}

// FindCurrency returns the first ISO currency code found in text, or "".
// A currency symbol is accepted when no code is present.
func FindCurrency(text string) string {
	for _, tok := range currencyToken.FindAllString(text, -1) {
		if !ambiguousCodes[tok] && IsCurrencyCode(tok) {
			return tok
		}
	}
	for _, sym := range []string{"US$", "€", "£", "¥", "₣", "₹", "$"} {
		if strings.Contains(text, sym) {
			return currencySymbols[sym]
		}
	}
	return ""
}

// hasCurrencyMark reports whether a cell carries a currency symbol or code.
func hasCurrencyMark(s string) bool {
	if strings.ContainsAny(s, "$€£¥₣₹") {
		return true
	}
	for _, tok := range currencyToken.FindAllString(s, -1) {
		if !ambiguousCodes[tok] && IsCurrencyCode(tok) {
			return true
		}
	}
	return false
}

// hasPercentMark reports whether a cell carries a percent symbol.
func hasPercentMark(s string) bool { return strings.ContainsAny(s, "%‰") }

// couponRegex finds a number immediately followed by a percent sign.
var couponRegex = regexp.MustCompile(`(?:^|[^\d.,])(\d{1,2}(?:[.,]\d{1,4})?)\s?%`)

// FindCoupon returns the first percentage found in text.
func FindCoupon(text string) (decimal.Decimal, bool) {
	m := couponRegex.FindStringSubmatch(text)
	if m == nil {
		return decimal.Decimal{}, false
	}
	return ParseNumber(m[1])
}

// ParseNumber parses a number as printed in a statement.
//
// Currency symbols and codes, percent signs and thousands separators (blanks,
// apostrophes, commas or dots) are stripped. Negative amounts can be written
// "-12", "12-" or "(12)". When both '.' and ',' are present the last one is
// the decimal separator. A lone ',' followed by exactly three digits is a
// thousands separator, otherwise it is the decimal one. A lone '.' is always
// the decimal separator.
//
// Any other letter makes the parse fail.
func ParseNumber(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Decimal{}, false
	}
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg, s = true, s[1:len(s)-1]
	}
	// Currency codes, before symbols so that "US$" is handled.
	s = currencyToken.ReplaceAllStringFunc(s, func(tok string) string {
		if IsCurrencyCode(tok) {
			return ""
		}
		return tok
	})
	for _, sym := range symbolOrder {
		s = strings.ReplaceAll(s, sym, "")
	}
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "-") || strings.HasSuffix(s, "−") {
		neg, s = !neg, strings.TrimRight(s, "-−")
	}

	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.', r == ',':
			b.WriteRune(r)
		case r == '-' || r == '−':
			if b.Len() > 0 {
				return decimal.Decimal{}, false
			}
			neg = !neg
		case r == '+', r == '%', r == '‰', r == '\'', r == '’', unicode.IsSpace(r):
		default:
			return decimal.Decimal{}, false
		}
	}
	num := b.String()
	if num == "" || strings.Trim(num, ".,") == "" {
		return decimal.Decimal{}, false
	}
	num, ok := normalizeSeparators(num)
	if !ok {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(num)
	if err != nil {
		return decimal.Decimal{}, false
	}
	if neg {
		d = d.Neg()
	}
	return d, true
}

// normalizeSeparators rewrites num, made of digits, '.' and ',', with '.' as
// the only decimal separator and no thousands separator. It fails when
// thousands separators do not delimit groups of three digits, as in dates.
func normalizeSeparators(num string) (string, bool) {
	lastDot, lastComma := strings.LastIndex(num, "."), strings.LastIndex(num, ",")
	dots, commas := strings.Count(num, "."), strings.Count(num, ",")
	decimalSep := byte(0)
	switch {
	case dots > 0 && commas > 0:
		if lastDot > lastComma {
			decimalSep = '.'
		} else {
			decimalSep = ','
		}
	case commas == 1:
		intPart, frac := num[:lastComma], num[lastComma+1:]
		if len(frac) != 3 || intPart == "" || intPart == "0" {
			decimalSep = ','
		}
	case dots == 1:
		decimalSep = '.'
	}
	var b strings.Builder
	group := -1 // digits since the last thousands separator, -1 before the first one
	for i := 0; i < len(num); i++ {
		c := num[i]
		switch {
		case c >= '0' && c <= '9':
			b.WriteByte(c)
			if group >= 0 {
				group++
			}
		case c == decimalSep && (i == lastDot || i == lastComma):
			if group >= 0 && group != 3 {
				return "", false
			}
			group = -1
			b.WriteByte('.')
			// the fraction is free
			b.WriteString(strings.Map(digitsOnly, num[i+1:]))
			return b.String(), true
		default:
			if group >= 0 && group != 3 {
				return "", false
			}
			group = 0
		}
	}
	if group >= 0 && group != 3 {
		return "", false
	}
	return b.String(), true
}

func digitsOnly(r rune) rune {
	if r >= '0' && r <= '9' {
		return r
	}
	return -1
}

// parseNull parses s into a NullDecimal, invalid when s is not a number.
func parseNull(s string) decimal.NullDecimal {
	d, ok := ParseNumber(s)
	if !ok {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}
