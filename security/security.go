// Package security holds the identity of tradeable securities: identifier
// validation (ISIN, CUSIP, SEDOL) and a reference database used to resolve
// securities extracted from documents to their canonical identity.
package security

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidISIN is returned when an ISIN fails format or checksum validation.
var ErrInvalidISIN = errors.New("invalid ISIN")

// isinRegex checks for the basic structure: 2 letters, 9 alphanumeric, 1 digit.
var isinRegex = regexp.MustCompile(`^[A-Z]{2}[A-Z0-9]{9}[0-9]$`)

// isinShapeRegex finds ISIN-shaped tokens inside free text.
var isinShapeRegex = regexp.MustCompile(`\b[A-Z]{2}[A-Z0-9]{9}[0-9]\b`)

// cusipRegex checks for 9 alphanumeric characters (plus the *@# specials) ending with a digit.
var cusipRegex = regexp.MustCompile(`^[A-Z0-9*@#]{8}[0-9]$`)

// sedolRegex checks for 6 alphanumeric characters without vowels, plus a check digit.
var sedolRegex = regexp.MustCompile(`^[B-DF-HJ-NP-TV-Z0-9]{6}[0-9]$`)

// ValidateISIN checks if a string is a validly formatted ISIN.
// It returns nil if valid, or a descriptive error wrapping ErrInvalidISIN.
func ValidateISIN(isin string) error {
	// 1. Length validation
	if len(isin) != 12 {
		return fmt.Errorf("%w: must be 12 characters, got %d", ErrInvalidISIN, len(isin))
	}

	// 2. Format validation
	if !isinRegex.MatchString(isin) {
		return fmt.Errorf("%w: must be 2 uppercase letters, 9 alphanumeric chars, and 1 digit", ErrInvalidISIN)
	}

	// 3. Compare against the check digit computed on the first 11 characters.
	expected := isinCheckDigit(isin[:11])
	actual := int(isin[11] - '0')
	if expected != actual {
		return fmt.Errorf("%w: check digit expected %d, got %d", ErrInvalidISIN, expected, actual)
	}
	return nil
}

// IsValidISIN reports whether code is a valid ISIN. It never panics.
func IsValidISIN(code string) bool { return ValidateISIN(code) == nil }

// LooksLikeISIN reports whether s has the shape of an ISIN, regardless of its check digit.
func LooksLikeISIN(s string) bool { return isinRegex.MatchString(NormalizeISIN(s)) }

// FindISIN returns the first ISIN-shaped token found in text, or "".
// Tokens with a valid check digit are preferred over merely shaped ones.
func FindISIN(text string) string {
	matches := isinShapeRegex.FindAllString(strings.ToUpper(text), -1)
	for _, m := range matches {
		if IsValidISIN(m) {
			return m
		}
	}
	if len(matches) > 0 {
		return matches[0]
	}
	return ""
}

// NormalizeISIN uppercases the code and removes blanks and dashes, as
// documents often print "US 037833 1005" or "US-0378331005".
func NormalizeISIN(code string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '\t', '\u00a0':
			return -1
		}
		if r >= 'a' && r <= 'z' {
			return r - 'a' + 'A'
		}
		return r
	}, code)
}

// isinCheckDigit computes the check digit of an 11 characters ISIN prefix.
//
// Letters are expanded to their base-36 value (A=10 .. Z=35), then a variation
// of the Luhn algorithm is applied on the resulting digit string: starting from
// the rightmost digit, every second digit is doubled and all digits are summed.
func isinCheckDigit(prefix string) int {
	var digits strings.Builder
	for _, char := range prefix {
		if char >= 'A' && char <= 'Z' {
			digits.WriteString(strconv.Itoa(int(char - 'A' + 10)))
		} else {
			digits.WriteRune(char)
		}
	}

	sum := 0
	isSecond := true
	s := digits.String()
	for i := len(s) - 1; i >= 0; i-- {
		digit := int(s[i] - '0')
		if isSecond {
			digit *= 2
		}
		sum += (digit / 10) + (digit % 10)
		isSecond = !isSecond
	}
	return (10 - (sum % 10)) % 10
}

// ValidateCUSIP checks a 9 characters CUSIP and its modulus 10 "double add double" check digit.
func ValidateCUSIP(cusip string) error {
	if len(cusip) != 9 {
		return fmt.Errorf("invalid CUSIP: must be 9 characters, got %d", len(cusip))
	}
	if !cusipRegex.MatchString(cusip) {
		return fmt.Errorf("invalid CUSIP: must be 8 alphanumeric chars and 1 digit")
	}
	sum := 0
	for i := 0; i < 8; i++ {
		c := cusip[i]
		var v int
		switch {
		case c >= '0' && c <= '9':
			v = int(c - '0')
		case c >= 'A' && c <= 'Z':
			v = int(c-'A') + 10
		case c == '*':
			v = 36
		case c == '@':
			v = 37
		case c == '#':
			v = 38
		}
		if i%2 == 1 {
			v *= 2
		}
		sum += v/10 + v%10
	}
	expected := (10 - sum%10) % 10
	if actual := int(cusip[8] - '0'); actual != expected {
		return fmt.Errorf("invalid CUSIP: check digit expected %d, got %d", expected, actual)
	}
	return nil
}

// sedolWeights are the SEDOL check digit weights.
var sedolWeights = [6]int{1, 3, 1, 7, 3, 9}

// ValidateSEDOL checks a 7 characters SEDOL and its weighted check digit.
func ValidateSEDOL(sedol string) error {
	if len(sedol) != 7 {
		return fmt.Errorf("invalid SEDOL: must be 7 characters, got %d", len(sedol))
	}
	if !sedolRegex.MatchString(sedol) {
		return fmt.Errorf("invalid SEDOL: must be 6 alphanumeric chars without vowels and 1 digit")
	}
	sum := 0
	for i := 0; i < 6; i++ {
		c := sedol[i]
		v := int(c - '0')
		if c >= 'A' && c <= 'Z' {
			v = int(c-'A') + 10
		}
		sum += v * sedolWeights[i]
	}
	expected := (10 - sum%10) % 10
	if actual := int(sedol[6] - '0'); actual != expected {
		return fmt.Errorf("invalid SEDOL: check digit expected %d, got %d", expected, actual)
	}
	return nil
}

// ISINFromCUSIP builds the ISIN of a North American security from its country code and CUSIP.
func ISINFromCUSIP(country, cusip string) (string, error) {
	if err := ValidateCUSIP(cusip); err != nil {
		return "", err
	}
	country = strings.ToUpper(country)
	if len(country) != 2 || country[0] < 'A' || country[0] > 'Z' || country[1] < 'A' || country[1] > 'Z' {
		return "", fmt.Errorf("invalid country code %q", country)
	}
	prefix := country + cusip
	return prefix + strconv.Itoa(isinCheckDigit(prefix)), nil
}

// ISINFromSEDOL builds the ISIN of a UK or Irish security from its country code and SEDOL.
func ISINFromSEDOL(country, sedol string) (string, error) {
	if err := ValidateSEDOL(sedol); err != nil {
		return "", err
	}
	country = strings.ToUpper(country)
	if country != "GB" && country != "IE" {
		return "", fmt.Errorf("SEDOL based ISIN requires GB or IE country, got %q", country)
	}
	prefix := country + "00" + sedol
	return prefix + strconv.Itoa(isinCheckDigit(prefix)), nil
}
