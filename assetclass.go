package holdings

import (
	"regexp"
	"strings"
)

// classPatterns recognise an asset class from a security name, in order.
var classPatterns = []struct {
	class   AssetClass
	pattern *regexp.Regexp
}{
	{Cash, regexp.MustCompile(`(?i)\b(cash|current account|call account|deposit|liquidit(y|ies)|sight account)\b`)},
	{StructuredProduct, regexp.MustCompile(`(?i)\b(certificate|structured|warrant|autocall\w*|barrier|reverse convertible|tracker|zertifikat)\b`)},
	{Fund, regexp.MustCompile(`(?i)\b(etf|etc|fund|funds|ucits|sicav|fcp|oeic|ishares|vanguard|spdr|xtrackers|lyxor|amundi|invesco|index)\b`)},
}

// bondName recognises bonds from their name. Coupons and maturities are
// stronger signals, checked alongside.
var bondName = regexp.MustCompile(`(?i)\b(bond|bonds|note|notes|treasury|bund|bunds|oat|gilt|debenture|obligation|anleihe|floater|frn)\b`)

// sectionPatterns recognise an asset class from a section heading row.
var sectionPatterns = []struct {
	class   AssetClass
	pattern *regexp.Regexp
}{
	{Cash, regexp.MustCompile(`(?i)\b(cash|liquidit(y|ies)|money)\b`)},
	{StructuredProduct, regexp.MustCompile(`(?i)\b(structured|certificates|derivatives)\b`)},
	{Fund, regexp.MustCompile(`(?i)\b(funds?|etfs?|investment funds|collective)\b`)},
	{Bond, regexp.MustCompile(`(?i)\b(bonds?|fixed income|obligations|anleihen|renten|debt)\b`)},
	{Equity, regexp.MustCompile(`(?i)\b(equit(y|ies)|shares|stocks|aktien|actions)\b`)},
}

// sectionClass returns the asset class announced by a section heading.
func sectionClass(text string) (AssetClass, bool) {
	for _, p := range sectionPatterns {
		if p.pattern.MatchString(text) {
			return p.class, true
		}
	}
	return "", false
}

// typeClass maps a reference security type to an asset class.
func typeClass(securityType string) (AssetClass, bool) {
	t := strings.ToLower(securityType)
	switch {
	case t == "":
		return "", false
	case strings.Contains(t, "etf"), strings.Contains(t, "fund"):
		return Fund, true
	case strings.Contains(t, "bond"), strings.Contains(t, "note"), strings.Contains(t, "bill"):
		return Bond, true
	case strings.Contains(t, "stock"), strings.Contains(t, "equity"), strings.Contains(t, "share"), strings.Contains(t, "adr"):
		return Equity, true
	case strings.Contains(t, "cash"):
		return Cash, true
	case strings.Contains(t, "structured"), strings.Contains(t, "certificate"):
		return StructuredProduct, true
	}
	return OtherAsset, true
}

// inferAssetClass returns the asset class of r from positive evidence only:
// its name, a coupon or maturity, the section of the table it was read
// in, and its reference security type. It reports false when nothing points to
// a class, in which case the caller decides on a default.
func inferAssetClass(r *SecurityRecord, section AssetClass) (AssetClass, bool) {
	for _, p := range classPatterns {
		if p.pattern.MatchString(r.Name) {
			return p.class, true
		}
	}
	if r.Coupon.Valid || r.Maturity != "" || bondName.MatchString(r.Name) {
		return Bond, true
	}
	if section != "" {
		return section, true
	}
	return typeClass(r.SecurityType)
}
