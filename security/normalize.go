package security

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stopwords are dropped from names before comparing them.
var stopwords = map[string]bool{
	"the": true, "of": true, "and": true, "a": true, "an": true, "for": true,
	"de": true, "du": true, "des": true, "la": true, "le": true, "et": true, "und": true,
}

// legalSuffixes are legal-entity forms and share class noise found after company names.
var legalSuffixes = map[string]bool{
	"inc": true, "incorporated": true, "corp": true, "corporation": true,
	"ltd": true, "limited": true, "plc": true, "llc": true, "lp": true,
	"co": true, "company": true, "ag": true, "sa": true, "se": true,
	"nv": true, "bv": true, "gmbh": true, "spa": true, "ab": true,
	"asa": true, "oyj": true, "kgaa": true, "sarl": true, "sca": true,
	"com": true, "reg": true, "registered": true, "shs": true, "ord": true, "namen": true,
}

// dottedAbbreviation matches dotted initials such as "S.A." or "p.l.c.".
var dottedAbbreviation = regexp.MustCompile(`(?i)\b[a-z](?:\.[a-z])+\.?`)

// foldDiacritics removes combining marks after a canonical decomposition,
// "Nestlé" becomes "Nestle".
func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// words splits a name into lowercase alphanumeric words, "&" is read as "and".
func words(name string) []string {
	name = dottedAbbreviation.ReplaceAllStringFunc(foldDiacritics(name), func(m string) string {
		return strings.ReplaceAll(m, ".", "")
	})
	name = strings.ReplaceAll(name, "&", " and ")
	return strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// basicName lowercases the name, strips punctuation and collapses blanks.
func basicName(name string) string { return strings.Join(words(name), " ") }

// NormalizeName returns the comparison form of a security name: lowercase,
// without punctuation, stopwords and legal-entity suffixes.
//
// If nothing survives the filtering, the basic form is returned instead.
func NormalizeName(name string) string {
	ws := words(name)
	kept := make([]string, 0, len(ws))
	for _, w := range ws {
		if stopwords[w] || legalSuffixes[w] {
			continue
		}
		kept = append(kept, w)
	}
	if len(kept) == 0 {
		return strings.Join(ws, " ")
	}
	return strings.Join(kept, " ")
}
