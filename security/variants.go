package security

import (
	"strings"
	"unicode/utf8"
)

// abbreviations pairs a long word with its usual abbreviation in statements.
var abbreviations = [][2]string{
	{"international", "intl"},
	{"corporation", "corp"},
	{"company", "co"},
	{"holdings", "hldgs"},
	{"holding", "hldg"},
	{"incorporated", "inc"},
	{"limited", "ltd"},
	{"industries", "inds"},
	{"technologies", "tech"},
	{"technology", "tech"},
	{"financial", "finl"},
	{"group", "grp"},
	{"manufacturing", "mfg"},
	{"pharmaceuticals", "pharma"},
	{"communications", "comm"},
	{"systems", "sys"},
	{"national", "natl"},
	{"american", "amer"},
}

// nameVariants returns all the distinct forms a name is indexed under:
// basic and normalized forms, with abbreviations substituted in both
// directions, with and without a leading "the", and the initials of multi
// word names.
func nameVariants(name string) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(v string) {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			return
		}
		seen[v] = true
		out = append(out, v)
	}

	basic := basicName(name)
	normalized := NormalizeName(name)
	for _, base := range []string{basic, normalized} {
		add(base)
		for _, v := range substituteAbbreviations(base) {
			add(v)
		}
		if rest, ok := strings.CutPrefix(base, "the "); ok {
			add(rest)
		} else {
			add("the " + base)
		}
	}

	if ws := strings.Fields(normalized); len(ws) >= 2 {
		var initials strings.Builder
		for _, w := range ws {
			r, _ := utf8.DecodeRuneInString(w)
			initials.WriteRune(r)
		}
		add(initials.String())
	}
	return out
}

// substituteAbbreviations returns the name with each known long word
// abbreviated and each known abbreviation expanded, word by word.
func substituteAbbreviations(name string) []string {
	ws := strings.Fields(name)
	short := make([]string, len(ws))
	long := make([]string, len(ws))
	for i, w := range ws {
		short[i], long[i] = w, w
		for _, a := range abbreviations {
			if w == a[0] {
				short[i] = a[1]
			}
			if w == a[1] {
				long[i] = a[0]
			}
		}
	}
	return []string{strings.Join(short, " "), strings.Join(long, " ")}
}
