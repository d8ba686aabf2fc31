package security

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/patrickmn/go-cache"
)

// DefaultThreshold is the minimum combined score for a fuzzy match.
const DefaultThreshold = 0.6

// Weights of the three similarity signals in the combined score.
const (
	containmentWeight = 0.4
	sequenceWeight    = 0.4
	tokenWeight       = 0.2
)

// Match is the result of a fuzzy name resolution.
type Match struct {
	Entry       Entry
	Score       float64 // combined score in [0,1]
	Containment float64
	Sequence    float64
	Token       float64
	Exact       bool // resolved through the exact name or a pre-indexed variant
}

// FindBestMatch returns the entry whose name best matches name, provided its
// combined score reaches threshold. There is no best-effort weak match.
//
// Exact names and pre-indexed variants are tried first and score 1. Then every
// reference name is scored by 0.4·containment + 0.4·sequence + 0.2·token over
// the normalized forms. Ties go to the lowest ISIN.
func (db *DB) FindBestMatch(name string, threshold float64) (Match, bool) {
	query := NormalizeName(name)
	if query == "" {
		return Match{}, false
	}

	// Results are keyed by the generation they were computed on, a result
	// racing with Add or Remove is stored under a generation no longer read.
	db.mu.RLock()
	gen := db.generation
	db.mu.RUnlock()
	key := matchKey(gen, name, threshold)
	if v, found := db.matches.Get(key); found {
		m := v.(cachedMatch)
		m.match.Entry = m.match.Entry.clone()
		return m.match, m.ok
	}

	m, ok := db.findBestMatch(name, query, threshold)
	db.matches.Set(key, cachedMatch{m, ok}, cache.DefaultExpiration)
	return m, ok
}

func matchKey(gen uint64, name string, threshold float64) string {
	return fmt.Sprintf("%d|%s|%.4f", gen, strings.ToLower(strings.TrimSpace(name)), threshold)
}

type cachedMatch struct {
	match Match
	ok    bool
}

func (db *DB) findBestMatch(name, query string, threshold float64) (Match, bool) {
	if e, ok := db.ByName(name); ok {
		return Match{Entry: e, Score: 1, Containment: 1, Sequence: 1, Token: 1, Exact: true}, true
	}

	db.mu.RLock()
	defer db.mu.RUnlock()

	isins := make([]string, 0, len(db.normalized))
	for isin := range db.normalized {
		isins = append(isins, isin)
	}
	slices.Sort(isins)

	var best Match
	bestISIN := ""
	for _, isin := range isins {
		c, s, t := similarity(query, db.normalized[isin])
		score := containmentWeight*c + sequenceWeight*s + tokenWeight*t
		if bestISIN == "" || score > best.Score {
			best = Match{Score: score, Containment: c, Sequence: s, Token: t}
			bestISIN = isin
		}
	}
	if bestISIN == "" || best.Score < threshold {
		return Match{}, false
	}
	best.Entry, _ = db.get(bestISIN)
	return best, true
}

// Similarity returns the combined score between two names, after normalization.
func Similarity(a, b string) float64 {
	c, s, t := similarity(NormalizeName(a), NormalizeName(b))
	return containmentWeight*c + sequenceWeight*s + tokenWeight*t
}

// similarity computes the three signals on already normalized names.
func similarity(a, b string) (containment, sequence, token float64) {
	return containmentRatio(a, b), sequenceRatio(a, b), tokenJaccard(a, b)
}

// containmentRatio is the length of the shorter string over the longer one's
// when one contains the other, 0 otherwise.
func containmentRatio(a, b string) float64 {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	if la == 0 || lb == 0 {
		return 0
	}
	if la > lb {
		a, b = b, a
		la, lb = lb, la
	}
	if !strings.Contains(b, a) {
		return 0
	}
	return float64(la) / float64(lb)
}

// sequenceRatio is 1 - editDistance/maxLength, in [0,1].
func sequenceRatio(a, b string) float64 {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	longest := max(la, lb)
	if longest == 0 {
		return 1
	}
	d := levenshtein.ComputeDistance(a, b)
	return 1 - float64(d)/float64(longest)
}

// tokenJaccard is the Jaccard similarity of the word sets.
func tokenJaccard(a, b string) float64 {
	sa := make(map[string]bool)
	for _, w := range strings.Fields(a) {
		sa[w] = true
	}
	sb := make(map[string]bool)
	for _, w := range strings.Fields(b) {
		sb[w] = true
	}
	if len(sa) == 0 && len(sb) == 0 {
		return 0
	}
	inter := 0
	for w := range sa {
		if sb[w] {
			inter++
		}
	}
	union := len(sa) + len(sb) - inter
	return float64(inter) / float64(union)
}
