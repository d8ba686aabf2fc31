package holdings

import (
	"slices"
	"strings"

	"github.com/etnz/holdings/logging"
)

// DefaultDuplicateThreshold is the cell-overlap similarity above which two
// candidates are the same physical table.
const DefaultDuplicateThreshold = 0.7

// Deduplicator drops table candidates that repeat a better extraction of the
// same table.
type Deduplicator struct {
	Threshold float64       // defaults to DefaultDuplicateThreshold
	Priority  []BackendKind // defaults to DefaultPriority
}

// Deduplicate returns the candidates that are not duplicates of a better
// one, in input order.
//
// Candidates of the same page are compared pairwise with TableSimilarity.
// Among duplicates the highest accuracy wins. When either accuracy is
// missing, or both are equal, the higher priority backend wins, then the
// first one.
func (d Deduplicator) Deduplicate(cands []*TableCandidate) []*TableCandidate {
	th := d.Threshold
	if th <= 0 {
		th = DefaultDuplicateThreshold
	}
	prio := d.Priority
	if len(prio) == 0 {
		prio = DefaultPriority
	}
	better := func(a, b *TableCandidate) bool {
		if a.HasAccuracy() && b.HasAccuracy() && a.accuracy != b.accuracy {
			return a.accuracy > b.accuracy
		}
		return priority(prio, a.kind) < priority(prio, b.kind)
	}

	var kept []*TableCandidate
	for _, c := range cands {
		if c.IsEmpty() {
			continue
		}
		var beaten []*TableCandidate
		dropped := false
		for _, k := range kept {
			if k.page != c.page {
				continue
			}
			sim := TableSimilarity(c, k)
			if sim < th {
				continue
			}
			if !better(c, k) {
				logging.Logger().WithField("table", c.id).WithField("kept", k.id).WithField("similarity", sim).Debug("drop-duplicate-table")
				dropped = true
				break
			}
			beaten = append(beaten, k)
		}
		if dropped {
			continue
		}
		for _, b := range beaten {
			logging.Logger().WithField("table", b.id).WithField("kept", c.id).Debug("drop-duplicate-table")
		}
		kept = slices.DeleteFunc(kept, func(k *TableCandidate) bool { return slices.Contains(beaten, k) })
		kept = append(kept, c)
	}
	// restore input order
	order := make(map[*TableCandidate]int, len(cands))
	for i, c := range cands {
		order[c] = i
	}
	slices.SortFunc(kept, func(a, b *TableCandidate) int { return order[a] - order[b] })
	return kept
}

// TableSimilarity returns the cell-overlap similarity of two candidates in [0,1].
//
// Over the overlapping rows and columns, it is the share of compared cells
// whose values match or contain one another. Cells empty on both sides are
// not compared. Headers count as the first row. As backends disagree on
// whether the header is part of the table, the best of the alignments shifted
// by one row is used.
func TableSimilarity(a, b *TableCandidate) float64 {
	ma, mb := a.matrix(), b.matrix()
	best := 0.0
	for _, off := range []int{0, -1, 1} {
		best = max(best, overlap(ma, mb, off))
	}
	return best
}

// matrix returns the normalized cells, headers first when present.
func (t *TableCandidate) matrix() [][]string {
	var m [][]string
	if slices.ContainsFunc(t.headers, func(h string) bool { return h != "" }) {
		m = append(m, normalizeCells(t.headers))
	}
	for _, r := range t.rows {
		m = append(m, normalizeCells(r))
	}
	return m
}

func normalizeCells(row []string) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = strings.ToLower(strings.Join(strings.Fields(v), " "))
	}
	return out
}

// overlap compares a[i] with b[i+off].
func overlap(a, b [][]string, off int) float64 {
	compared, matched := 0, 0
	for i := range a {
		k := i + off
		if k < 0 || k >= len(b) {
			continue
		}
		for j := 0; j < min(len(a[i]), len(b[k])); j++ {
			x, y := a[i][j], b[k][j]
			if x == "" && y == "" {
				continue
			}
			compared++
			if x != "" && y != "" && (strings.Contains(x, y) || strings.Contains(y, x)) {
				matched++
			}
		}
	}
	if compared == 0 {
		return 0
	}
	return float64(matched) / float64(compared)
}
