package holdings

import (
	"testing"
)

var holdingsRows = [][]string{
	{"US0378331005", "Apple Inc.", "100", "18'550.00"},
	{"US5949181045", "Microsoft Corp.", "100", "41'020.00"},
	{"CH0038863350", "Nestlé S.A.", "100", "9'810.00"},
}

var holdingsHeaders = []string{"ISIN", "Name", "Quantity", "Value"}

func TestDeduplicator_accuracyWins(t *testing.T) {
	low := NewTableCandidate(1, "camelot", KindLattice, 70, holdingsHeaders, holdingsRows, nil)
	high := NewTableCandidate(1, "camelot-stream", KindStream, 95, holdingsHeaders, holdingsRows, nil)

	got := Deduplicator{}.Deduplicate([]*TableCandidate{low, high})
	if len(got) != 1 || got[0] != high {
		t.Errorf("Deduplicate() kept %v, want only the 95%% accurate candidate", ids(got))
	}
}

func TestDeduplicator_priorityWithoutAccuracy(t *testing.T) {
	visual := NewTableCandidate(1, "grid", KindVisual, NoAccuracy, holdingsHeaders, holdingsRows, nil)
	lattice := NewTableCandidate(1, "camelot", KindLattice, 80, holdingsHeaders, holdingsRows, nil)

	got := Deduplicator{}.Deduplicate([]*TableCandidate{visual, lattice})
	if len(got) != 1 || got[0] != lattice {
		t.Errorf("Deduplicate() kept %v, want the lattice candidate", ids(got))
	}

	// equal rank keeps the first
	a := NewTableCandidate(1, "a", KindStream, NoAccuracy, holdingsHeaders, holdingsRows, nil)
	b := NewTableCandidate(1, "b", KindStream, NoAccuracy, holdingsHeaders, holdingsRows, nil)
	got = Deduplicator{}.Deduplicate([]*TableCandidate{a, b})
	if len(got) != 1 || got[0] != a {
		t.Errorf("Deduplicate() kept %v, want the first candidate", ids(got))
	}
}

func TestDeduplicator_otherPages(t *testing.T) {
	p1 := NewTableCandidate(1, "camelot", KindLattice, 90, holdingsHeaders, holdingsRows, nil)
	p2 := NewTableCandidate(2, "camelot", KindLattice, 90, holdingsHeaders, holdingsRows, nil)
	empty := NewTableCandidate(1, "camelot", KindLattice, 99, nil, [][]string{{"", ""}}, nil)

	got := Deduplicator{}.Deduplicate([]*TableCandidate{p1, empty, p2})
	if len(got) != 2 || got[0] != p1 || got[1] != p2 {
		t.Errorf("Deduplicate() kept %v, want both pages and no empty table", ids(got))
	}
}

func TestDeduplicator_distinctTables(t *testing.T) {
	bonds := NewTableCandidate(1, "camelot", KindLattice, 90, []string{"ISIN", "Name", "Nominal", "Value"}, [][]string{
		{"US912810TM09", "US Treasury 4% 2052", "50'000", "49'250.00"},
		{"DE0001102580", "Bund 0% 2032", "20'000", "16'800.00"},
	}, nil)
	shares := NewTableCandidate(1, "camelot", KindLattice, 90, holdingsHeaders, holdingsRows, nil)

	got := Deduplicator{}.Deduplicate([]*TableCandidate{bonds, shares})
	if len(got) != 2 {
		t.Errorf("Deduplicate() kept %v, want both tables", ids(got))
	}
}

func TestTableSimilarity(t *testing.T) {
	withHeader := NewTableCandidate(1, "a", KindLattice, 90, holdingsHeaders, holdingsRows, nil)
	headerInRows := NewTableCandidate(1, "b", KindStream, 90, nil, append([][]string{holdingsHeaders}, holdingsRows...), nil)
	noHeader := NewTableCandidate(1, "c", KindStream, 90, nil, holdingsRows, nil)
	split := NewTableCandidate(1, "d", KindVisual, NoAccuracy, nil, [][]string{
		{"US0378331005", "Apple", "100", "18'550.00"},
		{"US5949181045", "Microsoft", "100", "41'020.00"},
		{"CH0038863350", "Nestlé", "100", "9'810.00"},
	}, nil)

	tests := []struct {
		name string
		a, b *TableCandidate
		min  float64
		max  float64
	}{
		{"identical", withHeader, withHeader, 1, 1},
		{"header in rows", withHeader, headerInRows, 1, 1},
		{"header dropped", withHeader, noHeader, 1, 1},
		{"truncated names", noHeader, split, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TableSimilarity(tt.a, tt.b)
			if got < tt.min || got > tt.max {
				t.Errorf("TableSimilarity() = %v, want in [%v, %v]", got, tt.min, tt.max)
			}
			if rev := TableSimilarity(tt.b, tt.a); rev != got {
				t.Errorf("TableSimilarity() is not symmetric: %v and %v", got, rev)
			}
		})
	}
}

func ids(cands []*TableCandidate) []string {
	var out []string
	for _, c := range cands {
		out = append(out, c.Backend())
	}
	return out
}
