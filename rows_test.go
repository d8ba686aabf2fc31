package holdings

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestRowClassifier_Classify(t *testing.T) {
	tests := []struct {
		name string
		rows [][]string
		want RowClasses
	}{
		{
			name: "header and total",
			rows: [][]string{
				{"ISIN", "Description", "Quantity", "Value"},
				{"US0378331005", "Apple Inc.", "100", "18'550.00"},
				{"US5949181045", "Microsoft Corp.", "100", "41'020.00"},
				{"Total", "", "", "59'570.00"},
			},
			want: RowClasses{Header: []int{0}, Footer: []int{3}, Data: []int{1, 2}},
		},
		{
			name: "two header rows",
			rows: [][]string{
				{"Security", "Position", "Market"},
				{"", "in units", "in EUR"},
				{"Apple Inc.", "100", "18'550.00"},
				{"Microsoft Corp.", "100", "41'020.00"},
			},
			want: RowClasses{Header: []int{0, 1}, Data: []int{2, 3}},
		},
		{
			name: "no header",
			rows: [][]string{
				{"Apple Inc.", "100", "18'550.00"},
				{"Microsoft Corp.", "100", "41'020.00"},
			},
			want: RowClasses{Data: []int{0, 1}},
		},
		{
			name: "sparse footer and note",
			rows: [][]string{
				{"Name", "Quantity", "Price", "Value"},
				{"Apple Inc.", "100", "185.50", "18'550.00"},
				{"Microsoft Corp.", "100", "410.20", "41'020.00"},
				{"", "", "", "59'570.00"},
				{"Prices as of the statement date"},
			},
			want: RowClasses{Header: []int{0}, Footer: []int{3, 4}, Data: []int{1, 2}},
		},
		{
			name: "security named like a summary",
			rows: [][]string{
				{"Name", "Value"},
				{"Apple Inc.", "18'550.00"},
				{"Dow Jones Industrial Average ETF", "1'000.00"},
			},
			want: RowClasses{Header: []int{0}, Data: []int{1, 2}},
		},
		{
			name: "section heading is data",
			rows: [][]string{
				{"Name", "Quantity", "Value"},
				{"Equities", "", ""},
				{"Apple Inc.", "100", "18'550.00"},
				{"Microsoft Corp.", "100", "41'020.00"},
			},
			want: RowClasses{Header: []int{0}, Data: []int{1, 2, 3}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DefaultRowClassifier().Classify(tt.rows)
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("Classify() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRowClassifier_SecurityRows(t *testing.T) {
	rows := [][]string{
		{"Equities", "", ""},
		{"US0378331005", "Apple Inc.", "18'550.00"},
		{"", "Accrued interest", "12.00"},
		{"Subtotal", "", "18'562.00"},
		{"Apple Inc. US0378331005", "", "1.00"},
	}
	data := []int{0, 1, 2, 3, 4}
	c := DefaultRowClassifier()

	if got, want := c.SecurityRows(rows, data, 0), []int{1, 4}; !cmp.Equal(got, want) {
		t.Errorf("SecurityRows(isin column) = %v, want %v", got, want)
	}
	if got, want := c.SecurityRows(rows, data, -1), []int{1, 2, 4}; !cmp.Equal(got, want) {
		t.Errorf("SecurityRows(no isin column) = %v, want %v", got, want)
	}
}
