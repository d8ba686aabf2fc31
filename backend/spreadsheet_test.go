package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/etnz/holdings"
	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if _, err := f.NewSheet("Notes"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.NewSheet("Positions"); err != nil {
		t.Fatal(err)
	}
	rows := [][]any{
		{"Description", "ISIN", "Quantity", "Market Value"},
		{"Apple Inc.", "US0378331005", "100", "18'550.00"},
		{},
		{"Microsoft Corp.", "US5949181045", "50", "20'510.00"},
	}
	for i, r := range rows {
		if len(r) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+3)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow("Positions", cell, &r); err != nil {
			t.Fatal(err)
		}
	}
	path := filepath.Join(t.TempDir(), "holdings.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSpreadsheet_Extract(t *testing.T) {
	path := writeWorkbook(t)
	got, err := Spreadsheet{}.Extract(context.Background(), holdings.Document{Path: path})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	want := []holdings.BackendResult{
		holdings.ThirdPartyResult{
			Page:     3,
			Source:   "xlsx",
			Accuracy: holdings.NoAccuracy,
			Headers:  []string{"Description", "ISIN", "Quantity", "Market Value"},
			Rows: [][]string{
				{"Apple Inc.", "US0378331005", "100", "18'550.00"},
				{"Microsoft Corp.", "US5949181045", "50", "20'510.00"},
			},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Extract() mismatch (-want +got):\n%s", diff)
	}

	got, err = Spreadsheet{}.Extract(context.Background(), holdings.Document{Path: path, Pages: []int{1, 2}})
	if err != nil || len(got) != 0 {
		t.Errorf("Extract(pages 1, 2) = %v, %v, want no table", got, err)
	}
}

func TestSpreadsheet_Extract_notAWorkbook(t *testing.T) {
	path := touch(t, t.TempDir(), "holdings.xlsx")
	if _, err := (Spreadsheet{}).Extract(context.Background(), holdings.Document{Path: path}); err == nil {
		t.Error("Extract() error = nil")
	}
}
