package backend

import (
	"context"
	"fmt"
	"strings"

	"github.com/etnz/holdings"
	"github.com/etnz/holdings/logging"
	"github.com/hashicorp/go-multierror"
	"github.com/xuri/excelize/v2"
)

// Spreadsheet reads the sheets of an XLSX workbook. Every non-empty sheet is
// a table whose first non-empty row holds the headers. Sheets are numbered
// like pages, from 1 in workbook order.
type Spreadsheet struct{}

func (Spreadsheet) Name() string { return "excelize" }

func (Spreadsheet) Extract(ctx context.Context, doc holdings.Document) ([]holdings.BackendResult, error) {
	f, err := excelize.OpenFile(doc.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	var results []holdings.BackendResult
	var errs error
	for i, sheet := range f.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := i + 1
		if !selected(doc, page) {
			continue
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("unable to read sheet %q: %w", sheet, err))
			continue
		}
		rows = dropBlankRows(rows)
		if len(rows) == 0 {
			continue
		}
		results = append(results, holdings.ThirdPartyResult{
			Page:     page,
			Source:   "xlsx",
			Accuracy: holdings.NoAccuracy,
			Headers:  rows[0],
			Rows:     rows[1:],
		})
	}
	logging.Logger().WithField("file", doc.Path).WithField("tables", len(results)).Debug("read-workbook")
	return results, errs
}

// dropBlankRows removes the rows without any text.
func dropBlankRows(rows [][]string) [][]string {
	kept := rows[:0]
	for _, r := range rows {
		if strings.TrimSpace(strings.Join(r, "")) != "" {
			kept = append(kept, r)
		}
	}
	return kept
}
