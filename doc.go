// Package holdings reads the securities held in a portfolio statement and
// reconciles them into one auditable list, with a portfolio summary.
//
// The processing of a document goes through these steps:
//   - Collection: table-extraction backends (vector, spreadsheet, raster)
//     each return the tables they found, unified as TableCandidates. Raster
//     regions are turned into grids by the grid package.
//   - Deduplication: candidates of the same page that overlap are the same
//     table read by several backends, only the best extraction is kept.
//   - Extraction: rows are classified (headers, footers, data), columns get a
//     role (ISIN, name, quantity, price, value...) and every security row
//     becomes a SecurityRecord. Totals printed in footers are kept.
//   - Merge: records are resolved against a reference database of securities
//     and merged into one record per identity.
//   - Consistency: values, prices and weights are cross-checked, correction
//     rules fix what can be fixed. Every check that fails and every correction
//     is reported as a Finding.
//   - Summary: total value and asset allocation, optionally corroborated by a
//     vision model reading the rendered pages.
//
// Pipeline chains all the steps. The `hx` command-line tool is built on it.
package holdings
