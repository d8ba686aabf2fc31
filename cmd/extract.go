package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/holdings"
	"github.com/etnz/holdings/backend"
	"github.com/etnz/holdings/grid"
	"github.com/etnz/holdings/logging"
	"github.com/etnz/holdings/renderer"
	"github.com/etnz/holdings/vision"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

type extractCmd struct {
	json       bool
	markdown   bool
	pages      string
	vision     bool
	parallel   int
	scaleValue string
	perUnit    bool
}

func (*extractCmd) Name() string     { return "extract" }
func (*extractCmd) Synopsis() string { return "extract the holdings of a portfolio document" }
func (*extractCmd) Usage() string {
	return `hx extract [-json | -md] [-pages 1,3-4] [-vision] <document>

  Reads the tables of a portfolio statement, reconciles its securities and
  prints the holdings, the portfolio summary and every finding.

  The backends are chosen by the document extension:
  - .xlsx: the sheets of the workbook.
  - .png, .jpg or a directory of page images: the pages are analyzed as
    grids whose cell texts are read by Gemini, it requires $GEMINI_API_KEY.
  - .json: tables exported by an external extractor.
  Any document can come with its exported tables in <document>.tables.json.

  Prices are read per 100 units: value = quantity × price / 100. Use
  -per-unit-price for statements quoting shares per unit.

  With -vision, the totals are corroborated by a Gemini model reading the
  page images. It requires $GEMINI_API_KEY.
`
}

func (c *extractCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.json, "json", false, "Print the result as JSON")
	f.BoolVar(&c.markdown, "md", false, "Print the raw markdown report, without terminal styling")
	f.StringVar(&c.pages, "pages", "", "Pages to process, e.g. 1,3-4 (default all)")
	f.BoolVar(&c.vision, "vision", false, "Corroborate the totals with the vision model")
	f.IntVar(&c.parallel, "parallel", 0, "Maximum number of backends running at once (default unbounded)")
	f.BoolVar(&c.perUnit, "per-unit-price", false, "Accept prices quoted per unit, rewriting them per 100 units, instead of reporting the value")
	f.StringVar(&c.scaleValue, "scale-value", "", "Enable the correction of values printed in thousands, with this factor (e.g. 1000)")
}

func (c *extractCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one document is required.")
		return subcommands.ExitUsageError
	}
	path := f.Arg(0)
	pages, err := parsePages(c.pages)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid -pages: %v\n", err)
		return subcommands.ExitUsageError
	}
	rules := holdings.DefaultRules()
	if c.scaleValue != "" {
		factor, err := decimal.NewFromString(c.scaleValue)
		if err != nil || !factor.IsPositive() {
			fmt.Fprintf(os.Stderr, "Error: invalid -scale-value %q\n", c.scaleValue)
			return subcommands.ExitUsageError
		}
		rules = append(rules, holdings.ScaleValueRule(factor))
	}
	if c.perUnit {
		rules = append(rules, holdings.PerUnitPriceRule())
	}

	backends, err := backend.ForDocument(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	hasKey := os.Getenv(EnvGeminiKey) != ""
	if c.vision && !hasKey {
		fmt.Fprintf(os.Stderr, "Error: -vision requires $%s.\n", EnvGeminiKey)
		return subcommands.ExitUsageError
	}
	var gemini *vision.Gemini
	if hasKey && (c.vision || hasImages(backends)) {
		if gemini, err = vision.NewGemini(ctx, *model); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
	}
	var text grid.TextExtractor
	if gemini != nil {
		text = gemini
	}
	backends, analyzer, err := imageReading(backends, text)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	ref, err := OpenReference()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading reference database: %v\n", err)
		return subcommands.ExitFailure
	}
	cfg := holdings.Config{
		Backends:  backends,
		Analyzer:  analyzer,
		Reference: ref,
		Rules:     rules,
		Parallel:  c.parallel,
	}
	if c.vision {
		cfg.Vision, cfg.PageImages = gemini, backend.PageImages
	}

	res, err := holdings.NewPipeline(cfg).Process(ctx, holdings.Document{Path: path, Pages: pages})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error processing %q: %v\n", path, err)
		return subcommands.ExitFailure
	}

	if c.json {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding result: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	md := renderer.RenderReport(renderer.NewReport(res))
	if c.markdown {
		fmt.Print(md)
		return subcommands.ExitSuccess
	}
	term, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		fmt.Print(md)
		return subcommands.ExitSuccess
	}
	out, err := term.Render(md)
	if err != nil {
		fmt.Print(md)
		return subcommands.ExitSuccess
	}
	fmt.Print(out)
	return subcommands.ExitSuccess
}

// errNoTextReader is returned for image documents when no text extractor is available.
var errNoTextReader = errors.New("page images need a text reader: set $" + EnvGeminiKey + " or export the tables to <document>" + backend.SidecarSuffix)

func hasImages(backends []holdings.Backend) bool {
	for _, b := range backends {
		if _, ok := b.(backend.Images); ok {
			return true
		}
	}
	return false
}

// imageReading returns the analyzer of the page images, reading cell texts
// with text. Without text the grids would have no content: the image
// backends are dropped, and errNoTextReader is returned if none is left.
func imageReading(backends []holdings.Backend, text grid.TextExtractor) ([]holdings.Backend, *grid.Analyzer, error) {
	if text != nil || !hasImages(backends) {
		return backends, grid.NewAnalyzer(text, grid.DefaultOptions()), nil
	}
	var kept []holdings.Backend
	for _, b := range backends {
		if _, ok := b.(backend.Images); !ok {
			kept = append(kept, b)
		}
	}
	if len(kept) == 0 {
		return nil, nil, errNoTextReader
	}
	logging.Logger().WithField("backends", len(kept)).Warn("skip-page-images-without-text-reader")
	return kept, grid.NewAnalyzer(nil, grid.DefaultOptions()), nil
}

// maxPage bounds the page numbers of -pages.
const maxPage = 9999

// parsePages parses a list of pages and page ranges, e.g. "1,3-4".
func parsePages(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var pages []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		from, to, isRange := strings.Cut(part, "-")
		first, err := strconv.Atoi(strings.TrimSpace(from))
		if err != nil || first < 1 || first > maxPage {
			return nil, fmt.Errorf("invalid page %q", part)
		}
		last := first
		if isRange {
			last, err = strconv.Atoi(strings.TrimSpace(to))
			if err != nil || last < first || last > maxPage {
				return nil, fmt.Errorf("invalid page range %q", part)
			}
		}
		for p := first; p <= last; p++ {
			pages = append(pages, p)
		}
	}
	return pages, nil
}
