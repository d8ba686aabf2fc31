package cmd

import (
	"context"
	"errors"
	"flag"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/etnz/holdings"
	"github.com/etnz/holdings/backend"
	"github.com/etnz/holdings/grid"
	"github.com/etnz/holdings/security"
	"github.com/google/subcommands"
)

func TestParsePages(t *testing.T) {
	tests := []struct {
		in      string
		want    []int
		wantErr bool
	}{
		{"", nil, false},
		{"2", []int{2}, false},
		{"1, 3-5", []int{1, 3, 4, 5}, false},
		{"0", nil, true},
		{"4-2", nil, true},
		{"a-b", nil, true},
		{"1,", nil, true},
		{"1-1000000000", nil, true},
	}
	for _, tt := range tests {
		got, err := parsePages(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parsePages(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !slices.Equal(got, tt.want) {
			t.Errorf("parsePages(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFormatEntry(t *testing.T) {
	got := formatEntry(security.Entry{ISIN: "US0378331005", Name: "Apple Inc.", Ticker: "AAPL", Industry: "Consumer Electronics"})
	want := "➡️   Apple Inc. (US0378331005)\n" +
		"    Ticker   : AAPL\n" +
		"    Sector   : Consumer Electronics\n"
	if got != want {
		t.Errorf("formatEntry() = %q, want %q", got, want)
	}
}

// run parses args for c and executes it.
func run(t *testing.T, c subcommands.Command, args ...string) subcommands.ExitStatus {
	t.Helper()
	fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	c.SetFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("%s %v: %v", c.Name(), args, err)
	}
	return c.Execute(context.Background(), fs)
}

func TestReferenceFileCommands(t *testing.T) {
	old := *refdbFile
	t.Cleanup(func() { *refdbFile = old })
	*refdbFile = filepath.Join(t.TempDir(), "refdb.json")

	if got := run(t, &addCmd{}, "-isin", "DE000EXMPL09", "-name", "Example Corporation", "-sector", "Industrials"); got != subcommands.ExitSuccess {
		t.Fatalf("refdb-add = %v, want success", got)
	}
	if got := run(t, &addCmd{}, "-isin", "DE000EXMPL08", "-name", "Broken Check Digit"); got != subcommands.ExitUsageError {
		t.Errorf("refdb-add with an invalid ISIN = %v, want a usage error", got)
	}

	db, err := OpenReferenceFile()
	if err != nil {
		t.Fatal(err)
	}
	if db.Len() != 1 {
		t.Fatalf("reference file has %d entries, want 1", db.Len())
	}
	merged, err := OpenReference()
	if err != nil {
		t.Fatal(err)
	}
	if e, err := merged.Lookup("Example Corp"); err != nil || e.Sector != "Industrials" {
		t.Errorf("Lookup(Example Corp) = %v, %v, want the added entry", e, err)
	}
	if _, ok := merged.ByISIN("US0378331005"); !ok {
		t.Error("builtin entries are missing from the merged database")
	}

	if got := run(t, &removeCmd{}, "DE000EXMPL09", "US0378331005"); got != subcommands.ExitFailure {
		t.Errorf("refdb-remove of a builtin entry = %v, want a failure", got)
	}
	if db, _ := OpenReferenceFile(); db.Len() != 0 {
		t.Errorf("reference file has %d entries after removal, want 0", db.Len())
	}
}

func TestOpenReferenceFile_noFile(t *testing.T) {
	old := *refdbFile
	t.Cleanup(func() { *refdbFile = old })
	*refdbFile = ""
	if _, err := OpenReferenceFile(); err == nil || !strings.Contains(err.Error(), "-refdb") {
		t.Errorf("OpenReferenceFile() error = %v, want a hint about -refdb", err)
	}
}

func TestCompletion(t *testing.T) {
	cdr := subcommands.NewCommander(flag.NewFlagSet("hx", flag.ContinueOnError), "hx")
	Register(cdr)
	top := flag.NewFlagSet("hx", flag.ContinueOnError)
	top.String("refdb", "", "")
	top.Bool("log-json", false, "")

	c := Completion(cdr, top)
	if len(c.Sub) != 6 {
		t.Errorf("Completion() has %d subcommands, want 6", len(c.Sub))
	}
	extract := c.Sub["extract"]
	if extract == nil || extract.Flags["json"] == nil || extract.Flags["pages"] == nil || extract.Args == nil {
		t.Fatalf("Completion() extract = %+v, want its flags and documents", extract)
	}
	if got := c.Flags["log-json"].Predict(""); len(got) != 0 {
		t.Errorf("bool flag predicts %v, want nothing", got)
	}
}

// savePage renders a page with a ruled 2x2 table and returns its path.
func savePage(t *testing.T) string {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 200, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 200; x++ {
			c := color.Gray{Y: 255}
			if y == 0 || y == 50 || y == 99 || x == 0 || x == 100 || x == 199 {
				c = color.Gray{}
			}
			img.SetGray(x, y, c)
		}
	}
	path := filepath.Join(t.TempDir(), "page.png")
	if err := imaging.Save(img, path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestImageReading(t *testing.T) {
	path := savePage(t)
	backends, err := backend.ForDocument(path)
	if err != nil {
		t.Fatal(err)
	}

	if _, _, err := imageReading(backends, nil); !errors.Is(err, errNoTextReader) {
		t.Errorf("imageReading(no text) error = %v, want errNoTextReader", err)
	}

	cells := 0
	text := grid.TextExtractorFunc(func(ctx context.Context, img image.Image) (string, error) {
		cells++
		return "x", nil
	})
	kept, analyzer, err := imageReading(backends, text)
	if err != nil {
		t.Fatalf("imageReading() error = %v", err)
	}
	res, err := holdings.NewPipeline(holdings.Config{Backends: kept, Analyzer: analyzer}).Process(context.Background(), holdings.Document{Path: path})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(res.Tables) != 1 || cells != 4 {
		t.Errorf("Process() read %d tables and %d cells, want the 2x2 grid", len(res.Tables), cells)
	}
}

func TestImageReading_sidecar(t *testing.T) {
	path := savePage(t)
	if err := os.WriteFile(path+backend.SidecarSuffix, []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}
	backends, err := backend.ForDocument(path)
	if err != nil {
		t.Fatal(err)
	}
	kept, _, err := imageReading(backends, nil)
	if err != nil || len(kept) != 1 || kept[0].Name() != "json" {
		t.Errorf("imageReading() = %d backends, %v, want the candidates file only", len(kept), err)
	}
}

func TestExtract_imageWithoutKey(t *testing.T) {
	t.Setenv(EnvGeminiKey, "")
	if got := run(t, &extractCmd{}, savePage(t)); got != subcommands.ExitUsageError {
		t.Errorf("extract page.png = %v, want a usage error", got)
	}
}
