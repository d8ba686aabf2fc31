package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/etnz/holdings"
	"github.com/etnz/holdings/logging"
	"github.com/hashicorp/go-multierror"
)

// JSONFile reads the tables exported by external extractors (camelot, tabula,
// layout detectors...) as a list of candidates:
//
//	[
//	  {"kind": "lattice", "page": 1, "accuracy": 97.2, "headers": ["ISIN", ...], "rows": [["US0378331005", ...], ...]},
//	  {"kind": "stream", "page": 2, "accuracy": 81, "whitespace": 34.5, "rows": [...]},
//	  {"kind": "third-party", "source": "tabula", "page": 2, "rows": [...]},
//	  {"kind": "visual", "page": 3, "image": "page-3.png", "region": [40, 300, 1200, 900], "confidence": 88}
//	]
//
// Cells can be strings, numbers or null. Image paths are relative to the
// candidates file. The accuracy is optional.
type JSONFile struct {
	// Path of the candidates file. When empty, it is the document itself if
	// it is a json file, or its sidecar (document path + SidecarSuffix).
	Path string
}

func (JSONFile) Name() string { return "json" }

func (b JSONFile) path(doc holdings.Document) string {
	switch {
	case b.Path != "":
		return b.Path
	case strings.EqualFold(filepath.Ext(doc.Path), ".json"):
		return doc.Path
	default:
		return doc.Path + SidecarSuffix
	}
}

// jcandidate is the object read from the candidates file using json parser.
type jcandidate struct {
	Kind       string    `json:"kind"`
	Page       int       `json:"page"`
	Accuracy   *float64  `json:"accuracy"`
	Whitespace float64   `json:"whitespace"`
	Source     string    `json:"source"`
	Headers    []jcell   `json:"headers"`
	Rows       [][]jcell `json:"rows"`
	Image      string    `json:"image"`
	Region     []int     `json:"region"`
	Confidence *float64  `json:"confidence"`
}

// jcell is a cell as exported: a string, a number or null.
type jcell string

func (c *jcell) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*c = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = jcell(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("invalid cell %s: %w", data, err)
		}
		*c = jcell(n.String())
	}
	return nil
}

func texts(cells []jcell) []string {
	if cells == nil {
		return nil
	}
	s := make([]string, len(cells))
	for i, c := range cells {
		s[i] = string(c)
	}
	return s
}

func matrix(rows [][]jcell) [][]string {
	m := make([][]string, len(rows))
	for i, r := range rows {
		m[i] = texts(r)
	}
	return m
}

func orNoAccuracy(v *float64) float64 {
	if v == nil {
		return holdings.NoAccuracy
	}
	return *v
}

// Extract reads the candidates of the requested pages. A candidate that
// cannot be converted is skipped and reported in the returned error.
func (b JSONFile) Extract(ctx context.Context, doc holdings.Document) ([]holdings.BackendResult, error) {
	filename := b.path(doc)
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("cannot read candidates file: %w", err)
	}
	var cands []jcandidate
	if err := json.Unmarshal(data, &cands); err != nil {
		return nil, fmt.Errorf("format error %q: %w", filename, err)
	}

	log := logging.Logger().WithField("file", filename)
	var results []holdings.BackendResult
	var errs error
	for i, c := range cands {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !selected(doc, c.Page) {
			continue
		}
		r, err := c.result(filepath.Dir(filename))
		if err != nil {
			log.WithField("index", i).WithError(err).Warn("skip-candidate")
			errs = multierror.Append(errs, fmt.Errorf("candidate %d: %w", i, err))
			continue
		}
		results = append(results, r)
	}
	log.WithField("count", len(results)).Debug("read-candidates-file")
	return results, errs
}

func (c jcandidate) result(dir string) (holdings.BackendResult, error) {
	kind, ok := holdings.ParseBackendKind(c.Kind)
	if !ok {
		return nil, fmt.Errorf("unknown kind %q", c.Kind)
	}
	switch kind {
	case holdings.KindLattice:
		return holdings.LatticeResult{Page: c.Page, Accuracy: orNoAccuracy(c.Accuracy), Headers: texts(c.Headers), Rows: matrix(c.Rows)}, nil
	case holdings.KindStream:
		return holdings.StreamResult{Page: c.Page, Accuracy: orNoAccuracy(c.Accuracy), Whitespace: c.Whitespace, Headers: texts(c.Headers), Rows: matrix(c.Rows)}, nil
	case holdings.KindThirdParty:
		return holdings.ThirdPartyResult{Page: c.Page, Source: c.Source, Accuracy: orNoAccuracy(c.Accuracy), Headers: texts(c.Headers), Rows: matrix(c.Rows)}, nil
	default:
		if c.Image == "" {
			return nil, fmt.Errorf("visual candidate without image")
		}
		path := c.Image
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		img, err := imaging.Open(path, imaging.AutoOrientation(true))
		if err != nil {
			return nil, fmt.Errorf("cannot open image: %w", err)
		}
		var region image.Rectangle
		switch len(c.Region) {
		case 0:
		case 4:
			region = image.Rect(c.Region[0], c.Region[1], c.Region[2], c.Region[3])
		default:
			return nil, fmt.Errorf("region must be [x0, y0, x1, y1], got %v", c.Region)
		}
		return holdings.VisualGridResult{Page: c.Page, Image: img, Region: region, Confidence: orNoAccuracy(c.Confidence)}, nil
	}
}
