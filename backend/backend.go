// Package backend provides the table-extraction backends of the hx tool.
//
// None of them parses PDF content itself: vector documents are processed by
// external extractors whose results are exported next to the document as a
// candidates file (see JSONFile). Spreadsheets and page images are read
// directly.
package backend

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/etnz/holdings"
)

// ErrUnsupported is returned when no backend can read a document.
var ErrUnsupported = errors.New("unsupported document")

// SidecarSuffix is appended to a document path to find its exported candidates file.
const SidecarSuffix = ".tables.json"

var (
	spreadsheetExts = []string{".xlsx", ".xlsm", ".xltx"}
	imageExts       = []string{".png", ".jpg", ".jpeg"}
)

func hasExt(path string, exts []string) bool {
	return slices.Contains(exts, strings.ToLower(filepath.Ext(path)))
}

// ForDocument returns the backends able to read the document at path,
// chosen by its extension. A directory is read as a sequence of page images.
//
// Any document can come with a candidates file (path + SidecarSuffix), it is
// then read as well.
func ForDocument(path string) ([]holdings.Backend, error) {
	var backends []holdings.Backend
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot choose backends for %q: %w", path, err)
	}
	switch {
	case info.IsDir() || hasExt(path, imageExts):
		backends = append(backends, Images{})
	case hasExt(path, spreadsheetExts):
		backends = append(backends, Spreadsheet{})
	case strings.EqualFold(filepath.Ext(path), ".json"):
		return []holdings.Backend{JSONFile{}}, nil
	}
	if _, err := os.Stat(path + SidecarSuffix); err == nil {
		backends = append(backends, JSONFile{})
	}
	if len(backends) == 0 {
		return nil, fmt.Errorf("%w %q: export its tables to %q first", ErrUnsupported, path, path+SidecarSuffix)
	}
	return backends, nil
}

// selected tells whether page is requested by doc.
func selected(doc holdings.Document, page int) bool {
	return len(doc.Pages) == 0 || slices.Contains(doc.Pages, page)
}
