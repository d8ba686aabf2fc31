package backend

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"slices"

	"github.com/disintegration/imaging"
	"github.com/etnz/holdings"
)

// Images reads scanned documents: a single page image (PNG or JPEG), or a
// directory of page images numbered in file name order. Every page is
// handed over whole to the grid analyzer.
type Images struct{}

func (Images) Name() string { return "images" }

func (Images) Extract(ctx context.Context, doc holdings.Document) ([]holdings.BackendResult, error) {
	files, err := pageFiles(doc.Path)
	if err != nil {
		return nil, err
	}
	var results []holdings.BackendResult
	for i, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := i + 1
		if !selected(doc, page) {
			continue
		}
		img, err := imaging.Open(file, imaging.AutoOrientation(true))
		if err != nil {
			return results, fmt.Errorf("page %d: %w", page, err)
		}
		results = append(results, holdings.VisualGridResult{Page: page, Image: img, Confidence: holdings.NoAccuracy})
	}
	return results, nil
}

// PageImages returns the pages of an image document, for the vision service.
func PageImages(ctx context.Context, doc holdings.Document) ([]image.Image, error) {
	results, err := Images{}.Extract(ctx, doc)
	if err != nil {
		return nil, err
	}
	pages := make([]image.Image, len(results))
	for i, r := range results {
		pages[i] = r.(holdings.VisualGridResult).Image
	}
	return pages, nil
}

// pageFiles lists the page images of path.
func pageFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read pages: %w", err)
	}
	if !info.IsDir() {
		if !hasExt(path, imageExts) {
			return nil, fmt.Errorf("%w %q: not an image", ErrUnsupported, path)
		}
		return []string{path}, nil
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read pages: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && hasExt(e.Name(), imageExts) {
			files = append(files, filepath.Join(path, e.Name()))
		}
	}
	slices.Sort(files)
	if len(files) == 0 {
		return nil, fmt.Errorf("%w %q: no page image", ErrUnsupported, path)
	}
	return files, nil
}
