package grid

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newPage returns a white image of the given size.
func newPage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return img
}

func fill(img *image.RGBA, r image.Rectangle) {
	draw.Draw(img, r, image.NewUniform(color.Black), image.Point{}, draw.Src)
}

// writeText draws a text-like blob: 3px strokes separated by 2px blanks.
func writeText(img *image.RGBA, r image.Rectangle) {
	for x := r.Min.X; x+3 <= r.Max.X; x += 5 {
		fill(img, image.Rect(x, r.Min.Y, x+3, r.Max.Y))
	}
}

// counter is a TextExtractor returning "cell1", "cell2"... in call order.
type counter struct{ n int }

func (c *counter) ExtractText(_ context.Context, _ image.Image) (string, error) {
	c.n++
	return fmt.Sprintf(" cell%d ", c.n), nil
}

func TestAnalyze_RuledTable(t *testing.T) {
	img := newPage(200, 100)
	for _, y := range []int{0, 49, 98} {
		fill(img, image.Rect(0, y, 200, y+2))
	}
	for _, x := range []int{0, 99, 198} {
		fill(img, image.Rect(x, 0, x+2, 100))
	}

	text := &counter{}
	g, err := NewAnalyzer(text, DefaultOptions()).Analyze(context.Background(), img, image.Rectangle{})
	require.NoError(t, err)

	assert.Equal(t, []int{1, 50, 99}, g.Rows)
	assert.Equal(t, []int{1, 100, 199}, g.Cols)
	assert.Equal(t, 4, text.n, "one text extraction per cell")
	assert.Equal(t, [][]string{{"cell1", "cell2"}, {"cell3", "cell4"}}, g.Matrix())
	assert.Equal(t, image.Rect(1, 1, 100, 50), g.Bounds(0, 0))
}

func TestAnalyze_BorderlessTable(t *testing.T) {
	img := newPage(300, 100)
	for _, y := range []int{10, 60} {
		writeText(img, image.Rect(10, y, 80, y+16))
		writeText(img, image.Rect(150, y, 250, y+16))
	}

	g, err := NewAnalyzer(nil, DefaultOptions()).Analyze(context.Background(), img, image.Rectangle{})
	require.NoError(t, err)

	require.Len(t, g.Rows, 3)
	require.Len(t, g.Cols, 3)
	assert.Equal(t, 0, g.Rows[0])
	assert.InDelta(t, 43, g.Rows[1], 1)
	assert.Equal(t, 100, g.Rows[2])
	assert.Greater(t, g.Cols[1], 80)
	assert.Less(t, g.Cols[1], 150)
	assert.True(t, g.IsEmpty(), "no text extractor, no cell text")
}

func TestAnalyze_Region(t *testing.T) {
	img := newPage(400, 300)
	region := image.Rect(100, 100, 300, 200)
	for _, y := range []int{100, 149, 198} {
		fill(img, image.Rect(100, y, 300, y+2))
	}
	for _, x := range []int{100, 199, 298} {
		fill(img, image.Rect(x, 100, x+2, 200))
	}

	g, err := NewAnalyzer(nil, DefaultOptions()).Analyze(context.Background(), img, region)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 50, 99}, g.Rows, "boundaries are relative to the region")
	assert.Equal(t, []int{1, 100, 199}, g.Cols)

	_, err = NewAnalyzer(nil, DefaultOptions()).Analyze(context.Background(), img, image.Rect(500, 500, 600, 600))
	assert.ErrorIs(t, err, ErrEmptyRegion)
}

func TestAnalyze_TextFailuresLeaveCellsEmpty(t *testing.T) {
	img := newPage(200, 100)
	for _, y := range []int{0, 98} {
		fill(img, image.Rect(0, y, 200, y+2))
	}
	for _, x := range []int{0, 99, 198} {
		fill(img, image.Rect(x, 0, x+2, 100))
	}
	calls := 0
	failing := TextExtractorFunc(func(context.Context, image.Image) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("ocr unavailable")
		}
		return "ok", nil
	})

	g, err := NewAnalyzer(failing, DefaultOptions()).Analyze(context.Background(), img, image.Rectangle{})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"", "ok"}}, g.Matrix())
}

func TestAnalyze_Cancelled(t *testing.T) {
	img := newPage(200, 100)
	fill(img, image.Rect(0, 0, 200, 2))
	fill(img, image.Rect(0, 98, 200, 100))
	fill(img, image.Rect(0, 0, 2, 100))
	fill(img, image.Rect(198, 0, 200, 100))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewAnalyzer(&counter{}, DefaultOptions()).Analyze(ctx, img, image.Rectangle{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMergeBoundaries(t *testing.T) {
	assert.Equal(t, []int{1, 20, 41}, mergeBoundaries([]int{0, 1, 2, 20, 40, 41, 42}, 8))
	assert.Equal(t, []int{0, 10}, mergeBoundaries([]int{10, 0}, 5))
	assert.Nil(t, mergeBoundaries(nil, 5))
}

func TestOtsu(t *testing.T) {
	var hist [256]int
	hist[10], hist[240] = 50, 50
	th := otsu(hist, 100)
	assert.Greater(t, th, 10)
	assert.LessOrEqual(t, th, 240)

	var white [256]int
	white[255] = 10
	assert.Equal(t, 128, otsu(white, 10))
}

func TestFromMatrix(t *testing.T) {
	g := FromMatrix([][]string{
		{"ISIN", "Name", "Value"},
		{"US0378331005", " Apple Inc. "},
	})
	assert.Equal(t, 2, g.NumRows())
	assert.Equal(t, 3, g.NumCols())
	assert.Equal(t, "Apple Inc.", g.Text(1, 1))
	assert.Equal(t, "", g.Text(1, 2))
	assert.Equal(t, [][]string{{"ISIN", "Name", "Value"}, {"US0378331005", "Apple Inc.", ""}}, g.Matrix())
}
