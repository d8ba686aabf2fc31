package grid

import (
	"image"

	"github.com/disintegration/imaging"
)

// bitmap is a binary image, true marks ink.
type bitmap struct {
	w, h int
	pix  []bool
}

func newBitmap(w, h int) *bitmap { return &bitmap{w: w, h: h, pix: make([]bool, w*h)} }

func (b *bitmap) at(x, y int) bool     { return b.pix[y*b.w+x] }
func (b *bitmap) set(x, y int, v bool) { b.pix[y*b.w+x] = v }

// binarize converts img to grayscale and thresholds it with Otsu's method.
// Dark pixels become ink.
func binarize(img image.Image) *bitmap {
	gray := imaging.Grayscale(img)
	w, h := gray.Bounds().Dx(), gray.Bounds().Dy()
	levels := make([]uint8, w*h)
	var hist [256]int
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := gray.Pix[y*gray.Stride+x*4] // grayscale: R == G == B
			levels[y*w+x] = v
			hist[v]++
		}
	}
	threshold := otsu(hist, w*h)
	b := newBitmap(w, h)
	for i, v := range levels {
		b.pix[i] = int(v) < threshold
	}
	return b
}

// otsu returns the level maximising the between-class variance of the
// histogram. A uniform image gets the mid level, so that a white region has
// no ink and a black one is all ink.
func otsu(hist [256]int, total int) int {
	if total == 0 {
		return 128
	}
	sum := 0.0
	for i, n := range hist {
		sum += float64(i * n)
	}
	var sumB, best float64
	wB := 0
	threshold := -1
	for t := 0; t < 256; t++ {
		wB += hist[t]
		if wB == 0 {
			continue
		}
		wF := total - wB
		if wF == 0 {
			break
		}
		sumB += float64(t * hist[t])
		mB := sumB / float64(wB)
		mF := (sum - sumB) / float64(wF)
		between := float64(wB) * float64(wF) * (mB - mF) * (mB - mF)
		if between > best {
			best = between
			threshold = t + 1 // levels strictly below are background class
		}
	}
	if threshold < 0 {
		return 128
	}
	return threshold
}

// openLines applies a morphological opening with a straight structuring
// element of length k, horizontal or vertical.
//
// An opening by a line segment keeps exactly the runs of ink at least k long
// along that direction, which is what is computed here.
func (b *bitmap) openLines(horizontal bool, k int) *bitmap {
	out := newBitmap(b.w, b.h)
	if k < 1 {
		k = 1
	}
	outer, inner := b.h, b.w
	if !horizontal {
		outer, inner = b.w, b.h
	}
	at := func(o, i int) bool {
		if horizontal {
			return b.at(i, o)
		}
		return b.at(o, i)
	}
	set := func(o, i int) {
		if horizontal {
			out.set(i, o, true)
		} else {
			out.set(o, i, true)
		}
	}
	for o := 0; o < outer; o++ {
		start := -1
		for i := 0; i <= inner; i++ {
			ink := i < inner && at(o, i)
			switch {
			case ink && start < 0:
				start = i
			case !ink && start >= 0:
				if i-start >= k {
					for j := start; j < i; j++ {
						set(o, j)
					}
				}
				start = -1
			}
		}
	}
	return out
}

// union returns the pixel-wise OR of two bitmaps of the same size.
func union(a, b *bitmap) *bitmap {
	out := newBitmap(a.w, a.h)
	for i := range a.pix {
		out.pix[i] = a.pix[i] || b.pix[i]
	}
	return out
}

// projectRows returns, for each y, the number of ink pixels.
func (b *bitmap) projectRows() []int {
	p := make([]int, b.h)
	for y := 0; y < b.h; y++ {
		for x := 0; x < b.w; x++ {
			if b.at(x, y) {
				p[y]++
			}
		}
	}
	return p
}

// projectCols returns, for each x, the number of ink pixels.
func (b *bitmap) projectCols() []int {
	p := make([]int, b.w)
	for y := 0; y < b.h; y++ {
		for x := 0; x < b.w; x++ {
			if b.at(x, y) {
				p[x]++
			}
		}
	}
	return p
}
