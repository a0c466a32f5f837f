// Package imagesplit cuts very tall screenshots into overlapping parts,
// placing each cut on the visually quietest row near its target height.
package imagesplit

import (
	"image"
	"image/color"
)

// Options tune the split. The zero value is not usable; start from Defaults.
type Options struct {
	MaxHeight   int // images at or below this height are left whole
	PartHeight  int // target height of each part
	SearchRange int // cut search window, in rows either side of the target
	Overlap     int // rows repeated on both sides of every cut
}

var Defaults = Options{MaxHeight: 3200, PartHeight: 3000, SearchRange: 100, Overlap: 50}

// Plan returns the crop rectangles for img, top to bottom. A nil plan means
// the image does not need splitting.
func Plan(img image.Image, o Options) []image.Rectangle {
	b := img.Bounds()
	h := b.Dy()
	if h <= o.MaxHeight || o.PartHeight <= 0 {
		return nil
	}

	n := (h + o.PartHeight - 1) / o.PartHeight
	bounds := make([]int, 0, n+1)
	bounds = append(bounds, 0)
	for i := 1; i < n; i++ {
		bounds = append(bounds, quietestRow(img, o.PartHeight*i, o.SearchRange))
	}
	bounds = append(bounds, h)

	parts := make([]image.Rectangle, 0, n)
	for i := 0; i+1 < len(bounds); i++ {
		start, end := bounds[i], bounds[i+1]
		if i > 0 {
			start = max(start-o.Overlap, 0)
		}
		if i+2 < len(bounds) {
			end = min(end+o.Overlap, h)
		}
		parts = append(parts, image.Rect(b.Min.X, b.Min.Y+start, b.Max.X, b.Min.Y+end))
	}
	return parts
}

// quietestRow returns the row in [target-r, target+r) with the lowest edge
// strength, relative to the image's top edge. Ties keep the first row.
func quietestRow(img image.Image, target, r int) int {
	h := img.Bounds().Dy()
	lo, hi := max(0, target-r), min(h, target+r)

	best, bestY := -1.0, target
	for y := lo; y < hi; y++ {
		if e := edgeStrength(img, y); best < 0 || e < best {
			best, bestY = e, y
		}
	}
	return bestY
}

// edgeStrength sums the absolute grey-level differences between neighbouring
// pixels of row y. Blank or flat rows score zero.
func edgeStrength(img image.Image, y int) float64 {
	b := img.Bounds()
	py := b.Min.Y + y
	var sum float64
	prev := grey(img.At(b.Min.X, py))
	for x := b.Min.X + 1; x < b.Max.X; x++ {
		g := grey(img.At(x, py))
		if g > prev {
			sum += g - prev
		} else {
			sum += prev - g
		}
		prev = g
	}
	return sum
}

// grey is the plain channel mean on a 0..255 scale.
func grey(c color.Color) float64 {
	r, g, b, _ := c.RGBA()
	return float64(r+g+b) / 3 / 257
}
