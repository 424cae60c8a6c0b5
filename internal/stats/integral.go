// Integral images (summed-area tables) for constant time window queries
package stats

import (
	"document-binarization/internal/core"
)

// Number is the set of accumulator types an integral table can hold.
type Number interface {
	~uint64 | ~int64 | ~float64
}

// Table is a (width+1)x(height+1) prefix sum table. Entry (x+1, y+1) holds
// the sum of all samples in the rectangle from (0, 0) to (x, y) inclusive.
type Table[T Number] struct {
	width  int
	height int
	sums   []T
}

// Region is an inclusive rectangle of pixel coordinates.
type Region struct {
	X1, Y1, X2, Y2 int
}

// Area is the number of pixels covered by r.
func (r Region) Area() int {
	return (r.X2 - r.X1 + 1) * (r.Y2 - r.Y1 + 1)
}

// Window returns the square region of the given radius centred on (x, y),
// clamped to a width x height image. Clamped windows shrink at the borders.
func Window(x, y, radius, width, height int) Region {
	return Rect(x, y, radius, radius, width, height)
}

// Rect is Window with separate horizontal and vertical radii.
func Rect(x, y, rx, ry, width, height int) Region {
	return Region{
		X1: max(0, x-rx),
		Y1: max(0, y-ry),
		X2: min(width-1, x+rx),
		Y2: min(height-1, y+ry),
	}
}

// Build constructs a table from value(i), the contribution of pixel i in
// row-major order. Construction is sequential.
func Build[T Number](width, height int, value func(i int) T) *Table[T] {
	stride := width + 1
	t := &Table[T]{
		width:  width,
		height: height,
		sums:   make([]T, stride*(height+1)),
	}

	for y := range height {
		var rowSum T
		above := y * stride
		here := (y + 1) * stride
		for x := range width {
			rowSum += value(y*width + x)
			t.sums[here+x+1] = t.sums[above+x+1] + rowSum
		}
	}

	return t
}

// NewTable builds the integral of pixel values.
func NewTable(img *core.Image) *Table[uint64] {
	return Build(img.Width, img.Height, func(i int) uint64 {
		return uint64(img.Data[i])
	})
}

// NewSquaredTable builds the integral of squared pixel values.
func NewSquaredTable(img *core.Image) *Table[uint64] {
	return Build(img.Width, img.Height, func(i int) uint64 {
		v := uint64(img.Data[i])
		return v * v
	})
}

func (t *Table[T]) Width() int  { return t.width }
func (t *Table[T]) Height() int { return t.height }

// Sum returns the sum over r. r must lie inside the table.
func (t *Table[T]) Sum(r Region) T {
	stride := t.width + 1
	a := t.sums[r.Y1*stride+r.X1]
	b := t.sums[r.Y1*stride+r.X2+1]
	c := t.sums[(r.Y2+1)*stride+r.X1]
	d := t.sums[(r.Y2+1)*stride+r.X2+1]
	return d - b - c + a
}

// Total returns the sum over the whole table.
func (t *Table[T]) Total() T {
	return t.sums[len(t.sums)-1]
}

// Mean returns Sum(r)/Area(r).
func (t *Table[T]) Mean(r Region) float64 {
	return float64(t.Sum(r)) / float64(r.Area())
}

// Check panics when the table does not describe an image of the given
// dimensions.
func (t *Table[T]) Check(width, height int) {
	if t.width != width || t.height != height || len(t.sums) != (width+1)*(height+1) {
		core.Invariant("integral table %dx%d (len %d) used with %dx%d image",
			t.width, t.height, len(t.sums), width, height)
	}
}
