package stats

import (
	"fmt"
	"math"

	"document-binarization/internal/core"
)

// Radius converts a window size parameter into a window radius. Even sizes
// are widened to the next odd size so the window stays centred.
func Radius(window int) (int, error) {
	if window <= 0 {
		return 0, core.NewConfigurationError("window",
			fmt.Sprintf("window size must be positive, got %d", window))
	}
	if window%2 == 0 {
		window++
	}
	return window / 2, nil
}

// Moments holds per-pixel window statistics.
type Moments struct {
	Mean     []float64
	Variance []float64
}

// StdDev returns the per-pixel standard deviation.
func (m *Moments) StdDev() []float64 {
	out := make([]float64, len(m.Variance))
	for i, v := range m.Variance {
		out[i] = math.Sqrt(v)
	}
	return out
}

// MaxStdDev returns the largest local standard deviation.
func (m *Moments) MaxStdDev() float64 {
	var maxVar float64
	for _, v := range m.Variance {
		maxVar = max(maxVar, v)
	}
	return math.Sqrt(maxVar)
}

// MeanVariance computes the local mean and population variance of every
// pixel over a square window, clamped at the borders. The cost is linear in
// the pixel count regardless of window size.
func MeanVariance(img *core.Image, window, workers int) (*Moments, error) {
	radius, err := Radius(window)
	if err != nil {
		return nil, err
	}

	sum := NewTable(img)
	sq := NewSquaredTable(img)
	return MomentsFromTables(sum, sq, radius, workers), nil
}

// MomentsFromTables evaluates square window moments from prebuilt tables.
func MomentsFromTables(sum, sq *Table[uint64], radius, workers int) *Moments {
	return RectMoments(sum, sq, radius, radius, workers)
}

// RectMoments evaluates moments over (2rx+1)x(2ry+1) windows.
func RectMoments(sum, sq *Table[uint64], rx, ry, workers int) *Moments {
	width, height := sum.Width(), sum.Height()
	sq.Check(width, height)

	m := &Moments{
		Mean:     make([]float64, width*height),
		Variance: make([]float64, width*height),
	}

	core.ParallelRows(height, workers, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := range width {
				r := Rect(x, y, rx, ry, width, height)
				n := float64(r.Area())
				mean := float64(sum.Sum(r)) / n
				variance := float64(sq.Sum(r))/n - mean*mean
				// Cancellation can leave a tiny negative residue.
				if variance < 0 {
					variance = 0
				}
				i := y*width + x
				m.Mean[i] = mean
				m.Variance[i] = variance
			}
		}
	})

	return m
}

// Mean computes only the local mean.
func Mean(img *core.Image, window, workers int) ([]float64, error) {
	radius, err := Radius(window)
	if err != nil {
		return nil, err
	}

	sum := NewTable(img)
	mean := make([]float64, img.Size())
	core.ParallelRows(img.Height, workers, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := range img.Width {
				mean[y*img.Width+x] = sum.Mean(Window(x, y, radius, img.Width, img.Height))
			}
		}
	})

	return mean, nil
}

// Global returns the mean and population standard deviation of the whole
// image.
func Global(img *core.Image) (mean, stddev float64) {
	var sum, sq uint64
	for _, v := range img.Data {
		sum += uint64(v)
		sq += uint64(v) * uint64(v)
	}
	n := float64(len(img.Data))
	mean = float64(sum) / n
	return mean, math.Sqrt(max(0, float64(sq)/n-mean*mean))
}

// Range returns the smallest and largest sample.
func Range(img *core.Image) (lo, hi byte) {
	lo, hi = 255, 0
	for _, v := range img.Data {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return lo, hi
}
