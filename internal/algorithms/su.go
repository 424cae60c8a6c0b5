package algorithms

import (
	"math"

	"document-binarization/internal/core"
	"document-binarization/internal/filters"
	"document-binarization/internal/stats"
)

// SuContrast is the Su-Lu-Tan binarization: high contrast pixels found by
// Otsu on a local contrast image (optionally restricted to Sobel edges)
// vote on each window, and a pixel is text when enough high contrast pixels
// surround it and it is darker than their mean plus half a deviation.
type SuContrast struct{}

// NewSu creates a new Su algorithm
func NewSu() *SuContrast {
	return &SuContrast{}
}

func (s *SuContrast) Apply(input *core.Image, params core.Resolved, opts Options) (*core.Image, error) {
	mask, ok := highContrastMask(input, opts)
	if !ok {
		return filled(input, core.White), nil
	}

	if params.Int("edges") == 1 {
		edges := filters.Sobel(input, 0).Normalize()
		if t, ok := stats.OtsuThreshold(stats.Histogram(edges)); ok {
			for i, v := range edges.Data {
				mask[i] = mask[i] && v > t
			}
		}
	}

	window := params.Int("window")
	if window == 0 {
		window = 2*strokeWidth(mask, input.Width, input.Height) + 1
	}
	radius, err := stats.Radius(window)
	if err != nil {
		return nil, err
	}
	minN := params.Int("minN")
	if minN == 0 {
		minN = window
	}

	w, h := input.Width, input.Height
	counts := stats.Build(w, h, func(i int) uint64 {
		if mask[i] {
			return 1
		}
		return 0
	})
	sums := stats.Build(w, h, func(i int) uint64 {
		if mask[i] {
			return uint64(input.Data[i])
		}
		return 0
	})
	squares := stats.Build(w, h, func(i int) uint64 {
		if mask[i] {
			v := uint64(input.Data[i])
			return v * v
		}
		return 0
	})

	out := &core.Image{Width: w, Height: h, Data: make([]byte, input.Size())}
	core.ParallelRows(h, opts.Workers, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := range w {
				i := y*w + x
				r := stats.Window(x, y, radius, w, h)
				ne := counts.Sum(r)
				if ne == 0 || int(ne) < minN {
					out.Data[i] = core.White
					continue
				}
				n := float64(ne)
				mean := float64(sums.Sum(r)) / n
				std := math.Sqrt(max(0, float64(squares.Sum(r))/n-mean*mean))
				// Strict: a window whose high contrast pixels all share the
				// pixel's own level carries no evidence of text.
				if float64(input.Data[i]) < mean+std/2 {
					out.Data[i] = core.Black
				} else {
					out.Data[i] = core.White
				}
			}
		}
	})
	return out, nil
}

// highContrastMask returns true where the local contrast image exceeds its
// Otsu threshold. ok is false when the contrast image is uniform.
func highContrastMask(input *core.Image, opts Options) ([]bool, bool) {
	contrast := filters.Contrast(input, opts.Workers)
	t, ok := stats.OtsuThreshold(stats.Histogram(contrast))
	if !ok {
		return nil, false
	}

	mask := make([]bool, contrast.Size())
	for i, v := range contrast.Data {
		mask[i] = v > t
	}
	return mask, true
}

// strokeWidth estimates text stroke width as the most frequent horizontal
// distance between consecutive high contrast pixels that are not adjacent.
// Returns 1 when no such pair exists.
func strokeWidth(mask []bool, width, height int) int {
	hist := make([]int, width+1)
	for y := range height {
		last := -1
		for x := range width {
			if !mask[y*width+x] {
				continue
			}
			if last >= 0 && x-last > 1 {
				hist[x-last]++
			}
			last = x
		}
	}

	best, bestCount := 1, 0
	for d, c := range hist {
		if c > bestCount {
			best, bestCount = d, c
		}
	}
	return best
}

func (s *SuContrast) GetName() string {
	return "Su"
}

func (s *SuContrast) GetDescription() string {
	return "High contrast pixel voting on a local contrast image"
}

func (s *SuContrast) GetParameterInfo() []core.ParameterInfo {
	return []core.ParameterInfo{
		{Name: "window", Kind: core.Integer, Min: 0, Max: maxWindow, Default: core.IntValue(0),
			Description: "Local window size, 0 estimates it from the stroke width"},
		{Name: "minN", Kind: core.Integer, Min: 0, Max: 1 << 30, Default: core.IntValue(0),
			Description: "Minimum high contrast pixels in the window, 0 uses the window size"},
		{Name: "edges", Kind: core.Integer, Min: 0, Max: 1, Default: core.IntValue(1),
			Description: "Restrict high contrast pixels to Sobel edges (1) or not (0)"},
	}
}
