// Local contrast thresholding: Bernsen and Wan
package algorithms

import (
	"math"

	"document-binarization/internal/core"
	"document-binarization/internal/stats"
)

// BernsenLocal thresholds at the window mid-range when the window has enough
// contrast. Low contrast windows are classified as a whole by comparing the
// mid-range against a global threshold.
type BernsenLocal struct{}

// NewBernsen creates a new Bernsen algorithm
func NewBernsen() *BernsenLocal {
	return &BernsenLocal{}
}

func (b *BernsenLocal) Apply(input *core.Image, params core.Resolved, opts Options) (*core.Image, error) {
	e, err := stats.MinMax(input, params.Int("window"))
	if err != nil {
		return nil, err
	}

	threshold := params.Int("threshold")
	limit := params.Int("contrast-limit")

	out := &core.Image{Width: input.Width, Height: input.Height, Data: make([]byte, input.Size())}
	core.ParallelRows(input.Height, opts.Workers, func(y0, y1 int) {
		for i := y0 * input.Width; i < y1*input.Width; i++ {
			lo, hi := int(e.Min[i]), int(e.Max[i])
			mid := (lo + hi) / 2
			switch {
			case hi-lo < limit && mid >= threshold:
				out.Data[i] = core.White
			case hi-lo < limit:
				out.Data[i] = core.Black
			case int(input.Data[i]) >= mid:
				out.Data[i] = core.White
			default:
				out.Data[i] = core.Black
			}
		}
	})
	return out, nil
}

func (b *BernsenLocal) GetName() string {
	return "Bernsen"
}

func (b *BernsenLocal) GetDescription() string {
	return "Local mid-range threshold with a contrast limit for uniform regions"
}

func (b *BernsenLocal) GetParameterInfo() []core.ParameterInfo {
	return []core.ParameterInfo{
		windowParam(defaultWindow),
		{
			Name:        "threshold",
			Kind:        core.Integer,
			Min:         0,
			Max:         255,
			Default:     core.IntValue(100),
			Description: "Global threshold applied to low contrast windows",
		},
		{
			Name:        "contrast-limit",
			Kind:        core.Integer,
			Min:         0,
			Max:         255,
			Default:     core.IntValue(25),
			Description: "Minimum max-min contrast for a window to use its own mid-range",
		},
	}
}

// WanLocal implements T = ((max + m)/2) * (1 + k*(s/R - 1)), Sauvola with
// the mean raised towards the local maximum.
type WanLocal struct{}

// NewWan creates a new Wan algorithm
func NewWan() *WanLocal {
	return &WanLocal{}
}

func (w *WanLocal) Apply(input *core.Image, params core.Resolved, opts Options) (*core.Image, error) {
	m, err := localMoments(input, params, opts)
	if err != nil {
		return nil, err
	}
	e, err := stats.MinMax(input, params.Int("window"))
	if err != nil {
		return nil, err
	}

	k, r := params.Float("k"), params.Float("R")
	return thresholdImage(input, opts, func(i int) float64 {
		base := (float64(e.Max[i]) + m.Mean[i]) / 2
		return base * (1 + k*(math.Sqrt(m.Variance[i])/r-1))
	}), nil
}

func (w *WanLocal) GetName() string {
	return "Wan"
}

func (w *WanLocal) GetDescription() string {
	return "Sauvola variant using the average of local maximum and mean"
}

func (w *WanLocal) GetParameterInfo() []core.ParameterInfo {
	return []core.ParameterInfo{
		windowParam(defaultWindow),
		kParam(0.2, "Sensitivity to local contrast"),
		rangeParam(128),
	}
}
