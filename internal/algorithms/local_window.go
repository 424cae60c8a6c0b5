package algorithms

import (
	"document-binarization/internal/core"
	"document-binarization/internal/stats"
)

const (
	defaultWindow = 75
	maxWindow     = 1 << 18
)

func windowParam(def int) core.ParameterInfo {
	return core.ParameterInfo{
		Name:        "window",
		Kind:        core.Integer,
		Min:         1,
		Max:         maxWindow,
		Default:     core.IntValue(int64(def)),
		Description: "Local window size in pixels (even sizes are widened by one)",
	}
}

func kParam(def float64, description string) core.ParameterInfo {
	return core.ParameterInfo{
		Name:        "k",
		Kind:        core.Float,
		Min:         -10,
		Max:         10,
		Default:     core.FloatValue(def),
		Description: description,
	}
}

func rangeParam(def float64) core.ParameterInfo {
	return core.ParameterInfo{
		Name:        "R",
		Kind:        core.Float,
		Min:         1,
		Max:         65535,
		Default:     core.FloatValue(def),
		Description: "Dynamic range of the standard deviation",
	}
}

// thresholdImage classifies every pixel against threshold(i), the local
// threshold of pixel i in row-major order.
func thresholdImage(input *core.Image, opts Options, threshold func(i int) float64) *core.Image {
	out := &core.Image{Width: input.Width, Height: input.Height, Data: make([]byte, input.Size())}
	core.ParallelRows(input.Height, opts.Workers, func(y0, y1 int) {
		for i := y0 * input.Width; i < y1*input.Width; i++ {
			out.Data[i] = core.Classify(input.Data[i], threshold(i))
		}
	})
	return out
}

func filled(input *core.Image, v byte) *core.Image {
	out := &core.Image{Width: input.Width, Height: input.Height, Data: make([]byte, input.Size())}
	for i := range out.Data {
		out.Data[i] = v
	}
	return out
}

// localMoments computes window mean and variance for the "window" parameter.
func localMoments(input *core.Image, params core.Resolved, opts Options) (*stats.Moments, error) {
	return stats.MeanVariance(input, params.Int("window"), opts.Workers)
}
