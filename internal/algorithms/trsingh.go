package algorithms

import (
	"math"

	"document-binarization/internal/core"
	"document-binarization/internal/stats"
)

// TRSinghLocal implements the T.R. Singh mean-deviation threshold. Values
// are normalized to [0, 1]; with d = p - m the threshold is
// T = m * (1 + k*(d/(1-d) - 1)).
type TRSinghLocal struct{}

// NewTRSingh creates a new T.R. Singh algorithm
func NewTRSingh() *TRSinghLocal {
	return &TRSinghLocal{}
}

func (t *TRSinghLocal) Apply(input *core.Image, params core.Resolved, opts Options) (*core.Image, error) {
	mean, err := stats.Mean(input, params.Int("window"), opts.Workers)
	if err != nil {
		return nil, err
	}

	k := params.Float("k")
	return thresholdImage(input, opts, func(i int) float64 {
		return trSinghThreshold(input.Data[i], mean[i], k)
	}), nil
}

// trSinghThreshold falls back to the window mean where d/(1-d) diverges.
func trSinghThreshold(p byte, mean, k float64) float64 {
	m := mean / 255
	d := float64(p)/255 - m
	// d == 1 needs p == 255 with m == 0.
	if 1-d == 0 {
		return mean
	}
	th := m * (1 + k*(d/(1-d)-1))
	if math.IsInf(th, 0) {
		return mean
	}
	return th * 255
}

func (t *TRSinghLocal) GetName() string {
	return "T.R. Singh"
}

func (t *TRSinghLocal) GetDescription() string {
	return "Local threshold from window mean and the pixel's mean deviation"
}

func (t *TRSinghLocal) GetParameterInfo() []core.ParameterInfo {
	return []core.ParameterInfo{
		windowParam(defaultWindow),
		kParam(0.2, "Sensitivity to the mean deviation"),
	}
}
