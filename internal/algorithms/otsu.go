// Global histogram thresholding
package algorithms

import (
	"document-binarization/internal/core"
	"document-binarization/internal/stats"
)

// OtsuGlobal implements Otsu's between-class variance maximization over the
// whole image histogram.
type OtsuGlobal struct{}

// NewOtsu creates a new global Otsu algorithm
func NewOtsu() *OtsuGlobal {
	return &OtsuGlobal{}
}

func (o *OtsuGlobal) Apply(input *core.Image, _ core.Resolved, opts Options) (*core.Image, error) {
	threshold, ok := stats.OtsuThreshold(stats.Histogram(input))
	if !ok {
		// Single gray level: no split exists, everything is background.
		return filled(input, core.White), nil
	}

	t := float64(threshold)
	return thresholdImage(input, opts, func(int) float64 { return t }), nil
}

func (o *OtsuGlobal) GetName() string {
	return "Otsu"
}

func (o *OtsuGlobal) GetDescription() string {
	return "Global threshold maximizing between-class variance of the gray level histogram"
}

func (o *OtsuGlobal) GetParameterInfo() []core.ParameterInfo {
	return nil
}
