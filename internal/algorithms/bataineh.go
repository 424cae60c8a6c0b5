package algorithms

import (
	"math"

	"document-binarization/internal/core"
	"document-binarization/internal/stats"
)

// BatainehAdaptive implements the Bataineh-Abdullah-Omar method. Window
// dimensions are derived from the image, and pixels close to the global
// confusion threshold are re-evaluated with a smaller window.
type BatainehAdaptive struct{}

// NewBataineh creates a new Bataineh algorithm
func NewBataineh() *BatainehAdaptive {
	return &BatainehAdaptive{}
}

func (b *BatainehAdaptive) Apply(input *core.Image, _ core.Resolved, opts Options) (*core.Image, error) {
	w, h := input.Width, input.Height

	gMean, gStd := stats.Global(input)
	gMean /= 255
	gStd /= 255
	lo, hi := stats.Range(input)

	// Global "confusion" threshold with adaptive deviation fixed at 0.5.
	tCon := batainehThreshold(gMean, gStd, gMean, 0.5)

	var dark, light int
	for _, v := range input.Data {
		if float64(v)/255 <= tCon {
			dark++
		} else {
			light++
		}
	}

	pw, ph := max(1, w/3), max(1, h/2)
	if light == 0 || float64(dark)/float64(light) >= 2.5 || gStd < 0.1*float64(hi-lo)/255 {
		pw, ph = max(1, w/6), max(1, h/4)
	}
	sw, sh := max(1, pw/2), max(1, ph/2)

	sum := stats.NewTable(input)
	sq := stats.NewSquaredTable(input)
	primary := batainehMap(sum, sq, pw/2, ph/2, gMean, opts)
	secondary := batainehMap(sum, sq, sw/2, sh/2, gMean, opts)

	return thresholdImage(input, opts, func(i int) float64 {
		if math.Abs(float64(input.Data[i])/255-tCon) <= gStd/2 {
			return secondary[i] * 255
		}
		return primary[i] * 255
	}), nil
}

// batainehMap evaluates the threshold for every pixel with the given window
// radii. Window deviations are min-max normalized to form the adaptive
// deviation.
func batainehMap(sum, sq *stats.Table[uint64], rx, ry int, gMean float64, opts Options) []float64 {
	m := stats.RectMoments(sum, sq, rx, ry, opts.Workers)
	std := m.StdDev()

	sMin, sMax := math.Inf(1), math.Inf(-1)
	for _, s := range std {
		sMin = min(sMin, s)
		sMax = max(sMax, s)
	}

	out := make([]float64, len(std))
	for i := range out {
		adaptive := 0.0
		if sMax > sMin {
			adaptive = (std[i] - sMin) / (sMax - sMin)
		}
		out[i] = batainehThreshold(m.Mean[i]/255, std[i]/255, gMean, adaptive)
	}
	return out
}

// batainehThreshold computes T = m - (m²·s)/((mg + s)(sa + s)) on values in
// [0, 1]. A zero denominator drops the correction term.
func batainehThreshold(mean, std, gMean, adaptive float64) float64 {
	denom := (gMean + std) * (adaptive + std)
	if denom == 0 {
		return mean
	}
	return mean - (mean*mean*std)/denom
}

func (b *BatainehAdaptive) GetName() string {
	return "Bataineh"
}

func (b *BatainehAdaptive) GetDescription() string {
	return "Adaptive window thresholding with confusion pixel refinement"
}

func (b *BatainehAdaptive) GetParameterInfo() []core.ParameterInfo {
	return nil
}
