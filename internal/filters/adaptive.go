package filters

import (
	"document-binarization/internal/core"
	"document-binarization/internal/stats"
)

const contrastEpsilon = 1e-4

// Wiener applies a 3x3 adaptive Wiener filter. The noise power is estimated
// as the mean of all local variances. Where both the local variance and the
// noise power are zero the local mean is used.
func Wiener(img *core.Image, workers int) *core.Image {
	m, err := stats.MeanVariance(img, 3, workers)
	if err != nil {
		core.Invariant("wiener window: %v", err)
	}

	var noise float64
	for _, v := range m.Variance {
		noise += v
	}
	noise /= float64(len(m.Variance))

	out := &core.Image{Width: img.Width, Height: img.Height, Data: make([]byte, img.Size())}
	core.ParallelRows(img.Height, workers, func(y0, y1 int) {
		for i := y0 * img.Width; i < y1*img.Width; i++ {
			mean, variance := m.Mean[i], m.Variance[i]
			denom := max(variance, noise)
			if denom == 0 {
				out.Data[i] = clampByte(mean)
				continue
			}
			gain := max(0, variance-noise) / denom
			out.Data[i] = clampByte(mean + gain*(float64(img.Data[i])-mean))
		}
	})

	return out
}

// Contrast computes the local contrast (max-min)/(max+min+eps) over a 3x3
// window and scales it onto 0..255.
func Contrast(img *core.Image, workers int) *core.Image {
	e, err := stats.MinMax(img, 3)
	if err != nil {
		core.Invariant("contrast window: %v", err)
	}

	out := &core.Image{Width: img.Width, Height: img.Height, Data: make([]byte, img.Size())}
	core.ParallelRows(img.Height, workers, func(y0, y1 int) {
		for i := y0 * img.Width; i < y1*img.Width; i++ {
			lo, hi := float64(e.Min[i]), float64(e.Max[i])
			out.Data[i] = clampByte(255 * (hi - lo) / (hi + lo + contrastEpsilon))
		}
	})
	return out
}
