package metrics

import (
	"math"

	"document-binarization/internal/core"
)

// maxPSNR is reported for identical images, where PSNR is unbounded.
const maxPSNR = 100.0

type confusionMetric struct {
	name, description string
	lo, hi            float64
	higherBetter      bool
	value             func(c Confusion) float64
}

func (m *confusionMetric) Calculate(groundTruth, binary *core.Image) (float64, error) {
	c, err := Compare(groundTruth, binary)
	if err != nil {
		return 0, err
	}
	return m.value(c), nil
}

func (m *confusionMetric) GetName() string              { return m.name }
func (m *confusionMetric) GetDescription() string       { return m.description }
func (m *confusionMetric) GetRange() (float64, float64) { return m.lo, m.hi }
func (m *confusionMetric) IsHigherBetter() bool         { return m.higherBetter }

func NewAccuracy() Metric {
	return &confusionMetric{
		name: "Accuracy", description: "Fraction of pixels classified as in the ground truth",
		lo: 0, hi: 1, higherBetter: true,
		value: func(c Confusion) float64 {
			return float64(c.TruePositives+c.TrueNegatives) / float64(c.Total())
		},
	}
}

func NewPrecision() Metric {
	return &confusionMetric{
		name: "Precision", description: "Fraction of detected foreground that is true foreground",
		lo: 0, hi: 1, higherBetter: true,
		value: Confusion.Precision,
	}
}

func NewRecall() Metric {
	return &confusionMetric{
		name: "Recall", description: "Fraction of true foreground that was detected",
		lo: 0, hi: 1, higherBetter: true,
		value: Confusion.Recall,
	}
}

// NewFMeasure creates the harmonic mean of precision and recall
func NewFMeasure() Metric {
	return &confusionMetric{
		name: "F-Measure", description: "Harmonic mean of precision and recall on foreground pixels",
		lo: 0, hi: 1, higherBetter: true,
		value: func(c Confusion) float64 {
			return harmonic(c.Precision(), c.Recall())
		},
	}
}

// NewNRM creates the negative rate metric (FNR + FPR) / 2
func NewNRM() Metric {
	return &confusionMetric{
		name: "NRM", description: "Mean of false negative and false positive rates",
		lo: 0, hi: 1, higherBetter: false,
		value: func(c Confusion) float64 {
			var fnr, fpr float64
			if n := c.FalseNegatives + c.TruePositives; n > 0 {
				fnr = float64(c.FalseNegatives) / float64(n)
			}
			if n := c.FalsePositives + c.TrueNegatives; n > 0 {
				fpr = float64(c.FalsePositives) / float64(n)
			}
			return (fnr + fpr) / 2
		},
	}
}

// NewPSNR creates the binary PSNR with unit signal range
func NewPSNR() Metric {
	return &confusionMetric{
		name: "PSNR", description: "Peak signal to noise ratio of the binary result in dB",
		lo: 0, hi: maxPSNR, higherBetter: true,
		value: func(c Confusion) float64 {
			mse := float64(c.FalsePositives+c.FalseNegatives) / float64(c.Total())
			if mse == 0 {
				return maxPSNR
			}
			return min(maxPSNR, 10*math.Log10(1/mse))
		},
	}
}

// PseudoFMeasure replaces recall with the fraction of the ground truth
// skeleton that was detected.
type PseudoFMeasure struct{}

func NewPseudoFMeasure() *PseudoFMeasure {
	return &PseudoFMeasure{}
}

func (p *PseudoFMeasure) Calculate(groundTruth, binary *core.Image) (float64, error) {
	c, err := Compare(groundTruth, binary)
	if err != nil {
		return 0, err
	}

	skeleton := Skeletonize(groundTruth)
	var total, hit int
	for i, s := range skeleton {
		if !s {
			continue
		}
		total++
		if binary.Data[i] < 128 {
			hit++
		}
	}
	if total == 0 {
		return 0, nil
	}
	return harmonic(c.Precision(), float64(hit)/float64(total)), nil
}

func (p *PseudoFMeasure) GetName() string { return "Pseudo F-Measure" }
func (p *PseudoFMeasure) GetDescription() string {
	return "F-measure with recall measured on the skeleton of the ground truth"
}
func (p *PseudoFMeasure) GetRange() (float64, float64) { return 0, 1 }
func (p *PseudoFMeasure) IsHigherBetter() bool         { return true }

// DRD is the distance reciprocal distortion of Lu, Kot and Shi: every
// flipped pixel is weighted by how much the ground truth around it
// disagrees with its new value, normalized by the number of non-uniform 8x8
// ground truth blocks.
type DRD struct {
	weights [drdSize * drdSize]float64
}

const (
	drdSize  = 5
	drdBlock = 8
)

func NewDRD() *DRD {
	d := &DRD{}
	center := drdSize / 2
	var sum float64
	for y := range drdSize {
		for x := range drdSize {
			if x == center && y == center {
				continue
			}
			dx, dy := float64(x-center), float64(y-center)
			d.weights[y*drdSize+x] = 1 / math.Sqrt(dx*dx+dy*dy)
			sum += d.weights[y*drdSize+x]
		}
	}
	for i := range d.weights {
		d.weights[i] /= sum
	}
	return d
}

func (d *DRD) Calculate(groundTruth, binary *core.Image) (float64, error) {
	if err := checkPair(groundTruth, binary); err != nil {
		return 0, err
	}

	w, h := groundTruth.Width, groundTruth.Height
	fg := func(img *core.Image, i int) bool { return img.Data[i] < 128 }
	half := drdSize / 2

	var distortion float64
	for y := range h {
		for x := range w {
			i := y*w + x
			res := fg(binary, i)
			if res == fg(groundTruth, i) {
				continue
			}
			for ky := -half; ky <= half; ky++ {
				for kx := -half; kx <= half; kx++ {
					nx, ny := x+kx, y+ky
					if nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}
					if fg(groundTruth, ny*w+nx) != res {
						distortion += d.weights[(ky+half)*drdSize+kx+half]
					}
				}
			}
		}
	}

	if distortion == 0 {
		return 0, nil
	}
	return distortion / float64(max(1, nonUniformBlocks(groundTruth))), nil
}

// nonUniformBlocks counts 8x8 blocks (partial blocks at the border
// included) that contain both foreground and background.
func nonUniformBlocks(img *core.Image) int {
	n := 0
	for by := 0; by < img.Height; by += drdBlock {
		for bx := 0; bx < img.Width; bx += drdBlock {
			var fg, bg bool
			for y := by; y < min(by+drdBlock, img.Height); y++ {
				for x := bx; x < min(bx+drdBlock, img.Width); x++ {
					if img.At(x, y) < 128 {
						fg = true
					} else {
						bg = true
					}
				}
			}
			if fg && bg {
				n++
			}
		}
	}
	return n
}

func (d *DRD) GetName() string { return "DRD" }
func (d *DRD) GetDescription() string {
	return "Distance reciprocal distortion, visual distortion per non-uniform block"
}
func (d *DRD) GetRange() (float64, float64) { return 0, 100 }
func (d *DRD) IsHigherBetter() bool         { return false }
