package metrics

import (
	"fmt"

	"document-binarization/internal/core"
)

// Confusion counts pixel agreement with foreground (Black) as positive.
type Confusion struct {
	TruePositives  int `json:"tp"`
	FalsePositives int `json:"fp"`
	FalseNegatives int `json:"fn"`
	TrueNegatives  int `json:"tn"`
}

func checkPair(groundTruth, binary *core.Image) error {
	if err := groundTruth.Validate(); err != nil {
		return fmt.Errorf("ground truth: %w", err)
	}
	if err := binary.Validate(); err != nil {
		return fmt.Errorf("result: %w", err)
	}
	if !groundTruth.SameShape(binary) {
		return core.NewConfigurationError("ground truth", fmt.Sprintf("dimensions %dx%d differ from result %dx%d",
			groundTruth.Width, groundTruth.Height, binary.Width, binary.Height))
	}
	return nil
}

// Compare counts the confusion matrix of binary against groundTruth. Any
// sample below 128 counts as foreground.
func Compare(groundTruth, binary *core.Image) (Confusion, error) {
	if err := checkPair(groundTruth, binary); err != nil {
		return Confusion{}, err
	}

	var c Confusion
	for i := range groundTruth.Data {
		gt := groundTruth.Data[i] < 128
		res := binary.Data[i] < 128
		switch {
		case gt && res:
			c.TruePositives++
		case !gt && res:
			c.FalsePositives++
		case gt && !res:
			c.FalseNegatives++
		default:
			c.TrueNegatives++
		}
	}
	return c, nil
}

func (c Confusion) Total() int {
	return c.TruePositives + c.FalsePositives + c.FalseNegatives + c.TrueNegatives
}

func (c Confusion) Precision() float64 {
	if c.TruePositives+c.FalsePositives == 0 {
		return 0
	}
	return float64(c.TruePositives) / float64(c.TruePositives+c.FalsePositives)
}

func (c Confusion) Recall() float64 {
	if c.TruePositives+c.FalseNegatives == 0 {
		return 0
	}
	return float64(c.TruePositives) / float64(c.TruePositives+c.FalseNegatives)
}

func harmonic(p, r float64) float64 {
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}
