package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"document-binarization/internal/core"
)

func halfBlack(t *testing.T, w, h int) *core.Image {
	t.Helper()
	img, err := core.NewImage(w, h)
	require.NoError(t, err)
	for y := range h {
		for x := range w {
			if x < w/2 {
				img.Data[y*w+x] = core.Black
			} else {
				img.Data[y*w+x] = core.White
			}
		}
	}
	return img
}

func TestPerfectMatch(t *testing.T) {
	gt := halfBlack(t, 8, 8)
	report, err := NewEvaluator().Evaluate(gt, gt.Clone())
	require.NoError(t, err)

	assert.Equal(t, Confusion{TruePositives: 32, TrueNegatives: 32}, report.Confusion)
	assert.Equal(t, 1.0, report.Metrics["accuracy"])
	assert.Equal(t, 1.0, report.Metrics["f_measure"])
	assert.Equal(t, 1.0, report.Metrics["pseudo_f_measure"])
	assert.Equal(t, 0.0, report.Metrics["nrm"])
	assert.Equal(t, 0.0, report.Metrics["drd"])
	assert.Equal(t, maxPSNR, report.Metrics["psnr"])
}

func TestSingleFlip(t *testing.T) {
	gt := halfBlack(t, 8, 8)
	res := gt.Clone()
	res.Data[0] = core.White

	c, err := Compare(gt, res)
	require.NoError(t, err)
	assert.Equal(t, Confusion{TruePositives: 31, FalseNegatives: 1, TrueNegatives: 32}, c)

	e := NewEvaluator()
	recall, err := e.Calculate("recall", gt, res)
	require.NoError(t, err)
	assert.InDelta(t, 31.0/32.0, recall, 1e-12)

	nrm, err := e.Calculate("nrm", gt, res)
	require.NoError(t, err)
	assert.InDelta(t, (1.0/32.0)/2, nrm, 1e-12)

	psnr, err := e.Calculate("psnr", gt, res)
	require.NoError(t, err)
	assert.InDelta(t, 10*math.Log10(64), psnr, 1e-9)

	// Every in-bounds neighbour of (0,0) is ground truth foreground, the
	// flipped pixel is background, and the image is one non-uniform block.
	var partial, total float64
	for dy := -2; dy <= 2; dy++ {
		for dx := -2; dx <= 2; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			wgt := 1 / math.Hypot(float64(dx), float64(dy))
			total += wgt
			if dx >= 0 && dy >= 0 {
				partial += wgt
			}
		}
	}
	drd, err := e.Calculate("drd", gt, res)
	require.NoError(t, err)
	assert.InDelta(t, partial/total, drd, 1e-12)
}

func TestShapeMismatch(t *testing.T) {
	_, err := NewEvaluator().Evaluate(halfBlack(t, 8, 8), halfBlack(t, 4, 8))
	require.Error(t, err)
	assert.True(t, core.IsConfigurationError(err))

	_, err = NewEvaluator().Calculate("ssim", halfBlack(t, 2, 2), halfBlack(t, 2, 2))
	assert.Error(t, err)
}

func TestSkeletonize(t *testing.T) {
	img, err := core.NewImage(12, 7)
	require.NoError(t, err)
	for i := range img.Data {
		img.Data[i] = core.White
	}
	for y := 2; y <= 4; y++ {
		for x := 1; x <= 10; x++ {
			img.Data[y*12+x] = core.Black
		}
	}

	skeleton := Skeletonize(img)
	var n int
	for i, on := range skeleton {
		if on {
			n++
			assert.Equal(t, core.Black, img.Data[i], "skeleton pixel outside foreground")
		}
	}
	assert.Greater(t, n, 0)
	assert.Less(t, n, 30)
}

func TestMetricInfo(t *testing.T) {
	e := NewEvaluator()
	info := e.GetMetricInfo()
	assert.Len(t, info, len(e.Names()))
	assert.False(t, info["drd"].HigherBetter)
	assert.True(t, info["f_measure"].HigherBetter)
	assert.Equal(t, [2]float64{0, 1}, info["accuracy"].Range)
}
