package algorithms

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"document-binarization/internal/core"
)

// footprint holds statistics of a clamped square footprint, computed pixel by
// pixel.
type footprint struct {
	p, mean, std float64
	lo, hi       float64
}

// pageStats holds image-wide statistics used by the normalized formulas.
type pageStats struct {
	std, lo, maxStd float64
}

func windowAt(img *core.Image, x, y, radius int) footprint {
	var sum, sq float64
	var n float64
	lo, hi := 255.0, 0.0
	for yy := max(0, y-radius); yy <= min(img.Height-1, y+radius); yy++ {
		for xx := max(0, x-radius); xx <= min(img.Width-1, x+radius); xx++ {
			v := float64(img.At(xx, yy))
			sum += v
			sq += v * v
			n++
			lo = min(lo, v)
			hi = max(hi, v)
		}
	}
	mean := sum / n
	return footprint{
		p:    float64(img.At(x, y)),
		mean: mean,
		std:  math.Sqrt(max(0, sq/n-mean*mean)),
		lo:   lo,
		hi:   hi,
	}
}

func globalOf(img *core.Image, radius int) pageStats {
	var sum, sq float64
	g := pageStats{lo: 255}
	for y := range img.Height {
		for x := range img.Width {
			v := float64(img.At(x, y))
			sum += v
			sq += v * v
			g.lo = min(g.lo, v)
			g.maxStd = max(g.maxStd, windowAt(img, x, y, radius).std)
		}
	}
	n := float64(img.Size())
	mean := sum / n
	g.std = math.Sqrt(max(0, sq/n-mean*mean))
	return g
}

func TestWindowedThresholdsMatchFormulas(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	img := newImage(t, 11, 9, func(int, int) byte { return byte(rng.Intn(256)) })
	const radius = 2
	g := globalOf(img, radius)

	cases := []struct {
		id        ID
		params    core.Parameters
		threshold func(w footprint) float64
	}{
		{Niblack, core.Parameters{}.WithFloat("k", -0.3), func(w footprint) float64 {
			return w.mean - 0.3*w.std
		}},
		{RobustNiblack, core.Parameters{}.WithFloat("k", 0.4), func(w footprint) float64 {
			return w.mean + 0.4*w.std*(w.std/g.std-1)
		}},
		{Sauvola, core.Parameters{}.WithFloat("k", 0.3).WithFloat("R", 100), func(w footprint) float64 {
			return w.mean * (1 + 0.3*(w.std/100-1))
		}},
		{Wolf, core.Parameters{}.WithFloat("k", 0.5), func(w footprint) float64 {
			return w.mean - 0.5*(1-w.std/g.maxStd)*(w.mean-g.lo)
		}},
		{Nick, core.Parameters{}.WithFloat("k", -0.15), func(w footprint) float64 {
			return w.mean - 0.15*math.Sqrt(w.std*w.std+w.mean*w.mean)
		}},
		{Wan, core.Parameters{}.WithFloat("k", 0.2).WithFloat("R", 128), func(w footprint) float64 {
			return (w.hi + w.mean) / 2 * (1 + 0.2*(w.std/128-1))
		}},
		{TRSingh, core.Parameters{}.WithFloat("k", 0.2), func(w footprint) float64 {
			m := w.mean / 255
			d := w.p/255 - m
			return 255 * m * (1 + 0.2*(d/(1-d)-1))
		}},
		{Bradley, core.Parameters{}.WithFloat("k", 0.15), func(w footprint) float64 {
			return w.mean * 0.85
		}},
		{LocalMean, core.Parameters{}.WithFloat("k", 0.1).WithFloat("R", 200), func(w footprint) float64 {
			return w.mean - 20
		}},
	}

	for _, c := range cases {
		t.Run(c.id.String(), func(t *testing.T) {
			out := run(t, c.id, img, c.params.WithInt("window", 2*radius+1), 1)
			var checked int
			for y := range img.Height {
				for x := range img.Width {
					th := c.threshold(windowAt(img, x, y, radius))
					if math.Abs(float64(img.At(x, y))-th) < 1e-6 {
						continue
					}
					checked++
					assert.Equal(t, core.Classify(img.At(x, y), th), out.At(x, y), "pixel %d,%d threshold %.3f", x, y, th)
				}
			}
			assert.Greater(t, checked, img.Size()/2)
		})
	}
}

func TestLocalMeanIsStrict(t *testing.T) {
	// Window mean of the centre pixel is 150, so T = 150 - 0.5*100 = 100.
	img := newImage(t, 3, 1, func(x, _ int) byte { return []byte{200, 100, 150}[x] })
	params := core.Parameters{}.WithInt("window", 3).WithFloat("k", 0.5).WithFloat("R", 100)
	out := run(t, LocalMean, img, params, 1)
	assert.Equal(t, core.White, out.At(1, 0))

	img.Data[2] = 151
	out = run(t, LocalMean, img, params, 1)
	assert.Equal(t, core.Black, out.At(1, 0))
}

func TestLocalMeanDefaults(t *testing.T) {
	// m = 100 with the default k and R puts the threshold at 74.5.
	img := newImage(t, 3, 3, func(x, y int) byte {
		if x == 1 && y == 1 {
			return 68
		}
		return 104
	})
	out := run(t, LocalMean, img, core.Parameters{}.WithInt("window", 3), 1)
	assert.Equal(t, core.Black, out.At(1, 1))
}

func TestRobustNiblackFlatPage(t *testing.T) {
	// No global deviation: T = m - k*s = m, and every pixel sits on it.
	flat := newImage(t, 9, 9, func(int, int) byte { return 120 })
	out := run(t, RobustNiblack, flat, core.Parameters{}.WithInt("window", 3), 1)
	for _, v := range out.Data {
		assert.Equal(t, core.Black, v)
	}
}

func TestWolfWithoutLocalDeviation(t *testing.T) {
	// maxS == 0 drops the ratio and T = m - k*(m - M) = m on a flat page.
	flat := newImage(t, 9, 9, func(int, int) byte { return 120 })
	for _, k := range []float64{0, 0.5, 1} {
		out := run(t, Wolf, flat, core.Parameters{}.WithInt("window", 3).WithFloat("k", k), 1)
		for _, v := range out.Data {
			require.Equal(t, core.Black, v, "k=%v", k)
		}
	}
}

func TestTRSinghDivergence(t *testing.T) {
	// 1 - d == 0 falls back to the window mean.
	assert.Equal(t, 0.0, trSinghThreshold(255, 0, 0.2))
	assert.Equal(t, 0.0, trSinghThreshold(255, 0, -3))

	// d/(1-d) stays finite elsewhere.
	m, d := 100.0/255, 50.0/255
	assert.InDelta(t, 255*m*(1+0.2*(d/(1-d)-1)), trSinghThreshold(150, 100, 0.2), 1e-9)
}

func TestGatosBackgroundSurface(t *testing.T) {
	img := newImage(t, 7, 1, func(x, _ int) byte { return []byte{180, 50, 60, 70, 80, 90, 220}[x] })
	estimate := newImage(t, 7, 1, func(x, _ int) byte {
		if x == 0 || x == 6 {
			return core.White
		}
		return core.Black
	})

	// Windows without background take the mean of all background pixels.
	surface := backgroundSurface(img, estimate, 1, Options{Workers: 1})
	assert.InDeltaSlice(t, []float64{180, 180, 200, 200, 200, 220, 220}, surface, 1e-9)

	allText := filled(img, core.Black)
	surface = backgroundSurface(img, allText, 1, Options{Workers: 1})
	for _, v := range surface {
		assert.Equal(t, 255.0, v)
	}
}

func TestSuWindowWithoutHighContrast(t *testing.T) {
	// A dark block far larger than the window: only its rim is high contrast.
	img := newImage(t, 40, 40, func(x, y int) byte {
		if x >= 20 && y >= 20 {
			return 40
		}
		return 200
	})
	params := core.Parameters{}.WithInt("window", 5).WithInt("minN", 1).WithInt("edges", 0)
	out := run(t, Su, img, params, 1)

	assert.Equal(t, core.White, out.At(32, 32), "dark pixel with no high contrast neighbours")
	assert.Equal(t, core.White, out.At(5, 5))
	assert.Equal(t, core.Black, out.At(20, 30))
	assert.Equal(t, core.Black, out.At(21, 30))
}
