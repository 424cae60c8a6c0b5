package algorithms

import (
	"math"

	"document-binarization/internal/core"
	"document-binarization/internal/filters"
	"document-binarization/internal/morphology"
	"document-binarization/internal/stats"
)

// Post-processing thresholds (Gatos et al.): shrink removes foreground with
// at least shrinkBackground background pixels in a 5x5 window, swell fills
// background with at least swellForeground foreground pixels in a 3x3
// window.
const (
	shrinkRadius     = 2
	shrinkBackground = 23
	swellRadius      = 1
	swellForeground  = 6
)

// GatosAdaptive is the Gatos-Pratikakis-Perantonis binarization: Wiener
// smoothing, a Sauvola estimate, a background surface interpolated from
// estimated background pixels, and a threshold driven by the distance
// between the surface and the image.
type GatosAdaptive struct{}

// NewGatos creates a new Gatos algorithm
func NewGatos() *GatosAdaptive {
	return &GatosAdaptive{}
}

func (g *GatosAdaptive) Apply(input *core.Image, params core.Resolved, opts Options) (*core.Image, error) {
	window := params.Int("window")
	glyph := params.Int("glyph")
	q, p1, p2 := params.Float("q"), params.Float("p1"), params.Float("p2")

	glyphRadius, err := stats.Radius(glyph)
	if err != nil {
		return nil, err
	}

	smoothed := filters.Wiener(input, opts.Workers)
	estimate, err := sauvola(smoothed, window, params.Float("k"), 128, opts)
	if err != nil {
		return nil, err
	}

	background := backgroundSurface(smoothed, estimate, glyphRadius, opts)

	// delta: mean distance between surface and image over text pixels.
	// b: mean surface level over background pixels.
	var textDist, bgSum float64
	var textCount, bgCount int
	for i, v := range estimate.Data {
		if v == core.Black {
			textDist += background[i] - float64(smoothed.Data[i])
			textCount++
		} else {
			bgSum += background[i]
			bgCount++
		}
	}
	if textCount == 0 {
		return filled(input, core.White), nil
	}
	delta := textDist / float64(textCount)
	b := 255.0
	if bgCount > 0 {
		b = max(1, bgSum/float64(bgCount))
	}

	out := &core.Image{Width: input.Width, Height: input.Height, Data: make([]byte, input.Size())}
	core.ParallelRows(input.Height, opts.Workers, func(y0, y1 int) {
		for i := y0 * input.Width; i < y1*input.Width; i++ {
			bg := background[i]
			sig := 1 + math.Exp(-4*bg/(b*(1-p1))+2*(1+p1)/(1-p1))
			d := q * delta * ((1-p2)/sig + p2)
			if bg-float64(smoothed.Data[i]) > d {
				out.Data[i] = core.Black
			} else {
				out.Data[i] = core.White
			}
		}
	})

	if params.Int("postprocess") == 1 {
		out = gatosPostProcess(out)
	}
	return out, nil
}

// backgroundSurface keeps background pixels of the estimate and replaces
// text pixels by the mean of background pixels in the surrounding window.
// Windows without background fall back to the global background mean, or
// white when the estimate has no background at all.
func backgroundSurface(img, estimate *core.Image, radius int, opts Options) []float64 {
	w, h := img.Width, img.Height
	isBackground := func(i int) bool { return estimate.Data[i] == core.White }

	sums := stats.Build(w, h, func(i int) float64 {
		if isBackground(i) {
			return float64(img.Data[i])
		}
		return 0
	})
	counts := stats.Build(w, h, func(i int) uint64 {
		if isBackground(i) {
			return 1
		}
		return 0
	})

	fallback := 255.0
	if n := counts.Total(); n > 0 {
		fallback = sums.Total() / float64(n)
	}

	surface := make([]float64, w*h)
	core.ParallelRows(h, opts.Workers, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := range w {
				i := y*w + x
				if isBackground(i) {
					surface[i] = float64(img.Data[i])
					continue
				}
				r := stats.Window(x, y, radius, w, h)
				if n := counts.Sum(r); n > 0 {
					surface[i] = sums.Sum(r) / float64(n)
				} else {
					surface[i] = fallback
				}
			}
		}
	})
	return surface
}

// gatosPostProcess removes isolated foreground (shrink) then fills small
// gaps between strokes (swell).
func gatosPostProcess(img *core.Image) *core.Image {
	bgCounts := morphology.CountNeighbours(img, core.White, shrinkRadius)
	shrunk := img.Clone()
	for i, v := range img.Data {
		if v == core.Black && bgCounts[i] >= shrinkBackground {
			shrunk.Data[i] = core.White
		}
	}

	fgCounts := morphology.CountNeighbours(shrunk, core.Black, swellRadius)
	swollen := shrunk.Clone()
	for i, v := range shrunk.Data {
		if v == core.White && fgCounts[i] >= swellForeground {
			swollen.Data[i] = core.Black
		}
	}
	return swollen
}

func (g *GatosAdaptive) GetName() string {
	return "Gatos"
}

func (g *GatosAdaptive) GetDescription() string {
	return "Background surface estimation with Wiener pre-filtering and Sauvola seeding"
}

func (g *GatosAdaptive) GetParameterInfo() []core.ParameterInfo {
	return []core.ParameterInfo{
		windowParam(defaultWindow),
		kParam(0.2, "Sauvola sensitivity for the initial estimate"),
		{Name: "glyph", Kind: core.Integer, Min: 1, Max: maxWindow, Default: core.IntValue(60),
			Description: "Background interpolation window, about two characters wide"},
		{Name: "q", Kind: core.Float, Min: 0, Max: 10, Default: core.FloatValue(0.6),
			Description: "Weight of the average text to background distance"},
		{Name: "p1", Kind: core.Float, Min: 0, Max: 0.99, Default: core.FloatValue(0.5),
			Description: "Sigmoid shape parameter"},
		{Name: "p2", Kind: core.Float, Min: 0, Max: 1, Default: core.FloatValue(0.8),
			Description: "Threshold fraction retained in dark background"},
		{Name: "postprocess", Kind: core.Integer, Min: 0, Max: 1, Default: core.IntValue(1),
			Description: "Apply shrink and swell post-processing (1) or not (0)"},
	}
}
