package algorithms

import (
	"document-binarization/internal/core"
	"document-binarization/internal/morphology"
)

// ISauvolaRegion implements ISauvola: Sauvola components are kept only when
// they touch a high contrast seed, which suppresses background noise that
// plain Sauvola turns into foreground.
type ISauvolaRegion struct{}

// NewISauvola creates a new ISauvola algorithm
func NewISauvola() *ISauvolaRegion {
	return &ISauvolaRegion{}
}

func (s *ISauvolaRegion) Apply(input *core.Image, params core.Resolved, opts Options) (*core.Image, error) {
	estimate, err := sauvola(input, params.Int("window"), params.Float("k"), params.Float("R"), opts)
	if err != nil {
		return nil, err
	}

	mask, ok := highContrastMask(input, opts)
	if !ok {
		return filled(input, core.White), nil
	}

	seeds := &core.Image{Width: input.Width, Height: input.Height, Data: make([]byte, input.Size())}
	for i, high := range mask {
		if high {
			seeds.Data[i] = core.Black
		} else {
			seeds.Data[i] = core.White
		}
	}
	seeds = morphology.Dilate(seeds, morphology.Cross(3))

	return morphology.Grow(estimate, seeds), nil
}

func (s *ISauvolaRegion) GetName() string {
	return "ISauvola"
}

func (s *ISauvolaRegion) GetDescription() string {
	return "Sauvola constrained to regions grown from high contrast seeds"
}

func (s *ISauvolaRegion) GetParameterInfo() []core.ParameterInfo {
	return []core.ParameterInfo{
		windowParam(defaultWindow),
		kParam(0.01, "Sauvola sensitivity"),
		rangeParam(128),
	}
}
