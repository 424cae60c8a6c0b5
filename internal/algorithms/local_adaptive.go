// Local mean and deviation thresholding: Niblack, robust Niblack, Sauvola,
// Wolf-Jolion, NICK, local mean offset, Bradley
package algorithms

import (
	"math"

	"document-binarization/internal/core"
	"document-binarization/internal/stats"
)

// NiblackLocal implements T = m + k*s.
type NiblackLocal struct{}

// NewNiblack creates a new Niblack algorithm
func NewNiblack() *NiblackLocal {
	return &NiblackLocal{}
}

func (n *NiblackLocal) Apply(input *core.Image, params core.Resolved, opts Options) (*core.Image, error) {
	m, err := localMoments(input, params, opts)
	if err != nil {
		return nil, err
	}

	k := params.Float("k")
	return thresholdImage(input, opts, func(i int) float64 {
		return m.Mean[i] + k*math.Sqrt(m.Variance[i])
	}), nil
}

func (n *NiblackLocal) GetName() string {
	return "Niblack"
}

func (n *NiblackLocal) GetDescription() string {
	return "Local threshold from window mean shifted by k standard deviations"
}

func (n *NiblackLocal) GetParameterInfo() []core.ParameterInfo {
	return []core.ParameterInfo{
		windowParam(defaultWindow),
		kParam(-0.2, "Niblack parameter (negative values preserve more text)"),
	}
}

// RobustNiblack implements T = m + k*s*(s/S - 1) where S is the global
// standard deviation. Windows with less texture than the page move the
// threshold below the mean.
type RobustNiblack struct{}

func NewRobustNiblack() *RobustNiblack {
	return &RobustNiblack{}
}

func (r *RobustNiblack) Apply(input *core.Image, params core.Resolved, opts Options) (*core.Image, error) {
	m, err := localMoments(input, params, opts)
	if err != nil {
		return nil, err
	}

	k := params.Float("k")
	_, globalStd := stats.Global(input)
	return thresholdImage(input, opts, func(i int) float64 {
		s := math.Sqrt(m.Variance[i])
		// A flat page has no global deviation; the ratio term drops out
		// and T = m - k*s.
		ratio := 0.0
		if globalStd > 0 {
			ratio = s / globalStd
		}
		return m.Mean[i] + k*s*(ratio-1)
	}), nil
}

func (r *RobustNiblack) GetName() string {
	return "Robust Niblack"
}

func (r *RobustNiblack) GetDescription() string {
	return "Niblack variant scaling the deviation term by local over global standard deviation"
}

func (r *RobustNiblack) GetParameterInfo() []core.ParameterInfo {
	return []core.ParameterInfo{
		windowParam(defaultWindow),
		kParam(0.2, "Weight of the deviation term"),
	}
}

// SauvolaLocal implements T = m * (1 + k*(s/R - 1)).
type SauvolaLocal struct{}

// NewSauvola creates a new Sauvola algorithm
func NewSauvola() *SauvolaLocal {
	return &SauvolaLocal{}
}

func (s *SauvolaLocal) Apply(input *core.Image, params core.Resolved, opts Options) (*core.Image, error) {
	return sauvola(input, params.Int("window"), params.Float("k"), params.Float("R"), opts)
}

func (s *SauvolaLocal) GetName() string {
	return "Sauvola"
}

func (s *SauvolaLocal) GetDescription() string {
	return "Local threshold scaling the window mean by the normalized standard deviation"
}

func (s *SauvolaLocal) GetParameterInfo() []core.ParameterInfo {
	return []core.ParameterInfo{
		windowParam(defaultWindow),
		kParam(0.2, "Sensitivity to local contrast"),
		rangeParam(128),
	}
}

func sauvola(input *core.Image, window int, k, r float64, opts Options) (*core.Image, error) {
	m, err := stats.MeanVariance(input, window, opts.Workers)
	if err != nil {
		return nil, err
	}

	return thresholdImage(input, opts, func(i int) float64 {
		return m.Mean[i] * (1 + k*(math.Sqrt(m.Variance[i])/r-1))
	}), nil
}

// WolfJolion implements T = m - k*(1 - s/maxS)*(m - M) where M is the
// global minimum and maxS the largest local standard deviation.
type WolfJolion struct{}

// NewWolf creates a new Wolf-Jolion algorithm
func NewWolf() *WolfJolion {
	return &WolfJolion{}
}

func (w *WolfJolion) Apply(input *core.Image, params core.Resolved, opts Options) (*core.Image, error) {
	m, err := localMoments(input, params, opts)
	if err != nil {
		return nil, err
	}

	k := params.Float("k")
	lo, _ := stats.Range(input)
	minGray := float64(lo)
	maxStd := m.MaxStdDev()

	return thresholdImage(input, opts, func(i int) float64 {
		// maxStd == 0 only for a flat image; treat every window as untextured.
		ratio := 0.0
		if maxStd > 0 {
			ratio = math.Sqrt(m.Variance[i]) / maxStd
		}
		mean := m.Mean[i]
		return mean - k*(1-ratio)*(mean-minGray)
	}), nil
}

func (w *WolfJolion) GetName() string {
	return "Wolf-Jolion"
}

func (w *WolfJolion) GetDescription() string {
	return "Sauvola variant normalizing contrast by the global minimum and maximum deviation"
}

func (w *WolfJolion) GetParameterInfo() []core.ParameterInfo {
	return []core.ParameterInfo{
		windowParam(defaultWindow),
		kParam(0.5, "Wolf-Jolion sensitivity parameter"),
	}
}

// NICK implements T = m + k*sqrt(s² + m²).
type NICK struct{}

// NewNick creates a new NICK algorithm
func NewNick() *NICK {
	return &NICK{}
}

func (n *NICK) Apply(input *core.Image, params core.Resolved, opts Options) (*core.Image, error) {
	m, err := localMoments(input, params, opts)
	if err != nil {
		return nil, err
	}

	k := params.Float("k")
	return thresholdImage(input, opts, func(i int) float64 {
		mean := m.Mean[i]
		return mean + k*math.Sqrt(m.Variance[i]+mean*mean)
	}), nil
}

func (n *NICK) GetName() string {
	return "NICK"
}

func (n *NICK) GetDescription() string {
	return "Niblack variant shifting the mean by the root mean square of the window"
}

func (n *NICK) GetParameterInfo() []core.ParameterInfo {
	return []core.ParameterInfo{
		windowParam(defaultWindow),
		kParam(-0.2, "NICK parameter (typically between -0.2 and -0.1)"),
	}
}

// LocalMean marks a pixel foreground when it is darker than the window mean
// by more than the fraction k of the intensity range R.
type LocalMean struct{}

func NewLocalMean() *LocalMean {
	return &LocalMean{}
}

func (l *LocalMean) Apply(input *core.Image, params core.Resolved, opts Options) (*core.Image, error) {
	mean, err := stats.Mean(input, params.Int("window"), opts.Workers)
	if err != nil {
		return nil, err
	}

	offset := params.Float("k") * params.Float("R")
	return thresholdImage(input, opts, func(i int) float64 {
		// Strict p < m - offset.
		return math.Nextafter(mean[i]-offset, math.Inf(-1))
	}), nil
}

func (l *LocalMean) GetName() string {
	return "Local mean"
}

func (l *LocalMean) GetDescription() string {
	return "Pixels below the window mean minus a fixed offset are foreground"
}

func (l *LocalMean) GetParameterInfo() []core.ParameterInfo {
	return []core.ParameterInfo{
		windowParam(defaultWindow),
		{
			Name:        "k",
			Kind:        core.Float,
			Min:         0,
			Max:         1,
			Default:     core.FloatValue(0.1),
			Description: "Offset below the local mean as a fraction of R",
		},
		{
			Name:        "R",
			Kind:        core.Float,
			Min:         1,
			Max:         255,
			Default:     core.FloatValue(255),
			Description: "Intensity range the offset is measured against",
		},
	}
}

// BradleyLocal implements the local mean variant T = m * (1 - k).
type BradleyLocal struct{}

// NewBradley creates a new Bradley-Roth algorithm
func NewBradley() *BradleyLocal {
	return &BradleyLocal{}
}

func (b *BradleyLocal) Apply(input *core.Image, params core.Resolved, opts Options) (*core.Image, error) {
	mean, err := stats.Mean(input, params.Int("window"), opts.Workers)
	if err != nil {
		return nil, err
	}

	scale := 1 - params.Float("k")
	return thresholdImage(input, opts, func(i int) float64 {
		return mean[i] * scale
	}), nil
}

func (b *BradleyLocal) GetName() string {
	return "Bradley"
}

func (b *BradleyLocal) GetDescription() string {
	return "Pixels darker than the window mean by more than a fixed fraction are foreground"
}

func (b *BradleyLocal) GetParameterInfo() []core.ParameterInfo {
	return []core.ParameterInfo{
		windowParam(defaultWindow),
		{
			Name:        "k",
			Kind:        core.Float,
			Min:         0,
			Max:         1,
			Default:     core.FloatValue(0.15),
			Description: "Fraction below the local mean a pixel must fall",
		},
	}
}
