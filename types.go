package binarization

import (
	"document-binarization/internal/algorithms"
	"document-binarization/internal/core"
	"document-binarization/internal/metrics"
	"document-binarization/internal/morphology"
)

type (
	// Image is an 8-bit grayscale raster in row-major order.
	Image = core.Image
	// Parameters is an ordered set of named algorithm parameters.
	Parameters = core.Parameters
	// Value is an integer or float parameter value.
	Value = core.Value
	// ParameterInfo describes one parameter of an algorithm: kind, range and default.
	ParameterInfo = core.ParameterInfo
	// Algorithm identifies one of the binarization methods.
	Algorithm = algorithms.ID
	// AlgorithmInfo is the name, description and parameter schema of an Algorithm.
	AlgorithmInfo = algorithms.Info
	// MorphologyStep is one post-processing operation applied to a binary image.
	MorphologyStep = morphology.Step
	// Report holds the confusion counts and metric values of an evaluation.
	Report = metrics.Report
)

// Pixel values of a binary image: Black is foreground.
const (
	Black = core.Black
	White = core.White
)

// ErrUnknownAlgorithm is wrapped by the error returned for unrecognized names.
var ErrUnknownAlgorithm = core.ErrUnknownAlgorithm

// NewImage allocates a width x height image filled with Black.
func NewImage(width, height int) (*Image, error) { return core.NewImage(width, height) }

// FromPixels copies pixels into a new Image.
func FromPixels(pixels []byte, width, height int) (*Image, error) {
	return core.FromPixels(pixels, width, height)
}

// IntValue wraps v as an integer parameter value.
func IntValue(v int64) Value { return core.IntValue(v) }

// FloatValue wraps v as a float parameter value.
func FloatValue(v float64) Value { return core.FloatValue(v) }

// ParseAlgorithm maps a name such as "sauvola" to its Algorithm.
func ParseAlgorithm(name string) (Algorithm, error) { return algorithms.Parse(name) }

// DefaultParameters returns the documented defaults of an algorithm.
func DefaultParameters(a Algorithm) Parameters { return algorithms.GetDefaultParams(a) }

// IsConfigurationError reports whether err stems from invalid input rather
// than an internal failure.
func IsConfigurationError(err error) bool { return core.IsConfigurationError(err) }
