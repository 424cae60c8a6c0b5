// Package binarization converts grayscale document scans into black and
// white images. Black (0) marks foreground ink and White (255) background.
package binarization

import (
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"document-binarization/internal/algorithms"
	"document-binarization/internal/core"
	"document-binarization/internal/metrics"
	"document-binarization/internal/morphology"
)

// Options control how a Binarizer runs. None of them change which pixels
// an algorithm classifies as foreground, except Morphology.
type Options struct {
	// Workers is the number of row bands processed concurrently.
	Workers int

	// InPlace copies the result into the caller's pixel slice and returns
	// that slice. The caller must not read the slice concurrently.
	InPlace bool

	// Morphology steps run on the binary result in order.
	Morphology []morphology.Step
}

// Binarizer runs algorithms with shared options and logging
type Binarizer struct {
	logger *logrus.Logger
	opts   Options
}

// New creates a Binarizer. A nil logger discards all output.
func New(logger *logrus.Logger, opts Options) *Binarizer {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &Binarizer{logger: logger, opts: opts}
}

// Binarize runs the named algorithm on a row-major width x height buffer.
func (b *Binarizer) Binarize(pixels []byte, width, height int, algorithm string, params core.Parameters) (result []byte, err error) {
	id, err := algorithms.Parse(algorithm)
	if err != nil {
		return nil, err
	}

	img, err := core.FromPixels(pixels, width, height)
	if err != nil {
		return nil, err
	}

	out, err := b.BinarizeImage(img, id, params)
	if err != nil {
		return nil, err
	}

	if b.opts.InPlace {
		copy(pixels, out.Data)
		return pixels, nil
	}
	return out.Data, nil
}

// BinarizeImage runs algorithm id on img and applies the configured
// morphology steps. img is not modified.
func (b *Binarizer) BinarizeImage(img *core.Image, id algorithms.ID, params core.Parameters) (result *core.Image, err error) {
	defer core.RecoverInvariant(&err)

	if err := img.Validate(); err != nil {
		return nil, err
	}
	for _, step := range b.opts.Morphology {
		if err := step.Validate(); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	log := b.logger.WithFields(logrus.Fields{
		"algorithm": id.String(),
		"width":     img.Width,
		"height":    img.Height,
	})
	log.WithField("parameters", params.String()).Debug("Starting binarization")

	out, ignored, err := algorithms.Apply(id, img, params, algorithms.Options{Workers: b.opts.Workers})
	if err != nil {
		log.WithError(err).Debug("Binarization failed")
		return nil, err
	}
	if len(ignored) > 0 {
		log.WithField("ignored", ignored).Debug("Ignoring parameters the algorithm does not use")
	}

	for _, step := range b.opts.Morphology {
		if out, err = step.Apply(out); err != nil {
			return nil, fmt.Errorf("morphology %s: %w", step, err)
		}
	}

	log.WithFields(logrus.Fields{
		"duration":   time.Since(start),
		"morphology": len(b.opts.Morphology),
	}).Info("Binarization completed")
	return out, nil
}

var defaultBinarizer = New(nil, Options{})

// Binarize runs the named algorithm with default options and returns a new
// buffer.
func Binarize(pixels []byte, width, height int, algorithm string, params core.Parameters) ([]byte, error) {
	return defaultBinarizer.Binarize(pixels, width, height, algorithm, params)
}

// Algorithms describes every available algorithm and its parameters.
func Algorithms() []algorithms.Info {
	return algorithms.GetAllAlgorithms()
}

// Evaluate scores a binary result against a ground truth image.
func Evaluate(groundTruth, binary *core.Image) (metrics.Report, error) {
	return metrics.NewEvaluator().Evaluate(groundTruth, binary)
}
