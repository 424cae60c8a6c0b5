// Image loading and saving for the binarization tools
package io

import (
	"fmt"
	"image"
	_ "image/jpeg" // registers the JPEG decoder for Decode
	_ "image/png"  // registers the PNG decoder for Decode
	stdio "io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
	"golang.org/x/image/draw"

	// Decoders used by Decode for formats outside the standard library.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"document-binarization/internal/core"
)

var supportedExtensions = []string{".png", ".jpg", ".jpeg", ".tif", ".tiff", ".bmp"}

// Loader reads and writes 8-bit grayscale images
type Loader struct {
	logger *logrus.Logger
}

func NewLoader(logger *logrus.Logger) *Loader {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(stdio.Discard)
	}
	return &Loader{logger: logger}
}

// SupportedExtensions returns the file extensions accepted by LoadGrayscale and Save.
func SupportedExtensions() []string {
	return slices.Clone(supportedExtensions)
}

func IsSupported(path string) bool {
	return slices.Contains(supportedExtensions, strings.ToLower(filepath.Ext(path)))
}

// LoadGrayscale reads path with OpenCV, converting color input to gray.
func (l *Loader) LoadGrayscale(path string) (*core.Image, error) {
	l.logger.WithField("filepath", path).Debug("Loading image as grayscale")

	if !IsSupported(path) {
		return nil, fmt.Errorf("unsupported image format: %s", path)
	}

	mat := gocv.IMRead(path, gocv.IMReadGrayScale)
	defer mat.Close()
	if mat.Empty() {
		return nil, fmt.Errorf("failed to load image: %s", path)
	}

	img, err := FromMat(mat)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	l.logger.WithFields(logrus.Fields{
		"filepath": path,
		"width":    img.Width,
		"height":   img.Height,
	}).Info("Grayscale image loaded successfully")
	return img, nil
}

// Save writes img to path; the encoder is chosen from the extension.
func (l *Loader) Save(path string, img *core.Image) error {
	l.logger.WithField("filepath", path).Debug("Saving image")

	if err := img.Validate(); err != nil {
		return fmt.Errorf("cannot save image: %w", err)
	}
	if !IsSupported(path) {
		return fmt.Errorf("unsupported image format: %s", path)
	}

	mat, err := ToMat(img)
	if err != nil {
		return err
	}
	defer mat.Close()

	if !gocv.IMWrite(path, mat) {
		return fmt.Errorf("failed to save image: %s", path)
	}

	l.logger.WithFields(logrus.Fields{
		"filepath": path,
		"width":    img.Width,
		"height":   img.Height,
	}).Info("Image saved successfully")
	return nil
}

// ValidateImageFile checks that path has a supported extension and decodes
// to a non-empty image.
func (l *Loader) ValidateImageFile(path string) error {
	if !IsSupported(path) {
		return fmt.Errorf("unsupported image format")
	}

	mat := gocv.IMRead(path, gocv.IMReadGrayScale)
	defer mat.Close()

	if mat.Empty() {
		return fmt.Errorf("invalid or corrupted image file")
	}
	if mat.Cols() <= 0 || mat.Rows() <= 0 {
		return fmt.Errorf("invalid image dimensions")
	}
	return nil
}

// FromMat copies a single channel 8-bit Mat.
func FromMat(mat gocv.Mat) (*core.Image, error) {
	if mat.Type() != gocv.MatTypeCV8UC1 {
		return nil, fmt.Errorf("expected 8-bit single channel image, got %v", mat.Type())
	}
	return core.FromPixels(mat.ToBytes(), mat.Cols(), mat.Rows())
}

// ToMat copies img into a new Mat the caller must Close.
func ToMat(img *core.Image) (gocv.Mat, error) {
	mat, err := gocv.NewMatFromBytes(img.Height, img.Width, gocv.MatTypeCV8UC1, img.Data)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("creating mat: %w", err)
	}
	return mat, nil
}

// Decode reads any registered image format from r.
func Decode(r stdio.Reader) (*core.Image, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return FromImage(src), nil
}

// ToGray converts src to 8-bit gray anchored at the origin.
func ToGray(src image.Image) *image.Gray {
	b := src.Bounds()
	if g, ok := src.(*image.Gray); ok && b.Min == (image.Point{}) && g.Stride == b.Dx() {
		return g
	}
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// FromImage converts src to a core.Image. The pixel data is always copied.
func FromImage(src image.Image) *core.Image {
	g := ToGray(src)
	b := g.Bounds()
	return &core.Image{
		Width:  b.Dx(),
		Height: b.Dy(),
		Data:   slices.Clone(g.Pix[:b.Dx()*b.Dy()]),
	}
}

// ToImage wraps a copy of img as an *image.Gray.
func ToImage(img *core.Image) *image.Gray {
	return &image.Gray{
		Pix:    slices.Clone(img.Data),
		Stride: img.Width,
		Rect:   image.Rect(0, 0, img.Width, img.Height),
	}
}
