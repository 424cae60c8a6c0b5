// Core grayscale image representation shared by every algorithm
package core

import (
	"fmt"
)

// Binary image palette. Black marks foreground (ink), White marks background.
const (
	Black byte = 0
	White byte = 255
)

const maxDimension = 65536

// Image is a row-major 8-bit grayscale buffer. len(Data) == Width*Height for
// the lifetime of the value.
type Image struct {
	Width  int
	Height int
	Data   []byte
}

// NewImage creates a zero-filled image with the given dimensions.
func NewImage(width, height int) (*Image, error) {
	if err := validateDimensions(width, height); err != nil {
		return nil, err
	}

	return &Image{
		Width:  width,
		Height: height,
		Data:   make([]byte, width*height),
	}, nil
}

// FromPixels copies a caller supplied buffer into a new Image.
func FromPixels(pixels []byte, width, height int) (*Image, error) {
	if err := validateDimensions(width, height); err != nil {
		return nil, err
	}
	if len(pixels) != width*height {
		return nil, NewConfigurationError("pixels",
			fmt.Sprintf("buffer length %d does not match %dx%d", len(pixels), width, height))
	}

	data := make([]byte, len(pixels))
	copy(data, pixels)

	return &Image{Width: width, Height: height, Data: data}, nil
}

// Size returns the number of pixels.
func (img *Image) Size() int {
	return img.Width * img.Height
}

// Validate reports a configuration error for zero-area, oversized or
// malformed images.
func (img *Image) Validate() error {
	if img == nil {
		return NewConfigurationError("image", "image is nil")
	}
	if err := validateDimensions(img.Width, img.Height); err != nil {
		return err
	}
	if len(img.Data) != img.Width*img.Height {
		return NewConfigurationError("pixels",
			fmt.Sprintf("buffer length %d does not match %dx%d", len(img.Data), img.Width, img.Height))
	}
	return nil
}

// Clone returns a deep copy.
func (img *Image) Clone() *Image {
	data := make([]byte, len(img.Data))
	copy(data, img.Data)
	return &Image{Width: img.Width, Height: img.Height, Data: data}
}

// At returns the sample at (x, y) without bounds clamping.
func (img *Image) At(x, y int) byte {
	return img.Data[y*img.Width+x]
}

// AtClamped returns the sample at (x, y) with coordinates clamped into the
// image, replicating the nearest border pixel.
func (img *Image) AtClamped(x, y int) byte {
	x = min(max(x, 0), img.Width-1)
	y = min(max(y, 0), img.Height-1)
	return img.Data[y*img.Width+x]
}

// SameShape reports whether two images have identical dimensions.
func (img *Image) SameShape(other *Image) bool {
	return img.Width == other.Width && img.Height == other.Height
}

// IsBinary reports whether every sample is Black or White.
func (img *Image) IsBinary() bool {
	for _, v := range img.Data {
		if v != Black && v != White {
			return false
		}
	}
	return true
}

// Classify maps a pixel against a threshold: values at or below the
// threshold are foreground. A NaN threshold never matches.
func Classify(pixel byte, threshold float64) byte {
	if float64(pixel) <= threshold {
		return Black
	}
	return White
}

func validateDimensions(width, height int) error {
	if width <= 0 || height <= 0 {
		return NewConfigurationError("dimensions",
			fmt.Sprintf("invalid dimensions: %dx%d", width, height))
	}
	if width > maxDimension || height > maxDimension {
		return NewConfigurationError("dimensions",
			fmt.Sprintf("dimensions %dx%d exceed maximum %d", width, height, maxDimension))
	}
	return nil
}
