package stats

import (
	"image"

	"gocv.io/x/gocv"

	"document-binarization/internal/core"
)

// Extrema holds per-pixel local minimum and maximum.
type Extrema struct {
	Min []byte
	Max []byte
}

// MinMax computes the local minimum and maximum over a square window with a
// clamped footprint. Grayscale erosion and dilation with a rectangle are the
// sliding minimum and maximum, and OpenCV's default morphology border leaves
// out-of-image pixels out of the footprint.
func MinMax(img *core.Image, window int) (*Extrema, error) {
	radius, err := Radius(window)
	if err != nil {
		return nil, err
	}

	src, err := gocv.NewMatFromBytes(img.Height, img.Width, gocv.MatTypeCV8UC1, img.Data)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(2*radius+1, 2*radius+1))
	defer kernel.Close()

	lo, hi := gocv.NewMat(), gocv.NewMat()
	defer lo.Close()
	defer hi.Close()
	gocv.Erode(src, &lo, kernel)
	gocv.Dilate(src, &hi, kernel)

	return &Extrema{Min: lo.ToBytes(), Max: hi.ToBytes()}, nil
}
