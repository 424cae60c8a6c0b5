// Kernel convolution, Gaussian smoothing and Sobel gradients over OpenCV
package filters

import (
	"fmt"
	"image"
	"math"
	"slices"

	"gocv.io/x/gocv"

	"document-binarization/internal/core"
)

// Kernel is a square, odd-sized convolution kernel in row-major order.
type Kernel struct {
	Size    int
	Weights []float64
}

// NewKernel validates and builds a kernel.
func NewKernel(size int, weights []float64) (Kernel, error) {
	if size <= 0 || size%2 == 0 {
		return Kernel{}, core.NewConfigurationError("kernel",
			fmt.Sprintf("kernel size must be odd and positive, got %d", size))
	}
	if len(weights) != size*size {
		return Kernel{}, core.NewConfigurationError("kernel",
			fmt.Sprintf("kernel of size %d needs %d weights, got %d", size, size*size, len(weights)))
	}
	return Kernel{Size: size, Weights: weights}, nil
}

// Plane is a float image used for intermediate filter responses.
type Plane struct {
	Width  int
	Height int
	Data   []float64
}

// PlaneOf converts an image to a float plane.
func PlaneOf(img *core.Image) *Plane {
	p := &Plane{Width: img.Width, Height: img.Height, Data: make([]float64, img.Size())}
	for i, v := range img.Data {
		p.Data[i] = float64(v)
	}
	return p
}

// Image rounds and clamps the plane into an 8-bit image.
func (p *Plane) Image() *core.Image {
	out := &core.Image{Width: p.Width, Height: p.Height, Data: make([]byte, len(p.Data))}
	for i, v := range p.Data {
		out.Data[i] = clampByte(v)
	}
	return out
}

func (p *Plane) mat() gocv.Mat {
	m := gocv.NewMatWithSize(p.Height, p.Width, gocv.MatTypeCV64F)
	data, err := m.DataPtrFloat64()
	if err != nil {
		core.Invariant("plane to mat: %v", err)
	}
	copy(data, p.Data)
	return m
}

func planeOfMat(m gocv.Mat) *Plane {
	data, err := m.DataPtrFloat64()
	if err != nil {
		core.Invariant("mat to plane: %v", err)
	}
	return &Plane{Width: m.Cols(), Height: m.Rows(), Data: slices.Clone(data)}
}

// Convolve applies k to img. Samples outside the image are replaced by the
// nearest border sample (OpenCV BorderReplicate) rather than dropped from the
// footprint, so zero-sum kernels stay zero on flat borders.
func Convolve(img *core.Image, k Kernel) *Plane {
	return ConvolvePlane(PlaneOf(img), k)
}

// ConvolvePlane applies k to a float plane with the same border policy as
// Convolve. Like OpenCV filter2D it correlates, the kernel is not flipped.
func ConvolvePlane(src *Plane, k Kernel) *Plane {
	if len(k.Weights) != k.Size*k.Size || k.Size%2 == 0 {
		core.Invariant("malformed kernel: size %d with %d weights", k.Size, len(k.Weights))
	}

	in := src.mat()
	defer in.Close()
	kernel := (&Plane{Width: k.Size, Height: k.Size, Data: k.Weights}).mat()
	defer kernel.Close()

	out := gocv.NewMat()
	defer out.Close()
	gocv.Filter2D(in, &out, gocv.MatTypeCV64F, kernel, image.Pt(-1, -1), 0, gocv.BorderReplicate)
	return planeOfMat(out)
}

// GaussianSize is the odd kernel width covering three standard deviations.
func GaussianSize(sigma float64) int {
	return 2*max(1, int(math.Ceil(3*sigma))) + 1
}

// Gaussian smooths src with a Gaussian of the given sigma, replicating
// border samples.
func Gaussian(src *Plane, sigma float64) *Plane {
	in := src.mat()
	defer in.Close()

	size := GaussianSize(sigma)
	out := gocv.NewMat()
	defer out.Close()
	gocv.GaussianBlur(in, &out, image.Pt(size, size), sigma, sigma, gocv.BorderReplicate)
	return planeOfMat(out)
}

// Sobel returns the gradient magnitude sqrt(gx² + gy²) of the 3x3 Sobel
// derivatives. When sigma > 0 the image is smoothed with a Gaussian first.
func Sobel(img *core.Image, sigma float64) *Plane {
	src := PlaneOf(img)
	if sigma > 0 {
		src = Gaussian(src, sigma)
	}

	in := src.mat()
	defer in.Close()
	gx, gy, mag := gocv.NewMat(), gocv.NewMat(), gocv.NewMat()
	defer gx.Close()
	defer gy.Close()
	defer mag.Close()

	gocv.Sobel(in, &gx, gocv.MatTypeCV64F, 1, 0, 3, 1, 0, gocv.BorderReplicate)
	gocv.Sobel(in, &gy, gocv.MatTypeCV64F, 0, 1, 3, 1, 0, gocv.BorderReplicate)
	gocv.Magnitude(gx, gy, &mag)
	return planeOfMat(mag)
}

// Normalize rescales the plane linearly onto 0..255. A constant plane maps
// to all zeros.
func (p *Plane) Normalize() *core.Image {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range p.Data {
		lo = min(lo, v)
		hi = max(hi, v)
	}

	out := &core.Image{Width: p.Width, Height: p.Height, Data: make([]byte, len(p.Data))}
	if hi <= lo {
		return out
	}
	scale := 255 / (hi - lo)
	for i, v := range p.Data {
		out.Data[i] = clampByte((v - lo) * scale)
	}
	return out
}

func clampByte(v float64) byte {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return byte(math.Round(v))
}
