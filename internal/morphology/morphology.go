// Binary morphology on foreground (Black) pixels
package morphology

import (
	"fmt"
	"image"
	"strings"

	"gocv.io/x/gocv"

	"document-binarization/internal/core"
	imageio "document-binarization/internal/io"
)

// Op is a morphological operation.
type Op int

const (
	Dilation Op = iota
	Erosion
	Opening // erode then dilate, removes specks
	Closing // dilate then erode, fills gaps
)

var opNames = map[string]Op{
	"dilate":   Dilation,
	"erode":    Erosion,
	"open":     Opening,
	"close":    Closing,
	"dilation": Dilation,
	"erosion":  Erosion,
	"opening":  Opening,
	"closing":  Closing,
}

func (o Op) String() string {
	switch o {
	case Dilation:
		return "dilate"
	case Erosion:
		return "erode"
	case Opening:
		return "open"
	case Closing:
		return "close"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// ParseOp accepts "dilate", "erode", "open", "close" and their -ion forms.
func ParseOp(name string) (Op, error) {
	op, ok := opNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, core.NewConfigurationError("morphology", fmt.Sprintf("unknown operation %q", name))
	}
	return op, nil
}

// Shape selects a structuring element family.
type Shape int

const (
	ShapeSquare Shape = iota
	ShapeCross
)

func (s Shape) String() string {
	if s == ShapeCross {
		return "cross"
	}
	return "square"
}

func ParseShape(name string) (Shape, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "square", "rect":
		return ShapeSquare, nil
	case "cross":
		return ShapeCross, nil
	default:
		return 0, core.NewConfigurationError("morphology", fmt.Sprintf("unknown shape %q", name))
	}
}

// Element is a square or cross structuring element of odd size.
type Element struct {
	shape Shape
	size  int
}

// Square returns an n x n square element.
func Square(n int) Element {
	return Element{shape: ShapeSquare, size: n}
}

// Cross returns a plus-shaped element with arms of length n/2.
func Cross(n int) Element {
	return Element{shape: ShapeCross, size: n}
}

func (e Element) kernel() gocv.Mat {
	shape := gocv.MorphRect
	if e.shape == ShapeCross {
		shape = gocv.MorphCross
	}
	return gocv.GetStructuringElement(shape, image.Pt(e.size, e.size))
}

// OpenCV works on intensities while foreground here is Black, so growing the
// foreground is an OpenCV erosion and shrinking it a dilation. The default
// OpenCV border ignores pixels outside the image.

// Dilate marks a pixel foreground when any in-bounds pixel under the element
// is foreground.
func Dilate(img *core.Image, e Element) *core.Image {
	return morph(img, e, func(src gocv.Mat, dst *gocv.Mat, kernel gocv.Mat) {
		gocv.Erode(src, dst, kernel)
	})
}

// Erode keeps a pixel foreground only when every in-bounds pixel under the
// element is foreground. Pixels outside the image are not consulted.
func Erode(img *core.Image, e Element) *core.Image {
	return morph(img, e, func(src gocv.Mat, dst *gocv.Mat, kernel gocv.Mat) {
		gocv.Dilate(src, dst, kernel)
	})
}

func Open(img *core.Image, e Element) *core.Image {
	return morph(img, e, func(src gocv.Mat, dst *gocv.Mat, kernel gocv.Mat) {
		gocv.MorphologyEx(src, dst, gocv.MorphClose, kernel)
	})
}

func Close(img *core.Image, e Element) *core.Image {
	return morph(img, e, func(src gocv.Mat, dst *gocv.Mat, kernel gocv.Mat) {
		gocv.MorphologyEx(src, dst, gocv.MorphOpen, kernel)
	})
}

func morph(img *core.Image, e Element, op func(src gocv.Mat, dst *gocv.Mat, kernel gocv.Mat)) *core.Image {
	src, err := imageio.ToMat(img)
	if err != nil {
		core.Invariant("morphology input: %v", err)
	}
	defer src.Close()

	kernel := e.kernel()
	defer kernel.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	op(src, &dst, kernel)

	out, err := imageio.FromMat(dst)
	if err != nil {
		core.Invariant("morphology output: %v", err)
	}
	return out
}

// Step is one configured post-processing operation.
type Step struct {
	Op         Op
	Shape      Shape
	Size       int
	Iterations int
}

// Validate checks size and iteration limits.
func (s Step) Validate() error {
	if s.Size < 1 || s.Size > 15 || s.Size%2 == 0 {
		return core.NewConfigurationError("morphology", "kernel_size must be an odd value between 1 and 15")
	}
	if s.Iterations < 1 || s.Iterations > 10 {
		return core.NewConfigurationError("morphology", "iterations must be between 1 and 10")
	}
	if s.Op < Dilation || s.Op > Closing {
		return core.NewConfigurationError("morphology", fmt.Sprintf("unknown operation %d", int(s.Op)))
	}
	return nil
}

func (s Step) element() Element {
	if s.Shape == ShapeCross {
		return Cross(s.Size)
	}
	return Square(s.Size)
}

// Apply runs the step on a binary image.
func (s Step) Apply(img *core.Image) (*core.Image, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	e := s.element()
	result := img
	for range s.Iterations {
		switch s.Op {
		case Dilation:
			result = Dilate(result, e)
		case Erosion:
			result = Erode(result, e)
		case Opening:
			result = Open(result, e)
		case Closing:
			result = Close(result, e)
		}
	}
	return result, nil
}

func (s Step) String() string {
	return fmt.Sprintf("%s/%s/%d x%d", s.Op, s.Shape, s.Size, s.Iterations)
}
