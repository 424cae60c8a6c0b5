package morphology

import (
	"gocv.io/x/gocv"

	"document-binarization/internal/core"
	"document-binarization/internal/stats"
)

// Connectivity selects the neighbourhood used for labeling.
type Connectivity int

const (
	Four  Connectivity = 4
	Eight Connectivity = 8
)

// Label assigns each foreground pixel the 1-based id of its connected
// component. Background pixels get 0. Returns the labels and the number of
// components.
func Label(img *core.Image, conn Connectivity) ([]int32, int) {
	mask := gocv.NewMatWithSize(img.Height, img.Width, gocv.MatTypeCV8UC1)
	defer mask.Close()
	pix, err := mask.DataPtrUint8()
	if err != nil {
		core.Invariant("label mask: %v", err)
	}
	for i, v := range img.Data {
		if v == core.Black {
			pix[i] = 255
		} else {
			pix[i] = 0
		}
	}

	labels := gocv.NewMat()
	defer labels.Close()
	n := gocv.ConnectedComponentsWithParams(mask, &labels, int(conn), gocv.MatTypeCV32S, gocv.CCL_DEFAULT)

	out := make([]int32, img.Size())
	for y := range img.Height {
		for x := range img.Width {
			out[y*img.Width+x] = labels.GetIntAt(y, x)
		}
	}
	// OpenCV counts the background as label 0.
	return out, max(0, n-1)
}

// Grow keeps the 8-connected foreground components of mask that contain at
// least one foreground pixel of seeds. Everything else becomes background.
func Grow(mask, seeds *core.Image) *core.Image {
	if !mask.SameShape(seeds) {
		core.Invariant("grow: mask %dx%d and seeds %dx%d differ",
			mask.Width, mask.Height, seeds.Width, seeds.Height)
	}

	labels, count := Label(mask, Eight)
	keep := make([]bool, count+1)
	for i, v := range seeds.Data {
		if v == core.Black && labels[i] != 0 {
			keep[labels[i]] = true
		}
	}

	out := &core.Image{Width: mask.Width, Height: mask.Height, Data: make([]byte, mask.Size())}
	for i, l := range labels {
		if l != 0 && keep[l] {
			out.Data[i] = core.Black
		} else {
			out.Data[i] = core.White
		}
	}
	return out
}

// CountNeighbours returns, for every pixel, how many pixels with value v lie
// in the clamped square window of the given radius (the pixel included).
func CountNeighbours(img *core.Image, v byte, radius int) []int {
	w, h := img.Width, img.Height
	table := stats.Build(w, h, func(i int) uint64 {
		if img.Data[i] == v {
			return 1
		}
		return 0
	})

	counts := make([]int, img.Size())
	for y := range h {
		for x := range w {
			counts[y*w+x] = int(table.Sum(stats.Window(x, y, radius, w, h)))
		}
	}
	return counts
}
