package metrics

import (
	"document-binarization/internal/core"
)

// Skeletonize thins the foreground (samples below 128) of img to a one pixel
// wide skeleton using Zhang-Suen thinning. Pixels outside the image count as
// background.
func Skeletonize(img *core.Image) []bool {
	w, h := img.Width, img.Height
	on := make([]bool, img.Size())
	for i, v := range img.Data {
		on[i] = v < 128
	}

	at := func(x, y int) bool {
		if x < 0 || y < 0 || x >= w || y >= h {
			return false
		}
		return on[y*w+x]
	}

	var remove []int
	for changed := true; changed; {
		changed = false
		for pass := range 2 {
			remove = remove[:0]
			for y := range h {
				for x := range w {
					if !on[y*w+x] {
						continue
					}
					// Neighbours clockwise from north: P2..P9.
					p := [8]bool{
						at(x, y-1), at(x+1, y-1), at(x+1, y), at(x+1, y+1),
						at(x, y+1), at(x-1, y+1), at(x-1, y), at(x-1, y-1),
					}
					count, transitions := 0, 0
					for k := range 8 {
						if p[k] {
							count++
						}
						if !p[k] && p[(k+1)%8] {
							transitions++
						}
					}
					if count < 2 || count > 6 || transitions != 1 {
						continue
					}
					if pass == 0 && (p[0] && p[2] && p[4] || p[2] && p[4] && p[6]) {
						continue
					}
					if pass == 1 && (p[0] && p[2] && p[6] || p[0] && p[4] && p[6]) {
						continue
					}
					remove = append(remove, y*w+x)
				}
			}
			for _, i := range remove {
				on[i] = false
			}
			if len(remove) > 0 {
				changed = true
			}
		}
	}
	return on
}
