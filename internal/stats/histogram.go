package stats

import (
	"document-binarization/internal/core"
)

// Histogram counts the occurrences of each gray level.
func Histogram(img *core.Image) [256]int {
	var hist [256]int
	for _, v := range img.Data {
		hist[v]++
	}
	return hist
}

// OtsuThreshold picks the gray level maximizing between-class variance.
// Pixels at or below the returned level form one class. When several levels
// share the maximum (a gap between modes) the middle of that plateau is
// returned. ok is false when fewer than two levels are occupied, so no split
// exists.
func OtsuThreshold(hist [256]int) (threshold uint8, ok bool) {
	var total, weighted int64
	for i, c := range hist {
		total += int64(c)
		weighted += int64(i) * int64(c)
	}
	if total == 0 {
		return 0, false
	}

	var (
		wB, sumB    int64
		best        = -1.0
		first, last int
	)

	for t := range 255 {
		wB += int64(hist[t])
		sumB += int64(t) * int64(hist[t])
		if wB == 0 {
			continue
		}
		wF := total - wB
		if wF == 0 {
			break
		}

		mB := float64(sumB) / float64(wB)
		mF := float64(weighted-sumB) / float64(wF)
		between := float64(wB) * float64(wF) * (mB - mF) * (mB - mF)

		switch {
		case between > best:
			best = between
			first, last = t, t
		case between == best && last == t-1:
			last = t
		}
	}

	if best < 0 {
		return 0, false
	}
	return uint8((first + last) / 2), true
}
