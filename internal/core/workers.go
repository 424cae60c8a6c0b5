package core

import (
	"sync"
)

// ParallelRows calls fn over contiguous row bands [y0, y1) covering
// [0, height). With workers <= 1 fn runs once on the calling goroutine.
// Bands never overlap, so fn may write the rows it owns without locking.
// A panic in any band is re-raised on the calling goroutine after all bands
// finish.
func ParallelRows(height, workers int, fn func(y0, y1 int)) {
	if workers <= 1 || height < 2 {
		fn(0, height)
		return
	}
	workers = min(workers, height)

	var (
		wg       sync.WaitGroup
		once     sync.Once
		panicked any
	)

	band := (height + workers - 1) / workers
	for y0 := 0; y0 < height; y0 += band {
		y1 := min(y0+band, height)
		wg.Add(1)
		go func(y0, y1 int) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					once.Do(func() { panicked = r })
				}
			}()
			fn(y0, y1)
		}(y0, y1)
	}
	wg.Wait()

	if panicked != nil {
		panic(panicked)
	}
}
