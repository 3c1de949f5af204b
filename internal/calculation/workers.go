package calculation

import (
	"context"
	"runtime"
	"sync"
)

// runIndexed calls fn for every index in [0, n) on at most workers goroutines.
// fn must only write state owned by its index. The context is checked before
// each task; when it is cancelled runIndexed returns ctx.Err(). Otherwise the
// error of the lowest failing index is returned.
func runIndexed(ctx context.Context, n, workers int, fn func(i int) error) error {
	if n <= 0 {
		return ctx.Err()
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > n {
		workers = n
	}

	errs := make([]error, n)
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, workers)

dispatch:
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			break dispatch
		case semaphore <- struct{}{}:
		}
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			defer func() { <-semaphore }()
			if ctx.Err() != nil {
				return
			}
			errs[idx] = fn(idx)
		}(i)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
