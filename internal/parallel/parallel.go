// Package parallel runs independent jobs on a bounded number of goroutines.
//
// Graphs are single-owner, so jobs must not share one; each job builds and
// uses its own.
package parallel

import (
	"errors"
	"runtime"
	"sync"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled    bool // Whether parallel execution is enabled.
	NumWorkers int  // Number of worker goroutines to use.
}

// DefaultConfig returns sensible defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:    n > 1,
		NumWorkers: n,
	}
}

// For executes f(i) for i in [0, n) with optional parallelism.
// Falls back to sequential execution if parallelism is disabled or there is
// at most one job or worker.
func For(n int, f func(i int), cfg Config) {
	_ = Map(n, func(i int) error {
		f(i)
		return nil
	}, cfg)
}

// Map executes f(i) for i in [0, n) and joins the errors of all failed jobs
// in index order. Every job runs even when an earlier one fails.
func Map(n int, f func(i int) error, cfg Config) error {
	errs := make([]error, n)
	workers := min(cfg.NumWorkers, n)

	if !cfg.Enabled || workers <= 1 {
		// Sequential fallback.
		for i := 0; i < n; i++ {
			errs[i] = f(i)
		}
		return errors.Join(errs...)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				errs[i] = f(i)
			}
		}()
	}
	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return errors.Join(errs...)
}
