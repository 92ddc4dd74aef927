package train

import (
	"context"
	"fmt"
	"math"

	"github.com/born-ml/raccoon/internal/parallel"
)

// Result is the outcome of one training run of a sweep.
type Result struct {
	Seed    int64
	Trainer *Trainer
	Losses  []float64
}

// Final returns the mean loss of the last epoch, +Inf if none completed.
func (r Result) Final() float64 {
	if len(r.Losses) == 0 {
		return math.Inf(1)
	}
	return r.Losses[len(r.Losses)-1]
}

// Sweep trains one model per seed, seeds cfg.Seed .. cfg.Seed+n-1, each on
// its own graph, and returns the results in seed order together with the
// index of the run with the lowest final loss.
//
// Sweep runs do not checkpoint; save the chosen trainer afterwards.
func Sweep(ctx context.Context, cfg Config, n int, data []Sample, pcfg parallel.Config) ([]Result, int, error) {
	if n <= 0 {
		return nil, -1, fmt.Errorf("%w: sweep of %d runs", ErrInvalidConfig, n)
	}

	results := make([]Result, n)
	err := parallel.Map(n, func(i int) error {
		c := cfg
		c.Seed = cfg.Seed + int64(i)
		c.Every = 0
		tr, err := New(c, nil)
		if err != nil {
			return err
		}
		losses, err := tr.Fit(ctx, data, nil)
		results[i] = Result{Seed: c.Seed, Trainer: tr, Losses: losses}
		if err != nil {
			return fmt.Errorf("train: sweep seed %d: %w", c.Seed, err)
		}
		return nil
	}, pcfg)
	if err != nil {
		return results, -1, err
	}

	best := 0
	for i, r := range results {
		if r.Final() < results[best].Final() {
			best = i
		}
	}
	return results, best, nil
}
