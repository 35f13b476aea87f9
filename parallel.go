package blockcrypt

import (
	"errors"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ParallelConfig controls parallel block processing
type ParallelConfig struct {
	// Enabled enables parallel block processing
	Enabled bool

	// MaxWorkers is the maximum number of worker goroutines
	// If 0, defaults to runtime.NumCPU()
	MaxWorkers int

	// MinBlocksForParallel is the minimum number of blocks to use parallel
	// processing. Below this threshold, sequential processing is used.
	// Defaults to 16.
	MinBlocksForParallel int
}

// Validate checks if the parallel configuration is valid
func (p *ParallelConfig) Validate() error {
	if !p.Enabled {
		return nil // Nothing to validate if disabled
	}

	if p.MaxWorkers < 0 {
		return errors.New("parallel max workers cannot be negative")
	}
	if p.MaxWorkers > 1024 {
		return errors.New("parallel max workers must not exceed 1024")
	}
	if p.MinBlocksForParallel < 1 {
		return errors.New("parallel min blocks threshold must be at least 1")
	}

	return nil
}

// DefaultParallelConfig returns the default parallel processing configuration
func DefaultParallelConfig() ParallelConfig {
	return ParallelConfig{
		Enabled:              true,
		MaxWorkers:           runtime.NumCPU(),
		MinBlocksForParallel: 16,
	}
}

// forEachBlock runs fn for every block index in [0, numBlocks). Block
// indices are partitioned into contiguous ranges across workers; each fn
// call writes to a disjoint range of the shared output, so no locking is
// needed. Output ordering is by index regardless of which worker ran the
// block.
func forEachBlock(cfg ParallelConfig, numBlocks int, fn func(i int) error) error {
	if numBlocks == 0 {
		return nil
	}

	numWorkers := cfg.MaxWorkers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if numWorkers > numBlocks {
		numWorkers = numBlocks
	}

	if !cfg.Enabled || numBlocks < cfg.MinBlocksForParallel || numWorkers == 1 {
		for i := 0; i < numBlocks; i++ {
			if err := fn(i); err != nil {
				return err
			}
		}
		return nil
	}

	var g errgroup.Group
	blocksPerWorker := (numBlocks + numWorkers - 1) / numWorkers
	for w := 0; w < numWorkers; w++ {
		start := w * blocksPerWorker
		end := start + blocksPerWorker
		if end > numBlocks {
			end = numBlocks
		}
		if start >= numBlocks {
			break
		}
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := fn(i); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}
