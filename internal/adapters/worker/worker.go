// Package worker runs indexed jobs on a bounded pool of goroutines.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/okian/gradpulse/pkg/logger"
)

// Pool bounds the goroutines a Map call starts.
type Pool struct {
	name    string
	workers int
	logger  logger.Logger
}

// New creates a pool with one worker per CPU unless configured otherwise.
func New(opts ...Option) *Pool {
	p := &Pool{
		name:    "worker",
		workers: runtime.NumCPU(),
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Workers returns the pool size.
func (p *Pool) Workers() int { return p.workers }

// Map calls fn for every index in [0, n) and returns the results by index, so
// the output does not depend on scheduling. The first error cancels the
// remaining jobs and is returned.
func Map[R any](ctx context.Context, p *Pool, n int, fn func(ctx context.Context, i int) (R, error)) ([]R, error) {
	const op = "worker.Map"

	if n <= 0 {
		return nil, nil
	}
	parent := ctx
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	start := time.Now()
	out := make([]R, n)
	jobs := make(chan int)

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	workers := min(p.workers, n)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				r, err := fn(ctx, i)
				if err != nil {
					once.Do(func() {
						firstErr = fmt.Errorf("%s: %s: job %d: %w", op, p.name, i, err)
						cancel()
					})
					continue
				}
				out[i] = r
			}
		}()
	}

feed:
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := parent.Err(); err != nil {
		return nil, fmt.Errorf("%s: %s: %w", op, p.name, err)
	}
	p.logger.Debug(ctx, "jobs finished",
		logger.String("pool", p.name),
		logger.Int("jobs", n),
		logger.Int("workers", workers),
		logger.Duration("elapsed", time.Since(start)))
	return out, nil
}
