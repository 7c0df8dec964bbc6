package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/panjf2000/ants/v2"
)

// DefaultSize is the number of workers when none is configured
const DefaultSize = 64

// Stats describes current pool usage
type Stats struct {
	Capacity int `json:"capacity"`
	Running  int `json:"running"`
	Free     int `json:"free"`
}

// Pool runs request handlers on a bounded set of goroutines
type Pool struct {
	pool   *ants.Pool
	logger *slog.Logger
}

// New creates a pool with size workers
func New(size int, logger *slog.Logger) (*Pool, error) {
	if size <= 0 {
		size = DefaultSize
	}
	logger = logger.With(slog.String("component", "worker-pool"))

	pool, err := ants.NewPool(size,
		ants.WithExpiryDuration(60*time.Second),
		ants.WithPanicHandler(func(p any) {
			logger.Error("task panicked", slog.String("panic", fmt.Sprint(p)))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}

	logger.Info("worker pool started", slog.Int("size", size))
	return &Pool{pool: pool, logger: logger}, nil
}

// Submit queues task without waiting for it. Blocks while every worker is busy.
func (p *Pool) Submit(task func()) error {
	return p.pool.Submit(task)
}

// SubmitAndWait queues task and waits for it to finish or for ctx to end
func (p *Pool) SubmitAndWait(ctx context.Context, task func()) error {
	done := make(chan struct{})
	err := p.pool.Submit(func() {
		defer close(done)
		task()
	})
	if err != nil {
		return err
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Do behaves like SubmitAndWait but runs task on the calling goroutine when
// the pool is closed or overloaded, so the task is never dropped
func (p *Pool) Do(ctx context.Context, task func()) error {
	err := p.SubmitAndWait(ctx, task)
	if errors.Is(err, ants.ErrPoolClosed) || errors.Is(err, ants.ErrPoolOverload) {
		p.logger.Warn("running task inline", slog.String("reason", err.Error()))
		p.runInline(task)
		return nil
	}
	return err
}

func (p *Pool) runInline(task func()) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("inline task panicked", slog.String("panic", fmt.Sprint(r)))
		}
	}()
	task()
}

// Stats returns current pool usage
func (p *Pool) Stats() Stats {
	capacity := p.pool.Cap()
	running := p.pool.Running()
	free := capacity - running
	if free < 0 {
		free = 0
	}
	return Stats{Capacity: capacity, Running: running, Free: free}
}

// Release stops the pool, waiting up to timeout for running tasks
func (p *Pool) Release(timeout time.Duration) error {
	p.logger.Info("worker pool stopping", slog.Int("running", p.pool.Running()))
	return p.pool.ReleaseTimeout(timeout)
}
