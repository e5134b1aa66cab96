// Package worker runs indexed jobs on a fixed set of goroutines.
package worker

import (
	"context"
	"sync"
)

// Job identifies one unit of work by its position in the caller's input.
// Handlers write results into a slot keyed by Index, which keeps output
// order independent of scheduling.
type Job struct {
	Index int
}

// Pool manages background workers for indexed jobs.
type Pool struct {
	handle  func(Job)
	jobs    chan Job
	workers int
	wg      sync.WaitGroup
}

// NewPool creates a worker pool with the given worker count and queue size.
func NewPool(workers int, queueSize int, handle func(Job)) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	return &Pool{handle: handle, jobs: make(chan Job, queueSize), workers: workers}
}

// Start launches the worker goroutines.
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				p.handle(job)
			}
		}()
	}
}

// Stop waits for workers to finish after closing the queue.
func (p *Pool) Stop() {
	close(p.jobs)
	p.wg.Wait()
}

// Submit queues a job, blocking while the queue is full. It gives up when
// ctx is done.
func (p *Pool) Submit(ctx context.Context, job Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case p.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Each runs handle for every index in [0, n) across workers goroutines and
// returns once all jobs finished. Jobs already queued still run when ctx is
// cancelled; the returned error reports the cancellation.
func Each(ctx context.Context, n int, workers int, handle func(Job)) error {
	if n == 0 {
		return nil
	}
	if workers > n {
		workers = n
	}
	pool := NewPool(workers, workers*2, handle)
	pool.Start()

	var err error
	for i := 0; i < n; i++ {
		if err = pool.Submit(ctx, Job{Index: i}); err != nil {
			break
		}
	}
	pool.Stop()
	return err
}
