package worker

import (
	"context"
	"fmt"
	"sync"
)

// Job is one unit of batch work
type Job interface {
	Execute(ctx context.Context) Result
}

// Result is what a Job produces
type Result interface {
	GetError() error
}

// PanicError carries a panic raised inside a job
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("job panicked: %v", e.Value)
}

// ProgressFunc observes each result as it arrives. done counts results so
// far. Calls are serialized.
type ProgressFunc func(done int, r Result)

// RecoverFunc turns a job's panic into a result for that job
type RecoverFunc func(job Job, err *PanicError) Result

// Pool runs jobs on a fixed number of goroutines
type Pool struct {
	workers  int
	progress ProgressFunc
	recover  RecoverFunc
}

// PoolOption customizes a Pool
type PoolOption func(*Pool)

// WithProgress registers a progress callback
func WithProgress(fn ProgressFunc) PoolOption {
	return func(p *Pool) {
		p.progress = fn
	}
}

// WithRecover sets how a panicking job is reported
func WithRecover(fn RecoverFunc) PoolOption {
	return func(p *Pool) {
		if fn != nil {
			p.recover = fn
		}
	}
}

// NewPool creates a pool with the given number of workers (minimum 1)
func NewPool(workers int, opts ...PoolOption) *Pool {
	if workers <= 0 {
		workers = 1
	}
	p := &Pool{
		workers: workers,
		recover: func(_ Job, err *PanicError) Result { return failed{err} },
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes jobs and returns their results in completion order. Once ctx
// ends no further jobs are handed out; jobs already running see the canceled
// ctx, and jobs never started produce no result. Run returns only after every
// worker has exited.
func (p *Pool) Run(ctx context.Context, jobs []Job) []Result {
	if len(jobs) == 0 {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	queue := make(chan Job)
	results := make(chan Result, p.workers)

	var wg sync.WaitGroup
	for range min(p.workers, len(jobs)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range queue {
				results <- p.execute(ctx, job)
			}
		}()
	}

	go func() {
		defer close(queue)
		for _, job := range jobs {
			select {
			case <-ctx.Done():
				return
			case queue <- job:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	collected := make([]Result, 0, len(jobs))
	for r := range results {
		collected = append(collected, r)
		if p.progress != nil {
			p.progress(len(collected), r)
		}
	}
	return collected
}

func (p *Pool) execute(ctx context.Context, job Job) (r Result) {
	defer func() {
		if v := recover(); v != nil {
			r = p.recover(job, &PanicError{Value: v})
		}
	}()
	return job.Execute(ctx)
}

type failed struct{ err error }

func (f failed) GetError() error { return f.err }
