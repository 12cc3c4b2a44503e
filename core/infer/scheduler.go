// core/infer/scheduler.go
package infer

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"dmsprefs-core/sampler"
)

// ResolveWorkers maps the configured worker count to an effective pool
// size: -1 means all available processing units; anything below 1 after
// resolution is a configuration error.
func ResolveWorkers(n int) (int, error) {
	if n == -1 {
		return runtime.NumCPU(), nil
	}
	if n < 1 {
		return 0, fmt.Errorf("infer: worker count must be >= 1 or -1 for all CPUs, got %d", n)
	}
	return n, nil
}

// Handle is a non-blocking future for one submitted inference attempt.
type Handle struct {
	done uint32
	res  sampler.Result
	err  error
}

// Ready reports whether the attempt has finished, without blocking.
func (h *Handle) Ready() bool { return atomic.LoadUint32(&h.done) == 1 }

// Result returns the attempt's outcome; only valid once Ready.
func (h *Handle) Result() (sampler.Result, error) { return h.res, h.err }

// Pool runs inference attempts with bounded parallelism. Submission never
// blocks the caller; admission is gated by a weighted semaphore.
type Pool struct {
	sem *semaphore.Weighted
	wg  sync.WaitGroup
}

// NewPool builds a pool admitting at most workers concurrent attempts.
func NewPool(workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{sem: semaphore.NewWeighted(int64(workers))}
}

// Submit schedules one attempt and returns its handle immediately.
// A canceled context surfaces as the handle's error.
func (p *Pool) Submit(ctx context.Context, s sampler.Sampler, mh sampler.ModelHandle, req sampler.Request) *Handle {
	h := &Handle{}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer atomic.StoreUint32(&h.done, 1)
		if err := p.sem.Acquire(ctx, 1); err != nil {
			h.err = err
			return
		}
		defer p.sem.Release(1)
		h.res, h.err = s.Infer(ctx, mh, req)
	}()
	return h
}

// Wait blocks until every submitted attempt has finished or been canceled.
func (p *Pool) Wait() { p.wg.Wait() }
