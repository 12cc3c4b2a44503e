// core/infer/aggregate.go
package infer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"dmsprefs-core/prefs"
	"dmsprefs-core/sampler"
)

// ErrNotConverged marks a site whose retry attempt also failed to converge.
var ErrNotConverged = errors.New("sampler did not converge after retry")

// ErrBadSimplex marks a sampler contract violation: a posterior mean that
// is not a probability simplex.
var ErrBadSimplex = errors.New("posterior mean is not a probability simplex")

// siteState is the per-site retry state machine.
type siteState int

const (
	statePending siteState = iota
	stateRetrying
	stateConverged
)

// Aggregator polls outstanding inference tasks, applies the retry-once
// policy, and collects simplex-validated posterior means.
type Aggregator struct {
	Poll time.Duration // sweep interval; defaults to one second
	Log  *slog.Logger
}

// Collect drives all tasks to completion. Each site gets at most one
// retry (with its pre-built descriptor); a second non-convergence, or any
// sampler error, aborts the whole run. On abort the context passed to the
// workers is canceled and the pool drained before the error is returned.
func (a *Aggregator) Collect(
	ctx context.Context,
	pool *Pool,
	s sampler.Sampler,
	mh sampler.ModelHandle,
	tasks []Task,
) ([]prefs.SiteResult, error) {
	poll := a.Poll
	if poll <= 0 {
		poll = time.Second
	}
	log := a.Log
	if log == nil {
		log = slog.Default()
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		pool.Wait()
	}()

	states := make(map[string]siteState, len(tasks))
	handles := make(map[string]*Handle, len(tasks))
	retries := make(map[string]sampler.Request, len(tasks))
	results := make(map[string]sampler.Result, len(tasks))
	for _, t := range tasks {
		states[t.Site] = statePending
		retries[t.Site] = t.Retry
		handles[t.Site] = pool.Submit(runCtx, s, mh, t.First)
	}

	remaining := len(tasks)
	for remaining > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(poll):
		}

		for _, t := range tasks {
			h := handles[t.Site]
			if h == nil || !h.Ready() {
				continue
			}
			handles[t.Site] = nil

			res, err := h.Result()
			if err != nil {
				return nil, fmt.Errorf("site %s: %w", t.Site, err)
			}
			switch states[t.Site] {
			case statePending:
				if res.Converged {
					if err := accept(t, res, results); err != nil {
						return nil, err
					}
					states[t.Site] = stateConverged
					remaining--
					continue
				}
				retry, ok := retries[t.Site]
				if !ok {
					return nil, fmt.Errorf("site %s: retry descriptor already consumed: aggregator contract violation", t.Site)
				}
				delete(retries, t.Site)
				log.Debug("retrying site after non-convergence",
					"site", t.Site, "seed", retry.Seed, "diagnostics", res.Diagnostics)
				states[t.Site] = stateRetrying
				handles[t.Site] = pool.Submit(runCtx, s, mh, retry)
			case stateRetrying:
				if !res.Converged {
					return nil, fmt.Errorf("site %s: %w: %s", t.Site, ErrNotConverged, res.Diagnostics)
				}
				if err := accept(t, res, results); err != nil {
					return nil, err
				}
				states[t.Site] = stateConverged
				remaining--
			default:
				return nil, fmt.Errorf("site %s: result delivered in terminal state: aggregator contract violation", t.Site)
			}
		}
		log.Debug("poll sweep", "pending", remaining, "total", len(tasks))
	}

	out := make([]prefs.SiteResult, 0, len(tasks))
	for _, t := range tasks {
		r := results[t.Site]
		out = append(out, prefs.SiteResult{
			Site:     t.Site,
			Wildtype: t.First.Wildtype,
			Probs:    r.PosteriorMean,
		})
	}
	return out, nil
}

func accept(t Task, res sampler.Result, results map[string]sampler.Result) error {
	if err := prefs.ValidateSimplex(t.First.Chars, res.PosteriorMean); err != nil {
		return fmt.Errorf("site %s: %w: %v", t.Site, ErrBadSimplex, err)
	}
	results[t.Site] = res
	return nil
}
