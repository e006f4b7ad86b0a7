package cleaner

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/lumipallolabs/sweeper/internal/logging"
	"github.com/panjf2000/ants/v2"
)

// Progress is called after each project finishes, one call at a time
type Progress func(done, total int, r Result)

// Summary totals a clean run
type Summary struct {
	Cleaned int
	Failed  int
	Skipped int
	Freed   int64
}

// Summarize counts results by status and adds up the freed bytes
func Summarize(results []Result) Summary {
	var s Summary
	for _, r := range results {
		switch r.Status {
		case StatusCleaned:
			s.Cleaned++
			s.Freed += r.Freed
		case StatusFailed:
			s.Failed++
		default:
			s.Skipped++
		}
	}
	return s
}

// CleanAll cleans projects on a pool of jobs workers (0 = number of CPUs).
// Results keep the order of projects. Projects not started before ctx is
// cancelled are reported as skipped.
func CleanAll(ctx context.Context, e *Executor, projects []Project, jobs int, progress Progress) ([]Result, error) {
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	pool, err := ants.NewPool(jobs)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()
	logging.Debug.Debug().Int("projects", len(projects)).Int("workers", jobs).Msg("cleaner: cleaning")

	results := make([]Result, len(projects))
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		done int
	)
	finish := func(i int, r Result) {
		results[i] = r
		mu.Lock()
		defer mu.Unlock()
		done++
		if progress != nil {
			progress(done, len(projects), r)
		}
	}

	for i, p := range projects {
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			finish(i, e.Clean(ctx, p))
		})
		if err != nil {
			wg.Done()
			finish(i, Result{Project: p, Status: StatusFailed, Err: err})
		}
	}
	wg.Wait()
	return results, nil
}
