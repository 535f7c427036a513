package job

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
)

type BatchResult struct {
	JobID   string
	Outcome Outcome
	Err     error
}

// AwaitAll polls every job concurrently on a bounded worker pool. Results
// are returned in the order of jobIDs.
func (p *Poller) AwaitAll(
	ctx context.Context,
	jobIDs []string,
	interval, maxWait time.Duration,
	workers int,
) ([]BatchResult, error) {
	if workers <= 0 {
		workers = 4
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("new poll pool: %w", err)
	}
	defer pool.Release()

	results := make([]BatchResult, len(jobIDs))
	var wg sync.WaitGroup
	for i, id := range jobIDs {
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			out, err := p.AwaitCompletion(ctx, id, interval, maxWait)
			results[i] = BatchResult{JobID: id, Outcome: out, Err: err}
		})
		if err != nil {
			wg.Done()
			results[i] = BatchResult{JobID: id, Err: fmt.Errorf("submit poll task: %w", err)}
		}
	}
	wg.Wait()

	return results, nil
}
