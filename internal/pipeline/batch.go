package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// BatchResult pairs a request with its outcome. Err holds configuration
// errors from Run; State is nil when Err is set.
type BatchResult struct {
	Request Request
	State   *State
	Err     error
}

// RunBatch runs reqs and returns their results in input order. Requests that
// write into the same directory run one after another in input order, since
// each lesson's number depends on the files committed before it. Distinct
// directories run concurrently, at most limit at a time (limit <= 0 means
// no limit).
func RunBatch(ctx context.Context, o *Orchestrator, reqs []Request, limit int) []BatchResult {
	results := make([]BatchResult, len(reqs))
	groups, order := o.groupByTarget(reqs, results)

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for _, key := range order {
		idxs := groups[key]
		g.Go(func() error {
			for _, i := range idxs {
				st, err := o.Run(gctx, reqs[i])
				results[i].State = st
				results[i].Err = err
			}
			return nil
		})
	}
	// Workers never return errors; failures live in results.
	_ = g.Wait()

	return results
}

// groupByTarget buckets request indexes by resolved target directory. A
// request whose domain is unknown gets its error recorded immediately and
// joins no group. Requests without any directory each get a group of their
// own since they cannot collide on disk.
func (o *Orchestrator) groupByTarget(reqs []Request, results []BatchResult) (map[string][]int, []string) {
	groups := make(map[string][]int)
	var order []string
	for i, req := range reqs {
		results[i].Request = req
		cfg, err := o.registry.Get(req.Domain)
		if err != nil {
			results[i].Err = err
			continue
		}
		key := targetDir(req, cfg)
		if key == "" {
			key = fmt.Sprintf("\x00%d", i)
		} else if abs, err := filepath.Abs(key); err == nil {
			key = abs
		}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], i)
	}
	return groups, order
}
