package fetcher

import (
	"context"
	"log/slog"
	"sync"

	"github.com/filmtrack/showtime-tracker/internal/domain"
)

const DefaultConcurrency = 45

// Orchestrator fans work items out to a RetryingFetcher with at most
// concurrency lookups in flight at once. Items are independent and completion
// order is unconstrained; the items themselves are never shared between
// goroutines, so no locking is needed beyond the result channel.
type Orchestrator struct {
	fetcher     *RetryingFetcher
	concurrency int
	logger      *slog.Logger
}

func NewOrchestrator(fetcher *RetryingFetcher, concurrency int, logger *slog.Logger) *Orchestrator {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	return &Orchestrator{
		fetcher:     fetcher,
		concurrency: concurrency,
		logger:      logger,
	}
}

// FetchAll resolves every item and returns once all of them have, success or
// terminal failure. There is no overall-run failure mode: a cancelled context
// surfaces as timeout descriptors on the remaining items.
func (o *Orchestrator) FetchAll(ctx context.Context, items []domain.ShowRecord) []domain.ShowRecord {
	jobs := make(chan domain.ShowRecord)
	results := make(chan domain.ShowRecord)

	var wg sync.WaitGroup
	for i := 0; i < o.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range jobs {
				results <- o.fetcher.Fetch(ctx, item)
			}
		}()
	}

	go func() {
		for _, item := range items {
			jobs <- item
		}
		close(jobs)

		wg.Wait()
		close(results)
	}()

	resolved := make([]domain.ShowRecord, 0, len(items))
	failed := 0
	for rec := range results {
		if !rec.Successful() {
			failed++
		}
		resolved = append(resolved, rec)
	}

	o.logger.Info("seat map fetch complete", "total", len(resolved), "failed", failed)

	return resolved
}
