package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/filmtrack/showtime-tracker/internal/domain"
	"github.com/filmtrack/showtime-tracker/internal/mocks"
)

func TestOrchestratorRespectsConcurrencyLimit(t *testing.T) {
	const (
		items       = 50
		concurrency = 5
	)

	var inFlight, peak atomic.Int64

	client := &mocks.MockSeatMapClient{
		SeatMapFunc: func(ctx context.Context, showtimeID string) (*domain.SeatMap, error) {
			current := inFlight.Add(1)
			defer inFlight.Add(-1)

			for {
				observed := peak.Load()
				if current <= observed || peak.CompareAndSwap(observed, current) {
					break
				}
			}

			time.Sleep(time.Millisecond)
			return validSeatMap(), nil
		},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	orchestrator := NewOrchestrator(NewRetryingFetcher(client, 1, 0, logger), concurrency, logger)

	work := make([]domain.ShowRecord, items)
	for i := range work {
		work[i] = domain.ShowRecord{ShowtimeID: fmt.Sprintf("show-%d", i)}
	}

	results := orchestrator.FetchAll(context.Background(), work)

	require.Len(t, results, items)
	require.LessOrEqual(t, peak.Load(), int64(concurrency))
}

func TestOrchestratorResolvesEveryItem(t *testing.T) {
	client := &mocks.MockSeatMapClient{
		SeatMapFunc: func(ctx context.Context, showtimeID string) (*domain.SeatMap, error) {
			if showtimeID == "show-3" || showtimeID == "show-7" {
				return nil, &domain.StatusError{Code: 404}
			}
			return validSeatMap(), nil
		},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	orchestrator := NewOrchestrator(NewRetryingFetcher(client, 1, 0, logger), 4, logger)

	work := make([]domain.ShowRecord, 10)
	for i := range work {
		work[i] = domain.ShowRecord{ShowtimeID: fmt.Sprintf("show-%d", i)}
	}

	results := orchestrator.FetchAll(context.Background(), work)
	require.Len(t, results, 10)

	byID := make(map[string]domain.ShowRecord, len(results))
	for _, rec := range results {
		byID[rec.ShowtimeID] = rec
	}

	require.Len(t, byID, 10, "every submitted item resolves exactly once")
	require.False(t, byID["show-3"].Successful())
	require.False(t, byID["show-7"].Successful())
	require.True(t, byID["show-0"].Successful())
}
