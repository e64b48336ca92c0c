// Package merge combines freshly fetched show records with the previously
// persisted dataset. The upsert policy is deliberately asymmetric: a new
// success always wins, but a fetch failure can never erase good data collected
// on an earlier run.
package merge

import (
	"log/slog"
	"sort"

	"github.com/filmtrack/showtime-tracker/internal/domain"
)

// WarningFunc receives stale sell-out diagnostics. The warning is a side effect
// only; it never changes what the merge decides.
type WarningFunc func(domain.MergeWarning)

type Merger struct {
	logger *slog.Logger
	warn   WarningFunc
}

func NewMerger(logger *slog.Logger, warn WarningFunc) *Merger {
	if warn == nil {
		warn = func(domain.MergeWarning) {}
	}

	return &Merger{
		logger: logger,
		warn:   warn,
	}
}

// Merge applies this run's fetch results on top of the existing dataset and
// returns the merged records sorted by showtime ID, plus the pass counters.
//
// Per record: a successful fresh record overwrites whatever is stored under its
// ID; a failed fresh record is inserted only when the ID is new, so the first
// sighting of a showtime is never silently dropped; a failed fresh record over
// an existing ID leaves the stored record untouched.
func (m *Merger) Merge(existing []domain.ShowRecord, fresh []domain.ShowRecord) ([]domain.ShowRecord, domain.MergeStats) {
	merged := make(map[string]domain.ShowRecord, len(existing)+len(fresh))
	for _, rec := range existing {
		merged[rec.ShowtimeID] = rec
	}

	var stats domain.MergeStats

	for _, rec := range fresh {
		prior, exists := merged[rec.ShowtimeID]

		if rec.Successful() {
			if exists {
				stats.Updated++
			} else {
				stats.Added++
			}
			merged[rec.ShowtimeID] = rec
			continue
		}

		if !exists {
			merged[rec.ShowtimeID] = rec
			stats.Added++
			continue
		}

		if m.staleSellOut(rec, prior) {
			m.warn(domain.MergeWarning{
				ShowtimeID:     rec.ShowtimeID,
				TheaterName:    prior.TheaterName,
				City:           prior.City,
				Language:       prior.Language,
				PriorOccupancy: prior.Occupancy,
			})
		}

		stats.Skipped++
	}

	out := make([]domain.ShowRecord, 0, len(merged))
	for _, rec := range merged {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ShowtimeID < out[j].ShowtimeID
	})

	m.logger.Info("dataset merged",
		"updated", stats.Updated, "added", stats.Added, "skipped", stats.Skipped, "total", len(out))

	return out, stats
}

// staleSellOut reports whether a fresh 5xx failure landed on a showtime that was
// partially sold on the last good fetch. That pattern is the usual signature of
// a sold-out show being delisted upstream.
func (m *Merger) staleSellOut(fresh, prior domain.ShowRecord) bool {
	if fresh.Error == nil || fresh.Error.Tag != domain.ErrTagTransientStatus || fresh.Error.Status < 500 {
		return false
	}

	return prior.Successful() && prior.Occupancy > 0 && prior.Occupancy < 100
}
