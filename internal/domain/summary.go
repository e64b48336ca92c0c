package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// MergeStats counts what one merge pass did to the persisted dataset.
type MergeStats struct {
	Updated int
	Added   int
	Skipped int
}

// MergeWarning is emitted when a previously partially-sold showtime stops being
// reachable upstream, which usually means it sold out and was delisted.
type MergeWarning struct {
	ShowtimeID     string
	TheaterName    string
	City           string
	Language       string
	PriorOccupancy float64
}

// RunSummary is one row of the append-only run log.
type RunSummary struct {
	RunID             string          `json:"run_id"`
	Time              string          `json:"time"`
	TotalGross        decimal.Decimal `json:"total_gross_usd"`
	TotalGrossWithFee decimal.Decimal `json:"total_gross_with_fee"`
	TotalShows        int             `json:"total_shows"`
	AvgOccupancy      float64         `json:"avg_occupancy"`
	TicketsSold       int             `json:"tickets_sold"`
	UniqueVenues      int             `json:"unique_venues"`
}

// ErrorLog is the durable shape of the error snapshot file, fully replaced
// each run.
type ErrorLog struct {
	LastUpdated string       `json:"last_updated"`
	Errors      []ShowRecord `json:"errors"`
}

// DatasetRepository persists the cross-run show dataset. Load returns an empty
// slice when no prior dataset exists.
type DatasetRepository interface {
	Load(ctx context.Context) ([]ShowRecord, error)
	Save(ctx context.Context, records []ShowRecord) error
}

// ErrorLogRepository replaces the error snapshot file each run.
type ErrorLogRepository interface {
	Save(ctx context.Context, log ErrorLog) error
}

// RunLogRepository appends one summary row per run to the run log.
type RunLogRepository interface {
	Append(ctx context.Context, summary RunSummary) error
	Latest(ctx context.Context) (*RunSummary, error)
}

// ReconciledRepository replaces the reconciled dataset file each run.
type ReconciledRepository interface {
	Save(ctx context.Context, dataset ReconciledDataset) error
	Load(ctx context.Context) (*ReconciledDataset, error)
}

// ArchiveRepository mirrors merged records and run summaries into long-term
// storage. It is optional; the file stores remain the source of truth.
type ArchiveRepository interface {
	ArchiveRecords(ctx context.Context, records []ShowRecord) error
	ArchiveSummary(ctx context.Context, summary RunSummary) error
}
