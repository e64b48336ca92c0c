package domain

import "github.com/shopspring/decimal"

// GroupKey identifies one physical show: every format variant of the same
// screening shares a (theater, ticketing date, language) tuple.
type GroupKey struct {
	TheaterName string
	Date        string
	Language    string
}

// FormatBucket aggregates every record of one format within a group.
// TicketPrice and Fee are representative values taken from a contributing
// record; they are assumed uniform within a bucket.
type FormatBucket struct {
	Format       string          `json:"format"`
	SeatsSold    int             `json:"totalSeatSold"`
	SeatsTotal   int             `json:"totalSeatCount"`
	Occupancy    float64         `json:"occupancy"`
	GrossRevenue decimal.Decimal `json:"grossRevenueUSD"`
	GrossWithFee decimal.Decimal `json:"grossRevenueWithFee"`
	TicketPrice  decimal.Decimal `json:"adultTicketPrice"`
	Fee          decimal.Decimal `json:"fee"`
}

// ReconciledShow is one group after double-count correction, with per-format
// buckets and the corrected group totals.
type ReconciledShow struct {
	State       string          `json:"state"`
	City        string          `json:"city"`
	Zip         string          `json:"zip"`
	TheaterName string          `json:"theater_name"`
	ChainName   string          `json:"chainName"`
	ChainCode   string          `json:"chainCode"`
	Date        string          `json:"date"`
	Language    string          `json:"language"`
	Formats     []FormatBucket  `json:"formats"`
	FinalGross  decimal.Decimal `json:"finalGrossRevenueUSD"`
	FinalGrossWithFee decimal.Decimal `json:"finalGrossRevenueWithFee"`
	FinalSold     int `json:"finalTotalSold"`
	FinalCapacity int `json:"finalTotalCapacity"`
}

// ReconciledDataset is the durable shape of the reconciled output file.
type ReconciledDataset struct {
	LastUpdated string           `json:"last_updated"`
	Shows       []ReconciledShow `json:"shows"`
}

// MatchedGroup captures the before/after figures of one group where both the
// premium and the base format existed, so the financial impact of the
// correction can be reported.
type MatchedGroup struct {
	Key                 GroupKey
	StandardGrossBefore decimal.Decimal
	StandardGrossAfter  decimal.Decimal
	PremiumGross        decimal.Decimal
}
