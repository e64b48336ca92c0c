package domain

import (
	"context"
	"math"

	"github.com/shopspring/decimal"
)

// ErrorTag classifies a failed seat-map fetch. Transient tags are retried by the
// fetcher before they become terminal; every other tag is terminal on first sight.
type ErrorTag string

const (
	ErrTagTransientStatus ErrorTag = "transient-status"
	ErrTagHTTPStatus      ErrorTag = "http-status"
	ErrTagBadJSON         ErrorTag = "bad-json"
	ErrTagNoSeatData      ErrorTag = "no-seat-data"
	ErrTagNoTicketData    ErrorTag = "no-ticket-data"
	ErrTagZeroPrice       ErrorTag = "zero-price"
	ErrTagTimeout         ErrorTag = "timeout"
	ErrTagException       ErrorTag = "exception"
)

// ErrorDescriptor records why a showtime could not be turned into usable
// occupancy data. Status carries the last observed HTTP status when there was one.
type ErrorDescriptor struct {
	Tag    ErrorTag `json:"tag"`
	Status int      `json:"status,omitempty"`
	Reason string   `json:"reason,omitempty"`
}

// ShowRecord is one ticketed screening instance. The venue identity fields are
// constant for a given ShowtimeID across runs; the seat and revenue fields are
// populated only on a successful fetch, otherwise Error is set. JSON tags match
// the dataset files produced by earlier versions of the tracker.
type ShowRecord struct {
	ShowtimeID  string `json:"showtime_id"`
	TheaterName string `json:"theater_name"`
	State       string `json:"state"`
	City        string `json:"city"`
	Zip         string `json:"zip"`
	ChainCode   string `json:"chainCode"`
	ChainName   string `json:"chainName"`
	Date        string `json:"date"`
	Language    string `json:"language"`
	Format      string `json:"format"`

	SeatsSold      int             `json:"totalSeatSold"`
	SeatsTotal     int             `json:"totalSeatCount"`
	SeatsAvailable int             `json:"totalAvailableSeatCount"`
	Occupancy      float64         `json:"occupancy"`
	TicketPrice    decimal.Decimal `json:"adultTicketPrice"`
	Fee            decimal.Decimal `json:"fee"`
	GrossRevenue   decimal.Decimal `json:"grossRevenueUSD"`
	GrossWithFee   decimal.Decimal `json:"totalRevenueWithFee"`

	Error *ErrorDescriptor `json:"error,omitempty"`
}

// Successful reports whether the record carries seat data rather than an error.
func (r ShowRecord) Successful() bool {
	return r.Error == nil
}

// OccupancyPct returns sold/total as a percentage rounded to two decimals,
// and 0 when total is zero.
func OccupancyPct(sold, total int) float64 {
	if total == 0 {
		return 0
	}

	return math.Round(float64(sold)/float64(total)*10000) / 100
}

// SeatMap is the payload of one successful seat-map lookup, before any
// validity checks are applied.
type SeatMap struct {
	TotalSeats     int
	AvailableSeats int
	HasSeatingArea bool
	Tickets        []TicketInfo
}

// TicketInfo is one price entry from a seat-map response. Price and Fee are kept
// as the raw strings the provider sent; parsing them is part of fetch validation.
type TicketInfo struct {
	Description string
	Price       string
	Fee         string
}

// SeatMapClient is the opaque fetch capability consumed by the retrying fetcher.
// Implementations must honor the context deadline and return ErrInvalidPayload
// for the provider's malformed-body sentinel and *StatusError for non-200 codes.
type SeatMapClient interface {
	SeatMap(ctx context.Context, showtimeID string) (*SeatMap, error)
}
