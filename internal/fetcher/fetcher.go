package fetcher

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/filmtrack/showtime-tracker/internal/domain"
)

const (
	DefaultMaxAttempts = 3
	DefaultRetryPause  = time.Second
)

// RetryingFetcher resolves one showtime into either a populated ShowRecord or a
// record carrying an ErrorDescriptor. It never returns an error: every failure
// path ends as data on the record. Only transient conditions are retried, and an
// exhausted retry budget still produces a terminal descriptor.
type RetryingFetcher struct {
	client      domain.SeatMapClient
	maxAttempts int
	retryPause  time.Duration
	logger      *slog.Logger
}

func NewRetryingFetcher(client domain.SeatMapClient, maxAttempts int, retryPause time.Duration, logger *slog.Logger) *RetryingFetcher {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	return &RetryingFetcher{
		client:      client,
		maxAttempts: maxAttempts,
		retryPause:  retryPause,
		logger:      logger,
	}
}

// Fetch performs the seat-map lookup for rec and returns a copy with either the
// seat and revenue fields or an ErrorDescriptor filled in.
func (f *RetryingFetcher) Fetch(ctx context.Context, rec domain.ShowRecord) domain.ShowRecord {
	for attempt := 1; ; attempt++ {
		seatMap, err := f.client.SeatMap(ctx, rec.ShowtimeID)

		if err != nil {
			desc, transient := classifyFetchError(err)
			if transient && attempt < f.maxAttempts {
				f.logger.Debug("retrying seat map fetch", "showtime_id", rec.ShowtimeID, "attempt", attempt, "tag", desc.Tag)
				if !f.pause(ctx) {
					rec.Error = &domain.ErrorDescriptor{Tag: domain.ErrTagTimeout, Reason: "run cancelled"}
					return rec
				}
				continue
			}

			rec.Error = desc
			return rec
		}

		// Data-quality failures are terminal: retrying cannot make the
		// upstream payload usable.
		rec.Error = f.populate(&rec, seatMap)
		return rec
	}
}

// pause waits the fixed retry delay, returning false if the context ended first.
func (f *RetryingFetcher) pause(ctx context.Context) bool {
	if f.retryPause <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(f.retryPause)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// populate runs the validity checks over a decoded seat map and computes the
// derived metrics on success. It returns a non-nil descriptor when the payload
// is unusable.
func (f *RetryingFetcher) populate(rec *domain.ShowRecord, seatMap *domain.SeatMap) *domain.ErrorDescriptor {
	if !seatMap.HasSeatingArea {
		return &domain.ErrorDescriptor{Tag: domain.ErrTagNoSeatData, Status: 500, Reason: "No areas"}
	}

	total := seatMap.TotalSeats
	if total == 0 {
		return &domain.ErrorDescriptor{Tag: domain.ErrTagNoSeatData, Status: 500, Reason: "No seats"}
	}

	ticket := selectAdultTicket(seatMap.Tickets)
	if ticket == nil {
		return &domain.ErrorDescriptor{Tag: domain.ErrTagNoTicketData, Status: 500, Reason: "No ticket info"}
	}

	price, err := decimal.NewFromString(ticket.Price)
	if err != nil {
		return &domain.ErrorDescriptor{Tag: domain.ErrTagException, Status: 500, Reason: "Invalid price format"}
	}

	fee := decimal.Zero
	if ticket.Fee != "" {
		fee, err = decimal.NewFromString(ticket.Fee)
		if err != nil {
			return &domain.ErrorDescriptor{Tag: domain.ErrTagException, Status: 500, Reason: "Invalid price format"}
		}
	}

	if price.IsZero() {
		return &domain.ErrorDescriptor{Tag: domain.ErrTagZeroPrice, Status: 500, Reason: "Ticket price 0"}
	}

	sold := total - seatMap.AvailableSeats
	soldDec := decimal.NewFromInt(int64(sold))

	rec.SeatsSold = sold
	rec.SeatsTotal = total
	rec.SeatsAvailable = seatMap.AvailableSeats
	rec.Occupancy = domain.OccupancyPct(sold, total)
	rec.TicketPrice = price
	rec.Fee = fee
	rec.GrossRevenue = price.Mul(soldDec).Round(2)
	rec.GrossWithFee = price.Add(fee).Mul(soldDec).Round(2)
	rec.Error = nil

	return nil
}

// selectAdultTicket picks the first ticket described as an adult ticket, and
// falls back to the first entry when no description matches.
func selectAdultTicket(tickets []domain.TicketInfo) *domain.TicketInfo {
	for i := range tickets {
		if strings.Contains(strings.ToLower(tickets[i].Description), "adult") {
			return &tickets[i]
		}
	}

	if len(tickets) > 0 {
		return &tickets[0]
	}

	return nil
}

// classifyFetchError maps a client error onto its terminal descriptor and
// reports whether the condition is transient.
func classifyFetchError(err error) (*domain.ErrorDescriptor, bool) {
	var statusErr *domain.StatusError
	if errors.As(err, &statusErr) {
		if statusErr.Code >= 500 {
			return &domain.ErrorDescriptor{Tag: domain.ErrTagTransientStatus, Status: statusErr.Code}, true
		}
		return &domain.ErrorDescriptor{Tag: domain.ErrTagHTTPStatus, Status: statusErr.Code}, false
	}

	if errors.Is(err, domain.ErrInvalidPayload) {
		return &domain.ErrorDescriptor{Tag: domain.ErrTagBadJSON, Status: 500, Reason: "Invalid JSON"}, true
	}

	if isTimeout(err) {
		return &domain.ErrorDescriptor{Tag: domain.ErrTagTimeout, Reason: "Timeout"}, true
	}

	return &domain.ErrorDescriptor{Tag: domain.ErrTagException, Reason: err.Error()}, true
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
