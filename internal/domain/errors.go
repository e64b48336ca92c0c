package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidPayload = errors.New("provider returned an invalid payload")
	ErrNoWorkItems    = errors.New("no showtimes to fetch")
	ErrMissingZipFile = errors.New("zip code list not found")
	ErrNoReportData   = errors.New("no report has been produced yet")
)

// StatusError is returned by a SeatMapClient for any non-200 response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.Code)
}
