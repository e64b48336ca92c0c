package mocks

import (
	"context"

	"github.com/filmtrack/showtime-tracker/internal/domain"
)

type MockSeatMapClient struct {
	SeatMapFunc func(ctx context.Context, showtimeID string) (*domain.SeatMap, error)
}

func (m *MockSeatMapClient) SeatMap(ctx context.Context, showtimeID string) (*domain.SeatMap, error) {
	return m.SeatMapFunc(ctx, showtimeID)
}
