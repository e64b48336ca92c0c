package mocks

import (
	"context"

	"github.com/filmtrack/showtime-tracker/internal/domain"
)

type MockDatasetRepo struct {
	LoadFunc func(ctx context.Context) ([]domain.ShowRecord, error)
	SaveFunc func(ctx context.Context, records []domain.ShowRecord) error
}

func (m *MockDatasetRepo) Load(ctx context.Context) ([]domain.ShowRecord, error) {
	return m.LoadFunc(ctx)
}

func (m *MockDatasetRepo) Save(ctx context.Context, records []domain.ShowRecord) error {
	return m.SaveFunc(ctx, records)
}

type MockErrorLogRepo struct {
	SaveFunc func(ctx context.Context, log domain.ErrorLog) error
}

func (m *MockErrorLogRepo) Save(ctx context.Context, log domain.ErrorLog) error {
	return m.SaveFunc(ctx, log)
}

type MockRunLogRepo struct {
	AppendFunc func(ctx context.Context, summary domain.RunSummary) error
	LatestFunc func(ctx context.Context) (*domain.RunSummary, error)
}

func (m *MockRunLogRepo) Append(ctx context.Context, summary domain.RunSummary) error {
	return m.AppendFunc(ctx, summary)
}

func (m *MockRunLogRepo) Latest(ctx context.Context) (*domain.RunSummary, error) {
	return m.LatestFunc(ctx)
}

type MockReconciledRepo struct {
	SaveFunc func(ctx context.Context, dataset domain.ReconciledDataset) error
	LoadFunc func(ctx context.Context) (*domain.ReconciledDataset, error)
}

func (m *MockReconciledRepo) Save(ctx context.Context, dataset domain.ReconciledDataset) error {
	return m.SaveFunc(ctx, dataset)
}

func (m *MockReconciledRepo) Load(ctx context.Context) (*domain.ReconciledDataset, error) {
	return m.LoadFunc(ctx)
}

type MockListingSource struct {
	TheatersByZipFunc func(ctx context.Context, zipCode, date string, movieID int) ([]domain.TheaterListing, error)
}

func (m *MockListingSource) TheatersByZip(ctx context.Context, zipCode, date string, movieID int) ([]domain.TheaterListing, error) {
	return m.TheatersByZipFunc(ctx, zipCode, date, movieID)
}
