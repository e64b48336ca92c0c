package repository

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/filmtrack/showtime-tracker/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleRecords() []domain.ShowRecord {
	return []domain.ShowRecord{
		{
			ShowtimeID:   "100",
			TheaterName:  "Alpha Cinema",
			State:        "TX",
			City:         "Dallas",
			Zip:          "75001",
			ChainCode:    "AMC",
			ChainName:    "AMC Theatres",
			Date:         "2026-02-27",
			Language:     "English",
			Format:       "Standard",
			SeatsSold:    150,
			SeatsTotal:   200,
			SeatsAvailable: 50,
			Occupancy:    75,
			TicketPrice:  decimal.RequireFromString("10.50"),
			Fee:          decimal.RequireFromString("1.75"),
			GrossRevenue: decimal.RequireFromString("1575.00"),
			GrossWithFee: decimal.RequireFromString("1837.50"),
		},
		{
			ShowtimeID:  "101",
			TheaterName: "Alpha Cinema",
			Date:        "2026-02-27",
			Language:    "English",
			Format:      "D-Box",
			Error:       &domain.ErrorDescriptor{Tag: domain.ErrTagTransientStatus, Status: 503},
		},
	}
}

func TestDatasetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.json")
	repo := NewJSONDatasetRepository(path, discardLogger())
	ctx := context.Background()

	records := sampleRecords()
	require.NoError(t, repo.Save(ctx, records))

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)

	if diff := cmp.Diff(records, loaded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDatasetMissingFileIsEmpty(t *testing.T) {
	repo := NewJSONDatasetRepository(filepath.Join(t.TempDir(), "missing.json"), discardLogger())

	loaded, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Empty(t, loaded)
}

func TestDatasetCorruptFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	repo := NewJSONDatasetRepository(path, discardLogger())

	loaded, err := repo.Load(context.Background())
	require.NoError(t, err, "a corrupt dataset must not block the run")
	require.Empty(t, loaded)
}

func TestRunLogAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs.json")
	repo := NewJSONRunLogRepository(path, discardLogger())
	ctx := context.Background()

	first := domain.RunSummary{
		RunID:             "run-1",
		Time:              "2026-02-27 10:00:00 AM",
		TotalGross:        decimal.RequireFromString("1000.00"),
		TotalGrossWithFee: decimal.RequireFromString("1100.00"),
		TotalShows:        5,
	}
	second := first
	second.RunID = "run-2"
	second.Time = "2026-02-27 11:00:00 AM"

	require.NoError(t, repo.Append(ctx, first))
	require.NoError(t, repo.Append(ctx, second))

	latest, err := repo.Latest(ctx)
	require.NoError(t, err)
	require.Equal(t, "run-2", latest.RunID)
}

func TestRunLogLatestOnEmptyLog(t *testing.T) {
	repo := NewJSONRunLogRepository(filepath.Join(t.TempDir(), "logs.json"), discardLogger())

	_, err := repo.Latest(context.Background())
	require.ErrorIs(t, err, domain.ErrNoReportData)
}

func TestReconciledRoundTripKeepsGrandTotals(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grouped.json")
	repo := NewJSONReconciledRepository(path)
	ctx := context.Background()

	dataset := domain.ReconciledDataset{
		LastUpdated: "2026-02-27 06:30:00 PM",
		Shows: []domain.ReconciledShow{
			{
				TheaterName: "Alpha Cinema",
				Date:        "2026-02-27",
				Language:    "English",
				Formats: []domain.FormatBucket{
					{
						Format:       "d-box",
						SeatsSold:    18,
						SeatsTotal:   20,
						Occupancy:    90,
						GrossRevenue: decimal.RequireFromString("270.00"),
						GrossWithFee: decimal.RequireFromString("306.00"),
						TicketPrice:  decimal.RequireFromString("15.00"),
						Fee:          decimal.RequireFromString("2.00"),
					},
					{
						Format:       "standard",
						SeatsSold:    132,
						SeatsTotal:   180,
						Occupancy:    73.33,
						GrossRevenue: decimal.RequireFromString("1320.00"),
						GrossWithFee: decimal.RequireFromString("1452.00"),
						TicketPrice:  decimal.RequireFromString("10.00"),
						Fee:          decimal.RequireFromString("1.00"),
					},
				},
				FinalGross:        decimal.RequireFromString("1590.00"),
				FinalGrossWithFee: decimal.RequireFromString("1758.00"),
				FinalSold:         150,
				FinalCapacity:     200,
			},
		},
	}

	require.NoError(t, repo.Save(ctx, dataset))

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)

	var gross, grossWithFee decimal.Decimal
	for _, show := range loaded.Shows {
		gross = gross.Add(show.FinalGross)
		grossWithFee = grossWithFee.Add(show.FinalGrossWithFee)
	}

	require.Equal(t, "1590.00", gross.StringFixed(2))
	require.Equal(t, "1758.00", grossWithFee.StringFixed(2))

	if diff := cmp.Diff(dataset, *loaded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestErrorLogSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "errors.json")
	repo := NewJSONErrorLogRepository(path)
	ctx := context.Background()

	records := sampleRecords()
	log := domain.ErrorLog{
		LastUpdated: "2026-02-27 06:30:00 PM",
		Errors:      []domain.ShowRecord{records[1]},
	}

	require.NoError(t, repo.Save(ctx, log))

	// The snapshot is a full replacement: saving again with no errors leaves
	// an empty list, not the previous contents.
	require.NoError(t, repo.Save(ctx, domain.ErrorLog{LastUpdated: "later"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(data), "503")
}
