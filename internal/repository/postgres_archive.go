package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/filmtrack/showtime-tracker/internal/domain"
)

// PostgresArchiveRepository mirrors merged records and run summaries into
// Postgres for long-term analysis. The JSON files remain the source of truth;
// the archive is written after them and its absence never fails a run.
type PostgresArchiveRepository struct {
	db *pgxpool.Pool
}

func NewPostgresArchiveRepository(ctx context.Context, db *pgxpool.Pool) (*PostgresArchiveRepository, error) {
	schema := `
		CREATE TABLE IF NOT EXISTS show_records (
			showtime_id   text PRIMARY KEY,
			theater_name  text NOT NULL,
			state         text NOT NULL,
			city          text NOT NULL,
			zip           text NOT NULL,
			chain_code    text NOT NULL,
			chain_name    text NOT NULL,
			show_date     text NOT NULL,
			language      text NOT NULL,
			format        text NOT NULL,
			seats_sold    integer NOT NULL,
			seats_total   integer NOT NULL,
			occupancy     numeric(5,2) NOT NULL,
			ticket_price  numeric(10,2) NOT NULL,
			fee           numeric(10,2) NOT NULL,
			gross         numeric(14,2) NOT NULL,
			gross_fee     numeric(14,2) NOT NULL,
			fetch_error   jsonb,
			updated_at    timestamptz NOT NULL DEFAULT now()
		);

		CREATE TABLE IF NOT EXISTS run_summaries (
			run_id         text PRIMARY KEY,
			run_time       text NOT NULL,
			total_gross    numeric(14,2) NOT NULL,
			total_gross_fee numeric(14,2) NOT NULL,
			total_shows    integer NOT NULL,
			avg_occupancy  numeric(5,2) NOT NULL,
			tickets_sold   integer NOT NULL,
			unique_venues  integer NOT NULL,
			created_at     timestamptz NOT NULL DEFAULT now()
		);
	`

	if _, err := db.Exec(ctx, schema); err != nil {
		return nil, err
	}

	return &PostgresArchiveRepository{db: db}, nil
}

func (p *PostgresArchiveRepository) ArchiveRecords(ctx context.Context, records []domain.ShowRecord) error {
	query := `
		INSERT INTO show_records (
			showtime_id, theater_name, state, city, zip, chain_code, chain_name,
			show_date, language, format, seats_sold, seats_total, occupancy,
			ticket_price, fee, gross, gross_fee, fetch_error, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, now())
		ON CONFLICT (showtime_id) DO UPDATE SET
			seats_sold   = EXCLUDED.seats_sold,
			seats_total  = EXCLUDED.seats_total,
			occupancy    = EXCLUDED.occupancy,
			ticket_price = EXCLUDED.ticket_price,
			fee          = EXCLUDED.fee,
			gross        = EXCLUDED.gross,
			gross_fee    = EXCLUDED.gross_fee,
			fetch_error  = EXCLUDED.fetch_error,
			updated_at   = now()
	`

	batch := &pgx.Batch{}

	for _, rec := range records {
		var fetchErr []byte
		if rec.Error != nil {
			var err error
			fetchErr, err = json.Marshal(rec.Error)
			if err != nil {
				return err
			}
		}

		batch.Queue(query,
			rec.ShowtimeID, rec.TheaterName, rec.State, rec.City, rec.Zip,
			rec.ChainCode, rec.ChainName, rec.Date, rec.Language, rec.Format,
			rec.SeatsSold, rec.SeatsTotal, rec.Occupancy,
			rec.TicketPrice, rec.Fee, rec.GrossRevenue, rec.GrossWithFee,
			fetchErr,
		)
	}

	return p.db.SendBatch(ctx, batch).Close()
}

func (p *PostgresArchiveRepository) ArchiveSummary(ctx context.Context, summary domain.RunSummary) error {
	query := `
		INSERT INTO run_summaries (
			run_id, run_time, total_gross, total_gross_fee, total_shows,
			avg_occupancy, tickets_sold, unique_venues
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := p.db.Exec(ctx, query,
		summary.RunID, summary.Time, summary.TotalGross, summary.TotalGrossWithFee,
		summary.TotalShows, summary.AvgOccupancy, summary.TicketsSold, summary.UniqueVenues,
	)

	return err
}
