package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/filmtrack/showtime-tracker/internal/discovery"
	"github.com/filmtrack/showtime-tracker/internal/domain"
	"github.com/filmtrack/showtime-tracker/internal/fetcher"
	"github.com/filmtrack/showtime-tracker/internal/merge"
	"github.com/filmtrack/showtime-tracker/internal/reconcile"
	"github.com/filmtrack/showtime-tracker/internal/repository"
	appvalidator "github.com/filmtrack/showtime-tracker/internal/validator"
	"github.com/filmtrack/showtime-tracker/internal/vcs"
)

var (
	version = vcs.Version()
)

// Config holds everything one run needs. It is immutable once validated; the
// pipeline stages receive it (or slices of it) explicitly rather than reading
// ambient state.
type Config struct {
	Env         string `validate:"required,oneof=dev staging prod"`
	MovieID     int    `validate:"required,min=1"`
	ReleaseDate string `validate:"required,date_ymd"`
	Timezone    string `validate:"required,iana_tz"`
	ZipFile     string `validate:"required"`
	OutDir      string `validate:"required"`
	ListingsURL string `validate:"required,url"`
	SeatMapURL  string `validate:"required,url"`
	UserAgent   string

	Workers      int           `validate:"min=1,max=100"`
	Concurrency  int           `validate:"min=1,max=200"`
	MaxAttempts  int           `validate:"min=1,max=10"`
	FetchTimeout time.Duration
	RetryPause   time.Duration
	RunTimeout   time.Duration

	DBDSN string

	Serve bool
	Port  int `validate:"min=1,max=65535"`
}

// TicketingDate is the date shows are fetched for: the release date until it
// arrives (in the configured zone), then the current day.
func (c Config) TicketingDate(now time.Time) string {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		loc = time.UTC
	}

	today := now.In(loc).Format("2006-01-02")
	if today < c.ReleaseDate {
		return c.ReleaseDate
	}

	return today
}

type application struct {
	config Config
	logger *slog.Logger

	discoverer   *discovery.Discoverer
	orchestrator *fetcher.Orchestrator
	merger       *merge.Merger
	engine       *reconcile.Engine
	aggregator   *reconcile.Aggregator

	datasetRepo    domain.DatasetRepository
	errorLogRepo   domain.ErrorLogRepository
	runLogRepo     domain.RunLogRepository
	reconciledRepo domain.ReconciledRepository
	archiveRepo    domain.ArchiveRepository
}

func Run() error {
	var cfg Config

	flag.StringVar(&cfg.Env, "env", "dev", "Environment (dev|staging|prod)")
	flag.IntVar(&cfg.MovieID, "movie-id", 243198, "Tracked movie ID")
	flag.StringVar(&cfg.ReleaseDate, "release-date", "2026-02-27", "Release date (YYYY-MM-DD)")
	flag.StringVar(&cfg.Timezone, "timezone", "America/Los_Angeles", "Ticketing timezone")
	flag.StringVar(&cfg.ZipFile, "zip-file", "zipcodes.txt", "Zip code list, one per line")
	flag.StringVar(&cfg.OutDir, "out-dir", "data", "Output directory")
	flag.StringVar(&cfg.ListingsURL, "listings-url", "https://www.fandango.com", "Theater listings base URL")
	flag.StringVar(&cfg.SeatMapURL, "seatmap-url", "https://usaapi.vercel.app", "Seat map API base URL")
	flag.StringVar(&cfg.UserAgent, "user-agent", "showtime-tracker/1.0", "User-Agent header for upstream requests")

	flag.IntVar(&cfg.Workers, "workers", discovery.DefaultWorkers, "Discovery worker pool size")
	flag.IntVar(&cfg.Concurrency, "concurrency", fetcher.DefaultConcurrency, "Max in-flight seat map fetches")
	flag.IntVar(&cfg.MaxAttempts, "max-attempts", fetcher.DefaultMaxAttempts, "Fetch attempts per showtime")
	flag.DurationVar(&cfg.FetchTimeout, "fetch-timeout", 10*time.Second, "Per-request timeout")
	flag.DurationVar(&cfg.RetryPause, "retry-pause", fetcher.DefaultRetryPause, "Pause between fetch attempts")
	flag.DurationVar(&cfg.RunTimeout, "run-timeout", 0, "Overall run deadline (0 = unbounded)")

	flag.StringVar(&cfg.DBDSN, "db-dsn", "", "Optional PostgreSQL DSN for the archive sink")

	flag.BoolVar(&cfg.Serve, "serve", false, "Serve the latest report over HTTP after the run")
	flag.IntVar(&cfg.Port, "port", 3000, "Report server port")

	displayVersion := flag.Bool("version", false, "Display version and exit")

	flag.Parse()

	if *displayVersion {
		fmt.Printf("Version:\t%s\n", version)
		os.Exit(0)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if err := validateConfig(cfg); err != nil {
		logger.Error("invalid configuration", "error", err)
		return err
	}

	date := cfg.TicketingDate(time.Now())
	logger.Info("starting run", "movie_id", cfg.MovieID, "date", date, "env", cfg.Env)

	app, cleanup, err := newApplication(cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		return err
	}
	defer cleanup()

	ctx := context.Background()
	if cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.RunTimeout)
		defer cancel()
	}

	if err := app.runPipeline(ctx, date); err != nil {
		logger.Error("run failed", "error", err)
		return err
	}

	if cfg.Serve {
		return app.serveReports()
	}

	return nil
}

func newApplication(cfg Config, logger *slog.Logger) (*application, func(), error) {
	prefix := filepath.Join(cfg.OutDir, fmt.Sprintf("%d_%s", cfg.MovieID, cfg.TicketingDate(time.Now())))

	app := &application{
		config:         cfg,
		logger:         logger,
		engine:         reconcile.NewEngine(),
		aggregator:     reconcile.NewAggregator(),
		datasetRepo:    repository.NewJSONDatasetRepository(prefix+".json", logger),
		errorLogRepo:   repository.NewJSONErrorLogRepository(prefix + "_errors.json"),
		runLogRepo:     repository.NewJSONRunLogRepository(prefix+"_logs.json", logger),
		reconciledRepo: repository.NewJSONReconciledRepository(prefix + "_grouped.json"),
	}

	app.discoverer = discovery.NewDiscoverer(
		discovery.NewHTTPListingSource(cfg.ListingsURL, cfg.UserAgent, cfg.FetchTimeout),
		cfg.Workers,
		logger,
	)

	seatMapClient := fetcher.NewHTTPSeatMapClient(cfg.SeatMapURL, cfg.UserAgent, cfg.FetchTimeout)
	retrying := fetcher.NewRetryingFetcher(seatMapClient, cfg.MaxAttempts, cfg.RetryPause, logger)
	app.orchestrator = fetcher.NewOrchestrator(retrying, cfg.Concurrency, logger)

	app.merger = merge.NewMerger(logger, func(w domain.MergeWarning) {
		logger.Warn("showtime may have sold out",
			"showtime_id", w.ShowtimeID,
			"theater", w.TheaterName,
			"city", w.City,
			"language", w.Language,
			"prior_occupancy", w.PriorOccupancy,
		)
	})

	cleanup := func() {}

	if cfg.DBDSN != "" {
		db, err := newDatabasePool(cfg.DBDSN)
		if err != nil {
			return nil, nil, err
		}

		archive, err := repository.NewPostgresArchiveRepository(context.Background(), db)
		if err != nil {
			db.Close()
			return nil, nil, err
		}

		app.archiveRepo = archive
		cleanup = db.Close
	}

	return app, cleanup, nil
}

func newDatabasePool(dsn string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	db, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = db.Ping(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func validateConfig(cfg Config) error {
	err := appvalidator.NewValidator().Struct(cfg)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	var messages []error
	for _, fieldErr := range validationErrs {
		messages = append(messages, fmt.Errorf("%s %s", fieldErr.Field(), appvalidator.ValidationMessage(fieldErr)))
	}

	return errors.Join(messages...)
}
