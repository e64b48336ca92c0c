package app

import (
	"io"
	"log/slog"

	"github.com/filmtrack/showtime-tracker/internal/merge"
	"github.com/filmtrack/showtime-tracker/internal/reconcile"
)

func newTestApplication(opts ...func(*application)) *application {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	app := &application{
		config: Config{
			Env:         "dev",
			MovieID:     243198,
			ReleaseDate: "2026-02-27",
			Timezone:    "America/Los_Angeles",
			Port:        3000,
		},
		logger:     logger,
		engine:     reconcile.NewEngine(),
		aggregator: reconcile.NewAggregator(),
		merger:     merge.NewMerger(logger, nil),
	}

	for _, opt := range opts {
		opt(app)
	}

	return app
}
