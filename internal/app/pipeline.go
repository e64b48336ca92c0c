package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/filmtrack/showtime-tracker/internal/discovery"
	"github.com/filmtrack/showtime-tracker/internal/domain"
)

// runPipeline runs one acquire-merge-reconcile pass. A run always completes and
// writes every output file once the work-item list has been read: fetch and
// discovery failures surface inside the error log, not as a process failure.
func (app *application) runPipeline(ctx context.Context, date string) error {
	zipCodes, err := readZipCodes(app.config.ZipFile)
	if err != nil {
		return err
	}
	if len(zipCodes) == 0 {
		return fmt.Errorf("%w: %s is empty", domain.ErrNoWorkItems, app.config.ZipFile)
	}
	app.logger.Info("zip codes loaded", "count", len(zipCodes), "file", app.config.ZipFile)

	listings := app.discoverer.Discover(ctx, zipCodes, date, app.config.MovieID)
	unique := discovery.Dedupe(listings)
	items := discovery.Flatten(unique)
	app.logger.Info("showtimes discovered",
		"theaters", len(listings), "unique_theaters", len(unique), "showtimes", len(items))

	fresh := app.orchestrator.FetchAll(ctx, items)

	existing, err := app.datasetRepo.Load(ctx)
	if err != nil {
		return err
	}

	merged, stats := app.merger.Merge(existing, fresh)

	if err := app.datasetRepo.Save(ctx, merged); err != nil {
		return fmt.Errorf("saving dataset: %w", err)
	}

	now := app.now()

	var failed []domain.ShowRecord
	for _, rec := range merged {
		if !rec.Successful() {
			failed = append(failed, rec)
		}
	}

	errorLog := domain.ErrorLog{
		LastUpdated: now.Format(timestampLayout),
		Errors:      failed,
	}
	if err := app.errorLogRepo.Save(ctx, errorLog); err != nil {
		return fmt.Errorf("saving error log: %w", err)
	}

	summary := app.aggregator.Summarize(merged, now)
	if err := app.runLogRepo.Append(ctx, summary); err != nil {
		return fmt.Errorf("appending run log: %w", err)
	}

	result := app.engine.Reconcile(merged)

	reconciled := domain.ReconciledDataset{
		LastUpdated: now.Format(timestampLayout),
		Shows:       result.Shows,
	}
	if err := app.reconciledRepo.Save(ctx, reconciled); err != nil {
		return fmt.Errorf("saving reconciled dataset: %w", err)
	}

	if app.archiveRepo != nil {
		if err := app.archiveRepo.ArchiveRecords(ctx, merged); err != nil {
			app.logger.Warn("archiving records failed", "error", err)
		} else if err := app.archiveRepo.ArchiveSummary(ctx, summary); err != nil {
			app.logger.Warn("archiving summary failed", "error", err)
		}
	}

	gross, grossWithFee := app.aggregator.GrandTotals(result.Shows)
	impact := app.aggregator.ImpactReport(result.Matched)

	app.logger.Info("run complete",
		"updated", stats.Updated,
		"added", stats.Added,
		"skipped", stats.Skipped,
		"records", len(merged),
		"errors", len(failed),
	)
	app.logger.Info("grand totals",
		"gross", gross.StringFixed(2),
		"gross_with_fee", grossWithFee.StringFixed(2),
		"shows", len(result.Shows),
	)
	if impact.MatchedGroups > 0 {
		app.logger.Info("double-count correction",
			"matched_groups", impact.MatchedGroups,
			"standard_before", impact.StandardGrossBefore.StringFixed(2),
			"standard_after", impact.StandardGrossAfter.StringFixed(2),
			"premium_gross", impact.PremiumGross.StringFixed(2),
			"combined_before", impact.CombinedBefore.StringFixed(2),
			"combined_after", impact.CombinedAfter.StringFixed(2),
			"difference", impact.Difference.StringFixed(2),
		)
	}

	return nil
}

const timestampLayout = "2006-01-02 03:04:05 PM"

func (app *application) now() time.Time {
	loc, err := time.LoadLocation(app.config.Timezone)
	if err != nil {
		return time.Now().UTC()
	}

	return time.Now().In(loc)
}

// readZipCodes loads the work-item list. This is the only input whose absence
// aborts the run.
func readZipCodes(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrMissingZipFile, path)
		}
		return nil, err
	}
	defer f.Close()

	var zipCodes []string

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			zipCodes = append(zipCodes, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return zipCodes, nil
}
