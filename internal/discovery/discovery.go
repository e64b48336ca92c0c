package discovery

import (
	"context"
	"log/slog"
	"sync"

	"github.com/filmtrack/showtime-tracker/internal/domain"
)

const DefaultWorkers = 25

// Discoverer enumerates theaters carrying the tracked title, one task per zip
// code, over a fixed-size worker pool. Tasks share nothing: each returns its own
// listing slice, a failed zip code is logged and dropped, and no task is ever
// retried at this layer.
type Discoverer struct {
	source  domain.ListingSource
	workers int
	logger  *slog.Logger
}

func NewDiscoverer(source domain.ListingSource, workers int, logger *slog.Logger) *Discoverer {
	if workers <= 0 {
		workers = DefaultWorkers
	}

	return &Discoverer{
		source:  source,
		workers: workers,
		logger:  logger,
	}
}

// Discover resolves every zip code and returns the combined listings.
func (d *Discoverer) Discover(ctx context.Context, zipCodes []string, date string, movieID int) []domain.TheaterListing {
	jobs := make(chan string)
	results := make(chan []domain.TheaterListing)

	var wg sync.WaitGroup
	for i := 0; i < d.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for zipCode := range jobs {
				listings, err := d.source.TheatersByZip(ctx, zipCode, date, movieID)
				if err != nil {
					d.logger.Warn("zip code lookup failed", "zip", zipCode, "error", err)
					continue
				}

				if len(listings) == 0 {
					d.logger.Debug("no theaters found", "zip", zipCode)
					continue
				}

				d.logger.Debug("zip code processed", "zip", zipCode, "theaters", len(listings))
				results <- listings
			}
		}()
	}

	go func() {
		for _, zipCode := range zipCodes {
			jobs <- zipCode
		}
		close(jobs)

		wg.Wait()
		close(results)
	}()

	var all []domain.TheaterListing
	for listings := range results {
		all = append(all, listings...)
	}

	return all
}

// Dedupe keeps the first listing seen for each theater name. Nearby zip codes
// return overlapping theater sets, so duplicates are the norm.
func Dedupe(listings []domain.TheaterListing) []domain.TheaterListing {
	seen := make(map[string]bool, len(listings))
	unique := make([]domain.TheaterListing, 0, len(listings))

	for _, listing := range listings {
		if seen[listing.TheaterName] {
			continue
		}
		seen[listing.TheaterName] = true
		unique = append(unique, listing)
	}

	return unique
}

// Flatten turns deduplicated listings into one work item per showtime, carrying
// the venue identity fields every downstream stage keys on.
func Flatten(listings []domain.TheaterListing) []domain.ShowRecord {
	var items []domain.ShowRecord

	for _, listing := range listings {
		for _, show := range listing.Showtimes {
			items = append(items, domain.ShowRecord{
				ShowtimeID:  show.ID,
				TheaterName: listing.TheaterName,
				State:       listing.State,
				City:        listing.City,
				Zip:         listing.Zip,
				ChainCode:   listing.ChainCode,
				ChainName:   listing.ChainName,
				Date:        show.Date,
				Language:    show.Language,
				Format:      show.Format,
			})
		}
	}

	return items
}
