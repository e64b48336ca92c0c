package domain

import "context"

// ShowtimeInfo is one showtime discovered under a theater listing, before its
// seat map has been fetched.
type ShowtimeInfo struct {
	ID       string
	Date     string
	Format   string
	Language string
}

// TheaterListing is the result of discovering one theater that carries the
// tracked title on the target date.
type TheaterListing struct {
	TheaterName string
	State       string
	City        string
	Zip         string
	ChainCode   string
	ChainName   string
	Showtimes   []ShowtimeInfo
}

// ListingSource enumerates theaters carrying a movie around one zip code.
// A failed lookup is isolated to that zip code; it is logged by the caller and
// never retried.
type ListingSource interface {
	TheatersByZip(ctx context.Context, zipCode, date string, movieID int) ([]TheaterListing, error)
}
