package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/filmtrack/showtime-tracker/internal/domain"
)

const listingPageSize = 40

// HTTPListingSource queries the theaters-with-showtimes endpoint for one zip
// code and filters the response down to the tracked title.
type HTTPListingSource struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

func NewHTTPListingSource(baseURL, userAgent string, timeout time.Duration) *HTTPListingSource {
	if timeout <= 0 {
		timeout = defaultListingTimeout
	}

	return &HTTPListingSource{
		baseURL:   baseURL,
		userAgent: userAgent,
		client:    &http.Client{Timeout: timeout},
	}
}

const defaultListingTimeout = 10 * time.Second

type listingResponse struct {
	Theaters []listingTheater `json:"theaters"`
}

type listingTheater struct {
	Name      string         `json:"name"`
	State     string         `json:"state"`
	City      string         `json:"city"`
	Zip       string         `json:"zip"`
	ChainCode string         `json:"chainCode"`
	ChainName string         `json:"chainName"`
	Movies    []listingMovie `json:"movies"`
}

type listingMovie struct {
	ID       int              `json:"id"`
	Variants []listingVariant `json:"variants"`
}

type listingVariant struct {
	FormatName    string             `json:"formatName"`
	AmenityGroups []listingAmenityGr `json:"amenityGroups"`
}

type listingAmenityGr struct {
	Amenities []listingAmenity  `json:"amenities"`
	Showtimes []listingShowtime `json:"showtimes"`
}

type listingAmenity struct {
	Name string `json:"name"`
}

type listingShowtime struct {
	ID            json.Number `json:"id"`
	TicketingDate string      `json:"ticketingDate"`
}

func (s *HTTPListingSource) TheatersByZip(ctx context.Context, zipCode, date string, movieID int) ([]domain.TheaterListing, error) {
	query := url.Values{}
	query.Set("zipCode", zipCode)
	query.Set("date", date)
	query.Set("page", "1")
	query.Set("limit", strconv.Itoa(listingPageSize))
	query.Set("filter", "open-theaters")
	query.Set("filterEnabled", "true")

	u := fmt.Sprintf("%s/napi/theaterswithshowtimes?%s", s.baseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json, text/plain, */*")
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.StatusError{Code: resp.StatusCode}
	}

	var payload listingResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding theater listing: %w", err)
	}

	var listings []domain.TheaterListing

	for _, theater := range payload.Theaters {
		for _, movie := range theater.Movies {
			if movie.ID != movieID {
				continue
			}

			listings = append(listings, domain.TheaterListing{
				TheaterName: theater.Name,
				State:       theater.State,
				City:        theater.City,
				Zip:         theater.Zip,
				ChainCode:   theater.ChainCode,
				ChainName:   theater.ChainName,
				Showtimes:   flattenShowtimes(movie),
			})
		}
	}

	return listings, nil
}

// flattenShowtimes walks the variant/amenity-group tree of one movie card and
// resolves a format and language per showtime.
func flattenShowtimes(movie listingMovie) []domain.ShowtimeInfo {
	var out []domain.ShowtimeInfo

	for _, variant := range movie.Variants {
		format := variant.FormatName
		if format == "" {
			format = "Standard"
		}

		for _, group := range variant.AmenityGroups {
			amenities := make([]string, 0, len(group.Amenities))
			for _, a := range group.Amenities {
				amenities = append(amenities, a.Name)
			}

			language := extractLanguage(amenities)
			finalFormat := extractFormat(amenities, format)

			for _, show := range group.Showtimes {
				date := show.TicketingDate
				if date == "" {
					date = "N/A"
				}

				out = append(out, domain.ShowtimeInfo{
					ID:       show.ID.String(),
					Date:     date,
					Format:   finalFormat,
					Language: language,
				})
			}
		}
	}

	return out
}
