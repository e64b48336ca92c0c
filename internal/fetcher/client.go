package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/filmtrack/showtime-tracker/internal/domain"
)

const defaultRequestTimeout = 10 * time.Second

// HTTPSeatMapClient fetches seat maps from the upstream seat-map API. It maps
// transport-level outcomes onto the typed errors the retrying fetcher
// classifies: *domain.StatusError for non-200 responses, domain.ErrInvalidPayload
// for the provider's malformed-body sentinel and for undecodable bodies, and the
// underlying request error (which may be a timeout) otherwise.
type HTTPSeatMapClient struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

func NewHTTPSeatMapClient(baseURL, userAgent string, timeout time.Duration) *HTTPSeatMapClient {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	return &HTTPSeatMapClient{
		baseURL:   baseURL,
		userAgent: userAgent,
		client:    &http.Client{Timeout: timeout},
	}
}

// seatMapEnvelope mirrors the upstream response body. The provider signals a
// malformed origin payload with {"error": "Invalid JSON"} and HTTP 200.
type seatMapEnvelope struct {
	Error string `json:"error"`
	Data  struct {
		TotalSeatCount          int           `json:"totalSeatCount"`
		TotalAvailableSeatCount int           `json:"totalAvailableSeatCount"`
		Areas                   []seatMapArea `json:"areas"`
	} `json:"data"`
}

type seatMapArea struct {
	TicketInfo []seatMapTicket `json:"ticketInfo"`
}

type seatMapTicket struct {
	Desc  string     `json:"desc"`
	Price looseValue `json:"price"`
	Fee   looseValue `json:"fee"`
}

// looseValue accepts a JSON number or string; the upstream feed is not
// consistent about which one it sends for prices.
type looseValue string

func (v *looseValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = looseValue(s)
		return nil
	}

	*v = looseValue(data)
	return nil
}

func (c *HTTPSeatMapClient) SeatMap(ctx context.Context, showtimeID string) (*domain.SeatMap, error) {
	u := fmt.Sprintf("%s/api/seatmap?showtime_id=%s", c.baseURL, url.QueryEscape(showtimeID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.StatusError{Code: resp.StatusCode}
	}

	var envelope seatMapEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
	}

	if envelope.Error == "Invalid JSON" {
		return nil, domain.ErrInvalidPayload
	}

	seatMap := &domain.SeatMap{
		TotalSeats:     envelope.Data.TotalSeatCount,
		AvailableSeats: envelope.Data.TotalAvailableSeatCount,
		HasSeatingArea: len(envelope.Data.Areas) > 0,
	}

	if seatMap.HasSeatingArea {
		for _, t := range envelope.Data.Areas[0].TicketInfo {
			seatMap.Tickets = append(seatMap.Tickets, domain.TicketInfo{
				Description: t.Desc,
				Price:       string(t.Price),
				Fee:         string(t.Fee),
			})
		}
	}

	return seatMap, nil
}
