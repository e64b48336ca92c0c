package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/filmtrack/showtime-tracker/internal/domain"
)

func TestSeatMapClientDecodesPayload(t *testing.T) {
	body := `{
		"data": {
			"totalSeatCount": 180,
			"totalAvailableSeatCount": 42,
			"areas": [
				{"ticketInfo": [
					{"desc": "Adult", "price": 11.25, "fee": "1.89"},
					{"desc": "Child", "price": "7.50", "fee": 0.99}
				]}
			]
		}
	}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "9001", r.URL.Query().Get("showtime_id"))
		w.Write([]byte(body))
	}))
	defer srv.Close()

	client := NewHTTPSeatMapClient(srv.URL, "test-agent", time.Second)

	seatMap, err := client.SeatMap(context.Background(), "9001")
	require.NoError(t, err)
	require.True(t, seatMap.HasSeatingArea)
	require.Equal(t, 180, seatMap.TotalSeats)
	require.Equal(t, 42, seatMap.AvailableSeats)
	require.Len(t, seatMap.Tickets, 2)
	require.Equal(t, "Adult", seatMap.Tickets[0].Description)
	require.Equal(t, "11.25", seatMap.Tickets[0].Price)
	require.Equal(t, "1.89", seatMap.Tickets[0].Fee)
	require.Equal(t, "7.50", seatMap.Tickets[1].Price)
}

func TestSeatMapClientReturnsStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewHTTPSeatMapClient(srv.URL, "", time.Second)

	_, err := client.SeatMap(context.Background(), "1")

	var statusErr *domain.StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, 503, statusErr.Code)
}

func TestSeatMapClientInvalidPayloadSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": "Invalid JSON"}`))
	}))
	defer srv.Close()

	client := NewHTTPSeatMapClient(srv.URL, "", time.Second)

	_, err := client.SeatMap(context.Background(), "1")
	require.True(t, errors.Is(err, domain.ErrInvalidPayload))
}

func TestSeatMapClientUndecodableBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>not json</html>`))
	}))
	defer srv.Close()

	client := NewHTTPSeatMapClient(srv.URL, "", time.Second)

	_, err := client.SeatMap(context.Background(), "1")
	require.True(t, errors.Is(err, domain.ErrInvalidPayload))
}

func TestSeatMapClientNoAreas(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": {"totalSeatCount": 100, "totalAvailableSeatCount": 10, "areas": []}}`))
	}))
	defer srv.Close()

	client := NewHTTPSeatMapClient(srv.URL, "", time.Second)

	seatMap, err := client.SeatMap(context.Background(), "1")
	require.NoError(t, err)
	require.False(t, seatMap.HasSeatingArea)
}
