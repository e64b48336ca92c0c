package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/filmtrack/showtime-tracker/internal/domain"
	"github.com/filmtrack/showtime-tracker/internal/mocks"
)

type ServerTestSuite struct {
	suite.Suite
	app            *application
	runLogRepo     *mocks.MockRunLogRepo
	reconciledRepo *mocks.MockReconciledRepo
}

func (s *ServerTestSuite) SetupTest() {
	s.runLogRepo = &mocks.MockRunLogRepo{}
	s.reconciledRepo = &mocks.MockReconciledRepo{}

	s.app = newTestApplication(func(a *application) {
		a.runLogRepo = s.runLogRepo
		a.reconciledRepo = s.reconciledRepo
	})
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func (s *ServerTestSuite) TestHealthcheck() {
	r := httptest.NewRequest(http.MethodGet, "/v1/healthcheck", nil)
	w := httptest.NewRecorder()

	s.app.routes().ServeHTTP(w, r)

	s.Equal(http.StatusOK, w.Code)

	var body map[string]any
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&body))
	s.Equal("available", body["status"])
}

func (s *ServerTestSuite) TestReport() {
	tests := []struct {
		name       string
		loadFunc   func(ctx context.Context) (*domain.ReconciledDataset, error)
		wantStatus int
	}{
		{
			name: "returns the latest reconciled dataset",
			loadFunc: func(ctx context.Context) (*domain.ReconciledDataset, error) {
				return &domain.ReconciledDataset{
					LastUpdated: "2026-02-27 06:30:00 PM",
					Shows: []domain.ReconciledShow{
						{TheaterName: "Alpha Cinema", FinalGross: decimal.RequireFromString("1590.00")},
					},
				}, nil
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "404 before the first run has written a report",
			loadFunc: func(ctx context.Context) (*domain.ReconciledDataset, error) {
				return nil, domain.ErrNoReportData
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name: "500 when the report cannot be read",
			loadFunc: func(ctx context.Context) (*domain.ReconciledDataset, error) {
				return nil, errors.New("disk failure")
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.reconciledRepo.LoadFunc = tt.loadFunc

			r := httptest.NewRequest(http.MethodGet, "/v1/report", nil)
			w := httptest.NewRecorder()

			s.app.routes().ServeHTTP(w, r)

			s.Equal(tt.wantStatus, w.Code)

			if tt.wantStatus == http.StatusOK {
				var body domain.ReconciledDataset
				s.Require().NoError(json.NewDecoder(w.Body).Decode(&body))
				s.Len(body.Shows, 1)
				s.Equal("Alpha Cinema", body.Shows[0].TheaterName)
			}
		})
	}
}

func (s *ServerTestSuite) TestSummary() {
	s.runLogRepo.LatestFunc = func(ctx context.Context) (*domain.RunSummary, error) {
		return &domain.RunSummary{RunID: "run-9", TotalShows: 12}, nil
	}

	r := httptest.NewRequest(http.MethodGet, "/v1/summary", nil)
	w := httptest.NewRecorder()

	s.app.routes().ServeHTTP(w, r)

	s.Equal(http.StatusOK, w.Code)

	var body domain.RunSummary
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&body))
	s.Equal("run-9", body.RunID)
	s.Equal(12, body.TotalShows)
}

func (s *ServerTestSuite) TestUnknownRouteIs404() {
	r := httptest.NewRequest(http.MethodGet, "/v1/nope", nil)
	w := httptest.NewRecorder()

	s.app.routes().ServeHTTP(w, r)

	s.Equal(http.StatusNotFound, w.Code)
}
