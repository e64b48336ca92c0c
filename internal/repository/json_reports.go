package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/filmtrack/showtime-tracker/internal/domain"
)

// JSONErrorLogRepository writes the error snapshot file, fully replaced each run.
type JSONErrorLogRepository struct {
	path string
}

func NewJSONErrorLogRepository(path string) *JSONErrorLogRepository {
	return &JSONErrorLogRepository{path: path}
}

func (r *JSONErrorLogRepository) Save(_ context.Context, log domain.ErrorLog) error {
	return writeJSONFile(r.path, log)
}

// JSONRunLogRepository maintains the append-only run log: the file holds an
// ordered JSON list of summaries and gains one entry per run.
type JSONRunLogRepository struct {
	path   string
	logger *slog.Logger
}

func NewJSONRunLogRepository(path string, logger *slog.Logger) *JSONRunLogRepository {
	return &JSONRunLogRepository{
		path:   path,
		logger: logger,
	}
}

func (r *JSONRunLogRepository) Append(_ context.Context, summary domain.RunSummary) error {
	entries := r.load()
	entries = append(entries, summary)

	return writeJSONFile(r.path, entries)
}

func (r *JSONRunLogRepository) Latest(_ context.Context) (*domain.RunSummary, error) {
	entries := r.load()
	if len(entries) == 0 {
		return nil, domain.ErrNoReportData
	}

	return &entries[len(entries)-1], nil
}

func (r *JSONRunLogRepository) load() []domain.RunSummary {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			r.logger.Warn("could not read run log, starting a new one", "path", r.path, "error", err)
		}
		return nil
	}

	var entries []domain.RunSummary
	if err := json.Unmarshal(data, &entries); err != nil {
		r.logger.Warn("could not parse run log, starting a new one", "path", r.path, "error", err)
		return nil
	}

	return entries
}

// JSONReconciledRepository writes the reconciled dataset file, fully replaced
// each run.
type JSONReconciledRepository struct {
	path string
}

func NewJSONReconciledRepository(path string) *JSONReconciledRepository {
	return &JSONReconciledRepository{path: path}
}

func (r *JSONReconciledRepository) Save(_ context.Context, dataset domain.ReconciledDataset) error {
	return writeJSONFile(r.path, dataset)
}

func (r *JSONReconciledRepository) Load(_ context.Context) (*domain.ReconciledDataset, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrNoReportData
		}
		return nil, fmt.Errorf("reading reconciled dataset %s: %w", r.path, err)
	}

	var dataset domain.ReconciledDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		return nil, fmt.Errorf("parsing reconciled dataset %s: %w", r.path, err)
	}

	return &dataset, nil
}
