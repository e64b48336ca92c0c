package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"github.com/filmtrack/showtime-tracker/internal/domain"
)

func init() {
	// Dataset files produced by earlier versions of the tracker carry money
	// figures as bare JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// JSONDatasetRepository persists the cross-run dataset as an ordered JSON list,
// fully replaced on save. A missing file is an empty dataset; an unreadable one
// is logged and treated as empty so a corrupt file never blocks a run.
type JSONDatasetRepository struct {
	path   string
	logger *slog.Logger
}

func NewJSONDatasetRepository(path string, logger *slog.Logger) *JSONDatasetRepository {
	return &JSONDatasetRepository{
		path:   path,
		logger: logger,
	}
}

func (r *JSONDatasetRepository) Load(_ context.Context) ([]domain.ShowRecord, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading dataset %s: %w", r.path, err)
	}

	var records []domain.ShowRecord
	if err := json.Unmarshal(data, &records); err != nil {
		r.logger.Warn("could not parse previous dataset, starting empty", "path", r.path, "error", err)
		return nil, nil
	}

	return records, nil
}

func (r *JSONDatasetRepository) Save(_ context.Context, records []domain.ShowRecord) error {
	return writeJSONFile(r.path, records)
}

// writeJSONFile writes v atomically: marshal, write a temp file in the target
// directory, rename over the destination.
func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	return os.Rename(tmp.Name(), path)
}
