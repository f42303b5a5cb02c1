// Package store provides the dataset store backends: a CSV flat file
// matching the training pipeline's table format, and a SQLite
// database for deployments that prefer a queryable file.
package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/pun33th45/spotmate/core/dataset"
	"github.com/pun33th45/spotmate/core/model"
)

var csvHeader = []string{"zone_id", "day", "hour", "occupancy", "is_weekend"}

// CSVStore reads and writes the flat occupancy table as CSV with the
// columns zone_id, day, hour, occupancy, is_weekend (0/1).
type CSVStore struct {
	path string
	mu   sync.Mutex
}

// NewCSVStore returns a store backed by the file at path. The file is
// not created until the first Save or Append.
func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path}
}

func (s *CSVStore) Load(ctx context.Context) ([]model.OccupancyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, dataset.ErrNotFound
		}
		return nil, err
	}
	defer func() { _ = f.Close() }()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	records := make([]model.OccupancyRecord, 0, len(rows)-1)
	for i, row := range rows {
		if i == 0 && row[0] == csvHeader[0] {
			continue
		}
		rec, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", s.path, i+1, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *CSVStore) Save(ctx context.Context, records []model.OccupancyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.Create(s.path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		_ = f.Close()
		return err
	}
	for _, rec := range records {
		if err := w.Write(formatRow(rec)); err != nil {
			_ = f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func (s *CSVStore) Append(ctx context.Context, rec model.OccupancyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, statErr := os.Stat(s.path)
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	w := csv.NewWriter(f)
	if os.IsNotExist(statErr) {
		if err := w.Write(csvHeader); err != nil {
			return err
		}
	}
	if err := w.Write(formatRow(rec)); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func parseRow(row []string) (model.OccupancyRecord, error) {
	var rec model.OccupancyRecord
	if len(row) != len(csvHeader) {
		return rec, fmt.Errorf("expected %d columns, got %d", len(csvHeader), len(row))
	}
	rec.ZoneID = row[0]
	day, err := strconv.Atoi(row[1])
	if err != nil {
		return rec, fmt.Errorf("day: %w", err)
	}
	hour, err := strconv.Atoi(row[2])
	if err != nil {
		return rec, fmt.Errorf("hour: %w", err)
	}
	occ, err := strconv.ParseFloat(row[3], 64)
	if err != nil {
		return rec, fmt.Errorf("occupancy: %w", err)
	}
	weekend, err := strconv.Atoi(row[4])
	if err != nil {
		return rec, fmt.Errorf("is_weekend: %w", err)
	}
	rec.Day, rec.Hour, rec.Occupancy, rec.IsWeekend = day, hour, occ, weekend != 0
	return rec, nil
}

func formatRow(rec model.OccupancyRecord) []string {
	weekend := "0"
	if rec.IsWeekend {
		weekend = "1"
	}
	return []string{
		rec.ZoneID,
		strconv.Itoa(rec.Day),
		strconv.Itoa(rec.Hour),
		strconv.FormatFloat(rec.Occupancy, 'f', -1, 64),
		weekend,
	}
}
