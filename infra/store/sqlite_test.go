package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/pun33th45/spotmate/core/dataset"
	"github.com/pun33th45/spotmate/core/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := NewSQLiteStore(filepath.Join(t.TempDir(), "occupancy.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Errorf("close: %v", err)
		}
	})
	return st
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	st := newTestSQLite(t)
	ctx := context.Background()

	records := sampleRecords()
	if err := st.Save(ctx, records); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := st.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != len(records) {
		t.Fatalf("got %d records want %d", len(got), len(records))
	}
	for i := range records {
		if got[i] != records[i] {
			t.Fatalf("record %d: got %+v want %+v", i, got[i], records[i])
		}
	}
}

func TestSQLiteStoreLoadEmpty(t *testing.T) {
	st := newTestSQLite(t)
	_, err := st.Load(context.Background())
	if !errors.Is(err, dataset.ErrNotFound) {
		t.Fatalf("expected ErrNotFound got %v", err)
	}
}

func TestSQLiteStoreAppendUpserts(t *testing.T) {
	st := newTestSQLite(t)
	ctx := context.Background()

	rec := model.OccupancyRecord{ZoneID: "Z1", Day: 1, Hour: 9, Occupancy: 70}
	if err := st.Append(ctx, rec); err != nil {
		t.Fatalf("append: %v", err)
	}
	rec.Occupancy = 75
	if err := st.Append(ctx, rec); err != nil {
		t.Fatalf("append update: %v", err)
	}
	got, err := st.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d records want 1", len(got))
	}
	if got[0].Occupancy != 75 {
		t.Fatalf("occupancy %g, want 75", got[0].Occupancy)
	}
}

func TestSQLiteStoreSaveReplaces(t *testing.T) {
	st := newTestSQLite(t)
	ctx := context.Background()

	if err := st.Save(ctx, sampleRecords()); err != nil {
		t.Fatalf("save: %v", err)
	}
	replacement := []model.OccupancyRecord{{ZoneID: "Z9", Day: 3, Hour: 3, Occupancy: 10}}
	if err := st.Save(ctx, replacement); err != nil {
		t.Fatalf("save replacement: %v", err)
	}
	got, err := st.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 || got[0].ZoneID != "Z9" {
		t.Fatalf("got %+v want only Z9", got)
	}
}
