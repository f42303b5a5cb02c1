package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/pun33th45/spotmate/core/dataset"
	"github.com/pun33th45/spotmate/core/model"
)

func sampleRecords() []model.OccupancyRecord {
	return []model.OccupancyRecord{
		{ZoneID: "Z1", Day: 1, Hour: 0, Occupancy: 42, IsWeekend: false},
		{ZoneID: "Z1", Day: 1, Hour: 1, Occupancy: 43.5, IsWeekend: false},
		{ZoneID: "Z2", Day: 6, Hour: 12, Occupancy: 80, IsWeekend: true},
	}
}

func TestCSVStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "occupancy.csv")
	st := NewCSVStore(path)
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

func TestCSVStoreLoadMissing(t *testing.T) {
	st := NewCSVStore(filepath.Join(t.TempDir(), "absent.csv"))
	_, err := st.Load(context.Background())
	if !errors.Is(err, dataset.ErrNotFound) {
		t.Fatalf("expected ErrNotFound got %v", err)
	}
}

func TestCSVStoreAppendCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "occupancy.csv")
	st := NewCSVStore(path)
	ctx := context.Background()

	rec := model.OccupancyRecord{ZoneID: "Z1", Day: 2, Hour: 5, Occupancy: 61}
	if err := st.Append(ctx, rec); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := st.Append(ctx, model.OccupancyRecord{ZoneID: "Z1", Day: 2, Hour: 6, Occupancy: 63}); err != nil {
		t.Fatalf("append: %v", err)
	}
	got, err := st.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records want 2", len(got))
	}
	if got[0] != rec {
		t.Fatalf("got %+v want %+v", got[0], rec)
	}
}
