package dataset

import (
	"testing"

	"github.com/pun33th45/spotmate/core/model"
)

func seqRecords(zone string, n int) []model.OccupancyRecord {
	records := make([]model.OccupancyRecord, n)
	for i := range records {
		records[i] = model.OccupancyRecord{
			ZoneID:    zone,
			Day:       i/24 + 1,
			Hour:      i % 24,
			Occupancy: float64(i % 100),
		}
	}
	return records
}

func TestSortRecordsCanonicalOrder(t *testing.T) {
	records := []model.OccupancyRecord{
		{ZoneID: "Z2", Day: 1, Hour: 5},
		{ZoneID: "Z1", Day: 2, Hour: 0},
		{ZoneID: "Z1", Day: 1, Hour: 7},
		{ZoneID: "Z1", Day: 1, Hour: 3},
	}
	SortRecords(records)
	want := []struct {
		zone      string
		day, hour int
	}{
		{"Z1", 1, 3}, {"Z1", 1, 7}, {"Z1", 2, 0}, {"Z2", 1, 5},
	}
	for i, w := range want {
		r := records[i]
		if r.ZoneID != w.zone || r.Day != w.day || r.Hour != w.hour {
			t.Fatalf("position %d: got %s/%d/%d want %s/%d/%d",
				i, r.ZoneID, r.Day, r.Hour, w.zone, w.day, w.hour)
		}
	}
}

func TestBuildWindowsCount(t *testing.T) {
	records := seqRecords("Z1", 100)
	windows := BuildWindows(records, PrepareConfig{SeqLen: 3})
	if len(windows) != 97 {
		t.Fatalf("expected 97 windows got %d", len(windows))
	}
	for _, w := range windows {
		if len(w.Input) != 3 {
			t.Fatalf("window input length %d", len(w.Input))
		}
		for _, v := range w.Input {
			if v < 0 || v > 1 {
				t.Fatalf("input %g not normalized", v)
			}
		}
	}
	// First window is hours 0..2 predicting hour 3.
	if windows[0].Target != records[3].Occupancy/NormalizationDivisor {
		t.Fatalf("target %g, want %g", windows[0].Target, records[3].Occupancy/NormalizationDivisor)
	}
}

func TestBuildWindowsSegmented(t *testing.T) {
	records := append(seqRecords("Z1", 10), seqRecords("Z2", 10)...)
	SortRecords(records)

	global := BuildWindows(records, PrepareConfig{SeqLen: 3})
	if len(global) != 17 {
		t.Fatalf("global slide: expected 17 windows got %d", len(global))
	}
	segmented := BuildWindows(records, PrepareConfig{SeqLen: 3, SegmentByZone: true})
	if len(segmented) != 14 {
		t.Fatalf("segmented slide: expected 14 windows got %d", len(segmented))
	}
}

func TestBuildWindowsTooShort(t *testing.T) {
	if got := BuildWindows(seqRecords("Z1", 3), PrepareConfig{SeqLen: 3}); got != nil {
		t.Fatalf("expected no windows got %d", len(got))
	}
}

func TestSplitWindowsDeterministic(t *testing.T) {
	windows := BuildWindows(seqRecords("Z1", 53), PrepareConfig{})
	cfg := PrepareConfig{TestFraction: 0.2, Seed: 42}
	tr1, te1 := SplitWindows(windows, cfg)
	tr2, te2 := SplitWindows(windows, cfg)
	if len(te1) != len(windows)/5 {
		t.Fatalf("test partition %d, want %d", len(te1), len(windows)/5)
	}
	if len(tr1)+len(te1) != len(windows) {
		t.Fatalf("partitions do not cover the population")
	}
	for i := range tr1 {
		if tr1[i].Target != tr2[i].Target {
			t.Fatalf("split is not deterministic at train index %d", i)
		}
	}
	for i := range te1 {
		if te1[i].Target != te2[i].Target {
			t.Fatalf("split is not deterministic at test index %d", i)
		}
	}
}
