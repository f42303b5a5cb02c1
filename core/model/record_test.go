package model

import "testing"

func TestParseZoneType(t *testing.T) {
	for _, s := range []string{"office", "mall", "residential", "hospital", "station"} {
		if _, err := ParseZoneType(s); err != nil {
			t.Fatalf("%s: %v", s, err)
		}
	}
	if _, err := ParseZoneType("airport"); err == nil {
		t.Fatal("expected error for unknown type")
	}
}

func TestRecordValidate(t *testing.T) {
	valid := OccupancyRecord{ZoneID: "Z1", Day: 1, Hour: 0, Occupancy: 50}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid record rejected: %v", err)
	}
	bad := []OccupancyRecord{
		{ZoneID: "", Day: 1, Hour: 0, Occupancy: 50},
		{ZoneID: "Z1", Day: 0, Hour: 0, Occupancy: 50},
		{ZoneID: "Z1", Day: 1, Hour: 24, Occupancy: 50},
		{ZoneID: "Z1", Day: 1, Hour: 0, Occupancy: 101},
		{ZoneID: "Z1", Day: 1, Hour: 0, Occupancy: -1},
	}
	for i, r := range bad {
		if err := r.Validate(); err == nil {
			t.Fatalf("case %d: expected error for %+v", i, r)
		}
	}
}

func TestIsWeekendDay(t *testing.T) {
	weekends := map[int]bool{
		6: true, 7: true, 13: true, 14: true,
		1: false, 5: false, 8: false, 12: false,
	}
	for day, want := range weekends {
		if got := IsWeekendDay(day); got != want {
			t.Fatalf("day %d: got %v want %v", day, got, want)
		}
	}
}

func TestReadingRecordDerivesWeekend(t *testing.T) {
	r := OccupancyReading{ZoneID: "Z1", Day: 7, Hour: 9, Occupancy: 60}
	rec := r.Record()
	if !rec.IsWeekend {
		t.Fatal("day 7 should be a weekend")
	}
	if rec.ZoneID != "Z1" || rec.Hour != 9 || rec.Occupancy != 60 {
		t.Fatalf("unexpected record %+v", rec)
	}
}
