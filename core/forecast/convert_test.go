package forecast

import "testing"

func TestConvertTo24Hour(t *testing.T) {
	cases := []struct {
		hour     int
		meridiem string
		want     int
	}{
		{12, "AM", 0},
		{1, "AM", 1},
		{11, "AM", 11},
		{12, "PM", 12},
		{1, "PM", 13},
		{11, "PM", 23},
		{5, "pm", 17},
		{5, " am ", 5},
	}
	for _, c := range cases {
		got, err := ConvertTo24Hour(c.hour, c.meridiem)
		if err != nil {
			t.Fatalf("%d %s: %v", c.hour, c.meridiem, err)
		}
		if got != c.want {
			t.Fatalf("%d %s: got %d want %d", c.hour, c.meridiem, got, c.want)
		}
	}
}

func TestConvertTo24HourRejectsBadInput(t *testing.T) {
	if _, err := ConvertTo24Hour(0, "AM"); err == nil {
		t.Fatal("expected error for hour 0")
	}
	if _, err := ConvertTo24Hour(13, "PM"); err == nil {
		t.Fatal("expected error for hour 13")
	}
	if _, err := ConvertTo24Hour(5, "XX"); err == nil {
		t.Fatal("expected error for bad meridiem")
	}
}
