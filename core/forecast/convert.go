package forecast

import (
	"fmt"
	"strings"
)

// ConvertTo24Hour maps a 12-hour clock reading to the 0..23 range the
// forecaster works in. 12 AM maps to 0 and 12 PM stays 12.
func ConvertTo24Hour(hour int, meridiem string) (int, error) {
	if hour < 1 || hour > 12 {
		return 0, fmt.Errorf("hour must be in 1..12, got %d", hour)
	}
	switch strings.ToUpper(strings.TrimSpace(meridiem)) {
	case "AM":
		if hour == 12 {
			return 0, nil
		}
		return hour, nil
	case "PM":
		if hour == 12 {
			return 12, nil
		}
		return hour + 12, nil
	}
	return 0, fmt.Errorf("meridiem must be AM or PM, got %q", meridiem)
}
