// Package export writes forecast day series in interchange formats.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/pun33th45/spotmate/core/forecast"
)

// WriteJSON writes the day series to w in JSON format.
func WriteJSON(w io.Writer, series []forecast.HourForecast) error {
	enc := json.NewEncoder(w)
	return enc.Encode(series)
}

// WriteCSV writes the day series to w with one row per hour.
func WriteCSV(w io.Writer, series []forecast.HourForecast) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"hour", "occupancy", "fallback"}); err != nil {
		return err
	}
	for _, h := range series {
		rec := []string{
			strconv.Itoa(h.Hour),
			strconv.FormatFloat(h.Occupancy, 'f', 2, 64),
			strconv.FormatBool(h.Fallback),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
