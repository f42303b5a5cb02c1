// Package metrics defines the observability events emitted by the
// forecasting service and the sink interface infra adapters implement.
package metrics

import "time"

// ForecastEvent describes one completed forecast request.
type ForecastEvent struct {
	RequestID string
	ZoneID    string
	Day       int
	Hour      int
	Occupancy float64
	// OK is false when the request resolved to "no result".
	OK       bool
	CacheHit bool
	Latency  time.Duration
	Time     time.Time
}

// ReadingEvent describes one ingested live occupancy reading.
type ReadingEvent struct {
	ZoneID    string
	Day       int
	Hour      int
	Occupancy float64
	Time      time.Time
}

// TrainingEvent summarises one completed training run.
type TrainingEvent struct {
	ModelID  string
	Windows  int
	TestMSE  float64
	Duration time.Duration
	Time     time.Time
}

// Sink receives service events. Implementations must be safe for
// concurrent use.
type Sink interface {
	RecordForecast(ev ForecastEvent) error
	RecordReading(ev ReadingEvent) error
	RecordTraining(ev TrainingEvent) error
	// RecordResourceFailure counts a failed dataset or model load;
	// kind is "dataset" or "model".
	RecordResourceFailure(kind string) error
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) RecordForecast(ForecastEvent) error { return nil }
func (NopSink) RecordReading(ReadingEvent) error   { return nil }
func (NopSink) RecordTraining(TrainingEvent) error { return nil }
func (NopSink) RecordResourceFailure(string) error { return nil }
