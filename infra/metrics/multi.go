package metrics

import (
	"errors"

	coremetrics "github.com/pun33th45/spotmate/core/metrics"
)

// MultiSink fans events out to several sinks, collecting all errors.
type MultiSink struct {
	sinks []coremetrics.Sink
}

// NewMultiSink builds a fan-out sink.
func NewMultiSink(sinks ...coremetrics.Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

func (m *MultiSink) RecordForecast(ev coremetrics.ForecastEvent) error {
	return m.each(func(s coremetrics.Sink) error { return s.RecordForecast(ev) })
}

func (m *MultiSink) RecordReading(ev coremetrics.ReadingEvent) error {
	return m.each(func(s coremetrics.Sink) error { return s.RecordReading(ev) })
}

func (m *MultiSink) RecordTraining(ev coremetrics.TrainingEvent) error {
	return m.each(func(s coremetrics.Sink) error { return s.RecordTraining(ev) })
}

func (m *MultiSink) RecordResourceFailure(kind string) error {
	return m.each(func(s coremetrics.Sink) error { return s.RecordResourceFailure(kind) })
}

func (m *MultiSink) each(fn func(coremetrics.Sink) error) error {
	var errs []error
	for _, s := range m.sinks {
		if err := fn(s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
