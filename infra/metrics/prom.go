// Package metrics provides the Prometheus and InfluxDB sink
// implementations plus fan-out over multiple sinks.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/pun33th45/spotmate/core/metrics"
)

// PromSink records service events in Prometheus metrics.
type PromSink struct {
	forecasts   *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	cacheHits   *prometheus.CounterVec
	readings    *prometheus.CounterVec
	loadFails   *prometheus.CounterVec
	testMSE     prometheus.Gauge
	trainedUnix prometheus.Gauge
}

// NewPromSink registers the forecast metrics on the default
// Prometheus registerer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided
// registerer. A nil registerer defaults to the global one.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	forecasts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "spotmate_forecasts_total",
		Help: "Total number of forecast requests by outcome",
	}, []string{"zone_id", "available"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "spotmate_forecast_latency_seconds",
		Help:    "Forecast request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"zone_id"})
	cacheHits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "spotmate_forecast_cache_total",
		Help: "Result cache lookups by outcome",
	}, []string{"hit"})
	readings := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "spotmate_readings_ingested_total",
		Help: "Live occupancy readings ingested",
	}, []string{"zone_id"})
	loadFails := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "spotmate_resource_load_failures_total",
		Help: "Dataset or model load failures",
	}, []string{"resource"})
	testMSE := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "spotmate_model_test_mse",
		Help: "Test MSE of the last training run",
	})
	trainedUnix := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "spotmate_model_trained_timestamp_seconds",
		Help: "Completion time of the last training run",
	})

	s := &PromSink{
		forecasts:   forecasts,
		latency:     latency,
		cacheHits:   cacheHits,
		readings:    readings,
		loadFails:   loadFails,
		testMSE:     testMSE,
		trainedUnix: trainedUnix,
	}
	collectors := []prometheus.Collector{forecasts, latency, cacheHits, readings, loadFails, testMSE, trainedUnix}
	for i, c := range collectors {
		if err := reg.Register(c); err != nil {
			are, ok := err.(prometheus.AlreadyRegisteredError)
			if !ok {
				return nil, err
			}
			switch i {
			case 0:
				s.forecasts = are.ExistingCollector.(*prometheus.CounterVec)
			case 1:
				s.latency = are.ExistingCollector.(*prometheus.HistogramVec)
			case 2:
				s.cacheHits = are.ExistingCollector.(*prometheus.CounterVec)
			case 3:
				s.readings = are.ExistingCollector.(*prometheus.CounterVec)
			case 4:
				s.loadFails = are.ExistingCollector.(*prometheus.CounterVec)
			case 5:
				s.testMSE = are.ExistingCollector.(prometheus.Gauge)
			case 6:
				s.trainedUnix = are.ExistingCollector.(prometheus.Gauge)
			}
		}
	}
	return s, nil
}

func (s *PromSink) RecordForecast(ev coremetrics.ForecastEvent) error {
	s.forecasts.WithLabelValues(ev.ZoneID, strconv.FormatBool(ev.OK)).Inc()
	s.latency.WithLabelValues(ev.ZoneID).Observe(ev.Latency.Seconds())
	s.cacheHits.WithLabelValues(strconv.FormatBool(ev.CacheHit)).Inc()
	return nil
}

func (s *PromSink) RecordReading(ev coremetrics.ReadingEvent) error {
	s.readings.WithLabelValues(ev.ZoneID).Inc()
	return nil
}

func (s *PromSink) RecordTraining(ev coremetrics.TrainingEvent) error {
	s.testMSE.Set(ev.TestMSE)
	s.trainedUnix.Set(float64(ev.Time.Unix()))
	return nil
}

func (s *PromSink) RecordResourceFailure(kind string) error {
	s.loadFails.WithLabelValues(kind).Inc()
	return nil
}
