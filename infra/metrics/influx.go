package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/pun33th45/spotmate/core/metrics"
	"github.com/pun33th45/spotmate/infra/logger"
)

// InfluxSink writes service events to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a sink for the given InfluxDB endpoint.
func NewInfluxSink(cfg coremetrics.Config) *InfluxSink {
	client := influxdb2.NewClientWithOptions(cfg.InfluxURL, cfg.InfluxToken,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.InfluxOrg, cfg.InfluxBucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a
// NopSink when the health check fails, so a broken endpoint never
// breaks forecasting.
func NewInfluxSinkWithFallback(cfg coremetrics.Config) coremetrics.Sink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

func (s *InfluxSink) RecordForecast(ev coremetrics.ForecastEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("forecast_request").
		AddTag("zone_id", ev.ZoneID).
		AddTag("available", strconv.FormatBool(ev.OK)).
		AddTag("cache_hit", strconv.FormatBool(ev.CacheHit)).
		AddTag("request_id", ev.RequestID).
		AddField("day", ev.Day).
		AddField("hour", ev.Hour).
		AddField("occupancy", ev.Occupancy).
		AddField("latency_ms", ev.Latency.Seconds()*1000).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

func (s *InfluxSink) RecordReading(ev coremetrics.ReadingEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("occupancy_reading").
		AddTag("zone_id", ev.ZoneID).
		AddField("day", ev.Day).
		AddField("hour", ev.Hour).
		AddField("occupancy", ev.Occupancy).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

func (s *InfluxSink) RecordTraining(ev coremetrics.TrainingEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("training_run").
		AddTag("model_id", ev.ModelID).
		AddField("windows", ev.Windows).
		AddField("test_mse", ev.TestMSE).
		AddField("duration_s", ev.Duration.Seconds()).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

func (s *InfluxSink) RecordResourceFailure(kind string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("resource_load_failure").
		AddTag("resource", kind).
		AddField("count", 1).
		SetTime(time.Now())
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying client.
func (s *InfluxSink) Close() { s.client.Close() }
