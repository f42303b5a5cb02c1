// Package app wires the stores, predictor, ingestion and servers into
// a runnable service.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	apiforecast "github.com/pun33th45/spotmate/api/forecast"
	"github.com/pun33th45/spotmate/config"
	"github.com/pun33th45/spotmate/core/dataset"
	"github.com/pun33th45/spotmate/core/forecast"
	coremetrics "github.com/pun33th45/spotmate/core/metrics"
	"github.com/pun33th45/spotmate/core/model"
	"github.com/pun33th45/spotmate/infra/logger"
	"github.com/pun33th45/spotmate/infra/metrics"
	"github.com/pun33th45/spotmate/infra/mqtt"
	"github.com/pun33th45/spotmate/infra/store"
	"github.com/pun33th45/spotmate/internal/eventbus"
)

// Service orchestrates the forecast API and the sensor ingestion
// pipeline.
type Service struct {
	cfg       *config.Config
	log       logger.Logger
	store     dataset.Store
	sink      coremetrics.Sink
	forecast  *forecast.Service
	handler   *apiforecast.Handler
	bus       *eventbus.Bus[model.OccupancyReading]
	collector *mqtt.Collector
	closers   []func() error
}

// NewStore builds the configured dataset store backend.
func NewStore(cfg config.DatasetConfig) (dataset.Store, func() error, error) {
	switch cfg.Backend {
	case "sqlite":
		st, err := store.NewSQLiteStore(cfg.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite store: %w", err)
		}
		return st, st.Close, nil
	case "csv":
		return store.NewCSVStore(cfg.Path), nil, nil
	}
	return nil, nil, fmt.Errorf("unsupported dataset backend %q", cfg.Backend)
}

// NewSink builds the configured metrics sink fan-out.
func NewSink(cfg coremetrics.Config) (coremetrics.Sink, []func() error, error) {
	var sinks []coremetrics.Sink
	var closers []func() error
	if cfg.PrometheusEnabled {
		sink, err := metrics.NewPromSink()
		if err != nil {
			return nil, nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.InfluxEnabled {
		sink := metrics.NewInfluxSinkWithFallback(cfg)
		if closer, ok := sink.(*metrics.InfluxSink); ok {
			closers = append(closers, func() error { closer.Close(); return nil })
		}
		sinks = append(sinks, sink)
	}
	switch len(sinks) {
	case 0:
		return coremetrics.NopSink{}, nil, nil
	case 1:
		return sinks[0], closers, nil
	}
	return metrics.NewMultiSink(sinks...), closers, nil
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	log := logger.New("service")

	st, storeClose, err := NewStore(cfg.Dataset)
	if err != nil {
		return nil, err
	}
	svc := &Service{cfg: cfg, log: log, store: st}
	if storeClose != nil {
		svc.closers = append(svc.closers, storeClose)
	}

	sink, sinkClosers, err := NewSink(cfg.Metrics)
	if err != nil {
		return nil, err
	}
	svc.sink = sink
	svc.closers = append(svc.closers, sinkClosers...)

	res := forecast.NewResources(st, cfg.Model.Path, sink, logger.New("resources"))
	svc.forecast = forecast.NewService(cfg.Forecast, res, sink, logger.New("forecast"))
	svc.handler = apiforecast.NewHandler(svc.forecast, logger.New("api"))

	if cfg.MQTT.Enabled {
		svc.bus = eventbus.New[model.OccupancyReading]()
		collector, err := mqtt.NewCollector(cfg.MQTT, svc.bus, sink)
		if err != nil {
			return nil, fmt.Errorf("mqtt collector: %w", err)
		}
		svc.collector = collector
	}
	return svc, nil
}

// Forecast exposes the prediction service, used by the CLI commands.
func (s *Service) Forecast() *forecast.Service { return s.forecast }

// Run starts the HTTP server, the metrics endpoint and the reading
// persister, then blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	if s.bus != nil {
		go s.persistReadings(ctx)
	}

	mux := http.NewServeMux()
	s.handler.Register(mux)
	srv := &http.Server{Addr: s.cfg.API.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("http server listening on %s", s.cfg.API.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// persistReadings drains the reading bus into the dataset store and
// refreshes the predictor so new observations become visible.
func (s *Service) persistReadings(ctx context.Context) {
	sub := s.bus.Subscribe()
	defer s.bus.Unsubscribe(sub)
	for {
		select {
		case <-ctx.Done():
			return
		case reading, open := <-sub:
			if !open {
				return
			}
			if err := s.store.Append(ctx, reading.Record()); err != nil {
				s.log.Errorf("persist reading for zone %s: %v", reading.ZoneID, err)
				continue
			}
			s.forecast.Refresh()
		}
	}
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.collector != nil {
		s.collector.Close()
	}
	if s.bus != nil {
		s.bus.Close()
	}
	var errs []error
	for _, fn := range s.closers {
		if err := fn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
