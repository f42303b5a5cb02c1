package forecast

import (
	"context"
	"fmt"
	"math"
	"time"

	coremetrics "github.com/pun33th45/spotmate/core/metrics"
	"github.com/pun33th45/spotmate/infra/logger"
)

// Config holds the predictor settings.
type Config struct {
	// CacheTTLSeconds bounds how long a computed forecast is reused.
	CacheTTLSeconds int `json:"cache_ttl_seconds"`
	// FallbackOccupancy fills series hours that have no forecast.
	FallbackOccupancy float64 `json:"fallback_occupancy"`
}

// SetDefaults applies fallback values.
func (c *Config) SetDefaults() {
	if c.CacheTTLSeconds <= 0 {
		c.CacheTTLSeconds = int(DefaultCacheTTL / time.Second)
	}
	if c.FallbackOccupancy == 0 {
		c.FallbackOccupancy = 50
	}
}

// Validate checks the configuration ranges.
func (c Config) Validate() error {
	if c.FallbackOccupancy < 0 || c.FallbackOccupancy > 100 {
		return fmt.Errorf("fallback_occupancy must be in 0..100, got %g", c.FallbackOccupancy)
	}
	return nil
}

// HourForecast is one hour of a day series.
type HourForecast struct {
	Hour      int     `json:"hour"`
	Occupancy float64 `json:"occupancy"`
	// Fallback marks hours filled with the configured default because
	// no forecast could be produced.
	Fallback bool `json:"fallback"`
}

// Summary aggregates a day series for display.
type Summary struct {
	Best    HourForecast `json:"best"`
	Worst   HourForecast `json:"worst"`
	Average float64      `json:"average"`
}

// Service answers occupancy forecasts for (zone, day, hour) triples.
type Service struct {
	cfg   Config
	res   *Resources
	cache *resultCache
	sink  coremetrics.Sink
	log   logger.Logger
	clock func() time.Time
}

// NewService builds the predictor over the given resources.
func NewService(cfg Config, res *Resources, sink coremetrics.Sink, log logger.Logger) *Service {
	cfg.SetDefaults()
	if sink == nil {
		sink = coremetrics.NopSink{}
	}
	if log == nil {
		log = logger.Nop{}
	}
	clock := time.Now
	return &Service{
		cfg:   cfg,
		res:   res,
		cache: newResultCache(time.Duration(cfg.CacheTTLSeconds)*time.Second, clock),
		sink:  sink,
		log:   log,
		clock: clock,
	}
}

// Predict forecasts the occupancy percentage for the given zone, day
// and hour. ok is false when the model cannot answer: the hour is
// outside 0..23, has fewer preceding hours than the model's input
// window, or the dataset is missing or duplicates one of the required
// observations. An error means the dataset or model could not be
// loaded.
func (s *Service) Predict(ctx context.Context, zoneID string, day, hour int) (value float64, ok bool, err error) {
	start := s.clock()
	cached := false
	defer func() {
		if err != nil {
			return
		}
		if serr := s.sink.RecordForecast(coremetrics.ForecastEvent{
			ZoneID:    zoneID,
			Day:       day,
			Hour:      hour,
			Occupancy: value,
			OK:        ok,
			CacheHit:  cached,
			Latency:   s.clock().Sub(start),
			Time:      start,
		}); serr != nil {
			s.log.Warnf("record forecast metrics: %v", serr)
		}
	}()

	key := sampleKey{zoneID, day, hour}
	if v, wasOK, hit := s.cache.get(key); hit {
		cached = true
		return v, wasOK, nil
	}
	if hour < 0 || hour > 23 {
		s.cache.put(key, 0, false)
		return 0, false, nil
	}

	net, meta, index, err := s.res.get(ctx)
	if err != nil {
		return 0, false, err
	}

	if hour < meta.SeqLen {
		s.cache.put(key, 0, false)
		return 0, false, nil
	}
	input := make([]float64, meta.SeqLen)
	for i := 0; i < meta.SeqLen; i++ {
		h := hour - meta.SeqLen + i
		v, found := lookup(index, zoneID, day, h)
		if !found {
			s.cache.put(key, 0, false)
			return 0, false, nil
		}
		input[i] = v / meta.Normalization
	}

	out := net.Forward(input)
	pred := out[0] * meta.Normalization
	pred = math.Min(100, math.Max(0, pred))
	pred = math.Round(pred*100) / 100

	s.cache.put(key, pred, true)
	return pred, true, nil
}

// PredictSeries forecasts the first hours of a day for a zone,
// starting at midnight. hours outside 1..24 falls back to the full
// day. Hours without a forecast carry the configured fallback
// occupancy.
func (s *Service) PredictSeries(ctx context.Context, zoneID string, day, hours int) ([]HourForecast, error) {
	if hours <= 0 || hours > 24 {
		hours = 24
	}
	series := make([]HourForecast, hours)
	for hour := 0; hour < hours; hour++ {
		v, ok, err := s.Predict(ctx, zoneID, day, hour)
		if err != nil {
			return nil, err
		}
		if !ok {
			series[hour] = HourForecast{Hour: hour, Occupancy: s.cfg.FallbackOccupancy, Fallback: true}
			continue
		}
		series[hour] = HourForecast{Hour: hour, Occupancy: v}
	}
	return series, nil
}

// SummarizeSeries picks the least and most occupied hours and the
// daily average. The best hour to park is the least occupied one.
func SummarizeSeries(series []HourForecast) Summary {
	if len(series) == 0 {
		return Summary{}
	}
	sum := Summary{Best: series[0], Worst: series[0]}
	var total float64
	for _, h := range series {
		total += h.Occupancy
		if h.Occupancy < sum.Best.Occupancy {
			sum.Best = h
		}
		if h.Occupancy > sum.Worst.Occupancy {
			sum.Worst = h
		}
	}
	sum.Average = math.Round(total/float64(len(series))*100) / 100
	return sum
}

// Available reports whether the dataset and model can be loaded.
func (s *Service) Available(ctx context.Context) bool {
	_, _, _, err := s.res.get(ctx)
	return err == nil
}

// Refresh drops the result cache and reloads resources on next use.
func (s *Service) Refresh() {
	s.cache.purge()
	s.res.Invalidate()
}
