package forecast

import (
	"context"
	"math"
	"math/rand"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pun33th45/spotmate/core/dataset"
	"github.com/pun33th45/spotmate/core/model"
	"github.com/pun33th45/spotmate/core/seqnet"
)

type memStore struct {
	mu      sync.Mutex
	records []model.OccupancyRecord
	loads   int
}

func (s *memStore) Load(context.Context) ([]model.OccupancyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	out := make([]model.OccupancyRecord, len(s.records))
	copy(out, s.records)
	return out, nil
}

func (s *memStore) Save(_ context.Context, records []model.OccupancyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = records
	return nil
}

func (s *memStore) Append(_ context.Context, rec model.OccupancyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

func testDayRecords(zone string, day int) []model.OccupancyRecord {
	records := make([]model.OccupancyRecord, 0, 24)
	for h := 0; h < 24; h++ {
		records = append(records, model.OccupancyRecord{
			ZoneID:    zone,
			Day:       day,
			Hour:      h,
			Occupancy: float64(40 + h),
			IsWeekend: model.IsWeekendDay(day),
		})
	}
	return records
}

func writeTestModel(t *testing.T) string {
	t.Helper()
	rng := rand.New(rand.NewSource(5))
	net := seqnet.New([]seqnet.Layer{
		seqnet.NewGRU(1, 4, 3, rng),
		seqnet.NewDense(4, 1, seqnet.Linear{}, rng),
	}, seqnet.MSE{}, seqnet.NewAdam(0.001))
	path := filepath.Join(t.TempDir(), "model.gob")
	require.NoError(t, seqnet.Save(path, net, seqnet.Meta{
		ModelID:       "test-model",
		SeqLen:        3,
		Features:      1,
		Normalization: dataset.NormalizationDivisor,
	}))
	return path
}

func newTestService(t *testing.T, store *memStore) *Service {
	t.Helper()
	res := NewResources(store, writeTestModel(t), nil, nil)
	return NewService(Config{}, res, nil, nil)
}

func TestPredictEarlyHoursHaveNoResult(t *testing.T) {
	store := &memStore{records: testDayRecords("Z1", 1)}
	svc := newTestService(t, store)
	for hour := 0; hour < 3; hour++ {
		_, ok, err := svc.Predict(context.Background(), "Z1", 1, hour)
		require.NoError(t, err)
		require.False(t, ok, "hour %d has fewer than 3 preceding hours", hour)
	}
}

func TestPredictReturnsClampedRoundedValue(t *testing.T) {
	store := &memStore{records: testDayRecords("Z1", 1)}
	svc := newTestService(t, store)
	for hour := 3; hour < 24; hour++ {
		v, ok, err := svc.Predict(context.Background(), "Z1", 1, hour)
		require.NoError(t, err)
		require.True(t, ok, "hour %d", hour)
		require.GreaterOrEqual(t, v, 0.0)
		require.LessOrEqual(t, v, 100.0)
		scaled := v * 100
		require.InDelta(t, math.Round(scaled), scaled, 1e-9, "hour %d not rounded to 2 decimals", hour)
	}
}

func TestPredictMissingHistoryHasNoResult(t *testing.T) {
	store := &memStore{records: testDayRecords("Z1", 1)}
	svc := newTestService(t, store)
	_, ok, err := svc.Predict(context.Background(), "Z9", 1, 10)
	require.NoError(t, err)
	require.False(t, ok)

	// Day 2 has no observations either.
	_, ok, err = svc.Predict(context.Background(), "Z1", 2, 10)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestPredictOutOfRangeHourHasNoResult(t *testing.T) {
	store := &memStore{records: testDayRecords("Z1", 1)}
	svc := newTestService(t, store)
	for _, hour := range []int{-1, 24, 30} {
		_, ok, err := svc.Predict(context.Background(), "Z1", 1, hour)
		require.NoError(t, err, "hour %d", hour)
		require.False(t, ok, "hour %d", hour)
	}
	// The out-of-range result is cached like any other no-result, so
	// the resources stay untouched on repeats.
	loads := store.loads
	_, ok, err := svc.Predict(context.Background(), "Z1", 1, 24)
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, loads, store.loads)
}

func TestPredictDuplicateRowsHaveNoResult(t *testing.T) {
	records := append(testDayRecords("Z1", 1), model.OccupancyRecord{
		ZoneID:    "Z1",
		Day:       1,
		Hour:      8,
		Occupancy: 99,
	})
	store := &memStore{records: records}
	svc := newTestService(t, store)

	// Hours whose lookback window touches the duplicated 08:00 slot
	// cannot be answered.
	for _, hour := range []int{9, 10, 11} {
		_, ok, err := svc.Predict(context.Background(), "Z1", 1, hour)
		require.NoError(t, err, "hour %d", hour)
		require.False(t, ok, "hour %d", hour)
	}

	// A window clear of the duplicate still predicts.
	_, ok, err := svc.Predict(context.Background(), "Z1", 1, 20)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestPredictResultCacheExpires(t *testing.T) {
	store := &memStore{records: testDayRecords("Z1", 1)}
	svc := newTestService(t, store)

	now := time.Unix(1000, 0)
	clock := func() time.Time { return now }
	svc.clock = clock
	svc.cache = newResultCache(5*time.Minute, clock)

	first, ok, err := svc.Predict(context.Background(), "Z1", 1, 10)
	require.NoError(t, err)
	require.True(t, ok)

	// Poison the cache entry to prove the next hit is served from it.
	svc.cache.put(sampleKey{"Z1", 1, 10}, 99.99, true)
	v, ok, err := svc.Predict(context.Background(), "Z1", 1, 10)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 99.99, v)

	// Past the TTL the entry is recomputed from the model.
	now = now.Add(5*time.Minute + time.Second)
	v, ok, err = svc.Predict(context.Background(), "Z1", 1, 10)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, first, v)
}

func TestPredictSeriesFillsFallback(t *testing.T) {
	store := &memStore{records: testDayRecords("Z1", 1)}
	svc := newTestService(t, store)

	series, err := svc.PredictSeries(context.Background(), "Z1", 1, 24)
	require.NoError(t, err)
	require.Len(t, series, 24)
	for hour, h := range series {
		require.Equal(t, hour, h.Hour)
		if hour < 3 {
			require.True(t, h.Fallback, "hour %d", hour)
			require.Equal(t, 50.0, h.Occupancy)
		} else {
			require.False(t, h.Fallback, "hour %d", hour)
		}
	}
}

func TestPredictSeriesHonorsHours(t *testing.T) {
	store := &memStore{records: testDayRecords("Z1", 1)}
	svc := newTestService(t, store)

	series, err := svc.PredictSeries(context.Background(), "Z1", 1, 6)
	require.NoError(t, err)
	require.Len(t, series, 6)
	require.Equal(t, 5, series[5].Hour)

	// Out-of-range counts fall back to the full day.
	series, err = svc.PredictSeries(context.Background(), "Z1", 1, 0)
	require.NoError(t, err)
	require.Len(t, series, 24)
}

func TestSummarizeSeries(t *testing.T) {
	series := []HourForecast{
		{Hour: 0, Occupancy: 50},
		{Hour: 1, Occupancy: 20},
		{Hour: 2, Occupancy: 80},
	}
	sum := SummarizeSeries(series)
	require.Equal(t, 1, sum.Best.Hour)
	require.Equal(t, 2, sum.Worst.Hour)
	require.Equal(t, 50.0, sum.Average)

	require.Equal(t, Summary{}, SummarizeSeries(nil))
}

func TestAvailableAndRefreshAfterFailure(t *testing.T) {
	store := &memStore{records: testDayRecords("Z1", 1)}
	missing := filepath.Join(t.TempDir(), "absent.gob")
	res := NewResources(store, missing, nil, nil)
	svc := NewService(Config{}, res, nil, nil)

	require.False(t, svc.Available(context.Background()))
	_, _, err := svc.Predict(context.Background(), "Z1", 1, 10)
	require.Error(t, err)

	// The failure is sticky until Refresh, so the store is untouched.
	_, _, _ = svc.Predict(context.Background(), "Z1", 1, 10)
	require.Equal(t, 0, store.loads)

	res.modelPath = writeTestModel(t)
	svc.Refresh()
	require.True(t, svc.Available(context.Background()))
	_, ok, err := svc.Predict(context.Background(), "Z1", 1, 10)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestZonesListsDataset(t *testing.T) {
	records := append(testDayRecords("Z1", 1), testDayRecords("Z2", 1)...)
	store := &memStore{records: records}
	res := NewResources(store, writeTestModel(t), nil, nil)

	zones, err := res.Zones(context.Background())
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"Z1", "Z2"}, zones)
}
