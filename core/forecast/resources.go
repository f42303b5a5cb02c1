// Package forecast serves occupancy predictions from the trained
// model and the persisted dataset.
package forecast

import (
	"context"
	"fmt"
	"sync"

	"github.com/pun33th45/spotmate/core/dataset"
	coremetrics "github.com/pun33th45/spotmate/core/metrics"
	"github.com/pun33th45/spotmate/core/seqnet"
	"github.com/pun33th45/spotmate/infra/logger"
)

type sampleKey struct {
	zone string
	day  int
	hour int
}

// observation is one indexed dataset slot. count tracks how many rows
// claimed the slot so duplicates disqualify it instead of silently
// overwriting each other.
type observation struct {
	value float64
	count int
}

// Resources lazily loads the dataset and model artifact and exposes
// the lookups the predictor needs. A failed load is sticky until
// Invalidate, so a missing artifact short-circuits instead of hitting
// the filesystem on every request.
type Resources struct {
	store     dataset.Store
	modelPath string
	sink      coremetrics.Sink
	log       logger.Logger

	mu    sync.Mutex
	once  *sync.Once
	net   *seqnet.Network
	meta  seqnet.Meta
	index map[sampleKey]observation
	err   error
}

// NewResources builds a resource holder over the given store and
// model artifact path.
func NewResources(store dataset.Store, modelPath string, sink coremetrics.Sink, log logger.Logger) *Resources {
	if sink == nil {
		sink = coremetrics.NopSink{}
	}
	if log == nil {
		log = logger.Nop{}
	}
	return &Resources{
		store:     store,
		modelPath: modelPath,
		sink:      sink,
		log:       log,
		once:      new(sync.Once),
	}
}

// get returns the loaded resources, loading them on first use.
func (r *Resources) get(ctx context.Context) (*seqnet.Network, seqnet.Meta, map[sampleKey]observation, error) {
	r.mu.Lock()
	once := r.once
	r.mu.Unlock()
	once.Do(func() { r.load(ctx) })
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.net, r.meta, r.index, r.err
}

func (r *Resources) load(ctx context.Context) {
	net, meta, err := seqnet.Load(r.modelPath)
	if err != nil {
		r.fail("model", fmt.Errorf("load model %s: %w", r.modelPath, err))
		return
	}
	if meta.Features != 1 {
		r.fail("model", fmt.Errorf("model expects %d features, want 1", meta.Features))
		return
	}
	if meta.Normalization <= 0 {
		r.fail("model", fmt.Errorf("model has invalid normalization divisor %g", meta.Normalization))
		return
	}

	records, err := r.store.Load(ctx)
	if err != nil {
		r.fail("dataset", fmt.Errorf("load dataset: %w", err))
		return
	}
	dataset.SortRecords(records)
	index := make(map[sampleKey]observation, len(records))
	for _, rec := range records {
		k := sampleKey{rec.ZoneID, rec.Day, rec.Hour}
		o := index[k]
		o.value = rec.Occupancy
		o.count++
		index[k] = o
	}

	r.mu.Lock()
	r.net, r.meta, r.index, r.err = net, meta, index, nil
	r.mu.Unlock()
	r.log.Infow("resources loaded", map[string]any{
		"model_id": meta.ModelID,
		"seq_len":  meta.SeqLen,
		"records":  len(records),
	})
}

func (r *Resources) fail(kind string, err error) {
	r.mu.Lock()
	r.err = err
	r.mu.Unlock()
	r.log.Errorf("%v", err)
	if serr := r.sink.RecordResourceFailure(kind); serr != nil {
		r.log.Warnf("record resource failure: %v", serr)
	}
}

// Invalidate drops the loaded state so the next request reloads from
// disk. Call it after retraining or after appending readings.
func (r *Resources) Invalidate() {
	r.mu.Lock()
	r.once = new(sync.Once)
	r.net, r.index, r.err = nil, nil, nil
	r.meta = seqnet.Meta{}
	r.mu.Unlock()
}

// lookup returns the observed occupancy at (zone, day, hour). A slot
// with no row, or with more than one, reports not found.
func lookup(index map[sampleKey]observation, zone string, day, hour int) (float64, bool) {
	o := index[sampleKey{zone, day, hour}]
	if o.count != 1 {
		return 0, false
	}
	return o.value, true
}

// Zones lists the distinct zone identifiers present in the dataset.
func (r *Resources) Zones(ctx context.Context) ([]string, error) {
	_, _, index, err := r.get(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var zones []string
	for k := range index {
		if _, ok := seen[k.zone]; !ok {
			seen[k.zone] = struct{}{}
			zones = append(zones, k.zone)
		}
	}
	return zones, nil
}
