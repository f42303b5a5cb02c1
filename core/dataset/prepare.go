package dataset

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/pun33th45/spotmate/core/model"
)

// NormalizationDivisor maps occupancy percentages into the model's
// [0,1] training domain. Changing it invalidates every persisted
// model artifact.
const NormalizationDivisor = 100.0

// Window pairs a fixed-length normalized input sequence with the
// normalized occupancy of the hour that follows it.
type Window struct {
	Input  []float64
	Target float64
}

// PrepareConfig controls supervised window extraction.
type PrepareConfig struct {
	// SeqLen is the input window length in hours.
	SeqLen int `json:"seq_len"`
	// TestFraction of windows held out for final evaluation.
	TestFraction float64 `json:"test_fraction"`
	// Seed fixes the split shuffle.
	Seed int64 `json:"seed"`
	// SegmentByZone restarts the sliding window at zone boundaries
	// instead of sliding over the whole sorted table. Off by default:
	// the global slide is what the deployed model was trained with,
	// and retraining with segmentation produces an incompatible
	// window population.
	SegmentByZone bool `json:"segment_by_zone"`
}

// SetDefaults applies fallback values.
func (c *PrepareConfig) SetDefaults() {
	if c.SeqLen <= 0 {
		c.SeqLen = 3
	}
	if c.TestFraction <= 0 {
		c.TestFraction = 0.2
	}
	if c.Seed == 0 {
		c.Seed = 42
	}
}

// Validate checks the configuration ranges.
func (c PrepareConfig) Validate() error {
	if c.TestFraction <= 0 || c.TestFraction >= 1 {
		return fmt.Errorf("test_fraction must be in (0,1), got %g", c.TestFraction)
	}
	return nil
}

// SortRecords orders records by (zone, day, hour) ascending, in place.
// This is the canonical order for both window extraction and the
// persisted dataset consumed by the inference service.
func SortRecords(records []model.OccupancyRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.ZoneID != b.ZoneID {
			return a.ZoneID < b.ZoneID
		}
		if a.Day != b.Day {
			return a.Day < b.Day
		}
		return a.Hour < b.Hour
	})
}

// BuildWindows normalizes occupancies and slides a length-SeqLen
// window over the sorted sequence. For N records the global slide
// yields exactly N-SeqLen windows; with SegmentByZone it yields
// n_z-SeqLen per zone.
func BuildWindows(records []model.OccupancyRecord, cfg PrepareConfig) []Window {
	cfg.SetDefaults()
	if cfg.SegmentByZone {
		var windows []Window
		for start := 0; start < len(records); {
			end := start
			for end < len(records) && records[end].ZoneID == records[start].ZoneID {
				end++
			}
			windows = append(windows, slideWindows(records[start:end], cfg.SeqLen)...)
			start = end
		}
		return windows
	}
	return slideWindows(records, cfg.SeqLen)
}

func slideWindows(records []model.OccupancyRecord, seqLen int) []Window {
	if len(records) <= seqLen {
		return nil
	}
	windows := make([]Window, 0, len(records)-seqLen)
	for i := 0; i+seqLen < len(records); i++ {
		in := make([]float64, seqLen)
		for j := 0; j < seqLen; j++ {
			in[j] = records[i+j].Occupancy / NormalizationDivisor
		}
		windows = append(windows, Window{
			Input:  in,
			Target: records[i+seqLen].Occupancy / NormalizationDivisor,
		})
	}
	return windows
}

// SplitWindows shuffles with the configured seed and partitions into
// train and test sets.
func SplitWindows(windows []Window, cfg PrepareConfig) (train, test []Window) {
	cfg.SetDefaults()
	shuffled := make([]Window, len(windows))
	copy(shuffled, windows)
	rng := rand.New(rand.NewSource(cfg.Seed))
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	nTest := int(float64(len(shuffled)) * cfg.TestFraction)
	return shuffled[nTest:], shuffled[:nTest]
}
