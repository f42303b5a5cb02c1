// Package train fits the occupancy regressor on prepared windows and
// persists the model artifact consumed by the inference service.
package train

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/pun33th45/spotmate/core/dataset"
	coremetrics "github.com/pun33th45/spotmate/core/metrics"
	"github.com/pun33th45/spotmate/core/model"
	"github.com/pun33th45/spotmate/core/seqnet"
	"github.com/pun33th45/spotmate/infra/logger"
)

// Config holds the training hyperparameters.
type Config struct {
	Epochs          int     `json:"epochs"`
	BatchSize       int     `json:"batch_size"`
	HiddenUnits     int     `json:"hidden_units"`
	LearningRate    float64 `json:"learning_rate"`
	ValidationSplit float64 `json:"validation_split"`
	Seed            int64   `json:"seed"`

	Prepare dataset.PrepareConfig `json:"prepare"`
}

// SetDefaults applies fallback values.
func (c *Config) SetDefaults() {
	if c.Epochs <= 0 {
		c.Epochs = 20
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 32
	}
	if c.HiddenUnits <= 0 {
		c.HiddenUnits = 32
	}
	if c.LearningRate <= 0 {
		c.LearningRate = 0.001
	}
	if c.ValidationSplit <= 0 {
		c.ValidationSplit = 0.1
	}
	if c.Seed == 0 {
		c.Seed = 42
	}
	c.Prepare.SetDefaults()
}

// Validate checks the configuration ranges.
func (c Config) Validate() error {
	if c.ValidationSplit >= 1 {
		return fmt.Errorf("validation_split must be < 1, got %g", c.ValidationSplit)
	}
	return c.Prepare.Validate()
}

// EpochLoss is the per-epoch training record.
type EpochLoss struct {
	Epoch     int
	TrainLoss float64
	ValLoss   float64
}

// Report summarises a completed training run.
type Report struct {
	ModelID      string
	Windows      int
	TrainSamples int
	ValSamples   int
	TestSamples  int
	Epochs       []EpochLoss
	TestMSE      float64
	Duration     time.Duration
}

// Trainer runs the offline fitting pipeline.
type Trainer struct {
	cfg  Config
	log  logger.Logger
	sink coremetrics.Sink
}

// New builds a Trainer. A nil sink disables metrics.
func New(cfg Config, log logger.Logger, sink coremetrics.Sink) *Trainer {
	cfg.SetDefaults()
	if log == nil {
		log = logger.Nop{}
	}
	if sink == nil {
		sink = coremetrics.NopSink{}
	}
	return &Trainer{cfg: cfg, log: log, sink: sink}
}

// Run sorts the records, extracts windows, fits the regressor and
// evaluates it on the held-out test partition. The record slice is
// re-ordered in place (the canonical sort the serving dataset uses).
func (t *Trainer) Run(records []model.OccupancyRecord) (*seqnet.Network, Report, error) {
	start := time.Now()
	report := Report{ModelID: uuid.NewString()}

	dataset.SortRecords(records)
	windows := dataset.BuildWindows(records, t.cfg.Prepare)
	if len(windows) == 0 {
		return nil, report, fmt.Errorf("no training windows from %d records", len(records))
	}
	report.Windows = len(windows)

	trainSet, testSet := dataset.SplitWindows(windows, t.cfg.Prepare)
	nVal := int(float64(len(trainSet)) * t.cfg.ValidationSplit)
	valSet := trainSet[len(trainSet)-nVal:]
	trainSet = trainSet[:len(trainSet)-nVal]
	report.TrainSamples = len(trainSet)
	report.ValSamples = len(valSet)
	report.TestSamples = len(testSet)
	if len(trainSet) == 0 {
		return nil, report, fmt.Errorf("empty training partition")
	}

	rng := rand.New(rand.NewSource(t.cfg.Seed))
	net := seqnet.New([]seqnet.Layer{
		seqnet.NewGRU(1, t.cfg.HiddenUnits, t.cfg.Prepare.SeqLen, rng),
		seqnet.NewDense(t.cfg.HiddenUnits, 1, seqnet.Linear{}, rng),
	}, seqnet.MSE{}, seqnet.NewAdam(t.cfg.LearningRate))

	trainX, trainY := toSamples(trainSet)
	valX, valY := toSamples(valSet)
	testX, testY := toSamples(testSet)

	order := make([]int, len(trainSet))
	for i := range order {
		order[i] = i
	}
	for epoch := 1; epoch <= t.cfg.Epochs; epoch++ {
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		var epochLoss float64
		var batches int
		for at := 0; at < len(order); at += t.cfg.BatchSize {
			end := at + t.cfg.BatchSize
			if end > len(order) {
				end = len(order)
			}
			bx := make([][]float64, 0, end-at)
			by := make([][]float64, 0, end-at)
			for _, idx := range order[at:end] {
				bx = append(bx, trainX[idx])
				by = append(by, trainY[idx])
			}
			epochLoss += net.TrainBatch(bx, by)
			batches++
		}
		el := EpochLoss{
			Epoch:     epoch,
			TrainLoss: epochLoss / float64(batches),
			ValLoss:   net.Evaluate(valX, valY),
		}
		report.Epochs = append(report.Epochs, el)
		t.log.Infof("epoch %d/%d train_loss=%.6f val_loss=%.6f", epoch, t.cfg.Epochs, el.TrainLoss, el.ValLoss)
	}

	report.TestMSE = net.Evaluate(testX, testY)
	report.Duration = time.Since(start)
	if math.IsNaN(report.TestMSE) || math.IsInf(report.TestMSE, 0) {
		return nil, report, fmt.Errorf("training diverged: test MSE %v", report.TestMSE)
	}
	t.log.Infow("training complete", map[string]any{
		"model_id": report.ModelID,
		"windows":  report.Windows,
		"test_mse": report.TestMSE,
		"duration": report.Duration.String(),
	})
	if err := t.sink.RecordTraining(coremetrics.TrainingEvent{
		ModelID:  report.ModelID,
		Windows:  report.Windows,
		TestMSE:  report.TestMSE,
		Duration: report.Duration,
		Time:     time.Now(),
	}); err != nil {
		t.log.Warnf("record training metrics: %v", err)
	}
	return net, report, nil
}

// SaveArtifact persists the fitted network with its compatibility
// header.
func (t *Trainer) SaveArtifact(path string, net *seqnet.Network, report Report) error {
	return seqnet.Save(path, net, seqnet.Meta{
		ModelID:       report.ModelID,
		SeqLen:        t.cfg.Prepare.SeqLen,
		Features:      1,
		Normalization: dataset.NormalizationDivisor,
		TrainedAt:     time.Now().UTC(),
		TestMSE:       report.TestMSE,
	})
}

func toSamples(windows []dataset.Window) (xs, ys [][]float64) {
	xs = make([][]float64, len(windows))
	ys = make([][]float64, len(windows))
	for i, w := range windows {
		xs[i] = w.Input
		ys[i] = []float64{w.Target}
	}
	return xs, ys
}
