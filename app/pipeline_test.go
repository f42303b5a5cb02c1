package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pun33th45/spotmate/config"
	"github.com/pun33th45/spotmate/core/dataset"
	"github.com/pun33th45/spotmate/core/forecast"
	"github.com/pun33th45/spotmate/core/train"
	"github.com/pun33th45/spotmate/infra/store"
)

// Exercises the full offline-to-online path: generate, train, persist,
// then forecast through the serving stack.
func TestGenerateTrainForecastPipeline(t *testing.T) {
	if testing.Short() {
		t.Skip("full pipeline run")
	}
	ctx := context.Background()
	dir := t.TempDir()
	datasetPath := filepath.Join(dir, "occupancy.csv")
	modelPath := filepath.Join(dir, "model.gob")

	gen, err := dataset.NewGenerator(dataset.GeneratorConfig{Days: 12, Seed: 3})
	require.NoError(t, err)
	records := gen.Generate()
	require.Len(t, records, 12*24*5)

	trainer := train.New(train.Config{Epochs: 2, HiddenUnits: 6, Seed: 42}, nil, nil)
	net, report, err := trainer.Run(records)
	require.NoError(t, err)
	require.Equal(t, len(records)-3, report.Windows)
	require.NoError(t, trainer.SaveArtifact(modelPath, net, report))

	st := store.NewCSVStore(datasetPath)
	require.NoError(t, st.Save(ctx, records))

	cfg := config.Default()
	res := forecast.NewResources(st, modelPath, nil, nil)
	svc := forecast.NewService(cfg.Forecast, res, nil, nil)
	require.True(t, svc.Available(ctx))

	// Z1 is an office zone; day 3 is a weekday with hours 11..13 on file.
	v, ok, err := svc.Predict(ctx, "Z1", 3, 14)
	require.NoError(t, err)
	require.True(t, ok)
	require.GreaterOrEqual(t, v, 0.0)
	require.LessOrEqual(t, v, 100.0)

	series, err := svc.PredictSeries(ctx, "Z1", 3, 24)
	require.NoError(t, err)
	require.Len(t, series, 24)
	for _, h := range series {
		require.GreaterOrEqual(t, h.Occupancy, 0.0)
		require.LessOrEqual(t, h.Occupancy, 100.0)
	}
}
