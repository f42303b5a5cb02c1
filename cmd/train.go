package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pun33th45/spotmate/app"
	"github.com/pun33th45/spotmate/core/train"
	"github.com/pun33th45/spotmate/infra/logger"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Fit the occupancy model on the stored dataset",
	RunE:  runTrain,
}

func init() {
	rootCmd.AddCommand(trainCmd)
}

func runTrain(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, closeStore, err := app.NewStore(cfg.Dataset)
	if err != nil {
		return err
	}
	log := logger.New("train")
	if closeStore != nil {
		defer func() {
			if err := closeStore(); err != nil {
				log.Errorf("close store: %v", err)
			}
		}()
	}
	records, err := st.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	sink, sinkClosers, err := app.NewSink(cfg.Metrics)
	if err != nil {
		return err
	}
	defer func() {
		for _, fn := range sinkClosers {
			if err := fn(); err != nil {
				log.Errorf("close sink: %v", err)
			}
		}
	}()

	trainer := train.New(cfg.Training, log, sink)
	net, report, err := trainer.Run(records)
	if err != nil {
		return err
	}
	// Persist the canonical sort so serving sees the same ordering.
	if err := st.Save(cmd.Context(), records); err != nil {
		return fmt.Errorf("save sorted dataset: %w", err)
	}
	if err := trainer.SaveArtifact(cfg.Model.Path, net, report); err != nil {
		return fmt.Errorf("save model: %w", err)
	}
	fmt.Printf("model %s: %d windows, test MSE %.6f, saved to %s\n",
		report.ModelID, report.Windows, report.TestMSE, cfg.Model.Path)
	return nil
}
