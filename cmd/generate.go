package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pun33th45/spotmate/app"
	"github.com/pun33th45/spotmate/core/dataset"
	"github.com/pun33th45/spotmate/infra/logger"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a synthetic occupancy dataset",
	RunE:  runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	gen, err := dataset.NewGenerator(cfg.Generator)
	if err != nil {
		return err
	}
	records := gen.Generate()

	st, closeStore, err := app.NewStore(cfg.Dataset)
	if err != nil {
		return err
	}
	if closeStore != nil {
		defer func() {
			if err := closeStore(); err != nil {
				logger.New("generate").Errorf("close store: %v", err)
			}
		}()
	}
	if err := st.Save(cmd.Context(), records); err != nil {
		return fmt.Errorf("save dataset: %w", err)
	}
	fmt.Printf("wrote %d records to %s\n", len(records), cfg.Dataset.Path)
	return nil
}
