package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pun33th45/spotmate/app"
	"github.com/pun33th45/spotmate/core/forecast"
	coremetrics "github.com/pun33th45/spotmate/core/metrics"
	"github.com/pun33th45/spotmate/infra/logger"
	"github.com/pun33th45/spotmate/pkg/export"
)

var (
	predictZone     string
	predictDay      int
	predictHour     int
	predictMeridiem string
	predictSeries   bool
	predictHours    int
	predictFormat   string
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Run a one-shot occupancy forecast",
	RunE:  runPredict,
}

func init() {
	predictCmd.Flags().StringVar(&predictZone, "zone", "", "zone identifier")
	predictCmd.Flags().IntVar(&predictDay, "day", 1, "day index (1..N)")
	predictCmd.Flags().IntVar(&predictHour, "hour", 0, "hour, 0..23 or 1..12 with --meridiem")
	predictCmd.Flags().StringVar(&predictMeridiem, "meridiem", "", "AM or PM for 12-hour input")
	predictCmd.Flags().BoolVar(&predictSeries, "series", false, "forecast the whole day")
	predictCmd.Flags().IntVar(&predictHours, "hours", 24, "number of hours in the series, from midnight")
	predictCmd.Flags().StringVar(&predictFormat, "format", "text", "series output format: text, csv or json")
	_ = predictCmd.MarkFlagRequired("zone")
	rootCmd.AddCommand(predictCmd)
}

func runPredict(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, closeStore, err := app.NewStore(cfg.Dataset)
	if err != nil {
		return err
	}
	log := logger.New("predict")
	if closeStore != nil {
		defer func() {
			if err := closeStore(); err != nil {
				log.Errorf("close store: %v", err)
			}
		}()
	}
	res := forecast.NewResources(st, cfg.Model.Path, coremetrics.NopSink{}, log)
	svc := forecast.NewService(cfg.Forecast, res, coremetrics.NopSink{}, log)

	if predictSeries {
		series, err := svc.PredictSeries(cmd.Context(), predictZone, predictDay, predictHours)
		if err != nil {
			return err
		}
		switch predictFormat {
		case "csv":
			return export.WriteCSV(os.Stdout, series)
		case "json":
			return export.WriteJSON(os.Stdout, series)
		case "text":
		default:
			return fmt.Errorf("unsupported format %q", predictFormat)
		}
		for _, h := range series {
			marker := ""
			if h.Fallback {
				marker = " (fallback)"
			}
			fmt.Printf("%02d:00  %6.2f%%%s\n", h.Hour, h.Occupancy, marker)
		}
		sum := forecast.SummarizeSeries(series)
		fmt.Printf("best %02d:00 (%.2f%%), worst %02d:00 (%.2f%%), average %.2f%%\n",
			sum.Best.Hour, sum.Best.Occupancy, sum.Worst.Hour, sum.Worst.Occupancy, sum.Average)
		return nil
	}

	hour := predictHour
	if predictMeridiem != "" {
		hour, err = forecast.ConvertTo24Hour(predictHour, predictMeridiem)
		if err != nil {
			return err
		}
	}
	value, ok, err := svc.Predict(cmd.Context(), predictZone, predictDay, hour)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Printf("no forecast for zone %s day %d hour %d\n", predictZone, predictDay, hour)
		return nil
	}
	fmt.Printf("zone %s day %d hour %d: %.2f%% occupied\n", predictZone, predictDay, hour, value)
	return nil
}
