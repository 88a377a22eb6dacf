package main

import (
	"github.com/couchcryptid/weather-station-etl/internal/adapter/kafka"
	"github.com/couchcryptid/weather-station-etl/internal/document"
	"github.com/couchcryptid/weather-station-etl/internal/pipeline"
	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load station measurement files into the database",
	Long: `Reads every station directory under the measurements root, normalizes
the measurements, and inserts one batch per station.`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().String("root", "", "measurements root directory (default $MEASUREMENTS_DIR)")
	ingestCmd.Flags().String("pattern", "", "station file name pattern (default $MEASUREMENTS_PATTERN)")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	logger := state.logger

	root, _ := cmd.Flags().GetString("root")
	if root == "" {
		root = state.cfg.MeasurementsDir
	}
	pattern, _ := cmd.Flags().GetString("pattern")
	if pattern == "" {
		pattern = state.cfg.MeasurementsPattern
	}

	gw, repo, err := state.openMeasurements(ctx)
	if err != nil {
		return err
	}
	defer gw.Close() //nolint:errcheck // read-only after the run

	var publisher pipeline.Publisher
	if state.cfg.PublishEnabled() {
		w := kafka.NewWriter(state.cfg, state.runID, logger)
		defer func() {
			if err := w.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		publisher = w
		logger.Info("kafka publishing enabled", "topic", state.cfg.KafkaTopic)
	}

	p := pipeline.New(document.ByExtension{}, repo, publisher, pattern, logger, state.metrics)
	_, err = p.Run(ctx, root)
	return err
}
