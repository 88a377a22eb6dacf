// Command weather-etl loads weather-station measurement files into a SQL
// database and answers recent-temperature lookups from it.
package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/couchcryptid/weather-station-etl/internal/config"
	"github.com/couchcryptid/weather-station-etl/internal/document"
	"github.com/couchcryptid/weather-station-etl/internal/lookup"
	"github.com/couchcryptid/weather-station-etl/internal/observability"
	"github.com/couchcryptid/weather-station-etl/internal/store"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// app is the state shared by every subcommand, built once before any runs.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *observability.Metrics
	runID   string
}

var state app

var rootCmd = &cobra.Command{
	Use:   "weather-etl",
	Short: "Weather station measurement ETL",
	Long: `weather-etl ingests per-station measurement files into a SQL database,
normalizing every temperature to celsius, and looks up recent measurements
by city.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func setup(_ *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	state = app{
		cfg:     cfg,
		logger:  observability.NewLogger(cfg).With("run_id", runID),
		metrics: observability.NewMetrics(),
		runID:   runID,
	}
	return nil
}

// openMeasurements connects to the configured database and makes sure the
// measurement table exists.
func (a *app) openMeasurements(ctx context.Context) (*store.Gateway, *store.Measurements, error) {
	creds, err := config.LoadCredentials(a.cfg.CredentialsPath)
	if err != nil {
		return nil, nil, err
	}
	gw, err := store.Open(ctx, creds, a.logger, a.metrics)
	if err != nil {
		return nil, nil, err
	}
	repo := store.NewMeasurements(gw, a.cfg.MeasurementTable)
	if err := repo.EnsureSchema(ctx); err != nil {
		gw.Close() //nolint:errcheck // the schema error is what matters
		return nil, nil, err
	}
	return gw, repo, nil
}

func (a *app) lookupService(repo *store.Measurements) (*lookup.Service, error) {
	countries, err := lookup.LoadCountries(a.cfg.CountriesDir, a.cfg.CountriesPattern, document.ByExtension{})
	if err != nil {
		return nil, err
	}
	a.logger.Info("country metadata loaded", "cities", len(countries))
	return lookup.NewService(repo, countries, a.cfg.LookupWindow), nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		logger := state.logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}
