package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/couchcryptid/weather-station-etl/internal/document"
	"github.com/couchcryptid/weather-station-etl/internal/domain"
	"github.com/couchcryptid/weather-station-etl/internal/observability"
)

const (
	reasonConversion = "conversion"
	reasonIncomplete = "incomplete"
)

// Loader persists one station's normalized batch.
type Loader interface {
	Save(ctx context.Context, measurements []domain.Measurement) error
}

// Publisher forwards a persisted batch downstream.
type Publisher interface {
	Publish(ctx context.Context, measurements []domain.Measurement) error
}

// Summary counts what one run did.
type Summary struct {
	Stations        int `json:"stations"`
	FilesRead       int `json:"files_read"`
	FilesSkipped    int `json:"files_skipped"`
	RecordsRejected int `json:"records_rejected"`
	RecordsInserted int `json:"records_inserted"`
}

// Pipeline ingests station directories one at a time: read, normalize, save.
type Pipeline struct {
	reader    document.Reader
	loader    Loader
	publisher Publisher
	pattern   string
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// New creates a Pipeline. Files are selected by pattern; publisher may be nil.
func New(r document.Reader, l Loader, p Publisher, pattern string, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		reader:    r,
		loader:    l,
		publisher: p,
		pattern:   pattern,
		logger:    logger,
		metrics:   metrics,
	}
}

// Run ingests every station under root in name order. A load failure aborts
// the run; stations saved before it stay committed.
func (p *Pipeline) Run(ctx context.Context, root string) (Summary, error) {
	var sum Summary

	stations, err := DiscoverStationPaths(root, p.pattern)
	if err != nil {
		return sum, err
	}
	names := make([]string, 0, len(stations))
	for name := range stations {
		names = append(names, name)
	}
	sort.Strings(names)

	p.logger.Info("ingestion started", "root", root, "stations", len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		if err := p.ingestStation(ctx, name, stations[name], &sum); err != nil {
			return sum, err
		}
		sum.Stations++
	}

	p.logger.Info("ingestion finished",
		"stations", sum.Stations,
		"files_read", sum.FilesRead,
		"files_skipped", sum.FilesSkipped,
		"records_rejected", sum.RecordsRejected,
		"records_inserted", sum.RecordsInserted,
	)
	return sum, nil
}

func (p *Pipeline) ingestStation(ctx context.Context, station string, paths []string, sum *Summary) error {
	start := time.Now()
	logger := p.logger.With("station", station)

	raws := make([]domain.RawMeasurement, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		raw, err := p.reader.Read(path)
		if err != nil {
			logger.Warn("read failed, skipping file", "path", path, "error", err)
			p.metrics.FilesSkipped.Inc()
			sum.FilesSkipped++
			continue
		}
		p.metrics.FilesRead.Inc()
		sum.FilesRead++
		raws = append(raws, raw)
	}

	normalized, err := domain.Normalize(station, raws)
	if err != nil {
		rejected := countErrors(err)
		logger.Warn("conversion failed, dropping records", "rejected", rejected, "error", err)
		p.metrics.RecordsRejected.WithLabelValues(reasonConversion).Add(float64(rejected))
		sum.RecordsRejected += rejected
	}

	batch := make([]domain.Measurement, 0, len(normalized))
	for _, m := range normalized {
		if !m.Complete() {
			logger.Warn("measurement has no temperature, dropping record", "city", m.City, "measured_at", m.MeasuredAt)
			p.metrics.RecordsRejected.WithLabelValues(reasonIncomplete).Inc()
			sum.RecordsRejected++
			continue
		}
		batch = append(batch, m)
	}

	if len(batch) == 0 {
		logger.Info("no measurements to insert")
		return nil
	}

	if err := p.loader.Save(ctx, batch); err != nil {
		logger.Error("save failed", "error", err, "batch_size", len(batch))
		return fmt.Errorf("station %s: %w", station, err)
	}
	p.metrics.RecordsInserted.Add(float64(len(batch)))
	p.metrics.StationsIngested.Inc()
	p.metrics.StationDuration.Observe(time.Since(start).Seconds())
	sum.RecordsInserted += len(batch)
	logger.Info("station ingested", "files", len(raws), "inserted", len(batch))

	if p.publisher == nil {
		return nil
	}
	if err := p.publisher.Publish(ctx, batch); err != nil {
		logger.Warn("publish failed", "error", err, "batch_size", len(batch))
		p.metrics.PublishErrors.Inc()
	}
	return nil
}

// countErrors counts the leaves of a joined error.
func countErrors(err error) int {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return len(joined.Unwrap())
	}
	return 1
}
