// Package storetest provides in-memory sqlite gateways for tests.
package storetest

import (
	"context"
	"log/slog"
	"testing"

	"github.com/couchcryptid/weather-station-etl/internal/config"
	"github.com/couchcryptid/weather-station-etl/internal/observability"
	"github.com/couchcryptid/weather-station-etl/internal/store"
)

// NewGateway opens a private in-memory sqlite database and closes it when
// the test ends. A nil metrics gets an unregistered set.
func NewGateway(tb testing.TB, metrics *observability.Metrics) *store.Gateway {
	tb.Helper()
	if metrics == nil {
		metrics = observability.NewMetricsForTesting()
	}

	creds := config.Credentials{Dialect: store.SQLite.Name, DatabaseName: ":memory:"}
	gw, err := store.Open(context.Background(), creds, slog.New(slog.DiscardHandler), metrics)
	if err != nil {
		tb.Fatalf("open sqlite test database: %v", err)
	}
	tb.Cleanup(func() { _ = gw.Close() })
	return gw
}
