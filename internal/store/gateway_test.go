package store_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/weather-station-etl/internal/domain"
	"github.com/couchcryptid/weather-station-etl/internal/observability"
	"github.com/couchcryptid/weather-station-etl/internal/store"
	"github.com/couchcryptid/weather-station-etl/internal/store/storetest"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTable = "measurement"

func statements(m *observability.Metrics, kind string) float64 {
	return testutil.ToFloat64(m.Statements.WithLabelValues(kind))
}

func newGateway(t *testing.T) (*store.Gateway, *observability.Metrics) {
	t.Helper()
	metrics := observability.NewMetricsForTesting()
	return storetest.NewGateway(t, metrics), metrics
}

func ensureMeasurementTable(t *testing.T, gw *store.Gateway) {
	t.Helper()
	require.NoError(t, gw.EnsureTable(context.Background(), testTable, store.MeasurementColumns(gw.Dialect())))
}

func record(city string, celsius float64, at time.Time) store.Record {
	return domain.Measurement{
		City:           city,
		WeatherStation: "StationA",
		Celsius:        domain.Float(celsius),
		MeasuredAt:     at,
	}.Record()
}

func TestEnsureTable_Idempotent(t *testing.T) {
	gw, metrics := newGateway(t)
	ctx := context.Background()
	columns := store.MeasurementColumns(gw.Dialect())

	require.NoError(t, gw.EnsureTable(ctx, testTable, columns))
	require.NoError(t, gw.EnsureTable(ctx, testTable, columns))

	assert.Equal(t, 1.0, statements(metrics, "create"))

	rows, err := gw.ReadFiltered(ctx, testTable, nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestEnsureTable_InvalidName(t *testing.T) {
	gw, metrics := newGateway(t)

	err := gw.EnsureTable(context.Background(), "drop table;", store.MeasurementColumns(gw.Dialect()))
	assert.ErrorIs(t, err, store.ErrInvalidIdentifier)
	assert.Zero(t, statements(metrics, "select"))
}

func TestInsertMany_EmptyIsNoop(t *testing.T) {
	gw, metrics := newGateway(t)

	// The table does not exist: any executed statement would fail.
	require.NoError(t, gw.InsertMany(context.Background(), "missing_table", nil))
	require.NoError(t, gw.InsertMany(context.Background(), "missing_table", []store.Record{}))

	assert.Zero(t, statements(metrics, "insert"))
	assert.Zero(t, testutil.ToFloat64(metrics.StatementErrors.WithLabelValues("insert")))
}

func TestInsertMany_AndReadFiltered(t *testing.T) {
	gw, metrics := newGateway(t)
	ensureMeasurementTable(t, gw)
	ctx := context.Background()

	base := time.Date(2023, 1, 10, 12, 0, 0, 0, time.UTC)
	err := gw.InsertMany(ctx, testTable, []store.Record{
		record("Berlin", 1.5, base.Add(-48*time.Hour)),
		record("Berlin", 2.25, base),
		record("Paris", 7, base),
	})
	require.NoError(t, err)
	assert.Equal(t, 1.0, statements(metrics, "insert"))

	all, err := gw.ReadFiltered(ctx, testTable, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	for _, row := range all {
		assert.ElementsMatch(t, []string{"id", "city", "weather_station", "celsius", "measured_at_ts"}, keys(row))
	}

	rows, err := gw.ReadFiltered(ctx, testTable, []store.FilterCriterion{
		{Column: "city", Value: "Berlin", Operator: store.OpEqual},
		{Column: "measured_at_ts", Value: base.Add(-time.Hour), Operator: store.OpGreaterEqual},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Berlin", rows[0]["city"])
	celsius, err := domain.ParseNumber("celsius", rows[0]["celsius"])
	require.NoError(t, err)
	assert.Equal(t, 2.25, celsius)
}

func TestReadFiltered_NonUTCTimestamps(t *testing.T) {
	gw, _ := newGateway(t)
	ensureMeasurementTable(t, gw)
	ctx := context.Background()
	plus2 := time.FixedZone("UTC+2", 2*60*60)

	// 14:00+02:00 is 12:00 UTC.
	row := record("Berlin", 1, time.Time{})
	row["measured_at_ts"] = time.Date(2023, 1, 10, 14, 0, 0, 0, plus2)
	require.NoError(t, gw.InsertMany(ctx, testTable, []store.Record{row}))

	since := func(at time.Time) []store.Row {
		t.Helper()
		rows, err := gw.ReadFiltered(ctx, testTable, []store.FilterCriterion{
			{Column: "measured_at_ts", Value: at, Operator: store.OpGreaterEqual},
		})
		require.NoError(t, err)
		return rows
	}

	assert.Len(t, since(time.Date(2023, 1, 10, 13, 0, 0, 0, plus2)), 1, "11:00 UTC bound")
	assert.Len(t, since(time.Date(2023, 1, 10, 11, 30, 0, 0, time.UTC)), 1)
	assert.Empty(t, since(time.Date(2023, 1, 10, 15, 30, 0, 0, plus2)), "13:30 UTC bound")
}

func TestReadFiltered_HostileValue(t *testing.T) {
	gw, _ := newGateway(t)
	ensureMeasurementTable(t, gw)
	ctx := context.Background()

	require.NoError(t, gw.InsertMany(ctx, testTable, []store.Record{record("Berlin", 1, time.Now())}))

	rows, err := gw.ReadFiltered(ctx, testTable, []store.FilterCriterion{
		{Column: "city", Value: "x' OR '1'='1", Operator: store.OpEqual},
	})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestInsertMany_NonUniformRecords(t *testing.T) {
	gw, metrics := newGateway(t)
	ensureMeasurementTable(t, gw)

	first := record("Berlin", 1, time.Now())
	second := record("Paris", 2, time.Now())
	delete(second, "celsius")
	second["fahrenheit"] = 35.6

	err := gw.InsertMany(context.Background(), testTable, []store.Record{first, second})
	assert.ErrorIs(t, err, store.ErrNonUniformRecords)
	assert.Zero(t, statements(metrics, "insert"))
}

func TestInsertMany_DatabaseError(t *testing.T) {
	gw, metrics := newGateway(t)

	err := gw.InsertMany(context.Background(), "missing_table", []store.Record{record("Berlin", 1, time.Now())})
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrDatabase)

	var dbErr *store.DatabaseError
	require.ErrorAs(t, err, &dbErr)
	assert.Equal(t, "insert", dbErr.Op)
	assert.Equal(t, "missing_table", dbErr.Table)
	assert.Contains(t, err.Error(), "missing_table")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.StatementErrors.WithLabelValues("insert")))
}

func TestInsertMany_NotNullViolation(t *testing.T) {
	gw, _ := newGateway(t)
	ensureMeasurementTable(t, gw)

	incomplete := domain.Measurement{City: "Oslo", WeatherStation: "StationA", MeasuredAt: time.Now()}.Record()
	err := gw.InsertMany(context.Background(), testTable, []store.Record{incomplete})
	assert.ErrorIs(t, err, store.ErrDatabase)
}

func TestInsertMany_SplitsAboveParameterLimit(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	base := storetest.NewGateway(t, metrics)
	ensureMeasurementTable(t, base)

	// Two rows of four columns per statement.
	d := store.SQLite
	d.MaxParams = 8
	gw := store.New(store.RawDB(base), d, slog.New(slog.DiscardHandler), metrics)

	records := make([]store.Record, 5)
	for i := range records {
		records[i] = record("Berlin", float64(i), time.Date(2023, 1, 1, i, 0, 0, 0, time.UTC))
	}
	require.NoError(t, gw.InsertMany(context.Background(), testTable, records))
	assert.Equal(t, 3.0, statements(metrics, "insert"))

	rows, err := gw.ReadFiltered(context.Background(), testTable, nil)
	require.NoError(t, err)
	assert.Len(t, rows, 5)
}

func TestCheckReadiness(t *testing.T) {
	gw, _ := newGateway(t)
	require.NoError(t, gw.CheckReadiness(context.Background()))

	require.NoError(t, gw.Close())
	assert.ErrorIs(t, gw.CheckReadiness(context.Background()), store.ErrDatabase)
}

func keys(row store.Row) []string {
	out := make([]string, 0, len(row))
	for k := range row {
		out = append(out, k)
	}
	return out
}
