package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/couchcryptid/weather-station-etl/internal/domain"
)

const columnID = "id"

// StoredMeasurement is a measurement row as persisted, including its key.
type StoredMeasurement struct {
	ID int64 `json:"id"`
	domain.Measurement
}

// MeasurementColumns is the measurement table definition for dialect d.
func MeasurementColumns(d Dialect) []Column {
	return []Column{
		{Name: columnID, Type: d.AutoIncrementKey},
		{Name: domain.KeyCity, Type: "varchar(20) NOT NULL"},
		{Name: domain.KeyWeatherStation, Type: "varchar(40) NOT NULL"},
		{Name: domain.KeyCelsius, Type: "decimal(6,2) NOT NULL"},
		{Name: domain.KeyMeasuredAt, Type: "timestamp NOT NULL"},
	}
}

// Measurements reads and writes measurement rows through a Gateway.
type Measurements struct {
	gw    *Gateway
	table string
}

// NewMeasurements binds the measurement table name to gw.
func NewMeasurements(gw *Gateway, table string) *Measurements {
	return &Measurements{gw: gw, table: table}
}

// Table returns the bound table name.
func (m *Measurements) Table() string { return m.table }

// EnsureSchema creates the measurement table if it does not exist.
func (m *Measurements) EnsureSchema(ctx context.Context) error {
	return m.gw.EnsureTable(ctx, m.table, MeasurementColumns(m.gw.Dialect()))
}

// Save inserts the measurements as one batch.
func (m *Measurements) Save(ctx context.Context, measurements []domain.Measurement) error {
	records := make([]Record, len(measurements))
	for i, ms := range measurements {
		records[i] = ms.Record()
	}
	return m.gw.InsertMany(ctx, m.table, records)
}

// Since returns the measurements of city taken at or after since, oldest first.
// Timestamps are stored and compared in UTC.
func (m *Measurements) Since(ctx context.Context, city string, since time.Time) ([]StoredMeasurement, error) {
	rows, err := m.gw.ReadFiltered(ctx, m.table, []FilterCriterion{
		{Column: domain.KeyCity, Value: city, Operator: OpEqual},
		{Column: domain.KeyMeasuredAt, Value: since.UTC(), Operator: OpGreaterEqual},
	})
	if err != nil {
		return nil, err
	}

	out := make([]StoredMeasurement, 0, len(rows))
	for _, row := range rows {
		sm, err := decodeMeasurement(row)
		if err != nil {
			return nil, fmt.Errorf("decode %s row: %w", m.table, err)
		}
		out = append(out, sm)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].MeasuredAt.Equal(out[j].MeasuredAt) {
			return out[i].MeasuredAt.Before(out[j].MeasuredAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func decodeMeasurement(row Row) (StoredMeasurement, error) {
	id, err := domain.ParseNumber(columnID, row[columnID])
	if err != nil {
		return StoredMeasurement{}, err
	}
	celsius, err := domain.ParseNumber(domain.KeyCelsius, row[domain.KeyCelsius])
	if err != nil {
		return StoredMeasurement{}, err
	}
	measuredAt, err := domain.CoerceTimestamp(row[domain.KeyMeasuredAt])
	if err != nil {
		return StoredMeasurement{}, err
	}
	city, _ := row[domain.KeyCity].(string)
	station, _ := row[domain.KeyWeatherStation].(string)

	return StoredMeasurement{
		ID: int64(id),
		Measurement: domain.Measurement{
			City:           city,
			WeatherStation: station,
			Celsius:        &celsius,
			MeasuredAt:     measuredAt,
		},
	}, nil
}
