// Package lookup answers "recent temperatures for a city" queries by joining
// stored measurements with static country metadata.
package lookup

import (
	"context"
	"time"

	"github.com/couchcryptid/weather-station-etl/internal/domain"
	"github.com/couchcryptid/weather-station-etl/internal/store"
)

// DefaultWindow is how far back a lookup reaches when none is configured.
const DefaultWindow = 20 * 24 * time.Hour

// Source returns the stored measurements of a city taken at or after since.
type Source interface {
	Since(ctx context.Context, city string, since time.Time) ([]store.StoredMeasurement, error)
}

// Result is one measurement row as displayed.
type Result struct {
	City       string    `json:"city"`
	Country    string    `json:"country,omitempty"`
	Population *float64  `json:"population_M,omitempty"`
	Station    string    `json:"weather_station"`
	Celsius    float64   `json:"celsius"`
	Fahrenheit float64   `json:"fahrenheit"`
	MeasuredAt time.Time `json:"measured_at_ts"`
}

// Date is the calendar day of the measurement.
func (r Result) Date() string {
	return r.MeasuredAt.Format(time.DateOnly)
}

// Service runs lookups against a measurement source.
type Service struct {
	source    Source
	countries Countries
	window    time.Duration
}

// NewService creates a Service. A non-positive window uses DefaultWindow.
func NewService(source Source, countries Countries, window time.Duration) *Service {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Service{source: source, countries: countries, window: window}
}

// Lookup returns the measurements of city within the window, oldest first.
// Cities without country metadata are returned with empty country fields.
func (s *Service) Lookup(ctx context.Context, city string) ([]Result, error) {
	city = domain.TitleCase(city)
	since := domain.Now().Add(-s.window)

	rows, err := s.source.Since(ctx, city, since)
	if err != nil {
		return nil, err
	}

	country := s.countries[city]
	out := make([]Result, 0, len(rows))
	for _, row := range rows {
		if row.Celsius == nil {
			continue
		}
		out = append(out, Result{
			City:       row.City,
			Country:    country.Country,
			Population: country.Population,
			Station:    row.WeatherStation,
			Celsius:    *row.Celsius,
			Fahrenheit: domain.ToFahrenheit(*row.Celsius),
			MeasuredAt: row.MeasuredAt,
		})
	}
	return out, nil
}
