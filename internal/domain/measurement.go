package domain

import "time"

// Conventional keys of a raw measurement document.
const (
	KeyCity           = "city"
	KeyWeatherStation = "weather_station"
	KeyCelsius        = "celsius"
	KeyFahrenheit     = "fahrenheit"
	KeyMeasuredAt     = "measured_at_ts"
)

// RawMeasurement is the flat mapping produced by reading one source document.
// Keys and value types vary by format.
type RawMeasurement map[string]any

// Measurement is a normalized record ready for persistence.
type Measurement struct {
	City           string    `json:"city"`
	WeatherStation string    `json:"weather_station"`
	Celsius        *float64  `json:"celsius"`
	MeasuredAt     time.Time `json:"measured_at_ts"`
}

// Complete reports whether every column the measurement table declares NOT NULL
// is populated.
func (m Measurement) Complete() bool {
	return m.City != "" && m.WeatherStation != "" && m.Celsius != nil && !m.MeasuredAt.IsZero()
}

// Record converts the measurement into a column -> value mapping for insertion.
// Timestamps are stored in UTC.
func (m Measurement) Record() map[string]any {
	var celsius any
	if m.Celsius != nil {
		celsius = *m.Celsius
	}
	return map[string]any{
		KeyCity:           m.City,
		KeyWeatherStation: m.WeatherStation,
		KeyCelsius:        celsius,
		KeyMeasuredAt:     m.MeasuredAt.UTC(),
	}
}

// Fahrenheit returns the measurement's temperature in fahrenheit, or false
// when celsius is unknown.
func (m Measurement) Fahrenheit() (float64, bool) {
	if m.Celsius == nil {
		return 0, false
	}
	return ToFahrenheit(*m.Celsius), true
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }
