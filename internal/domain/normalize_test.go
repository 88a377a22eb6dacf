package domain

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testStation = "StationA"

func TestNormalize_Empty(t *testing.T) {
	got, err := Normalize(testStation, nil)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestNormalize_FahrenheitOnly(t *testing.T) {
	raws := []RawMeasurement{{
		KeyCity:       "berlin",
		KeyCelsius:    nil,
		KeyFahrenheit: 98.6,
		KeyMeasuredAt: "2023-01-01T00:00:00",
	}}

	got, err := Normalize(testStation, raws)
	require.NoError(t, err)
	require.Len(t, got, 1)

	want := Measurement{
		City:           "Berlin",
		WeatherStation: testStation,
		Celsius:        Float(37.0),
		MeasuredAt:     time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if diff := cmp.Diff(want, got[0]); diff != "" {
		t.Errorf("Normalize() mismatch (-want +got):\n%s", diff)
	}

	record := got[0].Record()
	assert.NotContains(t, record, KeyFahrenheit)
	assert.Equal(t, 37.0, record[KeyCelsius])
}

func TestNormalize_CelsiusWins(t *testing.T) {
	raws := []RawMeasurement{{
		KeyCity:       "munich",
		KeyCelsius:    "12.5",
		KeyFahrenheit: 100.0,
		KeyMeasuredAt: "2023-03-04 10:15:00",
	}}

	got, err := Normalize(testStation, raws)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].Celsius)
	assert.Equal(t, 12.5, *got[0].Celsius)
	assert.Equal(t, time.Date(2023, 3, 4, 10, 15, 0, 0, time.UTC), got[0].MeasuredAt)
}

func TestNormalize_NeitherTemperature(t *testing.T) {
	raws := []RawMeasurement{{
		KeyCity:       "paris",
		KeyCelsius:    "",
		KeyMeasuredAt: "2023-01-01",
	}}

	got, err := Normalize(testStation, raws)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].Celsius)
	assert.False(t, got[0].Complete())
	assert.Nil(t, got[0].Record()[KeyCelsius])
}

func TestNormalize_DropsUnconvertibleRecords(t *testing.T) {
	raws := []RawMeasurement{
		{KeyCity: "oslo", KeyFahrenheit: "freezing", KeyMeasuredAt: "2023-01-01"},
		{KeyCity: "rome", KeyCelsius: 20.0, KeyMeasuredAt: "2023-01-01"},
		{KeyCity: "lisbon", KeyCelsius: 18.0, KeyMeasuredAt: "yesterday"},
		{KeyCelsius: 18.0, KeyMeasuredAt: "2023-01-01"},
	}

	got, err := Normalize(testStation, raws)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConversion)
	assert.Contains(t, err.Error(), "record 0")
	assert.Contains(t, err.Error(), "record 2")
	assert.Contains(t, err.Error(), "record 3")

	require.Len(t, got, 1)
	assert.Equal(t, "Rome", got[0].City)
	assert.True(t, got[0].Complete())
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "New York", TitleCase("new york"))
	assert.Equal(t, "Sao Paulo", TitleCase(" SAO PAULO "))
	assert.Equal(t, "Zürich", TitleCase("zürich"))
}

func TestCoerceTimestamp(t *testing.T) {
	want := time.Date(2023, 6, 1, 12, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   any
	}{
		{"rfc3339", "2023-06-01T12:30:00Z"},
		{"iso without zone", "2023-06-01T12:30:00"},
		{"space separated", "2023-06-01 12:30:00"},
		{"unix seconds float", float64(want.Unix())},
		{"unix seconds string", "1685622600"},
		{"time value", want},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CoerceTimestamp(tt.in)
			require.NoError(t, err)
			assert.True(t, want.Equal(got), "got %v", got)
		})
	}

	_, err := CoerceTimestamp(nil)
	assert.ErrorIs(t, err, ErrConversion)
	_, err = CoerceTimestamp(time.Time{})
	assert.ErrorIs(t, err, ErrConversion)
}

func TestCoerceTimestamp_OutOfRange(t *testing.T) {
	for _, in := range []any{
		1e300, -1e300, math.NaN(), math.Inf(1),
		"1e300", "NaN", "-Inf",
		int64(math.MaxInt64), math.MinInt64,
	} {
		_, err := CoerceTimestamp(in)
		assert.ErrorIs(t, err, ErrConversion, "%v", in)
	}

	got, err := CoerceTimestamp(float64(253402300799))
	require.NoError(t, err)
	assert.Equal(t, 9999, got.Year())
}

func TestMeasurementFahrenheit(t *testing.T) {
	f, ok := Measurement{Celsius: Float(100)}.Fahrenheit()
	assert.True(t, ok)
	assert.Equal(t, 212.0, f)

	_, ok = Measurement{}.Fahrenheit()
	assert.False(t, ok)
}
