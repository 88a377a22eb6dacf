package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToFahrenheit(t *testing.T) {
	tests := []struct {
		celsius float64
		want    float64
	}{
		{0, 32},
		{100, 212},
		{-40, -40},
		{37, 98.6},
		{21.456, 70.62},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, ToFahrenheit(tt.celsius), 1e-9, "celsius=%v", tt.celsius)
	}
}

func TestToCelsius(t *testing.T) {
	tests := []struct {
		fahrenheit float64
		want       float64
	}{
		{32, 0},
		{212, 100},
		{-40, -40},
		{98.6, 37},
		{70, 21.11},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, ToCelsius(tt.fahrenheit), 1e-9, "fahrenheit=%v", tt.fahrenheit)
	}
}

func TestConversionRoundTrip(t *testing.T) {
	for f := -40.0; f <= 212.0; f += 0.25 {
		assert.InDelta(t, f, ToFahrenheit(ToCelsius(f)), 0.1, "fahrenheit=%v", f)
	}
}

func TestParseNumber(t *testing.T) {
	t.Run("numeric kinds", func(t *testing.T) {
		for _, v := range []any{21.5, float32(21.5), json.Number("21.5"), " 21.5 "} {
			got, err := ParseNumber(KeyCelsius, v)
			require.NoError(t, err, "value %#v", v)
			assert.InDelta(t, 21.5, got, 1e-6)
		}
		got, err := ParseNumber(KeyCelsius, 21)
		require.NoError(t, err)
		assert.Equal(t, 21.0, got)
	})

	t.Run("non-numeric string", func(t *testing.T) {
		_, err := ParseNumber(KeyFahrenheit, "warm")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrConversion)

		var convErr *ConversionError
		require.ErrorAs(t, err, &convErr)
		assert.Equal(t, KeyFahrenheit, convErr.Field)
		assert.Equal(t, "warm", convErr.Value)
	})

	t.Run("unsupported type", func(t *testing.T) {
		_, err := ParseNumber(KeyCelsius, []string{"1"})
		assert.ErrorIs(t, err, ErrConversion)
	})

	t.Run("not finite", func(t *testing.T) {
		_, err := ParseNumber(KeyCelsius, "NaN")
		assert.ErrorIs(t, err, ErrConversion)
	})
}
