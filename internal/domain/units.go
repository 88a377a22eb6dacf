package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrConversion is matched by every *ConversionError.
var ErrConversion = errors.New("type conversion failed")

// ConversionError reports a raw value that could not be coerced into the type a
// measurement field requires.
type ConversionError struct {
	Field string
	Value any
	Err   error
}

func (e *ConversionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("convert %s %v: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("convert %s %v", e.Field, e.Value)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrConversion) match any ConversionError.
func (e *ConversionError) Is(target error) bool { return target == ErrConversion }

// ToFahrenheit converts degrees celsius to fahrenheit, rounded to 2 decimals.
func ToFahrenheit(celsius float64) float64 {
	return round2(celsius*1.8 + 32)
}

// ToCelsius converts degrees fahrenheit to celsius, rounded to 2 decimals.
func ToCelsius(fahrenheit float64) float64 {
	return round2((fahrenheit - 32) / 1.8)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ParseNumber coerces a raw value into a float64. Strings are
// trimmed before parsing; NaN and infinities are rejected.
func ParseNumber(field string, v any) (float64, error) {
	var (
		f   float64
		err error
	)
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case int32:
		f = float64(t)
	case uint64:
		f = float64(t)
	case json.Number:
		f, err = t.Float64()
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(t), 64)
	default:
		return 0, &ConversionError{Field: field, Value: v, Err: fmt.Errorf("unsupported type %T", v)}
	}
	if err != nil {
		return 0, &ConversionError{Field: field, Value: v, Err: err}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &ConversionError{Field: field, Value: v, Err: errors.New("not a finite number")}
	}
	return f, nil
}
