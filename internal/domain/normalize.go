package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// timestampLayouts are tried in order when coercing textual timestamps.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Normalize turns the raw documents of one station into measurements. Records
// that cannot be coerced are dropped and reported in the joined error; the
// rest are still returned. An empty input yields an empty slice.
func Normalize(station string, raws []RawMeasurement) ([]Measurement, error) {
	out := make([]Measurement, 0, len(raws))
	var errs []error
	for i, raw := range raws {
		m, err := NormalizeRecord(station, raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("record %d: %w", i, err))
			continue
		}
		out = append(out, m)
	}
	return out, errors.Join(errs...)
}

// NormalizeRecord normalizes a single raw document for station. Celsius is
// derived from fahrenheit only when celsius itself is absent; it stays nil
// when neither is populated.
func NormalizeRecord(station string, raw RawMeasurement) (Measurement, error) {
	city, err := cityName(raw[KeyCity])
	if err != nil {
		return Measurement{}, err
	}

	measuredAt, err := CoerceTimestamp(raw[KeyMeasuredAt])
	if err != nil {
		return Measurement{}, err
	}

	celsius, err := resolveCelsius(raw)
	if err != nil {
		return Measurement{}, err
	}

	return Measurement{
		City:           city,
		WeatherStation: station,
		Celsius:        celsius,
		MeasuredAt:     measuredAt,
	}, nil
}

// TitleCase upper-cases the first letter of every word and lower-cases the rest.
func TitleCase(s string) string {
	return cases.Title(language.Und).String(strings.TrimSpace(s))
}

func cityName(v any) (string, error) {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", &ConversionError{Field: KeyCity, Value: v, Err: errors.New("missing city")}
	}
	return TitleCase(s), nil
}

func resolveCelsius(raw RawMeasurement) (*float64, error) {
	if c, ok := raw[KeyCelsius]; ok && !isBlank(c) {
		v, err := ParseNumber(KeyCelsius, c)
		if err != nil {
			return nil, err
		}
		return &v, nil
	}
	if f, ok := raw[KeyFahrenheit]; ok && !isBlank(f) {
		v, err := ParseNumber(KeyFahrenheit, f)
		if err != nil {
			return nil, err
		}
		c := ToCelsius(v)
		return &c, nil
	}
	return nil, nil
}

func isBlank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	}
	return false
}

// CoerceTimestamp converts a raw timestamp into a time.Time. Text without a
// zone is read as UTC; numbers are Unix seconds.
func CoerceTimestamp(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			break
		}
		return t, nil
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range timestampLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts, nil
			}
		}
		if secs, err := strconv.ParseFloat(s, 64); err == nil {
			if ts, ok := unixSeconds(secs); ok {
				return ts, nil
			}
		}
	case float64:
		if ts, ok := unixSeconds(t); ok {
			return ts, nil
		}
	case int64:
		if ts, ok := unixSeconds(float64(t)); ok {
			return ts, nil
		}
	case int:
		if ts, ok := unixSeconds(float64(t)); ok {
			return ts, nil
		}
	}
	return time.Time{}, &ConversionError{Field: KeyMeasuredAt, Value: v, Err: errors.New("unrecognized timestamp")}
}

// Unix seconds bounding years 0001 through 9999.
const (
	minUnixSeconds = -62135596800
	maxUnixSeconds = 253402300799
)

// unixSeconds reports false for NaN, infinities and instants outside years
// 0001 through 9999, which int64 conversion would otherwise wrap.
func unixSeconds(secs float64) (time.Time, bool) {
	if !(secs >= minUnixSeconds && secs <= maxUnixSeconds) {
		return time.Time{}, false
	}
	whole := int64(secs)
	frac := int64((secs - float64(whole)) * float64(time.Second))
	return time.Unix(whole, frac).UTC(), true
}
