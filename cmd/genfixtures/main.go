// Command genfixtures writes a reproducible measurements tree and country
// metadata for local runs of weather-etl. Half the stations report celsius,
// the other half fahrenheit. After writing, every file is read back through
// the ingestion readers to check the tree normalizes cleanly.
//
// Usage:
//
//	go run ./cmd/genfixtures -out data -countries-out config/countries -days 30
package main

import (
	"encoding/json"
	"encoding/xml"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/couchcryptid/weather-station-etl/internal/document"
	"github.com/couchcryptid/weather-station-etl/internal/domain"
	"github.com/couchcryptid/weather-station-etl/internal/pipeline"
	"github.com/jonboulle/clockwork"
)

type city struct {
	name       string
	country    string
	population float64
	meanC      float64
}

var cities = []city{
	{name: "berlin", country: "germany", population: 3.6, meanC: 10},
	{name: "paris", country: "france", population: 2.1, meanC: 12},
	{name: "oslo", country: "norway", population: 0.7, meanC: 6},
	{name: "madrid", country: "spain", population: 3.3, meanC: 16},
}

var stations = []struct {
	name string
	unit string
}{
	{name: "StationA", unit: "celsius"},
	{name: "StationB", unit: "fahrenheit"},
	{name: "StationC", unit: "celsius"},
	{name: "StationD", unit: "fahrenheit"},
}

// xmlMeasurement mirrors the station file layout: the temperature carries
// both unit branches with only one populated.
type xmlMeasurement struct {
	XMLName     xml.Name `xml:"measurement"`
	City        string   `xml:"city"`
	Temperature struct {
		Values []xmlValue `xml:"value"`
	} `xml:"temperature"`
	MeasuredAt string `xml:"measured_at_ts"`
}

type xmlValue struct {
	Unit  string `xml:"unit,attr"`
	Value string `xml:",chardata"`
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "data", "measurements root to write station directories into")
	countriesOut := flag.String("countries-out", "config/countries", "directory for country metadata files")
	days := flag.Int("days", 30, "days of hourly-ish measurements per station")
	seed := flag.Uint64("seed", 1, "random seed")
	flag.Parse()

	if *days < 1 {
		flag.Usage()
		return fmt.Errorf("-days must be positive")
	}

	// Fixed clock for reproducible timestamps.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2024, time.April, 27, 6, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	rng := rand.New(rand.NewPCG(*seed, *seed))
	written := 0
	for si, st := range stations {
		for d := range *days {
			for ci, c := range cities {
				if (si+ci+d)%3 == 0 {
					continue
				}
				at := domain.Now().Add(-time.Duration(d)*24*time.Hour - time.Duration(ci*3+si)*time.Hour)
				celsius := c.meanC + rng.NormFloat64()*4
				path := filepath.Join(*out, st.name, at.Format("2006-01"), fmt.Sprintf("%s-%s.xml", c.name, at.Format("20060102T15")))
				if err := writeMeasurement(path, c.name, st.unit, celsius, at); err != nil {
					return fmt.Errorf("writing %s: %w", path, err)
				}
				written++
			}
		}
	}
	log.Printf("wrote %d measurement files under %s", written, *out)

	for _, c := range cities {
		path := filepath.Join(*countriesOut, c.name+".json")
		if err := writeJSON(path, map[string]any{
			"city":         c.name,
			"country":      c.country,
			"population_M": c.population,
		}); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	log.Printf("wrote %d country files under %s", len(cities), *countriesOut)

	return verify(*out, written)
}

func writeMeasurement(path, cityName, unit string, celsius float64, at time.Time) error {
	var m xmlMeasurement
	m.City = cityName
	m.MeasuredAt = at.Format("2006-01-02T15:04:05")

	value := celsius
	if unit == "fahrenheit" {
		value = domain.ToFahrenheit(celsius)
	}
	for _, u := range []string{"celsius", "fahrenheit"} {
		v := xmlValue{Unit: u}
		if u == unit {
			v.Value = strconv.FormatFloat(value, 'f', 2, 64)
		}
		m.Temperature.Values = append(m.Temperature.Values, v)
	}

	data, err := xml.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, append([]byte(xml.Header), append(data, '\n')...), 0o600)
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

// verify reads the tree back the way ingestion does and checks every file
// yields one complete measurement.
func verify(root string, want int) error {
	paths, err := pipeline.DiscoverStationPaths(root, "*.xml")
	if err != nil {
		return err
	}

	complete := 0
	for station, files := range paths {
		raws := make([]domain.RawMeasurement, 0, len(files))
		for _, f := range files {
			raw, err := document.ReadFile(f)
			if err != nil {
				return err
			}
			raws = append(raws, raw)
		}
		ms, err := domain.Normalize(station, raws)
		if err != nil {
			return fmt.Errorf("station %s: %w", station, err)
		}
		for _, m := range ms {
			if m.Complete() {
				complete++
			}
		}
	}
	if complete < want {
		return fmt.Errorf("verify: %d of %d measurements complete", complete, want)
	}
	log.Printf("verified %d measurements", complete)
	return nil
}
