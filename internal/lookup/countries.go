package lookup

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/couchcryptid/weather-station-etl/internal/document"
	"github.com/couchcryptid/weather-station-etl/internal/domain"
)

// Country is the static metadata joined onto measurements by city.
type Country struct {
	City       string   `json:"city"`
	Country    string   `json:"country"`
	Population *float64 `json:"population_M,omitempty"`
}

// Countries indexes country metadata by title-cased city.
type Countries map[string]Country

// LoadCountries reads every file in dir whose name matches pattern. Each
// document needs city and country; population_M (or population) is optional.
func LoadCountries(dir, pattern string, r document.Reader) (Countries, error) {
	paths, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("country file pattern %q: %w", pattern, err)
	}
	sort.Strings(paths)

	out := make(Countries, len(paths))
	for _, path := range paths {
		doc, err := r.Read(path)
		if err != nil {
			return nil, err
		}
		c, err := parseCountry(doc)
		if err != nil {
			return nil, fmt.Errorf("country file %s: %w", path, err)
		}
		out[c.City] = c
	}
	return out, nil
}

func parseCountry(doc domain.RawMeasurement) (Country, error) {
	city, _ := doc["city"].(string)
	country, _ := doc["country"].(string)
	if city == "" || country == "" {
		return Country{}, errors.New("city and country are required")
	}

	c := Country{City: domain.TitleCase(city), Country: domain.TitleCase(country)}
	for _, key := range []string{"population_M", "population"} {
		v, ok := doc[key]
		if !ok || v == nil {
			continue
		}
		n, err := domain.ParseNumber(key, v)
		if err != nil {
			return Country{}, err
		}
		c.Population = &n
		break
	}
	return c, nil
}
