package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/weather-station-etl/internal/domain"
	"gopkg.in/yaml.v3"
)

// KeyValueReader parses JSON or YAML documents into a mapping without
// flattening nested values.
type KeyValueReader struct{}

func (KeyValueReader) Read(path string) (domain.RawMeasurement, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, wrap(path, err)
	}

	var out map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &out)
	default:
		err = json.Unmarshal(data, &out)
	}
	if err != nil {
		return nil, wrap(path, fmt.Errorf("parse document: %w", err))
	}
	if out == nil {
		return nil, wrap(path, errors.New("document is empty"))
	}
	return domain.RawMeasurement(out), nil
}
