// Package document reads measurement and metadata source files into flat
// key-value mappings.
package document

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/weather-station-etl/internal/domain"
)

// ErrRead is matched by every *Error.
var ErrRead = errors.New("document read failed")

// Error reports a source file that could not be read or parsed.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("read document %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrRead) match any Error.
func (e *Error) Is(target error) bool { return target == ErrRead }

func wrap(path string, err error) error {
	return &Error{Path: path, Err: err}
}

// Reader turns one source file into a flat mapping.
type Reader interface {
	Read(path string) (domain.RawMeasurement, error)
}

// ForPath selects a reader for the file's suffix.
func ForPath(path string) (Reader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml":
		return XMLReader{}, nil
	case ".json", ".yaml", ".yml":
		return KeyValueReader{}, nil
	default:
		return nil, wrap(path, fmt.Errorf("unsupported format %q", filepath.Ext(path)))
	}
}

// ReadFile reads path with the reader matching its suffix.
func ReadFile(path string) (domain.RawMeasurement, error) {
	r, err := ForPath(path)
	if err != nil {
		return nil, err
	}
	return r.Read(path)
}

// ByExtension dispatches each Read to the reader matching the file suffix.
type ByExtension struct{}

func (ByExtension) Read(path string) (domain.RawMeasurement, error) {
	return ReadFile(path)
}

var (
	_ Reader = ByExtension{}
	_ Reader = XMLReader{}
	_ Reader = KeyValueReader{}
)
