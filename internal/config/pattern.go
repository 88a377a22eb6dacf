package config

import (
	"errors"
	"path/filepath"
)

func validPattern(pattern string) error {
	if pattern == "" {
		return errors.New("empty pattern")
	}
	_, err := filepath.Match(pattern, "")
	return err
}
