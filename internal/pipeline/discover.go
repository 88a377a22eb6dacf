package pipeline

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// DiscoverStationPaths maps each immediate subdirectory of root (a station) to
// the files beneath it whose base name matches pattern. Files directly in root
// are ignored. Stations without matching files map to an empty slice.
func DiscoverStationPaths(root, pattern string) (map[string][]string, error) {
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("station file pattern %q: %w", pattern, err)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("list stations in %s: %w", root, err)
	}

	stations := make(map[string][]string)
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		paths, err := stationFiles(filepath.Join(root, e.Name()), pattern)
		if err != nil {
			return nil, err
		}
		stations[e.Name()] = paths
	}
	return stations, nil
}

func stationFiles(dir, pattern string) ([]string, error) {
	paths := []string{}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if ok, _ := filepath.Match(pattern, d.Name()); ok {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk station %s: %w", dir, err)
	}
	sort.Strings(paths)
	return paths, nil
}
