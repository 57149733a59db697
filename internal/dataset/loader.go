// Package dataset loads plaque records from JSON, YAML, CSV or legacy data
// script files and watches them for changes.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/couchcryptid/blue-plaque-map/internal/domain"
)

var (
	// ErrNotFound is returned when no file matches the dataset pattern.
	ErrNotFound = errors.New("dataset not found")
	// ErrUnsupportedFormat is returned for files with an unknown extension.
	ErrUnsupportedFormat = errors.New("unsupported dataset format")
)

type decoder func(data []byte) ([]domain.Plaque, error)

var decoders = map[string]decoder{
	".json": decodeJSON,
	".yaml": decodeYAML,
	".yml":  decodeYAML,
	".csv":  decodeCSV,
	".js":   decodeScript,
}

// Supported reports whether path has a dataset extension Load understands.
func Supported(path string) bool {
	_, ok := decoders[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Load reads every file matching pattern, in lexical order, and concatenates
// their records. A pattern without glob metacharacters names a single file.
func Load(ctx context.Context, pattern string) ([]domain.Plaque, error) {
	paths, err := Match(pattern)
	if err != nil {
		return nil, err
	}

	var out []domain.Plaque
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		records, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		out = append(out, records...)
	}
	return out, nil
}

// Match expands pattern to the sorted list of dataset files it names.
func Match(pattern string) ([]string, error) {
	if pattern == "" {
		return nil, fmt.Errorf("%w: empty path", ErrNotFound)
	}
	paths, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("match dataset pattern %q: %w", pattern, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, pattern)
	}
	sort.Strings(paths)
	return paths, nil
}

// LoadFile decodes a single dataset file, choosing the format by extension.
func LoadFile(path string) ([]domain.Plaque, error) {
	dec, ok := decoders[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}

	records, err := dec(data)
	if err != nil {
		return nil, fmt.Errorf("decode dataset %s: %w", path, err)
	}
	return records, nil
}

// Source returns a loader bound to pattern, suitable for a map session.
func Source(pattern string) func(ctx context.Context) ([]domain.Plaque, error) {
	return func(ctx context.Context) ([]domain.Plaque, error) {
		return Load(ctx, pattern)
	}
}
