// Package extract reads the raw users, products and carts collections from disk or from
// the paginated upstream API.
package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"reshape/internal/logger"
	"reshape/internal/models"
)

// Collection names, which are also the file stems and the API paths.
const (
	Users    = "users"
	Products = "products"
	Carts    = "carts"
)

var ErrMissingEnvelopeKey = errors.New("envelope has no collection key")

// Source produces a raw dataset.
type Source interface {
	Fetch(ctx context.Context) (*models.RawDataset, error)
}

// FileSource reads users.json, products.json and carts.json from Dir.
type FileSource struct {
	log *logger.Logger
	Dir string
}

// NewFileSource creates a file source.
func NewFileSource(dir string, log *logger.Logger) *FileSource {
	if log == nil {
		log = logger.Discard()
	}

	return &FileSource{Dir: dir, log: log}
}

// Fetch reads all three collections. A missing file leaves its collection nil; a
// malformed one is an error.
func (s *FileSource) Fetch(ctx context.Context) (*models.RawDataset, error) {
	ds := &models.RawDataset{}

	var err error
	if ds.Users, err = readCollection[models.RawUser](ctx, s, Users); err != nil {
		return nil, err
	}

	if ds.Products, err = readCollection[models.RawProduct](ctx, s, Products); err != nil {
		return nil, err
	}

	if ds.Carts, err = readCollection[models.RawCart](ctx, s, Carts); err != nil {
		return nil, err
	}

	return ds, nil
}

func readCollection[T any](ctx context.Context, s *FileSource, name string) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(s.Dir, name+".json")

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		s.log.Warn("raw source missing", "source", name, "path", path)
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	records, err := decodeCollection[T](data, name)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	s.log.Info("read raw source", "source", name, "records", len(records))

	return records, nil
}

// decodeCollection accepts a bare JSON array or an object holding the array under key.
func decodeCollection[T any](data []byte, key string) ([]T, error) {
	trimmed := bytes.TrimSpace(data)

	if bytes.HasPrefix(trimmed, []byte("[")) {
		records := []T{}
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, err
		}

		return records, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, err
	}

	raw, ok := envelope[key]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrMissingEnvelopeKey, key)
	}

	records := []T{}
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, err
	}

	return records, nil
}

// SaveRaw writes each non-nil collection of ds to dir as an upstream-style envelope.
func SaveRaw(dir string, ds *models.RawDataset) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	collections := []struct {
		records any
		name    string
		count   int
		present bool
	}{
		{name: Users, records: ds.Users, count: len(ds.Users), present: ds.Users != nil},
		{name: Products, records: ds.Products, count: len(ds.Products), present: ds.Products != nil},
		{name: Carts, records: ds.Carts, count: len(ds.Carts), present: ds.Carts != nil},
	}

	for _, c := range collections {
		if !c.present {
			continue
		}

		data, err := json.MarshalIndent(map[string]any{
			c.name:  c.records,
			"total": c.count,
			"skip":  0,
			"limit": c.count,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal %s: %w", c.name, err)
		}

		path := filepath.Join(dir, c.name+".json")
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}

	return nil
}
