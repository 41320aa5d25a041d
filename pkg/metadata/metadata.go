// Package metadata writes and verifies export manifests: one JSON file per output
// directory listing every exported file with its record count and SHA-256 hash.
package metadata

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// ManifestName is the file name of the manifest inside an output directory.
const ManifestName = "manifest.json"

// Manifest verification errors.
var (
	ErrNoManifest   = errors.New("no manifest found")
	ErrNoHashFound  = errors.New("no hash found in manifest entry")
	ErrHashMismatch = errors.New("hash mismatch")
)

// FileEntry describes one exported file, relative to the manifest directory.
type FileEntry struct {
	Name    string `json:"name"`
	Table   string `json:"table"`
	Format  string `json:"format"`
	Hash    string `json:"sha256"`
	Bytes   int64  `json:"bytes"`
	Records int    `json:"records"`
}

// Manifest contains the provenance of one layout export.
type Manifest struct {
	CreatedAt time.Time   `json:"created_at"`
	RunID     string      `json:"run_id"`
	Layout    string      `json:"layout"`
	Version   string      `json:"version"`
	Files     []FileEntry `json:"files"`
}

// Version of the manifest format.
const Version = "1"

// New creates an empty manifest.
func New(runID, layout string, createdAt time.Time) *Manifest {
	return &Manifest{
		RunID:     runID,
		Layout:    layout,
		Version:   Version,
		CreatedAt: createdAt.UTC(),
		Files:     []FileEntry{},
	}
}

// CalculateHash computes the SHA-256 hash and size of a file.
func CalculateHash(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	h := sha256.New()

	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, err
	}

	return hex.EncodeToString(h.Sum(nil)), n, nil
}

// Add hashes dir/name and records it.
func (m *Manifest) Add(dir, name, table, format string, records int) error {
	hash, size, err := CalculateHash(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("failed to hash %s: %w", name, err)
	}

	m.Files = append(m.Files, FileEntry{
		Name:    name,
		Table:   table,
		Format:  format,
		Hash:    hash,
		Bytes:   size,
		Records: records,
	})

	return nil
}

// Sign writes the manifest into dir and returns its path.
func (m *Manifest) Sign(dir string) (string, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal manifest: %w", err)
	}

	path := filepath.Join(dir, ManifestName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write manifest: %w", err)
	}

	return path, nil
}

// Load reads the manifest of dir.
func Load(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w in %s", ErrNoManifest, dir)
	}

	if err != nil {
		return nil, err
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	return &m, nil
}

// Verify re-hashes every file listed in the manifest of dir.
func Verify(dir string) (*Manifest, error) {
	m, err := Load(dir)
	if err != nil {
		return nil, err
	}

	for _, f := range m.Files {
		if f.Hash == "" {
			return m, fmt.Errorf("%w: %s", ErrNoHashFound, f.Name)
		}

		calculated, _, err := CalculateHash(filepath.Join(dir, f.Name))
		if err != nil {
			return m, fmt.Errorf("failed to hash %s: %w", f.Name, err)
		}

		if calculated != f.Hash {
			return m, fmt.Errorf("%w: %s: expected %s, got %s", ErrHashMismatch, f.Name, f.Hash, calculated)
		}
	}

	return m, nil
}
