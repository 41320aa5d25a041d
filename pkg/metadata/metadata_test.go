package metadata

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSignAndVerify(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "users.json"), []byte(`[{"id":1}]`), 0644); err != nil {
		t.Fatal(err)
	}

	m := New("run-1", "normalized", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	if err := m.Add(dir, "users.json", "users", "json", 1); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if m.Files[0].Bytes != 10 {
		t.Errorf("Expected 10 bytes, got %d", m.Files[0].Bytes)
	}

	if len(m.Files[0].Hash) != 64 {
		t.Errorf("Expected hex sha256, got %q", m.Files[0].Hash)
	}

	if _, err := m.Sign(dir); err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	loaded, err := Verify(dir)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	if loaded.RunID != "run-1" || loaded.Files[0].Records != 1 {
		t.Errorf("Unexpected manifest %+v", loaded)
	}
}

func TestVerify_Tampered(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "users.csv")

	if err := os.WriteFile(path, []byte("id\n1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	m := New("run-2", "star", time.Now())
	if err := m.Add(dir, "users.csv", "users", "csv", 1); err != nil {
		t.Fatal(err)
	}

	if _, err := m.Sign(dir); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte("id\n2\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Verify(dir); !errors.Is(err, ErrHashMismatch) {
		t.Errorf("Expected ErrHashMismatch, got %v", err)
	}
}

func TestVerify_NoManifest(t *testing.T) {
	if _, err := Verify(t.TempDir()); !errors.Is(err, ErrNoManifest) {
		t.Errorf("Expected ErrNoManifest, got %v", err)
	}
}

func TestCalculateHash_KnownValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}

	hash, size, err := CalculateHash(path)
	if err != nil {
		t.Fatal(err)
	}

	const emptySHA = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if hash != emptySHA || size != 0 {
		t.Errorf("CalculateHash(empty) = %s, %d", hash, size)
	}
}
