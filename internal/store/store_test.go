package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

type doc struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// TestFileStore_DefaultSeeding tests that a missing document is created
// from the given default
func TestFileStore_DefaultSeeding(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	var list []doc
	if err := s.Load(context.Background(), "patients", &list, []doc{}); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("Expected empty default, got %+v", list)
	}

	if _, err := os.Stat(filepath.Join(dir, "patients.json")); err != nil {
		t.Errorf("Expected seeded file on disk, got: %v", err)
	}
}

// TestFileStore_RoundTrip tests save then load of a document
func TestFileStore_RoundTrip(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	ctx := context.Background()

	in := []doc{{Name: "شربت متادون", Count: 3}}
	if err := s.Save(ctx, "drug-deliveries", in); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	var out []doc
	if err := s.Load(ctx, "drug-deliveries", &out, []doc{}); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(out) != 1 || out[0].Name != "شربت متادون" || out[0].Count != 3 {
		t.Errorf("Expected round-tripped document, got %+v", out)
	}
}

// TestFileStore_RejectsUnsafeNames tests the document name guard
func TestFileStore_RejectsUnsafeNames(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	ctx := context.Background()

	for _, name := range []string{"../etc/passwd", "Upper", "with space", ""} {
		var out []doc
		if err := s.Load(ctx, name, &out, []doc{}); err == nil {
			t.Errorf("Expected error for name %q, got nil", name)
		}
		if err := s.Save(ctx, name, []doc{}); err == nil {
			t.Errorf("Expected error for name %q, got nil", name)
		}
	}
}

// TestMemStore_RoundTrip tests the in-memory backend including defaults
func TestMemStore_RoundTrip(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	var out []doc
	if err := s.Load(ctx, "notifications", &out, []doc{}); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("Expected empty default, got %+v", out)
	}

	if err := s.Save(ctx, "notifications", []doc{{Name: "n", Count: 1}}); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if err := s.Load(ctx, "notifications", &out, []doc{}); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(out) != 1 || out[0].Count != 1 {
		t.Errorf("Expected saved document back, got %+v", out)
	}
}
