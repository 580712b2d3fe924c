package storage

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T, maxSnapshots int) *ImageStore {
	t.Helper()
	tempDir, err := os.MkdirTemp("", "yaesutool-storage-test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := NewImageStore(filepath.Join(tempDir, "archive.db"), maxSnapshots)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNewImageStore(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "yaesutool-storage-test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	t.Run("Nested Directory Is Created", func(t *testing.T) {
		dbPath := filepath.Join(tempDir, "nested", "dir", "archive.db")
		store, err := NewImageStore(dbPath, 10)
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		defer store.Close()

		if _, err := os.Stat(filepath.Dir(dbPath)); os.IsNotExist(err) {
			t.Error("Expected nested directory to be created")
		}
	})
}

func TestSnapshots(t *testing.T) {
	t.Run("Save And Get", func(t *testing.T) {
		store := newTestStore(t, 10)

		data := []byte{0x41, 0x48, 0x30, 0x31, 0x35, 0x24, 0x00, 0x99}
		id, err := store.SaveSnapshot("Yaesu VX-2", "before trip", 0x99, data)
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if id == 0 {
			t.Error("Expected a snapshot ID")
		}

		s, err := store.GetSnapshot(id)
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if s.Model != "Yaesu VX-2" {
			t.Errorf("Expected model 'Yaesu VX-2', got %s", s.Model)
		}
		if s.Note != "before trip" {
			t.Errorf("Expected note 'before trip', got %s", s.Note)
		}
		if s.Checksum != 0x99 {
			t.Errorf("Expected checksum 0x99, got %02x", s.Checksum)
		}
		if s.Size != len(data) {
			t.Errorf("Expected size %d, got %d", len(data), s.Size)
		}
		if !bytes.Equal(s.Data, data) {
			t.Error("Expected snapshot data to round trip")
		}
	})

	t.Run("Missing Snapshot", func(t *testing.T) {
		store := newTestStore(t, 10)
		if _, err := store.GetSnapshot(12345); err == nil {
			t.Error("Expected error for a missing snapshot")
		}
	})

	t.Run("List Without Blobs", func(t *testing.T) {
		store := newTestStore(t, 10)
		for i := 0; i < 3; i++ {
			if _, err := store.SaveSnapshot("Yaesu FT-60R", fmt.Sprintf("n%d", i), 0, []byte{byte(i)}); err != nil {
				t.Fatalf("Expected no error, got: %v", err)
			}
		}

		snapshots, err := store.ListSnapshots()
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if len(snapshots) != 3 {
			t.Fatalf("Expected 3 snapshots, got %d", len(snapshots))
		}
		// Newest first.
		if snapshots[0].ID < snapshots[2].ID {
			t.Error("Expected snapshots in newest-first order")
		}
		for _, s := range snapshots {
			if s.Data != nil {
				t.Error("Expected the listing to omit image blobs")
			}
		}
	})

	t.Run("Prune Beyond Limit", func(t *testing.T) {
		store := newTestStore(t, 2)
		var ids []int64
		for i := 0; i < 4; i++ {
			id, err := store.SaveSnapshot("Yaesu VX-2", "", 0, []byte{byte(i)})
			if err != nil {
				t.Fatalf("Expected no error, got: %v", err)
			}
			ids = append(ids, id)
		}

		snapshots, err := store.ListSnapshots()
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if len(snapshots) != 2 {
			t.Fatalf("Expected 2 snapshots after pruning, got %d", len(snapshots))
		}
		if _, err := store.GetSnapshot(ids[0]); err == nil {
			t.Error("Expected the oldest snapshot to be pruned")
		}
		if _, err := store.GetSnapshot(ids[3]); err != nil {
			t.Errorf("Expected the newest snapshot to survive, got: %v", err)
		}
	})
}
