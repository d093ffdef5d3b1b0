package store

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "checkpoints.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore_SaveAndLoad(t *testing.T) {
	store := newTestSQLiteStore(t)

	original := validCheckpoint()
	if err := store.SaveCheckpoint(original.JobID, original); err != nil {
		t.Fatalf("SaveCheckpoint failed: %v", err)
	}

	loaded, err := store.LoadCheckpoint(original.JobID)
	if err != nil {
		t.Fatalf("LoadCheckpoint failed: %v", err)
	}
	if loaded.BestCost != original.BestCost {
		t.Errorf("BestCost = %v, want %v", loaded.BestCost, original.BestCost)
	}
	if !reflect.DeepEqual(loaded.Config, original.Config) {
		t.Errorf("Config = %+v, want %+v", loaded.Config, original.Config)
	}
	for i := range loaded.BestParams {
		if loaded.BestParams[i] != original.BestParams[i] {
			t.Errorf("BestParams[%d] = %v, want %v", i, loaded.BestParams[i], original.BestParams[i])
		}
	}
}

func TestSQLiteStore_Upsert(t *testing.T) {
	store := newTestSQLiteStore(t)

	c := validCheckpoint()
	if err := store.SaveCheckpoint(c.JobID, c); err != nil {
		t.Fatalf("first save failed: %v", err)
	}
	c.BestCost = 0.0001
	c.Generation = 40
	if err := store.SaveCheckpoint(c.JobID, c); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	infos, err := store.ListCheckpoints()
	if err != nil {
		t.Fatalf("ListCheckpoints failed: %v", err)
	}
	if len(infos) != 1 {
		t.Fatalf("expected 1 row after upsert, got %d", len(infos))
	}
	if infos[0].BestCost != 0.0001 || infos[0].Generation != 40 {
		t.Errorf("upsert not applied: %+v", infos[0])
	}
	if infos[0].Timestamp.IsZero() {
		t.Error("listing lost the timestamp")
	}
}

func TestSQLiteStore_LoadMissing(t *testing.T) {
	store := newTestSQLiteStore(t)

	_, err := store.LoadCheckpoint("no-such-job")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteStore_Delete(t *testing.T) {
	store := newTestSQLiteStore(t)

	c := validCheckpoint()
	if err := store.SaveCheckpoint(c.JobID, c); err != nil {
		t.Fatalf("SaveCheckpoint failed: %v", err)
	}
	if err := store.DeleteCheckpoint(c.JobID); err != nil {
		t.Fatalf("DeleteCheckpoint failed: %v", err)
	}
	if _, err := store.LoadCheckpoint(c.JobID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.DeleteCheckpoint(c.JobID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestSQLiteStore_SaveRejectsInvalid(t *testing.T) {
	store := newTestSQLiteStore(t)

	bad := validCheckpoint()
	bad.Config.Function = ""
	if err := store.SaveCheckpoint(bad.JobID, bad); err == nil {
		t.Fatal("expected error saving invalid checkpoint, got nil")
	}
}

func TestNewStore_Factory(t *testing.T) {
	for _, kind := range []string{"fs", "sqlite"} {
		t.Run(kind, func(t *testing.T) {
			s, err := NewStore(kind, t.TempDir())
			if err != nil {
				t.Fatalf("NewStore(%q) failed: %v", kind, err)
			}
			defer CloseIfSupported(s)

			c := validCheckpoint()
			if err := s.SaveCheckpoint(c.JobID, c); err != nil {
				t.Fatalf("SaveCheckpoint failed: %v", err)
			}
			loaded, err := s.LoadCheckpoint(c.JobID)
			if err != nil {
				t.Fatalf("LoadCheckpoint failed: %v", err)
			}
			if loaded.BestCost != c.BestCost {
				t.Errorf("BestCost = %v, want %v", loaded.BestCost, c.BestCost)
			}
		})
	}

	if _, err := NewStore("redis", t.TempDir()); err == nil {
		t.Fatal("expected error for unknown backend, got nil")
	}
}
