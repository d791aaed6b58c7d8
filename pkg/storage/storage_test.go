package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gomcpgo/replicate/pkg/types"
)

func TestSaveAndLoadRecord(t *testing.T) {
	store := NewStorage(t.TempDir())
	started := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	rec := &types.PredictionRecord{
		PredictionID: "abc123",
		Model:        "owner/model",
		ModelVersion: "v3",
		Status:       types.StatusSucceeded,
		Input:        map[string]interface{}{"prompt": "a cat"},
		Output:       []interface{}{"https://example.test/out.png"},
		Polls:        3,
		StartedAt:    started,
		FinishedAt:   started.Add(12 * time.Second),
	}
	if err := store.SaveRecord(rec); err != nil {
		t.Fatalf("SaveRecord() error = %v", err)
	}

	got, err := store.LoadRecord("abc123")
	if err != nil {
		t.Fatalf("LoadRecord() error = %v", err)
	}
	if got.SchemaVersion != "1.0" {
		t.Errorf("schema version = %q, want 1.0", got.SchemaVersion)
	}
	if got.Model != "owner/model" || got.Status != types.StatusSucceeded || got.Polls != 3 {
		t.Errorf("unexpected record: %+v", got)
	}
	if got.Duration() != 12*time.Second {
		t.Errorf("Duration() = %v, want 12s", got.Duration())
	}
	if got.Input["prompt"] != "a cat" {
		t.Errorf("input not preserved: %v", got.Input)
	}
}

func TestSaveRecord_RejectsBadIDs(t *testing.T) {
	store := NewStorage(t.TempDir())
	for _, id := range []string{"", "..", "a/b"} {
		if err := store.SaveRecord(&types.PredictionRecord{PredictionID: id}); err == nil {
			t.Errorf("expected error for id %q", id)
		}
	}
}

func TestListRecords_NewestFirst(t *testing.T) {
	root := t.TempDir()
	store := NewStorage(root)
	base := time.Now()

	for i, id := range []string{"old", "new", "mid"} {
		offset := map[int]time.Duration{0: 0, 1: 2 * time.Hour, 2: time.Hour}[i]
		if err := store.SaveRecord(&types.PredictionRecord{PredictionID: id, FinishedAt: base.Add(offset)}); err != nil {
			t.Fatalf("SaveRecord(%s) error = %v", id, err)
		}
	}
	// a stray directory without a record is skipped
	if err := os.MkdirAll(filepath.Join(root, "junk"), 0o755); err != nil {
		t.Fatal(err)
	}

	records, err := store.ListRecords()
	if err != nil {
		t.Fatalf("ListRecords() error = %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	want := []string{"new", "mid", "old"}
	for i, r := range records {
		if r.PredictionID != want[i] {
			t.Errorf("record %d = %s, want %s", i, r.PredictionID, want[i])
		}
	}
}

func TestListRecords_MissingRoot(t *testing.T) {
	store := NewStorage(filepath.Join(t.TempDir(), "does-not-exist"))
	records, err := store.ListRecords()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
}
