package history

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store := NewSQLiteStore()
	if err := store.Initialize(filepath.Join(t.TempDir(), "history.db")); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore_SaveAndGet(t *testing.T) {
	store := newTestStore(t)

	created := time.Unix(1700000000, 42)
	want := Record{
		ID:         "abc123",
		SourceHash: "deadbeef",
		Length:     2,
		Sentences:  []string{"First.", "Second."},
		CreatedAt:  created,
	}
	if err := store.Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Get("abc123")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if diff := cmp.Diff(want, *got); diff != "" {
		t.Errorf("Get() mismatch (-want +got):\n%s", diff)
	}

	if _, err := store.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStore_SaveEmptySentences(t *testing.T) {
	store := newTestStore(t)

	if err := store.Save(Record{ID: "empty", Length: 4}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := store.Get("empty")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Sentences == nil || len(got.Sentences) != 0 {
		t.Errorf("expected empty non-nil sentences, got %#v", got.Sentences)
	}
	if got.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be filled in")
	}

	if err := store.Save(Record{}); err == nil {
		t.Error("expected error for record without id")
	}
}

func TestSQLiteStore_ListNewestFirst(t *testing.T) {
	store := newTestStore(t)

	base := time.Unix(1700000000, 0)
	for i, id := range []string{"a", "b", "c"} {
		record := Record{ID: id, Sentences: []string{id}, CreatedAt: base.Add(time.Duration(i) * time.Second)}
		if err := store.Save(record); err != nil {
			t.Fatalf("Save(%s) error = %v", id, err)
		}
	}

	ids := func(records []Record) []string {
		out := make([]string, len(records))
		for i, r := range records {
			out[i] = r.ID
		}
		return out
	}

	all, err := store.List(0)
	if err != nil {
		t.Fatalf("List(0) error = %v", err)
	}
	if diff := cmp.Diff([]string{"c", "b", "a"}, ids(all)); diff != "" {
		t.Errorf("List(0) mismatch (-want +got):\n%s", diff)
	}

	two, err := store.List(2)
	if err != nil {
		t.Fatalf("List(2) error = %v", err)
	}
	if diff := cmp.Diff([]string{"c", "b"}, ids(two)); diff != "" {
		t.Errorf("List(2) mismatch (-want +got):\n%s", diff)
	}
}

func TestSQLiteStore_DeleteAndClear(t *testing.T) {
	store := newTestStore(t)

	for _, id := range []string{"a", "b", "c"} {
		if err := store.Save(Record{ID: id}); err != nil {
			t.Fatalf("Save(%s) error = %v", id, err)
		}
	}

	if err := store.Delete("b"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := store.Delete("b"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}

	count, err := store.Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 2 {
		t.Errorf("Count() = %d, want 2", count)
	}

	removed, err := store.Clear()
	if err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if removed != 2 {
		t.Errorf("Clear() removed %d, want 2", removed)
	}

	records, err := store.List(0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected empty store, got %d records", len(records))
	}
}

func TestSQLiteStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	store := NewSQLiteStore()
	if err := store.Initialize(path); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if err := store.Save(Record{ID: "keep", Sentences: []string{"Kept."}}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened := NewSQLiteStore()
	if err := reopened.Initialize(path); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Get("keep")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if diff := cmp.Diff([]string{"Kept."}, got.Sentences); diff != "" {
		t.Errorf("sentences mismatch (-want +got):\n%s", diff)
	}
}

func TestSQLiteStore_NotInitialized(t *testing.T) {
	store := NewSQLiteStore()

	if err := store.Save(Record{ID: "x"}); err == nil {
		t.Error("expected Save error before Initialize")
	}
	if _, err := store.List(0); err == nil {
		t.Error("expected List error before Initialize")
	}
	if err := store.Close(); err != nil {
		t.Errorf("Close() on unopened store error = %v", err)
	}
}
