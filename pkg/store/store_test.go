package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/parsimony/pkg/errors"
	"github.com/matzehuels/parsimony/pkg/search"
)

func sampleRun(created time.Time) *Run {
	run := NewRun("abc", &search.Result{Score: 4, Leaves: 5, Columns: 3, Topologies: make([]*search.Topology, 2)}, []byte(`{"score":4}`))
	run.CreatedAt = created
	return run
}

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	older := sampleRun(base)
	newer := sampleRun(base.Add(time.Minute))
	for _, run := range []*Run{older, newer} {
		if err := s.Save(ctx, run); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	got, err := s.Get(ctx, older.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ID != older.ID || got.Score != 4 || got.Topologies != 2 || string(got.Result) != `{"score":4}` {
		t.Errorf("Get() = %+v, want %+v", got, older)
	}
	if !got.CreatedAt.Equal(base) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, base)
	}

	if _, err := s.Get(ctx, uuid.NewString()); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Get(unknown) error = %v, want %s", err, errors.ErrCodeNotFound)
	}

	runs, err := s.List(ctx, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(runs) != 2 || runs[0].ID != newer.ID || runs[1].ID != older.ID {
		t.Errorf("List() returned %d runs, want newest first", len(runs))
	}
	if runs, _ := s.List(ctx, 1); len(runs) != 1 {
		t.Errorf("List(1) returned %d runs", len(runs))
	}

	if err := s.Delete(ctx, older.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Get(ctx, older.ID); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Get() after Delete() error = %v", err)
	}
	if err := s.Delete(ctx, older.ID); err != nil {
		t.Errorf("Delete(unknown) error = %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	exerciseStore(t, s)
}

func TestMemoryStoreCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	run := sampleRun(time.Now())
	if err := s.Save(ctx, run); err != nil {
		t.Fatal(err)
	}
	run.Score = 99
	got, _ := s.Get(ctx, run.ID)
	if got.Score != 4 {
		t.Errorf("stored run changed with the caller's copy: score %d", got.Score)
	}
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	defer s.Close()
	exerciseStore(t, s)
}

func TestFileStoreRejectsPathIDs(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	if _, err := s.Get(context.Background(), "../etc/passwd"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Get(path) error = %v, want %s", err, errors.ErrCodeNotFound)
	}
	run := sampleRun(time.Now())
	run.ID = "../escape"
	if err := s.Save(context.Background(), run); err == nil {
		t.Error("Save() with a path ID should fail")
	}
}

func TestNewRun(t *testing.T) {
	run := sampleRun(time.Now())
	if _, err := uuid.Parse(run.ID); err != nil {
		t.Errorf("NewRun() ID %q is not a UUID: %v", run.ID, err)
	}
	if run.InputHash != "abc" || run.Leaves != 5 || run.Columns != 3 {
		t.Errorf("NewRun() = %+v", run)
	}
	if NewRun("abc", &search.Result{}, nil).ID == run.ID {
		t.Error("NewRun() should assign fresh IDs")
	}
}

// TestMongoStore runs against a live server when PARSIMONY_TEST_MONGO_URI
// is set.
func TestMongoStore(t *testing.T) {
	uri := os.Getenv("PARSIMONY_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("PARSIMONY_TEST_MONGO_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s, err := NewMongoStore(ctx, uri, "parsimony_test_"+uuid.NewString()[:8])
	if err != nil {
		t.Fatalf("NewMongoStore() error = %v", err)
	}
	defer func() {
		_ = s.runs.Database().Drop(context.Background())
		s.Close()
	}()
	exerciseStore(t, s)
}
