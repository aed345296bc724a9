// Package store keeps records of completed search runs.
//
// The HTTP server assigns every run an ID and saves a [Run] so clients can
// fetch the result later. Three backends implement [Store]:
//   - [MemoryStore]: in-process, for tests and single-shot servers
//   - [FileStore]: JSON files in a directory, for a single instance
//   - [MongoStore]: a MongoDB collection, for multi-instance deployments
//
// Create and look up runs:
//
//	run := store.NewRun(inputHash, res, encoded)
//	if err := st.Save(ctx, run); err != nil {
//	    return err
//	}
//	run, err := st.Get(ctx, id) // NOT_FOUND if unknown
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/parsimony/pkg/errors"
	"github.com/matzehuels/parsimony/pkg/search"
)

// DefaultListLimit caps List when no limit is given.
const DefaultListLimit = 50

// Run is the record of one completed search.
type Run struct {
	ID         string    `json:"id" bson:"_id"`
	InputHash  string    `json:"input_hash" bson:"input_hash"`
	Score      int       `json:"score" bson:"score"`
	Leaves     int       `json:"leaves" bson:"leaves"`
	Columns    int       `json:"columns" bson:"columns"`
	Topologies int       `json:"topologies" bson:"topologies"`
	Truncated  bool      `json:"truncated,omitempty" bson:"truncated,omitempty"`
	Result     []byte    `json:"result" bson:"result"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}

// NewRun creates a record with a fresh ID. encoded is the JSON form of res.
func NewRun(inputHash string, res *search.Result, encoded []byte) *Run {
	return &Run{
		ID:         uuid.NewString(),
		InputHash:  inputHash,
		Score:      res.Score,
		Leaves:     res.Leaves,
		Columns:    res.Columns,
		Topologies: len(res.Topologies),
		Truncated:  res.Truncated,
		Result:     encoded,
		CreatedAt:  time.Now().UTC(),
	}
}

// Store is the interface for run storage backends.
type Store interface {
	// Save stores a run, replacing any run with the same ID.
	Save(ctx context.Context, run *Run) error

	// Get returns the run with the given ID, or a NOT_FOUND error.
	Get(ctx context.Context, id string) (*Run, error)

	// List returns up to limit runs, newest first.
	List(ctx context.Context, limit int) ([]*Run, error)

	// Delete removes a run. Deleting an unknown ID is not an error.
	Delete(ctx context.Context, id string) error

	// Close releases the backend.
	Close() error
}

// ValidateID rejects IDs that are not UUIDs before they reach a backend.
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.New(errors.ErrCodeNotFound, "run %q not found", id)
	}
	return nil
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeNotFound, "run %q not found", id)
}

func listLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
