package storage

import (
	"context"

	"github.com/pkg/errors"
)

// Common errors that can be returned
var (
	ErrNoRecordExists = errors.New("no record exists")
)

// Record is a single counter row. The visitor counter keeps exactly one.
type Record struct {
	ID    string `dynamodbav:"Id" json:"Id"`
	Count int64  `dynamodbav:"count" json:"count"`
}

// ReadOperator provides an interface for performing read operations.
type ReadOperator interface {
	// Retrieve a record.
	// Returns ErrNoRecordExists if the record is absent.
	Get(ctx context.Context, id string) (*Record, error)
}

// WriteOperator provides an interface for performing write operations.
type WriteOperator interface {
	// Store a record, replacing any existing record with the same ID.
	Put(ctx context.Context, r *Record) error
	// Increment adds delta to the count of the record, initializing the count to 0
	// first if the record or its count is absent. Both steps happen as one atomic
	// operation of the backend. The returned value is the count after the update,
	// or 0 if the backend did not report it.
	Increment(ctx context.Context, id string, delta int64) (int64, error)
}

// Common interface for interacting with a counter table.
type Interface interface {
	ReadOperator
	WriteOperator
}
