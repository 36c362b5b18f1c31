// Package history provides storage interfaces and implementations for
// summaries produced by the extractsum service.
package history

import (
	"errors"
	"time"
)

// ErrNotFound is returned when no summary exists for an id.
var ErrNotFound = errors.New("summary not found")

// Record is a stored summary.
type Record struct {
	ID         string    `json:"id"`
	SourceHash string    `json:"source_hash"`
	Length     int       `json:"length"`
	Sentences  []string  `json:"sentences"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store defines the interface for storing and retrieving summaries.
type Store interface {
	// Initialize initializes the store with configuration options.
	Initialize(dbPath string) error

	// Close closes the store and releases any resources.
	Close() error

	// Save stores a summary record, replacing any record with the same id.
	Save(record Record) error

	// Get returns the record with the given id or ErrNotFound.
	Get(id string) (*Record, error)

	// List returns up to limit records, newest first. A non-positive limit
	// returns every record.
	List(limit int) ([]Record, error)

	// Delete removes the record with the given id or returns ErrNotFound.
	Delete(id string) error

	// Clear removes every record and returns how many were removed.
	Clear() (int, error)

	// Count returns the number of stored records.
	Count() (int, error)
}
