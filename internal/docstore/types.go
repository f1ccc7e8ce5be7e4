package docstore

import (
	"context"
	"errors"
)

// ErrNotFound reports an id that the addressed collection does not hold.
var ErrNotFound = errors.New("record not found")

// Fields is the document payload for one task record. The record id is
// carried out-of-band as the record key and is assigned by the store on
// creation.
type Fields struct {
	Title  string `json:"title"`
	Date   string `json:"date"`
	Status string `json:"status"`
}

// Record is a stored document together with its store-assigned key.
type Record struct {
	ID string `json:"id"`
	Fields
}

// Patch carries the fields to overwrite on an update. Nil fields are left
// untouched.
type Patch struct {
	Title  *string `json:"title,omitempty"`
	Date   *string `json:"date,omitempty"`
	Status *string `json:"status,omitempty"`
}

// Store is an addressable collection of task records. Every call may fail
// for transport or permission reasons; callers treat all failures uniformly.
type Store interface {
	CreateRecord(ctx context.Context, collection string, fields Fields) (string, error)
	ListRecords(ctx context.Context, collection string) ([]Record, error)
	UpdateRecord(ctx context.Context, collection, id string, patch Patch) error
	DeleteRecord(ctx context.Context, collection, id string) error
	Close() error
}
