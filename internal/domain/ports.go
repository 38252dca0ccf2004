package domain

import "context"

// Collection names a set of records in the catalog store
type Collection string

const (
	Entries       Collection = "entries"
	Reviews       Collection = "reviews"
	Subscriptions Collection = "subscriptions"
	Queries       Collection = "queries"
)

// Record is a raw document as held by the store. Any field may be missing.
type Record map[string]any

// RecordStore is the persistence collaborator of the catalog.
type RecordStore interface {
	FetchAll(ctx context.Context, collection Collection) ([]Record, error)
	// FetchOne returns ErrNotFound when no record has the given id.
	FetchOne(ctx context.Context, collection Collection, id string) (Record, error)
	// Insert returns the stored record, with id and created_at assigned.
	// It returns ErrConflict when the record duplicates a unique key.
	Insert(ctx context.Context, collection Collection, record Record) (Record, error)
}
