// Package domain contains domain-specific types, interfaces and errors for
// doctable.
//
// This package defines the contract a document-store driver must fulfill to be
// used behind the table client, the value types threaded through query
// builders, and the interfaces implemented by the embedded store adapters.
package domain

import (
	"context"
	"iter"
)

// Driver is the narrow contract doctable requires from a document store.
type Driver interface {
	// Collection resolves a handle to the named collection.
	Collection(ctx context.Context, name string) (Collection, error)
	// Close releases every resource held by the driver.
	Close(ctx context.Context) error
}

// Collection exposes the store operations a terminal builder call can issue.
// Each method is a single round trip.
type Collection interface {
	// Find returns a cursor over every document matching filter. The only
	// honored option for builders is [WithFindSort].
	Find(ctx context.Context, filter Filter, options ...FindOption) (Cursor, error)
	// FindOne returns the first document matching filter, or a nil Row
	// and a nil error if there is none.
	FindOne(ctx context.Context, filter Filter, options ...FindOption) (Row, error)
	// InsertOne stores doc. The acknowledgement carries the generated id
	// but not the stored document.
	InsertOne(ctx context.Context, doc Row) (InsertOneResult, error)
	// UpdateOne merges set into the first document matching filter.
	UpdateOne(ctx context.Context, filter Filter, set Row) (UpdateResult, error)
	// DeleteOne removes the first document matching filter.
	DeleteOne(ctx context.Context, filter Filter) (DeleteResult, error)
	// CountDocuments returns the number of documents matching filter.
	CountDocuments(ctx context.Context, filter Filter) (int64, error)
}

// Dropper is implemented by collections that can remove themselves with all
// their documents. It is optional for drivers.
type Dropper interface {
	// Drop removes every document of the collection and any storage
	// backing it.
	Drop(ctx context.Context) error
}

// Cursor provides iteration over query results.
type Cursor interface {
	// Next advances the cursor to the next document, returning true if
	// available.
	Next() bool
	// Scan decodes the current document into target.
	Scan(ctx context.Context, target any) error
	// All drains the cursor and returns every remaining document. The
	// cursor is closed afterwards.
	All(ctx context.Context) ([]Row, error)
	// Err returns any error that occurred during iteration.
	Err() error
	// Close releases cursor resources and should be called when done.
	Close() error
}

// Decoder converts between different data representations.
type Decoder interface {
	// Decode converts source into target, which must be a non-nil pointer.
	Decode(source any, target any) error
}

// Comparer provides ordering for document values.
type Comparer interface {
	// Compare returns -1, 0, or 1 based on the comparison of two values.
	Compare(a any, b any) (int, error)
	// Comparable reports whether a and b are of kinds that can be ordered
	// against each other by range operators.
	Comparable(a any, b any) bool
}

// Matcher evaluates whether documents match a store-native filter.
type Matcher interface {
	// Match reports whether row satisfies filter.
	Match(row Row, filter Filter) (bool, error)
}

// IDGenerator is used to create unique ids for new documents.
type IDGenerator interface {
	// GenerateID returns a new unique id.
	GenerateID() (string, error)
}

// Index keeps documents ordered by their "_id" field.
type Index interface {
	// Insert adds documents to the index. A duplicate id fails with
	// [ErrConstraintViolated] and leaves the index unchanged.
	Insert(ctx context.Context, docs ...Row) error
	// Remove removes documents from the index.
	Remove(ctx context.Context, docs ...Row) error
	// Get returns the document stored under id, or nil.
	Get(id any) (Row, error)
	// GetAll returns every document ordered by id.
	GetAll() iter.Seq[Row]
	// Len returns the number of indexed documents.
	Len() int
	// Reset clears the index and re-inserts the provided documents.
	Reset(ctx context.Context, docs ...Row) error
}

// Persistence appends document states to durable storage and replays them.
type Persistence interface {
	// Load replays the datafile and returns the latest state of every
	// document that was not deleted.
	Load(ctx context.Context) ([]Row, error)
	// Append writes the new state of docs. Deleted documents are written
	// as tombstones carrying only "_id" and "$$deleted".
	Append(ctx context.Context, docs ...Row) error
	// Drop removes the datafile.
	Drop(ctx context.Context) error
}

// PersistenceFactory builds the [Persistence] for one collection.
type PersistenceFactory = func(collection string) (Persistence, error)
