// Package doctable provides a relational-style table client over a
// schemaless document store.
//
// Queries are built by chaining filters and sorts on a table and are sent to
// the store only when a terminal method is called:
//
//	res := client.Table("users").Gte("age", 18).Order("name", true).Execute(ctx)
//
// Each chain call returns a new builder, so builders can be branched and
// shared freely. Terminal methods never panic and never return a bare error:
// failures are carried by the result as a [*Failure]. Finding nothing is not a
// failure: Single returns a nil row, Execute an empty list and Count zero.
//
// The store is reached through the [Driver] interface. By default an embedded
// in-memory store is used, optionally persisted with [WithDataDir]; a MongoDB
// driver is available in package mongodriver.
package doctable

import (
	"context"
	"log/slog"

	"github.com/vinicius-lino-figueiredo/doctable/adapter/client"
	"github.com/vinicius-lino-figueiredo/doctable/adapter/query"
	"github.com/vinicius-lino-figueiredo/doctable/domain"
)

var (
	// ErrInsertedNotFound is wrapped by a failed Insert when the stored
	// document could not be read back.
	ErrInsertedNotFound = domain.ErrInsertedNotFound
	// ErrDriverPanic is wrapped by the failure of a terminal call during
	// which the driver panicked.
	ErrDriverPanic = domain.ErrDriverPanic
	// ErrDriverClosed is returned when a closed driver is used.
	ErrDriverClosed = domain.ErrDriverClosed
	// ErrNoDecoder is returned by Decode on results not built by a table.
	ErrNoDecoder = domain.ErrNoDecoder
	// ErrConstraintViolated is returned by the embedded store when an
	// inserted id is already in use.
	ErrConstraintViolated = domain.ErrConstraintViolated
	// ErrCannotModifyID is returned by the embedded store when an update
	// would change a document _id.
	ErrCannotModifyID = domain.ErrCannotModifyID
	// ErrTargetNil is returned when a nil target is passed to Decode.
	ErrTargetNil = domain.ErrTargetNil
	// ErrUnsupported is wrapped by a failed Drop when the driver's
	// collections cannot be dropped.
	ErrUnsupported = domain.ErrUnsupported
)

// Failure is the error carried by every failed result.
type Failure = domain.Failure

// ErrDocumentType is returned when inserted or updated data is not a map or a
// struct.
type ErrDocumentType = domain.ErrDocumentType

// ErrFieldName is returned by the embedded store for reserved field names.
type ErrFieldName = domain.ErrFieldName

// ErrDecode wraps third party decoding errors.
type ErrDecode = domain.ErrDecode

// Row is a single document.
type Row = domain.Row

// Filter is a store-native filter document.
type Filter = domain.Filter

// Sort is an ordered list of sort keys.
type Sort = domain.Sort

// Result is the outcome of Single, Execute and Insert.
type Result[T any] = domain.Result[T]

// CountResult is the outcome of a count.
type CountResult = domain.CountResult

// MutationResult is the outcome of an update or delete.
type MutationResult = domain.MutationResult

// Driver is the contract a document store must fulfill.
type Driver = domain.Driver

// Dropper is the optional capability a driver collection implements to
// support Drop.
type Dropper = domain.Dropper

// Builders returned by a table.
type (
	TableQueryBuilder = query.TableQueryBuilder
	QueryBuilder      = query.QueryBuilder
	SelectBuilder     = query.SelectBuilder
	CountBuilder      = query.CountBuilder
	UpdateBuilder     = query.UpdateBuilder
	DeleteBuilder     = query.DeleteBuilder
)

// Client hands out table builders for one store.
type Client interface {
	// Table returns the entry point for queries on the named collection.
	Table(name string) TableQueryBuilder
	// Close releases the driver.
	Close(ctx context.Context) error
}

// Option configures a [Client].
type Option = client.Option

// NewClient returns a new [Client] configured by the given options:
//
// - [WithDriver]: sets the document store. Defaults to an embedded store.
//
// - [WithDataDir]: persists the embedded store, one file per table.
//
// - [WithLogger]: sets the logger terminal calls report to.
//
// - [WithDecoder]: sets the decoder used for structs and Result.Decode.
func NewClient(options ...Option) Client {
	return client.NewClient(options...)
}

// WithDriver sets the document store queries are sent to.
func WithDriver(d Driver) Option { return client.WithDriver(d) }

// WithDataDir persists the default embedded store under dir.
func WithDataDir(dir string) Option { return client.WithDataDir(dir) }

// WithLogger sets the logger terminal calls report to.
func WithLogger(l *slog.Logger) Option { return client.WithLogger(l) }

// WithDecoder sets the decoder used for struct data and Result.Decode.
func WithDecoder(d domain.Decoder) Option { return client.WithDecoder(d) }
