package domain

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrTargetNil is returned when the passed target, which should be a
	// pointer, is passed as a nil value.
	ErrTargetNil = errors.New("target interface is nil")
	// ErrNonPointer is returned when a decoding target is not a pointer.
	ErrNonPointer = errors.New("target should be a pointer")
	// ErrCursorClosed is returned when trying to perform operations on a
	// closed [Cursor].
	ErrCursorClosed = errors.New("cursor is closed")
	// ErrScanBeforeNext is returned when calling [Cursor.Scan] before
	// calling [Cursor.Next].
	ErrScanBeforeNext = errors.New("called Scan before calling Next")
	// ErrConstraintViolated is returned by [Index] when a document id is
	// already in use.
	ErrConstraintViolated = errors.New("unique constraint violated")
	// ErrInsertedNotFound is returned when a document could not be read back
	// right after being inserted.
	ErrInsertedNotFound = errors.New("inserted document not found")
	// ErrDriverPanic is wrapped by a [Failure] when the driver panics
	// during a terminal call.
	ErrDriverPanic = errors.New("driver panicked")
	// ErrCannotModifyID is returned when an update tries to change "_id".
	ErrCannotModifyID = errors.New("cannot modify document _id")
	// ErrNoDecoder is returned by [Result.Decode] on a result that was not
	// produced by a builder.
	ErrNoDecoder = errors.New("result has no decoder")
	// ErrNoCollection is returned when a collection name is empty.
	ErrNoCollection = errors.New("collection name is empty")
	// ErrDriverClosed is returned when a closed [Driver] is used.
	ErrDriverClosed = errors.New("driver is closed")
	// ErrNoDriver is returned by terminal calls of builders without a
	// [Driver].
	ErrNoDriver = errors.New("no driver configured")
	// ErrUnsupported is returned when the [Collection] of a driver lacks an
	// optional capability, such as [Dropper].
	ErrUnsupported = errors.New("operation not supported by the driver")
)

// Failure is the structured error carried by every terminal result. It names
// the operation and collection and wraps the underlying store fault.
type Failure struct {
	Op         string
	Collection string
	Err        error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s %q: %s", f.Op, f.Collection, f.Err)
}

// Unwrap returns the underlying store fault.
func (f *Failure) Unwrap() error { return f.Err }

// ErrUnknownOperator is returned by [Matcher] for an unsupported "$" operator.
type ErrUnknownOperator struct {
	Operator string
}

func (e ErrUnknownOperator) Error() string {
	return fmt.Sprintf("unknown operator %s", e.Operator)
}

// ErrCannotCompare is returned when [Comparer.Compare] is called with two
// values it does not know how to order.
type ErrCannotCompare struct {
	A, B any
}

func (e ErrCannotCompare) Error() string {
	return fmt.Sprintf("cannot compare unexpected types %T and %T", e.A, e.B)
}

// ErrDecode wraps third party decoding errors.
type ErrDecode struct {
	Source any
	Target any
}

func (e ErrDecode) Error() string {
	return fmt.Sprintf("cannot decode %T into %T", e.Source, e.Target)
}

// ErrDocumentType is returned when a value cannot be turned into a [Row].
type ErrDocumentType struct {
	Value any
}

func (e ErrDocumentType) Error() string {
	return fmt.Sprintf("cannot use %T as a document", e.Value)
}

// ErrDatafileName is returned when the user specifies an invalid name for a
// datafile.
type ErrDatafileName struct {
	Name   string
	Reason string
}

func (e ErrDatafileName) Error() string {
	return fmt.Sprintf("invalid datafile name %q: %s", e.Name, e.Reason)
}

// ErrCorruptFiles is returned when more lines of a datafile than the alert
// threshold cannot be read.
type ErrCorruptFiles struct {
	CorruptionRate        float64
	CorruptItems          int
	DataLength            int
	CorruptAlertThreshold float64
}

func (e ErrCorruptFiles) Error() string {
	return fmt.Sprintf("%f%% of the data file is corrupt, more than given corruptAlertThreshold (%f%%). Cautiously refusing to load the collection to prevent dataloss.", math.Floor(100*e.CorruptionRate), math.Floor(100*e.CorruptAlertThreshold))
}

// ErrFieldName is returned when a document carries a field name the store
// cannot hold.
type ErrFieldName struct {
	Field  string
	Reason string
}

func (e ErrFieldName) Error() string {
	return fmt.Sprintf("invalid field name %q: %s", e.Field, e.Reason)
}
