package domain

// Result is the outcome of a terminal call returning rows. Error is either nil
// or a [*Failure]; a nil Data with a nil Error is a legitimate "not found".
type Result[T any] struct {
	Data  T
	Error error

	decoder Decoder
}

// NewResult builds a Result whose [Result.Decode] uses dec.
func NewResult[T any](data T, err error, dec Decoder) Result[T] {
	return Result[T]{Data: data, Error: err, decoder: dec}
}

// Err returns the failure, if any.
func (r Result[T]) Err() error { return r.Error }

// Unpack returns Data and Error as a conventional pair.
func (r Result[T]) Unpack() (T, error) { return r.Data, r.Error }

// Decode decodes Data into target. The failure is returned instead if the call
// did not succeed. Decoding a nil Data leaves target untouched.
func (r Result[T]) Decode(target any) error {
	if r.Error != nil {
		return r.Error
	}
	if r.decoder == nil {
		return ErrNoDecoder
	}
	return r.decoder.Decode(r.Data, target)
}

// CountResult is the outcome of a count call. Count is nil on failure.
type CountResult struct {
	Count *int64
	Error error
}

// Err returns the failure, if any.
func (r CountResult) Err() error { return r.Error }

// Value returns the count, or zero on failure.
func (r CountResult) Value() int64 {
	if r.Count == nil {
		return 0
	}
	return *r.Count
}

// MutationResult is the outcome of an update or delete call. It carries no
// payload.
type MutationResult struct {
	Error error
}

// Err returns the failure, if any.
func (r MutationResult) Err() error { return r.Error }
