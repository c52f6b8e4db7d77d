package parquets

import "errors"

var (
	// ErrSchemaMismatch is an error returned when a record does not have the
	// shape its schema declares, for example when a required field is
	// missing or a scalar is supplied for a repeated field.
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrCorrupted is an error returned when reading data that does not
	// decode to a valid parquet structure: wrong magic bytes, level values
	// exceeding their column maxima, or mismatched value and level counts.
	ErrCorrupted = errors.New("corrupted parquet data")

	// ErrUnsupported is an error returned when a file uses a feature the
	// package recognizes but does not implement, such as dictionary pages or
	// the LZO compression codec.
	ErrUnsupported = errors.New("unsupported parquet feature")

	// ErrInvalidConfig is an error returned when a configuration carries
	// values that cannot be honoured, such as a missing type length on a
	// fixed-length type.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrMissingRootColumn is an error returned when opening a file whose
	// footer carries an empty schema.
	ErrMissingRootColumn = errors.New("parquet file is missing a root column")

	// ErrClosed is an error returned when writing to a writer that was
	// already closed or that became unusable after a write error.
	ErrClosed = errors.New("parquet writer is closed")
)
