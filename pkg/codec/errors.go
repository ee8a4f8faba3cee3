package codec

import "errors"

// Sentinel errors for the structural failure modes of the plugin format.
// Wrapped values carry the byte offset of the failure; match with
// errors.Is.
var (
	// ErrUnexpectedEOF is returned when the buffer is exhausted in the
	// middle of a fixed-width read.
	ErrUnexpectedEOF = errors.New("unexpected end of data")

	// ErrTruncatedField is returned when a field chunk declares more
	// payload bytes than remain in the record payload.
	ErrTruncatedField = errors.New("field length exceeds remaining payload")

	// ErrMalformedGroupSize is returned when the children of a group
	// consume more bytes than the group's declared size allows.
	ErrMalformedGroupSize = errors.New("group children exceed declared group size")

	// ErrDecompressionFailed is returned for a corrupt compressed record
	// payload or a decompressed length mismatch.
	ErrDecompressionFailed = errors.New("record decompression failed")

	// ErrSizeInvariant indicates a recomputed size disagrees with a
	// previously committed value. This is a bug in codec logic, not bad
	// input; writers fail fast rather than correct it silently.
	ErrSizeInvariant = errors.New("size invariant violation")
)
