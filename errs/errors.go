// Package errs defines the sentinel errors returned by hbcfile.
//
// All errors detected while populating or decoding a bytecode buffer wrap one
// of these sentinels, so callers can classify failures with errors.Is while
// still receiving the section name and the expected/actual values in the
// message.
package errs

import "errors"

// Header validation errors.
var (
	// ErrInvalidHeaderSize indicates the buffer is shorter than the fixed file header.
	ErrInvalidHeaderSize = errors.New("buffer smaller than file header")

	// ErrMagicMismatch indicates the magic number does not match the requested
	// bytecode form. The execution and delta magic values are bitwise
	// complements, so a mismatch means either the wrong form was requested or
	// the header is corrupted.
	ErrMagicMismatch = errors.New("magic number mismatch")

	// ErrVersionMismatch indicates the file was produced by a different
	// bytecode version. There is no migration path; any skew is a hard failure.
	ErrVersionMismatch = errors.New("bytecode version mismatch")

	// ErrFileLengthMismatch indicates the header's declared file length does
	// not equal the actual buffer length.
	ErrFileLengthMismatch = errors.New("file length mismatch")
)

// Section layout errors.
var (
	// ErrTruncatedBuffer indicates a declared section extends past the end of
	// the buffer.
	ErrTruncatedBuffer = errors.New("section exceeds buffer bounds")

	// ErrSectionOverflow indicates section offset/length arithmetic would
	// exceed the addressable range, or a derived section size is malformed.
	ErrSectionOverflow = errors.New("section size arithmetic overflow")

	// ErrInvalidOverflowReference indicates an overflowed entry points outside
	// its overflow table.
	ErrInvalidOverflowReference = errors.New("overflow reference out of range")

	// ErrDebugInfoBounds indicates the debug info sub-layout does not fit the
	// ranges declared by its header.
	ErrDebugInfoBounds = errors.New("debug info out of bounds")
)

// Entry codec errors.
var (
	// ErrInvalidEntrySize indicates a byte slice is too short to hold the
	// entry being parsed.
	ErrInvalidEntrySize = errors.New("invalid entry size")

	// ErrUnpackOverflowed indicates Unpack was called on an overflowed compact
	// function header; the caller must resolve the large header instead.
	ErrUnpackOverflowed = errors.New("cannot unpack overflowed function header")

	// ErrFieldOverflow indicates a value does not fit the bit width of a
	// packed field and no overflow escape exists for it.
	ErrFieldOverflow = errors.New("field value exceeds bit width")
)

// Builder errors.
var (
	// ErrStringTooLong indicates a string's storage offset or length exceeds
	// the 32-bit range of the overflow entry encoding.
	ErrStringTooLong = errors.New("string exceeds overflow entry range")

	// ErrTooManyFunctions indicates the function count exceeds the uint32
	// range of the header field.
	ErrTooManyFunctions = errors.New("function count exceeds header range")

	// ErrFileTooLarge indicates the serialized file would exceed the uint32
	// fileLength field.
	ErrFileTooLarge = errors.New("file exceeds 32-bit length range")

	// ErrModulesAlreadySet indicates both resolved and unresolved CJS module
	// tables were supplied; the two shapes are mutually exclusive.
	ErrModulesAlreadySet = errors.New("cjs module table already set")
)
