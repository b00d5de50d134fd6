package section

import (
	"fmt"

	"github.com/arloliu/hbcfile/endian"
	"github.com/arloliu/hbcfile/errs"
)

// ExceptionHandlerEntry defines one protected bytecode range and its handler.
// Offsets are relative to the function's bytecode. No nesting depth is stored
// at this layer; the execution form does not need it.
type ExceptionHandlerEntry struct {
	Start  uint32 // byte offset 0-3: first protected offset
	End    uint32 // byte offset 4-7: one past the last protected offset
	Target uint32 // byte offset 8-11: handler entry point
}

// Bytes serializes the entry into a new 12-byte slice.
func (e ExceptionHandlerEntry) Bytes(engine endian.EndianEngine) []byte {
	var b [ExceptionHandlerEntrySize]byte
	engine.PutUint32(b[0:4], e.Start)
	engine.PutUint32(b[4:8], e.End)
	engine.PutUint32(b[8:12], e.Target)

	return b[:]
}

// WriteToSlice writes the entry to a pre-allocated slice and returns the next
// write position.
func (e ExceptionHandlerEntry) WriteToSlice(data []byte, offset int, engine endian.EndianEngine) int {
	engine.PutUint32(data[offset:offset+4], e.Start)
	engine.PutUint32(data[offset+4:offset+8], e.End)
	engine.PutUint32(data[offset+8:offset+12], e.Target)

	return offset + ExceptionHandlerEntrySize
}

// EncodeExceptionHandlers serializes a handler table: a uint32 count followed
// by the entries.
func EncodeExceptionHandlers(entries []ExceptionHandlerEntry, engine endian.EndianEngine) []byte {
	b := make([]byte, ExceptionHandlerCountSize+len(entries)*ExceptionHandlerEntrySize)
	engine.PutUint32(b[0:4], uint32(len(entries))) //nolint: gosec

	off := ExceptionHandlerCountSize
	for _, e := range entries {
		off = e.WriteToSlice(b, off, engine)
	}

	return b
}

// ParseExceptionHandlers parses a handler table from the start of data:
// a uint32 count followed by count entries.
//
// Returns:
//   - []ExceptionHandlerEntry: Parsed entries, nil when the count is zero
//   - int: Bytes consumed
//   - error: ErrInvalidEntrySize when the declared count exceeds the data
func ParseExceptionHandlers(data []byte, engine endian.EndianEngine) ([]ExceptionHandlerEntry, int, error) {
	if len(data) < ExceptionHandlerCountSize {
		return nil, 0, fmt.Errorf("%w: exception handler table needs %d count bytes, got %d",
			errs.ErrInvalidEntrySize, ExceptionHandlerCountSize, len(data))
	}

	count := engine.Uint32(data[0:4])
	total := ExceptionHandlerCountSize + int64(count)*ExceptionHandlerEntrySize
	if total > int64(len(data)) {
		return nil, 0, fmt.Errorf("%w: exception handler table declares %d entries (%d bytes), got %d",
			errs.ErrInvalidEntrySize, count, total, len(data))
	}

	if count == 0 {
		return nil, ExceptionHandlerCountSize, nil
	}

	entries := make([]ExceptionHandlerEntry, count)
	off := ExceptionHandlerCountSize
	for i := range entries {
		entries[i] = ExceptionHandlerEntry{
			Start:  engine.Uint32(data[off : off+4]),
			End:    engine.Uint32(data[off+4 : off+8]),
			Target: engine.Uint32(data[off+8 : off+12]),
		}
		off += ExceptionHandlerEntrySize
	}

	return entries, off, nil
}
