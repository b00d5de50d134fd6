package section

import (
	"fmt"

	"github.com/arloliu/hbcfile/endian"
	"github.com/arloliu/hbcfile/errs"
)

// RegExpTableEntry references one compiled regexp program in the shared
// regexp storage blob.
type RegExpTableEntry struct {
	Offset uint32 // byte offset 0-3: offset within regexp storage
	Length uint32 // byte offset 4-7: length of the compiled program
}

// Bytes serializes the entry into a new 8-byte slice.
func (e RegExpTableEntry) Bytes(engine endian.EndianEngine) []byte {
	var b [RegExpEntrySize]byte
	engine.PutUint32(b[0:4], e.Offset)
	engine.PutUint32(b[4:8], e.Length)

	return b[:]
}

// WriteToSlice writes the entry to a pre-allocated slice and returns the next
// write position.
func (e RegExpTableEntry) WriteToSlice(data []byte, offset int, engine endian.EndianEngine) int {
	engine.PutUint32(data[offset:offset+4], e.Offset)
	engine.PutUint32(data[offset+4:offset+8], e.Length)

	return offset + RegExpEntrySize
}

// ParseRegExpEntry parses a regexp table entry from a byte slice.
func ParseRegExpEntry(data []byte, engine endian.EndianEngine) (RegExpTableEntry, error) {
	if len(data) < RegExpEntrySize {
		return RegExpTableEntry{}, fmt.Errorf("%w: regexp entry needs %d bytes, got %d",
			errs.ErrInvalidEntrySize, RegExpEntrySize, len(data))
	}

	return RegExpTableEntry{
		Offset: engine.Uint32(data[0:4]),
		Length: engine.Uint32(data[4:8]),
	}, nil
}
