package section

import (
	"fmt"

	"github.com/arloliu/hbcfile/endian"
	"github.com/arloliu/hbcfile/errs"
)

// StringTableEntry is the logical, full-width description of one string in
// the string storage blob. It is the API-level shape; on disk it is encoded
// as a SmallStringTableEntry, escaping to an OverflowStringTableEntry when
// the offset or length does not fit the packed widths.
type StringTableEntry struct {
	// Offset is the byte offset of the string within string storage.
	Offset uint32
	// Length is the string's unit count: bytes for Latin-1 strings, UTF-16
	// code units for UTF-16 strings.
	Length uint32
	// IsUTF16 marks a string stored as UTF-16 code units rather than Latin-1
	// bytes.
	IsUTF16 bool
	// IsIdentifier marks a string used as an identifier; identifiers carry a
	// precomputed hash in the identifier hash array.
	IsIdentifier bool
}

// Fits returns whether the entry can be encoded without an overflow entry.
func (e StringTableEntry) Fits() bool {
	return e.Offset < InvalidOffset && e.Length < InvalidLength
}

// SmallStringTableEntry is the packed 4-byte string table entry:
//
//	bit 0      isUTF16
//	bit 1      isIdentifier
//	bits 2-23  offset (22 bits)
//	bits 24-31 length (8 bits)
//
// A length equal to InvalidLength marks an overflowed entry whose offset
// field indexes the overflow entry table instead of string storage. An entry
// is either fully self-describing or a pure overflow index, never a mix.
type SmallStringTableEntry struct {
	Word uint32
}

// IsUTF16 returns whether the string is stored as UTF-16 code units.
func (e SmallStringTableEntry) IsUTF16() bool {
	return (e.Word & stringEntryUTF16Mask) != 0
}

// IsIdentifier returns whether the string is an identifier.
func (e SmallStringTableEntry) IsIdentifier() bool {
	return (e.Word & stringEntryIdentifierMask) != 0
}

// Offset returns the packed offset field: a string storage offset for a
// self-describing entry, an overflow table index for an overflowed one.
func (e SmallStringTableEntry) Offset() uint32 {
	return (e.Word >> stringEntryOffsetShift) & stringEntryOffsetMask
}

// Length returns the packed length field.
func (e SmallStringTableEntry) Length() uint32 {
	return (e.Word >> stringEntryLengthShift) & stringEntryLengthMask
}

// Overflowed returns whether the entry escaped to the overflow table.
func (e SmallStringTableEntry) Overflowed() bool {
	return e.Length() == InvalidLength
}

// PackStringEntry packs a full entry into its small form. When the entry's
// offset and length fit the packed widths the small entry is
// self-describing; otherwise the small entry stores overflowIndex (the
// caller must append the corresponding OverflowStringTableEntry at that
// index of the overflow table).
func PackStringEntry(entry StringTableEntry, overflowIndex uint32) SmallStringTableEntry {
	var w uint32
	if entry.IsUTF16 {
		w |= stringEntryUTF16Mask
	}
	if entry.IsIdentifier {
		w |= stringEntryIdentifierMask
	}

	if entry.Fits() {
		w |= (entry.Offset & stringEntryOffsetMask) << stringEntryOffsetShift
		w |= (entry.Length & stringEntryLengthMask) << stringEntryLengthShift
	} else {
		w |= (overflowIndex & stringEntryOffsetMask) << stringEntryOffsetShift
		w |= InvalidLength << stringEntryLengthShift
	}

	return SmallStringTableEntry{Word: w}
}

// UnpackStringEntry recovers the full entry, resolving the overflow table
// when needed.
//
// Returns ErrInvalidOverflowReference when an overflowed entry's index points
// outside the overflow table.
func UnpackStringEntry(small SmallStringTableEntry, overflow []OverflowStringTableEntry) (StringTableEntry, error) {
	entry := StringTableEntry{
		IsUTF16:      small.IsUTF16(),
		IsIdentifier: small.IsIdentifier(),
	}

	if !small.Overflowed() {
		entry.Offset = small.Offset()
		entry.Length = small.Length()

		return entry, nil
	}

	idx := small.Offset()
	if int64(idx) >= int64(len(overflow)) {
		return StringTableEntry{}, fmt.Errorf("%w: overflow index %d, table has %d entries",
			errs.ErrInvalidOverflowReference, idx, len(overflow))
	}

	entry.Offset = overflow[idx].Offset
	entry.Length = overflow[idx].Length

	return entry, nil
}

// Bytes serializes the small entry into a new 4-byte slice.
func (e SmallStringTableEntry) Bytes(engine endian.EndianEngine) []byte {
	var b [SmallStringEntrySize]byte
	engine.PutUint32(b[:], e.Word)

	return b[:]
}

// WriteToSlice writes the small entry to a pre-allocated slice and returns
// the next write position.
func (e SmallStringTableEntry) WriteToSlice(data []byte, offset int, engine endian.EndianEngine) int {
	engine.PutUint32(data[offset:offset+SmallStringEntrySize], e.Word)

	return offset + SmallStringEntrySize
}

// ParseSmallStringEntry parses a small string table entry from a byte slice.
func ParseSmallStringEntry(data []byte, engine endian.EndianEngine) (SmallStringTableEntry, error) {
	if len(data) < SmallStringEntrySize {
		return SmallStringTableEntry{}, fmt.Errorf("%w: small string entry needs %d bytes, got %d",
			errs.ErrInvalidEntrySize, SmallStringEntrySize, len(data))
	}

	return SmallStringTableEntry{Word: engine.Uint32(data[0:SmallStringEntrySize])}, nil
}

// OverflowStringTableEntry is the full-width string table entry indexed by
// the offset field of an overflowed SmallStringTableEntry.
type OverflowStringTableEntry struct {
	Offset uint32 // byte offset 0-3
	Length uint32 // byte offset 4-7
}

// Bytes serializes the overflow entry into a new 8-byte slice.
func (e OverflowStringTableEntry) Bytes(engine endian.EndianEngine) []byte {
	var b [OverflowStringEntrySize]byte
	engine.PutUint32(b[0:4], e.Offset)
	engine.PutUint32(b[4:8], e.Length)

	return b[:]
}

// WriteToSlice writes the overflow entry to a pre-allocated slice and returns
// the next write position.
func (e OverflowStringTableEntry) WriteToSlice(data []byte, offset int, engine endian.EndianEngine) int {
	engine.PutUint32(data[offset:offset+4], e.Offset)
	engine.PutUint32(data[offset+4:offset+8], e.Length)

	return offset + OverflowStringEntrySize
}

// ParseOverflowStringEntry parses an overflow string table entry.
func ParseOverflowStringEntry(data []byte, engine endian.EndianEngine) (OverflowStringTableEntry, error) {
	if len(data) < OverflowStringEntrySize {
		return OverflowStringTableEntry{}, fmt.Errorf("%w: overflow string entry needs %d bytes, got %d",
			errs.ErrInvalidEntrySize, OverflowStringEntrySize, len(data))
	}

	return OverflowStringTableEntry{
		Offset: engine.Uint32(data[0:4]),
		Length: engine.Uint32(data[4:8]),
	}, nil
}
