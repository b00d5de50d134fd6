package section

import (
	"fmt"

	"github.com/arloliu/hbcfile/endian"
	"github.com/arloliu/hbcfile/errs"
)

// flags byte position within the packed words: top 8 bits of the fourth word.
const smallFuncFlagsPos = 3*32 + 24

// SmallFuncHeader is the compact, on-disk form of a function header: the
// fields of funcHeaderFields bit-packed in order across four 32-bit words,
// with the flag byte in the top 8 bits of the last word. It is 16 bytes so
// that headers never straddle a 32-byte cache line boundary.
//
// A SmallFuncHeader has two states, indicated by the overflowed flag:
//
//   - not overflowed: all fields are valid and Unpack recovers the full header.
//   - overflowed: only Flags and LargeHeaderOffset are valid; the offset
//     addresses a 32-byte FunctionHeader in the function info area.
type SmallFuncHeader struct {
	Words [4]uint32
}

// field returns the value of funcHeaderFields[idx] from the packed words.
func (h *SmallFuncHeader) field(idx int) uint32 {
	pos := fieldBitPos(idx)
	width := funcHeaderFields[idx].bits

	return (h.Words[pos/32] >> (pos % 32)) & (1<<width - 1)
}

// setField stores a value into funcHeaderFields[idx], clearing the field's
// bits first so no stale bits leak from reused storage.
func (h *SmallFuncHeader) setField(idx int, v uint32) {
	pos := fieldBitPos(idx)
	width := funcHeaderFields[idx].bits
	mask := uint32(1<<width-1) << (pos % 32)

	h.Words[pos/32] = (h.Words[pos/32] &^ mask) | ((v << (pos % 32)) & mask)
}

// fieldBitPos returns the starting bit position of funcHeaderFields[idx]
// within the 128-bit packed area. Fields are laid out consecutively in table
// order; the declared widths guarantee none crosses a word boundary.
func fieldBitPos(idx int) uint32 {
	var pos uint32
	for i := range idx {
		pos += funcHeaderFields[i].bits
	}

	return pos
}

// Flags returns the flag byte stored in the top bits of the fourth word.
func (h *SmallFuncHeader) Flags() FunctionHeaderFlag {
	return FunctionHeaderFlag(h.Words[smallFuncFlagsPos/32] >> (smallFuncFlagsPos % 32))
}

// SetFlags stores the flag byte.
func (h *SmallFuncHeader) SetFlags(f FunctionHeaderFlag) {
	const mask = uint32(0xFF) << (smallFuncFlagsPos % 32)
	h.Words[smallFuncFlagsPos/32] = (h.Words[smallFuncFlagsPos/32] &^ mask) |
		(uint32(f) << (smallFuncFlagsPos % 32))
}

// Overflowed returns whether this entry escaped to a large header.
func (h *SmallFuncHeader) Overflowed() bool {
	return h.Flags().Overflowed()
}

// setLargeHeaderOffset marks the entry overflowed and encodes the 32-bit
// large header offset split across the two widest fields: the low 16 bits in
// the offset field, the high bits in the infoOffset field.
func (h *SmallFuncHeader) setLargeHeaderOffset(largeHeaderOffset uint32) {
	flags := h.Flags()
	flags.SetOverflowed(true)
	h.SetFlags(flags)

	h.setField(fieldIdxOffset, largeHeaderOffset&0xFFFF)
	h.setField(fieldIdxInfoOffset, largeHeaderOffset>>16)
}

// LargeHeaderOffset returns the file offset of the large header this entry
// escaped to. It must only be called when Overflowed reports true.
func (h *SmallFuncHeader) LargeHeaderOffset() (uint32, error) {
	if !h.Overflowed() {
		return 0, fmt.Errorf("%w: entry is not overflowed", errs.ErrInvalidOverflowReference)
	}

	return h.field(fieldIdxInfoOffset)<<16 | h.field(fieldIdxOffset), nil
}

// PackFuncHeader packs a full header into its compact form.
//
// Fields are checked in the canonical table order; the first field whose
// value exceeds its bit width stops the packing, sets the overflowed flag,
// and encodes full.InfoOffset as the large header offset instead. Overflow
// is a designed code path, not an error: the builder is expected to have
// written the full header at that offset.
func PackFuncHeader(full *FunctionHeader) SmallFuncHeader {
	small := SmallFuncHeader{}
	small.SetFlags(full.Flags)

	for i, f := range funcHeaderFields {
		v := f.get(full)
		if v > 1<<f.bits-1 {
			small.setLargeHeaderOffset(full.InfoOffset)
			return small
		}

		small.setField(i, v)
	}

	return small
}

// Unpack recovers the full header from a compact entry.
//
// Returns ErrUnpackOverflowed for an overflowed entry: its packed fields are
// undefined and the caller must resolve LargeHeaderOffset against the buffer
// instead.
func (h *SmallFuncHeader) Unpack() (FunctionHeader, error) {
	if h.Overflowed() {
		return FunctionHeader{}, errs.ErrUnpackOverflowed
	}

	full := FunctionHeader{Flags: h.Flags()}
	for i, f := range funcHeaderFields {
		f.set(&full, h.field(i))
	}

	return full, nil
}

// Bytes serializes the compact header into a new 16-byte slice.
func (h *SmallFuncHeader) Bytes(engine endian.EndianEngine) []byte {
	var b [SmallFuncHeaderSize]byte
	engine.PutUint32(b[0:4], h.Words[0])
	engine.PutUint32(b[4:8], h.Words[1])
	engine.PutUint32(b[8:12], h.Words[2])
	engine.PutUint32(b[12:16], h.Words[3])

	return b[:]
}

// WriteToSlice writes the compact header to a pre-allocated slice and returns
// the next write position.
func (h *SmallFuncHeader) WriteToSlice(data []byte, offset int, engine endian.EndianEngine) int {
	engine.PutUint32(data[offset:offset+4], h.Words[0])
	engine.PutUint32(data[offset+4:offset+8], h.Words[1])
	engine.PutUint32(data[offset+8:offset+12], h.Words[2])
	engine.PutUint32(data[offset+12:offset+16], h.Words[3])

	return offset + SmallFuncHeaderSize
}

// ParseSmallFuncHeader parses a compact function header from a byte slice.
func ParseSmallFuncHeader(data []byte, engine endian.EndianEngine) (SmallFuncHeader, error) {
	if len(data) < SmallFuncHeaderSize {
		return SmallFuncHeader{}, fmt.Errorf("%w: small function header needs %d bytes, got %d",
			errs.ErrInvalidEntrySize, SmallFuncHeaderSize, len(data))
	}

	return SmallFuncHeader{Words: [4]uint32{
		engine.Uint32(data[0:4]),
		engine.Uint32(data[4:8]),
		engine.Uint32(data[8:12]),
		engine.Uint32(data[12:16]),
	}}, nil
}
