package section

import (
	"fmt"

	"github.com/arloliu/hbcfile/endian"
	"github.com/arloliu/hbcfile/errs"
)

// FunctionHeader is the full-width metadata of a single function. Most
// functions are stored in the packed SmallFuncHeader form; a FunctionHeader
// is written to the function info area only when some field exceeds its
// packed bit width.
type FunctionHeader struct {
	// Offset is the byte offset of the function's bytecode within the file.
	Offset uint32
	// ParamCount is the number of declared parameters.
	ParamCount uint32
	// BytecodeSizeInBytes is the size of the function's bytecode.
	BytecodeSizeInBytes uint32
	// FunctionName is the string table index of the function's name.
	FunctionName uint32
	// InfoOffset is the byte offset of the function's extended info
	// (exception handlers, debug offsets) within the file.
	InfoOffset uint32
	// FrameSize is the stack frame size in registers.
	FrameSize uint32
	// EnvironmentSize is the number of closure environment slots.
	EnvironmentSize uint32
	// HighestReadCacheIndex is the high-water mark of read inline cache
	// indices used by the function's bytecode.
	HighestReadCacheIndex uint8
	// HighestWriteCacheIndex is the high-water mark of write inline cache
	// indices used by the function's bytecode.
	HighestWriteCacheIndex uint8

	// Flags is the per-function flag byte.
	Flags FunctionHeaderFlag
}

// funcHeaderField describes one packed function header field: its name, its
// bit width in the compact encoding, and accessors into the full header.
type funcHeaderField struct {
	name string
	bits uint32
	get  func(*FunctionHeader) uint32
	set  func(*FunctionHeader, uint32)
}

// funcHeaderFields is the canonical field order of the function header.
// Pack, Unpack, and the tests all walk this single table so the full and the
// compact layouts cannot drift apart. The widths sum to exactly four 32-bit
// words and no field crosses a word boundary.
var funcHeaderFields = []funcHeaderField{
	// first word
	{"offset", 25,
		func(h *FunctionHeader) uint32 { return h.Offset },
		func(h *FunctionHeader, v uint32) { h.Offset = v }},
	{"paramCount", 7,
		func(h *FunctionHeader) uint32 { return h.ParamCount },
		func(h *FunctionHeader, v uint32) { h.ParamCount = v }},
	// second word
	{"bytecodeSizeInBytes", 15,
		func(h *FunctionHeader) uint32 { return h.BytecodeSizeInBytes },
		func(h *FunctionHeader, v uint32) { h.BytecodeSizeInBytes = v }},
	{"functionName", 17,
		func(h *FunctionHeader) uint32 { return h.FunctionName },
		func(h *FunctionHeader, v uint32) { h.FunctionName = v }},
	// third word
	{"infoOffset", 25,
		func(h *FunctionHeader) uint32 { return h.InfoOffset },
		func(h *FunctionHeader, v uint32) { h.InfoOffset = v }},
	{"frameSize", 7,
		func(h *FunctionHeader) uint32 { return h.FrameSize },
		func(h *FunctionHeader, v uint32) { h.FrameSize = v }},
	// fourth word, with the flag byte in the top 8 bits
	{"environmentSize", 8,
		func(h *FunctionHeader) uint32 { return h.EnvironmentSize },
		func(h *FunctionHeader, v uint32) { h.EnvironmentSize = v }},
	{"highestReadCacheIndex", 8,
		func(h *FunctionHeader) uint32 { return uint32(h.HighestReadCacheIndex) },
		func(h *FunctionHeader, v uint32) { h.HighestReadCacheIndex = uint8(v) }},
	{"highestWriteCacheIndex", 8,
		func(h *FunctionHeader) uint32 { return uint32(h.HighestWriteCacheIndex) },
		func(h *FunctionHeader, v uint32) { h.HighestWriteCacheIndex = uint8(v) }},
}

// Indices into funcHeaderFields for the two fields that jointly hold the
// large header offset of an overflowed compact entry.
const (
	fieldIdxOffset     = 0
	fieldIdxInfoOffset = 4
)

// Bytes serializes the full header into its 32-byte large form used in the
// function info area.
func (h *FunctionHeader) Bytes(engine endian.EndianEngine) []byte {
	b := make([]byte, LargeFuncHeaderSize)
	h.WriteToSlice(b, 0, engine)

	return b
}

// WriteToSlice writes the 32-byte large form to a pre-allocated slice and
// returns the next write position.
func (h *FunctionHeader) WriteToSlice(data []byte, offset int, engine endian.EndianEngine) int {
	b := data[offset : offset+LargeFuncHeaderSize]

	engine.PutUint32(b[0:4], h.Offset)
	engine.PutUint32(b[4:8], h.ParamCount)
	engine.PutUint32(b[8:12], h.BytecodeSizeInBytes)
	engine.PutUint32(b[12:16], h.FunctionName)
	engine.PutUint32(b[16:20], h.InfoOffset)
	engine.PutUint32(b[20:24], h.FrameSize)
	engine.PutUint32(b[24:28], h.EnvironmentSize)
	b[28] = h.HighestReadCacheIndex
	b[29] = h.HighestWriteCacheIndex
	b[30] = byte(h.Flags)
	b[31] = 0

	return offset + LargeFuncHeaderSize
}

// ParseFunctionHeader parses the 32-byte large form of a function header.
func ParseFunctionHeader(data []byte, engine endian.EndianEngine) (FunctionHeader, error) {
	if len(data) < LargeFuncHeaderSize {
		return FunctionHeader{}, fmt.Errorf("%w: large function header needs %d bytes, got %d",
			errs.ErrInvalidEntrySize, LargeFuncHeaderSize, len(data))
	}

	return FunctionHeader{
		Offset:                 engine.Uint32(data[0:4]),
		ParamCount:             engine.Uint32(data[4:8]),
		BytecodeSizeInBytes:    engine.Uint32(data[8:12]),
		FunctionName:           engine.Uint32(data[12:16]),
		InfoOffset:             engine.Uint32(data[16:20]),
		FrameSize:              engine.Uint32(data[20:24]),
		EnvironmentSize:        engine.Uint32(data[24:28]),
		HighestReadCacheIndex:  data[28],
		HighestWriteCacheIndex: data[29],
		Flags:                  FunctionHeaderFlag(data[30]),
	}, nil
}
