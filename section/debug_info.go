package section

import (
	"fmt"

	"github.com/arloliu/hbcfile/endian"
	"github.com/arloliu/hbcfile/errs"
)

// DebugInfoHeader describes the optional debug info sub-layout located at
// the file header's DebugInfoOffset. It is followed by the filename string
// table, the filename storage blob, the file region table, and the debug
// data blob, in that order.
type DebugInfoHeader struct {
	// FilenameCount is the number of entries in the filename string table.
	FilenameCount uint32 // byte offset 0-3
	// FilenameStorageSize is the byte size of the filename contents blob.
	FilenameStorageSize uint32 // byte offset 4-7
	// FileRegionCount is the number of DebugFileRegion entries.
	FileRegionCount uint32 // byte offset 8-11
	// LexicalDataOffset is the byte offset of the lexical data within the
	// debug data blob.
	LexicalDataOffset uint32 // byte offset 12-15
	// DebugDataSize is the byte size of the debug data blob.
	DebugDataSize uint32 // byte offset 16-19
}

// Bytes serializes the header into a new 20-byte slice.
func (h *DebugInfoHeader) Bytes(engine endian.EndianEngine) []byte {
	var b [DebugInfoHeaderSize]byte
	engine.PutUint32(b[0:4], h.FilenameCount)
	engine.PutUint32(b[4:8], h.FilenameStorageSize)
	engine.PutUint32(b[8:12], h.FileRegionCount)
	engine.PutUint32(b[12:16], h.LexicalDataOffset)
	engine.PutUint32(b[16:20], h.DebugDataSize)

	return b[:]
}

// WriteToSlice writes the header to a pre-allocated slice and returns the
// next write position.
func (h *DebugInfoHeader) WriteToSlice(data []byte, offset int, engine endian.EndianEngine) int {
	engine.PutUint32(data[offset:offset+4], h.FilenameCount)
	engine.PutUint32(data[offset+4:offset+8], h.FilenameStorageSize)
	engine.PutUint32(data[offset+8:offset+12], h.FileRegionCount)
	engine.PutUint32(data[offset+12:offset+16], h.LexicalDataOffset)
	engine.PutUint32(data[offset+16:offset+20], h.DebugDataSize)

	return offset + DebugInfoHeaderSize
}

// ParseDebugInfoHeader parses a debug info header from a byte slice.
func ParseDebugInfoHeader(data []byte, engine endian.EndianEngine) (DebugInfoHeader, error) {
	if len(data) < DebugInfoHeaderSize {
		return DebugInfoHeader{}, fmt.Errorf("%w: debug info header needs %d bytes, got %d",
			errs.ErrInvalidEntrySize, DebugInfoHeaderSize, len(data))
	}

	return DebugInfoHeader{
		FilenameCount:       engine.Uint32(data[0:4]),
		FilenameStorageSize: engine.Uint32(data[4:8]),
		FileRegionCount:     engine.Uint32(data[8:12]),
		LexicalDataOffset:   engine.Uint32(data[12:16]),
		DebugDataSize:       engine.Uint32(data[16:20]),
	}, nil
}

// DebugFileRegion maps a range of bytecode addresses back to a source file.
// Regions are sorted by FromAddress; a region covers addresses up to the next
// region's FromAddress.
type DebugFileRegion struct {
	// FromAddress is the first bytecode address the region covers.
	FromAddress uint32 // byte offset 0-3
	// FilenameID indexes the filename string table.
	FilenameID uint32 // byte offset 4-7
	// SourceMappingURLID indexes the filename string table for the region's
	// sourceMappingURL, if any.
	SourceMappingURLID uint32 // byte offset 8-11
}

// Bytes serializes the region into a new 12-byte slice.
func (r DebugFileRegion) Bytes(engine endian.EndianEngine) []byte {
	var b [DebugFileRegionSize]byte
	engine.PutUint32(b[0:4], r.FromAddress)
	engine.PutUint32(b[4:8], r.FilenameID)
	engine.PutUint32(b[8:12], r.SourceMappingURLID)

	return b[:]
}

// WriteToSlice writes the region to a pre-allocated slice and returns the
// next write position.
func (r DebugFileRegion) WriteToSlice(data []byte, offset int, engine endian.EndianEngine) int {
	engine.PutUint32(data[offset:offset+4], r.FromAddress)
	engine.PutUint32(data[offset+4:offset+8], r.FilenameID)
	engine.PutUint32(data[offset+8:offset+12], r.SourceMappingURLID)

	return offset + DebugFileRegionSize
}

// ParseDebugFileRegion parses a file region from a byte slice.
func ParseDebugFileRegion(data []byte, engine endian.EndianEngine) (DebugFileRegion, error) {
	if len(data) < DebugFileRegionSize {
		return DebugFileRegion{}, fmt.Errorf("%w: debug file region needs %d bytes, got %d",
			errs.ErrInvalidEntrySize, DebugFileRegionSize, len(data))
	}

	return DebugFileRegion{
		FromAddress:        engine.Uint32(data[0:4]),
		FilenameID:         engine.Uint32(data[4:8]),
		SourceMappingURLID: engine.Uint32(data[8:12]),
	}, nil
}
