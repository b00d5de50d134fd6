package bundle

import (
	"fmt"

	"github.com/arloliu/hbcfile/endian"
	"github.com/arloliu/hbcfile/errs"
	"github.com/arloliu/hbcfile/section"
)

// DebugInfo is the set of views over the optional debug info sub-layout. It
// is read lazily by callers that need source mapping; steady-state execution
// never touches it.
//
// Like Fields, DebugInfo aliases the backing buffer without copying and must
// not outlive it.
type DebugInfo struct {
	header section.DebugInfoHeader
	engine endian.EndianEngine

	filenameTable   StringTable
	filenameStorage []byte
	fileRegions     []byte
	debugData       []byte
}

// ReadDebugInfo reads the debug info sub-layout located at the header's
// DebugInfoOffset. The file header must come from a successful Populate of
// the same buffer.
//
// Returns:
//   - *DebugInfo: Views over the debug sub-layout
//   - error: ErrDebugInfoBounds when the file has no debug info or any
//     declared range does not fit the buffer
func ReadDebugInfo(data []byte, header *section.FileHeader) (*DebugInfo, error) {
	if header.DebugInfoOffset == 0 {
		return nil, fmt.Errorf("%w: file has no debug info", errs.ErrDebugInfoBounds)
	}

	if uint64(header.DebugInfoOffset)+section.DebugInfoHeaderSize > uint64(len(data)) {
		return nil, fmt.Errorf("%w: debug info header: needs bytes [%d, %d), buffer has %d",
			errs.ErrDebugInfoBounds, header.DebugInfoOffset,
			uint64(header.DebugInfoOffset)+section.DebugInfoHeaderSize, len(data))
	}

	engine := endian.FormatEngine()
	dbgHeader, err := section.ParseDebugInfoHeader(data[header.DebugInfoOffset:], engine)
	if err != nil {
		return nil, err
	}

	d := &DebugInfo{
		header: dbgHeader,
		engine: engine,
	}

	cur := layoutCursor{buf: data, off: uint64(header.DebugInfoOffset) + section.DebugInfoHeaderSize}

	b, err := cur.take("debug filename table", uint64(dbgHeader.FilenameCount)*section.SmallStringEntrySize)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrDebugInfoBounds, err)
	}
	d.filenameTable = StringTable{data: b, engine: engine}

	if d.filenameStorage, err = cur.take("debug filename storage", uint64(dbgHeader.FilenameStorageSize)); err != nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrDebugInfoBounds, err)
	}

	if d.fileRegions, err = cur.take("debug file regions", uint64(dbgHeader.FileRegionCount)*section.DebugFileRegionSize); err != nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrDebugInfoBounds, err)
	}

	if d.debugData, err = cur.take("debug data", uint64(dbgHeader.DebugDataSize)); err != nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrDebugInfoBounds, err)
	}

	if uint64(dbgHeader.LexicalDataOffset) > uint64(dbgHeader.DebugDataSize) {
		return nil, fmt.Errorf("%w: lexical data offset %d exceeds debug data size %d",
			errs.ErrDebugInfoBounds, dbgHeader.LexicalDataOffset, dbgHeader.DebugDataSize)
	}

	return d, nil
}

// Header returns a copy of the debug info header.
func (d *DebugInfo) Header() section.DebugInfoHeader {
	return d.header
}

// FilenameCount returns the number of filenames in the table.
func (d *DebugInfo) FilenameCount() int {
	return d.filenameTable.Len()
}

// Filename returns filename i from the debug filename table. Filenames are
// stored as self-describing small string entries over the filename storage
// blob.
func (d *DebugInfo) Filename(i int) (string, error) {
	if i < 0 || i >= d.filenameTable.Len() {
		return "", fmt.Errorf("%w: filename index %d, table has %d entries",
			errs.ErrDebugInfoBounds, i, d.filenameTable.Len())
	}

	entry := d.filenameTable.At(i)
	if entry.Overflowed() {
		return "", fmt.Errorf("%w: filename %d uses overflow encoding, which the debug layout does not carry",
			errs.ErrDebugInfoBounds, i)
	}

	end := uint64(entry.Offset()) + uint64(entry.Length())
	if end > uint64(len(d.filenameStorage)) {
		return "", fmt.Errorf("%w: filename %d spans [%d, %d), storage has %d bytes",
			errs.ErrDebugInfoBounds, i, entry.Offset(), end, len(d.filenameStorage))
	}

	return string(d.filenameStorage[entry.Offset():end]), nil
}

// FileRegionCount returns the number of file regions.
func (d *DebugInfo) FileRegionCount() int {
	return len(d.fileRegions) / section.DebugFileRegionSize
}

// FileRegion returns region i. It panics if i is out of range.
func (d *DebugInfo) FileRegion(i int) section.DebugFileRegion {
	off := i * section.DebugFileRegionSize

	return section.DebugFileRegion{
		FromAddress:        d.engine.Uint32(d.fileRegions[off : off+4]),
		FilenameID:         d.engine.Uint32(d.fileRegions[off+4 : off+8]),
		SourceMappingURLID: d.engine.Uint32(d.fileRegions[off+8 : off+12]),
	}
}

// DebugData returns the raw debug data blob.
func (d *DebugInfo) DebugData() []byte {
	return d.debugData
}

// LexicalData returns the lexical data portion of the debug data blob.
func (d *DebugInfo) LexicalData() []byte {
	return d.debugData[d.header.LexicalDataOffset:]
}
