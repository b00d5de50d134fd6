package bundle

import (
	"fmt"

	"github.com/arloliu/hbcfile/endian"
	"github.com/arloliu/hbcfile/errs"
	"github.com/arloliu/hbcfile/section"
)

// FuncHeaderTable is a zero-copy view over the function header section.
type FuncHeaderTable struct {
	data   []byte
	engine endian.EndianEngine
}

// Len returns the number of function headers.
func (t FuncHeaderTable) Len() int {
	return len(t.data) / section.SmallFuncHeaderSize
}

// At returns the compact header at index i. It panics if i is out of range,
// like slice indexing; the section bounds were validated during population.
func (t FuncHeaderTable) At(i int) section.SmallFuncHeader {
	off := i * section.SmallFuncHeaderSize

	return section.SmallFuncHeader{Words: [4]uint32{
		t.engine.Uint32(t.data[off : off+4]),
		t.engine.Uint32(t.data[off+4 : off+8]),
		t.engine.Uint32(t.data[off+8 : off+12]),
		t.engine.Uint32(t.data[off+12 : off+16]),
	}}
}

// StringTable is a zero-copy view over the small string table entries.
type StringTable struct {
	data   []byte
	engine endian.EndianEngine
}

// Len returns the number of string table entries.
func (t StringTable) Len() int {
	return len(t.data) / section.SmallStringEntrySize
}

// At returns the packed entry at index i. It panics if i is out of range.
func (t StringTable) At(i int) section.SmallStringTableEntry {
	off := i * section.SmallStringEntrySize

	return section.SmallStringTableEntry{Word: t.engine.Uint32(t.data[off : off+4])}
}

// IdentifierHashTable is a zero-copy view over the precomputed identifier
// hashes, indexed by identifier position.
type IdentifierHashTable struct {
	data   []byte
	engine endian.EndianEngine
}

// Len returns the number of identifier hashes.
func (t IdentifierHashTable) Len() int {
	return len(t.data) / section.IdentifierHashSize
}

// At returns the hash at identifier position i. It panics if i is out of range.
func (t IdentifierHashTable) At(i int) uint32 {
	off := i * section.IdentifierHashSize

	return t.engine.Uint32(t.data[off : off+4])
}

// OverflowStringTable is a zero-copy view over the overflow string entries.
type OverflowStringTable struct {
	data   []byte
	engine endian.EndianEngine
}

// Len returns the number of overflow entries.
func (t OverflowStringTable) Len() int {
	return len(t.data) / section.OverflowStringEntrySize
}

// At returns the overflow entry at index i. It panics if i is out of range.
func (t OverflowStringTable) At(i int) section.OverflowStringTableEntry {
	off := i * section.OverflowStringEntrySize

	return section.OverflowStringTableEntry{
		Offset: t.engine.Uint32(t.data[off : off+4]),
		Length: t.engine.Uint32(t.data[off+4 : off+8]),
	}
}

// Entries decodes the whole overflow table. The populator caps the table size
// up front, so the copy is small.
func (t OverflowStringTable) Entries() []section.OverflowStringTableEntry {
	entries := make([]section.OverflowStringTableEntry, t.Len())
	for i := range entries {
		entries[i] = t.At(i)
	}

	return entries
}

// RegExpTable is a zero-copy view over the regexp table entries.
type RegExpTable struct {
	data   []byte
	engine endian.EndianEngine
}

// Len returns the number of regexp entries.
func (t RegExpTable) Len() int {
	return len(t.data) / section.RegExpEntrySize
}

// At returns the regexp entry at index i. It panics if i is out of range.
func (t RegExpTable) At(i int) section.RegExpTableEntry {
	off := i * section.RegExpEntrySize

	return section.RegExpTableEntry{
		Offset: t.engine.Uint32(t.data[off : off+4]),
		Length: t.engine.Uint32(t.data[off+4 : off+8]),
	}
}

// CJSModuleTable is a zero-copy view over the unresolved CJS module pairs.
type CJSModuleTable struct {
	data   []byte
	engine endian.EndianEngine
}

// Len returns the number of unresolved module entries.
func (t CJSModuleTable) Len() int {
	return len(t.data) / section.CJSModuleEntrySize
}

// At returns the module pair at index i. It panics if i is out of range.
func (t CJSModuleTable) At(i int) section.CJSModuleEntry {
	off := i * section.CJSModuleEntrySize

	return section.CJSModuleEntry{
		ModuleID:      t.engine.Uint32(t.data[off : off+4]),
		FunctionIndex: t.engine.Uint32(t.data[off+4 : off+8]),
	}
}

// CJSModuleStaticTable is a zero-copy view over the resolved CJS module
// table: one function index per module slot.
type CJSModuleStaticTable struct {
	data   []byte
	engine endian.EndianEngine
}

// Len returns the number of resolved module slots.
func (t CJSModuleStaticTable) Len() int {
	return len(t.data) / section.CJSModuleStaticEntrySize
}

// At returns the function index of module slot i. It panics if i is out of range.
func (t CJSModuleStaticTable) At(i int) uint32 {
	off := i * section.CJSModuleStaticEntrySize

	return t.engine.Uint32(t.data[off : off+4])
}

// Fields is the populated set of typed, bounds-checked views over one
// bytecode buffer. All views alias the caller's buffer without copying; none
// of them may outlive it, and the buffer must not be freed or resized while
// a Fields derived from it is alive.
//
// A Fields obtained from Populate is immutable: nothing in this package
// writes through it, so it is safe for unsynchronized concurrent reads.
type Fields struct {
	data   []byte
	engine endian.EndianEngine

	header section.FileHeader

	funcHeaders      FuncHeaderTable
	stringTable      StringTable
	identifierHashes IdentifierHashTable
	stringOverflow   OverflowStringTable
	stringStorage    []byte
	arrayBuffer      []byte
	objKeyBuffer     []byte
	objValueBuffer   []byte
	regExpTable      RegExpTable
	regExpStorage    []byte
	cjsModules       CJSModuleTable
	cjsModulesStatic CJSModuleStaticTable
}

// Header returns a copy of the parsed file header.
func (f *Fields) Header() section.FileHeader {
	return f.header
}

// FunctionHeaders returns the function header table view. Some entries may be
// overflow references; resolve them with FunctionHeader.
func (f *Fields) FunctionHeaders() FuncHeaderTable {
	return f.funcHeaders
}

// FunctionHeader returns the full header of function i, resolving an
// overflowed compact entry through its large header in the function info
// area.
func (f *Fields) FunctionHeader(i int) (section.FunctionHeader, error) {
	if i < 0 || i >= f.funcHeaders.Len() {
		return section.FunctionHeader{}, fmt.Errorf("%w: function index %d, table has %d entries",
			errs.ErrInvalidOverflowReference, i, f.funcHeaders.Len())
	}

	small := f.funcHeaders.At(i)
	if !small.Overflowed() {
		return small.Unpack()
	}

	off, err := small.LargeHeaderOffset()
	if err != nil {
		return section.FunctionHeader{}, err
	}

	if int64(off)+section.LargeFuncHeaderSize > int64(len(f.data)) {
		return section.FunctionHeader{}, fmt.Errorf("%w: large header of function %d at offset %d exceeds file length %d",
			errs.ErrInvalidOverflowReference, i, off, len(f.data))
	}

	return section.ParseFunctionHeader(f.data[off:off+section.LargeFuncHeaderSize], f.engine)
}

// StringTableEntries returns the small string table view.
func (f *Fields) StringTableEntries() StringTable {
	return f.stringTable
}

// StringOverflowEntries returns the overflow string table view.
func (f *Fields) StringOverflowEntries() OverflowStringTable {
	return f.stringOverflow
}

// StringTableEntry returns the full-width entry of string i, resolving the
// two-tier encoding.
func (f *Fields) StringTableEntry(i int) (section.StringTableEntry, error) {
	if i < 0 || i >= f.stringTable.Len() {
		return section.StringTableEntry{}, fmt.Errorf("%w: string index %d, table has %d entries",
			errs.ErrInvalidOverflowReference, i, f.stringTable.Len())
	}

	small := f.stringTable.At(i)
	if !small.Overflowed() {
		return section.UnpackStringEntry(small, nil)
	}

	idx := small.Offset()
	if int(idx) >= f.stringOverflow.Len() {
		return section.StringTableEntry{}, fmt.Errorf("%w: overflow index %d, table has %d entries",
			errs.ErrInvalidOverflowReference, idx, f.stringOverflow.Len())
	}

	ov := f.stringOverflow.At(int(idx))

	return section.StringTableEntry{
		Offset:       ov.Offset,
		Length:       ov.Length,
		IsUTF16:      small.IsUTF16(),
		IsIdentifier: small.IsIdentifier(),
	}, nil
}

// StringData returns the raw storage bytes of string i: Length bytes for a
// Latin-1 string, 2×Length bytes of little-endian code units for a UTF-16
// one.
func (f *Fields) StringData(i int) ([]byte, error) {
	entry, err := f.StringTableEntry(i)
	if err != nil {
		return nil, err
	}

	size := uint64(entry.Length)
	if entry.IsUTF16 {
		size *= 2
	}

	end := uint64(entry.Offset) + size
	if end > uint64(len(f.stringStorage)) {
		return nil, fmt.Errorf("%w: string %d spans [%d, %d), storage has %d bytes",
			errs.ErrInvalidOverflowReference, i, entry.Offset, end, len(f.stringStorage))
	}

	return f.stringStorage[entry.Offset:end:end], nil
}

// IdentifierHashes returns the identifier hash view.
func (f *Fields) IdentifierHashes() IdentifierHashTable {
	return f.identifierHashes
}

// StringStorage returns the string contents blob.
func (f *Fields) StringStorage() []byte {
	return f.stringStorage
}

// ArrayBuffer returns the array literal buffer.
func (f *Fields) ArrayBuffer() []byte {
	return f.arrayBuffer
}

// ObjKeyBuffer returns the object key literal buffer.
func (f *Fields) ObjKeyBuffer() []byte {
	return f.objKeyBuffer
}

// ObjValueBuffer returns the object value literal buffer.
func (f *Fields) ObjValueBuffer() []byte {
	return f.objValueBuffer
}

// RegExpTableEntries returns the regexp table view.
func (f *Fields) RegExpTableEntries() RegExpTable {
	return f.regExpTable
}

// RegExpStorage returns the compiled regexp blob.
func (f *Fields) RegExpStorage() []byte {
	return f.regExpStorage
}

// RegExpData returns the compiled program bytes of regexp i.
func (f *Fields) RegExpData(i int) ([]byte, error) {
	if i < 0 || i >= f.regExpTable.Len() {
		return nil, fmt.Errorf("%w: regexp index %d, table has %d entries",
			errs.ErrInvalidOverflowReference, i, f.regExpTable.Len())
	}

	entry := f.regExpTable.At(i)
	end := uint64(entry.Offset) + uint64(entry.Length)
	if end > uint64(len(f.regExpStorage)) {
		return nil, fmt.Errorf("%w: regexp %d spans [%d, %d), storage has %d bytes",
			errs.ErrInvalidOverflowReference, i, entry.Offset, end, len(f.regExpStorage))
	}

	return f.regExpStorage[entry.Offset:end:end], nil
}

// CJSModuleTableEntries returns the unresolved module table view. It is
// empty when the header declares resolved modules.
func (f *Fields) CJSModuleTableEntries() CJSModuleTable {
	return f.cjsModules
}

// CJSModuleTableStatic returns the resolved module table view. It is empty
// when the header declares unresolved modules.
func (f *Fields) CJSModuleTableStatic() CJSModuleStaticTable {
	return f.cjsModulesStatic
}

// FunctionExceptionHandlers returns the exception handler table of function
// i, or nil when its hasExceptionHandler flag is clear. For a non-overflowed
// function the table lives at the header's infoOffset; for an overflowed one
// it follows the 32-byte large header.
func (f *Fields) FunctionExceptionHandlers(i int) ([]section.ExceptionHandlerEntry, error) {
	if i < 0 || i >= f.funcHeaders.Len() {
		return nil, fmt.Errorf("%w: function index %d, table has %d entries",
			errs.ErrInvalidOverflowReference, i, f.funcHeaders.Len())
	}

	small := f.funcHeaders.At(i)
	if !small.Flags().HasExceptionHandler() {
		return nil, nil
	}

	if !small.Overflowed() {
		full, err := small.Unpack()
		if err != nil {
			return nil, err
		}

		return f.ExceptionHandlersAt(full.InfoOffset)
	}

	off, err := small.LargeHeaderOffset()
	if err != nil {
		return nil, err
	}

	return f.ExceptionHandlersAt(off + section.LargeFuncHeaderSize)
}

// ExceptionHandlersAt parses the exception handler table located at the
// given absolute file offset in the function info area. Callers obtain the
// offset from a function's extended info when its hasExceptionHandler flag
// is set.
func (f *Fields) ExceptionHandlersAt(offset uint32) ([]section.ExceptionHandlerEntry, error) {
	if int64(offset) > int64(len(f.data)) {
		return nil, fmt.Errorf("%w: exception handler table at offset %d, file has %d bytes",
			errs.ErrTruncatedBuffer, offset, len(f.data))
	}

	entries, _, err := section.ParseExceptionHandlers(f.data[offset:], f.engine)

	return entries, err
}
