package section

import (
	"fmt"

	"github.com/arloliu/hbcfile/endian"
	"github.com/arloliu/hbcfile/errs"
)

// CJSModuleEntry is one unresolved CommonJS module: the module's ID and the
// function table index of its wrapper function. Files whose header declares a
// negative cjsModuleCount store resolved modules instead, as a flat array of
// function indices in module slot order.
type CJSModuleEntry struct {
	ModuleID      uint32 // byte offset 0-3
	FunctionIndex uint32 // byte offset 4-7
}

// Bytes serializes the entry into a new 8-byte slice.
func (e CJSModuleEntry) Bytes(engine endian.EndianEngine) []byte {
	var b [CJSModuleEntrySize]byte
	engine.PutUint32(b[0:4], e.ModuleID)
	engine.PutUint32(b[4:8], e.FunctionIndex)

	return b[:]
}

// WriteToSlice writes the entry to a pre-allocated slice and returns the next
// write position.
func (e CJSModuleEntry) WriteToSlice(data []byte, offset int, engine endian.EndianEngine) int {
	engine.PutUint32(data[offset:offset+4], e.ModuleID)
	engine.PutUint32(data[offset+4:offset+8], e.FunctionIndex)

	return offset + CJSModuleEntrySize
}

// ParseCJSModuleEntry parses an unresolved module entry from a byte slice.
func ParseCJSModuleEntry(data []byte, engine endian.EndianEngine) (CJSModuleEntry, error) {
	if len(data) < CJSModuleEntrySize {
		return CJSModuleEntry{}, fmt.Errorf("%w: cjs module entry needs %d bytes, got %d",
			errs.ErrInvalidEntrySize, CJSModuleEntrySize, len(data))
	}

	return CJSModuleEntry{
		ModuleID:      engine.Uint32(data[0:4]),
		FunctionIndex: engine.Uint32(data[4:8]),
	}, nil
}
