package section

import (
	"fmt"

	"github.com/arloliu/hbcfile/endian"
	"github.com/arloliu/hbcfile/errs"
	"github.com/arloliu/hbcfile/format"
)

// FileHeader is the fixed-size header at the start of every bytecode file.
// It carries the global counts and byte sizes from which every section
// boundary is derived.
type FileHeader struct {
	// MagicNumber selects the bytecode form: Magic for execution form,
	// DeltaMagic for delta form.
	MagicNumber uint64 // byte offset 0-7
	// Version is the bytecode version the file was produced with. It must
	// equal Version exactly.
	Version uint32 // byte offset 8-11
	// SourceHash is the SHA-1 hash of the original source.
	SourceHash [SourceHashSize]byte // byte offset 12-31
	// FileLength is the total length of the file in bytes. It must equal the
	// length of the buffer being populated.
	FileLength uint32 // byte offset 32-35
	// GlobalCodeIndex is the function table index of the top-level function.
	GlobalCodeIndex uint32 // byte offset 36-39
	// FunctionCount is the number of entries in the function header table.
	FunctionCount uint32 // byte offset 40-43
	// StringCount is the number of entries in the string table.
	StringCount uint32 // byte offset 44-47
	// IdentifierCount is the number of strings which are identifiers.
	IdentifierCount uint32 // byte offset 48-51
	// StringTableBytes is the byte size of all table entries including the
	// overflow entries; the overflow entry count is derived from it.
	StringTableBytes uint32 // byte offset 52-55
	// StringStorageSize is the byte size of the string contents blob.
	StringStorageSize uint32 // byte offset 56-59
	// RegExpCount is the number of compiled regexp literals.
	RegExpCount uint32 // byte offset 60-63
	// RegExpStorageSize is the byte size of the compiled regexp blob.
	RegExpStorageSize uint32 // byte offset 64-67
	// ArrayBufferSize is the byte size of the array literal buffer.
	ArrayBufferSize uint32 // byte offset 68-71
	// ObjKeyBufferSize is the byte size of the object key literal buffer.
	ObjKeyBufferSize uint32 // byte offset 72-75
	// ObjValueBufferSize is the byte size of the object value literal buffer.
	ObjValueBufferSize uint32 // byte offset 76-79
	// CJSModuleCount is the number of CommonJS modules. A negative value
	// means the modules are already resolved and the table holds flat
	// function indices instead of (moduleID, functionIndex) pairs.
	CJSModuleCount int32 // byte offset 80-83
	// DebugInfoOffset is the absolute byte offset of the debug info
	// sub-layout, or zero when the file carries no debug info. It is absolute
	// rather than accumulated so debug data can be stripped independently.
	DebugInfoOffset uint32 // byte offset 84-87
	// Options is the bytecode option byte.
	Options BytecodeOptions // byte offset 88, bytes 89-95 are zero padding
}

// MagicForForm returns the magic number expected for the given bytecode form.
func MagicForForm(form format.Form) uint64 {
	if form == format.Delta {
		return DeltaMagic
	}

	return Magic
}

// NewFileHeader creates a FileHeader for the given form with the current
// version. Counts and sizes are zero; the builder fills them in when it
// finishes the file.
func NewFileHeader(form format.Form) *FileHeader {
	return &FileHeader{
		MagicNumber: MagicForForm(form),
		Version:     Version,
	}
}

// Form returns the bytecode form indicated by the magic number, and whether
// the magic number matches either form at all.
func (h *FileHeader) Form() (format.Form, bool) {
	switch h.MagicNumber {
	case Magic:
		return format.Execution, true
	case DeltaMagic:
		return format.Delta, true
	default:
		return 0, false
	}
}

// Parse parses the fixed header from a byte slice.
//
// Parse performs no semantic validation; use Validate afterwards, or
// ParseFileHeader which combines both.
func (h *FileHeader) Parse(data []byte) error {
	if len(data) < FileHeaderSize {
		return fmt.Errorf("%w: expected %d bytes, got %d", errs.ErrInvalidHeaderSize, FileHeaderSize, len(data))
	}

	engine := endian.FormatEngine()

	h.MagicNumber = engine.Uint64(data[0:8])
	h.Version = engine.Uint32(data[8:12])
	copy(h.SourceHash[:], data[12:32])
	h.FileLength = engine.Uint32(data[32:36])
	h.GlobalCodeIndex = engine.Uint32(data[36:40])
	h.FunctionCount = engine.Uint32(data[40:44])
	h.StringCount = engine.Uint32(data[44:48])
	h.IdentifierCount = engine.Uint32(data[48:52])
	h.StringTableBytes = engine.Uint32(data[52:56])
	h.StringStorageSize = engine.Uint32(data[56:60])
	h.RegExpCount = engine.Uint32(data[60:64])
	h.RegExpStorageSize = engine.Uint32(data[64:68])
	h.ArrayBufferSize = engine.Uint32(data[68:72])
	h.ObjKeyBufferSize = engine.Uint32(data[72:76])
	h.ObjValueBufferSize = engine.Uint32(data[76:80])
	h.CJSModuleCount = int32(engine.Uint32(data[80:84]))
	h.DebugInfoOffset = engine.Uint32(data[84:88])
	h.Options = BytecodeOptions(data[88])

	return nil
}

// Validate checks the header against the expected bytecode form and the
// actual buffer length, in the order: magic, version, file length. Any
// violation returns a descriptive error and the caller must not derive
// section views from the header.
func (h *FileHeader) Validate(form format.Form, bufLen int) error {
	if want := MagicForForm(form); h.MagicNumber != want {
		return fmt.Errorf("%w: expected %#016x (%s form), got %#016x",
			errs.ErrMagicMismatch, want, form, h.MagicNumber)
	}

	if h.Version != Version {
		return fmt.Errorf("%w: expected version %d, got %d", errs.ErrVersionMismatch, Version, h.Version)
	}

	if int64(h.FileLength) != int64(bufLen) {
		return fmt.Errorf("%w: header declares %d bytes, buffer has %d",
			errs.ErrFileLengthMismatch, h.FileLength, bufLen)
	}

	return nil
}

// Bytes serializes the header into a new byte slice.
func (h *FileHeader) Bytes() []byte {
	b := make([]byte, FileHeaderSize)
	h.WriteToSlice(b, 0)

	return b
}

// WriteToSlice writes the header to a pre-allocated slice and returns the
// next write position. The slice must have FileHeaderSize bytes of room at
// offset; the 7 padding bytes are written as zero.
func (h *FileHeader) WriteToSlice(data []byte, offset int) int {
	engine := endian.FormatEngine()
	b := data[offset : offset+FileHeaderSize]

	engine.PutUint64(b[0:8], h.MagicNumber)
	engine.PutUint32(b[8:12], h.Version)
	copy(b[12:32], h.SourceHash[:])
	engine.PutUint32(b[32:36], h.FileLength)
	engine.PutUint32(b[36:40], h.GlobalCodeIndex)
	engine.PutUint32(b[40:44], h.FunctionCount)
	engine.PutUint32(b[44:48], h.StringCount)
	engine.PutUint32(b[48:52], h.IdentifierCount)
	engine.PutUint32(b[52:56], h.StringTableBytes)
	engine.PutUint32(b[56:60], h.StringStorageSize)
	engine.PutUint32(b[60:64], h.RegExpCount)
	engine.PutUint32(b[64:68], h.RegExpStorageSize)
	engine.PutUint32(b[68:72], h.ArrayBufferSize)
	engine.PutUint32(b[72:76], h.ObjKeyBufferSize)
	engine.PutUint32(b[76:80], h.ObjValueBufferSize)
	engine.PutUint32(b[80:84], uint32(h.CJSModuleCount)) //nolint: gosec
	engine.PutUint32(b[84:88], h.DebugInfoOffset)
	b[88] = byte(h.Options)
	for i := 89; i < FileHeaderSize; i++ {
		b[i] = 0
	}

	return offset + FileHeaderSize
}

// ParseFileHeader parses and validates a FileHeader from the start of a
// buffer, expecting the given bytecode form.
//
// Returns:
//   - FileHeader: Parsed header struct
//   - error: ErrInvalidHeaderSize, ErrMagicMismatch, ErrVersionMismatch or
//     ErrFileLengthMismatch
func ParseFileHeader(data []byte, form format.Form) (FileHeader, error) {
	h := FileHeader{}
	if err := h.Parse(data); err != nil {
		return FileHeader{}, err
	}

	if err := h.Validate(form, len(data)); err != nil {
		return FileHeader{}, err
	}

	return h, nil
}
