package bundle

import (
	"fmt"
	"math"

	"github.com/arloliu/hbcfile/endian"
	"github.com/arloliu/hbcfile/errs"
	"github.com/arloliu/hbcfile/format"
	"github.com/arloliu/hbcfile/section"
)

// layoutCursor walks the fixed section order, handing out sub-slices of the
// buffer and verifying every section fits before its view is exposed. All
// arithmetic is done in uint64 so 32-bit header fields cannot wrap it.
type layoutCursor struct {
	buf []byte
	off uint64
}

// take returns the next size bytes as a section view, or an error naming the
// section and the expected vs. actual extent.
func (c *layoutCursor) take(name string, size uint64) ([]byte, error) {
	if size > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %s: size %d exceeds 32-bit range", errs.ErrSectionOverflow, name, size)
	}

	end := c.off + size
	if end > uint64(len(c.buf)) {
		return nil, fmt.Errorf("%w: %s: needs bytes [%d, %d), buffer has %d",
			errs.ErrTruncatedBuffer, name, c.off, end, len(c.buf))
	}

	view := c.buf[c.off:end:end]
	c.off = end

	return view, nil
}

// Populate maps a raw bytecode buffer to an immutable set of typed,
// bounds-checked section views.
//
// The buffer's origin is not trusted: the fixed header is validated against
// the expected form, the compiled-in version, and the actual buffer length,
// then every section boundary is computed as a running sum of header counts
// and sizes and checked against the buffer before its view is constructed.
// On any violation Populate returns a structured error and no partial view
// set.
//
// The returned Fields aliases data without copying. The caller owns the
// buffer and must keep it alive, unmodified, for as long as the Fields or
// any view derived from it is in use. A successfully populated Fields is
// safe for unsynchronized concurrent reads.
func Populate(data []byte, form format.Form) (*Fields, error) {
	f := &Fields{
		data:   data,
		engine: endian.FormatEngine(),
	}

	if err := f.populate(form); err != nil {
		return nil, err
	}

	return f, nil
}

func (f *Fields) populate(form format.Form) error {
	header, err := section.ParseFileHeader(f.data, form)
	if err != nil {
		return err
	}
	f.header = header

	cur := layoutCursor{buf: f.data, off: section.FileHeaderSize}

	b, err := cur.take("function headers", uint64(header.FunctionCount)*section.SmallFuncHeaderSize)
	if err != nil {
		return err
	}
	f.funcHeaders = FuncHeaderTable{data: b, engine: f.engine}

	smallEntryBytes := uint64(header.StringCount) * section.SmallStringEntrySize
	b, err = cur.take("string table entries", smallEntryBytes)
	if err != nil {
		return err
	}
	f.stringTable = StringTable{data: b, engine: f.engine}

	b, err = cur.take("identifier hashes", uint64(header.IdentifierCount)*section.IdentifierHashSize)
	if err != nil {
		return err
	}
	f.identifierHashes = IdentifierHashTable{data: b, engine: f.engine}

	// The overflow entry count is not stored in the header; the array's size
	// is whatever stringTableBytes leaves after the small entries.
	if uint64(header.StringTableBytes) < smallEntryBytes {
		return fmt.Errorf("%w: string overflow entries: stringTableBytes %d smaller than %d bytes of small entries",
			errs.ErrSectionOverflow, header.StringTableBytes, smallEntryBytes)
	}
	overflowBytes := uint64(header.StringTableBytes) - smallEntryBytes
	if overflowBytes%section.OverflowStringEntrySize != 0 {
		return fmt.Errorf("%w: string overflow entries: %d bytes is not a multiple of entry size %d",
			errs.ErrSectionOverflow, overflowBytes, section.OverflowStringEntrySize)
	}
	b, err = cur.take("string overflow entries", overflowBytes)
	if err != nil {
		return err
	}
	f.stringOverflow = OverflowStringTable{data: b, engine: f.engine}

	if f.stringStorage, err = cur.take("string storage", uint64(header.StringStorageSize)); err != nil {
		return err
	}

	if f.arrayBuffer, err = cur.take("array buffer", uint64(header.ArrayBufferSize)); err != nil {
		return err
	}

	if f.objKeyBuffer, err = cur.take("object key buffer", uint64(header.ObjKeyBufferSize)); err != nil {
		return err
	}

	if f.objValueBuffer, err = cur.take("object value buffer", uint64(header.ObjValueBufferSize)); err != nil {
		return err
	}

	b, err = cur.take("regexp table", uint64(header.RegExpCount)*section.RegExpEntrySize)
	if err != nil {
		return err
	}
	f.regExpTable = RegExpTable{data: b, engine: f.engine}

	if f.regExpStorage, err = cur.take("regexp storage", uint64(header.RegExpStorageSize)); err != nil {
		return err
	}

	// The sign of cjsModuleCount selects the table shape: non-negative means
	// unresolved (moduleID, functionIndex) pairs, negative means the modules
	// are already resolved to a flat function index array.
	if header.CJSModuleCount >= 0 {
		b, err = cur.take("cjs module table", uint64(header.CJSModuleCount)*section.CJSModuleEntrySize)
		if err != nil {
			return err
		}
		f.cjsModules = CJSModuleTable{data: b, engine: f.engine}
		f.cjsModulesStatic = CJSModuleStaticTable{engine: f.engine}
	} else {
		count := uint64(-int64(header.CJSModuleCount))
		b, err = cur.take("cjs module table (resolved)", count*section.CJSModuleStaticEntrySize)
		if err != nil {
			return err
		}
		f.cjsModulesStatic = CJSModuleStaticTable{data: b, engine: f.engine}
		f.cjsModules = CJSModuleTable{engine: f.engine}
	}

	// Debug info lives at an absolute offset so it can be stripped without
	// relayout; zero means absent. The sub-layout itself is validated lazily
	// by ReadDebugInfo.
	if header.DebugInfoOffset != 0 {
		if uint64(header.DebugInfoOffset) < section.FileHeaderSize ||
			uint64(header.DebugInfoOffset) > uint64(len(f.data)) {
			return fmt.Errorf("%w: debug info: offset %d outside file of %d bytes",
				errs.ErrTruncatedBuffer, header.DebugInfoOffset, len(f.data))
		}
	}

	return nil
}
