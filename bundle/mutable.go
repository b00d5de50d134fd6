package bundle

import (
	"fmt"

	"github.com/arloliu/hbcfile/endian"
	"github.com/arloliu/hbcfile/errs"
	"github.com/arloliu/hbcfile/format"
	"github.com/arloliu/hbcfile/section"
)

// MutableFields is the writable variant of Fields, for tooling that patches
// a bytecode buffer in place. The layout is identical; the views additionally
// permit writes through the setter methods.
//
// A buffer must be owned by either one MutableFields or any number of
// immutable Fields, never both: in-place writes to packed words are not
// atomic, and a concurrent reader of the same buffer would observe torn
// fields. MutableFields itself must not be shared across goroutines without
// external locking.
type MutableFields struct {
	Fields
}

// PopulateMutable is Populate for tooling: the same validation and layout
// pass, returning a view set whose setters write into the caller's buffer.
func PopulateMutable(data []byte, form format.Form) (*MutableFields, error) {
	m := &MutableFields{}
	m.data = data
	m.engine = endian.FormatEngine()

	if err := m.populate(form); err != nil {
		return nil, err
	}

	return m, nil
}

// SetFunctionHeader overwrites the compact header of function i in place.
func (m *MutableFields) SetFunctionHeader(i int, small section.SmallFuncHeader) error {
	if i < 0 || i >= m.funcHeaders.Len() {
		return fmt.Errorf("%w: function index %d, table has %d entries",
			errs.ErrInvalidOverflowReference, i, m.funcHeaders.Len())
	}

	small.WriteToSlice(m.funcHeaders.data, i*section.SmallFuncHeaderSize, m.engine)

	return nil
}

// SetFunctionFlags rewrites only the flag byte of function i, preserving the
// packed fields. For an overflowed function the flag byte of the large
// header is rewritten as well, keeping the two copies consistent.
func (m *MutableFields) SetFunctionFlags(i int, flags section.FunctionHeaderFlag) error {
	if i < 0 || i >= m.funcHeaders.Len() {
		return fmt.Errorf("%w: function index %d, table has %d entries",
			errs.ErrInvalidOverflowReference, i, m.funcHeaders.Len())
	}

	small := m.funcHeaders.At(i)

	// The overflowed bit is part of the layout, not of the caller's state.
	flags.SetOverflowed(small.Overflowed())
	small.SetFlags(flags)
	small.WriteToSlice(m.funcHeaders.data, i*section.SmallFuncHeaderSize, m.engine)

	if !small.Overflowed() {
		return nil
	}

	off, err := small.LargeHeaderOffset()
	if err != nil {
		return err
	}

	large, err := m.FunctionHeader(i)
	if err != nil {
		return err
	}

	largeFlags := flags
	largeFlags.SetOverflowed(false)
	large.Flags = largeFlags
	large.WriteToSlice(m.data, int(off), m.engine)

	return nil
}

// SetSourceHash rewrites the 20-byte source hash in the file header.
func (m *MutableFields) SetSourceHash(hash [section.SourceHashSize]byte) {
	m.header.SourceHash = hash
	copy(m.data[12:32], hash[:])
}

// SetOptions rewrites the bytecode options byte in the file header.
func (m *MutableFields) SetOptions(opts section.BytecodeOptions) {
	m.header.Options = opts
	m.data[88] = byte(opts)
}

// StripDebugInfo removes the file's debug information in place: the header's
// debugInfoOffset is zeroed and every function's hasDebugInfo flag is
// cleared. The debug info bytes themselves are left in the buffer; tools
// that also want to reclaim the space truncate the file afterwards.
func (m *MutableFields) StripDebugInfo() error {
	m.header.DebugInfoOffset = 0
	m.engine.PutUint32(m.data[84:88], 0)

	for i := 0; i < m.funcHeaders.Len(); i++ {
		small := m.funcHeaders.At(i)
		flags := small.Flags()
		if !flags.HasDebugInfo() {
			continue
		}

		flags.SetHasDebugInfo(false)
		if err := m.SetFunctionFlags(i, flags); err != nil {
			return err
		}
	}

	return nil
}
