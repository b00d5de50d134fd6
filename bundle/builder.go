package bundle

import (
	"fmt"
	"math"
	"unicode/utf16"

	"github.com/arloliu/hbcfile/endian"
	"github.com/arloliu/hbcfile/errs"
	"github.com/arloliu/hbcfile/format"
	"github.com/arloliu/hbcfile/internal/hash"
	"github.com/arloliu/hbcfile/section"
)

// BuilderOption configures a Builder.
type BuilderOption func(*Builder) error

// WithForm sets the bytecode form of the produced file. The delta form
// differs only by its magic number; its layout is already diff-stable.
func WithForm(form format.Form) BuilderOption {
	return func(b *Builder) error {
		if form != format.Execution && form != format.Delta {
			return fmt.Errorf("invalid bytecode form: %v", form)
		}
		b.form = form

		return nil
	}
}

// WithDeltaForm sets the delta form, used by build pipelines that diff
// successive bytecode files.
func WithDeltaForm() BuilderOption {
	return WithForm(format.Delta)
}

// WithStaticBuiltins marks the file as compiled with static builtins.
func WithStaticBuiltins(enabled bool) BuilderOption {
	return func(b *Builder) error {
		if enabled {
			b.options.WithStaticBuiltins()
		} else {
			b.options.WithoutStaticBuiltins()
		}

		return nil
	}
}

// WithSourceHash sets the 20-byte hash of the original source.
func WithSourceHash(h [section.SourceHashSize]byte) BuilderOption {
	return func(b *Builder) error {
		b.sourceHash = h

		return nil
	}
}

type builderString struct {
	entry section.StringTableEntry
	// raw is the string's encoded storage bytes, kept for identifier hashing.
	raw []byte
}

type builderFunc struct {
	header   section.FunctionHeader
	bytecode []byte
	handlers []section.ExceptionHandlerEntry
}

// DebugInfoContent is the debug information handed to Builder.SetDebugInfo.
type DebugInfoContent struct {
	// Filenames is the debug filename table. Each filename must fit a
	// self-describing small string entry.
	Filenames []string
	// FileRegions maps bytecode address ranges to filename table indices.
	FileRegions []section.DebugFileRegion
	// DebugData is the opaque debug data blob.
	DebugData []byte
	// LexicalDataOffset locates the lexical data within DebugData.
	LexicalDataOffset uint32
}

// Builder assembles a bytecode file from compiled parts and serializes it
// into the container layout. It is the producer-side counterpart of
// Populate: a buffer returned by Finish round-trips through Populate with
// identical section contents.
//
// A Builder is not safe for concurrent use and is not reusable after Finish.
type Builder struct {
	form       format.Form
	options    section.BytecodeOptions
	sourceHash [section.SourceHashSize]byte

	globalCodeIndex uint32

	funcs []builderFunc

	strings       []builderString
	stringIndex   map[string]uint32
	stringStorage []byte

	arrayBuffer    []byte
	objKeyBuffer   []byte
	objValueBuffer []byte

	regExpEntries []section.RegExpTableEntry
	regExpStorage []byte

	cjsModules         []section.CJSModuleEntry
	cjsModulesResolved []uint32
	cjsModulesSet      bool

	debugInfo *DebugInfoContent
}

// NewBuilder creates a Builder for the execution form with default options.
func NewBuilder(opts ...BuilderOption) (*Builder, error) {
	b := &Builder{
		form:        format.Execution,
		stringIndex: make(map[string]uint32),
	}

	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}

	return b, nil
}

// AddString appends a string to the string table and returns its index.
// Strings are deduplicated by content; adding an existing string as an
// identifier upgrades the existing entry. Strings whose runes all fit one
// byte are stored as Latin-1, the rest as UTF-16 code units.
func (b *Builder) AddString(s string, isIdentifier bool) uint32 {
	if idx, ok := b.stringIndex[s]; ok {
		if isIdentifier {
			b.strings[idx].entry.IsIdentifier = true
		}

		return idx
	}

	raw, isUTF16, units := encodeStringStorage(s)
	entry := section.StringTableEntry{
		Offset:       uint32(len(b.stringStorage)), //nolint: gosec
		Length:       units,
		IsUTF16:      isUTF16,
		IsIdentifier: isIdentifier,
	}
	b.stringStorage = append(b.stringStorage, raw...)

	idx := uint32(len(b.strings)) //nolint: gosec
	b.strings = append(b.strings, builderString{entry: entry, raw: raw})
	b.stringIndex[s] = idx

	return idx
}

// encodeStringStorage encodes a string for the storage blob: Latin-1 bytes
// when every rune fits one byte, little-endian UTF-16 code units otherwise.
// It returns the encoded bytes, the UTF-16 flag, and the unit count.
func encodeStringStorage(s string) ([]byte, bool, uint32) {
	latin1 := true
	for _, r := range s {
		if r > 0xFF {
			latin1 = false
			break
		}
	}

	if latin1 {
		raw := make([]byte, 0, len(s))
		for _, r := range s {
			raw = append(raw, byte(r))
		}

		return raw, false, uint32(len(raw)) //nolint: gosec
	}

	units := utf16.Encode([]rune(s))
	raw := make([]byte, len(units)*2)
	engine := endian.FormatEngine()
	for i, u := range units {
		engine.PutUint16(raw[i*2:i*2+2], u)
	}

	return raw, true, uint32(len(units)) //nolint: gosec
}

// AddFunction appends a function's metadata and bytecode and returns its
// function table index. The header's Offset and InfoOffset fields are
// computed during Finish and may be left zero.
func (b *Builder) AddFunction(header section.FunctionHeader, bytecode []byte) uint32 {
	header.BytecodeSizeInBytes = uint32(len(bytecode)) //nolint: gosec
	b.funcs = append(b.funcs, builderFunc{header: header, bytecode: bytecode})

	return uint32(len(b.funcs) - 1) //nolint: gosec
}

// SetExceptionHandlers attaches an exception handler table to function i and
// sets its hasExceptionHandler flag.
func (b *Builder) SetExceptionHandlers(i uint32, handlers []section.ExceptionHandlerEntry) error {
	if int64(i) >= int64(len(b.funcs)) {
		return fmt.Errorf("%w: function index %d, builder has %d functions",
			errs.ErrInvalidOverflowReference, i, len(b.funcs))
	}

	b.funcs[i].handlers = handlers
	b.funcs[i].header.Flags.SetHasExceptionHandler(len(handlers) > 0)

	return nil
}

// SetGlobalCodeIndex records the function table index of the top-level
// function.
func (b *Builder) SetGlobalCodeIndex(i uint32) {
	b.globalCodeIndex = i
}

// AddRegExp appends a compiled regexp program and returns its table index.
func (b *Builder) AddRegExp(program []byte) uint32 {
	entry := section.RegExpTableEntry{
		Offset: uint32(len(b.regExpStorage)), //nolint: gosec
		Length: uint32(len(program)),         //nolint: gosec
	}
	b.regExpStorage = append(b.regExpStorage, program...)
	b.regExpEntries = append(b.regExpEntries, entry)

	return uint32(len(b.regExpEntries) - 1) //nolint: gosec
}

// SetArrayBuffer sets the array literal buffer.
func (b *Builder) SetArrayBuffer(buf []byte) { b.arrayBuffer = buf }

// SetObjKeyBuffer sets the object key literal buffer.
func (b *Builder) SetObjKeyBuffer(buf []byte) { b.objKeyBuffer = buf }

// SetObjValueBuffer sets the object value literal buffer.
func (b *Builder) SetObjValueBuffer(buf []byte) { b.objValueBuffer = buf }

// SetCJSModules sets the unresolved CommonJS module table. It is mutually
// exclusive with SetResolvedCJSModules.
func (b *Builder) SetCJSModules(modules []section.CJSModuleEntry) error {
	if b.cjsModulesSet {
		return errs.ErrModulesAlreadySet
	}

	b.cjsModules = modules
	b.cjsModulesSet = true

	return nil
}

// SetResolvedCJSModules sets the resolved CommonJS module table: one
// function index per module slot. The header's cjsModuleCount is written
// negative to signal resolution. It is mutually exclusive with
// SetCJSModules.
func (b *Builder) SetResolvedCJSModules(functionIndices []uint32) error {
	if b.cjsModulesSet {
		return errs.ErrModulesAlreadySet
	}

	b.cjsModulesResolved = functionIndices
	b.cjsModulesSet = true

	return nil
}

// SetDebugInfo attaches debug information to the file.
func (b *Builder) SetDebugInfo(info *DebugInfoContent) {
	b.debugInfo = info
}

// funcLayout is the per-function placement computed by the layout pass and
// replayed verbatim by the write pass.
type funcLayout struct {
	small          section.SmallFuncHeader
	full           section.FunctionHeader
	bytecodeOffset uint32
	needLarge      bool
}

// Finish serializes the file and returns its bytes. The buffer round-trips
// through Populate with the same form.
func (b *Builder) Finish() ([]byte, error) {
	engine := endian.FormatEngine()

	if int64(len(b.funcs)) > math.MaxUint32 {
		return nil, errs.ErrTooManyFunctions
	}

	overflowCount := 0
	for _, s := range b.strings {
		if !s.entry.Fits() {
			overflowCount++
		}
	}
	if uint32(overflowCount) >= section.InvalidOffset { //nolint: gosec
		return nil, fmt.Errorf("%w: %d overflow entries exceed the 22-bit index range",
			errs.ErrStringTooLong, overflowCount)
	}

	identifierCount := 0
	for _, s := range b.strings {
		if s.entry.IsIdentifier {
			identifierCount++
		}
	}

	stringTableBytes := len(b.strings)*section.SmallStringEntrySize +
		overflowCount*section.OverflowStringEntrySize

	// Layout pass: accumulate section offsets in the fixed order, then place
	// function bytecode and the function info area after the structured
	// sections.
	cur := uint64(section.FileHeaderSize)
	cur += uint64(len(b.funcs)) * section.SmallFuncHeaderSize
	cur += uint64(stringTableBytes)
	cur += uint64(identifierCount) * section.IdentifierHashSize
	cur += uint64(len(b.stringStorage))
	cur += uint64(len(b.arrayBuffer))
	cur += uint64(len(b.objKeyBuffer))
	cur += uint64(len(b.objValueBuffer))
	cur += uint64(len(b.regExpEntries)) * section.RegExpEntrySize
	cur += uint64(len(b.regExpStorage))
	if b.cjsModulesResolved != nil {
		cur += uint64(len(b.cjsModulesResolved)) * section.CJSModuleStaticEntrySize
	} else {
		cur += uint64(len(b.cjsModules)) * section.CJSModuleEntrySize
	}

	layouts := make([]funcLayout, len(b.funcs))
	for i := range b.funcs {
		layouts[i].bytecodeOffset = uint32(cur) //nolint: gosec
		cur += uint64(len(b.funcs[i].bytecode))
	}

	for i := range b.funcs {
		fn := &b.funcs[i]
		l := &layouts[i]

		l.full = fn.header
		l.full.Offset = l.bytecodeOffset
		l.full.BytecodeSizeInBytes = uint32(len(fn.bytecode)) //nolint: gosec

		infoSize := uint64(0)
		if len(fn.handlers) > 0 {
			infoSize = section.ExceptionHandlerCountSize +
				uint64(len(fn.handlers))*section.ExceptionHandlerEntrySize
		}

		if infoSize > 0 {
			l.full.InfoOffset = uint32(cur) //nolint: gosec
		} else {
			l.full.InfoOffset = 0
		}

		l.small = section.PackFuncHeader(&l.full)
		l.needLarge = l.small.Overflowed()
		if l.needLarge {
			// The large header is stored at the start of the function's info
			// block; its extended info follows it.
			l.full.InfoOffset = uint32(cur) //nolint: gosec
			l.small = section.PackFuncHeader(&l.full)
			infoSize += section.LargeFuncHeaderSize
		}

		cur += infoSize
	}

	var debugOffset uint64
	var debugBytes []byte
	if b.debugInfo != nil {
		var err error
		debugBytes, err = encodeDebugInfo(b.debugInfo, engine)
		if err != nil {
			return nil, err
		}

		debugOffset = cur
		cur += uint64(len(debugBytes))
	}

	if cur > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d bytes", errs.ErrFileTooLarge, cur)
	}
	fileLength := uint32(cur)

	cjsCount := int32(len(b.cjsModules)) //nolint: gosec
	if b.cjsModulesResolved != nil {
		cjsCount = -int32(len(b.cjsModulesResolved)) //nolint: gosec
	}

	header := section.FileHeader{
		MagicNumber:        section.MagicForForm(b.form),
		Version:            section.Version,
		SourceHash:         b.sourceHash,
		FileLength:         fileLength,
		GlobalCodeIndex:    b.globalCodeIndex,
		FunctionCount:      uint32(len(b.funcs)),          //nolint: gosec
		StringCount:        uint32(len(b.strings)),        //nolint: gosec
		IdentifierCount:    uint32(identifierCount),       //nolint: gosec
		StringTableBytes:   uint32(stringTableBytes),      //nolint: gosec
		StringStorageSize:  uint32(len(b.stringStorage)),  //nolint: gosec
		RegExpCount:        uint32(len(b.regExpEntries)),  //nolint: gosec
		RegExpStorageSize:  uint32(len(b.regExpStorage)),  //nolint: gosec
		ArrayBufferSize:    uint32(len(b.arrayBuffer)),    //nolint: gosec
		ObjKeyBufferSize:   uint32(len(b.objKeyBuffer)),   //nolint: gosec
		ObjValueBufferSize: uint32(len(b.objValueBuffer)), //nolint: gosec
		CJSModuleCount:     cjsCount,
		DebugInfoOffset:    uint32(debugOffset), //nolint: gosec
		Options:            b.options,
	}

	// Write pass: replay the exact layout.
	buf := make([]byte, fileLength)
	off := header.WriteToSlice(buf, 0)

	for i := range layouts {
		off = layouts[i].small.WriteToSlice(buf, off, engine)
	}

	overflowIdx := uint32(0)
	var overflowEntries []section.OverflowStringTableEntry
	for _, s := range b.strings {
		small := section.PackStringEntry(s.entry, overflowIdx)
		if small.Overflowed() {
			overflowEntries = append(overflowEntries, section.OverflowStringTableEntry{
				Offset: s.entry.Offset,
				Length: s.entry.Length,
			})
			overflowIdx++
		}
		off = small.WriteToSlice(buf, off, engine)
	}

	for _, s := range b.strings {
		if s.entry.IsIdentifier {
			engine.PutUint32(buf[off:off+4], hash.Identifier(s.raw))
			off += section.IdentifierHashSize
		}
	}

	for _, e := range overflowEntries {
		off = e.WriteToSlice(buf, off, engine)
	}

	off += copy(buf[off:], b.stringStorage)
	off += copy(buf[off:], b.arrayBuffer)
	off += copy(buf[off:], b.objKeyBuffer)
	off += copy(buf[off:], b.objValueBuffer)

	for _, e := range b.regExpEntries {
		off = e.WriteToSlice(buf, off, engine)
	}
	off += copy(buf[off:], b.regExpStorage)

	if b.cjsModulesResolved != nil {
		for _, fnIdx := range b.cjsModulesResolved {
			engine.PutUint32(buf[off:off+4], fnIdx)
			off += section.CJSModuleStaticEntrySize
		}
	} else {
		for _, m := range b.cjsModules {
			off = m.WriteToSlice(buf, off, engine)
		}
	}

	for i := range b.funcs {
		off += copy(buf[off:], b.funcs[i].bytecode)
	}

	for i := range b.funcs {
		fn := &b.funcs[i]
		l := &layouts[i]

		if !l.needLarge && len(fn.handlers) == 0 {
			continue
		}

		if l.needLarge {
			off = l.full.WriteToSlice(buf, off, engine)
		}
		if len(fn.handlers) > 0 {
			table := section.EncodeExceptionHandlers(fn.handlers, engine)
			off += copy(buf[off:], table)
		}
	}

	if debugBytes != nil {
		copy(buf[debugOffset:], debugBytes)
	}

	return buf, nil
}

// encodeDebugInfo serializes the debug info sub-layout: header, filename
// table, filename storage, file regions, debug data.
func encodeDebugInfo(info *DebugInfoContent, engine endian.EndianEngine) ([]byte, error) {
	var storage []byte
	entries := make([]section.SmallStringTableEntry, len(info.Filenames))
	for i, name := range info.Filenames {
		entry := section.StringTableEntry{
			Offset: uint32(len(storage)), //nolint: gosec
			Length: uint32(len(name)),    //nolint: gosec
		}
		if !entry.Fits() {
			return nil, fmt.Errorf("%w: debug filename %d does not fit a small entry", errs.ErrFieldOverflow, i)
		}

		entries[i] = section.PackStringEntry(entry, 0)
		storage = append(storage, name...)
	}

	if int64(info.LexicalDataOffset) > int64(len(info.DebugData)) {
		return nil, fmt.Errorf("%w: lexical data offset %d exceeds debug data size %d",
			errs.ErrDebugInfoBounds, info.LexicalDataOffset, len(info.DebugData))
	}

	header := section.DebugInfoHeader{
		FilenameCount:       uint32(len(info.Filenames)),   //nolint: gosec
		FilenameStorageSize: uint32(len(storage)),          //nolint: gosec
		FileRegionCount:     uint32(len(info.FileRegions)), //nolint: gosec
		LexicalDataOffset:   info.LexicalDataOffset,
		DebugDataSize:       uint32(len(info.DebugData)), //nolint: gosec
	}

	size := section.DebugInfoHeaderSize +
		len(entries)*section.SmallStringEntrySize +
		len(storage) +
		len(info.FileRegions)*section.DebugFileRegionSize +
		len(info.DebugData)

	buf := make([]byte, size)
	off := header.WriteToSlice(buf, 0, engine)
	for _, e := range entries {
		off = e.WriteToSlice(buf, off, engine)
	}
	off += copy(buf[off:], storage)
	for _, r := range info.FileRegions {
		off = r.WriteToSlice(buf, off, engine)
	}
	copy(buf[off:], info.DebugData)

	return buf, nil
}
