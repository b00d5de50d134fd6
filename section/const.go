package section

// Magic numbers identifying the two bytecode forms. The delta magic is the
// bitwise complement of the execution magic, so a corrupted or truncated
// header cannot accidentally match the other form.
const (
	// Magic marks a file in execution form.
	Magic uint64 = 0x1F1903C103BC1FC6
	// DeltaMagic marks a file laid out for minimal binary diffs.
	DeltaMagic uint64 = ^Magic
)

// Version is the bytecode version this implementation reads and writes.
// There is no cross-version compatibility: any mismatch, older or newer, is
// rejected so bytecode from a different compiler build is never silently
// misinterpreted.
const Version uint32 = 41

// SourceHashSize is the size of the SHA-1 hash of the original source.
const SourceHashSize = 20

// Fixed sizes of the on-disk structures in bytes.
const (
	// FileHeaderSize is the fixed file header size. It is kept a multiple of
	// 32 so the function headers that follow rarely cross cache lines.
	FileHeaderSize = 96

	SmallFuncHeaderSize       = 16 // packed four-word function header
	LargeFuncHeaderSize       = 32 // full function header in the overflow area
	SmallStringEntrySize      = 4  // packed string table entry
	OverflowStringEntrySize   = 8  // full-width string table entry
	IdentifierHashSize        = 4  // precomputed identifier hash
	RegExpEntrySize           = 8  // compiled regexp table entry
	CJSModuleEntrySize        = 8  // unresolved (moduleID, functionIndex) pair
	CJSModuleStaticEntrySize  = 4  // resolved module function index
	ExceptionHandlerEntrySize = 12 // (start, end, target) triple
	ExceptionHandlerCountSize = 4  // count prefix of a handler table
	DebugInfoHeaderSize       = 20 // debug info sub-layout header
	DebugFileRegionSize       = 12 // (fromAddress, filenameId, sourceMappingUrlId)
)

// Sentinels of the two-tier string table encoding. An entry whose offset or
// length does not fit the packed widths is escaped to the overflow table.
const (
	// InvalidOffset is the first offset value that does not fit the packed
	// 22-bit offset field.
	InvalidOffset uint32 = 1 << 22
	// InvalidLength marks an overflowed entry: the packed length field holds
	// this sentinel and the offset field indexes the overflow table instead.
	InvalidLength uint32 = 1<<8 - 1
)

// PropertyCachingDisabled is the inline cache index meaning no caching.
const PropertyCachingDisabled uint8 = 0

// Bit masks for the packed string table entry word.
const (
	stringEntryUTF16Mask      = 0x00000001 // bit 0
	stringEntryIdentifierMask = 0x00000002 // bit 1
	stringEntryOffsetShift    = 2          // bits 2-23
	stringEntryOffsetMask     = 0x3FFFFF   // 22 bits
	stringEntryLengthShift    = 24         // bits 24-31
	stringEntryLengthMask     = 0xFF       // 8 bits
)
