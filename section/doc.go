// Package section defines the low-level binary structures and constants of
// the bytecode container format.
//
// This package provides the foundational types that define the physical
// layout of a bytecode file. It handles binary serialization and
// deserialization of the file header, the packed per-function headers, the
// two-tier string table entries, and the auxiliary tables, ensuring a
// consistent byte-level representation independent of the host platform.
//
// # Overview
//
// The section package defines three main categories of types:
//
//  1. Headers: fixed-size file metadata (FileHeader, DebugInfoHeader)
//  2. Packed entries: bit-packed per-item descriptors with overflow escapes
//     (SmallFuncHeader, SmallStringTableEntry)
//  3. Plain entries: fixed-size full-width descriptors (FunctionHeader,
//     OverflowStringTableEntry, RegExpTableEntry, CJSModuleEntry,
//     ExceptionHandlerEntry, DebugFileRegion)
//
// # File Structure
//
// A bytecode file consists of a fixed header followed by a fixed order of
// sections; every boundary is derived from header counts and sizes:
//
//	┌─────────────────────────────────────────────────────────┐
//	│ FileHeader (96 bytes, fixed)                            │
//	├─────────────────────────────────────────────────────────┤
//	│ Function headers (functionCount × 16 bytes)             │
//	├─────────────────────────────────────────────────────────┤
//	│ String table small entries (stringCount × 4 bytes)      │
//	├─────────────────────────────────────────────────────────┤
//	│ Identifier hashes (identifierCount × 4 bytes)           │
//	├─────────────────────────────────────────────────────────┤
//	│ String overflow entries (implicit count × 8 bytes)      │
//	├─────────────────────────────────────────────────────────┤
//	│ String storage (stringStorageSize bytes)                │
//	├─────────────────────────────────────────────────────────┤
//	│ Array literal buffer (arrayBufferSize bytes)            │
//	├─────────────────────────────────────────────────────────┤
//	│ Object key buffer (objKeyBufferSize bytes)              │
//	├─────────────────────────────────────────────────────────┤
//	│ Object value buffer (objValueBufferSize bytes)          │
//	├─────────────────────────────────────────────────────────┤
//	│ RegExp table (regExpCount × 8 bytes)                    │
//	├─────────────────────────────────────────────────────────┤
//	│ RegExp storage (regExpStorageSize bytes)                │
//	├─────────────────────────────────────────────────────────┤
//	│ CJS module table (|cjsModuleCount| entries)             │
//	├─────────────────────────────────────────────────────────┤
//	│ Function info area (large headers, handler tables, ...) │
//	├─────────────────────────────────────────────────────────┤
//	│ Debug info (at debugInfoOffset, absolute; optional)     │
//	└─────────────────────────────────────────────────────────┘
//
// # File Header Format
//
// FileHeader (96 bytes, a multiple of 32 so function headers stay cache
// friendly):
//
//	Bytes  | Field              | Type     | Description
//	-------|--------------------|----------|----------------------------------
//	0-7    | MagicNumber        | uint64   | Magic (execution) or DeltaMagic
//	8-11   | Version            | uint32   | Must equal Version exactly
//	12-31  | SourceHash         | [20]byte | SHA-1 of the original source
//	32-35  | FileLength         | uint32   | Must equal the buffer length
//	36-39  | GlobalCodeIndex    | uint32   | Index of the top-level function
//	40-43  | FunctionCount      | uint32   | Function header table entries
//	44-47  | StringCount        | uint32   | String table entries
//	48-51  | IdentifierCount    | uint32   | Strings which are identifiers
//	52-55  | StringTableBytes   | uint32   | Table bytes incl. overflow
//	56-59  | StringStorageSize  | uint32   | String contents blob bytes
//	60-63  | RegExpCount        | uint32   | RegExp table entries
//	64-67  | RegExpStorageSize  | uint32   | Compiled regexp blob bytes
//	68-71  | ArrayBufferSize    | uint32   | Array literal buffer bytes
//	72-75  | ObjKeyBufferSize   | uint32   | Object key buffer bytes
//	76-79  | ObjValueBufferSize | uint32   | Object value buffer bytes
//	80-83  | CJSModuleCount     | int32    | Negative = already resolved
//	84-87  | DebugInfoOffset    | uint32   | Absolute; 0 = no debug info
//	88     | Options            | uint8    | BytecodeOptions byte
//	89-95  | padding            | [7]byte  | Zero
//
// # Packed Function Header
//
// SmallFuncHeader packs the canonical function header field list into four
// 32-bit words with the flag byte in the top bits of the last word:
//
//	Word | Bits  | Field
//	-----|-------|---------------------------
//	0    | 0-24  | offset (25)
//	0    | 25-31 | paramCount (7)
//	1    | 0-14  | bytecodeSizeInBytes (15)
//	1    | 15-31 | functionName (17)
//	2    | 0-24  | infoOffset (25)
//	2    | 25-31 | frameSize (7)
//	3    | 0-7   | environmentSize (8)
//	3    | 8-15  | highestReadCacheIndex (8)
//	3    | 16-23 | highestWriteCacheIndex (8)
//	3    | 24-31 | flags (8)
//
// When any field exceeds its width the entry degrades to an overflow
// reference: the overflowed flag is set and the offset/infoOffset fields
// jointly hold a 32-bit offset to a full 32-byte FunctionHeader in the
// function info area. Only the flags and that offset are meaningful then.
//
// # Two-Tier String Table
//
// SmallStringTableEntry packs isUTF16 (1 bit), isIdentifier (1 bit), offset
// (22 bits) and length (8 bits) into one word. The length sentinel
// InvalidLength marks an overflowed entry whose offset field indexes the
// OverflowStringTableEntry array instead. Identifier entries additionally
// carry a precomputed 32-bit hash in a parallel array indexed by identifier
// position.
//
// # Byte Order
//
// The format is fixed little-endian. Entry codecs accept an EndianEngine
// parameter for tooling, but files are always written and validated with
// endian.FormatEngine().
//
// # Thread Safety
//
// All types in this package are plain value types; distinct values are safe
// for concurrent use.
//
// # Integration with Other Packages
//
// The section package is used by the bundle package, which validates whole
// buffers and exposes zero-copy views over each section. Most users should
// interact with bundle instead of using section directly; use this package
// when implementing tooling that needs byte-level control.
package section
