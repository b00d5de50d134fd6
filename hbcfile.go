// Package hbcfile implements a compact, versioned binary container for
// precompiled script bytecode and the ancillary data a virtual machine needs
// to execute it without re-parsing source: function metadata, a deduplicated
// string table, literal buffers, compiled regexp programs, module tables,
// and optional debug information.
//
// # Core Features
//
//   - Zero-copy population: a raw buffer is mapped to typed, bounds-checked
//     views over every section, with no allocation proportional to file size
//   - Packed per-function headers (16 bytes) with automatic escape to
//     full-width headers when a field exceeds its bit width
//   - Two-tier string table: 4-byte packed entries with an overflow table
//     for long or far strings, plus precomputed identifier hashes
//   - Two binary forms distinguished by complementary magic numbers:
//     execution form for running, delta form for minimal binary diffs
//   - Full validation of untrusted buffers: every section boundary is
//     checked before any view is exposed
//
// # Reading a bytecode file
//
//	fields, err := hbcfile.Populate(data, format.Execution)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	global, err := fields.FunctionHeader(int(fields.Header().GlobalCodeIndex))
//	name, err := fields.StringData(int(global.FunctionName))
//
// # Producing a bytecode file
//
//	builder, _ := bundle.NewBuilder(
//	    bundle.WithSourceHash(hbcfile.SourceHash(src)),
//	)
//	nameIdx := builder.AddString("global", true)
//	builder.AddFunction(section.FunctionHeader{
//	    FunctionName: nameIdx,
//	    ParamCount:   1,
//	}, bytecode)
//	data, err := builder.Finish()
//
// # Package Layout
//
//   - section: binary structures and entry codecs of the format
//   - bundle: buffer population, views, debug info, and the builder
//   - endian: byte order engine (the format is fixed little-endian)
//   - errs: sentinel errors
//   - format: the Execution/Delta form enum
//
// The hbcfile package itself re-exports the common entry points so most
// callers only import it together with format.
package hbcfile

import (
	"crypto/sha1" //nolint: gosec

	"github.com/arloliu/hbcfile/bundle"
	"github.com/arloliu/hbcfile/format"
	"github.com/arloliu/hbcfile/internal/hash"
	"github.com/arloliu/hbcfile/section"
)

// Populate maps a raw bytecode buffer to an immutable set of typed,
// bounds-checked section views. See bundle.Populate.
func Populate(data []byte, form format.Form) (*bundle.Fields, error) {
	return bundle.Populate(data, form)
}

// PopulateMutable is Populate for tooling that patches buffers in place.
// See bundle.PopulateMutable.
func PopulateMutable(data []byte, form format.Form) (*bundle.MutableFields, error) {
	return bundle.PopulateMutable(data, form)
}

// ReadDebugInfo lazily reads the debug info sub-layout of a populated file.
// See bundle.ReadDebugInfo.
func ReadDebugInfo(data []byte, header *section.FileHeader) (*bundle.DebugInfo, error) {
	return bundle.ReadDebugInfo(data, header)
}

// NewBuilder creates a builder that assembles and serializes a bytecode
// file. See bundle.NewBuilder.
func NewBuilder(opts ...bundle.BuilderOption) (*bundle.Builder, error) {
	return bundle.NewBuilder(opts...)
}

// SourceHash computes the 20-byte hash of an original source, as stored in
// the file header. The format defines it as SHA-1; it identifies the source,
// it is not a security boundary.
func SourceHash(src []byte) [section.SourceHashSize]byte {
	return sha1.Sum(src) //nolint: gosec
}

// IdentifierHash computes the 32-bit precomputed hash stored for identifier
// strings.
func IdentifierHash(data []byte) uint32 {
	return hash.Identifier(data)
}
