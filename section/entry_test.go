package section

import (
	"testing"

	"github.com/arloliu/hbcfile/endian"
	"github.com/arloliu/hbcfile/errs"
	"github.com/stretchr/testify/require"
)

func TestRegExpEntry_Serialize(t *testing.T) {
	engine := endian.FormatEngine()
	entry := RegExpTableEntry{Offset: 128, Length: 77}

	data := entry.Bytes(engine)
	require.Len(t, data, RegExpEntrySize)

	parsed, err := ParseRegExpEntry(data, engine)
	require.NoError(t, err)
	require.Equal(t, entry, parsed)

	_, err = ParseRegExpEntry(data[:RegExpEntrySize-1], engine)
	require.ErrorIs(t, err, errs.ErrInvalidEntrySize)
}

func TestCJSModuleEntry_Serialize(t *testing.T) {
	engine := endian.FormatEngine()
	entry := CJSModuleEntry{ModuleID: 9, FunctionIndex: 3}

	data := entry.Bytes(engine)
	require.Len(t, data, CJSModuleEntrySize)

	parsed, err := ParseCJSModuleEntry(data, engine)
	require.NoError(t, err)
	require.Equal(t, entry, parsed)

	_, err = ParseCJSModuleEntry(data[:CJSModuleEntrySize-1], engine)
	require.ErrorIs(t, err, errs.ErrInvalidEntrySize)
}

func TestDebugInfoHeader_Serialize(t *testing.T) {
	engine := endian.FormatEngine()
	header := DebugInfoHeader{
		FilenameCount:       2,
		FilenameStorageSize: 30,
		FileRegionCount:     1,
		LexicalDataOffset:   8,
		DebugDataSize:       64,
	}

	data := header.Bytes(engine)
	require.Len(t, data, DebugInfoHeaderSize)

	parsed, err := ParseDebugInfoHeader(data, engine)
	require.NoError(t, err)
	require.Equal(t, header, parsed)

	_, err = ParseDebugInfoHeader(data[:DebugInfoHeaderSize-1], engine)
	require.ErrorIs(t, err, errs.ErrInvalidEntrySize)
}

func TestDebugFileRegion_Serialize(t *testing.T) {
	engine := endian.FormatEngine()
	region := DebugFileRegion{FromAddress: 96, FilenameID: 1, SourceMappingURLID: 0}

	data := region.Bytes(engine)
	require.Len(t, data, DebugFileRegionSize)

	parsed, err := ParseDebugFileRegion(data, engine)
	require.NoError(t, err)
	require.Equal(t, region, parsed)

	_, err = ParseDebugFileRegion(data[:DebugFileRegionSize-1], engine)
	require.ErrorIs(t, err, errs.ErrInvalidEntrySize)
}
