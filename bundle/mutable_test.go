package bundle

import (
	"testing"

	"github.com/arloliu/hbcfile/errs"
	"github.com/arloliu/hbcfile/format"
	"github.com/arloliu/hbcfile/section"
	"github.com/stretchr/testify/require"
)

func buildMutableSample(t *testing.T) []byte {
	t.Helper()

	b, err := NewBuilder()
	require.NoError(t, err)

	name := b.AddString("main", true)
	header := section.FunctionHeader{ParamCount: 1, FunctionName: name, Flags: debugFlag()}
	b.AddFunction(header, []byte{0x01, 0x02})

	// Second function overflows its compact entry so the flag byte exists in
	// two places.
	wide := section.FunctionHeader{ParamCount: 130, FunctionName: name, Flags: debugFlag()}
	b.AddFunction(wide, []byte{0x03})

	b.SetDebugInfo(&DebugInfoContent{
		Filenames: []string{"main.js"},
		DebugData: []byte{0x01},
	})

	buf, err := b.Finish()
	require.NoError(t, err)

	return buf
}

func TestMutableFields_SetFunctionFlags(t *testing.T) {
	buf := buildMutableSample(t)
	m, err := PopulateMutable(buf, format.Execution)
	require.NoError(t, err)

	var flags section.FunctionHeaderFlag
	flags.SetStrictMode(true)
	require.NoError(t, m.SetFunctionFlags(0, flags))

	// The write is visible through a fresh immutable population of the buffer.
	fields, err := Populate(buf, format.Execution)
	require.NoError(t, err)

	full, err := fields.FunctionHeader(0)
	require.NoError(t, err)
	require.True(t, full.Flags.StrictMode())
	require.False(t, full.Flags.HasDebugInfo())
	require.Equal(t, uint32(1), full.ParamCount)
}

func TestMutableFields_SetFunctionFlagsOverflowed(t *testing.T) {
	buf := buildMutableSample(t)
	m, err := PopulateMutable(buf, format.Execution)
	require.NoError(t, err)

	small := m.FunctionHeaders().At(1)
	require.True(t, small.Overflowed())

	var flags section.FunctionHeaderFlag
	flags.SetStrictMode(true)
	require.NoError(t, m.SetFunctionFlags(1, flags))

	// The overflowed bit is layout state and must survive the rewrite.
	small = m.FunctionHeaders().At(1)
	require.True(t, small.Overflowed())
	require.True(t, small.Flags().StrictMode())

	// The large header's copy of the flag byte is kept in sync.
	full, err := m.FunctionHeader(1)
	require.NoError(t, err)
	require.True(t, full.Flags.StrictMode())
	require.False(t, full.Flags.Overflowed())
	require.Equal(t, uint32(130), full.ParamCount)
}

func TestMutableFields_SetFunctionHeader(t *testing.T) {
	buf := buildMutableSample(t)
	m, err := PopulateMutable(buf, format.Execution)
	require.NoError(t, err)

	full, err := m.FunctionHeader(0)
	require.NoError(t, err)
	full.FrameSize = 9

	require.NoError(t, m.SetFunctionHeader(0, section.PackFuncHeader(&full)))

	updated, err := m.FunctionHeader(0)
	require.NoError(t, err)
	require.Equal(t, uint32(9), updated.FrameSize)

	require.ErrorIs(t, m.SetFunctionHeader(5, section.SmallFuncHeader{}), errs.ErrInvalidOverflowReference)
	require.ErrorIs(t, m.SetFunctionFlags(-1, 0), errs.ErrInvalidOverflowReference)
}

func TestMutableFields_SetSourceHashAndOptions(t *testing.T) {
	buf := buildMutableSample(t)
	m, err := PopulateMutable(buf, format.Execution)
	require.NoError(t, err)

	var h [section.SourceHashSize]byte
	copy(h[:], "ffffffffffffffffffff")
	m.SetSourceHash(h)

	var opts section.BytecodeOptions
	opts.WithStaticBuiltins()
	m.SetOptions(opts)

	require.Equal(t, h, m.Header().SourceHash)
	require.True(t, m.Header().Options.HasStaticBuiltins())

	fields, err := Populate(buf, format.Execution)
	require.NoError(t, err)
	require.Equal(t, h, fields.Header().SourceHash)
	require.True(t, fields.Header().Options.HasStaticBuiltins())
}

func TestMutableFields_StripDebugInfo(t *testing.T) {
	buf := buildMutableSample(t)
	m, err := PopulateMutable(buf, format.Execution)
	require.NoError(t, err)
	require.NotZero(t, m.Header().DebugInfoOffset)

	require.NoError(t, m.StripDebugInfo())
	require.Zero(t, m.Header().DebugInfoOffset)

	fields, err := Populate(buf, format.Execution)
	require.NoError(t, err)

	header := fields.Header()
	require.Zero(t, header.DebugInfoOffset)
	_, err = ReadDebugInfo(buf, &header)
	require.ErrorIs(t, err, errs.ErrDebugInfoBounds)

	// Every function's debug flag is cleared, including the overflowed one.
	for i := 0; i < fields.FunctionHeaders().Len(); i++ {
		full, err := fields.FunctionHeader(i)
		require.NoError(t, err)
		require.False(t, full.Flags.HasDebugInfo(), "function %d", i)
	}
}
