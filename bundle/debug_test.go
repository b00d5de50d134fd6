package bundle

import (
	"testing"

	"github.com/arloliu/hbcfile/endian"
	"github.com/arloliu/hbcfile/errs"
	"github.com/arloliu/hbcfile/format"
	"github.com/arloliu/hbcfile/section"
	"github.com/stretchr/testify/require"
)

func buildDebugSample(t *testing.T) ([]byte, section.FileHeader) {
	t.Helper()

	b, err := NewBuilder()
	require.NoError(t, err)
	b.SetDebugInfo(&DebugInfoContent{
		Filenames:         []string{"app.js"},
		FileRegions:       []section.DebugFileRegion{{FromAddress: 0, FilenameID: 0}},
		DebugData:         []byte{0x10, 0x20, 0x30},
		LexicalDataOffset: 1,
	})

	buf, err := b.Finish()
	require.NoError(t, err)

	fields, err := Populate(buf, format.Execution)
	require.NoError(t, err)

	return buf, fields.Header()
}

func TestReadDebugInfo_NoDebugInfo(t *testing.T) {
	buf := buildSampleFile(t)
	fields, err := Populate(buf, format.Execution)
	require.NoError(t, err)

	header := fields.Header()
	_, err = ReadDebugInfo(buf, &header)
	require.ErrorIs(t, err, errs.ErrDebugInfoBounds)
}

func TestReadDebugInfo_HeaderPastEnd(t *testing.T) {
	buf, header := buildDebugSample(t)
	header.DebugInfoOffset = uint32(len(buf)) - section.DebugInfoHeaderSize + 1

	_, err := ReadDebugInfo(buf, &header)
	require.ErrorIs(t, err, errs.ErrDebugInfoBounds)
}

func TestReadDebugInfo_InflatedCounts(t *testing.T) {
	buf, header := buildDebugSample(t)
	engine := endian.FormatEngine()

	t.Run("filename count", func(t *testing.T) {
		corrupt := make([]byte, len(buf))
		copy(corrupt, buf)
		engine.PutUint32(corrupt[header.DebugInfoOffset:header.DebugInfoOffset+4], 1000)

		_, err := ReadDebugInfo(corrupt, &header)
		require.ErrorIs(t, err, errs.ErrDebugInfoBounds)
	})

	t.Run("debug data size", func(t *testing.T) {
		corrupt := make([]byte, len(buf))
		copy(corrupt, buf)
		engine.PutUint32(corrupt[header.DebugInfoOffset+16:header.DebugInfoOffset+20], 1000)

		_, err := ReadDebugInfo(corrupt, &header)
		require.ErrorIs(t, err, errs.ErrDebugInfoBounds)
	})

	t.Run("lexical offset past debug data", func(t *testing.T) {
		corrupt := make([]byte, len(buf))
		copy(corrupt, buf)
		engine.PutUint32(corrupt[header.DebugInfoOffset+12:header.DebugInfoOffset+16], 4)

		_, err := ReadDebugInfo(corrupt, &header)
		require.ErrorIs(t, err, errs.ErrDebugInfoBounds)
	})
}

func TestDebugInfo_Filename(t *testing.T) {
	buf, header := buildDebugSample(t)
	info, err := ReadDebugInfo(buf, &header)
	require.NoError(t, err)

	name, err := info.Filename(0)
	require.NoError(t, err)
	require.Equal(t, "app.js", name)

	_, err = info.Filename(1)
	require.ErrorIs(t, err, errs.ErrDebugInfoBounds)
	_, err = info.Filename(-1)
	require.ErrorIs(t, err, errs.ErrDebugInfoBounds)
}

func TestDebugInfo_LexicalData(t *testing.T) {
	buf, header := buildDebugSample(t)
	info, err := ReadDebugInfo(buf, &header)
	require.NoError(t, err)

	require.Equal(t, []byte{0x10, 0x20, 0x30}, info.DebugData())
	require.Equal(t, []byte{0x20, 0x30}, info.LexicalData())
	require.Equal(t, uint32(1), info.Header().LexicalDataOffset)
}
