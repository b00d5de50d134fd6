package bundle

import (
	"testing"

	"github.com/arloliu/hbcfile/endian"
	"github.com/arloliu/hbcfile/errs"
	"github.com/arloliu/hbcfile/format"
	"github.com/arloliu/hbcfile/section"
	"github.com/stretchr/testify/require"
)

// buildSampleFile produces a minimal valid file: one string "hello" and no
// other content. Its section layout is small enough to corrupt byte by byte.
func buildSampleFile(t *testing.T) []byte {
	t.Helper()

	b, err := NewBuilder()
	require.NoError(t, err)
	b.AddString("hello", false)

	buf, err := b.Finish()
	require.NoError(t, err)

	return buf
}

func TestPopulate_Valid(t *testing.T) {
	buf := buildSampleFile(t)

	fields, err := Populate(buf, format.Execution)
	require.NoError(t, err)

	require.Equal(t, uint32(1), fields.Header().StringCount)
	data, err := fields.StringData(0)
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), data)
}

func TestPopulate_BufferShorterThanHeader(t *testing.T) {
	_, err := Populate(make([]byte, section.FileHeaderSize-1), format.Execution)
	require.ErrorIs(t, err, errs.ErrInvalidHeaderSize)
}

func TestPopulate_CorruptedMagic(t *testing.T) {
	buf := buildSampleFile(t)
	buf[0] ^= 0x01

	// Magic is checked before everything else, so a flipped bit must surface
	// as a magic mismatch and nothing later.
	_, err := Populate(buf, format.Execution)
	require.ErrorIs(t, err, errs.ErrMagicMismatch)
	require.NotErrorIs(t, err, errs.ErrVersionMismatch)
}

func TestPopulate_CorruptedVersion(t *testing.T) {
	buf := buildSampleFile(t)
	buf[8] ^= 0x01

	_, err := Populate(buf, format.Execution)
	require.ErrorIs(t, err, errs.ErrVersionMismatch)
}

func TestPopulate_FileLengthMismatch(t *testing.T) {
	buf := buildSampleFile(t)

	_, err := Populate(buf[:len(buf)-1], format.Execution)
	require.ErrorIs(t, err, errs.ErrFileLengthMismatch)
}

func TestPopulate_TruncatedSection(t *testing.T) {
	buf := buildSampleFile(t)

	// Drop the last byte of string storage and patch the declared file length
	// so the header itself stays consistent. The failure must name the
	// truncated section.
	truncated := make([]byte, len(buf)-1)
	copy(truncated, buf)
	endian.FormatEngine().PutUint32(truncated[32:36], uint32(len(truncated)))

	_, err := Populate(truncated, format.Execution)
	require.ErrorIs(t, err, errs.ErrTruncatedBuffer)
	require.ErrorContains(t, err, "string storage")
}

func TestPopulate_InflatedFunctionCount(t *testing.T) {
	buf := buildSampleFile(t)
	endian.FormatEngine().PutUint32(buf[40:44], 1)

	_, err := Populate(buf, format.Execution)
	require.ErrorIs(t, err, errs.ErrTruncatedBuffer)
	require.ErrorContains(t, err, "function headers")
}

func TestPopulate_StringTableBytesTooSmall(t *testing.T) {
	buf := buildSampleFile(t)
	// One small entry needs 4 bytes; declaring 0 makes the overflow region
	// negative.
	endian.FormatEngine().PutUint32(buf[52:56], 0)

	_, err := Populate(buf, format.Execution)
	require.ErrorIs(t, err, errs.ErrSectionOverflow)
}

func TestPopulate_MisalignedOverflowRegion(t *testing.T) {
	buf := buildSampleFile(t)
	// 4 bytes of small entries plus 4 leftover bytes is not a whole number of
	// 8-byte overflow entries.
	endian.FormatEngine().PutUint32(buf[52:56], section.SmallStringEntrySize+4)

	_, err := Populate(buf, format.Execution)
	require.ErrorIs(t, err, errs.ErrSectionOverflow)
}

func TestPopulate_BadDebugInfoOffset(t *testing.T) {
	t.Run("past the end", func(t *testing.T) {
		buf := buildSampleFile(t)
		endian.FormatEngine().PutUint32(buf[84:88], uint32(len(buf)+1))

		_, err := Populate(buf, format.Execution)
		require.ErrorIs(t, err, errs.ErrTruncatedBuffer)
		require.ErrorContains(t, err, "debug info")
	})

	t.Run("inside the file header", func(t *testing.T) {
		buf := buildSampleFile(t)
		endian.FormatEngine().PutUint32(buf[84:88], 5)

		_, err := Populate(buf, format.Execution)
		require.ErrorIs(t, err, errs.ErrTruncatedBuffer)
	})
}

func TestPopulate_Idempotent(t *testing.T) {
	buf := buildSampleFile(t)

	first, err := Populate(buf, format.Execution)
	require.NoError(t, err)
	second, err := Populate(buf, format.Execution)
	require.NoError(t, err)

	require.Equal(t, first.Header(), second.Header())
	require.Equal(t, first.StringStorage(), second.StringStorage())
	require.Equal(t, first.StringTableEntries().Len(), second.StringTableEntries().Len())

	// Views alias the same buffer rather than copying it.
	require.Same(t, &buf[0], &first.data[0])
	require.Same(t, &buf[0], &second.data[0])
}

func TestFields_OutOfRangeLookups(t *testing.T) {
	buf := buildSampleFile(t)
	fields, err := Populate(buf, format.Execution)
	require.NoError(t, err)

	_, err = fields.FunctionHeader(0)
	require.ErrorIs(t, err, errs.ErrInvalidOverflowReference)

	_, err = fields.StringTableEntry(1)
	require.ErrorIs(t, err, errs.ErrInvalidOverflowReference)

	_, err = fields.StringTableEntry(-1)
	require.ErrorIs(t, err, errs.ErrInvalidOverflowReference)

	_, err = fields.RegExpData(0)
	require.ErrorIs(t, err, errs.ErrInvalidOverflowReference)

	_, err = fields.FunctionExceptionHandlers(3)
	require.ErrorIs(t, err, errs.ErrInvalidOverflowReference)
}
