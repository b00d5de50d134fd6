package section

import (
	"testing"

	"github.com/arloliu/hbcfile/endian"
	"github.com/arloliu/hbcfile/errs"
	"github.com/stretchr/testify/require"
)

func TestExceptionHandlers_RoundTrip(t *testing.T) {
	engine := endian.FormatEngine()
	entries := []ExceptionHandlerEntry{
		{Start: 0, End: 24, Target: 30},
		{Start: 4, End: 12, Target: 18},
	}

	data := EncodeExceptionHandlers(entries, engine)
	require.Len(t, data, ExceptionHandlerCountSize+2*ExceptionHandlerEntrySize)

	parsed, consumed, err := ParseExceptionHandlers(data, engine)
	require.NoError(t, err)
	require.Equal(t, len(data), consumed)
	require.Equal(t, entries, parsed)
}

func TestExceptionHandlers_EmptyTable(t *testing.T) {
	engine := endian.FormatEngine()

	data := EncodeExceptionHandlers(nil, engine)
	require.Len(t, data, ExceptionHandlerCountSize)

	parsed, consumed, err := ParseExceptionHandlers(data, engine)
	require.NoError(t, err)
	require.Equal(t, ExceptionHandlerCountSize, consumed)
	require.Nil(t, parsed)
}

func TestExceptionHandlers_TrailingDataIgnored(t *testing.T) {
	engine := endian.FormatEngine()
	entries := []ExceptionHandlerEntry{{Start: 1, End: 2, Target: 3}}

	data := EncodeExceptionHandlers(entries, engine)
	data = append(data, 0xAA, 0xBB, 0xCC)

	parsed, consumed, err := ParseExceptionHandlers(data, engine)
	require.NoError(t, err)
	require.Equal(t, ExceptionHandlerCountSize+ExceptionHandlerEntrySize, consumed)
	require.Equal(t, entries, parsed)
}

func TestExceptionHandlers_Truncated(t *testing.T) {
	engine := endian.FormatEngine()
	entries := []ExceptionHandlerEntry{{Start: 1, End: 2, Target: 3}}
	data := EncodeExceptionHandlers(entries, engine)

	t.Run("short count", func(t *testing.T) {
		_, _, err := ParseExceptionHandlers(data[:ExceptionHandlerCountSize-1], engine)
		require.ErrorIs(t, err, errs.ErrInvalidEntrySize)
	})

	t.Run("short entries", func(t *testing.T) {
		_, _, err := ParseExceptionHandlers(data[:len(data)-1], engine)
		require.ErrorIs(t, err, errs.ErrInvalidEntrySize)
	})

	t.Run("huge declared count", func(t *testing.T) {
		corrupt := make([]byte, len(data))
		copy(corrupt, data)
		engine.PutUint32(corrupt[0:4], 0xFFFFFFFF)

		_, _, err := ParseExceptionHandlers(corrupt, engine)
		require.ErrorIs(t, err, errs.ErrInvalidEntrySize)
	})
}

func TestExceptionHandlerEntry_Serialize(t *testing.T) {
	engine := endian.FormatEngine()
	entry := ExceptionHandlerEntry{Start: 10, End: 20, Target: 25}

	buf := make([]byte, ExceptionHandlerEntrySize)
	next := entry.WriteToSlice(buf, 0, engine)
	require.Equal(t, ExceptionHandlerEntrySize, next)
	require.Equal(t, entry.Bytes(engine), buf)
}
