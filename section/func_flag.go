package section

// Masks for the FunctionHeaderFlag byte.
const (
	FlagStrictMode          = 0x01 // bit 0: function body is strict mode
	FlagHasExceptionHandler = 0x02 // bit 1: function has an exception handler table
	FlagHasDebugInfo        = 0x04 // bit 2: function has debug info
	FlagOverflowed          = 0x08 // bit 3: compact header escaped to a large header
)

// FunctionHeaderFlag is the per-function flag byte shared by the compact and
// the large function header encodings. It is stored as a single byte with
// named accessors, never as overlapping struct storage, so it stays
// bulk-comparable and serializable as one value.
type FunctionHeaderFlag uint8

// StrictMode returns whether the function body is strict mode code.
func (f FunctionHeaderFlag) StrictMode() bool {
	return (f & FlagStrictMode) != 0
}

// SetStrictMode sets or clears the strict mode flag.
func (f *FunctionHeaderFlag) SetStrictMode(enabled bool) {
	if enabled {
		*f |= FlagStrictMode
	} else {
		*f &^= FlagStrictMode
	}
}

// HasExceptionHandler returns whether the function carries an exception
// handler table in its info area.
func (f FunctionHeaderFlag) HasExceptionHandler() bool {
	return (f & FlagHasExceptionHandler) != 0
}

// SetHasExceptionHandler sets or clears the exception handler flag.
func (f *FunctionHeaderFlag) SetHasExceptionHandler(enabled bool) {
	if enabled {
		*f |= FlagHasExceptionHandler
	} else {
		*f &^= FlagHasExceptionHandler
	}
}

// HasDebugInfo returns whether the function has debug info offsets.
func (f FunctionHeaderFlag) HasDebugInfo() bool {
	return (f & FlagHasDebugInfo) != 0
}

// SetHasDebugInfo sets or clears the debug info flag.
func (f *FunctionHeaderFlag) SetHasDebugInfo(enabled bool) {
	if enabled {
		*f |= FlagHasDebugInfo
	} else {
		*f &^= FlagHasDebugInfo
	}
}

// Overflowed returns whether the compact header escaped to a large header.
// When set, only the flags and the large header offset are meaningful; all
// other packed fields are undefined and must not be read.
func (f FunctionHeaderFlag) Overflowed() bool {
	return (f & FlagOverflowed) != 0
}

// SetOverflowed sets or clears the overflowed flag.
func (f *FunctionHeaderFlag) SetOverflowed(enabled bool) {
	if enabled {
		*f |= FlagOverflowed
	} else {
		*f &^= FlagOverflowed
	}
}
