// Package bundle maps raw bytecode buffers to validated, typed views and
// assembles new bytecode files.
//
// # Populating
//
// Populate is the composition root of the read path: given a caller-owned
// byte buffer and the expected bytecode form, it validates the fixed file
// header, derives every section boundary from the header's counts and sizes
// in the format's fixed order, checks each boundary against the buffer, and
// returns a Fields whose views alias the buffer with zero copying:
//
//	fields, err := bundle.Populate(data, format.Execution)
//	if err != nil {
//	    return err
//	}
//	hdr, err := fields.FunctionHeader(int(fields.Header().GlobalCodeIndex))
//
// Population either succeeds completely or fails with a structured error
// naming the offending section and the expected vs. actual extent; no
// partial view set is ever returned.
//
// # Ownership and concurrency
//
// All views are non-owning. The buffer must stay alive and unmodified while
// any view derived from it is in use. An immutable Fields is safe for
// unsynchronized concurrent reads. The MutableFields variant, used by
// tooling that patches files in place, must never be shared across
// goroutines without external locking, and a buffer must not be behind both
// a Fields and a MutableFields at once.
//
// # Building
//
// Builder is the write path: it accumulates functions, strings, regexps,
// literal buffers, module tables and optional debug info from a compiler,
// then serializes the container layout in one pass. Field values that do
// not fit the packed entry widths escape automatically to the overflow
// encodings.
//
// # Debug info
//
// Debug information is not materialized during population; callers that
// need source mapping read it lazily with ReadDebugInfo.
package bundle
