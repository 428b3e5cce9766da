// Package parse provides memory-safe, declarative parsing primitives over
// untrusted binary byte regions.
//
// The central type is Cursor, a non-owning bounded view over an immutable
// byte region. Parsing primitives take the cursor by pointer, consume bytes
// moving its start offset forward, and report failure as a *fault.Fault
// without ever reading past the region's end.
//
// # Architecture
//
//	Cursor          Bounds-checked view: seeking, slicing, deferred ranges
//	Integer loads   U8..U64 / I8..I64 / Uint / Int, both endiannesses,
//	                variable byte counts with validated sign padding,
//	                load-then-convert, raw-representable enums
//	Strings         UTF-8 (whole/counted/NUL-terminated), UTF-16
//	Sequences       Counted and exhaustive element collection
//	Ranges          start+count and start+end bound parsing
//	Adapters        WithBytes / WithString scoped cursor acquisition
//
// # Obtaining a cursor
//
// WithBytes is the sanctioned entry point; the cursor it passes to the body
// must not be retained beyond the call:
//
//	header, err := parse.WithBytes(data, func(c *parse.Cursor) (Header, error) {
//	    var h Header
//	    var err error
//	    if h.Magic, err = parse.U32(c, parse.BigEndian); err != nil {
//	        return h, err
//	    }
//	    h.Name, err = parse.StringNulTerminated(c)
//	    return h, err
//	})
//
// # Failure and recovery
//
// Operations that fail with the cursor documented as unchanged can be retried
// directly. Composite parses that need all-or-nothing behavior wrap the
// tentative sequence in Atomic:
//
//	v, err := parse.Atomic(c, func(c *parse.Cursor) (Record, error) {
//	    ...several reads...
//	})
//
// On failure the cursor is exactly as it was before the Atomic call.
//
// Cursors are not safe for concurrent use. Concurrent parsing of disjoint
// regions requires an independent cursor per goroutine, each derived from its
// own adapter call.
package parse
