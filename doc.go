// Package parsekit provides primitives for writing safe, declarative parsers
// over untrusted binary byte streams.
//
// The core value is a memory-safe cursor over a byte region together with
// composable parsing primitives and an overflow-safe arithmetic discipline
// for the sizes, counts, and offsets computed from parsed values.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct
// responsibilities:
//
//	parsekit/            Root package with the version and logger hook
//	├── parse/           Cursor, integer decoding, strings, sequences,
//	│                    ranges, byte-source adapters
//	├── safemath/        Overflow-aware arithmetic and bounded indexing
//	├── fault/           Structured fault type shared by every layer
//	├── formats/         Example format parsers built on the core
//	│   ├── png/         PNG signature, chunks, IHDR, IDAT inflate check
//	│   ├── elf/         ELF ident and header tables, both classes
//	│   ├── qoi/         QOI header and full op-stream pixel decode
//	│   ├── pcapng/      PCAP-NG block walk with endianness detection
//	│   ├── lz4/         LZ4 frame header and block structure
//	│   └── bplist/      Binary property list object graph
//	└── cmd/binspect/    Demo CLI to parse and inspect files
//
// # Quick Start
//
// Parse a little header out of untrusted bytes:
//
//	type Header struct {
//	    Magic   uint32
//	    Count   uint16
//	    Comment string
//	}
//
//	h, err := parse.WithBytes(data, func(c *parse.Cursor) (Header, error) {
//	    var h Header
//	    var err error
//	    if h.Magic, err = parse.U32(c, parse.BigEndian); err != nil {
//	        return h, err
//	    }
//	    if h.Count, err = parse.U16(c, parse.BigEndian); err != nil {
//	        return h, err
//	    }
//	    h.Comment, err = parse.StringNulTerminated(c)
//	    return h, err
//	})
//
// Every failure is a *fault.Fault with one of three kinds
// (insufficient_data, invalid_value, user_error) and, when known, the byte
// offset of the first offending byte.
//
// # Safety Model
//
// A cursor never reads outside its region, arithmetic on parsed values never
// wraps silently, and no input can make the library panic. See the parse and
// safemath package documentation for the full contracts.
package parsekit
