// Package bplist parses Apple binary property lists: the trailer, the offset
// table with its variable-width entries, and the object graph of markers with
// nibble-packed payloads.
package bplist

import (
	"fmt"
	"math"

	"github.com/parsekit-io/parsekit/fault"
	"github.com/parsekit-io/parsekit/parse"
	"github.com/parsekit-io/parsekit/safemath"
)

// Value is one decoded plist object. Concrete types are nil, bool, int64,
// float64, string, []byte, []Value, and map[string]Value.
type Value any

// Document is a parsed binary plist.
type Document struct {
	Top     Value
	Objects int
}

const (
	headerLen  = 8
	trailerLen = 32
	maxDepth   = 64
)

type trailer struct {
	offsetIntSize  int
	objectRefSize  int
	numObjects     int
	topObject      int
	offsetTableOff int
}

type decoder struct {
	refSize int
	offsets []int
}

// Parse decodes a binary property list from data.
func Parse(data []byte) (*Document, error) {
	return parse.WithBytes(data, parseDoc)
}

func parseDoc(c *parse.Cursor) (*Document, error) {
	magic, err := parse.BytesCount(c, headerLen)
	if err != nil {
		return nil, err
	}
	if string(magic[:6]) != "bplist" || magic[6] != '0' {
		return nil, fault.InvalidValuef(0, "not a bplist header: %q", magic)
	}

	tr, err := parseTrailer(c)
	if err != nil {
		return nil, err
	}

	d := &decoder{refSize: tr.objectRefSize}
	if err := d.readOffsetTable(c, tr); err != nil {
		return nil, err
	}

	top, err := d.object(c, tr.topObject, 0)
	if err != nil {
		return nil, err
	}
	return &Document{Top: top, Objects: tr.numObjects}, nil
}

// parseTrailer decodes the fixed 32-byte trailer at the end of the region.
func parseTrailer(c *parse.Cursor) (trailer, error) {
	var tr trailer

	t, err := c.SeekingFromEnd(trailerLen)
	if err != nil {
		return tr, err
	}
	if err := t.SeekForward(6); err != nil { // unused + sort version
		return tr, err
	}

	sizes, err := parse.BytesCount(&t, 2)
	if err != nil {
		return tr, err
	}
	tr.offsetIntSize = int(sizes[0])
	tr.objectRefSize = int(sizes[1])
	if tr.offsetIntSize < 1 || tr.offsetIntSize > 8 || tr.objectRefSize < 1 || tr.objectRefSize > 8 {
		return tr, fault.InvalidValuef(int64(t.StartOffset())-2,
			"implausible int sizes %d/%d", tr.offsetIntSize, tr.objectRefSize)
	}

	if tr.numObjects, err = trailerCount(&t); err != nil {
		return tr, err
	}
	if tr.topObject, err = trailerCount(&t); err != nil {
		return tr, err
	}
	if tr.offsetTableOff, err = trailerCount(&t); err != nil {
		return tr, err
	}
	if tr.numObjects == 0 {
		return tr, fault.InvalidValue(fault.NoLocation, "empty object table")
	}
	return tr, nil
}

// trailerCount reads one of the trailer's 8-byte big-endian counters and
// checks it fits a host int.
func trailerCount(c *parse.Cursor) (int, error) {
	at := c.StartOffset()
	v, err := parse.U64(c, parse.BigEndian)
	if err != nil {
		return 0, err
	}
	n, err := safemath.ConvertOrFault[int](v)
	if err != nil {
		return 0, fault.InvalidValuef(int64(at), "trailer value %d unrepresentable", v)
	}
	return n, nil
}

// readOffsetTable decodes numObjects offsets of offsetIntSize bytes each.
// Offsets narrower than 8 bytes are widened with a zero-extending variable
// byte-count load.
func (d *decoder) readOffsetTable(c *parse.Cursor, tr trailer) error {
	table, err := c.SeekingAbsolute(tr.offsetTableOff)
	if err != nil {
		return err
	}
	window, err := table.SliceStride(tr.offsetIntSize, tr.numObjects)
	if err != nil {
		return err
	}

	limit := c.RegionLen() - trailerLen
	d.offsets = make([]int, 0, tr.numObjects)
	for i := 0; i < tr.numObjects; i++ {
		at := window.StartOffset()
		off, err := parse.LoadUint[uint64](&window, tr.offsetIntSize, parse.BigEndian)
		if err != nil {
			return err
		}
		n, cErr := safemath.ConvertOrFault[int](off)
		if cErr != nil || n < headerLen || n >= limit {
			return fault.InvalidValuef(int64(at), "object %d offset %d outside body", i, off)
		}
		d.offsets = append(d.offsets, n)
	}
	if tr.topObject >= len(d.offsets) {
		return fault.InvalidValuef(fault.NoLocation, "top object %d out of range", tr.topObject)
	}
	return nil
}

// object decodes the object with the given index.
func (d *decoder) object(c *parse.Cursor, idx, depth int) (Value, error) {
	if depth > maxDepth {
		return nil, fault.InvalidValue(fault.NoLocation, "object graph too deep")
	}
	off, err := safemath.IndexOrFault(d.offsets, idx)
	if err != nil {
		return nil, err
	}
	oc, err := c.SeekingAbsolute(off)
	if err != nil {
		return nil, err
	}

	at := oc.StartOffset()
	marker, err := parse.U8(&oc)
	if err != nil {
		return nil, err
	}
	nibble := int(marker & 0x0F)

	switch marker >> 4 {
	case 0x0: // singletons
		switch marker {
		case 0x00:
			return nil, nil
		case 0x08:
			return false, nil
		case 0x09:
			return true, nil
		}
		return nil, fault.InvalidValuef(int64(at), "unknown singleton marker 0x%02X", marker)

	case 0x1: // int, 2^nibble bytes
		if nibble > 3 {
			return nil, fault.InvalidValuef(int64(at), "integer width 2^%d unsupported", nibble)
		}
		v, err := parse.LoadInt[int64](&oc, 1<<nibble, parse.BigEndian)
		if err != nil {
			return nil, err
		}
		return v, nil

	case 0x2: // real
		switch nibble {
		case 2:
			v, err := parse.F32(&oc, parse.BigEndian)
			if err != nil {
				return nil, err
			}
			return float64(v), nil
		case 3:
			v, err := parse.F64(&oc, parse.BigEndian)
			if err != nil {
				return nil, err
			}
			return v, nil
		}
		return nil, fault.InvalidValuef(int64(at), "real width 2^%d unsupported", nibble)

	case 0x3: // date: 8-byte big-endian double since 2001-01-01
		if nibble != 3 {
			return nil, fault.InvalidValuef(int64(at), "bad date marker 0x%02X", marker)
		}
		v, err := parse.F64(&oc, parse.BigEndian)
		if err != nil {
			return nil, err
		}
		if math.IsNaN(v) {
			return nil, fault.InvalidValue(int64(at)+1, "NaN date")
		}
		return v, nil

	case 0x4: // data
		n, err := d.length(&oc, nibble)
		if err != nil {
			return nil, err
		}
		b, err := parse.BytesCount(&oc, n)
		if err != nil {
			return nil, err
		}
		return b, nil

	case 0x5: // ASCII string
		n, err := d.length(&oc, nibble)
		if err != nil {
			return nil, err
		}
		s, err := oc.SliceUTF8(n)
		if err != nil {
			return nil, err
		}
		return s, nil

	case 0x6: // UTF-16BE string, n code units
		n, err := d.length(&oc, nibble)
		if err != nil {
			return nil, err
		}
		s, err := parse.String16Count(&oc, n, parse.BigEndian)
		if err != nil {
			return nil, err
		}
		return s, nil

	case 0x8: // UID, nibble+1 bytes
		v, err := parse.LoadUint[uint64](&oc, nibble+1, parse.BigEndian)
		if err != nil {
			return nil, err
		}
		return int64(v), nil

	case 0xA: // array
		n, err := d.length(&oc, nibble)
		if err != nil {
			return nil, err
		}
		return d.array(c, &oc, n, depth)

	case 0xD: // dict
		n, err := d.length(&oc, nibble)
		if err != nil {
			return nil, err
		}
		return d.dict(c, &oc, n, depth)
	}
	return nil, fault.InvalidValuef(int64(at), "unknown marker 0x%02X", marker)
}

// length resolves a marker's nibble count: 0xF escapes to a following
// integer object.
func (d *decoder) length(oc *parse.Cursor, nibble int) (int, error) {
	if nibble != 0x0F {
		return nibble, nil
	}
	at := oc.StartOffset()
	marker, err := parse.U8(oc)
	if err != nil {
		return 0, err
	}
	if marker>>4 != 0x1 || marker&0x0F > 3 {
		return 0, fault.InvalidValuef(int64(at), "bad length marker 0x%02X", marker)
	}
	v, err := parse.LoadUint[uint64](oc, 1<<(marker&0x0F), parse.BigEndian)
	if err != nil {
		return 0, err
	}
	n, cErr := safemath.ConvertOrFault[int](v)
	if cErr != nil {
		return 0, fault.InvalidValuef(int64(at), "length %d unrepresentable", v)
	}
	return n, nil
}

func (d *decoder) refs(oc *parse.Cursor, n int) ([]int, error) {
	window, err := oc.SliceStride(d.refSize, n)
	if err != nil {
		return nil, err
	}
	out := make([]int, 0, n)
	for i := 0; i < n; i++ {
		at := window.StartOffset()
		r, err := parse.LoadUint[uint64](&window, d.refSize, parse.BigEndian)
		if err != nil {
			return nil, err
		}
		idx, cErr := safemath.ConvertOrFault[int](r)
		if cErr != nil || idx >= len(d.offsets) {
			return nil, fault.InvalidValuef(int64(at), "object ref %d out of range", r)
		}
		out = append(out, idx)
	}
	return out, nil
}

func (d *decoder) array(c, oc *parse.Cursor, n, depth int) (Value, error) {
	refs, err := d.refs(oc, n)
	if err != nil {
		return nil, err
	}
	out := make([]Value, 0, n)
	for _, ref := range refs {
		v, err := d.object(c, ref, depth+1)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (d *decoder) dict(c, oc *parse.Cursor, n, depth int) (Value, error) {
	keyRefs, err := d.refs(oc, n)
	if err != nil {
		return nil, err
	}
	valRefs, err := d.refs(oc, n)
	if err != nil {
		return nil, err
	}

	out := make(map[string]Value, n)
	for i := range keyRefs {
		k, err := d.object(c, keyRefs[i], depth+1)
		if err != nil {
			return nil, err
		}
		key, ok := k.(string)
		if !ok {
			return nil, fault.InvalidValuef(fault.NoLocation, "dict key %d is not a string", i)
		}
		v, err := d.object(c, valRefs[i], depth+1)
		if err != nil {
			return nil, err
		}
		out[key] = v
	}
	return out, nil
}

func (doc *Document) String() string {
	return fmt.Sprintf("bplist objects=%d top=%T", doc.Objects, doc.Top)
}
