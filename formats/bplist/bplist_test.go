package bplist

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parsekit-io/parsekit/fault"
)

// builder assembles a plist from raw objects with 1-byte refs and offsets
// sized to fit.
type builder struct {
	objects [][]byte
	top     int
}

func (b *builder) bytes() []byte {
	var buf bytes.Buffer
	buf.WriteString("bplist00")

	offsets := make([]uint64, len(b.objects))
	for i, obj := range b.objects {
		offsets[i] = uint64(buf.Len())
		buf.Write(obj)
	}
	tableOff := uint64(buf.Len())

	offSize := 1
	if tableOff > 0xFF {
		offSize = 2
	}
	for _, off := range offsets {
		if offSize == 1 {
			buf.WriteByte(byte(off))
		} else {
			binary.Write(&buf, binary.BigEndian, uint16(off))
		}
	}

	buf.Write(make([]byte, 6)) // unused + sort version
	buf.WriteByte(byte(offSize))
	buf.WriteByte(1) // ref size
	binary.Write(&buf, binary.BigEndian, uint64(len(b.objects)))
	binary.Write(&buf, binary.BigEndian, uint64(b.top))
	binary.Write(&buf, binary.BigEndian, uint64(tableOff))
	return buf.Bytes()
}

func asciiObj(s string) []byte {
	return append([]byte{0x50 | byte(len(s))}, s...)
}

func TestParseDict(t *testing.T) {
	b := &builder{
		objects: [][]byte{
			{0xD3, 1, 2, 3, 4, 5, 6}, // dict of 3
			asciiObj("name"),
			asciiObj("count"),
			asciiObj("ok"),
			asciiObj("hi"),
			{0x10, 42},
			{0x09},
		},
	}

	doc, err := Parse(b.bytes())
	require.NoError(t, err)
	assert.Equal(t, 7, doc.Objects)

	top, ok := doc.Top.(map[string]Value)
	require.True(t, ok, "top is %T", doc.Top)
	assert.Equal(t, "hi", top["name"])
	assert.Equal(t, int64(42), top["count"])
	assert.Equal(t, true, top["ok"])
}

func TestParseScalars(t *testing.T) {
	tests := []struct {
		name string
		obj  []byte
		want Value
	}{
		{"null", []byte{0x00}, nil},
		{"false", []byte{0x08}, false},
		{"true", []byte{0x09}, true},
		{"int8", []byte{0x10, 0x7F}, int64(127)},
		{"int16_negative", []byte{0x11, 0xFF, 0xFE}, int64(-2)},
		{"int32", []byte{0x12, 0x00, 0x01, 0x00, 0x00}, int64(65536)},
		{"int64", []byte{0x13, 0, 0, 0, 0, 0, 0, 0, 9}, int64(9)},
		{"real64", []byte{0x23, 0x40, 0x19, 0, 0, 0, 0, 0, 0}, 6.25},
		{"ascii", asciiObj("abc"), "abc"},
		{"utf16", []byte{0x61, 0x00, 'Z'}, "Z"},
		{"data", []byte{0x42, 0xAA, 0xBB}, []byte{0xAA, 0xBB}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := &builder{objects: [][]byte{tc.obj}}
			doc, err := Parse(b.bytes())
			require.NoError(t, err)
			assert.Equal(t, tc.want, doc.Top)
		})
	}
}

func TestParseArray(t *testing.T) {
	b := &builder{
		objects: [][]byte{
			{0xA2, 1, 2},
			{0x11, 0xFF, 0xFE}, // -2
			asciiObj("x"),
		},
	}
	doc, err := Parse(b.bytes())
	require.NoError(t, err)

	arr, ok := doc.Top.([]Value)
	require.True(t, ok)
	require.Len(t, arr, 2)
	assert.Equal(t, int64(-2), arr[0])
	assert.Equal(t, "x", arr[1])
}

func TestParseLongLength(t *testing.T) {
	// A 17-byte string needs the 0xF escape: marker 0x5F, then int 17.
	s := "seventeen bytes!!"
	obj := append([]byte{0x5F, 0x10, byte(len(s))}, s...)
	b := &builder{objects: [][]byte{obj}}

	doc, err := Parse(b.bytes())
	require.NoError(t, err)
	assert.Equal(t, s, doc.Top)
}

func TestParseBadMagic(t *testing.T) {
	b := &builder{objects: [][]byte{{0x09}}}
	data := b.bytes()
	copy(data, "xplist00")
	_, err := Parse(data)
	assert.Equal(t, fault.KindInvalidValue, fault.KindOf(err))
}

func TestParseSelfReferentialArray(t *testing.T) {
	b := &builder{objects: [][]byte{{0xA1, 0}}} // array containing itself
	_, err := Parse(b.bytes())
	assert.Equal(t, fault.KindInvalidValue, fault.KindOf(err))
}

func TestParseRefOutOfRange(t *testing.T) {
	b := &builder{objects: [][]byte{{0xA1, 9}}}
	_, err := Parse(b.bytes())
	assert.Equal(t, fault.KindInvalidValue, fault.KindOf(err))
}

func TestParseOffsetOutsideBody(t *testing.T) {
	b := &builder{objects: [][]byte{{0x09}}}
	data := b.bytes()
	// The single offset table entry sits right before the 32-byte trailer.
	data[len(data)-trailerLen-1] = 0xF0
	_, err := Parse(data)
	assert.Equal(t, fault.KindInvalidValue, fault.KindOf(err))
}

func TestParseTruncatedTrailer(t *testing.T) {
	_, err := Parse([]byte("bplist00"))
	assert.Equal(t, fault.KindInvalidValue, fault.KindOf(err))
}

func TestParseNonStringDictKey(t *testing.T) {
	b := &builder{
		objects: [][]byte{
			{0xD1, 1, 2},
			{0x10, 1}, // int key
			{0x09},
		},
	}
	_, err := Parse(b.bytes())
	assert.Equal(t, fault.KindInvalidValue, fault.KindOf(err))
}
