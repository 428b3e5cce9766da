package pcapng

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parsekit-io/parsekit/fault"
	"github.com/parsekit-io/parsekit/parse"
)

// shb assembles a section header block in the given byte order.
func shb(order binary.ByteOrder, major, minor uint16, opts []byte) []byte {
	body := &bytes.Buffer{}
	binary.Write(body, order, byteOrderMagic)
	binary.Write(body, order, major)
	binary.Write(body, order, minor)
	binary.Write(body, order, int64(-1)) // section length unspecified
	body.Write(opts)

	total := uint32(12 + body.Len())
	out := &bytes.Buffer{}
	binary.Write(out, binary.BigEndian, BlockSectionHeader) // palindrome
	binary.Write(out, order, total)
	out.Write(body.Bytes())
	binary.Write(out, order, total)
	return out.Bytes()
}

func block(order binary.ByteOrder, typ uint32, body []byte) []byte {
	for len(body)%4 != 0 {
		body = append(body, 0)
	}
	total := uint32(12 + len(body))
	out := &bytes.Buffer{}
	binary.Write(out, order, typ)
	binary.Write(out, order, total)
	out.Write(body)
	binary.Write(out, order, total)
	return out.Bytes()
}

func option(order binary.ByteOrder, code uint16, value []byte) []byte {
	out := &bytes.Buffer{}
	binary.Write(out, order, code)
	binary.Write(out, order, uint16(len(value)))
	out.Write(value)
	for out.Len()%4 != 0 {
		out.WriteByte(0)
	}
	return out.Bytes()
}

func endOfOptions(order binary.ByteOrder) []byte {
	return option(order, 0, nil)
}

func TestParseLittleEndian(t *testing.T) {
	le := binary.LittleEndian
	var capture []byte
	capture = append(capture, shb(le, 1, 0, nil)...)

	idb := make([]byte, 8) // linktype + reserved + snaplen
	idb = append(idb, option(le, 2, []byte("eth0"))...)
	idb = append(idb, endOfOptions(le)...)
	capture = append(capture, block(le, BlockInterface, idb)...)
	capture = append(capture, block(le, BlockEnhancedPkt, make([]byte, 20))...)

	s, err := Parse(capture)
	require.NoError(t, err)

	assert.Equal(t, parse.LittleEndian, s.ByteOrder)
	assert.EqualValues(t, 1, s.Version.Major)
	assert.EqualValues(t, 0, s.Version.Minor)
	assert.Equal(t, int64(-1), s.Length)
	assert.Equal(t, 1, s.Interfaces)
	assert.Equal(t, 1, s.Packets)
	require.Len(t, s.Blocks, 3)

	iface := s.Blocks[1]
	require.Len(t, iface.Options, 1)
	assert.Equal(t, uint16(2), iface.Options[0].Code)
	assert.Equal(t, []byte("eth0"), iface.Options[0].Value)
}

func TestParseBigEndian(t *testing.T) {
	s, err := Parse(shb(binary.BigEndian, 1, 2, nil))
	require.NoError(t, err)
	assert.Equal(t, parse.BigEndian, s.ByteOrder)
	assert.EqualValues(t, 2, s.Version.Minor)
}

func TestParseUnsupportedVersion(t *testing.T) {
	_, err := Parse(shb(binary.LittleEndian, 2, 0, nil))
	assert.Equal(t, fault.KindInvalidValue, fault.KindOf(err))

	_, err = Parse(shb(binary.LittleEndian, 0, 9, nil))
	assert.Equal(t, fault.KindInvalidValue, fault.KindOf(err))
}

func TestParseNotASection(t *testing.T) {
	data := block(binary.LittleEndian, BlockInterface, make([]byte, 8))
	_, err := Parse(data)
	assert.Equal(t, fault.KindInvalidValue, fault.KindOf(err))
}

func TestParseBadByteOrderMagic(t *testing.T) {
	data := shb(binary.LittleEndian, 1, 0, nil)
	data[8] = 0x99
	_, err := Parse(data)
	assert.Equal(t, fault.KindInvalidValue, fault.KindOf(err))
}

func TestParseLengthMismatch(t *testing.T) {
	data := shb(binary.LittleEndian, 1, 0, nil)
	// Corrupt the trailing total length.
	data[len(data)-4] ^= 0xFF
	_, err := Parse(data)
	assert.Equal(t, fault.KindInvalidValue, fault.KindOf(err))
}

func TestParseTruncatedBlock(t *testing.T) {
	le := binary.LittleEndian
	capture := append([]byte{}, shb(le, 1, 0, nil)...)
	capture = append(capture, block(le, BlockEnhancedPkt, make([]byte, 20))[:10]...)
	_, err := Parse(capture)
	assert.Equal(t, fault.KindInsufficientData, fault.KindOf(err))
}

func TestParseStopsAtNextSection(t *testing.T) {
	le := binary.LittleEndian
	capture := append([]byte{}, shb(le, 1, 0, nil)...)
	capture = append(capture, block(le, BlockEnhancedPkt, make([]byte, 20))...)
	capture = append(capture, shb(le, 1, 0, nil)...)
	capture = append(capture, block(le, BlockEnhancedPkt, make([]byte, 20))...)

	s, err := Parse(capture)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Packets)
}

func TestParseOptionsWithBadTerminator(t *testing.T) {
	le := binary.LittleEndian
	opts := []byte{0, 0, 4, 0} // opt_endofopt with nonzero length
	_, err := Parse(shb(le, 1, 0, opts))
	assert.Equal(t, fault.KindInvalidValue, fault.KindOf(err))
}
