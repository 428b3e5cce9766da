// Package pcapng parses PCAP-NG capture files: the section header block with
// byte-order detection and version gating, interface descriptions, enhanced
// packet blocks, and the option lists they carry.
package pcapng

import (
	"fmt"

	"github.com/coreos/go-semver/semver"

	"github.com/parsekit-io/parsekit/fault"
	"github.com/parsekit-io/parsekit/parse"
	"github.com/parsekit-io/parsekit/safemath"
)

// Block type identifiers.
const (
	BlockSectionHeader uint32 = 0x0A0D0D0A
	BlockInterface     uint32 = 0x00000001
	BlockEnhancedPkt   uint32 = 0x00000006
	BlockSimplePkt     uint32 = 0x00000003
)

const byteOrderMagic uint32 = 0x1A2B3C4D

// supportedVersion is the section format version this parser understands.
// Minor revisions are compatible by construction; a new major is not.
var supportedVersion = semver.Version{Major: 1, Minor: 0}

// Option is one option record from a block's option list.
type Option struct {
	Code  uint16
	Value []byte
}

// Block is one decoded block.
type Block struct {
	Type    uint32
	Body    []byte
	Options []Option
}

// Section is a parsed capture section.
type Section struct {
	ByteOrder  parse.ByteOrder
	Version    semver.Version
	Length     int64 // -1 when unspecified
	Interfaces int
	Packets    int
	Blocks     []Block
}

// Parse decodes the first section of a PCAP-NG capture from data.
func Parse(data []byte) (*Section, error) {
	return parse.WithBytes(data, parseSection)
}

func parseSection(c *parse.Cursor) (*Section, error) {
	s, err := parseSectionHeader(c)
	if err != nil {
		return nil, err
	}

	for !c.IsEmpty() {
		blk, err := parseBlock(c, s.ByteOrder)
		if err != nil {
			return nil, err
		}
		if blk.Type == BlockSectionHeader {
			// Next section begins; this parser handles one.
			break
		}
		switch blk.Type {
		case BlockInterface:
			s.Interfaces++
		case BlockEnhancedPkt, BlockSimplePkt:
			s.Packets++
		}
		s.Blocks = append(s.Blocks, blk)
	}
	return s, nil
}

// parseSectionHeader decodes the SHB, detecting the section's byte order from
// the byte-order magic and gating on the format version.
func parseSectionHeader(c *parse.Cursor) (*Section, error) {
	blockType, err := parse.U32(c, parse.BigEndian)
	if err != nil {
		return nil, err
	}
	// The SHB type is a palindrome, readable before the byte order is known.
	if blockType != BlockSectionHeader {
		return nil, fault.InvalidValuef(0, "not a section header block: %#08x", blockType)
	}

	// Total length is byte-order dependent; peek the magic first.
	peeked, err := c.SeekingForward(4)
	if err != nil {
		return nil, err
	}
	magic, err := parse.U32(&peeked, parse.BigEndian)
	if err != nil {
		return nil, err
	}

	var bo parse.ByteOrder
	switch magic {
	case byteOrderMagic:
		bo = parse.BigEndian
	case 0x4D3C2B1A:
		bo = parse.LittleEndian
	default:
		return nil, fault.InvalidValuef(int64(c.StartOffset())+4, "bad byte-order magic %#08x", magic)
	}

	totalLen, err := parse.U32(c, bo)
	if err != nil {
		return nil, err
	}
	body, err := blockBody(c, totalLen, bo)
	if err != nil {
		return nil, err
	}

	s := &Section{ByteOrder: bo, Length: -1}

	if _, err := parse.U32(&body, bo); err != nil { // byte-order magic
		return nil, err
	}
	major, err := parse.U16(&body, bo)
	if err != nil {
		return nil, err
	}
	minor, err := parse.U16(&body, bo)
	if err != nil {
		return nil, err
	}
	s.Version = semver.Version{Major: int64(major), Minor: int64(minor)}
	if s.Version.Major != supportedVersion.Major || s.Version.LessThan(supportedVersion) {
		return nil, fault.InvalidValuef(12, "unsupported section version %s", s.Version)
	}

	secLen, err := parse.I64(&body, bo)
	if err != nil {
		return nil, err
	}
	if secLen >= 0 {
		s.Length = secLen
	}

	opts, err := parseOptions(&body, bo)
	if err != nil {
		return nil, err
	}
	s.Blocks = append(s.Blocks, Block{Type: BlockSectionHeader, Options: opts})
	return s, nil
}

// blockBody validates a block's framing: total length covers the 12 bytes of
// scaffolding, is 4-byte aligned, and is repeated verbatim at the end.
func blockBody(c *parse.Cursor, totalLen uint32, bo parse.ByteOrder) (parse.Cursor, error) {
	at := c.StartOffset()
	if totalLen < 12 || totalLen%4 != 0 {
		return parse.Cursor{}, fault.InvalidValuef(int64(at)-4, "bad block length %d", totalLen)
	}
	bodyLen, err := safemath.ConvertOrFault[int](totalLen - 12)
	if err != nil {
		return parse.Cursor{}, err
	}
	body, err := c.SliceBytes(bodyLen)
	if err != nil {
		return parse.Cursor{}, err
	}
	trailer, err := parse.U32(c, bo)
	if err != nil {
		return parse.Cursor{}, err
	}
	if trailer != totalLen {
		return parse.Cursor{}, fault.InvalidValuef(int64(c.StartOffset())-4,
			"trailing length %d != leading length %d", trailer, totalLen)
	}
	return body, nil
}

func parseBlock(c *parse.Cursor, bo parse.ByteOrder) (Block, error) {
	blockType, err := parse.U32(c, bo)
	if err != nil {
		return Block{}, err
	}
	totalLen, err := parse.U32(c, bo)
	if err != nil {
		return Block{}, err
	}
	body, err := blockBody(c, totalLen, bo)
	if err != nil {
		return Block{}, err
	}

	blk := Block{Type: blockType, Body: parse.BytesRemaining(&body)}

	// Interface description blocks carry options after a fixed 8-byte
	// prefix; parse them for the summary.
	if blockType == BlockInterface && len(blk.Body) >= 8 {
		blk.Options, err = parse.FromBytes(blk.Body[8:], func(c *parse.Cursor) ([]Option, error) {
			return parseOptions(c, bo)
		})
		if err != nil {
			return Block{}, err
		}
	}
	return blk, nil
}

// parseOptions decodes an option list: (code, length, value, pad-to-4)
// records terminated by opt_endofopt or the end of the body.
func parseOptions(c *parse.Cursor, bo parse.ByteOrder) ([]Option, error) {
	var opts []Option
	for !c.IsEmpty() {
		code, err := parse.U16(c, bo)
		if err != nil {
			return nil, err
		}
		length, err := parse.U16(c, bo)
		if err != nil {
			return nil, err
		}
		if code == 0 { // opt_endofopt
			if length != 0 {
				return nil, fault.InvalidValuef(int64(c.StartOffset())-2, "end-of-options with length %d", length)
			}
			break
		}
		value, err := parse.BytesCount(c, int(length))
		if err != nil {
			return nil, err
		}
		if pad := (4 - int(length)%4) % 4; pad > 0 {
			if err := c.SeekForward(pad); err != nil {
				return nil, err
			}
		}
		opts = append(opts, Option{Code: code, Value: value})
	}
	return opts, nil
}

func (s *Section) String() string {
	return fmt.Sprintf("PCAP-NG v%d.%d %s-endian interfaces=%d packets=%d",
		s.Version.Major, s.Version.Minor, s.ByteOrder, s.Interfaces, s.Packets)
}
