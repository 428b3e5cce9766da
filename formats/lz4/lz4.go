// Package lz4 parses LZ4 frames: the frame descriptor with its flag bit
// fields, the block sequence, and the end mark. Compressed blocks are
// decompressed to verify they are well formed.
package lz4

import (
	"fmt"

	pierrec "github.com/pierrec/lz4/v4"

	"github.com/parsekit-io/parsekit/fault"
	"github.com/parsekit-io/parsekit/parse"
	"github.com/parsekit-io/parsekit/safemath"
)

const frameMagic uint32 = 0x184D2204

const (
	uncompressedBit = 1 << 31
	maxDecompressed = 1 << 30 // refuse to inflate past 1 GB
)

// BlockMaxSize is the frame's declared maximum block size.
type BlockMaxSize uint8

const (
	Block64KB  BlockMaxSize = 4
	Block256KB BlockMaxSize = 5
	Block1MB   BlockMaxSize = 6
	Block4MB   BlockMaxSize = 7
)

func (b BlockMaxSize) Valid() bool { return b >= Block64KB && b <= Block4MB }

func (b BlockMaxSize) bytes() int {
	return 1 << (8 + 2*uint(b))
}

// Descriptor is the decoded frame descriptor.
type Descriptor struct {
	BlockIndependent bool
	BlockChecksums   bool
	ContentChecksum  bool
	ContentSize      uint64 // 0 when absent
	HasContentSize   bool
	BlockMaxSize     BlockMaxSize
}

// BlockInfo describes one block of the frame.
type BlockInfo struct {
	Compressed  bool
	StoredSize  int
	DecodedSize int
	HasChecksum bool
}

// Frame is the parsed structure of an LZ4 frame.
type Frame struct {
	Descriptor  Descriptor
	Blocks      []BlockInfo
	DecodedSize int64
}

// Parse decodes the structure of an LZ4 frame from data, decompressing each
// compressed block to validate it.
func Parse(data []byte) (*Frame, error) {
	return parse.WithBytes(data, parseFrame)
}

func parseFrame(c *parse.Cursor) (*Frame, error) {
	if _, err := parse.EnumFunc(c, parse.LittleEndian, func(v uint32) bool { return v == frameMagic }); err != nil {
		return nil, err
	}

	desc, err := parseDescriptor(c)
	if err != nil {
		return nil, err
	}

	f := &Frame{Descriptor: desc}
	for {
		size, err := parse.U32(c, parse.LittleEndian)
		if err != nil {
			return nil, err
		}
		if size == 0 { // end mark
			break
		}

		blk, err := parseBlock(c, desc, size)
		if err != nil {
			return nil, err
		}
		f.Blocks = append(f.Blocks, blk)
		f.DecodedSize, err = safemath.AddOrFault(f.DecodedSize, int64(blk.DecodedSize))
		if err != nil {
			return nil, err
		}
		if f.DecodedSize > maxDecompressed {
			return nil, fault.InvalidValuef(int64(c.StartOffset()), "frame inflates past %d bytes", maxDecompressed)
		}
	}

	if desc.ContentChecksum {
		if _, err := parse.U32(c, parse.LittleEndian); err != nil {
			return nil, err
		}
	}
	if desc.HasContentSize && f.DecodedSize != int64(desc.ContentSize) {
		return nil, fault.InvalidValuef(fault.NoLocation,
			"content size %d does not match decoded size %d", desc.ContentSize, f.DecodedSize)
	}
	return f, nil
}

func parseDescriptor(c *parse.Cursor) (Descriptor, error) {
	var d Descriptor
	at := c.StartOffset()

	flg, err := parse.U8(c)
	if err != nil {
		return d, err
	}
	if version := flg >> 6; version != 0b01 {
		return d, fault.InvalidValuef(int64(at), "unsupported frame version %d", version)
	}
	d.BlockIndependent = flg&(1<<5) != 0
	d.BlockChecksums = flg&(1<<4) != 0
	d.HasContentSize = flg&(1<<3) != 0
	d.ContentChecksum = flg&(1<<2) != 0
	if flg&(1<<0) != 0 { // dictionary ID unsupported here
		return d, fault.InvalidValue(int64(at), "dictionary frames not supported")
	}

	bd, err := parse.U8(c)
	if err != nil {
		return d, err
	}
	d.BlockMaxSize = BlockMaxSize(bd >> 4 & 0x07)
	if !d.BlockMaxSize.Valid() {
		return d, fault.InvalidValuef(int64(at)+1, "invalid block max size %d", d.BlockMaxSize)
	}

	if d.HasContentSize {
		if d.ContentSize, err = parse.U64(c, parse.LittleEndian); err != nil {
			return d, err
		}
	}

	// Header checksum byte (xxh32 of the descriptor); presence is
	// structural, the hash itself is not recomputed here.
	if _, err := parse.U8(c); err != nil {
		return d, err
	}
	return d, nil
}

func parseBlock(c *parse.Cursor, desc Descriptor, size uint32) (BlockInfo, error) {
	at := c.StartOffset()
	blk := BlockInfo{
		Compressed:  size&uncompressedBit == 0,
		HasChecksum: desc.BlockChecksums,
	}

	stored, err := safemath.ConvertOrFault[int](size &^ uint32(uncompressedBit))
	if err != nil {
		return blk, err
	}
	blk.StoredSize = stored
	if stored > desc.BlockMaxSize.bytes() {
		return blk, fault.InvalidValuef(int64(at)-4, "block size %d exceeds declared maximum %d",
			stored, desc.BlockMaxSize.bytes())
	}

	payload, err := parse.BytesCount(c, stored)
	if err != nil {
		return blk, err
	}

	if blk.Compressed {
		dst := make([]byte, desc.BlockMaxSize.bytes())
		n, err := pierrec.UncompressBlock(payload, dst)
		if err != nil {
			return blk, fault.New(fault.KindInvalidValue).
				At(int64(at)).
				Cause(err).
				Detail("block does not decompress").
				Build()
		}
		blk.DecodedSize = n
	} else {
		blk.DecodedSize = stored
	}

	if desc.BlockChecksums {
		if _, err := parse.U32(c, parse.LittleEndian); err != nil {
			return blk, err
		}
	}
	return blk, nil
}

func (f *Frame) String() string {
	return fmt.Sprintf("LZ4 blocks=%d decoded=%dB maxBlock=%dB",
		len(f.Blocks), f.DecodedSize, f.Descriptor.BlockMaxSize.bytes())
}
