// Package png parses the structure of PNG images: the signature, the chunk
// sequence with CRC validation, the IHDR fields, and a decompression check of
// the IDAT stream.
package png

import (
	"bytes"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/parsekit-io/parsekit/fault"
	"github.com/parsekit-io/parsekit/parse"
	"github.com/parsekit-io/parsekit/safemath"
)

var signature = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}

// ColorType is the IHDR color type field.
type ColorType uint8

const (
	Grayscale      ColorType = 0
	Truecolor      ColorType = 2
	Indexed        ColorType = 3
	GrayscaleAlpha ColorType = 4
	TruecolorAlpha ColorType = 6
)

func (t ColorType) Valid() bool {
	switch t {
	case Grayscale, Truecolor, Indexed, GrayscaleAlpha, TruecolorAlpha:
		return true
	}
	return false
}

// channels returns the number of samples per pixel for the color type.
func (t ColorType) channels() int {
	switch t {
	case Grayscale:
		return 1
	case GrayscaleAlpha:
		return 2
	case Truecolor:
		return 3
	case TruecolorAlpha:
		return 4
	default: // Indexed
		return 1
	}
}

// Interlace is the IHDR interlace method field.
type Interlace uint8

const (
	NoInterlace    Interlace = 0
	Adam7Interlace Interlace = 1
)

func (i Interlace) Valid() bool {
	return i == NoInterlace || i == Adam7Interlace
}

// Header is the decoded IHDR chunk.
type Header struct {
	Width     uint32
	Height    uint32
	BitDepth  uint8
	ColorType ColorType
	Interlace Interlace
}

// Chunk is one chunk of the file. Data aliases the input buffer.
type Chunk struct {
	Type string
	Data []byte
}

// File is the parsed structure of a PNG image.
type File struct {
	Header Header
	Chunks []Chunk
}

// Parse decodes the structure of a PNG image from data. Chunk CRCs are
// verified; the IDAT stream of a non-interlaced image is inflated and its
// length checked against the dimensions.
func Parse(data []byte) (*File, error) {
	return parse.WithBytes(data, parseFile)
}

func parseFile(c *parse.Cursor) (*File, error) {
	sig, err := parse.BytesCount(c, len(signature))
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(sig, signature) {
		return nil, fault.InvalidValue(0, "not a PNG signature")
	}

	chunks, err := parse.SequenceRemaining(c, parseChunk)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 || chunks[0].Type != "IHDR" {
		return nil, fault.InvalidValue(int64(len(signature)), "first chunk must be IHDR")
	}
	if chunks[len(chunks)-1].Type != "IEND" {
		return nil, fault.InvalidValue(fault.NoLocation, "missing IEND chunk")
	}

	f := &File{Chunks: chunks}
	f.Header, err = parse.FromBytes(chunks[0].Data, parseHeader)
	if err != nil {
		return nil, err
	}

	if f.Header.Interlace == NoInterlace {
		if err := checkImageData(f); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func parseChunk(c *parse.Cursor) (Chunk, error) {
	at := c.StartOffset()

	length, err := parse.U32(c, parse.BigEndian)
	if err != nil {
		return Chunk{}, err
	}
	n, err := safemath.ConvertOrFault[int](length)
	if err != nil {
		return Chunk{}, fault.InvalidValuef(int64(at), "chunk length %d unrepresentable", length)
	}

	body, err := c.SliceBytes(n + 4) // type + data
	if err != nil {
		return Chunk{}, err
	}
	typeAndData := body.Bytes()

	crc, err := parse.U32(c, parse.BigEndian)
	if err != nil {
		return Chunk{}, err
	}
	if got := crc32.ChecksumIEEE(typeAndData); got != crc {
		return Chunk{}, fault.InvalidValuef(int64(at+4+n+4), "chunk CRC mismatch: %#08x != %#08x", got, crc)
	}

	typ := typeAndData[:4]
	for _, b := range typ {
		if (b < 'A' || b > 'Z') && (b < 'a' || b > 'z') {
			return Chunk{}, fault.InvalidValuef(int64(at+4), "invalid chunk type %q", typ)
		}
	}
	return Chunk{Type: string(typ), Data: typeAndData[4:]}, nil
}

func parseHeader(c *parse.Cursor) (Header, error) {
	var h Header
	var err error

	if h.Width, err = parse.U32(c, parse.BigEndian); err != nil {
		return h, err
	}
	if h.Height, err = parse.U32(c, parse.BigEndian); err != nil {
		return h, err
	}
	if h.Width == 0 || h.Height == 0 || h.Width > 1<<31-1 || h.Height > 1<<31-1 {
		return h, fault.InvalidValuef(0, "invalid dimensions %dx%d", h.Width, h.Height)
	}

	if h.BitDepth, err = parse.U8(c); err != nil {
		return h, err
	}
	if h.ColorType, err = parse.Enum[ColorType](c, parse.BigEndian); err != nil {
		return h, err
	}
	if !validDepth(h.ColorType, h.BitDepth) {
		return h, fault.InvalidValuef(8, "bit depth %d invalid for color type %d", h.BitDepth, h.ColorType)
	}

	// Compression and filter methods have a single defined value each.
	if _, err = parse.EnumFunc(c, parse.BigEndian, func(v uint8) bool { return v == 0 }); err != nil {
		return h, err
	}
	if _, err = parse.EnumFunc(c, parse.BigEndian, func(v uint8) bool { return v == 0 }); err != nil {
		return h, err
	}
	if h.Interlace, err = parse.Enum[Interlace](c, parse.BigEndian); err != nil {
		return h, err
	}
	if !c.IsEmpty() {
		return h, fault.InvalidValuef(int64(c.StartOffset()), "%d trailing bytes after IHDR", c.Remaining())
	}
	return h, nil
}

func validDepth(t ColorType, depth uint8) bool {
	switch t {
	case Grayscale:
		return depth == 1 || depth == 2 || depth == 4 || depth == 8 || depth == 16
	case Indexed:
		return depth == 1 || depth == 2 || depth == 4 || depth == 8
	default:
		return depth == 8 || depth == 16
	}
}

// checkImageData inflates the concatenated IDAT stream and verifies the
// decompressed size matches the scanline layout the header promises.
func checkImageData(f *File) error {
	var compressed []byte
	found := false
	for _, ch := range f.Chunks {
		if ch.Type == "IDAT" {
			compressed = append(compressed, ch.Data...)
			found = true
		}
	}
	if !found {
		return fault.InvalidValue(fault.NoLocation, "missing IDAT chunk")
	}

	want, err := rawImageSize(f.Header)
	if err != nil {
		return err
	}

	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return fault.New(fault.KindInvalidValue).
			Cause(err).
			Detail("IDAT stream is not valid zlib").
			Build()
	}
	defer zr.Close()

	got, err := io.Copy(io.Discard, io.LimitReader(zr, want+1))
	if err != nil {
		return fault.New(fault.KindInvalidValue).
			Cause(err).
			Detail("IDAT stream truncated or corrupt").
			Build()
	}
	if got != want {
		return fault.InvalidValuef(fault.NoLocation, "IDAT inflates to %d bytes, want %d", got, want)
	}
	return nil
}

// rawImageSize computes height * (1 + rowBytes) in the overflow-safe algebra.
func rawImageSize(h Header) (int64, error) {
	bitsPerPixel, err := safemath.MulOrFault(int64(h.ColorType.channels()), int64(h.BitDepth))
	if err != nil {
		return 0, err
	}
	rowBits, err := safemath.MulOrFault(int64(h.Width), bitsPerPixel)
	if err != nil {
		return 0, err
	}
	rowBytes := (rowBits + 7) / 8
	perRow, err := safemath.AddOrFault(rowBytes, 1) // filter byte
	if err != nil {
		return 0, err
	}
	return safemath.MulOrFault(int64(h.Height), perRow)
}

func (f *File) String() string {
	return fmt.Sprintf("PNG %dx%d depth=%d color=%d chunks=%d",
		f.Header.Width, f.Header.Height, f.Header.BitDepth, f.Header.ColorType, len(f.Chunks))
}
