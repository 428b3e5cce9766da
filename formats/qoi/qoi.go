// Package qoi parses and fully decodes QOI images (the "Quite OK Image"
// format): a 14-byte header, a chunk stream of eight op kinds, and an 8-byte
// end marker.
package qoi

import (
	"fmt"

	"github.com/parsekit-io/parsekit/fault"
	"github.com/parsekit-io/parsekit/parse"
	"github.com/parsekit-io/parsekit/safemath"
)

// Channels is the header channel count.
type Channels uint8

const (
	RGB  Channels = 3
	RGBA Channels = 4
)

func (ch Channels) Valid() bool { return ch == RGB || ch == RGBA }

// Colorspace is the header colorspace tag.
type Colorspace uint8

const (
	SRGB   Colorspace = 0
	Linear Colorspace = 1
)

func (cs Colorspace) Valid() bool { return cs == SRGB || cs == Linear }

// Header is the decoded QOI header.
type Header struct {
	Width      uint32
	Height     uint32
	Channels   Channels
	Colorspace Colorspace
}

// Pixel is one decoded RGBA pixel.
type Pixel struct {
	R, G, B, A uint8
}

// Image is a fully decoded QOI image in row-major order.
type Image struct {
	Header Header
	Pixels []Pixel
}

const (
	opIndex = 0x00
	opDiff  = 0x40
	opLuma  = 0x80
	opRun   = 0xC0
	opRGB   = 0xFE
	opRGBA  = 0xFF

	maxPixels = 1 << 26 // 64M pixels bounds hostile dimensions
)

var endMarker = []byte{0, 0, 0, 0, 0, 0, 0, 1}

// Parse decodes a complete QOI image from data.
func Parse(data []byte) (*Image, error) {
	return parse.WithBytes(data, parseImage)
}

func parseImage(c *parse.Cursor) (*Image, error) {
	h, err := parseHeader(c)
	if err != nil {
		return nil, err
	}

	count, err := safemath.MulOrFault(int64(h.Width), int64(h.Height))
	if err != nil {
		return nil, err
	}
	if count > maxPixels {
		return nil, fault.InvalidValuef(4, "%dx%d exceeds pixel limit", h.Width, h.Height)
	}

	// The end marker terminates the stream; everything before it is ops.
	marker, err := c.SeekingFromEnd(len(endMarker))
	if err != nil {
		return nil, err
	}
	for i, b := range marker.Bytes() {
		if b != endMarker[i] {
			return nil, fault.InvalidValuef(int64(marker.StartOffset()+i), "bad end marker byte 0x%02X", b)
		}
	}
	ops, err := c.SliceBytes(c.Remaining() - len(endMarker))
	if err != nil {
		return nil, err
	}

	img := &Image{Header: h, Pixels: make([]Pixel, 0, count)}
	if err := decodeOps(&ops, img, count); err != nil {
		return nil, err
	}
	if int64(len(img.Pixels)) != count {
		return nil, fault.InvalidValuef(int64(ops.StartOffset()),
			"op stream produced %d pixels, want %d", len(img.Pixels), count)
	}
	return img, nil
}

func parseHeader(c *parse.Cursor) (Header, error) {
	var h Header

	m, err := parse.BytesCount(c, 4)
	if err != nil {
		return h, err
	}
	if string(m) != "qoif" {
		return h, fault.InvalidValuef(0, "not a QOI magic: %q", m)
	}

	if h.Width, err = parse.U32(c, parse.BigEndian); err != nil {
		return h, err
	}
	if h.Height, err = parse.U32(c, parse.BigEndian); err != nil {
		return h, err
	}
	if h.Width == 0 || h.Height == 0 {
		return h, fault.InvalidValuef(4, "invalid dimensions %dx%d", h.Width, h.Height)
	}
	if h.Channels, err = parse.Enum[Channels](c, parse.BigEndian); err != nil {
		return h, err
	}
	h.Colorspace, err = parse.Enum[Colorspace](c, parse.BigEndian)
	return h, err
}

// decodeOps runs the op stream. Every op consumes at least one byte, so the
// loop makes progress on any input.
func decodeOps(c *parse.Cursor, img *Image, limit int64) error {
	var index [64]Pixel
	prev := Pixel{A: 255}

	emit := func(p Pixel, n int64, at int) error {
		if int64(len(img.Pixels))+n > limit {
			return fault.InvalidValue(int64(at), "op stream overruns the pixel count")
		}
		for ; n > 0; n-- {
			img.Pixels = append(img.Pixels, p)
		}
		index[hash(p)] = p
		prev = p
		return nil
	}

	for !c.IsEmpty() {
		at := c.StartOffset()
		tag, err := parse.U8(c)
		if err != nil {
			return err
		}

		switch {
		case tag == opRGB:
			rgb, err := parse.BytesCount(c, 3)
			if err != nil {
				return err
			}
			if err := emit(Pixel{rgb[0], rgb[1], rgb[2], prev.A}, 1, at); err != nil {
				return err
			}

		case tag == opRGBA:
			rgba, err := parse.BytesCount(c, 4)
			if err != nil {
				return err
			}
			if err := emit(Pixel{rgba[0], rgba[1], rgba[2], rgba[3]}, 1, at); err != nil {
				return err
			}

		case tag&0xC0 == opIndex:
			if err := emit(index[tag&0x3F], 1, at); err != nil {
				return err
			}

		case tag&0xC0 == opDiff:
			p := Pixel{
				R: prev.R + (tag>>4)&0x03 - 2,
				G: prev.G + (tag>>2)&0x03 - 2,
				B: prev.B + tag&0x03 - 2,
				A: prev.A,
			}
			if err := emit(p, 1, at); err != nil {
				return err
			}

		case tag&0xC0 == opLuma:
			dg := (tag & 0x3F) - 32
			rb, err := parse.U8(c)
			if err != nil {
				return err
			}
			p := Pixel{
				R: prev.R + dg + (rb>>4)&0x0F - 8,
				G: prev.G + dg,
				B: prev.B + dg + rb&0x0F - 8,
				A: prev.A,
			}
			if err := emit(p, 1, at); err != nil {
				return err
			}

		default: // opRun
			run := int64(tag&0x3F) + 1
			if err := emit(prev, run, at); err != nil {
				return err
			}
		}
	}
	return nil
}

func hash(p Pixel) int {
	return (int(p.R)*3 + int(p.G)*5 + int(p.B)*7 + int(p.A)*11) % 64
}

func (img *Image) String() string {
	return fmt.Sprintf("QOI %dx%d channels=%d colorspace=%d",
		img.Header.Width, img.Header.Height, img.Header.Channels, img.Header.Colorspace)
}
