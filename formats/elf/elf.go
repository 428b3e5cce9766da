// Package elf parses ELF object file headers: the ident block, the file
// header in both classes and endiannesses, and the program and section
// header tables.
package elf

import (
	"fmt"

	"github.com/parsekit-io/parsekit/fault"
	"github.com/parsekit-io/parsekit/parse"
	"github.com/parsekit-io/parsekit/safemath"
)

// Class is the file class from the ident block.
type Class uint8

const (
	Class32 Class = 1
	Class64 Class = 2
)

func (c Class) Valid() bool { return c == Class32 || c == Class64 }

// Data is the data encoding from the ident block.
type Data uint8

const (
	Data2LSB Data = 1
	Data2MSB Data = 2
)

func (d Data) Valid() bool { return d == Data2LSB || d == Data2MSB }

func (d Data) byteOrder() parse.ByteOrder {
	if d == Data2MSB {
		return parse.BigEndian
	}
	return parse.LittleEndian
}

// Type is the object file type.
type Type uint16

const (
	TypeNone Type = 0
	TypeRel  Type = 1
	TypeExec Type = 2
	TypeDyn  Type = 3
	TypeCore Type = 4
)

func (t Type) Valid() bool { return t <= TypeCore || t >= 0xFE00 }

// Header is the decoded ELF file header. Offsets and addresses are widened
// to 64 bits for both classes.
type Header struct {
	Class     Class
	Data      Data
	OSABI     uint8
	Type      Type
	Machine   uint16
	Entry     uint64
	PhOff     uint64
	ShOff     uint64
	Flags     uint32
	PhEntSize uint16
	PhNum     uint16
	ShEntSize uint16
	ShNum     uint16
	ShStrNdx  uint16
}

// ProgHeader is one program header table entry.
type ProgHeader struct {
	Type   uint32
	Flags  uint32
	Offset uint64
	VAddr  uint64
	FileSz uint64
	MemSz  uint64
	Align  uint64
}

// SectionHeader is one section header table entry.
type SectionHeader struct {
	Name      string
	NameOff   uint32
	Type      uint32
	Flags     uint64
	Addr      uint64
	Offset    uint64
	Size      uint64
	Link      uint32
	Info      uint32
	AddrAlign uint64
	EntSize   uint64
}

// File is the parsed structure of an ELF object.
type File struct {
	Header   Header
	Progs    []ProgHeader
	Sections []SectionHeader
}

var magic = []byte{0x7F, 'E', 'L', 'F'}

// Parse decodes the header and header tables of an ELF object from data.
func Parse(data []byte) (*File, error) {
	return parse.WithBytes(data, parseFile)
}

func parseFile(c *parse.Cursor) (*File, error) {
	h, err := parseHeader(c)
	if err != nil {
		return nil, err
	}
	f := &File{Header: h}
	bo := h.Data.byteOrder()

	if h.PhNum > 0 {
		f.Progs, err = parseTable(c, h.PhOff, h.PhEntSize, h.PhNum,
			expectedPhEntSize(h.Class), func(c *parse.Cursor) (ProgHeader, error) {
				return parseProg(c, h.Class, bo)
			})
		if err != nil {
			return nil, err
		}
	}
	if h.ShNum > 0 {
		f.Sections, err = parseTable(c, h.ShOff, h.ShEntSize, h.ShNum,
			expectedShEntSize(h.Class), func(c *parse.Cursor) (SectionHeader, error) {
				return parseSection(c, h.Class, bo)
			})
		if err != nil {
			return nil, err
		}
		if err := resolveNames(c, f); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func parseHeader(c *parse.Cursor) (Header, error) {
	var h Header

	m, err := parse.BytesCount(c, 4)
	if err != nil {
		return h, err
	}
	for i := range magic {
		if m[i] != magic[i] {
			return h, fault.InvalidValuef(int64(i), "not an ELF magic: % X", m)
		}
	}

	if h.Class, err = parse.Enum[Class](c, parse.LittleEndian); err != nil {
		return h, err
	}
	if h.Data, err = parse.Enum[Data](c, parse.LittleEndian); err != nil {
		return h, err
	}
	if _, err = parse.EnumFunc(c, parse.LittleEndian, func(v uint8) bool { return v == 1 }); err != nil {
		return h, err // EV_CURRENT is the only defined ident version
	}
	if h.OSABI, err = parse.U8(c); err != nil {
		return h, err
	}
	if err = c.SeekForward(8); err != nil { // abiversion + padding
		return h, err
	}

	bo := h.Data.byteOrder()
	if h.Type, err = parse.Enum[Type](c, bo); err != nil {
		return h, err
	}
	if h.Machine, err = parse.U16(c, bo); err != nil {
		return h, err
	}
	if _, err = parse.EnumFunc(c, bo, func(v uint32) bool { return v == 1 }); err != nil {
		return h, err
	}

	if h.Class == Class64 {
		if h.Entry, err = parse.U64(c, bo); err != nil {
			return h, err
		}
		if h.PhOff, err = parse.U64(c, bo); err != nil {
			return h, err
		}
		if h.ShOff, err = parse.U64(c, bo); err != nil {
			return h, err
		}
	} else {
		if h.Entry, err = parse.LoadAs[uint64, uint32](c, bo); err != nil {
			return h, err
		}
		if h.PhOff, err = parse.LoadAs[uint64, uint32](c, bo); err != nil {
			return h, err
		}
		if h.ShOff, err = parse.LoadAs[uint64, uint32](c, bo); err != nil {
			return h, err
		}
	}

	if h.Flags, err = parse.U32(c, bo); err != nil {
		return h, err
	}
	if _, err = parse.U16(c, bo); err != nil { // ehsize
		return h, err
	}
	if h.PhEntSize, err = parse.U16(c, bo); err != nil {
		return h, err
	}
	if h.PhNum, err = parse.U16(c, bo); err != nil {
		return h, err
	}
	if h.ShEntSize, err = parse.U16(c, bo); err != nil {
		return h, err
	}
	if h.ShNum, err = parse.U16(c, bo); err != nil {
		return h, err
	}
	if h.ShStrNdx, err = parse.U16(c, bo); err != nil {
		return h, err
	}
	return h, nil
}

func expectedPhEntSize(class Class) int {
	if class == Class64 {
		return 56
	}
	return 32
}

func expectedShEntSize(class Class) int {
	if class == Class64 {
		return 64
	}
	return 40
}

// parseTable seeks to a header table and decodes count entries of entSize
// bytes each via SliceStride, so a hostile count cannot wrap the size
// computation.
func parseTable[T any](c *parse.Cursor, off uint64, entSize, count uint16, wantEntSize int, p parse.Parser[T]) ([]T, error) {
	if int(entSize) != wantEntSize {
		return nil, fault.InvalidValuef(fault.NoLocation, "entry size %d, want %d", entSize, wantEntSize)
	}
	offset, err := safemath.ConvertOrFault[int](off)
	if err != nil {
		return nil, fault.InvalidValuef(fault.NoLocation, "table offset %d unrepresentable", off)
	}

	table, err := c.SeekingAbsolute(offset)
	if err != nil {
		return nil, err
	}
	window, err := table.SliceStride(int(entSize), int(count))
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, count)
	for i := 0; i < int(count); i++ {
		entry, err := window.SliceBytes(int(entSize))
		if err != nil {
			return nil, err
		}
		v, err := p(&entry)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func parseProg(c *parse.Cursor, class Class, bo parse.ByteOrder) (ProgHeader, error) {
	var p ProgHeader
	var err error

	if p.Type, err = parse.U32(c, bo); err != nil {
		return p, err
	}
	if class == Class64 {
		if p.Flags, err = parse.U32(c, bo); err != nil {
			return p, err
		}
		if p.Offset, err = parse.U64(c, bo); err != nil {
			return p, err
		}
		if p.VAddr, err = parse.U64(c, bo); err != nil {
			return p, err
		}
		if err = c.SeekForward(8); err != nil { // paddr
			return p, err
		}
		if p.FileSz, err = parse.U64(c, bo); err != nil {
			return p, err
		}
		if p.MemSz, err = parse.U64(c, bo); err != nil {
			return p, err
		}
		if p.Align, err = parse.U64(c, bo); err != nil {
			return p, err
		}
		return p, nil
	}

	if p.Offset, err = parse.LoadAs[uint64, uint32](c, bo); err != nil {
		return p, err
	}
	if p.VAddr, err = parse.LoadAs[uint64, uint32](c, bo); err != nil {
		return p, err
	}
	if err = c.SeekForward(4); err != nil { // paddr
		return p, err
	}
	if p.FileSz, err = parse.LoadAs[uint64, uint32](c, bo); err != nil {
		return p, err
	}
	if p.MemSz, err = parse.LoadAs[uint64, uint32](c, bo); err != nil {
		return p, err
	}
	if p.Flags, err = parse.U32(c, bo); err != nil {
		return p, err
	}
	if p.Align, err = parse.LoadAs[uint64, uint32](c, bo); err != nil {
		return p, err
	}
	return p, nil
}

func parseSection(c *parse.Cursor, class Class, bo parse.ByteOrder) (SectionHeader, error) {
	var s SectionHeader
	var err error

	if s.NameOff, err = parse.U32(c, bo); err != nil {
		return s, err
	}
	if s.Type, err = parse.U32(c, bo); err != nil {
		return s, err
	}
	if class == Class64 {
		if s.Flags, err = parse.U64(c, bo); err != nil {
			return s, err
		}
		if s.Addr, err = parse.U64(c, bo); err != nil {
			return s, err
		}
		if s.Offset, err = parse.U64(c, bo); err != nil {
			return s, err
		}
		if s.Size, err = parse.U64(c, bo); err != nil {
			return s, err
		}
	} else {
		if s.Flags, err = parse.LoadAs[uint64, uint32](c, bo); err != nil {
			return s, err
		}
		if s.Addr, err = parse.LoadAs[uint64, uint32](c, bo); err != nil {
			return s, err
		}
		if s.Offset, err = parse.LoadAs[uint64, uint32](c, bo); err != nil {
			return s, err
		}
		if s.Size, err = parse.LoadAs[uint64, uint32](c, bo); err != nil {
			return s, err
		}
	}
	if s.Link, err = parse.U32(c, bo); err != nil {
		return s, err
	}
	if s.Info, err = parse.U32(c, bo); err != nil {
		return s, err
	}
	if class == Class64 {
		if s.AddrAlign, err = parse.U64(c, bo); err != nil {
			return s, err
		}
		if s.EntSize, err = parse.U64(c, bo); err != nil {
			return s, err
		}
	} else {
		if s.AddrAlign, err = parse.LoadAs[uint64, uint32](c, bo); err != nil {
			return s, err
		}
		if s.EntSize, err = parse.LoadAs[uint64, uint32](c, bo); err != nil {
			return s, err
		}
	}
	return s, nil
}

// resolveNames reads each section's name out of the section name string
// table, bounds-checked end to end.
func resolveNames(c *parse.Cursor, f *File) error {
	idx := f.Header.ShStrNdx
	if idx == 0 {
		return nil
	}
	strtab, err := safemath.IndexOrFault(f.Sections, idx)
	if err != nil {
		return fault.InvalidValuef(fault.NoLocation, "shstrndx %d out of range", idx)
	}

	tabOff, err := safemath.ConvertOrFault[int](strtab.Offset)
	if err != nil {
		return err
	}
	tabLen, err := safemath.ConvertOrFault[int](strtab.Size)
	if err != nil {
		return err
	}
	upper, err := safemath.AddOrFault(tabOff, tabLen)
	if err != nil {
		return err
	}

	tab, err := c.SeekingRange(parse.Range{Lower: tabOff, Upper: upper})
	if err != nil {
		return err
	}

	for i := range f.Sections {
		name := tab
		off, cErr := safemath.ConvertOrFault[int](f.Sections[i].NameOff)
		if cErr != nil {
			return cErr
		}
		if err := name.SeekForward(off); err != nil {
			return fault.InvalidValuef(fault.NoLocation, "name offset %d outside string table for section %d", off, i)
		}
		s, err := parse.StringNulTerminated(&name)
		if err != nil {
			return fault.InvalidValuef(fault.NoLocation, "unterminated name for section %d", i)
		}
		f.Sections[i].Name = s
	}
	return nil
}

func (f *File) String() string {
	return fmt.Sprintf("ELF class=%d data=%d type=%d machine=%d progs=%d sections=%d",
		f.Header.Class, f.Header.Data, f.Header.Type, f.Header.Machine, len(f.Progs), len(f.Sections))
}
