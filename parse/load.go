package parse

import (
	"unsafe"

	"github.com/parsekit-io/parsekit/fault"
	"github.com/parsekit-io/parsekit/safemath"
)

// ByteOrder selects the byte order of a multi-byte load. It is orthogonal to
// width and signedness and does not apply to single-byte loads.
type ByteOrder uint8

const (
	LittleEndian ByteOrder = iota
	BigEndian
)

func (bo ByteOrder) String() string {
	if bo == BigEndian {
		return "big"
	}
	return "little"
}

// Unsigned constrains the unsigned destination types of a load.
type Unsigned interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uint | ~uintptr
}

// Signed constrains the signed destination types of a load.
type Signed interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~int
}

// widthOf returns the size of T in bytes.
func widthOf[T safemath.Integer]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// assemble folds up to 8 bytes into a uint64 in the requested byte order.
func assemble(window []byte, bo ByteOrder) uint64 {
	var v uint64
	if bo == BigEndian {
		for _, b := range window {
			v = v<<8 | uint64(b)
		}
	} else {
		for i := len(window) - 1; i >= 0; i-- {
			v = v<<8 | uint64(window[i])
		}
	}
	return v
}

// signExtend interprets the low `bits` bits of v as a two's-complement value.
func signExtend(v uint64, bits int) int64 {
	if bits >= 64 {
		return int64(v)
	}
	m := uint64(1) << (bits - 1)
	return int64((v&(1<<bits-1))^m) - int64(m)
}

// splitWindow separates a byteCount-byte window into its padding and
// significant parts for a target of width bytes. The significant part sits at
// the low-address end for little-endian and the high-address end for
// big-endian; padStart is the absolute offset delta of the first padding
// byte within the window.
func splitWindow(window []byte, width int, bo ByteOrder) (padding, significant []byte, padStart int) {
	if bo == BigEndian {
		return window[:len(window)-width], window[len(window)-width:], 0
	}
	return window[width:], window[:width], width
}

// checkPadding validates that every padding byte equals expected, reporting
// the absolute offset of the first deviating byte. base is the absolute
// offset of the first padding byte.
func checkPadding(padding []byte, expected byte, base int) error {
	for i, b := range padding {
		if b != expected {
			return fault.InvalidValuef(int64(base+i), "invalid padding byte 0x%02X, want 0x%02X", b, expected)
		}
	}
	return nil
}

// LoadUint decodes an unsigned integer of type T from byteCount bytes in the
// given byte order and advances the cursor past them.
//
// byteCount below the width of T zero-extends; byteCount above it is a padded
// load: the value occupies the significant end of the window and every
// padding byte must be 0x00. A deviating padding byte fails with
// invalid_value located at that byte. The cursor is unchanged on any failure.
func LoadUint[T Unsigned](c *Cursor, byteCount int, bo ByteOrder) (T, error) {
	if byteCount <= 0 {
		return 0, fault.InvalidValuef(int64(c.start), "byte count %d must be positive", byteCount)
	}
	window, err := c.take(byteCount)
	if err != nil {
		return 0, err
	}

	width := widthOf[T]()
	var v uint64
	if byteCount <= width {
		v = assemble(window, bo)
	} else {
		padding, significant, padStart := splitWindow(window, width, bo)
		if err := checkPadding(padding, 0x00, c.start+padStart); err != nil {
			return 0, err
		}
		v = assemble(significant, bo)
	}

	c.start += byteCount
	return T(v), nil
}

// LoadInt decodes a signed two's-complement integer of type T from byteCount
// bytes in the given byte order and advances the cursor past them.
//
// byteCount below the width of T sign-extends from the stored width.
// byteCount above it is a padded load: the W-bit value occupies the
// significant end of the window and every padding byte must equal the sign
// extension of that value (0x00 for non-negative, 0xFF for negative). A
// deviating padding byte fails with invalid_value located at that byte. The
// cursor is unchanged on any failure.
func LoadInt[T Signed](c *Cursor, byteCount int, bo ByteOrder) (T, error) {
	if byteCount <= 0 {
		return 0, fault.InvalidValuef(int64(c.start), "byte count %d must be positive", byteCount)
	}
	window, err := c.take(byteCount)
	if err != nil {
		return 0, err
	}

	width := widthOf[T]()
	var v int64
	if byteCount <= width {
		v = signExtend(assemble(window, bo), byteCount*8)
	} else {
		padding, significant, padStart := splitWindow(window, width, bo)
		v = signExtend(assemble(significant, bo), width*8)
		expected := byte(0x00)
		if v < 0 {
			expected = 0xFF
		}
		if err := checkPadding(padding, expected, c.start+padStart); err != nil {
			return 0, err
		}
	}

	c.start += byteCount
	return T(v), nil
}

// loadFixed decodes any integer type at its natural width. At natural width
// truncation and sign extension coincide, so one path serves both
// signednesses.
func loadFixed[T safemath.Integer](c *Cursor, bo ByteOrder) (T, error) {
	width := widthOf[T]()
	window, err := c.take(width)
	if err != nil {
		return 0, err
	}
	v := assemble(window, bo)
	c.start += width
	return T(v), nil
}

// LoadAs decodes a value of storage type S at its natural width and byte
// order, then converts it losslessly to destination type D. A value not
// representable in D fails with invalid_value located at the value's first
// byte; the cursor is unchanged on failure.
func LoadAs[D, S safemath.Integer](c *Cursor, bo ByteOrder) (D, error) {
	width := widthOf[S]()
	window, err := c.take(width)
	if err != nil {
		return 0, err
	}

	var s S
	if ^S(0) < 0 {
		s = S(signExtend(assemble(window, bo), width*8))
	} else {
		s = S(assemble(window, bo))
	}

	d, ok := safemath.Convert[D](s)
	if !ok {
		var zero D
		return 0, fault.Overflow(int64(c.start), s, typeNameOf(zero))
	}

	c.start += width
	return d, nil
}
