package parse

import (
	"reflect"

	"github.com/parsekit-io/parsekit/fault"
	"github.com/parsekit-io/parsekit/safemath"
)

// Width-specialized load façades. Every façade is a thin wrapper over the
// generic engine in load.go; the single-byte forms take no byte order.

// U8 decodes one unsigned byte.
func U8(c *Cursor) (uint8, error) {
	return loadFixed[uint8](c, LittleEndian)
}

// I8 decodes one signed byte.
func I8(c *Cursor) (int8, error) {
	return loadFixed[int8](c, LittleEndian)
}

// U16 decodes a 16-bit unsigned integer.
func U16(c *Cursor, bo ByteOrder) (uint16, error) {
	return loadFixed[uint16](c, bo)
}

// U32 decodes a 32-bit unsigned integer.
func U32(c *Cursor, bo ByteOrder) (uint32, error) {
	return loadFixed[uint32](c, bo)
}

// U64 decodes a 64-bit unsigned integer.
func U64(c *Cursor, bo ByteOrder) (uint64, error) {
	return loadFixed[uint64](c, bo)
}

// I16 decodes a 16-bit signed integer.
func I16(c *Cursor, bo ByteOrder) (int16, error) {
	return loadFixed[int16](c, bo)
}

// I32 decodes a 32-bit signed integer.
func I32(c *Cursor, bo ByteOrder) (int32, error) {
	return loadFixed[int32](c, bo)
}

// I64 decodes a 64-bit signed integer.
func I64(c *Cursor, bo ByteOrder) (int64, error) {
	return loadFixed[int64](c, bo)
}

// Uint decodes a platform-width unsigned integer.
func Uint(c *Cursor, bo ByteOrder) (uint, error) {
	return loadFixed[uint](c, bo)
}

// Int decodes a platform-width signed integer.
func Int(c *Cursor, bo ByteOrder) (int, error) {
	return loadFixed[int](c, bo)
}

// Enumeration is the raw-representable contract: an integer-backed value type
// that knows which of its values are accepted.
type Enumeration interface {
	safemath.Integer
	Valid() bool
}

// Enum decodes the backing integer of E at its natural width and validates
// membership via E's Valid method. An unlisted value fails with invalid_value
// located at the value's first byte; the cursor is unchanged on failure.
func Enum[E Enumeration](c *Cursor, bo ByteOrder) (E, error) {
	start := c.start
	v, err := loadFixed[E](c, bo)
	if err != nil {
		return v, err
	}
	if !v.Valid() {
		c.start = start
		var zero E
		return zero, fault.InvalidValuef(int64(start), "value %v is not a valid %s", v, typeNameOf(zero))
	}
	return v, nil
}

// EnumFunc is Enum with an explicit validator, for backing types that cannot
// carry a method.
func EnumFunc[E safemath.Integer](c *Cursor, bo ByteOrder, valid func(E) bool) (E, error) {
	start := c.start
	v, err := loadFixed[E](c, bo)
	if err != nil {
		return v, err
	}
	if !valid(v) {
		c.start = start
		var zero E
		return zero, fault.InvalidValuef(int64(start), "value %v is not a valid %s", v, typeNameOf(zero))
	}
	return v, nil
}

// typeNameOf returns "nil" for nil values, avoiding reflect.TypeOf(nil) panic.
func typeNameOf(value any) string {
	if value == nil {
		return "nil"
	}
	return reflect.TypeOf(value).String()
}
