package parse

import "math"

// Floating-point loads accept only the natural width of the destination:
// reconstructing a float from fewer bytes has no canonical meaning, so
// narrower stored widths are rejected by construction (no byte-count
// variants exist).

// F32 decodes a 32-bit IEEE 754 value.
func F32(c *Cursor, bo ByteOrder) (float32, error) {
	bits, err := loadFixed[uint32](c, bo)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(bits), nil
}

// F64 decodes a 64-bit IEEE 754 value.
func F64(c *Cursor, bo ByteOrder) (float64, error) {
	bits, err := loadFixed[uint64](c, bo)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(bits), nil
}
