package parse

import (
	"unicode/utf8"

	"github.com/parsekit-io/parsekit/fault"
	"github.com/parsekit-io/parsekit/safemath"
)

// Cursor is a non-owning bounded view over an immutable byte region.
//
// A cursor tracks a start offset (the next byte to consume) and an end offset
// (the exclusive read bound), both absolute offsets into the underlying
// region. The invariant 0 <= start <= end <= len(region) holds at all times.
//
// Cursors are obtained from WithBytes and friends, passed by pointer into
// parsing primitives, and must not outlive the adapter callback that produced
// them. They are not safe for concurrent use.
type Cursor struct {
	region []byte
	start  int
	end    int
}

// newCursor builds a cursor spanning the whole region.
func newCursor(region []byte) Cursor {
	return Cursor{region: region, start: 0, end: len(region)}
}

// Remaining returns the number of readable bytes left.
func (c *Cursor) Remaining() int {
	return c.end - c.start
}

// IsEmpty reports whether no readable bytes remain.
func (c *Cursor) IsEmpty() bool {
	return c.start == c.end
}

// RegionLen returns the fixed length of the underlying region. Absolute
// offsets always refer to the region, not the current view.
func (c *Cursor) RegionLen() int {
	return len(c.region)
}

// StartOffset returns the absolute offset of the next byte to consume.
func (c *Cursor) StartOffset() int {
	return c.start
}

// EndOffset returns the absolute exclusive upper bound for reads.
func (c *Cursor) EndOffset() int {
	return c.end
}

// CurrentRange returns the deferred range covering the remaining bytes.
func (c *Cursor) CurrentRange() Range {
	return Range{Lower: c.start, Upper: c.end}
}

// Bytes lends a read-only view of the remaining bytes. The slice aliases the
// underlying region: callers must not mutate it or retain it past the cursor's
// lifetime.
func (c *Cursor) Bytes() []byte {
	return c.region[c.start:c.end]
}

// take bounds-checks the next n bytes and returns them without advancing.
// n must already be known non-negative.
func (c *Cursor) take(n int) ([]byte, error) {
	if n > c.Remaining() {
		return nil, fault.InsufficientDataf(int64(c.start), "need %d bytes, have %d", n, c.Remaining())
	}
	return c.region[c.start : c.start+n], nil
}

// SliceBytes splits off a sub-cursor covering the next n bytes and advances
// this cursor past them. The child shares the region, so absolute offsets in
// the child still refer to the original region. Fails with invalid_value for
// negative n and insufficient_data when n exceeds Remaining; the cursor is
// unchanged on failure.
func (c *Cursor) SliceBytes(n int) (Cursor, error) {
	if n < 0 {
		return Cursor{}, fault.InvalidValuef(int64(c.start), "negative slice length %d", n)
	}
	if n > c.Remaining() {
		return Cursor{}, fault.InsufficientDataf(int64(c.start), "need %d bytes, have %d", n, c.Remaining())
	}
	child := Cursor{region: c.region, start: c.start, end: c.start + n}
	c.start += n
	return child, nil
}

// SliceStride is SliceBytes(stride * count) with the multiplication performed
// in the overflow-safe algebra. Fails with invalid_value on negative arguments
// or overflow, insufficient_data when the product exceeds Remaining.
func (c *Cursor) SliceStride(stride, count int) (Cursor, error) {
	n, err := c.strideBytes(stride, count)
	if err != nil {
		return Cursor{}, err
	}
	return c.SliceBytes(n)
}

// SliceRangeBytes is SliceBytes returning a deferred range instead of a
// cursor. The range carries no borrow of the region and can be seeked back to
// later.
func (c *Cursor) SliceRangeBytes(n int) (Range, error) {
	sub, err := c.SliceBytes(n)
	if err != nil {
		return Range{}, err
	}
	return sub.CurrentRange(), nil
}

// SliceRangeStride is SliceStride returning a deferred range.
func (c *Cursor) SliceRangeStride(stride, count int) (Range, error) {
	sub, err := c.SliceStride(stride, count)
	if err != nil {
		return Range{}, err
	}
	return sub.CurrentRange(), nil
}

// SliceRemainingRange returns the current range and advances the cursor to
// its end. It does not fail.
func (c *Cursor) SliceRemainingRange() Range {
	r := c.CurrentRange()
	c.start = c.end
	return r
}

// SliceUTF8 slices n bytes as SliceBytes and verifies they form valid UTF-8,
// returning the validated text. Invalid bytes fail with user_error located at
// the first offending byte; the cursor is unchanged on failure.
func (c *Cursor) SliceUTF8(n int) (string, error) {
	if n < 0 {
		return "", fault.InvalidValuef(int64(c.start), "negative slice length %d", n)
	}
	window, err := c.take(n)
	if err != nil {
		return "", err
	}
	if i := firstInvalidUTF8(window); i >= 0 {
		return "", fault.New(fault.KindUserError).
			At(int64(c.start+i)).
			Detail("invalid UTF-8 byte 0x%02X", window[i]).
			Build()
	}
	s := string(window)
	c.start += n
	return s, nil
}

// firstInvalidUTF8 returns the index of the first byte that is not part of a
// valid UTF-8 encoding, or -1 when the whole input is valid.
func firstInvalidUTF8(b []byte) int {
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return -1
}

// strideBytes computes stride * count in the overflow-safe algebra and
// validates sign.
func (c *Cursor) strideBytes(stride, count int) (int, error) {
	if stride < 0 || count < 0 {
		return 0, fault.InvalidValuef(int64(c.start), "negative stride %d or count %d", stride, count)
	}
	n, ok := safemath.Mul(stride, count)
	if !ok {
		return 0, fault.InvalidValuef(int64(c.start), "stride %d * count %d overflows", stride, count)
	}
	return n, nil
}
