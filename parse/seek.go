package parse

import "github.com/parsekit-io/parsekit/fault"

// Seeking. Relative seeks only move forward; retrograde navigation goes
// through SeekAbsolute or SeekRange. Every failed seek leaves the cursor
// unchanged and reports invalid_value at the current start offset.

// SeekForward moves the start offset forward by k bytes. Requires
// 0 <= k <= Remaining; the end offset is unchanged.
func (c *Cursor) SeekForward(k int) error {
	if k < 0 || k > c.Remaining() {
		return fault.InvalidValuef(int64(c.start), "relative seek %d outside [0, %d]", k, c.Remaining())
	}
	c.start += k
	return nil
}

// SeekFromEnd positions the start offset k bytes before the end offset.
// Requires 0 <= k <= Remaining; the end offset is unchanged.
func (c *Cursor) SeekFromEnd(k int) error {
	if k < 0 || k > c.Remaining() {
		return fault.InvalidValuef(int64(c.start), "seek %d from end outside [0, %d]", k, c.Remaining())
	}
	c.start = c.end - k
	return nil
}

// SeekAbsolute sets the start offset to k and resets the end offset to the
// region length. Requires 0 <= k <= RegionLen. This is the only seek that may
// move the end offset forward.
func (c *Cursor) SeekAbsolute(k int) error {
	if k < 0 || k > len(c.region) {
		return fault.InvalidValuef(int64(c.start), "absolute seek %d outside [0, %d]", k, len(c.region))
	}
	c.start = k
	c.end = len(c.region)
	return nil
}

// SeekRange positions the cursor to a deferred range. Requires
// 0 <= r.Lower <= r.Upper <= RegionLen.
func (c *Cursor) SeekRange(r Range) error {
	if r.Lower < 0 || r.Lower > r.Upper || r.Upper > len(c.region) {
		return fault.InvalidValuef(int64(c.start), "range [%d, %d) outside region of %d bytes", r.Lower, r.Upper, len(c.region))
	}
	c.start = r.Lower
	c.end = r.Upper
	return nil
}

// By-copy variants: each returns a repositioned copy, leaving the receiver
// untouched.

// SeekingForward returns a copy of the cursor advanced by k bytes.
func (c *Cursor) SeekingForward(k int) (Cursor, error) {
	copied := *c
	if err := copied.SeekForward(k); err != nil {
		return Cursor{}, err
	}
	return copied, nil
}

// SeekingFromEnd returns a copy of the cursor positioned k bytes before the
// end offset.
func (c *Cursor) SeekingFromEnd(k int) (Cursor, error) {
	copied := *c
	if err := copied.SeekFromEnd(k); err != nil {
		return Cursor{}, err
	}
	return copied, nil
}

// SeekingAbsolute returns a copy of the cursor positioned at absolute offset
// k with the end offset reset to the region length.
func (c *Cursor) SeekingAbsolute(k int) (Cursor, error) {
	copied := *c
	if err := copied.SeekAbsolute(k); err != nil {
		return Cursor{}, err
	}
	return copied, nil
}

// SeekingRange returns a copy of the cursor positioned to the deferred range.
func (c *Cursor) SeekingRange(r Range) (Cursor, error) {
	copied := *c
	if err := copied.SeekRange(r); err != nil {
		return Cursor{}, err
	}
	return copied, nil
}
