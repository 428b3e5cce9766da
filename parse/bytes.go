package parse

import "github.com/parsekit-io/parsekit/fault"

// BytesRemaining copies all remaining bytes and advances the cursor to empty.
// It does not fail. The returned slice is owned by the caller.
func BytesRemaining(c *Cursor) []byte {
	out := make([]byte, c.Remaining())
	copy(out, c.Bytes())
	c.start = c.end
	return out
}

// BytesCount copies exactly n bytes and advances the cursor past them. Fails
// with invalid_value for negative n and insufficient_data when fewer than n
// bytes remain; the cursor is unchanged on failure.
func BytesCount(c *Cursor, n int) ([]byte, error) {
	if n < 0 {
		return nil, fault.InvalidValuef(int64(c.start), "negative byte count %d", n)
	}
	window, err := c.take(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, window)
	c.start += n
	return out, nil
}
