package parse

import "github.com/parsekit-io/parsekit/fault"

// Byte-source adapters. WithBytes and WithString are the sanctioned ways to
// obtain a cursor: the cursor's lifetime is the callback's scope and it must
// not be retained beyond it. Errors returned by the body that are not already
// faults are wrapped as user_error at the position the body was entered.

// WithBytes derives a cursor over data, invokes body with it, and returns the
// body's value or fault.
func WithBytes[T any](data []byte, body func(*Cursor) (T, error)) (T, error) {
	c := newCursor(data)
	v, err := body(&c)
	if err != nil {
		var zero T
		return zero, fault.UserError(0, err)
	}
	return v, nil
}

// WithString is WithBytes over the bytes of a string.
func WithString[T any](s string, body func(*Cursor) (T, error)) (T, error) {
	return WithBytes([]byte(s), body)
}

// WithBytesRange derives a cursor over data positioned to the deferred range
// r, invokes body, and on success updates r in place to the cursor's final
// range. The range is validated against the region at entry.
func WithBytesRange[T any](data []byte, r *Range, body func(*Cursor) (T, error)) (T, error) {
	c := newCursor(data)
	if err := c.SeekRange(*r); err != nil {
		var zero T
		return zero, err
	}
	v, err := body(&c)
	if err != nil {
		var zero T
		return zero, fault.UserError(int64(r.Lower), err)
	}
	*r = c.CurrentRange()
	return v, nil
}

// FromBytes runs a Parser over the whole of data. The parse need not consume
// every byte; pair with Cursor.IsEmpty in the parser when it must.
func FromBytes[T any](data []byte, p Parser[T]) (T, error) {
	return WithBytes(data, func(c *Cursor) (T, error) {
		return p(c)
	})
}
