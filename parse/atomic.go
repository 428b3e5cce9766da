package parse

// Atomic runs body on a clone of the cursor and commits the clone's position
// back iff body returns nil. On failure the original cursor is unchanged and
// body's error is returned. This is the sanctioned recovery primitive for
// composite parses that need all-or-nothing consumption.
func Atomic[T any](c *Cursor, body func(*Cursor) (T, error)) (T, error) {
	clone := *c
	v, err := body(&clone)
	if err != nil {
		var zero T
		return zero, err
	}
	*c = clone
	return v, nil
}

// Atomically is Atomic for bodies that produce no value.
func (c *Cursor) Atomically(body func(*Cursor) error) error {
	clone := *c
	if err := body(&clone); err != nil {
		return err
	}
	*c = clone
	return nil
}
