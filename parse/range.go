package parse

// Range is a deferred range: a pair of absolute byte offsets into a region,
// carrying no borrow of the region itself. A range produced by one slicing
// operation can be handed off and seeked back to later; it is validated
// against the region bounds at seek time.
type Range struct {
	Lower int
	Upper int
}

// Len returns the number of bytes the range spans.
func (r Range) Len() int {
	return r.Upper - r.Lower
}

// IsEmpty reports whether the range spans no bytes.
func (r Range) IsEmpty() bool {
	return r.Lower == r.Upper
}
