package safemath

import "github.com/parsekit-io/parsekit/fault"

// Index returns s[i], reporting failure when i is out of bounds. The index
// type follows the value being checked so counts decoded as any width can be
// used without a prior conversion.
func Index[E any, T Integer](s []E, i T) (E, bool) {
	n, ok := Convert[int](i)
	if !ok || n < 0 || n >= len(s) {
		var zero E
		return zero, false
	}
	return s[n], true
}

// Slice returns s[lo:hi], reporting failure unless 0 <= lo <= hi <= len(s).
func Slice[E any, T Integer](s []E, lo, hi T) ([]E, bool) {
	l, ok := Convert[int](lo)
	if !ok {
		return nil, false
	}
	h, ok := Convert[int](hi)
	if !ok {
		return nil, false
	}
	if l < 0 || l > h || h > len(s) {
		return nil, false
	}
	return s[l:h], true
}

// IndexOrFault returns s[i] or surfaces invalid_value when i is out of bounds.
func IndexOrFault[E any, T Integer](s []E, i T) (E, error) {
	e, ok := Index(s, i)
	if !ok {
		return e, fault.InvalidValuef(fault.NoLocation, "index %v out of bounds (length %d)", i, len(s))
	}
	return e, nil
}

// SliceOrFault returns s[lo:hi] or surfaces invalid_value when the bounds are
// malformed or out of range.
func SliceOrFault[E any, T Integer](s []E, lo, hi T) ([]E, error) {
	sub, ok := Slice(s, lo, hi)
	if !ok {
		return nil, fault.InvalidValuef(fault.NoLocation, "range [%v, %v) out of bounds (length %d)", lo, hi, len(s))
	}
	return sub, nil
}
