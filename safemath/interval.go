package safemath

import (
	"reflect"

	"github.com/parsekit-io/parsekit/fault"
)

// typeName returns "nil" for nil values, avoiding reflect.TypeOf(nil) panic.
func typeName(value any) string {
	if value == nil {
		return "nil"
	}
	return reflect.TypeOf(value).String()
}

// Interval is a half-open interval [Lower, Upper) with Lower <= Upper.
type Interval[T Integer] struct {
	Lower T
	Upper T
}

// Len returns the number of values in the interval.
func (iv Interval[T]) Len() T {
	return iv.Upper - iv.Lower
}

// Contains reports whether v lies in [Lower, Upper).
func (iv Interval[T]) Contains(v T) bool {
	return v >= iv.Lower && v < iv.Upper
}

// ClosedInterval is a closed interval [Lower, Upper] with Lower <= Upper.
type ClosedInterval[T Integer] struct {
	Lower T
	Upper T
}

// Contains reports whether v lies in [Lower, Upper].
func (iv ClosedInterval[T]) Contains(v T) bool {
	return v >= iv.Lower && v <= iv.Upper
}

// HalfOpen forms the interval [a, b). Fails when a > b.
func HalfOpen[T Integer](a, b T) (Interval[T], bool) {
	if a > b {
		return Interval[T]{}, false
	}
	return Interval[T]{Lower: a, Upper: b}, true
}

// Closed forms the interval [a, b]. Fails when a > b.
func Closed[T Integer](a, b T) (ClosedInterval[T], bool) {
	if a > b {
		return ClosedInterval[T]{}, false
	}
	return ClosedInterval[T]{Lower: a, Upper: b}, true
}

// HalfOpenOrFault forms [a, b) or surfaces invalid_value when a > b.
func HalfOpenOrFault[T Integer](a, b T) (Interval[T], error) {
	iv, ok := HalfOpen(a, b)
	if !ok {
		return Interval[T]{}, fault.InvalidValuef(fault.NoLocation, "malformed range: %v > %v", a, b)
	}
	return iv, nil
}

// ClosedOrFault forms [a, b] or surfaces invalid_value when a > b.
func ClosedOrFault[T Integer](a, b T) (ClosedInterval[T], error) {
	iv, ok := Closed(a, b)
	if !ok {
		return ClosedInterval[T]{}, fault.InvalidValuef(fault.NoLocation, "malformed range: %v > %v", a, b)
	}
	return iv, nil
}
