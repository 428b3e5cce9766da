package safemath

import (
	"unsafe"

	"github.com/parsekit-io/parsekit/fault"
)

// Integer is the constraint satisfied by all fixed-width integer types the
// algebra operates on.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// signed reports whether T is a signed type. For signed types all-ones is -1,
// for unsigned types it is the maximum value.
func signed[T Integer]() bool {
	return ^T(0) < 0
}

// minOf returns the minimum value of T: zero for unsigned types, the most
// negative value for signed ones.
func minOf[T Integer]() T {
	if !signed[T]() {
		return 0
	}
	var zero T
	bits := uint(unsafe.Sizeof(zero)) * 8
	return T(1) << (bits - 1)
}

// Add returns a + b, reporting overflow.
func Add[T Integer](a, b T) (T, bool) {
	c := a + b
	if (b > 0 && c < a) || (b < 0 && c > a) {
		return 0, false
	}
	return c, true
}

// Sub returns a - b, reporting overflow.
func Sub[T Integer](a, b T) (T, bool) {
	c := a - b
	if (b > 0 && c > a) || (b < 0 && c < a) {
		return 0, false
	}
	return c, true
}

// Mul returns a * b, reporting overflow.
func Mul[T Integer](a, b T) (T, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if signed[T]() && a == ^T(0) {
		// a == -1: the quotient check below cannot be used because
		// min / -1 does not round-trip. -b overflows only for b == min.
		if b == minOf[T]() {
			return 0, false
		}
		return -b, true
	}
	c := a * b
	if c/a != b {
		return 0, false
	}
	return c, true
}

// Div returns a / b, reporting a zero divisor or overflow (min / -1).
func Div[T Integer](a, b T) (T, bool) {
	if b == 0 {
		return 0, false
	}
	if signed[T]() && b == ^T(0) && a == minOf[T]() {
		return 0, false
	}
	return a / b, true
}

// Mod returns a % b, reporting a zero divisor or overflow (min % -1).
func Mod[T Integer](a, b T) (T, bool) {
	if b == 0 {
		return 0, false
	}
	if signed[T]() && b == ^T(0) && a == minOf[T]() {
		return 0, false
	}
	return a % b, true
}

// Neg returns -a, reporting overflow. For unsigned types only zero can be
// negated; for signed types only the minimum value cannot.
func Neg[T Integer](a T) (T, bool) {
	if a == 0 {
		return 0, true
	}
	if !signed[T]() || a == minOf[T]() {
		return 0, false
	}
	return -a, true
}

// Convert converts v to type D, reporting failure when the value is not
// representable in D. The conversion is value-preserving across any
// combination of widths and signedness.
func Convert[D, S Integer](v S) (D, bool) {
	d := D(v)
	if S(d) != v || (d < 0) != (v < 0) {
		return 0, false
	}
	return d, true
}

// Fault surface. Same operations, surfacing invalid_value instead of !ok.

// AddOrFault returns a + b or an invalid_value fault on overflow.
func AddOrFault[T Integer](a, b T) (T, error) {
	c, ok := Add(a, b)
	if !ok {
		return 0, fault.InvalidValuef(fault.NoLocation, "%v + %v overflows", a, b)
	}
	return c, nil
}

// SubOrFault returns a - b or an invalid_value fault on overflow.
func SubOrFault[T Integer](a, b T) (T, error) {
	c, ok := Sub(a, b)
	if !ok {
		return 0, fault.InvalidValuef(fault.NoLocation, "%v - %v overflows", a, b)
	}
	return c, nil
}

// MulOrFault returns a * b or an invalid_value fault on overflow.
func MulOrFault[T Integer](a, b T) (T, error) {
	c, ok := Mul(a, b)
	if !ok {
		return 0, fault.InvalidValuef(fault.NoLocation, "%v * %v overflows", a, b)
	}
	return c, nil
}

// DivOrFault returns a / b or an invalid_value fault on a zero divisor or
// overflow.
func DivOrFault[T Integer](a, b T) (T, error) {
	c, ok := Div(a, b)
	if !ok {
		return 0, fault.InvalidValuef(fault.NoLocation, "%v / %v is undefined or overflows", a, b)
	}
	return c, nil
}

// ModOrFault returns a % b or an invalid_value fault on a zero divisor or
// overflow.
func ModOrFault[T Integer](a, b T) (T, error) {
	c, ok := Mod(a, b)
	if !ok {
		return 0, fault.InvalidValuef(fault.NoLocation, "%v %% %v is undefined or overflows", a, b)
	}
	return c, nil
}

// NegOrFault returns -a or an invalid_value fault on overflow.
func NegOrFault[T Integer](a T) (T, error) {
	c, ok := Neg(a)
	if !ok {
		return 0, fault.InvalidValuef(fault.NoLocation, "-(%v) overflows", a)
	}
	return c, nil
}

// ConvertOrFault converts v to D or surfaces an invalid_value fault when the
// value is not representable.
func ConvertOrFault[D, S Integer](v S) (D, error) {
	d, ok := Convert[D](v)
	if !ok {
		var zero D
		return 0, fault.Overflow(fault.NoLocation, v, typeName(zero))
	}
	return d, nil
}
