package parse

import (
	"github.com/parsekit-io/parsekit/fault"
	"github.com/parsekit-io/parsekit/safemath"
)

// Parser is the contract a cursor-based decoder satisfies: consume bytes and
// return a value, or report a fault. When the parser documents transactional
// failure the cursor is unchanged on error; aggregate parsers make no such
// promise and callers wanting it wrap the call in Atomic.
type Parser[T any] func(*Cursor) (T, error)

// Sequence runs p exactly count times, collecting the results. Fails with
// invalid_value for a negative count, or with p's fault on the first failing
// invocation; the cursor is then left wherever p stopped.
func Sequence[T any](c *Cursor, count int, p Parser[T]) ([]T, error) {
	if count < 0 {
		return nil, fault.InvalidValuef(int64(c.start), "negative element count %d", count)
	}
	out := make([]T, 0, min(count, 4096))
	for i := 0; i < count; i++ {
		at := c.start
		v, err := p(c)
		if err != nil {
			return nil, fault.UserError(int64(at), err)
		}
		out = append(out, v)
	}
	return out, nil
}

// SequenceRemaining runs p repeatedly until the cursor is empty, collecting
// the results. An invocation that consumes no bytes while bytes remain fails
// with invalid_value: without that progress requirement a zero-width parser
// would never terminate.
func SequenceRemaining[T any](c *Cursor, p Parser[T]) ([]T, error) {
	var out []T
	for !c.IsEmpty() {
		at := c.start
		v, err := p(c)
		if err != nil {
			return nil, fault.UserError(int64(at), err)
		}
		if c.start == at && !c.IsEmpty() {
			return nil, fault.InvalidValue(int64(at), "parser consumed no bytes")
		}
		out = append(out, v)
	}
	return out, nil
}

// RangeStartCount reads a start bound and a count with the supplied parser
// and forms the half-open interval [start, start+count). Fails with
// invalid_value for a negative count or when start + count overflows.
func RangeStartCount[T safemath.Integer](c *Cursor, bound Parser[T]) (safemath.Interval[T], error) {
	at := c.start
	start, err := bound(c)
	if err != nil {
		return safemath.Interval[T]{}, fault.UserError(int64(at), err)
	}
	at = c.start
	count, err := bound(c)
	if err != nil {
		return safemath.Interval[T]{}, fault.UserError(int64(at), err)
	}
	if count < 0 {
		return safemath.Interval[T]{}, fault.InvalidValuef(int64(at), "negative count %v", count)
	}
	upper, ok := safemath.Add(start, count)
	if !ok {
		return safemath.Interval[T]{}, fault.InvalidValuef(int64(at), "%v + %v overflows", start, count)
	}
	return safemath.Interval[T]{Lower: start, Upper: upper}, nil
}

// RangeStartEnd reads two bounds with the supplied parser and forms the
// half-open interval [start, end). Fails with invalid_value when start > end.
func RangeStartEnd[T safemath.Integer](c *Cursor, bound Parser[T]) (safemath.Interval[T], error) {
	lower, upper, err := twoBounds(c, bound)
	if err != nil {
		return safemath.Interval[T]{}, err
	}
	return safemath.Interval[T]{Lower: lower, Upper: upper}, nil
}

// RangeStartEndClosed reads two bounds with the supplied parser and forms the
// closed interval [start, end]. Fails with invalid_value when start > end.
func RangeStartEndClosed[T safemath.Integer](c *Cursor, bound Parser[T]) (safemath.ClosedInterval[T], error) {
	lower, upper, err := twoBounds(c, bound)
	if err != nil {
		return safemath.ClosedInterval[T]{}, err
	}
	return safemath.ClosedInterval[T]{Lower: lower, Upper: upper}, nil
}

func twoBounds[T safemath.Integer](c *Cursor, bound Parser[T]) (lower, upper T, err error) {
	at := c.start
	lower, err = bound(c)
	if err != nil {
		return 0, 0, fault.UserError(int64(at), err)
	}
	at = c.start
	upper, err = bound(c)
	if err != nil {
		return 0, 0, fault.UserError(int64(at), err)
	}
	if lower > upper {
		return 0, 0, fault.InvalidValuef(int64(at), "malformed range: %v > %v", lower, upper)
	}
	return lower, upper, nil
}
