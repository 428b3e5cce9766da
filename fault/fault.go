package fault

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind categorizes the fault.
type Kind string

const (
	KindInsufficientData Kind = "insufficient_data"
	KindInvalidValue     Kind = "invalid_value"
	KindUserError        Kind = "user_error"
)

// NoLocation marks a fault with no identifiable byte offset.
const NoLocation int64 = -1

// Sentinel values for errors.Is matching by kind alone.
var (
	ErrInsufficientData = &Fault{Kind: KindInsufficientData, Location: NoLocation}
	ErrInvalidValue     = &Fault{Kind: KindInvalidValue, Location: NoLocation}
	ErrUserError        = &Fault{Kind: KindUserError, Location: NoLocation}
)

// Fault is the structured error type used throughout the library.
type Fault struct {
	Cause    error
	Kind     Kind
	Detail   string
	Location int64 // byte offset into the original region, NoLocation if unknown
}

// Error implements the error interface.
func (f *Fault) Error() string {
	var b strings.Builder

	b.WriteString(string(f.Kind))

	if f.Location != NoLocation {
		b.WriteString(" at byte ")
		b.WriteString(strconv.FormatInt(f.Location, 10))
	}

	if f.Detail != "" {
		b.WriteString(": ")
		b.WriteString(f.Detail)
	}

	if f.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(f.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error.
func (f *Fault) Unwrap() error {
	return f.Cause
}

// Is reports whether target matches this fault. Two faults match when their
// kinds agree; location and detail are diagnostic only.
func (f *Fault) Is(target error) bool {
	if t, ok := target.(*Fault); ok {
		return f.Kind == t.Kind
	}
	return false
}

// KindOf returns the kind of err if it is a *Fault, or "" otherwise.
func KindOf(err error) Kind {
	if f, ok := err.(*Fault); ok {
		return f.Kind
	}
	return ""
}

// LocationOf returns the byte location of err if it is a *Fault carrying one,
// or NoLocation otherwise.
func LocationOf(err error) int64 {
	if f, ok := err.(*Fault); ok {
		return f.Location
	}
	return NoLocation
}

// Builder provides structured fault construction.
type Builder struct {
	f Fault
}

// New creates a new fault builder.
func New(kind Kind) *Builder {
	return &Builder{f: Fault{Kind: kind, Location: NoLocation}}
}

// At sets the byte location.
func (b *Builder) At(offset int64) *Builder {
	b.f.Location = offset
	return b
}

// Cause sets the underlying error.
func (b *Builder) Cause(err error) *Builder {
	b.f.Cause = err
	return b
}

// Detail sets the human-readable detail message.
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.f.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.f.Detail = msg
	}
	return b
}

// Build returns the constructed fault.
func (b *Builder) Build() *Fault {
	return &b.f
}

// Convenience constructors for common fault patterns

// InsufficientData reports a read that would cross the region's end offset.
func InsufficientData(at int64) *Fault {
	return &Fault{
		Kind:     KindInsufficientData,
		Location: at,
	}
}

// InsufficientDataf is InsufficientData with a detail message.
func InsufficientDataf(at int64, format string, args ...any) *Fault {
	return &Fault{
		Kind:     KindInsufficientData,
		Location: at,
		Detail:   fmt.Sprintf(format, args...),
	}
}

// InvalidValue reports a decoded value violating a structural constraint.
func InvalidValue(at int64, detail string) *Fault {
	return &Fault{
		Kind:     KindInvalidValue,
		Location: at,
		Detail:   detail,
	}
}

// InvalidValuef is InvalidValue with a formatted detail message.
func InvalidValuef(at int64, format string, args ...any) *Fault {
	return &Fault{
		Kind:     KindInvalidValue,
		Location: at,
		Detail:   fmt.Sprintf(format, args...),
	}
}

// Overflow reports arithmetic or conversion overflow on a parsed value.
func Overflow(at int64, value any, target string) *Fault {
	return &Fault{
		Kind:     KindInvalidValue,
		Location: at,
		Detail:   fmt.Sprintf("value %v overflows %s", value, target),
	}
}

// UserError wraps an error returned by a user-supplied callback. The location
// is the cursor position at the time the callback was invoked.
func UserError(at int64, cause error) *Fault {
	if f, ok := cause.(*Fault); ok {
		// Faults raised by the library inside a user callback keep their
		// original kind and location.
		return f
	}
	return &Fault{
		Kind:     KindUserError,
		Location: at,
		Cause:    cause,
	}
}
