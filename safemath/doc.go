// Package safemath provides overflow-aware arithmetic for values parsed from
// untrusted input.
//
// Sizes, counts, and offsets computed from parsed integers must never wrap
// silently: a length field of 0xFFFFFFFF multiplied by a stride is an attack,
// not a number. Every operation here comes in two parallel surfaces:
//
//	Optional surface          Fault surface
//	─────────────────────────────────────────────
//	Add(a, b)  (v, ok)        AddOrFault(a, b)  (v, error)
//	Sub(a, b)  (v, ok)        SubOrFault(a, b)  (v, error)
//	Mul(a, b)  (v, ok)        MulOrFault(a, b)  (v, error)
//	Div(a, b)  (v, ok)        DivOrFault(a, b)  (v, error)
//	Mod(a, b)  (v, ok)        ModOrFault(a, b)  (v, error)
//	Neg(a)     (v, ok)        NegOrFault(a)     (v, error)
//	Convert(v) (d, ok)        ConvertOrFault(v) (d, error)
//
// The optional surface reports failure as ok == false; the fault surface
// reports it as a *fault.Fault of kind invalid_value. Failure means overflow
// for arithmetic, a zero divisor for Div and Mod, or a non-representable
// source value for Convert.
//
// The package also provides half-open and closed interval formation and
// bounded indexing into slices, with the same two surfaces.
//
// All functions are pure; nothing here touches a cursor.
package safemath
