// Package fault provides the structured error type used throughout parsekit.
//
// Every fallible operation in the library reports failure as a *Fault. The
// taxonomy is deliberately coarse, three kinds cover everything a parser can
// hit:
//
//	Kind                 Meaning
//	──────────────────────────────────────────────────────────────
//	KindInsufficientData a read would cross the cursor's end offset
//	KindInvalidValue     a decoded value violates a structural constraint
//	KindUserError        a user-supplied callback returned an error
//
// A fault carries an optional byte Location pointing at the first offending
// byte of the original region, and (for KindUserError) the wrapped cause.
//
// Matching uses the standard errors protocol:
//
//	if fault.KindOf(err) == fault.KindInsufficientData { ... }
//	if errors.Is(err, fault.ErrInsufficientData) { ... }
package fault
