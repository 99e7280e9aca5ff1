// Package invariant reports programming-contract violations. A
// violation is never a property of the input formula: it means some
// caller broke a registration or bookkeeping rule, so the current
// solving session is aborted with a panic carrying a *Violation.
package invariant

import (
	"github.com/pkg/errors"
)

// Violation is the panic value raised for a broken internal
// invariant.
type Violation struct {
	err error
}

func (v *Violation) Error() string {
	return "internal solver failure: " + v.err.Error()
}

// Unwrap returns the underlying error, which carries the stack of the
// failing check.
func (v *Violation) Unwrap() error {
	return v.err
}

// Failf panics with a Violation built from the format and args.
func Failf(format string, args ...interface{}) {
	panic(&Violation{err: errors.Errorf(format, args...)})
}

// Fail panics with a Violation wrapping err.
func Fail(err error) {
	panic(&Violation{err: errors.WithStack(err)})
}

// Check panics with a Violation if cond does not hold.
func Check(cond bool, format string, args ...interface{}) {
	if !cond {
		Failf(format, args...)
	}
}

// Recover converts a Violation panic into an error stored in *err.
// Any other panic value is re-raised. It must be called directly by a
// deferred statement.
func Recover(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if v, ok := r.(*Violation); ok {
		*err = v
		return
	}
	panic(r)
}
