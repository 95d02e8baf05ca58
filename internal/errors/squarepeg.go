package errors

import "github.com/vassilibykov/enfilade-go/internal/value"

// SquarePeg is the internal signal specialized code raises (via panic)
// when a value of the "wrong" kind would be produced at a specialized
// return or a specialized call argument (§4.7, §7, §9). It is modeled as
// a panic/recover pair scoped to the specialization guard in
// internal/dispatch, which is the only code in the runtime permitted to
// recover one; it must never escape to a caller of the runtime. The
// offending value is carried along so the guard's generic retry has
// nothing further to reconstruct.
type SquarePeg struct {
	Value value.Value
}

// Raise panics with a SquarePeg carrying v. Compiled specialized code
// calls this instead of returning when a value doesn't fit its declared
// kind.
func Raise(v value.Value) {
	panic(SquarePeg{Value: v})
}

// Recover must be called directly inside a deferred function. It returns
// the SquarePeg and true if the just-recovered panic was one, or
// re-panics any other recovered value (a SquarePeg-catching guard must
// never swallow an unrelated panic).
func Recover(r interface{}) (SquarePeg, bool) {
	if r == nil {
		return SquarePeg{}, false
	}
	if sp, ok := r.(SquarePeg); ok {
		return sp, true
	}
	panic(r)
}
