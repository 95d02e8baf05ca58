// Package dispatch implements the mutable per-function call target and
// specialization guard of §4.8: the three states a FunctionImpl's
// CallTarget can hold (profiling adapter, plain adapter, post-compile
// target), the guard that tests specialized-argument kinds and recovers
// a square-peg signal by retrying generically, the group publication of
// a freshly compiled unit, and the invoker a compiled caller requests
// when it statically knows a compatible signature.
package dispatch

import (
	"sort"

	cerrors "github.com/vassilibykov/enfilade-go/internal/errors"
	"github.com/vassilibykov/enfilade-go/internal/interp"
	"github.com/vassilibykov/enfilade-go/internal/ir"
	"github.com/vassilibykov/enfilade-go/internal/kind"
	"github.com/vassilibykov/enfilade-go/internal/value"
)

// Install points fn's call target at the profiling interpreter — the
// initial state of every FunctionImpl once analysis completes (§4.9:
// INVALID -> PROFILING).
func Install(fn *ir.FunctionImpl) {
	fn.CallTarget.Store(interp.Profiling(fn))
}

// RetargetToPlain points fn's call target at the profile-free
// interpreter, the call-site state while its unit compiles (§4.5, §4.6).
func RetargetToPlain(fn *ir.FunctionImpl) {
	fn.CallTarget.Store(interp.Plain(fn))
}

// Guard builds fn's post-compile call target (§4.8 state 3): if fn has
// no specialized entry, the generic entry serves directly; otherwise the
// returned Invoker tests every specialized-typed argument's kind, on a
// full match dispatches to the specialized entry while recovering a
// square-peg signal into a generic retry, and falls straight to the
// generic entry on any kind mismatch.
func Guard(fn *ir.FunctionImpl) ir.Invoker {
	if fn.SpecializedEntry == nil {
		return fn.GenericEntry
	}
	generic := fn.GenericEntry
	specialized := fn.SpecializedEntry
	paramKinds := fn.SpecializedParamKinds

	return func(args []value.Value) (value.Value, error) {
		for i, k := range paramKinds {
			if i >= len(args) || args[i].Kind != k {
				return generic(args)
			}
		}
		return callSpecialized(specialized, generic, args)
	}
}

// callSpecialized invokes specialized, recovering a square-peg panic
// into a clean retry through generic with the original arguments — safe
// because the retry happens at call granularity, before any specialized
// frame state exists at the caller (§4.7's recovery/square-peg protocol).
func callSpecialized(specialized, generic ir.Invoker, args []value.Value) (result value.Value, err error) {
	defer func() {
		if r := recover(); r == nil {
			return
		} else if _, ok := cerrors.Recover(r); ok {
			result, err = generic(args)
		}
	}()
	return specialized(args)
}

// InvokerFor returns the Invoker a compiled caller should use to reach
// callee when it statically expects paramKinds/returnKind (§4.8: "callers
// from compiled code bypass this opaque target when they statically know
// a compatible specialized signature"). If callee is COMPILED with a
// specialized entry of exactly that signature, it is returned directly,
// skipping the guard's kind checks entirely; otherwise an adapter over
// the mutable call target is returned.
func InvokerFor(callee *ir.FunctionImpl, paramKinds []kind.Kind, returnKind kind.Kind) ir.Invoker {
	if callee.State() == ir.StateCompiled &&
		callee.SpecializedEntry != nil &&
		callee.SpecializedReturnKind == returnKind &&
		kindSliceEqual(callee.SpecializedParamKinds, paramKinds) {
		return callee.SpecializedEntry
	}
	return func(args []value.Value) (value.Value, error) {
		return callee.CallTarget.Load()(args)
	}
}

func kindSliceEqual(a, b []kind.Kind) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// PublishUnit installs newTargets (one Invoker per FunctionImpl, built
// by the code generator) for an entire compilation unit and marks every
// member COMPILED, as one publication: every member's mutex is held for
// the whole operation, taken in a fixed order (by RegistryID) to avoid
// deadlock against a concurrent compile of an overlapping unit, so a
// thread that must go through a sibling's mutex to call in never
// observes the unit half-retargeted (§4.8's cross-thread publication
// fence; §5's "no thread observes a partial retargeting of a mutually
// recursive cluster").
func PublishUnit(members []*ir.FunctionImpl, newTargets map[*ir.FunctionImpl]ir.Invoker) {
	ordered := append([]*ir.FunctionImpl(nil), members...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].RegistryID < ordered[j].RegistryID })

	for _, fn := range ordered {
		fn.Lock()
		defer fn.Unlock()
	}
	for _, fn := range ordered {
		fn.CallTarget.Store(newTargets[fn])
		fn.CompareAndSwapState(ir.StateCompiling, ir.StateCompiled)
	}
}
