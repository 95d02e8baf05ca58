// Package observer implements the profile-driven observation pass of
// §4.3: the same tree shape as the type inferencer, but assigning
// ObservedType from recorded ValueProfiles rather than from static
// rules, and joining If branches opportunistically so an unreached
// branch's still-Unknown observed type never blocks specialization of
// the branch that was actually taken.
package observer

import (
	"github.com/vassilibykov/enfilade-go/internal/ir"
	"github.com/vassilibykov/enfilade-go/internal/kind"
)

// Observe runs one observation pass over every function in the unit.
// Unlike the inferencer there is no fixed-point loop: observed types
// come directly from profile data already accumulated by the profiling
// interpreter (§4.4), so a single bottom-up pass is sufficient — nothing
// here widens another observation the way inference widens a variable.
func Observe(top *ir.FunctionImpl, unit []*ir.FunctionImpl) {
	all := append([]*ir.FunctionImpl{top}, unit...)
	for _, fn := range all {
		observeFunction(fn)
	}
}

func observeFunction(fn *ir.FunctionImpl) {
	bodyType := observeNode(fn, fn.Body)
	// A body that ends in a Return (Known(VOID)) has no fall-through value.
	if bodyType.IsKnown() && bodyType.Kind() == kind.VOID {
		return
	}
	fn.ObservedReturnType, _ = kind.Unify(fn.ObservedReturnType, bodyType)
}

func observeNode(fn *ir.FunctionImpl, n ir.Node) kind.ExprType {
	switch t := n.(type) {
	case *ir.Constant:
		t.ObservedType = kind.Known(t.Value.Kind)
		return t.ObservedType

	case *ir.GetVar:
		// A variable's own ValueProfile accumulates one entry per read
		// recorded by the profiling interpreter's GetVar case — the only
		// source of observed data for a variable never reassigned by a
		// SetVar/Let in this function (e.g. a declared parameter read but
		// never written).
		if t.Var.Profile.HasData() {
			t.Var.ObservedType, _ = kind.Unify(t.Var.ObservedType, t.Var.Profile.ObservedKind())
		}
		t.ObservedType = t.Var.ObservedType
		return t.ObservedType

	case *ir.SetVar:
		valType := observeNode(fn, t.Value)
		if valType.IsKnown() {
			t.Var.ObservedType, _ = kind.Unify(t.Var.ObservedType, valType)
		}
		t.ObservedType = valType
		return t.ObservedType

	case *ir.Let:
		initType := observeNode(fn, t.Init)
		if initType.IsKnown() {
			t.Var.ObservedType, _ = kind.Unify(t.Var.ObservedType, initType)
		}
		t.ObservedType = observeNode(fn, t.Body)
		return t.ObservedType

	case *ir.If:
		observeNode(fn, t.Cond)
		// A branch whose counter is still zero was never taken; its
		// subtree is left untouched (Unknown) rather than claiming an
		// observed type for code that did not run (§4.3).
		var thenType, elseType kind.ExprType
		if t.TrueCount() > 0 {
			thenType = observeNode(fn, t.Then)
		}
		if t.FalseCount() > 0 {
			elseType = observeNode(fn, t.Else)
		}
		t.ObservedType = kind.JoinOpportunisticFoldingReturn(thenType, elseType)
		return t.ObservedType

	case *ir.While:
		observeNode(fn, t.Cond)
		t.ObservedType = observeNode(fn, t.Body)
		return t.ObservedType

	case *ir.Block:
		var last kind.ExprType
		for _, e := range t.Exprs {
			last = observeNode(fn, e)
		}
		t.ObservedType = last
		return t.ObservedType

	case *ir.Return:
		valType := observeNode(fn, t.Value)
		if valType.IsKnown() {
			fn.ObservedReturnType, _ = kind.Unify(fn.ObservedReturnType, valType)
		}
		t.ObservedType = kind.Known(kind.VOID)
		return t.ObservedType

	case *ir.Call:
		for _, arg := range t.Args {
			observeNode(fn, arg)
		}
		observeNode(fn, t.Dispatcher)
		if t.Profile != nil {
			t.ObservedType = t.Profile.ObservedKind()
		} else {
			t.ObservedType = kind.Unknown
		}
		return t.ObservedType

	case *ir.Primitive1:
		argType := observeNode(fn, t.Arg)
		t.ObservedType = t.Impl.Infer(argType)
		return t.ObservedType

	case *ir.Primitive2:
		a1 := observeNode(fn, t.Arg1)
		a2 := observeNode(fn, t.Arg2)
		t.ObservedType = t.Impl.Infer(a1, a2)
		return t.ObservedType

	case *ir.ClosureExpr:
		t.ObservedType = kind.Known(kind.REF)
		return t.ObservedType

	case *ir.FreeFunctionRef:
		t.ObservedType = kind.Known(kind.REF)
		return t.ObservedType

	default:
		return kind.Unknown
	}
}
