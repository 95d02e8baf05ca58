// Package compile implements the compilation unit driver (C9) and code
// generator (C10) of §4.6/§4.7. On a compile request it runs the fixed
// analysis pipeline once under the unit's COMPILING state, derives each
// function's specialized signature from the observation and inference
// passes, and emits a generic entry plus — where eligible — a
// specialized entry, each built once as a tree of composed Go closures
// (§4.7.1) rather than re-interpreted node-by-node on every call.
package compile

import (
	"github.com/vassilibykov/enfilade-go/internal/analyzer"
	"github.com/vassilibykov/enfilade-go/internal/dispatch"
	cerrors "github.com/vassilibykov/enfilade-go/internal/errors"
	"github.com/vassilibykov/enfilade-go/internal/interp"
	"github.com/vassilibykov/enfilade-go/internal/ir"
	"github.com/vassilibykov/enfilade-go/internal/kind"
	"github.com/vassilibykov/enfilade-go/internal/observer"
	"github.com/vassilibykov/enfilade-go/internal/typeinfer"
	"github.com/vassilibykov/enfilade-go/internal/value"
)

func init() {
	interp.CompileTrigger = Trigger
}

// Trigger runs the full C9 unit-compilation sequence for top. It is
// idempotent under races: only the thread that wins the PROFILING ->
// COMPILING transition proceeds; every other caller returns immediately,
// per §4.9 ("once per unit, idempotent under races").
func Trigger(top *ir.FunctionImpl) {
	top.Lock()
	won := top.CompareAndSwapState(ir.StateProfiling, ir.StateCompiling)
	top.Unlock()
	if !won {
		return
	}
	dispatch.RetargetToPlain(top)

	if err := compileUnit(top); err != nil {
		// §5: a failed compilation leaves the unit in COMPILING with the
		// plain interpreter already installed above — a safe permanent
		// fallback. There is no logging framework in this codebase
		// (§1.1); the failure is recorded on the top-level function for
		// introspection via Describe() instead.
		top.CompileError = err
	}
}

func compileUnit(top *ir.FunctionImpl) error {
	if err := analyzer.New().Analyze(top); err != nil {
		return err
	}
	members := append([]*ir.FunctionImpl{top}, top.Unit...)
	for _, fn := range top.Unit {
		fn.Lock()
		fn.CompareAndSwapState(ir.StateProfiling, ir.StateCompiling)
		fn.Unlock()
		dispatch.RetargetToPlain(fn)
	}

	if err := typeinfer.Infer(top, top.Unit); err != nil {
		return err
	}
	observer.Observe(top, top.Unit)

	for _, fn := range members {
		computeSpecializedSignature(fn)
	}

	newTargets := make(map[*ir.FunctionImpl]ir.Invoker, len(members))
	for _, fn := range members {
		fn.GenericEntry = compileGeneric(fn)
		if fn.SpecializationEligible() {
			fn.SpecializedEntry = compileSpecialized(fn)
		}
		newTargets[fn] = dispatch.Guard(fn)
	}

	dispatch.PublishUnit(members, newTargets)
	return nil
}

// computeSpecializedSignature fills in fn.SpecializedParamKinds,
// fn.SpecializedReturnKind, and every local variable's SpecializedType,
// per §4.6: "the most precise non-Unknown kind implied by [a node's]
// observed (or failing that, inferred) type; REF when nothing else
// applies."
func computeSpecializedSignature(fn *ir.FunctionImpl) {
	fn.SpecializedParamKinds = make([]kind.Kind, len(fn.DeclaredParams))
	for i, p := range fn.DeclaredParams {
		p.SpecializedType = kind.Known(specializedKindOf(p.ObservedType, p.InferredType))
		fn.SpecializedParamKinds[i] = p.SpecializedType.Kind()
	}
	for _, p := range fn.SyntheticParams {
		p.SpecializedType = kind.Known(specializedKindOf(p.ObservedType, p.InferredType))
	}
	markVariableSpecializedTypes(fn.Body)
	fn.SpecializedReturnKind = specializedKindOf(fn.ObservedReturnType, fn.ReturnType)
}

func markVariableSpecializedTypes(n ir.Node) {
	switch t := n.(type) {
	case *ir.Let:
		t.Var.SpecializedType = kind.Known(specializedKindOf(t.Var.ObservedType, t.Var.InferredType))
		markVariableSpecializedTypes(t.Init)
		markVariableSpecializedTypes(t.Body)
	case *ir.SetVar:
		markVariableSpecializedTypes(t.Value)
	case *ir.If:
		markVariableSpecializedTypes(t.Cond)
		markVariableSpecializedTypes(t.Then)
		markVariableSpecializedTypes(t.Else)
	case *ir.While:
		markVariableSpecializedTypes(t.Cond)
		markVariableSpecializedTypes(t.Body)
	case *ir.Block:
		for _, e := range t.Exprs {
			markVariableSpecializedTypes(e)
		}
	case *ir.Return:
		markVariableSpecializedTypes(t.Value)
	case *ir.Call:
		for _, a := range t.Args {
			markVariableSpecializedTypes(a)
		}
	case *ir.Primitive1:
		markVariableSpecializedTypes(t.Arg)
	case *ir.Primitive2:
		markVariableSpecializedTypes(t.Arg1)
		markVariableSpecializedTypes(t.Arg2)
	}
}

func specializedKindOf(observed, inferred kind.ExprType) kind.Kind {
	if observed.IsKnown() {
		return observed.Kind()
	}
	if inferred.IsKnown() {
		return inferred.Kind()
	}
	return kind.REF
}

func nodeSpecializedKind(n ir.Node) kind.Kind {
	ann := n.Annotated()
	return specializedKindOf(ann.ObservedType, ann.InferredType)
}

// compiledExpr is the concrete shape of one generated node: a Go closure
// reading and writing a call's frame, composed once at compile time from
// its children instead of re-dispatched through a type switch on every
// evaluation. This is this runtime's "native code" (§4.7.1).
type compiledExpr func(frame []value.Value) (value.Value, error)

// returnSignal unwinds a compiled Return to its function's invocation
// boundary, mirroring internal/interp's own return-unwinding panic.
type returnSignal struct {
	value value.Value
}

func compileGeneric(fn *ir.FunctionImpl) ir.Invoker {
	body := compileNode(fn, fn.Body, false)
	return func(args []value.Value) (result value.Value, err error) {
		frame := make([]value.Value, fn.FrameSize)
		copy(frame, args)
		defer func() {
			if r := recover(); r != nil {
				if rs, ok := r.(returnSignal); ok {
					result, err = rs.value, nil
					return
				}
				panic(r)
			}
		}()
		return body(frame)
	}
}

func compileSpecialized(fn *ir.FunctionImpl) ir.Invoker {
	body := compileNode(fn, fn.Body, true)
	returnKind := fn.SpecializedReturnKind
	return func(args []value.Value) (result value.Value, err error) {
		frame := make([]value.Value, fn.FrameSize)
		copy(frame, args)
		defer func() {
			if r := recover(); r != nil {
				if rs, ok := r.(returnSignal); ok {
					result, err = coerceReturn(rs.value, returnKind)
					return
				}
				panic(r)
			}
		}()
		v, err := body(frame)
		if err != nil {
			return value.Void, err
		}
		return coerceReturn(v, returnKind)
	}
}

// coerceReturn enforces the specialized return kind: REF accepts
// anything (the generator's universal widening target, §4.7); any other
// kind requires an exact match or the square-peg signal fires, to be
// recovered by the dispatch guard's generic retry (§4.7's recovery
// protocol).
func coerceReturn(v value.Value, returnKind kind.Kind) (value.Value, error) {
	if returnKind == kind.REF || v.Kind == returnKind {
		return v, nil
	}
	cerrors.Raise(v)
	panic("unreachable: Raise always panics")
}

// coerceStore enforces a specialized local's declared kind the same way
// coerceReturn enforces a specialized return: a store whose value's kind
// doesn't match varKind only fits when varKind is REF (§4.7's universal
// widening target). Anything else means the speculative specialization
// guessed wrong for this call, so it raises the square-peg signal rather
// than writing a value the rest of the specialized body isn't compiled
// to expect.
func coerceStore(v value.Value, varKind kind.Kind) (value.Value, error) {
	if varKind == kind.REF || v.Kind == varKind {
		return v, nil
	}
	cerrors.Raise(v)
	panic("unreachable: Raise always panics")
}

func compileNode(fn *ir.FunctionImpl, n ir.Node, specialized bool) compiledExpr {
	switch t := n.(type) {
	case *ir.Constant:
		v := t.Value
		return func(frame []value.Value) (value.Value, error) { return v, nil }

	case *ir.GetVar:
		idx := t.Var.FrameIndex
		return func(frame []value.Value) (value.Value, error) { return frame[idx], nil }

	case *ir.SetVar:
		idx := t.Var.FrameIndex
		valExpr := compileNode(fn, t.Value, specialized)
		if specialized {
			varKind := t.Var.SpecializedType.Kind()
			return func(frame []value.Value) (value.Value, error) {
				v, err := valExpr(frame)
				if err != nil {
					return value.Void, err
				}
				v, err = coerceStore(v, varKind)
				if err != nil {
					return value.Void, err
				}
				frame[idx] = v
				return v, nil
			}
		}
		return func(frame []value.Value) (value.Value, error) {
			v, err := valExpr(frame)
			if err != nil {
				return value.Void, err
			}
			frame[idx] = v
			return v, nil
		}

	case *ir.Let:
		idx := t.Var.FrameIndex
		initExpr := compileNode(fn, t.Init, specialized)
		bodyExpr := compileNode(fn, t.Body, specialized)
		if specialized {
			varKind := t.Var.SpecializedType.Kind()
			return func(frame []value.Value) (value.Value, error) {
				v, err := initExpr(frame)
				if err != nil {
					return value.Void, err
				}
				v, err = coerceStore(v, varKind)
				if err != nil {
					return value.Void, err
				}
				frame[idx] = v
				return bodyExpr(frame)
			}
		}
		return func(frame []value.Value) (value.Value, error) {
			v, err := initExpr(frame)
			if err != nil {
				return value.Void, err
			}
			frame[idx] = v
			return bodyExpr(frame)
		}

	case *ir.If:
		return compileIf(fn, t, specialized)

	case *ir.While:
		condExpr := compileNode(fn, t.Cond, specialized)
		bodyExpr := compileNode(fn, t.Body, specialized)
		return func(frame []value.Value) (value.Value, error) {
			last := value.Void
			for {
				cv, err := condExpr(frame)
				if err != nil {
					return value.Void, err
				}
				taken, err := asBool(cv)
				if err != nil {
					return value.Void, err
				}
				if !taken {
					return last, nil
				}
				last, err = bodyExpr(frame)
				if err != nil {
					return value.Void, err
				}
			}
		}

	case *ir.Block:
		exprs := make([]compiledExpr, len(t.Exprs))
		for i, e := range t.Exprs {
			exprs[i] = compileNode(fn, e, specialized)
		}
		return func(frame []value.Value) (value.Value, error) {
			last := value.Void
			for _, e := range exprs {
				v, err := e(frame)
				if err != nil {
					return value.Void, err
				}
				last = v
			}
			return last, nil
		}

	case *ir.Return:
		valExpr := compileNode(fn, t.Value, specialized)
		return func(frame []value.Value) (value.Value, error) {
			v, err := valExpr(frame)
			if err != nil {
				return value.Void, err
			}
			panic(returnSignal{value: v})
		}

	case *ir.Call:
		return compileCall(fn, t, specialized)

	case *ir.Primitive1:
		return compilePrimitive1(fn, t, specialized)

	case *ir.Primitive2:
		return compilePrimitive2(fn, t, specialized)

	case *ir.ClosureExpr:
		template := fn.Captures[t]
		target := t.FuncRef
		return func(frame []value.Value) (value.Value, error) {
			captured := make([]value.Value, len(template))
			for i, supplier := range template {
				captured[i] = frame[supplier.FrameIndex]
			}
			return value.Ref(&ir.Closure{Fn: target, Captured: captured}), nil
		}

	case *ir.FreeFunctionRef:
		target := t.Target
		return func(frame []value.Value) (value.Value, error) {
			return value.Ref(&ir.Closure{Fn: target}), nil
		}

	default:
		return func(frame []value.Value) (value.Value, error) {
			return value.Void, cerrors.NewRuntimeError("compile: unhandled node %T", t)
		}
	}
}

func compileIf(fn *ir.FunctionImpl, t *ir.If, specialized bool) compiledExpr {
	if specialized {
		if prim, args, ok := asOptimizedIfPrimitive(t.Cond); ok {
			argKinds := make([]kind.Kind, len(args))
			for i, a := range args {
				argKinds[i] = nodeSpecializedKind(a)
			}
			if emitter, ok := prim.EmitBranch(argKinds); ok {
				test := emitter.(ir.BranchTest)
				argExprs := make([]compiledExpr, len(args))
				for i, a := range args {
					argExprs[i] = compileNode(fn, a, specialized)
				}
				thenExpr := compileNode(fn, t.Then, specialized)
				elseExpr := compileNode(fn, t.Else, specialized)
				return func(frame []value.Value) (value.Value, error) {
					vals := make([]value.Value, len(argExprs))
					for i, e := range argExprs {
						v, err := e(frame)
						if err != nil {
							return value.Void, err
						}
						if v.Kind != argKinds[i] {
							// The observation that licensed this fused branch
							// only ever saw one side of a (possibly still
							// polymorphic) condition (§8's observation
							// opportunism); a call finally reaching the other
							// kind here means the guess was wrong for this
							// call, not that the language is unsound.
							cerrors.Raise(v)
						}
						vals[i] = v
					}
					taken, err := test(vals)
					if err != nil {
						return value.Void, err
					}
					if taken {
						return thenExpr(frame)
					}
					return elseExpr(frame)
				}
			}
		}
	}

	condExpr := compileNode(fn, t.Cond, specialized)
	thenExpr := compileNode(fn, t.Then, specialized)
	elseExpr := compileNode(fn, t.Else, specialized)
	return func(frame []value.Value) (value.Value, error) {
		cv, err := condExpr(frame)
		if err != nil {
			return value.Void, err
		}
		taken, err := asBool(cv)
		if err != nil {
			return value.Void, err
		}
		if taken {
			return thenExpr(frame)
		}
		return elseExpr(frame)
	}
}

// asOptimizedIfPrimitive reports whether cond is a Primitive1/Primitive2
// node whose implementation supports the fused compare-and-branch
// capability, returning it along with its argument nodes in order.
func asOptimizedIfPrimitive(cond ir.Node) (ir.OptimizedIf, []ir.Node, bool) {
	switch c := cond.(type) {
	case *ir.Primitive1:
		if opt, ok := c.Impl.(ir.OptimizedIf); ok {
			return opt, []ir.Node{c.Arg}, true
		}
	case *ir.Primitive2:
		if opt, ok := c.Impl.(ir.OptimizedIf); ok {
			return opt, []ir.Node{c.Arg1, c.Arg2}, true
		}
	}
	return nil, nil, false
}

func compilePrimitive1(fn *ir.FunctionImpl, t *ir.Primitive1, specialized bool) compiledExpr {
	argExpr := compileNode(fn, t.Arg, specialized)
	if specialized {
		argKind := nodeSpecializedKind(t.Arg)
		if emitter, _, ok := t.Impl.Emit([]kind.Kind{argKind}); ok {
			fast := emitter.(ir.Invoker)
			return func(frame []value.Value) (value.Value, error) {
				a, err := argExpr(frame)
				if err != nil {
					return value.Void, err
				}
				if a.Kind != argKind {
					cerrors.Raise(a)
				}
				return fast([]value.Value{a})
			}
		}
	}
	impl := t.Impl
	return func(frame []value.Value) (value.Value, error) {
		a, err := argExpr(frame)
		if err != nil {
			return value.Void, err
		}
		return impl.Apply(a)
	}
}

func compilePrimitive2(fn *ir.FunctionImpl, t *ir.Primitive2, specialized bool) compiledExpr {
	arg1Expr := compileNode(fn, t.Arg1, specialized)
	arg2Expr := compileNode(fn, t.Arg2, specialized)
	if specialized {
		argKinds := []kind.Kind{nodeSpecializedKind(t.Arg1), nodeSpecializedKind(t.Arg2)}
		if emitter, _, ok := t.Impl.Emit(argKinds); ok {
			fast := emitter.(ir.Invoker)
			return func(frame []value.Value) (value.Value, error) {
				a1, err := arg1Expr(frame)
				if err != nil {
					return value.Void, err
				}
				if a1.Kind != argKinds[0] {
					cerrors.Raise(a1)
				}
				a2, err := arg2Expr(frame)
				if err != nil {
					return value.Void, err
				}
				if a2.Kind != argKinds[1] {
					cerrors.Raise(a2)
				}
				return fast([]value.Value{a1, a2})
			}
		}
	}
	impl := t.Impl
	return func(frame []value.Value) (value.Value, error) {
		a1, err := arg1Expr(frame)
		if err != nil {
			return value.Void, err
		}
		a2, err := arg2Expr(frame)
		if err != nil {
			return value.Void, err
		}
		return impl.Apply(a1, a2)
	}
}

func compileCall(fn *ir.FunctionImpl, t *ir.Call, specialized bool) compiledExpr {
	argExprs := make([]compiledExpr, len(t.Args))
	for i, a := range t.Args {
		argExprs[i] = compileNode(fn, a, specialized)
	}

	switch t.TargetKind() {
	case ir.TargetClosure:
		ce := t.Dispatcher.(*ir.ClosureExpr)
		dispatcherExpr := compileNode(fn, ce, specialized)
		return func(frame []value.Value) (value.Value, error) {
			return runCall(frame, argExprs, dispatcherExpr)
		}
	case ir.TargetFreeFunction:
		ref := t.Dispatcher.(*ir.FreeFunctionRef)
		dispatcherExpr := compileNode(fn, ref, specialized)
		return func(frame []value.Value) (value.Value, error) {
			return runCall(frame, argExprs, dispatcherExpr)
		}
	default:
		dispatcherExpr := compileNode(fn, t.Dispatcher, specialized)
		return func(frame []value.Value) (value.Value, error) {
			return runCall(frame, argExprs, dispatcherExpr)
		}
	}
}

func runCall(frame []value.Value, argExprs []compiledExpr, dispatcherExpr compiledExpr) (value.Value, error) {
	args := make([]value.Value, len(argExprs))
	for i, e := range argExprs {
		v, err := e(frame)
		if err != nil {
			return value.Void, err
		}
		args[i] = v
	}
	dv, err := dispatcherExpr(frame)
	if err != nil {
		return value.Void, err
	}
	closure, ok := dv.Data.(*ir.Closure)
	if !ok {
		return value.Void, cerrors.NewRuntimeError("call target is not callable: %s", dv)
	}
	return closure.Invoke(args)
}

func asBool(v value.Value) (bool, error) {
	if v.Kind != kind.BOOL {
		return false, cerrors.NewRuntimeError("expected a boolean condition, got %s", v)
	}
	return v.Bool(), nil
}
