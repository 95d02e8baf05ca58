// Package interp implements the two tree-walking execution tiers of
// §4.4/§4.5: the profiling interpreter (C7), which records value and
// branch profiles and triggers compilation at a threshold, and the
// plain interpreter (C8), identical except for the recording. Both
// share the same walker; profiling is a boolean the walker consults at
// the handful of points §4.4 calls out.
package interp

import (
	cerrors "github.com/vassilibykov/enfilade-go/internal/errors"
	"github.com/vassilibykov/enfilade-go/internal/ir"
	"github.com/vassilibykov/enfilade-go/internal/kind"
	"github.com/vassilibykov/enfilade-go/internal/value"
)

// CompileThreshold is the invocation count (§4.4's "design value: 10")
// at which a top-level function's profiling interpreter entry triggers
// compilation of its unit. A var rather than a const so a host (e.g.
// cmd/enfilade's --config flag) can override it before building any
// function; changing it after functions are already profiling is safe
// but only affects their next RecordEntry comparison.
var CompileThreshold int64 = 10

// CompileTrigger is called by the profiling interpreter when a
// top-level FunctionImpl's invocation counter crosses CompileThreshold.
// internal/compile's init sets this to its own unit-compilation driver;
// internal/interp cannot import internal/compile directly without an
// import cycle, since the compiler's driver installs this package's
// plain interpreter as the call-site target while a unit compiles
// (§4.6). Left nil, the interpreter never compiles — useful for tests
// that exercise only the tree walkers.
var CompileTrigger func(top *ir.FunctionImpl)

// returnSignal unwinds a Return node to the invocation boundary of the
// function it exits, mirroring the internal/errors square-peg signal:
// a panic/recover pair scoped to exactly one place, never user-visible.
type returnSignal struct {
	value value.Value
}

// Profiling returns an Invoker for fn that records value and branch
// profiles as it runs and triggers compilation once the invocation
// counter crosses CompileThreshold.
func Profiling(fn *ir.FunctionImpl) ir.Invoker {
	return func(args []value.Value) (value.Value, error) {
		return invoke(fn, args, true)
	}
}

// Plain returns a profile-free Invoker for fn, used as the call-site
// target while its unit is compiling (§4.5).
func Plain(fn *ir.FunctionImpl) ir.Invoker {
	return func(args []value.Value) (value.Value, error) {
		return invoke(fn, args, false)
	}
}

func invoke(fn *ir.FunctionImpl, args []value.Value, profiling bool) (result value.Value, err error) {
	if profiling {
		count := fn.Profile.RecordEntry()
		recordParamProfiles(fn, args)
		if fn.IsTopLevel && count >= CompileThreshold && fn.State() == ir.StateProfiling && CompileTrigger != nil {
			CompileTrigger(fn)
		}
	}

	frame := make([]value.Value, fn.FrameSize)
	copy(frame, args)

	w := &walker{fn: fn, frame: frame, profiling: profiling}

	defer func() {
		if r := recover(); r != nil {
			if rs, ok := r.(returnSignal); ok {
				result, err = rs.value, nil
				return
			}
			panic(r)
		}
	}()

	return w.eval(fn.Body)
}

func recordParamProfiles(fn *ir.FunctionImpl, args []value.Value) {
	offset := len(fn.SyntheticParams)
	for i, p := range fn.Profile.ParamProfiles {
		idx := offset + i
		if idx < len(args) {
			p.Record(args[idx])
		}
	}
}

type walker struct {
	fn        *ir.FunctionImpl
	frame     []value.Value
	profiling bool
}

func (w *walker) eval(n ir.Node) (value.Value, error) {
	switch t := n.(type) {
	case *ir.Constant:
		return t.Value, nil

	case *ir.GetVar:
		v := w.frame[t.Var.FrameIndex]
		if w.profiling {
			t.Var.Profile.Record(v)
		}
		return v, nil

	case *ir.SetVar:
		v, err := w.eval(t.Value)
		if err != nil {
			return value.Void, err
		}
		w.frame[t.Var.FrameIndex] = v
		return v, nil

	case *ir.Let:
		v, err := w.eval(t.Init)
		if err != nil {
			return value.Void, err
		}
		w.frame[t.Var.FrameIndex] = v
		return w.eval(t.Body)

	case *ir.If:
		cv, err := w.eval(t.Cond)
		if err != nil {
			return value.Void, err
		}
		taken, err := asBool(cv)
		if err != nil {
			return value.Void, err
		}
		if w.profiling {
			t.RecordBranch(taken)
		}
		if taken {
			return w.eval(t.Then)
		}
		return w.eval(t.Else)

	case *ir.While:
		var last value.Value = value.Void
		for {
			cv, err := w.eval(t.Cond)
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
			last, err = w.eval(t.Body)
			if err != nil {
				return value.Void, err
			}
		}

	case *ir.Block:
		last := value.Void
		for _, e := range t.Exprs {
			v, err := w.eval(e)
			if err != nil {
				return value.Void, err
			}
			last = v
		}
		return last, nil

	case *ir.Return:
		v, err := w.eval(t.Value)
		if err != nil {
			return value.Void, err
		}
		panic(returnSignal{value: v})

	case *ir.Call:
		return w.evalCall(t)

	case *ir.Primitive1:
		a, err := w.eval(t.Arg)
		if err != nil {
			return value.Void, err
		}
		return t.Impl.Apply(a)

	case *ir.Primitive2:
		a1, err := w.eval(t.Arg1)
		if err != nil {
			return value.Void, err
		}
		a2, err := w.eval(t.Arg2)
		if err != nil {
			return value.Void, err
		}
		return t.Impl.Apply(a1, a2)

	case *ir.ClosureExpr:
		return w.evalClosureExpr(t)

	case *ir.FreeFunctionRef:
		return value.Ref(&ir.Closure{Fn: t.Target}), nil

	default:
		return value.Void, cerrors.NewRuntimeError("interp: unhandled node %T", t)
	}
}

func (w *walker) evalClosureExpr(n *ir.ClosureExpr) (value.Value, error) {
	template := w.fn.Captures[n]
	captured := make([]value.Value, len(template))
	for i, supplier := range template {
		captured[i] = w.frame[supplier.FrameIndex]
	}
	return value.Ref(&ir.Closure{Fn: n.FuncRef, Captured: captured}), nil
}

func (w *walker) evalCall(n *ir.Call) (value.Value, error) {
	args := make([]value.Value, len(n.Args))
	for i, a := range n.Args {
		v, err := w.eval(a)
		if err != nil {
			return value.Void, err
		}
		args[i] = v
	}

	var closure *ir.Closure
	switch n.TargetKind() {
	case ir.TargetClosure:
		cv, err := w.evalClosureExpr(n.Dispatcher.(*ir.ClosureExpr))
		if err != nil {
			return value.Void, err
		}
		closure = cv.Data.(*ir.Closure)
	case ir.TargetFreeFunction:
		closure = &ir.Closure{Fn: n.Dispatcher.(*ir.FreeFunctionRef).Target}
	default:
		dv, err := w.eval(n.Dispatcher)
		if err != nil {
			return value.Void, err
		}
		c, ok := dv.Data.(*ir.Closure)
		if !ok {
			return value.Void, cerrors.NewRuntimeError("call target is not callable: %s", dv)
		}
		closure = c
	}

	result, err := closure.Invoke(args)
	if err != nil {
		return value.Void, err
	}
	if w.profiling && n.Profile != nil {
		n.Profile.Record(result)
	}
	return result, nil
}

func asBool(v value.Value) (bool, error) {
	if v.Kind != kind.BOOL {
		return false, cerrors.NewRuntimeError("expected a boolean condition, got %s", v)
	}
	return v.Bool(), nil
}
