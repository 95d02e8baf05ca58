package compile

import (
	"testing"

	"github.com/vassilibykov/enfilade-go/internal/ir"
	"github.com/vassilibykov/enfilade-go/internal/kind"
	"github.com/vassilibykov/enfilade-go/internal/value"

	"github.com/vassilibykov/enfilade-go/pkg/primitive"
)

func TestTriggerProducesAWorkingGenericEntry(t *testing.T) {
	fn := ir.NewFunctionImpl("add", nil, &ir.Primitive2{
		Impl: primitive.Add,
		Arg1: &ir.Constant{Value: value.Int(3)},
		Arg2: &ir.Constant{Value: value.Int(4)},
	})
	fn.IsTopLevel = true
	fn.CallTarget.Store(func(args []value.Value) (value.Value, error) {
		return value.Void, nil
	})

	Trigger(fn)

	if fn.State() != ir.StateCompiled {
		t.Fatalf("state = %v, want COMPILED", fn.State())
	}
	if fn.CompileError != nil {
		t.Fatalf("CompileError = %v, want nil", fn.CompileError)
	}

	v, err := fn.CallTarget.Load()(nil)
	if err != nil {
		t.Fatalf("compiled call failed: %v", err)
	}
	if v.Int64() != 7 {
		t.Errorf("result = %v, want 7", v)
	}
}

func TestTriggerIsIdempotentUnderRepeatedCalls(t *testing.T) {
	fn := ir.NewFunctionImpl("f", nil, &ir.Constant{Value: value.Int(1)})
	fn.IsTopLevel = true

	Trigger(fn)
	if fn.GenericEntry == nil {
		t.Fatal("GenericEntry should have been set by the first Trigger call")
	}

	Trigger(fn) // a second call must be a no-op: state is no longer PROFILING
	if fn.State() != ir.StateCompiled {
		t.Fatalf("state = %v, want COMPILED", fn.State())
	}
}

// TestTriggerSpecializesAnIntParameter profiles a function that always
// calls its comparison with an INT argument, then compiles it and checks
// that the specialized entry takes the fused less-than branch (exercised
// indirectly: both branches of the If produce distinguishable results).
func TestTriggerSpecializesAnIntParameter(t *testing.T) {
	x := ir.NewVariable("x", ir.RoleDeclared, nil)
	fn := ir.NewFunctionImpl("classify", []*ir.Variable{x}, nil)
	fn.Body = &ir.If{
		Cond: &ir.Primitive2{
			Impl: primitive.Less,
			Arg1: &ir.GetVar{Var: x},
			Arg2: &ir.Constant{Value: value.Int(10)},
		},
		Then: &ir.Constant{Value: value.Int(1)},
		Else: &ir.Constant{Value: value.Int(2)},
	}
	fn.IsTopLevel = true

	// Simulate what the profiling interpreter would have recorded: x was
	// always read as an INT, and both branches of the If were taken at
	// least once.
	x.Profile.Record(value.Int(5))
	x.Profile.Record(value.Int(50))
	fn.Body.(*ir.If).RecordBranch(true)
	fn.Body.(*ir.If).RecordBranch(false)

	Trigger(fn)

	if fn.State() != ir.StateCompiled {
		t.Fatalf("state = %v, want COMPILED", fn.State())
	}
	if len(fn.SpecializedParamKinds) != 1 || fn.SpecializedParamKinds[0] != kind.INT {
		t.Fatalf("SpecializedParamKinds = %v, want [INT]", fn.SpecializedParamKinds)
	}
	if fn.SpecializedEntry == nil {
		t.Fatal("expected a specialized entry for an INT-observed parameter")
	}

	v, err := fn.CallTarget.Load()([]value.Value{value.Int(3)})
	if err != nil {
		t.Fatalf("compiled call with an INT argument failed: %v", err)
	}
	if v.Int64() != 1 {
		t.Errorf("classify(3) = %v, want 1 (specialized true branch)", v)
	}

	v, err = fn.CallTarget.Load()([]value.Value{value.Int(20)})
	if err != nil {
		t.Fatalf("compiled call with an INT argument failed: %v", err)
	}
	if v.Int64() != 2 {
		t.Errorf("classify(20) = %v, want 2 (specialized false branch)", v)
	}

	// A BOOL argument doesn't fit the specialized signature; the guard
	// falls back to the generic entry, which still rejects it at the
	// comparison itself with an ordinary runtime error rather than
	// misbehaving.
	if _, err := fn.CallTarget.Load()([]value.Value{value.Bool(true)}); err == nil {
		t.Error("expected a runtime error comparing a BOOL argument to an INT constant")
	}
}

// TestTriggerCompilesNestedFunctionsWithTheUnit checks that a nested
// function discovered in the unit is compiled together with the
// top-level function, and that the compiled closure still reads the
// captured variable.
func TestTriggerCompilesNestedFunctionsWithTheUnit(t *testing.T) {
	top := ir.NewFunctionImpl("outer", nil, nil)
	x := ir.NewVariable("x", ir.RoleLet, top)
	inner := ir.NewFunctionImpl("inner", nil, &ir.GetVar{Var: x})
	ce := &ir.ClosureExpr{FuncRef: inner}

	top.Body = &ir.Let{
		Var:  x,
		Init: &ir.Constant{Value: value.Int(9)},
		Body: &ir.Call{Dispatcher: ce},
	}
	top.IsTopLevel = true

	Trigger(top)

	if top.State() != ir.StateCompiled {
		t.Fatalf("top state = %v, want COMPILED", top.State())
	}
	if inner.State() != ir.StateCompiled {
		t.Fatalf("inner state = %v, want COMPILED (discovered and compiled as part of the unit)", inner.State())
	}

	v, err := top.CallTarget.Load()(nil)
	if err != nil {
		t.Fatalf("compiled call failed: %v", err)
	}
	if v.Int64() != 9 {
		t.Errorf("result = %v, want 9 (closure capture survives compilation)", v)
	}
}

func TestTriggerSurfacesScopeErrorsAsCompileError(t *testing.T) {
	stray := ir.NewVariable("stray", ir.RoleLet, nil) // never declared in fn
	fn := ir.NewFunctionImpl("bad", nil, &ir.GetVar{Var: stray})
	fn.IsTopLevel = true

	Trigger(fn)

	if fn.CompileError == nil {
		t.Fatal("expected a CompileError for a reference to an undeclared variable")
	}
	if fn.State() != ir.StateCompiling {
		t.Fatalf("state = %v, want COMPILING (safe fallback on a failed compile, §5)", fn.State())
	}
	// The plain interpreter installed before analysis ran remains the
	// call target: the function is still callable, just never compiled.
	if fn.CallTarget.Load() == nil {
		t.Fatal("expected the plain interpreter fallback to remain installed")
	}
}
