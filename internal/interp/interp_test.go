package interp

import (
	"testing"

	"github.com/vassilibykov/enfilade-go/internal/ir"
	"github.com/vassilibykov/enfilade-go/internal/kind"
	"github.com/vassilibykov/enfilade-go/internal/value"
)

// addPrimitive is a minimal stand-in for pkg/primitive's "+" used only
// to exercise Primitive2 without importing that package here.
type addPrimitive struct{}

func (addPrimitive) Name() string { return "+" }
func (addPrimitive) Infer(args ...kind.ExprType) kind.ExprType {
	return kind.Known(kind.INT)
}
func (addPrimitive) Apply(args ...value.Value) (value.Value, error) {
	return value.Int(args[0].Int64() + args[1].Int64()), nil
}
func (addPrimitive) Emit(argKinds []kind.Kind) (interface{}, kind.Kind, bool) {
	return nil, kind.INT, false
}

func setupFrame(fn *ir.FunctionImpl, n int) {
	fn.FrameSize = n
}

func TestEvalConstant(t *testing.T) {
	fn := ir.NewFunctionImpl("f", nil, &ir.Constant{Value: value.Int(42)})
	setupFrame(fn, 0)

	v, err := Plain(fn)(nil)
	if err != nil {
		t.Fatalf("invoke failed: %v", err)
	}
	if v.Int64() != 42 {
		t.Errorf("result = %v, want 42", v)
	}
}

func TestEvalIfRecordsBranchUnderProfiling(t *testing.T) {
	fn := ir.NewFunctionImpl("f", nil, nil)
	ifNode := &ir.If{
		Cond: &ir.Constant{Value: value.Bool(true)},
		Then: &ir.Constant{Value: value.Int(1)},
		Else: &ir.Constant{Value: value.Int(2)},
	}
	fn.Body = ifNode
	setupFrame(fn, 0)

	v, err := Profiling(fn)(nil)
	if err != nil {
		t.Fatalf("invoke failed: %v", err)
	}
	if v.Int64() != 1 {
		t.Errorf("result = %v, want 1", v)
	}
	if ifNode.TrueCount() != 1 || ifNode.FalseCount() != 0 {
		t.Errorf("branch counts = %d/%d, want 1/0", ifNode.TrueCount(), ifNode.FalseCount())
	}
}

func TestEvalIfRejectsNonBooleanConditionAtRuntime(t *testing.T) {
	fn := ir.NewFunctionImpl("f", nil, &ir.If{
		Cond: &ir.Constant{Value: value.Int(1)},
		Then: &ir.Constant{Value: value.Int(1)},
		Else: &ir.Constant{Value: value.Int(2)},
	})
	setupFrame(fn, 0)

	_, err := Plain(fn)(nil)
	if err == nil {
		t.Fatal("expected a runtime error for a non-boolean condition")
	}
}

func TestEvalReturnUnwindsToInvocationBoundary(t *testing.T) {
	p := ir.NewVariable("p", ir.RoleDeclared, nil)
	fn := ir.NewFunctionImpl("f", []*ir.Variable{p}, nil)
	p.FrameIndex = 0
	fn.Body = &ir.Block{Exprs: []ir.Node{
		&ir.If{
			Cond: &ir.GetVar{Var: p},
			Then: &ir.Return{Value: &ir.Constant{Value: value.Int(99)}},
			Else: &ir.Constant{Value: value.Void},
		},
		&ir.Constant{Value: value.Int(1)},
	}}
	setupFrame(fn, 1)

	v, err := Plain(fn)([]value.Value{value.Bool(true)})
	if err != nil {
		t.Fatalf("invoke failed: %v", err)
	}
	if v.Int64() != 99 {
		t.Errorf("result = %v, want 99 (early return)", v)
	}
}

func TestEvalPrimitive2(t *testing.T) {
	fn := ir.NewFunctionImpl("f", nil, &ir.Primitive2{
		Impl: addPrimitive{},
		Arg1: &ir.Constant{Value: value.Int(3)},
		Arg2: &ir.Constant{Value: value.Int(4)},
	})
	setupFrame(fn, 0)

	v, err := Plain(fn)(nil)
	if err != nil {
		t.Fatalf("invoke failed: %v", err)
	}
	if v.Int64() != 7 {
		t.Errorf("result = %v, want 7", v)
	}
}

func TestEvalClosureCaptureAndCall(t *testing.T) {
	outer := ir.NewFunctionImpl("outer", nil, nil)
	x := ir.NewVariable("x", ir.RoleLet, outer)
	x.FrameIndex = 0

	inner := ir.NewFunctionImpl("inner", nil, nil)
	xCopy := ir.NewVariable("x", ir.RoleCopied, inner)
	xCopy.Original = x
	xCopy.FrameIndex = 0
	inner.SyntheticParams = []*ir.Variable{xCopy}
	inner.Body = &ir.GetVar{Var: xCopy}
	inner.FrameSize = 1
	inner.CallTarget.Store(Plain(inner))

	ce := &ir.ClosureExpr{FuncRef: inner}
	outer.Captures[ce] = []ir.CaptureSupplier{{Var: x, FrameIndex: 0}}
	outer.Body = &ir.Let{
		Var:  x,
		Init: &ir.Constant{Value: value.Int(5)},
		Body: &ir.Call{Dispatcher: ce},
	}
	outer.FrameSize = 1

	v, err := Plain(outer)(nil)
	if err != nil {
		t.Fatalf("invoke failed: %v", err)
	}
	if v.Int64() != 5 {
		t.Errorf("result = %v, want 5 (captured value of x)", v)
	}
}
