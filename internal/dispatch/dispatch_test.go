package dispatch

import (
	"testing"

	cerrors "github.com/vassilibykov/enfilade-go/internal/errors"
	"github.com/vassilibykov/enfilade-go/internal/ir"
	"github.com/vassilibykov/enfilade-go/internal/kind"
	"github.com/vassilibykov/enfilade-go/internal/value"
)

func TestGuardDispatchesSpecializedOnMatch(t *testing.T) {
	fn := ir.NewFunctionImpl("f", nil, nil)
	fn.SpecializedParamKinds = []kind.Kind{kind.INT}
	fn.GenericEntry = func(args []value.Value) (value.Value, error) {
		return value.Ref("generic"), nil
	}
	fn.SpecializedEntry = func(args []value.Value) (value.Value, error) {
		return value.Int(args[0].Int64() * 2), nil
	}

	guard := Guard(fn)
	v, err := guard([]value.Value{value.Int(21)})
	if err != nil {
		t.Fatalf("guard failed: %v", err)
	}
	if v.Int64() != 42 {
		t.Errorf("result = %v, want 42 (specialized path taken)", v)
	}
}

func TestGuardFallsBackToGenericOnKindMismatch(t *testing.T) {
	fn := ir.NewFunctionImpl("f", nil, nil)
	fn.SpecializedParamKinds = []kind.Kind{kind.INT}
	fn.GenericEntry = func(args []value.Value) (value.Value, error) {
		return value.Ref("generic"), nil
	}
	fn.SpecializedEntry = func(args []value.Value) (value.Value, error) {
		t.Fatal("specialized entry must not run on a kind mismatch")
		return value.Void, nil
	}

	guard := Guard(fn)
	v, err := guard([]value.Value{value.Bool(true)})
	if err != nil {
		t.Fatalf("guard failed: %v", err)
	}
	if v.Data != "generic" {
		t.Errorf("result = %v, want the generic path's result", v)
	}
}

func TestGuardRecoversSquarePegIntoGenericRetry(t *testing.T) {
	fn := ir.NewFunctionImpl("f", nil, nil)
	fn.SpecializedParamKinds = []kind.Kind{kind.INT}
	fn.GenericEntry = func(args []value.Value) (value.Value, error) {
		return value.Ref(args[0].Data), nil
	}
	fn.SpecializedEntry = func(args []value.Value) (value.Value, error) {
		cerrors.Raise(value.Ref("surprise"))
		panic("unreachable")
	}

	guard := Guard(fn)
	v, err := guard([]value.Value{value.Int(7)})
	if err != nil {
		t.Fatalf("guard failed: %v", err)
	}
	if v.Data != int64(7) {
		t.Errorf("result = %v, want the generic retry's result over the original args", v)
	}
}

func TestGuardWithNoSpecializedEntryIsJustGeneric(t *testing.T) {
	fn := ir.NewFunctionImpl("f", nil, nil)
	fn.GenericEntry = func(args []value.Value) (value.Value, error) {
		return value.Int(1), nil
	}

	guard := Guard(fn)
	v, err := guard(nil)
	if err != nil || v.Int64() != 1 {
		t.Errorf("Guard with nil SpecializedEntry should be the generic entry directly")
	}
}

func TestPublishUnitInstallsAndMarksCompiled(t *testing.T) {
	top := ir.NewFunctionImpl("top", nil, nil)
	nested := ir.NewFunctionImpl("nested", nil, nil)
	top.RegistryID = 0
	nested.RegistryID = 1
	top.CompareAndSwapState(ir.StateProfiling, ir.StateCompiling)
	nested.CompareAndSwapState(ir.StateProfiling, ir.StateCompiling)

	want := value.Int(9)
	targets := map[*ir.FunctionImpl]ir.Invoker{
		top:    func(args []value.Value) (value.Value, error) { return want, nil },
		nested: func(args []value.Value) (value.Value, error) { return want, nil },
	}
	PublishUnit([]*ir.FunctionImpl{top, nested}, targets)

	if top.State() != ir.StateCompiled || nested.State() != ir.StateCompiled {
		t.Fatal("expected both functions marked COMPILED")
	}
	v, err := top.CallTarget.Load()(nil)
	if err != nil || v.Int64() != 9 {
		t.Errorf("top's installed call target did not run, got %v/%v", v, err)
	}
}
