package primitive

import (
	"testing"

	"github.com/vassilibykov/enfilade-go/internal/ir"
	"github.com/vassilibykov/enfilade-go/internal/kind"
	"github.com/vassilibykov/enfilade-go/internal/value"
)

func TestAddApply(t *testing.T) {
	v, err := Add.Apply(value.Int(3), value.Int(4))
	if err != nil || v.Int64() != 7 {
		t.Fatalf("Add.Apply = %v, %v, want 7, nil", v, err)
	}
}

func TestAddApplyRejectsNonIntegers(t *testing.T) {
	if _, err := Add.Apply(value.Int(1), value.Bool(true)); err == nil {
		t.Fatal("expected a runtime error for a non-integer operand")
	}
}

func TestAddEmitMatchesApplyOnIntOperands(t *testing.T) {
	emitter, produced, ok := Add.Emit([]kind.Kind{kind.INT, kind.INT})
	if !ok || produced != kind.INT {
		t.Fatalf("Emit ok=%v produced=%v", ok, produced)
	}
	inv := emitter.(ir.Invoker)
	v, err := inv([]value.Value{value.Int(3), value.Int(4)})
	if err != nil || v.Int64() != 7 {
		t.Fatalf("emitted fast path = %v, %v, want 7, nil", v, err)
	}
}

func TestAddEmitRefusesNonIntOperands(t *testing.T) {
	if _, _, ok := Add.Emit([]kind.Kind{kind.INT, kind.BOOL}); ok {
		t.Error("Add.Emit should refuse a BOOL operand")
	}
}

func TestLessThanOptimizedIf(t *testing.T) {
	emitter, ok := Less.EmitBranch([]kind.Kind{kind.INT, kind.INT})
	if !ok {
		t.Fatal("expected Less to fuse for two INT operands")
	}
	test := emitter.(ir.BranchTest)
	taken, err := test([]ir.Value{value.Int(1), value.Int(2)})
	if err != nil || !taken {
		t.Errorf("1 < 2 fused test = %v, %v, want true, nil", taken, err)
	}
	taken, err = test([]ir.Value{value.Int(5), value.Int(2)})
	if err != nil || taken {
		t.Errorf("5 < 2 fused test = %v, %v, want false, nil", taken, err)
	}
}

func TestEqualAcrossKinds(t *testing.T) {
	v, err := Equal.Apply(value.Int(3), value.Bool(true))
	if err != nil || v.Bool() {
		t.Errorf("Equal.Apply across different kinds = %v, %v, want false, nil", v, err)
	}
}

func TestNotEmitBranch(t *testing.T) {
	emitter, ok := Not.EmitBranch([]kind.Kind{kind.BOOL})
	if !ok {
		t.Fatal("expected not to fuse for a BOOL operand")
	}
	test := emitter.(ir.BranchTest)
	taken, err := test([]ir.Value{value.Bool(false)})
	if err != nil || !taken {
		t.Errorf("not(false) fused test = %v, %v, want true, nil", taken, err)
	}
}
