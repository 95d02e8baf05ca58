package observer

import (
	"testing"

	"github.com/vassilibykov/enfilade-go/internal/ir"
	"github.com/vassilibykov/enfilade-go/internal/kind"
	"github.com/vassilibykov/enfilade-go/internal/value"
)

// TestUnreachedBranchStaysUnknown builds an If whose false branch was
// never taken (FalseCount stays zero) and checks that the else branch's
// Constant node is left Unknown rather than claiming an observed type
// for code that never ran.
func TestUnreachedBranchStaysUnknown(t *testing.T) {
	fn := ir.NewFunctionImpl("f", nil, nil)
	elseConst := &ir.Constant{Value: value.Bool(false)}
	ifNode := &ir.If{
		Cond: &ir.Constant{Value: value.Bool(true)},
		Then: &ir.Constant{Value: value.Int(1)},
		Else: elseConst,
	}
	ifNode.RecordBranch(true) // only the true branch was ever taken
	fn.Body = ifNode

	Observe(fn, nil)

	if elseConst.ObservedType.IsKnown() {
		t.Errorf("unreached else branch's ObservedType = %v, want Unknown", elseConst.ObservedType)
	}
	if ifNode.ObservedType != kind.Known(kind.INT) {
		t.Errorf("If.ObservedType = %v, want Known(INT) (opportunistic join ignores unreached branch)", ifNode.ObservedType)
	}
}

func TestObservedTypeReadsValueProfile(t *testing.T) {
	fn := ir.NewFunctionImpl("f", nil, nil)
	callee := ir.NewFunctionImpl("callee", nil, &ir.Constant{Value: value.Int(0)})
	call := &ir.Call{Dispatcher: &ir.FreeFunctionRef{Target: callee}, Profile: ir.NewValueProfile()}
	call.Profile.Record(value.Int(42))
	fn.Body = call

	Observe(fn, nil)

	if call.ObservedType != kind.Known(kind.INT) {
		t.Errorf("Call.ObservedType = %v, want Known(INT)", call.ObservedType)
	}
}
