// Package primitive implements the standard primitive set of §4.10: the
// arithmetic, comparison, and boolean operations every demo program in
// cmd/enfilade builds expressions from. Each satisfies ir.PrimitiveImpl;
// the boolean-producing ones additionally satisfy ir.OptimizedIf so the
// code generator can fuse them into a single compare-and-branch (§4.7).
package primitive

import (
	cerrors "github.com/vassilibykov/enfilade-go/internal/errors"
	"github.com/vassilibykov/enfilade-go/internal/ir"
	"github.com/vassilibykov/enfilade-go/internal/kind"
	"github.com/vassilibykov/enfilade-go/internal/value"
)

// intBinary is the shared shape of the three arithmetic primitives
// (+, -, *) that take two INT operands: a name, an Apply that checks
// both operand kinds, and a Go function used both by Apply and by the
// specialized emitter once the generator has already proven the kinds.
type intBinary struct {
	name string
	op   func(a, b int64) value.Value
}

func (p intBinary) Name() string { return p.name }

func (p intBinary) Infer(args ...kind.ExprType) kind.ExprType {
	if len(args) != 2 {
		return kind.Unknown
	}
	a, b := args[0], args[1]
	if !a.IsKnown() || !b.IsKnown() {
		return kind.Unknown
	}
	if a.Kind() == kind.INT && b.Kind() == kind.INT {
		return kind.Known(kind.INT)
	}
	return kind.Known(kind.REF)
}

func (p intBinary) Apply(args ...value.Value) (value.Value, error) {
	if len(args) != 2 {
		return value.Void, cerrors.NewRuntimeError("%s: expected 2 arguments, got %d", p.name, len(args))
	}
	a, b := args[0], args[1]
	if a.Kind != kind.INT || b.Kind != kind.INT {
		return value.Void, cerrors.NewRuntimeError("%s: expected two integers, got %s and %s", p.name, a, b)
	}
	return p.op(a.Int64(), b.Int64()), nil
}

func (p intBinary) Emit(argKinds []kind.Kind) (interface{}, kind.Kind, bool) {
	if len(argKinds) != 2 || argKinds[0] != kind.INT || argKinds[1] != kind.INT {
		return nil, kind.REF, false
	}
	var emitter ir.Invoker = func(args []value.Value) (value.Value, error) {
		return p.op(args[0].Int64(), args[1].Int64()), nil
	}
	return emitter, kind.INT, true
}

// Add is the binary "+" primitive.
var Add = intBinary{name: "+", op: func(a, b int64) value.Value { return value.Int(a + b) }}

// Sub is the binary "-" primitive.
var Sub = intBinary{name: "-", op: func(a, b int64) value.Value { return value.Int(a - b) }}

// Mul is the binary "*" primitive.
var Mul = intBinary{name: "*", op: func(a, b int64) value.Value { return value.Int(a * b) }}

// lessThan is "<". Like "=" and "not" it additionally implements
// OptimizedIf: an If whose condition is a "<" comparison
// compiles to a single fused compare-and-branch instead of materializing
// an intermediate BOOL.
type lessThan struct{}

func (lessThan) Name() string { return "<" }

func (lessThan) Infer(args ...kind.ExprType) kind.ExprType {
	if len(args) != 2 || !args[0].IsKnown() || !args[1].IsKnown() {
		return kind.Unknown
	}
	if args[0].Kind() == kind.INT && args[1].Kind() == kind.INT {
		return kind.Known(kind.BOOL)
	}
	return kind.Known(kind.REF)
}

func (lessThan) Apply(args ...value.Value) (value.Value, error) {
	if len(args) != 2 {
		return value.Void, cerrors.NewRuntimeError("<: expected 2 arguments, got %d", len(args))
	}
	a, b := args[0], args[1]
	if a.Kind != kind.INT || b.Kind != kind.INT {
		return value.Void, cerrors.NewRuntimeError("<: expected two integers, got %s and %s", a, b)
	}
	return value.Bool(a.Int64() < b.Int64()), nil
}

func (lessThan) Emit(argKinds []kind.Kind) (interface{}, kind.Kind, bool) {
	if len(argKinds) != 2 || argKinds[0] != kind.INT || argKinds[1] != kind.INT {
		return nil, kind.REF, false
	}
	var emitter ir.Invoker = func(args []value.Value) (value.Value, error) {
		return value.Bool(args[0].Int64() < args[1].Int64()), nil
	}
	return emitter, kind.BOOL, true
}

func (lessThan) EmitBranch(argKinds []kind.Kind) (interface{}, bool) {
	if len(argKinds) != 2 || argKinds[0] != kind.INT || argKinds[1] != kind.INT {
		return nil, false
	}
	var test ir.BranchTest = func(args []ir.Value) (bool, error) {
		return args[0].Int64() < args[1].Int64(), nil
	}
	return test, true
}

// Less is the "<" primitive.
var Less = lessThan{}

// equal is "=", defined over INT and BOOL operands (a REF-to-REF
// comparison falls back to Go's == on the boxed payload).
type equal struct{}

func (equal) Name() string { return "=" }

func (equal) Infer(args ...kind.ExprType) kind.ExprType {
	if len(args) != 2 || !args[0].IsKnown() || !args[1].IsKnown() {
		return kind.Unknown
	}
	return kind.Known(kind.BOOL)
}

func (equal) Apply(args ...value.Value) (value.Value, error) {
	if len(args) != 2 {
		return value.Void, cerrors.NewRuntimeError("=: expected 2 arguments, got %d", len(args))
	}
	a, b := args[0], args[1]
	if a.Kind != b.Kind {
		return value.Bool(false), nil
	}
	switch a.Kind {
	case kind.INT:
		return value.Bool(a.Int64() == b.Int64()), nil
	case kind.BOOL:
		return value.Bool(a.Bool() == b.Bool()), nil
	default:
		return value.Bool(a.Data == b.Data), nil
	}
}

func (equal) Emit(argKinds []kind.Kind) (interface{}, kind.Kind, bool) {
	if len(argKinds) != 2 || argKinds[0] != argKinds[1] {
		return nil, kind.BOOL, false
	}
	k := argKinds[0]
	var emitter ir.Invoker
	switch k {
	case kind.INT:
		emitter = func(args []value.Value) (value.Value, error) {
			return value.Bool(args[0].Int64() == args[1].Int64()), nil
		}
	case kind.BOOL:
		emitter = func(args []value.Value) (value.Value, error) {
			return value.Bool(args[0].Bool() == args[1].Bool()), nil
		}
	default:
		return nil, kind.BOOL, false
	}
	return emitter, kind.BOOL, true
}

func (equal) EmitBranch(argKinds []kind.Kind) (interface{}, bool) {
	if len(argKinds) != 2 || argKinds[0] != argKinds[1] {
		return nil, false
	}
	k := argKinds[0]
	var test ir.BranchTest
	switch k {
	case kind.INT:
		test = func(args []ir.Value) (bool, error) { return args[0].Int64() == args[1].Int64(), nil }
	case kind.BOOL:
		test = func(args []ir.Value) (bool, error) { return args[0].Bool() == args[1].Bool(), nil }
	default:
		return nil, false
	}
	return test, true
}

// Equal is the "=" primitive.
var Equal = equal{}

// not is the unary boolean negation primitive.
type not struct{}

func (not) Name() string { return "not" }

func (not) Infer(args ...kind.ExprType) kind.ExprType {
	if len(args) != 1 || !args[0].IsKnown() {
		return kind.Unknown
	}
	if args[0].Kind() == kind.BOOL {
		return kind.Known(kind.BOOL)
	}
	return kind.Known(kind.REF)
}

func (not) Apply(args ...value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Void, cerrors.NewRuntimeError("not: expected 1 argument, got %d", len(args))
	}
	a := args[0]
	if a.Kind != kind.BOOL {
		return value.Void, cerrors.NewRuntimeError("not: expected a boolean, got %s", a)
	}
	return value.Bool(!a.Bool()), nil
}

func (not) Emit(argKinds []kind.Kind) (interface{}, kind.Kind, bool) {
	if len(argKinds) != 1 || argKinds[0] != kind.BOOL {
		return nil, kind.BOOL, false
	}
	var emitter ir.Invoker = func(args []value.Value) (value.Value, error) {
		return value.Bool(!args[0].Bool()), nil
	}
	return emitter, kind.BOOL, true
}

func (not) EmitBranch(argKinds []kind.Kind) (interface{}, bool) {
	if len(argKinds) != 1 || argKinds[0] != kind.BOOL {
		return nil, false
	}
	var test ir.BranchTest = func(args []ir.Value) (bool, error) { return !args[0].Bool(), nil }
	return test, true
}

// Not is the "not" primitive.
var Not = not{}
