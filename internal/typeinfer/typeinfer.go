// Package typeinfer implements the bottom-up static type inferencer of
// §4.2: a fixed-point pass that assigns InferredType to every node and
// widens each Variable's InferredType as it is read and written, until a
// full pass changes nothing.
package typeinfer

import (
	cerrors "github.com/vassilibykov/enfilade-go/internal/errors"
	"github.com/vassilibykov/enfilade-go/internal/ir"
	"github.com/vassilibykov/enfilade-go/internal/kind"
)

// Infer runs the inferencer to a fixed point over every function in the
// unit (the top-level function plus everything nested inside it). It
// reports a CompilerError if an If/While condition's inferred type is
// Known and not BOOL/REF.
func Infer(top *ir.FunctionImpl, unit []*ir.FunctionImpl) error {
	all := append([]*ir.FunctionImpl{top}, unit...)
	for {
		widened := false
		for _, fn := range all {
			w, err := inferFunction(fn)
			if err != nil {
				return err
			}
			widened = widened || w
		}
		if !widened {
			return nil
		}
	}
}

func inferFunction(fn *ir.FunctionImpl) (widened bool, err error) {
	bodyType, widened, err := inferNode(fn, fn.Body)
	if err != nil {
		return widened, err
	}
	// A body that ends in a Return (Known(VOID)) has no fall-through
	// value; its Return nodes have already folded into ReturnType.
	if bodyType.IsKnown() && bodyType.Kind() == kind.VOID {
		return widened, nil
	}
	newType, w := kind.Unify(fn.ReturnType, bodyType)
	if w {
		fn.ReturnType = newType
		widened = true
	}
	return widened, nil
}

// inferNode returns the node's inferred type, whether this visit widened
// some variable's InferredType, and an error for an ill-typed condition.
func inferNode(fn *ir.FunctionImpl, n ir.Node) (kind.ExprType, bool, error) {
	switch t := n.(type) {
	case *ir.Constant:
		t.InferredType = kind.Known(t.Value.Kind)
		return t.InferredType, false, nil

	case *ir.GetVar:
		t.InferredType = t.Var.InferredType
		return t.InferredType, false, nil

	case *ir.SetVar:
		valType, widened, err := inferNode(fn, t.Value)
		if err != nil {
			return kind.Unknown, widened, err
		}
		newType, w := kind.Unify(t.Var.InferredType, valType)
		if w {
			t.Var.InferredType = newType
			widened = true
		}
		t.InferredType = valType
		return t.InferredType, widened, nil

	case *ir.Let:
		initType, w1, err := inferNode(fn, t.Init)
		if err != nil {
			return kind.Unknown, w1, err
		}
		newType, w2 := kind.Unify(t.Var.InferredType, initType)
		if w2 {
			t.Var.InferredType = newType
		}
		bodyType, w3, err := inferNode(fn, t.Body)
		if err != nil {
			return kind.Unknown, w1 || w2 || w3, err
		}
		t.InferredType = bodyType
		return t.InferredType, w1 || w2 || w3, nil

	case *ir.If:
		condType, w1, err := inferNode(fn, t.Cond)
		if err != nil {
			return kind.Unknown, w1, err
		}
		if condType.IsKnown() && condType.Kind() != kind.BOOL && condType.Kind() != kind.REF {
			return kind.Unknown, w1, cerrors.NewCompilerError(fn.Name, "if condition has non-boolean inferred type %s", condType)
		}
		thenType, w2, err := inferNode(fn, t.Then)
		if err != nil {
			return kind.Unknown, w1 || w2, err
		}
		elseType, w3, err := inferNode(fn, t.Else)
		if err != nil {
			return kind.Unknown, w1 || w2 || w3, err
		}
		t.InferredType = kind.JoinPessimisticFoldingReturn(thenType, elseType)
		return t.InferredType, w1 || w2 || w3, nil

	case *ir.While:
		condType, w1, err := inferNode(fn, t.Cond)
		if err != nil {
			return kind.Unknown, w1, err
		}
		if condType.IsKnown() && condType.Kind() != kind.BOOL && condType.Kind() != kind.REF {
			return kind.Unknown, w1, cerrors.NewCompilerError(fn.Name, "while condition has non-boolean inferred type %s", condType)
		}
		bodyType, w2, err := inferNode(fn, t.Body)
		if err != nil {
			return kind.Unknown, w1 || w2, err
		}
		t.InferredType = bodyType
		return t.InferredType, w1 || w2, nil

	case *ir.Block:
		widened := false
		last := kind.Known(kind.REF)
		if len(t.Exprs) == 0 {
			t.InferredType = last
			return t.InferredType, false, nil
		}
		for _, e := range t.Exprs {
			ty, w, err := inferNode(fn, e)
			if err != nil {
				return kind.Unknown, widened || w, err
			}
			widened = widened || w
			last = ty
		}
		t.InferredType = last
		return t.InferredType, widened, nil

	case *ir.Return:
		valType, widened, err := inferNode(fn, t.Value)
		if err != nil {
			return kind.Unknown, widened, err
		}
		newType, w := kind.Unify(fn.ReturnType, valType)
		if w {
			fn.ReturnType = newType
			widened = true
		}
		t.InferredType = kind.Known(kind.VOID)
		return t.InferredType, widened, nil

	case *ir.Call:
		widened := false
		for _, arg := range t.Args {
			_, w, err := inferNode(fn, arg)
			if err != nil {
				return kind.Unknown, widened || w, err
			}
			widened = widened || w
		}
		if _, w, err := inferNode(fn, t.Dispatcher); err != nil {
			return kind.Unknown, widened || w, err
		} else {
			widened = widened || w
		}
		t.InferredType = kind.Unknown
		return t.InferredType, widened, nil

	case *ir.Primitive1:
		argType, widened, err := inferNode(fn, t.Arg)
		if err != nil {
			return kind.Unknown, widened, err
		}
		t.InferredType = t.Impl.Infer(argType)
		return t.InferredType, widened, nil

	case *ir.Primitive2:
		arg1Type, w1, err := inferNode(fn, t.Arg1)
		if err != nil {
			return kind.Unknown, w1, err
		}
		arg2Type, w2, err := inferNode(fn, t.Arg2)
		if err != nil {
			return kind.Unknown, w1 || w2, err
		}
		t.InferredType = t.Impl.Infer(arg1Type, arg2Type)
		return t.InferredType, w1 || w2, nil

	case *ir.ClosureExpr:
		t.InferredType = kind.Known(kind.REF)
		return t.InferredType, false, nil

	case *ir.FreeFunctionRef:
		t.InferredType = kind.Known(kind.REF)
		return t.InferredType, false, nil

	default:
		return kind.Unknown, false, cerrors.NewCompilerError(fn.Name, "type inference: unhandled node %T", t)
	}
}
