package analyzer

import "github.com/vassilibykov/enfilade-go/internal/ir"

// closureConversionPass is §4.1 pass 2. It eliminates free variable
// references by giving every function its own RoleCopied variable for
// each transitively-free variable it touches, and records, at each
// ClosureExpr node, the ordered capture template a closure creation must
// read from the enclosing function's frame.
//
// Functions are processed bottom-up (leaves before their enclosing
// function) so that, by the time fn is converted, every function nested
// inside fn already has its own SyntheticParams fully populated and each
// one's Original correctly chained. reversed(unit) followed by top is
// exactly this order: discoverUnit records nested functions in pre-order,
// and the reverse of a pre-order tree traversal is always a valid
// post-order (children-before-parent) traversal of it.
type closureConversionPass struct{}

func (closureConversionPass) Name() string { return "closure-conversion" }

func (closureConversionPass) Run(top *ir.FunctionImpl, unit []*ir.FunctionImpl) error {
	order := append(reversed(unit), top)
	for _, fn := range order {
		convertFunction(fn)
	}
	return nil
}

// ensureCopy returns fn's own RoleCopied variable mirroring orig,
// creating one (and appending it to fn.SyntheticParams) on first use.
func ensureCopy(fn *ir.FunctionImpl, orig *ir.Variable) *ir.Variable {
	for _, v := range fn.SyntheticParams {
		if v.Original == orig {
			return v
		}
	}
	cp := ir.NewVariable(orig.Name, ir.RoleCopied, fn)
	cp.Original = orig
	fn.SyntheticParams = append(fn.SyntheticParams, cp)
	return cp
}

// supplierFor resolves, within fn, the variable that supplies orig's
// value: orig itself if fn owns it directly, otherwise fn's own copy of
// it (created if necessary).
func supplierFor(fn *ir.FunctionImpl, orig *ir.Variable) *ir.Variable {
	if orig.Host == fn {
		return orig
	}
	return ensureCopy(fn, orig)
}

func convertFunction(fn *ir.FunctionImpl) {
	convertNode(fn, fn.Body)
}

func convertNode(fn *ir.FunctionImpl, n ir.Node) {
	switch t := n.(type) {
	case *ir.Constant, *ir.FreeFunctionRef:
		return
	case *ir.GetVar:
		if t.Var.Host != fn {
			t.Var = supplierFor(fn, t.Var)
		}
	case *ir.SetVar:
		if t.Var.Host != fn {
			t.Var = supplierFor(fn, t.Var)
		}
		convertNode(fn, t.Value)
	case *ir.Let:
		convertNode(fn, t.Init)
		convertNode(fn, t.Body)
	case *ir.If:
		convertNode(fn, t.Cond)
		convertNode(fn, t.Then)
		convertNode(fn, t.Else)
	case *ir.While:
		convertNode(fn, t.Cond)
		convertNode(fn, t.Body)
	case *ir.Block:
		for _, e := range t.Exprs {
			convertNode(fn, e)
		}
	case *ir.Return:
		convertNode(fn, t.Value)
	case *ir.Call:
		convertNode(fn, t.Dispatcher)
		for _, arg := range t.Args {
			convertNode(fn, arg)
		}
	case *ir.Primitive1:
		convertNode(fn, t.Arg)
	case *ir.Primitive2:
		convertNode(fn, t.Arg1)
		convertNode(fn, t.Arg2)
	case *ir.ClosureExpr:
		nested := t.FuncRef
		template := make([]ir.CaptureSupplier, len(nested.SyntheticParams))
		for i, synth := range nested.SyntheticParams {
			template[i] = ir.CaptureSupplier{Var: supplierFor(fn, synth.Original), FrameIndex: -1}
		}
		fn.Captures[t] = template
	}
}
