package analyzer

import "github.com/vassilibykov/enfilade-go/internal/ir"

// indexingPass is §4.1 pass 3. It assigns each function's frame layout:
// synthetic (captured) parameters first, then declared parameters, then
// let-bound locals allocated stack-like over the rest of the frame —
// and, at each ClosureExpr node, fills in the frame index of every
// capture-template entry recorded by closure conversion. Functions are
// independent of one another here, so processing order does not matter.
type indexingPass struct{}

func (indexingPass) Name() string { return "indexing" }

func (indexingPass) Run(top *ir.FunctionImpl, unit []*ir.FunctionImpl) error {
	all := append([]*ir.FunctionImpl{top}, unit...)
	for _, fn := range all {
		indexFunction(fn)
	}
	return nil
}

func indexFunction(fn *ir.FunctionImpl) {
	next := 0
	for _, v := range fn.SyntheticParams {
		v.FrameIndex = next
		next++
	}
	for _, v := range fn.DeclaredParams {
		v.FrameIndex = next
		next++
	}
	maxSlot := next
	idx := &indexer{fn: fn, next: next, maxSlot: &maxSlot}
	idx.walk(fn.Body)
	fn.FrameSize = *idx.maxSlot
}

type indexer struct {
	fn      *ir.FunctionImpl
	next    int
	maxSlot *int
}

func (ix *indexer) walk(n ir.Node) {
	switch t := n.(type) {
	case *ir.Constant, *ir.FreeFunctionRef, *ir.GetVar:
		return
	case *ir.SetVar:
		ix.walk(t.Value)
	case *ir.Let:
		ix.walk(t.Init)
		t.Var.FrameIndex = ix.next
		ix.next++
		if ix.next > *ix.maxSlot {
			*ix.maxSlot = ix.next
		}
		ix.walk(t.Body)
		ix.next--
	case *ir.If:
		ix.walk(t.Cond)
		ix.walk(t.Then)
		ix.walk(t.Else)
	case *ir.While:
		ix.walk(t.Cond)
		ix.walk(t.Body)
	case *ir.Block:
		for _, e := range t.Exprs {
			ix.walk(e)
		}
	case *ir.Return:
		ix.walk(t.Value)
	case *ir.Call:
		ix.walk(t.Dispatcher)
		for _, arg := range t.Args {
			ix.walk(arg)
		}
	case *ir.Primitive1:
		ix.walk(t.Arg)
	case *ir.Primitive2:
		ix.walk(t.Arg1)
		ix.walk(t.Arg2)
	case *ir.ClosureExpr:
		template := ix.fn.Captures[t]
		for i := range template {
			template[i].FrameIndex = template[i].Var.FrameIndex
		}
	}
}
