// Package analyzer implements the three pre-execution static analyses of
// §4.1: scope validation, closure conversion, and frame-index assignment.
// The multi-pass shape — a fixed ordered pipeline, each pass annotating
// the tree in place and reporting a CompilerError rather than panicking —
// is adapted from the teacher's internal/semantic Pass/PassManager, with
// one pass per step of §4.1 instead of one pass per DWScript language
// feature.
package analyzer

import (
	"fmt"

	"github.com/vassilibykov/enfilade-go/internal/ir"
)

// Pass is one analysis over a compilation unit (a top-level FunctionImpl
// plus every FunctionImpl nested inside it, in discovery order).
type Pass interface {
	Name() string
	Run(top *ir.FunctionImpl, unit []*ir.FunctionImpl) error
}

// Analyzer runs the fixed three-pass pipeline in order.
type Analyzer struct {
	passes []Pass
}

// New creates an Analyzer with the standard scope-validation ->
// closure-conversion -> indexing pipeline.
func New() *Analyzer {
	return &Analyzer{
		passes: []Pass{
			scopeValidationPass{},
			closureConversionPass{},
			indexingPass{},
		},
	}
}

// Analyze discovers fn's compilation unit and runs every pass over it.
// On success, top.Unit holds the discovered nested functions, every
// variable has a stable frame index, and every FunctionImpl in the unit
// is ready for the type inferencer (§4.2).
func (a *Analyzer) Analyze(top *ir.FunctionImpl) error {
	top.Unit = discoverUnit(top)
	for _, p := range a.passes {
		if err := p.Run(top, top.Unit); err != nil {
			return fmt.Errorf("%s: %w", p.Name(), err)
		}
	}
	return nil
}

// discoverUnit walks top's body (and transitively every nested closure's
// body) in pre-order, recording each nested FunctionImpl it finds and
// setting its Enclosing pointer. The result is used, reversed, as a
// valid bottom-up (children-before-parent) processing order for closure
// conversion: the reverse of a pre-order traversal of a tree is always a
// valid post-order traversal of it.
func discoverUnit(top *ir.FunctionImpl) []*ir.FunctionImpl {
	var unit []*ir.FunctionImpl
	var walk func(fn *ir.FunctionImpl, n ir.Node)
	walk = func(fn *ir.FunctionImpl, n ir.Node) {
		switch t := n.(type) {
		case *ir.GetVar, *ir.Constant, *ir.FreeFunctionRef, nil:
		case *ir.SetVar:
			walk(fn, t.Value)
		case *ir.Let:
			walk(fn, t.Init)
			walk(fn, t.Body)
		case *ir.If:
			walk(fn, t.Cond)
			walk(fn, t.Then)
			walk(fn, t.Else)
		case *ir.While:
			walk(fn, t.Cond)
			walk(fn, t.Body)
		case *ir.Block:
			for _, e := range t.Exprs {
				walk(fn, e)
			}
		case *ir.Return:
			walk(fn, t.Value)
		case *ir.Call:
			walk(fn, t.Dispatcher)
			for _, arg := range t.Args {
				walk(fn, arg)
			}
		case *ir.Primitive1:
			walk(fn, t.Arg)
		case *ir.Primitive2:
			walk(fn, t.Arg1)
			walk(fn, t.Arg2)
		case *ir.ClosureExpr:
			nested := t.FuncRef
			if nested.Enclosing == nil {
				nested.Enclosing = fn
			}
			unit = append(unit, nested)
			walk(nested, nested.Body)
		}
	}
	walk(top, top.Body)
	return unit
}

// reversed returns a new slice with fns in reverse order.
func reversed(fns []*ir.FunctionImpl) []*ir.FunctionImpl {
	out := make([]*ir.FunctionImpl, len(fns))
	for i, fn := range fns {
		out[len(fns)-1-i] = fn
	}
	return out
}
