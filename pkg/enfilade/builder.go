// Package enfilade is the external surface of the runtime (§6): an
// expression builder that assembles an evaluator-node tree node by node,
// a Library for named (possibly mutually recursive) lambda definitions,
// and the UserFunction/Closure wrappers host code calls into and out of.
// Everything in internal/ is implementation; this package is the only
// one a consumer outside this module is meant to import.
package enfilade

import (
	"github.com/vassilibykov/enfilade-go/internal/ir"
	"github.com/vassilibykov/enfilade-go/internal/value"
)

// Node is a built evaluator-node tree, ready to become (part of) a
// Lambda's body.
type Node = ir.Node

// Value is the opaque runtime value every invocation accepts and
// returns (§6).
type Value = value.Value

// NewInt constructs an INT value.
func NewInt(n int64) Value { return value.Int(n) }

// NewBool constructs a BOOL value.
func NewBool(b bool) Value { return value.Bool(b) }

// NewRef constructs a REF value wrapping an arbitrary host payload
// (e.g. a string, as used by the branching and fibonacci scenarios).
func NewRef(v interface{}) Value { return value.Ref(v) }

// Const embeds a literal value as a leaf node.
func Const(v Value) Node { return &ir.Constant{Value: v} }

// Get reads v's current value. v must be a parameter or let-bound local
// of the lambda this node is built against (or owned by a lexically
// enclosing one); the analyzer rejects anything else at Build/Analyze
// time rather than at Get-construction time, since a node tree is built
// bottom-up before its owning lambda's scope is known in full.
func Get(v *ir.Variable) Node { return &ir.GetVar{Var: v} }

// Set assigns val to v and evaluates to the assigned value.
func Set(v *ir.Variable, val Node) Node { return &ir.SetVar{Var: v, Value: val} }

// If evaluates cond and branches to then or els.
func If(cond, then, els Node) Node { return &ir.If{Cond: cond, Then: then, Else: els} }

// While loops evaluating body as long as cond holds.
func While(cond, body Node) Node { return &ir.While{Cond: cond, Body: body} }

// Seq evaluates exprs in order, yielding the last one's value.
func Seq(exprs ...Node) Node { return &ir.Block{Exprs: exprs} }

// Return exits the enclosing lambda with v.
func Return(v Node) Node { return &ir.Return{Value: v} }

// Call0/Call1/Call2 invoke dispatcher with 0, 1, or 2 arguments — the
// only arities this language's Call node supports (§3). Each gets its
// own fresh value profile, the same way ir.NewVariable wires a
// Variable's profile at construction time, so the interpreter and
// observer have somewhere to record the produced value's kind from the
// first call onward.
func Call0(dispatcher Node) Node {
	return &ir.Call{Dispatcher: dispatcher, Profile: ir.NewValueProfile()}
}
func Call1(dispatcher, a Node) Node {
	return &ir.Call{Dispatcher: dispatcher, Args: []Node{a}, Profile: ir.NewValueProfile()}
}
func Call2(dispatcher, a, b Node) Node {
	return &ir.Call{Dispatcher: dispatcher, Args: []Node{a, b}, Profile: ir.NewValueProfile()}
}

// Apply1/Apply2 apply a unary or binary primitive (pkg/primitive, or any
// other ir.PrimitiveImpl) to already-built argument nodes.
func Apply1(impl ir.PrimitiveImpl, a Node) Node { return &ir.Primitive1{Impl: impl, Arg: a} }
func Apply2(impl ir.PrimitiveImpl, a, b Node) Node {
	return &ir.Primitive2{Impl: impl, Arg1: a, Arg2: b}
}

// Bind assembles a Let node out of a variable handle returned by
// Lambda.Let: v's host is already the lambda it will be indexed into,
// set at the moment Let created it, before init and body are built.
func Bind(v *ir.Variable, init, body Node) Node {
	return &ir.Let{Var: v, Init: init, Body: body}
}

// Lambda incrementally builds one FunctionImpl. Parameters exist from
// construction so they can appear in Get/Set nodes while the body is
// still being assembled; the body itself is installed last, once every
// node referencing the lambda's own parameters and locals has been
// built.
type Lambda struct {
	fn *ir.FunctionImpl
}

// NewLambda creates a lambda named name with one freshly declared
// parameter per entry of paramNames.
func NewLambda(name string, paramNames ...string) *Lambda {
	params := make([]*ir.Variable, len(paramNames))
	for i, n := range paramNames {
		params[i] = ir.NewVariable(n, ir.RoleDeclared, nil)
	}
	return &Lambda{fn: ir.NewFunctionImpl(name, params, nil)}
}

// Param returns the i'th declared parameter.
func (l *Lambda) Param(i int) *ir.Variable { return l.fn.DeclaredParams[i] }

// Let declares a new let-bound local scoped to this lambda and returns
// its variable handle. Call it before building the init/body nodes that
// reference the local, then assemble them with Bind.
func (l *Lambda) Let(name string) *ir.Variable {
	return ir.NewVariable(name, ir.RoleLet, l.fn)
}

// LetIn is the closure-style convenience form of Let+Bind: it declares
// name, builds body with the new variable handle in hand, and returns
// the assembled Let node.
func (l *Lambda) LetIn(name string, init Node, body func(v *ir.Variable) Node) Node {
	v := l.Let(name)
	return Bind(v, init, body(v))
}

// Body installs n as the lambda's body and returns l for chaining.
func (l *Lambda) Body(n Node) *Lambda {
	l.fn.Body = n
	return l
}

// AsClosureExpr returns a node that, each time it is evaluated, creates
// a fresh closure capturing l's free variables as they stand at that
// moment — the way l appears inside an enclosing lambda's body.
func (l *Lambda) AsClosureExpr() Node { return &ir.ClosureExpr{FuncRef: l.fn} }

// Self returns a node referring directly to l with no captures, for
// direct recursion: a lambda calling itself by name from within its own
// body (§8's fibonacci scenario).
func (l *Lambda) Self() Node { return &ir.FreeFunctionRef{Target: l.fn} }
