// Package ir defines the evaluator-node tree (the expression IR), the
// variable and profile descriptors that annotate it, and the
// FunctionImpl/Closure types that give a lambda body an identity across
// the three execution tiers.
//
// Nodes form a tree: no sharing, no cycles. They are built once by an
// external expression builder (pkg/enfilade) and never restructured —
// only their annotations (InferredType, ObservedType, branch counters,
// call-site profiles) and a variable's profile/frame-index fields change
// after that: profiles while the function runs, inferred/observed types
// and frame indices during the analysis that runs when the function is
// built and again once it has entered COMPILING. Code generation only
// reads them (see the Open Question decision in DESIGN.md).
package ir

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/vassilibykov/enfilade-go/internal/kind"
	"github.com/vassilibykov/enfilade-go/internal/value"
)

// Node is the common interface of every evaluator-node variant. There is
// deliberately no separate Statement/Expression split: every form in this
// language produces a value, including If, While, Block and Return.
type Node interface {
	// String renders the node for debugging/disassembly.
	String() string
	// Annotated exposes the node's InferredType/ObservedType slot,
	// promoted from the embedded Annotations field every variant below
	// carries. Used by the code generator to pick a node's specialized
	// kind without a type switch over every variant (§4.6).
	Annotated() *Annotations

	irNode()
}

// Annotations are the two mutable per-node type annotations every node
// carries. Embed by value, not pointer, so each node owns its own slot.
type Annotations struct {
	InferredType kind.ExprType
	ObservedType kind.ExprType
}

// Annotated returns a's own address, promoted to every Node variant that
// embeds Annotations by value.
func (a *Annotations) Annotated() *Annotations { return a }

// Constant is a literal value baked into the tree by the builder.
type Constant struct {
	Annotations
	Value value.Value
}

func (c *Constant) irNode() {}
func (c *Constant) String() string { return c.Value.String() }

// GetVar reads a variable's current value from the frame.
type GetVar struct {
	Annotations
	Var *Variable
}

func (n *GetVar) irNode() {}
func (n *GetVar) String() string { return n.Var.Name }

// SetVar assigns Value to Var and evaluates to the assigned value.
type SetVar struct {
	Annotations
	Var   *Variable
	Value Node
}

func (n *SetVar) irNode() {}
func (n *SetVar) String() string { return fmt.Sprintf("(%s := %s)", n.Var.Name, n.Value) }

// Let introduces Var, scoped to Body, initialized from Init.
type Let struct {
	Annotations
	Var  *Variable
	Init Node
	Body Node
}

func (n *Let) irNode() {}
func (n *Let) String() string {
	return fmt.Sprintf("(let %s = %s in %s)", n.Var.Name, n.Init, n.Body)
}

// If evaluates Cond and branches to Then or Else. TrueCount/FalseCount
// are profile counters incremented by the profiling interpreter; they
// are not correctness-critical (occasional lost updates under
// concurrent profiling interpreters only delay specialization).
type If struct {
	Annotations
	Cond, Then, Else Node
	trueCount        int64
	falseCount       int64
}

func (n *If) irNode() {}
func (n *If) String() string {
	return fmt.Sprintf("(if %s then %s else %s)", n.Cond, n.Then, n.Else)
}

// RecordBranch increments the counter for the branch actually taken.
func (n *If) RecordBranch(taken bool) {
	if taken {
		atomic.AddInt64(&n.trueCount, 1)
	} else {
		atomic.AddInt64(&n.falseCount, 1)
	}
}

// TrueCount returns the number of times the condition was observed true.
func (n *If) TrueCount() int64 { return atomic.LoadInt64(&n.trueCount) }

// FalseCount returns the number of times the condition was observed false.
func (n *If) FalseCount() int64 { return atomic.LoadInt64(&n.falseCount) }

// While loops evaluating Body as long as Cond holds.
type While struct {
	Annotations
	Cond, Body Node
}

func (n *While) irNode() {}
func (n *While) String() string { return fmt.Sprintf("(while %s do %s)", n.Cond, n.Body) }

// Block evaluates Exprs in order; its value is the value of the last
// expression, or Void when empty (an empty Block's inferred type is
// Known(REF), §4.2).
type Block struct {
	Annotations
	Exprs []Node
}

func (n *Block) irNode() {}
func (n *Block) String() string {
	parts := make([]string, len(n.Exprs))
	for i, e := range n.Exprs {
		parts[i] = e.String()
	}
	return "{" + strings.Join(parts, "; ") + "}"
}

// Return exits the enclosing function with Value. Its own ExprType is
// always Known(VOID); Value's inferred type is unified into the
// function's body type (§4.2).
type Return struct {
	Annotations
	Value Node
}

func (n *Return) irNode() {}
func (n *Return) String() string { return fmt.Sprintf("(return %s)", n.Value) }

// CallTargetKind distinguishes the three ways a Call's dispatcher may
// identify its callee, per the invariant that every Call's dispatcher
// identifies exactly one callable.
type CallTargetKind int

const (
	// TargetDynamic means Dispatcher is an arbitrary expression that
	// must be evaluated to a callable Value at call time (e.g. a GetVar
	// reading a closure out of a variable).
	TargetDynamic CallTargetKind = iota
	// TargetClosure means Dispatcher is itself a *ClosureExpr node: the
	// callee's FunctionImpl is known statically, but a fresh closure
	// value (with its own captures) is created at every evaluation.
	TargetClosure
	// TargetFreeFunction means Dispatcher is a *FreeFunctionRef: the
	// callee's FunctionImpl is known statically and requires no capture
	// (a direct top-level or free function reference).
	TargetFreeFunction
)

// Call invokes Dispatcher with 0, 1, or 2 arguments.
type Call struct {
	Annotations
	Dispatcher Node
	Args       []Node // len 0, 1, or 2
	Profile    *ValueProfile
}

func (n *Call) irNode() {}
func (n *Call) String() string {
	parts := make([]string, len(n.Args))
	for i, a := range n.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", n.Dispatcher, strings.Join(parts, ", "))
}

// TargetKind classifies this call's dispatcher per CallTargetKind.
func (n *Call) TargetKind() CallTargetKind {
	switch n.Dispatcher.(type) {
	case *ClosureExpr:
		return TargetClosure
	case *FreeFunctionRef:
		return TargetFreeFunction
	default:
		return TargetDynamic
	}
}

// PrimitiveImpl is the contract a primitive operation (+, <, not, ...)
// must satisfy to appear in a Primitive1/Primitive2 node. It is declared
// here, in the core, because Call/Primitive nodes hold a PrimitiveImpl
// field directly; concrete primitives are supplied externally
// (pkg/primitive) per spec §6.
type PrimitiveImpl interface {
	// Name identifies the primitive for disassembly/error messages.
	Name() string
	// Infer is the primitive's declared static inference rule.
	Infer(args ...kind.ExprType) kind.ExprType
	// Apply is the primitive's interpretation: (arg values) -> value.
	// It returns an error — surfaced as a RuntimeError by the caller —
	// when an argument's kind does not fit the primitive (e.g. a
	// non-integer fed to integer arithmetic).
	Apply(args ...value.Value) (value.Value, error)
	// Emit returns, for the given static argument kinds, a code
	// emitter function and the kind it produces, or ok=false if this
	// primitive has no specialized emission for that kind combination
	// (the generator then falls back to the primitive's Apply through
	// a generic call). The emitter, when ok, is of dynamic type Invoker,
	// called with the node's already-evaluated argument values in the
	// order they appear in the node, skipping the kind checks Apply
	// performs since the generator has already guaranteed argKinds
	// statically.
	Emit(argKinds []kind.Kind) (emitter interface{}, produced kind.Kind, ok bool)
}

// BranchTest is the fused compare-and-branch emission an OptimizedIf
// primitive hands back to the code generator: given the already-evaluated
// operand values, it reports which branch to take directly, without
// materializing the intermediate BOOL value (§4.7).
type BranchTest func(args []Value) (bool, error)

// Value is a local alias so BranchTest's signature does not force every
// caller of this package to import internal/value merely to name the
// type; it is defined as the same underlying type value.Value carries.
type Value = value.Value

// OptimizedIf is implemented by boolean-returning primitives that support
// a fused compare-and-branch emission (§4.7). EmitBranch's emitter, when
// ok, is of dynamic type BranchTest: primitives and internal/compile
// agree on this concrete type through this package, so neither needs to
// import the other's package for it (compile depends on ir, not the
// reverse).
type OptimizedIf interface {
	PrimitiveImpl
	// EmitBranch returns a branch emitter for the given static argument
	// kinds and whether this primitive can fuse the comparison with a
	// branch for them.
	EmitBranch(argKinds []kind.Kind) (emitter interface{}, ok bool)
}

// Primitive1 applies a unary PrimitiveImpl.
type Primitive1 struct {
	Annotations
	Impl PrimitiveImpl
	Arg  Node
}

func (n *Primitive1) irNode() {}
func (n *Primitive1) String() string { return fmt.Sprintf("%s(%s)", n.Impl.Name(), n.Arg) }

// Primitive2 applies a binary PrimitiveImpl.
type Primitive2 struct {
	Annotations
	Impl       PrimitiveImpl
	Arg1, Arg2 Node
}

func (n *Primitive2) irNode() {}
func (n *Primitive2) String() string {
	return fmt.Sprintf("%s(%s, %s)", n.Impl.Name(), n.Arg1, n.Arg2)
}

// ClosureExpr creates a closure value over FuncRef at evaluation time,
// capturing the current values of FuncRef's supplier variables (the
// capture template built by closure conversion and indexed by the
// Indexer, §4.1 item 3).
type ClosureExpr struct {
	Annotations
	FuncRef *FunctionImpl
}

func (n *ClosureExpr) irNode() {}
func (n *ClosureExpr) String() string { return fmt.Sprintf("(closure %s)", n.FuncRef.Name) }

// FreeFunctionRef refers directly to a top-level FunctionImpl with no
// captures — a plain function value, not a closure.
type FreeFunctionRef struct {
	Annotations
	Target *FunctionImpl
}

func (n *FreeFunctionRef) irNode() {}
func (n *FreeFunctionRef) String() string { return "&" + n.Target.Name }
