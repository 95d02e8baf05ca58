package ir

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/vassilibykov/enfilade-go/internal/kind"
	"github.com/vassilibykov/enfilade-go/internal/value"
)

// Invoker is the "take N opaque values, return opaque value" calling
// convention every execution tier presents at a FunctionImpl's call
// target, per §4.8. It is also the shape of a generated generic or
// specialized entry (§4.7.1): this runtime's "native code" is a
// directly-executable Go closure rather than a second bytecode
// instruction set.
type Invoker func(args []value.Value) (value.Value, error)

// CallTarget is the mutable per-function entry point (§4.8, §9): "an
// atomic slot holding a small dispatch descriptor; the retarget
// operation is a release store, and callers perform an acquire load per
// call." unsafe.Pointer backs the slot directly since Invoker is a
// non-comparable func type and atomic.Pointer[T] requires a pointer
// element type; Invoker values are boxed into *Invoker before storing.
type CallTarget struct {
	slot unsafe.Pointer // *Invoker
}

// Load performs an acquire load of the current target.
func (ct *CallTarget) Load() Invoker {
	p := (*Invoker)(atomic.LoadPointer(&ct.slot))
	if p == nil {
		return nil
	}
	return *p
}

// Store performs a release store of a new target.
func (ct *CallTarget) Store(inv Invoker) {
	atomic.StorePointer(&ct.slot, unsafe.Pointer(&inv))
}

// CompilationState is the one-way PROFILING -> COMPILING -> COMPILED
// state machine of §4.9.
type CompilationState int32

const (
	StateProfiling CompilationState = iota
	StateCompiling
	StateCompiled
)

func (s CompilationState) String() string {
	switch s {
	case StateProfiling:
		return "PROFILING"
	case StateCompiling:
		return "COMPILING"
	case StateCompiled:
		return "COMPILED"
	default:
		return "?"
	}
}

// CaptureSupplier is one entry of a ClosureExpr's capture template
// (§4.1 item 3): the enclosing function's variable (its own variable, or
// one of its own copied variables) that supplies the nested function's
// Nth synthetic parameter at closure-creation time, plus that supplier's
// frame index in the enclosing function for fast capture.
type CaptureSupplier struct {
	Var        *Variable
	FrameIndex int
}

// FunctionImpl is the compiled/compilable unit corresponding to one
// lambda (§3). A top-level FunctionImpl additionally owns Unit: the
// topologically-ordered list of every FunctionImpl nested inside it —
// the compilation unit compiled as one batch (§4.6).
type FunctionImpl struct {
	Name string

	DeclaredParams  []*Variable
	SyntheticParams []*Variable // filled by closure conversion (§4.1)
	Body            Node
	FrameSize       int // high-water mark assigned by the Indexer

	// ReturnType and ObservedReturnType accumulate the function's return
	// kind across every Return node and the body's own fall-through
	// value (§4.2, §4.3), the way a Let-bound variable's InferredType
	// accumulates across every read and write of it.
	ReturnType         kind.ExprType
	ObservedReturnType kind.ExprType

	Profile *FunctionProfile

	Enclosing  *FunctionImpl // nil for a top-level function
	IsTopLevel bool
	Unit       []*FunctionImpl // only populated on the top-level FunctionImpl

	// Captures maps each ClosureExpr node inside this function's body to
	// its ordered capture template, built by closure conversion; the
	// Indexer fills in each supplier's frame index (§4.1 item 3).
	Captures map[*ClosureExpr][]CaptureSupplier

	RegistryID int // assigned once, at creation, by internal/registry

	CallTarget CallTarget

	mu    sync.Mutex
	state atomic.Int32

	// Generated code, populated by internal/compile (C10) while the unit
	// is COMPILING, before PublishUnit installs the call targets. Never
	// written again afterward.
	GenericEntry          Invoker
	SpecializedEntry      Invoker // nil if not specialization-eligible
	SpecializedParamKinds []kind.Kind
	SpecializedReturnKind kind.Kind

	// CompileError records a failure encountered while compiling this
	// unit. The unit then stays in COMPILING with the plain interpreter
	// installed; the error is kept here only and is not returned to the
	// invocation that triggered compilation. There being no logging
	// framework in this codebase (§1.1), this is the introspection point
	// a caller or a Describe() dump consults instead.
	CompileError error
}

// NewFunctionImpl creates a FunctionImpl in state PROFILING with its
// call target pointed at nothing yet; the caller (the translator, or
// analysis driver) must Store an initial Invoker before first use.
func NewFunctionImpl(name string, declaredParams []*Variable, body Node) *FunctionImpl {
	fn := &FunctionImpl{
		Name:           name,
		DeclaredParams: declaredParams,
		Body:           body,
		Profile:        NewFunctionProfile(len(declaredParams)),
		Captures:       make(map[*ClosureExpr][]CaptureSupplier),
	}
	for _, p := range declaredParams {
		p.Host = fn
	}
	return fn
}

// State returns the current compilation state.
func (fn *FunctionImpl) State() CompilationState {
	return CompilationState(fn.state.Load())
}

// Lock/Unlock expose the per-function mutex that serializes the
// transition into COMPILING and the installation of compiled code
// (§5): "the mutex protects: the state field, the callSite retarget,
// and the read of the compilation unit list."
func (fn *FunctionImpl) Lock()   { fn.mu.Lock() }
func (fn *FunctionImpl) Unlock() { fn.mu.Unlock() }

// CompareAndSwapState attempts the named one-way transition while mu is
// held by the caller; it reports whether the transition happened
// (false means another thread already moved the state past from).
func (fn *FunctionImpl) CompareAndSwapState(from, to CompilationState) bool {
	return fn.state.CompareAndSwap(int32(from), int32(to))
}

// SpecializationEligible reports whether at least one declared
// parameter's specialized type is non-REF (§4.6): the precondition for
// code generation to attempt a specialized entry at all.
func (fn *FunctionImpl) SpecializationEligible() bool {
	for _, k := range fn.SpecializedParamKinds {
		if k != kind.REF {
			return true
		}
	}
	return false
}

// Closure is the runtime value pairing a FunctionImpl with the captured
// values of its synthetic parameters, in declaration order (§3).
type Closure struct {
	Fn        *FunctionImpl
	Captured  []value.Value
}

// Invoke dispatches through Fn's mutable call target, per §4.8/§6: the
// callable-value surface's invocation operation.
func (c *Closure) Invoke(args []value.Value) (value.Value, error) {
	target := c.Fn.CallTarget.Load()
	full := make([]value.Value, 0, len(c.Captured)+len(args))
	full = append(full, c.Captured...)
	full = append(full, args...)
	return target(full)
}
