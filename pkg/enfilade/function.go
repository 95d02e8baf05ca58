package enfilade

import (
	"fmt"

	"github.com/vassilibykov/enfilade-go/internal/analyzer"
	"github.com/vassilibykov/enfilade-go/internal/dispatch"
	"github.com/vassilibykov/enfilade-go/internal/ir"
	"github.com/vassilibykov/enfilade-go/internal/registry"

	// internal/compile's init wires internal/interp.CompileTrigger to its
	// own unit-compilation driver. pkg/enfilade is the facade every
	// consumer of this module imports, so it is the one place that must
	// pull compilation into the build: without this import a program
	// built through this package would run forever on the profiling
	// interpreter and never reach the compiled tiers.
	_ "github.com/vassilibykov/enfilade-go/internal/compile"
)

// UserFunction wraps a top-level FunctionImpl once it has been through
// the analyzer and had its (and its unit's) call targets installed: the
// translator's handoff point back to the builder's caller (§6, §4.1).
type UserFunction struct {
	fn *ir.FunctionImpl
}

// NewUserFunction finishes building l into a callable UserFunction: it
// marks l's function top-level, runs the analyzer once (scope
// validation, closure conversion, frame indexing — discovering every
// nested function reachable through a ClosureExpr along the way), and
// registers and installs the profiling interpreter on every member of
// the resulting unit. Build l's body (Lambda.Body) before calling this;
// the analyzer reads it once and the tree is not meant to change after.
func NewUserFunction(reg *registry.Registry, l *Lambda) (*UserFunction, error) {
	fn := l.fn
	fn.IsTopLevel = true
	if err := analyzer.New().Analyze(fn); err != nil {
		return nil, fmt.Errorf("enfilade: building %q: %w", fn.Name, err)
	}
	installUnit(reg, fn)
	return &UserFunction{fn: fn}, nil
}

// installUnit registers and installs every member of fn's freshly
// analyzed compilation unit, fn itself included.
func installUnit(reg *registry.Registry, fn *ir.FunctionImpl) {
	members := append([]*ir.FunctionImpl{fn}, fn.Unit...)
	for _, m := range members {
		reg.Register(m)
		dispatch.Install(m)
	}
}

// Name returns the function's declared name.
func (u *UserFunction) Name() string { return u.fn.Name }

// State returns u's current compilation tier: "PROFILING", "COMPILING",
// or "COMPILED".
func (u *UserFunction) State() string { return u.fn.State().String() }

// AsClosure returns a Closure over u with no captures, the form host
// code uses to invoke a top-level function (§6's "callable value
// surface").
func (u *UserFunction) AsClosure() *Closure {
	return &Closure{inner: &ir.Closure{Fn: u.fn}}
}

// Invoke0/Invoke1/Invoke2 call u directly; equivalent to
// u.AsClosure().InvokeN(...).
func (u *UserFunction) Invoke0() (Value, error)           { return u.AsClosure().Invoke0() }
func (u *UserFunction) Invoke1(a Value) (Value, error)    { return u.AsClosure().Invoke1(a) }
func (u *UserFunction) Invoke2(a, b Value) (Value, error) { return u.AsClosure().Invoke2(a, b) }

// Library collects named, possibly mutually recursive lambda
// declarations (§6: "a Library that accepts named lambda definitions
// and self-reference placeholders for direct recursion"). Each
// declaration becomes its own independent top-level UserFunction when
// Build runs; a FreeFunctionRef between them holds the target's
// *FunctionImpl pointer directly, not its registry id.
// Lookups by name (Ref, Build's result map) are case-folded, so "fib",
// "Fib", and "FIB" all name the same declaration.
type Library struct {
	decls map[string]*Lambda // keyed by foldName(declared name)
	order []string           // declared names, in Declare order
}

// NewLibrary creates an empty library.
func NewLibrary() *Library {
	return &Library{decls: make(map[string]*Lambda)}
}

// Declare creates a new named lambda in the library and returns its
// builder. Its body may reference itself, or any other name already
// Declared in this library (including one declared after it, as long as
// Build runs only once every declaration's body has been assigned), via
// Ref.
func (lib *Library) Declare(name string, paramNames ...string) *Lambda {
	l := NewLambda(name, paramNames...)
	lib.decls[foldName(name)] = l
	lib.order = append(lib.order, name)
	return l
}

// Ref returns a direct, capture-free reference to the library function
// registered under name — a self-reference placeholder when name is the
// declaration currently being built, or a forward/mutual reference to
// any other library member.
func (lib *Library) Ref(name string) Node {
	l, ok := lib.decls[foldName(name)]
	if !ok {
		panic("enfilade: library has no declaration named " + name)
	}
	return l.Self()
}

// Build finishes every declaration in this library into its own
// UserFunction, in declaration order, registering and installing each
// with reg. It fails on the first declaration the analyzer rejects.
// The result map is keyed by each declaration's original name, not its
// folded form.
func (lib *Library) Build(reg *registry.Registry) (map[string]*UserFunction, error) {
	out := make(map[string]*UserFunction, len(lib.decls))
	for _, name := range lib.order {
		uf, err := NewUserFunction(reg, lib.decls[foldName(name)])
		if err != nil {
			return nil, err
		}
		out[name] = uf
	}
	return out, nil
}
