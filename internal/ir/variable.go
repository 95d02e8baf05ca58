package ir

import (
	"sync"
	"sync/atomic"

	"github.com/vassilibykov/enfilade-go/internal/kind"
	"github.com/vassilibykov/enfilade-go/internal/value"
)

// VarRole distinguishes the three variable variants described in §3.
type VarRole int

const (
	// RoleDeclared is a declared parameter, owned by exactly one
	// FunctionImpl.
	RoleDeclared VarRole = iota
	// RoleLet is a let-bound, stack-allocated local.
	RoleLet
	// RoleCopied is synthesized by closure conversion: it mirrors a free
	// variable of an enclosing scope and is populated from a supplier at
	// closure-creation time.
	RoleCopied
)

func (r VarRole) String() string {
	switch r {
	case RoleDeclared:
		return "declared"
	case RoleLet:
		return "let"
	case RoleCopied:
		return "copied"
	default:
		return "?"
	}
}

// Variable is the descriptor shared by declared parameters, let-bound
// locals, and closure-conversion-synthesized copies. FrameIndex,
// InferredType, ObservedType and SpecializedType are assigned by the
// analyzer/inferencer/observer passes (§4.1–§4.6), which run when the
// host function is built and again once its unit has entered COMPILING;
// code generation only reads them.
type Variable struct {
	Name            string
	Host            *FunctionImpl
	Role            VarRole
	FrameIndex      int // -1 until the Indexer runs
	InferredType    kind.ExprType
	ObservedType    kind.ExprType
	SpecializedType kind.ExprType
	Profile         *ValueProfile

	// Original is set only for RoleCopied variables: the declared or
	// let-bound variable this copy mirrors (never another copy, even when
	// the reference passes through intermediate closures). Used by closure
	// conversion to resolve chained free-variable references through
	// nested closures.
	Original *Variable
}

// NewVariable creates a variable with FrameIndex unset (-1) and a fresh
// profile, ready to be indexed by the analyzer.
func NewVariable(name string, role VarRole, host *FunctionImpl) *Variable {
	return &Variable{
		Name:       name,
		Host:       host,
		Role:       role,
		FrameIndex: -1,
		Profile:    NewValueProfile(),
	}
}

// ValueProfile records the set of kinds observed at a program point (a
// variable or a Call's result) and, for REF values, whether only a
// single object was ever seen — the basis for a monomorphic inline
// cache. Writes are not required to be atomic across fields (spec §5:
// occasional lost updates only delay specialization); Record uses a
// mutex anyway since it also tracks object identity, which needs
// read-modify-write consistency to avoid flip-flopping hasSingleObject.
type ValueProfile struct {
	mu               sync.Mutex
	seenKinds        kind.Kind
	seenAnyKind      bool
	singleObject     interface{}
	hasSingleObject  bool
	sawMultipleRefs  bool
	recorded         int64
}

// NewValueProfile creates an empty profile.
func NewValueProfile() *ValueProfile {
	return &ValueProfile{}
}

// Record folds v's kind into the profile and, for REF values, updates
// the single-object tracking.
func (p *ValueProfile) Record(v value.Value) {
	atomic.AddInt64(&p.recorded, 1)
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.seenAnyKind {
		p.seenKinds = v.Kind
		p.seenAnyKind = true
	} else {
		p.seenKinds = kind.Join(p.seenKinds, v.Kind)
	}
	if v.Kind == kind.REF {
		if !p.hasSingleObject && !p.sawMultipleRefs {
			p.singleObject = v.Data
			p.hasSingleObject = true
		} else if p.hasSingleObject && p.singleObject != v.Data {
			p.hasSingleObject = false
			p.sawMultipleRefs = true
		}
	}
}

// ObservedKind returns the join of all kinds seen so far, or Unknown if
// nothing has been recorded yet.
func (p *ValueProfile) ObservedKind() kind.ExprType {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.seenAnyKind {
		return kind.Unknown
	}
	return kind.Known(p.seenKinds)
}

// HasData reports whether at least one value has been recorded.
func (p *ValueProfile) HasData() bool {
	return atomic.LoadInt64(&p.recorded) > 0
}

// Monomorphic reports whether every REF value recorded so far has been
// the identical object, supporting a monomorphic inline cache.
func (p *ValueProfile) Monomorphic() (obj interface{}, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.singleObject, p.hasSingleObject
}

// FunctionProfile is a function-entry profile: an invocation counter
// plus one ValueProfile per declared parameter.
type FunctionProfile struct {
	invocations int64
	ParamProfiles []*ValueProfile
}

// NewFunctionProfile creates a profile with one ValueProfile per
// parameter.
func NewFunctionProfile(paramCount int) *FunctionProfile {
	params := make([]*ValueProfile, paramCount)
	for i := range params {
		params[i] = NewValueProfile()
	}
	return &FunctionProfile{ParamProfiles: params}
}

// RecordEntry increments the invocation counter and returns its new
// value, used by the profiling interpreter to detect the compile
// threshold crossing (§4.4).
func (fp *FunctionProfile) RecordEntry() int64 {
	return atomic.AddInt64(&fp.invocations, 1)
}

// Invocations returns the current invocation count.
func (fp *FunctionProfile) Invocations() int64 {
	return atomic.LoadInt64(&fp.invocations)
}
