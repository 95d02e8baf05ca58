// Package registry provides the process-wide function registry (§5, §9):
// a dense integer id per FunctionImpl, assigned at creation. Compiled
// code, closures and FreeFunctionRef nodes refer to their targets by
// *ir.FunctionImpl pointer, not by id; internal/dispatch uses the id to
// order lock acquisition when it publishes a unit.
package registry

import (
	"sync"
	"sync/atomic"

	"github.com/vassilibykov/enfilade-go/internal/ir"
)

// Registry assigns dense ids to FunctionImpls. Inserts are serialized by
// mu; lookups read the slice directly and are lock-free once the
// publishing Register call has returned, since the slice is only ever
// grown (never mutated or shrunk) and appends are published under mu.
type Registry struct {
	mu   sync.Mutex
	byID atomic.Pointer[[]*ir.FunctionImpl]
}

// New creates an empty registry.
func New() *Registry {
	r := &Registry{}
	empty := make([]*ir.FunctionImpl, 0)
	r.byID.Store(&empty)
	return r
}

// Register assigns fn a fresh dense id and returns it. Safe to call
// concurrently; registration of distinct FunctionImpls is serialized.
func (r *Registry) Register(fn *ir.FunctionImpl) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	old := *r.byID.Load()
	next := make([]*ir.FunctionImpl, len(old)+1)
	copy(next, old)
	id := len(old)
	next[id] = fn
	fn.RegistryID = id
	r.byID.Store(&next)
	return id
}

// Lookup returns the FunctionImpl registered under id, or nil if id is
// out of range. Lock-free: reads the published slice pointer directly.
func (r *Registry) Lookup(id int) *ir.FunctionImpl {
	snapshot := *r.byID.Load()
	if id < 0 || id >= len(snapshot) {
		return nil
	}
	return snapshot[id]
}

// Len returns the number of registered functions.
func (r *Registry) Len() int {
	return len(*r.byID.Load())
}
