package enfilade

import (
	"github.com/vassilibykov/enfilade-go/internal/ir"
)

// Closure is the outbound callable-value surface (§6): a closure
// escaping the runtime (most often by being returned from one lambda's
// body, §8's closure-capture scenario) as an opaque value a host can
// call back into without reaching into internal/ir at all.
type Closure struct {
	inner *ir.Closure
}

// AsClosure recovers a Closure from a Value returned by an invocation,
// e.g. the result of evaluating the closure-capture scenario's outer
// lambda. The second result is false if v is not callable (not a REF,
// or a REF wrapping something other than a closure).
func AsClosure(v Value) (*Closure, bool) {
	c, ok := v.Data.(*ir.Closure)
	if !ok {
		return nil, false
	}
	return &Closure{inner: c}, true
}

// Invoke0 calls a zero-argument closure.
func (c *Closure) Invoke0() (Value, error) {
	return c.inner.Invoke(nil)
}

// Invoke1 calls a one-argument closure.
func (c *Closure) Invoke1(a Value) (Value, error) {
	return c.inner.Invoke([]Value{a})
}

// Invoke2 calls a two-argument closure.
func (c *Closure) Invoke2(a, b Value) (Value, error) {
	return c.inner.Invoke([]Value{a, b})
}
