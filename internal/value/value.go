// Package value defines the opaque runtime value representation shared by
// all three execution tiers. User-facing object shapes are out of scope
// (spec §1) — Value is deliberately thin: a Kind tag plus an untyped
// payload that the interpreter and compiled code agree on by convention.
package value

import (
	"fmt"

	"github.com/vassilibykov/enfilade-go/internal/kind"
)

// Value is an opaque, tagged runtime value. INT payloads are int64, BOOL
// payloads are bool, REF payloads are any Go value (including a
// *ir.Closure, boxed through interface{} to avoid an import cycle between
// this package and the ir package), and VOID carries no payload.
type Value struct {
	Data interface{}
	Kind kind.Kind
}

// Void is the canonical value of VOID kind.
var Void = Value{Kind: kind.VOID}

// Int constructs an INT value.
func Int(v int64) Value { return Value{Kind: kind.INT, Data: v} }

// Bool constructs a BOOL value.
func Bool(v bool) Value { return Value{Kind: kind.BOOL, Data: v} }

// Ref constructs a REF value wrapping an arbitrary payload.
func Ref(v interface{}) Value { return Value{Kind: kind.REF, Data: v} }

// Int64 returns the payload as int64. It panics if Kind is not INT; call
// sites that are not statically certain of the kind must check Kind
// first (this is exactly the discipline the specialization guard and the
// square-peg recovery protocol exist to make safe for compiled code).
func (v Value) Int64() int64 {
	return v.Data.(int64)
}

// Bool returns the payload as bool. Panics if Kind is not BOOL.
func (v Value) Bool() bool {
	return v.Data.(bool)
}

func (v Value) String() string {
	switch v.Kind {
	case kind.VOID:
		return "<void>"
	case kind.INT:
		return fmt.Sprintf("%d", v.Data)
	case kind.BOOL:
		return fmt.Sprintf("%t", v.Data)
	default:
		return fmt.Sprintf("%v", v.Data)
	}
}
