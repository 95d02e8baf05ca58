package kind

// ExprType is the static/observed type attached to every IR node: either
// Unknown (nothing has constrained this node yet) or Known of a specific
// Kind. Two distinct join operators are defined over it — Pessimistic for
// static inference, Opportunistic for profile-driven observation — since
// the two passes disagree on how an Unknown operand should behave.
type ExprType struct {
	known bool
	k     Kind
}

// Unknown is the bottom/absent ExprType.
var Unknown = ExprType{}

// Known constructs an ExprType pinned to k.
func Known(k Kind) ExprType {
	return ExprType{known: true, k: k}
}

// IsKnown reports whether the type has been pinned to a Kind.
func (t ExprType) IsKnown() bool {
	return t.known
}

// Kind returns the pinned Kind. Calling it on an Unknown ExprType panics;
// callers must check IsKnown first. This mirrors the rest of the runtime's
// discipline of treating Unknown as a distinct state, never a zero Kind.
func (t ExprType) Kind() Kind {
	if !t.known {
		panic("kind: Kind() called on Unknown ExprType")
	}
	return t.k
}

func (t ExprType) String() string {
	if !t.known {
		return "Unknown"
	}
	return t.k.String()
}

// Equal reports structural equality, used by the inferencer's fixed-point
// check to detect when a pass changed nothing.
func (t ExprType) Equal(o ExprType) bool {
	return t.known == o.known && (!t.known || t.k == o.k)
}

// JoinPessimistic is the join used by static inference: Unknown absorbs,
// i.e. joining with an Unknown operand always yields Unknown, because
// static inference cannot assume a branch it has no information about
// behaves like the other.
func JoinPessimistic(a, b ExprType) ExprType {
	if !a.known || !b.known {
		return Unknown
	}
	return Known(Join(a.k, b.k))
}

// JoinOpportunistic is the join used by profile-driven observation:
// Unknown is the identity, so an unreached branch (whose observed type
// is still Unknown because it was never executed) does not drag down
// the observed type of a branch that was reached.
func JoinOpportunistic(a, b ExprType) ExprType {
	if !a.known {
		return b
	}
	if !b.known {
		return a
	}
	return Known(Join(a.k, b.k))
}

// JoinPessimisticFoldingReturn is JoinPessimistic with one exception:
// a Known(VOID) operand (the type of a Return node, which never
// supplies a value to its enclosing expression) is treated as the
// identity rather than as an ordinary Kind to join, mirroring
// FoldReturn's treatment of VOID at the Kind level. Used to join an
// If's two branches, so an early return in one branch does not force
// the other branch's real value type to REF.
func JoinPessimisticFoldingReturn(a, b ExprType) ExprType {
	if a.IsKnown() && a.k == VOID {
		return b
	}
	if b.IsKnown() && b.k == VOID {
		return a
	}
	return JoinPessimistic(a, b)
}

// JoinOpportunisticFoldingReturn is JoinOpportunistic with the same
// VOID-is-identity exception as JoinPessimisticFoldingReturn, for
// observation's If join (§4.3): an observed early return in one branch
// must not make the other branch's genuinely observed value type look
// like REF.
func JoinOpportunisticFoldingReturn(a, b ExprType) ExprType {
	if a.IsKnown() && a.k == VOID {
		return b
	}
	if b.IsKnown() && b.k == VOID {
		return a
	}
	return JoinOpportunistic(a, b)
}

// Unify widens dst to account for src having been assigned/read through
// it (used for variable inferredType widening, §4.2). An Unknown src
// contributes nothing (a variable is never forced back to Unknown by a
// not-yet-inferred use); an Unknown dst simply adopts src. It returns the
// new type and whether it differs from dst — the "widened" signal that
// drives the inferencer's fixed-point re-run. The lattice has depth two
// (Unknown -> a primitive Kind -> REF), so repeated widening of the same
// variable always terminates.
func Unify(dst, src ExprType) (result ExprType, widened bool) {
	joined := JoinOpportunistic(dst, src)
	if joined.Equal(dst) {
		return dst, false
	}
	return joined, true
}
