package kind

import "testing"

func TestJoin(t *testing.T) {
	cases := []struct {
		a, b, want Kind
	}{
		{INT, INT, INT},
		{BOOL, BOOL, BOOL},
		{INT, BOOL, REF},
		{INT, REF, REF},
		{REF, REF, REF},
	}
	for _, c := range cases {
		if got := Join(c.a, c.b); got != c.want {
			t.Errorf("Join(%s,%s) = %s, want %s", c.a, c.b, got, c.want)
		}
	}
}

func TestFoldReturnVoidIsIdentity(t *testing.T) {
	if got := FoldReturn(VOID, INT); got != INT {
		t.Errorf("FoldReturn(VOID, INT) = %s, want INT", got)
	}
	if got := FoldReturn(INT, VOID); got != INT {
		t.Errorf("FoldReturn(INT, VOID) = %s, want INT", got)
	}
	if got := FoldReturn(VOID, VOID); got != VOID {
		t.Errorf("FoldReturn(VOID, VOID) = %s, want VOID", got)
	}
}

func TestJoinPessimisticUnknownAbsorbs(t *testing.T) {
	got := JoinPessimistic(Unknown, Known(INT))
	if got.IsKnown() {
		t.Errorf("JoinPessimistic(Unknown, Known(INT)) = %s, want Unknown", got)
	}
}

func TestJoinOpportunisticUnknownIsIdentity(t *testing.T) {
	got := JoinOpportunistic(Unknown, Known(INT))
	if !got.IsKnown() || got.Kind() != INT {
		t.Errorf("JoinOpportunistic(Unknown, Known(INT)) = %s, want Known(INT)", got)
	}
	got = JoinOpportunistic(Known(INT), Unknown)
	if !got.IsKnown() || got.Kind() != INT {
		t.Errorf("JoinOpportunistic(Known(INT), Unknown) = %s, want Known(INT)", got)
	}
}

func TestUnifyWidensMonotonically(t *testing.T) {
	v := Unknown
	var widened bool

	v, widened = Unify(v, Known(INT))
	if !widened || v.Kind() != INT {
		t.Fatalf("first unify: got %s widened=%v, want Known(INT) widened=true", v, widened)
	}

	// An Unknown source (e.g. a yet-uninferred call result) must not
	// regress an already-known variable type.
	v, widened = Unify(v, Unknown)
	if widened || v.Kind() != INT {
		t.Fatalf("unify with Unknown src: got %s widened=%v, want Known(INT) widened=false", v, widened)
	}

	v, widened = Unify(v, Known(BOOL))
	if !widened || v.Kind() != REF {
		t.Fatalf("widening unify: got %s widened=%v, want REF widened=true", v, widened)
	}

	// Fixed point: re-unifying with the same source must not widen again.
	v, widened = Unify(v, Known(BOOL))
	if widened || v.Kind() != REF {
		t.Fatalf("re-unify at fixed point: got %s widened=%v, want REF widened=false", v, widened)
	}
}
