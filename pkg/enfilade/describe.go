package enfilade

import (
	"fmt"
	"strings"

	"github.com/vassilibykov/enfilade-go/internal/ir"
)

// Describe renders a human-readable summary of u's compilation unit —
// the top-level function plus every nested function the analyzer
// discovered — one block per function, in the teacher's disassembly
// style (internal/bytecode.Disassembler): a header line, a few summary
// fields, and the body rendered via Node.String().
func (u *UserFunction) Describe() string {
	var b strings.Builder
	members := append([]*ir.FunctionImpl{u.fn}, u.fn.Unit...)
	for _, fn := range members {
		describeFunction(&b, fn)
	}
	return b.String()
}

// MonomorphicReport returns one line per declared parameter, across
// every function in u's unit, that has only ever been observed holding
// a single REF object — candidates for a monomorphic inline cache. An
// empty result means no parameter qualifies yet (too few calls, no REF
// traffic, or more than one object seen).
func (u *UserFunction) MonomorphicReport() []string {
	var lines []string
	members := append([]*ir.FunctionImpl{u.fn}, u.fn.Unit...)
	for _, fn := range members {
		for _, p := range fn.DeclaredParams {
			if obj, ok := p.Profile.Monomorphic(); ok {
				lines = append(lines, fmt.Sprintf("%s.%s: monomorphic on %v", fn.Name, p.Name, obj))
			}
		}
	}
	return lines
}

func describeFunction(b *strings.Builder, fn *ir.FunctionImpl) {
	fmt.Fprintf(b, "== %s ==\n", fn.Name)
	fmt.Fprintf(b, "state: %s, frame size: %d, params: %d\n",
		fn.State(), fn.FrameSize, len(fn.DeclaredParams))

	if fn.ReturnType.IsKnown() {
		fmt.Fprintf(b, "inferred return: %s\n", fn.ReturnType.Kind())
	}
	if fn.ObservedReturnType.IsKnown() {
		fmt.Fprintf(b, "observed return: %s\n", fn.ObservedReturnType.Kind())
	}
	if len(fn.SpecializedParamKinds) > 0 {
		fmt.Fprintf(b, "specialized params: %v\n", fn.SpecializedParamKinds)
		fmt.Fprintf(b, "specialized return: %s\n", fn.SpecializedReturnKind)
	}
	if fn.CompileError != nil {
		fmt.Fprintf(b, "compile error: %v\n", fn.CompileError)
	}

	fmt.Fprintf(b, "body: %s\n\n", fn.Body)
}
