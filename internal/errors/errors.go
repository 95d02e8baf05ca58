// Package errors implements the two user-visible failure kinds of §6/§7 —
// CompilerError and RuntimeError — plus the internal-only SquarePeg
// signal. Formatting follows the teacher's internal/errors package: a
// message plus a contextual description of where it happened. There is
// no source text to quote (surface syntax is out of scope, §1), so the
// "context" here is the offending node/function's description rather
// than a source line and caret.
package errors

import "fmt"

// CompilerError is raised by the analyzer or type inferencer: scope
// violations, type mismatches at an If/While condition, or an
// unexpected dispatcher target (§7). An error from the analysis that
// builds a function is returned to the caller building it. An error
// from a compilation that an invocation triggered is recorded in the
// top-level FunctionImpl's CompileError and is not returned to that
// invocation. It never reaches a running program.
type CompilerError struct {
	Message string
	Where   string // a description of the node/function at fault
}

// NewCompilerError creates a CompilerError anchored at where.
func NewCompilerError(where, format string, args ...interface{}) *CompilerError {
	return &CompilerError{Message: fmt.Sprintf(format, args...), Where: where}
}

func (e *CompilerError) Error() string {
	if e.Where == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Where, e.Message)
}

// RuntimeError is raised by any of the three execution tiers: a bad
// primitive argument kind, a non-boolean If/While condition at runtime,
// or calling a non-callable value (§7). It is the only failure kind a
// running program can observe; it unwinds to the outermost invocation.
type RuntimeError struct {
	Message string
}

// NewRuntimeError creates a RuntimeError.
func NewRuntimeError(format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{Message: fmt.Sprintf(format, args...)}
}

func (e *RuntimeError) Error() string {
	return e.Message
}
