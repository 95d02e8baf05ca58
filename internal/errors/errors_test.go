package errors

import (
	"testing"

	"github.com/vassilibykov/enfilade-go/internal/value"
)

func TestCompilerErrorFormatsWithWhere(t *testing.T) {
	err := NewCompilerError("fib/n", "variable %q not in scope", "x")
	want := `fib/n: variable "x" not in scope`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestRuntimeErrorMessage(t *testing.T) {
	err := NewRuntimeError("expected Bool, got %s", "Int")
	if err.Error() != "expected Bool, got Int" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestSquarePegRecover(t *testing.T) {
	func() {
		defer func() {
			sp, ok := Recover(recover())
			if !ok {
				t.Fatal("expected a recovered SquarePeg")
			}
			if sp.Value.Int64() != 7 {
				t.Errorf("recovered value = %v, want 7", sp.Value)
			}
		}()
		Raise(value.Int(7))
	}()
}

func TestRecoverRepanicsOtherValues(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected a re-panic")
		}
		if r.(string) != "boom" {
			t.Errorf("re-panicked value = %v, want boom", r)
		}
	}()
	func() {
		defer func() {
			Recover(recover())
		}()
		panic("boom")
	}()
}

func TestRecoverNilIsNotSquarePeg(t *testing.T) {
	_, ok := Recover(nil)
	if ok {
		t.Error("Recover(nil) reported ok=true")
	}
}
