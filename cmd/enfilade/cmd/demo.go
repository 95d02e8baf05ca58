package cmd

import (
	"fmt"
	"sort"

	"github.com/vassilibykov/enfilade-go/internal/registry"
	"github.com/vassilibykov/enfilade-go/pkg/enfilade"
	"github.com/vassilibykov/enfilade-go/pkg/primitive"
)

// demo is one of the built-in programs run and disasm draw from by
// name, mirroring the six literal scenarios. Each builds its own
// registry and function tree from scratch so repeated runs never carry
// profiling state left over from an earlier call.
type demo struct {
	description string
	// build assembles the demo's function(s), returning the entry point
	// to drive and lists of warmup and final call arguments. Each
	// argument list's length (0, 1, or 2) selects InvokeN.
	build func() (entry *enfilade.UserFunction, warmup [][]enfilade.Value, final []enfilade.Value)
}

var demos = map[string]demo{
	"answer": {
		description: `(lambda () 42)`,
		build: func() (*enfilade.UserFunction, [][]enfilade.Value, []enfilade.Value) {
			reg := registry.New()
			l := enfilade.NewLambda("answer").Body(enfilade.Const(enfilade.NewInt(42)))
			uf, err := enfilade.NewUserFunction(reg, l)
			if err != nil {
				panic(err)
			}
			return uf, nil, nil
		},
	},
	"classify": {
		description: `(lambda (x) (if x 1 "false"))`,
		build: func() (*enfilade.UserFunction, [][]enfilade.Value, []enfilade.Value) {
			reg := registry.New()
			l := enfilade.NewLambda("classify", "x")
			x := l.Param(0)
			l.Body(enfilade.If(enfilade.Get(x), enfilade.Const(enfilade.NewInt(1)), enfilade.Const(enfilade.NewRef("false"))))
			uf, err := enfilade.NewUserFunction(reg, l)
			if err != nil {
				panic(err)
			}
			warmup := make([][]enfilade.Value, 20)
			for i := range warmup {
				warmup[i] = []enfilade.Value{enfilade.NewBool(true)}
			}
			return uf, warmup, []enfilade.Value{enfilade.NewBool(false)}
		},
	},
	"count": {
		description: `(lambda (x) (if x 1 0)), called true,true,false,false,false`,
		build: func() (*enfilade.UserFunction, [][]enfilade.Value, []enfilade.Value) {
			reg := registry.New()
			l := enfilade.NewLambda("count", "x")
			x := l.Param(0)
			l.Body(enfilade.If(enfilade.Get(x), enfilade.Const(enfilade.NewInt(1)), enfilade.Const(enfilade.NewInt(0))))
			uf, err := enfilade.NewUserFunction(reg, l)
			if err != nil {
				panic(err)
			}
			warmup := [][]enfilade.Value{
				{enfilade.NewBool(true)},
				{enfilade.NewBool(true)},
				{enfilade.NewBool(false)},
				{enfilade.NewBool(false)},
				{enfilade.NewBool(false)},
			}
			return uf, warmup, []enfilade.Value{enfilade.NewBool(true)}
		},
	},
	"badcond": {
		description: `(lambda (x) (if x 1 0)) called with a non-boolean condition`,
		build: func() (*enfilade.UserFunction, [][]enfilade.Value, []enfilade.Value) {
			reg := registry.New()
			l := enfilade.NewLambda("badcond", "x")
			x := l.Param(0)
			l.Body(enfilade.If(enfilade.Get(x), enfilade.Const(enfilade.NewInt(1)), enfilade.Const(enfilade.NewInt(0))))
			uf, err := enfilade.NewUserFunction(reg, l)
			if err != nil {
				panic(err)
			}
			warmup := make([][]enfilade.Value, 20)
			for i := range warmup {
				warmup[i] = []enfilade.Value{enfilade.NewBool(i%2 == 0)}
			}
			return uf, warmup, []enfilade.Value{enfilade.NewInt(0)}
		},
	},
	"fib": {
		description: `(lambda (n) (if (< n 0) "error" (if (< n 2) 1 (+ (fib (- n 1)) (fib (- n 2))))))`,
		build: func() (*enfilade.UserFunction, [][]enfilade.Value, []enfilade.Value) {
			reg := registry.New()
			lib := enfilade.NewLibrary()
			fib := lib.Declare("fib", "n")
			n := fib.Param(0)
			fib.Body(enfilade.If(
				enfilade.Apply2(primitive.Less, enfilade.Get(n), enfilade.Const(enfilade.NewInt(0))),
				enfilade.Const(enfilade.NewRef("error")),
				enfilade.If(
					enfilade.Apply2(primitive.Less, enfilade.Get(n), enfilade.Const(enfilade.NewInt(2))),
					enfilade.Const(enfilade.NewInt(1)),
					enfilade.Apply2(primitive.Add,
						enfilade.Call1(lib.Ref("fib"), enfilade.Apply2(primitive.Sub, enfilade.Get(n), enfilade.Const(enfilade.NewInt(1)))),
						enfilade.Call1(lib.Ref("fib"), enfilade.Apply2(primitive.Sub, enfilade.Get(n), enfilade.Const(enfilade.NewInt(2))))),
				),
			))
			funcs, err := lib.Build(reg)
			if err != nil {
				panic(err)
			}
			warmup := make([][]enfilade.Value, 15)
			for i := range warmup {
				warmup[i] = []enfilade.Value{enfilade.NewInt(int64(i % 6))}
			}
			return funcs["fib"], warmup, []enfilade.Value{enfilade.NewInt(-1)}
		},
	},
	"makeGetter": {
		description: `(lambda (x) (lambda () x))`,
		build: func() (*enfilade.UserFunction, [][]enfilade.Value, []enfilade.Value) {
			reg := registry.New()
			outer := enfilade.NewLambda("makeGetter", "x")
			x := outer.Param(0)
			inner := enfilade.NewLambda("getter")
			inner.Body(enfilade.Get(x))
			outer.Body(inner.AsClosureExpr())
			uf, err := enfilade.NewUserFunction(reg, outer)
			if err != nil {
				panic(err)
			}
			return uf, nil, []enfilade.Value{enfilade.NewInt(42)}
		},
	},
}

func listDemoNames() []string {
	names := make([]string, 0, len(demos))
	for n := range demos {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func demoNotFound(name string) error {
	return fmt.Errorf("no such demo %q (known: %v)", name, listDemoNames())
}

// invoke calls entry with however many arguments args holds: 0, 1, or 2.
func invoke(entry *enfilade.UserFunction, args []enfilade.Value) (enfilade.Value, error) {
	switch len(args) {
	case 0:
		return entry.Invoke0()
	case 1:
		return entry.Invoke1(args[0])
	case 2:
		return entry.Invoke2(args[0], args[1])
	default:
		return enfilade.Value{}, fmt.Errorf("demo call with %d arguments is not supported", len(args))
	}
}
