package interpreter

import (
	"testing"

	"kizuna/interpreter-go/pkg/ast"
	"kizuna/interpreter-go/pkg/runtime"
)

func mustRun(t *testing.T, interp *Interpreter, units ...ast.Unit) runtime.Value {
	t.Helper()
	val, err := interp.SubmitScript(ast.Prog(units...))
	if err != nil {
		t.Fatalf("script failed: %v", err)
	}
	return val
}

func expectNumber(t *testing.T, val runtime.Value, want float64) {
	t.Helper()
	num, ok := val.(runtime.NumberValue)
	if !ok || num.Val != want {
		t.Fatalf("expected number %v, got %s", want, runtime.Describe(val))
	}
}

func expectString(t *testing.T, val runtime.Value, want string) {
	t.Helper()
	str, ok := val.(runtime.StringValue)
	if !ok || str.Val != want {
		t.Fatalf("expected string %q, got %s", want, runtime.Describe(val))
	}
}

func expectNone(t *testing.T, val runtime.Value) {
	t.Helper()
	if val == nil || val.Kind() != runtime.KindNone {
		t.Fatalf("expected none, got %s", runtime.Describe(val))
	}
}

func globalValue(t *testing.T, interp *Interpreter, name string) runtime.Value {
	t.Helper()
	val, ok := interp.GlobalEnvironment().Lookup(name)
	if !ok {
		t.Fatalf("global %q is not defined", name)
	}
	return val
}

// registerCounter installs mark(v): it bumps the global "marks" counter and
// returns v unchanged.
func registerCounter(interp *Interpreter) {
	interp.GlobalEnvironment().Define("marks", runtime.Num(0))
	interp.RegisterNative("mark", func(global *runtime.Environment, args []runtime.Value) runtime.Value {
		current, _ := global.Lookup("marks")
		global.Assign("marks", runtime.Num(runtime.ToNumber(current)+1))
		if len(args) == 0 {
			return runtime.None
		}
		return args[0]
	})
}
