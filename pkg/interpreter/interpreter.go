package interpreter

import (
	"fmt"

	"kizuna/interpreter-go/pkg/ast"
	"kizuna/interpreter-go/pkg/runtime"
)

// Interpreter owns the single global frame and feeds top-level units into it.
type Interpreter struct {
	global *runtime.Environment
}

// New returns an interpreter with an empty global environment.
func New() *Interpreter {
	return &Interpreter{global: runtime.NewEnvironment()}
}

// NewWithGlobal returns an interpreter sharing an existing global frame.
func NewWithGlobal(global *runtime.Environment) *Interpreter {
	if global == nil {
		global = runtime.NewEnvironment()
	}
	return &Interpreter{global: global}
}

// GlobalEnvironment returns the interpreter's global environment.
func (i *Interpreter) GlobalEnvironment() *runtime.Environment {
	return i.global
}

// RegisterNative installs a host function in the global frame. Registering
// the same name again replaces the previous function.
func (i *Interpreter) RegisterNative(name string, impl runtime.NativeImpl) {
	i.global.RegisterNative(name, impl)
}

func (i *Interpreter) globalChain() runtime.Chain {
	return runtime.NewChain(i.global)
}

// SubmitUnit registers a top-level function definition in the global frame
// or runs a top-level statement against the global chain. The statement's
// value is returned; a stray break only ends that statement.
func (i *Interpreter) SubmitUnit(unit ast.Unit) (runtime.Value, error) {
	chain := i.globalChain()
	switch u := unit.(type) {
	case *ast.FunctionDefinition:
		if u == nil {
			return runtime.None, fmt.Errorf("interpreter: nil function definition")
		}
		chain.DefineFunction(u.Name(), runtime.NewScriptFunction(u))
		return runtime.None, nil
	case ast.Statement:
		val, _ := i.evaluateStatements(chain, []ast.Statement{u})
		return val, nil
	default:
		return runtime.None, fmt.Errorf("interpreter: unsupported unit %T", unit)
	}
}

// SubmitScript submits every unit in order and returns the value of the last
// top-level statement.
func (i *Interpreter) SubmitScript(script *ast.Script) (runtime.Value, error) {
	var last runtime.Value = runtime.None
	if script == nil {
		return last, nil
	}
	for _, unit := range script.Units {
		val, err := i.SubmitUnit(unit)
		if err != nil {
			return runtime.None, err
		}
		if _, isDef := unit.(*ast.FunctionDefinition); !isDef {
			last = val
		}
	}
	return last, nil
}

// CallFunction resolves name in the global frame and invokes it with args.
// An unknown name yields None.
func (i *Interpreter) CallFunction(name string, args []runtime.Value) runtime.Value {
	return i.resolveAndCall(i.globalChain(), name, args)
}

// EvaluateStatements runs stmts against chain and reports whether a break
// escaped them.
func (i *Interpreter) EvaluateStatements(chain runtime.Chain, stmts []ast.Statement) (runtime.Value, bool) {
	return i.evaluateStatements(chain, stmts)
}

// EvaluateExpression evaluates expr against chain.
func (i *Interpreter) EvaluateExpression(chain runtime.Chain, expr ast.Expression) runtime.Value {
	return i.evaluateExpression(chain, expr)
}
