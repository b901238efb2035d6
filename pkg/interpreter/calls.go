package interpreter

import (
	"kizuna/interpreter-go/pkg/runtime"
)

// resolveAndCall looks name up through chain and invokes the first match.
// Calling an unknown function is not an error; it yields None.
func (i *Interpreter) resolveAndCall(chain runtime.Chain, name string, args []runtime.Value) runtime.Value {
	fn, ok := chain.ResolveFunction(name)
	if !ok {
		return runtime.None
	}
	return i.invoke(fn, chain.Global(), args)
}

func (i *Interpreter) invoke(fn runtime.Function, global *runtime.Environment, args []runtime.Value) runtime.Value {
	switch f := fn.(type) {
	case *runtime.NativeFunction:
		return f.Call(global, args)
	case *runtime.ScriptFunction:
		return i.callScriptFunction(f, global, args)
	default:
		return runtime.None
	}
}

// callScriptFunction runs the body against [local, global]; the caller's
// frames are never visible to the callee. A break inside the body stops at
// the function boundary.
func (i *Interpreter) callScriptFunction(fn *runtime.ScriptFunction, global *runtime.Environment, args []runtime.Value) runtime.Value {
	if fn == nil || fn.Definition == nil {
		return runtime.None
	}
	chain := runtime.NewChain(global).Descend()
	for name, val := range fn.BindArguments(args) {
		chain.DefineVariable(name, val)
	}
	result, _ := i.evaluateStatements(chain, fn.Definition.Body)
	return result
}
