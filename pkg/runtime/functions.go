package runtime

import "kizuna/interpreter-go/pkg/ast"

// FunctionKind tags the two function variants.
type FunctionKind int

const (
	FunctionNative FunctionKind = iota
	FunctionScript
)

func (k FunctionKind) String() string {
	if k == FunctionNative {
		return "native"
	}
	return "script"
}

// Function is either a NativeFunction or a ScriptFunction; no other
// implementations exist.
type Function interface {
	FunctionKind() FunctionKind
	isFunction()
}

// NativeImpl receives the global frame and the evaluated arguments.
type NativeImpl func(global *Environment, args []Value) Value

// NativeFunction is a host-provided callable registered by the embedder.
type NativeFunction struct {
	Name string
	Impl NativeImpl
}

func (f *NativeFunction) FunctionKind() FunctionKind { return FunctionNative }
func (*NativeFunction) isFunction()                  {}

// Call invokes the host implementation; a nil implementation yields None.
func (f *NativeFunction) Call(global *Environment, args []Value) Value {
	if f == nil || f.Impl == nil {
		return None
	}
	result := f.Impl(global, args)
	if result == nil {
		return None
	}
	return result
}

// ScriptFunction wraps a top-level function definition.
type ScriptFunction struct {
	Definition *ast.FunctionDefinition
}

func NewScriptFunction(def *ast.FunctionDefinition) *ScriptFunction {
	return &ScriptFunction{Definition: def}
}

func (f *ScriptFunction) FunctionKind() FunctionKind { return FunctionScript }
func (*ScriptFunction) isFunction()                  {}

// BindArguments pairs parameters with arguments positionally. Missing
// arguments bind to None and extras are dropped.
func (f *ScriptFunction) BindArguments(args []Value) map[string]Value {
	params := f.Definition.ParamNames()
	bound := make(map[string]Value, len(params))
	for i, name := range params {
		if i < len(args) && args[i] != nil {
			bound[name] = args[i]
		} else {
			bound[name] = None
		}
	}
	return bound
}
