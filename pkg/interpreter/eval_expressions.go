package interpreter

import (
	"kizuna/interpreter-go/pkg/ast"
	"kizuna/interpreter-go/pkg/runtime"
)

// evaluateExpression handles identifiers, literals, calls and operators.
// Anything it cannot evaluate degrades to None.
func (i *Interpreter) evaluateExpression(chain runtime.Chain, node ast.Expression) runtime.Value {
	switch n := node.(type) {
	case *ast.Identifier:
		val, _ := chain.ReadVariable(n.Name)
		return val
	case *ast.StringLiteral:
		return runtime.StringValue{Val: n.Value}
	case *ast.NumberLiteral:
		return runtime.NumberValue{Val: n.Value}
	case *ast.FunctionCall:
		return i.evaluateFunctionCall(chain, n)
	case *ast.UnaryExpression:
		return applyUnary(n.Operator, i.evaluateExpression(chain, n.Operand))
	case *ast.BinaryExpression:
		left := i.evaluateExpression(chain, n.Left)
		right := i.evaluateExpression(chain, n.Right)
		return applyBinary(n.Operator, left, right)
	default:
		return runtime.None
	}
}

// evaluateFunctionCall evaluates every argument left to right before the
// callee is resolved.
func (i *Interpreter) evaluateFunctionCall(chain runtime.Chain, call *ast.FunctionCall) runtime.Value {
	args := make([]runtime.Value, 0, len(call.Arguments))
	for _, arg := range call.Arguments {
		args = append(args, i.evaluateExpression(chain, arg))
	}
	if call.Callee == nil {
		return runtime.None
	}
	return i.resolveAndCall(chain, call.Callee.Name, args)
}
