package interpreter

import (
	"kizuna/interpreter-go/pkg/ast"
	"kizuna/interpreter-go/pkg/runtime"
)

func applyUnary(op ast.Operator, operand runtime.Value) runtime.Value {
	switch op {
	case ast.OpAdd:
		return runtime.NumberValue{Val: runtime.ToNumber(operand)}
	case ast.OpSub:
		return runtime.NumberValue{Val: -runtime.ToNumber(operand)}
	case ast.OpNot:
		return runtime.FromBool(!runtime.ToBool(operand))
	default:
		return runtime.None
	}
}

// applyBinary combines two already-evaluated operands. OrOr and AndAnd never
// short-circuit because both sides have run by the time they get here.
func applyBinary(op ast.Operator, left, right runtime.Value) runtime.Value {
	switch op {
	case ast.OpAdd:
		if left.Kind() == runtime.KindString {
			return runtime.StringValue{Val: runtime.ToText(left) + runtime.ToText(right)}
		}
		return runtime.NumberValue{Val: runtime.ToNumber(left) + runtime.ToNumber(right)}
	case ast.OpSub:
		return runtime.NumberValue{Val: runtime.ToNumber(left) - runtime.ToNumber(right)}
	case ast.OpMul:
		return runtime.NumberValue{Val: runtime.ToNumber(left) * runtime.ToNumber(right)}
	case ast.OpDiv:
		return runtime.NumberValue{Val: runtime.ToNumber(left) / runtime.ToNumber(right)}
	case ast.OpEqEq:
		return runtime.FromBool(runtime.Equal(left, right))
	case ast.OpNotEq:
		return runtime.FromBool(!runtime.Equal(left, right))
	case ast.OpLt:
		return runtime.FromBool(runtime.ToNumber(left) < runtime.ToNumber(right))
	case ast.OpGt:
		return runtime.FromBool(runtime.ToNumber(left) > runtime.ToNumber(right))
	case ast.OpLe:
		return runtime.FromBool(runtime.ToNumber(left) <= runtime.ToNumber(right))
	case ast.OpGe:
		return runtime.FromBool(runtime.ToNumber(left) >= runtime.ToNumber(right))
	case ast.OpOrOr:
		l, r := runtime.ToBool(left), runtime.ToBool(right)
		return runtime.FromBool(l || r)
	case ast.OpAndAnd:
		l, r := runtime.ToBool(left), runtime.ToBool(right)
		return runtime.FromBool(l && r)
	default:
		return runtime.None
	}
}
