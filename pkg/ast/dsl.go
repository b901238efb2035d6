package ast

// Value helpers.

func ID(name string) *Identifier {
	return NewIdentifier(name)
}

func Str(value string) *StringLiteral {
	return NewStringLiteral(value)
}

func Num(value float64) *NumberLiteral {
	return NewNumberLiteral(value)
}

// Expression helpers.

func Call(name string, args ...Expression) *FunctionCall {
	return NewFunctionCall(ID(name), args)
}

func Un(operator Operator, operand Expression) *UnaryExpression {
	return NewUnaryExpression(operator, operand)
}

func Bin(left Expression, operator Operator, right Expression) *BinaryExpression {
	return NewBinaryExpression(left, operator, right)
}

// Statement helpers.

func Def(name string, value Expression) *VariableDefinition {
	return NewVariableDefinition(ID(name), value)
}

func Set(name string, value Expression) *VariableModification {
	return NewVariableModification(ID(name), OpEq, value)
}

func SetOp(name string, operator Operator, value Expression) *VariableModification {
	return NewVariableModification(ID(name), operator, value)
}

func Block(stmts ...Statement) []Statement {
	return stmts
}

func If(condition Expression, then []Statement, otherwise []Statement) *IfBlock {
	return NewIfBlock(condition, then, otherwise)
}

func Loop(body ...Statement) *LoopBlock {
	return NewLoopBlock(body)
}

func Brk() *BreakStatement {
	return NewBreakStatement()
}

// Definition helpers.

func Fn(name string, params []string, body ...Statement) *FunctionDefinition {
	ids := make([]*Identifier, 0, len(params))
	for _, p := range params {
		ids = append(ids, ID(p))
	}
	return NewFunctionDefinition(ID(name), ids, body)
}

func Prog(units ...Unit) *Script {
	return NewScript(units)
}
