package ast

type NodeType string

const (
	NodeIdentifier           NodeType = "Identifier"
	NodeStringLiteral        NodeType = "StringLiteral"
	NodeNumberLiteral        NodeType = "NumberLiteral"
	NodeFunctionCall         NodeType = "FunctionCall"
	NodeUnaryExpression      NodeType = "UnaryExpression"
	NodeBinaryExpression     NodeType = "BinaryExpression"
	NodeVariableDefinition   NodeType = "VariableDefinition"
	NodeVariableModification NodeType = "VariableModification"
	NodeIfBlock              NodeType = "IfBlock"
	NodeLoopBlock            NodeType = "LoopBlock"
	NodeBreakStatement       NodeType = "BreakStatement"
	NodeFunctionDefinition   NodeType = "FunctionDefinition"
	NodeScript               NodeType = "Script"
)

type Node interface {
	NodeType() NodeType
	isNode()
}

type nodeImpl struct {
	Type NodeType `json:"type"`
}

func newNodeImpl(kind NodeType) nodeImpl {
	return nodeImpl{Type: kind}
}

func (n nodeImpl) NodeType() NodeType { return n.Type }
func (nodeImpl) isNode()              {}

// Marker interfaces.

// Unit is anything that may appear at the top level of a script: a statement
// or a function definition.
type Unit interface {
	Node
	unitNode()
}

type unitMarker struct{}

func (unitMarker) unitNode() {}

type Statement interface {
	Unit
	statementNode()
}

type statementMarker struct{}

func (statementMarker) statementNode() {}

// Expression nodes double as expression statements.
type Expression interface {
	Statement
	expressionNode()
}

type expressionMarker struct{}

func (expressionMarker) expressionNode() {}

// Operator enumerates the opcodes carried by unary, binary and modify nodes.
type Operator string

const (
	OpAdd    Operator = "Add"
	OpSub    Operator = "Sub"
	OpMul    Operator = "Mul"
	OpDiv    Operator = "Div"
	OpEq     Operator = "Eq"
	OpNot    Operator = "Not"
	OpEqEq   Operator = "EqEq"
	OpNotEq  Operator = "NotEq"
	OpLt     Operator = "Lt"
	OpGt     Operator = "Gt"
	OpLe     Operator = "Le"
	OpGe     Operator = "Ge"
	OpOrOr   Operator = "OrOr"
	OpAndAnd Operator = "AndAnd"
)

// Operators lists every opcode in declaration order.
var Operators = []Operator{
	OpAdd, OpSub, OpMul, OpDiv, OpEq, OpNot, OpEqEq, OpNotEq,
	OpLt, OpGt, OpLe, OpGe, OpOrOr, OpAndAnd,
}

// IsValid reports whether the operator belongs to the opcode enumeration.
func (op Operator) IsValid() bool {
	for _, known := range Operators {
		if op == known {
			return true
		}
	}
	return false
}

// Value leaves

type Identifier struct {
	nodeImpl
	unitMarker
	statementMarker
	expressionMarker

	Name string `json:"name"`
}

func NewIdentifier(name string) *Identifier {
	return &Identifier{nodeImpl: newNodeImpl(NodeIdentifier), Name: name}
}

type StringLiteral struct {
	nodeImpl
	unitMarker
	statementMarker
	expressionMarker

	Value string `json:"value"`
}

func NewStringLiteral(value string) *StringLiteral {
	return &StringLiteral{nodeImpl: newNodeImpl(NodeStringLiteral), Value: value}
}

type NumberLiteral struct {
	nodeImpl
	unitMarker
	statementMarker
	expressionMarker

	Value float64 `json:"value"`
}

func NewNumberLiteral(value float64) *NumberLiteral {
	return &NumberLiteral{nodeImpl: newNodeImpl(NodeNumberLiteral), Value: value}
}

// Expressions

type FunctionCall struct {
	nodeImpl
	unitMarker
	statementMarker
	expressionMarker

	Callee    *Identifier  `json:"callee"`
	Arguments []Expression `json:"arguments"`
}

func NewFunctionCall(callee *Identifier, args []Expression) *FunctionCall {
	return &FunctionCall{nodeImpl: newNodeImpl(NodeFunctionCall), Callee: callee, Arguments: args}
}

type UnaryExpression struct {
	nodeImpl
	unitMarker
	statementMarker
	expressionMarker

	Operator Operator   `json:"operator"`
	Operand  Expression `json:"operand"`
}

func NewUnaryExpression(operator Operator, operand Expression) *UnaryExpression {
	return &UnaryExpression{nodeImpl: newNodeImpl(NodeUnaryExpression), Operator: operator, Operand: operand}
}

type BinaryExpression struct {
	nodeImpl
	unitMarker
	statementMarker
	expressionMarker

	Left     Expression `json:"left"`
	Operator Operator   `json:"operator"`
	Right    Expression `json:"right"`
}

func NewBinaryExpression(left Expression, operator Operator, right Expression) *BinaryExpression {
	return &BinaryExpression{nodeImpl: newNodeImpl(NodeBinaryExpression), Left: left, Operator: operator, Right: right}
}

// Statements

type VariableDefinition struct {
	nodeImpl
	unitMarker
	statementMarker

	Name  *Identifier `json:"name"`
	Value Expression  `json:"value"`
}

func NewVariableDefinition(name *Identifier, value Expression) *VariableDefinition {
	return &VariableDefinition{nodeImpl: newNodeImpl(NodeVariableDefinition), Name: name, Value: value}
}

// VariableModification rebinds an existing variable. Operator is carried
// through decoding and encoding but evaluation always replaces the value.
type VariableModification struct {
	nodeImpl
	unitMarker
	statementMarker

	Name     *Identifier `json:"name"`
	Operator Operator    `json:"operator"`
	Value    Expression  `json:"value"`
}

func NewVariableModification(name *Identifier, operator Operator, value Expression) *VariableModification {
	return &VariableModification{nodeImpl: newNodeImpl(NodeVariableModification), Name: name, Operator: operator, Value: value}
}

type IfBlock struct {
	nodeImpl
	unitMarker
	statementMarker

	Condition Expression  `json:"condition"`
	Then      []Statement `json:"then"`
	Otherwise []Statement `json:"otherwise"`
}

func NewIfBlock(condition Expression, then []Statement, otherwise []Statement) *IfBlock {
	return &IfBlock{nodeImpl: newNodeImpl(NodeIfBlock), Condition: condition, Then: then, Otherwise: otherwise}
}

type LoopBlock struct {
	nodeImpl
	unitMarker
	statementMarker

	Body []Statement `json:"body"`
}

func NewLoopBlock(body []Statement) *LoopBlock {
	return &LoopBlock{nodeImpl: newNodeImpl(NodeLoopBlock), Body: body}
}

type BreakStatement struct {
	nodeImpl
	unitMarker
	statementMarker
}

func NewBreakStatement() *BreakStatement {
	return &BreakStatement{nodeImpl: newNodeImpl(NodeBreakStatement)}
}
