package ast

import (
	"fmt"
	"strings"
)

// StructureError aggregates every structural problem found in a tree.
type StructureError struct {
	Issues []string
}

func (e *StructureError) Error() string {
	if len(e.Issues) == 0 {
		return "ast: invalid structure"
	}
	var b strings.Builder
	b.WriteString("ast: invalid structure:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// ValidateScript checks the invariants the runtime relies on: no nil nodes,
// named functions and variables, opcodes drawn from the enumeration, and an
// acyclic tree.
func ValidateScript(script *Script) error {
	if script == nil {
		return &StructureError{Issues: []string{"script is nil"}}
	}
	v := &validator{onPath: make(map[Node]struct{})}
	for i, unit := range script.Units {
		v.unit(fmt.Sprintf("units[%d]", i), unit)
	}
	if len(v.issues) > 0 {
		return &StructureError{Issues: v.issues}
	}
	return nil
}

type validator struct {
	issues []string
	onPath map[Node]struct{}
}

func (v *validator) fail(path, format string, args ...any) {
	v.issues = append(v.issues, path+": "+fmt.Sprintf(format, args...))
}

func (v *validator) enter(path string, node Node) bool {
	if _, seen := v.onPath[node]; seen {
		v.fail(path, "cycle through %s", node.NodeType())
		return false
	}
	v.onPath[node] = struct{}{}
	return true
}

func (v *validator) leave(node Node) {
	delete(v.onPath, node)
}

func (v *validator) unit(path string, unit Unit) {
	switch u := unit.(type) {
	case nil:
		v.fail(path, "nil unit")
	case *FunctionDefinition:
		if u == nil {
			v.fail(path, "nil function definition")
			return
		}
		if u.Name() == "" {
			v.fail(path, "function definition requires a name")
		}
		for i, p := range u.Params {
			if p == nil || p.Name == "" {
				v.fail(fmt.Sprintf("%s.params[%d]", path, i), "parameter requires a name")
			}
		}
		v.statements(path+".body", u.Body)
	case Statement:
		v.statement(path, u)
	default:
		v.fail(path, "unsupported unit %T", unit)
	}
}

func (v *validator) statements(path string, stmts []Statement) {
	for i, stmt := range stmts {
		v.statement(fmt.Sprintf("%s[%d]", path, i), stmt)
	}
}

func (v *validator) statement(path string, stmt Statement) {
	if isNilNode(stmt) {
		v.fail(path, "nil statement")
		return
	}
	if expr, ok := stmt.(Expression); ok {
		v.expression(path, expr)
		return
	}
	if !v.enter(path, stmt) {
		return
	}
	defer v.leave(stmt)

	switch s := stmt.(type) {
	case *VariableDefinition:
		v.name(path+".name", s.Name)
		v.expression(path+".value", s.Value)
	case *VariableModification:
		v.name(path+".name", s.Name)
		if !s.Operator.IsValid() {
			v.fail(path, "unknown operator %q", s.Operator)
		}
		v.expression(path+".value", s.Value)
	case *IfBlock:
		v.expression(path+".condition", s.Condition)
		v.statements(path+".then", s.Then)
		v.statements(path+".otherwise", s.Otherwise)
	case *LoopBlock:
		v.statements(path+".body", s.Body)
	case *BreakStatement:
	default:
		v.fail(path, "unsupported statement %s", stmt.NodeType())
	}
}

func (v *validator) expression(path string, expr Expression) {
	if isNilNode(expr) {
		v.fail(path, "nil expression")
		return
	}
	if !v.enter(path, expr) {
		return
	}
	defer v.leave(expr)

	switch e := expr.(type) {
	case *Identifier:
		if e.Name == "" {
			v.fail(path, "identifier requires a name")
		}
	case *StringLiteral, *NumberLiteral:
	case *FunctionCall:
		v.name(path+".callee", e.Callee)
		for i, arg := range e.Arguments {
			v.expression(fmt.Sprintf("%s.arguments[%d]", path, i), arg)
		}
	case *UnaryExpression:
		if !e.Operator.IsValid() {
			v.fail(path, "unknown operator %q", e.Operator)
		}
		v.expression(path+".operand", e.Operand)
	case *BinaryExpression:
		if !e.Operator.IsValid() {
			v.fail(path, "unknown operator %q", e.Operator)
		}
		v.expression(path+".left", e.Left)
		v.expression(path+".right", e.Right)
	default:
		v.fail(path, "unsupported expression %s", expr.NodeType())
	}
}

func (v *validator) name(path string, id *Identifier) {
	if id == nil || id.Name == "" {
		v.fail(path, "identifier requires a name")
	}
}

func isNilNode(node Node) bool {
	switch n := node.(type) {
	case nil:
		return true
	case *Identifier:
		return n == nil
	case *StringLiteral:
		return n == nil
	case *NumberLiteral:
		return n == nil
	case *FunctionCall:
		return n == nil
	case *UnaryExpression:
		return n == nil
	case *BinaryExpression:
		return n == nil
	case *VariableDefinition:
		return n == nil
	case *VariableModification:
		return n == nil
	case *IfBlock:
		return n == nil
	case *LoopBlock:
		return n == nil
	case *BreakStatement:
		return n == nil
	default:
		return false
	}
}
