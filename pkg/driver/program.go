package driver

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"kizuna/interpreter-go/pkg/ast"
)

// ProgramExtension is the conventional suffix of serialized program files.
const ProgramExtension = ".kz.yml"

// LoadProgram reads and decodes a serialized program from disk.
func LoadProgram(path string) (*ast.Script, error) {
	if path == "" {
		return nil, fmt.Errorf("program: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("program: resolve %s: %w", path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("program: read %s: %w", abs, err)
	}
	script, err := DecodeProgram(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", abs, err)
	}
	return script, nil
}

// DecodeProgram decodes a YAML (or JSON) program document and validates the
// resulting tree.
func DecodeProgram(data []byte) (*ast.Script, error) {
	var raw any
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("program: empty document")
		}
		return nil, fmt.Errorf("program: parse: %w", err)
	}

	var script *ast.Script
	switch doc := raw.(type) {
	case map[string]any:
		node, err := decodeNode(doc)
		if err != nil {
			return nil, err
		}
		s, ok := node.(*ast.Script)
		if !ok {
			return nil, fmt.Errorf("program: top-level node is %s, want Script", node.NodeType())
		}
		script = s
	case []any:
		units, err := decodeUnits(doc)
		if err != nil {
			return nil, err
		}
		script = ast.NewScript(units)
	default:
		return nil, fmt.Errorf("program: top-level document must be a mapping or sequence, got %T", raw)
	}

	if err := ast.ValidateScript(script); err != nil {
		return nil, fmt.Errorf("program: %w", err)
	}
	return script, nil
}

func decodeNode(node map[string]any) (ast.Node, error) {
	typ, _ := node["type"].(string)
	switch ast.NodeType(typ) {
	case ast.NodeScript:
		unitsVal, err := sequenceField(node, "units")
		if err != nil {
			return nil, err
		}
		units, err := decodeUnits(unitsVal)
		if err != nil {
			return nil, err
		}
		return ast.NewScript(units), nil
	case ast.NodeFunctionDefinition:
		id, err := decodeIdentifierField(node, "name")
		if err != nil {
			return nil, err
		}
		paramsVal, err := sequenceField(node, "params")
		if err != nil {
			return nil, err
		}
		params := make([]*ast.Identifier, 0, len(paramsVal))
		for _, raw := range paramsVal {
			name, ok := raw.(string)
			if !ok {
				return nil, fmt.Errorf("program: function %q parameter must be a string, got %T", id.Name, raw)
			}
			params = append(params, ast.NewIdentifier(name))
		}
		body, err := decodeStatementsField(node, "body")
		if err != nil {
			return nil, err
		}
		return ast.NewFunctionDefinition(id, params, body), nil
	case ast.NodeIdentifier:
		return decodeIdentifierField(node, "name")
	case ast.NodeStringLiteral:
		val, ok := node["value"].(string)
		if !ok && node["value"] != nil {
			return nil, fmt.Errorf("program: StringLiteral value must be a string, got %T", node["value"])
		}
		return ast.NewStringLiteral(val), nil
	case ast.NodeNumberLiteral:
		val, err := decodeNumber(node["value"])
		if err != nil {
			return nil, err
		}
		return ast.NewNumberLiteral(val), nil
	case ast.NodeFunctionCall:
		id, err := decodeIdentifierField(node, "name")
		if err != nil {
			return nil, err
		}
		argsVal, err := sequenceField(node, "arguments")
		if err != nil {
			return nil, err
		}
		args := make([]ast.Expression, 0, len(argsVal))
		for _, raw := range argsVal {
			arg, err := decodeExpression(raw)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}
		return ast.NewFunctionCall(id, args), nil
	case ast.NodeUnaryExpression:
		op, err := decodeOperator(node)
		if err != nil {
			return nil, err
		}
		operand, err := decodeExpression(node["operand"])
		if err != nil {
			return nil, err
		}
		return ast.NewUnaryExpression(op, operand), nil
	case ast.NodeBinaryExpression:
		op, err := decodeOperator(node)
		if err != nil {
			return nil, err
		}
		left, err := decodeExpression(node["left"])
		if err != nil {
			return nil, err
		}
		right, err := decodeExpression(node["right"])
		if err != nil {
			return nil, err
		}
		return ast.NewBinaryExpression(left, op, right), nil
	case ast.NodeVariableDefinition:
		id, err := decodeIdentifierField(node, "name")
		if err != nil {
			return nil, err
		}
		value, err := decodeExpression(node["value"])
		if err != nil {
			return nil, err
		}
		return ast.NewVariableDefinition(id, value), nil
	case ast.NodeVariableModification:
		id, err := decodeIdentifierField(node, "name")
		if err != nil {
			return nil, err
		}
		op := ast.OpEq
		if _, present := node["operator"]; present {
			if op, err = decodeOperator(node); err != nil {
				return nil, err
			}
		}
		value, err := decodeExpression(node["value"])
		if err != nil {
			return nil, err
		}
		return ast.NewVariableModification(id, op, value), nil
	case ast.NodeIfBlock:
		cond, err := decodeExpression(node["condition"])
		if err != nil {
			return nil, err
		}
		then, err := decodeStatementsField(node, "then")
		if err != nil {
			return nil, err
		}
		otherwise, err := decodeStatementsField(node, "otherwise")
		if err != nil {
			return nil, err
		}
		return ast.NewIfBlock(cond, then, otherwise), nil
	case ast.NodeLoopBlock:
		body, err := decodeStatementsField(node, "body")
		if err != nil {
			return nil, err
		}
		return ast.NewLoopBlock(body), nil
	case ast.NodeBreakStatement:
		return ast.NewBreakStatement(), nil
	case "":
		return nil, fmt.Errorf("program: node missing type")
	default:
		return nil, fmt.Errorf("program: unsupported node type %q", typ)
	}
}

func decodeUnits(raw []any) ([]ast.Unit, error) {
	units := make([]ast.Unit, 0, len(raw))
	for _, item := range raw {
		child, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("program: unit must be a mapping, got %T", item)
		}
		node, err := decodeNode(child)
		if err != nil {
			return nil, err
		}
		unit, ok := node.(ast.Unit)
		if !ok {
			return nil, fmt.Errorf("program: %s is not a top-level unit", node.NodeType())
		}
		units = append(units, unit)
	}
	return units, nil
}

// sequenceField returns node[field] as a sequence. A missing or null field
// is an empty sequence.
func sequenceField(node map[string]any, field string) ([]any, error) {
	raw, present := node[field]
	if !present || raw == nil {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("program: %s must be a sequence, got %T", field, raw)
	}
	return items, nil
}

func decodeStatementsField(node map[string]any, field string) ([]ast.Statement, error) {
	items, err := sequenceField(node, field)
	if err != nil || items == nil {
		return nil, err
	}
	stmts := make([]ast.Statement, 0, len(items))
	for _, item := range items {
		child, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("program: %s entry must be a mapping, got %T", field, item)
		}
		decoded, err := decodeNode(child)
		if err != nil {
			return nil, err
		}
		stmt, ok := decoded.(ast.Statement)
		if !ok {
			return nil, fmt.Errorf("program: %s is not allowed inside %s", decoded.NodeType(), field)
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

func decodeExpression(raw any) (ast.Expression, error) {
	child, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("program: expression must be a mapping, got %T", raw)
	}
	node, err := decodeNode(child)
	if err != nil {
		return nil, err
	}
	expr, ok := node.(ast.Expression)
	if !ok {
		return nil, fmt.Errorf("program: %s is not an expression", node.NodeType())
	}
	return expr, nil
}

func decodeIdentifierField(node map[string]any, field string) (*ast.Identifier, error) {
	name, ok := node[field].(string)
	if !ok || name == "" {
		typ, _ := node["type"].(string)
		return nil, fmt.Errorf("program: %s requires a non-empty %s", typ, field)
	}
	return ast.NewIdentifier(name), nil
}

func decodeOperator(node map[string]any) (ast.Operator, error) {
	name, _ := node["operator"].(string)
	op := ast.Operator(name)
	if !op.IsValid() {
		return "", fmt.Errorf("program: unknown operator %q", name)
	}
	return op, nil
}

func decodeNumber(raw any) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case string:
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("program: invalid number %q", v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("program: NumberLiteral value must be numeric, got %T", raw)
	}
}

//-----------------------------------------------------------------------------
// Encoding
//-----------------------------------------------------------------------------

// EncodeProgram serialises a script into the YAML program format. The output
// decodes back to an identical tree.
func EncodeProgram(script *ast.Script) ([]byte, error) {
	if err := ast.ValidateScript(script); err != nil {
		return nil, fmt.Errorf("program: %w", err)
	}
	units := sequenceNode()
	for _, unit := range script.Units {
		units.Content = append(units.Content, encodeNode(unit))
	}
	doc := mappingNode("type", strNode(string(ast.NodeScript)), "units", units)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("program: encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("program: encoder close: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteProgram encodes script and writes it to path.
func WriteProgram(path string, script *ast.Script) error {
	data, err := EncodeProgram(script)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("program: write %s: %w", path, err)
	}
	return nil
}

func encodeNode(node ast.Node) *yaml.Node {
	typ := strNode(string(node.NodeType()))
	switch n := node.(type) {
	case *ast.FunctionDefinition:
		params := sequenceNode()
		for _, name := range n.ParamNames() {
			params.Content = append(params.Content, strNode(name))
		}
		return mappingNode("type", typ, "name", strNode(n.Name()), "params", params, "body", encodeStatements(n.Body))
	case *ast.Identifier:
		return mappingNode("type", typ, "name", strNode(n.Name))
	case *ast.StringLiteral:
		return mappingNode("type", typ, "value", strNode(n.Value))
	case *ast.NumberLiteral:
		return mappingNode("type", typ, "value", numNode(n.Value))
	case *ast.FunctionCall:
		args := sequenceNode()
		for _, arg := range n.Arguments {
			args.Content = append(args.Content, encodeNode(arg))
		}
		return mappingNode("type", typ, "name", strNode(n.Callee.Name), "arguments", args)
	case *ast.UnaryExpression:
		return mappingNode("type", typ, "operator", strNode(string(n.Operator)), "operand", encodeNode(n.Operand))
	case *ast.BinaryExpression:
		return mappingNode("type", typ, "left", encodeNode(n.Left), "operator", strNode(string(n.Operator)), "right", encodeNode(n.Right))
	case *ast.VariableDefinition:
		return mappingNode("type", typ, "name", strNode(n.Name.Name), "value", encodeNode(n.Value))
	case *ast.VariableModification:
		return mappingNode("type", typ, "name", strNode(n.Name.Name), "operator", strNode(string(n.Operator)), "value", encodeNode(n.Value))
	case *ast.IfBlock:
		return mappingNode("type", typ, "condition", encodeNode(n.Condition), "then", encodeStatements(n.Then), "otherwise", encodeStatements(n.Otherwise))
	case *ast.LoopBlock:
		return mappingNode("type", typ, "body", encodeStatements(n.Body))
	default:
		return mappingNode("type", typ)
	}
}

func encodeStatements(stmts []ast.Statement) *yaml.Node {
	seq := sequenceNode()
	for _, stmt := range stmts {
		seq.Content = append(seq.Content, encodeNode(stmt))
	}
	return seq
}

func mappingNode(pairs ...any) *yaml.Node {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for i := 0; i+1 < len(pairs); i += 2 {
		key, _ := pairs[i].(string)
		value, _ := pairs[i+1].(*yaml.Node)
		node.Content = append(node.Content, strNode(key), value)
	}
	return node
}

func sequenceNode() *yaml.Node {
	return &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
}

func strNode(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

func numNode(value float64) *yaml.Node {
	var text string
	switch {
	case math.IsNaN(value):
		text = ".nan"
	case math.IsInf(value, 1):
		text = ".inf"
	case math.IsInf(value, -1):
		text = "-.inf"
	case value == math.Trunc(value) && math.Abs(value) < 1e15:
		text = strconv.FormatFloat(value, 'f', 1, 64)
	default:
		text = strconv.FormatFloat(value, 'g', -1, 64)
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: text}
}
