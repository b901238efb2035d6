package interpreter

import (
	"kizuna/interpreter-go/pkg/ast"
	"kizuna/interpreter-go/pkg/runtime"
)

// evaluateStatements runs stmts in order. The boolean result is the break
// flag: true when a break statement cut the sequence short.
func (i *Interpreter) evaluateStatements(chain runtime.Chain, stmts []ast.Statement) (runtime.Value, bool) {
	var last runtime.Value = runtime.None
	for _, stmt := range stmts {
		switch n := stmt.(type) {
		case ast.Expression:
			last = i.evaluateExpression(chain, n)
		case *ast.VariableDefinition:
			chain.DefineVariable(n.Name.Name, i.evaluateExpression(chain, n.Value))
			last = runtime.None
		case *ast.VariableModification:
			// The operator is not consulted; modification is plain replacement.
			chain.AssignVariable(n.Name.Name, i.evaluateExpression(chain, n.Value))
			last = runtime.None
		case *ast.IfBlock:
			val, broke := i.evaluateIfBlock(chain, n)
			if broke {
				return val, true
			}
			last = val
		case *ast.LoopBlock:
			last = i.evaluateLoopBlock(chain, n)
		case *ast.BreakStatement:
			return last, true
		}
	}
	return last, false
}

func (i *Interpreter) evaluateIfBlock(chain runtime.Chain, block *ast.IfBlock) (runtime.Value, bool) {
	cond := runtime.ToBool(i.evaluateExpression(chain, block.Condition))
	scope := chain.Descend()
	if cond {
		return i.evaluateStatements(scope, block.Then)
	}
	return i.evaluateStatements(scope, block.Otherwise)
}

// evaluateLoopBlock repeats the body in one frame shared by every iteration
// until a break escapes it. The break is absorbed here.
func (i *Interpreter) evaluateLoopBlock(chain runtime.Chain, loop *ast.LoopBlock) runtime.Value {
	scope := chain.Descend()
	for {
		val, broke := i.evaluateStatements(scope, loop.Body)
		if broke {
			return val
		}
	}
}
