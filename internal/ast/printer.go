package ast

import (
	"fmt"
	"strings"

	"github.com/tpl-lang/tplc/internal/lexer"
)

// Print returns a tree-like string representation of the AST for debugging
func Print(node Node) string {
	var sb strings.Builder
	printNode(&sb, node, 0)
	return sb.String()
}

// TypeRefString renders a type reference the way it is written in source.
func TypeRefString(t *TypeRef) string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case TypeNamed:
		return t.Name
	case TypeAuto:
		return "auto"
	case TypePointer:
		return TypeRefString(t.Inner) + "*"
	case TypeArray:
		return TypeRefString(t.Inner) + "[" + t.Len + "]"
	case TypeFunc:
		return "fn<" + TypeRefString(t.Return) + ">"
	default:
		return "<invalid>"
	}
}

func opString(op lexer.TokenType) string {
	switch op {
	case lexer.PLUS:
		return "+"
	case lexer.MINUS:
		return "-"
	case lexer.STAR:
		return "*"
	case lexer.SLASH:
		return "/"
	case lexer.PERCENT:
		return "%"
	case lexer.EQ:
		return "=="
	case lexer.NEQ:
		return "!="
	case lexer.LT:
		return "<"
	case lexer.GT:
		return ">"
	case lexer.LEQ:
		return "<="
	case lexer.GEQ:
		return ">="
	case lexer.ASSIGN:
		return "="
	case lexer.PLUS_ASSIGN:
		return "+="
	case lexer.MINUS_ASSIGN:
		return "-="
	case lexer.INC:
		return "++"
	case lexer.DEC:
		return "--"
	case lexer.AMP:
		return "&"
	case lexer.BANG:
		return "!"
	default:
		return op.String()
	}
}

func printNode(sb *strings.Builder, node Node, indent int) {
	if node == nil {
		return
	}

	prefix := strings.Repeat("  ", indent)

	switch n := node.(type) {
	case *Program:
		sb.WriteString(prefix + "Program\n")
		for _, s := range n.Statements {
			printNode(sb, s, indent+1)
		}

	case *DeclStmt:
		sb.WriteString(fmt.Sprintf("%sDecl: %s %s\n", prefix, TypeRefString(n.Type), n.Name))
		if n.Value != nil {
			printNode(sb, n.Value, indent+1)
		}

	case *AssignStmt:
		sb.WriteString(fmt.Sprintf("%sAssign: %s\n", prefix, opString(n.Op)))
		printNode(sb, n.Target, indent+1)
		if n.Value != nil {
			printNode(sb, n.Value, indent+1)
		}

	case *FunctionDecl:
		sb.WriteString(fmt.Sprintf("%sDefine: %s %s\n", prefix, TypeRefString(n.ReturnType), n.Name))
		for _, p := range n.Params {
			sb.WriteString(fmt.Sprintf("%s  Param: %s %s\n", prefix, TypeRefString(p.Type), p.Name))
		}
		printNode(sb, n.Body, indent+1)

	case *Block:
		sb.WriteString(prefix + "Block\n")
		for _, s := range n.Statements {
			printNode(sb, s, indent+1)
		}

	case *ReturnStmt:
		sb.WriteString(prefix + "Return\n")
		if n.Value != nil {
			printNode(sb, n.Value, indent+1)
		}

	case *IfStmt:
		sb.WriteString(prefix + "If\n")
		printNode(sb, n.Condition, indent+1)
		printNode(sb, n.Then, indent+1)
		if n.Else != nil {
			sb.WriteString(prefix + "Else\n")
			printNode(sb, n.Else, indent+1)
		}

	case *WhileStmt:
		sb.WriteString(prefix + "While\n")
		printNode(sb, n.Condition, indent+1)
		printNode(sb, n.Body, indent+1)

	case *ForInStmt:
		sb.WriteString(fmt.Sprintf("%sForIn: %s\n", prefix, n.Variable))
		printNode(sb, n.Bound, indent+1)
		printNode(sb, n.Body, indent+1)

	case *BreakStmt:
		sb.WriteString(prefix + "Break\n")

	case *ExprStmt:
		sb.WriteString(prefix + "ExprStmt\n")
		printNode(sb, n.Expr, indent+1)

	case *BinaryExpr:
		sb.WriteString(fmt.Sprintf("%sBinary: %s\n", prefix, opString(n.Op)))
		printNode(sb, n.Left, indent+1)
		printNode(sb, n.Right, indent+1)

	case *UnaryExpr:
		sb.WriteString(fmt.Sprintf("%sUnary: %s\n", prefix, opString(n.Op)))
		printNode(sb, n.Operand, indent+1)

	case *CallExpr:
		sb.WriteString(fmt.Sprintf("%sCall: %s\n", prefix, n.Function))
		for _, a := range n.Args {
			printNode(sb, a, indent+1)
		}

	case *MethodCallExpr:
		sb.WriteString(fmt.Sprintf("%sMethodCall: %s\n", prefix, n.Method))
		printNode(sb, n.Receiver, indent+1)
		for _, a := range n.Args {
			printNode(sb, a, indent+1)
		}

	case *BuiltinExpr:
		switch n.Kind {
		case BuiltinTypeOf:
			sb.WriteString(prefix + "Builtin: type\n")
		case BuiltinToInt:
			sb.WriteString(fmt.Sprintf("%sBuiltin: to_int%d\n", prefix, n.Width))
		case BuiltinToStr:
			sb.WriteString(prefix + "Builtin: to_str\n")
		}
		printNode(sb, n.Receiver, indent+1)

	case *IndexExpr:
		sb.WriteString(prefix + "Index\n")
		printNode(sb, n.Object, indent+1)
		printNode(sb, n.Index, indent+1)

	case *LambdaExpr:
		sb.WriteString(fmt.Sprintf("%sLambda: %s\n", prefix, TypeRefString(n.ReturnType)))
		for _, p := range n.Params {
			sb.WriteString(fmt.Sprintf("%s  Param: %s %s\n", prefix, TypeRefString(p.Type), p.Name))
		}
		printNode(sb, n.Body, indent+1)

	case *Identifier:
		sb.WriteString(fmt.Sprintf("%sIdent: %s\n", prefix, n.Name))

	case *IntLit:
		sb.WriteString(fmt.Sprintf("%sInt: %s\n", prefix, n.Value))

	case *StringLit:
		sb.WriteString(fmt.Sprintf("%sString: %q\n", prefix, n.Value))

	case *BoolLit:
		sb.WriteString(fmt.Sprintf("%sBool: %t\n", prefix, n.Value))

	case *ArrayLit:
		sb.WriteString(prefix + "Array\n")
		for _, e := range n.Elements {
			printNode(sb, e, indent+1)
		}

	default:
		sb.WriteString(fmt.Sprintf("%s<unknown node %T>\n", prefix, node))
	}
}
