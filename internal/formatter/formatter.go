package formatter

import (
	"fmt"
	"strings"

	"github.com/tpl-lang/tplc/internal/ast"
	"github.com/tpl-lang/tplc/internal/lexer"
)

// Format takes an AST Program and returns canonical TPL source code.
func Format(prog *ast.Program) string {
	f := &formatter{}
	f.formatProgram(prog)
	return f.sb.String()
}

type formatter struct {
	sb     strings.Builder
	indent int
}

// --- helpers ---

func (f *formatter) emitLinef(format string, args ...any) {
	f.sb.WriteString(f.indentStr())
	f.sb.WriteString(fmt.Sprintf(format, args...))
	f.sb.WriteString("\n")
}

func (f *formatter) incIndent() { f.indent++ }
func (f *formatter) decIndent() { f.indent-- }

func (f *formatter) indentStr() string {
	return strings.Repeat("    ", f.indent)
}

func (f *formatter) blankLine() {
	f.sb.WriteString("\n")
}

// --- program-level ---

func (f *formatter) formatProgram(prog *ast.Program) {
	for i, stmt := range prog.Statements {
		_, isFunc := stmt.(*ast.FunctionDecl)
		if i > 0 && isFunc {
			f.blankLine()
		}
		f.formatStmt(stmt)
		if isFunc && i+1 < len(prog.Statements) {
			f.blankLine()
		}
	}
}

// --- statements ---

func (f *formatter) formatStmt(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.DeclStmt:
		if s.Value == nil {
			f.emitLinef("%s %s;", ast.TypeRefString(s.Type), s.Name)
		} else {
			f.emitLinef("%s %s = %s;", ast.TypeRefString(s.Type), s.Name, f.expr(s.Value, 0))
		}
	case *ast.AssignStmt:
		f.formatAssign(s)
	case *ast.FunctionDecl:
		f.emitLinef("define %s %s(%s) {", ast.TypeRefString(s.ReturnType), s.Name, f.params(s.Params))
		f.formatBody(s.Body)
		f.emitLinef("};")
	case *ast.ReturnStmt:
		if s.Value == nil {
			f.emitLinef("return;")
		} else {
			f.emitLinef("return %s;", f.expr(s.Value, 0))
		}
	case *ast.IfStmt:
		f.formatIfChain(s)
		f.emitLinef("};")
	case *ast.WhileStmt:
		f.emitLinef("while (%s) {", f.expr(s.Condition, 0))
		f.formatBody(s.Body)
		f.emitLinef("};")
	case *ast.ForInStmt:
		f.emitLinef("for %s in %s {", s.Variable, f.expr(s.Bound, 0))
		f.formatBody(s.Body)
		f.emitLinef("};")
	case *ast.BreakStmt:
		f.emitLinef("break;")
	case *ast.ExprStmt:
		f.emitLinef("%s;", f.expr(s.Expr, 0))
	case *ast.Block:
		f.emitLinef("{")
		f.formatBody(s)
		f.emitLinef("};")
	}
}

// formatIfChain prints an if with its else-if chain on shared closing braces.
// The caller prints the final `};`.
func (f *formatter) formatIfChain(s *ast.IfStmt) {
	f.emitLinef("if (%s) {", f.expr(s.Condition, 0))
	f.formatBody(s.Then)
	switch e := s.Else.(type) {
	case nil:
	case *ast.IfStmt:
		f.sb.WriteString(f.indentStr())
		f.sb.WriteString("} else ")
		f.formatElseIf(e)
	case *ast.Block:
		f.emitLinef("} else {")
		f.formatBody(e)
	}
}

// formatElseIf continues a chain after "} else " has been written.
func (f *formatter) formatElseIf(s *ast.IfStmt) {
	f.sb.WriteString(fmt.Sprintf("if (%s) {\n", f.expr(s.Condition, 0)))
	f.formatBody(s.Then)
	switch e := s.Else.(type) {
	case nil:
	case *ast.IfStmt:
		f.sb.WriteString(f.indentStr())
		f.sb.WriteString("} else ")
		f.formatElseIf(e)
	case *ast.Block:
		f.emitLinef("} else {")
		f.formatBody(e)
	}
}

func (f *formatter) formatBody(b *ast.Block) {
	f.incIndent()
	for _, stmt := range b.Statements {
		f.formatStmt(stmt)
	}
	f.decIndent()
}

func (f *formatter) formatAssign(s *ast.AssignStmt) {
	target := f.expr(s.Target, 0)
	switch s.Op {
	case lexer.ASSIGN:
		f.emitLinef("%s = %s;", target, f.expr(s.Value, 0))
	case lexer.PLUS_ASSIGN:
		f.emitLinef("%s += %s;", target, f.expr(s.Value, 0))
	case lexer.MINUS_ASSIGN:
		f.emitLinef("%s -= %s;", target, f.expr(s.Value, 0))
	case lexer.INC:
		f.emitLinef("%s++;", target)
	case lexer.DEC:
		f.emitLinef("%s--;", target)
	}
}

func (f *formatter) params(params []*ast.Param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = fmt.Sprintf("%s %s", ast.TypeRefString(p.Type), p.Name)
	}
	return strings.Join(parts, ", ")
}

// --- expressions ---

// Binding strengths, loosest to tightest. A child rendered in a position
// expecting strength n gets parentheses when its own strength is lower.
const (
	precNone = iota
	precCompare
	precAdd
	precMul
	precUnary
	precPostfix
)

func binPrec(op lexer.TokenType) int {
	switch op {
	case lexer.EQ, lexer.NEQ, lexer.LT, lexer.GT, lexer.LEQ, lexer.GEQ:
		return precCompare
	case lexer.PLUS, lexer.MINUS:
		return precAdd
	case lexer.STAR, lexer.SLASH, lexer.PERCENT:
		return precMul
	}
	return precNone
}

func binOp(op lexer.TokenType) string {
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
	}
	return "?"
}

func (f *formatter) expr(e ast.Expression, min int) string {
	switch ex := e.(type) {
	case *ast.IntLit:
		return ex.Value
	case *ast.BoolLit:
		if ex.Value {
			return "true"
		}
		return "false"
	case *ast.StringLit:
		return quote(ex.Value)
	case *ast.Identifier:
		return ex.Name
	case *ast.BinaryExpr:
		p := binPrec(ex.Op)
		// left-associative: the right child needs one level more
		s := fmt.Sprintf("%s %s %s",
			f.expr(ex.Left, p), binOp(ex.Op), f.expr(ex.Right, p+1))
		if p < min {
			return "(" + s + ")"
		}
		return s
	case *ast.UnaryExpr:
		var op string
		switch ex.Op {
		case lexer.MINUS:
			op = "-"
		case lexer.BANG:
			op = "!"
		case lexer.AMP:
			op = "&"
		case lexer.STAR:
			op = "*"
		}
		s := op + f.expr(ex.Operand, precUnary)
		if precUnary < min {
			return "(" + s + ")"
		}
		return s
	case *ast.CallExpr:
		return fmt.Sprintf("%s(%s)", ex.Function, f.args(ex.Args))
	case *ast.MethodCallExpr:
		return fmt.Sprintf("%s.%s(%s)",
			f.expr(ex.Receiver, precPostfix), ex.Method, f.args(ex.Args))
	case *ast.BuiltinExpr:
		recv := f.expr(ex.Receiver, precPostfix)
		switch ex.Kind {
		case ast.BuiltinTypeOf:
			return recv + ".type()"
		case ast.BuiltinToInt:
			return fmt.Sprintf("%s.to_int%d()", recv, ex.Width)
		case ast.BuiltinToStr:
			return recv + ".to_str()"
		}
	case *ast.IndexExpr:
		return fmt.Sprintf("%s[%s]",
			f.expr(ex.Object, precPostfix), f.expr(ex.Index, 0))
	case *ast.ArrayLit:
		return "[" + f.args(ex.Elements) + "]"
	case *ast.LambdaExpr:
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("define %s (%s) {\n",
			ast.TypeRefString(ex.ReturnType), f.params(ex.Params)))
		f.incIndent()
		for _, stmt := range ex.Body.Statements {
			start := f.sb.Len()
			f.formatStmt(stmt)
			sb.WriteString(f.sb.String()[start:])
			f.truncate(start)
		}
		f.decIndent()
		sb.WriteString(f.indentStr())
		sb.WriteString("}")
		return sb.String()
	}
	return "?"
}

// truncate rewinds the shared builder; lambda bodies render through the
// statement printer but belong inside an expression string.
func (f *formatter) truncate(n int) {
	s := f.sb.String()[:n]
	f.sb.Reset()
	f.sb.WriteString(s)
}

func (f *formatter) args(args []ast.Expression) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = f.expr(a, 0)
	}
	return strings.Join(parts, ", ")
}

// quote renders a string literal with its source escapes restored.
func quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\\':
			sb.WriteString(`\\`)
		case '"':
			sb.WriteString(`\"`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
