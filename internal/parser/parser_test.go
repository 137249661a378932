package parser

import (
	"testing"

	"github.com/tpl-lang/tplc/internal/ast"
	"github.com/tpl-lang/tplc/internal/diagnostic"
	"github.com/tpl-lang/tplc/internal/lexer"
)

func parse(t *testing.T, source string) *ast.Program {
	t.Helper()
	p := New(source)
	prog := p.Parse()

	if p.LexerDiagnostics().HasErrors() {
		t.Fatalf("lexer errors: %s", p.LexerDiagnostics().Format("test"))
	}
	if p.Diagnostics().HasErrors() {
		t.Fatalf("parser errors: %s", p.Diagnostics().Format("test"))
	}
	return prog
}

func TestParse_Declarations(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		typeName string
		varName  string
		hasInit  bool
	}{
		{"int decl", "int32 x = 5;", "int32", "x", true},
		{"str decl", `str s = "hi";`, "str", "s", true},
		{"bool decl", "bool ok = true;", "bool", "ok", true},
		{"auto decl", "auto n = 42;", "auto", "n", true},
		{"pointer decl", "int64* p = &x;", "int64*", "p", true},
		{"array decl", "int8[3] xs = [1, 2, 3];", "int8[3]", "xs", true},
		{"fn decl", "fn<int32> f = g;", "fn<int32>", "f", true},
		{"no initializer", "int16 y;", "int16", "y", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog := parse(t, tt.input)
			if len(prog.Statements) != 1 {
				t.Fatalf("expected 1 statement, got %d", len(prog.Statements))
			}
			decl, ok := prog.Statements[0].(*ast.DeclStmt)
			if !ok {
				t.Fatalf("expected *ast.DeclStmt, got %T", prog.Statements[0])
			}
			if got := ast.TypeRefString(decl.Type); got != tt.typeName {
				t.Errorf("wrong type. expected=%q, got=%q", tt.typeName, got)
			}
			if decl.Name != tt.varName {
				t.Errorf("wrong name. expected=%q, got=%q", tt.varName, decl.Name)
			}
			if (decl.Value != nil) != tt.hasInit {
				t.Errorf("initializer presence: expected=%v", tt.hasInit)
			}
		})
	}
}

func TestParse_FunctionDecl(t *testing.T) {
	prog := parse(t, `define int32 add(int32 a, int32 b) {
    return a + b;
};`)

	if len(prog.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(prog.Statements))
	}
	fn, ok := prog.Statements[0].(*ast.FunctionDecl)
	if !ok {
		t.Fatalf("expected *ast.FunctionDecl, got %T", prog.Statements[0])
	}
	if fn.Name != "add" {
		t.Errorf("wrong name: %q", fn.Name)
	}
	if len(fn.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(fn.Params))
	}
	if fn.Params[0].Name != "a" || fn.Params[1].Name != "b" {
		t.Errorf("wrong param names: %q, %q", fn.Params[0].Name, fn.Params[1].Name)
	}
	if got := ast.TypeRefString(fn.ReturnType); got != "int32" {
		t.Errorf("wrong return type: %q", got)
	}
	if len(fn.Body.Statements) != 1 {
		t.Fatalf("expected 1 body statement, got %d", len(fn.Body.Statements))
	}
	ret, ok := fn.Body.Statements[0].(*ast.ReturnStmt)
	if !ok {
		t.Fatalf("expected *ast.ReturnStmt, got %T", fn.Body.Statements[0])
	}
	if _, ok := ret.Value.(*ast.BinaryExpr); !ok {
		t.Errorf("expected binary return value, got %T", ret.Value)
	}
}

func TestParse_Precedence(t *testing.T) {
	prog := parse(t, "x = 1 + 2 * 3;")

	assign := prog.Statements[0].(*ast.AssignStmt)
	add, ok := assign.Value.(*ast.BinaryExpr)
	if !ok || add.Op != lexer.PLUS {
		t.Fatalf("expected + at root, got %T", assign.Value)
	}
	mul, ok := add.Right.(*ast.BinaryExpr)
	if !ok || mul.Op != lexer.STAR {
		t.Fatalf("expected * on the right of +, got %T", add.Right)
	}
}

func TestParse_ComparisonBindsLoosest(t *testing.T) {
	prog := parse(t, "b = 1 + 2 < 3 * 4;")

	assign := prog.Statements[0].(*ast.AssignStmt)
	cmp, ok := assign.Value.(*ast.BinaryExpr)
	if !ok || cmp.Op != lexer.LT {
		t.Fatalf("expected < at root, got %v", assign.Value)
	}
}

func TestParse_Assignments(t *testing.T) {
	tests := []struct {
		input string
		op    lexer.TokenType
		value bool
	}{
		{"x = 1;", lexer.ASSIGN, true},
		{"x += 1;", lexer.PLUS_ASSIGN, true},
		{"x -= 1;", lexer.MINUS_ASSIGN, true},
		{"x++;", lexer.INC, false},
		{"x--;", lexer.DEC, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			prog := parse(t, tt.input)
			assign, ok := prog.Statements[0].(*ast.AssignStmt)
			if !ok {
				t.Fatalf("expected *ast.AssignStmt, got %T", prog.Statements[0])
			}
			if assign.Op != tt.op {
				t.Errorf("wrong op: %q", assign.Op)
			}
			if (assign.Value != nil) != tt.value {
				t.Errorf("value presence: expected=%v", tt.value)
			}
		})
	}
}

func TestParse_IfElseChain(t *testing.T) {
	prog := parse(t, `if a == 1 {
    x = 1;
} else if a == 2 {
    x = 2;
} else {
    x = 3;
};`)

	ifStmt, ok := prog.Statements[0].(*ast.IfStmt)
	if !ok {
		t.Fatalf("expected *ast.IfStmt, got %T", prog.Statements[0])
	}
	elseIf, ok := ifStmt.Else.(*ast.IfStmt)
	if !ok {
		t.Fatalf("expected chained *ast.IfStmt in else, got %T", ifStmt.Else)
	}
	if _, ok := elseIf.Else.(*ast.Block); !ok {
		t.Fatalf("expected final else block, got %T", elseIf.Else)
	}
}

func TestParse_Loops(t *testing.T) {
	prog := parse(t, `while i < 10 {
    i++;
};
for j in 5 {
    break;
};`)

	if len(prog.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(prog.Statements))
	}
	if _, ok := prog.Statements[0].(*ast.WhileStmt); !ok {
		t.Errorf("expected *ast.WhileStmt, got %T", prog.Statements[0])
	}
	forStmt, ok := prog.Statements[1].(*ast.ForInStmt)
	if !ok {
		t.Fatalf("expected *ast.ForInStmt, got %T", prog.Statements[1])
	}
	if forStmt.Variable != "j" {
		t.Errorf("wrong loop variable: %q", forStmt.Variable)
	}
	if _, ok := forStmt.Body.Statements[0].(*ast.BreakStmt); !ok {
		t.Errorf("expected *ast.BreakStmt in body, got %T", forStmt.Body.Statements[0])
	}
}

func TestParse_PostfixExpressions(t *testing.T) {
	prog := parse(t, `r = xs[0];
s = v.type();
n = v.to_int64();
w = v.to_str();
m = a.combine(b, c);
q = add(1, 2);`)

	values := make([]ast.Expression, 0, 6)
	for _, stmt := range prog.Statements {
		values = append(values, stmt.(*ast.AssignStmt).Value)
	}

	if _, ok := values[0].(*ast.IndexExpr); !ok {
		t.Errorf("expected IndexExpr, got %T", values[0])
	}
	b1, ok := values[1].(*ast.BuiltinExpr)
	if !ok || b1.Kind != ast.BuiltinTypeOf {
		t.Errorf("expected type() builtin, got %T", values[1])
	}
	b2, ok := values[2].(*ast.BuiltinExpr)
	if !ok || b2.Kind != ast.BuiltinToInt || b2.Width != 64 {
		t.Errorf("expected to_int64() builtin, got %T", values[2])
	}
	b3, ok := values[3].(*ast.BuiltinExpr)
	if !ok || b3.Kind != ast.BuiltinToStr {
		t.Errorf("expected to_str() builtin, got %T", values[3])
	}
	mc, ok := values[4].(*ast.MethodCallExpr)
	if !ok || mc.Method != "combine" || len(mc.Args) != 2 {
		t.Errorf("expected method call with 2 args, got %T", values[4])
	}
	call, ok := values[5].(*ast.CallExpr)
	if !ok || call.Function != "add" || len(call.Args) != 2 {
		t.Errorf("expected call with 2 args, got %T", values[5])
	}
}

func TestParse_UnaryExpressions(t *testing.T) {
	prog := parse(t, "p = &v; x = *p; n = -m; b = !c;")

	ops := []lexer.TokenType{lexer.AMP, lexer.STAR, lexer.MINUS, lexer.BANG}
	for i, want := range ops {
		assign := prog.Statements[i].(*ast.AssignStmt)
		un, ok := assign.Value.(*ast.UnaryExpr)
		if !ok {
			t.Fatalf("statement %d: expected *ast.UnaryExpr, got %T", i, assign.Value)
		}
		if un.Op != want {
			t.Errorf("statement %d: wrong op %q", i, un.Op)
		}
	}
}

func TestParse_Lambda(t *testing.T) {
	prog := parse(t, `fn<int32> f = define int32 (int32 n) {
    return n * 2;
};`)

	decl := prog.Statements[0].(*ast.DeclStmt)
	lambda, ok := decl.Value.(*ast.LambdaExpr)
	if !ok {
		t.Fatalf("expected *ast.LambdaExpr, got %T", decl.Value)
	}
	if len(lambda.Params) != 1 || lambda.Params[0].Name != "n" {
		t.Errorf("wrong lambda params")
	}
	if got := ast.TypeRefString(lambda.ReturnType); got != "int32" {
		t.Errorf("wrong lambda return type: %q", got)
	}
}

func TestParse_ErrorRecovery(t *testing.T) {
	p := New(`int32 x = ;
int32 y = 2;`)
	prog := p.Parse()

	if !p.Diagnostics().HasErrors() {
		t.Fatal("expected parse errors")
	}
	if !p.Diagnostics().HasCode(diagnostic.UnexpectedToken) {
		t.Errorf("expected UnexpectedToken, got: %s", p.Diagnostics().Format("test"))
	}

	// the second declaration still parses
	found := false
	for _, stmt := range prog.Statements {
		if decl, ok := stmt.(*ast.DeclStmt); ok && decl.Name == "y" {
			found = true
		}
	}
	if !found {
		t.Errorf("parser did not recover to parse the second declaration")
	}
}

func TestParse_UnexpectedEOF(t *testing.T) {
	p := New("define int32 f(")
	p.Parse()

	if !p.Diagnostics().HasCode(diagnostic.UnexpectedEOF) {
		t.Errorf("expected UnexpectedEOF, got: %s", p.Diagnostics().Format("test"))
	}
}
