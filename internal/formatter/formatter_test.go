package formatter

import (
	"testing"

	"github.com/tpl-lang/tplc/internal/ast"
	"github.com/tpl-lang/tplc/internal/parser"
)

func parse(t *testing.T, source string) *ast.Program {
	t.Helper()
	p := parser.New(source)
	prog := p.Parse()
	if p.LexerDiagnostics().HasErrors() {
		t.Fatalf("lexer errors: %s", p.LexerDiagnostics().Format("test"))
	}
	if p.Diagnostics().HasErrors() {
		t.Fatalf("parser errors: %s", p.Diagnostics().Format("test"))
	}
	return prog
}

func format(t *testing.T, source string) string {
	t.Helper()
	return Format(parse(t, source))
}

func TestFormat_Golden(t *testing.T) {
	got := format(t, `int32 x=5;
define int32 add(int32 a,int32 b){return a+b;};`)

	want := "int32 x = 5;\n" +
		"\n" +
		"define int32 add(int32 a, int32 b) {\n" +
		"    return a + b;\n" +
		"};\n"
	if got != want {
		t.Errorf("wrong output.\nexpected:\n%s\ngot:\n%s", want, got)
	}
}

func TestFormat_NormalizesSpacing(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"x=1+2*3;", "x = 1 + 2 * 3;\n"},
		{"x  +=   2 ;", "x += 2;\n"},
		{"x -=1;", "x -= 1;\n"},
		{"i ++ ;", "i++;\n"},
		{"print( a ,b );", "print(a, b);\n"},
		{"bool ok=1+2<3*4;", "bool ok = 1 + 2 < 3 * 4;\n"},
	}

	for _, tt := range tests {
		if got := format(t, tt.input); got != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.input, tt.want, got)
		}
	}
}

func TestFormat_KeepsNeededParens(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"x = (1 + 2) * 3;", "x = (1 + 2) * 3;\n"},
		{"x = 1 + 2 * 3;", "x = 1 + 2 * 3;\n"},
		{"x = 1 - (2 - 3);", "x = 1 - (2 - 3);\n"},
		{"x = 1 - 2 - 3;", "x = 1 - 2 - 3;\n"},
		{"x = -(a + b);", "x = -(a + b);\n"},
		{"x = -a * b;", "x = -a * b;\n"},
	}

	for _, tt := range tests {
		if got := format(t, tt.input); got != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.input, tt.want, got)
		}
	}
}

func TestFormat_IfElseChain(t *testing.T) {
	got := format(t, `if a > 1 { print(1); } else if a > 0 { print(2); } else { print(3); };`)

	want := "if (a > 1) {\n" +
		"    print(1);\n" +
		"} else if (a > 0) {\n" +
		"    print(2);\n" +
		"} else {\n" +
		"    print(3);\n" +
		"};\n"
	if got != want {
		t.Errorf("wrong output.\nexpected:\n%s\ngot:\n%s", want, got)
	}
}

func TestFormat_Loops(t *testing.T) {
	got := format(t, `while i<3 { i++; };
for j in 10 { print(j); };`)

	want := "while (i < 3) {\n" +
		"    i++;\n" +
		"};\n" +
		"for j in 10 {\n" +
		"    print(j);\n" +
		"};\n"
	if got != want {
		t.Errorf("wrong output.\nexpected:\n%s\ngot:\n%s", want, got)
	}
}

func TestFormat_PostfixAndArrays(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"int32[3] xs=[1,2,3];", "int32[3] xs = [1, 2, 3];\n"},
		{"print(xs[ 1 ]);", "print(xs[1]);\n"},
		{"print(x .type( ));", "print(x.type());\n"},
		{"y = x.to_int64();", "y = x.to_int64();\n"},
		{"s = n . to_str();", "s = n.to_str();\n"},
		{"print(7 .double( ));", "print(7.double());\n"},
	}

	for _, tt := range tests {
		if got := format(t, tt.input); got != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.input, tt.want, got)
		}
	}
}

func TestFormat_StringEscapes(t *testing.T) {
	got := format(t, `str s = "a\"b\n\tc\\";`)
	want := "str s = \"a\\\"b\\n\\tc\\\\\";\n"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestFormat_Lambda(t *testing.T) {
	got := format(t, `fn<int32> triple=define int32(int32 n){return n*3;};`)

	want := "fn<int32> triple = define int32 (int32 n) {\n" +
		"    return n * 3;\n" +
		"};\n"
	if got != want {
		t.Errorf("wrong output.\nexpected:\n%s\ngot:\n%s", want, got)
	}
}

func TestFormat_Idempotent(t *testing.T) {
	source := `int32 x = 5;
define int32 add(int32 a, int32 b) {
    if a > b {
        return a + b;
    } else {
        return a - b;
    };
};
while (x < 100) {
    x = add(x, x);
};
print(x, x.type());`

	once := format(t, source)
	twice := format(t, once)
	if once != twice {
		t.Errorf("formatting is not idempotent.\nfirst:\n%s\nsecond:\n%s", once, twice)
	}
}
