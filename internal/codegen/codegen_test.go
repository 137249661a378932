package codegen

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"

	"github.com/tpl-lang/tplc/internal/checker"
	"github.com/tpl-lang/tplc/internal/ir"
	"github.com/tpl-lang/tplc/internal/parser"
)

func compile(t *testing.T, source string) *ir.Module {
	t.Helper()

	p := parser.New(source)
	prog := p.Parse()
	if p.LexerDiagnostics().HasErrors() {
		t.Fatalf("lexer errors: %s", p.LexerDiagnostics().Format("test"))
	}
	if p.Diagnostics().HasErrors() {
		t.Fatalf("parser errors: %s", p.Diagnostics().Format("test"))
	}

	res := checker.CheckWithResult(prog)
	if res.Diagnostics.HasErrors() {
		t.Fatalf("checker errors: %s", res.Diagnostics.Format("test"))
	}

	mod, err := Generate(prog, res, "test")
	be.Err(t, err, nil)
	be.Err(t, ir.Validate(mod), nil)
	return mod
}

func dump(t *testing.T, source string) string {
	t.Helper()
	return compile(t, source).String()
}

func TestGenerate_Arithmetic(t *testing.T) {
	out := dump(t, `int32 x = 2 + 3 * 4;
print(x);`)

	be.True(t, strings.Contains(out, "mul %1, %2 : i32"))
	be.True(t, strings.Contains(out, "add %0, %3 : i32"))
	be.True(t, strings.Contains(out, "local.set x, %4"))
}

func TestGenerate_MainIsSynthesizedLast(t *testing.T) {
	mod := compile(t, `define int32 add(int32 a, int32 b) {
    return a + b;
};
print(add(1, 2));`)

	be.Equal(t, len(mod.Funcs), 2)
	be.Equal(t, mod.Funcs[0].Name, "add")
	be.Equal(t, mod.Funcs[1].Name, "main")
	be.Equal(t, mod.Funcs[1].Result, ir.Void)
}

func TestGenerate_SugarLowersIdentically(t *testing.T) {
	plain := dump(t, `define int32 double(int32 n) {
    return n * 2;
};
print(double(7));`)
	sugar := dump(t, `define int32 double(int32 n) {
    return n * 2;
};
print(7.double());`)

	be.Equal(t, sugar, plain)
}

func TestGenerate_Deterministic(t *testing.T) {
	source := `define int32 f(int32 n) {
    if n > 0 {
        return n;
    };
    return 0 - n;
};
for i in 3 {
    print(f(i));
};`

	be.Equal(t, dump(t, source), dump(t, source))
}

func TestGenerate_IfShape(t *testing.T) {
	mod := compile(t, `int32 n = 5;
if n > 3 {
    print("big");
} else {
    print("small");
};`)

	main := mod.Func("main")
	labels := make([]string, 0, len(main.Blocks))
	for _, b := range main.Blocks {
		labels = append(labels, b.Label)
	}
	be.Equal(t, labels, []string{"entry", "if.then.0", "if.else.0", "if.end.0"})
}

func TestGenerate_WhileShape(t *testing.T) {
	out := dump(t, `int32 i = 0;
while (i < 3) {
    i++;
};
print(i);`)

	be.True(t, strings.Contains(out, "while.head.0:"))
	be.True(t, strings.Contains(out, "while.body.0:"))
	be.True(t, strings.Contains(out, "br while.head.0"))
	be.True(t, strings.Contains(out, "while.end.0:"))
}

func TestGenerate_BreakJumpsToExit(t *testing.T) {
	out := dump(t, `int32 i = 0;
while (true) {
    break;
};
print(i);`)

	be.True(t, strings.Contains(out, "br while.end.0"))
}

func TestGenerate_ForLoopUsesHiddenBound(t *testing.T) {
	mod := compile(t, `for i in 4 {
    print(i);
};`)

	main := mod.Func("main")
	names := make([]string, 0, len(main.Locals))
	for _, l := range main.Locals {
		names = append(names, l.Name)
	}
	be.Equal(t, names, []string{"i", "for.bound"})

	out := mod.String()
	be.True(t, strings.Contains(out, "for.head.0:"))
	be.True(t, strings.Contains(out, "lt %"))
}

func TestGenerate_AddressTakenScalarGetsSlot(t *testing.T) {
	mod := compile(t, `int32 v = 1;
int32* p = &v;
*p = 42;
print(v);`)

	main := mod.Func("main")
	be.Equal(t, len(main.Slots), 1)
	be.Equal(t, main.Slots[0].Name, "v")
	be.Equal(t, main.Slots[0].Elem, ir.I32)
	be.Equal(t, main.Slots[0].Count, 1)

	out := mod.String()
	be.True(t, strings.Contains(out, "slot.addr v"))
	be.True(t, strings.Contains(out, "local p: ptr"))
}

func TestGenerate_ArraySlotAndIndexing(t *testing.T) {
	mod := compile(t, `int32[3] xs = [10, 20, 30];
print(xs[1]);`)

	main := mod.Func("main")
	be.Equal(t, len(main.Slots), 1)
	be.Equal(t, main.Slots[0].Count, 3)

	out := mod.String()
	be.True(t, strings.Contains(out, "index i32"))
	be.True(t, strings.Contains(out, "load %"))
}

func TestGenerate_TypeOfDoesNotEvaluateReceiver(t *testing.T) {
	mod := compile(t, `int32 x = 1;
print(x.type());`)

	out := mod.String()
	be.True(t, !strings.Contains(out, "local.get x"))
	be.Equal(t, mod.Strings[0], "int32")
}

func TestGenerate_ConvertIsElidedForSameWidth(t *testing.T) {
	out := dump(t, `int32 x = 1;
print(x.to_int32());`)

	be.True(t, !strings.Contains(out, "convert"))
}

func TestGenerate_ConvertChangesWidth(t *testing.T) {
	out := dump(t, `int32 x = 1;
int64 y = x.to_int64();
print(y);`)

	be.True(t, strings.Contains(out, "convert %1 : i64"))
}

func TestGenerate_PrintFormatFollowsStaticTypes(t *testing.T) {
	mod := compile(t, `int32 n = 1;
str s = "x";
bool b = true;
print(n, s, b);`)

	found := false
	for _, entry := range mod.Strings {
		if entry == "%d %s %s\n" {
			found = true
		}
	}
	be.True(t, found)
	be.True(t, strings.Contains(mod.String(), "bool.to.str"))
}

func TestGenerate_IndirectCall(t *testing.T) {
	out := dump(t, `define int32 double(int32 n) {
    return n * 2;
};
fn<int32> f = double;
print(f(5));`)

	be.True(t, strings.Contains(out, "func.const @double"))
	be.True(t, strings.Contains(out, "call.indirect"))
}

func TestGenerate_LambdaBecomesNamedFunc(t *testing.T) {
	mod := compile(t, `fn<int32> triple = define int32 (int32 n) {
    return n * 3;
};
print(triple(4));`)

	be.True(t, mod.Func("lambda.0") != nil)
	be.Equal(t, mod.Func("lambda.0").Result, ir.I32)
	be.True(t, strings.Contains(mod.String(), "func.const @lambda.0"))
}

func TestGenerate_CompoundAssignAndIncrement(t *testing.T) {
	plain := dump(t, `int32 i = 0;
i = i + 1;
print(i);`)
	inc := dump(t, `int32 i = 0;
i++;
print(i);`)

	be.Equal(t, inc, plain)
}

func TestGenerate_LenOfArrayIsConstant(t *testing.T) {
	out := dump(t, `int32[3] xs = [1, 2, 3];
print(len(xs));`)

	be.True(t, strings.Contains(out, "const 3 : i64"))
}

func TestGenerate_LenOfStringIsRuntime(t *testing.T) {
	out := dump(t, `str s = "hello";
print(len(s));`)

	be.True(t, strings.Contains(out, "str.len"))
}

func TestGenerate_ShadowedNamesStayDistinct(t *testing.T) {
	out := dump(t, `int32 x = 1;
if true {
    int32 x = 2;
    print(x);
};
print(x);`)

	be.True(t, strings.Contains(out, "local x: i32"))
	be.True(t, strings.Contains(out, "local x.1: i32"))
}

func TestGenerate_EveryBlockTerminates(t *testing.T) {
	mod := compile(t, `define int32 abs(int32 n) {
    if n < 0 {
        return 0 - n;
    } else {
        return n;
    };
};
print(abs(0 - 4));`)

	for _, f := range mod.Funcs {
		for _, b := range f.Blocks {
			be.True(t, b.Terminated())
		}
	}
}

func TestGenerate_NegativeLiteralConst(t *testing.T) {
	out := dump(t, `int8 x = -128;
print(x);`)

	// the sign folds into the constant instead of a separate neg
	be.True(t, strings.Contains(out, "const -128 : i8"))
	be.True(t, !strings.Contains(out, "neg"))

	out = dump(t, `int64 big = -9223372036854775808;
print(big);`)
	be.True(t, strings.Contains(out, "const -9223372036854775808 : i64"))
}
