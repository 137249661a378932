package compiler

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nalgeon/be"

	"github.com/tpl-lang/tplc/internal/diagnostic"
)

const helloSource = `define int32 add(int32 a, int32 b) {
    return a + b;
};
print(add(2, 3));
`

func TestCompile_Success(t *testing.T) {
	res := Compile(helloSource, "demo")

	be.Equal(t, res.Diagnostics.HasErrors(), false)
	be.True(t, res.Module != nil)
	be.True(t, strings.HasPrefix(res.IRText, "module demo\n"))
	be.True(t, res.Module.Func("add") != nil)
	be.True(t, res.Module.Func("main") != nil)
}

func TestCompile_StopsAfterParseErrors(t *testing.T) {
	res := Compile("int32 x = ;", "demo")

	be.Equal(t, res.Diagnostics.HasErrors(), true)
	be.True(t, res.Module == nil)
	be.Equal(t, res.IRText, "")
}

func TestCompile_MergesLexerDiagnostics(t *testing.T) {
	res := Compile(`str s = "oops`, "demo")

	be.Equal(t, res.Diagnostics.HasErrors(), true)
	be.True(t, res.Diagnostics.HasCode(diagnostic.UnterminatedString))
}

func TestCompile_SemanticErrorsStopLowering(t *testing.T) {
	res := Compile("print(missing);", "demo")

	be.True(t, res.Diagnostics.HasCode(diagnostic.UndefinedSymbol))
	be.True(t, res.Module == nil)
}

func TestCompile_WarningsDoNotBlock(t *testing.T) {
	res := Compile("int32 unused = 1;", "demo")

	be.Equal(t, res.Diagnostics.HasErrors(), false)
	be.True(t, res.Diagnostics.HasCode(diagnostic.UnusedVariable))
	be.True(t, res.Module != nil)
}

func TestCompile_Deterministic(t *testing.T) {
	first := Compile(helloSource, "demo")
	second := Compile(helloSource, "demo")

	be.True(t, first.IRText != "")
	be.Equal(t, second.IRText, first.IRText)
}

func TestCheck_ReportsWithoutLowering(t *testing.T) {
	diags := Check("bool b = 1;")

	be.Equal(t, diags.HasErrors(), true)
	be.True(t, diags.HasCode(diagnostic.TypeMismatch))
}

func TestCompileFile_NamesModuleAfterFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "greeting.tpl")
	be.Err(t, os.WriteFile(path, []byte(`print("hi");`), 0644), nil)

	res, err := CompileFile(path)
	be.Err(t, err, nil)
	be.Equal(t, res.Module.Name, "greeting")
}

func TestCompileFile_MissingFile(t *testing.T) {
	_, err := CompileFile(filepath.Join(t.TempDir(), "absent.tpl"))
	be.Err(t, err)
}

func TestEmitIR_WritesDump(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "app.tpl")
	out := filepath.Join(dir, "app.ir")
	be.Err(t, os.WriteFile(src, []byte(helloSource), 0644), nil)

	be.Err(t, EmitIR(src, out), nil)

	data, err := os.ReadFile(out)
	be.Err(t, err, nil)
	be.True(t, strings.HasPrefix(string(data), "module app\n"))
}

func TestEmitIR_NoArtifactOnFailure(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "bad.tpl")
	out := filepath.Join(dir, "bad.ir")
	be.Err(t, os.WriteFile(src, []byte("print(missing);"), 0644), nil)

	be.Err(t, EmitIR(src, out))

	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Errorf("no output file may exist after a failed compile")
	}
}
