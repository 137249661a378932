package compiler

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/tpl-lang/tplc/internal/checker"
	"github.com/tpl-lang/tplc/internal/codegen"
	"github.com/tpl-lang/tplc/internal/diagnostic"
	"github.com/tpl-lang/tplc/internal/ir"
	"github.com/tpl-lang/tplc/internal/parser"
)

// BackendCommand is the external driver that turns an IR file into a native
// binary. It must be on PATH for Build to succeed.
const BackendCommand = "tpl-backend"

// Result holds the output of a compilation
type Result struct {
	Diagnostics *diagnostic.Diagnostics
	Module      *ir.Module
	IRText      string
}

// Compile runs the front-end pipeline: lex -> parse -> check -> lower.
// name becomes the IR module name. Diagnostics from all stages are merged;
// a stage with errors stops the pipeline.
func Compile(source, name string) *Result {
	res := &Result{Diagnostics: diagnostic.New(diagnostic.StageParse)}

	p := parser.New(source)
	prog := p.Parse()

	res.Diagnostics.Merge(p.LexerDiagnostics())
	res.Diagnostics.Merge(p.Diagnostics())
	if res.Diagnostics.HasErrors() {
		return res
	}

	checkResult := checker.CheckWithResult(prog)
	res.Diagnostics.Merge(checkResult.Diagnostics)
	if res.Diagnostics.HasErrors() {
		return res
	}

	mod, err := codegen.Generate(prog, checkResult, name)
	if err != nil {
		res.Diagnostics.Errorf(diagnostic.InternalInvariantViolation, 0, 0, "%s", err)
		return res
	}
	if err := ir.Validate(mod); err != nil {
		res.Diagnostics.Errorf(diagnostic.InternalInvariantViolation, 0, 0,
			"invalid module: %s", err)
		return res
	}

	res.Module = mod
	res.IRText = mod.String()
	return res
}

// Check runs parse + check only (no codegen).
func Check(source string) *diagnostic.Diagnostics {
	diags := diagnostic.New(diagnostic.StageParse)

	p := parser.New(source)
	prog := p.Parse()

	diags.Merge(p.LexerDiagnostics())
	diags.Merge(p.Diagnostics())
	if diags.HasErrors() {
		return diags
	}

	diags.Merge(checker.Check(prog))
	return diags
}

// CompileFile reads and compiles a source file. The module is named after
// the file, without directory or extension.
func CompileFile(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Compile(string(data), moduleName(path)), nil
}

func moduleName(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	if ext != "" {
		base = base[:len(base)-len(ext)]
	}
	if base == "" {
		return "main"
	}
	return base
}

// EmitIR runs the pipeline and writes the IR dump to outPath.
// No file is written when compilation fails.
func EmitIR(path, outPath string) error {
	res, err := CompileFile(path)
	if err != nil {
		return err
	}
	if res.Diagnostics.HasErrors() {
		return fmt.Errorf("compilation errors:\n%s", res.Diagnostics.Format(path))
	}

	return os.WriteFile(outPath, []byte(res.IRText), 0644)
}

// Build runs the pipeline and produces a native binary. It writes the IR
// to a temp directory and hands it to the external backend driver, which
// links the result to outPath.
func Build(path, outPath string) error {
	res, err := CompileFile(path)
	if err != nil {
		return err
	}
	if res.Diagnostics.HasErrors() {
		return fmt.Errorf("compilation errors:\n%s", res.Diagnostics.Format(path))
	}

	tmpDir, err := os.MkdirTemp("", "tplc-build-*")
	if err != nil {
		return fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	irPath := filepath.Join(tmpDir, res.Module.Name+".ir")
	if err := os.WriteFile(irPath, []byte(res.IRText), 0644); err != nil {
		return fmt.Errorf("failed to write IR: %w", err)
	}

	cmd := exec.Command(BackendCommand, "build", "-o", outPath, irPath)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s failed: %w", BackendCommand, err)
	}
	return nil
}
