package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tpl-lang/tplc/internal/compiler"
	"github.com/tpl-lang/tplc/internal/diagnostic"
	"github.com/tpl-lang/tplc/internal/formatter"
	"github.com/tpl-lang/tplc/internal/parser"
)

const usage = `tplc - The TPL language compiler

Usage:
  tplc build [options] <file.tpl>    Compile to native binary (or IR dump)
  tplc check <file.tpl>              Parse and type-check only
  tplc fmt [-w] <file.tpl>           Reprint the source in canonical form

Options:
  --emit-ir      Output the IR dump instead of building a binary
  -o <path>      Output path (default: input name without extension)
  -w             fmt only: rewrite the file in place

Examples:
  tplc build hello.tpl               Build hello.tpl -> hello (native binary)
  tplc build --emit-ir hello.tpl     Emit hello.ir (IR dump)
  tplc build -o bin/app main.tpl     Build to an explicit output path
  tplc check hello.tpl               Check for errors without building
  tplc fmt -w hello.tpl              Reformat hello.tpl in place
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "build":
		handleBuild(os.Args[2:])
	case "check":
		handleCheck(os.Args[2:])
	case "fmt":
		handleFmt(os.Args[2:])
	case "help", "--help", "-h":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func handleBuild(args []string) {
	emitIR := false
	var filePath, outPath string

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "--emit-ir":
			emitIR = true
		case "-o":
			if i+1 >= len(args) {
				fmt.Fprintln(os.Stderr, "Error: -o requires a path")
				os.Exit(1)
			}
			i++
			outPath = args[i]
		default:
			if strings.HasPrefix(arg, "-") {
				fmt.Fprintf(os.Stderr, "Unknown option: %s\n", arg)
				os.Exit(1)
			}
			filePath = arg
		}
	}

	if filePath == "" {
		fmt.Fprintln(os.Stderr, "Error: no input file specified")
		os.Exit(1)
	}

	baseName := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))

	if emitIR {
		if outPath == "" {
			outPath = baseName + ".ir"
		}
		if err := compiler.EmitIR(filePath, outPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", outPath)
		return
	}

	if outPath == "" {
		outPath = baseName
	}
	fmt.Printf("Compiling %s...\n", filePath)
	if err := compiler.Build(filePath, outPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	fmt.Printf("Built %s\n", outPath)
}

func handleCheck(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no input file specified")
		os.Exit(1)
	}

	filePath := args[0]

	source, err := os.ReadFile(filePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %s\n", err)
		os.Exit(1)
	}

	diag := compiler.Check(string(source))
	if diag.HasErrors() {
		fmt.Fprintf(os.Stderr, "%s", diag.Format(filePath))
		os.Exit(1)
	}
	for _, d := range diag.All() {
		if d.Severity == diagnostic.Warning {
			fmt.Printf("%s:%d:%d: warning: %s\n", filePath, d.Line, d.Column, d.Message)
		}
	}

	fmt.Println("No errors found.")
}

func handleFmt(args []string) {
	write := false
	var filePath string

	for _, arg := range args {
		switch arg {
		case "-w":
			write = true
		default:
			if strings.HasPrefix(arg, "-") {
				fmt.Fprintf(os.Stderr, "Unknown option: %s\n", arg)
				os.Exit(1)
			}
			filePath = arg
		}
	}

	if filePath == "" {
		fmt.Fprintln(os.Stderr, "Error: no input file specified")
		os.Exit(1)
	}

	source, err := os.ReadFile(filePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %s\n", err)
		os.Exit(1)
	}

	p := parser.New(string(source))
	prog := p.Parse()

	if p.LexerDiagnostics().HasErrors() {
		fmt.Fprintf(os.Stderr, "%s", p.LexerDiagnostics().Format(filePath))
		os.Exit(1)
	}
	if p.Diagnostics().HasErrors() {
		fmt.Fprintf(os.Stderr, "%s", p.Diagnostics().Format(filePath))
		os.Exit(1)
	}

	out := formatter.Format(prog)
	if write {
		if err := os.WriteFile(filePath, []byte(out), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing file: %s\n", err)
			os.Exit(1)
		}
		fmt.Printf("Formatted %s\n", filePath)
		return
	}
	fmt.Print(out)
}
