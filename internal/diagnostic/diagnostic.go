package diagnostic

import (
	"fmt"
	"strings"
)

// Severity represents the severity level of a diagnostic message
type Severity int

const (
	Error Severity = iota
	Warning
)

// String returns the string representation of the severity level
func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	default:
		return "unknown"
	}
}

// Stage identifies the pipeline stage that produced a diagnostic.
type Stage int

const (
	StageLex Stage = iota
	StageParse
	StageSemantic
	StageCodegen
)

// String returns the string representation of the stage
func (s Stage) String() string {
	switch s {
	case StageLex:
		return "lex"
	case StageParse:
		return "parse"
	case StageSemantic:
		return "semantic"
	case StageCodegen:
		return "codegen"
	default:
		return "unknown"
	}
}

// Code classifies a diagnostic within its stage's error taxonomy.
type Code string

const (
	// Lex
	UnterminatedString Code = "UnterminatedString"
	InvalidCharacter   Code = "InvalidCharacter"
	MalformedNumber    Code = "MalformedNumber"

	// Parse
	UnexpectedToken Code = "UnexpectedToken"
	UnexpectedEOF   Code = "UnexpectedEOF"

	// Semantic
	UndefinedSymbol  Code = "UndefinedSymbol"
	Redeclaration    Code = "Redeclaration"
	TypeMismatch     Code = "TypeMismatch"
	ArityMismatch    Code = "ArityMismatch"
	CannotInferType  Code = "CannotInferType"
	InvalidAddressOf Code = "InvalidAddressOf"
	InvalidDeref     Code = "InvalidDeref"
	IndexOutOfRange  Code = "IndexOutOfRange"
	MissingReturn    Code = "MissingReturn"
	InvalidBreak     Code = "InvalidBreak"

	// Codegen
	InternalInvariantViolation Code = "InternalInvariantViolation"

	// Warnings
	UnusedVariable Code = "UnusedVariable"
)

// Diagnostic represents a single compiler error or warning
type Diagnostic struct {
	Severity Severity
	Stage    Stage
	Code     Code
	Message  string
	Line     int
	Column   int
}

// Diagnostics manages a collection of diagnostic messages.
// Each pipeline stage owns one collection; the driver merges them.
type Diagnostics struct {
	stage Stage
	items []Diagnostic
}

// New creates a new empty Diagnostics collection for the given stage
func New(stage Stage) *Diagnostics {
	return &Diagnostics{
		stage: stage,
		items: make([]Diagnostic, 0),
	}
}

// Errorf adds an error diagnostic with formatted message
func (d *Diagnostics) Errorf(code Code, line, col int, format string, args ...interface{}) {
	d.items = append(d.items, Diagnostic{
		Severity: Error,
		Stage:    d.stage,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Line:     line,
		Column:   col,
	})
}

// Warningf adds a warning diagnostic with formatted message
func (d *Diagnostics) Warningf(code Code, line, col int, format string, args ...interface{}) {
	d.items = append(d.items, Diagnostic{
		Severity: Warning,
		Stage:    d.stage,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Line:     line,
		Column:   col,
	})
}

// Merge appends all diagnostics from another collection
func (d *Diagnostics) Merge(other *Diagnostics) {
	if other == nil {
		return
	}
	d.items = append(d.items, other.items...)
}

// HasErrors returns true if there are any error-level diagnostics
func (d *Diagnostics) HasErrors() bool {
	for _, item := range d.items {
		if item.Severity == Error {
			return true
		}
	}
	return false
}

// Errors returns only the error-level diagnostics
func (d *Diagnostics) Errors() []Diagnostic {
	errors := make([]Diagnostic, 0)
	for _, item := range d.items {
		if item.Severity == Error {
			errors = append(errors, item)
		}
	}
	return errors
}

// All returns all diagnostics regardless of severity
func (d *Diagnostics) All() []Diagnostic {
	return d.items
}

// Count returns the total number of diagnostics
func (d *Diagnostics) Count() int {
	return len(d.items)
}

// ErrorCount returns the number of error-level diagnostics
func (d *Diagnostics) ErrorCount() int {
	count := 0
	for _, item := range d.items {
		if item.Severity == Error {
			count++
		}
	}
	return count
}

// HasCode returns true if any diagnostic carries the given code
func (d *Diagnostics) HasCode(code Code) bool {
	for _, item := range d.items {
		if item.Code == code {
			return true
		}
	}
	return false
}

// Format returns human-readable error messages
// Output format:
//
//	error[filename:3:10]: TypeMismatch: cannot assign int32 to str
//	warning[filename:5:1]: UnusedVariable: variable 'z' is never used
func (d *Diagnostics) Format(filename string) string {
	if len(d.items) == 0 {
		return ""
	}

	var builder strings.Builder
	for i, item := range d.items {
		builder.WriteString(fmt.Sprintf("%s[%s:%d:%d]: %s: %s",
			item.Severity.String(),
			filename,
			item.Line,
			item.Column,
			item.Code,
			item.Message,
		))

		if i < len(d.items)-1 {
			builder.WriteString("\n")
		}
	}

	return builder.String()
}

// Clear removes all diagnostics from the collection
func (d *Diagnostics) Clear() {
	d.items = make([]Diagnostic, 0)
}
