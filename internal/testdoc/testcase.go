// Package testdoc extracts executable test cases from Markdown documents.
// A test case starts at a heading of the form "Test: <name>", takes its
// input from a ```tpl fence, and its expectations from assertion fences.
package testdoc

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// InputFence is the fence language marking a test's source program.
const InputFence = "tpl"

// AssertionType identifies what an assertion fence checks.
type AssertionType string

const (
	// AssertionIRContains lists lines that must appear in the IR dump.
	AssertionIRContains AssertionType = "ir-contains"
	// AssertionErrors lists diagnostic codes the compiler must report,
	// one per line.
	AssertionErrors AssertionType = "errors"
	// AssertionOutput records the program's expected runtime output.
	// The front-end test harness does not execute programs; these fences
	// document behavior for the backend suite and are skipped here.
	AssertionOutput AssertionType = "output"
)

// Assertion is a single expectation attached to a test case.
type Assertion struct {
	Type    AssertionType
	Content string
}

// TestCase is a named program with its expectations.
type TestCase struct {
	Name       string
	Input      string
	Assertions []Assertion
}

// ExtractTestCases parses a Markdown document and returns its test cases.
// Fenced code blocks with a known language outside a test case, unknown
// fence languages inside one, and test cases without input or assertions
// are all errors.
func ExtractTestCases(markdownContent string) ([]TestCase, error) {
	md := goldmark.New()
	source := []byte(markdownContent)
	doc := md.Parser().Parse(text.NewReader(source))

	var cases []TestCase
	var current *TestCase

	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch n := node.(type) {
		case *ast.Heading:
			headingText := extractText(n, source)
			if !strings.HasPrefix(headingText, "Test: ") {
				return ast.WalkContinue, nil
			}
			if current != nil {
				if err := validate(current); err != nil {
					return ast.WalkStop, err
				}
				cases = append(cases, *current)
			}
			current = &TestCase{Name: strings.TrimPrefix(headingText, "Test: ")}

		case *ast.FencedCodeBlock:
			language := string(n.Language(source))
			content := fenceContent(n, source)

			if current == nil {
				if language == InputFence || isAssertion(language) {
					return ast.WalkStop, fmt.Errorf("%s fence found outside of a test case", language)
				}
				return ast.WalkContinue, nil
			}

			switch {
			case language == InputFence:
				if current.Input != "" {
					return ast.WalkStop, fmt.Errorf("test %q has multiple input fences", current.Name)
				}
				current.Input = strings.TrimRight(content, "\n")
			case isAssertion(language):
				current.Assertions = append(current.Assertions, Assertion{
					Type:    AssertionType(language),
					Content: strings.TrimRight(content, "\n"),
				})
			case language != "":
				return ast.WalkStop, fmt.Errorf("unknown fence language %q in test %q", language, current.Name)
			}
		}

		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}

	if current != nil {
		if err := validate(current); err != nil {
			return nil, err
		}
		cases = append(cases, *current)
	}

	return cases, nil
}

func validate(tc *TestCase) error {
	if tc.Input == "" {
		return fmt.Errorf("test %q has no input fence", tc.Name)
	}
	if len(tc.Assertions) == 0 {
		return fmt.Errorf("test %q has no assertion fences", tc.Name)
	}
	return nil
}

func isAssertion(language string) bool {
	switch AssertionType(language) {
	case AssertionIRContains, AssertionErrors, AssertionOutput:
		return true
	}
	return false
}

// extractText collects the plain text of a node's inline content.
func extractText(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if t, ok := n.(*ast.Text); ok {
				buf.Write(t.Segment.Value(source))
			}
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

func fenceContent(block *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer
	for i := 0; i < block.Lines().Len(); i++ {
		line := block.Lines().At(i)
		buf.Write(line.Value(source))
	}
	return buf.String()
}
