package compiler

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nalgeon/be"

	"github.com/tpl-lang/tplc/internal/diagnostic"
	"github.com/tpl-lang/tplc/internal/testdoc"
)

// TestLanguageTour runs every test case embedded in docs/tour.md.
func TestLanguageTour(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("..", "..", "docs", "tour.md"))
	be.Err(t, err, nil)

	cases, err := testdoc.ExtractTestCases(string(data))
	be.Err(t, err, nil)
	be.True(t, len(cases) > 0)

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			res := Compile(tc.Input, "tour")

			for _, a := range tc.Assertions {
				switch a.Type {
				case testdoc.AssertionIRContains:
					if res.Diagnostics.HasErrors() {
						t.Fatalf("unexpected errors: %s", res.Diagnostics.Format("tour"))
					}
					for _, line := range strings.Split(a.Content, "\n") {
						if line == "" {
							continue
						}
						if !strings.Contains(res.IRText, line) {
							t.Errorf("IR does not contain %q.\nfull dump:\n%s", line, res.IRText)
						}
					}
				case testdoc.AssertionErrors:
					if !res.Diagnostics.HasErrors() {
						t.Fatal("expected compile errors, got none")
					}
					for _, line := range strings.Split(a.Content, "\n") {
						if line == "" {
							continue
						}
						if !res.Diagnostics.HasCode(diagnostic.Code(line)) {
							t.Errorf("expected diagnostic %s, got: %s",
								line, res.Diagnostics.Format("tour"))
						}
					}
				case testdoc.AssertionOutput:
					// runtime behavior belongs to the backend suite
				}
			}
		})
	}
}
