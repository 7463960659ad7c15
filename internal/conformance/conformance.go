// Package conformance is a fixture-driven test harness: each Case names a
// grammar source, the AST it must produce, and substrings its generated
// code must contain. Run walks every Case and reports a TestResult per
// fixture, diffing the parsed AST against the expectation on mismatch.
package conformance

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/go-cmp/cmp"

	"github.com/tpeg-lang/tpeg/ast"
	"github.com/tpeg-lang/tpeg/astgen"
	"github.com/tpeg-lang/tpeg/metaparser"
)

// Case is one fixture: Source must parse to WantGrammar (when non-nil), and
// its generated code must contain every string in WantCodeContains (when
// GenConfig is non-nil).
type Case struct {
	Name              string
	Source            string
	WantGrammar       *ast.Grammar
	WantParseErr      bool
	GenConfig         *astgen.Config
	WantCodeContains  []string
	WantExports       []string
	WantGenUnresolved bool
}

// TestResult is the outcome of running a single Case.
type TestResult struct {
	CaseName string
	Err      error
	Diff     string
}

func (r *TestResult) String() string {
	if r.Err != nil {
		return fmt.Sprintf("FAIL %v: %v", r.CaseName, r.Err)
	}
	if r.Diff != "" {
		return fmt.Sprintf("FAIL %v: grammar or exports mismatch (-want +got)\n%v", r.CaseName, r.Diff)
	}
	return fmt.Sprintf("PASS %v", r.CaseName)
}

// Passed reports whether the fixture matched expectations.
func (r *TestResult) Passed() bool {
	return r.Err == nil && r.Diff == ""
}

// Run executes every Case and returns one TestResult per fixture, in order.
func Run(cases []Case) []*TestResult {
	results := make([]*TestResult, len(cases))
	for i, c := range cases {
		results[i] = runCase(c)
	}
	return results
}

func runCase(c Case) *TestResult {
	grammar, err := metaparser.ParseGrammar(c.Source)
	if c.WantParseErr {
		if err == nil {
			return &TestResult{CaseName: c.Name, Err: fmt.Errorf("expected a parse error, got none")}
		}
		return &TestResult{CaseName: c.Name}
	}
	if err != nil {
		return &TestResult{CaseName: c.Name, Err: fmt.Errorf("unexpected parse error: %w", err)}
	}

	if c.WantGrammar != nil {
		if diff := cmp.Diff(c.WantGrammar, grammar); diff != "" {
			return &TestResult{CaseName: c.Name, Diff: diff}
		}
	}

	if c.GenConfig != nil {
		result, genErr := astgen.Generate(grammar, *c.GenConfig)
		if c.WantGenUnresolved {
			if genErr == nil {
				return &TestResult{CaseName: c.Name, Err: fmt.Errorf("expected an UnresolvedReference error, got none")}
			}
			return &TestResult{CaseName: c.Name}
		}
		if genErr != nil {
			return &TestResult{CaseName: c.Name, Err: fmt.Errorf("unexpected generator error: %w", genErr)}
		}
		for _, want := range c.WantCodeContains {
			if !strings.Contains(result.Code, want) {
				return &TestResult{CaseName: c.Name, Err: fmt.Errorf("generated code missing %q", want)}
			}
		}
		if c.WantExports != nil {
			if diff := cmp.Diff(sorted(c.WantExports), sorted(result.Exports)); diff != "" {
				return &TestResult{CaseName: c.Name, Diff: diff}
			}
		}
	}

	return &TestResult{CaseName: c.Name}
}

func sorted(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	sort.Strings(out)
	return out
}
