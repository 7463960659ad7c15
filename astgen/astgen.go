// Package astgen turns a Grammar AST (package ast) into Go source that
// builds the same parsers from package combinator. Mutually recursive
// rules need no thunk or forward-declaration scaffolding here: each rule
// becomes an ordinary Go function, and Go functions may reference each
// other in any order, so the generated file simply lists one function per
// rule, assembled through text/template and reformatted with go/format.
package astgen

import (
	"bytes"
	"fmt"
	"go/format"
	"sort"
	"strconv"
	"strings"
	"text/template"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/tpeg-lang/tpeg/ast"
	"github.com/tpeg-lang/tpeg/tpegerr"
)

// Config is the generator's configuration object. Unknown keys presented
// through ConfigFromMap are rejected with InvalidConfiguration; the Config
// struct itself is closed by construction.
type Config struct {
	NamePrefix       string
	IncludeImports   bool
	IncludeTypes     bool
	CombinatorModule string
}

// DefaultConfig returns the configuration used when generation is requested
// with no overrides.
func DefaultConfig() Config {
	return Config{
		IncludeImports:   true,
		IncludeTypes:     true,
		CombinatorModule: "github.com/tpeg-lang/tpeg/combinator",
	}
}

var knownConfigKeys = map[string]bool{
	"namePrefix":       true,
	"includeImports":   true,
	"includeTypes":     true,
	"combinatorModule": true,
}

// ConfigFromMap builds a Config from a host-supplied option bag, the shape a
// caller outside this module (a CLI flag parser, a config file) is likely to
// hand in. Every key not in knownConfigKeys is InvalidConfiguration, as is
// a recognized key holding the wrong value type.
func ConfigFromMap(opts map[string]interface{}) (Config, error) {
	cfg := DefaultConfig()
	for key, val := range opts {
		if !knownConfigKeys[key] {
			return Config{}, &tpegerr.GeneratorError{Kind: tpegerr.InvalidConfiguration, Detail: "unknown option " + key}
		}
		switch key {
		case "namePrefix":
			s, ok := val.(string)
			if !ok {
				return Config{}, configTypeError(key)
			}
			cfg.NamePrefix = s
		case "includeImports":
			b, ok := val.(bool)
			if !ok {
				return Config{}, configTypeError(key)
			}
			cfg.IncludeImports = b
		case "includeTypes":
			b, ok := val.(bool)
			if !ok {
				return Config{}, configTypeError(key)
			}
			cfg.IncludeTypes = b
		case "combinatorModule":
			s, ok := val.(string)
			if !ok {
				return Config{}, configTypeError(key)
			}
			cfg.CombinatorModule = s
		}
	}
	return cfg, nil
}

func configTypeError(key string) error {
	return &tpegerr.GeneratorError{Kind: tpegerr.InvalidConfiguration, Detail: "wrong value type for option " + key}
}

// Result is the textual artifact produced by Generate.
type Result struct {
	Imports []string
	Exports []string
	Code    string
}

// maxTranslateDepth bounds expression nesting so a pathological grammar
// fails with RecursionLimit instead of overflowing the generator's stack.
const maxTranslateDepth = 500

// Generate lowers g into Go source referencing cfg.CombinatorModule. The
// returned Result.Code is gofmt-formatted; Imports lists every combinator
// primitive actually referenced, and Exports lists every rule name (without
// NamePrefix) that was translated.
func Generate(g *ast.Grammar, cfg Config) (*Result, error) {
	ruleNames := make(map[string]bool, len(g.Rules))
	for _, r := range g.Rules {
		ruleNames[r.Name] = true
	}

	tr := &translator{cfg: cfg, ruleNames: ruleNames, used: map[string]bool{}}

	bindings := make([]binding, 0, len(g.Rules))
	for _, r := range g.Rules {
		code, err := tr.translate(r.Pattern, 0)
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, binding{
			FuncName: cfg.NamePrefix + r.Name,
			Body:     code,
		})
	}

	imports := make([]string, 0, len(tr.used))
	for name := range tr.used {
		imports = append(imports, name)
	}
	sort.Strings(imports)

	var buf bytes.Buffer
	err := codeTemplate.Execute(&buf, templateData{
		Config:      cfg,
		GrammarName: g.Name,
		Bindings:    bindings,
	})
	if err != nil {
		return nil, &tpegerr.GeneratorError{Kind: tpegerr.InvalidConstruction, Detail: err.Error()}
	}

	formatted, ferr := format.Source(buf.Bytes())
	if ferr != nil {
		return nil, &tpegerr.GeneratorError{Kind: tpegerr.InvalidConstruction, Detail: ferr.Error()}
	}

	return &Result{
		Imports: imports,
		Exports: g.RuleNames(),
		Code:    string(formatted),
	}, nil
}

type binding struct {
	FuncName string
	Body     string
}

type templateData struct {
	Config      Config
	GrammarName string
	Bindings    []binding
}

var codeTemplate = template.Must(template.New("generated").Parse(`// Code generated by tpeg's generator (package astgen). DO NOT EDIT.
//
// Rules of grammar {{.GrammarName}} are emitted as ordinary functions
// rather than package-level combinator values: Go functions may reference
// each other regardless of declaration order, which gives mutually
// recursive rules late binding for free, with no thunk or forward
// declaration required.
package generated
{{- if .Config.IncludeImports}}

import (
	"{{.Config.CombinatorModule}}"
	"github.com/tpeg-lang/tpeg/position"
)
{{- end}}
{{range .Bindings}}
func {{.FuncName}}(input string, pos position.Position) combinator.Result {
	return ({{.Body}})(input, pos)
}
{{if $.Config.IncludeTypes}}
var _ combinator.Parser = {{.FuncName}}
{{end}}
{{- end}}
`))

// translator walks an Expr tree, emitting Go source for each node and
// recording the combinator primitives it references.
type translator struct {
	cfg       Config
	ruleNames map[string]bool
	used      map[string]bool
}

func (t *translator) translate(e ast.Expr, depth int) (string, error) {
	if depth > maxTranslateDepth {
		return "", &tpegerr.GeneratorError{Kind: tpegerr.RecursionLimit, Detail: "expression nesting exceeds generator limit"}
	}
	switch n := e.(type) {
	case *ast.StringLiteral:
		t.use("Literal")
		return fmt.Sprintf("combinator.Literal(%s)", strconv.Quote(n.Value)), nil

	case *ast.CharacterClass:
		t.use("CharacterClass")
		items := make([]string, len(n.Ranges))
		for i, r := range n.Ranges {
			hi := r.Start
			if r.HasEnd {
				hi = r.End
			}
			items[i] = fmt.Sprintf("combinator.CharRange{Lo: %s, Hi: %s}", runeLit(r.Start), runeLit(hi))
		}
		return fmt.Sprintf("combinator.CharacterClass(%t, %s)", n.Negated, strings.Join(items, ", ")), nil

	case *ast.AnyChar:
		t.use("Any")
		return "combinator.Any()", nil

	case *ast.Identifier:
		if !t.ruleNames[n.Name] {
			return "", t.unresolved(n.Name)
		}
		return t.cfg.NamePrefix + n.Name, nil

	case *ast.QualifiedIdentifier:
		// Qualified references are not resolved against this grammar;
		// NamePrefix does not apply across module boundaries.
		return n.Module + "." + n.Name, nil

	case *ast.Sequence:
		t.use("Sequence")
		parts := make([]string, len(n.Elements))
		for i, el := range n.Elements {
			code, err := t.translate(el, depth+1)
			if err != nil {
				return "", err
			}
			parts[i] = code
		}
		return fmt.Sprintf("combinator.Sequence(%s)", strings.Join(parts, ", ")), nil

	case *ast.Choice:
		t.use("Choice")
		parts := make([]string, len(n.Alternatives))
		for i, alt := range n.Alternatives {
			code, err := t.translate(alt, depth+1)
			if err != nil {
				return "", err
			}
			parts[i] = code
		}
		return fmt.Sprintf("combinator.Choice(%s)", strings.Join(parts, ", ")), nil

	case *ast.Group:
		return t.translate(n.Expression, depth+1)

	case *ast.Star:
		t.use("Star")
		inner, err := t.translate(n.Expression, depth+1)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("combinator.Star(%s)", inner), nil

	case *ast.Plus:
		t.use("Plus")
		inner, err := t.translate(n.Expression, depth+1)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("combinator.Plus(%s)", inner), nil

	case *ast.Optional:
		t.use("Optional")
		inner, err := t.translate(n.Expression, depth+1)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("combinator.Optional(%s)", inner), nil

	case *ast.Quantified:
		// combinator.Quantified is a native primitive, so {min,max} is
		// passed straight through rather than expanded into a sequence of
		// min copies plus a capped star.
		t.use("Quantified")
		inner, err := t.translate(n.Expression, depth+1)
		if err != nil {
			return "", err
		}
		maxLit := "nil"
		if n.Max != nil {
			maxLit = fmt.Sprintf("func() *int { m := %d; return &m }()", *n.Max)
		}
		return fmt.Sprintf("combinator.Quantified(%s, %d, %s)", inner, n.Min, maxLit), nil

	case *ast.PositiveLookahead:
		t.use("And")
		inner, err := t.translate(n.Expression, depth+1)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("combinator.And(%s)", inner), nil

	case *ast.NegativeLookahead:
		t.use("Not")
		inner, err := t.translate(n.Expression, depth+1)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("combinator.Not(%s)", inner), nil

	case *ast.LabeledExpression:
		// The combinator layer has no named-capture concept, so the label
		// is dropped; only the inner expression is translated.
		return t.translate(n.Expression, depth+1)

	default:
		return "", &tpegerr.GeneratorError{Kind: tpegerr.InvalidConstruction, Detail: fmt.Sprintf("unhandled expression type %T", e)}
	}
}

func (t *translator) use(name string) {
	t.used[name] = true
}

func (t *translator) unresolved(name string) error {
	detail := "rule " + strconv.Quote(name) + " is not defined in this grammar"
	if suggestion := t.suggest(name); suggestion != "" {
		detail += "; did you mean " + strconv.Quote(suggestion) + "?"
	}
	return &tpegerr.GeneratorError{Kind: tpegerr.UnresolvedReference, Detail: detail}
}

// suggest returns the closest known rule name to name, or "" if none is
// within fuzzysearch's matching distance.
func (t *translator) suggest(name string) string {
	candidates := make([]string, 0, len(t.ruleNames))
	for n := range t.ruleNames {
		candidates = append(candidates, n)
	}
	sort.Strings(candidates)
	matches := fuzzy.RankFindFold(name, candidates)
	sort.Sort(matches)
	if len(matches) == 0 {
		return ""
	}
	return matches[0].Target
}

func runeLit(r rune) string {
	return strconv.QuoteRune(r)
}
