package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tpeg-lang/tpeg/astgen"
	"github.com/tpeg-lang/tpeg/samples/arith"
	"github.com/tpeg-lang/tpeg/samples/csv"
	"github.com/tpeg-lang/tpeg/samples/json"
	"github.com/tpeg-lang/tpeg/samples/pegdemo"
)

// sampleNames is the closed set the CLI accepts as a positional argument.
var sampleNames = []string{"arith", "csv", "json", "peg"}

func runSample(cmd *cobra.Command, args []string) error {
	if *runFlags.all {
		for _, name := range sampleNames {
			if err := runOne(name); err != nil {
				return err
			}
		}
		return nil
	}

	if len(args) == 0 {
		return fmt.Errorf("expected one of %v, or --all", sampleNames)
	}
	return runOne(args[0])
}

func runOne(name string) error {
	switch name {
	case "arith":
		v, err := arith.Evaluate("1 + 2 * 3")
		if err != nil {
			return fmt.Errorf("arith: %w", err)
		}
		fmt.Printf("arith: 1 + 2 * 3 = %v\n", v)
		return nil

	case "csv":
		rows, err := csv.Parse("name,age\nAda,36\n\"Grace \"\"Hopper\"\"\",85")
		if err != nil {
			return fmt.Errorf("csv: %w", err)
		}
		fmt.Printf("csv: %v\n", rows)
		return nil

	case "json":
		v, err := json.Parse(`{"name": "Ada", "languages": ["assembly", "analytical engine notes"]}`)
		if err != nil {
			return fmt.Errorf("json: %w", err)
		}
		fmt.Printf("json: %v\n", v)
		return nil

	case "peg":
		grammar, err := pegdemo.Parse()
		if err != nil {
			return fmt.Errorf("peg: %w", err)
		}
		result, err := pegdemo.Generate(astgen.DefaultConfig())
		if err != nil {
			return fmt.Errorf("peg: %w", err)
		}
		fmt.Printf("peg: parsed grammar %q with rules %v\n", grammar.Name, grammar.RuleNames())
		fmt.Printf("peg: generated %d bytes of Go source exporting %v\n", len(result.Code), result.Exports)
		return nil

	default:
		return fmt.Errorf("unknown sample %q, expected one of %v", name, sampleNames)
	}
}
