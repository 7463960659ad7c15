package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tpeg [sample]",
	Short: "Run one of TPEG's sample grammars",
	Long: `tpeg runs one of the sample grammars (arith, csv, json, peg)
against a small built-in example and prints the result. It exists to
demonstrate the combinator library and the meta-grammar pipeline, not to
replace a general-purpose parser CLI.`,
	Args:          cobra.MaximumNArgs(1),
	RunE:          runSample,
	SilenceErrors: true,
	SilenceUsage:  true,
}

var runFlags = struct {
	all *bool
}{}

func init() {
	runFlags.all = rootCmd.Flags().Bool("all", false, "run every sample")
}

// Execute runs the root command, printing any error to stderr.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return err
	}
	return nil
}
