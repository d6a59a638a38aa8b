package main

import (
	"flag"
	"strconv"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
)

// newJyxalCmd creates the root command
func newJyxalCmd() *cobra.Command {
	var logToStderr bool
	var verbose int
	cmd := &cobra.Command{
		Use:           "jyxal",
		Short:         "Jyxal compiles golfing-language programs to JVM class files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			initLogging(logToStderr, verbose)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			glog.Flush()
		},
	}

	cmd.PersistentFlags().BoolVar(&logToStderr, "logtostderr", false, "Log to stderr instead of to files")
	cmd.PersistentFlags().IntVarP(
		&verbose, "verbose", "v", 0, "Enable verbose logging (e.g., v=3); anything >3 is very verbose")

	cmd.AddCommand(newCompileCmd())
	cmd.AddCommand(newDisasmCmd())
	cmd.AddCommand(newElementsCmd())
	cmd.AddCommand(newConformanceCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// initLogging pushes the CLI settings into glog, which only reads the
// standard flag set. The command line itself belongs to cobra, so the
// standard set is parsed empty.
func initLogging(logToStderr bool, verbose int) {
	if !flag.Parsed() {
		_ = flag.CommandLine.Parse(nil)
	}
	if logToStderr {
		_ = flag.Lookup("logtostderr").Value.Set("true")
	}
	if verbose > 0 {
		_ = flag.Lookup("v").Value.Set(strconv.Itoa(verbose))
	}
}
