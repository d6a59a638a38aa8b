package main

import (
	"fmt"
	"os"

	"jyxal/conformance"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newConformanceCmd() *cobra.Command {
	var dir string
	var verbose bool
	cmd := &cobra.Command{
		Use:   "conformance",
		Short: "Run the conformance suites against this compiler",
		Long: "Run the conformance suites against this compiler\n" +
			"\n" +
			"By default the built-in suites run. Use --dir to run the YAML suites in a\n" +
			"directory instead. Expected program output is checked only when\n" +
			"JYXAL_RUNTIME_CLASSPATH is set and java is on PATH.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var tests []conformance.LoadedTest
			var err error
			if dir == "" {
				tests, err = conformance.LoadAllTests()
			} else {
				tests, err = conformance.LoadFS(os.DirFS(dir), ".")
			}
			if err != nil {
				return err
			}

			results := conformance.NewRunner().RunAll(tests)
			out := cmd.OutOrStdout()
			for _, r := range results {
				switch {
				case r.Skipped:
					if verbose {
						fmt.Fprintf(out, "SKIP %s/%s: %s\n", r.Test.File, r.Test.Test.Name, r.SkipReason)
					}
				case !r.Passed:
					fmt.Fprintf(out, "FAIL %s/%s: %v\n", r.Test.File, r.Test.Test.Name, r.Error)
				case verbose:
					fmt.Fprintf(out, "PASS %s/%s\n", r.Test.File, r.Test.Test.Name)
				}
			}

			stats := conformance.ComputeStats(results)
			fmt.Fprintln(out, conformance.FormatStats(stats))
			if stats.Failed > 0 {
				return errors.Errorf("%d conformance test(s) failed", stats.Failed)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "Directory of YAML suites to run instead of the built-in ones")
	cmd.Flags().BoolVar(&verbose, "list", false, "Also list passing and skipped tests")
	return cmd
}
