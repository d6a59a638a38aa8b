package conformance

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"jyxal/classfile"
	"jyxal/compiler"
	"jyxal/config"
	"jyxal/parser"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// ExecTimeout bounds one execution of a compiled program
const ExecTimeout = 30 * time.Second

// TestResult represents the outcome of running a single test
type TestResult struct {
	Test       LoadedTest
	Passed     bool
	Skipped    bool
	SkipReason string
	Executed   bool // output was checked by running the program
	Error      error
}

// Runner compiles and checks conformance tests
type Runner struct {
	java      string // path of the java launcher, empty if execution is off
	classpath string // runtime library classpath
}

// NewRunner creates a runner. Programs are executed only when the
// runtime classpath is configured and java is on PATH.
func NewRunner() *Runner {
	return NewRunnerWithConfig(config.Load())
}

// NewRunnerWithConfig creates a runner from explicit configuration
func NewRunnerWithConfig(cfg *config.Config) *Runner {
	r := &Runner{classpath: cfg.RuntimeClasspath}
	if r.classpath != "" {
		if java, err := exec.LookPath("java"); err == nil {
			r.java = java
		} else {
			glog.Warningf("%s is set but java is not on PATH; output checks are skipped", config.EnvRuntimeClasspath)
		}
	}
	return r
}

// CanExecute reports whether output expectations are checked
func (r *Runner) CanExecute() bool {
	return r.java != ""
}

// Run executes a single test case
func (r *Runner) Run(test LoadedTest) TestResult {
	// Check if test should be skipped
	if skipped, reason := test.Test.IsSkipped(); skipped {
		return TestResult{
			Test:       test,
			Skipped:    true,
			SkipReason: reason,
		}
	}

	executed, err := r.run(test)
	return TestResult{
		Test:     test,
		Passed:   err == nil,
		Executed: executed,
		Error:    err,
	}
}

func (r *Runner) run(test LoadedTest) (bool, error) {
	expect := test.Test.Expect
	className := test.Suite.ClassName
	if className == "" {
		className = compiler.DefaultClassName
	}

	file, err := parser.Parse(test.Test.Source)
	if err != nil {
		return false, checkError(expect, "ParseError", err)
	}
	opts := compiler.DefaultOptions()
	opts.ClassName = className
	data, err := compiler.CompileWithOptions(file, test.File, opts)
	if err != nil {
		var ce *compiler.Error
		if !errors.As(err, &ce) {
			return false, errors.Wrap(err, "compile")
		}
		return false, checkError(expect, kindName(ce.Kind), err)
	}
	if expect.Error != "" {
		return false, errors.Errorf("expected %s, compile succeeded", expect.Error)
	}

	class, err := classfile.Parse(data)
	if err != nil {
		return false, errors.Wrap(err, "read back class file")
	}
	if err := checkStructure(expect, class); err != nil {
		return false, err
	}

	if expect.Output == nil || !r.CanExecute() {
		return false, nil
	}
	out, err := r.execute(className, data, test.Test.Args)
	if err != nil {
		return true, err
	}
	if out != *expect.Output {
		return true, errors.Errorf("output = %q, want %q", out, *expect.Output)
	}
	return true, nil
}

// kindName maps compile error kinds to their names in suites
func kindName(k compiler.ErrorKind) string {
	switch k {
	case compiler.UnresolvedElement:
		return "UnresolvedElement"
	case compiler.InvalidLiteral:
		return "InvalidLiteral"
	case compiler.InternalScopeImbalance:
		return "InternalScopeImbalance"
	default:
		return k.String()
	}
}

func checkError(expect Expectation, got string, err error) error {
	if expect.Error == "" {
		return errors.Wrap(err, "unexpected failure")
	}
	if expect.Error != got {
		return errors.Errorf("error = %s (%v), want %s", got, err, expect.Error)
	}
	return nil
}

func checkStructure(expect Expectation, class *classfile.Class) error {
	var methods, fields []string
	synthesized := 0
	for _, m := range class.Methods {
		methods = append(methods, m.Name)
		if strings.HasPrefix(m.Name, compiler.ListInitPrefix) {
			synthesized++
		}
	}
	for _, f := range class.Fields {
		fields = append(fields, f.Name)
	}

	if expect.Methods != nil && !equalStrings(expect.Methods, methods) {
		return errors.Errorf("methods = %v, want %v", methods, expect.Methods)
	}
	if expect.Synthesized != nil && *expect.Synthesized != synthesized {
		return errors.Errorf("synthesized methods = %d, want %d", synthesized, *expect.Synthesized)
	}
	if expect.Fields != nil && !equalStrings(expect.Fields, fields) {
		return errors.Errorf("fields = %v, want %v", fields, expect.Fields)
	}

	for method, want := range expect.Contains {
		got, err := instructions(class, method)
		if err != nil {
			return err
		}
		for _, w := range want {
			if !got[w] {
				return errors.Errorf("%s: missing %q", method, w)
			}
		}
	}
	for method, unwanted := range expect.Excludes {
		got, err := instructions(class, method)
		if err != nil {
			return err
		}
		for _, u := range unwanted {
			if got[u] {
				return errors.Errorf("%s: unexpected %q", method, u)
			}
		}
	}
	return nil
}

func instructions(class *classfile.Class, method string) (map[string]bool, error) {
	m := class.Method(method)
	if m == nil {
		return nil, errors.Errorf("no method %s", method)
	}
	insns, err := class.Decode(m)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(insns))
	for _, in := range insns {
		set[in.String()] = true
	}
	return set, nil
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// execute writes the class to a scratch classpath root and runs it
func (r *Runner) execute(className string, data []byte, args []string) (string, error) {
	dir, err := os.MkdirTemp("", "jyxal-run-")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, filepath.FromSlash(className)+".class")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), ExecTimeout)
	defer cancel()
	cp := dir + string(os.PathListSeparator) + r.classpath
	argv := append([]string{"-cp", cp, strings.ReplaceAll(className, "/", ".")}, args...)
	cmd := exec.CommandContext(ctx, r.java, argv...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return stdout.String(), errors.Wrapf(err, "run %s: %s", className, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// RunAll executes all loaded tests
func (r *Runner) RunAll(tests []LoadedTest) []TestResult {
	results := make([]TestResult, len(tests))
	for i, test := range tests {
		results[i] = r.Run(test)
	}
	return results
}

// SummaryStats computes statistics from test results
type SummaryStats struct {
	Total    int
	Passed   int
	Failed   int
	Skipped  int
	Executed int
}

// ComputeStats generates statistics from test results
func ComputeStats(results []TestResult) SummaryStats {
	stats := SummaryStats{Total: len(results)}
	for _, r := range results {
		if r.Skipped {
			stats.Skipped++
		} else if r.Passed {
			stats.Passed++
		} else {
			stats.Failed++
		}
		if r.Executed {
			stats.Executed++
		}
	}
	return stats
}

// FormatStats returns a human-readable summary
func FormatStats(stats SummaryStats) string {
	return fmt.Sprintf("%d passed, %d failed, %d skipped (%d total, %d executed)",
		stats.Passed, stats.Failed, stats.Skipped, stats.Total, stats.Executed)
}
