package conformance

// TestSuite represents a complete YAML test file
type TestSuite struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description,omitempty"`
	ClassName   string     `yaml:"class,omitempty"` // generated class, default jyxal/Main
	Tests       []TestCase `yaml:"tests"`
}

// TestCase represents a single test within a suite
type TestCase struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description,omitempty"`
	Skip        interface{} `yaml:"skip,omitempty"` // bool or string
	Source      string      `yaml:"source"`
	Args        []string    `yaml:"args,omitempty"` // program arguments when executed
	Expect      Expectation `yaml:"expect"`
}

// Expectation defines what a compile must produce. Structural checks run
// on the class file; Output is checked only when the runtime is available.
type Expectation struct {
	Error       string              `yaml:"error,omitempty"`       // ParseError, UnresolvedElement, ...
	Methods     []string            `yaml:"methods,omitempty"`     // exact method names, in order
	Synthesized *int                `yaml:"synthesized,omitempty"` // number of list element methods
	Fields      []string            `yaml:"fields,omitempty"`      // exact field names, in order
	Contains    map[string][]string `yaml:"contains,omitempty"`    // method -> instructions it must contain
	Excludes    map[string][]string `yaml:"excludes,omitempty"`    // method -> instructions it must not contain
	Output      *string             `yaml:"output,omitempty"`      // standard output of the program
}

// IsEmpty reports whether nothing is expected
func (e *Expectation) IsEmpty() bool {
	return e.Error == "" && e.Methods == nil && e.Synthesized == nil && e.Fields == nil &&
		len(e.Contains) == 0 && len(e.Excludes) == 0 && e.Output == nil
}

// IsSkipped returns true if this test should be skipped
func (tc *TestCase) IsSkipped() (bool, string) {
	if tc.Skip == nil {
		return false, ""
	}

	switch v := tc.Skip.(type) {
	case bool:
		if v {
			return true, "skipped"
		}
		return false, ""
	case string:
		return true, v
	default:
		return false, ""
	}
}
