package conformance

import (
	"embed"
	"io/fs"
	"path"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed testdata/*.yaml
var testdata embed.FS

// LoadedTest represents a test with its source file path
type LoadedTest struct {
	File  string
	Suite TestSuite
	Test  TestCase
}

// LoadAllTests loads every embedded suite. Problems in any file are
// collected and reported together.
func LoadAllTests() ([]LoadedTest, error) {
	return LoadFS(testdata, "testdata")
}

// LoadFS loads every .yaml suite under dir in fsys
func LoadFS(fsys fs.FS, dir string) ([]LoadedTest, error) {
	var loaded []LoadedTest
	var result *multierror.Error

	err := fs.WalkDir(fsys, dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != ".yaml" {
			return nil
		}

		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			result = multierror.Append(result, err)
			return nil
		}
		rel := strings.TrimPrefix(p, dir+"/")
		tests, err := loadSuite(rel, data)
		if err != nil {
			result = multierror.Append(result, err)
			return nil
		}
		loaded = append(loaded, tests...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return loaded, nil
}

// loadSuite parses one YAML file and returns all test cases
func loadSuite(file string, data []byte) ([]LoadedTest, error) {
	var suite TestSuite
	if err := yaml.Unmarshal(data, &suite); err != nil {
		return nil, errors.Wrap(err, file)
	}

	var result *multierror.Error
	seen := make(map[string]bool)
	var tests []LoadedTest
	for i, test := range suite.Tests {
		switch {
		case test.Name == "":
			result = multierror.Append(result, errors.Errorf("%s: test %d has no name", file, i))
			continue
		case seen[test.Name]:
			result = multierror.Append(result, errors.Errorf("%s: duplicate test %q", file, test.Name))
			continue
		case test.Expect.IsEmpty():
			result = multierror.Append(result, errors.Errorf("%s: test %q has no expectation", file, test.Name))
			continue
		}
		seen[test.Name] = true
		tests = append(tests, LoadedTest{
			File:  file,
			Suite: suite,
			Test:  test,
		})
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return tests, nil
}
