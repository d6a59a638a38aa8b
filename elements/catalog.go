package elements

import (
	_ "embed"
	"sort"
	"sync"

	"github.com/golang/glog"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DefaultOwner is the runtime class that holds catalog methods unless an
// entry names another
const DefaultOwner = "runtime/RuntimeMethods"

//go:embed catalog.yaml
var catalogYAML []byte

// Catalog maps element keys (modifier + token) to their code generators
type Catalog struct {
	elems map[string]Element
}

// NewCatalog creates an empty catalog
func NewCatalog() *Catalog {
	return &Catalog{elems: make(map[string]Element)}
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns a copy of the built-in catalog: the native elements plus
// the embedded runtime call table. The table is parsed once; callers may
// extend their copy freely.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		c := NewCatalog()
		c.registerNatives()
		if err := c.LoadYAML(catalogYAML); err != nil {
			defaultErr = errors.Wrap(err, "embedded catalog")
			return
		}
		glog.V(2).Infof("element catalog: %d entries", c.Len())
		defaultCatalog = c
	})
	if defaultErr != nil {
		return nil, defaultErr
	}
	return defaultCatalog.Clone(), nil
}

// Clone returns a catalog with the same entries that can be changed
// without affecting c
func (c *Catalog) Clone() *Catalog {
	out := &Catalog{elems: make(map[string]Element, len(c.elems))}
	for k, e := range c.elems {
		out.elems[k] = e
	}
	return out
}

func (c *Catalog) registerNatives() {
	// Stack shuffles
	c.Register(":", Dup)
	c.Register("_", Pop)
	c.Register("$", Swap)

	// Output
	c.Register(",", Print{})

	// Constants
	c.Register("₀", NumberConstant("10"))
	c.Register("₁", NumberConstant("100"))
	c.Register("ð", StringConstant(" "))
	c.Register("¤", StringConstant(""))
	c.Register("kA", StringConstant("ABCDEFGHIJKLMNOPQRSTUVWXYZ"))
	c.Register("ka", StringConstant("abcdefghijklmnopqrstuvwxyz"))
	c.Register("kd", StringConstant("0123456789"))

	// Program arguments
	c.Register("⁰", Input{Index: 0})
	c.Register("¹", Input{Index: 1})
}

// Register adds or replaces the element for key
func (c *Catalog) Register(key string, e Element) {
	c.elems[key] = e
}

// Lookup resolves a key by exact match
func (c *Catalog) Lookup(key string) (Element, bool) {
	e, ok := c.elems[key]
	return e, ok
}

// Has checks if a key is registered
func (c *Catalog) Has(key string) bool {
	_, ok := c.elems[key]
	return ok
}

// Len returns the number of registered keys
func (c *Catalog) Len() int {
	return len(c.elems)
}

// Keys returns every registered key in sorted order
func (c *Catalog) Keys() []string {
	keys := make([]string, 0, len(c.elems))
	for k := range c.elems {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// callTable is the on-disk shape of a runtime call table
type callTable struct {
	Owner    string      `yaml:"owner"`
	Elements []callEntry `yaml:"elements"`
}

type callEntry struct {
	Key         string `yaml:"key"`
	Owner       string `yaml:"owner,omitempty"`
	Method      string `yaml:"method"`
	Pops        int    `yaml:"pops"`
	Pushes      int    `yaml:"pushes"`
	Description string `yaml:"description,omitempty"`
}

// LoadYAML registers every entry of a runtime call table. All entries are
// validated before any is registered; every problem is reported.
func (c *Catalog) LoadYAML(data []byte) error {
	var table callTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return errors.Wrap(err, "parse call table")
	}
	owner := table.Owner
	if owner == "" {
		owner = DefaultOwner
	}

	var result *multierror.Error
	seen := make(map[string]bool, len(table.Elements))
	calls := make(map[string]*Call, len(table.Elements))
	for i, ent := range table.Elements {
		switch {
		case ent.Key == "":
			result = multierror.Append(result, errors.Errorf("entry %d: missing key", i))
			continue
		case seen[ent.Key]:
			result = multierror.Append(result, errors.Errorf("entry %d: duplicate key %q", i, ent.Key))
			continue
		case c.Has(ent.Key):
			result = multierror.Append(result, errors.Errorf("entry %d: key %q already registered", i, ent.Key))
			continue
		}
		seen[ent.Key] = true
		if ent.Method == "" {
			result = multierror.Append(result, errors.Errorf("%q: missing method", ent.Key))
			continue
		}
		if ent.Pops < 0 {
			result = multierror.Append(result, errors.Errorf("%q: negative pops", ent.Key))
			continue
		}
		if ent.Pushes != 0 && ent.Pushes != 1 {
			result = multierror.Append(result, errors.Errorf("%q: pushes must be 0 or 1, got %d", ent.Key, ent.Pushes))
			continue
		}
		call := &Call{Owner: owner, Method: ent.Method, Pops: ent.Pops, Pushes: ent.Pushes}
		if ent.Owner != "" {
			call.Owner = ent.Owner
		}
		calls[ent.Key] = call
	}
	if err := result.ErrorOrNil(); err != nil {
		return err
	}
	for key, call := range calls {
		c.Register(key, call)
	}
	return nil
}
