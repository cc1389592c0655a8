// Package schema holds the declared column set shared by every shard in a
// dataset folder.
//
// Shards are produced by an upstream conversion step with one fixed logical
// schema, so the column list is known ahead of time. Filter specs and output
// projections are validated against this set before any file is opened.
package schema

import (
	"os"
	"sort"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ErrUnknownColumn is returned when a requested column is not part of the
// declared column set.
var ErrUnknownColumn = errors.New("unknown column")

// Columns is the declared column set of a dataset: an ordered list of names
// plus a lookup set. The order is the canonical output column order.
type Columns struct {
	names []string
	set   map[string]struct{}
}

// New builds a Columns from an ordered list of names. Duplicates are dropped,
// keeping the first occurrence.
func New(names []string) Columns {
	c := Columns{set: make(map[string]struct{}, len(names))}
	for _, n := range names {
		if _, ok := c.set[n]; ok {
			continue
		}
		c.set[n] = struct{}{}
		c.names = append(c.names, n)
	}
	return c
}

// Names returns the column names in declared order.
func (c Columns) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Len returns the number of declared columns.
func (c Columns) Len() int { return len(c.names) }

// Has reports whether name is a declared column.
func (c Columns) Has(name string) bool {
	_, ok := c.set[name]
	return ok
}

// Validate checks that every name is declared. It returns ErrUnknownColumn
// listing all offending names, so a bad request fails before any I/O.
func (c Columns) Validate(names ...string) error {
	var bad []string
	for _, n := range names {
		if !c.Has(n) {
			bad = append(bad, n)
		}
	}
	if len(bad) > 0 {
		sort.Strings(bad)
		return errors.Wrapf(ErrUnknownColumn, "%v", bad)
	}
	return nil
}

// Select returns the declared columns restricted to names, in declared order.
// Unknown names are an error.
func (c Columns) Select(names []string) ([]string, error) {
	if err := c.Validate(names...); err != nil {
		return nil, err
	}
	want := make(map[string]struct{}, len(names))
	for _, n := range names {
		want[n] = struct{}{}
	}
	var out []string
	for _, n := range c.names {
		if _, ok := want[n]; ok {
			out = append(out, n)
		}
	}
	return out, nil
}

type yamlSchema struct {
	Columns []string `yaml:"columns"`
}

// Load reads a column list from a YAML file of the form:
//
//	columns:
//	  - GlobalEventID
//	  - Day
func Load(path string) (Columns, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Columns{}, errors.Wrap(err, "read schema file")
	}
	var ys yamlSchema
	if err := yaml.Unmarshal(raw, &ys); err != nil {
		return Columns{}, errors.Wrap(err, "parse schema file")
	}
	if len(ys.Columns) == 0 {
		return Columns{}, errors.Errorf("schema file %s declares no columns", path)
	}
	return New(ys.Columns), nil
}
