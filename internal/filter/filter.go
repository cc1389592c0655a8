// Package filter compiles nested AND/OR filter specifications into a typed
// predicate tree evaluated over dataset rows.
//
// The tree is a closed set of node kinds: And, Or and Leaf. Leaves carry one
// of five operators (equals, in_list, range, gt, lt). Column names and
// operators are validated when the tree is built, before any shard is
// opened, so a malformed request never surfaces mid-scan. During scans the
// tree doubles as a pushdown predicate: MaybeMatch prunes whole row groups
// using column statistics before any row of the group is decoded.
package filter

import (
	"github.com/vegasq/parqsample/internal/reader"
)

// Op identifies a leaf comparison operator.
type Op int

const (
	OpEquals Op = iota
	OpInList
	OpRange
	OpGreaterThan
	OpLessThan
)

// String returns the wire name of the operator.
func (op Op) String() string {
	switch op {
	case OpEquals:
		return "equals"
	case OpInList:
		return "in_list"
	case OpRange:
		return "range"
	case OpGreaterThan:
		return "gt"
	case OpLessThan:
		return "lt"
	default:
		return "unknown"
	}
}

// Expr is a node of the compiled predicate tree.
//
// Match evaluates the node against a fully decoded row. MaybeMatch answers
// whether any row of a row group described by the given column statistics
// could match; it must err on the side of true.
type Expr interface {
	Match(row reader.Row) (bool, error)
	MaybeMatch(stats map[string]reader.ColumnRange) bool
}

// And matches when every child matches. An empty And is vacuous and matches
// all rows.
type And struct {
	Children []Expr
}

// Or matches when at least one child matches.
type Or struct {
	Children []Expr
}

// Leaf is a single column comparison. Value carries the operand for equals,
// gt and lt; Values for in_list; Lo/Hi the inclusive bounds for range.
type Leaf struct {
	Column string
	Op     Op
	Value  interface{}
	Values []interface{}
	Lo     interface{}
	Hi     interface{}
}

// Match evaluates the conjunction.
func (a *And) Match(row reader.Row) (bool, error) {
	for _, child := range a.Children {
		ok, err := child.Match(row)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// MaybeMatch prunes only when some child definitively excludes the group.
func (a *And) MaybeMatch(stats map[string]reader.ColumnRange) bool {
	for _, child := range a.Children {
		if !child.MaybeMatch(stats) {
			return false
		}
	}
	return true
}

// Match evaluates the disjunction.
func (o *Or) Match(row reader.Row) (bool, error) {
	for _, child := range o.Children {
		ok, err := child.Match(row)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// MaybeMatch prunes only when every child definitively excludes the group.
func (o *Or) MaybeMatch(stats map[string]reader.ColumnRange) bool {
	for _, child := range o.Children {
		if child.MaybeMatch(stats) {
			return true
		}
	}
	return len(o.Children) == 0
}

// Match evaluates the comparison against the row's column value. Rows with
// a missing or null column value never match a leaf.
func (l *Leaf) Match(row reader.Row) (bool, error) {
	value, exists := row[l.Column]
	if !exists || value == nil {
		return false, nil
	}

	switch l.Op {
	case OpEquals:
		return compareValues(value, cmpEq, l.Value)
	case OpInList:
		for _, want := range l.Values {
			ok, err := compareValues(value, cmpEq, want)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	case OpRange:
		ge, err := compareValues(value, cmpGe, l.Lo)
		if err != nil || !ge {
			return false, err
		}
		return compareValues(value, cmpLe, l.Hi)
	case OpGreaterThan:
		return compareValues(value, cmpGt, l.Value)
	case OpLessThan:
		return compareValues(value, cmpLt, l.Value)
	default:
		return false, nil
	}
}

// MaybeMatch checks the operand against the group's [min, max] bounds for
// the leaf's column. Missing bounds or incomparable types keep the group.
func (l *Leaf) MaybeMatch(stats map[string]reader.ColumnRange) bool {
	bounds, ok := stats[l.Column]
	if !ok || bounds.Min == nil || bounds.Max == nil {
		return true
	}

	within := func(v interface{}) bool {
		ge, err := compareValues(v, cmpGe, bounds.Min)
		if err != nil {
			return true
		}
		le, err := compareValues(v, cmpLe, bounds.Max)
		if err != nil {
			return true
		}
		return ge && le
	}

	switch l.Op {
	case OpEquals:
		return within(l.Value)
	case OpInList:
		for _, v := range l.Values {
			if within(v) {
				return true
			}
		}
		return len(l.Values) == 0
	case OpRange:
		// overlap test: max >= lo and min <= hi
		ok1, err1 := compareValues(bounds.Max, cmpGe, l.Lo)
		ok2, err2 := compareValues(bounds.Min, cmpLe, l.Hi)
		if err1 != nil || err2 != nil {
			return true
		}
		return ok1 && ok2
	case OpGreaterThan:
		ok, err := compareValues(bounds.Max, cmpGt, l.Value)
		return err != nil || ok
	case OpLessThan:
		ok, err := compareValues(bounds.Min, cmpLt, l.Value)
		return err != nil || ok
	default:
		return true
	}
}
