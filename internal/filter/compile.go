package filter

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/vegasq/parqsample/internal/schema"
)

// MaxDepth is the maximum nesting depth of AND/OR blocks in a filter spec.
const MaxDepth = 100

var (
	// ErrInvalidFilterSpec is returned when a filter spec uses an unknown
	// operator or a condition shape outside the grammar.
	ErrInvalidFilterSpec = errors.New("invalid filter spec")

	// ErrSpecTooDeep is returned when AND/OR nesting exceeds MaxDepth.
	ErrSpecTooDeep = errors.New("filter spec nesting too deep")
)

// Bounds is a typed inclusive range operand for callers building filter
// specs in Go. JSON input has no ordered-pair type, so arrays always mean
// in_list; ranges arrive via {op: range, min, max} or this type.
type Bounds struct {
	Lo interface{}
	Hi interface{}
}

// Compile turns a nested filter specification into a predicate tree.
//
// Grammar, per block key:
//   - "AND"/"OR": the value is a nested block whose entries combine with
//     the corresponding node kind.
//   - any other key names a column with a condition: a scalar means equals,
//     an array means in_list, a Bounds means inclusive range, and an
//     {"op": ...} object selects the operator explicitly
//     (equals|in_list|gt|lt|range|between).
//
// Sibling entries of a block combine conjunctively. An empty spec compiles
// to nil, meaning no filter. Every referenced column must belong to cols;
// violations are reported together via schema.ErrUnknownColumn before any
// scan starts.
func Compile(spec map[string]interface{}, cols schema.Columns) (Expr, error) {
	c := &compiler{cols: cols}
	expr, err := c.block(spec, 0)
	if err != nil {
		return nil, err
	}
	if len(c.badColumns) > 0 {
		sort.Strings(c.badColumns)
		return nil, errors.Wrapf(schema.ErrUnknownColumn, "%v", c.badColumns)
	}
	return expr, nil
}

type compiler struct {
	cols       schema.Columns
	badColumns []string
}

// block compiles one spec block to the implicit conjunction of its entries.
func (c *compiler) block(spec map[string]interface{}, depth int) (Expr, error) {
	children, err := c.children(spec, depth)
	if err != nil {
		return nil, err
	}
	switch len(children) {
	case 0:
		return nil, nil
	case 1:
		return children[0], nil
	default:
		return &And{Children: children}, nil
	}
}

// children compiles each entry of a block to one expression, in sorted key
// order so compilation is deterministic.
func (c *compiler) children(spec map[string]interface{}, depth int) ([]Expr, error) {
	if depth > MaxDepth {
		return nil, ErrSpecTooDeep
	}

	keys := make([]string, 0, len(spec))
	for k := range spec {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []Expr
	for _, key := range keys {
		val := spec[key]
		switch key {
		case "AND", "OR":
			sub, ok := val.(map[string]interface{})
			if !ok {
				return nil, errors.Wrapf(ErrInvalidFilterSpec, "%s block must be an object, got %T", key, val)
			}
			kids, err := c.children(sub, depth+1)
			if err != nil {
				return nil, err
			}
			if len(kids) == 0 {
				continue
			}
			if key == "AND" {
				out = append(out, &And{Children: kids})
			} else {
				out = append(out, &Or{Children: kids})
			}
		default:
			leaf, err := c.leaf(key, val)
			if err != nil {
				return nil, err
			}
			if leaf != nil {
				out = append(out, leaf)
			}
		}
	}
	return out, nil
}

// leaf compiles a single column condition.
func (c *compiler) leaf(column string, cond interface{}) (Expr, error) {
	if !c.cols.Has(column) {
		c.badColumns = append(c.badColumns, column)
		// keep walking so every bad column is reported at once
	}

	switch v := cond.(type) {
	case string, bool, float64, float32, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return &Leaf{Column: column, Op: OpEquals, Value: v}, nil
	case []interface{}:
		return &Leaf{Column: column, Op: OpInList, Values: v}, nil
	case Bounds:
		return &Leaf{Column: column, Op: OpRange, Lo: v.Lo, Hi: v.Hi}, nil
	case map[string]interface{}:
		return c.opLeaf(column, v)
	default:
		return nil, errors.Wrapf(ErrInvalidFilterSpec, "condition for column %q has unsupported type %T", column, cond)
	}
}

// opLeaf compiles an explicit {"op": ...} condition object.
func (c *compiler) opLeaf(column string, cond map[string]interface{}) (Expr, error) {
	opName, ok := cond["op"].(string)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidFilterSpec, "condition object for column %q has no op", column)
	}

	switch opName {
	case "equals":
		v, ok := cond["value"]
		if !ok {
			return nil, errors.Wrapf(ErrInvalidFilterSpec, "equals condition for column %q has no value", column)
		}
		return &Leaf{Column: column, Op: OpEquals, Value: v}, nil
	case "in_list":
		vs, ok := cond["values"].([]interface{})
		if !ok {
			return nil, errors.Wrapf(ErrInvalidFilterSpec, "in_list condition for column %q has no values array", column)
		}
		return &Leaf{Column: column, Op: OpInList, Values: vs}, nil
	case "gt":
		v, ok := cond["value"]
		if !ok {
			return nil, errors.Wrapf(ErrInvalidFilterSpec, "gt condition for column %q has no value", column)
		}
		return &Leaf{Column: column, Op: OpGreaterThan, Value: v}, nil
	case "lt":
		v, ok := cond["value"]
		if !ok {
			return nil, errors.Wrapf(ErrInvalidFilterSpec, "lt condition for column %q has no value", column)
		}
		return &Leaf{Column: column, Op: OpLessThan, Value: v}, nil
	case "range", "between":
		lo, okLo := cond["min"]
		hi, okHi := cond["max"]
		if !okLo || !okHi {
			return nil, errors.Wrapf(ErrInvalidFilterSpec, "%s condition for column %q needs min and max", opName, column)
		}
		return &Leaf{Column: column, Op: OpRange, Lo: lo, Hi: hi}, nil
	default:
		return nil, errors.Wrapf(ErrInvalidFilterSpec, "unknown operator %q for column %q", opName, column)
	}
}

// ColumnsOf returns the distinct columns referenced by the expression's
// leaves, sorted. A nil expression references nothing.
func ColumnsOf(e Expr) []string {
	set := make(map[string]struct{})
	collectColumns(e, set)
	out := make([]string, 0, len(set))
	for col := range set {
		out = append(out, col)
	}
	sort.Strings(out)
	return out
}

func collectColumns(e Expr, set map[string]struct{}) {
	switch node := e.(type) {
	case *And:
		for _, child := range node.Children {
			collectColumns(child, set)
		}
	case *Or:
		for _, child := range node.Children {
			collectColumns(child, set)
		}
	case *Leaf:
		set[node.Column] = struct{}{}
	}
}
