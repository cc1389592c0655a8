package filter

import (
	"github.com/pkg/errors"
)

// cmpOp is the primitive comparison used when evaluating leaves. Leaf
// operators are expressed in terms of these.
type cmpOp int

const (
	cmpEq cmpOp = iota
	cmpLt
	cmpGt
	cmpLe
	cmpGe
)

// compareValues compares a row value with a filter operand, coercing both
// sides to a common type: numeric if both are numeric, then string, then
// bool. Mixed incomparable types are an error.
func compareValues(left interface{}, op cmpOp, right interface{}) (bool, error) {
	if left == nil || right == nil {
		if op == cmpEq {
			return left == right, nil
		}
		return false, nil
	}

	leftNum, leftIsNum := toFloat64(left)
	rightNum, rightIsNum := toFloat64(right)
	if leftIsNum && rightIsNum {
		return compareNumbers(leftNum, op, rightNum), nil
	}

	leftStr, leftIsStr := toString(left)
	rightStr, rightIsStr := toString(right)
	if leftIsStr && rightIsStr {
		return compareStrings(leftStr, op, rightStr), nil
	}

	leftBool, leftIsBool := toBool(left)
	rightBool, rightIsBool := toBool(right)
	if leftIsBool && rightIsBool {
		if op == cmpEq {
			return leftBool == rightBool, nil
		}
		return false, nil
	}

	return false, errors.Errorf("cannot compare %T with %T", left, right)
}

// toFloat64 converts a value to float64 if possible
func toFloat64(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int8:
		return float64(val), true
	case int16:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint8:
		return float64(val), true
	case uint16:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	default:
		return 0, false
	}
}

// toString converts a value to string if possible
func toString(v interface{}) (string, bool) {
	if str, ok := v.(string); ok {
		return str, true
	}
	if b, ok := v.([]byte); ok {
		return string(b), true
	}
	return "", false
}

// toBool converts a value to bool if possible
func toBool(v interface{}) (bool, bool) {
	if b, ok := v.(bool); ok {
		return b, true
	}
	return false, false
}

func compareNumbers(left float64, op cmpOp, right float64) bool {
	switch op {
	case cmpEq:
		return left == right
	case cmpLt:
		return left < right
	case cmpGt:
		return left > right
	case cmpLe:
		return left <= right
	case cmpGe:
		return left >= right
	default:
		return false
	}
}

func compareStrings(left string, op cmpOp, right string) bool {
	switch op {
	case cmpEq:
		return left == right
	case cmpLt:
		return left < right
	case cmpGt:
		return left > right
	case cmpLe:
		return left <= right
	case cmpGe:
		return left >= right
	default:
		return false
	}
}
