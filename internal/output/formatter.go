// Package output writes sampled rows to their final destinations.
//
// The sampled table can be written as a parquet file (the default, one
// columnar output table), or as JSON Lines, CSV or a terminal table for
// inspection. All formatters work with rows represented as
// []map[string]interface{} and a fixed projected column order.
package output

import (
	"fmt"
	"io"
)

// Formatter defines the interface for output formatters.
type Formatter interface {
	// Format writes rows in the formatter's specific format
	Format(rows []map[string]interface{}) error

	// SetOutput changes the output writer
	SetOutput(w io.Writer)
}

// formatValue converts a cell value to its string representation. Nulls
// become the empty string.
func formatValue(v interface{}) string {
	if v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case []byte:
		return string(val)
	case int, int8, int16, int32, int64:
		return fmt.Sprintf("%d", val)
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", val)
	case float32, float64:
		return fmt.Sprintf("%g", val)
	case bool:
		return fmt.Sprintf("%t", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
